package annotated

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"annotext/internal/analysis"
)

func newTestHighlighter(t *testing.T, values ...string) *Highlighter {
	t.Helper()
	h, err := NewHighlighter(values, NewAnalyzer(analysis.NewWhitespaceAnalyzer()))
	require.NoError(t, err)
	return h
}

func TestHighlighter_PlainTextValues(t *testing.T) {
	h := newTestHighlighter(t, "a [x](value=y) b", "c")

	assert.Equal(t, []string{"a x b", "c"}, h.PlainTextValues())
	assert.Equal(t, "a x b\x00c", h.PlainText(0))
}

func TestHighlighter_IntersectingAnnotations(t *testing.T) {
	h := newTestHighlighter(t, "a [x](value=y) b", "c")

	got := h.IntersectingAnnotations(0, len("a x b")+1+len("c"))
	assert.Equal(t, []Annotation{{Start: 2, End: 3, Value: "y"}}, got)

	assert.Empty(t, h.IntersectingAnnotations(len("a x b")+1, len("a x b")+2), "second value has none")
	assert.Empty(t, h.IntersectingAnnotations(4, 5))
}

func TestHighlighter_ShiftsLaterValues(t *testing.T) {
	h := newTestHighlighter(t,
		"one [two](value=2)",
		"no markup",
		"[three](type=num&value=3) four",
	)

	third := len("one two") + 1 + len("no markup") + 1
	got := h.IntersectingAnnotations(third, third+2)
	assert.Equal(t, []Annotation{{Start: third, End: third + 5, Type: "num", Value: "3"}}, got)

	joined := h.PlainText(' ')
	assert.Equal(t, "three", joined[got[0].Start:got[0].End])

	all := h.IntersectingAnnotations(0, len(joined))
	require.Len(t, all, 2)
	assert.Equal(t, "two", joined[all[0].Start:all[0].End])
}

func TestHighlighter_Tokens(t *testing.T) {
	h := newTestHighlighter(t, "plain", "New mayor is [John Smith](type=person&value=John%20Smith)")

	tokens, err := h.Tokens("body", 1)
	require.NoError(t, err)
	want := []slot{
		{"New", 1, 1},
		{"mayor", 1, 1},
		{"is", 1, 1},
		{"John Smith", 1, 2},
		{"John", 0, 1},
		{"Smith", 1, 1},
	}
	if diff := cmp.Diff(want, slots(tokens)); diff != "" {
		t.Errorf("token slots mismatch (-want +got):\n%s", diff)
	}

	_, err = h.Tokens("body", 2)
	assert.ErrorIs(t, err, ErrValueIndex)
	_, err = h.Tokens("body", -1)
	assert.ErrorIs(t, err, ErrValueIndex)
}

func TestHighlighter_MalformedValue(t *testing.T) {
	_, err := NewHighlighter([]string{"ok", "[x](value=%)"}, NewAnalyzer(analysis.NewWhitespaceAnalyzer()))
	assert.ErrorIs(t, err, ErrMalformedEscape)
}
