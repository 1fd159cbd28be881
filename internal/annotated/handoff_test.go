package annotated

import (
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandoff(t *testing.T) {
	h := NewHandoff()

	_, ok := h.Take()
	assert.False(t, ok, "empty handoff")

	p := &ParsedText{Plain: "x"}
	h.Publish(p)
	got, ok := h.Take()
	require.True(t, ok)
	assert.Same(t, p, got)

	_, ok = h.Take()
	assert.False(t, ok, "Take clears the slot")

	h.Publish(p)
	h.Clear()
	_, ok = h.Take()
	assert.False(t, ok, "Clear drops a pending publish")
}

func TestHandoff_LastPublishWins(t *testing.T) {
	h := NewHandoff()
	first, second := &ParsedText{Plain: "1"}, &ParsedText{Plain: "2"}
	h.Publish(first)
	h.Publish(second)

	got, ok := h.Take()
	require.True(t, ok)
	assert.Same(t, second, got)
}

func TestReader_PublishesOnFirstRead(t *testing.T) {
	h := NewHandoff()
	r := NewReader(strings.NewReader("say [hi](value=hello)"), h, nil)

	_, ok := h.Take()
	assert.False(t, ok, "nothing published before reading")

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "say hi", string(data))

	p, ok := h.Take()
	require.True(t, ok)
	assert.Same(t, r.Parsed(), p)
	assert.Equal(t, []Annotation{{Start: 4, End: 6, Value: "hello"}}, p.Annotations)
}

func TestReader_CloseClearsHandoff(t *testing.T) {
	h := NewHandoff()
	r := NewReader(strings.NewReader("[a](value=b)"), h, nil)
	_, err := io.ReadAll(r)
	require.NoError(t, err)

	require.NoError(t, r.Close())
	_, ok := h.Take()
	assert.False(t, ok)
}

func TestReader_Errors(t *testing.T) {
	readErr := errors.New("read failed")
	r := NewReader(iotest.ErrReader(readErr), NewHandoff(), nil)
	_, err := r.Read(make([]byte, 8))
	assert.Same(t, readErr, err)

	h := NewHandoff()
	r = NewReader(strings.NewReader("[a](%%)"), h, nil)
	_, err = r.Read(make([]byte, 8))
	assert.ErrorIs(t, err, ErrMalformedEscape)
	_, err = r.Read(make([]byte, 8))
	assert.ErrorIs(t, err, ErrMalformedEscape, "error is sticky")

	_, ok := h.Take()
	assert.False(t, ok, "failed parse publishes nothing")
}

func TestReader_SmallReads(t *testing.T) {
	r := NewReader(iotest.OneByteReader(strings.NewReader("x [yz](value=q) w")), nil, nil)
	data, err := io.ReadAll(iotest.OneByteReader(r))
	require.NoError(t, err)
	assert.Equal(t, "x yz w", string(data))
}
