package annotated

import (
	"errors"
	"fmt"
	"strings"

	"annotext/internal/analysis"
)

// ValueSeparatorLen is the number of bytes a highlighter places between
// consecutive values of a multi-valued field.
const ValueSeparatorLen = 1

// ErrValueIndex is returned for a value index outside the field's values.
var ErrValueIndex = errors.New("field value index out of range")

// Highlighter serves the highlighting read path of a multi-valued annotated
// field. Highlighters work on the plain text of every value, joined with a
// one byte separator, and look annotations up by offsets into that joined
// text.
type Highlighter struct {
	analyzer *Analyzer
	values   []*ParsedText
}

// NewHighlighter parses every value of a field with a.
func NewHighlighter(values []string, a *Analyzer) (*Highlighter, error) {
	h := &Highlighter{
		analyzer: a,
		values:   make([]*ParsedText, len(values)),
	}
	for i, v := range values {
		p, err := a.Parse(v)
		if err != nil {
			return nil, fmt.Errorf("field value %d: %w", i, err)
		}
		h.values[i] = p
	}
	return h, nil
}

// PlainTextValues returns the values with markup removed, in order.
func (h *Highlighter) PlainTextValues() []string {
	plain := make([]string, len(h.values))
	for i, v := range h.values {
		plain[i] = v.Plain
	}
	return plain
}

// PlainText returns the plain text values joined by the separator the
// offsets of IntersectingAnnotations refer to.
func (h *Highlighter) PlainText(sep byte) string {
	var sb strings.Builder
	for i, v := range h.values {
		if i > 0 {
			sb.WriteByte(sep)
		}
		sb.WriteString(v.Plain)
	}
	return sb.String()
}

// IntersectingAnnotations returns the annotations touching [start, end] in
// the joined plain text, with offsets in the same joined coordinates.
func (h *Highlighter) IntersectingAnnotations(start, end int) []Annotation {
	var found []Annotation
	valueOffset := 0
	for _, v := range h.values {
		for _, a := range v.Annotations {
			if a.Intersects(start-valueOffset, end-valueOffset) {
				found = append(found, a.Shift(valueOffset))
			}
		}
		valueOffset += len(v.Plain) + ValueSeparatorLen
	}
	return found
}

// Tokens analyzes the plain text of value i with its annotations injected,
// as a highlighter re-tokenizing the field would see it.
func (h *Highlighter) Tokens(field string, i int) ([]analysis.Token, error) {
	if i < 0 || i >= len(h.values) {
		return nil, fmt.Errorf("%w: %d of %d", ErrValueIndex, i, len(h.values))
	}
	v := h.values[i]
	base := analysis.NewSliceStream(h.analyzer.base.Analyze(field, v.Plain))
	injector := NewInjector(base, nil, h.analyzer.metrics)
	injector.SetAnnotations(v)
	return analysis.Collect(injector)
}
