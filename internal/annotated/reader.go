package annotated

import (
	"io"
	"strings"
)

// Reader strips annotation markup from the text of src. On the first Read it
// consumes src entirely, parses it, publishes the result to the Handoff and
// then serves the plain text.
type Reader struct {
	src     io.Reader
	handoff *Handoff
	parse   ParseFunc

	plain  *strings.Reader
	parsed *ParsedText
	err    error
}

// ParseFunc turns a raw field value into plain text and annotations.
type ParseFunc func(raw string) (*ParsedText, error)

// NewReader wraps src. A nil handoff parses without publishing; a nil parse
// uses Parse.
func NewReader(src io.Reader, h *Handoff, parse ParseFunc) *Reader {
	if parse == nil {
		parse = Parse
	}
	return &Reader{src: src, handoff: h, parse: parse}
}

// Read implements io.Reader over the plain text. Errors reading src and
// markup parse errors are returned from the first Read and every Read after.
func (r *Reader) Read(p []byte) (int, error) {
	if r.plain == nil && r.err == nil {
		r.load()
	}
	if r.err != nil {
		return 0, r.err
	}
	return r.plain.Read(p)
}

// Parsed returns the parsed value, or nil before the first Read.
func (r *Reader) Parsed() *ParsedText {
	return r.parsed
}

// Close clears the Handoff so an unread publish cannot leak into a later
// pass, and closes src when it is an io.Closer.
func (r *Reader) Close() error {
	if r.handoff != nil {
		r.handoff.Clear()
	}
	if c, ok := r.src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (r *Reader) load() {
	data, err := io.ReadAll(r.src)
	if err != nil {
		r.err = err
		return
	}

	parsed, err := r.parse(string(data))
	if err != nil {
		r.err = err
		return
	}

	r.parsed = parsed
	r.plain = strings.NewReader(parsed.Plain)
	if r.handoff != nil {
		r.handoff.Publish(parsed)
	}
}
