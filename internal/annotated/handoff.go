package annotated

// Handoff carries the annotations parsed by a Reader to the Injector of the
// same pipeline. It holds at most one pending ParsedText.
//
// A Handoff belongs to exactly one pipeline instance and is not safe for
// concurrent use.
type Handoff struct {
	pending *ParsedText
}

// NewHandoff creates an empty Handoff.
func NewHandoff() *Handoff {
	return &Handoff{}
}

// Publish stores p, replacing anything not yet taken.
func (h *Handoff) Publish(p *ParsedText) {
	h.pending = p
}

// Take returns the pending ParsedText and empties the slot.
// ok is false when nothing was published since the last Take or Clear.
func (h *Handoff) Take() (p *ParsedText, ok bool) {
	p, h.pending = h.pending, nil
	return p, p != nil
}

// Clear drops any pending ParsedText.
func (h *Handoff) Clear() {
	h.pending = nil
}
