package engine

// ExclusionIterator matches the documents of a required iterator that the
// excluded iterator does not match (AND NOT).
type ExclusionIterator struct {
	req      PostingsIterator
	excl     PostingsIterator
	exclDone bool
}

// NewExclusionIterator creates an iterator over req minus excl.
func NewExclusionIterator(req, excl PostingsIterator) *ExclusionIterator {
	return &ExclusionIterator{req: req, excl: excl}
}

func (e *ExclusionIterator) Next() bool {
	if !e.req.Next() {
		return false
	}
	return e.skipExcluded()
}

func (e *ExclusionIterator) Advance(target uint32) bool {
	if !e.req.Advance(target) {
		return false
	}
	return e.skipExcluded()
}

// skipExcluded moves req forward until it sits on a doc excl lacks.
func (e *ExclusionIterator) skipExcluded() bool {
	for {
		doc := e.req.DocID()
		if e.exclDone {
			return true
		}
		if !e.excl.Advance(doc) {
			e.exclDone = true
			return true
		}
		if e.excl.DocID() != doc {
			return true
		}
		if !e.req.Next() {
			return false
		}
	}
}

func (e *ExclusionIterator) DocID() uint32 { return e.req.DocID() }
func (e *ExclusionIterator) Freq() uint32  { return e.req.Freq() }
func (e *ExclusionIterator) Cost() int64   { return e.req.Cost() }
