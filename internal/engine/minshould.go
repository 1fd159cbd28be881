package engine

// MinShouldMatchIterator matches documents on which at least min of its
// children match.
type MinShouldMatchIterator struct {
	disj *DisjunctionIterator
	min  int
}

// NewMinShouldMatchIterator creates the iterator. A min below one is
// treated as one.
func NewMinShouldMatchIterator(children []PostingsIterator, min int) *MinShouldMatchIterator {
	if min < 1 {
		min = 1
	}
	return &MinShouldMatchIterator{disj: NewDisjunctionIterator(children), min: min}
}

func (m *MinShouldMatchIterator) Next() bool {
	for m.disj.Next() {
		if m.disj.Matches() >= m.min {
			return true
		}
	}
	return false
}

func (m *MinShouldMatchIterator) Advance(target uint32) bool {
	if !m.disj.Advance(target) {
		return false
	}
	if m.disj.Matches() >= m.min {
		return true
	}
	return m.Next()
}

func (m *MinShouldMatchIterator) DocID() uint32 { return m.disj.DocID() }
func (m *MinShouldMatchIterator) Freq() uint32  { return m.disj.Freq() }
func (m *MinShouldMatchIterator) Cost() int64   { return m.disj.Cost() }
