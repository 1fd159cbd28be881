package engine

import (
	"cmp"
	"slices"
)

// ConjunctionIterator matches documents present in every child. The
// cheapest child leads and the others are advanced to its document.
type ConjunctionIterator struct {
	lead    PostingsIterator
	others  []PostingsIterator
	current uint32
}

// NewConjunctionIterator creates an AND iterator over children, which must
// not be empty.
func NewConjunctionIterator(children []PostingsIterator) *ConjunctionIterator {
	sorted := slices.Clone(children)
	slices.SortStableFunc(sorted, func(a, b PostingsIterator) int {
		return cmp.Compare(a.Cost(), b.Cost())
	})
	return &ConjunctionIterator{lead: sorted[0], others: sorted[1:]}
}

func (c *ConjunctionIterator) Next() bool {
	if !c.lead.Next() {
		return false
	}
	return c.align()
}

func (c *ConjunctionIterator) Advance(target uint32) bool {
	if !c.lead.Advance(target) {
		return false
	}
	return c.align()
}

func (c *ConjunctionIterator) DocID() uint32 { return c.current }

// Freq is the number of occurrences of all children in the current document.
func (c *ConjunctionIterator) Freq() uint32 {
	freq := c.lead.Freq()
	for _, it := range c.others {
		freq += it.Freq()
	}
	return freq
}

func (c *ConjunctionIterator) Cost() int64 { return c.lead.Cost() }

// align moves every child onto the lead's document, re-advancing the lead
// whenever a child skips past it.
func (c *ConjunctionIterator) align() bool {
	target := c.lead.DocID()
restart:
	for _, it := range c.others {
		if !it.Advance(target) {
			return false
		}
		if it.DocID() > target {
			if !c.lead.Advance(it.DocID()) {
				return false
			}
			target = c.lead.DocID()
			goto restart
		}
	}
	c.current = target
	return true
}
