package engine

import "sort"

// PhraseIterator matches documents where its terms occur in order at
// consecutive positions, allowing up to slop extra positions in total.
// Terms stacked on one position (an annotation and the first word it
// covers) each count as occupying that position.
type PhraseIterator struct {
	conj  *ConjunctionIterator
	terms []*SlicePostingsIterator
	slop  int
	ctx   *ExecutionContext
	err   error
	freq  uint32
}

// NewPhraseIterator creates a phrase matcher over one iterator per phrase
// term, in phrase order. ctx bounds the position checks and may be nil.
func NewPhraseIterator(terms []*SlicePostingsIterator, slop int, ctx *ExecutionContext) *PhraseIterator {
	children := make([]PostingsIterator, len(terms))
	for i, t := range terms {
		children[i] = t
	}
	return &PhraseIterator{
		conj:  NewConjunctionIterator(children),
		terms: terms,
		slop:  slop,
		ctx:   ctx,
	}
}

func (p *PhraseIterator) Next() bool {
	if !p.conj.Next() {
		return false
	}
	return p.matchForward()
}

func (p *PhraseIterator) Advance(target uint32) bool {
	if !p.conj.Advance(target) {
		return false
	}
	return p.matchForward()
}

// matchForward moves the conjunction until the current doc holds the phrase.
func (p *PhraseIterator) matchForward() bool {
	for {
		n, err := p.countMatches()
		if err != nil {
			p.err = err
			return false
		}
		if n > 0 {
			p.freq = n
			return true
		}
		if !p.conj.Next() {
			return false
		}
	}
}

// countMatches returns the number of start positions of the first term
// from which the whole phrase can be matched in the current doc.
func (p *PhraseIterator) countMatches() (uint32, error) {
	first := p.terms[0].Positions()
	var n uint32
	for _, start := range first {
		ok, err := p.matchFrom(1, start, p.slop)
		if err != nil {
			return 0, err
		}
		if ok {
			n++
		}
	}
	return n, nil
}

// matchFrom reports whether terms[i:] can follow a term at position prev
// using at most budget extra positions.
func (p *PhraseIterator) matchFrom(i int, prev uint32, budget int) (bool, error) {
	if i == len(p.terms) {
		return true, nil
	}
	if p.ctx != nil {
		p.ctx.PositionsVisited++
		if err := p.ctx.CheckLimits(); err != nil {
			return false, err
		}
	}

	positions := p.terms[i].Positions()
	want := prev + 1
	j := sort.Search(len(positions), func(k int) bool { return positions[k] >= want })
	for ; j < len(positions); j++ {
		gap := int(positions[j] - want)
		if gap > budget {
			break
		}
		ok, err := p.matchFrom(i+1, positions[j], budget-gap)
		if err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}

// Err returns the limit error that stopped iteration, if any.
func (p *PhraseIterator) Err() error { return p.err }

func (p *PhraseIterator) DocID() uint32 { return p.conj.DocID() }

// Freq returns the number of phrase occurrences in the current document.
func (p *PhraseIterator) Freq() uint32 { return p.freq }
func (p *PhraseIterator) Cost() int64  { return p.conj.Cost() }
