package engine

import "annotext/internal/indexing"

// PostingsIterator iterates over a postings list in document ID order.
type PostingsIterator interface {
	// Next advances to the next document. Returns false when exhausted.
	Next() bool

	// DocID returns the current document ID. Valid only after Next() returns true.
	DocID() uint32

	// Freq returns the term frequency in the current document.
	Freq() uint32

	// Advance moves to the first document >= target. Returns false if no such document.
	Advance(target uint32) bool

	// Cost returns an estimate of remaining documents.
	Cost() int64
}

// SlicePostingsIterator is a simple in-memory PostingsIterator backed by slices.
type SlicePostingsIterator struct {
	docIDs    []uint32
	freqs     []uint32
	positions [][]uint32
	pos       int
}

// NewSlicePostingsIterator creates a PostingsIterator from doc ID and frequency slices.
// Both slices must be the same length and docIDs must be sorted ascending.
func NewSlicePostingsIterator(docIDs, freqs []uint32) *SlicePostingsIterator {
	return &SlicePostingsIterator{
		docIDs: docIDs,
		freqs:  freqs,
		pos:    -1,
	}
}

// NewEntriesIterator iterates over buffered postings, positions included.
func NewEntriesIterator(entries []indexing.PostingEntry) *SlicePostingsIterator {
	it := &SlicePostingsIterator{
		docIDs:    make([]uint32, len(entries)),
		freqs:     make([]uint32, len(entries)),
		positions: make([][]uint32, len(entries)),
		pos:       -1,
	}
	for i, e := range entries {
		it.docIDs[i] = e.DocID
		it.freqs[i] = e.Freq
		it.positions[i] = e.Positions
	}
	return it
}

func (it *SlicePostingsIterator) Next() bool {
	it.pos++
	return it.pos < len(it.docIDs)
}

func (it *SlicePostingsIterator) DocID() uint32 {
	return it.docIDs[it.pos]
}

func (it *SlicePostingsIterator) Freq() uint32 {
	if it.freqs == nil || it.pos >= len(it.freqs) {
		return 1
	}
	return it.freqs[it.pos]
}

// Positions returns the ascending term positions in the current document,
// or nil when the postings carry none.
func (it *SlicePostingsIterator) Positions() []uint32 {
	if it.positions == nil || it.pos >= len(it.positions) {
		return nil
	}
	return it.positions[it.pos]
}

func (it *SlicePostingsIterator) Advance(target uint32) bool {
	// If already positioned at or past target, return true.
	if it.pos >= 0 && it.pos < len(it.docIDs) && it.docIDs[it.pos] >= target {
		return true
	}
	for it.pos+1 < len(it.docIDs) {
		it.pos++
		if it.docIDs[it.pos] >= target {
			return true
		}
	}
	it.pos = len(it.docIDs)
	return false
}

func (it *SlicePostingsIterator) Cost() int64 {
	remaining := len(it.docIDs) - it.pos - 1
	if remaining < 0 {
		return 0
	}
	return int64(remaining)
}

// emptyIterator matches nothing.
type emptyIterator struct{}

func (emptyIterator) Next() bool          { return false }
func (emptyIterator) DocID() uint32       { return 0 }
func (emptyIterator) Freq() uint32        { return 0 }
func (emptyIterator) Advance(uint32) bool { return false }
func (emptyIterator) Cost() int64         { return 0 }

// rangeIterator matches every document ID in [0, n).
type rangeIterator struct {
	n   uint32
	cur int64
}

func newRangeIterator(n int) *rangeIterator {
	return &rangeIterator{n: uint32(n), cur: -1}
}

func (it *rangeIterator) Next() bool {
	it.cur++
	return it.cur < int64(it.n)
}

func (it *rangeIterator) DocID() uint32 { return uint32(it.cur) }
func (it *rangeIterator) Freq() uint32  { return 1 }

func (it *rangeIterator) Advance(target uint32) bool {
	if it.cur < int64(target) {
		it.cur = int64(target)
	}
	return it.cur < int64(it.n)
}

func (it *rangeIterator) Cost() int64 {
	if remaining := int64(it.n) - it.cur - 1; remaining > 0 {
		return remaining
	}
	return 0
}
