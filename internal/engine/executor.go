// Package engine matches queries against buffered postings. Results come
// back in document ID order; there is no relevance scoring.
package engine

import (
	"fmt"

	"annotext/internal/indexing"
	"annotext/internal/query"
)

// Index is the read view a query runs against. Document IDs are dense in
// [0, DocCount()).
type Index interface {
	Postings(field, term string) []indexing.PostingEntry
	DocCount() int
}

// Result holds the matches of one query execution.
type Result struct {
	Total  int
	DocIDs []uint32
}

// Execute runs q against idx and keeps the first limit matches. A nil ctx
// uses the default limits.
func Execute(idx Index, q query.Query, limit int, ctx *ExecutionContext) (*Result, error) {
	if ctx == nil {
		ctx = NewExecutionContext(0, 0, 0)
	}
	b := &builder{idx: idx, ctx: ctx}
	it, err := b.iterator(query.Rewrite(q))
	if err != nil {
		return nil, err
	}

	c := NewCollector(limit)
	for it.Next() {
		ctx.DocsMatched++
		if err := ctx.CheckLimits(); err != nil {
			return nil, err
		}
		c.Collect(it.DocID())
	}
	for _, p := range b.phrases {
		if err := p.Err(); err != nil {
			return nil, err
		}
	}
	return &Result{Total: c.Total(), DocIDs: c.Docs()}, nil
}

type builder struct {
	idx     Index
	ctx     *ExecutionContext
	phrases []*PhraseIterator
}

func (b *builder) iterator(q query.Query) (PostingsIterator, error) {
	switch v := q.(type) {
	case *query.TermQuery:
		return NewEntriesIterator(b.idx.Postings(v.Field, v.Term)), nil

	case *query.PhraseQuery:
		terms := make([]*SlicePostingsIterator, len(v.Terms))
		for i, t := range v.Terms {
			entries := b.idx.Postings(v.Field, t)
			if len(entries) == 0 {
				return emptyIterator{}, nil
			}
			terms[i] = NewEntriesIterator(entries)
		}
		p := NewPhraseIterator(terms, v.Slop, b.ctx)
		b.phrases = append(b.phrases, p)
		return p, nil

	case *query.BooleanQuery:
		return b.boolean(v)

	case *query.MatchAllQuery:
		return newRangeIterator(b.idx.DocCount()), nil

	case *query.MatchNoneQuery:
		return emptyIterator{}, nil

	default:
		return nil, fmt.Errorf("%w: unsupported query type %T", query.ErrInvalidQuery, q)
	}
}

func (b *builder) boolean(q *query.BooleanQuery) (PostingsIterator, error) {
	var must, should, mustNot []PostingsIterator
	for _, c := range q.Clauses {
		it, err := b.iterator(c.Query)
		if err != nil {
			return nil, err
		}
		switch c.Occur {
		case query.BooleanMust:
			must = append(must, it)
		case query.BooleanShould:
			should = append(should, it)
		case query.BooleanMustNot:
			mustNot = append(mustNot, it)
		}
	}

	var req PostingsIterator
	switch {
	case len(must) > 0:
		if q.MinimumShouldMatch > 0 && len(should) > 0 {
			must = append(must, NewMinShouldMatchIterator(should, q.MinimumShouldMatch))
		}
		req = conjunction(must)
	case len(should) > 0:
		if q.MinimumShouldMatch > 1 {
			req = NewMinShouldMatchIterator(should, q.MinimumShouldMatch)
		} else {
			req = NewDisjunctionIterator(should)
		}
	default:
		req = newRangeIterator(b.idx.DocCount())
	}

	switch len(mustNot) {
	case 0:
		return req, nil
	case 1:
		return NewExclusionIterator(req, mustNot[0]), nil
	default:
		return NewExclusionIterator(req, NewDisjunctionIterator(mustNot)), nil
	}
}

func conjunction(children []PostingsIterator) PostingsIterator {
	if len(children) == 1 {
		return children[0]
	}
	return NewConjunctionIterator(children)
}
