package query

// Rewrite applies simplification rules to a query AST until a fixed point is
// reached. Rules: single-term phrases become term queries, nested booleans
// with the same operator are flattened, MatchAll is dropped from AND,
// MatchNone in AND short-circuits, MatchNone is dropped from NOT and a
// boolean without clauses matches nothing.
func Rewrite(q Query) Query {
	for {
		rewritten := rewriteOnce(q)
		if queryEqual(rewritten, q) {
			return rewritten
		}
		q = rewritten
	}
}

func rewriteOnce(q Query) Query {
	switch v := q.(type) {
	case *BooleanQuery:
		return rewriteBoolean(v)
	case *PhraseQuery:
		if len(v.Terms) == 1 {
			return &TermQuery{Field: v.Field, Term: v.Terms[0]}
		}
		return q
	default:
		return q
	}
}

func rewriteBoolean(q *BooleanQuery) Query {
	if len(q.Clauses) == 0 {
		return &MatchNoneQuery{}
	}

	// Recursively rewrite children first.
	clauses := make([]BooleanClause, 0, len(q.Clauses))
	for _, c := range q.Clauses {
		rewritten := rewriteOnce(c.Query)

		// Flatten nested booleans with same operator.
		if inner, ok := rewritten.(*BooleanQuery); ok {
			if canFlatten(c.Occur, inner) && (c.Occur != BooleanShould || q.MinimumShouldMatch <= 1) {
				for _, ic := range inner.Clauses {
					clauses = append(clauses, BooleanClause{Occur: c.Occur, Query: ic.Query})
				}
				continue
			}
		}

		clauses = append(clauses, BooleanClause{Occur: c.Occur, Query: rewritten})
	}

	filtered := make([]BooleanClause, 0, len(clauses))
	hasMust := false
	for _, c := range clauses {
		switch c.Occur {
		case BooleanMust:
			hasMust = true
			switch c.Query.(type) {
			case *MatchAllQuery:
				continue
			case *MatchNoneQuery:
				return &MatchNoneQuery{}
			}
		case BooleanMustNot:
			if _, ok := c.Query.(*MatchNoneQuery); ok {
				continue
			}
		}
		filtered = append(filtered, c)
	}

	// Every must clause was MatchAll and nothing else constrains the result.
	if hasMust && len(filtered) == 0 {
		return &MatchAllQuery{}
	}

	// Single clause remaining: unwrap.
	if len(filtered) == 1 && filtered[0].Occur == BooleanMust {
		return filtered[0].Query
	}

	return &BooleanQuery{
		Clauses:            filtered,
		MinimumShouldMatch: q.MinimumShouldMatch,
	}
}

// canFlatten returns true if an inner boolean can be flattened into the outer clause.
// AND(AND(a,b)) → AND(a,b) and OR(OR(a,b)) → OR(a,b). An inner OR with a
// minimum_should_match above one is kept intact.
func canFlatten(outerOccur BooleanOp, inner *BooleanQuery) bool {
	if outerOccur == BooleanMustNot || inner.MinimumShouldMatch > 1 {
		return false
	}
	for _, c := range inner.Clauses {
		if c.Occur != outerOccur {
			return false
		}
	}
	return true
}

// queryEqual checks structural equality for fixed-point detection.
func queryEqual(a, b Query) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.Type() != b.Type() {
		return false
	}
	switch av := a.(type) {
	case *BooleanQuery:
		bv := b.(*BooleanQuery)
		if len(av.Clauses) != len(bv.Clauses) || av.MinimumShouldMatch != bv.MinimumShouldMatch {
			return false
		}
		for i := range av.Clauses {
			if av.Clauses[i].Occur != bv.Clauses[i].Occur {
				return false
			}
			if !queryEqual(av.Clauses[i].Query, bv.Clauses[i].Query) {
				return false
			}
		}
		return true
	case *MatchAllQuery, *MatchNoneQuery:
		return true
	}
	// For leaf nodes, pointer equality is sufficient after one pass.
	return a == b
}
