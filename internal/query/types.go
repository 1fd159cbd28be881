package query

// TermQuery matches documents containing the exact indexed term.
type TermQuery struct {
	Field string
	Term  string
}

func (q *TermQuery) Type() QueryType { return QueryTypeTerm }

// BooleanOp defines the boolean operator.
type BooleanOp int

const (
	BooleanMust    BooleanOp = iota // AND
	BooleanShould                   // OR
	BooleanMustNot                  // NOT
)

// BooleanClause is a single clause within a BooleanQuery.
type BooleanClause struct {
	Occur BooleanOp
	Query Query
}

// BooleanQuery combines sub-queries with boolean logic.
//
// Without must clauses at least max(1, MinimumShouldMatch) should clauses
// have to match. With must clauses, should clauses only constrain the
// result when MinimumShouldMatch is positive.
type BooleanQuery struct {
	Clauses            []BooleanClause
	MinimumShouldMatch int
}

func (q *BooleanQuery) Type() QueryType { return QueryTypeBoolean }

// PhraseQuery matches documents where the terms occupy consecutive
// positions. Annotation tokens sit at the position of the first word they
// cover, so a phrase may mix annotation values and words.
//
// Slop allows that many extra positions in total between consecutive
// terms, order preserved.
type PhraseQuery struct {
	Field string
	Terms []string
	Slop  int
}

func (q *PhraseQuery) Type() QueryType { return QueryTypePhrase }

// MatchAllQuery matches all documents.
type MatchAllQuery struct{}

func (q *MatchAllQuery) Type() QueryType { return QueryTypeMatchAll }

// MatchNoneQuery matches no documents.
type MatchNoneQuery struct{}

func (q *MatchNoneQuery) Type() QueryType { return QueryTypeMatchNone }
