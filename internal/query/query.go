// Package query defines the query AST served by the search endpoint and
// its JSON form. Queries name exact indexed terms: annotation values are
// matched as written, word terms as the field's analyzer produced them.
package query

// QueryType identifies the kind of query node.
type QueryType int

const (
	QueryTypeTerm QueryType = iota
	QueryTypeBoolean
	QueryTypePhrase
	QueryTypeMatchAll
	QueryTypeMatchNone
)

func (t QueryType) String() string {
	switch t {
	case QueryTypeTerm:
		return "term"
	case QueryTypeBoolean:
		return "bool"
	case QueryTypePhrase:
		return "phrase"
	case QueryTypeMatchAll:
		return "match_all"
	case QueryTypeMatchNone:
		return "match_none"
	default:
		return "unknown"
	}
}

// Query is the interface for all query AST nodes.
type Query interface {
	Type() QueryType
}

// Boolean operator limits.
const (
	MaxBooleanClauses = 1024
	MaxBooleanDepth   = 10
)

// Phrase limits.
const (
	MaxPhraseLength = 50
	MaxPhraseSlop   = 100
)
