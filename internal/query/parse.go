package query

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrInvalidQuery     = errors.New("invalid query")
	ErrTooManyClauses   = errors.New("boolean query has too many clauses")
	ErrQueryTooDeep     = errors.New("boolean query is nested too deeply")
	ErrPhraseTooLong    = errors.New("phrase has too many terms")
	ErrPhraseSlopTooBig = errors.New("phrase slop out of range")
)

type termJSON struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type phraseJSON struct {
	Field string   `json:"field"`
	Terms []string `json:"terms"`
	Slop  int      `json:"slop"`
}

type boolJSON struct {
	Must               []json.RawMessage `json:"must"`
	Should             []json.RawMessage `json:"should"`
	MustNot            []json.RawMessage `json:"must_not"`
	MinimumShouldMatch int               `json:"minimum_should_match"`
}

// Parse decodes a JSON query. Every object has exactly one key naming the
// query type:
//
//	{"term": {"field": "body", "value": "John Smith"}}
//	{"phrase": {"field": "body", "terms": ["mayor", "John Smith"], "slop": 0}}
//	{"bool": {"must": [...], "should": [...], "must_not": [...], "minimum_should_match": 1}}
//	{"match_all": {}}
//	{"match_none": {}}
func Parse(data []byte) (Query, error) {
	return parse(data, 0)
}

func parse(data []byte, depth int) (Query, error) {
	var node map[string]json.RawMessage
	if err := json.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	if len(node) != 1 {
		keys := make([]string, 0, len(node))
		for k := range node {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("%w: expected exactly one query type, got [%s]", ErrInvalidQuery, strings.Join(keys, ", "))
	}

	var (
		kind string
		body json.RawMessage
	)
	for k, v := range node {
		kind, body = k, v
	}

	switch kind {
	case "term":
		var t termJSON
		if err := json.Unmarshal(body, &t); err != nil {
			return nil, fmt.Errorf("%w: term: %v", ErrInvalidQuery, err)
		}
		if t.Field == "" || t.Value == "" {
			return nil, fmt.Errorf("%w: term requires field and value", ErrInvalidQuery)
		}
		return &TermQuery{Field: t.Field, Term: t.Value}, nil

	case "phrase":
		var p phraseJSON
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, fmt.Errorf("%w: phrase: %v", ErrInvalidQuery, err)
		}
		q := &PhraseQuery{Field: p.Field, Terms: p.Terms, Slop: p.Slop}
		if err := validatePhrase(q); err != nil {
			return nil, err
		}
		return q, nil

	case "bool":
		return parseBool(body, depth+1)

	case "match_all":
		return &MatchAllQuery{}, nil

	case "match_none":
		return &MatchNoneQuery{}, nil

	default:
		return nil, fmt.Errorf("%w: unknown query type %q", ErrInvalidQuery, kind)
	}
}

func parseBool(body json.RawMessage, depth int) (Query, error) {
	if depth > MaxBooleanDepth {
		return nil, fmt.Errorf("%w: max depth %d", ErrQueryTooDeep, MaxBooleanDepth)
	}
	var b boolJSON
	if err := json.Unmarshal(body, &b); err != nil {
		return nil, fmt.Errorf("%w: bool: %v", ErrInvalidQuery, err)
	}
	if n := len(b.Must) + len(b.Should) + len(b.MustNot); n > MaxBooleanClauses {
		return nil, fmt.Errorf("%w: %d (max %d)", ErrTooManyClauses, n, MaxBooleanClauses)
	}
	if b.MinimumShouldMatch < 0 || b.MinimumShouldMatch > len(b.Should) {
		return nil, fmt.Errorf("%w: minimum_should_match %d with %d should clauses",
			ErrInvalidQuery, b.MinimumShouldMatch, len(b.Should))
	}

	q := &BooleanQuery{MinimumShouldMatch: b.MinimumShouldMatch}
	for _, group := range []struct {
		occur   BooleanOp
		clauses []json.RawMessage
	}{
		{BooleanMust, b.Must},
		{BooleanShould, b.Should},
		{BooleanMustNot, b.MustNot},
	} {
		for _, raw := range group.clauses {
			child, err := parse(raw, depth)
			if err != nil {
				return nil, err
			}
			q.Clauses = append(q.Clauses, BooleanClause{Occur: group.occur, Query: child})
		}
	}
	return q, nil
}

func validatePhrase(q *PhraseQuery) error {
	if q.Field == "" || len(q.Terms) == 0 {
		return fmt.Errorf("%w: phrase requires field and terms", ErrInvalidQuery)
	}
	if len(q.Terms) > MaxPhraseLength {
		return fmt.Errorf("%w: %d terms (max %d)", ErrPhraseTooLong, len(q.Terms), MaxPhraseLength)
	}
	if q.Slop < 0 || q.Slop > MaxPhraseSlop {
		return fmt.Errorf("%w: %d (max %d)", ErrPhraseSlopTooBig, q.Slop, MaxPhraseSlop)
	}
	for _, t := range q.Terms {
		if t == "" {
			return fmt.Errorf("%w: empty phrase term", ErrInvalidQuery)
		}
	}
	return nil
}

// Walk calls fn for q and every query nested in it, parents first.
func Walk(q Query, fn func(Query)) {
	fn(q)
	if b, ok := q.(*BooleanQuery); ok {
		for _, c := range b.Clauses {
			Walk(c.Query, fn)
		}
	}
}
