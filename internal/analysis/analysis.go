package analysis

// Token type tags set by the built-in analyzers.
const (
	TypeWord    = "word"
	TypeKeyword = "keyword"
)

// Token represents a single token produced by an analyzer.
//
// Position is the absolute position of the token within the analyzed value.
// PositionIncrement is the distance from the previous token (0 stacks the
// token on the previous slot) and PositionLength the number of positions the
// token spans.
type Token struct {
	Term              string
	Position          int
	StartByte         int
	EndByte           int
	PositionIncrement int
	PositionLength    int
	Type              string
}

// Analyzer processes text into a stream of tokens.
// Implementations MUST be safe for reuse across documents.
type Analyzer interface {
	// Analyze tokenizes the input text and returns tokens with positions.
	Analyze(field string, text string) []Token
}

func newToken(term string, pos, start, end int, typ string) Token {
	return Token{
		Term:              term,
		Position:          pos,
		StartByte:         start,
		EndByte:           end,
		PositionIncrement: 1,
		PositionLength:    1,
		Type:              typ,
	}
}
