package analysis

import "unicode"

// WhitespaceAnalyzer splits text on whitespace without any normalization.
type WhitespaceAnalyzer struct{}

// NewWhitespaceAnalyzer creates a new WhitespaceAnalyzer.
func NewWhitespaceAnalyzer() *WhitespaceAnalyzer {
	return &WhitespaceAnalyzer{}
}

// Analyze splits the input on whitespace, preserving case and punctuation.
func (a *WhitespaceAnalyzer) Analyze(_ string, text string) []Token {
	var tokens []Token
	pos := 0
	start := -1

	for i, r := range text {
		if unicode.IsSpace(r) {
			if start >= 0 {
				tokens = append(tokens, newToken(text[start:i], pos, start, i, TypeWord))
				pos++
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		tokens = append(tokens, newToken(text[start:], pos, start, len(text), TypeWord))
	}

	return tokens
}
