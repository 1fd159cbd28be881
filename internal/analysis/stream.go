package analysis

import "io"

// TokenStream is a pull-based, single-pass sequence of tokens.
// Next returns io.EOF once the stream is exhausted; any other error comes
// from the underlying source and ends the stream.
type TokenStream interface {
	Next() (Token, error)
}

// SliceStream replays a fixed token slice.
type SliceStream struct {
	tokens []Token
	pos    int
}

// NewSliceStream creates a stream over tokens.
func NewSliceStream(tokens []Token) *SliceStream {
	return &SliceStream{tokens: tokens}
}

// Next returns the next token or io.EOF.
func (s *SliceStream) Next() (Token, error) {
	if s.pos >= len(s.tokens) {
		return Token{}, io.EOF
	}
	tok := s.tokens[s.pos]
	s.pos++
	return tok, nil
}

// ReaderStream tokenizes the text of an io.Reader with an Analyzer.
// The reader is consumed lazily on the first call to Next.
type ReaderStream struct {
	analyzer Analyzer
	field    string
	src      io.Reader
	tokens   *SliceStream
}

// NewReaderStream creates a stream that analyzes the contents of r.
func NewReaderStream(a Analyzer, field string, r io.Reader) *ReaderStream {
	return &ReaderStream{analyzer: a, field: field, src: r}
}

// Next returns the next token. Read errors from the source are returned
// unchanged on the first call.
func (s *ReaderStream) Next() (Token, error) {
	if s.tokens == nil {
		data, err := io.ReadAll(s.src)
		if err != nil {
			return Token{}, err
		}
		s.tokens = NewSliceStream(s.analyzer.Analyze(s.field, string(data)))
	}
	return s.tokens.Next()
}

// Collect drains ts into a slice. The returned error is nil when the stream
// ended with io.EOF, otherwise it is the stream's error as returned.
func Collect(ts TokenStream) ([]Token, error) {
	var tokens []Token
	for {
		tok, err := ts.Next()
		if err == io.EOF {
			return tokens, nil
		}
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
	}
}
