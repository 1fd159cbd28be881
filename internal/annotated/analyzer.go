// Package annotated indexes text carrying inline annotation markup such as
// "[John Smith](type=person&value=John%20Smith)". Annotations become extra
// tokens that share positions with the words they annotate.
package annotated

import (
	"errors"
	"io"
	"strings"
	"sync"

	"annotext/internal/analysis"
)

// ErrStreamClosed is returned by Next after Close.
var ErrStreamClosed = errors.New("token stream is closed")

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithCache memoizes markup parsing in c.
func WithCache(c *ParseCache) Option {
	return func(a *Analyzer) { a.cache = c }
}

// WithMetrics records parsing and injection counts in m.
func WithMetrics(m *Metrics) Option {
	return func(a *Analyzer) { a.metrics = m }
}

// Analyzer tokenizes annotated text: markup is stripped before the base
// analyzer sees the text, and the annotations are injected back into the
// base analyzer's tokens.
//
// An Analyzer is safe for concurrent use. Each TokenStream borrows a pooled
// pipeline (Handoff plus Injector) that no other stream shares until Close.
type Analyzer struct {
	base    analysis.Analyzer
	cache   *ParseCache
	metrics *Metrics
	parse   ParseFunc
	pool    sync.Pool
}

// pipeline is the per-stream state recycled through the pool.
type pipeline struct {
	handoff  *Handoff
	injector *Injector
}

// NewAnalyzer wraps base.
func NewAnalyzer(base analysis.Analyzer, opts ...Option) *Analyzer {
	a := &Analyzer{base: base}
	for _, opt := range opts {
		opt(a)
	}

	parse := Parse
	if a.cache != nil {
		parse = a.cache.Parse
	}
	a.parse = a.metrics.CountParse(parse)

	a.pool.New = func() any {
		h := NewHandoff()
		return &pipeline{handoff: h, injector: NewInjector(nil, h, a.metrics)}
	}
	return a
}

// TokenStream starts a pass over the annotated text read from r.
// The caller must Close the stream.
func (a *Analyzer) TokenStream(field string, r io.Reader) *TokenStream {
	p := a.pool.Get().(*pipeline)
	p.handoff.Clear()

	reader := NewReader(r, p.handoff, a.parse)
	p.injector.Reset(analysis.NewReaderStream(a.base, field, reader))
	return &TokenStream{analyzer: a, pipeline: p, reader: reader}
}

// Analyze returns all tokens of text, annotations included.
func (a *Analyzer) Analyze(field, text string) ([]analysis.Token, error) {
	ts := a.TokenStream(field, strings.NewReader(text))
	defer ts.Close()
	return analysis.Collect(ts)
}

// Parse parses raw through the analyzer's cache and metrics.
func (a *Analyzer) Parse(raw string) (*ParsedText, error) {
	return a.parse(raw)
}

// TokenStream is one pass of an Analyzer over a field value.
type TokenStream struct {
	analyzer *Analyzer
	pipeline *pipeline
	reader   *Reader
}

// Next returns the next token or io.EOF.
func (ts *TokenStream) Next() (analysis.Token, error) {
	if ts.pipeline == nil {
		return analysis.Token{}, ErrStreamClosed
	}
	return ts.pipeline.injector.Next()
}

// Parsed returns the parsed value once the first token has been pulled.
func (ts *TokenStream) Parsed() *ParsedText {
	return ts.reader.Parsed()
}

// Close releases the pipeline back to the analyzer. It is safe to call
// more than once.
func (ts *TokenStream) Close() error {
	if ts.pipeline == nil {
		return nil
	}
	err := ts.reader.Close()
	ts.pipeline.injector.Reset(nil)
	ts.analyzer.pool.Put(ts.pipeline)
	ts.pipeline = nil
	return err
}
