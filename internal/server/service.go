package server

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"annotext/internal/analysis"
	"annotext/internal/annotated"
	"annotext/internal/engine"
	"annotext/internal/index"
	"annotext/internal/indexing"
	"annotext/internal/query"
)

var (
	ErrFieldNotFound    = errors.New("field not found")
	ErrDocumentNotFound = errors.New("document not found")
	ErrNotAnnotated     = errors.New("field is not an annotated_text field")
	ErrNoPositions      = errors.New("phrase query needs a field indexed with positions")
)

// Service holds the runtime state behind the HTTP API: one schema, one
// in-memory writer and the annotated analyzers built over the registry.
type Service struct {
	schema   *index.Schema
	registry *analysis.Registry
	writer   *indexing.Writer
	cache    *annotated.ParseCache
	metrics  *annotated.Metrics
	logger   *slog.Logger

	mu        sync.Mutex
	analyzers map[string]*annotated.Analyzer
}

// NewService validates schema and builds a Service for it. A cacheSize of
// zero disables the parse cache. Metrics are registered with reg when it is
// not nil; injected annotations are counted per type only for
// annotationTypes, other types share one series.
func NewService(schema *index.Schema, cacheSize int, reg prometheus.Registerer, logger *slog.Logger, annotationTypes ...string) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}

	var cache *annotated.ParseCache
	if cacheSize > 0 {
		c, err := annotated.NewParseCache(cacheSize)
		if err != nil {
			return nil, err
		}
		cache = c
	}
	metrics := annotated.NewMetrics(reg, annotationTypes...)
	registry := analysis.NewRegistry()

	return &Service{
		schema:    schema,
		registry:  registry,
		writer:    indexing.NewWriter(schema, registry, logger, annotated.WithCache(cache), annotated.WithMetrics(metrics)),
		cache:     cache,
		metrics:   metrics,
		logger:    logger,
		analyzers: make(map[string]*annotated.Analyzer),
	}, nil
}

// Schema returns the served schema.
func (s *Service) Schema() *index.Schema {
	return s.schema
}

// Analyzer returns the annotated analyzer wrapping the named registry
// analyzer. An empty name selects the schema default.
func (s *Service) Analyzer(name string) (*annotated.Analyzer, error) {
	if name == "" {
		name = s.schema.DefaultAnalyzer
	}
	if name == "" {
		name = analysis.NameStandard
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.analyzers[name]; ok {
		return a, nil
	}
	base, err := s.registry.Get(name)
	if err != nil {
		return nil, err
	}
	a := annotated.NewAnalyzer(base, annotated.WithCache(s.cache), annotated.WithMetrics(s.metrics))
	s.analyzers[name] = a
	return a, nil
}

// Analyze tokenizes annotated text with the named analyzer.
func (s *Service) Analyze(analyzer, field, text string) ([]analysis.Token, error) {
	a, err := s.Analyzer(analyzer)
	if err != nil {
		return nil, err
	}
	return a.Analyze(field, text)
}

// IndexDocuments adds docs to the writer in order. It stops at the first
// failing document and reports how many were indexed before it.
func (s *Service) IndexDocuments(docs []indexing.Document) (int, error) {
	for i, doc := range docs {
		if err := s.writer.AddDocument(doc); err != nil {
			s.logger.Warn("document rejected", "index", i, "error", err)
			return i, fmt.Errorf("document %d: %w", i, err)
		}
	}
	s.logger.Debug("documents indexed", "count", len(docs), "total", s.writer.DocCount())
	return len(docs), nil
}

// DocCount returns the number of indexed documents.
func (s *Service) DocCount() int {
	return s.writer.DocCount()
}

// Postings returns the postings of term in an indexed field.
func (s *Service) Postings(field, term string) ([]indexing.PostingEntry, error) {
	def, ok := s.schema.Field(field)
	if !ok || !def.Indexed {
		return nil, fmt.Errorf("%w: %q", ErrFieldNotFound, field)
	}
	return s.writer.Postings(field, term), nil
}

// Highlighter builds a highlighter over raw annotated values, analyzed with
// the named analyzer.
func (s *Service) Highlighter(analyzer string, values []string) (*annotated.Highlighter, error) {
	a, err := s.Analyzer(analyzer)
	if err != nil {
		return nil, err
	}
	return annotated.NewHighlighter(values, a)
}

// StoredHighlighter builds a highlighter over the stored values of an
// annotated_text field of an indexed document.
func (s *Service) StoredHighlighter(id, field string) (*annotated.Highlighter, error) {
	def, ok := s.schema.Field(field)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrFieldNotFound, field)
	}
	if def.Type != index.FieldTypeAnnotatedText {
		return nil, fmt.Errorf("%w: %q", ErrNotAnnotated, field)
	}
	values, ok := s.writer.StoredValues(id, field)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrDocumentNotFound, id)
	}
	return s.Highlighter(def.Analyzer, values)
}

// SearchHit is one matching document.
type SearchHit struct {
	DocID  uint32              `json:"doc_id"`
	ID     string              `json:"id"`
	Fields map[string][]string `json:"fields,omitempty"`
}

// SearchResult lists matches in index order.
type SearchResult struct {
	Total int         `json:"total"`
	Hits  []SearchHit `json:"hits"`
}

// Search runs q against the indexed documents and returns the first size
// matches with their stored fields.
func (s *Service) Search(q query.Query, size int) (*SearchResult, error) {
	if err := s.checkQuery(q); err != nil {
		return nil, err
	}

	res, err := engine.Execute(s.writer, q, size, engine.NewExecutionContext(0, 0, 0))
	if err != nil {
		return nil, err
	}

	out := &SearchResult{Total: res.Total, Hits: make([]SearchHit, 0, len(res.DocIDs))}
	for _, docID := range res.DocIDs {
		id, _ := s.writer.ExternalID(docID)
		out.Hits = append(out.Hits, SearchHit{
			DocID:  docID,
			ID:     id,
			Fields: s.writer.StoredFields(docID),
		})
	}
	return out, nil
}

// checkQuery rejects queries on unknown or unindexed fields and phrases on
// fields without positions.
func (s *Service) checkQuery(q query.Query) error {
	var err error
	query.Walk(q, func(node query.Query) {
		if err != nil {
			return
		}
		var (
			field         string
			needPositions bool
		)
		switch v := node.(type) {
		case *query.TermQuery:
			field = v.Field
		case *query.PhraseQuery:
			field, needPositions = v.Field, len(v.Terms) > 1
		default:
			return
		}

		def, ok := s.schema.Field(field)
		if !ok || !def.Indexed {
			err = fmt.Errorf("%w: %q", ErrFieldNotFound, field)
			return
		}
		if needPositions && !def.Positions && def.Type != index.FieldTypeAnnotatedText {
			err = fmt.Errorf("%w: %q", ErrNoPositions, field)
		}
	})
	return err
}
