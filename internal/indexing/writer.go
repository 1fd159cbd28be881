package indexing

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"annotext/internal/analysis"
	"annotext/internal/annotated"
	"annotext/internal/index"
)

var (
	ErrFieldNotMultiValued = errors.New("field is not multi-valued but received array")
	ErrInvalidFieldValue   = errors.New("invalid field value")
	ErrMissingID           = errors.New("document requires a string 'id' field")
)

// Document represents a JSON document to be indexed.
type Document struct {
	Fields map[string]interface{}
}

// Writer is the exclusive writer for a single index.
type Writer struct {
	schema   *index.Schema
	registry *analysis.Registry
	buffer   *WriteBuffer
	opts     []annotated.Option
	logger   *slog.Logger

	// annotatedAnalyzers wraps registry analyzers by name.
	annotatedAnalyzers map[string]*annotated.Analyzer

	mu     sync.Mutex
	active bool
}

// NewWriter creates a new Writer for the given schema and analyzer registry.
// opts configure the analyzers of annotated_text fields.
func NewWriter(schema *index.Schema, registry *analysis.Registry, logger *slog.Logger, opts ...annotated.Option) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{
		schema:             schema,
		registry:           registry,
		buffer:             NewWriteBuffer(),
		opts:               opts,
		logger:             logger,
		annotatedAnalyzers: make(map[string]*annotated.Analyzer),
		active:             true,
	}
}

// fieldPostings holds the analyzed terms of one field of one document.
type fieldPostings struct {
	field     string
	freqs     map[string]uint32
	positions map[string][]uint32
}

// AddDocument validates and indexes a single document into the write buffer.
// A document that fails validation or analysis leaves the buffer unchanged.
func (w *Writer) AddDocument(doc Document) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.active {
		return ErrWriterNotActive
	}

	externalID, err := extractExternalID(doc)
	if err != nil {
		return err
	}
	if err := w.checkFields(doc); err != nil {
		return err
	}
	if _, exists := w.buffer.ExternalToInternal[externalID]; exists {
		return ErrDuplicateDoc
	}
	if w.buffer.IsFull() {
		return ErrBufferFull
	}

	var postings []fieldPostings
	stored := make(map[string][]string)
	for _, fieldDef := range w.schema.Fields {
		val, exists := doc.Fields[fieldDef.Name]
		if !exists {
			continue
		}

		values, err := fieldValues(fieldDef, val)
		if err != nil {
			return fmt.Errorf("field %q: %w", fieldDef.Name, err)
		}

		if fieldDef.Indexed {
			var fp fieldPostings
			switch fieldDef.Type {
			case index.FieldTypeText, index.FieldTypeAnnotatedText:
				fp, err = w.analyzeTextField(fieldDef, values)
			case index.FieldTypeKeyword:
				fp = keywordPostings(fieldDef, values)
			}
			if err != nil {
				return fmt.Errorf("field %q: %w", fieldDef.Name, err)
			}
			if fp.field != "" {
				postings = append(postings, fp)
			}
		}

		if fieldDef.Stored {
			stored[fieldDef.Name] = values
		}
	}

	docID, err := w.buffer.AllocateDocID(externalID)
	if err != nil {
		return err
	}
	for _, fp := range postings {
		terms := make([]string, 0, len(fp.freqs))
		for term := range fp.freqs {
			terms = append(terms, term)
		}
		sort.Strings(terms)
		for _, term := range terms {
			w.buffer.AddPosting(fp.field, term, docID, fp.freqs[term], fp.positions[term])
		}
	}
	for field, values := range stored {
		w.buffer.StoreField(docID, field, values)
	}

	w.logger.Debug("document indexed", "id", externalID, "doc_id", docID, "fields", len(postings))
	return nil
}

// AddDocuments validates and indexes multiple documents into the write buffer.
func (w *Writer) AddDocuments(docs []Document) error {
	for i, doc := range docs {
		if err := w.AddDocument(doc); err != nil {
			return fmt.Errorf("document %d: %w", i, err)
		}
	}
	return nil
}

// Postings returns the postings of term in field.
func (w *Writer) Postings(field, term string) []PostingEntry {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buffer.Postings(field, term)
}

// StoredValues returns the stored values of a document field.
func (w *Writer) StoredValues(externalID, field string) ([]string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buffer.Stored(externalID, field)
}

// StoredFields returns a copy of the stored fields of an internal doc ID.
func (w *Writer) StoredFields(docID uint32) map[string][]string {
	w.mu.Lock()
	defer w.mu.Unlock()
	stored := w.buffer.StoredFields[docID]
	if stored == nil {
		return nil
	}
	out := make(map[string][]string, len(stored))
	for field, values := range stored {
		out[field] = append([]string(nil), values...)
	}
	return out
}

// ExternalID returns the external ID of an internal doc ID.
func (w *Writer) ExternalID(docID uint32) (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buffer.ExternalID(docID)
}

// DocCount returns the number of documents currently in the write buffer.
func (w *Writer) DocCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buffer.DocCount
}

// IsFull returns true if the write buffer has reached its memory or document limit.
func (w *Writer) IsFull() bool {
	return w.buffer.IsFull()
}

// Buffer returns the current write buffer.
func (w *Writer) Buffer() *WriteBuffer {
	return w.buffer
}

// Abort discards all buffered changes.
func (w *Writer) Abort() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buffer.Reset()
}

// Release deactivates the writer.
func (w *Writer) Release() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.active = false
}

// analyzeTextField tokenizes each value independently. Positions follow the
// tokens' position increments, and values are separated by the field's
// position increment gap.
func (w *Writer) analyzeTextField(fieldDef index.FieldDef, values []string) (fieldPostings, error) {
	analyzerName := fieldDef.Analyzer
	if analyzerName == "" {
		analyzerName = w.schema.DefaultAnalyzer
	}
	if analyzerName == "" {
		analyzerName = analysis.NameStandard
	}

	base, err := w.registry.Get(analyzerName)
	if err != nil {
		return fieldPostings{}, err
	}

	fp := fieldPostings{
		field:     fieldDef.Name,
		freqs:     make(map[string]uint32),
		positions: make(map[string][]uint32),
	}

	pos := -1
	for i, value := range values {
		var tokens []analysis.Token
		if fieldDef.Type == index.FieldTypeAnnotatedText {
			tokens, err = w.annotatedAnalyzer(analyzerName, base).Analyze(fieldDef.Name, value)
			if err != nil {
				return fieldPostings{}, fmt.Errorf("value %d: %w", i, err)
			}
		} else {
			tokens = base.Analyze(fieldDef.Name, value)
		}

		if i > 0 {
			pos += fieldDef.Gap()
		}
		for _, tok := range tokens {
			pos += tok.PositionIncrement
			fp.freqs[tok.Term]++
			if fieldDef.Positions || fieldDef.Type == index.FieldTypeAnnotatedText {
				fp.positions[tok.Term] = append(fp.positions[tok.Term], uint32(max(pos, 0)))
			}
		}
	}

	return fp, nil
}

func (w *Writer) annotatedAnalyzer(name string, base analysis.Analyzer) *annotated.Analyzer {
	a, ok := w.annotatedAnalyzers[name]
	if !ok {
		a = annotated.NewAnalyzer(base, w.opts...)
		w.annotatedAnalyzers[name] = a
	}
	return a
}

// checkFields rejects documents carrying fields the schema does not define.
func (w *Writer) checkFields(doc Document) error {
	var unknown []string
	for name := range doc.Fields {
		if _, ok := w.schema.Field(name); !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return fmt.Errorf("%w: %s", ErrUnknownField, strings.Join(unknown, ", "))
}

func keywordPostings(fieldDef index.FieldDef, values []string) fieldPostings {
	fp := fieldPostings{field: fieldDef.Name, freqs: make(map[string]uint32)}
	for _, v := range values {
		fp.freqs[v]++
	}
	return fp
}

// fieldValues normalizes a JSON field value into its string values.
func fieldValues(fieldDef index.FieldDef, val interface{}) ([]string, error) {
	switch v := val.(type) {
	case string:
		return []string{v}, nil
	case []interface{}:
		if fieldDef.Type == index.FieldTypeStoredOnly {
			return marshalFieldValue(v)
		}
		if !fieldDef.MultiValued {
			return nil, ErrFieldNotMultiValued
		}
		values := make([]string, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: array values must be strings", ErrInvalidFieldValue)
			}
			values[i] = s
		}
		return values, nil
	case []string:
		if !fieldDef.MultiValued && fieldDef.Type != index.FieldTypeStoredOnly {
			return nil, ErrFieldNotMultiValued
		}
		return v, nil
	default:
		if fieldDef.Type == index.FieldTypeStoredOnly {
			return marshalFieldValue(v)
		}
		return nil, fmt.Errorf("%w: must be a string or string array", ErrInvalidFieldValue)
	}
}

func extractExternalID(doc Document) (string, error) {
	idVal, ok := doc.Fields["id"]
	if !ok {
		return "", fmt.Errorf("%w: field is missing", ErrMissingID)
	}
	id, ok := idVal.(string)
	if !ok {
		return "", fmt.Errorf("%w: got %T", ErrMissingID, idVal)
	}
	return id, nil
}

func marshalFieldValue(val interface{}) ([]string, error) {
	data, err := json.Marshal(val)
	if err != nil {
		return nil, err
	}
	return []string{string(data)}, nil
}
