package indexing

import (
	"errors"
	"sync/atomic"
)

// Buffer limits.
const (
	DefaultBufferMemoryLimit = 64 * 1024 * 1024 // 64MB
	DefaultMaxDocsPerSegment = 100_000
)

var (
	ErrBufferFull      = errors.New("write buffer memory limit reached")
	ErrDuplicateDoc    = errors.New("duplicate document ID in buffer")
	ErrUnknownField    = errors.New("unknown field in document")
	ErrWriterNotActive = errors.New("writer is not active")
)

// PostingEntry represents a single posting for a term in a field.
type PostingEntry struct {
	DocID     uint32   `json:"doc_id"`
	Freq      uint32   `json:"freq"`
	Positions []uint32 `json:"positions,omitempty"`
}

// PostingsList accumulates postings for a single term in a single field.
type PostingsList struct {
	Entries []PostingEntry
}

// WriteBuffer is an in-memory inverted index with stored field values.
type WriteBuffer struct {
	// InvertedIndex: field → term → postings list
	InvertedIndex map[string]map[string]*PostingsList

	// StoredFields: docID → field → values, one per field value
	StoredFields map[uint32]map[string][]string

	// ExternalToInternal maps external doc IDs to internal doc IDs.
	ExternalToInternal map[string]uint32

	// InternalToExternal is indexed by internal doc ID.
	InternalToExternal []string

	NextDocID uint32
	DocCount  int
	TermCount int

	memoryUsed  atomic.Int64
	MemoryLimit int64
	MaxDocs     int
}

// NewWriteBuffer creates a new empty write buffer.
func NewWriteBuffer() *WriteBuffer {
	return &WriteBuffer{
		InvertedIndex:      make(map[string]map[string]*PostingsList),
		StoredFields:       make(map[uint32]map[string][]string),
		ExternalToInternal: make(map[string]uint32),
		MemoryLimit:        DefaultBufferMemoryLimit,
		MaxDocs:            DefaultMaxDocsPerSegment,
	}
}

// AddPosting adds a posting entry for the given field and term.
func (b *WriteBuffer) AddPosting(field, term string, docID uint32, freq uint32, positions []uint32) {
	fieldMap, ok := b.InvertedIndex[field]
	if !ok {
		fieldMap = make(map[string]*PostingsList)
		b.InvertedIndex[field] = fieldMap
	}

	pl, ok := fieldMap[term]
	if !ok {
		pl = &PostingsList{}
		fieldMap[term] = pl
		b.TermCount++
	}

	pl.Entries = append(pl.Entries, PostingEntry{
		DocID:     docID,
		Freq:      freq,
		Positions: positions,
	})

	// Approximate memory tracking.
	b.memoryUsed.Add(int64(16 + len(term) + len(positions)*4))
}

// Postings returns the postings of term in field, or nil.
func (b *WriteBuffer) Postings(field, term string) []PostingEntry {
	pl, ok := b.InvertedIndex[field][term]
	if !ok {
		return nil
	}
	return pl.Entries
}

// StoreField stores the values of a field for a document.
func (b *WriteBuffer) StoreField(docID uint32, field string, values []string) {
	fields, ok := b.StoredFields[docID]
	if !ok {
		fields = make(map[string][]string)
		b.StoredFields[docID] = fields
	}
	fields[field] = values

	size := len(field)
	for _, v := range values {
		size += len(v)
	}
	b.memoryUsed.Add(int64(size))
}

// Stored returns the stored values of field for the document with the
// given external ID.
func (b *WriteBuffer) Stored(externalID, field string) ([]string, bool) {
	docID, ok := b.ExternalToInternal[externalID]
	if !ok {
		return nil, false
	}
	values, ok := b.StoredFields[docID][field]
	return values, ok
}

// ExternalID returns the external ID of an internal doc ID.
func (b *WriteBuffer) ExternalID(docID uint32) (string, bool) {
	if int(docID) >= len(b.InternalToExternal) {
		return "", false
	}
	return b.InternalToExternal[docID], true
}

// AllocateDocID assigns an internal doc ID for an external ID.
// Returns an error if the external ID is already in the buffer.
func (b *WriteBuffer) AllocateDocID(externalID string) (uint32, error) {
	if _, exists := b.ExternalToInternal[externalID]; exists {
		return 0, ErrDuplicateDoc
	}

	docID := b.NextDocID
	b.NextDocID++
	b.DocCount++
	b.ExternalToInternal[externalID] = docID
	b.InternalToExternal = append(b.InternalToExternal, externalID)
	return docID, nil
}

// MemoryUsed returns the approximate memory used by the buffer.
func (b *WriteBuffer) MemoryUsed() int64 {
	return b.memoryUsed.Load()
}

// IsFull returns true if the buffer has reached its memory or document limit.
func (b *WriteBuffer) IsFull() bool {
	if b.DocCount >= b.MaxDocs {
		return true
	}
	return b.memoryUsed.Load() >= b.MemoryLimit
}

// Reset clears the buffer for reuse.
func (b *WriteBuffer) Reset() {
	b.InvertedIndex = make(map[string]map[string]*PostingsList)
	b.StoredFields = make(map[uint32]map[string][]string)
	b.ExternalToInternal = make(map[string]uint32)
	b.InternalToExternal = nil
	b.NextDocID = 0
	b.DocCount = 0
	b.TermCount = 0
	b.memoryUsed.Store(0)
}
