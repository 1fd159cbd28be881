package engine

// Collector gathers matching documents in document ID order. It keeps the
// first limit documents and counts every match.
type Collector struct {
	limit int
	total int
	docs  []uint32
}

// NewCollector creates a collector keeping at most limit documents.
func NewCollector(limit int) *Collector {
	if limit <= 0 {
		limit = 10
	}
	return &Collector{limit: limit, docs: make([]uint32, 0, limit)}
}

// Collect records a matching document.
func (c *Collector) Collect(docID uint32) {
	c.total++
	if len(c.docs) < c.limit {
		c.docs = append(c.docs, docID)
	}
}

// Total returns the number of documents collected so far.
func (c *Collector) Total() int {
	return c.total
}

// Docs returns the kept documents in ascending ID order.
func (c *Collector) Docs() []uint32 {
	return c.docs
}
