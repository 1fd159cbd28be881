package testutil

import (
	"fmt"
	"testing"

	"annotext/internal/analysis"
	"annotext/internal/annotated"
	"annotext/internal/index"
	"annotext/internal/indexing"
)

// BasicSchema returns a schema suitable for most tests.
func BasicSchema() *index.Schema {
	return &index.Schema{
		DefaultAnalyzer: index.AnalyzerStandard,
		Fields: []index.FieldDef{
			{Name: "id", Type: index.FieldTypeKeyword, Stored: true, Indexed: true},
			{Name: "title", Type: index.FieldTypeText, Analyzer: index.AnalyzerStandard, Stored: true, Indexed: true, Positions: true},
			{Name: "body", Type: index.FieldTypeAnnotatedText, Analyzer: index.AnalyzerWhitespace, Stored: true, Indexed: true, MultiValued: true},
			{Name: "tags", Type: index.FieldTypeKeyword, Stored: true, Indexed: true, MultiValued: true},
			{Name: "metadata", Type: index.FieldTypeStoredOnly, Stored: true, Indexed: false},
		},
	}
}

// MultiFieldSchema returns a schema with many annotated fields for stress testing.
func MultiFieldSchema() *index.Schema {
	s := &index.Schema{DefaultAnalyzer: index.AnalyzerStandard}
	s.Fields = append(s.Fields, index.FieldDef{Name: "id", Type: index.FieldTypeKeyword, Stored: true, Indexed: true})
	for i := 0; i < 50; i++ {
		s.Fields = append(s.Fields, index.FieldDef{
			Name:    "field_" + string(rune('a'+i%26)) + string(rune('0'+i/26)),
			Type:    index.FieldTypeAnnotatedText,
			Stored:  i%3 == 0,
			Indexed: true,
		})
	}
	return s
}

// SampleDocuments returns a small set of annotated test documents.
func SampleDocuments() []indexing.Document {
	return []indexing.Document{
		{Fields: map[string]interface{}{
			"id":    "doc-1",
			"title": "City election results",
			"body":  "New mayor is [John Smith](type=person&value=John%20Smith) today",
			"tags":  []interface{}{"politics"},
		}},
		{Fields: map[string]interface{}{
			"id":    "doc-2",
			"title": "Concert review",
			"body":  "[Beck](type=artist&value=Beck&type=role&value=Guitarist&Beck%20Hansen) played in [Paris](type=city&value=Paris)",
			"tags":  []interface{}{"music", "review"},
		}},
		{Fields: map[string]interface{}{
			"id":    "doc-3",
			"title": "Company news",
			"body": []interface{}{
				"[Apple Inc.](type=org&value=Apple%20Inc.) hired [John Smith](type=person&value=John%20Smith)",
				"Shares rose in [Paris](type=city&value=Paris)",
			},
			"tags": []interface{}{"business"},
		}},
		{Fields: map[string]interface{}{
			"id":       "doc-4",
			"title":    "Plain text only",
			"body":     "No markup at all in this body",
			"metadata": map[string]interface{}{"source": "wire"},
		}},
	}
}

// AnnotatedBody builds a body value of n sentences, each annotating a
// person, for load tests.
func AnnotatedBody(n int) string {
	var body string
	for i := 0; i < n; i++ {
		if i > 0 {
			body += " "
		}
		body += fmt.Sprintf("Reporter %d met [Person %d](type=person&value=Person%%20%d) near [Site %d](type=place&value=Site%%20%d&landmark).", i, i, i, i, i)
	}
	return body
}

// IngestDocuments indexes a set of documents into a writer.
func IngestDocuments(t testing.TB, w *indexing.Writer, docs []indexing.Document) {
	t.Helper()
	for _, doc := range docs {
		if err := w.AddDocument(doc); err != nil {
			t.Fatalf("AddDocument(%v): %v", doc.Fields["id"], err)
		}
	}
}

// CreatePopulatedWriter creates a writer with sample documents already ingested.
func CreatePopulatedWriter(t testing.TB, opts ...annotated.Option) *indexing.Writer {
	t.Helper()
	w := indexing.NewWriter(BasicSchema(), analysis.NewRegistry(), nil, opts...)
	IngestDocuments(t, w, SampleDocuments())
	return w
}

// Terms returns the terms of tokens in order.
func Terms(tokens []analysis.Token) []string {
	terms := make([]string, len(tokens))
	for i, t := range tokens {
		terms[i] = t.Term
	}
	return terms
}
