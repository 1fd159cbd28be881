package analysis

import (
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"
)

func TestSliceStream(t *testing.T) {
	in := NewWhitespaceAnalyzer().Analyze("field", "a b c")
	ts := NewSliceStream(in)

	got, err := Collect(ts)
	if err != nil {
		t.Fatal(err)
	}
	if terms := tokenTerms(got); !stringSliceEqual(terms, []string{"a", "b", "c"}) {
		t.Errorf("terms = %v", terms)
	}

	// Exhausted streams keep returning io.EOF.
	if _, err := ts.Next(); err != io.EOF {
		t.Errorf("Next after end = %v, want io.EOF", err)
	}
}

func TestReaderStream(t *testing.T) {
	ts := NewReaderStream(NewStandardAnalyzer(), "body", strings.NewReader("Hello, World"))

	got, err := Collect(ts)
	if err != nil {
		t.Fatal(err)
	}
	if terms := tokenTerms(got); !stringSliceEqual(terms, []string{"hello", "world"}) {
		t.Errorf("terms = %v", terms)
	}
}

func TestReaderStream_ReadErrorPropagates(t *testing.T) {
	readErr := errors.New("disk on fire")
	ts := NewReaderStream(NewStandardAnalyzer(), "body", iotest.ErrReader(readErr))

	_, err := ts.Next()
	if err != readErr {
		t.Fatalf("Next error = %v, want %v", err, readErr)
	}

	_, err = Collect(NewReaderStream(NewStandardAnalyzer(), "body", iotest.ErrReader(readErr)))
	if err != readErr {
		t.Errorf("Collect error = %v, want %v", err, readErr)
	}
}

func TestReaderStream_Empty(t *testing.T) {
	got, err := Collect(NewReaderStream(NewWhitespaceAnalyzer(), "body", strings.NewReader("")))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("expected no tokens, got %v", got)
	}
}
