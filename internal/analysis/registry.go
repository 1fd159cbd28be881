package analysis

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Built-in analyzer names.
const (
	NameStandard   = "standard"
	NameWhitespace = "whitespace"
	NameKeyword    = "keyword"
)

var (
	ErrUnknownAnalyzer = errors.New("unknown analyzer")
	ErrAnalyzerExists  = errors.New("analyzer already registered")
)

// Registry manages analyzer instances by name.
type Registry struct {
	analyzers map[string]Analyzer
	mu        sync.RWMutex
}

// NewRegistry creates a Registry with the built-in analyzers registered.
func NewRegistry() *Registry {
	r := &Registry{
		analyzers: make(map[string]Analyzer),
	}
	r.analyzers[NameStandard] = NewStandardAnalyzer()
	r.analyzers[NameWhitespace] = NewWhitespaceAnalyzer()
	r.analyzers[NameKeyword] = NewKeywordAnalyzer()
	return r
}

// Get returns the analyzer registered under the given name.
func (r *Registry) Get(name string) (Analyzer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.analyzers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAnalyzer, name)
	}
	return a, nil
}

// Register adds a custom analyzer to the registry.
func (r *Registry) Register(name string, a Analyzer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.analyzers[name]; exists {
		return fmt.Errorf("%w: %q", ErrAnalyzerExists, name)
	}
	r.analyzers[name] = a
	return nil
}

// Names returns the sorted names of all registered analyzers.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.analyzers))
	for name := range r.analyzers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
