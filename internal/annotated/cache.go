package annotated

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of parsed values kept by NewParseCache
// when no size is given.
const DefaultCacheSize = 1024

// ParseCache memoizes Parse by raw value. Cached results are shared, which is
// safe because ParsedText is never modified after parsing. Parse errors are
// not cached.
type ParseCache struct {
	entries *lru.Cache[string, *ParsedText]
}

// NewParseCache creates a cache holding up to size parsed values.
func NewParseCache(size int) (*ParseCache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	entries, err := lru.New[string, *ParsedText](size)
	if err != nil {
		return nil, fmt.Errorf("create parse cache: %w", err)
	}
	return &ParseCache{entries: entries}, nil
}

// Parse returns the cached parse of raw, parsing it on a miss.
// A nil cache always parses.
func (c *ParseCache) Parse(raw string) (*ParsedText, error) {
	if c == nil {
		return Parse(raw)
	}
	if p, ok := c.entries.Get(raw); ok {
		return p, nil
	}
	p, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	c.entries.Add(raw, p)
	return p, nil
}

// Len returns the number of cached values.
func (c *ParseCache) Len() int {
	if c == nil {
		return 0
	}
	return c.entries.Len()
}
