package annotated

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"annotext/internal/analysis"
)

func TestParseCache(t *testing.T) {
	c, err := NewParseCache(2)
	require.NoError(t, err)

	p1, err := c.Parse("[a](value=x)")
	require.NoError(t, err)
	p2, err := c.Parse("[a](value=x)")
	require.NoError(t, err)
	assert.Same(t, p1, p2)
	assert.Equal(t, 1, c.Len())

	_, err = c.Parse("[a](%zz)")
	assert.ErrorIs(t, err, ErrMalformedEscape)
	assert.Equal(t, 1, c.Len(), "errors are not cached")

	_, _ = c.Parse("b")
	_, _ = c.Parse("c")
	assert.Equal(t, 2, c.Len(), "bounded by size")
}

func TestParseCache_Nil(t *testing.T) {
	var c *ParseCache
	p, err := c.Parse("[a](value=x)")
	require.NoError(t, err)
	assert.Equal(t, "a", p.Plain)
	assert.Zero(t, c.Len())
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg, "person")
	a := NewAnalyzer(analysis.NewWhitespaceAnalyzer(), WithMetrics(m))

	_, err := a.Analyze("body", "[x](type=person&value=X&value=Y) z")
	require.NoError(t, err)
	_, err = a.Analyze("body", "[a](type=t1&value=A) [b](t2=B) [c](t3=C)")
	require.NoError(t, err)
	_, err = a.Analyze("body", "[x](%zz)")
	require.Error(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ValuesParsed))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.AnnotationsParsed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ParseErrors))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AnnotationsInjected.WithLabelValues("person")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AnnotationsInjected.WithLabelValues(DefaultType)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.AnnotationsInjected.WithLabelValues(OtherType)))

	// Author-chosen types never become label values.
	assert.Equal(t, 3, testutil.CollectAndCount(m.AnnotationsInjected))
}

func TestMetrics_Nil(t *testing.T) {
	var m *Metrics
	parse := m.CountParse(nil)
	p, err := parse("[a](value=b)")
	require.NoError(t, err)
	assert.Len(t, p.Annotations, 1)
	m.injected("x")
}

func TestAnalyzer_WithCache(t *testing.T) {
	c, err := NewParseCache(8)
	require.NoError(t, err)
	a := NewAnalyzer(analysis.NewWhitespaceAnalyzer(), WithCache(c))

	for i := 0; i < 2; i++ {
		tokens, err := a.Analyze("body", "[a b](value=ab)")
		require.NoError(t, err)
		assert.Len(t, tokens, 3)
	}
	assert.Equal(t, 1, c.Len())
}
