package annotated

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "annotext"

// OtherType labels injected annotations whose type is not tracked.
const OtherType = "other"

// Metrics counts markup parsing and annotation injection.
// A nil *Metrics records nothing.
type Metrics struct {
	ValuesParsed        prometheus.Counter
	AnnotationsParsed   prometheus.Counter
	ParseErrors         prometheus.Counter
	AnnotationsInjected *prometheus.CounterVec

	// types bounds the type label: annotation types come from document
	// markup, so anything else is counted as OtherType.
	types map[string]struct{}
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered. Injected annotations are labelled by
// type only for the given types and DefaultType.
func NewMetrics(reg prometheus.Registerer, types ...string) *Metrics {
	m := &Metrics{
		types: map[string]struct{}{DefaultType: {}},
		ValuesParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "values_parsed_total",
			Help:      "Field values parsed for annotation markup",
		}),
		AnnotationsParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "annotations_parsed_total",
			Help:      "Annotations found in parsed field values",
		}),
		ParseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_errors_total",
			Help:      "Field values rejected because of malformed markup",
		}),
		AnnotationsInjected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "annotations_injected_total",
			Help:      "Annotation tokens injected into token streams",
		}, []string{"type"}),
	}
	for _, typ := range types {
		m.types[typ] = struct{}{}
	}
	if reg != nil {
		reg.MustRegister(m.ValuesParsed, m.AnnotationsParsed, m.ParseErrors, m.AnnotationsInjected)
	}
	return m
}

// CountParse wraps parse so every call is counted.
func (m *Metrics) CountParse(parse ParseFunc) ParseFunc {
	if parse == nil {
		parse = Parse
	}
	if m == nil {
		return parse
	}
	return func(raw string) (*ParsedText, error) {
		p, err := parse(raw)
		if err != nil {
			m.ParseErrors.Inc()
			return nil, err
		}
		m.ValuesParsed.Inc()
		m.AnnotationsParsed.Add(float64(len(p.Annotations)))
		return p, nil
	}
}

func (m *Metrics) injected(typ string) {
	if m == nil {
		return
	}
	if _, ok := m.types[typ]; !ok {
		typ = OtherType
	}
	m.AnnotationsInjected.WithLabelValues(typ).Inc()
}
