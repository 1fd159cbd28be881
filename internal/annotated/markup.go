package annotated

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// DefaultType is the token type of annotations declared without a type.
const DefaultType = "annotation"

// Parameter keys with special meaning inside the markup parameter list.
const (
	paramType  = "type"
	paramValue = "value"
)

// ErrMalformedEscape is returned when a markup parameter carries an invalid
// percent-encoded sequence.
var ErrMalformedEscape = errors.New("malformed percent-encoding in annotation")

// markupPattern matches "[label](params)" with no nested brackets or parens.
var markupPattern = regexp.MustCompile(`\[([^\]\[]*)\]\(([^\)\(]*)\)`)

// Annotation is a typed value attached to the byte range [Start, End) of
// the plain text. An empty Type means the author gave none.
type Annotation struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Type  string `json:"type,omitempty"`
	Value string `json:"value"`
}

// TypeOrDefault returns the annotation type, or DefaultType when unset.
func (a Annotation) TypeOrDefault() string {
	if a.Type == "" {
		return DefaultType
	}
	return a.Type
}

// Intersects reports whether [start, end] touches the annotation: either
// window edge falls inside it, or the window lies inside it.
func (a Annotation) Intersects(start, end int) bool {
	return (start <= a.Start && end >= a.Start) ||
		(start <= a.End && end >= a.End) ||
		(start >= a.Start && end <= a.End)
}

// Shift returns a copy of the annotation moved by delta bytes.
func (a Annotation) Shift(delta int) Annotation {
	a.Start += delta
	a.End += delta
	return a
}

func (a Annotation) String() string {
	return fmt.Sprintf("%s (%d - %d)", a.Value, a.Start, a.End)
}

// ParsedText is the result of stripping markup from a field value.
// It is immutable once returned by Parse.
type ParsedText struct {
	Markup      string
	Plain       string
	Annotations []Annotation
}

// Parse strips "[label](params)" markup from raw and returns the plain text
// together with the annotations declared by each markup span.
//
// Parameters are "&"-separated. "type=T" sets the type of the next
// "value=V"; any other "k=v" pair is a value V of type k; a pair with no "="
// is an untyped value. Keys and values are percent-decoded and empty values
// are dropped. Text that does not match the markup pattern is kept verbatim.
func Parse(raw string) (*ParsedText, error) {
	matches := markupPattern.FindAllStringSubmatchIndex(raw, -1)
	if len(matches) == 0 {
		return &ParsedText{Markup: raw, Plain: raw}, nil
	}

	var (
		sb          strings.Builder
		annotations []Annotation
		lastPos     int
	)
	sb.Grow(len(raw))

	for _, m := range matches {
		sb.WriteString(raw[lastPos:m[0]])

		label := raw[m[2]:m[3]]
		start := sb.Len()
		sb.WriteString(label)
		end := sb.Len()
		lastPos = m[1]

		var err error
		annotations, err = appendParams(annotations, raw[m[4]:m[5]], start, end)
		if err != nil {
			return nil, err
		}
	}
	sb.WriteString(raw[lastPos:])

	return &ParsedText{
		Markup:      raw,
		Plain:       sb.String(),
		Annotations: annotations,
	}, nil
}

func appendParams(dst []Annotation, params string, start, end int) ([]Annotation, error) {
	var pendingType string
	for _, pair := range strings.Split(params, "&") {
		kv := strings.Split(pair, "=")
		switch len(kv) {
		case 1:
			value, err := unescape(kv[0])
			if err != nil {
				return nil, err
			}
			if value != "" {
				dst = append(dst, Annotation{Start: start, End: end, Value: value})
			}
		case 2:
			key, err := unescape(kv[0])
			if err != nil {
				return nil, err
			}
			value, err := unescape(kv[1])
			if err != nil {
				return nil, err
			}
			switch key {
			case paramType:
				pendingType = value
			case paramValue:
				if value != "" {
					dst = append(dst, Annotation{Start: start, End: end, Type: pendingType, Value: value})
				}
				pendingType = ""
			default:
				if value != "" {
					dst = append(dst, Annotation{Start: start, End: end, Type: key, Value: value})
				}
			}
		}
	}
	return dst, nil
}

func unescape(s string) (string, error) {
	v, err := url.QueryUnescape(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrMalformedEscape, s, err)
	}
	return v, nil
}
