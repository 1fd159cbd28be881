// Package index defines the field schema of an annotext index.
package index

import (
	"errors"
	"fmt"
)

// Field type constants.
const (
	FieldTypeText          = "text"
	FieldTypeAnnotatedText = "annotated_text"
	FieldTypeKeyword       = "keyword"
	FieldTypeStoredOnly    = "stored_only"
)

// Analyzer constants.
const (
	AnalyzerStandard   = "standard"
	AnalyzerWhitespace = "whitespace"
	AnalyzerKeyword    = "keyword"
)

// Schema limits.
const (
	MaxFieldsPerSchema = 256
	MaxFieldNameLength = 255
)

// DefaultPositionIncrementGap separates the values of a multi-valued text
// field so phrases cannot match across values.
const DefaultPositionIncrementGap = 100

// Reserved field names that cannot be used in user schemas.
var reservedFieldNames = map[string]bool{
	"_id":     true,
	"_score":  true,
	"_source": true,
}

var (
	ErrSchemaFieldLimit       = errors.New("schema exceeds maximum field count")
	ErrSchemaReservedField    = errors.New("field name is reserved")
	ErrSchemaDuplicateField   = errors.New("duplicate field name")
	ErrSchemaInvalidType      = errors.New("invalid field type")
	ErrSchemaInvalidAnalyzer  = errors.New("invalid analyzer")
	ErrSchemaFieldNameTooLong = errors.New("field name exceeds maximum length")
	ErrSchemaMissingAnalyzer  = errors.New("text field requires an analyzer")
	ErrSchemaInvalidGap       = errors.New("position increment gap must not be negative")
)

// Schema describes the fields of an index.
type Schema struct {
	Fields          []FieldDef `json:"fields" koanf:"fields"`
	DefaultAnalyzer string     `json:"default_analyzer" koanf:"default_analyzer"`
}

// FieldDef defines a single field in the schema.
type FieldDef struct {
	Name        string `json:"name" koanf:"name"`
	Type        string `json:"type" koanf:"type"`
	Analyzer    string `json:"analyzer,omitempty" koanf:"analyzer"`
	Stored      bool   `json:"stored" koanf:"stored"`
	Indexed     bool   `json:"indexed" koanf:"indexed"`
	Positions   bool   `json:"positions,omitempty" koanf:"positions"`
	MultiValued bool   `json:"multi_valued,omitempty" koanf:"multi_valued"`

	// PositionIncrementGap is added between values of a multi-valued text
	// field. Nil means DefaultPositionIncrementGap.
	PositionIncrementGap *int `json:"position_increment_gap,omitempty" koanf:"position_increment_gap"`
}

// IsText reports whether the field is tokenized.
func (f FieldDef) IsText() bool {
	return f.Type == FieldTypeText || f.Type == FieldTypeAnnotatedText
}

// Gap returns the position increment gap between values.
func (f FieldDef) Gap() int {
	if f.PositionIncrementGap == nil {
		return DefaultPositionIncrementGap
	}
	return *f.PositionIncrementGap
}

// FieldID returns the index of the field with the given name.
// Returns -1 if not found.
func (s *Schema) FieldID(name string) int {
	for i, f := range s.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Field returns the definition of the named field.
func (s *Schema) Field(name string) (FieldDef, bool) {
	if id := s.FieldID(name); id >= 0 {
		return s.Fields[id], true
	}
	return FieldDef{}, false
}

// Validate checks the schema for correctness.
func (s *Schema) Validate() error {
	if len(s.Fields) > MaxFieldsPerSchema {
		return fmt.Errorf("%w: %d fields (max %d)", ErrSchemaFieldLimit, len(s.Fields), MaxFieldsPerSchema)
	}

	seen := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		if reservedFieldNames[f.Name] {
			return fmt.Errorf("%w: %q", ErrSchemaReservedField, f.Name)
		}
		if seen[f.Name] {
			return fmt.Errorf("%w: %q", ErrSchemaDuplicateField, f.Name)
		}
		seen[f.Name] = true

		if len(f.Name) > MaxFieldNameLength {
			return fmt.Errorf("%w: %q (%d bytes, max %d)", ErrSchemaFieldNameTooLong, f.Name, len(f.Name), MaxFieldNameLength)
		}
		if err := validateFieldType(f.Type); err != nil {
			return fmt.Errorf("field %q: %w", f.Name, err)
		}
		if f.Analyzer != "" {
			if err := validateAnalyzer(f.Analyzer); err != nil {
				return fmt.Errorf("field %q: %w", f.Name, err)
			}
		}
		if f.IsText() && f.Analyzer == "" && s.DefaultAnalyzer == "" {
			return fmt.Errorf("field %q: %w", f.Name, ErrSchemaMissingAnalyzer)
		}
		if f.Positions && !f.IsText() {
			return fmt.Errorf("field %q: positions only allowed on text fields", f.Name)
		}
		if f.PositionIncrementGap != nil {
			if !f.IsText() {
				return fmt.Errorf("field %q: position_increment_gap only allowed on text fields", f.Name)
			}
			if *f.PositionIncrementGap < 0 {
				return fmt.Errorf("field %q: %w", f.Name, ErrSchemaInvalidGap)
			}
		}
		if f.Type == FieldTypeStoredOnly {
			if f.Indexed {
				return fmt.Errorf("field %q: stored_only fields cannot be indexed", f.Name)
			}
			if !f.Stored {
				return fmt.Errorf("field %q: stored_only fields must be stored", f.Name)
			}
		}
	}

	if s.DefaultAnalyzer != "" {
		if err := validateAnalyzer(s.DefaultAnalyzer); err != nil {
			return fmt.Errorf("default_analyzer: %w", err)
		}
	}

	return nil
}

func validateFieldType(t string) error {
	switch t {
	case FieldTypeText, FieldTypeAnnotatedText, FieldTypeKeyword, FieldTypeStoredOnly:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrSchemaInvalidType, t)
	}
}

func validateAnalyzer(a string) error {
	switch a {
	case AnalyzerStandard, AnalyzerWhitespace, AnalyzerKeyword:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrSchemaInvalidAnalyzer, a)
	}
}
