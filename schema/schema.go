package schema

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// ============================================================================
// SCHEMA — Describes the shape of a row set for the engine + suggesters
// ============================================================================
// Inferred from exactly one row set; recompute when the rows change.
// Every column lands in exactly one of Measures or Dimensions.
// ============================================================================

// ColumnType is the inferred type of a column.
type ColumnType string

const (
	TypeNumber ColumnType = "number"
	TypeDate   ColumnType = "date"
	TypeString ColumnType = "string"
)

// Column is the inferred description of one column.
type Column struct {
	Name             string     `json:"name"`
	Type             ColumnType `json:"type"`
	Nullable         bool       `json:"nullable"`
	UniqueValueCount int        `json:"uniqueValueCount"`
	SampleValues     []string   `json:"sampleValues"`
}

// Schema is the complete inferred shape of a row set.
type Schema struct {
	Columns    []Column `json:"columns"`
	Measures   []Column `json:"measures"`
	Dimensions []Column `json:"dimensions"`
	RowCount   int      `json:"rowCount"`
}

// Column returns the named column.
func (s *Schema) Column(name string) (Column, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Measure returns the named measure column.
func (s *Schema) Measure(name string) (Column, bool) {
	return find(s.Measures, name)
}

// Dimension returns the named dimension column.
func (s *Schema) Dimension(name string) (Column, bool) {
	return find(s.Dimensions, name)
}

// IsMeasure reports whether name is a measure.
func (s *Schema) IsMeasure(name string) bool {
	_, ok := s.Measure(name)
	return ok
}

// IsDimension reports whether name is a dimension.
func (s *Schema) IsDimension(name string) bool {
	_, ok := s.Dimension(name)
	return ok
}

// MeasureNames returns measure names in schema order.
func (s *Schema) MeasureNames() []string { return names(s.Measures) }

// DimensionNames returns dimension names in schema order.
func (s *Schema) DimensionNames() []string { return names(s.Dimensions) }

// HasDateDimension reports whether any dimension is a date column.
func (s *Schema) HasDateDimension() bool {
	for _, d := range s.Dimensions {
		if d.Type == TypeDate {
			return true
		}
	}
	return false
}

// Fingerprint is a short deterministic identifier of the ordered
// name/type pairs. Two schemas with the same columns in the same order and
// of the same types share a fingerprint regardless of their row counts.
func (s *Schema) Fingerprint() string {
	var b strings.Builder
	for i, c := range s.Columns {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(c.Name)
		b.WriteByte(':')
		b.WriteString(string(c.Type))
	}
	return fmt.Sprintf("%016x", xxhash.Sum64String(b.String()))
}

func find(cols []Column, name string) (Column, bool) {
	for _, c := range cols {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

func names(cols []Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Name
	}
	return out
}
