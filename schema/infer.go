package schema

import (
	"errors"
	"fmt"

	"github.com/spektr-org/insightkit/dataset"
)

// ============================================================================
// INFERENCE — Heuristic column typing and measure/dimension classification
// ============================================================================
// Pipeline per column:
//   1. Collect non-null values across rows
//   2. Classify each value → numeric, date-like (YYYY-MM-DD), opaque
//   3. Dominant share over the threshold → column type (else string)
//   4. Distinct count + type → measure or dimension via Policy
//
// The thresholds are heuristics with no claim of being correct for every
// dataset. They live on Policy so callers can swap and test them.
// ============================================================================

// ErrEmptyInput is returned when there are no rows to infer from.
var ErrEmptyInput = errors.New("schema: empty input")

// ErrNoColumns is returned when the row set has no columns.
var ErrNoColumns = errors.New("schema: no columns")

// Default policy constants.
const (
	DefaultTypeThreshold    = 0.8
	DefaultMeasureMinUnique = 5
	DefaultSampleValues     = 5
)

// Policy holds the classification thresholds.
type Policy struct {
	// TypeThreshold is the share of non-null values a type must strictly
	// exceed to become the column type.
	TypeThreshold float64 `json:"typeThreshold" yaml:"type_threshold"`
	// MeasureMinUnique is the distinct-value count a number column must
	// strictly exceed to be a measure.
	MeasureMinUnique int `json:"measureMinUnique" yaml:"measure_min_unique"`
	// SampleValues caps Column.SampleValues.
	SampleValues int `json:"sampleValues" yaml:"sample_values"`
}

// DefaultPolicy returns the documented thresholds.
func DefaultPolicy() Policy {
	return Policy{
		TypeThreshold:    DefaultTypeThreshold,
		MeasureMinUnique: DefaultMeasureMinUnique,
		SampleValues:     DefaultSampleValues,
	}
}

func (p Policy) withDefaults() Policy {
	if p.TypeThreshold <= 0 || p.TypeThreshold >= 1 {
		p.TypeThreshold = DefaultTypeThreshold
	}
	if p.MeasureMinUnique <= 0 {
		p.MeasureMinUnique = DefaultMeasureMinUnique
	}
	if p.SampleValues <= 0 {
		p.SampleValues = DefaultSampleValues
	}
	return p
}

// InferOptions controls inference behavior.
type InferOptions struct {
	Policy     Policy
	SampleSize int // Max rows to inspect (0 = all)
}

// DefaultInferOptions returns sensible defaults.
func DefaultInferOptions() InferOptions {
	return InferOptions{Policy: DefaultPolicy()}
}

// ValueClass is the per-value classification used to vote on column type.
type ValueClass int

const (
	ClassOpaque ValueClass = iota
	ClassNumeric
	ClassDate
)

// ClassifyValue classifies a single non-null cell.
func ClassifyValue(v dataset.Value) ValueClass {
	switch v.Kind() {
	case dataset.KindNumber:
		return ClassNumeric
	case dataset.KindText:
		s := v.String()
		if _, ok := dataset.ParseNumber(s); ok {
			return ClassNumeric
		}
		if dataset.IsDateString(s) {
			return ClassDate
		}
	}
	return ClassOpaque
}

// ClassifyColumnType votes the column type with the default policy.
func ClassifyColumnType(values []dataset.Value) ColumnType {
	return DefaultPolicy().ClassifyColumnType(values)
}

// ClassifyColumnType returns number when the numeric share strictly
// exceeds the threshold, date when the date share does, string otherwise.
func (p Policy) ClassifyColumnType(values []dataset.Value) ColumnType {
	p = p.withDefaults()
	if len(values) == 0 {
		return TypeString
	}

	var numeric, dates int
	for _, v := range values {
		switch ClassifyValue(v) {
		case ClassNumeric:
			numeric++
		case ClassDate:
			dates++
		}
	}

	total := float64(len(values))
	switch {
	case float64(numeric)/total > p.TypeThreshold:
		return TypeNumber
	case float64(dates)/total > p.TypeThreshold:
		return TypeDate
	default:
		return TypeString
	}
}

// IsMeasure applies the fixed split: number columns with more than
// MeasureMinUnique distinct values are measures.
func (p Policy) IsMeasure(c Column) bool {
	p = p.withDefaults()
	return c.Type == TypeNumber && c.UniqueValueCount > p.MeasureMinUnique
}

// Infer builds a Schema from a row set.
func Infer(t dataset.Table, opts ...InferOptions) (*Schema, error) {
	opt := DefaultInferOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}
	policy := opt.Policy.withDefaults()

	if len(t.Rows) == 0 {
		return nil, fmt.Errorf("%w: row set has no rows", ErrEmptyInput)
	}
	if len(t.Columns) == 0 {
		return nil, ErrNoColumns
	}

	rows := t.Sample(opt.SampleSize)

	sch := &Schema{
		Columns:    make([]Column, 0, len(t.Columns)),
		Measures:   []Column{},
		Dimensions: []Column{},
		RowCount:   len(t.Rows),
	}

	for _, name := range t.Columns {
		col := analyzeColumn(name, rows, policy)
		sch.Columns = append(sch.Columns, col)
		if policy.IsMeasure(col) {
			sch.Measures = append(sch.Measures, col)
		} else {
			sch.Dimensions = append(sch.Dimensions, col)
		}
	}

	return sch, nil
}

// analyzeColumn inspects all values in a column and describes it.
func analyzeColumn(name string, rows []dataset.Row, policy Policy) Column {
	col := Column{Name: name, SampleValues: []string{}}

	values := make([]dataset.Value, 0, len(rows))
	unique := make(map[string]bool)

	for _, r := range rows {
		v := r.Get(name)
		if v.IsNull() {
			col.Nullable = true
			continue
		}
		values = append(values, v)

		s := v.String()
		if !unique[s] {
			unique[s] = true
			if len(col.SampleValues) < policy.SampleValues {
				col.SampleValues = append(col.SampleValues, s)
			}
		}
	}

	col.UniqueValueCount = len(unique)
	col.Type = policy.ClassifyColumnType(values)
	return col
}
