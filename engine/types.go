package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ============================================================================
// ENGINE TYPES — KPI / chart definitions and their computed results
// ============================================================================
// Definitions are produced by the suggesters (AI or fallback) and consumed
// here. Results are derived values: recompute them when the rows or the
// definition change, never patch them in place.
// ============================================================================

// AllRows is the KPI column marker meaning "every row" rather than a column.
const AllRows = "*"

// Errors reported as warnings while evaluating definitions.
var (
	ErrUnknownCalculation = errors.New("engine: unknown calculation")
	ErrUnknownChartType   = errors.New("engine: unknown chart type")
	ErrIncompleteChart    = errors.New("engine: chart needs at least one measure and one dimension")
	ErrColumnRequired     = errors.New("engine: calculation requires a column")
	ErrEmptySample        = errors.New("engine: empty sample")
)

// ============================================================================
// ENUMS
// ============================================================================

// ChartType is the visualization a dataset is shaped for.
type ChartType string

const (
	ChartBar     ChartType = "bar"
	ChartLine    ChartType = "line"
	ChartPie     ChartType = "pie"
	ChartArea    ChartType = "area"
	ChartScatter ChartType = "scatter"
)

// ChartTypes lists every recognized chart type.
var ChartTypes = []ChartType{ChartBar, ChartLine, ChartPie, ChartArea, ChartScatter}

// Valid reports whether t is a recognized chart type.
func (t ChartType) Valid() bool {
	switch t {
	case ChartBar, ChartLine, ChartPie, ChartArea, ChartScatter:
		return true
	}
	return false
}

// Ordered reports whether datasets of this type are sorted by dimension key
// rather than by value.
func (t ChartType) Ordered() bool {
	return t == ChartLine || t == ChartArea
}

// Calculation is a KPI aggregation kind.
type Calculation string

const (
	CalcSum   Calculation = "sum"
	CalcAvg   Calculation = "avg"
	CalcCount Calculation = "count"
	CalcMax   Calculation = "max"
	CalcMin   Calculation = "min"
)

// Valid reports whether c is a recognized calculation.
func (c Calculation) Valid() bool {
	switch c {
	case CalcSum, CalcAvg, CalcCount, CalcMax, CalcMin:
		return true
	}
	return false
}

// Format is a display format for KPI values.
type Format string

const (
	FormatCurrency Format = "currency"
	FormatPercent  Format = "percent"
	FormatNumber   Format = "number"
)

// Valid reports whether f is a recognized format.
func (f Format) Valid() bool {
	switch f {
	case FormatCurrency, FormatPercent, FormatNumber:
		return true
	}
	return false
}

// ============================================================================
// KPI
// ============================================================================

// KPIDefinition names a single headline number to compute.
type KPIDefinition struct {
	Name        string      `json:"name"`
	Calculation Calculation `json:"calculation"`
	Column      string      `json:"column"` // measure name or AllRows
	Format      Format      `json:"format"`
}

// withDefaults fills the documented defaults: sum and number.
func (d KPIDefinition) withDefaults() KPIDefinition {
	if d.Calculation == "" {
		d.Calculation = CalcSum
	}
	if d.Format == "" {
		d.Format = FormatNumber
	}
	return d
}

// KPIResult is a KPIDefinition applied to a row set.
type KPIResult struct {
	Name           string      `json:"name"`
	Value          float64     `json:"value"`
	FormattedValue string      `json:"formattedValue"`
	Calculation    Calculation `json:"calculation"`
	Column         string      `json:"column"`
	Format         Format      `json:"format"`
}

// ============================================================================
// CHART
// ============================================================================

// ChartDefinition names a chart to build. The first dimension is the
// grouping key; every measure becomes one value per point.
type ChartDefinition struct {
	Title      string    `json:"title"`
	Type       ChartType `json:"type"`
	Measures   []string  `json:"measures"`
	Dimensions []string  `json:"dimensions"`
}

// DataPoint is one group: the dimension key and one aggregated value per
// measure, aligned with ChartDataset.Measures.
type DataPoint struct {
	Key    string
	Values []float64
}

// ChartDataset is the ordered, aggregated output of Aggregate.
type ChartDataset struct {
	Dimension string
	Measures  []string
	Points    []DataPoint
}

// Len returns the number of points.
func (d ChartDataset) Len() int { return len(d.Points) }

// Keys returns the dimension keys in dataset order.
func (d ChartDataset) Keys() []string {
	keys := make([]string, len(d.Points))
	for i, p := range d.Points {
		keys[i] = p.Key
	}
	return keys
}

// Value returns the aggregated value of measure at point i.
func (d ChartDataset) Value(i int, measure string) float64 {
	if i < 0 || i >= len(d.Points) {
		return 0
	}
	for j, m := range d.Measures {
		if m == measure && j < len(d.Points[i].Values) {
			return d.Points[i].Values[j]
		}
	}
	return 0
}

// MarshalJSON renders the dataset as an ordered array of flat objects,
// {"<dimension>": key, "<measure>": value, ...}, keys in dimension-then-
// measure order.
func (d ChartDataset) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, p := range d.Points {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		if err := writeField(&buf, d.Dimension, p.Key); err != nil {
			return nil, err
		}
		for j, m := range d.Measures {
			if m == d.Dimension {
				continue
			}
			v := 0.0
			if j < len(p.Values) && !math.IsNaN(p.Values[j]) && !math.IsInf(p.Values[j], 0) {
				v = p.Values[j]
			}
			buf.WriteByte(',')
			if err := writeField(&buf, m, v); err != nil {
				return nil, err
			}
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func writeField(buf *bytes.Buffer, key string, value any) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	v, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("field %q: %w", key, err)
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
	return nil
}

// ============================================================================
// FILTERS
// ============================================================================

// FilterSet maps column name to allowed stringified values.
// AND across columns, OR within a column. Absent or empty = no constraint.
type FilterSet map[string][]string

// HasFilter returns true if a specific column filter is set.
func (f FilterSet) HasFilter(column string) bool {
	return len(f[column]) > 0
}

// IsEmpty returns true if no constraint is set.
func (f FilterSet) IsEmpty() bool {
	for _, vals := range f {
		if len(vals) > 0 {
			return false
		}
	}
	return true
}

// FilterOption is the set of discrete choices offered for one dimension.
type FilterOption struct {
	Column string   `json:"column"`
	Values []string `json:"values"`
}

// ============================================================================
// WARNINGS — non-fatal computation problems
// ============================================================================

// Warning reports a definition that was skipped. It implements error so it
// can be matched with errors.Is against the package sentinels.
type Warning struct {
	Kind    string `json:"kind"` // "kpi", "chart", "stats"
	Item    string `json:"item"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func newWarning(kind, item string, err error) Warning {
	return Warning{Kind: kind, Item: item, Message: err.Error(), Err: err}
}

func (w Warning) Error() string {
	return fmt.Sprintf("%s %q skipped: %s", w.Kind, w.Item, w.Message)
}

func (w Warning) Unwrap() error { return w.Err }

// ============================================================================
// CHART CONFIG — render-ready series
// ============================================================================

// ChartConfig defines how to render a chart.
type ChartConfig struct {
	ChartType  ChartType     `json:"chartType"`
	Title      string        `json:"title"`
	XAxis      string        `json:"xAxis,omitempty"`
	YAxis      string        `json:"yAxis,omitempty"`
	Series     []ChartSeries `json:"series"`
	Colors     []string      `json:"colors,omitempty"`
	ShowLegend bool          `json:"showLegend"`
	ShowGrid   bool          `json:"showGrid"`
}

// ChartSeries represents a data series in a chart.
type ChartSeries struct {
	Name  string       `json:"name"`
	Data  []ChartPoint `json:"data"`
	Color string       `json:"color,omitempty"`
}

// ChartPoint represents a single data point.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// ============================================================================
// REPORT — Evaluate output
// ============================================================================

// ChartResult pairs a definition with its dataset and render config.
type ChartResult struct {
	Definition ChartDefinition `json:"definition"`
	Dataset    ChartDataset    `json:"dataset"`
	Config     *ChartConfig    `json:"config,omitempty"`
}

// Report is the engine's render-ready output for a row set.
type Report struct {
	TotalRows   int           `json:"totalRows"`
	MatchedRows int           `json:"matchedRows"`
	KPIs        []KPIResult   `json:"kpis"`
	Charts      []ChartResult `json:"charts"`
	Growth      *GrowthData   `json:"growth,omitempty"`
	Warnings    []Warning     `json:"warnings,omitempty"`
}
