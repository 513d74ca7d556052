package engine

import (
	"math"
	"sort"
	"strings"

	"github.com/spektr-org/insightkit/dataset"
	"github.com/spektr-org/insightkit/schema"
)

// ============================================================================
// AGGREGATORS — Grouping, Aggregation, and Sorting via RowView
// ============================================================================
// Pipeline: group by dimension → sum (avg for scatter) per measure → sort
// per chart type. Grouping produces SubViews (index lists into the parent).
// Null/missing dimension values group under UnknownKey. Unparseable measure
// cells count as 0.
// ============================================================================

// UnknownKey is the group key for null or missing dimension values.
const UnknownKey = "Unknown"

// Group is an intermediate grouping result.
type Group struct {
	Key  string
	View RowView
}

// Aggregate groups rows by dimension and aggregates each measure.
func Aggregate(rows []dataset.Row, dimension string, measures []string, chartType ChartType) ChartDataset {
	return AggregateView(SliceView(rows), dimension, measures, chartType)
}

// AggregateView is Aggregate over any RowView.
func AggregateView(view RowView, dimension string, measures []string, chartType ChartType) ChartDataset {
	ds := ChartDataset{
		Dimension: dimension,
		Measures:  append([]string(nil), measures...),
		Points:    []DataPoint{},
	}
	if view.Len() == 0 {
		return ds
	}

	groups := GroupBy(view, dimension)
	ds.Points = make([]DataPoint, 0, len(groups))
	for _, g := range groups {
		p := DataPoint{Key: g.Key, Values: make([]float64, len(measures))}
		for j, m := range measures {
			if chartType == ChartScatter {
				p.Values[j] = AvgColumn(g.View, m)
			} else {
				p.Values[j] = SumColumn(g.View, m)
			}
		}
		ds.Points = append(ds.Points, p)
	}

	SortPoints(ds.Points, chartType)
	return ds
}

// ============================================================================
// GROUPING
// ============================================================================

// GroupBy partitions a view by the stringified value of column, groups in
// first-appearance order.
func GroupBy(view RowView, column string) []Group {
	grouped := make(map[string][]int)
	order := make([]string, 0)

	for i := 0; i < view.Len(); i++ {
		key := groupKey(view.Value(i, column))
		if _, exists := grouped[key]; !exists {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], i)
	}

	groups := make([]Group, 0, len(order))
	for _, key := range order {
		groups = append(groups, Group{Key: key, View: newSubView(view, grouped[key])})
	}
	return groups
}

func groupKey(v dataset.Value) string {
	if v.IsNull() {
		return UnknownKey
	}
	return v.String()
}

// ============================================================================
// COLUMN AGGREGATES
// ============================================================================

// SumColumn sums a column across a view; unparseable cells count as 0.
func SumColumn(view RowView, column string) float64 {
	var total float64
	for i := 0; i < view.Len(); i++ {
		total += view.Value(i, column).FloatOrZero()
	}
	return total
}

// AvgColumn averages a column over every row of the view.
func AvgColumn(view RowView, column string) float64 {
	n := view.Len()
	if n == 0 {
		return 0
	}
	return SumColumn(view, column) / float64(n)
}

// CountColumn counts non-null cells; AllRows counts rows.
func CountColumn(view RowView, column string) int {
	if column == AllRows {
		return view.Len()
	}
	n := 0
	for i := 0; i < view.Len(); i++ {
		if !view.Value(i, column).IsNull() {
			n++
		}
	}
	return n
}

// MaxColumn returns the largest numeric cell, 0 when none parse.
func MaxColumn(view RowView, column string) float64 {
	return extreme(view, column, func(a, b float64) bool { return a > b })
}

// MinColumn returns the smallest numeric cell, 0 when none parse.
func MinColumn(view RowView, column string) float64 {
	return extreme(view, column, func(a, b float64) bool { return a < b })
}

func extreme(view RowView, column string, better func(a, b float64) bool) float64 {
	var m float64
	found := false
	for i := 0; i < view.Len(); i++ {
		v, ok := view.Value(i, column).Float()
		if !ok {
			continue
		}
		if !found || better(v, m) {
			m = v
			found = true
		}
	}
	return m
}

// ColumnValues returns the numeric reading of every row (0 when unparseable).
func ColumnValues(view RowView, column string) []float64 {
	out := make([]float64, view.Len())
	for i := range out {
		out[i] = view.Value(i, column).FloatOrZero()
	}
	return out
}

// ============================================================================
// SORTING
// ============================================================================

// SortPoints orders points per chart type. Value-sorted types go descending
// by the first measure with ties by key ascending, so the result does not
// depend on input order. Ordered types go ascending by key (CompareKeys),
// stable on ties.
func SortPoints(points []DataPoint, chartType ChartType) {
	if chartType.Ordered() {
		sort.SliceStable(points, func(i, j int) bool {
			return CompareKeys(points[i].Key, points[j].Key) < 0
		})
		return
	}

	sort.SliceStable(points, func(i, j int) bool {
		a, b := firstValue(points[i]), firstValue(points[j])
		if a != b {
			return a > b
		}
		return points[i].Key < points[j].Key
	})
}

func firstValue(p DataPoint) float64 {
	if len(p.Values) == 0 || math.IsNaN(p.Values[0]) {
		return math.Inf(-1)
	}
	return p.Values[0]
}

// CompareKeys orders dimension keys: numerically when both parse as
// numbers, chronologically when both parse as dates, else by a
// case-sensitive string compare.
func CompareKeys(a, b string) int {
	if x, ok := dataset.ParseNumber(a); ok {
		if y, ok := dataset.ParseNumber(b); ok {
			return compareFloat(x, y)
		}
	}
	if x, ok := dataset.ParseDate(a); ok {
		if y, ok := dataset.ParseDate(b); ok {
			return x.Compare(y)
		}
	}
	return strings.Compare(a, b)
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// ============================================================================
// LABELS
// ============================================================================

// UniqueValues returns distinct non-null stringified values of a column in
// first-appearance order.
func UniqueValues(view RowView, column string) []string {
	seen := make(map[string]bool)
	var result []string
	for i := 0; i < view.Len(); i++ {
		v := view.Value(i, column)
		if v.IsNull() {
			continue
		}
		s := v.String()
		if !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	return result
}

// LabelForCalculation returns a human-readable label for a calculation.
func LabelForCalculation(c Calculation) string {
	switch c {
	case CalcSum:
		return "Total"
	case CalcCount:
		return "Count"
	case CalcAvg:
		return "Average"
	case CalcMax:
		return "Maximum"
	case CalcMin:
		return "Minimum"
	default:
		return "Value"
	}
}

// labelFor humanizes a column name for axis and table headings.
func labelFor(column string) string {
	if column == AllRows {
		return "Records"
	}
	return schema.Humanize(column)
}

// RoundTo2 rounds to 2 decimal places.
func RoundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
