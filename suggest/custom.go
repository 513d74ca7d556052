package suggest

import (
	"fmt"

	"github.com/spektr-org/insightkit/dataset"
	"github.com/spektr-org/insightkit/engine"
	"github.com/spektr-org/insightkit/schema"
)

// ============================================================================
// CUSTOM COMBINATIONS — One chart per type over an explicit selection
// ============================================================================
//   bar  → first measure × first dimension
//   line → first measure × first date dimension (else first dimension)
//   pie  → first measure × first dimension with ≤10 distinct values
//   area → up to two measures × date dimension (else first dimension)
// ============================================================================

var combinationTypes = []engine.ChartType{engine.ChartBar, engine.ChartLine, engine.ChartPie, engine.ChartArea}

var rationales = map[engine.ChartType]string{
	engine.ChartBar:  "Bar charts make it easy to compare totals across categories.",
	engine.ChartLine: "Line charts show how values move across an ordered or time-based dimension.",
	engine.ChartPie:  "Pie charts show how each category contributes to the whole.",
	engine.ChartArea: "Area charts show cumulative volume and how measures stack over time.",
}

func rationaleFor(t engine.ChartType) string {
	if r, ok := rationales[t]; ok {
		return r
	}
	return "This chart highlights the selected measures across the selected dimensions."
}

func insightsFor(t engine.ChartType, measure, dimension string) []string {
	m, d := schema.Humanize(measure), schema.Humanize(dimension)
	switch t {
	case engine.ChartBar:
		return []string{
			fmt.Sprintf("Identify which %s has the highest %s", d, m),
			fmt.Sprintf("Spot %s values with unusually low %s", d, m),
		}
	case engine.ChartLine:
		return []string{
			fmt.Sprintf("Track how %s changes across %s", m, d),
			"Look for peaks, dips and turning points",
		}
	case engine.ChartPie:
		return []string{
			fmt.Sprintf("See each %s's share of total %s", d, m),
			"Check whether a few categories dominate",
		}
	case engine.ChartArea:
		return []string{
			fmt.Sprintf("Follow the cumulative volume of %s over %s", m, d),
			"Compare how the selected measures grow together",
		}
	default:
		return []string{}
	}
}

// CustomCombinations builds the deterministic combination set for sel.
// Empty selection lists fall back to the schema's measures and dimensions.
// Cardinality of columns missing from the schema is computed over sample.
func CustomCombinations(sel Selection, sch *schema.Schema, sample []dataset.Row) CombinationSet {
	out := CombinationSet{Combinations: []Combination{}, Source: SourceFallback}
	measures, dimensions := resolveSelection(sel, sch)
	if len(measures) == 0 || len(dimensions) == 0 {
		return out
	}

	m := measures[0]
	first := dimensions[0]
	dateDim := pickDimension(dimensions, first, func(d string) bool { return isDate(d, sch, sample) })
	pieDim := pickDimension(dimensions, first, func(d string) bool { return cardinality(d, sch, sample) <= MaxPieSlices })

	for _, t := range combinationTypes {
		if len(out.Combinations) >= MaxCombinations {
			break
		}
		var ms []string
		var dim string
		switch t {
		case engine.ChartBar:
			ms, dim = []string{m}, first
		case engine.ChartLine:
			ms, dim = []string{m}, dateDim
		case engine.ChartPie:
			ms, dim = []string{m}, pieDim
		case engine.ChartArea:
			ms, dim = measures[:min(2, len(measures))], dateDim
		}
		out.Combinations = append(out.Combinations, Combination{
			Title:      combinationTitle(t, ms, dim),
			Type:       t,
			Measures:   append([]string{}, ms...),
			Dimensions: []string{dim},
			Rationale:  rationaleFor(t),
			Insights:   insightsFor(t, m, dim),
		})
	}
	return out
}

func combinationTitle(t engine.ChartType, measures []string, dim string) string {
	label := schema.Humanize(measures[0])
	if len(measures) > 1 {
		label += " and " + schema.Humanize(measures[1])
	}
	switch t {
	case engine.ChartLine, engine.ChartArea:
		return fmt.Sprintf("%s over %s", label, schema.Humanize(dim))
	case engine.ChartPie:
		return fmt.Sprintf("%s share by %s", label, schema.Humanize(dim))
	default:
		return fmt.Sprintf("%s by %s", label, schema.Humanize(dim))
	}
}

// resolveSelection returns the selected names, or the schema's when a
// selection list is empty.
func resolveSelection(sel Selection, sch *schema.Schema) ([]string, []string) {
	measures, dimensions := sel.Measures, sel.Dimensions
	if sch != nil {
		if len(measures) == 0 {
			measures = sch.MeasureNames()
		}
		if len(dimensions) == 0 {
			dimensions = sch.DimensionNames()
		}
	}
	return measures, dimensions
}

func pickDimension(dims []string, fallback string, ok func(string) bool) string {
	for _, d := range dims {
		if ok(d) {
			return d
		}
	}
	return fallback
}

func isDate(name string, sch *schema.Schema, sample []dataset.Row) bool {
	if sch != nil {
		if c, ok := sch.Column(name); ok {
			return c.Type == schema.TypeDate
		}
	}
	values := make([]dataset.Value, 0, len(sample))
	for _, r := range sample {
		if v := r.Get(name); !v.IsNull() {
			values = append(values, v)
		}
	}
	return schema.ClassifyColumnType(values) == schema.TypeDate
}

func cardinality(name string, sch *schema.Schema, sample []dataset.Row) int {
	if sch != nil {
		if c, ok := sch.Column(name); ok {
			return c.UniqueValueCount
		}
	}
	return len(engine.UniqueValues(engine.SliceView(sample), name))
}
