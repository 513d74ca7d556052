package suggest

import (
	"fmt"
	"math"

	"github.com/spektr-org/insightkit/dataset"
	"github.com/spektr-org/insightkit/engine"
	"github.com/spektr-org/insightkit/schema"
)

// Pattern thresholds.
const (
	HighVarianceCV    = 1.0 // stddev / |mean| above this is "high variance"
	LowCardinalityMax = 5
)

// MeasureStats summarizes one selected measure.
type MeasureStats struct {
	Name     string  `json:"name"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Avg      float64 `json:"avg"`
	Variance float64 `json:"variance"`
}

// DimensionStats summarizes one selected dimension.
type DimensionStats struct {
	Name        string `json:"name"`
	Cardinality int    `json:"cardinality"`
}

// Stats is what the collaborator sees about a selection: aggregates and
// detected patterns, never raw rows.
type Stats struct {
	RowCount   int              `json:"rowCount"`
	Measures   []MeasureStats   `json:"measures"`
	Dimensions []DimensionStats `json:"dimensions"`
	Patterns   []string         `json:"patterns"`
}

// CombinationStats computes Stats for the selection over rows.
func CombinationStats(rows []dataset.Row, sch *schema.Schema, sel Selection) Stats {
	measures, dimensions := resolveSelection(sel, sch)
	view := engine.SliceView(rows)

	st := Stats{
		RowCount:   len(rows),
		Measures:   make([]MeasureStats, 0, len(measures)),
		Dimensions: make([]DimensionStats, 0, len(dimensions)),
		Patterns:   []string{},
	}

	for _, m := range measures {
		ms := MeasureStats{Name: m}
		if sum, err := engine.Summarize(engine.ColumnValues(view, m)); err == nil {
			ms.Min, ms.Max, ms.Avg, ms.Variance = finite(sum.Min), finite(sum.Max), finite(sum.Mean), finite(sum.Variance)
			if sum.Mean != 0 && sum.StdDev/math.Abs(sum.Mean) > HighVarianceCV {
				st.Patterns = append(st.Patterns, fmt.Sprintf("high variance in %s", m))
			}
		}
		st.Measures = append(st.Measures, ms)
	}

	for _, d := range dimensions {
		card := len(engine.UniqueValues(view, d))
		st.Dimensions = append(st.Dimensions, DimensionStats{Name: d, Cardinality: card})
		if card > 0 && card <= LowCardinalityMax {
			st.Patterns = append(st.Patterns, fmt.Sprintf("low cardinality in %s", d))
		}
		if isDate(d, sch, rows) {
			st.Patterns = append(st.Patterns, fmt.Sprintf("temporal dimension %s", d))
		}
	}
	return st
}

// finite maps NaN and ±Inf to 0; JSON has no spelling for them.
func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
