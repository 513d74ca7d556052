package suggest

import (
	"fmt"
	"strings"

	"github.com/spektr-org/insightkit/engine"
	"github.com/spektr-org/insightkit/schema"
)

// ============================================================================
// FALLBACK — Deterministic, schema-driven suggestions
// ============================================================================
// Used whenever no valid external suggestion exists. A pure function of the
// schema: the same schema always yields the same suggestions.
// ============================================================================

// Fallback limits.
const (
	MaxFallbackMeasureKPIs = 4
	MaxPieSlices           = 10
)

// Fallback builds KPIs, charts and insights from the schema alone.
func Fallback(sch *schema.Schema) Suggestions {
	out := Suggestions{
		KPIs:     []engine.KPIDefinition{},
		Charts:   []engine.ChartDefinition{},
		Insights: []string{},
		Source:   SourceFallback,
	}
	if sch == nil || len(sch.Columns) == 0 {
		return out
	}

	// ── KPIs ──────────────────────────────────────────────────────────────
	out.KPIs = append(out.KPIs, engine.KPIDefinition{
		Name:        "Total Records",
		Calculation: engine.CalcCount,
		Column:      engine.AllRows,
		Format:      engine.FormatNumber,
	})
	for i, m := range sch.Measures {
		if i >= MaxFallbackMeasureKPIs {
			break
		}
		out.KPIs = append(out.KPIs, engine.KPIDefinition{
			Name:        "Total " + schema.Humanize(m.Name),
			Calculation: engine.CalcSum,
			Column:      m.Name,
			Format:      GuessFormat(m.Name),
		})
	}

	// ── Charts ────────────────────────────────────────────────────────────
	out.Charts = fallbackCharts(sch)

	// ── Insights ──────────────────────────────────────────────────────────
	out.Insights = fallbackInsights(sch)
	return out
}

func fallbackCharts(sch *schema.Schema) []engine.ChartDefinition {
	charts := []engine.ChartDefinition{}
	if len(sch.Measures) == 0 || len(sch.Dimensions) == 0 {
		return charts
	}

	m := sch.Measures[0]
	d := sch.Dimensions[0]
	mLabel, dLabel := schema.Humanize(m.Name), schema.Humanize(d.Name)

	charts = append(charts, engine.ChartDefinition{
		Title:      fmt.Sprintf("%s by %s", mLabel, dLabel),
		Type:       engine.ChartBar,
		Measures:   []string{m.Name},
		Dimensions: []string{d.Name},
	})

	if len(sch.Measures) >= 2 {
		m2 := sch.Measures[1]
		charts = append(charts, engine.ChartDefinition{
			Title:      fmt.Sprintf("%s vs %s by %s", mLabel, schema.Humanize(m2.Name), dLabel),
			Type:       engine.ChartLine,
			Measures:   []string{m.Name, m2.Name},
			Dimensions: []string{d.Name},
		})
	}

	if d.UniqueValueCount <= MaxPieSlices {
		charts = append(charts, engine.ChartDefinition{
			Title:      fmt.Sprintf("%s Distribution by %s", mLabel, dLabel),
			Type:       engine.ChartPie,
			Measures:   []string{m.Name},
			Dimensions: []string{d.Name},
		})
	}

	if date, ok := firstDateDimension(sch); ok {
		charts = append(charts, engine.ChartDefinition{
			Title:      fmt.Sprintf("%s over %s", mLabel, schema.Humanize(date.Name)),
			Type:       engine.ChartArea,
			Measures:   []string{m.Name},
			Dimensions: []string{date.Name},
		})
	}
	return charts
}

func fallbackInsights(sch *schema.Schema) []string {
	insights := []string{
		fmt.Sprintf("Dataset contains %d records across %d columns", sch.RowCount, len(sch.Columns)),
		fmt.Sprintf("Detected %d measures and %d dimensions", len(sch.Measures), len(sch.Dimensions)),
	}
	if len(sch.Measures) > 0 && len(sch.Dimensions) > 0 {
		insights = append(insights, fmt.Sprintf("Compare %s across %s values to find the largest contributors",
			schema.Humanize(sch.Measures[0].Name), schema.Humanize(sch.Dimensions[0].Name)))
	}
	if date, ok := firstDateDimension(sch); ok {
		insights = append(insights, fmt.Sprintf("Time-based trends are available through %s", schema.Humanize(date.Name)))
	}
	return insights
}

func firstDateDimension(sch *schema.Schema) (schema.Column, bool) {
	for _, d := range sch.Dimensions {
		if d.Type == schema.TypeDate {
			return d, true
		}
	}
	return schema.Column{}, false
}

// GuessFormat picks a display format from column-name substrings,
// case-insensitively. Currency words win over percent words.
func GuessFormat(name string) engine.Format {
	n := strings.ToLower(name)
	for _, kw := range []string{"revenue", "sales", "price", "cost"} {
		if strings.Contains(n, kw) {
			return engine.FormatCurrency
		}
	}
	for _, kw := range []string{"percent", "rate", "%"} {
		if strings.Contains(n, kw) {
			return engine.FormatPercent
		}
	}
	return engine.FormatNumber
}
