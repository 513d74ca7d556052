package engine

import (
	"github.com/spektr-org/insightkit/dataset"
)

// ============================================================================
// EXECUTOR — Report pipeline
// ============================================================================
// Entry point: Evaluate(rows, kpis, charts, opts...)
//
// Pipeline:
//   1. Apply filters + limit → SubView
//   2. Compute KPIs (failures → warnings, KPI skipped)
//   3. Build chart datasets + render configs (failures → warnings)
//   4. (Optional) Growth over a date column
//   5. Return Report
//
// This function never calls an external service. All computation is local.
// Zero data copy: the engine reads caller rows through RowView.
// ============================================================================

// Evaluate runs KPI and chart definitions against rows.
//
// Options:
//   - WithFilters(set), WithLimit(n): restrict the evaluated rows
//   - WithFormatter(f): KPI display formatting
//   - WithWarningHandler(fn): observe skipped definitions
//   - WithGrowth(date, value): attach growth metrics
func Evaluate(rows []dataset.Row, kpis []KPIDefinition, charts []ChartDefinition, opts ...Option) *Report {
	return EvaluateView(SliceView(rows), kpis, charts, opts...)
}

// EvaluateView is Evaluate over any RowView.
func EvaluateView(view RowView, kpis []KPIDefinition, charts []ChartDefinition, opts ...Option) *Report {
	cfg := applyOptions(opts)

	report := &Report{
		TotalRows: view.Len(),
		KPIs:      []KPIResult{},
		Charts:    []ChartResult{},
	}

	// 1. Apply filters → SubView (zero-copy)
	filtered := FilterView(view, cfg.Filters, cfg.Limit)
	report.MatchedRows = filtered.Len()

	cfg.Logger.Printf("🔧 insightkit: Evaluating %d KPIs, %d charts over %d rows (from %d)",
		len(kpis), len(charts), filtered.Len(), view.Len())

	warn := func(w Warning) {
		report.Warnings = append(report.Warnings, w)
		cfg.Logger.Printf("⚠️  insightkit: %v", w)
		if cfg.OnWarning != nil {
			cfg.OnWarning(w)
		}
	}

	// 2. KPIs
	results, warnings := computeKPIs(filtered, kpis, cfg.Formatter)
	report.KPIs = results
	for _, w := range warnings {
		warn(w)
	}

	// 3. Charts
	for _, def := range charts {
		ds, err := buildChart(filtered, def)
		if err != nil {
			warn(newWarning("chart", def.Title, err))
			continue
		}
		res := ChartResult{Definition: def, Dataset: ds}
		if cfg.RenderConfigs {
			res.Config = RenderChart(def, ds)
		}
		report.Charts = append(report.Charts, res)
	}

	// 4. Growth
	if cfg.GrowthDate != "" && cfg.GrowthValue != "" {
		g := Growth(filtered, cfg.GrowthDate, cfg.GrowthValue)
		report.Growth = &g
		if g.Direction == DirectionInsufficient {
			warn(newWarning("stats", cfg.GrowthValue, ErrEmptySample))
		}
	}

	cfg.Logger.Printf("📊 insightkit: Report ready, %d KPIs, %d charts, %d warnings",
		len(report.KPIs), len(report.Charts), len(report.Warnings))
	return report
}
