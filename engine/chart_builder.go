package engine

import (
	"fmt"

	"github.com/spektr-org/insightkit/dataset"
)

// ============================================================================
// CHART BUILDER — ChartDefinition → ChartDataset → ChartConfig
// ============================================================================

// Default color palette for chart series.
var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// BuildChart aggregates rows for a definition: first dimension, all
// measures. An empty type builds a bar chart.
func BuildChart(rows []dataset.Row, def ChartDefinition) (ChartDataset, error) {
	return buildChart(SliceView(rows), def)
}

func buildChart(view RowView, def ChartDefinition) (ChartDataset, error) {
	if def.Type == "" {
		def.Type = ChartBar
	}
	if !def.Type.Valid() {
		return ChartDataset{}, fmt.Errorf("%w %q", ErrUnknownChartType, def.Type)
	}
	if len(def.Measures) == 0 || len(def.Dimensions) == 0 {
		return ChartDataset{}, ErrIncompleteChart
	}
	return AggregateView(view, def.Dimensions[0], def.Measures, def.Type), nil
}

// RenderChart produces a ChartConfig with one series per measure.
func RenderChart(def ChartDefinition, ds ChartDataset) *ChartConfig {
	if ds.Len() == 0 {
		return nil
	}

	chartType := def.Type
	if chartType == "" {
		chartType = ChartBar
	}

	config := &ChartConfig{
		ChartType:  chartType,
		Title:      def.Title,
		XAxis:      labelFor(ds.Dimension),
		ShowLegend: len(ds.Measures) > 1 || chartType == ChartPie,
		ShowGrid:   chartType != ChartPie,
	}
	if len(ds.Measures) == 1 {
		config.YAxis = labelFor(ds.Measures[0])
	} else {
		config.YAxis = "Value"
	}

	config.Series = buildSeries(ds)
	config.Colors = assignColors(len(config.Series))
	return config
}

// ============================================================================
// SERIES BUILDERS
// ============================================================================

func buildSeries(ds ChartDataset) []ChartSeries {
	series := make([]ChartSeries, 0, len(ds.Measures))
	for j, m := range ds.Measures {
		points := make([]ChartPoint, 0, ds.Len())
		for i, p := range ds.Points {
			points = append(points, ChartPoint{
				Label: p.Key,
				Value: RoundTo2(ds.Value(i, m)),
			})
		}
		series = append(series, ChartSeries{
			Name:  labelFor(m),
			Data:  points,
			Color: defaultColors[j%len(defaultColors)],
		})
	}
	return series
}

func assignColors(count int) []string {
	colors := make([]string, count)
	for i := 0; i < count; i++ {
		colors[i] = defaultColors[i%len(defaultColors)]
	}
	return colors
}
