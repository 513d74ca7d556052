package engine

import (
	"fmt"
)

// ============================================================================
// TABLE BUILDER — Tabular views of KPIs and chart datasets
// ============================================================================
// Used by hosts that print results instead of drawing them.
// ============================================================================

// TableData defines how to render a table.
type TableData struct {
	Title   string        `json:"title"`
	Columns []Column      `json:"columns"`
	Rows    [][]string    `json:"rows"`
	Summary *TableSummary `json:"summary,omitempty"`
}

// Column defines a table column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`  // "text", "number"
	Align string `json:"align"` // "left", "right"
}

// TableSummary provides totals for a table.
type TableSummary struct {
	Label  string            `json:"label"`
	Values map[string]string `json:"values"`
}

// BuildDatasetTable renders one row per point and one column per measure,
// values formatted with f in format, plus a totals summary.
func BuildDatasetTable(title string, ds ChartDataset, f Formatter, format Format) *TableData {
	columns := make([]Column, 0, len(ds.Measures)+1)
	columns = append(columns, Column{Key: ds.Dimension, Label: labelFor(ds.Dimension), Type: "text", Align: "left"})
	for _, m := range ds.Measures {
		columns = append(columns, Column{Key: m, Label: labelFor(m), Type: "number", Align: "right"})
	}

	rows := make([][]string, 0, ds.Len())
	totals := make([]float64, len(ds.Measures))
	for i, p := range ds.Points {
		row := make([]string, 0, len(columns))
		row = append(row, p.Key)
		for j, m := range ds.Measures {
			v := ds.Value(i, m)
			totals[j] += v
			row = append(row, f.Format(v, format))
		}
		rows = append(rows, row)
	}

	summary := &TableSummary{
		Label:  fmt.Sprintf("Total (%d groups)", ds.Len()),
		Values: make(map[string]string, len(ds.Measures)),
	}
	for j, m := range ds.Measures {
		summary.Values[m] = f.Format(totals[j], format)
	}

	return &TableData{Title: title, Columns: columns, Rows: rows, Summary: summary}
}

// BuildKPITable renders KPI results as name / value / calculation rows.
func BuildKPITable(title string, kpis []KPIResult) *TableData {
	columns := []Column{
		{Key: "name", Label: "KPI", Type: "text", Align: "left"},
		{Key: "value", Label: "Value", Type: "number", Align: "right"},
		{Key: "calculation", Label: "Calculation", Type: "text", Align: "left"},
	}

	rows := make([][]string, 0, len(kpis))
	for _, k := range kpis {
		rows = append(rows, []string{
			k.Name,
			k.FormattedValue,
			fmt.Sprintf("%s(%s)", k.Calculation, k.Column),
		})
	}
	return &TableData{Title: title, Columns: columns, Rows: rows}
}
