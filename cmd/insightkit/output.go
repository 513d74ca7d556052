package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spektr-org/insightkit/engine"
)

// ============================================================================
// OUTPUT — json / pretty / table / csv
// ============================================================================

func writeOutput(w io.Writer, v any, format string) error {
	var out []byte
	var err error
	if format == "json" {
		out, err = json.Marshal(v)
	} else {
		out, err = json.MarshalIndent(v, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func writeReport(w io.Writer, r *engine.Report, f engine.Formatter, format string) error {
	switch format {
	case "table":
		return writeReportTables(w, r, f)
	case "csv":
		return writeReportCSV(w, r)
	default:
		return writeOutput(w, r, format)
	}
}

// ============================================================================
// TABLE OUTPUT
// ============================================================================

func writeReportTables(w io.Writer, r *engine.Report, f engine.Formatter) error {
	fmt.Fprintf(w, "Rows: %d of %d\n", r.MatchedRows, r.TotalRows)
	if r.Growth != nil && r.Growth.Direction != engine.DirectionInsufficient {
		fmt.Fprintf(w, "Growth (%s, %s): %s\n", r.Growth.ValueColumn, r.Growth.Period(), r.Growth.Describe())
	}
	fmt.Fprintln(w)

	if len(r.KPIs) > 0 {
		writeTable(w, engine.BuildKPITable("KPIs", r.KPIs))
	}
	for _, c := range r.Charts {
		writeTable(w, engine.BuildDatasetTable(c.Definition.Title, c.Dataset, f, engine.FormatNumber))
	}
	for _, warn := range r.Warnings {
		fmt.Fprintf(w, "warning: %v\n", warn)
	}
	return nil
}

func writeTable(w io.Writer, t *engine.TableData) {
	fmt.Fprintf(w, "== %s ==\n", t.Title)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	labels := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		labels[i] = c.Label
	}
	fmt.Fprintln(tw, strings.Join(labels, "\t"))
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	if t.Summary != nil {
		cells := []string{t.Summary.Label}
		for _, c := range t.Columns[1:] {
			cells = append(cells, t.Summary.Values[c.Key])
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	tw.Flush()
	fmt.Fprintln(w)
}

// ============================================================================
// CSV OUTPUT — chart series, Sheets-ready
// ============================================================================

func writeReportCSV(w io.Writer, r *engine.Report) error {
	cw := csv.NewWriter(w)
	for i, c := range r.Charts {
		if c.Config == nil {
			continue
		}
		if i > 0 {
			cw.Write(nil)
		}
		cw.Write([]string{c.Definition.Title})
		writeChartCSV(cw, c.Config)
	}
	cw.Flush()
	return cw.Error()
}

func writeChartCSV(cw *csv.Writer, chart *engine.ChartConfig) {
	if len(chart.Series) == 0 {
		return
	}
	xLabel, yLabel := chart.XAxis, chart.YAxis
	if xLabel == "" {
		xLabel = "Label"
	}
	if yLabel == "" {
		yLabel = "Value"
	}

	// Single series → two columns
	if len(chart.Series) == 1 {
		cw.Write([]string{xLabel, yLabel})
		for _, d := range chart.Series[0].Data {
			cw.Write([]string{d.Label, fmtNum(d.Value)})
		}
		return
	}

	// Multi-series → label + one column per series
	headers := []string{xLabel}
	for _, s := range chart.Series {
		headers = append(headers, s.Name)
	}
	cw.Write(headers)
	for i, d := range chart.Series[0].Data {
		row := []string{d.Label}
		for _, s := range chart.Series {
			if i < len(s.Data) {
				row = append(row, fmtNum(s.Data[i].Value))
			} else {
				row = append(row, "")
			}
		}
		cw.Write(row)
	}
}

func fmtNum(v float64) string {
	// Whole numbers → no decimals, fractional → 2 decimals
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
