package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spektr-org/insightkit/engine"
	"github.com/spektr-org/insightkit/schema"
	"github.com/spektr-org/insightkit/suggest"
)

var (
	selMeasures   []string
	selDimensions []string
	filterFlags   []string
	rowLimit      int
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the inferred schema and its fingerprint",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSession(cmd.Context())
		if err != nil {
			return err
		}
		out := struct {
			Fingerprint string `json:"fingerprint"`
			*schema.Schema
		}{s.sch.Fingerprint(), s.sch}
		return writeOutput(cmd.OutOrStdout(), out, outFormat)
	},
}

var filtersCmd = &cobra.Command{
	Use:   "filters",
	Short: "Print the dimension values usable as filters",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSession(cmd.Context())
		if err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), s.cfg.FilterBounds().Options(s.table.Rows, s.sch), outFormat)
	},
}

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Suggest KPIs and charts (or combinations for --measures/--dimensions)",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSession(cmd.Context())
		if err != nil {
			return err
		}
		orch, err := newOrchestrator(s.cfg)
		if err != nil {
			return err
		}
		sel := suggest.Selection{Measures: selMeasures, Dimensions: selDimensions}
		if !sel.IsEmpty() {
			return writeOutput(cmd.OutOrStdout(), orch.SuggestCombinations(cmd.Context(), s.sch, s.table.Rows, sel), outFormat)
		}
		return writeOutput(cmd.OutOrStdout(), orch.Suggest(cmd.Context(), s.sch, s.table.Rows), outFormat)
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Suggest, then evaluate KPIs and chart datasets locally",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSession(cmd.Context())
		if err != nil {
			return err
		}
		filters, err := parseFilters(filterFlags)
		if err != nil {
			return err
		}
		orch, err := newOrchestrator(s.cfg)
		if err != nil {
			return err
		}

		var kpis []engine.KPIDefinition
		var charts []engine.ChartDefinition
		sel := suggest.Selection{Measures: selMeasures, Dimensions: selDimensions}
		if sel.IsEmpty() {
			sug := orch.Suggest(cmd.Context(), s.sch, s.table.Rows)
			kpis, charts = sug.KPIs, sug.Charts
		} else {
			filtered := engine.ApplyFilters(s.table.Rows, filters, 0)
			kpis = suggest.Fallback(s.sch).KPIs
			charts = orch.SuggestCombinations(cmd.Context(), s.sch, filtered, sel).Charts()
		}

		limit := rowLimit
		if limit == 0 {
			limit = s.cfg.Filters.Limit
		}
		opts := []engine.Option{
			engine.WithFilters(filters),
			engine.WithLimit(limit),
			engine.WithFormatter(s.cfg.Formatter()),
		}
		if date, measure, ok := growthColumns(s.sch); ok {
			opts = append(opts, engine.WithGrowth(date, measure))
		}

		report := engine.Evaluate(s.table.Rows, kpis, charts, opts...)
		return writeReport(cmd.OutOrStdout(), report, s.cfg.Formatter(), outFormat)
	},
}

func init() {
	for _, c := range []*cobra.Command{suggestCmd, reportCmd} {
		c.Flags().StringSliceVar(&selMeasures, "measures", nil, "Selected measures (custom-combination mode)")
		c.Flags().StringSliceVar(&selDimensions, "dimensions", nil, "Selected dimensions (custom-combination mode)")
	}
	reportCmd.Flags().StringArrayVar(&filterFlags, "filter", nil, "Filter as column=v1,v2 (repeatable, AND across columns)")
	reportCmd.Flags().IntVar(&rowLimit, "limit", 0, "Maximum filtered rows (default: config filters.limit)")
}

// parseFilters turns ["region=East,West", "year=2024"] into a FilterSet.
func parseFilters(flags []string) (engine.FilterSet, error) {
	fs := engine.FilterSet{}
	for _, f := range flags {
		col, vals, ok := strings.Cut(f, "=")
		col = strings.TrimSpace(col)
		if !ok || col == "" {
			return nil, fmt.Errorf("invalid --filter %q, want column=value[,value]", f)
		}
		for _, v := range strings.Split(vals, ",") {
			fs[col] = append(fs[col], strings.TrimSpace(v))
		}
	}
	return fs, nil
}

// growthColumns picks the first date dimension and first measure.
func growthColumns(sch *schema.Schema) (string, string, bool) {
	if len(sch.Measures) == 0 {
		return "", "", false
	}
	for _, d := range sch.Dimensions {
		if d.Type == schema.TypeDate {
			return d.Name, sch.Measures[0].Name, true
		}
	}
	return "", "", false
}
