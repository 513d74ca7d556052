package suggest

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spektr-org/insightkit/dataset"
	"github.com/spektr-org/insightkit/schema"
)

// ============================================================================
// PROMPT BUILDER — Schema-Driven Suggestion Prompts
// ============================================================================
// The collaborator sees column names, types, cardinalities, a handful of
// sample rows, and for custom combinations, computed statistics. It is
// asked for JSON only; the validator re-checks everything it returns.
// ============================================================================

// BuildPrompt generates the KPI/chart suggestion prompt.
func BuildPrompt(sch *schema.Schema, sample []dataset.Row) string {
	var b strings.Builder

	// ── Header ────────────────────────────────────────────────────────────
	b.WriteString(`You are a data visualization assistant for a tabular analytics engine.

YOUR ROLE:
Suggest headline KPIs and charts for the dataset described below.
Do NOT compute any values. The engine computes everything locally.

`)

	// ── Schema Description ────────────────────────────────────────────────
	b.WriteString("DATA MODEL:\n")
	b.WriteString(buildMeasureDescription(sch.Measures))
	b.WriteString(buildDimensionDescription(sch.Dimensions))
	b.WriteString(fmt.Sprintf("\nROW COUNT: %d\n\n", sch.RowCount))

	// ── Sample ────────────────────────────────────────────────────────────
	if len(sample) > 0 {
		if sampleJSON, err := json.MarshalIndent(sample, "", "  "); err == nil {
			b.WriteString(fmt.Sprintf("SAMPLE ROWS:\n%s\n\n", string(sampleJSON)))
		} else {
			b.WriteString(fmt.Sprintf("SAMPLE ROWS: unavailable (%v)\n\n", err))
		}
	}

	// ── Response Format ───────────────────────────────────────────────────
	b.WriteString(fmt.Sprintf(`RESPONSE FORMAT (ALWAYS valid JSON, no markdown):
{
  "kpis": [
    {"name": "Total Revenue", "calculation": "sum|avg|count|max|min", "column": "%s", "format": "currency|percent|number"}
  ],
  "charts": [
    {"title": "Revenue by Region", "type": "bar|line|pie|area|scatter", "measures": [%s], "dimensions": [%s]}
  ],
  "insights": ["One short observation a reader should look for"]
}

`, kpiColumnHint(sch), quotedList(sch.MeasureNames(), 1), quotedList(sch.DimensionNames(), 1)))

	// ── Rules ─────────────────────────────────────────────────────────────
	b.WriteString(`RULES:
1. "column" must be one of the MEASURES above, or "*" with calculation "count".
2. "measures" and "dimensions" must only use names listed above.
3. Use "line" or "area" only with an ordered or date dimension.
4. Use "pie" only with a dimension of at most 10 distinct values.
5. Suggest 3-6 KPIs and 2-4 charts.
`)

	b.WriteString("\nRemember: reply with the JSON object only.\n")
	return b.String()
}

// BuildCombinationPrompt generates the custom-combination prompt.
func BuildCombinationPrompt(sch *schema.Schema, st Stats, sel Selection) string {
	var b strings.Builder

	b.WriteString(`You are a data visualization assistant for a tabular analytics engine.

YOUR ROLE:
The user selected specific measures and dimensions. Suggest up to 4 chart
combinations of them, each with a rationale and insights.

`)

	measures, dimensions := resolveSelection(sel, sch)
	b.WriteString(fmt.Sprintf("SELECTED MEASURES: [%s]\n", strings.Join(quotedValues(measures), ", ")))
	b.WriteString(fmt.Sprintf("SELECTED DIMENSIONS: [%s]\n\n", strings.Join(quotedValues(dimensions), ", ")))

	if statsJSON, err := json.MarshalIndent(st, "", "  "); err == nil {
		b.WriteString(fmt.Sprintf("STATISTICS (computed over the filtered rows):\n%s\n\n", string(statsJSON)))
	} else {
		b.WriteString(fmt.Sprintf("STATISTICS: unavailable (%v)\n\n", err))
	}

	b.WriteString(fmt.Sprintf(`RESPONSE FORMAT (ALWAYS valid JSON, no markdown):
{
  "combinations": [
    {
      "title": "Chart title",
      "type": "bar|line|pie|area",
      "measures": [%s],
      "dimensions": [%s],
      "rationale": "Why this chart fits the selection",
      "insights": ["What to look for"]
    }
  ]
}

`, quotedList(measures, 2), quotedList(dimensions, 1)))

	b.WriteString(`RULES:
1. Only use the selected measures and dimensions.
2. Prefer "line"/"area" for temporal dimensions and "pie" for low cardinality.
3. Mention detected patterns in the insights where relevant.
`)
	b.WriteString("\nRemember: reply with the JSON object only.\n")
	return b.String()
}

// ============================================================================
// SECTION BUILDERS
// ============================================================================

func buildMeasureDescription(cols []schema.Column) string {
	var b strings.Builder
	b.WriteString("MEASURES (numeric fields for aggregation):\n")
	if len(cols) == 0 {
		b.WriteString("- (none)\n")
	}
	for _, m := range cols {
		b.WriteString(fmt.Sprintf("- \"%s\" (%s): %d distinct values", m.Name, schema.Humanize(m.Name), m.UniqueValueCount))
		if m.Nullable {
			b.WriteString(" [nullable]")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func buildDimensionDescription(cols []schema.Column) string {
	var b strings.Builder
	b.WriteString("\nDIMENSIONS (fields for grouping and filtering):\n")
	if len(cols) == 0 {
		b.WriteString("- (none)\n")
	}
	for _, d := range cols {
		b.WriteString(fmt.Sprintf("- \"%s\" [%s]: %d distinct values", d.Name, d.Type, d.UniqueValueCount))
		if len(d.SampleValues) > 0 {
			b.WriteString(fmt.Sprintf(", e.g. [%s]", strings.Join(quotedValues(d.SampleValues), ", ")))
		}
		if d.Type == schema.TypeDate {
			b.WriteString(" [TEMPORAL]")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func kpiColumnHint(sch *schema.Schema) string {
	if len(sch.Measures) > 0 {
		return sch.Measures[0].Name
	}
	return "*"
}

// ============================================================================
// HELPERS
// ============================================================================

func quotedValues(vals []string) []string {
	quoted := make([]string, len(vals))
	for i, v := range vals {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return quoted
}

func quotedList(vals []string, n int) string {
	if len(vals) > n {
		vals = vals[:n]
	}
	return strings.Join(quotedValues(vals), ", ")
}
