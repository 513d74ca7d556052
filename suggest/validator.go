package suggest

import (
	"strings"

	"github.com/spektr-org/insightkit/dataset"
	"github.com/spektr-org/insightkit/engine"
	"github.com/spektr-org/insightkit/schema"
)

// ============================================================================
// VALIDATOR — Sanitizes candidate suggestions against the schema
// ============================================================================
// Never fails. Invalid elements are dropped; if either list ends up empty
// the whole set is replaced by Fallback. Partial AI results are never
// returned as partial.
// ============================================================================

// Validate checks a candidate payload against sch.
func Validate(candidate Payload, sch *schema.Schema) Suggestions {
	if sch == nil {
		return Fallback(sch)
	}

	kpis := make([]engine.KPIDefinition, 0, len(candidate.KPIs))
	for _, c := range candidate.KPIs {
		if k, ok := validateKPI(c, sch); ok {
			kpis = append(kpis, k)
		}
	}

	charts := make([]engine.ChartDefinition, 0, len(candidate.Charts))
	for _, c := range candidate.Charts {
		if ch, ok := validateChart(c, sch); ok {
			charts = append(charts, ch)
		}
	}

	if len(kpis) == 0 || len(charts) == 0 {
		return Fallback(sch)
	}

	return Suggestions{
		KPIs:     kpis,
		Charts:   charts,
		Insights: cleanStrings(candidate.Insights),
		Source:   SourceAI,
	}
}

func validateKPI(c KPICandidate, sch *schema.Schema) (engine.KPIDefinition, bool) {
	name := strings.TrimSpace(string(c.Name))
	column := strings.TrimSpace(string(c.Column))
	if name == "" {
		return engine.KPIDefinition{}, false
	}
	if column != engine.AllRows && !sch.IsMeasure(column) {
		return engine.KPIDefinition{}, false
	}

	calc := engine.Calculation(normalize(string(c.Calculation)))
	if calc == "" {
		calc = engine.CalcSum
		if column == engine.AllRows {
			calc = engine.CalcCount
		}
	}
	if !calc.Valid() {
		return engine.KPIDefinition{}, false
	}
	// "*" has no values to aggregate; only a row count is computable.
	if column == engine.AllRows && calc != engine.CalcCount {
		return engine.KPIDefinition{}, false
	}

	format := engine.Format(normalize(string(c.Format)))
	if format == "" {
		format = engine.FormatNumber
	}
	if !format.Valid() {
		return engine.KPIDefinition{}, false
	}

	return engine.KPIDefinition{Name: name, Calculation: calc, Column: column, Format: format}, true
}

func validateChart(c ChartCandidate, sch *schema.Schema) (engine.ChartDefinition, bool) {
	title := strings.TrimSpace(string(c.Title))
	chartType := engine.ChartType(normalize(string(c.Type)))
	if title == "" || !chartType.Valid() {
		return engine.ChartDefinition{}, false
	}

	measures := keepKnown(c.measures(), sch.IsMeasure)
	dimensions := keepKnown(c.dimensions(), sch.IsDimension)
	if len(measures) == 0 || len(dimensions) == 0 {
		return engine.ChartDefinition{}, false
	}

	return engine.ChartDefinition{Title: title, Type: chartType, Measures: measures, Dimensions: dimensions}, true
}

// ============================================================================
// CUSTOM COMBINATIONS
// ============================================================================

// MaxCombinations caps a combination set.
const MaxCombinations = 4

// ValidateCombinations checks candidate combinations against the selection
// (or the schema when nothing is selected). If none survive, the set is
// replaced by CustomCombinations.
func ValidateCombinations(candidate Payload, sch *schema.Schema, sel Selection, sample []dataset.Row) CombinationSet {
	measures, dimensions := resolveSelection(sel, sch)
	isMeasure := memberOf(measures)
	isDimension := memberOf(dimensions)

	out := make([]Combination, 0, MaxCombinations)
	for _, c := range candidate.Combinations {
		if len(out) >= MaxCombinations {
			break
		}
		title := strings.TrimSpace(string(c.Title))
		chartType := engine.ChartType(normalize(string(c.Type)))
		if title == "" || !chartType.Valid() {
			continue
		}
		ms := keepKnown(c.measures(), isMeasure)
		ds := keepKnown(c.dimensions(), isDimension)
		if len(ms) == 0 || len(ds) == 0 {
			continue
		}
		rationale := strings.TrimSpace(string(c.Rationale))
		if rationale == "" {
			rationale = rationaleFor(chartType)
		}
		out = append(out, Combination{
			Title:      title,
			Type:       chartType,
			Measures:   ms,
			Dimensions: ds,
			Rationale:  rationale,
			Insights:   cleanStrings(c.Insights),
		})
	}

	if len(out) == 0 {
		return CustomCombinations(sel, sch, sample)
	}
	return CombinationSet{Combinations: out, Source: SourceAI}
}

// ============================================================================
// HELPERS
// ============================================================================

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// keepKnown drops unknown and duplicate names, preserving order.
func keepKnown(names []string, known func(string) bool) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] || !known(n) {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func memberOf(names []string) func(string) bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(s string) bool { return set[s] }
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
