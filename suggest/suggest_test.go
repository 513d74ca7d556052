package suggest

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/insightkit/dataset"
	"github.com/spektr-org/insightkit/engine"
	"github.com/spektr-org/insightkit/schema"
)

// ============================================================================
// FIXTURES
// ============================================================================

func salesSchema() *schema.Schema {
	cols := []schema.Column{
		{Name: "region", Type: schema.TypeString, UniqueValueCount: 4, SampleValues: []string{"East", "West"}},
		{Name: "order_date", Type: schema.TypeDate, UniqueValueCount: 12},
		{Name: "revenue", Type: schema.TypeNumber, UniqueValueCount: 12},
		{Name: "units", Type: schema.TypeNumber, UniqueValueCount: 12},
	}
	return &schema.Schema{
		Columns:    cols,
		Dimensions: []schema.Column{cols[0], cols[1]},
		Measures:   []schema.Column{cols[2], cols[3]},
		RowCount:   12,
	}
}

func row(kv ...any) dataset.Row {
	r := dataset.Row{}
	for i := 0; i+1 < len(kv); i += 2 {
		v, err := dataset.Of(kv[i+1])
		if err != nil {
			panic(err)
		}
		r[kv[i].(string)] = v
	}
	return r
}

func salesRows() []dataset.Row {
	return []dataset.Row{
		row("region", "East", "order_date", "2024-01-01", "revenue", 1, "units", 1),
		row("region", "West", "order_date", "2024-01-02", "revenue", 1, "units", 2),
		row("region", "East", "order_date", "2024-01-03", "revenue", 1, "units", 3),
		row("region", "West", "order_date", "2024-01-04", "revenue", 100, "units", 4),
	}
}

// ============================================================================
// DECODE
// ============================================================================

func TestDecodeFencedAndRaw(t *testing.T) {
	fenced := "Here you go:\n```json\n{\"kpis\":[{\"name\":\"Total\",\"column\":\"revenue\"}],\"insights\":\"one\"}\n```\nThanks!"
	p, err := Decode(fenced)
	require.NoError(t, err)
	require.Len(t, p.KPIs, 1)
	assert.Equal(t, "Total", string(p.KPIs[0].Name))
	assert.Equal(t, []string{"one"}, p.Insights)

	raw := `Sure. {"charts":[{"title":"T","type":"bar","measure":"revenue","dimensions":"region"}]} hope it helps`
	p, err = Decode(raw)
	require.NoError(t, err)
	require.Len(t, p.Charts, 1)
	assert.Equal(t, []string{"revenue"}, p.Charts[0].measures())
	assert.Equal(t, []string{"region"}, p.Charts[0].dimensions())
}

func TestDecodeLenient(t *testing.T) {
	p, err := Decode(`{"kpis":[{"name":1,"column":"revenue"}, 42, {"name":"ok"}],"charts":"nope","extra":true}`)
	require.NoError(t, err)
	require.Len(t, p.KPIs, 2)
	assert.Equal(t, "1", string(p.KPIs[0].Name))
	assert.Nil(t, p.Charts)
	assert.Equal(t, 2, p.Dropped)
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode("I cannot help with that.")
	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.ErrorIs(t, err, ErrNoPayload)

	_, err = Decode(`{"kpis": [ {"name": }`)
	require.ErrorAs(t, err, &de)
	assert.NotErrorIs(t, err, ErrNoPayload)
}

// ============================================================================
// VALIDATE
// ============================================================================

func TestValidateDropsInvalidElements(t *testing.T) {
	p, err := Decode(`{
		"kpis": [
			{"name": "Revenue", "calculation": "SUM", "column": "revenue", "format": "Currency"},
			{"name": "Ghost", "column": "ghost"},
			{"name": "", "column": "revenue"},
			{"name": "Rows", "calculation": "count", "column": "*"},
			{"name": "Median", "calculation": "median", "column": "revenue"},
			{"name": "Odd", "column": "units", "format": "roman"},
			{"name": "Dim", "column": "region"}
		],
		"charts": [
			{"title": "By region", "type": "Bar", "measures": ["revenue", "ghost", "revenue"], "dimensions": ["region"]},
			{"title": "Radar", "type": "radar", "measures": ["revenue"], "dimensions": ["region"]},
			{"title": "Ghosts", "type": "bar", "measures": ["ghost"], "dimensions": ["region"]},
			{"title": "", "type": "bar", "measures": ["revenue"], "dimensions": ["region"]}
		],
		"insights": ["  East leads  ", ""]
	}`)
	require.NoError(t, err)

	s := Validate(p, salesSchema())
	assert.Equal(t, SourceAI, s.Source)
	assert.Equal(t, []engine.KPIDefinition{
		{Name: "Revenue", Calculation: engine.CalcSum, Column: "revenue", Format: engine.FormatCurrency},
		{Name: "Rows", Calculation: engine.CalcCount, Column: engine.AllRows, Format: engine.FormatNumber},
	}, s.KPIs)
	assert.Equal(t, []engine.ChartDefinition{
		{Title: "By region", Type: engine.ChartBar, Measures: []string{"revenue"}, Dimensions: []string{"region"}},
	}, s.Charts)
	assert.Equal(t, []string{"East leads"}, s.Insights)
}

func TestValidateAllOrNothing(t *testing.T) {
	sch := salesSchema()
	onlyKPIs := Payload{
		KPIs:     []KPICandidate{{Name: "Revenue", Column: "revenue"}},
		Insights: []string{"dropped with the rest"},
	}
	s := Validate(onlyKPIs, sch)
	assert.Equal(t, SourceFallback, s.Source)
	assert.Equal(t, Fallback(sch), s)

	s = Validate(Payload{}, sch)
	assert.NotEmpty(t, s.KPIs)
	assert.NotEmpty(t, s.Charts)
}

func TestValidateAllRowsOnlyCounts(t *testing.T) {
	sch := salesSchema()
	p, err := Decode(`{
		"kpis": [
			{"name": "Avg Everything", "calculation": "avg", "column": "*"},
			{"name": "Sum Everything", "calculation": "sum", "column": "*"}
		],
		"charts": [{"title": "By region", "type": "bar", "measures": ["revenue"], "dimensions": ["region"]}]
	}`)
	require.NoError(t, err)

	s := Validate(p, sch)
	assert.Equal(t, SourceFallback, s.Source)

	p.KPIs = append(p.KPIs, KPICandidate{Name: "Rows", Column: "*"})
	s = Validate(p, sch)
	assert.Equal(t, SourceAI, s.Source)
	assert.Equal(t, []engine.KPIDefinition{
		{Name: "Rows", Calculation: engine.CalcCount, Column: engine.AllRows, Format: engine.FormatNumber},
	}, s.KPIs)

	// Whatever the validator accepts must compute without warnings.
	results, warnings := engine.ComputeKPIs(salesRows(), s.KPIs)
	assert.Empty(t, warnings)
	assert.Len(t, results, 1)
}

// ============================================================================
// FALLBACK
// ============================================================================

func TestFallback(t *testing.T) {
	s := Fallback(salesSchema())
	assert.Equal(t, SourceFallback, s.Source)

	assert.Equal(t, []engine.KPIDefinition{
		{Name: "Total Records", Calculation: engine.CalcCount, Column: engine.AllRows, Format: engine.FormatNumber},
		{Name: "Total Revenue", Calculation: engine.CalcSum, Column: "revenue", Format: engine.FormatCurrency},
		{Name: "Total Units", Calculation: engine.CalcSum, Column: "units", Format: engine.FormatNumber},
	}, s.KPIs)

	require.Len(t, s.Charts, 4)
	assert.Equal(t, "Revenue by Region", s.Charts[0].Title)
	assert.Equal(t, engine.ChartLine, s.Charts[1].Type)
	assert.Equal(t, []string{"revenue", "units"}, s.Charts[1].Measures)
	assert.Equal(t, engine.ChartPie, s.Charts[2].Type)
	assert.Equal(t, engine.ChartArea, s.Charts[3].Type)
	assert.Equal(t, []string{"order_date"}, s.Charts[3].Dimensions)
	assert.NotEmpty(t, s.Insights)

	assert.Equal(t, s, Fallback(salesSchema()))
}

func TestFallbackEdges(t *testing.T) {
	empty := Fallback(nil)
	assert.Empty(t, empty.KPIs)
	assert.Empty(t, empty.Charts)

	dimsOnly := &schema.Schema{
		Columns:    []schema.Column{{Name: "city", Type: schema.TypeString, UniqueValueCount: 40}},
		Dimensions: []schema.Column{{Name: "city", Type: schema.TypeString, UniqueValueCount: 40}},
		RowCount:   40,
	}
	s := Fallback(dimsOnly)
	require.Len(t, s.KPIs, 1)
	assert.Equal(t, "Total Records", s.KPIs[0].Name)
	assert.Empty(t, s.Charts)

	wide := &schema.Schema{}
	for _, n := range []string{"a", "b", "c", "d", "e", "f"} {
		c := schema.Column{Name: n, Type: schema.TypeNumber, UniqueValueCount: 50}
		wide.Columns = append(wide.Columns, c)
		wide.Measures = append(wide.Measures, c)
	}
	wide.Dimensions = []schema.Column{{Name: "city", UniqueValueCount: 40}}
	s = Fallback(wide)
	assert.Len(t, s.KPIs, 1+MaxFallbackMeasureKPIs)
	for _, c := range s.Charts {
		assert.NotEqual(t, engine.ChartPie, c.Type)
	}
}

func TestGuessFormat(t *testing.T) {
	cases := map[string]engine.Format{
		"total_revenue":   engine.FormatCurrency,
		"UnitPrice":       engine.FormatCurrency,
		"Sales":           engine.FormatCurrency,
		"conversion_rate": engine.FormatPercent,
		"Percent Done":    engine.FormatPercent,
		"margin %":        engine.FormatPercent,
		"units":           engine.FormatNumber,
	}
	for name, want := range cases {
		assert.Equal(t, want, GuessFormat(name), name)
	}
}

// ============================================================================
// CUSTOM COMBINATIONS
// ============================================================================

func TestCustomCombinations(t *testing.T) {
	sel := Selection{Measures: []string{"revenue", "units"}, Dimensions: []string{"region", "order_date"}}
	set := CustomCombinations(sel, salesSchema(), nil)

	assert.Equal(t, SourceFallback, set.Source)
	require.Len(t, set.Combinations, MaxCombinations)

	byType := map[engine.ChartType]Combination{}
	for _, c := range set.Combinations {
		byType[c.Type] = c
		assert.NotEmpty(t, c.Rationale)
		assert.NotEmpty(t, c.Insights)
	}
	assert.Equal(t, []string{"region"}, byType[engine.ChartBar].Dimensions)
	assert.Equal(t, []string{"order_date"}, byType[engine.ChartLine].Dimensions)
	assert.Equal(t, []string{"region"}, byType[engine.ChartPie].Dimensions)
	assert.Equal(t, []string{"revenue", "units"}, byType[engine.ChartArea].Measures)
	assert.Equal(t, "Revenue and Units over Order Date", byType[engine.ChartArea].Title)
}

func TestCustomCombinationsUsesSample(t *testing.T) {
	// "city" is not in the schema: cardinality and type come from the sample.
	sample := []dataset.Row{row("city", "A"), row("city", "B"), row("city", "A")}
	sel := Selection{Measures: []string{"revenue"}, Dimensions: []string{"city"}}
	set := CustomCombinations(sel, salesSchema(), sample)

	require.Len(t, set.Combinations, 4)
	assert.Equal(t, []string{"city"}, set.Combinations[2].Dimensions)
	assert.Equal(t, []string{"revenue"}, set.Combinations[3].Measures)

	assert.Empty(t, CustomCombinations(Selection{Measures: []string{"revenue"}}, nil, nil).Combinations)
}

func TestValidateCombinations(t *testing.T) {
	sel := Selection{Measures: []string{"revenue"}, Dimensions: []string{"region"}}
	p, err := Decode(`{"combinations":[
		{"title":"Revenue by region","type":"PIE","measures":["revenue","units"],"dimensions":["region"],"insights":["East"]},
		{"title":"Units","type":"bar","measures":["units"],"dimensions":["region"]}
	]}`)
	require.NoError(t, err)

	set := ValidateCombinations(p, salesSchema(), sel, nil)
	assert.Equal(t, SourceAI, set.Source)
	require.Len(t, set.Combinations, 1)
	c := set.Combinations[0]
	assert.Equal(t, engine.ChartPie, c.Type)
	assert.Equal(t, []string{"revenue"}, c.Measures)
	assert.Equal(t, rationaleFor(engine.ChartPie), c.Rationale)
	assert.Equal(t, c.Chart(), set.Charts()[0])

	none := ValidateCombinations(Payload{}, salesSchema(), sel, nil)
	assert.Equal(t, CustomCombinations(sel, salesSchema(), nil), none)
}

func TestCombinationStats(t *testing.T) {
	sel := Selection{Measures: []string{"revenue"}, Dimensions: []string{"region", "order_date"}}
	st := CombinationStats(salesRows(), salesSchema(), sel)

	assert.Equal(t, 4, st.RowCount)
	require.Len(t, st.Measures, 1)
	assert.Equal(t, 1.0, st.Measures[0].Min)
	assert.Equal(t, 100.0, st.Measures[0].Max)
	assert.InDelta(t, 25.75, st.Measures[0].Avg, 1e-9)
	assert.Equal(t, []DimensionStats{{Name: "region", Cardinality: 2}, {Name: "order_date", Cardinality: 4}}, st.Dimensions)
	assert.Equal(t, []string{
		"high variance in revenue",
		"low cardinality in region",
		"low cardinality in order_date",
		"temporal dimension order_date",
	}, st.Patterns)
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(salesSchema(), salesRows()[:1])
	assert.Contains(t, prompt, `"revenue"`)
	assert.Contains(t, prompt, "[TEMPORAL]")
	assert.Contains(t, prompt, `"kpis"`)
	assert.Contains(t, prompt, "SAMPLE ROWS")

	sel := Selection{Measures: []string{"units"}}
	prompt = BuildCombinationPrompt(salesSchema(), CombinationStats(salesRows(), salesSchema(), sel), sel)
	assert.Contains(t, prompt, `SELECTED MEASURES: ["units"]`)
	assert.Contains(t, prompt, `SELECTED DIMENSIONS: ["region", "order_date"]`)
	assert.Contains(t, prompt, `"combinations"`)
}

func TestCombinationPromptNonFiniteStats(t *testing.T) {
	sch := salesSchema()
	sel := Selection{Measures: []string{"revenue"}, Dimensions: []string{"region"}}
	rows := []dataset.Row{
		row("region", "East", "revenue", 1e308),
		row("region", "West", "revenue", -1e308),
	}

	st := CombinationStats(rows, sch, sel)
	require.Len(t, st.Measures, 1)
	assert.Zero(t, st.Measures[0].Variance, "overflowed variance is reported as 0")

	prompt := BuildCombinationPrompt(sch, st, sel)
	assert.Contains(t, prompt, "STATISTICS (computed over the filtered rows)")
	assert.Contains(t, prompt, `"variance": 0`)

	st.Measures[0].Variance = math.Inf(1)
	prompt = BuildCombinationPrompt(sch, st, sel)
	assert.Contains(t, prompt, "STATISTICS: unavailable")
	assert.Contains(t, prompt, `"combinations"`)
}
