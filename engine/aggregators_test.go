package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/insightkit/dataset"
)

// ============================================================================
// FIXTURES
// ============================================================================

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

func regionRows() []dataset.Row {
	return []dataset.Row{
		row("region", "East", "revenue", 100),
		row("region", "West", "revenue", 300),
		row("region", "East", "revenue", 50),
	}
}

// ============================================================================
// AGGREGATE
// ============================================================================

func TestAggregateRegionRevenue(t *testing.T) {
	ds := Aggregate(regionRows(), "region", []string{"revenue"}, ChartBar)

	require.Equal(t, 2, ds.Len())
	assert.Equal(t, []string{"West", "East"}, ds.Keys())
	assert.Equal(t, 300.0, ds.Value(0, "revenue"))
	assert.Equal(t, 150.0, ds.Value(1, "revenue"))

	b, err := json.Marshal(ds)
	require.NoError(t, err)
	assert.Equal(t, `[{"region":"West","revenue":300},{"region":"East","revenue":150}]`, string(b))
}

func TestAggregateIgnoresInputOrder(t *testing.T) {
	rows := []dataset.Row{
		row("k", "a", "v", 10, "w", 1),
		row("k", "b", "v", 10, "w", 2),
		row("k", "c", "v", 30, "w", 3),
		row("k", "a", "v", 5, "w", 4),
		row("k", "d", "v", 15, "w", 5),
	}
	reversed := make([]dataset.Row, len(rows))
	for i, r := range rows {
		reversed[len(rows)-1-i] = r
	}

	for _, ct := range []ChartType{ChartBar, ChartPie, ChartScatter} {
		t.Run(string(ct), func(t *testing.T) {
			a := Aggregate(rows, "k", []string{"v", "w"}, ct)
			b := Aggregate(reversed, "k", []string{"v", "w"}, ct)
			assert.Equal(t, a, b)
		})
	}
}

func TestAggregateTieBreakByKey(t *testing.T) {
	rows := []dataset.Row{
		row("k", "b", "v", 10),
		row("k", "a", "v", 10),
		row("k", "c", "v", 20),
	}
	ds := Aggregate(rows, "k", []string{"v"}, ChartPie)
	assert.Equal(t, []string{"c", "a", "b"}, ds.Keys())
}

func TestAggregateUnknownAndUnparseable(t *testing.T) {
	rows := []dataset.Row{
		row("region", "East", "revenue", 100),
		row("region", nil, "revenue", 40),
		row("revenue", 2),
		row("region", "East", "revenue", "n/a"),
	}
	ds := Aggregate(rows, "region", []string{"revenue"}, ChartBar)
	assert.Equal(t, []string{"East", UnknownKey}, ds.Keys())
	assert.Equal(t, 100.0, ds.Value(0, "revenue"))
	assert.Equal(t, 42.0, ds.Value(1, "revenue"))
}

func TestAggregateScatterAverages(t *testing.T) {
	ds := Aggregate(regionRows(), "region", []string{"revenue"}, ChartScatter)
	assert.Equal(t, []string{"West", "East"}, ds.Keys())
	assert.Equal(t, 75.0, ds.Value(1, "revenue"))
}

func TestAggregateEmpty(t *testing.T) {
	ds := Aggregate(nil, "region", []string{"revenue"}, ChartBar)
	assert.Equal(t, 0, ds.Len())

	b, err := json.Marshal(ds)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(b))
}

func TestAggregateLineOrdering(t *testing.T) {
	cases := []struct {
		name string
		keys []string
		want []string
	}{
		{"numeric", []string{"10", "9", "2"}, []string{"2", "9", "10"}},
		{"dates", []string{"2024-03-01", "2023-12-31", "2024-01-15"}, []string{"2023-12-31", "2024-01-15", "2024-03-01"}},
		{"month labels", []string{"Mar-2026", "Jan-2026", "Feb-2026"}, []string{"Jan-2026", "Feb-2026", "Mar-2026"}},
		{"case-sensitive strings", []string{"b", "a", "B"}, []string{"B", "a", "b"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rows := make([]dataset.Row, 0, len(c.keys))
			for i, k := range c.keys {
				rows = append(rows, row("k", k, "v", i+1))
			}
			for _, ct := range []ChartType{ChartLine, ChartArea} {
				ds := Aggregate(rows, "k", []string{"v"}, ct)
				assert.Equal(t, c.want, ds.Keys(), string(ct))
			}
		})
	}
}

func TestCompareKeys(t *testing.T) {
	assert.Negative(t, CompareKeys("2", "10"))
	assert.Positive(t, CompareKeys("2024-02-01", "2024-01-31"))
	assert.Zero(t, CompareKeys("x", "x"))
	// mixed numeric and text falls back to string compare
	assert.Negative(t, CompareKeys("10", "a"))
}

// ============================================================================
// VIEWS
// ============================================================================

type order struct {
	Region  string
	Revenue float64
}

func TestDomainAdapterAggregate(t *testing.T) {
	adapter := NewDomainAdapter[order]().
		Column("region", func(o order) dataset.Value { return dataset.Text(o.Region) }).
		Column("revenue", func(o order) dataset.Value { return dataset.Number(o.Revenue) })

	view := adapter.Bind([]order{{"East", 100}, {"West", 300}, {"East", 50}})
	ds := AggregateView(view, "region", []string{"revenue"}, ChartBar)

	assert.Equal(t, []string{"region", "revenue"}, adapter.Columns())
	assert.Equal(t, []string{"West", "East"}, ds.Keys())
	assert.Equal(t, 150.0, ds.Value(1, "revenue"))
	assert.True(t, view.Value(0, "missing").IsNull())
}

func TestGroupByUsesSubViews(t *testing.T) {
	groups := GroupBy(SliceView(regionRows()), "region")
	require.Len(t, groups, 2)
	assert.Equal(t, "East", groups[0].Key)
	assert.Equal(t, 2, groups[0].View.Len())
	assert.Equal(t, 50.0, groups[0].View.Value(1, "revenue").FloatOrZero())
}

func TestColumnAggregates(t *testing.T) {
	view := SliceView([]dataset.Row{
		row("v", 4, "s", "x"),
		row("v", "abc"),
		row("v", -2, "s", nil),
	})
	assert.Equal(t, 2.0, SumColumn(view, "v"))
	assert.InDelta(t, 0.6667, AvgColumn(view, "v"), 1e-4)
	assert.Equal(t, 4.0, MaxColumn(view, "v"))
	assert.Equal(t, -2.0, MinColumn(view, "v"))
	assert.Equal(t, 0.0, MaxColumn(view, "s"))
	assert.Equal(t, 1, CountColumn(view, "s"))
	assert.Equal(t, 3, CountColumn(view, AllRows))
	assert.Equal(t, []float64{4, 0, -2}, ColumnValues(view, "v"))
}
