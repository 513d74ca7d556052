package schema

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/insightkit/dataset"
)

// ============================================================================
// INFERENCE TESTS
// ============================================================================

// salesTable is a small retail export: region/product are categorical,
// revenue and units vary per row, order_date is a calendar date.
func salesTable(t *testing.T) dataset.Table {
	t.Helper()
	records := []map[string]any{}
	regions := []string{"East", "West", "North", "South"}
	for i := 0; i < 12; i++ {
		records = append(records, map[string]any{
			"region":     regions[i%4],
			"product":    fmt.Sprintf("P%d", i%3),
			"revenue":    100 + i*25,
			"units":      i + 1,
			"order_date": fmt.Sprintf("2024-01-%02d", i+1),
			"priority":   i%3 + 1,
		})
	}
	tbl, err := dataset.NewTable(
		[]string{"region", "product", "revenue", "units", "order_date", "priority"},
		mustRows(t, records),
	)
	require.NoError(t, err)
	return tbl
}

func mustRows(t *testing.T, records []map[string]any) []dataset.Row {
	t.Helper()
	tbl, err := dataset.FromMaps(records)
	require.NoError(t, err)
	return tbl.Rows
}

func TestInferSalesTable(t *testing.T) {
	sch, err := Infer(salesTable(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"revenue", "units"}, sch.MeasureNames())
	assert.Equal(t, []string{"region", "product", "order_date", "priority"}, sch.DimensionNames())
	assert.Equal(t, 12, sch.RowCount)

	date, ok := sch.Dimension("order_date")
	require.True(t, ok)
	assert.Equal(t, TypeDate, date.Type)

	// Coded numeric column: number type but too few distinct values.
	prio, ok := sch.Dimension("priority")
	require.True(t, ok)
	assert.Equal(t, TypeNumber, prio.Type)
	assert.Equal(t, 3, prio.UniqueValueCount)

	region, _ := sch.Column("region")
	assert.Equal(t, TypeString, region.Type)
	assert.Equal(t, []string{"East", "West", "North", "South"}, region.SampleValues)
	assert.False(t, region.Nullable)
	assert.True(t, sch.HasDateDimension())
}

func TestInferPartitionsColumns(t *testing.T) {
	sch, err := Infer(salesTable(t))
	require.NoError(t, err)

	seen := map[string]int{}
	for _, c := range sch.Measures {
		seen[c.Name]++
	}
	for _, c := range sch.Dimensions {
		seen[c.Name]++
	}
	require.Len(t, seen, len(sch.Columns))
	for _, c := range sch.Columns {
		assert.Equal(t, 1, seen[c.Name], "%s must be in exactly one group", c.Name)
	}
}

func TestInferEmptyInput(t *testing.T) {
	_, err := Infer(dataset.Table{Columns: []string{"a"}})
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = Infer(dataset.Table{Rows: []dataset.Row{{}}})
	assert.ErrorIs(t, err, ErrNoColumns)
}

func TestInferNullable(t *testing.T) {
	tbl, err := dataset.NewTable([]string{"a", "b"}, []dataset.Row{
		{"a": dataset.Number(1), "b": dataset.Text("x")},
		{"a": dataset.Null(), "b": dataset.Text("y")},
		{"b": dataset.Text("z")},
	})
	require.NoError(t, err)

	sch, err := Infer(tbl)
	require.NoError(t, err)
	a, _ := sch.Column("a")
	b, _ := sch.Column("b")
	assert.True(t, a.Nullable)
	assert.Equal(t, 1, a.UniqueValueCount)
	assert.False(t, b.Nullable)
}

// ============================================================================
// POLICY TESTS
// ============================================================================

func values(items ...any) []dataset.Value {
	out := make([]dataset.Value, len(items))
	for i, it := range items {
		v, _ := dataset.Of(it)
		out[i] = v
	}
	return out
}

func TestClassifyColumnTypeThreshold(t *testing.T) {
	// 9 of 10 numeric → number
	assert.Equal(t, TypeNumber, ClassifyColumnType(values(1, 2, 3, 4, 5, 6, 7, 8, 9, "x")))
	// exactly 80% numeric is not enough; the boundary is strict.
	assert.Equal(t, TypeString, ClassifyColumnType(values(1, 2, 3, 4, "x")))
	// numeric text counts as numeric
	assert.Equal(t, TypeNumber, ClassifyColumnType(values("1", "2.5", "-3")))
	// date-like text
	assert.Equal(t, TypeDate, ClassifyColumnType(values("2024-01-01", "2024-02-01", "2024-03-01")))
	// mixed numbers and dates, neither dominant
	assert.Equal(t, TypeString, ClassifyColumnType(values(1, 2, "2024-01-01", "2024-01-02")))
	assert.Equal(t, TypeString, ClassifyColumnType(nil))
}

func TestPolicyOverrides(t *testing.T) {
	strict := Policy{TypeThreshold: 0.95, MeasureMinUnique: 2}
	assert.Equal(t, TypeString, strict.ClassifyColumnType(values(1, 2, 3, 4, 5, 6, 7, 8, 9, "x")))

	col := Column{Type: TypeNumber, UniqueValueCount: 3}
	assert.True(t, strict.IsMeasure(col))
	assert.False(t, DefaultPolicy().IsMeasure(col))
	assert.False(t, DefaultPolicy().IsMeasure(Column{Type: TypeString, UniqueValueCount: 100}))
	assert.True(t, DefaultPolicy().IsMeasure(Column{Type: TypeNumber, UniqueValueCount: 6}))
}

// ============================================================================
// FINGERPRINT + NAMES
// ============================================================================

func TestFingerprint(t *testing.T) {
	a := &Schema{Columns: []Column{{Name: "region", Type: TypeString}, {Name: "revenue", Type: TypeNumber}}}
	b := &Schema{Columns: []Column{{Name: "region", Type: TypeString}, {Name: "revenue", Type: TypeNumber}}, RowCount: 99}
	swapped := &Schema{Columns: []Column{{Name: "revenue", Type: TypeNumber}, {Name: "region", Type: TypeString}}}
	retyped := &Schema{Columns: []Column{{Name: "region", Type: TypeString}, {Name: "revenue", Type: TypeString}}}

	assert.Len(t, a.Fingerprint(), 16)
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), swapped.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), retyped.Fingerprint())
}

func TestHumanize(t *testing.T) {
	cases := map[string]string{
		"revenue":       "Revenue",
		"total_revenue": "Total Revenue",
		"unitPrice":     "Unit Price",
		"ship-cost":     "Ship Cost",
		"Order Date":    "Order Date",
	}
	for in, want := range cases {
		assert.Equal(t, want, Humanize(in), in)
	}
}

func TestSnakeCase(t *testing.T) {
	assert.Equal(t, "story_points", SnakeCase("Story Points"))
	assert.Equal(t, "unit_price", SnakeCase("unitPrice"))
	assert.Equal(t, "sub_category", SnakeCase("Sub-Category"))
}
