package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/insightkit/dataset"
	"github.com/spektr-org/insightkit/schema"
)

func financeRows() []dataset.Row {
	return []dataset.Row{
		row("month", "Jan-2026", "location", "Singapore", "category", "Income", "amount", 8500),
		row("month", "Jan-2026", "location", "Singapore", "category", "Expense", "amount", 2200),
		row("month", "Jan-2026", "location", "India", "category", "Income", "amount", 25000),
		row("month", "Feb-2026", "location", "Singapore", "category", "Expense", "amount", 49.9),
		row("month", "Feb-2026", "location", nil, "category", "Transfer", "amount", 50000),
	}
}

func TestApplyFiltersEmptyIsIdentity(t *testing.T) {
	rows := financeRows()
	assert.Equal(t, rows, ApplyFilters(rows, nil, 0))
	assert.Equal(t, rows, ApplyFilters(rows, FilterSet{}, 0))
	assert.Equal(t, rows, ApplyFilters(rows, FilterSet{"location": {}}, 0))
}

func TestApplyFilters(t *testing.T) {
	rows := financeRows()

	t.Run("membership", func(t *testing.T) {
		out := ApplyFilters(rows, FilterSet{"category": {"Income"}}, 0)
		require.Len(t, out, 2)
		assert.Equal(t, "Singapore", out[0].Get("location").String())
		assert.Equal(t, "India", out[1].Get("location").String())
	})

	t.Run("and across columns", func(t *testing.T) {
		out := ApplyFilters(rows, FilterSet{"category": {"Income", "Expense"}, "month": {"Feb-2026"}}, 0)
		require.Len(t, out, 1)
		assert.Equal(t, 49.9, out[0].Get("amount").FloatOrZero())
	})

	t.Run("exact match", func(t *testing.T) {
		assert.Empty(t, ApplyFilters(rows, FilterSet{"category": {"income"}}, 0))
	})

	t.Run("numbers match stringified", func(t *testing.T) {
		assert.Len(t, ApplyFilters(rows, FilterSet{"amount": {"49.9", "8500"}}, 0), 2)
	})

	t.Run("null markers", func(t *testing.T) {
		assert.Len(t, ApplyFilters(rows, FilterSet{"location": {"null"}}, 0), 1)
		assert.Len(t, ApplyFilters(rows, FilterSet{"location": {"undefined"}}, 0), 1)
		assert.Len(t, ApplyFilters(rows, FilterSet{"location": {"Unknown"}}, 0), 0)
	})

	t.Run("limit keeps original order", func(t *testing.T) {
		out := ApplyFilters(rows, FilterSet{"location": {"Singapore"}}, 2)
		require.Len(t, out, 2)
		assert.Equal(t, 8500.0, out[0].Get("amount").FloatOrZero())
		assert.Equal(t, 2200.0, out[1].Get("amount").FloatOrZero())

		assert.Len(t, ApplyFilters(rows, nil, 3), 3)
	})
}

func TestGetFilterOptions(t *testing.T) {
	rows := make([]dataset.Row, 0, 51)
	for i := 0; i < 51; i++ {
		rows = append(rows, row(
			"constant", "same",
			"twenty", fmt.Sprintf("v%02d", (50-i)%20),
			"many", fmt.Sprintf("id-%02d", i),
			"sparse", nil,
		))
	}
	sch := &schema.Schema{Dimensions: []schema.Column{
		{Name: "constant"}, {Name: "twenty"}, {Name: "many"}, {Name: "sparse"},
	}}

	opts := GetFilterOptions(rows, sch)
	require.Len(t, opts, 1)
	assert.Equal(t, "twenty", opts[0].Column)
	require.Len(t, opts[0].Values, 20)
	assert.Equal(t, "v00", opts[0].Values[0])
	assert.Equal(t, "v19", opts[0].Values[19])

	wide := FilterOptionBounds{Min: 1, Max: 60}.Options(rows, sch)
	assert.Len(t, wide, 3)
	assert.Empty(t, GetFilterOptions(rows, nil))
}
