package engine

import (
	"sort"

	"github.com/spektr-org/insightkit/dataset"
	"github.com/spektr-org/insightkit/schema"
)

// ============================================================================
// FILTERS — Declarative Column Filtering via RowView
// ============================================================================
// Single-pass filter: checks ALL column constraints per row in one loop.
// FilterView returns a SubView (index list into parent), zero data copy.
// Matching is exact on stringified values; null cells match the literal
// markers "null" and "undefined".
// ============================================================================

// Null markers accepted in a filter set.
const (
	NullMarker      = "null"
	UndefinedMarker = "undefined"
)

// ApplyFilters returns the rows matching every filter entry, in original
// order, truncated to limit when limit > 0. An empty filter set with no
// limit returns rows unchanged.
func ApplyFilters(rows []dataset.Row, filters FilterSet, limit int) []dataset.Row {
	if filters.IsEmpty() && (limit <= 0 || limit >= len(rows)) {
		return rows
	}
	return rowsOf(FilterView(SliceView(rows), filters, limit), nil)
}

// FilterView returns a view of rows matching all column filters.
// Columns are AND-combined; values within a column are OR-combined.
func FilterView(view RowView, filters FilterSet, limit int) RowView {
	if filters.IsEmpty() && (limit <= 0 || limit >= view.Len()) {
		return view
	}

	// Pre-build lookup sets for each column filter
	sets := make(map[string]map[string]bool)
	for col, allowed := range filters {
		if len(allowed) > 0 {
			sets[col] = toSet(allowed)
		}
	}

	// Single pass: a row passes if it matches ALL column filters
	n := view.Len()
	indices := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if limit > 0 && len(indices) >= limit {
			break
		}
		if matches(view, i, sets) {
			indices = append(indices, i)
		}
	}

	return newSubView(view, indices)
}

func matches(view RowView, i int, sets map[string]map[string]bool) bool {
	for col, set := range sets {
		v := view.Value(i, col)
		if v.IsNull() {
			if !set[NullMarker] && !set[UndefinedMarker] {
				return false
			}
			continue
		}
		if !set[v.String()] {
			return false
		}
	}
	return true
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}

// ============================================================================
// FILTER OPTIONS
// ============================================================================

// Default bounds on the distinct-value count of a filterable dimension.
const (
	DefaultMinFilterOptions = 2
	DefaultMaxFilterOptions = 50
)

// FilterOptionBounds is the inclusive distinct-count range a dimension must
// fall in to be offered as a discrete filter.
type FilterOptionBounds struct {
	Min int `json:"min" yaml:"min_options"`
	Max int `json:"max" yaml:"max_options"`
}

// DefaultFilterOptionBounds returns [2, 50].
func DefaultFilterOptionBounds() FilterOptionBounds {
	return FilterOptionBounds{Min: DefaultMinFilterOptions, Max: DefaultMaxFilterOptions}
}

// GetFilterOptions returns per-dimension filter choices with default bounds.
func GetFilterOptions(rows []dataset.Row, sch *schema.Schema) []FilterOption {
	return DefaultFilterOptionBounds().Options(rows, sch)
}

// Options returns, for each dimension in schema order, the sorted distinct
// stringified non-null values, keeping only dimensions whose distinct count
// is within bounds.
func (b FilterOptionBounds) Options(rows []dataset.Row, sch *schema.Schema) []FilterOption {
	if b.Min <= 0 {
		b.Min = DefaultMinFilterOptions
	}
	if b.Max <= 0 {
		b.Max = DefaultMaxFilterOptions
	}

	out := []FilterOption{}
	if sch == nil {
		return out
	}
	view := SliceView(rows)
	for _, dim := range sch.Dimensions {
		values := UniqueValues(view, dim.Name)
		if len(values) < b.Min || len(values) > b.Max {
			continue
		}
		sort.Strings(values)
		out = append(out, FilterOption{Column: dim.Name, Values: values})
	}
	return out
}
