package engine

import (
	"github.com/spektr-org/insightkit/dataset"
)

// ============================================================================
// ROW VIEW — Zero-Copy Data Access Interface
// ============================================================================
// The engine never owns caller data. It reads through this interface.
//
// Implementations:
//   SliceView      wraps []dataset.Row (ingested tables)
//   SubView        filtered/grouped subset (indices into parent, zero-copy)
//   DomainView[T]  reads typed structs via accessor functions (zero-copy)
//
// Grouping, filtering and KPI loops all run over views, so a group or a
// filtered subset never copies rows.
// ============================================================================

// RowView provides indexed access to a row set.
// The engine calls Value in tight loops, keep implementations fast.
type RowView interface {
	Len() int
	Value(index int, column string) dataset.Value
}

// ============================================================================
// SLICE VIEW
// ============================================================================

// SliceView wraps a []dataset.Row slice as a RowView.
type SliceView []dataset.Row

func (v SliceView) Len() int { return len(v) }

func (v SliceView) Value(i int, column string) dataset.Value {
	if i < 0 || i >= len(v) {
		return dataset.Null()
	}
	return v[i].Get(column)
}

// ============================================================================
// SUB VIEW — subset (zero-copy)
// ============================================================================

// SubView is a subset of a parent RowView.
// Holds indices into the parent, no data copy.
type SubView struct {
	parent  RowView
	indices []int
}

func newSubView(parent RowView, indices []int) *SubView {
	return &SubView{parent: parent, indices: indices}
}

func (v *SubView) Len() int { return len(v.indices) }

func (v *SubView) Value(i int, column string) dataset.Value {
	if i < 0 || i >= len(v.indices) {
		return dataset.Null()
	}
	return v.parent.Value(v.indices[i], column)
}

// rowsOf materializes a view back into rows. SliceView and SubView over a
// SliceView share the caller's row maps.
func rowsOf(view RowView, columns []string) []dataset.Row {
	switch v := view.(type) {
	case SliceView:
		return v
	case *SubView:
		if parent, ok := v.parent.(SliceView); ok {
			out := make([]dataset.Row, len(v.indices))
			for i, idx := range v.indices {
				out[i] = parent[idx]
			}
			return out
		}
	}

	out := make([]dataset.Row, view.Len())
	for i := range out {
		row := make(dataset.Row, len(columns))
		for _, c := range columns {
			row[c] = view.Value(i, c)
		}
		out[i] = row
	}
	return out
}

// ============================================================================
// DOMAIN ADAPTER — Zero-copy typed struct access
// ============================================================================
//
// Usage:
//
//	adapter := engine.NewDomainAdapter[Order]().
//	    Column("region", func(o Order) dataset.Value { return dataset.Text(o.Region) }).
//	    Column("revenue", func(o Order) dataset.Value { return dataset.Number(o.Revenue) })
//
//	ds := engine.AggregateView(adapter.Bind(orders), "region", []string{"revenue"}, engine.ChartBar)
//
// ============================================================================

// DomainAdapter builds a RowView from typed structs.
// Declare once, bind many times.
type DomainAdapter[T any] struct {
	order []string
	cols  map[string]func(T) dataset.Value
}

// NewDomainAdapter creates a new adapter for type T.
func NewDomainAdapter[T any]() *DomainAdapter[T] {
	return &DomainAdapter[T]{cols: make(map[string]func(T) dataset.Value)}
}

// Column registers a column accessor.
func (a *DomainAdapter[T]) Column(name string, fn func(T) dataset.Value) *DomainAdapter[T] {
	if _, exists := a.cols[name]; !exists {
		a.order = append(a.order, name)
	}
	a.cols[name] = fn
	return a
}

// Columns returns registered column names in registration order.
func (a *DomainAdapter[T]) Columns() []string { return a.order }

// Bind creates a RowView from a data slice. Zero-copy, holds the reference.
func (a *DomainAdapter[T]) Bind(data []T) RowView {
	return &DomainView[T]{data: data, cols: a.cols}
}

// DomainView reads typed struct fields via registered accessor functions.
type DomainView[T any] struct {
	data []T
	cols map[string]func(T) dataset.Value
}

func (v *DomainView[T]) Len() int { return len(v.data) }

func (v *DomainView[T]) Value(i int, column string) dataset.Value {
	if i < 0 || i >= len(v.data) {
		return dataset.Null()
	}
	if fn, ok := v.cols[column]; ok {
		return fn(v.data[i])
	}
	return dataset.Null()
}
