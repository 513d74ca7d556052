package dataset

import (
	"errors"
	"fmt"
	"sort"
)

// Errors returned when a row set fails ingestion checks.
var (
	ErrUnknownColumn   = errors.New("row references unknown column")
	ErrDuplicateColumn = errors.New("duplicate column name")
	ErrEmptyColumnName = errors.New("empty column name")
	ErrNestedValue     = errors.New("nested values are not supported")
)

// Row maps column name to cell. A missing key reads as Null.
type Row map[string]Value

// Get returns the cell for column, Null when absent.
func (r Row) Get(column string) Value {
	if r == nil {
		return Null()
	}
	return r[column]
}

// Table is an ordered column set plus rows sharing it.
// Column order is the header order of the source and drives schema order.
type Table struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// NewTable validates a row set once at ingestion. Rows may omit columns
// (read as null) but may not introduce columns outside the header.
func NewTable(columns []string, rows []Row) (Table, error) {
	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		if c == "" {
			return Table{}, ErrEmptyColumnName
		}
		if seen[c] {
			return Table{}, fmt.Errorf("%w: %q", ErrDuplicateColumn, c)
		}
		seen[c] = true
	}
	for i, r := range rows {
		for k := range r {
			if !seen[k] {
				return Table{}, fmt.Errorf("%w: row %d has %q", ErrUnknownColumn, i, k)
			}
		}
	}
	return Table{Columns: columns, Rows: rows}, nil
}

// FromMaps builds a Table from loosely typed records. Columns are ordered
// by first appearance; keys new to a record are added in sorted order since
// Go maps carry no order of their own.
func FromMaps(records []map[string]any) (Table, error) {
	var columns []string
	seen := make(map[string]bool)
	rows := make([]Row, 0, len(records))

	for i, rec := range records {
		keys := make([]string, 0, len(rec))
		for k := range rec {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		row := make(Row, len(rec))
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				columns = append(columns, k)
			}
			v, err := Of(rec[k])
			if err != nil {
				return Table{}, fmt.Errorf("record %d column %q: %w", i, k, err)
			}
			row[k] = v
		}
		rows = append(rows, row)
	}
	return NewTable(columns, rows)
}

// Len returns the row count.
func (t Table) Len() int { return len(t.Rows) }

// Sample returns the first n rows (all rows when n <= 0).
func (t Table) Sample(n int) []Row {
	if n <= 0 || n >= len(t.Rows) {
		return t.Rows
	}
	return t.Rows[:n]
}

// WithRows returns a table over the same header with a different row set,
// e.g. after filtering.
func (t Table) WithRows(rows []Row) Table {
	return Table{Columns: t.Columns, Rows: rows}
}
