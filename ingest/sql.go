package ingest

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spektr-org/insightkit/dataset"
)

// QuerySQL runs query against db and returns the result set as a Table.
// Drivers are registered by the caller (sqlite, mysql, postgres). Text
// columns returned as bytes are typed like CSV cells; native numeric and
// time values keep their type.
func QuerySQL(ctx context.Context, db *sql.DB, query string, args ...any) (dataset.Table, error) {
	return QuerySQLWith(ctx, db, nil, query, args...)
}

// QuerySQLWith is QuerySQL with reader options.
func QuerySQLWith(ctx context.Context, db *sql.DB, opts []Option, query string, args ...any) (dataset.Table, error) {
	o := applyOptions(opts)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return dataset.Table{}, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return dataset.Table{}, fmt.Errorf("columns: %w", err)
	}
	columns := o.header(names)

	var out []dataset.Row
	cells := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range cells {
		ptrs[i] = &cells[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return dataset.Table{}, fmt.Errorf("scan row %d: %w", len(out), err)
		}
		row := make(dataset.Row, len(columns))
		for i, col := range columns {
			v, err := sqlCell(cells[i], o)
			if err != nil {
				return dataset.Table{}, fmt.Errorf("row %d column %q: %w", len(out), col, err)
			}
			row[col] = v
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return dataset.Table{}, fmt.Errorf("iterate rows: %w", err)
	}
	return dataset.NewTable(columns, out)
}

func sqlCell(v any, o options) (dataset.Value, error) {
	switch x := v.(type) {
	case []byte:
		return o.cell(string(x)), nil
	case string:
		return o.cell(x), nil
	default:
		return dataset.Of(v)
	}
}
