// Package ingest turns files and query results into dataset.Table values.
//
// Decoding is upstream of the analytics core: every reader here produces
// the same row model (Null, Number or Text cells under an ordered header),
// so schema inference never knows where the rows came from.
package ingest

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/spektr-org/insightkit/dataset"
	"github.com/spektr-org/insightkit/schema"
)

var (
	// ErrNoHeader is returned when a source has no header row.
	ErrNoHeader = errors.New("ingest: missing header row")
	// ErrUnsupportedFormat is returned by Open for unknown file extensions.
	ErrUnsupportedFormat = errors.New("ingest: unsupported file format")
	// ErrNotArray is returned when a JSON document is not an array of objects.
	ErrNotArray = errors.New("ingest: expected a JSON array of objects")
	// ErrNoSheets is returned for a workbook without worksheets.
	ErrNoSheets = errors.New("ingest: workbook has no sheets")
)

// DefaultNullTokens are cell spellings read as Null.
var DefaultNullTokens = []string{"", "null", "NULL", "N/A"}

type options struct {
	snakeCase  bool
	nullTokens map[string]bool
	comma      rune
	sheet      string
	logger     *log.Logger
}

// Option configures a reader.
type Option func(*options)

// WithSnakeCaseHeaders normalizes header names ("Order Date" → "order_date").
func WithSnakeCaseHeaders() Option {
	return func(o *options) { o.snakeCase = true }
}

// WithNullTokens replaces the set of spellings read as Null. Cells are
// trimmed before matching.
func WithNullTokens(tokens ...string) Option {
	return func(o *options) {
		o.nullTokens = make(map[string]bool, len(tokens))
		for _, t := range tokens {
			o.nullTokens[t] = true
		}
	}
}

// WithComma sets the CSV field delimiter.
func WithComma(r rune) Option {
	return func(o *options) { o.comma = r }
}

// WithSheet selects the XLSX worksheet; the first sheet is used otherwise.
func WithSheet(name string) Option {
	return func(o *options) { o.sheet = name }
}

// WithLogger routes ingestion warnings (skipped rows) to l.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

func applyOptions(opts []Option) options {
	o := options{comma: ',', logger: log.Default()}
	WithNullTokens(DefaultNullTokens...)(&o)
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// cell converts raw text into a Value: null tokens → Null, numbers whose
// canonical spelling matches the source → Number, otherwise Text. "02134"
// and "1.50" stay Text so group keys and filter values keep the source
// spelling; Value.Float still reads them as numbers.
func (o options) cell(raw string) dataset.Value {
	s := strings.TrimSpace(raw)
	if o.nullTokens[s] {
		return dataset.Null()
	}
	if f, ok := dataset.ParseNumber(s); ok && strconv.FormatFloat(f, 'f', -1, 64) == s {
		return dataset.Number(f)
	}
	return dataset.Text(s)
}

// header trims and optionally normalizes column names. Blank names become
// column_N and repeats get a numeric suffix so the header stays unique.
func (o options) header(raw []string) []string {
	out := make([]string, len(raw))
	used := make(map[string]bool, len(raw))
	for i, h := range raw {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if o.snakeCase {
			h = schema.SnakeCase(h)
		}
		if h == "" {
			h = fmt.Sprintf("column_%d", i+1)
		}
		name := h
		for n := 2; used[name]; n++ {
			name = fmt.Sprintf("%s_%d", h, n)
		}
		used[name] = true
		out[i] = name
	}
	return out
}

// tabular builds a table from string records sharing header. Rows longer
// than the header with non-empty overflow cells are skipped.
func (o options) tabular(source string, header []string, records [][]string) (dataset.Table, error) {
	columns := o.header(header)
	rows := make([]dataset.Row, 0, len(records))
	skipped := 0
	for _, rec := range records {
		if overflows(rec, len(columns)) {
			skipped++
			continue
		}
		row := make(dataset.Row, len(columns))
		for i, col := range columns {
			if i < len(rec) {
				row[col] = o.cell(rec[i])
			} else {
				row[col] = dataset.Null()
			}
		}
		rows = append(rows, row)
	}
	if skipped > 0 {
		o.logger.Printf("⚠️  insightkit ingest: skipped %d malformed %s rows", skipped, source)
	}
	return dataset.NewTable(columns, rows)
}

func overflows(rec []string, width int) bool {
	for i := width; i < len(rec); i++ {
		if strings.TrimSpace(rec[i]) != "" {
			return true
		}
	}
	return false
}
