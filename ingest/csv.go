package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/spektr-org/insightkit/dataset"
)

// ============================================================================
// CSV — Header row + delimited records into a Table
// ============================================================================
// The caller reads the bytes from wherever they live (file, S3, Sheets
// export). Cells are trimmed; null tokens become Null, numeric cells become
// Number, everything else Text. Malformed rows are skipped and counted.
// ============================================================================

// ReadCSV parses a CSV stream whose first record is the header.
func ReadCSV(r io.Reader, opts ...Option) (dataset.Table, error) {
	o := applyOptions(opts)

	reader := csv.NewReader(r)
	reader.Comma = o.comma
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return dataset.Table{}, ErrNoHeader
	}
	if err != nil {
		return dataset.Table{}, fmt.Errorf("read CSV header: %w", err)
	}

	var records [][]string
	skipped := 0
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			skipped++
			continue // skip malformed rows
		}
		records = append(records, rec)
	}
	if skipped > 0 {
		o.logger.Printf("⚠️  insightkit ingest: skipped %d unreadable CSV rows", skipped)
	}

	return o.tabular("CSV", header, records)
}
