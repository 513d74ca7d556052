package ingest

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/spektr-org/insightkit/dataset"
)

// ReadXLSX reads one worksheet of an Excel workbook. The first row is the
// header; WithSheet picks the sheet, the first one is used otherwise.
// Cells are read as displayed text and typed like CSV cells.
func ReadXLSX(r io.Reader, opts ...Option) (dataset.Table, error) {
	o := applyOptions(opts)

	f, err := excelize.OpenReader(r)
	if err != nil {
		return dataset.Table{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := o.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return dataset.Table{}, ErrNoSheets
		}
		sheet = sheets[0]
	}

	records, err := f.GetRows(sheet)
	if err != nil {
		return dataset.Table{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(records) == 0 {
		return dataset.Table{}, ErrNoHeader
	}
	return o.tabular("XLSX", records[0], dropBlank(records[1:]))
}

// dropBlank removes rows with no non-empty cell; GetRows keeps them when a
// later row has content.
func dropBlank(records [][]string) [][]string {
	out := records[:0]
	for _, rec := range records {
		for _, c := range rec {
			if c != "" {
				out = append(out, rec)
				break
			}
		}
	}
	return out
}
