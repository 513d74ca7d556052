package ingest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spektr-org/insightkit/dataset"
)

type readerFunc func(io.Reader, ...Option) (dataset.Table, error)

func readTSV(r io.Reader, opts ...Option) (dataset.Table, error) {
	return ReadCSV(r, append(opts, WithComma('\t'))...)
}

var readers = map[string]readerFunc{
	".csv":  ReadCSV,
	".tsv":  readTSV,
	".json": ReadJSON,
	".xlsx": ReadXLSX,
	".xlsm": ReadXLSX,
}

// Open reads a file, choosing the reader from its extension:
// .csv, .tsv, .json and .xlsx/.xlsm.
func Open(path string, opts ...Option) (dataset.Table, error) {
	ext := strings.ToLower(filepath.Ext(path))
	read, ok := readers[ext]
	if !ok {
		return dataset.Table{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return dataset.Table{}, err
	}
	defer f.Close()

	t, err := read(f, opts...)
	if err != nil {
		return dataset.Table{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return t, nil
}

// Supported reports whether Open can read path.
func Supported(path string) bool {
	_, ok := readers[strings.ToLower(filepath.Ext(path))]
	return ok
}
