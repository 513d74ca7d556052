package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spektr-org/insightkit/dataset"
)

// ReadJSON parses a JSON array of flat objects. Column order follows
// first appearance in the document, keys included. Nested objects or arrays
// are rejected with dataset.ErrNestedValue.
func ReadJSON(r io.Reader, opts ...Option) (dataset.Table, error) {
	o := applyOptions(opts)
	dec := json.NewDecoder(r)
	dec.UseNumber()

	if err := expectDelim(dec, '['); err != nil {
		return dataset.Table{}, err
	}

	var columns []string
	seen := make(map[string]bool)
	var rows []dataset.Row

	for i := 0; dec.More(); i++ {
		if err := expectDelim(dec, '{'); err != nil {
			return dataset.Table{}, fmt.Errorf("record %d: %w", i, err)
		}
		row := dataset.Row{}
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return dataset.Table{}, fmt.Errorf("record %d: %w", i, err)
			}
			name, _ := tok.(string)
			if o.snakeCase {
				name = o.header([]string{name})[0]
			}

			var raw any
			if err := dec.Decode(&raw); err != nil {
				return dataset.Table{}, fmt.Errorf("record %d column %q: %w", i, name, err)
			}
			v, err := jsonCell(raw, o)
			if err != nil {
				return dataset.Table{}, fmt.Errorf("record %d column %q: %w", i, name, err)
			}
			if !seen[name] {
				seen[name] = true
				columns = append(columns, name)
			}
			row[name] = v
		}
		if err := expectDelim(dec, '}'); err != nil {
			return dataset.Table{}, fmt.Errorf("record %d: %w", i, err)
		}
		rows = append(rows, row)
	}
	if err := expectDelim(dec, ']'); err != nil {
		return dataset.Table{}, err
	}
	return dataset.NewTable(columns, rows)
}

// jsonCell keeps JSON numbers as Number and runs strings through the same
// null/number detection as CSV cells.
func jsonCell(raw any, o options) (dataset.Value, error) {
	if s, ok := raw.(string); ok {
		return o.cell(s), nil
	}
	return dataset.Of(raw)
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: unexpected end of input", ErrNotArray)
	}
	if err != nil {
		return fmt.Errorf("decode JSON: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("%w: got %v, want %v", ErrNotArray, tok, want)
	}
	return nil
}
