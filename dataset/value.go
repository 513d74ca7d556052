package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ============================================================================
// VALUE — Cell sum type (Number | Text | Null)
// ============================================================================
// Row sets arrive from many decoders (CSV, JSON, spreadsheets, SQL). Every
// cell is normalized into a Value once at ingestion so the rest of the
// pipeline never type-switches on interface{} property bags.
// ============================================================================

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindNumber
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	default:
		return "null"
	}
}

// Value is a single scalar cell. The zero Value is Null.
type Value struct {
	kind Kind
	num  float64
	text string
}

// Null returns the null cell.
func Null() Value { return Value{} }

// Number wraps a numeric cell.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Text wraps a string cell. Text is kept verbatim; numeric-looking text is
// still parseable through Float.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Of converts a loosely typed Go value into a Value.
// Nested structures are not cells and are rejected.
func Of(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return x, nil
	case float64:
		return Number(x), nil
	case float32:
		return Number(float64(x)), nil
	case int:
		return Number(float64(x)), nil
	case int8:
		return Number(float64(x)), nil
	case int16:
		return Number(float64(x)), nil
	case int32:
		return Number(float64(x)), nil
	case int64:
		return Number(float64(x)), nil
	case uint:
		return Number(float64(x)), nil
	case uint8:
		return Number(float64(x)), nil
	case uint16:
		return Number(float64(x)), nil
	case uint32:
		return Number(float64(x)), nil
	case uint64:
		return Number(float64(x)), nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return Text(x.String()), nil
		}
		return Number(f), nil
	case string:
		return Text(x), nil
	case []byte:
		return Text(string(x)), nil
	case bool:
		return Text(strconv.FormatBool(x)), nil
	case time.Time:
		return Text(formatTime(x)), nil
	case map[string]any, []any:
		return Null(), fmt.Errorf("%w: %T", ErrNestedValue, v)
	case fmt.Stringer:
		return Text(x.String()), nil
	default:
		return Text(fmt.Sprint(v)), nil
	}
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the null cell.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Float returns the numeric reading of v. Text cells are parsed; null and
// unparseable text report ok=false.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindText:
		return ParseNumber(v.text)
	default:
		return 0, false
	}
}

// FloatOrZero is the data-cleaning reading used by aggregation: anything
// that does not parse as a finite number counts as 0.
func (v Value) FloatOrZero() float64 {
	f, ok := v.Float()
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// String returns the stringified form used for grouping and filtering.
// Null renders as "null".
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindText:
		return v.text
	default:
		return "null"
	}
}

// MarshalJSON renders numbers as JSON numbers, text as strings and null as
// null. Non-finite numbers have no JSON form and render as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return []byte("null"), nil
		}
		return []byte(strconv.FormatFloat(v.num, 'f', -1, 64)), nil
	case KindText:
		return json.Marshal(v.text)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts null, numbers, strings and booleans.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	parsed, err := Of(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ============================================================================
// PARSING POLICIES
// ============================================================================

// ParseNumber parses a trimmed decimal string. Empty strings and
// non-finite spellings ("NaN", "Inf") are not numbers.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// IsDateString reports whether s is a calendar date in YYYY-MM-DD form.
// This is the pattern schema inference keys on.
func IsDateString(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return false
	}
	for i, r := range s {
		if i == 4 || i == 7 {
			continue
		}
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"Jan-2006",
	"January 2006",
	"2006-01",
}

// ParseDate reads s with the supported calendar layouts. It is more
// lenient than IsDateString and is used for ordering and growth.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func formatTime(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format(time.RFC3339)
}
