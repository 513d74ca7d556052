package suggest

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ============================================================================
// RESPONSE DECODER — Extracts the structured payload from collaborator text
// ============================================================================
// Tolerates: the JSON object raw or inside a ``` / ```json fence, prose
// around it, missing keys, extra keys and malformed list elements. Anything
// else is a DecodeError; the orchestrator turns that into a fallback.
// ============================================================================

// ErrNoPayload is wrapped by DecodeError when no JSON object is present.
var ErrNoPayload = errors.New("no JSON object found")

// DecodeError reports why collaborator text could not be decoded.
type DecodeError struct {
	Snippet string // leading part of the offending text
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode suggestion payload: %v (response: %.200s)", e.Err, e.Snippet)
}

func (e *DecodeError) Unwrap() error { return e.Err }

var fenceRegex = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*\\n?(.*?)```")

// Decode extracts a Payload from free-form text.
func Decode(text string) (Payload, error) {
	body, ok := extractObject(text)
	if !ok {
		return Payload{}, &DecodeError{Snippet: snippet(text), Err: ErrNoPayload}
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &top); err != nil {
		return Payload{}, &DecodeError{Snippet: snippet(body), Err: err}
	}

	var p Payload
	p.KPIs = decodeList[KPICandidate](top["kpis"], &p.Dropped)
	p.Charts = decodeList[ChartCandidate](top["charts"], &p.Dropped)
	p.Combinations = decodeList[CombinationCandidate](top["combinations"], &p.Dropped)

	var insights looseStrings
	if raw, ok := top["insights"]; ok {
		if err := json.Unmarshal(raw, &insights); err != nil {
			p.Dropped++
		}
	}
	p.Insights = insights
	return p, nil
}

// extractObject returns the JSON object in text: a fenced block first, then
// the span from the first '{' to the last '}'.
func extractObject(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if m := fenceRegex.FindStringSubmatch(text); m != nil {
		if inner := strings.TrimSpace(m[1]); strings.HasPrefix(inner, "{") {
			text = inner
		}
	}

	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// decodeList decodes a JSON array element by element, dropping elements
// that do not decode into T. A missing or non-array value yields nil.
func decodeList[T any](raw json.RawMessage, dropped *int) []T {
	if len(raw) == 0 {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		*dropped++
		return nil
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			*dropped++
			continue
		}
		out = append(out, v)
	}
	return out
}

func snippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 200 {
		return s[:200]
	}
	return s
}
