package suggest

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/spektr-org/insightkit/engine"
)

// ============================================================================
// SUGGESTION TYPES — Validated output + loosely typed candidate payload
// ============================================================================
// Candidates come from free-form collaborator text and are never trusted:
// every field is decoded leniently and re-checked against the schema.
// ============================================================================

// Source records where a suggestion set came from.
type Source string

const (
	SourceAI       Source = "ai"
	SourceFallback Source = "fallback"
)

// Suggestions is a structurally valid KPI/chart/insight set.
type Suggestions struct {
	KPIs     []engine.KPIDefinition   `json:"kpis"`
	Charts   []engine.ChartDefinition `json:"charts"`
	Insights []string                 `json:"insights"`
	Source   Source                   `json:"source"`
}

// clone returns a deep copy so cached values are never shared with callers.
func (s Suggestions) clone() Suggestions {
	out := Suggestions{
		KPIs:     append([]engine.KPIDefinition{}, s.KPIs...),
		Charts:   make([]engine.ChartDefinition, len(s.Charts)),
		Insights: append([]string{}, s.Insights...),
		Source:   s.Source,
	}
	for i, c := range s.Charts {
		c.Measures = append([]string{}, c.Measures...)
		c.Dimensions = append([]string{}, c.Dimensions...)
		out.Charts[i] = c
	}
	return out
}

// Selection is an explicit user choice of measures and dimensions.
type Selection struct {
	Measures   []string `json:"measures"`
	Dimensions []string `json:"dimensions"`
}

// Key is the order-sensitive cache key part of a selection.
func (s Selection) Key() string {
	return strings.Join(s.Measures, ",") + "/" + strings.Join(s.Dimensions, ",")
}

// IsEmpty reports whether nothing is selected.
func (s Selection) IsEmpty() bool {
	return len(s.Measures) == 0 && len(s.Dimensions) == 0
}

// Combination is one chart suggestion in custom-combination mode.
type Combination struct {
	Title      string           `json:"title"`
	Type       engine.ChartType `json:"type"`
	Measures   []string         `json:"measures"`
	Dimensions []string         `json:"dimensions"`
	Rationale  string           `json:"rationale"`
	Insights   []string         `json:"insights"`
}

// Chart returns the chart definition of a combination.
func (c Combination) Chart() engine.ChartDefinition {
	return engine.ChartDefinition{Title: c.Title, Type: c.Type, Measures: c.Measures, Dimensions: c.Dimensions}
}

// CombinationSet is the result of custom-combination suggestion.
type CombinationSet struct {
	Combinations []Combination `json:"combinations"`
	Source       Source        `json:"source"`
}

// Charts returns every combination's chart definition.
func (s CombinationSet) Charts() []engine.ChartDefinition {
	out := make([]engine.ChartDefinition, len(s.Combinations))
	for i, c := range s.Combinations {
		out[i] = c.Chart()
	}
	return out
}

func (s CombinationSet) clone() CombinationSet {
	out := CombinationSet{Combinations: make([]Combination, len(s.Combinations)), Source: s.Source}
	for i, c := range s.Combinations {
		c.Measures = append([]string{}, c.Measures...)
		c.Dimensions = append([]string{}, c.Dimensions...)
		c.Insights = append([]string{}, c.Insights...)
		out.Combinations[i] = c
	}
	return out
}

// ============================================================================
// CANDIDATE PAYLOAD
// ============================================================================

// Payload is the decoded, unvalidated structure found in collaborator text.
// Elements that fail to decode are dropped; Dropped counts them.
type Payload struct {
	KPIs         []KPICandidate
	Charts       []ChartCandidate
	Insights     []string
	Combinations []CombinationCandidate
	Dropped      int
}

// KPICandidate is an unvalidated KPI.
type KPICandidate struct {
	Name        looseString `json:"name"`
	Calculation looseString `json:"calculation"`
	Column      looseString `json:"column"`
	Format      looseString `json:"format"`
}

// ChartCandidate is an unvalidated chart. Singular measure/dimension keys
// are accepted alongside the lists.
type ChartCandidate struct {
	Title      looseString  `json:"title"`
	Type       looseString  `json:"type"`
	Measures   looseStrings `json:"measures"`
	Dimensions looseStrings `json:"dimensions"`
	Measure    looseString  `json:"measure"`
	Dimension  looseString  `json:"dimension"`
}

func (c ChartCandidate) measures() []string {
	return appendSingle(c.Measures, c.Measure)
}

func (c ChartCandidate) dimensions() []string {
	return appendSingle(c.Dimensions, c.Dimension)
}

func appendSingle(list looseStrings, single looseString) []string {
	out := []string(list)
	if s := strings.TrimSpace(string(single)); s != "" {
		out = append(out, s)
	}
	return out
}

// CombinationCandidate is an unvalidated custom combination.
type CombinationCandidate struct {
	ChartCandidate
	Rationale looseString  `json:"rationale"`
	Insights  looseStrings `json:"insights"`
}

// looseString accepts a JSON string, number or bool; null and other shapes
// decode as "".
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = looseString(v)
	case 't', 'f':
		*s = looseString(strconv.FormatBool(data[0] == 't'))
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		*s = looseString(data)
	default:
		*s = ""
	}
	return nil
}

// looseStrings accepts an array of scalars or a single string.
type looseStrings []string

func (l *looseStrings) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		out := make([]string, 0, len(raw))
		for _, r := range raw {
			var s looseString
			if err := s.UnmarshalJSON(r); err != nil {
				continue
			}
			if v := strings.TrimSpace(string(s)); v != "" {
				out = append(out, v)
			}
		}
		*l = out
	case '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		if v = strings.TrimSpace(v); v != "" {
			*l = []string{v}
		}
	default:
		*l = nil
	}
	return nil
}
