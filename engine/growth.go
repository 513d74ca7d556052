package engine

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/spektr-org/insightkit/dataset"
)

// ============================================================================
// GROWTH — Change between the earliest and latest dated rows
// ============================================================================
// Rows whose date cell does not parse are ignored. Fewer than two dated rows
// or a first value of 0 saturate the rate to 0 instead of dividing by zero.
// ============================================================================

// Growth directions.
const (
	DirectionIncreased    = "increased"
	DirectionDecreased    = "decreased"
	DirectionUnchanged    = "unchanged"
	DirectionInsufficient = "insufficient data"
)

// GrowthData contains change-over-time metrics.
type GrowthData struct {
	DateColumn     string  `json:"dateColumn"`
	ValueColumn    string  `json:"valueColumn"`
	EarliestValue  float64 `json:"earliestValue"`
	LatestValue    float64 `json:"latestValue"`
	EarliestPeriod string  `json:"earliestPeriod"`
	LatestPeriod   string  `json:"latestPeriod"`
	ChangeAmount   float64 `json:"changeAmount"`
	ChangePercent  float64 `json:"changePercent"`
	Direction      string  `json:"direction"`
}

// GrowthRate returns (lastByDate - firstByDate) / firstByDate * 100.
func GrowthRate(rows []dataset.Row, dateColumn, valueColumn string) float64 {
	return Growth(SliceView(rows), dateColumn, valueColumn).ChangePercent
}

// Growth computes growth metrics over a view.
func Growth(view RowView, dateColumn, valueColumn string) GrowthData {
	g := GrowthData{DateColumn: dateColumn, ValueColumn: valueColumn, Direction: DirectionInsufficient}

	type entry struct {
		date  time.Time
		label string
		value float64
	}
	entries := make([]entry, 0, view.Len())
	for i := 0; i < view.Len(); i++ {
		cell := view.Value(i, dateColumn)
		if cell.IsNull() {
			continue
		}
		d, ok := dataset.ParseDate(cell.String())
		if !ok {
			continue
		}
		entries = append(entries, entry{date: d, label: cell.String(), value: view.Value(i, valueColumn).FloatOrZero()})
	}
	if len(entries) < 2 {
		return g
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].date.Before(entries[j].date) })
	earliest, latest := entries[0], entries[len(entries)-1]

	g.EarliestValue = earliest.value
	g.LatestValue = latest.value
	g.EarliestPeriod = earliest.label
	g.LatestPeriod = latest.label
	g.ChangeAmount = latest.value - earliest.value
	if earliest.value == 0 {
		g.Direction = DirectionUnchanged
		return g
	}

	g.ChangePercent = g.ChangeAmount / earliest.value * 100
	switch {
	case g.ChangePercent > 0.5:
		g.Direction = DirectionIncreased
	case g.ChangePercent < -0.5:
		g.Direction = DirectionDecreased
	default:
		g.Direction = DirectionUnchanged
	}
	return g
}

// Describe renders the growth as a short arrow label, e.g. "↑ 50.0%".
func (g GrowthData) Describe() string {
	abs := math.Abs(g.ChangePercent)
	switch g.Direction {
	case DirectionIncreased:
		return fmt.Sprintf("↑ %.1f%%", abs)
	case DirectionDecreased:
		return fmt.Sprintf("↓ %.1f%%", abs)
	case DirectionUnchanged:
		return "→ No change"
	default:
		return "Not enough dated rows"
	}
}

// Period renders "earliest – latest".
func (g GrowthData) Period() string {
	if g.EarliestPeriod == "" {
		return ""
	}
	return fmt.Sprintf("%s – %s", g.EarliestPeriod, g.LatestPeriod)
}
