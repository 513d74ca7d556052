package engine

import (
	"fmt"

	"github.com/spektr-org/insightkit/dataset"
)

// ComputeKPI applies a definition to rows using the default formatter.
func ComputeKPI(rows []dataset.Row, def KPIDefinition) (KPIResult, error) {
	return computeKPI(SliceView(rows), def, DefaultFormatter())
}

// ComputeKPIs applies each definition in order. Definitions that cannot be
// computed are skipped and reported as warnings.
func ComputeKPIs(rows []dataset.Row, defs []KPIDefinition) ([]KPIResult, []Warning) {
	return computeKPIs(SliceView(rows), defs, DefaultFormatter())
}

func computeKPIs(view RowView, defs []KPIDefinition, f Formatter) ([]KPIResult, []Warning) {
	results := make([]KPIResult, 0, len(defs))
	var warnings []Warning
	for _, def := range defs {
		res, err := computeKPI(view, def, f)
		if err != nil {
			warnings = append(warnings, newWarning("kpi", def.Name, err))
			continue
		}
		results = append(results, res)
	}
	return results, warnings
}

func computeKPI(view RowView, def KPIDefinition, f Formatter) (KPIResult, error) {
	def = def.withDefaults()
	if !def.Calculation.Valid() {
		return KPIResult{}, fmt.Errorf("%w %q", ErrUnknownCalculation, def.Calculation)
	}
	if def.Column == "" || (def.Column == AllRows && def.Calculation != CalcCount) {
		return KPIResult{}, fmt.Errorf("%w: %s", ErrColumnRequired, def.Calculation)
	}

	var value float64
	switch def.Calculation {
	case CalcSum:
		value = SumColumn(view, def.Column)
	case CalcAvg:
		value = AvgColumn(view, def.Column)
	case CalcCount:
		value = float64(CountColumn(view, def.Column))
	case CalcMax:
		value = MaxColumn(view, def.Column)
	case CalcMin:
		value = MinColumn(view, def.Column)
	}

	return KPIResult{
		Name:           def.Name,
		Value:          value,
		FormattedValue: f.Format(value, def.Format),
		Calculation:    def.Calculation,
		Column:         def.Column,
		Format:         def.Format,
	}, nil
}
