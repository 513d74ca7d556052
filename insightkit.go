// Package insightkit infers the shape of a tabular row set and turns it into
// dashboards: KPIs, chart datasets and filter options.
//
// Usage:
//
//	import (
//	    "github.com/spektr-org/insightkit/engine"
//	    "github.com/spektr-org/insightkit/ingest"
//	    "github.com/spektr-org/insightkit/schema"
//	    "github.com/spektr-org/insightkit/suggest"
//	)
//
//	tbl, _ := ingest.Open("sales.csv")
//	sch, _ := schema.Infer(tbl)
//	sug := suggest.NewOrchestrator(completer).Suggest(ctx, sch, tbl.Sample(5))
//	report := engine.Evaluate(tbl.Rows, sug.KPIs, sug.Charts,
//	    engine.WithFilters(engine.FilterSet{"region": {"East"}}),
//	)
//
// An external collaborator (package llm) may propose suggestions from the
// schema and a small sample; every proposal is validated against the schema
// and replaced by deterministic suggestions when unusable. All computation
// over rows is local.
package insightkit
