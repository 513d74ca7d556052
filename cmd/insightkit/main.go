package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/spektr-org/insightkit/config"
	"github.com/spektr-org/insightkit/dataset"
	"github.com/spektr-org/insightkit/ingest"
	"github.com/spektr-org/insightkit/llm"
	"github.com/spektr-org/insightkit/schema"
	"github.com/spektr-org/insightkit/suggest"
)

// ============================================================================
// INSIGHTKIT CLI — Schema, filters, suggestions and reports for any table
// ============================================================================

const version = "0.3.0"

var (
	configPath string
	filePath   string
	sheetName  string
	driverName string
	dsn        string
	sqlQuery   string
	outFormat  string
	snakeCase  bool
)

var errNoSource = errors.New("either --file or --dsn with --query is required")

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "insightkit",
	Short:   "Schema inference, KPI suggestions and chart datasets for tabular data",
	Version: version,
	Long: `insightkit infers a schema from a CSV, TSV, JSON, XLSX file or SQL query,
suggests KPIs and charts (via Gemini/OpenAI when configured, deterministic
fallback otherwise) and evaluates them locally.

Examples:
  insightkit schema --file sales.csv --format pretty
  insightkit suggest --file sales.xlsx --sheet Q1
  insightkit report --file sales.csv --filter region=East,West --limit 500
  insightkit report --driver postgres --dsn "$PG_DSN" --query "SELECT * FROM orders"
  insightkit watch --file sales.csv`,
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Path to YAML config (env overrides still apply)")
	pf.StringVar(&filePath, "file", "", "Data file: .csv, .tsv, .json, .xlsx")
	pf.StringVar(&sheetName, "sheet", "", "XLSX worksheet (default: first sheet)")
	pf.StringVar(&driverName, "driver", "sqlite", "SQL driver: sqlite, mysql, postgres")
	pf.StringVar(&dsn, "dsn", "", "SQL data source name")
	pf.StringVar(&sqlQuery, "query", "", "SQL query producing the rows")
	pf.StringVar(&outFormat, "format", "json", "Output format: json, pretty, table, csv")
	pf.BoolVar(&snakeCase, "snake-case", false, "Normalize headers to snake_case")

	rootCmd.AddCommand(schemaCmd, filtersCmd, suggestCmd, reportCmd, watchCmd)
}

// ============================================================================
// SHARED PLUMBING
// ============================================================================

// session is what every command needs: config, rows and their schema.
type session struct {
	cfg   config.Config
	table dataset.Table
	sch   *schema.Schema
}

func loadSession(ctx context.Context) (*session, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	tbl, err := loadTable(ctx)
	if err != nil {
		return nil, err
	}
	sch, err := schema.Infer(tbl, schema.InferOptions{Policy: cfg.Policy()})
	if err != nil {
		return nil, fmt.Errorf("infer schema: %w", err)
	}
	log.Printf("🔍 insightkit: %d rows, %d measures, %d dimensions (fingerprint %s)",
		sch.RowCount, len(sch.Measures), len(sch.Dimensions), sch.Fingerprint())
	return &session{cfg: cfg, table: tbl, sch: sch}, nil
}

func loadTable(ctx context.Context) (dataset.Table, error) {
	opts := []ingest.Option{ingest.WithSheet(sheetName)}
	if snakeCase {
		opts = append(opts, ingest.WithSnakeCaseHeaders())
	}

	switch {
	case dsn != "":
		if sqlQuery == "" {
			return dataset.Table{}, errNoSource
		}
		db, err := sql.Open(driverName, dsn)
		if err != nil {
			return dataset.Table{}, fmt.Errorf("open %s: %w", driverName, err)
		}
		defer db.Close()
		return ingest.QuerySQLWith(ctx, db, opts, sqlQuery)
	case filePath != "":
		return ingest.Open(filePath, opts...)
	default:
		return dataset.Table{}, errNoSource
	}
}

func newOrchestrator(cfg config.Config) (*suggest.Orchestrator, error) {
	completer, err := llm.New(cfg.LLM())
	if err != nil {
		return nil, fmt.Errorf("configure provider: %w", err)
	}
	if completer == nil {
		log.Printf("ℹ️  insightkit: no provider configured, using deterministic suggestions")
	}
	return suggest.NewOrchestrator(completer, cfg.OrchestratorOptions()...), nil
}
