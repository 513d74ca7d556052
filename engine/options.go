package engine

import (
	"log"
)

// ============================================================================
// ENGINE OPTIONS — Functional options for Evaluate()
// ============================================================================

// Option configures engine behavior via functional options pattern.
type Option func(*config)

type config struct {
	Filters       FilterSet
	Limit         int
	Formatter     Formatter
	OnWarning     func(Warning)
	Logger        *log.Logger
	GrowthDate    string
	GrowthValue   string
	RenderConfigs bool
}

// WithFilters restricts evaluation to rows matching filters.
func WithFilters(filters FilterSet) Option {
	return func(c *config) {
		c.Filters = filters
	}
}

// WithLimit caps the number of matching rows evaluated (0 = all).
func WithLimit(n int) Option {
	return func(c *config) {
		c.Limit = n
	}
}

// WithFormatter sets the formatter used for KPI values.
func WithFormatter(f Formatter) Option {
	return func(c *config) {
		c.Formatter = f
	}
}

// WithWarningHandler receives every warning as it is raised.
func WithWarningHandler(fn func(Warning)) Option {
	return func(c *config) {
		c.OnWarning = fn
	}
}

// WithLogger sets the logger for pipeline lines (default log.Default()).
func WithLogger(l *log.Logger) Option {
	return func(c *config) {
		c.Logger = l
	}
}

// WithGrowth adds growth metrics of valueColumn over dateColumn.
func WithGrowth(dateColumn, valueColumn string) Option {
	return func(c *config) {
		c.GrowthDate = dateColumn
		c.GrowthValue = valueColumn
	}
}

// WithoutRender skips building ChartConfigs.
func WithoutRender() Option {
	return func(c *config) {
		c.RenderConfigs = false
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		Formatter:     DefaultFormatter(),
		Logger:        log.Default(),
		RenderConfigs: true,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	return cfg
}
