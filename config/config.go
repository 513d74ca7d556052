// Package config loads insightkit settings from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/spektr-org/insightkit/engine"
	"github.com/spektr-org/insightkit/llm"
	"github.com/spektr-org/insightkit/schema"
	"github.com/spektr-org/insightkit/suggest"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

// Environment variables read by ApplyEnv.
const (
	EnvProvider  = "INSIGHTKIT_PROVIDER"
	EnvAPIKey    = "INSIGHTKIT_API_KEY"
	EnvModel     = "INSIGHTKIT_MODEL"
	EnvGeminiKey = "GEMINI_API_KEY"
	EnvOpenAIKey = "OPENAI_API_KEY"
)

// Config is the full configuration document.
type Config struct {
	Inference schema.Policy  `yaml:"inference"`
	Filters   FiltersConfig  `yaml:"filters"`
	Format    FormatConfig   `yaml:"format"`
	Provider  ProviderConfig `yaml:"provider"`
	Suggest   SuggestConfig  `yaml:"suggest"`
	Cache     CacheConfig    `yaml:"cache"`
}

// FiltersConfig bounds filter options and filtered row sets.
type FiltersConfig struct {
	engine.FilterOptionBounds `yaml:",inline"`
	// Limit caps filtered rows; 0 keeps every match.
	Limit int `yaml:"limit"`
}

// FormatConfig controls value formatting.
type FormatConfig struct {
	CurrencySymbol string `yaml:"currency_symbol"`
}

// ProviderConfig selects and configures the suggestion collaborator.
type ProviderConfig struct {
	Name              string        `yaml:"name"` // gemini | openai | none
	APIKey            string        `yaml:"api_key"`
	Model             string        `yaml:"model"`
	Endpoint          string        `yaml:"endpoint"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
}

// SuggestConfig tunes the orchestrator.
type SuggestConfig struct {
	SampleSize int           `yaml:"sample_size"`
	Timeout    time.Duration `yaml:"timeout"`
}

// CacheConfig sizes the suggestion cache. Size 0 is unbounded, TTL 0 never
// expires. EvictSchedule is a cron spec for host-side cache clearing.
type CacheConfig struct {
	Size          int           `yaml:"size"`
	TTL           time.Duration `yaml:"ttl"`
	EvictSchedule string        `yaml:"evict_schedule"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Inference: schema.DefaultPolicy(),
		Filters:   FiltersConfig{FilterOptionBounds: engine.DefaultFilterOptionBounds()},
		Format:    FormatConfig{CurrencySymbol: engine.DefaultCurrencySymbol},
		Provider:  ProviderConfig{Name: llm.ProviderNone, Timeout: 30 * time.Second},
		Suggest:   SuggestConfig{SampleSize: suggest.DefaultSampleSize, Timeout: 45 * time.Second},
		Cache:     CacheConfig{Size: 256},
	}
}

// Load reads path over the defaults, applies the environment and
// validates. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides provider settings from the environment. A
// provider-specific key is used only when no key is configured.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvProvider); v != "" {
		c.Provider.Name = v
	}
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.Provider.APIKey = v
	}
	if v := os.Getenv(EnvModel); v != "" {
		c.Provider.Model = v
	}
	if c.Provider.APIKey != "" {
		return
	}
	switch strings.ToLower(c.Provider.Name) {
	case llm.ProviderGemini:
		c.Provider.APIKey = os.Getenv(EnvGeminiKey)
	case llm.ProviderOpenAI:
		c.Provider.APIKey = os.Getenv(EnvOpenAIKey)
	}
}

// Validate checks value ranges and the cron schedule.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}

	p := c.Inference
	check(p.TypeThreshold > 0 && p.TypeThreshold < 1, "inference.type_threshold must be in (0, 1), got %v", p.TypeThreshold)
	check(p.MeasureMinUnique >= 0, "inference.measure_min_unique must be >= 0")
	check(p.SampleValues >= 0, "inference.sample_values must be >= 0")

	f := c.Filters
	check(f.Min >= 0 && f.Min <= f.Max, "filters: need 0 <= min_options <= max_options, got %d..%d", f.Min, f.Max)
	check(f.Limit >= 0, "filters.limit must be >= 0")

	switch strings.ToLower(c.Provider.Name) {
	case "", llm.ProviderNone, llm.ProviderGemini, llm.ProviderOpenAI:
	default:
		check(false, "provider.name %q is not one of gemini, openai, none", c.Provider.Name)
	}
	check(c.Provider.RequestsPerSecond >= 0, "provider.requests_per_second must be >= 0")
	check(c.Provider.Timeout >= 0, "provider.timeout must be >= 0")

	check(c.Suggest.SampleSize >= 0, "suggest.sample_size must be >= 0")
	check(c.Cache.Size >= 0, "cache.size must be >= 0")
	check(c.Cache.TTL >= 0, "cache.ttl must be >= 0")
	if c.Cache.EvictSchedule != "" {
		if _, err := cron.ParseStandard(c.Cache.EvictSchedule); err != nil {
			check(false, "cache.evict_schedule: %v", err)
		}
	}
	return errors.Join(errs...)
}

// ============================================================================
// MAPPING HELPERS
// ============================================================================

// Policy returns the schema inference policy.
func (c Config) Policy() schema.Policy { return c.Inference }

// FilterBounds returns the filter option bounds.
func (c Config) FilterBounds() engine.FilterOptionBounds { return c.Filters.FilterOptionBounds }

// Formatter returns the value formatter.
func (c Config) Formatter() engine.Formatter {
	return engine.Formatter{CurrencySymbol: c.Format.CurrencySymbol}
}

// LLM returns the collaborator client configuration.
func (c Config) LLM() llm.Config {
	return llm.Config{
		Provider:          c.Provider.Name,
		APIKey:            c.Provider.APIKey,
		Model:             c.Provider.Model,
		Endpoint:          c.Provider.Endpoint,
		Timeout:           c.Provider.Timeout,
		RequestsPerSecond: c.Provider.RequestsPerSecond,
		Burst:             c.Provider.Burst,
	}
}

// OrchestratorOptions returns caches sized from the cache section plus the
// sample size and timeout.
func (c Config) OrchestratorOptions() []suggest.Option {
	return []suggest.Option{
		suggest.WithCache(suggest.NewCache[suggest.Suggestions](c.Cache.Size, c.Cache.TTL)),
		suggest.WithCombinationCache(suggest.NewCache[suggest.CombinationSet](c.Cache.Size, c.Cache.TTL)),
		suggest.WithSampleSize(c.Suggest.SampleSize),
		suggest.WithTimeout(c.Suggest.Timeout),
	}
}
