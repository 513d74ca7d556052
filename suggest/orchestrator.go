package suggest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/spektr-org/insightkit/dataset"
	"github.com/spektr-org/insightkit/llm"
	"github.com/spektr-org/insightkit/schema"
)

// ============================================================================
// ORCHESTRATOR — cache → collaborator → decode → validate → fallback
// ============================================================================
// Suggest never fails. Every collaborator problem (none configured, call
// error, timeout, empty text, undecodable text) ends in the deterministic
// fallback, and the outcome is cached by schema fingerprint so repeated
// calls for the same column structure are served locally.
// ============================================================================

// DefaultSampleSize is how many rows are shown to the collaborator.
const DefaultSampleSize = 5

// ErrNoCompleter is logged when no collaborator is configured.
var ErrNoCompleter = errors.New("suggest: no completer configured")

// Orchestrator produces suggestions for a schema.
type Orchestrator struct {
	completer  llm.Completer
	cache      *Cache[Suggestions]
	combos     *Cache[CombinationSet]
	logger     *log.Logger
	timeout    time.Duration
	sampleSize int
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithCache sets the suggestion cache.
func WithCache(c *Cache[Suggestions]) Option {
	return func(o *Orchestrator) { o.cache = c }
}

// WithCombinationCache sets the custom-combination cache.
func WithCombinationCache(c *Cache[CombinationSet]) Option {
	return func(o *Orchestrator) { o.combos = c }
}

// WithLogger routes log lines to l.
func WithLogger(l *log.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithTimeout bounds each collaborator call. Zero leaves only the caller's
// context in charge.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.timeout = d }
}

// WithSampleSize sets how many rows are included in the prompt.
func WithSampleSize(n int) Option {
	return func(o *Orchestrator) {
		if n >= 0 {
			o.sampleSize = n
		}
	}
}

// NewOrchestrator builds an orchestrator. completer may be nil, in which
// case every request is answered by the fallback.
func NewOrchestrator(completer llm.Completer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		completer:  completer,
		logger:     log.Default(),
		sampleSize: DefaultSampleSize,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.cache == nil {
		o.cache = NewCache[Suggestions](0, 0)
	}
	if o.combos == nil {
		o.combos = NewCache[CombinationSet](0, 0)
	}
	return o
}

// Suggest returns KPI and chart suggestions for sch.
func (o *Orchestrator) Suggest(ctx context.Context, sch *schema.Schema, sample []dataset.Row) Suggestions {
	if sch == nil {
		return Fallback(nil)
	}
	reqID := uuid.NewString()
	key := sch.Fingerprint()

	if cached, ok := o.cache.Get(key); ok {
		o.logger.Printf("💾 insightkit[%s]: cache hit fingerprint=%s source=%s", reqID[:8], key, cached.Source)
		return cached.clone()
	}

	var result Suggestions
	text, err := o.complete(ctx, reqID, BuildPrompt(sch, o.sample(sample)))
	if err == nil {
		var payload Payload
		if payload, err = Decode(text); err == nil {
			result = Validate(payload, sch)
			if result.Source == SourceFallback {
				o.logger.Printf("⚠️  insightkit[%s]: candidate rejected by validator (%d kpis, %d charts, %d dropped)",
					reqID[:8], len(payload.KPIs), len(payload.Charts), payload.Dropped)
			}
		}
	}
	if err != nil {
		o.logger.Printf("⚠️  insightkit[%s]: using fallback: %v", reqID[:8], err)
		result = Fallback(sch)
	}

	o.cache.Put(key, result)
	o.logger.Printf("✅ insightkit[%s]: %d KPIs, %d charts (source=%s)", reqID[:8], len(result.KPIs), len(result.Charts), result.Source)
	return result.clone()
}

// SuggestCombinations returns chart combinations for an explicit selection.
// Statistics are computed over rows; the collaborator never sees raw rows.
func (o *Orchestrator) SuggestCombinations(ctx context.Context, sch *schema.Schema, rows []dataset.Row, sel Selection) CombinationSet {
	if sch == nil {
		return CustomCombinations(sel, nil, rows)
	}
	reqID := uuid.NewString()
	key := combinationKey(sch, sel)

	if cached, ok := o.combos.Get(key); ok {
		o.logger.Printf("💾 insightkit[%s]: combination cache hit selection=%s", reqID[:8], sel.Key())
		return cached.clone()
	}

	st := CombinationStats(rows, sch, sel)
	o.logger.Printf("📊 insightkit[%s]: selection=%s patterns=%v", reqID[:8], sel.Key(), st.Patterns)

	var result CombinationSet
	text, err := o.complete(ctx, reqID, BuildCombinationPrompt(sch, st, sel))
	if err == nil {
		var payload Payload
		if payload, err = Decode(text); err == nil {
			result = ValidateCombinations(payload, sch, sel, rows)
		}
	}
	if err != nil {
		o.logger.Printf("⚠️  insightkit[%s]: using custom combinations: %v", reqID[:8], err)
		result = CustomCombinations(sel, sch, rows)
	}

	o.combos.Put(key, result)
	o.logger.Printf("✅ insightkit[%s]: %d combinations (source=%s)", reqID[:8], len(result.Combinations), result.Source)
	return result.clone()
}

// ClearCache drops every cached result.
func (o *Orchestrator) ClearCache() {
	o.cache.Clear()
	o.combos.Clear()
}

// EvictCache drops every cached result for sch's fingerprint.
func (o *Orchestrator) EvictCache(sch *schema.Schema) {
	if sch == nil {
		return
	}
	fp := sch.Fingerprint()
	o.cache.Evict(fp)
	o.combos.EvictPrefix(fp + "|")
}

// CacheLen is the number of cached suggestion and combination results.
func (o *Orchestrator) CacheLen() int {
	return o.cache.Len() + o.combos.Len()
}

func (o *Orchestrator) complete(ctx context.Context, reqID, prompt string) (string, error) {
	if o.completer == nil {
		return "", ErrNoCompleter
	}
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	o.logger.Printf("🔄 insightkit[%s]: requesting suggestions (%d byte prompt)", reqID[:8], len(prompt))
	start := time.Now()
	text, err := o.completer.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("complete: %w", err)
	}
	if text == "" {
		return "", llm.ErrEmptyResponse
	}
	o.logger.Printf("🔄 insightkit[%s]: response in %s", reqID[:8], time.Since(start).Round(time.Millisecond))
	return text, nil
}

func (o *Orchestrator) sample(rows []dataset.Row) []dataset.Row {
	if len(rows) > o.sampleSize {
		return rows[:o.sampleSize]
	}
	return rows
}

func combinationKey(sch *schema.Schema, sel Selection) string {
	return sch.Fingerprint() + "|" + sel.Key()
}
