package suggest

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/insightkit/llm"
)

var quiet = WithLogger(log.New(io.Discard, "", 0))

const goodResponse = "```json\n" + `{
  "kpis": [{"name": "Revenue", "calculation": "sum", "column": "revenue", "format": "currency"}],
  "charts": [{"title": "Revenue by Region", "type": "bar", "measures": ["revenue"], "dimensions": ["region"]}],
  "insights": ["West is catching up"]
}` + "\n```"

// countingCompleter returns text/err and counts calls.
func countingCompleter(text string, err error) (llm.Completer, *int32) {
	var calls int32
	return llm.CompleterFunc(func(ctx context.Context, prompt string) (string, error) {
		atomic.AddInt32(&calls, 1)
		return text, err
	}), &calls
}

func TestSuggestUsesCollaborator(t *testing.T) {
	c, calls := countingCompleter(goodResponse, nil)
	o := NewOrchestrator(c, quiet)

	s := o.Suggest(context.Background(), salesSchema(), salesRows())
	assert.Equal(t, SourceAI, s.Source)
	require.Len(t, s.KPIs, 1)
	assert.Equal(t, "Revenue", s.KPIs[0].Name)
	assert.Equal(t, []string{"West is catching up"}, s.Insights)
	assert.EqualValues(t, 1, *calls)
}

func TestSuggestFallsBack(t *testing.T) {
	cases := []struct {
		name string
		text string
		err  error
	}{
		{"call error", "", errors.New("503 unavailable")},
		{"empty text", "", nil},
		{"undecodable", "I'd rather not.", nil},
		{"nothing valid", `{"kpis":[{"name":"x","column":"ghost"}],"charts":[]}`, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, calls := countingCompleter(tc.text, tc.err)
			o := NewOrchestrator(c, quiet)
			s := o.Suggest(context.Background(), salesSchema(), nil)
			assert.Equal(t, Fallback(salesSchema()), s)
			assert.EqualValues(t, 1, *calls)
		})
	}

	t.Run("no completer", func(t *testing.T) {
		s := NewOrchestrator(nil, quiet).Suggest(context.Background(), salesSchema(), nil)
		assert.Equal(t, SourceFallback, s.Source)
	})

	t.Run("nil schema", func(t *testing.T) {
		c, calls := countingCompleter(goodResponse, nil)
		s := NewOrchestrator(c, quiet).Suggest(context.Background(), nil, nil)
		assert.Equal(t, Fallback(nil), s)
		assert.EqualValues(t, 0, *calls)
	})
}

func TestSuggestTimeout(t *testing.T) {
	slow := llm.CompleterFunc(func(ctx context.Context, prompt string) (string, error) {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(2 * time.Second):
			return goodResponse, nil
		}
	})
	o := NewOrchestrator(slow, quiet, WithTimeout(20*time.Millisecond))

	start := time.Now()
	s := o.Suggest(context.Background(), salesSchema(), nil)
	assert.Equal(t, SourceFallback, s.Source)
	assert.Less(t, time.Since(start), time.Second)
}

func TestSuggestCaching(t *testing.T) {
	c, calls := countingCompleter(goodResponse, nil)
	o := NewOrchestrator(c, quiet)
	ctx := context.Background()

	first := o.Suggest(ctx, salesSchema(), nil)
	first.KPIs[0].Name = "mutated by caller"

	second := o.Suggest(ctx, salesSchema(), nil)
	assert.EqualValues(t, 1, *calls)
	assert.Equal(t, "Revenue", second.KPIs[0].Name)
	assert.Equal(t, 1, o.CacheLen())

	o.EvictCache(salesSchema())
	assert.Equal(t, 0, o.CacheLen())
	o.Suggest(ctx, salesSchema(), nil)
	assert.EqualValues(t, 2, *calls)

	o.ClearCache()
	assert.Equal(t, 0, o.CacheLen())
}

func TestSuggestCachesFallback(t *testing.T) {
	c, calls := countingCompleter("", errors.New("down"))
	o := NewOrchestrator(c, quiet)
	o.Suggest(context.Background(), salesSchema(), nil)
	o.Suggest(context.Background(), salesSchema(), nil)
	assert.EqualValues(t, 1, *calls)
}

func TestSuggestSampleSizeAndLogs(t *testing.T) {
	var prompt string
	c := llm.CompleterFunc(func(ctx context.Context, p string) (string, error) {
		prompt = p
		return "", errors.New("offline")
	})
	var buf bytes.Buffer
	o := NewOrchestrator(c, WithLogger(log.New(&buf, "", 0)), WithSampleSize(1))
	o.Suggest(context.Background(), salesSchema(), salesRows())

	assert.Contains(t, prompt, "2024-01-01")
	assert.NotContains(t, prompt, "2024-01-02")
	assert.Contains(t, buf.String(), "using fallback")
	assert.Contains(t, buf.String(), "offline")
}

func TestSuggestCombinations(t *testing.T) {
	text := `{"combinations":[{"title":"Revenue over time","type":"line","measures":["revenue"],"dimensions":["order_date"],"rationale":"Trend"}]}`
	c, calls := countingCompleter(text, nil)
	o := NewOrchestrator(c, quiet)
	ctx := context.Background()
	sel := Selection{Measures: []string{"revenue"}, Dimensions: []string{"order_date"}}

	set := o.SuggestCombinations(ctx, salesSchema(), salesRows(), sel)
	assert.Equal(t, SourceAI, set.Source)
	require.Len(t, set.Combinations, 1)
	assert.Equal(t, "Trend", set.Combinations[0].Rationale)

	o.SuggestCombinations(ctx, salesSchema(), salesRows(), sel)
	assert.EqualValues(t, 1, *calls)

	other := Selection{Measures: []string{"units"}, Dimensions: []string{"region"}}
	fallback := o.SuggestCombinations(ctx, salesSchema(), salesRows(), other)
	assert.Equal(t, CustomCombinations(other, salesSchema(), salesRows()), fallback)
	assert.EqualValues(t, 2, *calls)
	assert.Equal(t, 2, o.CacheLen())

	o.EvictCache(salesSchema())
	assert.Equal(t, 0, o.CacheLen())
}

// ============================================================================
// CACHE
// ============================================================================

func TestCache(t *testing.T) {
	c := NewCache[int](2, 0)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Get("a")
	c.Put("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok, "least recently used entry is evicted")
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, c.Len())

	assert.True(t, c.Evict("a"))
	assert.False(t, c.Evict("a"))

	c.Put("fp|x", 1)
	c.Put("fp|y", 2)
	assert.Equal(t, 2, c.EvictPrefix("fp|"))
	assert.Equal(t, 0, c.Len())

	c.Put("z", 9)
	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestCacheTTL(t *testing.T) {
	c := NewCache[string](0, 30*time.Millisecond)
	c.Put("k", "v")
	_, ok := c.Get("k")
	require.True(t, ok)

	assert.Eventually(t, func() bool {
		_, ok := c.Get("k")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestCacheUnbounded(t *testing.T) {
	c := NewCache[int](0, 0)
	for i := 0; i < 500; i++ {
		c.Put(strconv.Itoa(i), i)
	}
	assert.Equal(t, 500, c.Len())
}
