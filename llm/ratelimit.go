package llm

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// limited throttles calls to an underlying Completer.
type limited struct {
	next    Completer
	limiter *rate.Limiter
}

// RateLimited wraps c so at most rps requests per second start, with the
// given burst (minimum 1). Waiting honors ctx cancellation.
func RateLimited(c Completer, rps float64, burst int) Completer {
	if burst < 1 {
		burst = 1
	}
	return &limited{next: c, limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

func (l *limited) Complete(ctx context.Context, prompt string) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}
	return l.next.Complete(ctx, prompt)
}
