package llm

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limited holds every call until the limiter grants a token
type Limited struct {
	limiter  *rate.Limiter
	provider Provider
}

// NewLimited wraps p with l. A nil limiter returns p unchanged.
func NewLimited(l *rate.Limiter, p Provider) Provider {
	if l == nil {
		return p
	}
	return &Limited{
		limiter:  l,
		provider: p,
	}
}

// PerMinute builds a limiter allowing n requests per minute with a burst of one
func PerMinute(n int) *rate.Limiter {
	if n <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), 1)
}

func (p *Limited) Name() string {
	return p.provider.Name()
}

func (p *Limited) Ping(ctx context.Context) error {
	return p.provider.Ping(ctx)
}

func (p *Limited) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return p.provider.Complete(ctx, req)
}

func (p *Limited) Stream(ctx context.Context, req *CompletionRequest) (<-chan StreamEvent, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return p.provider.Stream(ctx, req)
}
