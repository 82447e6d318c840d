package llm

import (
	"context"
	"errors"

	"github.com/cenkalti/backoff/v5"
)

// Retrying retries failed calls with exponential backoff. Only opening a stream
// is retried; errors after the first fragment are returned as they come.
type Retrying struct {
	provider   Provider
	tries      uint
	newBackOff func() backoff.BackOff
}

// NewRetrying wraps p so each call is attempted up to tries times. tries <= 1
// returns p unchanged.
func NewRetrying(p Provider, tries int) Provider {
	if tries <= 1 {
		return p
	}
	return &Retrying{
		provider: p,
		tries:    uint(tries),
		newBackOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
	}
}

func (p *Retrying) Name() string {
	return p.provider.Name()
}

func (p *Retrying) Ping(ctx context.Context) error {
	return p.provider.Ping(ctx)
}

func (p *Retrying) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	return backoff.Retry(ctx, func() (*CompletionResponse, error) {
		resp, err := p.provider.Complete(ctx, req)
		return resp, permanentIfCanceled(err)
	}, p.options()...)
}

func (p *Retrying) Stream(ctx context.Context, req *CompletionRequest) (<-chan StreamEvent, error) {
	return backoff.Retry(ctx, func() (<-chan StreamEvent, error) {
		events, err := p.provider.Stream(ctx, req)
		return events, permanentIfCanceled(err)
	}, p.options()...)
}

func (p *Retrying) options() []backoff.RetryOption {
	return []backoff.RetryOption{
		backoff.WithBackOff(p.newBackOff()),
		backoff.WithMaxTries(p.tries),
	}
}

func permanentIfCanceled(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return backoff.Permanent(err)
	}
	return err
}
