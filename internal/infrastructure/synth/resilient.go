package synth

import (
	"context"
	"time"

	"github.com/felixgeelhaar/fortify/retry"

	"github.com/atelierworks/sheetwright/pkg/domain/synth"
)

// ResilientProvider retries transient vendor failures. It sits between the
// raw vendor client and the Adapter, so retries happen inside the adapter's
// hard timeout and rate slot.
type ResilientProvider struct {
	inner synth.Provider
}

// NewResilientProvider wraps a provider with retry.
func NewResilientProvider(inner synth.Provider) *ResilientProvider {
	return &ResilientProvider{inner: inner}
}

func (p *ResilientProvider) ID() string {
	return p.inner.ID()
}

func (p *ResilientProvider) Reason(ctx context.Context, req synth.ReasonRequest) (*synth.ReasonResponse, error) {
	r := retry.New[*synth.ReasonResponse](retry.Config{
		MaxAttempts:   2,
		InitialDelay:  time.Second,
		BackoffPolicy: retry.BackoffExponential,
	})
	return r.Do(ctx, func(ctx context.Context) (*synth.ReasonResponse, error) {
		return p.inner.Reason(ctx, req)
	})
}

func (p *ResilientProvider) Synthesize(ctx context.Context, req synth.SynthesisRequest) (*synth.SynthesisResult, error) {
	r := retry.New[*synth.SynthesisResult](retry.Config{
		MaxAttempts:   2,
		InitialDelay:  time.Second,
		BackoffPolicy: retry.BackoffExponential,
	})
	return r.Do(ctx, func(ctx context.Context) (*synth.SynthesisResult, error) {
		return p.inner.Synthesize(ctx, req)
	})
}
