package synth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/felixgeelhaar/fortify/timeout"

	"github.com/atelierworks/sheetwright/pkg/domain"
	"github.com/atelierworks/sheetwright/pkg/domain/synth"
)

// Documented adapter defaults.
const (
	// DefaultMinInterval is the minimum spacing between synthesize dispatches.
	// The external capability's rate limit is global, so one adapter instance
	// is shared process-wide.
	DefaultMinInterval = 6 * time.Second

	// DefaultHardTimeout bounds a single synthesize call including any time
	// spent queued behind the rate gate.
	DefaultHardTimeout = 120 * time.Second
)

// Adapter wraps a vendor Provider with the pipeline's call discipline:
// dimension snapping, strength clamping, a delaying rate gate, a hard
// timeout, and the seed passthrough check. It never manufactures entropy;
// seeds come from the orchestrator or the vendor, never from here.
type Adapter struct {
	inner       synth.Provider
	minInterval time.Duration
	hardTimeout time.Duration

	mu   sync.Mutex
	next time.Time
}

// Option adjusts adapter defaults.
type Option func(*Adapter)

// WithMinInterval overrides the inter-call spacing.
func WithMinInterval(d time.Duration) Option {
	return func(a *Adapter) { a.minInterval = d }
}

// WithHardTimeout overrides the hard call budget.
func WithHardTimeout(d time.Duration) Option {
	return func(a *Adapter) { a.hardTimeout = d }
}

// NewAdapter wraps a provider.
func NewAdapter(inner synth.Provider, opts ...Option) *Adapter {
	a := &Adapter{
		inner:       inner,
		minInterval: DefaultMinInterval,
		hardTimeout: DefaultHardTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ID reports the wrapped provider identity.
func (a *Adapter) ID() string {
	return a.inner.ID()
}

// Reason passes the reasoning call through unchanged; only synthesize is
// rate-gated.
func (a *Adapter) Reason(ctx context.Context, req synth.ReasonRequest) (*synth.ReasonResponse, error) {
	return a.inner.Reason(ctx, req)
}

// Synthesize normalizes the request, waits for a rate slot, invokes the
// vendor under the hard timeout and verifies the reported seed.
func (a *Adapter) Synthesize(ctx context.Context, req synth.SynthesisRequest) (*synth.SynthesisResult, error) {
	req.Width = synth.SnapDimension(req.Width)
	req.Height = synth.SnapDimension(req.Height)
	if req.Conditioned() {
		req.Strength = synth.ClampStrength(req.Strength)
	}

	started := time.Now()
	t := timeout.New[*synth.SynthesisResult](timeout.Config{DefaultTimeout: a.hardTimeout})
	result, err := t.Execute(ctx, a.hardTimeout, func(ctx context.Context) (*synth.SynthesisResult, error) {
		if err := a.waitTurn(ctx); err != nil {
			return nil, err
		}
		return a.inner.Synthesize(ctx, req)
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || time.Since(started) >= a.hardTimeout {
			return nil, &domain.TimeoutError{BudgetSeconds: int(a.hardTimeout / time.Second)}
		}
		return nil, err
	}

	if req.Seed != nil && result.SeedUsed != *req.Seed {
		return nil, &domain.SeedMismatchError{Requested: *req.Seed, Reported: result.SeedUsed}
	}

	// Echo the values actually sent so callers never see silently
	// substituted parameters.
	result.Width = req.Width
	result.Height = req.Height
	if req.Conditioned() {
		result.StrengthUsed = req.Strength
	}
	return result, nil
}

// waitTurn delays the caller until the next free rate slot. Callers are
// delayed, never rejected; the hard timeout above bounds the wait.
func (a *Adapter) waitTurn(ctx context.Context) error {
	a.mu.Lock()
	now := time.Now()
	at := a.next
	if at.Before(now) {
		at = now
	}
	a.next = at.Add(a.minInterval)
	a.mu.Unlock()

	wait := time.Until(at)
	if wait <= 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
