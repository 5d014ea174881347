package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/felixgeelhaar/fortify/retry"

	"github.com/atelierworks/sheetwright/pkg/domain"
	"github.com/atelierworks/sheetwright/pkg/domain/artifact"
)

// BaselineRepository persists immutable BaselineArtifact versions over a
// pluggable KVStore. Keys are versioned; an existing key is never rewritten
// with different content.
type BaselineRepository struct {
	kv          KVStore
	retryConfig retry.Config

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewBaselineRepository wraps a KVStore with the baseline key and
// immutability discipline.
func NewBaselineRepository(kv KVStore) *BaselineRepository {
	return &BaselineRepository{
		kv: kv,
		retryConfig: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  10 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
		},
		locks: make(map[string]*sync.Mutex),
	}
}

// LockSheet serializes work against one (design, sheet) pair. Callers hold
// the returned unlock for the whole generate/modify critical section so
// concurrent modifications never race to write competing versions. Distinct
// sheets proceed in parallel.
func (r *BaselineRepository) LockSheet(designID, sheetID string) (unlock func()) {
	key := artifact.KeyPrefix(designID, sheetID)

	r.mu.Lock()
	m, ok := r.locks[key]
	if !ok {
		m = &sync.Mutex{}
		r.locks[key] = m
	}
	r.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// Save writes one artifact version. Writing a key that already exists with
// different content fails with ErrImmutableArtifactViolation; rewriting
// identical content is a no-op.
func (r *BaselineRepository) Save(ctx context.Context, a *artifact.BaselineArtifact) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if a.DesignID == "" || a.SheetID == "" {
		return fmt.Errorf("artifact requires design and sheet IDs")
	}
	if a.Version < 1 {
		return fmt.Errorf("artifact version must be at least 1, got %d", a.Version)
	}

	key := a.Key()
	existing, found, err := r.kv.Get(key)
	if err != nil {
		return err
	}
	if found {
		var prior artifact.BaselineArtifact
		if err := json.Unmarshal(existing, &prior); err != nil {
			return fmt.Errorf("stored artifact at %q is corrupt: %w", key, err)
		}
		if prior.Fingerprint() != a.Fingerprint() {
			return &domain.ImmutabilityError{Key: key}
		}
		return nil
	}

	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal artifact: %w", err)
	}
	return r.kv.Set(key, data)
}

// Get returns the latest version for a sheet, or nil when none exists.
func (r *BaselineRepository) Get(ctx context.Context, designID, sheetID string) (*artifact.BaselineArtifact, error) {
	versions, err := r.ListVersions(ctx, designID, sheetID)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, nil
	}
	return versions[len(versions)-1], nil
}

// GetVersion returns one specific version, or nil when absent.
func (r *BaselineRepository) GetVersion(ctx context.Context, designID, sheetID string, version int) (*artifact.BaselineArtifact, error) {
	retryer := retry.New[*artifact.BaselineArtifact](r.retryConfig)
	return retryer.Do(ctx, func(ctx context.Context) (*artifact.BaselineArtifact, error) {
		data, found, err := r.kv.Get(artifact.VersionKey(designID, sheetID, version))
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, nil
		}
		var a artifact.BaselineArtifact
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, fmt.Errorf("failed to unmarshal artifact: %w", err)
		}
		return &a, nil
	})
}

// ListVersions returns every stored version for a sheet, oldest first.
func (r *BaselineRepository) ListVersions(ctx context.Context, designID, sheetID string) ([]*artifact.BaselineArtifact, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	keys, err := r.kv.Keys(artifact.KeyPrefix(designID, sheetID))
	if err != nil {
		return nil, err
	}

	out := make([]*artifact.BaselineArtifact, 0, len(keys))
	for _, key := range keys {
		data, found, err := r.kv.Get(key)
		if err != nil {
			return nil, err
		}
		if !found {
			continue
		}
		var a artifact.BaselineArtifact
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, fmt.Errorf("stored artifact at %q is corrupt: %w", key, err)
		}
		out = append(out, &a)
	}
	return out, nil
}

// NextVersion returns the version number the next successful write should
// use. Callers must hold the sheet lock across NextVersion and Save.
func (r *BaselineRepository) NextVersion(ctx context.Context, designID, sheetID string) (int, error) {
	versions, err := r.ListVersions(ctx, designID, sheetID)
	if err != nil {
		return 0, err
	}
	if len(versions) == 0 {
		return 1, nil
	}
	return versions[len(versions)-1].Version + 1, nil
}
