package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors for the sheet pipeline.
var (
	// ErrInvalidSpecification indicates the input specification violated one or
	// more invariants. Recoverable: the caller fixes the input.
	ErrInvalidSpecification = errors.New("invalid specification")

	// ErrBaselineNotFound indicates no baseline artifact exists for the sheet.
	// Terminal for modify: the caller must generate first.
	ErrBaselineNotFound = errors.New("baseline not found")

	// ErrConsistencyBlockMissing indicates a modify-mode prompt was requested
	// without a prior artifact. Programmer error.
	ErrConsistencyBlockMissing = errors.New("consistency block missing: no prior artifact")

	// ErrSeedMismatch indicates the vendor reported a different seed than the
	// one passed through. Recoverable: the caller may retry the operation.
	ErrSeedMismatch = errors.New("seed mismatch")

	// ErrGenerationTimeout indicates the synthesis call exceeded the hard
	// timeout budget. Recoverable: the caller may retry the operation.
	ErrGenerationTimeout = errors.New("generation timed out")

	// ErrImmutableArtifactViolation indicates an attempt to overwrite an
	// existing baseline key with different content. Programmer error pointing
	// at a key-derivation bug.
	ErrImmutableArtifactViolation = errors.New("immutable artifact violation")

	// ErrDriftExceeded indicates every modification attempt drifted past the
	// acceptance floor. Terminal for this attempt.
	ErrDriftExceeded = errors.New("drift exceeded")
)

// ValidationError lists every violated field of a specification, not just the
// first.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid specification: %s", strings.Join(e.Violations, "; "))
}

// Is allows errors.Is to work with ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidSpecification
}

// SeedMismatchError carries the requested and vendor-reported seeds.
type SeedMismatchError struct {
	Requested int64
	Reported  int64
}

func (e *SeedMismatchError) Error() string {
	return fmt.Sprintf("seed mismatch: requested %d, vendor reported %d", e.Requested, e.Reported)
}

// Is allows errors.Is to work with SeedMismatchError.
func (e *SeedMismatchError) Is(target error) bool {
	return target == ErrSeedMismatch
}

// ImmutabilityError identifies the baseline key a writer tried to overwrite.
type ImmutabilityError struct {
	Key string
}

func (e *ImmutabilityError) Error() string {
	return fmt.Sprintf("immutable artifact violation: key %q already holds different content", e.Key)
}

// Is allows errors.Is to work with ImmutabilityError.
func (e *ImmutabilityError) Is(target error) bool {
	return target == ErrImmutableArtifactViolation
}

// TimeoutError carries the budget that was exhausted.
type TimeoutError struct {
	BudgetSeconds int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("generation timed out after %ds", e.BudgetSeconds)
}

// Is allows errors.Is to work with TimeoutError.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrGenerationTimeout
}
