package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/atelierworks/sheetwright/pkg/domain"
	"github.com/atelierworks/sheetwright/pkg/domain/drift"
)

// CLIError wraps domain errors with user-facing messages and actionable hints.
type CLIError struct {
	Message  string
	Hint     string
	Err      error
	ExitCode int
}

func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a CLIError with a default exit code of 1.
func NewCLIError(msg, hint string, err error) *CLIError {
	return &CLIError{
		Message:  msg,
		Hint:     hint,
		Err:      err,
		ExitCode: 1,
	}
}

// MapError converts known domain errors into CLIErrors with actionable hints.
// Unmapped errors are returned as-is.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	var validation *domain.ValidationError
	if errors.As(err, &validation) {
		return NewCLIError(
			"specification is invalid",
			"Fix the following and retry:\n  - "+strings.Join(validation.Violations, "\n  - "),
			err,
		)
	}

	var exceeded *drift.ExceededError
	if errors.As(err, &exceeded) {
		hint := "The change altered more of the sheet than intended. Try a smaller, more specific request, or target a single panel with --region."
		if exceeded.Report != nil && len(exceeded.Report.FailedRegions()) > 0 {
			var ids []string
			for _, r := range exceeded.Report.FailedRegions() {
				ids = append(ids, r.RegionID)
			}
			hint += " Panels that drifted: " + strings.Join(ids, ", ") + "."
		}
		return NewCLIError("modification refused: the sheet drifted out of bounds", hint, err)
	}

	var mismatch *domain.SeedMismatchError
	if errors.As(err, &mismatch) {
		return NewCLIError(
			"the generation backend did not honor the requested seed",
			"Reproducibility cannot be guaranteed. Check that the configured provider supports seeded synthesis.",
			err,
		)
	}

	switch {
	case errors.Is(err, domain.ErrBaselineNotFound):
		return NewCLIError("no baseline sheet found", "Run 'sheetwright generate' for this design and sheet first", err)
	case errors.Is(err, domain.ErrGenerationTimeout):
		return NewCLIError("generation timed out", "The backend took too long. Retry, or check the provider endpoint in .sheetwright/config.yaml", err)
	case errors.Is(err, domain.ErrImmutableArtifactViolation):
		return NewCLIError("refusing to overwrite a stored sheet version", "Versions are immutable; a new modification always writes the next version", err)
	case errors.Is(err, domain.ErrConsistencyBlockMissing):
		return NewCLIError("the baseline has no stored specification to restate", "Regenerate the sheet to create a usable baseline", err)
	}

	return err
}
