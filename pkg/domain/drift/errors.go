package drift

import (
	"fmt"

	"github.com/atelierworks/sheetwright/pkg/domain"
	"github.com/atelierworks/sheetwright/pkg/domain/artifact"
)

// ExceededError is returned when every modification attempt scored reject.
// It carries the last candidate's report so the caller can diagnose and
// simplify the request.
type ExceededError struct {
	Report *artifact.DriftReport
}

func (e *ExceededError) Error() string {
	if e.Report == nil {
		return "drift exceeded"
	}
	return fmt.Sprintf("drift exceeded: canvas similarity %.3f after attempt %d", e.Report.CanvasSimilarity, e.Report.Attempt)
}

// Is allows errors.Is to work with ExceededError.
func (e *ExceededError) Is(target error) bool {
	return target == domain.ErrDriftExceeded
}
