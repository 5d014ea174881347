package application

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// Modification run phases. A run loops building-prompt → synthesizing →
// validating until it lands in a terminal phase.
const (
	phaseLoadingBaseline = "loading-baseline"
	phaseBuildingPrompt  = "building-prompt"
	phaseSynthesizing    = "synthesizing"
	phaseValidating      = "validating"
	phaseRetrying        = "retrying"
	phaseAccepted        = "accepted"
	phaseRejected        = "rejected"
)

type modifyRunContext struct {
	RunID string
}

// modifyRun enforces the modification lifecycle so an implementation bug
// (skipping validation, retrying past a terminal phase) fails loudly instead
// of silently writing a bad version.
type modifyRun struct {
	interpreter *statekit.Interpreter[modifyRunContext]
}

func newModifyRun(runID string) (*modifyRun, error) {
	builder := statekit.NewMachine[modifyRunContext]("modify-run").
		WithInitial(phaseLoadingBaseline).
		WithContext(modifyRunContext{RunID: runID})

	builder.State(phaseLoadingBaseline).
		On("loaded").Target(phaseBuildingPrompt).
		Done()

	builder.State(phaseBuildingPrompt).
		On("built").Target(phaseSynthesizing).
		Done()

	builder.State(phaseSynthesizing).
		On("synthesized").Target(phaseValidating).
		Done()

	builder.State(phaseValidating).
		On("accept").Target(phaseAccepted).
		On("retry").Target(phaseRetrying).
		On("reject").Target(phaseRejected).
		Done()

	builder.State(phaseRetrying).
		On("resume").Target(phaseBuildingPrompt).
		Done()

	builder.State(phaseAccepted).
		On("reset").Target(phaseLoadingBaseline).
		Done()

	builder.State(phaseRejected).
		On("reset").Target(phaseLoadingBaseline).
		Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("build modify state machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()
	return &modifyRun{interpreter: interpreter}, nil
}

// advance sends an event and fails when the phase did not move, which means
// the event was not legal in the current phase.
func (r *modifyRun) advance(event string) error {
	before := r.current()
	r.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
	after := r.current()
	if before == after {
		return fmt.Errorf("event %q is not valid in phase %q", event, before)
	}
	return nil
}

func (r *modifyRun) current() string {
	return string(r.interpreter.State().Value)
}
