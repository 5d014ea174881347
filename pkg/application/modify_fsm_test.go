package application

import "testing"

func TestModifyRunHappyPath(t *testing.T) {
	run, err := newModifyRun("run-1")
	if err != nil {
		t.Fatalf("new run: %v", err)
	}
	for _, event := range []string{"loaded", "built", "synthesized", "retry", "resume", "built", "synthesized", "accept"} {
		if err := run.advance(event); err != nil {
			t.Fatalf("advance %q from %q: %v", event, run.current(), err)
		}
	}
	if run.current() != phaseAccepted {
		t.Errorf("want accepted, got %s", run.current())
	}
}

func TestModifyRunRejectsIllegalEvents(t *testing.T) {
	run, err := newModifyRun("run-2")
	if err != nil {
		t.Fatalf("new run: %v", err)
	}
	// Cannot validate before synthesizing.
	if err := run.advance("accept"); err == nil {
		t.Error("accept from loading-baseline should fail")
	}
	if run.current() != phaseLoadingBaseline {
		t.Errorf("illegal event moved the phase to %s", run.current())
	}
}
