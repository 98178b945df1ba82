package kv

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/finlite/taskfocus/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	return s
}

func TestMissingKeysYieldDefaults(t *testing.T) {
	s := newTestStore(t)

	if _, ok, err := s.TimerState(); err != nil || ok {
		t.Errorf("expected no timer state, got ok=%v err=%v", ok, err)
	}

	if f := s.Filter(); f != models.FilterAll {
		t.Errorf("expected default filter all, but got: %s", f)
	}

	if m := s.ViewMode(); m != models.ViewTimeBased {
		t.Errorf("expected default view mode time-based, but got: %s", m)
	}

	counts, err := s.PomodoroCounts()
	if err != nil {
		t.Fatal(err)
	}

	if len(counts) != 0 {
		t.Errorf("expected empty counts, but got: %v", counts)
	}
}

func TestTimerStateRoundTrip(t *testing.T) {
	s := newTestStore(t)

	state := models.TimerState{
		SessionID:        "d5b0efcd-3df6-4a07-9f2d-f4a1f1b9b2d8",
		TaskID:           "task-1",
		DurationSeconds:  1500,
		RemainingSeconds: 900,
		EndAt:            time.Date(2024, time.June, 12, 10, 0, 0, 0, time.UTC),
		Running:          true,
	}

	if err := s.SaveTimerState(state); err != nil {
		t.Fatal(err)
	}

	got, ok, err := s.TimerState()
	if err != nil {
		t.Fatal(err)
	}

	if !ok {
		t.Fatal("expected a persisted snapshot")
	}

	if diff := cmp.Diff(state, got); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}

	if err := s.ClearTimerState(); err != nil {
		t.Fatal(err)
	}

	if _, ok, _ := s.TimerState(); ok {
		t.Error("expected snapshot to be gone after clear")
	}

	// clearing an already-missing key is not an error
	if err := s.ClearTimerState(); err != nil {
		t.Errorf("expected clearing an absent snapshot to succeed, got: %v", err)
	}
}

func TestIncrementPomodoro(t *testing.T) {
	s := newTestStore(t)

	for i := 1; i <= 3; i++ {
		n, err := s.IncrementPomodoro("task-1")
		if err != nil {
			t.Fatal(err)
		}

		if n != i {
			t.Errorf("expected count %d, but got: %d", i, n)
		}
	}

	counts, err := s.PomodoroCounts()
	if err != nil {
		t.Fatal(err)
	}

	if counts["task-1"] != 3 {
		t.Errorf("expected persisted count 3, but got: %d", counts["task-1"])
	}
}

func TestExpandedTasks(t *testing.T) {
	s := newTestStore(t)

	if err := s.SetExpanded("a", true); err != nil {
		t.Fatal(err)
	}

	if err := s.SetExpanded("b", true); err != nil {
		t.Fatal(err)
	}

	if err := s.SetExpanded("a", false); err != nil {
		t.Fatal(err)
	}

	set, err := s.ExpandedTasks()
	if err != nil {
		t.Fatal(err)
	}

	if _, found := set["a"]; found {
		t.Error("expected a to be collapsed")
	}

	if _, found := set["b"]; !found {
		t.Error("expected b to remain expanded")
	}
}

func TestDurationOverrides(t *testing.T) {
	s := newTestStore(t)

	if err := s.SetTaskDuration("task-1", 45); err != nil {
		t.Fatal(err)
	}

	durations, err := s.Durations()
	if err != nil {
		t.Fatal(err)
	}

	if durations["task-1"] != 45 {
		t.Errorf("expected 45, but got: %d", durations["task-1"])
	}

	if err := s.RemoveTaskDuration("task-1"); err != nil {
		t.Fatal(err)
	}

	durations, _ = s.Durations()
	if _, found := durations["task-1"]; found {
		t.Error("expected override to be removed")
	}
}
