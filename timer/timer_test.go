package timer

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/finlite/taskfocus/internal/config"
	"github.com/finlite/taskfocus/internal/kv"
	"github.com/finlite/taskfocus/internal/models"
)

// fakeClock advances only when told to, so tests can elapse a session
// without sleeping.
type fakeClock struct {
	mu  sync.Mutex
	cur time.Time
}

func newFakeClock() *fakeClock {
	// anchored in the future so sessions never predate process start
	return &fakeClock{cur: time.Now().Add(time.Hour)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.cur
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cur = c.cur.Add(d)
}

func testConfig() *config.Config {
	return &config.Config{FocusMinutes: 20}
}

func newTestMachine(t *testing.T) (*Machine, *kv.Store, *fakeClock) {
	t.Helper()

	st, err := kv.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	m, err := NewMachine(st, nil, testConfig())
	if err != nil {
		t.Fatal(err)
	}

	clock := newFakeClock()
	m.now = clock.Now
	m.effects = nil

	return m, st, clock
}

func TestStartReplacesLiveSession(t *testing.T) {
	m, _, clock := newTestMachine(t)

	first, err := m.Start("alpha", "Deep work")
	if err != nil {
		t.Fatal(err)
	}

	clock.Advance(5 * time.Minute)

	second, err := m.Start("beta", "Review notes")
	if err != nil {
		t.Fatal(err)
	}

	if second.SessionID == first.SessionID {
		t.Error("each start should mint a fresh session id")
	}

	if second.TaskID != "beta" {
		t.Errorf("TaskID = %q, want beta", second.TaskID)
	}

	if second.TaskText != "Review notes" {
		t.Errorf("TaskText = %q, want the label in the snapshot", second.TaskText)
	}

	if got := m.Remaining(clock.Now()); got != 20*time.Minute {
		t.Errorf("remaining after replace = %v, want full duration", got)
	}
}

func TestStartUsesDurationOverride(t *testing.T) {
	m, st, clock := newTestMachine(t)

	if err := st.SetTaskDuration("alpha", 45); err != nil {
		t.Fatal(err)
	}

	if _, err := m.Start("alpha", "Deep work"); err != nil {
		t.Fatal(err)
	}

	if got := m.Remaining(clock.Now()); got != 45*time.Minute {
		t.Errorf("remaining = %v, want 45m", got)
	}
}

func TestPauseFreezesRemaining(t *testing.T) {
	m, _, clock := newTestMachine(t)

	if _, err := m.Start("alpha", "Deep work"); err != nil {
		t.Fatal(err)
	}

	clock.Advance(5 * time.Minute)

	if err := m.Pause(); err != nil {
		t.Fatal(err)
	}

	// a pause holds its value no matter how much time passes
	clock.Advance(3 * time.Hour)

	if got := m.Remaining(clock.Now()); got != 15*time.Minute {
		t.Errorf("paused remaining = %v, want 15m", got)
	}

	if err := m.Resume(); err != nil {
		t.Fatal(err)
	}

	clock.Advance(5 * time.Minute)

	if got := m.Remaining(clock.Now()); got != 10*time.Minute {
		t.Errorf("resumed remaining = %v, want 10m", got)
	}
}

func TestPauseAfterDeadlineSettlesCompletion(t *testing.T) {
	m, st, clock := newTestMachine(t)

	var fired atomic.Int32

	m.effects = func(models.TimerState) {
		fired.Add(1)
	}

	if _, err := m.Start("alpha", "Deep work"); err != nil {
		t.Fatal(err)
	}

	clock.Advance(21 * time.Minute)

	if err := m.Pause(); err != nil {
		t.Fatal(err)
	}

	state := m.State()
	if !state.Completed || state.Running {
		t.Errorf("pause past the deadline should settle, got %+v", state)
	}

	if got := fired.Load(); got != 1 {
		t.Errorf("completion effects fired %d times, want 1", got)
	}

	counts, err := st.PomodoroCounts()
	if err != nil {
		t.Fatal(err)
	}

	if counts["alpha"] != 1 {
		t.Errorf("pomodoro count = %d, want 1", counts["alpha"])
	}
}

func TestControlMisuseIsIgnored(t *testing.T) {
	m, _, _ := newTestMachine(t)

	// no session at all
	if err := m.Pause(); err != nil {
		t.Errorf("pause while idle should be ignored, got %v", err)
	}

	if err := m.Resume(); err != nil {
		t.Errorf("resume while idle should be ignored, got %v", err)
	}

	if _, err := m.Start("alpha", "Deep work"); err != nil {
		t.Fatal(err)
	}

	// resuming a session that is already running
	if err := m.Resume(); err != nil {
		t.Errorf("resume while running should be ignored, got %v", err)
	}

	if !m.State().Running {
		t.Error("session should still be running")
	}
}

func TestElapseCompletesExactlyOnce(t *testing.T) {
	m, st, clock := newTestMachine(t)

	var fired atomic.Int32

	m.effects = func(models.TimerState) {
		fired.Add(1)
	}

	if _, err := m.Start("alpha", "Deep work"); err != nil {
		t.Fatal(err)
	}

	clock.Advance(21 * time.Minute)

	var wg sync.WaitGroup

	// two concurrent observers race to settle the session
	for range 2 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			if _, err := m.Observe(); err != nil {
				t.Error(err)
			}
		}()
	}

	wg.Wait()

	if got := fired.Load(); got != 1 {
		t.Errorf("completion effects fired %d times, want 1", got)
	}

	counts, err := st.PomodoroCounts()
	if err != nil {
		t.Fatal(err)
	}

	if counts["alpha"] != 1 {
		t.Errorf("pomodoro count = %d, want 1", counts["alpha"])
	}

	state := m.State()
	if !state.Completed || state.Running || state.RemainingSeconds != 0 {
		t.Errorf("settled state = %+v", state)
	}
}

func TestCompletionHighlightExpires(t *testing.T) {
	m, _, clock := newTestMachine(t)

	if _, err := m.Start("alpha", "Deep work"); err != nil {
		t.Fatal(err)
	}

	if m.JustCompleted() {
		t.Error("highlight should not be set before completion")
	}

	clock.Advance(21 * time.Minute)

	if _, err := m.Observe(); err != nil {
		t.Fatal(err)
	}

	if !m.JustCompleted() {
		t.Error("highlight should be set right after completion")
	}

	clock.Advance(4 * time.Second)

	if m.JustCompleted() {
		t.Error("highlight should expire after the window")
	}
}

func TestSiblingObserverAdoptsSettledSession(t *testing.T) {
	m1, st, clock := newTestMachine(t)

	var fired atomic.Int32

	m1.effects = func(models.TimerState) {
		fired.Add(1)
	}

	if _, err := m1.Start("alpha", "Deep work"); err != nil {
		t.Fatal(err)
	}

	// a second surface over the same store picks up the live session
	m2, err := NewMachine(st, nil, testConfig())
	if err != nil {
		t.Fatal(err)
	}

	m2.now = clock.Now
	m2.effects = func(models.TimerState) {
		fired.Add(1)
	}

	if err := m2.Reload(); err != nil {
		t.Fatal(err)
	}

	clock.Advance(21 * time.Minute)

	if _, err := m1.Observe(); err != nil {
		t.Fatal(err)
	}

	// the sibling sees the elapsed deadline too, but must adopt the
	// settled snapshot instead of counting the session again
	if _, err := m2.Observe(); err != nil {
		t.Fatal(err)
	}

	if got := fired.Load(); got != 1 {
		t.Errorf("completion effects fired %d times, want 1", got)
	}

	counts, err := st.PomodoroCounts()
	if err != nil {
		t.Fatal(err)
	}

	if counts["alpha"] != 1 {
		t.Errorf("pomodoro count = %d, want 1", counts["alpha"])
	}

	if state := m2.State(); !state.Completed || state.Running {
		t.Errorf("sibling should hold the settled state, got %+v", state)
	}
}

func TestSecondSurfaceDoesNotDoubleCount(t *testing.T) {
	m, st, clock := newTestMachine(t)

	if _, err := m.Start("alpha", "Deep work"); err != nil {
		t.Fatal(err)
	}

	clock.Advance(21 * time.Minute)

	if _, err := m.Observe(); err != nil {
		t.Fatal(err)
	}

	// a sibling surface over the same snapshot re-reads after the event
	other, err := NewMachine(st, nil, testConfig())
	if err != nil {
		t.Fatal(err)
	}

	other.now = clock.Now
	other.effects = nil

	if err := other.Reload(); err != nil {
		t.Fatal(err)
	}

	counts, err := st.PomodoroCounts()
	if err != nil {
		t.Fatal(err)
	}

	if counts["alpha"] != 1 {
		t.Errorf("pomodoro count = %d, want 1", counts["alpha"])
	}
}

func TestSetDurationResetsLiveSession(t *testing.T) {
	m, st, clock := newTestMachine(t)

	if _, err := m.Start("alpha", "Deep work"); err != nil {
		t.Fatal(err)
	}

	clock.Advance(5 * time.Minute)

	if err := m.SetDuration("alpha", 45); err != nil {
		t.Fatal(err)
	}

	state := m.State()
	if state.Running {
		t.Error("live session should pause at the new duration")
	}

	if got := m.Remaining(clock.Now()); got != 45*time.Minute {
		t.Errorf("remaining = %v, want 45m", got)
	}

	durations, err := st.Durations()
	if err != nil {
		t.Fatal(err)
	}

	if durations["alpha"] != 45 {
		t.Errorf("stored override = %d, want 45", durations["alpha"])
	}
}

func TestSetDurationForOtherTaskLeavesSessionAlone(t *testing.T) {
	m, _, clock := newTestMachine(t)

	if _, err := m.Start("alpha", "Deep work"); err != nil {
		t.Fatal(err)
	}

	clock.Advance(5 * time.Minute)

	if err := m.SetDuration("beta", 45); err != nil {
		t.Fatal(err)
	}

	if !m.State().Running {
		t.Error("session for another task should keep running")
	}

	if got := m.Remaining(clock.Now()); got != 15*time.Minute {
		t.Errorf("remaining = %v, want 15m", got)
	}
}

func TestSetDurationBounds(t *testing.T) {
	m, _, _ := newTestMachine(t)

	for _, minutes := range []int{0, -3, 1000} {
		if err := m.SetDuration("alpha", minutes); err == nil {
			t.Errorf("SetDuration(%d) should be rejected", minutes)
		}
	}
}

func TestResetRestoresFullDuration(t *testing.T) {
	m, _, clock := newTestMachine(t)

	if _, err := m.Start("alpha", "Deep work"); err != nil {
		t.Fatal(err)
	}

	clock.Advance(12 * time.Minute)

	if err := m.Reset(); err != nil {
		t.Fatal(err)
	}

	state := m.State()
	if state.Running {
		t.Error("reset should leave the session paused")
	}

	if got := m.Remaining(clock.Now()); got != 20*time.Minute {
		t.Errorf("remaining = %v, want full duration", got)
	}
}

func TestStopRemovesSnapshot(t *testing.T) {
	m, st, _ := newTestMachine(t)

	if _, err := m.Start("alpha", "Deep work"); err != nil {
		t.Fatal(err)
	}

	if err := m.Stop(); err != nil {
		t.Fatal(err)
	}

	if m.State().Live() {
		t.Error("state should be idle after stop")
	}

	if _, ok, err := st.TimerState(); err != nil || ok {
		t.Errorf("snapshot should be gone, ok=%v err=%v", ok, err)
	}
}

func TestExpiredSnapshotRecoversSilently(t *testing.T) {
	st, err := kv.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	// simulate a session that elapsed while no process was running
	err = st.SaveTimerState(models.TimerState{
		SessionID:        "stale-session",
		TaskID:           "alpha",
		DurationSeconds:  1200,
		RemainingSeconds: 300,
		EndAt:            time.Now().Add(-10 * time.Minute),
		Running:          true,
	})
	if err != nil {
		t.Fatal(err)
	}

	var fired atomic.Int32

	m, err := NewMachine(st, nil, testConfig())
	if err != nil {
		t.Fatal(err)
	}

	m.effects = func(models.TimerState) {
		fired.Add(1)
	}

	state := m.State()
	if !state.Completed || state.Running {
		t.Errorf("recovered state = %+v, want settled", state)
	}

	counts, err := st.PomodoroCounts()
	if err != nil {
		t.Fatal(err)
	}

	if counts["alpha"] != 1 {
		t.Errorf("pomodoro count = %d, want 1", counts["alpha"])
	}

	if fired.Load() != 0 {
		t.Error("recovery must not re-fire the notification")
	}

	// a fresh process over the already-settled snapshot changes nothing
	if _, err := NewMachine(st, nil, testConfig()); err != nil {
		t.Fatal(err)
	}

	counts, err = st.PomodoroCounts()
	if err != nil {
		t.Fatal(err)
	}

	if counts["alpha"] != 1 {
		t.Errorf("count after second load = %d, want 1", counts["alpha"])
	}
}
