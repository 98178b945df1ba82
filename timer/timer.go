// Package timer operates the focus countdown state machine and handles
// the recovery of sessions that expired while no process was watching.
package timer

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/finlite/taskfocus/internal/bus"
	"github.com/finlite/taskfocus/internal/config"
	"github.com/finlite/taskfocus/internal/kv"
	"github.com/finlite/taskfocus/internal/models"
)

// highlightWindow is how long a freshly completed session stays
// highlighted on the surfaces.
const highlightWindow = 3 * time.Second

// Machine drives a single focus session through
// idle -> running <-> paused -> completed. Every transition persists the
// full snapshot to the KV store and publishes on the bus before
// returning, so any surface can reconstruct the session from the
// snapshot alone.
//
// While running, remaining time is always derived from the absolute
// EndAt deadline. Ticks only refresh the display; sleep or suspend
// cannot stretch a session.
type Machine struct {
	store       *kv.Store
	bus         *bus.Bus
	cfg         *config.Config
	now         func() time.Time
	effects     func(state models.TimerState)
	mu          sync.Mutex
	state       models.TimerState
	completedAt time.Time
	bootedAt    time.Time
}

// NewMachine loads the persisted snapshot and recovers it. A snapshot
// that expired before this process started is completed exactly once,
// silently: its pomodoro is still counted, but the notification never
// re-fires.
func NewMachine(
	store *kv.Store,
	b *bus.Bus,
	cfg *config.Config,
) (*Machine, error) {
	m := &Machine{
		store:    store,
		bus:      b,
		cfg:      cfg,
		now:      time.Now,
		bootedAt: time.Now(),
	}
	m.effects = m.runCompletionEffects

	state, ok, err := store.TimerState()
	if err != nil {
		return nil, err
	}

	if ok {
		m.state = state
	}

	if m.expiredLocked(m.now()) {
		if err := m.completeLocked(m.now(), false); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// State returns a copy of the current snapshot.
func (m *Machine) State() models.TimerState {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state
}

// Remaining returns the time left at the given moment. While running it
// is derived from the deadline; while paused the stored value is
// authoritative.
func (m *Machine) Remaining(now time.Time) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.remainingLocked(now)
}

func (m *Machine) remainingLocked(now time.Time) time.Duration {
	if m.state.Running {
		left := m.state.EndAt.Sub(now)
		if left < 0 {
			return 0
		}

		return left
	}

	return time.Duration(m.state.RemainingSeconds) * time.Second
}

// Start begins a fresh session for the task, replacing any live session
// regardless of which task it belonged to. The duration comes from the
// task's stored override, or the configured default. The task text
// travels in the snapshot so surfaces can label the session without
// touching the task DB.
func (m *Machine) Start(taskID, taskText string) (models.TimerState, error) {
	if taskID == "" {
		return models.TimerState{}, errNoTask
	}

	durations, err := m.store.Durations()
	if err != nil {
		return models.TimerState{}, err
	}

	minutes := m.cfg.FocusMinutes
	if v, ok := durations[taskID]; ok {
		minutes = v
	}

	seconds := minutes * 60

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()

	m.state = models.TimerState{
		SessionID:        uuid.NewString(),
		TaskID:           taskID,
		TaskText:         taskText,
		DurationSeconds:  seconds,
		RemainingSeconds: seconds,
		EndAt:            now.Add(time.Duration(seconds) * time.Second),
		Running:          true,
	}

	if err := m.persistLocked(); err != nil {
		return models.TimerState{}, err
	}

	return m.state, nil
}

// Pause freezes the countdown. Pausing anything but a running session
// is ignored. A session whose deadline already passed settles its
// completion instead of freezing at zero.
func (m *Machine) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.state.Running || m.state.Completed {
		return nil
	}

	now := m.now()
	if m.expiredLocked(now) {
		return m.completeLocked(now, true)
	}

	left := m.remainingLocked(now)

	m.state.RemainingSeconds = int(left / time.Second)
	m.state.EndAt = time.Time{}
	m.state.Running = false

	return m.persistLocked()
}

// Resume continues a paused session from its frozen remaining time.
// Resuming a running, completed, or drained session is ignored.
func (m *Machine) Resume() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.state.Live() || m.state.Running || m.state.Completed ||
		m.state.RemainingSeconds <= 0 {
		return nil
	}

	left := time.Duration(m.state.RemainingSeconds) * time.Second

	m.state.EndAt = m.now().Add(left)
	m.state.Running = true

	return m.persistLocked()
}

// Reset restores the session's full duration without starting it.
func (m *Machine) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.state.Live() {
		return nil
	}

	m.state.RemainingSeconds = m.state.DurationSeconds
	m.state.EndAt = time.Time{}
	m.state.Running = false
	m.state.Completed = false

	return m.persistLocked()
}

// Stop destroys the session and removes the snapshot.
func (m *Machine) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = models.TimerState{}
	m.completedAt = time.Time{}

	if err := m.store.ClearTimerState(); err != nil {
		return err
	}

	m.publish()

	return nil
}

// SetDuration stores a per-task duration override. When the task is the
// one currently timed, the live session pauses at the new full duration
// rather than keeping the old countdown.
func (m *Machine) SetDuration(taskID string, minutes int) error {
	if minutes < config.MinFocusMinutes || minutes > config.MaxFocusMinutes {
		return errInvalidDuration.Fmt(
			minutes,
			config.MinFocusMinutes,
			config.MaxFocusMinutes,
		)
	}

	if err := m.store.SetTaskDuration(taskID, minutes); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.state.Live() || m.state.TaskID != taskID || m.state.Completed {
		m.publish()
		return nil
	}

	seconds := minutes * 60

	m.state.DurationSeconds = seconds
	m.state.RemainingSeconds = seconds
	m.state.EndAt = time.Time{}
	m.state.Running = false

	return m.persistLocked()
}

// Observe checks the deadline and settles the session when it has
// elapsed. Any number of observers may call this concurrently; the
// completion fires exactly once per session.
func (m *Machine) Observe() (completed bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if !m.expiredLocked(now) {
		return false, nil
	}

	return true, m.completeLocked(now, true)
}

// Reload replaces local state with the persisted snapshot, picking up
// control actions performed by another surface. The reloaded snapshot
// goes through the same expiry check as a fresh load, so whichever
// observer sees the elapsed deadline first settles the session.
func (m *Machine) Reload() error {
	state, ok, err := m.store.TimerState()
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !ok {
		m.state = models.TimerState{}
		return nil
	}

	m.state = state

	if m.expiredLocked(m.now()) {
		return m.completeLocked(m.now(), true)
	}

	return nil
}

// JustCompleted reports whether a session settled within the highlight
// window.
func (m *Machine) JustCompleted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.completedAt.IsZero() {
		return false
	}

	return m.now().Sub(m.completedAt) <= highlightWindow
}

func (m *Machine) expiredLocked(now time.Time) bool {
	return m.state.Running && !m.state.Completed &&
		!m.state.EndAt.IsZero() && !m.state.EndAt.After(now)
}

// completeLocked settles an elapsed session: it records the guard,
// counts the pomodoro, and fires the side effects at most once per
// SessionID. Sessions that expired before this process started are
// settled without notifying again.
func (m *Machine) completeLocked(now time.Time, notify bool) error {
	if m.state.Completed {
		return nil
	}

	// a sibling process may have settled, replaced, or stopped the
	// session since our local copy was taken
	persisted, ok, err := m.store.TimerState()
	if err == nil {
		if !ok {
			m.state = models.TimerState{}
			return nil
		}

		if persisted.SessionID != m.state.SessionID || persisted.Completed {
			m.state = persisted
			return nil
		}
	}

	if m.state.EndAt.Before(m.bootedAt) {
		notify = false
	}

	m.state.Completed = true
	m.state.Running = false
	m.state.RemainingSeconds = 0
	m.completedAt = now

	if err := m.persistLocked(); err != nil {
		return err
	}

	if _, err := m.store.IncrementPomodoro(m.state.TaskID); err != nil {
		return err
	}

	if notify && m.effects != nil {
		m.effects(m.state)
	}

	return nil
}

// persistLocked writes the snapshot and then announces the change, so
// observers that re-read on the event always see the settled state.
func (m *Machine) persistLocked() error {
	if err := m.store.SaveTimerState(m.state); err != nil {
		return err
	}

	m.publish()

	return nil
}

func (m *Machine) publish() {
	if m.bus != nil {
		m.bus.Publish(bus.Event{Topic: bus.TopicTimer})
	}
}
