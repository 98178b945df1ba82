package timer

import (
	"log/slog"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	btimer "github.com/charmbracelet/bubbles/timer"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/finlite/taskfocus/internal/config"
)

// handleTimerTick refreshes the display countdown from the deadline and
// settles the session when it has elapsed. The tick never advances the
// session itself.
func (m *Model) handleTimerTick(msg btimer.TickMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.clock, cmd = m.clock.Update(msg)

	m.syncClock()

	completed, err := m.machine.Observe()
	if err != nil {
		slog.Error("unable to settle session", slog.Any("error", err))
	}

	if completed {
		return m, m.clock.Stop()
	}

	return m, cmd
}

func (m *Model) handleBusEvent() (tea.Model, tea.Cmd) {
	if err := m.machine.Reload(); err != nil {
		slog.Error("unable to reload snapshot", slog.Any("error", err))
	}

	state := m.machine.State()

	// the session was stopped from another surface
	if !state.Live() {
		m.quitting = true
		m.unsubscribe()

		return m, tea.Batch(tea.ClearScreen, tea.Quit)
	}

	m.syncClock()

	var cmd tea.Cmd

	if state.Running && !m.clock.Running() {
		cmd = m.clock.Start()
	} else if !state.Running && m.clock.Running() {
		cmd = m.clock.Stop()
	}

	return m, tea.Batch(cmd, m.waitForEvent())
}

func (m *Model) openDurationForm() {
	state := m.machine.State()
	m.minutesInput = strconv.Itoa(state.DurationSeconds / 60)

	m.durationForm = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Focus duration (minutes)").
				Value(&m.minutesInput).
				Validate(func(s string) error {
					v, err := strconv.Atoi(s)
					if err != nil ||
						v < config.MinFocusMinutes ||
						v > config.MaxFocusMinutes {
						return errInvalidDuration.Fmt(
							v,
							config.MinFocusMinutes,
							config.MaxFocusMinutes,
						)
					}

					return nil
				}),
		),
	)
}

func (m *Model) handleDurationForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.durationForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.durationForm = f
	}

	if m.durationForm.State != huh.StateCompleted {
		return m, cmd
	}

	minutes, err := strconv.Atoi(m.minutesInput)
	m.durationForm = nil

	if err != nil {
		return m, cmd
	}

	state := m.machine.State()

	if err := m.machine.SetDuration(state.TaskID, minutes); err != nil {
		slog.Error("unable to set duration", slog.Any("error", err))
		return m, cmd
	}

	m.syncClock()

	// the live session pauses at the new duration
	return m, tea.Batch(cmd, m.clock.Stop())
}

func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.togglePlay):
		state := m.machine.State()
		if state.Completed {
			return m, nil
		}

		var err error
		if state.Running {
			err = m.machine.Pause()
		} else {
			err = m.machine.Resume()
		}

		if err != nil {
			slog.Error("unable to toggle session", slog.Any("error", err))
			return m, nil
		}

		m.syncClock()

		return m, m.clock.Toggle()

	case key.Matches(msg, m.keymap.reset):
		if err := m.machine.Reset(); err != nil {
			slog.Error("unable to reset session", slog.Any("error", err))
			return m, nil
		}

		m.syncClock()

		return m, m.clock.Stop()

	case key.Matches(msg, m.keymap.duration):
		m.openDurationForm()
		return m, m.durationForm.Init()

	case key.Matches(msg, m.keymap.stop):
		if err := m.machine.Stop(); err != nil {
			slog.Error("unable to stop session", slog.Any("error", err))
		}

		m.quitting = true
		m.unsubscribe()

		return m, tea.Batch(tea.ClearScreen, tea.Quit)

	case key.Matches(msg, m.keymap.quit):
		// leave the session as is; the snapshot keeps counting down
		m.quitting = true
		m.unsubscribe()

		return m, tea.Batch(tea.ClearScreen, tea.Quit)
	}

	return m, nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.durationForm != nil {
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "esc" {
			m.durationForm = nil
			return m, nil
		}

		if _, ok := msg.(btimer.TickMsg); !ok {
			return m.handleDurationForm(msg)
		}
	}

	switch msg := msg.(type) {
	case btimer.TickMsg:
		return m.handleTimerTick(msg)

	case btimer.StartStopMsg:
		var cmd tea.Cmd
		m.clock, cmd = m.clock.Update(msg)

		return m, cmd

	case busEventMsg:
		return m.handleBusEvent()

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width

		m.progress.Width = msg.Width - padding*2 - 4
		if m.progress.Width > maxWidth {
			m.progress.Width = maxWidth
		}

		return m, nil

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress, _ = progressModel.(progress.Model)

		return m, cmd
	}

	return m, nil
}
