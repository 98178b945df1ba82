package timer

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"

	"github.com/finlite/taskfocus/internal/timeutil"
)

// formatTimeRemaining returns the remaining time formatted as "MM:SS".
func (m *Model) formatTimeRemaining() string {
	mins, secs := timeutil.SecsToMinsAndSecs(m.clock.Timeout.Seconds())

	return fmt.Sprintf(
		"%s:%s", fmt.Sprintf("%02d", mins), fmt.Sprintf("%02d", secs),
	)
}

func (m *Model) completedView() string {
	var s strings.Builder

	banner := m.styles.secondary
	if m.machine.JustCompleted() {
		banner = m.styles.main
	}

	s.WriteString(banner.SetString("Focus session complete").String())
	s.WriteString(
		"\n\n" + m.styles.secondary.SetString(
			"Time for a well-deserved break!",
		).String(),
	)
	s.WriteString("\n\n" + m.help.ShortHelpView([]key.Binding{
		m.keymap.stop,
		m.keymap.quit,
	}))

	return s.String()
}

func (m *Model) timerView() string {
	var s strings.Builder

	state := m.machine.State()

	label := state.TaskText
	if label == "" {
		label = state.TaskID
	}

	s.WriteString(m.styles.main.SetString(label).String())
	s.WriteString("\n")

	if state.Running {
		timeFormat := "03:04 PM"
		if m.machine.cfg.TwentyFourHour {
			timeFormat = "15:04"
		}

		s.WriteString(
			m.styles.hint.SetString(
				"until " + state.EndAt.Format(timeFormat),
			).String(),
		)
	} else {
		s.WriteString(m.styles.secondary.SetString("[Paused]").String())
	}

	percent := 0.0
	if state.DurationSeconds > 0 {
		total := time.Duration(state.DurationSeconds) * time.Second
		percent = 1 - m.clock.Timeout.Seconds()/total.Seconds()
	}

	s.WriteString("\n\n")
	s.WriteString(m.styles.main.SetString(m.formatTimeRemaining()).String())
	s.WriteString("\n\n")
	s.WriteString(m.progress.ViewAs(percent))
	s.WriteString("\n\n" + m.help.ShortHelpView([]key.Binding{
		m.keymap.togglePlay,
		m.keymap.reset,
		m.keymap.duration,
		m.keymap.stop,
		m.keymap.quit,
	}))

	return s.String()
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	if m.durationForm != nil {
		return m.styles.base.Render(
			m.timerView() + "\n\n" + m.durationForm.View(),
		)
	}

	if m.machine.State().Completed {
		return m.styles.base.Render(m.completedView())
	}

	return m.styles.base.Render(m.timerView())
}
