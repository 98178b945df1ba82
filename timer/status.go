package timer

import (
	"time"

	"github.com/pterm/pterm"

	"github.com/finlite/taskfocus/internal/kv"
	"github.com/finlite/taskfocus/internal/timeutil"
	"github.com/finlite/taskfocus/internal/ui"
)

// ReportStatus prints a one-line summary of the current session,
// computed purely from the persisted snapshot so it works regardless of
// which process owns the countdown. No session prints nothing.
func ReportStatus(st *kv.Store) error {
	state, ok, err := st.TimerState()
	if err != nil {
		return err
	}

	if !ok || !state.Live() {
		return nil
	}

	task := state.TaskText
	if task == "" {
		task = state.TaskID
	}

	var left time.Duration
	if state.Running {
		left = time.Until(state.EndAt)
		if left < 0 {
			left = 0
		}
	} else {
		left = time.Duration(state.RemainingSeconds) * time.Second
	}

	mins, secs := timeutil.SecsToMinsAndSecs(left.Seconds())

	var label string

	switch {
	case state.Completed || (state.Running && left == 0):
		label = ui.Green("[Done]")
	case state.Running:
		label = ui.Magenta("[Focusing]")
	default:
		label = ui.Blue("[Paused]")
	}

	pterm.Printfln("%s %s: %02d:%02d", label, ui.Highlight(task), mins, secs)

	return nil
}
