package app

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/finlite/taskfocus/internal/bus"
	"github.com/finlite/taskfocus/internal/config"
	"github.com/finlite/taskfocus/internal/kv"
	"github.com/finlite/taskfocus/timer"
)

// timerHandle is the KV-only wiring for the timer surfaces. It never
// opens the task DB, so a control action from one process keeps working
// while another process holds the DB for the countdown.
type timerHandle struct {
	cfg     *config.Config
	kv      *kv.Store
	bus     *bus.Bus
	machine *timer.Machine
}

func newTimerHandle() (*timerHandle, error) {
	cfg := config.Get()

	kvStore, err := kv.Open(cfg.PathToKV)
	if err != nil {
		return nil, err
	}

	b := bus.New()

	machine, err := timer.NewMachine(kvStore, b, cfg)
	if err != nil {
		return nil, err
	}

	return &timerHandle{
		cfg:     cfg,
		kv:      kvStore,
		bus:     b,
		machine: machine,
	}, nil
}

// timerRunAction mounts the full-screen countdown. With a task argument
// it starts a fresh session; without one it attaches to the live
// session.
func timerRunAction(ctx *cli.Context) error {
	h, err := newTimerHandle()
	if err != nil {
		return err
	}

	if ctx.Args().Len() > 0 {
		rec, err := resolveTaskOnce(ctx, ctx.Args().First())
		if err != nil {
			return err
		}

		if _, err := h.machine.Start(rec.ID, rec.Text); err != nil {
			return err
		}
	} else if !h.machine.State().Live() {
		return errMissingArg.Fmt("a task to focus on (no live session)")
	}

	// pick up control actions from sibling processes
	if err := h.bus.Watch(ctx.Context, h.kv.BasePath()); err != nil {
		return err
	}

	model := timer.NewModel(h.machine, h.cfg)

	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()

	return err
}

func timerStatusAction(_ *cli.Context) error {
	h, err := newTimerHandle()
	if err != nil {
		return err
	}

	return timer.ReportStatus(h.kv)
}

func timerPauseAction(_ *cli.Context) error {
	h, err := newTimerHandle()
	if err != nil {
		return err
	}

	if !h.machine.State().Live() {
		pterm.Info.Println("no session to pause")
		return nil
	}

	if err := h.machine.Pause(); err != nil {
		return err
	}

	pterm.Success.Println("session paused")

	return nil
}

func timerResumeAction(_ *cli.Context) error {
	h, err := newTimerHandle()
	if err != nil {
		return err
	}

	state := h.machine.State()
	if !state.Live() || state.Running {
		pterm.Info.Println("no paused session to resume")
		return nil
	}

	if err := h.machine.Resume(); err != nil {
		return err
	}

	pterm.Success.Println("session resumed")

	return nil
}

func timerStopAction(_ *cli.Context) error {
	h, err := newTimerHandle()
	if err != nil {
		return err
	}

	if !h.machine.State().Live() {
		pterm.Info.Println("no session to stop")
		return nil
	}

	if err := h.machine.Stop(); err != nil {
		return err
	}

	pterm.Success.Println("session stopped")

	return nil
}
