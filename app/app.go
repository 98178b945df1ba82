// Package app defines the taskfocus command-line interface.
package app

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/finlite/taskfocus/internal/config"
	"github.com/finlite/taskfocus/internal/ui"
)

const (
	envNoColor          = "NO_COLOR"
	envTaskfocusNoColor = "TASKFOCUS_NO_COLOR"
)

// disableStyling disables all styling provided by pterm.
func disableStyling() {
	pterm.DisableColor()
	pterm.DisableStyling()
	pterm.Debug.Prefix.Text = ""
	pterm.Info.Prefix.Text = ""
	pterm.Success.Prefix.Text = ""
	pterm.Warning.Prefix.Text = ""
	pterm.Error.Prefix.Text = ""
	pterm.Fatal.Prefix.Text = ""
}

// Get retrieves the taskfocus app instance.
func Get() *cli.App {
	taskfocusApp := &cli.App{
		Name: "taskfocus",
		Usage: `
		Taskfocus is a hierarchical task list with a built-in focus timer
		for the command-line. Tasks are grouped by age into Today, This
		Week, and This Month, and any task can drive a countdown session.`,
		UsageText:            "[COMMAND] [OPTIONS]",
		Version:              config.Version,
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add a new top-level task",
				UsageText: "add [OPTIONS] TEXT",
				Action:    addAction,
				Flags:     []cli.Flag{createdFlag},
			},
			{
				Name:      "sub",
				Usage:     "Add a subtask under a task",
				UsageText: "sub TASK TEXT",
				Action:    subAction,
			},
			{
				Name:   "list",
				Usage:  "Print the task list in the current view mode",
				Action: listAction,
				Flags:  []cli.Flag{jsonFlag},
			},
			{
				Name:      "toggle",
				Usage:     "Toggle a task's completed state",
				UsageText: "toggle TASK",
				Action:    toggleAction,
			},
			{
				Name:      "edit",
				Usage:     "Change a task's text",
				UsageText: "edit TASK TEXT",
				Action:    editAction,
			},
			{
				Name:      "delete",
				Usage:     "Delete a task and its subtasks",
				UsageText: "delete [OPTIONS] TASK",
				Action:    deleteAction,
				Flags:     []cli.Flag{forceFlag},
			},
			{
				Name:      "reorder",
				Usage:     "Move a task directly before another task",
				UsageText: "reorder TASK TARGET",
				Action:    reorderAction,
			},
			{
				Name:      "move",
				Usage:     "Pin a task to a section (today, this_week, this_month)",
				UsageText: "move TASK SECTION",
				Action:    moveAction,
			},
			{
				Name:      "reset-section",
				Usage:     "Clear a task's section pin, or all pins",
				UsageText: "reset-section [TASK]",
				Action:    resetSectionAction,
			},
			{
				Name:      "expand",
				Usage:     "Show or hide a task's subtasks in the list",
				UsageText: "expand TASK",
				Action:    expandAction,
			},
			{
				Name:      "filter",
				Usage:     "Set the task filter (all, parent-only, standalone-only)",
				UsageText: "filter [FILTER]",
				Action:    filterAction,
			},
			{
				Name:      "view",
				Usage:     "Set the view mode (time-based, parent-based)",
				UsageText: "view [MODE]",
				Action:    viewAction,
			},
			{
				Name:      "duration",
				Usage:     "Set a task's focus duration in minutes",
				UsageText: "duration TASK [MINUTES]",
				Action:    durationAction,
			},
			{
				Name:  "timer",
				Usage: "Control the focus timer",
				Subcommands: []*cli.Command{
					{
						Name:      "run",
						Usage:     "Start a session for a task, or attach to the live one",
						UsageText: "timer run [TASK]",
						Action:    timerRunAction,
					},
					{
						Name:   "status",
						Usage:  "Print the status of the current session",
						Action: timerStatusAction,
					},
					{
						Name:   "pause",
						Usage:  "Pause the current session",
						Action: timerPauseAction,
					},
					{
						Name:   "resume",
						Usage:  "Resume a paused session",
						Action: timerResumeAction,
					},
					{
						Name:   "stop",
						Usage:  "Stop the current session",
						Action: timerStopAction,
					},
				},
			},
		},
		Flags: []cli.Flag{
			noColorFlag,
			debugFlag,
		},
		Action: listAction,
		Before: beforeAction,
	}

	return taskfocusApp
}

func beforeAction(ctx *cli.Context) error {
	oldVersionPrinter := cli.VersionPrinter
	cli.VersionPrinter = func(c *cli.Context) {
		oldVersionPrinter(c)
		fmt.Printf(
			"https://github.com/finlite/taskfocus/releases/%s\n",
			c.App.Version,
		)
	}

	pterm.Error.MessageStyle = pterm.NewStyle(pterm.FgRed)
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "ERROR",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}

	pterm.Warning.MessageStyle = pterm.NewStyle(pterm.FgYellow)
	pterm.Warning.Prefix = pterm.Prefix{
		Text:  "WARNING",
		Style: pterm.NewStyle(pterm.BgYellow, pterm.FgBlack),
	}

	if _, exists := os.LookupEnv(envNoColor); exists {
		disableStyling()
	}

	if _, exists := os.LookupEnv(envTaskfocusNoColor); exists {
		disableStyling()
	}

	if ctx.Bool("no-color") {
		disableStyling()
	}

	ui.DarkTheme = config.Get().DarkTheme

	return nil
}
