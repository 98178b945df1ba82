package app

import "github.com/urfave/cli/v2"

var (
	createdFlag = &cli.StringFlag{
		Name:  "created",
		Usage: "Backdate the task (e.g. 'yesterday', '3 days ago'). Affects which section it lands in",
	}

	noColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable coloured output",
	}

	debugFlag = &cli.BoolFlag{
		Name:  "debug",
		Usage: "Dump sync bus events to stderr",
	}

	jsonFlag = &cli.BoolFlag{
		Name:  "json",
		Usage: "Print the task list as JSON",
	}

	forceFlag = &cli.BoolFlag{
		Name:    "force",
		Aliases: []string{"f"},
		Usage:   "Delete without confirmation",
	}
)
