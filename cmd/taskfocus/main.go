package main

import (
	"os"

	"github.com/pterm/pterm"

	"github.com/finlite/taskfocus/app"
	"github.com/finlite/taskfocus/internal/config"
)

func init() {
	config.InitializePaths()
	config.InitLog()
}

func run(args []string) error {
	return app.Get().Run(args)
}

func main() {
	err := run(os.Args)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}
