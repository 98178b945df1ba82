package app

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/markusmobius/go-dateparser"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/finlite/taskfocus/internal/config"
	"github.com/finlite/taskfocus/internal/models"
	"github.com/finlite/taskfocus/internal/ui"
	"github.com/finlite/taskfocus/task"
)

// parseCreated resolves the --created value to a point in time,
// accepting natural language like "yesterday" or "3 days ago".
func parseCreated(value string) (time.Time, error) {
	if value == "" {
		return time.Now(), nil
	}

	dt, err := dateparser.Parse(&dateparser.Configuration{
		CurrentTime: time.Now(),
	}, value)
	if err != nil {
		return time.Time{}, errBadDate.Fmt(value)
	}

	return dt.Time, nil
}

func addAction(ctx *cli.Context) error {
	text := strings.Join(ctx.Args().Slice(), " ")
	if strings.TrimSpace(text) == "" {
		return errMissingArg.Fmt("task text")
	}

	createdAt, err := parseCreated(ctx.String("created"))
	if err != nil {
		return err
	}

	e, err := newEngine(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	rec, err := e.repo.Add(text, createdAt)
	if err != nil {
		return err
	}

	pterm.Success.Printfln("added %q (%s)", rec.Text, shortID(rec.ID))

	return nil
}

func subAction(ctx *cli.Context) error {
	if ctx.Args().Len() < 2 {
		return errMissingArg.Fmt("sub TASK TEXT")
	}

	e, err := newEngine(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	parent, err := e.findTask(ctx.Args().First())
	if err != nil {
		return err
	}

	text := strings.Join(ctx.Args().Tail(), " ")

	rec, expandParent, err := e.repo.AddSubtask(parent.ID, text)
	if err != nil {
		return err
	}

	if expandParent {
		if err := e.kv.SetExpanded(parent.ID, true); err != nil {
			return err
		}
	}

	pterm.Success.Printfln(
		"added %q under %q (%s)",
		rec.Text,
		parent.Text,
		shortID(rec.ID),
	)

	return nil
}

func toggleAction(ctx *cli.Context) error {
	if ctx.Args().Len() == 0 {
		return errMissingArg.Fmt("toggle TASK")
	}

	e, err := newEngine(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	rec, err := e.findTask(ctx.Args().First())
	if err != nil {
		return err
	}

	err = e.repo.ToggleCompletion(rec.ID)
	if errors.Is(err, task.ErrCascadeWrite) {
		// the task's own change went through
		pterm.Warning.Printfln("%v", err)
		return nil
	}

	if err != nil {
		return err
	}

	updated, _ := e.repo.Find(rec.ID)

	state := "open"
	if updated.Completed {
		state = "done"
	}

	pterm.Success.Printfln("%q is now %s", updated.Text, state)

	return nil
}

func editAction(ctx *cli.Context) error {
	if ctx.Args().Len() < 2 {
		return errMissingArg.Fmt("edit TASK TEXT")
	}

	e, err := newEngine(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	rec, err := e.findTask(ctx.Args().First())
	if err != nil {
		return err
	}

	text := strings.Join(ctx.Args().Tail(), " ")

	if err := e.repo.EditText(rec.ID, text); err != nil {
		return err
	}

	pterm.Success.Printfln("renamed %q to %q", rec.Text, text)

	return nil
}

func deleteAction(ctx *cli.Context) error {
	if ctx.Args().Len() == 0 {
		return errMissingArg.Fmt("delete TASK")
	}

	e, err := newEngine(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	rec, err := e.findTask(ctx.Args().First())
	if err != nil {
		return err
	}

	if !ctx.Bool("force") {
		prompt := "Delete " + strconv.Quote(rec.Text) + "?"

		if node, ok := e.repo.Node(rec.ID); ok && node.TotalSubtasks() > 0 {
			prompt = pterm.Sprintf(
				"Delete %q and its %d subtasks?",
				rec.Text,
				node.TotalSubtasks(),
			)
		}

		var confirmed bool

		err := huh.NewConfirm().Title(prompt).Value(&confirmed).Run()
		if err != nil {
			return err
		}

		if !confirmed {
			return nil
		}
	}

	if err := e.repo.Delete(rec.ID); err != nil {
		return err
	}

	pterm.Success.Printfln("deleted %q", rec.Text)

	return nil
}

func reorderAction(ctx *cli.Context) error {
	if ctx.Args().Len() < 2 {
		return errMissingArg.Fmt("reorder TASK TARGET")
	}

	e, err := newEngine(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	rec, err := e.findTask(ctx.Args().Get(0))
	if err != nil {
		return err
	}

	target, err := e.findTask(ctx.Args().Get(1))
	if err != nil {
		return err
	}

	if err := e.repo.Reorder(rec.ID, target.ID); err != nil {
		return err
	}

	pterm.Success.Printfln("moved %q before %q", rec.Text, target.Text)

	return nil
}

func moveAction(ctx *cli.Context) error {
	if ctx.Args().Len() < 2 {
		return errMissingArg.Fmt("move TASK SECTION")
	}

	e, err := newEngine(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	rec, err := e.findTask(ctx.Args().Get(0))
	if err != nil {
		return err
	}

	target := models.Section(ctx.Args().Get(1))
	if !target.Valid() {
		return errBadSection.Fmt(ctx.Args().Get(1))
	}

	if err := e.repo.MoveToSection(rec.ID, target); err != nil {
		return err
	}

	pterm.Success.Printfln("pinned %q to %s", rec.Text, target)

	return nil
}

func resetSectionAction(ctx *cli.Context) error {
	e, err := newEngine(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	if ctx.Args().Len() == 0 {
		if err := e.repo.ResetAllOverrides(); err != nil {
			return err
		}

		pterm.Success.Println("cleared all section pins")

		return nil
	}

	rec, err := e.findTask(ctx.Args().First())
	if err != nil {
		return err
	}

	if err := e.repo.ResetOverride(rec.ID); err != nil {
		return err
	}

	pterm.Success.Printfln("cleared section pin on %q", rec.Text)

	return nil
}

func expandAction(ctx *cli.Context) error {
	if ctx.Args().Len() == 0 {
		return errMissingArg.Fmt("expand TASK")
	}

	e, err := newEngine(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	rec, err := e.findTask(ctx.Args().First())
	if err != nil {
		return err
	}

	set, err := e.kv.ExpandedTasks()
	if err != nil {
		return err
	}

	_, expanded := set[rec.ID]

	if err := e.kv.SetExpanded(rec.ID, !expanded); err != nil {
		return err
	}

	if expanded {
		pterm.Success.Printfln("collapsed %q", rec.Text)
	} else {
		pterm.Success.Printfln("expanded %q", rec.Text)
	}

	return nil
}

func filterAction(ctx *cli.Context) error {
	e, err := newEngine(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	if ctx.Args().Len() == 0 {
		pterm.Printfln("filter: %s", ui.Highlight(string(e.kv.Filter())))
		return nil
	}

	f := models.Filter(ctx.Args().First())

	switch f {
	case models.FilterAll, models.FilterParentOnly, models.FilterStandalone:
	default:
		return errBadFilter.Fmt(ctx.Args().First())
	}

	if err := e.kv.SetFilter(f); err != nil {
		return err
	}

	pterm.Success.Printfln("filter set to %s", f)

	return nil
}

func viewAction(ctx *cli.Context) error {
	e, err := newEngine(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	if ctx.Args().Len() == 0 {
		pterm.Printfln("view: %s", ui.Highlight(string(e.kv.ViewMode())))
		return nil
	}

	m := models.ViewMode(ctx.Args().First())

	switch m {
	case models.ViewTimeBased, models.ViewParentBased:
	default:
		return errBadViewMode.Fmt(ctx.Args().First())
	}

	if err := e.kv.SetViewMode(m); err != nil {
		return err
	}

	pterm.Success.Printfln("view mode set to %s", m)

	return nil
}

func durationAction(ctx *cli.Context) error {
	if ctx.Args().Len() == 0 {
		return errMissingArg.Fmt("duration TASK [MINUTES]")
	}

	rec, err := resolveTaskOnce(ctx, ctx.Args().First())
	if err != nil {
		return err
	}

	input := ctx.Args().Get(1)

	if input == "" {
		err := huh.NewInput().
			Title("Focus duration for " + strconv.Quote(rec.Text) + " (minutes)").
			Validate(func(s string) error {
				v, convErr := strconv.Atoi(s)
				if convErr != nil ||
					v < config.MinFocusMinutes ||
					v > config.MaxFocusMinutes {
					return errMissingArg.Fmt("a number between 1 and 999")
				}

				return nil
			}).
			Value(&input).
			Run()
		if err != nil {
			return err
		}
	}

	minutes, err := strconv.Atoi(input)
	if err != nil {
		return errMissingArg.Fmt("a number between 1 and 999")
	}

	h, err := newTimerHandle()
	if err != nil {
		return err
	}

	if err := h.machine.SetDuration(rec.ID, minutes); err != nil {
		return err
	}

	pterm.Success.Printfln("%q now runs %d-minute sessions", rec.Text, minutes)

	return nil
}

func shortID(id string) string {
	const n = 8
	if len(id) <= n {
		return id
	}

	return id[:n]
}
