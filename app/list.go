package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/finlite/taskfocus/internal/models"
	"github.com/finlite/taskfocus/internal/ui"
	"github.com/finlite/taskfocus/section"
	"github.com/finlite/taskfocus/task"
)

// listData is everything the renderer needs, resolved up front so the
// rendering itself stays pure.
type listData struct {
	Groups    []task.SectionGroup
	Parents   task.ParentGroups
	ViewMode  models.ViewMode
	Filter    models.Filter
	Expanded  map[string]struct{}
	Pomodoros map[string]int
	Durations map[string]int
	Live      models.TimerState
}

func listAction(ctx *cli.Context) error {
	e, err := newEngine(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	data, err := e.collectListData()
	if err != nil {
		return err
	}

	if ctx.Bool("json") {
		var b []byte

		if data.ViewMode == models.ViewParentBased {
			b, err = json.Marshal(data.Parents)
		} else {
			b, err = json.Marshal(data.Groups)
		}

		if err != nil {
			return err
		}

		pterm.Println(string(b))

		return nil
	}

	renderList(os.Stdout, data)

	return nil
}

func (e *engine) collectListData() (listData, error) {
	data := listData{
		ViewMode: e.kv.ViewMode(),
		Filter:   e.kv.Filter(),
	}

	if data.ViewMode == models.ViewParentBased {
		data.Parents = e.repo.GroupByParent(data.Filter)
	} else {
		data.Groups = e.repo.GroupBySection(data.Filter)
	}

	expanded, err := e.kv.ExpandedTasks()
	if err != nil {
		return listData{}, err
	}

	data.Expanded = expanded

	counts, err := e.kv.PomodoroCounts()
	if err != nil {
		return listData{}, err
	}

	data.Pomodoros = counts

	durations, err := e.kv.Durations()
	if err != nil {
		return listData{}, err
	}

	data.Durations = durations

	if state, ok, err := e.kv.TimerState(); err == nil && ok {
		data.Live = state
	}

	return data, nil
}

func renderList(w io.Writer, data listData) {
	fmt.Fprintf(
		w,
		"%s\n\n",
		ui.Faint(
			fmt.Sprintf("view: %s | filter: %s", data.ViewMode, data.Filter),
		),
	)

	if data.ViewMode == models.ViewParentBased {
		renderHeading(w, "Projects", len(data.Parents.Parents))

		for _, n := range data.Parents.Parents {
			renderNode(w, n, data)
		}

		fmt.Fprintln(w)
		renderHeading(w, "Standalone", len(data.Parents.Standalone))

		for _, n := range data.Parents.Standalone {
			renderNode(w, n, data)
		}

		return
	}

	for i, grp := range data.Groups {
		if i > 0 {
			fmt.Fprintln(w)
		}

		renderHeading(w, section.Title(grp.Section), len(grp.Nodes))

		for _, n := range grp.Nodes {
			renderNode(w, n, data)
		}
	}
}

func renderHeading(w io.Writer, title string, count int) {
	fmt.Fprintf(w, "%s %s\n", ui.Cyan(title), ui.Faint(fmt.Sprintf("(%d)", count)))
}

func renderNode(w io.Writer, n task.Node, data listData) {
	fmt.Fprintf(w, "  %s\n", taskLine(n.Task, n, data))

	if n.Kind != task.KindParent {
		return
	}

	if _, ok := data.Expanded[n.ID]; !ok {
		return
	}

	for _, sub := range n.Subtasks {
		fmt.Fprintf(
			w,
			"    %s\n",
			taskLine(sub, task.Node{Task: sub, Kind: task.KindSubtask}, data),
		)
	}
}

func taskLine(rec models.Task, n task.Node, data listData) string {
	box := "[ ]"
	text := rec.Text

	if rec.Completed {
		box = ui.Green("[x]")
		text = ui.Faint(text)
	}

	line := fmt.Sprintf("%s %s", box, text)

	if n.Kind == task.KindParent {
		line += " " + ui.Faint(
			fmt.Sprintf("(%d/%d)", n.CompletedSubtasks, n.TotalSubtasks()),
		)
	}

	if count := data.Pomodoros[rec.ID]; count > 0 {
		line += " " + ui.Magenta(fmt.Sprintf("⏱%d", count))
	}

	if minutes, ok := data.Durations[rec.ID]; ok {
		line += " " + ui.Faint(fmt.Sprintf("%dm", minutes))
	}

	if data.Live.Live() && data.Live.TaskID == rec.ID {
		marker := "focusing"
		if !data.Live.Running {
			marker = "paused"
		}

		if data.Live.Completed {
			marker = "done"
		}

		line += " " + ui.Yellow("["+marker+"]")
	}

	return line
}
