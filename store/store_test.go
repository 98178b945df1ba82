package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/finlite/taskfocus/internal/models"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	c, err := NewClient(filepath.Join(t.TempDir(), "taskfocus.db"))
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() {
		_ = c.Close()
	})

	return c
}

func seedTask(t *testing.T, c *Client, task models.Task) {
	t.Helper()

	if err := c.InsertTask(task); err != nil {
		t.Fatal(err)
	}
}

func TestAllTasksOrdering(t *testing.T) {
	c := newTestClient(t)

	base := time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)

	seedTask(t, c, models.Task{ID: "b", Text: "second", Position: 2, CreatedAt: base})
	seedTask(t, c, models.Task{ID: "a", Text: "first", Position: 1, CreatedAt: base})
	seedTask(t, c, models.Task{
		ID:        "c",
		Text:      "newer, same position",
		Position:  1,
		CreatedAt: base.Add(time.Hour),
	})

	tasks, err := c.AllTasks()
	if err != nil {
		t.Fatal(err)
	}

	var ids []string
	for _, task := range tasks {
		ids = append(ids, task.ID)
	}

	// position ascending, creation time descending within ties
	want := []string{"c", "a", "b"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestInsertRejectsDuplicateID(t *testing.T) {
	c := newTestClient(t)

	seedTask(t, c, models.Task{ID: "a", Text: "one"})

	if err := c.InsertTask(models.Task{ID: "a", Text: "two"}); err == nil {
		t.Error("expected duplicate insert to fail")
	}
}

func TestBatchPatch(t *testing.T) {
	c := newTestClient(t)

	seedTask(t, c, models.Task{ID: "a", Text: "one"})
	seedTask(t, c, models.Task{ID: "b", Text: "two"})
	seedTask(t, c, models.Task{ID: "c", Text: "three"})

	completed := true
	if err := c.UpdateTasks([]string{"a", "c"}, Patch{Completed: &completed}); err != nil {
		t.Fatal(err)
	}

	tasks, err := c.AllTasks()
	if err != nil {
		t.Fatal(err)
	}

	got := make(map[string]bool, len(tasks))
	for _, task := range tasks {
		got[task.ID] = task.Completed
	}

	want := map[string]bool{"a": true, "b": false, "c": true}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("completion mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenWhileLockedFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskfocus.db")

	first, err := NewClient(path)
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() {
		_ = first.Close()
	})

	if _, err := NewClient(path); !errors.Is(err, errAlreadyRunning) {
		t.Errorf("second open returned %v, want already-running", err)
	}
}

func TestUpsertTask(t *testing.T) {
	c := newTestClient(t)

	if err := c.UpsertTask(models.Task{ID: "a", Text: "one"}); err != nil {
		t.Fatal(err)
	}

	if err := c.UpsertTask(models.Task{ID: "a", Text: "renamed", Completed: true}); err != nil {
		t.Fatal(err)
	}

	tasks, err := c.AllTasks()
	if err != nil {
		t.Fatal(err)
	}

	if len(tasks) != 1 {
		t.Fatalf("expected a single record, got %d", len(tasks))
	}

	if tasks[0].Text != "renamed" || !tasks[0].Completed {
		t.Errorf("upsert did not replace the record: %+v", tasks[0])
	}
}

func TestUpdatePositions(t *testing.T) {
	c := newTestClient(t)

	seedTask(t, c, models.Task{ID: "a", Text: "one", Position: 1})
	seedTask(t, c, models.Task{ID: "b", Text: "two", Position: 2})
	seedTask(t, c, models.Task{ID: "c", Text: "three", Position: 3})

	err := c.UpdatePositions(map[string]int{"a": 3, "b": 1, "c": 2})
	if err != nil {
		t.Fatal(err)
	}

	tasks, err := c.AllTasks()
	if err != nil {
		t.Fatal(err)
	}

	var ids []string
	for _, task := range tasks {
		ids = append(ids, task.ID)
	}

	want := []string{"b", "c", "a"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdatePositionsUnknownTaskFails(t *testing.T) {
	c := newTestClient(t)

	seedTask(t, c, models.Task{ID: "a", Text: "one", Position: 1})

	if err := c.UpdatePositions(map[string]int{"a": 2, "ghost": 1}); err == nil {
		t.Error("expected unknown id in the batch to fail")
	}
}

func TestPatchClearsSectionOverride(t *testing.T) {
	c := newTestClient(t)

	seedTask(t, c, models.Task{
		ID:              "a",
		Text:            "one",
		SectionOverride: models.SectionToday,
	})

	var cleared models.Section
	if err := c.UpdateTask("a", Patch{SectionOverride: &cleared}); err != nil {
		t.Fatal(err)
	}

	tasks, _ := c.AllTasks()
	if tasks[0].SectionOverride != "" {
		t.Errorf("expected cleared override, but got: %s", tasks[0].SectionOverride)
	}
}

func TestUpdateUnknownTaskFails(t *testing.T) {
	c := newTestClient(t)

	text := "renamed"
	if err := c.UpdateTask("missing", Patch{Text: &text}); err == nil {
		t.Error("expected update of unknown id to fail")
	}
}

func TestDeleteCascadesToChildren(t *testing.T) {
	c := newTestClient(t)

	seedTask(t, c, models.Task{ID: "parent", Text: "launch"})
	seedTask(t, c, models.Task{ID: "sub1", Text: "write spec", ParentID: "parent"})
	seedTask(t, c, models.Task{ID: "sub2", Text: "review", ParentID: "parent"})
	seedTask(t, c, models.Task{ID: "other", Text: "unrelated"})

	if err := c.DeleteTask("parent"); err != nil {
		t.Fatal(err)
	}

	tasks, err := c.AllTasks()
	if err != nil {
		t.Fatal(err)
	}

	if len(tasks) != 1 || tasks[0].ID != "other" {
		t.Errorf("expected only the unrelated task to survive, but got: %v", tasks)
	}
}
