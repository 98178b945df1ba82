package task

import (
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/finlite/taskfocus/internal/models"
	"github.com/finlite/taskfocus/store"
)

// Add creates a new top-level task sorting above all existing siblings.
func (r *Repository) Add(text string, createdAt time.Time) (models.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Task{}, errEmptyText
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	minPos := 0
	for _, n := range r.topLevel {
		if n.Position < minPos {
			minPos = n.Position
		}
	}

	rec := models.Task{
		ID:        uuid.NewString(),
		Text:      text,
		Position:  minPos - 1,
		CreatedAt: createdAt,
	}

	if err := r.db.InsertTask(rec); err != nil {
		return models.Task{}, err
	}

	r.reload()
	r.publish()

	return rec, nil
}

// AddSubtask creates a subtask sorting below its siblings. The returned
// flag tells the presentation layer to auto-expand the parent.
func (r *Repository) AddSubtask(
	parentID, text string,
) (rec models.Task, expandParent bool, err error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Task{}, false, errEmptyText
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	parent, ok := r.arena[parentID]
	if !ok {
		return models.Task{}, false, errUnknownTask.Fmt(parentID)
	}

	// subtasks cannot nest
	if !parent.TopLevel() {
		return models.Task{}, false, errSubtaskDepth
	}

	maxPos := 0

	if node, found := r.nodeLocked(parentID); found {
		for _, sub := range node.Subtasks {
			if sub.Position > maxPos {
				maxPos = sub.Position
			}
		}
	}

	rec = models.Task{
		ID:        uuid.NewString(),
		Text:      text,
		ParentID:  parentID,
		Position:  maxPos + 1,
		CreatedAt: r.now(),
	}

	if err = r.db.InsertTask(rec); err != nil {
		return models.Task{}, false, err
	}

	r.reload()
	r.publish()

	return rec, true, nil
}

// ToggleCompletion flips a task's completed state and reconciles the
// hierarchy:
//
//   - a parent propagates its new state to every subtask in the same
//     batched write;
//   - a subtask that completes the last incomplete sibling
//     auto-completes the parent;
//   - un-completing a subtask never un-completes the parent. Completion
//     cascades eagerly, reversal does not.
//
// Overlapping toggles on the same task are rejected until the in-flight
// write settles; disjoint tasks proceed freely.
func (r *Repository) ToggleCompletion(id string) error {
	if !r.acquire(id) {
		return errToggleInFlight.Fmt(id)
	}
	defer r.release(id)

	r.mu.Lock()

	rec, ok := r.arena[id]
	if !ok {
		r.mu.Unlock()
		return errUnknownTask.Fmt(id)
	}

	newVal := !rec.Completed

	var (
		batch        []string
		completePrnt bool
	)

	if rec.TopLevel() {
		node, _ := r.nodeLocked(id)

		batch = []string{id}
		for _, sub := range node.Subtasks {
			batch = append(batch, sub.ID)
		}
	} else if newVal {
		completePrnt = r.lastIncompleteSibling(rec.ParentID, id)
	}

	// optimistic apply before the gateway settles
	for _, tid := range batch {
		t := r.arena[tid]
		t.Completed = newVal
		r.arena[tid] = t
	}

	if !rec.TopLevel() {
		rec.Completed = newVal
		r.arena[id] = rec
	}

	r.rebuild()
	r.mu.Unlock()

	patch := store.Patch{Completed: &newVal}

	if rec.TopLevel() {
		// one batched write for the parent and all of its subtasks
		if err := r.db.UpdateTasks(batch, patch); err != nil {
			r.rollback()
			return err
		}
	} else {
		if err := r.db.UpdateTask(id, patch); err != nil {
			r.rollback()
			return err
		}

		if completePrnt {
			completed := true

			err := r.db.UpdateTask(
				rec.ParentID,
				store.Patch{Completed: &completed},
			)
			if err != nil {
				// the primary intent succeeded; keep it and surface the
				// cascade failure separately
				r.refresh()
				return errCascadeWrite.Wrap(err)
			}
		}
	}

	r.refresh()

	return nil
}

// lastIncompleteSibling reports whether toggledID is the only subtask of
// parentID still marked incomplete, in which case the parent should
// auto-complete. Callers must hold r.mu.
func (r *Repository) lastIncompleteSibling(parentID, toggledID string) bool {
	node, ok := r.nodeLocked(parentID)
	if !ok || node.Completed {
		return false
	}

	for _, sub := range node.Subtasks {
		if sub.ID != toggledID && !sub.Completed {
			return false
		}
	}

	return true
}

// EditText renames a task.
func (r *Repository) EditText(id, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return errEmptyText
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.arena[id]; !ok {
		return errUnknownTask.Fmt(id)
	}

	if err := r.db.UpdateTask(id, store.Patch{Text: &text}); err != nil {
		return err
	}

	r.reload()
	r.publish()

	return nil
}

// Delete removes a task. Cascade delete of subtasks is a referential
// action performed by the gateway, not by walking children here.
func (r *Repository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.arena[id]; !ok {
		return errUnknownTask.Fmt(id)
	}

	if err := r.db.DeleteTask(id); err != nil {
		return err
	}

	r.reload()
	r.publish()

	return nil
}

func (r *Repository) acquire(id string) bool {
	r.inflightMu.Lock()
	defer r.inflightMu.Unlock()

	if _, busy := r.inflight[id]; busy {
		slog.Debug("toggle already in flight", slog.String("id", id))
		return false
	}

	r.inflight[id] = struct{}{}

	return true
}

func (r *Repository) release(id string) {
	r.inflightMu.Lock()
	defer r.inflightMu.Unlock()

	delete(r.inflight, id)
}
