package task

import (
	"github.com/finlite/taskfocus/internal/models"
	"github.com/finlite/taskfocus/section"
	"github.com/finlite/taskfocus/store"
)

// Reorder moves the task with id directly before targetID and renumbers
// every top-level task 1..N so positions stay dense. Both tasks must be
// top-level; subtasks keep their insertion order.
func (r *Repository) Reorder(id, targetID string) error {
	if id == targetID {
		return nil
	}

	r.mu.Lock()

	moved, ok := r.arena[id]
	if !ok {
		r.mu.Unlock()
		return errUnknownTask.Fmt(id)
	}

	target, ok := r.arena[targetID]
	if !ok {
		r.mu.Unlock()
		return errUnknownTask.Fmt(targetID)
	}

	if !moved.TopLevel() || !target.TopLevel() {
		r.mu.Unlock()
		return errNotTopLevel
	}

	ordered := make([]string, 0, len(r.topLevel))

	for _, n := range r.topLevel {
		if n.ID != id {
			ordered = append(ordered, n.ID)
		}
	}

	spliced := make([]string, 0, len(ordered)+1)

	for _, tid := range ordered {
		if tid == targetID {
			spliced = append(spliced, id)
		}

		spliced = append(spliced, tid)
	}

	positions := make(map[string]int, len(spliced))
	for i, tid := range spliced {
		positions[tid] = i + 1
	}

	// optimistic apply before the gateway settles
	for tid, pos := range positions {
		rec := r.arena[tid]
		rec.Position = pos
		r.arena[tid] = rec
	}

	r.rebuild()
	r.mu.Unlock()

	if err := r.db.UpdatePositions(positions); err != nil {
		r.rollback()
		return err
	}

	r.refresh()

	return nil
}

// MoveToSection pins a top-level task to the given section. Moving a
// task to the section it already displays in is a no-op, so a pin is
// only recorded when it changes what the user sees.
func (r *Repository) MoveToSection(id string, target models.Section) error {
	if !target.Valid() {
		return errInvalidSection.Fmt(target)
	}

	r.mu.Lock()

	rec, ok := r.arena[id]
	if !ok {
		r.mu.Unlock()
		return errUnknownTask.Fmt(id)
	}

	// subtasks always display under their parent
	if !rec.TopLevel() {
		r.mu.Unlock()
		return errSubtaskSection
	}

	if section.Classify(rec, r.now()) == target {
		r.mu.Unlock()
		return nil
	}

	rec.SectionOverride = target
	r.arena[id] = rec
	r.rebuild()
	r.mu.Unlock()

	err := r.db.UpdateTask(id, store.Patch{SectionOverride: &target})
	if err != nil {
		r.rollback()
		return err
	}

	r.refresh()

	return nil
}

// ResetOverride clears a task's section pin so the age-based rules
// apply again.
func (r *Repository) ResetOverride(id string) error {
	r.mu.Lock()

	rec, ok := r.arena[id]
	if !ok {
		r.mu.Unlock()
		return errUnknownTask.Fmt(id)
	}

	if rec.SectionOverride == "" {
		r.mu.Unlock()
		return nil
	}

	rec.SectionOverride = ""
	r.arena[id] = rec
	r.rebuild()
	r.mu.Unlock()

	var none models.Section

	err := r.db.UpdateTask(id, store.Patch{SectionOverride: &none})
	if err != nil {
		r.rollback()
		return err
	}

	r.refresh()

	return nil
}

// ResetAllOverrides clears every section pin in one batch.
func (r *Repository) ResetAllOverrides() error {
	r.mu.Lock()

	var ids []string

	for id, rec := range r.arena {
		if rec.SectionOverride != "" {
			ids = append(ids, id)
			rec.SectionOverride = ""
			r.arena[id] = rec
		}
	}

	if len(ids) == 0 {
		r.mu.Unlock()
		return nil
	}

	r.rebuild()
	r.mu.Unlock()

	var none models.Section

	err := r.db.UpdateTasks(ids, store.Patch{SectionOverride: &none})
	if err != nil {
		r.rollback()
		return err
	}

	r.refresh()

	return nil
}
