// Package task maintains the in-memory task forest and enforces the
// parent/subtask completion invariants on every mutation.
package task

import (
	"cmp"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/finlite/taskfocus/internal/bus"
	"github.com/finlite/taskfocus/internal/models"
	"github.com/finlite/taskfocus/store"
)

// Kind tags a task once when the flat record list is organised into a
// forest, so call sites never re-inspect parent references ad hoc.
type Kind int

const (
	// KindStandalone is a top-level task with no subtasks.
	KindStandalone Kind = iota
	// KindParent is a top-level task with at least one subtask.
	KindParent
	// KindSubtask is a task presented under its parent.
	KindSubtask
)

// Node is a task together with its derived hierarchy view. Subtasks is
// populated only for parents and is ordered by position, then creation
// time.
type Node struct {
	models.Task
	Subtasks          []models.Task
	Kind              Kind
	CompletedSubtasks int
}

// TotalSubtasks returns the number of subtasks under a parent node.
func (n Node) TotalSubtasks() int {
	return len(n.Subtasks)
}

// Repository is the hierarchy-aware view of the task records held by the
// persistence gateway. Local state is updated optimistically and
// reconciled with the gateway per call.
type Repository struct {
	db         store.Gateway
	bus        *bus.Bus
	now        func() time.Time
	arena      map[string]models.Task
	inflight   map[string]struct{}
	topLevel   []Node
	mu         sync.Mutex
	inflightMu sync.Mutex
}

// NewRepository creates an empty repository. Call Load before reading.
func NewRepository(db store.Gateway, b *bus.Bus) *Repository {
	return &Repository{
		db:       db,
		bus:      b,
		now:      time.Now,
		arena:    make(map[string]models.Task),
		inflight: make(map[string]struct{}),
	}
}

// Load rebuilds the arena and the derived forest from the gateway.
func (r *Repository) Load() error {
	records, err := r.db.AllTasks()
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.replace(records)

	return nil
}

// replace swaps in a new record set. Callers must hold r.mu.
func (r *Repository) replace(records []models.Task) {
	r.arena = make(map[string]models.Task, len(records))
	for _, rec := range records {
		r.arena[rec.ID] = rec
	}

	r.topLevel = organize(records)
}

// reload discards local state in favour of the gateway's. Used to roll
// back failed optimistic updates. Callers must hold r.mu.
func (r *Repository) reload() {
	records, err := r.db.AllTasks()
	if err != nil {
		slog.Error("rollback refetch failed", slog.Any("error", err))
		return
	}

	r.replace(records)
}

// rebuild re-derives the forest from the arena after an optimistic
// local mutation, without consulting the gateway. Callers must hold
// r.mu.
func (r *Repository) rebuild() {
	records := make([]models.Task, 0, len(r.arena))
	for _, rec := range r.arena {
		records = append(records, rec)
	}

	slices.SortStableFunc(records, func(a, b models.Task) int {
		if n := cmp.Compare(a.Position, b.Position); n != 0 {
			return n
		}

		return cmp.Compare(b.CreatedAt.UnixNano(), a.CreatedAt.UnixNano())
	})

	r.topLevel = organize(records)
}

// rollback restores the last known-good server state after a failed
// optimistic update.
func (r *Repository) rollback() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.reload()
}

// refresh re-derives local state from the gateway after a settled write
// and notifies surfaces.
func (r *Repository) refresh() {
	r.mu.Lock()
	r.reload()
	r.mu.Unlock()

	r.publish()
}

// organize turns a flat record list into a forest of tagged nodes.
// Hierarchy depth is exactly two: a record whose parent is itself a
// subtask (or missing) violates the invariant and is lifted to top level
// rather than dropped.
func organize(records []models.Task) []Node {
	byID := make(map[string]models.Task, len(records))
	for _, rec := range records {
		byID[rec.ID] = rec
	}

	subsByParent := make(map[string][]models.Task)

	var tops []models.Task

	for _, rec := range records {
		if rec.TopLevel() {
			tops = append(tops, rec)
			continue
		}

		parent, ok := byID[rec.ParentID]
		if !ok || !parent.TopLevel() {
			slog.Warn(
				"task violates the two-level hierarchy, treating as top-level",
				slog.String("id", rec.ID),
				slog.String("parent_id", rec.ParentID),
			)

			rec.ParentID = ""
			tops = append(tops, rec)

			continue
		}

		subsByParent[rec.ParentID] = append(subsByParent[rec.ParentID], rec)
	}

	nodes := make([]Node, 0, len(tops))

	for _, top := range tops {
		subs := subsByParent[top.ID]

		slices.SortStableFunc(subs, func(a, b models.Task) int {
			if n := cmp.Compare(a.Position, b.Position); n != 0 {
				return n
			}

			return cmp.Compare(a.CreatedAt.UnixNano(), b.CreatedAt.UnixNano())
		})

		node := Node{
			Task:     top,
			Kind:     KindStandalone,
			Subtasks: subs,
		}

		if len(subs) > 0 {
			node.Kind = KindParent

			for _, sub := range subs {
				if sub.Completed {
					node.CompletedSubtasks++
				}
			}
		}

		nodes = append(nodes, node)
	}

	return nodes
}

// TopLevel returns the derived forest in gateway order.
func (r *Repository) TopLevel() []Node {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Clone(r.topLevel)
}

// Node returns the derived node for a top-level task id.
func (r *Repository) Node(id string) (Node, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.nodeLocked(id)
}

func (r *Repository) nodeLocked(id string) (Node, bool) {
	for _, n := range r.topLevel {
		if n.ID == id {
			return n, true
		}
	}

	return Node{}, false
}

// All returns every record, top-level and subtasks alike, in no
// particular order.
func (r *Repository) All() []models.Task {
	r.mu.Lock()
	defer r.mu.Unlock()

	records := make([]models.Task, 0, len(r.arena))
	for _, rec := range r.arena {
		records = append(records, rec)
	}

	return records
}

// Find looks a record up by id, whether top-level or subtask.
func (r *Repository) Find(id string) (models.Task, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.arena[id]

	return rec, ok
}

// publish signals surfaces that task records changed.
func (r *Repository) publish() {
	if r.bus != nil {
		r.bus.Publish(bus.Event{Topic: bus.TopicTasks})
	}
}
