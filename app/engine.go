package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/urfave/cli/v2"

	"github.com/finlite/taskfocus/internal/bus"
	"github.com/finlite/taskfocus/internal/config"
	"github.com/finlite/taskfocus/internal/kv"
	"github.com/finlite/taskfocus/internal/models"
	"github.com/finlite/taskfocus/store"
	"github.com/finlite/taskfocus/task"
)

// engine bundles the stores and the repository every command needs.
type engine struct {
	cfg         *config.Config
	db          *store.Client
	kv          *kv.Store
	bus         *bus.Bus
	repo        *task.Repository
	unsubscribe func()
}

func newEngine(ctx *cli.Context) (*engine, error) {
	cfg := config.Get()

	db, err := store.NewClient(cfg.PathToDB)
	if err != nil {
		return nil, err
	}

	kvStore, err := kv.Open(cfg.PathToKV)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	b := bus.New()

	repo := task.NewRepository(db, b)
	if err := repo.Load(); err != nil {
		_ = db.Close()
		return nil, err
	}

	e := &engine{
		cfg:  cfg,
		db:   db,
		kv:   kvStore,
		bus:  b,
		repo: repo,
	}

	if ctx.Bool("debug") {
		events, unsubscribe := b.Subscribe()
		e.unsubscribe = unsubscribe

		go func() {
			for ev := range events {
				fmt.Fprint(os.Stderr, spew.Sdump(ev))
			}
		}()
	}

	return e, nil
}

func (e *engine) Close() {
	if e.unsubscribe != nil {
		e.unsubscribe()
	}

	_ = e.db.Close()
}

// resolveTaskOnce opens the task DB just long enough to resolve arg,
// releasing the lock before any long-lived surface starts.
func resolveTaskOnce(ctx *cli.Context, arg string) (models.Task, error) {
	e, err := newEngine(ctx)
	if err != nil {
		return models.Task{}, err
	}
	defer e.Close()

	return e.findTask(arg)
}

// findTask resolves a command-line argument to a task record. It
// accepts a full id, a unique id prefix, or the task's exact text
// (case-insensitive).
func (e *engine) findTask(arg string) (models.Task, error) {
	if rec, ok := e.repo.Find(arg); ok {
		return rec, nil
	}

	var matches []models.Task

	for _, rec := range e.repo.All() {
		if strings.HasPrefix(rec.ID, arg) ||
			strings.EqualFold(rec.Text, arg) {
			matches = append(matches, rec)
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return models.Task{}, errNoMatch.Fmt(arg)
	default:
		return models.Task{}, errAmbiguous.Fmt(arg, len(matches))
	}
}
