// Package store connects to the data store and manages task records
package store

import (
	"cmp"
	"encoding/json"
	"errors"
	"io/fs"
	"slices"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/finlite/taskfocus/internal/models"
)

const tasksBucket = "tasks"

// Patch describes a partial update applied to one or more task records.
// Nil fields are left unchanged; a pointer to the zero value clears the
// field.
type Patch struct {
	Text            *string
	Completed       *bool
	Position        *int
	SectionOverride *models.Section
}

func (p Patch) apply(t *models.Task) {
	if p.Text != nil {
		t.Text = *p.Text
	}

	if p.Completed != nil {
		t.Completed = *p.Completed
	}

	if p.Position != nil {
		t.Position = *p.Position
	}

	if p.SectionOverride != nil {
		t.SectionOverride = *p.SectionOverride
	}
}

// Gateway is the persistence contract consumed by the engine. All
// methods are request/response; callers treat failures per the
// optimistic-update rollback policy.
type Gateway interface {
	// AllTasks returns every record ordered by position ascending,
	// then creation time descending.
	AllTasks() ([]models.Task, error)
	InsertTask(t models.Task) error
	UpdateTask(id string, p Patch) error
	// UpdateTasks applies the same patch to each listed id in a single
	// batch.
	UpdateTasks(ids []string, p Patch) error
	// UpdatePositions rewrites the position of each listed id in a
	// single batch.
	UpdatePositions(positions map[string]int) error
	UpsertTask(t models.Task) error
	// DeleteTask removes the record and, as a referential action, every
	// record whose parent it is.
	DeleteTask(id string) error
	Close() error
}

// Client is a BoltDB database client implementing Gateway.
type Client struct {
	*bolt.DB
}

func (c *Client) AllTasks() ([]models.Task, error) {
	var tasks []models.Task

	err := c.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(tasksBucket)).ForEach(func(_, v []byte) error {
			var t models.Task

			if err := json.Unmarshal(v, &t); err != nil {
				return err
			}

			tasks = append(tasks, t)

			return nil
		})
	})
	if err != nil {
		return nil, errFetchTasks.Wrap(err)
	}

	slices.SortStableFunc(tasks, func(a, b models.Task) int {
		if n := cmp.Compare(a.Position, b.Position); n != 0 {
			return n
		}

		return cmp.Compare(b.CreatedAt.UnixNano(), a.CreatedAt.UnixNano())
	})

	return tasks, nil
}

func (c *Client) InsertTask(t models.Task) error {
	err := c.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(tasksBucket))

		if b.Get([]byte(t.ID)) != nil {
			return errTaskExists.Fmt(t.ID)
		}

		return putTask(b, t)
	})
	if err != nil {
		return errWriteTask.Wrap(err)
	}

	return nil
}

func (c *Client) UpdateTask(id string, p Patch) error {
	return c.UpdateTasks([]string{id}, p)
}

func (c *Client) UpdateTasks(ids []string, p Patch) error {
	err := c.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(tasksBucket))

		for _, id := range ids {
			v := b.Get([]byte(id))
			if v == nil {
				return errTaskNotFound.Fmt(id)
			}

			var t models.Task

			if err := json.Unmarshal(v, &t); err != nil {
				return err
			}

			p.apply(&t)

			if err := putTask(b, t); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return errWriteTask.Wrap(err)
	}

	return nil
}

func (c *Client) UpdatePositions(positions map[string]int) error {
	err := c.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(tasksBucket))

		for id, pos := range positions {
			v := b.Get([]byte(id))
			if v == nil {
				return errTaskNotFound.Fmt(id)
			}

			var t models.Task

			if err := json.Unmarshal(v, &t); err != nil {
				return err
			}

			t.Position = pos

			if err := putTask(b, t); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return errWriteTask.Wrap(err)
	}

	return nil
}

func (c *Client) UpsertTask(t models.Task) error {
	err := c.Update(func(tx *bolt.Tx) error {
		return putTask(tx.Bucket([]byte(tasksBucket)), t)
	})
	if err != nil {
		return errWriteTask.Wrap(err)
	}

	return nil
}

// DeleteTask removes the record along with all of its children in one
// transaction so the engine never has to walk descendants itself.
func (c *Client) DeleteTask(id string) error {
	err := c.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(tasksBucket))

		var doomed [][]byte

		cur := b.Cursor()
		for k, v := cur.First(); k != nil; k, v = cur.Next() {
			var t models.Task

			if err := json.Unmarshal(v, &t); err != nil {
				return err
			}

			if t.ID == id || t.ParentID == id {
				doomed = append(doomed, slices.Clone(k))
			}
		}

		for _, k := range doomed {
			if err := b.Delete(k); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return errWriteTask.Wrap(err)
	}

	return nil
}

func putTask(b *bolt.Bucket, t models.Task) error {
	value, err := json.Marshal(t)
	if err != nil {
		return err
	}

	return b.Put([]byte(t.ID), value)
}

// openDB creates or opens a database and locks it.
func openDB(pathToDB string) (*bolt.DB, error) {
	var fileMode fs.FileMode = 0o600

	db, err := bolt.Open(
		pathToDB,
		fileMode,
		&bolt.Options{Timeout: 1 * time.Second},
	)
	if err != nil {
		if errors.Is(err, bolt.ErrTimeout) {
			return nil, errAlreadyRunning
		}

		return nil, err
	}

	return db, nil
}

// NewClient returns a wrapper to a BoltDB connection.
func NewClient(dbPath string) (*Client, error) {
	db, err := openDB(dbPath)
	if err != nil {
		return nil, err
	}
	// Create the necessary buckets for storing data if they do not exist already
	err = db.Update(func(tx *bolt.Tx) error {
		_, err = tx.CreateBucketIfNotExists([]byte(tasksBucket))
		return err
	})
	if err != nil {
		return nil, err
	}

	return &Client{
		db,
	}, nil
}
