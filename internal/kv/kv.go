// Package kv is a durable local key-value store for per-user presentation
// and timer state. A missing key is a valid state and yields defaults.
package kv

import (
	"encoding/json"
	"errors"
	"os"
	"sort"

	"github.com/peterbourgon/diskv/v3"

	"github.com/finlite/taskfocus/internal/models"
)

// Fixed key names. Values are JSON-serialised.
const (
	KeyTimerState     = "timer_state"
	KeyPomodoroCounts = "pomodoro_counts"
	KeyTaskDurations  = "task_durations"
	KeyTaskFilter     = "task_filter"
	KeyViewMode       = "view_mode"
	KeyExpandedTasks  = "expanded_tasks"
)

// Store is a diskv-backed local store.
type Store struct {
	d        *diskv.Diskv
	basePath string
}

// Open creates a Store rooted at basePath, creating the directory if
// necessary.
func Open(basePath string) (*Store, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, err
	}

	return &Store{
		d: diskv.New(diskv.Options{
			BasePath:     basePath,
			CacheSizeMax: 1024 * 1024, // 1MB
		}),
		basePath: basePath,
	}, nil
}

// BasePath returns the directory backing the store. The sync bus watches
// it for changes made by sibling processes.
func (s *Store) BasePath() string {
	return s.basePath
}

// read unmarshals the value for key into out. The second return value is
// false when the key is absent.
func (s *Store) read(key string, out any) (bool, error) {
	val, err := s.d.Read(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}

		return false, err
	}

	return true, json.Unmarshal(val, out)
}

func (s *Store) write(key string, in any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}

	return s.d.Write(key, data)
}

// TimerState returns the persisted timer snapshot. ok is false when no
// session has been persisted.
func (s *Store) TimerState() (state models.TimerState, ok bool, err error) {
	ok, err = s.read(KeyTimerState, &state)
	return state, ok, err
}

func (s *Store) SaveTimerState(state models.TimerState) error {
	return s.write(KeyTimerState, state)
}

// ClearTimerState removes the snapshot entirely; observers treat the
// missing key as idle.
func (s *Store) ClearTimerState() error {
	err := s.d.Erase(KeyTimerState)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	return nil
}

// PomodoroCounts returns completed-session counts keyed by task id.
func (s *Store) PomodoroCounts() (map[string]int, error) {
	counts := make(map[string]int)

	_, err := s.read(KeyPomodoroCounts, &counts)

	return counts, err
}

// IncrementPomodoro adds one completed session to the given task and
// returns the new count.
func (s *Store) IncrementPomodoro(taskID string) (int, error) {
	counts, err := s.PomodoroCounts()
	if err != nil {
		return 0, err
	}

	counts[taskID]++

	return counts[taskID], s.write(KeyPomodoroCounts, counts)
}

// Durations returns per-task focus duration overrides in minutes.
func (s *Store) Durations() (map[string]int, error) {
	durations := make(map[string]int)

	_, err := s.read(KeyTaskDurations, &durations)

	return durations, err
}

func (s *Store) SetTaskDuration(taskID string, minutes int) error {
	durations, err := s.Durations()
	if err != nil {
		return err
	}

	durations[taskID] = minutes

	return s.write(KeyTaskDurations, durations)
}

func (s *Store) RemoveTaskDuration(taskID string) error {
	durations, err := s.Durations()
	if err != nil {
		return err
	}

	delete(durations, taskID)

	return s.write(KeyTaskDurations, durations)
}

// Filter returns the last-chosen task filter, defaulting to all.
func (s *Store) Filter() models.Filter {
	var f models.Filter

	ok, err := s.read(KeyTaskFilter, &f)
	if err != nil || !ok {
		return models.FilterAll
	}

	switch f {
	case models.FilterParentOnly, models.FilterStandalone:
		return f
	}

	return models.FilterAll
}

func (s *Store) SetFilter(f models.Filter) error {
	return s.write(KeyTaskFilter, f)
}

// ViewMode returns the last-chosen view mode, defaulting to time-based.
func (s *Store) ViewMode() models.ViewMode {
	var m models.ViewMode

	ok, err := s.read(KeyViewMode, &m)
	if err != nil || !ok || m != models.ViewParentBased {
		return models.ViewTimeBased
	}

	return m
}

func (s *Store) SetViewMode(m models.ViewMode) error {
	return s.write(KeyViewMode, m)
}

// ExpandedTasks returns the set of parent ids whose subtasks are shown.
func (s *Store) ExpandedTasks() (map[string]struct{}, error) {
	var ids []string

	_, err := s.read(KeyExpandedTasks, &ids)
	if err != nil {
		return nil, err
	}

	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	return set, nil
}

// SetExpanded records or removes a parent id from the expanded set.
func (s *Store) SetExpanded(taskID string, expanded bool) error {
	set, err := s.ExpandedTasks()
	if err != nil {
		return err
	}

	if expanded {
		set[taskID] = struct{}{}
	} else {
		delete(set, taskID)
	}

	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return s.write(KeyExpandedTasks, ids)
}
