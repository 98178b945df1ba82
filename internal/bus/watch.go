package bus

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/finlite/taskfocus/internal/kv"
)

const throttleDelay = 100 * time.Millisecond

// Watch attaches a filesystem watcher to the local state directory so
// that control actions issued by a sibling process surface on this bus
// too. It runs until ctx is cancelled.
func (b *Bus) Watch(ctx context.Context, stateDir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	if err := watcher.Add(stateDir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch %s: %w", stateDir, err)
	}

	go func() {
		defer func() {
			if cerr := watcher.Close(); cerr != nil {
				slog.Error("closing state watcher", slog.Any("error", cerr))
			}
		}()

		throttle := newEventThrottle(throttleDelay)
		defer throttle.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case werr, ok := <-watcher.Errors:
				if !ok {
					return
				}

				slog.Error("state watcher", slog.Any("error", werr))
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}

				throttle.Enqueue(
					Event{Topic: topicForFile(evt.Name)},
					b.Publish,
				)
			}
		}
	}()

	return nil
}

// topicForFile maps a changed state file to the bus topic observers
// should refresh.
func topicForFile(path string) Topic {
	switch filepath.Base(path) {
	case kv.KeyTimerState, kv.KeyPomodoroCounts, kv.KeyTaskDurations:
		return TopicTimer
	}

	return TopicTasks
}

// eventThrottle coalesces rapid change notifications so surfaces redraw
// once per burst of filesystem activity instead of on every single write.
type eventThrottle struct {
	timer   *time.Timer
	pending map[Topic]struct{}
	mu      sync.Mutex
	delay   time.Duration
}

func newEventThrottle(delay time.Duration) *eventThrottle {
	return &eventThrottle{
		delay:   delay,
		pending: make(map[Topic]struct{}),
	}
}

func (t *eventThrottle) Enqueue(ev Event, send func(Event)) {
	t.mu.Lock()
	t.pending[ev.Topic] = struct{}{}

	if t.timer == nil {
		t.timer = time.AfterFunc(t.delay, func() {
			t.flush(send)
		})
	}
	t.mu.Unlock()
}

func (t *eventThrottle) flush(send func(Event)) {
	t.mu.Lock()
	pending := t.pending
	t.pending = make(map[Topic]struct{})
	t.timer = nil
	t.mu.Unlock()

	for topic := range pending {
		send(Event{Topic: topic})
	}
}

func (t *eventThrottle) Stop() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()
}
