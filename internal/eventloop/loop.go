// Package eventloop runs deferred per-key callbacks on a single goroutine.
// At most one event is pending per key; handlers run one at a time in due
// order, so a handler never races another handler.
package eventloop

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"
)

var ErrAlreadyScheduled = errors.New("event already scheduled for key")

// Clock abstracts time so tests can drive the loop manually.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

// Handler is called with the key of a due event.
type Handler func(ctx context.Context, key string)

type event struct {
	key string
	due time.Time
	seq uint64
}

// Loop holds pending events and fires them when due.
type Loop struct {
	mu      sync.Mutex
	clock   Clock
	handler Handler
	pending map[string]event
	seq     uint64
	wake    chan struct{}
	log     *slog.Logger
}

func New(clock Clock, handler Handler, log *slog.Logger) *Loop {
	if clock == nil {
		clock = SystemClock
	}
	if log == nil {
		log = slog.Default()
	}
	return &Loop{
		clock:   clock,
		handler: handler,
		pending: make(map[string]event),
		wake:    make(chan struct{}, 1),
		log:     log,
	}
}

// Schedule registers an event for key that becomes due after delay.
func (l *Loop) Schedule(key string, delay time.Duration) error {
	l.mu.Lock()
	if _, ok := l.pending[key]; ok {
		l.mu.Unlock()
		return ErrAlreadyScheduled
	}
	l.seq++
	l.pending[key] = event{key: key, due: l.clock.Now().Add(delay), seq: l.seq}
	l.mu.Unlock()
	l.notify()
	return nil
}

// Cancel drops the pending event for key. It reports whether one existed.
func (l *Loop) Cancel(key string) bool {
	l.mu.Lock()
	_, ok := l.pending[key]
	delete(l.pending, key)
	l.mu.Unlock()
	if ok {
		l.notify()
	}
	return ok
}

// Pending reports whether key has an event waiting.
func (l *Loop) Pending(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.pending[key]
	return ok
}

// Len returns the number of pending events.
func (l *Loop) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}

// RunDue fires every event that is due now and returns how many ran.
func (l *Loop) RunDue(ctx context.Context) int {
	due := l.takeDue()
	for _, ev := range due {
		l.fire(ctx, ev)
	}
	return len(due)
}

// Run fires events as they come due until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		l.RunDue(ctx)

		wait, ok := l.nextWait()
		if !ok {
			wait = time.Hour
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(wait)

		select {
		case <-ctx.Done():
			return
		case <-l.wake:
		case <-timer.C:
		}
	}
}

func (l *Loop) notify() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Loop) takeDue() []event {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.clock.Now()
	var due []event
	for k, ev := range l.pending {
		if !ev.due.After(now) {
			due = append(due, ev)
			delete(l.pending, k)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].due.Equal(due[j].due) {
			return due[i].seq < due[j].seq
		}
		return due[i].due.Before(due[j].due)
	})
	return due
}

func (l *Loop) nextWait() (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.pending) == 0 {
		return 0, false
	}
	var next time.Time
	first := true
	for _, ev := range l.pending {
		if first || ev.due.Before(next) {
			next = ev.due
			first = false
		}
	}
	wait := next.Sub(l.clock.Now())
	if wait < 0 {
		wait = 0
	}
	return wait, true
}

func (l *Loop) fire(ctx context.Context, ev event) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("event handler panicked", "key", ev.key, "panic", r)
		}
	}()
	l.handler(ctx, ev.key)
}
