// Package runloop serializes work onto a single control goroutine.
//
// The native backend delivers playback events on threads it owns. Handlers
// for those events must run where all playback state lives, so notifier
// goroutines submit closures here and block until the control goroutine has
// executed them, bounded by a timeout. The timeout releases only the caller:
// a closure that was already queued may still execute later. This is the
// accepted tradeoff that keeps the control goroutine from deadlocking on
// locks held across a notification.
package runloop

import (
	"errors"
	"sync"
	"time"
)

var (
	// ErrTimeout is returned when the control goroutine did not execute the
	// closure within the caller's timeout. The closure is not cancelled and
	// may still run later; callers must treat the call as fire-and-forget
	// with the result discarded.
	ErrTimeout = errors.New("runloop: call timed out")

	// ErrAborted is returned for any pending or future call once the loop
	// has been aborted.
	ErrAborted = errors.New("runloop: loop aborted")
)

// Priority selects which queue a closure is submitted to. High-priority
// closures preempt any queued normal-priority work.
type Priority int

const (
	PriorityNormal Priority = iota
	PriorityHigh
)

const queueSize = 64

// Loop is a run loop owned by a single goroutine. Closures submitted at the
// same priority from the same goroutine execute in submission order; no
// ordering holds across different submitters.
type Loop struct {
	normal chan func()
	high   chan func()

	quit     chan struct{}
	quitOnce sync.Once
}

// New creates a loop. The owner must call Run (or Start) before any caller
// can make progress.
func New() *Loop {
	return &Loop{
		normal: make(chan func(), queueSize),
		high:   make(chan func(), queueSize),
		quit:   make(chan struct{}),
	}
}

// Run processes submitted closures on the calling goroutine until the loop
// is aborted. The calling goroutine is the control goroutine.
func (l *Loop) Run() {
	for {
		// Drain high-priority work before touching the normal queue.
		select {
		case fn := <-l.high:
			fn()
			continue
		case <-l.quit:
			return
		default:
		}

		select {
		case fn := <-l.high:
			fn()
		case fn := <-l.normal:
			fn()
		case <-l.quit:
			return
		}
	}
}

// Start runs the loop on a new goroutine and returns immediately.
func (l *Loop) Start() {
	go l.Run()
}

// Abort shuts the loop down. Every blocked caller is released with
// ErrAborted, as is any future call. Closures still queued are discarded
// without running. Abort is idempotent and safe from any goroutine.
func (l *Loop) Abort() {
	l.quitOnce.Do(func() { close(l.quit) })
}

// Aborted reports whether Abort has been called.
func (l *Loop) Aborted() bool {
	select {
	case <-l.quit:
		return true
	default:
		return false
	}
}

// Call submits a closure with no result. See Invoke for semantics.
func (l *Loop) Call(pri Priority, timeout time.Duration, fn func()) error {
	_, err := Invoke(l, pri, timeout, func() struct{} {
		fn()
		return struct{}{}
	})
	return err
}

// Invoke schedules fn on the control goroutine at the given priority and
// blocks the calling goroutine until fn has run, the timeout elapses, or the
// loop is aborted. A timeout of zero or less means wait indefinitely (until
// abort).
//
// On ErrTimeout the closure may still execute later; its result is
// discarded. A timeout or abort on one call leaves the loop fully usable
// for subsequent calls.
func Invoke[T any](l *Loop, pri Priority, timeout time.Duration, fn func() T) (T, error) {
	var zero T

	var expired <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		expired = t.C
	}

	var result T
	done := make(chan struct{})
	wrapped := func() {
		result = fn()
		close(done)
	}

	queue := l.normal
	if pri == PriorityHigh {
		queue = l.high
	}

	select {
	case queue <- wrapped:
	case <-expired:
		return zero, ErrTimeout
	case <-l.quit:
		return zero, ErrAborted
	}

	select {
	case <-done:
		return result, nil
	case <-expired:
		return zero, ErrTimeout
	case <-l.quit:
		return zero, ErrAborted
	}
}
