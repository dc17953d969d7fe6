package source

import (
	"context"
	"fmt"
	"strings"
)

// Mode selects whether loading blocks the caller.
type Mode int

const (
	// Blocking loads before returning, for tools that must be fully
	// initialised before doing any work.
	Blocking Mode = iota
	// NonBlocking loads in the background, for long-running services.
	NonBlocking
)

func (m Mode) String() string {
	if m == NonBlocking {
		return "non-blocking"
	}
	return "blocking"
}

// ParseMode accepts "blocking", "sync", "non-blocking" and "async".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "blocking", "sync":
		return Blocking, nil
	case "non-blocking", "nonblocking", "async":
		return NonBlocking, nil
	}
	return Blocking, fmt.Errorf("unknown load mode %q", s)
}

// Future holds the result of a load. The value is never observable before
// loading has finished.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Start runs load according to mode. In Blocking mode the returned future
// is already resolved.
func Start[T any](ctx context.Context, mode Mode, load func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	run := func() {
		defer close(f.done)
		f.value, f.err = load(ctx)
	}
	if mode == NonBlocking {
		go run()
	} else {
		run()
	}
	return f
}

// Resolved returns a future that is already complete.
func Resolved[T any](v T, err error) *Future[T] {
	f := &Future[T]{done: make(chan struct{}), value: v, err: err}
	close(f.done)
	return f
}

// Ready reports whether loading has finished.
func (f *Future[T]) Ready() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Wait blocks until loading finishes or ctx is done. A load may return
// both a usable value and an error describing a partial failure.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
