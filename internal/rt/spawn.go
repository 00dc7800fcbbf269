package rt

import (
	"context"
	"runtime"
)

// JoinHandle is the result slot of a task started by Spawn.
type JoinHandle[T any] struct {
	cancel context.CancelFunc
	done   chan struct{}
	val    T
	err    error
}

// Spawn runs fn on its own goroutine with a context derived from ctx. The
// task's context is canceled when fn returns or Abort is called.
func Spawn[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) *JoinHandle[T] {
	ctx, cancel := context.WithCancel(ctx)
	h := &JoinHandle[T]{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(h.done)
		defer cancel()
		h.val, h.err = fn(ctx)
	}()

	return h
}

// SpawnBlocking is Spawn for work that blocks in system calls or burns CPU
// for a while. Goroutines already cover both, so it exists to keep call
// sites self-describing.
func SpawnBlocking[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) *JoinHandle[T] {
	return Spawn(ctx, fn)
}

// Join waits for the task to finish and returns its result. If ctx is done
// first, Join returns ctx.Err() and the task keeps running.
func (h *JoinHandle[T]) Join(ctx context.Context) (T, error) {
	select {
	case <-h.done:
		return h.val, h.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Done is closed once the task has returned.
func (h *JoinHandle[T]) Done() <-chan struct{} {
	return h.done
}

// Abort cancels the task's context. It does not wait for the task.
func (h *JoinHandle[T]) Abort() {
	h.cancel()
}

// BlockInPlace runs fn to completion on the calling goroutine. It is meant
// for short, bounded work that must not be split across suspension points.
func BlockInPlace[R any](fn func() R) R {
	return fn()
}

// YieldNow lets other goroutines run before the caller continues.
func YieldNow() {
	runtime.Gosched()
}
