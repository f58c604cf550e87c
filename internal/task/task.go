// Package task runs one asynchronous call and resolves it exactly once.
package task

import (
	"context"
	"fmt"
	"sync"

	"interviewprep/internal/errors"
)

// Result is the tagged outcome of a task: Value when Err is nil.
type Result[T any] struct {
	Value T
	Err   error
}

// OK reports whether the task succeeded
func (r Result[T]) OK() bool {
	return r.Err == nil
}

// Task is a future for a single call
type Task[T any] struct {
	done   chan struct{}
	once   sync.Once
	result Result[T]
}

// Go starts fn on its own goroutine. A panic in fn resolves the task with
// an internal error instead of crashing the caller.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Task[T] {
	t := &Task[T]{done: make(chan struct{})}
	go func() {
		t.resolve(Recover(func() (T, error) { return fn(ctx) }))
	}()
	return t
}

// Recover calls fn and turns a panic into a TASK_PANIC internal error, so
// callers can apply their failure path before resolving.
func Recover[T any](fn func() (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			v, err = zero, errors.NewInternalError(errors.ErrCodeTaskPanic, "task panicked", fmt.Errorf("%v", r))
		}
	}()
	return fn()
}

// Resolved returns a task that has already finished with v and err
func Resolved[T any](v T, err error) *Task[T] {
	t := &Task[T]{done: make(chan struct{})}
	t.resolve(v, err)
	return t
}

func (t *Task[T]) resolve(v T, err error) {
	t.once.Do(func() {
		t.result = Result[T]{Value: v, Err: err}
		close(t.done)
	})
}

// Done is closed once the result is available
func (t *Task[T]) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task resolves or ctx ends. Abandoning the wait does
// not cancel the task.
func (t *Task[T]) Wait(ctx context.Context) (Result[T], error) {
	select {
	case <-t.done:
		return t.result, nil
	case <-ctx.Done():
		return Result[T]{}, ctx.Err()
	}
}

// Result blocks until the task resolves
func (t *Task[T]) Result() Result[T] {
	<-t.done
	return t.result
}
