package sched

import (
	"errors"
	"fmt"
)

var (
	// ErrTooManyTasks indicates no more tasks can be spawned.
	ErrTooManyTasks = errors.New("too many tasks")
	// ErrInvalidStackSize indicates the stack size hint is not positive.
	ErrInvalidStackSize = errors.New("invalid stack size")
	// ErrStarted indicates the scheduler is already running.
	ErrStarted = errors.New("scheduler already started")
)

// SpawnError reports a task which can't be spawned.
type SpawnError struct {
	Name string
	Err  error
}

// Error implements error.
func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn task %q: %v", e.Name, e.Err)
}

// Unwrap returns the cause.
func (e *SpawnError) Unwrap() error {
	return e.Err
}
