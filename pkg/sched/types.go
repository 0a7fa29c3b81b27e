// Package sched runs tasks either on goroutines or cooperatively, one at a time.
package sched

import (
	"context"
	"time"

	fx "github.com/robotalks/sampleslot/pkg/framework"
)

// TaskID identifies a spawned task.
type TaskID int

// TaskContext is handed to a running task. It must only be used by that task.
type TaskContext interface {
	// Context retrieves the context the scheduler runs with.
	Context() context.Context
	// Name is the name given on Spawn.
	Name() string
	// Yield gives up the processor to other tasks.
	Yield() error
	// Await suspends the task until a value is received from ch.
	Await(ch <-chan struct{}) error
	// Sleep suspends the task for at least d.
	Sleep(d time.Duration) error
}

// Task is the body of a scheduled task.
type Task interface {
	RunTask(TaskContext) error
}

// TaskFunc is the func form of Task.
type TaskFunc func(TaskContext) error

// RunTask implements Task.
func (f TaskFunc) RunTask(tc TaskContext) error {
	return f(tc)
}

// Scheduler spawns tasks and runs them until the context is done.
type Scheduler interface {
	fx.Runnable
	// Spawn registers a task. stackSize is a hint which must be positive.
	Spawn(name string, task Task, stackSize int) (TaskID, error)
	// Stats retrieves scheduling counters.
	Stats() Stats
}

// Stats is a snapshot of scheduling counters.
type Stats struct {
	Tasks int
	// Switches counts suspension points passed by tasks.
	Switches uint64
}

// Scheduler names.
const (
	NameGoroutines  = "goroutine"
	NameCooperative = "cooperative"
)
