package sched

import (
	"fmt"
	"sync"
)

type registry struct {
	maxTasks int
	count    int
	started  bool
	lock     sync.Mutex
}

// add validates a spawn request and runs register while holding the lock.
// Registered tasks must not be touched before start.
func (r *registry) add(name string, stackSize int, register func(TaskID)) (TaskID, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	switch {
	case r.started:
		return -1, &SpawnError{Name: name, Err: ErrStarted}
	case stackSize <= 0:
		return -1, &SpawnError{Name: name, Err: ErrInvalidStackSize}
	case r.maxTasks > 0 && r.count >= r.maxTasks:
		return -1, &SpawnError{Name: name, Err: ErrTooManyTasks}
	}
	id := TaskID(r.count)
	r.count++
	register(id)
	return id, nil
}

func (r *registry) tasks() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.count
}

func (r *registry) start() error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.started {
		return ErrStarted
	}
	r.started = true
	return nil
}

// New creates a Scheduler by name.
func New(name string, maxTasks int) (Scheduler, error) {
	switch name {
	case NameGoroutines:
		return NewGoroutines(maxTasks), nil
	case NameCooperative:
		return NewCooperative(maxTasks), nil
	default:
		return nil, fmt.Errorf("unknown scheduler: %q", name)
	}
}
