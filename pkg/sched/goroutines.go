package sched

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/sampleslot/pkg/framework"
)

// Goroutines runs every task on its own goroutine. Tasks are preempted by the
// Go runtime, Await blocks on the channel and Sleep on a timer.
// Stack sizes are only validated as goroutine stacks grow on demand.
type Goroutines struct {
	reg      registry
	tasks    []*goTask
	switches atomic.Uint64
}

type goTask struct {
	id    TaskID
	name  string
	task  Task
	sched *Goroutines
	ctx   context.Context
}

// NewGoroutines creates a Goroutines scheduler. maxTasks <= 0 means unlimited.
func NewGoroutines(maxTasks int) *Goroutines {
	return &Goroutines{reg: registry{maxTasks: maxTasks}}
}

// Spawn implements Scheduler.
func (s *Goroutines) Spawn(name string, task Task, stackSize int) (TaskID, error) {
	return s.reg.add(name, stackSize, func(id TaskID) {
		s.tasks = append(s.tasks, &goTask{id: id, name: name, task: task, sched: s})
	})
}

// Run implements Runnable.
func (s *Goroutines) Run(ctx context.Context) error {
	if err := s.reg.start(); err != nil {
		return err
	}
	runner := fx.NewRunnerWith(ctx)
	for _, t := range s.tasks {
		runner.Go(t)
	}
	return runner.Wait()
}

// Stats implements Scheduler.
func (s *Goroutines) Stats() Stats {
	return Stats{Tasks: s.reg.tasks(), Switches: s.switches.Load()}
}

// Name implements Named.
func (t *goTask) Name() string {
	return t.name
}

// Run implements Runnable.
func (t *goTask) Run(ctx context.Context) error {
	t.ctx = ctx
	glog.V(4).Infof("task[%d:%s] running", t.id, t.name)
	return t.task.RunTask(t)
}

func (t *goTask) Context() context.Context {
	return t.ctx
}

func (t *goTask) Yield() error {
	t.sched.switches.Add(1)
	runtime.Gosched()
	return t.ctx.Err()
}

func (t *goTask) Await(ch <-chan struct{}) error {
	t.sched.switches.Add(1)
	select {
	case <-ch:
		return nil
	case <-t.ctx.Done():
		return t.ctx.Err()
	}
}

func (t *goTask) Sleep(d time.Duration) error {
	t.sched.switches.Add(1)
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-t.ctx.Done():
		return t.ctx.Err()
	}
}
