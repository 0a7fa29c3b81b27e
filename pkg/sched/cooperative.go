package sched

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/sampleslot/pkg/framework"
)

// DefaultPollInterval is the longest the cooperative scheduler idles before
// polling tasks waiting on channels again.
const DefaultPollInterval = 10 * time.Millisecond

// Cooperative runs exactly one task at a time. A task keeps the processor
// until it yields, awaits or sleeps; the next runnable task is then resumed
// in round-robin order. Await polls the channel and yields between polls,
// so channels are expected to be filled by the scheduled tasks themselves.
// Outside events are observed within PollInterval.
type Cooperative struct {
	PollInterval time.Duration

	reg      registry
	tasks    []*coTask
	parked   chan parkReason
	switches atomic.Uint64
}

type parkReason int

const (
	parkYield parkReason = iota
	parkSleep
	parkWait
	parkDone
)

type coTask struct {
	id     TaskID
	name   string
	task   Task
	sched  *Cooperative
	ctx    context.Context
	resume chan struct{}

	// owned by whoever holds the processor
	wakeAt time.Time
	done   bool
	err    error
}

// NewCooperative creates a Cooperative scheduler. maxTasks <= 0 means unlimited.
func NewCooperative(maxTasks int) *Cooperative {
	return &Cooperative{
		PollInterval: DefaultPollInterval,
		reg:          registry{maxTasks: maxTasks},
	}
}

// Spawn implements Scheduler.
func (s *Cooperative) Spawn(name string, task Task, stackSize int) (TaskID, error) {
	return s.reg.add(name, stackSize, func(id TaskID) {
		s.tasks = append(s.tasks, &coTask{
			id:     id,
			name:   name,
			task:   task,
			sched:  s,
			resume: make(chan struct{}),
		})
	})
}

// Run implements Runnable. It returns when all tasks have returned, which
// happens after ctx is done for tasks honoring the errors from TaskContext.
func (s *Cooperative) Run(ctx context.Context) error {
	if err := s.reg.start(); err != nil {
		return err
	}
	s.parked = make(chan parkReason)
	for _, t := range s.tasks {
		t.ctx = ctx
		go t.main()
	}

	var errs fx.AggregatedError
	live := len(s.tasks)
	for live > 0 {
		var progressed bool
		var nextWake time.Time
		for _, t := range s.tasks {
			if t.done {
				continue
			}
			if !t.wakeAt.IsZero() && ctx.Err() == nil {
				if time.Now().Before(t.wakeAt) {
					if nextWake.IsZero() || t.wakeAt.Before(nextWake) {
						nextWake = t.wakeAt
					}
					continue
				}
			}
			t.wakeAt = time.Time{}
			switch s.switchTo(t) {
			case parkWait:
			case parkDone:
				live--
				progressed = true
				if t.err != nil && !errors.Is(t.err, context.Canceled) {
					errs.Add(fmt.Errorf("%s: %w", t.name, t.err))
				}
			default:
				progressed = true
			}
		}
		if !progressed && live > 0 {
			s.idle(ctx, nextWake)
		}
	}
	return errs.Aggregate()
}

// Stats implements Scheduler.
func (s *Cooperative) Stats() Stats {
	return Stats{Tasks: s.reg.tasks(), Switches: s.switches.Load()}
}

func (s *Cooperative) switchTo(t *coTask) parkReason {
	s.switches.Add(1)
	t.resume <- struct{}{}
	return <-s.parked
}

func (s *Cooperative) idle(ctx context.Context, nextWake time.Time) {
	wait := s.PollInterval
	if wait <= 0 {
		wait = DefaultPollInterval
	}
	if !nextWake.IsZero() {
		if d := time.Until(nextWake); d < wait {
			wait = d
		}
	}
	if wait <= 0 {
		return
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

func (t *coTask) main() {
	<-t.resume
	glog.V(4).Infof("task[%d:%s] running", t.id, t.name)
	t.err = t.task.RunTask(t)
	glog.V(4).Infof("task[%d:%s] stopped: %v", t.id, t.name, t.err)
	t.done = true
	t.sched.parked <- parkDone
}

func (t *coTask) park(reason parkReason) error {
	t.sched.parked <- reason
	<-t.resume
	return t.ctx.Err()
}

func (t *coTask) Context() context.Context {
	return t.ctx
}

func (t *coTask) Name() string {
	return t.name
}

func (t *coTask) Yield() error {
	if err := t.ctx.Err(); err != nil {
		return err
	}
	return t.park(parkYield)
}

func (t *coTask) Await(ch <-chan struct{}) error {
	for {
		if err := t.ctx.Err(); err != nil {
			return err
		}
		select {
		case <-ch:
			return nil
		default:
		}
		if err := t.park(parkWait); err != nil {
			return err
		}
	}
}

func (t *coTask) Sleep(d time.Duration) error {
	if err := t.ctx.Err(); err != nil {
		return err
	}
	t.wakeAt = time.Now().Add(d)
	return t.park(parkSleep)
}
