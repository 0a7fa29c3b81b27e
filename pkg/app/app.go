// Package app composes the slot, scheduler, tasks and reporters.
package app

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/golang/glog"
	"github.com/google/uuid"

	"github.com/robotalks/sampleslot/pkg/config"
	fx "github.com/robotalks/sampleslot/pkg/framework"
	"github.com/robotalks/sampleslot/pkg/msgs"
	"github.com/robotalks/sampleslot/pkg/report"
	"github.com/robotalks/sampleslot/pkg/report/mqtt"
	"github.com/robotalks/sampleslot/pkg/report/websocket"
	"github.com/robotalks/sampleslot/pkg/sample"
	"github.com/robotalks/sampleslot/pkg/sched"
	"github.com/robotalks/sampleslot/pkg/slot"
	"github.com/robotalks/sampleslot/pkg/task"
)

// Task names.
const (
	ProducerName = "producer"
	ConsumerName = "consumer"
)

// App owns the shared handoff and hands it to both tasks.
type App struct {
	Config    *config.Config
	Session   string
	Sink      report.Sink
	Handoff   slot.Handoff
	Scheduler sched.Scheduler
	Reporter  *report.Multi
	Producer  *task.Producer
	Consumer  *task.Consumer

	runnables []fx.Runnable
	failed    []string
	lock      sync.Mutex
}

// Stats is a snapshot of the app counters.
type Stats struct {
	Session     string
	Handoff     slot.Stats
	Scheduler   sched.Stats
	FailedTasks []string
}

// New creates an App writing console lines to the sink named in conf.
func New(conf *config.Config) (*App, error) {
	var sink report.Sink
	switch conf.Console {
	case report.SinkGlog:
		sink = report.GlogSink{}
	case report.SinkNone:
		sink = report.Discard
	default:
		sink = report.NewWriterSink(os.Stdout)
	}
	return NewWithSink(conf, sink)
}

// NewWithSink creates an App writing console lines to sink.
func NewWithSink(conf *config.Config, sink report.Sink) (*App, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	policy, err := sample.PolicyByName(conf.Policy)
	if err != nil {
		return nil, err
	}
	scheduler, err := sched.New(conf.Scheduler, conf.MaxTasks)
	if err != nil {
		return nil, err
	}
	a := &App{
		Config:    conf,
		Session:   uuid.New().String(),
		Sink:      sink,
		Scheduler: scheduler,
		Reporter:  &report.Multi{},
	}
	switch conf.Handoff {
	case config.HandoffVersioned:
		a.Handoff = slot.NewVersioned()
	default:
		a.Handoff = slot.New()
	}
	if conf.Console != report.SinkNone {
		a.Reporter.Add(report.NewConsole(sink))
	}
	if conf.MQTTURL != "" {
		reporter, err := mqtt.NewReporter(conf.MQTTURL, msgs.Meta{
			Node:        conf.NodeID,
			Session:     a.Session,
			Policy:      conf.Policy,
			Interval:    conf.Interval.String(),
			Description: "sample handoff",
		})
		if err != nil {
			return nil, fmt.Errorf("create MQTT reporter error: %v", err)
		}
		a.Reporter.Add(reporter)
		a.runnables = append(a.runnables, reporter)
	}
	if conf.WebSocketAddr != "" {
		feed := websocket.NewFeed(conf.WebSocketAddr, a.Session)
		a.Reporter.Add(feed)
		a.runnables = append(a.runnables, feed)
	}

	a.Producer = task.NewProducer(a.Handoff, policy)
	a.Producer.Interval = conf.Interval
	a.Consumer = task.NewConsumer(a.Handoff, a.Reporter)
	return a, nil
}

// MustNew creates App and fails on error.
func MustNew(conf *config.Config) *App {
	a, err := New(conf)
	if err != nil {
		glog.Exit(err)
	}
	return a
}

// Run spawns both tasks and runs until ctx is done. A task which can't be
// spawned is reported once to the sink and the app keeps running without it.
func (a *App) Run(ctx context.Context) error {
	a.spawn(ProducerName, a.Producer)
	a.spawn(ConsumerName, a.Consumer)
	glog.Infof("session %s started: scheduler=%s handoff=%s policy=%s interval=%s",
		a.Session, a.Config.Scheduler, a.Config.Handoff, a.Config.Policy, a.Config.Interval)

	runner := fx.NewRunnerWith(ctx).
		Go(fx.NamedRun("scheduler", a.Scheduler)).
		Go(a.runnables...)
	err := runner.Wait()
	if err == nil && ctx.Err() == nil {
		glog.Warning("all tasks stopped")
		<-ctx.Done()
	}
	return err
}

// Stats retrieves the counters.
func (a *App) Stats() Stats {
	a.lock.Lock()
	failed := append([]string(nil), a.failed...)
	a.lock.Unlock()
	return Stats{
		Session:     a.Session,
		Handoff:     a.Handoff.Stats(),
		Scheduler:   a.Scheduler.Stats(),
		FailedTasks: failed,
	}
}

func (a *App) spawn(name string, t sched.Task) {
	id, err := a.Scheduler.Spawn(name, t, a.Config.StackSize)
	if err != nil {
		glog.Errorf("spawn %s failed: %v", name, err)
		if err := a.Sink.WriteLine("error creating thread " + name); err != nil {
			glog.Errorf("write sink error: %v", err)
		}
		a.lock.Lock()
		a.failed = append(a.failed, name)
		a.lock.Unlock()
		return
	}
	glog.V(2).Infof("task %s spawned as %d", name, id)
}
