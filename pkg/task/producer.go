// Package task implements the producer and consumer task bodies.
package task

import (
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/sampleslot/pkg/sample"
	"github.com/robotalks/sampleslot/pkg/sched"
	"github.com/robotalks/sampleslot/pkg/slot"
)

// DefaultInterval is the default delay between two productions.
const DefaultInterval = 500 * time.Millisecond

// Producer generates a sample every Interval and publishes it.
type Producer struct {
	Handoff  slot.Handoff
	Policy   sample.Policy
	Interval time.Duration

	counter uint32
}

// NewProducer creates a Producer.
func NewProducer(h slot.Handoff, policy sample.Policy) *Producer {
	return &Producer{Handoff: h, Policy: policy, Interval: DefaultInterval}
}

// RunTask implements sched.Task. It only returns when the scheduler stops.
func (p *Producer) RunTask(tc sched.TaskContext) error {
	for {
		v := p.Policy.Generate(p.counter)
		p.counter++
		if err := p.Handoff.Publish(tc, v); err != nil {
			return err
		}
		glog.V(4).Infof("%s: published %s", tc.Name(), v)
		if err := tc.Sleep(p.Interval); err != nil {
			return err
		}
	}
}
