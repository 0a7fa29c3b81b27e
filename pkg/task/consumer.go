package task

import (
	"github.com/golang/glog"

	"github.com/robotalks/sampleslot/pkg/report"
	"github.com/robotalks/sampleslot/pkg/sched"
	"github.com/robotalks/sampleslot/pkg/slot"
)

// Consumer waits for published samples and reports them.
type Consumer struct {
	Handoff  slot.Handoff
	Reporter report.Reporter
}

// NewConsumer creates a Consumer.
func NewConsumer(h slot.Handoff, r report.Reporter) *Consumer {
	return &Consumer{Handoff: h, Reporter: r}
}

// RunTask implements sched.Task. Reporting errors are logged and never stop
// the consumer.
func (c *Consumer) RunTask(tc sched.TaskContext) error {
	ctx := tc.Context()
	for {
		if err := c.Reporter.Waiting(ctx); err != nil {
			glog.Errorf("%s: report waiting error: %v", tc.Name(), err)
		}
		v, err := c.Handoff.Take(tc)
		if err != nil {
			return err
		}
		if err := c.Reporter.Report(ctx, v); err != nil {
			glog.Errorf("%s: report sample %s error: %v", tc.Name(), v, err)
		}
	}
}
