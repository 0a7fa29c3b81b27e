package report

import (
	"context"

	fx "github.com/robotalks/sampleslot/pkg/framework"
	"github.com/robotalks/sampleslot/pkg/sample"
)

// Multi reports to multiple Reporters.
type Multi struct {
	Reporters []Reporter
}

// Add adds more reporters.
func (m *Multi) Add(reporters ...Reporter) *Multi {
	m.Reporters = append(m.Reporters, reporters...)
	return m
}

// Waiting implements Reporter.
func (m *Multi) Waiting(ctx context.Context) error {
	var errs fx.AggregatedError
	for _, r := range m.Reporters {
		errs.Add(r.Waiting(ctx))
	}
	return errs.Aggregate()
}

// Report implements Reporter. A failing reporter doesn't stop the others.
func (m *Multi) Report(ctx context.Context, v sample.Sample) error {
	var errs fx.AggregatedError
	for _, r := range m.Reporters {
		errs.Add(r.Report(ctx, v))
	}
	return errs.Aggregate()
}
