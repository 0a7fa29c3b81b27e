// Package report delivers consumed samples to sinks.
package report

import (
	"context"

	"github.com/robotalks/sampleslot/pkg/sample"
)

// Reporter receives the consumer's progress.
type Reporter interface {
	// Waiting is called once each time the consumer starts waiting.
	Waiting(ctx context.Context) error
	// Report is called with every consumed sample.
	Report(ctx context.Context, v sample.Sample) error
}

// Sink accepts line-oriented text.
type Sink interface {
	WriteLine(line string) error
}

// SinkFunc is the func form of Sink.
type SinkFunc func(string) error

// WriteLine implements Sink.
func (f SinkFunc) WriteLine(line string) error {
	return f(line)
}
