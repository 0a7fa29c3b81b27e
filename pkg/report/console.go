package report

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/sampleslot/pkg/sample"
)

// WaitingLine is written each time the consumer starts waiting.
const WaitingLine = "Waiting for sample to be ready"

// FormatSample renders the line reporting a consumed sample.
func FormatSample(v sample.Sample) string {
	return fmt.Sprintf("Sample is ready, x = %d, y = %d", v.X, v.Y)
}

// Console writes the consumer's progress as text lines.
type Console struct {
	Sink Sink
}

// NewConsole creates a Console.
func NewConsole(sink Sink) *Console {
	return &Console{Sink: sink}
}

// Waiting implements Reporter.
func (c *Console) Waiting(context.Context) error {
	return c.Sink.WriteLine(WaitingLine)
}

// Report implements Reporter.
func (c *Console) Report(_ context.Context, v sample.Sample) error {
	return c.Sink.WriteLine(FormatSample(v))
}

// WriterSink writes lines to an io.Writer, like a serial console.
type WriterSink struct {
	W    io.Writer
	lock sync.Mutex
}

// NewWriterSink creates a WriterSink.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{W: w}
}

// WriteLine implements Sink.
func (s *WriterSink) WriteLine(line string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	_, err := fmt.Fprintln(s.W, line)
	return err
}

// GlogSink writes lines as glog info records.
type GlogSink struct{}

// WriteLine implements Sink.
func (GlogSink) WriteLine(line string) error {
	glog.Info(line)
	return nil
}

// Discard drops all lines.
var Discard Sink = SinkFunc(func(string) error { return nil })

// Sink names.
const (
	SinkStdout = "stdout"
	SinkGlog   = "glog"
	SinkNone   = "none"
)
