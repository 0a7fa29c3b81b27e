package slot

import "github.com/robotalks/sampleslot/pkg/sample"

// Waiter suspends the calling task until a notification arrives.
// sched.TaskContext implements it.
type Waiter interface {
	// Yield gives up the processor to other tasks.
	Yield() error
	// Await returns once a value is received from ch.
	Await(ch <-chan struct{}) error
}

// Handoff hands samples from exactly one producer to exactly one consumer,
// keeping at most one pending sample.
type Handoff interface {
	// Publish makes v the pending sample, replacing an unconsumed one.
	Publish(w Waiter, v sample.Sample) error
	// Take waits for a pending sample and consumes it.
	Take(w Waiter) (sample.Sample, error)
	// Stats retrieves the instrumentation counters.
	Stats() Stats
}

// Stats is a snapshot of handoff counters.
type Stats struct {
	// Acquires and Releases count successful mutex operations.
	Acquires uint64
	Releases uint64
	// Contended counts failed TryAcquire attempts.
	Contended uint64
	// Holders is the number of outstanding holds, 0 or 1.
	Holders int32
	// MaxHolders is the highest number of simultaneous holders ever observed.
	MaxHolders int32

	Writes  uint64
	Reads   uint64
	Signals uint64
	Clears  uint64
	// Overwrites counts samples replaced before being read.
	Overwrites uint64
	// Retries counts optimistic reads restarted because of a concurrent write.
	Retries uint64
	// Seq is the sequence number of the last written sample, starting at 1.
	Seq uint64
}
