package slot

import (
	"runtime"
	"sync/atomic"

	"github.com/robotalks/sampleslot/pkg/sample"
)

// Versioned is a sequence-locked sample holder for a single writer. The
// sequence is odd while a write is in progress; readers retry until they see
// the same even sequence before and after loading the payload. There is no
// window where the payload and the ready signal disagree.
type Versioned struct {
	seq   atomic.Uint64
	x, y  atomic.Uint32
	taken atomic.Uint64

	signaled chan struct{}

	writes     atomic.Uint64
	reads      atomic.Uint64
	retries    atomic.Uint64
	overwrites atomic.Uint64
	signals    atomic.Uint64
}

// NewVersioned creates a Versioned.
func NewVersioned() *Versioned {
	return &Versioned{signaled: make(chan struct{}, 1)}
}

// Store writes v. Only one goroutine may call Store.
func (v *Versioned) Store(s sample.Sample) uint64 {
	prev := v.seq.Add(1) - 1
	v.x.Store(s.X)
	v.y.Store(s.Y)
	v.seq.Store(prev + 2)
	v.writes.Add(1)
	return version(prev + 2)
}

// Load reads the latest sample and its version. Version 0 means nothing
// was stored yet.
func (v *Versioned) Load() (sample.Sample, uint64) {
	for spins := 0; ; spins++ {
		seq := v.seq.Load()
		if seq&1 == 0 {
			s := sample.Sample{X: v.x.Load(), Y: v.y.Load()}
			if v.seq.Load() == seq {
				return s, version(seq)
			}
		}
		v.retries.Add(1)
		if spins%16 == 15 {
			runtime.Gosched()
		}
	}
}

// Publish implements Handoff.
func (v *Versioned) Publish(w Waiter, s sample.Sample) error {
	v.Store(s)
	v.signals.Add(1)
	notify(v.signaled)
	return nil
}

// Take implements Handoff. Only one goroutine may call Take. Versions
// skipped since the last Take are counted as overwrites.
func (v *Versioned) Take(w Waiter) (sample.Sample, error) {
	for {
		s, ver := v.Load()
		if taken := v.taken.Load(); ver > taken {
			v.overwrites.Add(ver - taken - 1)
			v.taken.Store(ver)
			v.reads.Add(1)
			return s, nil
		}
		if err := w.Await(v.signaled); err != nil {
			return sample.Sample{}, err
		}
	}
}

// Stats implements Handoff.
func (v *Versioned) Stats() Stats {
	return Stats{
		Writes:     v.writes.Load(),
		Reads:      v.reads.Load(),
		Signals:    v.signals.Load(),
		Overwrites: v.overwrites.Load(),
		Retries:    v.retries.Load(),
		Seq:        version(v.seq.Load()),
	}
}

func version(seq uint64) uint64 {
	return seq / 2
}
