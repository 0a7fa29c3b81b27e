package slot

import (
	"sync"
	"sync/atomic"

	"github.com/robotalks/sampleslot/pkg/sample"
)

// Slot is the mutex and ready flag protected sample holder.
// It must be created by New and shared by reference.
type Slot struct {
	mu   sync.Mutex
	held atomic.Bool

	ready atomic.Bool

	// guarded by mu
	sample  sample.Sample
	seq     uint64
	readSeq uint64

	released chan struct{}
	signaled chan struct{}

	acquires   atomic.Uint64
	releases   atomic.Uint64
	contended  atomic.Uint64
	holders    atomic.Int32
	maxHolders atomic.Int32
	writes     atomic.Uint64
	reads      atomic.Uint64
	signals    atomic.Uint64
	clears     atomic.Uint64
	overwrites atomic.Uint64
	lastSeq    atomic.Uint64
}

// New creates a Slot.
func New() *Slot {
	return &Slot{
		released: make(chan struct{}, 1),
		signaled: make(chan struct{}, 1),
	}
}

// TryAcquire takes the mutex if it is free. It never blocks.
func (s *Slot) TryAcquire() bool {
	if !s.mu.TryLock() {
		s.contended.Add(1)
		return false
	}
	s.held.Store(true)
	n := s.holders.Add(1)
	for {
		peak := s.maxHolders.Load()
		if n <= peak || s.maxHolders.CompareAndSwap(peak, n) {
			break
		}
	}
	s.acquires.Add(1)
	return true
}

// Release releases the mutex. It's a no-op if the mutex is not held.
func (s *Slot) Release() {
	if !s.held.CompareAndSwap(true, false) {
		return
	}
	s.holders.Add(-1)
	s.releases.Add(1)
	s.mu.Unlock()
	notify(s.released)
}

// Acquire takes the mutex, waiting for a release whenever it is taken.
func (s *Slot) Acquire(w Waiter) error {
	for !s.TryAcquire() {
		if err := w.Await(s.released); err != nil {
			return err
		}
	}
	return nil
}

// SetReady raises the ready flag.
func (s *Slot) SetReady() {
	s.ready.Store(true)
	s.signals.Add(1)
	notify(s.signaled)
}

// ClearReady lowers the ready flag.
func (s *Slot) ClearReady() {
	if s.ready.Swap(false) {
		s.clears.Add(1)
	}
}

// IsReady tells whether an unconsumed sample exists.
func (s *Slot) IsReady() bool {
	return s.ready.Load()
}

// WaitReady waits until the ready flag is raised.
func (s *Slot) WaitReady(w Waiter) error {
	for !s.IsReady() {
		if err := w.Await(s.signaled); err != nil {
			return err
		}
	}
	return nil
}

// Released is notified after every release of the mutex.
func (s *Slot) Released() <-chan struct{} {
	return s.released
}

// Signaled is notified after every SetReady.
func (s *Slot) Signaled() <-chan struct{} {
	return s.signaled
}

// Read returns the payload. The caller must hold the mutex.
func (s *Slot) Read() sample.Sample {
	s.readSeq = s.seq
	s.reads.Add(1)
	return s.sample
}

// Write stores the payload. The caller must hold the mutex.
func (s *Slot) Write(v sample.Sample) {
	if s.seq > s.readSeq {
		s.overwrites.Add(1)
	}
	s.sample = v
	s.seq++
	s.lastSeq.Store(s.seq)
	s.writes.Add(1)
}

// Stats implements Handoff.
func (s *Slot) Stats() Stats {
	return Stats{
		Acquires:   s.acquires.Load(),
		Releases:   s.releases.Load(),
		Contended:  s.contended.Load(),
		Holders:    s.holders.Load(),
		MaxHolders: s.maxHolders.Load(),
		Writes:     s.writes.Load(),
		Reads:      s.reads.Load(),
		Signals:    s.signals.Load(),
		Clears:     s.clears.Load(),
		Overwrites: s.overwrites.Load(),
		Seq:        s.lastSeq.Load(),
	}
}

func notify(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
