package slot

import "github.com/robotalks/sampleslot/pkg/sample"

// Publish implements Handoff.
func (s *Slot) Publish(w Waiter, v sample.Sample) error {
	if err := s.Acquire(w); err != nil {
		return err
	}
	s.Write(v)
	s.Release()
	s.SetReady()
	return nil
}

// Take implements Handoff.
func (s *Slot) Take(w Waiter) (sample.Sample, error) {
	if err := s.WaitReady(w); err != nil {
		return sample.Sample{}, err
	}
	s.ClearReady()
	if err := s.Acquire(w); err != nil {
		return sample.Sample{}, err
	}
	v := s.Read()
	s.Release()
	return v, nil
}
