package slot

import (
	"context"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/sampleslot/pkg/sample"
)

type blockingWaiter struct {
	ctx context.Context
}

func (w blockingWaiter) Yield() error {
	runtime.Gosched()
	return w.ctx.Err()
}

func (w blockingWaiter) Await(ch <-chan struct{}) error {
	select {
	case <-ch:
		return nil
	case <-w.ctx.Done():
		return w.ctx.Err()
	}
}

func testWaiter(t *testing.T) (blockingWaiter, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return blockingWaiter{ctx: ctx}, cancel
}

func TestTryAcquireRelease(t *testing.T) {
	s := New()
	require.True(t, s.TryAcquire())
	require.False(t, s.TryAcquire())
	stats := s.Stats()
	require.EqualValues(t, 1, stats.Holders)
	require.EqualValues(t, 1, stats.Contended)

	s.Release()
	s.Release() // not held, no-op
	stats = s.Stats()
	require.EqualValues(t, 0, stats.Holders)
	require.EqualValues(t, 1, stats.Acquires)
	require.EqualValues(t, 1, stats.Releases)

	select {
	case <-s.Released():
	default:
		t.Fatal("release not notified")
	}
	require.True(t, s.TryAcquire())
	s.Release()
}

func TestReadyFlag(t *testing.T) {
	s := New()
	require.False(t, s.IsReady())
	s.SetReady()
	require.True(t, s.IsReady())
	s.ClearReady()
	s.ClearReady()
	require.False(t, s.IsReady())
	stats := s.Stats()
	require.EqualValues(t, 1, stats.Signals)
	require.EqualValues(t, 1, stats.Clears)
}

func TestPublishTake(t *testing.T) {
	w, _ := testWaiter(t)
	s := New()
	require.NoError(t, s.Publish(w, sample.Sample{X: 1, Y: 2}))
	require.True(t, s.IsReady())
	v, err := s.Take(w)
	require.NoError(t, err)
	require.Equal(t, sample.Sample{X: 1, Y: 2}, v)
	require.False(t, s.IsReady())

	stats := s.Stats()
	require.EqualValues(t, 1, stats.Writes)
	require.EqualValues(t, 1, stats.Reads)
	require.EqualValues(t, 0, stats.Overwrites)
	require.EqualValues(t, 1, stats.Seq)
	require.EqualValues(t, stats.Acquires, stats.Releases)
}

func TestTakeCanceled(t *testing.T) {
	w, cancel := testWaiter(t)
	s := New()
	errCh := make(chan error, 1)
	go func() {
		_, err := s.Take(w)
		errCh <- err
	}()
	cancel()
	select {
	case err := <-errCh:
		require.Equal(t, context.Canceled, err)
	case <-time.After(time.Second):
		t.Fatal("Take not canceled")
	}
}

func TestReadyRaisedOnlyAfterRelease(t *testing.T) {
	w, _ := testWaiter(t)
	for i := 0; i < 100; i++ {
		s := New()
		observed := make(chan Stats, 1)
		go func() {
			for !s.IsReady() {
				runtime.Gosched()
			}
			observed <- s.Stats()
		}()
		require.NoError(t, s.Publish(w, sample.Sample{X: uint32(i)}))
		stats := <-observed
		require.EqualValues(t, 1, stats.Writes)
		require.EqualValues(t, 1, stats.Releases)
		require.EqualValues(t, 0, stats.Holders)
	}
}

func TestClearBeforeAcquireWindow(t *testing.T) {
	w, _ := testWaiter(t)
	s := New()
	a, b := sample.Sample{X: 1, Y: 1}, sample.Sample{X: 2, Y: 2}
	require.NoError(t, s.Publish(w, a))

	// the producer starts its next cycle and holds the mutex
	require.True(t, s.TryAcquire())

	takeCh := make(chan sample.Sample, 1)
	go func() {
		if v, err := s.Take(w); err == nil {
			takeCh <- v
		}
	}()

	// the consumer lowered the flag and now waits for the mutex
	require.Eventually(t, func() bool { return !s.IsReady() }, time.Second, time.Millisecond)
	select {
	case <-takeCh:
		t.Fatal("payload read while mutex is held")
	case <-time.After(10 * time.Millisecond):
	}

	s.Write(b)
	s.Release()
	s.SetReady()

	// the in-flight read gets the fresh sample; a was never read
	require.Equal(t, b, <-takeCh)
	// the flag raised by the producer is preserved
	require.True(t, s.IsReady())
	v, err := s.Take(w)
	require.NoError(t, err)
	require.Equal(t, b, v)

	stats := s.Stats()
	require.EqualValues(t, 2, stats.Writes)
	require.EqualValues(t, 2, stats.Reads)
	require.EqualValues(t, 1, stats.Overwrites)
}

func TestHandoffUnderContention(t *testing.T) {
	const cycles = 2000
	policy := sample.HalfUp{}
	handoffs := map[string]Handoff{
		"flag-mutex": New(),
		"versioned":  NewVersioned(),
	}
	for name, h := range handoffs {
		t.Run(name, func(t *testing.T) {
			w, _ := testWaiter(t)
			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := uint32(0); i < cycles; i++ {
					if err := h.Publish(w, policy.Generate(i)); err != nil {
						t.Error(err)
						return
					}
					if i%64 == 0 {
						runtime.Gosched()
					}
				}
			}()

			var consumed []sample.Sample
			distinct := 0
			for {
				v, err := h.Take(w)
				require.NoError(t, err)
				require.True(t, policy.Matches(v), "torn read %v", v)
				if n := len(consumed); n == 0 || v.X > consumed[n-1].X {
					distinct++
				} else {
					// a sample published inside the clear-before-acquire
					// window is read twice, never an older one
					require.Equal(t, consumed[n-1], v, "stale sample")
				}
				consumed = append(consumed, v)
				if v.X == cycles-1 {
					break
				}
			}
			wg.Wait()

			stats := h.Stats()
			require.EqualValues(t, cycles, stats.Writes)
			require.EqualValues(t, len(consumed), stats.Reads)
			require.EqualValues(t, stats.Writes, uint64(distinct)+stats.Overwrites)
			require.LessOrEqual(t, stats.MaxHolders, int32(1))
			require.EqualValues(t, 0, stats.Holders)
			require.Equal(t, stats.Acquires, stats.Releases)
		})
	}
}
