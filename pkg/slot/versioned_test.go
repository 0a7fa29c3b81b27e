package slot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/sampleslot/pkg/sample"
)

func TestVersionedStoreLoad(t *testing.T) {
	v := NewVersioned()
	s, ver := v.Load()
	require.Zero(t, ver)
	require.Equal(t, sample.Sample{}, s)

	require.EqualValues(t, 1, v.Store(sample.Sample{X: 3, Y: 4}))
	s, ver = v.Load()
	require.EqualValues(t, 1, ver)
	require.Equal(t, sample.Sample{X: 3, Y: 4}, s)
}

func TestVersionedKeepsOnlyLatest(t *testing.T) {
	w, _ := testWaiter(t)
	v := NewVersioned()
	for i := uint32(0); i < 5; i++ {
		require.NoError(t, v.Publish(w, sample.Sample{X: i}))
	}
	s, err := v.Take(w)
	require.NoError(t, err)
	require.EqualValues(t, 4, s.X)

	stats := v.Stats()
	require.EqualValues(t, 5, stats.Writes)
	require.EqualValues(t, 1, stats.Reads)
	require.EqualValues(t, 4, stats.Overwrites)
	require.EqualValues(t, 5, stats.Seq)

	// nothing pending: Take waits for the next publish
	takeCh := make(chan sample.Sample, 1)
	go func() {
		if s, err := v.Take(w); err == nil {
			takeCh <- s
		}
	}()
	select {
	case <-takeCh:
		t.Fatal("consumed the same version twice")
	case <-time.After(10 * time.Millisecond):
	}
	require.NoError(t, v.Publish(w, sample.Sample{X: 9}))
	select {
	case s := <-takeCh:
		require.EqualValues(t, 9, s.X)
	case <-time.After(time.Second):
		t.Fatal("Take not woken up")
	}
}

func TestVersionedCountsOverwritesOnTake(t *testing.T) {
	w, _ := testWaiter(t)
	v := NewVersioned()
	require.NoError(t, v.Publish(w, sample.Sample{X: 0}))

	// the consumer has loaded version 1 when the next publish lands
	s, ver := v.Load()
	require.EqualValues(t, 1, ver)
	require.NoError(t, v.Publish(w, sample.Sample{X: 1}))
	require.Zero(t, v.Stats().Overwrites)

	taken, err := v.Take(w)
	require.NoError(t, err)
	require.Equal(t, sample.Sample{X: 1}, taken)
	require.Equal(t, sample.Sample{X: 0}, s)
	stats := v.Stats()
	require.EqualValues(t, 2, stats.Writes)
	require.EqualValues(t, 1, stats.Reads)
	require.EqualValues(t, 1, stats.Overwrites)
	require.EqualValues(t, stats.Writes, stats.Reads+stats.Overwrites)
}
