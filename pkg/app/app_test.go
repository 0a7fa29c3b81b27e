package app

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/sampleslot/pkg/config"
	"github.com/robotalks/sampleslot/pkg/report"
)

type lineSink struct {
	lock  sync.Mutex
	lines []string
}

func (s *lineSink) WriteLine(line string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.lines = append(s.lines, line)
	return nil
}

func (s *lineSink) snapshot() []string {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]string(nil), s.lines...)
}

func (s *lineSink) count(prefix string) int {
	var n int
	for _, line := range s.snapshot() {
		if strings.HasPrefix(line, prefix) {
			n++
		}
	}
	return n
}

func testConfig() *config.Config {
	conf := config.NewConfig()
	conf.NodeID = "test"
	conf.Interval = 20 * time.Millisecond
	conf.MQTTURL = ""
	conf.WebSocketAddr = ""
	return conf
}

func runFor(t *testing.T, a *App, until func() bool) {
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Run(ctx)
	}()
	require.Eventually(t, until, 2*time.Second, time.Millisecond)
	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("app not stopped")
	}
}

func TestAppRuns(t *testing.T) {
	for _, scheduler := range []string{"goroutine", "cooperative"} {
		for _, handoff := range []string{config.HandoffFlagMutex, config.HandoffVersioned} {
			t.Run(scheduler+"/"+handoff, func(t *testing.T) {
				conf := testConfig()
				conf.Scheduler = scheduler
				conf.Handoff = handoff
				var sink lineSink
				a, err := NewWithSink(conf, &sink)
				require.NoError(t, err)
				runFor(t, a, func() bool { return sink.count("Sample is ready") >= 3 })

				lines := sink.snapshot()
				require.Equal(t, report.WaitingLine, lines[0])
				require.Equal(t, "Sample is ready, x = 0, y = 0", lines[1])
				stats := a.Stats()
				require.Empty(t, stats.FailedTasks)
				require.Equal(t, 2, stats.Scheduler.Tasks)
				require.True(t, stats.Handoff.Reads >= 3)
				require.NotEmpty(t, stats.Session)
			})
		}
	}
}

func TestAppReportsSpawnFailure(t *testing.T) {
	t.Run("consumer missing", func(t *testing.T) {
		conf := testConfig()
		conf.MaxTasks = 1
		var sink lineSink
		a, err := NewWithSink(conf, &sink)
		require.NoError(t, err)
		runFor(t, a, func() bool { return a.Stats().Handoff.Writes >= 3 })

		require.Equal(t, []string{"error creating thread consumer"}, sink.snapshot())
		require.Equal(t, []string{ConsumerName}, a.Stats().FailedTasks)
	})
	t.Run("both missing", func(t *testing.T) {
		conf := testConfig()
		conf.StackSize = 0
		var sink lineSink
		a, err := NewWithSink(conf, &sink)
		require.NoError(t, err)
		runFor(t, a, func() bool { return len(a.Stats().FailedTasks) == 2 })

		require.Equal(t, []string{
			"error creating thread producer",
			"error creating thread consumer",
		}, sink.snapshot())
	})
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	conf := testConfig()
	conf.Scheduler = "rtos"
	_, err := NewWithSink(conf, report.Discard)
	require.Error(t, err)
}
