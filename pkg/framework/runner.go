package framework

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/golang/glog"
)

type namedRunnable struct {
	Runnable
	name string
}

func (r *namedRunnable) Name() string {
	return r.name
}

// NamedRun wraps a Runnable with a name.
func NamedRun(name string, runnable Runnable) Runnable {
	return &namedRunnable{name: name, Runnable: runnable}
}

// RunFunc is the func form of Runnable.
type RunFunc func(context.Context) error

// Run implements Runnable.
func (f RunFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// Runner runs multiple Runnables and collect errors.
type Runner struct {
	Context context.Context
	Runners []Runnable

	errCh  chan namedErr
	exitCh chan struct{}
}

type namedErr struct {
	name string
	err  error
}

// NewRunner creates a runner with a default background context.
func NewRunner() *Runner {
	return NewRunnerWith(context.Background())
}

// NewRunnerWith creates a runner with a specified context.
func NewRunnerWith(ctx context.Context) *Runner {
	return &Runner{
		Context: ctx,
		errCh:   make(chan namedErr, 1),
		exitCh:  make(chan struct{}),
	}
}

// HandleSignals handles CtrlC and SIGTERM from the system.
func (r *Runner) HandleSignals() *Runner {
	ctx, cancel := context.WithCancel(r.Context)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	r.Context = ctx
	go func() {
		<-sigCh
		glog.Info("stop requested")
		cancel()
		<-sigCh
		glog.Error("stop requested again, force exit")
		close(r.exitCh)
	}()
	return r
}

// Go spawns Runnables with default context.
func (r *Runner) Go(runners ...Runnable) *Runner {
	return r.GoWith(r.Context, runners...)
}

// GoWith spawns Runnables with a specified context.
func (r *Runner) GoWith(ctx context.Context, runners ...Runnable) *Runner {
	for _, runner := range runners {
		var name string
		if named, ok := runner.(Named); ok {
			name = named.Name()
		} else {
			name = strconv.Itoa(len(r.Runners))
		}
		r.Runners = append(r.Runners, runner)
		glog.V(4).Infof("start Runner[%s]", name)
		go func(runner Runnable, name string) {
			glog.V(4).Infof("Runner[%s] started", name)
			err := runner.Run(ctx)
			glog.V(4).Infof("Runner[%s] stopped: %v", name, err)
			r.errCh <- namedErr{name: name, err: err}
		}(runner, name)
	}
	return r
}

// Wait waits until all Runnables stop and aggregates errors.
// Cancellation is a normal stop and is not reported.
func (r *Runner) Wait() error {
	var errs AggregatedError
	for range r.Runners {
		select {
		case <-r.exitCh:
			return errors.New("forced exit")
		case res := <-r.errCh:
			if res.err != nil && !errors.Is(res.err, context.Canceled) {
				errs.Add(fmt.Errorf("%s: %w", res.name, res.err))
			}
		}
	}
	return errs.Aggregate()
}

// RunWithContextCancel runs a func which doesn't accept a context.
// onCancel is called only when the context is canceled.
func RunWithContextCancel(ctx context.Context, onCancel func(), fn func() error) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- fn()
	}()
	select {
	case <-ctx.Done():
		if onCancel != nil {
			onCancel()
		}
		<-errCh
		return context.Canceled
	case err := <-errCh:
		return err
	}
}

// RunWithContextCloser ensures closer.Close is called either on cancel or
// when fn exits.
func RunWithContextCloser(ctx context.Context, closer io.Closer, fn func() error) error {
	var closed bool
	err := RunWithContextCancel(ctx, func() {
		closer.Close()
		closed = true
	}, fn)
	if !closed {
		closer.Close()
	}
	return err
}
