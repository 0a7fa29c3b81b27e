// Package sh provides an interactive shell to drive the sample handoff.
package sh

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"sync"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/sampleslot/pkg/app"
	"github.com/robotalks/sampleslot/pkg/config"
	"github.com/robotalks/sampleslot/pkg/report"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool

	Shell  *ishell.Shell
	Config *config.Config
	Run    *AppRun

	// NewApp creates the App for each start, defaults to app.NewWithSink.
	NewApp func(*config.Config, report.Sink) (*app.App, error)
}

// AppRun is a running App with its cancel func.
type AppRun struct {
	App    *app.App
	Cancel func()

	done chan struct{}
	err  error
}

const (
	shellKey        = "$shell"
	stoppedPrompt   = "[stopped] > "
	runningTemplate = "[%s] > "
)

var (
	evalOnly   bool
	outputJSON bool

	commands = []*ishell.Cmd{
		&StartCmd,
		&StopCmd,
		&StatsCmd,
		&StatusCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// New creates a new shell.
func New(conf *config.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:  ishell.New(),
		Config: conf,
		NewApp: app.NewWithSink,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(stoppedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeRunning wraps command func requires a running App.
func MustBeRunning(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Run == nil {
			c.Err(fmt.Errorf("not running"))
			return
		}
		fn(c)
	}
}

// Start creates and runs an App, stopping the current one first.
func (s *Shell) Start() error {
	var lock sync.Mutex
	sink := report.SinkFunc(func(line string) error {
		lock.Lock()
		defer lock.Unlock()
		s.Shell.Println(line)
		return nil
	})
	a, err := s.NewApp(s.Config, sink)
	if err != nil {
		return err
	}
	s.Stop()
	run := &AppRun{App: a, done: make(chan struct{})}
	var ctx context.Context
	ctx, run.Cancel = context.WithCancel(context.Background())
	go func() {
		defer close(run.done)
		run.err = a.Run(ctx)
	}()
	s.Run = run
	s.Shell.SetPrompt(fmt.Sprintf(runningTemplate, a.Session[:8]))
	return nil
}

// Stop cancels the running App and waits for it.
func (s *Shell) Stop() error {
	run := s.Run
	if run == nil {
		return nil
	}
	s.Run = nil
	run.Cancel()
	<-run.done
	s.Shell.SetPrompt(stoppedPrompt)
	return run.err
}

// Status describes the shell state.
func (s *Shell) Status() map[string]interface{} {
	status := map[string]interface{}{
		"running":   s.Run != nil,
		"scheduler": s.Config.Scheduler,
		"handoff":   s.Config.Handoff,
		"policy":    s.Config.Policy,
		"interval":  s.Config.Interval.String(),
		"node":      s.Config.NodeID,
	}
	if s.Run != nil {
		status["session"] = s.Run.App.Session
	}
	return status
}

func (s *Shell) print(c *ishell.Context, v interface{}, text func() string) {
	if s.OutputJSON {
		out, err := json.Marshal(v)
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(string(out))
		return
	}
	c.Println(text())
}

// Exec runs the shell.
func (s *Shell) Exec(args ...string) {
	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		s.Stop()
		return
	}
	log.Fatalln("command expected")
}

var (
	// StartCmd starts producer and consumer.
	StartCmd = ishell.Cmd{
		Name:    "start",
		Aliases: []string{"s"},
		Help:    "[POLICY]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			if len(c.Args) > 0 {
				s.Config.Policy = c.Args[0]
			}
			if err := s.Start(); err != nil {
				c.Err(err)
			}
		},
	}

	// StopCmd stops the running App.
	StopCmd = ishell.Cmd{
		Name: "stop",
		Func: MustBeRunning(func(c *ishell.Context) {
			if err := ShellFrom(c).Stop(); err != nil {
				c.Err(err)
			}
		}),
	}

	// StatsCmd prints the counters of the running App.
	StatsCmd = ishell.Cmd{
		Name: "stats",
		Func: MustBeRunning(func(c *ishell.Context) {
			s := ShellFrom(c)
			stats := s.Run.App.Stats()
			s.print(c, &stats, func() string {
				return FormatStats(stats)
			})
		}),
	}

	// StatusCmd prints whether an App is running and its settings.
	StatusCmd = ishell.Cmd{
		Name: "status",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			status := s.Status()
			s.print(c, status, func() string {
				if s.Run == nil {
					return fmt.Sprintf("stopped (policy=%s scheduler=%s handoff=%s)",
						s.Config.Policy, s.Config.Scheduler, s.Config.Handoff)
				}
				return fmt.Sprintf("running %s (policy=%s scheduler=%s handoff=%s)",
					s.Run.App.Session, s.Config.Policy, s.Config.Scheduler, s.Config.Handoff)
			})
		},
	}
)

// FormatStats prints Stats into friendly string for display.
func FormatStats(stats app.Stats) string {
	h := stats.Handoff
	str := fmt.Sprintf("session %s\n", stats.Session)
	str += fmt.Sprintf("  writes=%d reads=%d overwrites=%d signals=%d seq=%d\n",
		h.Writes, h.Reads, h.Overwrites, h.Signals, h.Seq)
	str += fmt.Sprintf("  acquires=%d releases=%d contended=%d max-holders=%d retries=%d\n",
		h.Acquires, h.Releases, h.Contended, h.MaxHolders, h.Retries)
	str += fmt.Sprintf("  tasks=%d switches=%d", stats.Scheduler.Tasks, stats.Scheduler.Switches)
	if len(stats.FailedTasks) > 0 {
		str += fmt.Sprintf("\n  failed: %v", stats.FailedTasks)
	}
	return str
}

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(config.MustLoad()).Exec(flag.Args()...)
}
