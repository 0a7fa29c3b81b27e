// Package config provides options to set up the sample handoff.
package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/denisbrodbeck/machineid"

	"github.com/robotalks/sampleslot/pkg/report"
	"github.com/robotalks/sampleslot/pkg/sample"
	"github.com/robotalks/sampleslot/pkg/sched"
)

// Handoff names.
const (
	HandoffFlagMutex = "flag-mutex"
	HandoffVersioned = "versioned"
)

// Config provides all options of a sample handoff app.
type Config struct {
	// Interval is the delay between two productions.
	Interval time.Duration `yaml:"interval"`
	// StackSize is the stack size hint given when spawning tasks.
	StackSize int `yaml:"stack_size"`
	// MaxTasks limits the number of tasks, 0 for unlimited.
	MaxTasks int `yaml:"max_tasks"`
	// Policy names the sample generation policy.
	Policy string `yaml:"policy"`
	// Scheduler is either goroutine or cooperative.
	Scheduler string `yaml:"scheduler"`
	// Handoff is either flag-mutex or versioned.
	Handoff string `yaml:"handoff"`
	// Console is the sink of text lines: stdout, glog or none.
	Console string `yaml:"console"`

	// NodeID identifies this node to remote monitors.
	NodeID string `yaml:"node_id"`
	// MQTTURL enables publishing samples, e.g. mqtt://host:port/topic-prefix/
	MQTTURL string `yaml:"mqtt_url"`
	// WebSocketAddr enables the websocket feed, e.g. :8080
	WebSocketAddr string `yaml:"websocket_addr"`
}

var (
	defaultConfig = Config{
		Interval:  500 * time.Millisecond,
		StackSize: 128,
		Policy:    sample.PolicyHalfUp,
		Scheduler: sched.NameGoroutines,
		Handoff:   HandoffFlagMutex,
		Console:   report.SinkStdout,
	}

	configFile string
)

// Environment variables overriding defaults.
const (
	EnvInterval      = "SAMPLESLOT_INTERVAL"
	EnvStackSize     = "SAMPLESLOT_STACK_SIZE"
	EnvMaxTasks      = "SAMPLESLOT_MAX_TASKS"
	EnvPolicy        = "SAMPLESLOT_POLICY"
	EnvScheduler     = "SAMPLESLOT_SCHEDULER"
	EnvHandoff       = "SAMPLESLOT_HANDOFF"
	EnvConsole       = "SAMPLESLOT_CONSOLE"
	EnvNodeID        = "SAMPLESLOT_NODE_ID"
	EnvMQTTURL       = "SAMPLESLOT_MQTT_URL"
	EnvWebSocketAddr = "SAMPLESLOT_WS_ADDR"
	EnvConfigFile    = "SAMPLESLOT_CONFIG"
)

func init() {
	defaultConfig.NodeID = MachineID()
	if err := applyEnv(&defaultConfig, os.Getenv); err != nil {
		log.Printf("ignore environment: %v", err)
	}
	configFile = os.Getenv(EnvConfigFile)
}

// MachineID retrieves a stable ID of this machine scoped to the app.
func MachineID() string {
	id, err := machineid.ProtectedID("sampleslot")
	if err != nil {
		return "unknown"
	}
	if len(id) > 12 {
		id = id[:12]
	}
	return id
}

func applyEnv(c *Config, getenv func(string) string) error {
	if val := getenv(EnvInterval); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("%s: %v", EnvInterval, err)
		}
		c.Interval = d
	}
	for env, field := range map[string]*int{
		EnvStackSize: &c.StackSize,
		EnvMaxTasks:  &c.MaxTasks,
	} {
		if val := getenv(env); val != "" {
			n, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("%s: %v", env, err)
			}
			*field = n
		}
	}
	for env, field := range map[string]*string{
		EnvPolicy:        &c.Policy,
		EnvScheduler:     &c.Scheduler,
		EnvHandoff:       &c.Handoff,
		EnvConsole:       &c.Console,
		EnvNodeID:        &c.NodeID,
		EnvMQTTURL:       &c.MQTTURL,
		EnvWebSocketAddr: &c.WebSocketAddr,
	} {
		if val := getenv(env); val != "" {
			*field = val
		}
	}
	return nil
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.DurationVar(&defaultConfig.Interval, "interval", defaultConfig.Interval, "Delay between two samples.")
	flag.IntVar(&defaultConfig.StackSize, "stack-size", defaultConfig.StackSize, "Stack size hint for spawned tasks.")
	flag.IntVar(&defaultConfig.MaxTasks, "max-tasks", defaultConfig.MaxTasks, "Maximum number of tasks, 0 for unlimited.")
	flag.StringVar(&defaultConfig.Policy, "policy", defaultConfig.Policy, "Sample generation policy: half, half-up or random.")
	flag.StringVar(&defaultConfig.Scheduler, "scheduler", defaultConfig.Scheduler, "Task scheduler: goroutine or cooperative.")
	flag.StringVar(&defaultConfig.Handoff, "handoff", defaultConfig.Handoff, "Sample handoff: flag-mutex or versioned.")
	flag.StringVar(&defaultConfig.Console, "console", defaultConfig.Console, "Console lines to stdout, glog or none.")
	flag.StringVar(&defaultConfig.NodeID, "node", defaultConfig.NodeID, "Node ID.")
	flag.StringVar(&defaultConfig.MQTTURL, "mqtt", defaultConfig.MQTTURL, "MQTT broker URL to publish samples.")
	flag.StringVar(&defaultConfig.WebSocketAddr, "ws", defaultConfig.WebSocketAddr, "Listen address of the websocket feed.")
	flag.StringVar(&configFile, "config", configFile, "YAML config file, values override flags.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Load creates a Config with defaults and merges the config file if specified.
func Load() (*Config, error) {
	conf := NewConfig()
	if configFile != "" {
		if err := conf.LoadFile(configFile); err != nil {
			return nil, err
		}
	}
	return conf, conf.Validate()
}

// MustLoad loads the Config and fails on error.
func MustLoad() *Config {
	conf, err := Load()
	if err != nil {
		log.Fatalln(err)
	}
	return conf
}

// Validate checks the options. The stack size is not checked here, an
// invalid one is reported when spawning tasks.
func (c *Config) Validate() error {
	if c.Interval < 0 {
		return fmt.Errorf("invalid interval: %s", c.Interval)
	}
	if _, err := sample.PolicyByName(c.Policy); err != nil {
		return err
	}
	switch c.Scheduler {
	case sched.NameGoroutines, sched.NameCooperative:
	default:
		return fmt.Errorf("unknown scheduler: %q", c.Scheduler)
	}
	switch c.Handoff {
	case HandoffFlagMutex, HandoffVersioned:
	default:
		return fmt.Errorf("unknown handoff: %q", c.Handoff)
	}
	switch c.Console {
	case report.SinkStdout, report.SinkGlog, report.SinkNone:
	default:
		return fmt.Errorf("unknown console: %q", c.Console)
	}
	if c.NodeID == "" {
		return fmt.Errorf("node ID must be specified")
	}
	return nil
}
