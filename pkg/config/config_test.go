package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	conf := NewConfig()
	require.NotSame(t, Default(), conf)
	require.Equal(t, 128, conf.StackSize)
	require.NotEmpty(t, conf.NodeID)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvInterval:  "250ms",
		EnvStackSize: "256",
		EnvScheduler: "cooperative",
		EnvMQTTURL:   "mqtt://broker:1883/demo/",
		EnvMaxTasks:  "1",
		EnvConsole:   "glog",
	}
	conf := Config{Policy: "half"}
	require.NoError(t, applyEnv(&conf, func(key string) string { return env[key] }))
	require.Equal(t, 250*time.Millisecond, conf.Interval)
	require.Equal(t, 256, conf.StackSize)
	require.Equal(t, "cooperative", conf.Scheduler)
	require.Equal(t, "mqtt://broker:1883/demo/", conf.MQTTURL)
	require.Equal(t, "half", conf.Policy)
	require.Equal(t, 1, conf.MaxTasks)
	require.Equal(t, "glog", conf.Console)

	env[EnvMaxTasks] = "many"
	require.Error(t, applyEnv(&conf, func(key string) string { return env[key] }))
	delete(env, EnvMaxTasks)
	env[EnvInterval] = "soon"
	require.Error(t, applyEnv(&conf, func(key string) string { return env[key] }))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sampleslot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
interval: 1s
policy: random
handoff: versioned
websocket_addr: ":8080"
`), 0644))
	conf := NewConfig()
	conf.NodeID = "n1"
	require.NoError(t, conf.LoadFile(path))
	require.Equal(t, time.Second, conf.Interval)
	require.Equal(t, "random", conf.Policy)
	require.Equal(t, HandoffVersioned, conf.Handoff)
	require.Equal(t, ":8080", conf.WebSocketAddr)
	require.Equal(t, "n1", conf.NodeID)
	require.NoError(t, conf.Validate())

	require.Error(t, conf.LoadYAML([]byte("interval: [")))
	require.Error(t, conf.LoadFile(filepath.Join(t.TempDir(), "missing.yaml")))
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		modify func(*Config)
	}{
		{"negative interval", func(c *Config) { c.Interval = -time.Second }},
		{"unknown policy", func(c *Config) { c.Policy = "sine" }},
		{"unknown scheduler", func(c *Config) { c.Scheduler = "rtos" }},
		{"unknown handoff", func(c *Config) { c.Handoff = "queue" }},
		{"unknown console", func(c *Config) { c.Console = "serial" }},
		{"no node", func(c *Config) { c.NodeID = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			conf := NewConfig()
			conf.NodeID = "n1"
			require.NoError(t, conf.Validate())
			tc.modify(conf)
			require.Error(t, conf.Validate())
		})
	}
	conf := NewConfig()
	conf.NodeID = "n1"
	conf.StackSize = 0
	require.NoError(t, conf.Validate())
}
