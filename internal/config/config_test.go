// Package config_test contains the unit tests for the config package.
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestConfig_Defaults(t *testing.T) {
	cfg := New()
	require.NoError(t, cfg.Validate())

	limit, err := cfg.BodyLimit()
	require.NoError(t, err)
	assert.Equal(t, int64(1<<20), limit)
	assert.Equal(t, "localhost:8080", cfg.HTTPAddr())
	assert.Equal(t, "localhost:9080", cfg.RaftAddr())
	assert.Equal(t, "/tarih", cfg.Paths.DateBase)
	assert.False(t, cfg.Raft.Enabled)
}

func TestConfig_Load(t *testing.T) {
	// Create a temporary directory for our test config files
	tempDir := t.TempDir()

	// --- Test Case 1: Valid configuration file ---
	validPath := writeConfig(t, tempDir, "valid.toml", `
host = "127.0.0.1"
port = 9000
shards = 8
max_body_size = "64 KiB"
max_connections = 0
log_level = "debug"
shutdown_timeout = "3s"
mcp_path = ""

[paths]
string_base = "/metin"
string_reverse = "/ters"

[raft]
enabled = true
node_id = "node2"
port = 9001
join = "127.0.0.1:8080"
apply_timeout = "2s"
`)

	cfg := New()
	require.NoError(t, cfg.Load(validPath))

	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 8, cfg.Shards)
	assert.Equal(t, 0, cfg.MaxConnections)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
	assert.Empty(t, cfg.MCPPath)
	assert.Equal(t, "/metin", cfg.Paths.StringBase)
	assert.Equal(t, "/ters", cfg.Paths.StringReverse)
	// Keys absent from the file keep their defaults.
	assert.Equal(t, "/tarih", cfg.Paths.DateBase)
	assert.Equal(t, "/gun-farki", cfg.Paths.DateDiff)
	assert.True(t, cfg.Raft.Enabled)
	assert.Equal(t, "node2", cfg.Raft.NodeID)
	assert.Equal(t, 9001, cfg.Raft.Port)
	assert.Equal(t, "127.0.0.1:8080", cfg.Raft.Join)
	assert.Equal(t, 2*time.Second, cfg.Raft.ApplyTimeout)

	limit, err := cfg.BodyLimit()
	require.NoError(t, err)
	assert.Equal(t, int64(64*1024), limit)

	// --- Test Case 2: File does not exist ---
	cfg2 := New()
	err = cfg2.Load(filepath.Join(tempDir, "nonexistent.toml"))
	require.Error(t, err)

	// --- Test Case 3: Invalid TOML format ---
	invalidPath := writeConfig(t, tempDir, "invalid.toml", `host = 127.0.0.1`) // Invalid: host should be a string
	cfg3 := New()
	require.Error(t, cfg3.Load(invalidPath))
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{name: "port zero", mutate: func(c *Config) { c.Port = 0 }},
		{name: "negative shards", mutate: func(c *Config) { c.Shards = -1 }},
		{name: "negative connections", mutate: func(c *Config) { c.MaxConnections = -5 }},
		{name: "bad body size", mutate: func(c *Config) { c.MaxBodySize = "lots" }},
		{name: "zero body size", mutate: func(c *Config) { c.MaxBodySize = "0" }},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "chatty" }},
		{name: "relative mcp path", mutate: func(c *Config) { c.MCPPath = "mcp" }},
		{name: "relative helper path", mutate: func(c *Config) { c.Paths.DateDiff = "gun-farki" }},
		{name: "raft without node id", mutate: func(c *Config) {
			c.Raft.Enabled = true
			c.Raft.NodeID = ""
		}},
		{name: "raft without apply timeout", mutate: func(c *Config) {
			c.Raft.Enabled = true
			c.Raft.ApplyTimeout = 0
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfig_LoadRejectsInvalidValues(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "bad.toml", `max_body_size = "huge"`)
	err := New().Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_body_size")
}
