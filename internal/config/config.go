// Package config handles loading and parsing the application's configuration.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
)

// Config holds all configuration for the application.
// We use struct tags to explicitly map TOML keys to struct fields.
type Config struct {
	Host            string        `toml:"host"`
	Port            int           `toml:"port"`
	Shards          int           `toml:"shards"`           // Lock stripes in the record store
	MaxBodySize     string        `toml:"max_body_size"`    // Human size, e.g. "1 MiB"
	MaxConnections  int           `toml:"max_connections"`  // 0 disables the limit
	LogLevel        string        `toml:"log_level"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
	MCPPath         string        `toml:"mcp_path"` // Empty disables the MCP endpoint
	Paths           Paths         `toml:"paths"`
	Raft            Raft          `toml:"raft"`
}

// Paths configures where the helper endpoints are mounted.
type Paths struct {
	StringBase    string `toml:"string_base"`
	StringReverse string `toml:"string_reverse"`
	DateBase      string `toml:"date_base"`
	DateDiff      string `toml:"date_diff"`
}

// Raft configures the optional replicated write path.
type Raft struct {
	Enabled      bool          `toml:"enabled"`
	NodeID       string        `toml:"node_id"` // Unique ID for the node in the cluster
	Port         int           `toml:"port"`    // Port for Raft's internal communication
	Join         string        `toml:"join"`    // HTTP address of the leader to join
	ApplyTimeout time.Duration `toml:"apply_timeout"`
}

// New returns a new Config with default values.
func New() *Config {
	return &Config{
		Host:            "localhost",
		Port:            8080,
		Shards:          32,
		MaxBodySize:     "1 MiB",
		MaxConnections:  512,
		LogLevel:        "info",
		ShutdownTimeout: 10 * time.Second,
		MCPPath:         "/mcp",
		Paths: Paths{
			StringBase:    "/string",
			StringReverse: "/reverse",
			DateBase:      "/tarih",
			DateDiff:      "/gun-farki",
		},
		Raft: Raft{
			NodeID:       "node1",
			Port:         9080,
			ApplyTimeout: 5 * time.Second,
		},
	}
}

// Load reads a configuration file from the given path and populates the Config struct.
func (c *Config) Load(path string) error {
	if _, err := toml.DecodeFile(path, c); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return c.Validate()
}

// Validate checks the values that cannot be caught by decoding alone.
func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.Shards < 0 {
		errs = append(errs, fmt.Errorf("shards must not be negative, got %d", c.Shards))
	}
	if c.MaxConnections < 0 {
		errs = append(errs, fmt.Errorf("max_connections must not be negative, got %d", c.MaxConnections))
	}
	if _, err := c.BodyLimit(); err != nil {
		errs = append(errs, err)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if c.MCPPath != "" && !strings.HasPrefix(c.MCPPath, "/") {
		errs = append(errs, fmt.Errorf("mcp_path %q must start with /", c.MCPPath))
	}
	for name, p := range map[string]string{
		"paths.string_base":    c.Paths.StringBase,
		"paths.string_reverse": c.Paths.StringReverse,
		"paths.date_base":      c.Paths.DateBase,
		"paths.date_diff":      c.Paths.DateDiff,
	} {
		if !strings.HasPrefix(p, "/") {
			errs = append(errs, fmt.Errorf("%s %q must start with /", name, p))
		}
	}
	if c.Raft.Enabled {
		if c.Raft.NodeID == "" {
			errs = append(errs, errors.New("raft.node_id is required when raft is enabled"))
		}
		if c.Raft.Port <= 0 || c.Raft.Port > 65535 {
			errs = append(errs, fmt.Errorf("raft.port %d out of range", c.Raft.Port))
		}
		if c.Raft.ApplyTimeout <= 0 {
			errs = append(errs, errors.New("raft.apply_timeout must be positive"))
		}
	}
	return errors.Join(errs...)
}

// BodyLimit returns MaxBodySize in bytes.
func (c *Config) BodyLimit() (int64, error) {
	n, err := humanize.ParseBytes(c.MaxBodySize)
	if err != nil {
		return 0, fmt.Errorf("max_body_size: %w", err)
	}
	if n == 0 {
		return 0, errors.New("max_body_size must be positive")
	}
	return int64(n), nil
}

// HTTPAddr is the host:port the HTTP server listens on.
func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RaftAddr is the host:port raft peers talk to.
func (c *Config) RaftAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Raft.Port)
}
