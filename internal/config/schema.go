// Package config handles YAML configuration loading, environment variable
// expansion, and structural validation for mate.
package config

import (
	"time"

	"github.com/matehq/mate/internal/provider/openaicompat"
)

// Config is the top-level configuration structure.
type Config struct {
	// Provider configures the chat completions endpoint driving the loop.
	Provider openaicompat.Config `yaml:"provider"`

	Loop    LoopConfig    `yaml:"loop"`
	SQL     SQLConfig     `yaml:"sql"`
	Gateway GatewayConfig `yaml:"gateway"`
	History HistoryConfig `yaml:"history"`
	Audit   AuditConfig   `yaml:"audit"`
	Log     LogConfig     `yaml:"log"`
	Tracing TracingConfig `yaml:"tracing"`
}

// LoopConfig bounds the agent loop.
type LoopConfig struct {
	// MaxRounds caps provider rounds per run.
	MaxRounds int `yaml:"max_rounds"`
	// Timeout bounds one run's wall clock.
	Timeout time.Duration `yaml:"timeout"`
	// CallTimeout bounds each tool execution.
	CallTimeout time.Duration `yaml:"call_timeout"`
	// ApprovalTimeout bounds how long a dangerous call waits for an
	// operator decision before it is denied.
	ApprovalTimeout time.Duration `yaml:"approval_timeout"`
}

// SQLConfig bounds database sessions.
type SQLConfig struct {
	QueryTimeout   time.Duration `yaml:"query_timeout"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

// GatewayConfig configures the HTTP control surface.
type GatewayConfig struct {
	// Listen is the bind address, e.g. "127.0.0.1:8641". Empty disables
	// the gateway.
	Listen string `yaml:"listen"`
}

// HistoryConfig configures conversation persistence.
type HistoryConfig struct {
	// Path of the SQLite archive. Empty disables persistence.
	Path string `yaml:"path"`
}

// AuditConfig configures the JSONL audit trail.
type AuditConfig struct {
	// Path of the audit log file. Empty disables the trail.
	Path string `yaml:"path"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is "text" or "json".
	Format string `yaml:"format"`
}

// TracingConfig configures OTLP trace export.
type TracingConfig struct {
	// Endpoint is the OTLP/HTTP collector address, host:port. Empty
	// disables export.
	Endpoint string `yaml:"endpoint"`
	Insecure bool   `yaml:"insecure"`
}

// ApplyDefaults fills unset fields in place.
func (c *Config) ApplyDefaults() {
	c.Provider.Defaults()
	if c.Loop.MaxRounds <= 0 {
		c.Loop.MaxRounds = 10
	}
	if c.Loop.Timeout <= 0 {
		c.Loop.Timeout = 5 * time.Minute
	}
	if c.Loop.CallTimeout <= 0 {
		c.Loop.CallTimeout = 60 * time.Second
	}
	if c.Loop.ApprovalTimeout <= 0 {
		c.Loop.ApprovalTimeout = 120 * time.Second
	}
	if c.SQL.QueryTimeout <= 0 {
		c.SQL.QueryTimeout = 30 * time.Second
	}
	if c.SQL.ConnectTimeout <= 0 {
		c.SQL.ConnectTimeout = 10 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}
