package config

import (
	"errors"
	"fmt"
	"net"
)

// Validate checks the structural validity of a Config. All problems are
// reported at once rather than one per run.
func Validate(cfg *Config) error {
	var errs []error

	if err := cfg.Provider.Validate(); err != nil {
		errs = append(errs, err)
	}

	if cfg.Loop.MaxRounds < 0 {
		errs = append(errs, errors.New("config: loop.max_rounds must not be negative"))
	}
	for _, d := range []struct {
		name  string
		value int64
	}{
		{"loop.timeout", int64(cfg.Loop.Timeout)},
		{"loop.call_timeout", int64(cfg.Loop.CallTimeout)},
		{"loop.approval_timeout", int64(cfg.Loop.ApprovalTimeout)},
		{"sql.query_timeout", int64(cfg.SQL.QueryTimeout)},
		{"sql.connect_timeout", int64(cfg.SQL.ConnectTimeout)},
	} {
		if d.value < 0 {
			errs = append(errs, fmt.Errorf("config: %s must not be negative", d.name))
		}
	}

	if cfg.Gateway.Listen != "" {
		if _, _, err := net.SplitHostPort(cfg.Gateway.Listen); err != nil {
			errs = append(errs, fmt.Errorf("config: gateway.listen %q is not host:port: %w", cfg.Gateway.Listen, err))
		}
	}

	switch cfg.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("config: log.level %q is not one of debug, info, warn, error", cfg.Log.Level))
	}
	switch cfg.Log.Format {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("config: log.format %q is not one of text, json", cfg.Log.Format))
	}

	return errors.Join(errs...)
}
