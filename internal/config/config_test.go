package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

const validYAML = `
provider:
  base_url: https://api.example.com/v1
  api_key: ${MATE_API_KEY:-fallback-key}
  model: gpt-4o-mini
loop:
  max_rounds: 5
gateway:
  listen: 127.0.0.1:8641
history:
  path: /tmp/mate/history.db
`

func TestLoadExpandsEnvAndAppliesDefaults(t *testing.T) {
	t.Setenv("MATE_API_KEY", "sk-from-env")

	cfg, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider.APIKey != "sk-from-env" {
		t.Errorf("api_key = %q, want env value", cfg.Provider.APIKey)
	}
	if cfg.Loop.MaxRounds != 5 {
		t.Errorf("max_rounds = %d", cfg.Loop.MaxRounds)
	}
	// Unset fields pick up defaults.
	if cfg.Loop.ApprovalTimeout != 120*time.Second {
		t.Errorf("approval_timeout default = %v", cfg.Loop.ApprovalTimeout)
	}
	if cfg.SQL.QueryTimeout != 30*time.Second {
		t.Errorf("query_timeout default = %v", cfg.SQL.QueryTimeout)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("log.level default = %q", cfg.Log.Level)
	}
}

func TestLoadUsesDefaultWhenEnvUnset(t *testing.T) {
	t.Setenv("MATE_API_KEY", "")
	os.Unsetenv("MATE_API_KEY")

	cfg, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider.APIKey != "fallback-key" {
		t.Errorf("api_key = %q, want yaml default", cfg.Provider.APIKey)
	}
}

func TestLoadRejectsUnresolvedVariable(t *testing.T) {
	t.Parallel()

	_, err := Load(writeConfig(t, "provider:\n  api_key: ${DEFINITELY_NOT_SET_ANYWHERE}\n"))
	if err == nil || !strings.Contains(err.Error(), "unresolved variable") {
		t.Fatalf("got %v, want unresolved variable error", err)
	}
}

func TestValidate(t *testing.T) {
	t.Setenv("MATE_API_KEY", "k")

	cfg, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatal(err)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	cfg.Gateway.Listen = "not-an-address"
	cfg.Log.Level = "loud"
	err = Validate(cfg)
	if err == nil {
		t.Fatal("invalid config accepted")
	}
	// All problems reported at once.
	for _, want := range []string{"gateway.listen", "log.level"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %s: %v", want, err)
		}
	}
}

func TestValidateRequiresProvider(t *testing.T) {
	t.Parallel()

	var cfg Config
	cfg.ApplyDefaults()
	if err := Validate(&cfg); err == nil {
		t.Fatal("empty provider config should fail validation")
	}
}
