package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Placeholders follow shell substitution syntax: ${NAME} requires the
// variable to be set, ${NAME:-fallback} substitutes the fallback when it
// is not.
var placeholder = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-[^}]*)?\}`)

// Load reads the YAML file at path, substitutes environment placeholders,
// decodes it, and fills defaults. Validation is a separate step so callers
// can inspect a structurally complete Config even when it would not pass.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	expanded, err := interpolate(string(raw))
	if err != nil {
		return nil, fmt.Errorf("config: expanding variables in %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// interpolate substitutes every placeholder in raw, collecting all
// unresolved names so the operator sees the whole list in one error
// instead of fixing them one run at a time.
func interpolate(raw string) (string, error) {
	var missing []error

	out := placeholder.ReplaceAllStringFunc(raw, func(match string) string {
		sub := placeholder.FindStringSubmatch(match)
		name, fallback := sub[1], sub[2]

		if value, ok := os.LookupEnv(name); ok {
			return value
		}
		if fallback != "" {
			return strings.TrimPrefix(fallback, ":-")
		}

		missing = append(missing, fmt.Errorf("unresolved variable: %s", name))
		return match
	})

	return out, errors.Join(missing...)
}
