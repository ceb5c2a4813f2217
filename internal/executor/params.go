package executor

import (
	"fmt"

	"github.com/matehq/mate/internal/tool"
)

// validateParams checks call parameters against the definition before any
// side effect: required parameters present, declared types respected.
// Undeclared parameters are rejected so a typo never passes silently.
func validateParams(def tool.Definition, params map[string]any) error {
	declared := make(map[string]tool.Param, len(def.Params))
	for _, p := range def.Params {
		declared[p.Name] = p
	}

	for _, p := range def.Params {
		v, ok := params[p.Name]
		if !ok {
			if p.Required {
				return fmt.Errorf("executor: missing required parameter %q", p.Name)
			}
			continue
		}
		if err := checkType(p, v); err != nil {
			return err
		}
	}

	for name := range params {
		if _, ok := declared[name]; !ok {
			return fmt.Errorf("executor: unknown parameter %q for tool %s", name, def.Name)
		}
	}
	return nil
}

func checkType(p tool.Param, v any) error {
	switch p.Type {
	case tool.ParamString:
		if _, ok := v.(string); !ok {
			return fmt.Errorf("executor: parameter %q must be a string", p.Name)
		}
	case tool.ParamNumber:
		// JSON numbers decode as float64.
		if _, ok := v.(float64); !ok {
			return fmt.Errorf("executor: parameter %q must be a number", p.Name)
		}
	case tool.ParamBoolean:
		if _, ok := v.(bool); !ok {
			return fmt.Errorf("executor: parameter %q must be a boolean", p.Name)
		}
	}
	return nil
}

// stringParam returns a validated string parameter. Validation already ran,
// so absence of an optional parameter yields the zero value.
func stringParam(params map[string]any, name string) string {
	s, _ := params[name].(string)
	return s
}

func boolParam(params map[string]any, name string) bool {
	b, _ := params[name].(bool)
	return b
}
