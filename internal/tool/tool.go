// Package tool defines the capability model for the agent engine: tool
// definitions, the registry, the tool-call extractor, and the confirmation
// gate. Tools are the engine's security boundary — every action the model
// requests passes through a registered definition, and dangerous definitions
// never execute without an explicit operator decision.
package tool

import (
	"fmt"
	"strings"
)

// ParamType is the declared type of a tool parameter.
type ParamType string

// Parameter types accepted in tool-call blocks.
const (
	ParamString  ParamType = "string"
	ParamNumber  ParamType = "number"
	ParamBoolean ParamType = "boolean"
)

// Param declares one parameter of a tool.
type Param struct {
	Name        string
	Type        ParamType
	Description string
	Required    bool
}

// Definition describes a capability the engine can perform. Definitions are
// registered once at startup and never mutated afterwards.
type Definition struct {
	Name        string
	Description string
	Params      []Param
	// Dangerous marks tools whose side effects are irreversible enough to
	// require an operator decision before every execution.
	Dangerous bool
}

// Call is one requested invocation extracted from model output.
type Call struct {
	// ID uniquely identifies this call for the confirmation gate.
	ID string
	// Tool is the requested tool name; it may be unregistered, in which
	// case execution settles as an unknown-tool failure.
	Tool string
	// Params maps parameter names to JSON-decoded values.
	Params map[string]any
	// Raw is the source JSON block the call was extracted from.
	Raw string
}

// String returns a compact human-readable form used in logs and prompts.
func (c Call) String() string {
	if len(c.Params) == 0 {
		return c.Tool + "()"
	}
	parts := make([]string, 0, len(c.Params))
	for k, v := range c.Params {
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	return c.Tool + "(" + strings.Join(parts, ", ") + ")"
}
