package tool

import "fmt"

// Result is the uniform outcome record of a settled call. Every accepted
// call yields exactly one Result before the loop proceeds.
type Result struct {
	Tool    string `json:"tool"`
	Success bool   `json:"success"`
	Output  string `json:"output,omitempty"`
	Error   string `json:"error,omitempty"`
	Kind    Kind   `json:"kind,omitempty"`
	// SideEffect describes an externally visible action the engine cannot
	// observe past the handoff, e.g. "opened URL".
	SideEffect string `json:"side_effect,omitempty"`
}

// Ok builds a success result.
func Ok(toolName, output string) Result {
	return Result{Tool: toolName, Success: true, Output: output}
}

// Fail builds a failure result with a classified kind.
func Fail(toolName string, kind Kind, err error) Result {
	return Result{Tool: toolName, Success: false, Kind: kind, Error: err.Error()}
}

// Markdown renders the result as the hidden feedback turn appended to the
// conversation so the model can react on its next turn.
func (r Result) Markdown() string {
	if r.Success {
		out := r.Output
		if out == "" {
			out = "(no output)"
		}
		return fmt.Sprintf("✅ **%s** succeeded:\n```\n%s\n```", r.Tool, out)
	}
	return fmt.Sprintf("❌ **%s** failed (%s):\n```\n%s\n```", r.Tool, r.Kind, r.Error)
}
