package tool

import (
	"encoding/json"
	"regexp"

	"github.com/google/uuid"
)

// blockPattern recognizes fenced JSON tool-call blocks in model output.
// The object must not itself contain a backtick, which keeps the scan from
// swallowing adjacent fences.
var blockPattern = regexp.MustCompile("```json\\s*(\\{[^`]*\\})\\s*```")

// ParseError records one malformed block encountered during extraction.
// Malformed blocks never abort the scan of the remaining text.
type ParseError struct {
	// Block is the raw text of the offending block.
	Block string
	// Err is the underlying decode failure.
	Err error
}

func (e ParseError) Error() string {
	return "tool: malformed tool-call block: " + e.Err.Error()
}

// callEnvelope is the wire shape of one tool-call block.
type callEnvelope struct {
	Tool       string         `json:"tool"`
	Parameters map[string]any `json:"parameters"`
}

// Extract scans model-generated text for tool-call blocks and returns the
// well-formed calls in left-to-right source order — the order they will be
// executed in. Extraction is a pure parse step: nothing is validated
// against the registry here, so a call naming an unknown tool is still
// returned and settles as an unknown-tool failure at execution, giving the
// model a signal instead of silence.
func Extract(text string) ([]Call, []ParseError) {
	var calls []Call
	var errs []ParseError

	for _, match := range blockPattern.FindAllStringSubmatch(text, -1) {
		raw := match[1]

		var env callEnvelope
		if err := json.Unmarshal([]byte(raw), &env); err != nil {
			errs = append(errs, ParseError{Block: raw, Err: err})
			continue
		}
		if env.Tool == "" {
			// A JSON object without a tool field is model prose, not a
			// call. Skip it silently like any other non-call block.
			continue
		}

		params := env.Parameters
		if params == nil {
			params = map[string]any{}
		}

		calls = append(calls, Call{
			ID:     uuid.NewString(),
			Tool:   env.Tool,
			Params: params,
			Raw:    raw,
		})
	}

	return calls, errs
}
