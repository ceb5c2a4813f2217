package tool

import "errors"

// Kind classifies how a call failed. The surrounding application and the
// model branch on the kind; the message is for display only.
type Kind string

// Failure kinds, mirrored into Result.Kind on every failed call.
const (
	KindNone             Kind = ""
	KindParseError       Kind = "parse_error"
	KindUnknownTool      Kind = "unknown_tool"
	KindValidation       Kind = "validation_error"
	KindPermissionDenied Kind = "permission_denied"
	KindExecution        Kind = "execution_error"
	KindWriteRejected    Kind = "write_operation_rejected"
	KindTimeout          Kind = "timeout_error"
	KindConnection       Kind = "connection_error"
)

var (
	// ErrEmptyToolName is returned when registering a tool without a name.
	ErrEmptyToolName = errors.New("tool name must not be empty")

	// ErrDuplicateTool is returned when a name is registered twice.
	ErrDuplicateTool = errors.New("tool already registered")

	// ErrUnknownTool is returned when a call names an unregistered tool.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrDenied is returned when the operator rejects a dangerous call.
	ErrDenied = errors.New("denied by operator")

	// ErrDecisionTimeout is returned when no decision arrives for a
	// pending dangerous call before the gate's deadline.
	ErrDecisionTimeout = errors.New("approval decision timed out")

	// ErrGateBusy is returned when a second dangerous call reaches the
	// gate while a decision is already pending.
	ErrGateBusy = errors.New("another approval is already pending")
)
