package models

import "fmt"

// ScriptErrorKind classifies why a node script did not produce a result.
type ScriptErrorKind string

const (
	// ScriptErrorSyntax: the script failed to compile and was never run.
	ScriptErrorSyntax ScriptErrorKind = "syntax"
	// ScriptErrorRuntime: the script compiled but raised while running.
	ScriptErrorRuntime ScriptErrorKind = "runtime"
	// ScriptErrorTimeout: the script ran out of its wall-clock budget.
	ScriptErrorTimeout ScriptErrorKind = "timeout"
	// ScriptErrorCanceled: the caller's context was canceled mid-run.
	ScriptErrorCanceled ScriptErrorKind = "canceled"
	// ScriptErrorHost: the harness itself failed (bad input shape, interpreter failure).
	ScriptErrorHost ScriptErrorKind = "host"
)

// ScriptError is the only error type returned by the script sandbox.
type ScriptError struct {
	Kind    ScriptErrorKind `json:"kind"`
	Message string          `json:"message"`
	Err     error           `json:"-"`
}

// NewScriptError builds a ScriptError with a formatted message.
func NewScriptError(kind ScriptErrorKind, cause error, format string, args ...any) *ScriptError {
	return &ScriptError{Kind: kind, Message: fmt.Sprintf(format, args...), Err: cause}
}

func (e *ScriptError) Error() string {
	switch e.Kind {
	case ScriptErrorSyntax:
		return "Syntax Error: " + e.Message
	case ScriptErrorRuntime:
		return "Runtime Error: " + e.Message
	case ScriptErrorTimeout:
		return "Timeout: " + e.Message
	case ScriptErrorCanceled:
		return "Canceled: " + e.Message
	default:
		return "Sandbox Failure: " + e.Message
	}
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match a ScriptError against the kind sentinels in errors.go.
func (e *ScriptError) Is(target error) bool {
	return kindSentinel(e.Kind) == target
}

func kindSentinel(kind ScriptErrorKind) error {
	switch kind {
	case ScriptErrorSyntax:
		return ErrScriptSyntax
	case ScriptErrorRuntime:
		return ErrScriptRuntime
	case ScriptErrorTimeout:
		return ErrScriptTimeout
	case ScriptErrorCanceled:
		return ErrScriptCanceled
	default:
		return ErrScriptHost
	}
}

// NodeData is the part of a story node the sandbox reads.
type NodeData struct {
	URL         string   `json:"url"`
	Description string   `json:"description"`
	Choices     []Choice `json:"choices"`
}

// ScriptResult is what a successful script run hands back to the editor.
type ScriptResult struct {
	URL               string          `json:"url"`
	Description       string          `json:"description"`
	PlayerData        PlayerData      `json:"player_data"`
	ChoicesVisibility map[string]bool `json:"choices_visibility"`
}

// VisibleChoices returns the node's choices the result left visible, keeping node order.
func (r *ScriptResult) VisibleChoices(choices []Choice) []Choice {
	visible := make([]Choice, 0, len(choices))
	for _, c := range choices {
		if shown, ok := r.ChoicesVisibility[c.ID]; ok && !shown {
			continue
		}
		visible = append(visible, c)
	}
	return visible
}
