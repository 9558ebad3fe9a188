package models

// ErrorResponse is the JSON body of every failed API request.
// Kind is set for script failures only.
type ErrorResponse struct {
	Kind    ScriptErrorKind `json:"kind,omitempty"`
	Message string          `json:"message"`
}
