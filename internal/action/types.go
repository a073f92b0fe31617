// Package action defines the typed, parameterized side effects a rule runs
// when its condition tree matches, the registry of action types, and the
// executor that dispatches an ordered action list.
package action

// Action is one entry in a rule's action list. Type must name a registered
// action type; Parameters carries the handler's inputs as literal scalars.
type Action struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// Status is the outcome of one executed action.
type Status string

const (
	StatusSucceeded Status = "SUCCEEDED"
	StatusFailed    Status = "FAILED"
)

// Result records the outcome of one action dispatch.
type Result struct {
	ActionID string `json:"actionId"`
	Status   Status `json:"status"`
	Error    string `json:"error,omitempty"`
}

// Failed reports whether the result records a failure.
func (r Result) Failed() bool { return r.Status == StatusFailed }

// ParamKind is the scalar kind of a declared parameter.
type ParamKind string

const (
	KindString  ParamKind = "string"
	KindNumber  ParamKind = "number"
	KindBoolean ParamKind = "boolean"
)

// ParamSpec declares one parameter of an action type.
type ParamSpec struct {
	Required bool      `json:"required"`
	Kind     ParamKind `json:"kind"`
}
