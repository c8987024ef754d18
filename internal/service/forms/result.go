package forms

import "github.com/nartaq/forms-service/internal/validation"

// Result is the uniform envelope returned by every action in the pipeline,
// regardless of submission kind.
type Result struct {
	Success bool                   `json:"success"`
	Data    interface{}            `json:"data,omitempty"`
	Error   string                 `json:"error,omitempty"`
	Details []validation.Violation `json:"details,omitempty"`
}

func ok(data interface{}) *Result {
	return &Result{Success: true, Data: data}
}

func fail(msg string) *Result {
	return &Result{Success: false, Error: msg}
}

func invalid(vs []validation.Violation) *Result {
	return &Result{Success: false, Error: "Validation failed", Details: vs}
}
