package harness

import (
	"github.com/roach88/inkir/internal/ir"
	"github.com/roach88/inkir/internal/metadata"
)

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	Pass bool `json:"pass"`

	// Contract is the assembled IR, nil when the build failed.
	Contract *ir.Contract `json:"-"`

	// Document is the metadata document, nil when the build failed.
	Document *metadata.Document `json:"-"`

	// BuildError is the build failure, if any.
	BuildError string `json:"build_error,omitempty"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Spec returns the built ContractSpec, or nil.
func (r *Result) Spec() *metadata.ContractSpec {
	if r.Document == nil {
		return nil
	}
	return r.Document.Spec
}
