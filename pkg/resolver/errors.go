package resolver

import (
	"fmt"
	"strings"
)

// Code classifies a diagnostic by the kind of problem it reports.
type Code string

const (
	// CodeUnresolvedReference reports a $ref whose target does not exist.
	CodeUnresolvedReference Code = "unresolved_reference"

	// CodeReferenceCycle reports a $ref chain exceeding the depth bound.
	CodeReferenceCycle Code = "reference_cycle"

	// CodeUndefinedVariable reports a {{...}} path with no definition.
	CodeUndefinedVariable Code = "undefined_variable"

	// CodeVariableCycle reports variable expansion that never stabilizes.
	CodeVariableCycle Code = "variable_cycle"

	// CodeInvalidDefault reports a default_action/default_object naming an
	// id outside the resolved union.
	CodeInvalidDefault Code = "invalid_default"

	// CodeTypeMismatch reports a resolved value violating its declared type.
	CodeTypeMismatch Code = "type_mismatch"

	// CodeRequiredMissing reports a required field with no resolved value.
	CodeRequiredMissing Code = "required_missing"

	// CodeConstraintViolation reports a failed cross-field constraint.
	CodeConstraintViolation Code = "constraint_violation"

	// CodeUnknownConstraintTarget reports a constraint naming an id absent
	// from its scope.
	CodeUnknownConstraintTarget Code = "unknown_constraint_target"

	// CodeSchemaValidation reports a structural violation from the external
	// JSON-Schema validator.
	CodeSchemaValidation Code = "schema_validation"
)

// Diagnostic is a single structured problem report. Every diagnostic
// carries enough context to point at the offending location in the
// original document.
type Diagnostic struct {
	// Code is the problem classification.
	Code Code `json:"code"`

	// Scope is the dotted path of the enclosing scope, e.g.
	// "objects.address.actions.create".
	Scope string `json:"scope,omitempty"`

	// Field is the offending field or constraint target id.
	Field string `json:"field,omitempty"`

	// Value is the offending value, pointer or expression.
	Value any `json:"value,omitempty"`

	// Chain is the full visited path for cycle diagnostics.
	Chain []string `json:"chain,omitempty"`

	// Message is the human-readable description.
	Message string `json:"message"`

	// Err is the underlying error, if any.
	Err error `json:"-"`
}

// Error implements the error interface.
func (d *Diagnostic) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]", d.Code)
	if d.Scope != "" {
		fmt.Fprintf(&b, " %s", d.Scope)
	}
	if d.Field != "" {
		fmt.Fprintf(&b, " field=%s", d.Field)
	}
	fmt.Fprintf(&b, ": %s", d.Message)
	if len(d.Chain) > 0 {
		fmt.Fprintf(&b, " (chain: %s)", strings.Join(d.Chain, " -> "))
	}
	return b.String()
}

// Unwrap returns the underlying error for error chain inspection.
func (d *Diagnostic) Unwrap() error {
	return d.Err
}

// Is matches diagnostics by code, so callers can probe with
// errors.Is(err, &Diagnostic{Code: CodeTypeMismatch}).
func (d *Diagnostic) Is(target error) bool {
	t, ok := target.(*Diagnostic)
	if !ok {
		return false
	}
	return d.Code == t.Code
}

// Diagnostics is the aggregated failure report of one pipeline stage.
type Diagnostics []*Diagnostic

// Error implements the error interface.
func (ds Diagnostics) Error() string {
	switch len(ds) {
	case 0:
		return "no diagnostics"
	case 1:
		return ds[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d problems:", len(ds))
	for _, d := range ds {
		fmt.Fprintf(&b, "\n  - %s", d.Error())
	}
	return b.String()
}

// HasCode reports whether any diagnostic carries the given code.
func (ds Diagnostics) HasCode(code Code) bool {
	for _, d := range ds {
		if d.Code == code {
			return true
		}
	}
	return false
}

// errOrNil converts an empty slice to a nil error so stages can return
// their collected diagnostics unconditionally.
func (ds Diagnostics) errOrNil() error {
	if len(ds) == 0 {
		return nil
	}
	return ds
}
