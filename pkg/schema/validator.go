// Package schema adapts the external JSON-Schema validator used for the
// final structural pass. The authoritative core schema ships embedded in
// the binary; validation itself is delegated to
// github.com/santhosh-tekuri/jsonschema (Draft 2020-12) and its verdicts
// are relayed unreinterpreted.
package schema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed clipse.schema.1.0.0.json
var coreSchemaJSON []byte

// coreSchemaURL is the resource name the embedded schema compiles under.
const coreSchemaURL = "https://clipse-cli.dev/schema/clipse.schema.1.0.0.json"

// Violation is one structural problem reported by the external validator,
// carrying its native instance location and message.
type Violation struct {
	// Location is the JSON Pointer of the offending instance node.
	Location string

	// Message is the validator's own description.
	Message string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Location, v.Message)
}

// Validator validates resolved documents against a compiled JSON Schema.
type Validator struct {
	schema  *jsonschema.Schema
	printer *message.Printer
}

// NewValidator compiles the embedded core schema.
func NewValidator() (*Validator, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(coreSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(coreSchemaURL, doc); err != nil {
		return nil, fmt.Errorf("failed to register schema resource: %w", err)
	}
	return compile(compiler, coreSchemaURL)
}

// NewValidatorFromFile compiles a custom schema file, overriding the
// embedded one.
func NewValidatorFromFile(path string) (*Validator, error) {
	return compile(jsonschema.NewCompiler(), path)
}

func compile(compiler *jsonschema.Compiler, url string) (*Validator, error) {
	sch, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema %s: %w", url, err)
	}
	return &Validator{
		schema:  sch,
		printer: message.NewPrinter(language.English),
	}, nil
}

// Validate marshals doc to JSON and validates it. It returns the
// validator's violations, or a non-nil error when validation could not
// run at all.
func (v *Validator) Validate(doc any) ([]Violation, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode document for validation: %w", err)
	}
	err = v.schema.Validate(instance)
	if err == nil {
		return nil, nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return nil, err
	}
	return v.flatten(ve), nil
}

// flatten collects the leaf causes of a validation error tree.
func (v *Validator) flatten(ve *jsonschema.ValidationError) []Violation {
	if len(ve.Causes) == 0 {
		return []Violation{{
			Location: "/" + strings.Join(ve.InstanceLocation, "/"),
			Message:  ve.ErrorKind.LocalizedString(v.printer),
		}}
	}
	var out []Violation
	for _, cause := range ve.Causes {
		out = append(out, v.flatten(cause)...)
	}
	return out
}
