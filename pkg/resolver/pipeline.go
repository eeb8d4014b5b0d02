package resolver

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/clipse-cli/clipse/pkg/document"
	"github.com/clipse-cli/clipse/pkg/schema"
	"github.com/clipse-cli/clipse/pkg/telemetry"
)

// Pipeline runs the eight resolution stages over a raw document:
// reference expansion, variable substitution, union building, default
// validation, value precedence resolution, type checking, constraint
// checking, and the external schema pass.
//
// A pipeline is safe to reuse across documents but runs one resolution at
// a time: value resolution writes to the environment and concurrent
// invocations sharing the process environment would observe each other.
type Pipeline struct {
	env    Environ
	cli    map[string]any
	schema *schema.Validator
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithEnviron substitutes the environment implementation. Defaults to the
// process environment.
func WithEnviron(env Environ) Option {
	return func(p *Pipeline) { p.env = env }
}

// WithCLIValues supplies the field-id to value mapping produced by the
// argument parser for the current invocation.
func WithCLIValues(values map[string]any) Option {
	return func(p *Pipeline) { p.cli = values }
}

// WithSchemaValidator substitutes the final-pass schema validator.
// Defaults to the embedded core schema.
func WithSchemaValidator(v *schema.Validator) Option {
	return func(p *Pipeline) { p.schema = v }
}

// New creates a pipeline. Without options it reads the process
// environment, sees no CLI values, and validates against the embedded
// core schema.
func New(opts ...Option) (*Pipeline, error) {
	p := &Pipeline{env: OSEnviron{}}
	for _, opt := range opts {
		opt(p)
	}
	if p.schema == nil {
		v, err := schema.NewValidator()
		if err != nil {
			return nil, err
		}
		p.schema = v
	}
	return p, nil
}

// Result is the outcome of a successful resolution.
type Result struct {
	// Document is the fully resolved, validated document.
	Document *document.Document

	// Unions are the complete object and action id sets.
	Unions *Unions

	// RunID identifies this resolution in logs.
	RunID string
}

// Resolve runs the full pipeline. The returned error, when non-nil, is
// either a Diagnostics value aggregating the failing stage's problems or
// a plain error for I/O-level failures.
func (p *Pipeline) Resolve(ctx context.Context, raw map[string]any) (*Result, error) {
	runID := uuid.New().String()
	log := telemetry.FromContext(ctx).NewComponentLogger("resolver").WithRunID(runID)

	log.WithStage("references").Debug("expanding $ref blueprints")
	tree, usedRefs, err := resolveRefs(raw)
	if err != nil {
		return nil, err
	}

	log.WithStage("variables").Debug("substituting variables")
	tree, err = resolveVars(tree)
	if err != nil {
		return nil, err
	}

	doc, err := document.Decode(tree)
	if err != nil {
		return nil, err
	}

	log.WithStage("unions").Debug("building object and action unions")
	unions := buildUnions(doc, usedRefs)
	log.WithStage("unions").Debugf("%d objects, %d actions", len(unions.Objects), len(unions.Actions))

	log.WithStage("defaults").Debug("validating default references")
	if err := validateDefaults(doc, unions); err != nil {
		return nil, err
	}

	log.WithStage("values").Debug("applying value precedence")
	if err := resolveValues(doc, p.cli, p.env); err != nil {
		return nil, err
	}

	log.WithStage("types").Debug("checking declared types")
	if err := checkTypes(doc); err != nil {
		return nil, err
	}

	log.WithStage("constraints").Debug("evaluating constraints")
	if err := checkConstraints(doc); err != nil {
		return nil, err
	}

	log.WithStage("schema").Debug("running external schema validation")
	violations, err := p.schema.Validate(doc)
	if err != nil {
		return nil, fmt.Errorf("schema validation could not run: %w", err)
	}
	if len(violations) > 0 {
		var diags Diagnostics
		for _, viol := range violations {
			diags = append(diags, &Diagnostic{
				Code:    CodeSchemaValidation,
				Scope:   viol.Location,
				Message: viol.Message,
			})
		}
		return nil, diags
	}

	log.Info("document resolved")
	return &Result{Document: doc, Unions: unions, RunID: runID}, nil
}
