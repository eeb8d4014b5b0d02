package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/clipse-cli/clipse/pkg/document"
)

func TestPipeline_EndToEnd(t *testing.T) {
	raw := map[string]any{
		"shared_defs": map[string]any{
			"vars": map[string]any{"app": "addressbook"},
			"actions": map[string]any{
				"create": map[string]any{
					"description": "create an entry in {{app}}",
					"options": map[string]any{
						"force": map[string]any{
							"kind":    "flag",
							"type":    "boolean",
							"default": false,
						},
					},
				},
			},
		},
		"objects": map[string]any{
			"foo": map[string]any{
				"description":    "manage {{id}} entries",
				"default_action": "create",
				"actions": map[string]any{
					"create": map[string]any{
						"$ref": "#/shared_defs/actions/create",
						"options": map[string]any{
							"name": map[string]any{
								"kind":     "option",
								"type":     "string",
								"required": true,
								"env":      "FOO_NAME",
							},
						},
					},
				},
			},
		},
	}

	pipeline, err := New(
		WithEnviron(MapEnviron{}),
		WithCLIValues(map[string]any{"name": "bar"}),
	)
	if err != nil {
		t.Fatalf("failed to build pipeline: %v", err)
	}

	result, err := pipeline.Resolve(context.Background(), raw)
	if err != nil {
		t.Fatalf("unexpected resolution failure: %v", err)
	}

	foo := result.Document.Objects["foo"]
	if foo == nil {
		t.Fatal("expected object foo in resolved document")
	}
	if foo.Description != "manage foo entries" {
		t.Errorf("expected variables substituted, got %q", foo.Description)
	}

	create := foo.Actions["create"]
	if create == nil {
		t.Fatal("expected action create under foo")
	}
	if create.Description != "create an entry in addressbook" {
		t.Errorf("expected blueprint description rendered, got %q", create.Description)
	}

	name := create.Options["name"]
	if name == nil {
		t.Fatal("expected use-site option name to survive the merge")
	}
	if !name.Required || name.Type == nil || name.Type.Kind != "string" {
		t.Errorf("expected name required and typed string, got %+v", name)
	}
	if name.Value != "bar" || name.Source != document.SourceCLI {
		t.Errorf("expected CLI value bar, got %v from %s", name.Value, name.Source)
	}

	force := create.Options["force"]
	if force == nil {
		t.Fatal("expected blueprint option force to be carried over")
	}
	if force.Value != false || force.Source != document.SourceDefault {
		t.Errorf("expected default false for force, got %v from %s", force.Value, force.Source)
	}

	if !result.Unions.Objects["foo"] || !result.Unions.Actions["create"] {
		t.Errorf("expected unions to contain foo and create, got %v / %v",
			result.Unions.Objects, result.Unions.Actions)
	}
}

func TestPipeline_RequiredFieldMissing(t *testing.T) {
	raw := map[string]any{
		"objects": map[string]any{
			"foo": map[string]any{
				"options": map[string]any{
					"name": map[string]any{
						"kind":     "option",
						"type":     "string",
						"required": true,
					},
				},
			},
		},
	}

	pipeline, err := New(WithEnviron(MapEnviron{}))
	if err != nil {
		t.Fatalf("failed to build pipeline: %v", err)
	}

	_, err = pipeline.Resolve(context.Background(), raw)
	var diags Diagnostics
	if !errors.As(err, &diags) {
		t.Fatalf("expected diagnostics, got %v", err)
	}
	if !diags.HasCode(CodeRequiredMissing) {
		t.Errorf("expected a required-missing diagnostic, got %v", diags)
	}
}

func TestPipeline_InvalidDefaultHaltsBeforeValues(t *testing.T) {
	raw := map[string]any{
		"objects": map[string]any{
			"foo": map[string]any{
				"default_action": "missing_id",
			},
		},
	}

	pipeline, err := New(WithEnviron(MapEnviron{}))
	if err != nil {
		t.Fatalf("failed to build pipeline: %v", err)
	}

	_, err = pipeline.Resolve(context.Background(), raw)
	var diags Diagnostics
	if !errors.As(err, &diags) {
		t.Fatalf("expected diagnostics, got %v", err)
	}
	if !diags.HasCode(CodeInvalidDefault) {
		t.Fatalf("expected an invalid-default diagnostic, got %v", diags)
	}
	if diags[0].Scope != "objects.foo" || diags[0].Value != "missing_id" {
		t.Errorf("expected the diagnostic to name objects.foo and missing_id, got %+v", diags[0])
	}
}

func TestPipeline_EnvOverridePrecedence(t *testing.T) {
	raw := map[string]any{
		"global": map[string]any{
			"options": map[string]any{
				"retries": map[string]any{
					"kind": "option",
					"type": "count",
					"env": map[string]any{
						"var":          "RETRIES",
						"override_cli": true,
					},
				},
			},
		},
	}

	pipeline, err := New(
		WithEnviron(MapEnviron{"RETRIES": "5"}),
		WithCLIValues(map[string]any{"retries": 7}),
	)
	if err != nil {
		t.Fatalf("failed to build pipeline: %v", err)
	}

	result, err := pipeline.Resolve(context.Background(), raw)
	if err != nil {
		t.Fatalf("unexpected resolution failure: %v", err)
	}
	retries := result.Document.Global.Options["retries"]
	if retries.Value != 5 || retries.Source != document.SourceEnvOverride {
		t.Errorf("expected env value 5 to win, got %v from %s", retries.Value, retries.Source)
	}
}
