package resolver

import (
	"testing"

	"github.com/clipse-cli/clipse/pkg/document"
)

func countType() *document.TypeSpec {
	return &document.TypeSpec{Kind: "count"}
}

func TestResolveValues_Precedence(t *testing.T) {
	tests := []struct {
		name       string
		field      *document.Field
		cli        map[string]any
		env        MapEnviron
		wantValue  any
		wantSource document.ValueSource
	}{
		{
			name: "env override beats cli",
			field: &document.Field{
				Type: countType(),
				Env:  &document.EnvBinding{Var: "X", OverrideCLI: true},
			},
			cli:        map[string]any{"retries": 7},
			env:        MapEnviron{"X": "5"},
			wantValue:  5,
			wantSource: document.SourceEnvOverride,
		},
		{
			name: "cli beats plain env",
			field: &document.Field{
				Type: countType(),
				Env:  &document.EnvBinding{Var: "X"},
			},
			cli:        map[string]any{"retries": 7},
			env:        MapEnviron{"X": "5"},
			wantValue:  7,
			wantSource: document.SourceCLI,
		},
		{
			name: "env when no cli value",
			field: &document.Field{
				Type: countType(),
				Env:  &document.EnvBinding{Var: "X"},
			},
			env:        MapEnviron{"X": "5"},
			wantValue:  5,
			wantSource: document.SourceEnv,
		},
		{
			name: "override flag set but env unset falls through to cli",
			field: &document.Field{
				Type: countType(),
				Env:  &document.EnvBinding{Var: "X", OverrideCLI: true},
			},
			cli:        map[string]any{"retries": 7},
			env:        MapEnviron{},
			wantValue:  7,
			wantSource: document.SourceCLI,
		},
		{
			name: "default when nothing supplied",
			field: &document.Field{
				Type:    countType(),
				Default: 3,
			},
			env:        MapEnviron{},
			wantValue:  3,
			wantSource: document.SourceDefault,
		},
		{
			name:       "missing is not an error",
			field:      &document.Field{Type: countType()},
			env:        MapEnviron{},
			wantValue:  nil,
			wantSource: document.SourceMissing,
		},
		{
			name: "boolean env value coerced",
			field: &document.Field{
				Type: &document.TypeSpec{Kind: "boolean"},
				Env:  &document.EnvBinding{Var: "FLAG"},
			},
			env:        MapEnviron{"FLAG": "true"},
			wantValue:  true,
			wantSource: document.SourceEnv,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := &document.Document{
				Global: document.Global{
					Options: map[string]*document.Field{"retries": tt.field},
				},
			}
			if err := resolveValues(doc, tt.cli, tt.env); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.field.Value != tt.wantValue {
				t.Errorf("expected value %v (%T), got %v (%T)", tt.wantValue, tt.wantValue, tt.field.Value, tt.field.Value)
			}
			if tt.field.Source != tt.wantSource {
				t.Errorf("expected source %s, got %s", tt.wantSource, tt.field.Source)
			}
		})
	}
}

func TestResolveValues_EnvUpdateWriteback(t *testing.T) {
	env := MapEnviron{}
	doc := &document.Document{
		Global: document.Global{
			Options: map[string]*document.Field{
				"retries": {
					Type: countType(),
					Env:  &document.EnvBinding{Var: "RETRIES", Update: true},
				},
			},
		},
	}

	if err := resolveValues(doc, map[string]any{"retries": 7}, env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, ok := env["RETRIES"]; !ok || got != "7" {
		t.Errorf("expected the resolved value written back to RETRIES, got %q (set=%v)", got, ok)
	}
}

func TestResolveValues_NoWritebackWhenMissing(t *testing.T) {
	env := MapEnviron{}
	doc := &document.Document{
		Global: document.Global{
			Options: map[string]*document.Field{
				"retries": {
					Type: countType(),
					Env:  &document.EnvBinding{Var: "RETRIES", Update: true},
				},
			},
		},
	}

	if err := resolveValues(doc, nil, env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := env["RETRIES"]; ok {
		t.Error("expected no write-back for a missing value")
	}
}
