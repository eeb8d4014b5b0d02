package resolver

import (
	"errors"
	"testing"

	"github.com/clipse-cli/clipse/pkg/document"
)

func TestMatchType(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		spec    *document.TypeSpec
		wantErr bool
	}{
		{"string ok", "hello", &document.TypeSpec{Kind: "string"}, false},
		{"string wrong", 5, &document.TypeSpec{Kind: "string"}, true},
		{"path is a string", "/tmp/x", &document.TypeSpec{Kind: "path"}, false},
		{"dir is a string", "build", &document.TypeSpec{Kind: "dir"}, false},
		{"file wrong", true, &document.TypeSpec{Kind: "file"}, true},
		{"boolean ok", true, &document.TypeSpec{Kind: "boolean"}, false},
		{"boolean wrong", "true", &document.TypeSpec{Kind: "boolean"}, true},
		{"count ok", 3, &document.TypeSpec{Kind: "count"}, false},
		{"count whole float ok", float64(3), &document.TypeSpec{Kind: "count"}, false},
		{"count negative", -1, &document.TypeSpec{Kind: "count"}, true},
		{"count fractional", 1.5, &document.TypeSpec{Kind: "count"}, true},
		{"count wrong type", "3", &document.TypeSpec{Kind: "count"}, true},
		{"enum ok", "json", &document.TypeSpec{Kind: "enum", Values: []any{"json", "text"}}, false},
		{"enum numeric match", 5, &document.TypeSpec{Kind: "enum", Values: []any{5, 7}}, false},
		{"enum wrong", "xml", &document.TypeSpec{Kind: "enum", Values: []any{"json", "text"}}, true},
		{
			"list of string ok",
			[]any{"a", "b"},
			&document.TypeSpec{Kind: "list", Of: &document.TypeSpec{Kind: "string"}},
			false,
		},
		{
			"list with bad element",
			[]any{"a", 1},
			&document.TypeSpec{Kind: "list", Of: &document.TypeSpec{Kind: "string"}},
			true,
		},
		{
			"list wrong shape",
			"a,b",
			&document.TypeSpec{Kind: "list", Of: &document.TypeSpec{Kind: "string"}},
			true,
		},
		{"unknown kind", "x", &document.TypeSpec{Kind: "tuple"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := matchType(tt.value, tt.spec)
			if (err != nil) != tt.wantErr {
				t.Errorf("matchType(%v, %s) error = %v, wantErr %v", tt.value, tt.spec, err, tt.wantErr)
			}
		})
	}
}

func TestCheckTypes_Aggregates(t *testing.T) {
	doc := &document.Document{
		Global: document.Global{
			Options: map[string]*document.Field{
				"level": {
					Type:   &document.TypeSpec{Kind: "count"},
					Value:  "high",
					Source: document.SourceCLI,
				},
				"output": {
					Type:     &document.TypeSpec{Kind: "string"},
					Required: true,
					Source:   document.SourceMissing,
				},
				"verbose": {
					Type:   &document.TypeSpec{Kind: "boolean"},
					Value:  true,
					Source: document.SourceDefault,
				},
			},
		},
	}

	err := checkTypes(doc)
	var diags Diagnostics
	if !errors.As(err, &diags) {
		t.Fatalf("expected diagnostics, got %v", err)
	}
	if len(diags) != 2 {
		t.Fatalf("expected both violations collected, got %d: %v", len(diags), diags)
	}
	if !diags.HasCode(CodeTypeMismatch) {
		t.Error("expected a type mismatch diagnostic")
	}
	if !diags.HasCode(CodeRequiredMissing) {
		t.Error("expected a required-missing diagnostic")
	}
}

func TestCheckTypes_OptionalMissingIsFine(t *testing.T) {
	doc := &document.Document{
		Global: document.Global{
			Options: map[string]*document.Field{
				"output": {
					Type:   &document.TypeSpec{Kind: "string"},
					Source: document.SourceMissing,
				},
			},
		},
	}
	if err := checkTypes(doc); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
