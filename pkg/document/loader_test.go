package document

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to chdir to %s: %v", dir, err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatalf("failed to restore working directory: %v", err)
		}
	})
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name:    "json by extension",
			file:    "config.json",
			content: `{"objects": {"address": {"description": "postal"}}}`,
		},
		{
			name: "yaml by extension",
			file: "config.yaml",
			content: `
objects:
  address:
    description: postal
`,
		},
		{
			name:    "json sniffed without extension",
			file:    "clipse",
			content: `{"objects": {"address": {"description": "postal"}}}`,
		},
		{
			name: "yaml sniffed without extension",
			file: ".clipse",
			content: `
objects:
  address:
    description: postal
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)
			raw, err := Load(path)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			objects, ok := raw["objects"].(map[string]any)
			if !ok {
				t.Fatalf("expected objects mapping, got %#v", raw["objects"])
			}
			if _, ok := objects["address"]; !ok {
				t.Error("expected address object in parsed tree")
			}
		})
	}
}

func TestLoad_Invalid(t *testing.T) {
	path := writeFile(t, "config.json", `{"objects": `)
	if _, err := Load(path); err == nil {
		t.Error("expected an error for truncated JSON")
	}
}

func TestLoadReader(t *testing.T) {
	raw, err := LoadReader(strings.NewReader(`{"actions": {"list": {}}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := raw["actions"]; !ok {
		t.Error("expected actions key in parsed tree")
	}
}

func TestDiscover(t *testing.T) {
	t.Run("env var wins", func(t *testing.T) {
		path := writeFile(t, "from-env.json", `{}`)
		t.Setenv(EnvConfigPath, path)
		got, err := Discover("explicit-path")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != path {
			t.Errorf("expected env path %s, got %s", path, got)
		}
	})

	t.Run("explicit path when env unset", func(t *testing.T) {
		t.Setenv(EnvConfigPath, "")
		got, err := Discover("explicit-path")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "explicit-path" {
			t.Errorf("expected explicit path, got %s", got)
		}
	})

	t.Run("local candidate fallback", func(t *testing.T) {
		t.Setenv(EnvConfigPath, "")
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, ".clipse"), []byte(`{}`), 0o644); err != nil {
			t.Fatal(err)
		}
		chdir(t, dir)
		got, err := Discover("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != ".clipse" {
			t.Errorf("expected .clipse, got %s", got)
		}
	})

	t.Run("nothing found", func(t *testing.T) {
		t.Setenv(EnvConfigPath, "")
		chdir(t, t.TempDir())
		if _, err := Discover(""); err == nil {
			t.Error("expected an error when no config exists")
		}
	})
}

func TestDecode_ShortAndStructuredForms(t *testing.T) {
	raw := map[string]any{
		"global": map[string]any{
			"options": map[string]any{
				"output": map[string]any{
					"kind": "option",
					"type": "string",
					"env":  "APP_OUTPUT",
				},
				"retries": map[string]any{
					"kind": "option",
					"type": map[string]any{"kind": "count"},
					"env": map[string]any{
						"var":          "APP_RETRIES",
						"override_cli": true,
						"update":       true,
					},
				},
				"tags": map[string]any{
					"kind": "option",
					"type": map[string]any{
						"kind": "list",
						"of":   "string",
					},
				},
			},
		},
	}

	doc, err := Decode(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := doc.Global.Options["output"]
	if output.Env == nil || output.Env.Var != "APP_OUTPUT" || output.Env.OverrideCLI {
		t.Errorf("expected bare env form to normalize with flags off, got %+v", output.Env)
	}
	if output.Type == nil || output.Type.Kind != "string" {
		t.Errorf("expected bare type form to normalize, got %+v", output.Type)
	}

	retries := doc.Global.Options["retries"]
	if retries.Env == nil || !retries.Env.OverrideCLI || !retries.Env.Update {
		t.Errorf("expected structured env form preserved, got %+v", retries.Env)
	}

	tags := doc.Global.Options["tags"]
	if tags.Type == nil || tags.Type.Kind != "list" || tags.Type.Of == nil || tags.Type.Of.Kind != "string" {
		t.Errorf("expected nested list type, got %+v", tags.Type)
	}
}

func TestDecode_RejectsBadKind(t *testing.T) {
	raw := map[string]any{
		"global": map[string]any{
			"options": map[string]any{
				"output": map[string]any{"kind": "switch"},
			},
		},
	}
	if _, err := Decode(raw); err == nil {
		t.Error("expected an error for an unknown field kind")
	}
}

func TestTypeSpecString(t *testing.T) {
	spec := &TypeSpec{Kind: "list", Of: &TypeSpec{Kind: "enum"}}
	if got := spec.String(); got != "list of enum" {
		t.Errorf("expected 'list of enum', got %q", got)
	}
}
