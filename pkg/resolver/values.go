package resolver

import (
	"fmt"
	"strconv"

	"github.com/clipse-cli/clipse/pkg/document"
)

// resolveValues computes the final value of every option and positional
// using the precedence rules, first match wins:
//
//  1. env when override_cli is set and the variable is present
//  2. the CLI-supplied value for the field id
//  3. env when the variable is present
//  4. the declared default
//  5. missing (deferred to the type and constraint checks)
//
// When env.update is set, the finalized value is written back through env
// once per field. Fields are processed sequentially so environment writes
// never race with later reads.
func resolveValues(doc *document.Document, cli map[string]any, env Environ) error {
	for _, sc := range collectScopes(doc) {
		for _, id := range sc.fieldIDs() {
			if err := resolveField(id, sc.fields[id], cli, env); err != nil {
				return fmt.Errorf("scope %s: %w", sc.path, err)
			}
		}
	}
	return nil
}

func resolveField(id string, f *document.Field, cli map[string]any, env Environ) error {
	f.Value, f.Source = pickValue(id, f, cli, env)
	if f.Env != nil && f.Env.Update && f.HasValue() {
		if err := env.Set(f.Env.Var, fmt.Sprintf("%v", f.Value)); err != nil {
			return fmt.Errorf("field %s: env update of %s failed: %w", id, f.Env.Var, err)
		}
	}
	return nil
}

func pickValue(id string, f *document.Field, cli map[string]any, env Environ) (any, document.ValueSource) {
	if f.Env != nil && f.Env.OverrideCLI {
		if raw, ok := env.Lookup(f.Env.Var); ok {
			return coerceString(raw, f.Type), document.SourceEnvOverride
		}
	}
	if v, ok := cli[id]; ok {
		return coerceValue(v, f.Type), document.SourceCLI
	}
	if f.Env != nil {
		if raw, ok := env.Lookup(f.Env.Var); ok {
			return coerceString(raw, f.Type), document.SourceEnv
		}
	}
	if f.Default != nil {
		return f.Default, document.SourceDefault
	}
	return nil, document.SourceMissing
}

// coerceValue converts string inputs to the declared type's representation
// where the conversion is exact; anything else passes through for the type
// checker to judge.
func coerceValue(v any, t *document.TypeSpec) any {
	if s, ok := v.(string); ok {
		return coerceString(s, t)
	}
	return v
}

func coerceString(s string, t *document.TypeSpec) any {
	if t == nil {
		return s
	}
	switch t.Kind {
	case "count":
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	case "boolean":
		if b, err := strconv.ParseBool(s); err == nil {
			return b
		}
	}
	return s
}
