package resolver

import (
	"fmt"

	"github.com/clipse-cli/clipse/pkg/document"
)

// checkTypes verifies every resolved value against its declared type and
// reports required fields left without a value. All violations across all
// scopes are collected before the stage fails.
func checkTypes(doc *document.Document) error {
	var diags Diagnostics
	for _, sc := range collectScopes(doc) {
		for _, id := range sc.fieldIDs() {
			f := sc.fields[id]
			if !f.HasValue() {
				if f.Required {
					diags = append(diags, &Diagnostic{
						Code:    CodeRequiredMissing,
						Scope:   sc.path,
						Field:   id,
						Message: "required field has no value",
					})
				}
				continue
			}
			if f.Type == nil {
				continue
			}
			if err := matchType(f.Value, f.Type); err != nil {
				diags = append(diags, &Diagnostic{
					Code:    CodeTypeMismatch,
					Scope:   sc.path,
					Field:   id,
					Value:   f.Value,
					Message: fmt.Sprintf("expected %s: %v", f.Type, err),
					Err:     err,
				})
			}
		}
	}
	return diags.errOrNil()
}

// matchType reports whether v satisfies the type descriptor.
func matchType(v any, t *document.TypeSpec) error {
	switch t.Kind {
	case "string", "path", "dir", "file":
		if _, ok := v.(string); !ok {
			return fmt.Errorf("got %T", v)
		}
	case "boolean":
		if _, ok := v.(bool); !ok {
			return fmt.Errorf("got %T", v)
		}
	case "count":
		n, ok := asInt(v)
		if !ok {
			return fmt.Errorf("got %T", v)
		}
		if n < 0 {
			return fmt.Errorf("count must be non-negative, got %d", n)
		}
	case "enum":
		for _, allowed := range t.Values {
			if fmt.Sprintf("%v", v) == fmt.Sprintf("%v", allowed) {
				return nil
			}
		}
		return fmt.Errorf("%v is not one of %v", v, t.Values)
	case "list":
		elems, ok := v.([]any)
		if !ok {
			return fmt.Errorf("got %T", v)
		}
		if t.Of == nil {
			return nil
		}
		for i, elem := range elems {
			if err := matchType(elem, t.Of); err != nil {
				return fmt.Errorf("element %d: %v", i, err)
			}
		}
	default:
		return fmt.Errorf("unknown type kind %q", t.Kind)
	}
	return nil
}

// asInt accepts the integer representations that JSON and YAML decoding
// produce, including whole floats.
func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		return int64(n), true
	case float64:
		if n == float64(int64(n)) {
			return int64(n), true
		}
	}
	return 0, false
}
