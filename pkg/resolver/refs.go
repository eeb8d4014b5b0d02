package resolver

import (
	"fmt"
	"regexp"
	"strings"
)

// maxRefDepth bounds nested $ref chains (a blueprint referencing another
// blueprint). Exceeding it is reported as a reference cycle.
const maxRefDepth = 10

// refKey marks a mapping as a blueprint instantiation.
const refKey = "$ref"

// mergeByKeyFields are the map-valued fields merged key-by-key when a
// use site overlays a blueprint. Everything else is replaced wholesale.
var mergeByKeyFields = map[string]bool{
	"options":     true,
	"positionals": true,
	"actions":     true,
	"objects":     true,
}

var jsonPointerRe = regexp.MustCompile(`^#(/[^/]+)*$`)

// refResolver expands local JSON Pointer $ref entries against the raw
// document, overlaying use-site siblings. It records every pointer it
// expands so the union builder can tell which shared_defs entries were
// actually referenced.
type refResolver struct {
	root  map[string]any
	used  map[string]bool
	diags Diagnostics
}

// resolveRefs returns a new tree with every $ref expanded, the set of
// pointers that were expanded, and the stage's aggregated diagnostics.
// Documents without $ref come back structurally identical.
func resolveRefs(raw map[string]any) (map[string]any, map[string]bool, error) {
	r := &refResolver{root: raw, used: make(map[string]bool)}
	out := r.walkMap(raw, nil, nil)
	return out, r.used, r.diags.errOrNil()
}

func (r *refResolver) walk(v any, path, chain []string) any {
	switch val := v.(type) {
	case map[string]any:
		if _, ok := val[refKey]; ok {
			return r.expand(val, path, chain)
		}
		return r.walkMap(val, path, chain)
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = r.walk(elem, path, chain)
		}
		return out
	default:
		return val
	}
}

func (r *refResolver) walkMap(m map[string]any, path, chain []string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		childPath := append(append([]string(nil), path...), k)
		out[k] = r.walk(v, childPath, chain)
	}
	return out
}

// expand replaces one $ref mapping with its blueprint merged under the
// use-site siblings. Nested $ref chains are followed depth-first with the
// visited pointers carried in chain.
func (r *refResolver) expand(m map[string]any, path, chain []string) any {
	siblings := make(map[string]any, len(m)-1)
	for k, v := range m {
		if k != refKey {
			siblings[k] = v
		}
	}

	ptr, ok := m[refKey].(string)
	if !ok {
		r.diags = append(r.diags, &Diagnostic{
			Code:    CodeUnresolvedReference,
			Scope:   strings.Join(path, "."),
			Value:   m[refKey],
			Message: fmt.Sprintf("$ref must be a string pointer, got %T", m[refKey]),
		})
		return r.walkMap(siblings, path, chain)
	}

	for _, seen := range chain {
		if seen == ptr {
			r.diags = append(r.diags, &Diagnostic{
				Code:    CodeReferenceCycle,
				Scope:   strings.Join(path, "."),
				Value:   ptr,
				Chain:   append(append([]string{}, chain...), ptr),
				Message: fmt.Sprintf("reference cycle through %s", ptr),
			})
			return r.walkMap(siblings, path, chain)
		}
	}
	if len(chain) >= maxRefDepth {
		r.diags = append(r.diags, &Diagnostic{
			Code:    CodeReferenceCycle,
			Scope:   strings.Join(path, "."),
			Value:   ptr,
			Chain:   append(append([]string{}, chain...), ptr),
			Message: fmt.Sprintf("reference chain exceeds depth %d", maxRefDepth),
		})
		return r.walkMap(siblings, path, chain)
	}

	target, err := jsonPointerGet(r.root, ptr)
	if err != nil {
		r.diags = append(r.diags, &Diagnostic{
			Code:    CodeUnresolvedReference,
			Scope:   strings.Join(path, "."),
			Value:   ptr,
			Message: err.Error(),
			Err:     err,
		})
		return r.walkMap(siblings, path, chain)
	}
	base, ok := target.(map[string]any)
	if !ok {
		r.diags = append(r.diags, &Diagnostic{
			Code:    CodeUnresolvedReference,
			Scope:   strings.Join(path, "."),
			Value:   ptr,
			Message: fmt.Sprintf("$ref must point to a mapping: %s", ptr),
		})
		return r.walkMap(siblings, path, chain)
	}
	r.used[ptr] = true

	nextChain := append(append([]string{}, chain...), ptr)
	expanded := r.walkMap(base, path, nextChain)
	overlay := r.walkMap(siblings, path, chain)
	return mergeUseSite(expanded, overlay)
}

// mergeUseSite overlays use-site fields onto an expanded blueprint. The
// merge is shallow: the use-site value replaces the blueprint value
// wholesale, except for the map-valued fields in mergeByKeyFields, which
// merge key-by-key with the use-site key winning.
func mergeUseSite(base, overlay map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		if mergeByKeyFields[k] {
			bm, bok := out[k].(map[string]any)
			om, ook := v.(map[string]any)
			if bok && ook {
				merged := make(map[string]any, len(bm)+len(om))
				for kk, vv := range bm {
					merged[kk] = vv
				}
				for kk, vv := range om {
					merged[kk] = vv
				}
				out[k] = merged
				continue
			}
		}
		out[k] = v
	}
	return out
}

// jsonPointerGet resolves a local JSON Pointer ("#/a/b") within doc.
func jsonPointerGet(doc map[string]any, pointer string) (any, error) {
	if !jsonPointerRe.MatchString(pointer) {
		return nil, fmt.Errorf("unsupported $ref; must be a local JSON Pointer, got %q", pointer)
	}
	var cur any = doc
	if pointer == "#" {
		return cur, nil
	}
	for _, enc := range strings.Split(strings.TrimPrefix(pointer, "#/"), "/") {
		token := strings.ReplaceAll(strings.ReplaceAll(enc, "~1", "/"), "~0", "~")
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("invalid $ref path segment %q in %s", token, pointer)
		}
		cur, ok = m[token]
		if !ok {
			return nil, fmt.Errorf("invalid $ref path segment %q in %s", token, pointer)
		}
	}
	return cur, nil
}
