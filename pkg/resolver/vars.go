package resolver

import (
	"fmt"
	"regexp"
	"strings"
)

// maxVarIterations bounds fixed-point variable expansion per string.
const maxVarIterations = 10

var varTokenRe = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_\-]+(?:\.[a-zA-Z0-9_\-]+)*)\s*\}\}`)

// flipEntityKey maps an entity's nested-entity field to the nested kind's
// own nested field (objects hold actions and vice versa).
var flipEntityKey = map[string]string{
	"objects": "actions",
	"actions": "objects",
}

// varResolver substitutes {{dotted.path}} tokens in every string field.
// Lookup walks the enclosing entity scopes innermost-first (an entity's
// own scalar fields plus its implicit id), then shared_defs.vars.
type varResolver struct {
	vars      map[string]any
	diags     Diagnostics
	undefined map[string]bool
}

// resolveVars returns a new tree with all variable tokens expanded to a
// fixed point. Variable-free documents come back structurally identical.
func resolveVars(raw map[string]any) (map[string]any, error) {
	r := &varResolver{vars: sharedVars(raw), undefined: make(map[string]bool)}
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		if k == "objects" || k == "actions" {
			out[k] = r.renderEntities(v, []string{k}, flipEntityKey[k], nil)
			continue
		}
		out[k] = r.render(v, []string{k}, nil)
	}
	return out, r.diags.errOrNil()
}

func sharedVars(raw map[string]any) map[string]any {
	defs, ok := raw["shared_defs"].(map[string]any)
	if !ok {
		return nil
	}
	vars, _ := defs["vars"].(map[string]any)
	return vars
}

// renderEntities renders a map of entities (objects or actions), pushing
// each entity's scope for its subtree. nestedKey names the field holding
// entities of the opposite kind.
func (r *varResolver) renderEntities(v any, path []string, nestedKey string, scopes []map[string]any) any {
	m, ok := v.(map[string]any)
	if !ok {
		return r.render(v, path, scopes)
	}
	out := make(map[string]any, len(m))
	for id, ent := range m {
		entPath := childPath(path, id)
		em, ok := ent.(map[string]any)
		if !ok {
			out[id] = r.render(ent, entPath, scopes)
			continue
		}
		entScopes := append([]map[string]any{entityScope(em, id)}, scopes...)
		eout := make(map[string]any, len(em))
		for k, fv := range em {
			if k == nestedKey {
				eout[k] = r.renderEntities(fv, childPath(entPath, k), flipEntityKey[k], entScopes)
				continue
			}
			eout[k] = r.render(fv, childPath(entPath, k), entScopes)
		}
		out[id] = eout
	}
	return out
}

func (r *varResolver) render(v any, path []string, scopes []map[string]any) any {
	switch val := v.(type) {
	case string:
		return r.renderString(val, path, scopes)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, mv := range val {
			out[k] = r.render(mv, childPath(path, k), scopes)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, ev := range val {
			out[i] = r.render(ev, path, scopes)
		}
		return out
	default:
		return val
	}
}

// renderString expands tokens to a fixed point. A substitution that leaves
// the string unchanged, or expansion still in flight after the iteration
// bound, is a variable cycle.
func (r *varResolver) renderString(s string, path []string, scopes []map[string]any) string {
	cur := s
	var chain []string
	for i := 0; i < maxVarIterations; i++ {
		next, expanded := r.substituteOnce(cur, path, scopes, &chain)
		if expanded == 0 {
			return next
		}
		if next == cur {
			r.diags = append(r.diags, &Diagnostic{
				Code:    CodeVariableCycle,
				Scope:   strings.Join(path, "."),
				Value:   s,
				Chain:   chain,
				Message: "variable expansion does not stabilize",
			})
			return cur
		}
		cur = next
	}
	if varTokenRe.MatchString(cur) {
		r.diags = append(r.diags, &Diagnostic{
			Code:    CodeVariableCycle,
			Scope:   strings.Join(path, "."),
			Value:   s,
			Chain:   chain,
			Message: fmt.Sprintf("variable expansion exceeds %d iterations", maxVarIterations),
		})
	}
	return cur
}

// substituteOnce replaces every resolvable token in s once. Unresolvable
// tokens are reported (deduplicated) and left in place.
func (r *varResolver) substituteOnce(s string, path []string, scopes []map[string]any, chain *[]string) (string, int) {
	expanded := 0
	out := varTokenRe.ReplaceAllStringFunc(s, func(tok string) string {
		expr := varTokenRe.FindStringSubmatch(tok)[1]
		val, ok := r.lookup(expr, scopes)
		if !ok {
			key := strings.Join(path, ".") + "|" + expr
			if !r.undefined[key] {
				r.undefined[key] = true
				r.diags = append(r.diags, &Diagnostic{
					Code:    CodeUndefinedVariable,
					Scope:   strings.Join(path, "."),
					Value:   expr,
					Message: fmt.Sprintf("undefined variable %q", expr),
				})
			}
			return tok
		}
		expanded++
		*chain = append(*chain, expr)
		return fmt.Sprintf("%v", val)
	})
	return out, expanded
}

// lookup resolves a dotted expression against the scope stack (innermost
// first), then shared_defs.vars.
func (r *varResolver) lookup(expr string, scopes []map[string]any) (any, bool) {
	for _, scope := range scopes {
		if v, ok := lookupPath(scope, expr); ok {
			return v, true
		}
	}
	return lookupPath(r.vars, expr)
}

// lookupPath resolves expr in m, first as a literal key, then as a dotted
// traversal of nested mappings.
func lookupPath(m map[string]any, expr string) (any, bool) {
	if m == nil {
		return nil, false
	}
	if v, ok := m[expr]; ok {
		return v, true
	}
	var cur any = m
	for _, part := range strings.Split(expr, ".") {
		mm, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = mm[part]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// entityScope builds the variable scope of one object or action: its own
// fields keyed by name plus the implicit id.
func entityScope(m map[string]any, id string) map[string]any {
	scope := make(map[string]any, len(m)+1)
	for k, v := range m {
		scope[k] = v
	}
	scope["id"] = id
	return scope
}

func childPath(path []string, elem string) []string {
	return append(append([]string(nil), path...), elem)
}
