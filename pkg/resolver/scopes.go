package resolver

import (
	"fmt"
	"sort"

	"github.com/clipse-cli/clipse/pkg/document"
)

// scope is one constraint-evaluation unit: the global section, an object,
// an action, or a nested entity. Its fields are the options and
// positionals declared at that level, merged by id.
type scope struct {
	path        string
	fields      map[string]*document.Field
	constraints *document.Constraints
}

// fieldIDs returns the scope's field ids sorted for stable iteration.
func (s *scope) fieldIDs() []string {
	out := make([]string, 0, len(s.fields))
	for id := range s.fields {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// collectScopes enumerates every scope of the document in a stable order:
// global first, then objects (with their nested actions), then actions
// (with their nested objects).
func collectScopes(doc *document.Document) []*scope {
	scopes := []*scope{{
		path:        "global",
		fields:      mergeFields(doc.Global.Options, nil),
		constraints: doc.Global.Constraints,
	}}

	for _, id := range sortedKeys(boolSet(doc.Objects)) {
		obj := doc.Objects[id]
		if obj == nil {
			continue
		}
		scopes = append(scopes, &scope{
			path:        "objects." + id,
			fields:      mergeFields(obj.Options, obj.Positionals),
			constraints: obj.Constraints,
		})
		for _, actID := range sortedKeys(boolSet(obj.Actions)) {
			act := obj.Actions[actID]
			if act == nil {
				continue
			}
			scopes = append(scopes, &scope{
				path:        fmt.Sprintf("objects.%s.actions.%s", id, actID),
				fields:      mergeFields(act.Options, act.Positionals),
				constraints: act.Constraints,
			})
		}
	}
	for _, id := range sortedKeys(boolSet(doc.Actions)) {
		act := doc.Actions[id]
		if act == nil {
			continue
		}
		scopes = append(scopes, &scope{
			path:        "actions." + id,
			fields:      mergeFields(act.Options, act.Positionals),
			constraints: act.Constraints,
		})
		for _, objID := range sortedKeys(boolSet(act.Objects)) {
			obj := act.Objects[objID]
			if obj == nil {
				continue
			}
			scopes = append(scopes, &scope{
				path:        fmt.Sprintf("actions.%s.objects.%s", id, objID),
				fields:      mergeFields(obj.Options, obj.Positionals),
				constraints: obj.Constraints,
			})
		}
	}
	return scopes
}

func mergeFields(options, positionals map[string]*document.Field) map[string]*document.Field {
	out := make(map[string]*document.Field, len(options)+len(positionals))
	for id, f := range options {
		if f != nil {
			out[id] = f
		}
	}
	for id, f := range positionals {
		if f != nil {
			out[id] = f
		}
	}
	return out
}

func boolSet[V any](m map[string]V) map[string]bool {
	out := make(map[string]bool, len(m))
	for k := range m {
		out[k] = true
	}
	return out
}
