package resolver

import (
	"sort"
	"strings"

	"github.com/clipse-cli/clipse/pkg/document"
)

const (
	sharedObjectsPrefix = "#/shared_defs/objects/"
	sharedActionsPrefix = "#/shared_defs/actions/"
)

// Unions are the complete id sets gathered from both the object-centric
// and the action-centric views of a document, plus the shared_defs entries
// that were actually referenced.
type Unions struct {
	// Objects is the set of every known object id.
	Objects map[string]bool

	// Actions is the set of every known action id.
	Actions map[string]bool
}

// ObjectIDs returns the object union sorted for stable output.
func (u *Unions) ObjectIDs() []string {
	return sortedKeys(u.Objects)
}

// ActionIDs returns the action union sorted for stable output.
func (u *Unions) ActionIDs() []string {
	return sortedKeys(u.Actions)
}

// buildUnions computes the object and action unions. Pure; never fails.
// usedRefs is the set of pointers the reference resolver expanded, used to
// pick up shared_defs entries that entered the graph via $ref.
func buildUnions(doc *document.Document, usedRefs map[string]bool) *Unions {
	u := &Unions{
		Objects: make(map[string]bool),
		Actions: make(map[string]bool),
	}
	for id, obj := range doc.Objects {
		u.Objects[id] = true
		if obj == nil {
			continue
		}
		for actID := range obj.Actions {
			u.Actions[actID] = true
		}
	}
	for id, act := range doc.Actions {
		u.Actions[id] = true
		if act == nil {
			continue
		}
		for objID := range act.Objects {
			u.Objects[objID] = true
		}
	}
	for ptr := range usedRefs {
		if id, ok := strings.CutPrefix(ptr, sharedObjectsPrefix); ok && !strings.Contains(id, "/") {
			u.Objects[id] = true
		}
		if id, ok := strings.CutPrefix(ptr, sharedActionsPrefix); ok && !strings.Contains(id, "/") {
			u.Actions[id] = true
		}
	}
	return u
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
