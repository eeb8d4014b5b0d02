package resolver

import (
	"fmt"

	"github.com/clipse-cli/clipse/pkg/document"
)

// validateDefaults checks that every default_action names a member of the
// action union and every default_object a member of the object union. All
// violations are collected before the stage fails.
func validateDefaults(doc *document.Document, unions *Unions) error {
	var diags Diagnostics

	for id, obj := range doc.Objects {
		if obj == nil {
			continue
		}
		if obj.DefaultAction != "" && !unions.Actions[obj.DefaultAction] {
			diags = append(diags, &Diagnostic{
				Code:    CodeInvalidDefault,
				Scope:   "objects." + id,
				Field:   "default_action",
				Value:   obj.DefaultAction,
				Message: fmt.Sprintf("default_action %q is not a known action", obj.DefaultAction),
			})
		}
		for actID, act := range obj.Actions {
			if act != nil && act.DefaultObject != "" && !unions.Objects[act.DefaultObject] {
				diags = append(diags, &Diagnostic{
					Code:    CodeInvalidDefault,
					Scope:   fmt.Sprintf("objects.%s.actions.%s", id, actID),
					Field:   "default_object",
					Value:   act.DefaultObject,
					Message: fmt.Sprintf("default_object %q is not a known object", act.DefaultObject),
				})
			}
		}
	}
	for id, act := range doc.Actions {
		if act == nil {
			continue
		}
		if act.DefaultObject != "" && !unions.Objects[act.DefaultObject] {
			diags = append(diags, &Diagnostic{
				Code:    CodeInvalidDefault,
				Scope:   "actions." + id,
				Field:   "default_object",
				Value:   act.DefaultObject,
				Message: fmt.Sprintf("default_object %q is not a known object", act.DefaultObject),
			})
		}
		for objID, obj := range act.Objects {
			if obj != nil && obj.DefaultAction != "" && !unions.Actions[obj.DefaultAction] {
				diags = append(diags, &Diagnostic{
					Code:    CodeInvalidDefault,
					Scope:   fmt.Sprintf("actions.%s.objects.%s", id, objID),
					Field:   "default_action",
					Value:   obj.DefaultAction,
					Message: fmt.Sprintf("default_action %q is not a known action", obj.DefaultAction),
				})
			}
		}
	}
	return diags.errOrNil()
}
