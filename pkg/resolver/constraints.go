package resolver

import (
	"fmt"
	"strings"

	"github.com/clipse-cli/clipse/pkg/document"
)

// checkConstraints evaluates the structural constraint kinds and custom
// predicates of every scope. Ids named by structural constraints must
// exist in the scope; unknown targets are reported eagerly and their
// groups skipped. Violations across all scopes aggregate into one report.
func checkConstraints(doc *document.Document) error {
	var diags Diagnostics
	for _, sc := range collectScopes(doc) {
		diags = append(diags, checkScopeConstraints(sc)...)
	}
	return diags.errOrNil()
}

func checkScopeConstraints(sc *scope) Diagnostics {
	c := sc.constraints
	if c == nil {
		return nil
	}
	var diags Diagnostics

	present := make(map[string]bool, len(sc.fields))
	for id, f := range sc.fields {
		present[id] = f.HasValue()
	}
	known := func(id string) bool {
		_, ok := sc.fields[id]
		return ok
	}
	unknownInGroup := func(kind string, group []string) bool {
		bad := false
		for _, id := range group {
			if !known(id) {
				bad = true
				diags = append(diags, &Diagnostic{
					Code:    CodeUnknownConstraintTarget,
					Scope:   sc.path,
					Field:   id,
					Value:   kind,
					Message: fmt.Sprintf("%s references unknown field %q", kind, id),
				})
			}
		}
		return bad
	}

	for _, id := range c.Requires {
		if unknownInGroup("requires", []string{id}) {
			continue
		}
		if !present[id] {
			diags = append(diags, &Diagnostic{
				Code:    CodeConstraintViolation,
				Scope:   sc.path,
				Field:   id,
				Message: fmt.Sprintf("requires: missing %s", id),
			})
		}
	}
	for _, group := range c.Conflicts {
		if unknownInGroup("conflicts", group) {
			continue
		}
		if countPresent(group, present) > 1 {
			diags = append(diags, &Diagnostic{
				Code:    CodeConstraintViolation,
				Scope:   sc.path,
				Value:   group,
				Message: fmt.Sprintf("conflicts: %s are mutually exclusive", strings.Join(group, ", ")),
			})
		}
	}
	for _, group := range c.ExactlyOneOf {
		if unknownInGroup("exactly_one_of", group) {
			continue
		}
		if n := countPresent(group, present); n != 1 {
			diags = append(diags, &Diagnostic{
				Code:    CodeConstraintViolation,
				Scope:   sc.path,
				Value:   group,
				Message: fmt.Sprintf("exactly_one_of: %s require exactly one present, got %d", strings.Join(group, ", "), n),
			})
		}
	}
	for _, group := range c.AtLeastOneOf {
		if unknownInGroup("at_least_one_of", group) {
			continue
		}
		if countPresent(group, present) == 0 {
			diags = append(diags, &Diagnostic{
				Code:    CodeConstraintViolation,
				Scope:   sc.path,
				Value:   group,
				Message: fmt.Sprintf("at_least_one_of: none of %s present", strings.Join(group, ", ")),
			})
		}
	}
	for _, rule := range c.Custom {
		ok, err := evalPredicate(rule.Predicate, sc)
		if err != nil {
			diags = append(diags, &Diagnostic{
				Code:    CodeConstraintViolation,
				Scope:   sc.path,
				Value:   rule.Predicate,
				Message: fmt.Sprintf("custom predicate failed to evaluate: %v", err),
				Err:     err,
			})
			continue
		}
		if !ok {
			diags = append(diags, &Diagnostic{
				Code:    CodeConstraintViolation,
				Scope:   sc.path,
				Value:   rule.Predicate,
				Message: rule.Message,
			})
		}
	}
	return diags
}

func countPresent(group []string, present map[string]bool) int {
	n := 0
	for _, id := range group {
		if present[id] {
			n++
		}
	}
	return n
}
