// Package resolver implements the clipse resolution pipeline.
//
// # Overview
//
// A raw document (a parsed JSON/YAML tree) flows through eight strictly
// sequential stages:
//
//  1. Reference resolution: local JSON Pointer $ref entries are expanded
//     against shared_defs, with use-site siblings overlaid; the map-valued
//     fields options/positionals/actions/objects merge key-by-key with
//     use-site keys winning.
//  2. Variable substitution: {{dotted.path}} tokens resolve against the
//     enclosing entity's scope, then shared_defs.vars, to a fixed point.
//  3. Union building: the complete object and action id sets are computed
//     from both the object-centric and action-centric views.
//  4. Default validation: default_action/default_object must name union
//     members.
//  5. Value resolution: each option/positional gets its final value from
//     environment, CLI mapping or declared default by precedence, with
//     env.update write-backs.
//  6. Type checking: resolved values must match their declared types;
//     required fields must have values.
//  7. Constraint checking: requires, conflicts, exactly_one_of,
//     at_least_one_of and custom Starlark predicates, per scope.
//  8. Schema validation: the resolved document goes to the external
//     JSON-Schema validator (see the schema package).
//
// Stages 1-4 fail fast after collecting all instances of their own
// problem; stages 5-7 run to completion over every field and scope and
// aggregate everything they find, so one run reports many fixes. Failures
// surface as a Diagnostics value carrying structured context (scope path,
// field id, offending value, cycle chains).
//
// The pipeline is single-threaded and synchronous. Its only side effect
// is environment write-back for env.update bindings, routed through the
// Environ interface so tests can substitute an in-memory map.
package resolver
