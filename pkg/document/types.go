package document

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// FieldKind identifies how an input field is supplied on a command line.
type FieldKind string

const (
	// KindFlag is a boolean switch (e.g. --verbose).
	KindFlag FieldKind = "flag"

	// KindOption is a named value (e.g. --name value).
	KindOption FieldKind = "option"

	// KindPositional is an unnamed ordered argument.
	KindPositional FieldKind = "positional"
)

// ValueSource identifies which precedence tier supplied a resolved value.
type ValueSource string

const (
	// SourceEnvOverride means the environment supplied the value and was
	// declared to take precedence over the command line.
	SourceEnvOverride ValueSource = "env-override"

	// SourceCLI means the invoking command line supplied the value.
	SourceCLI ValueSource = "cli"

	// SourceEnv means the environment supplied the value.
	SourceEnv ValueSource = "env"

	// SourceDefault means the declared default supplied the value.
	SourceDefault ValueSource = "default"

	// SourceMissing means no tier supplied a value.
	SourceMissing ValueSource = "missing"
)

// Document is the top-level clipse configuration after reference and
// variable resolution. It is the unit that flows through the validation
// stages and is handed to renderers and generators.
type Document struct {
	// SharedDefs holds reusable blueprints for vars, options, actions and
	// objects. Blueprints are raw mappings: they only enter the document
	// graph through $ref expansion, which happens before decoding.
	SharedDefs SharedDefs `json:"shared_defs,omitempty" yaml:"shared_defs,omitempty"`

	// Global holds options that apply to every object and action.
	Global Global `json:"global,omitempty" yaml:"global,omitempty"`

	// Behavior contains free-form runtime behavior settings (io, paging,
	// output defaults). The core carries it through untouched.
	Behavior map[string]any `json:"behavior,omitempty" yaml:"behavior,omitempty"`

	// Objects maps object id to its definition.
	Objects map[string]*Object `json:"objects,omitempty" yaml:"objects,omitempty"`

	// Actions maps action id to its definition.
	Actions map[string]*Action `json:"actions,omitempty" yaml:"actions,omitempty"`
}

// SharedDefs holds the blueprint sections of a document. All sections stay
// untyped: a blueprint has no id and is never part of the final graph
// except via $ref expansion at a use site.
type SharedDefs struct {
	// Vars are scalar values available to {{...}} expressions.
	Vars map[string]any `json:"vars,omitempty" yaml:"vars,omitempty"`

	// Options are option blueprints addressable as #/shared_defs/options/<id>.
	Options map[string]any `json:"options,omitempty" yaml:"options,omitempty"`

	// Actions are action blueprints addressable as #/shared_defs/actions/<id>.
	Actions map[string]any `json:"actions,omitempty" yaml:"actions,omitempty"`

	// Objects are object blueprints addressable as #/shared_defs/objects/<id>.
	Objects map[string]any `json:"objects,omitempty" yaml:"objects,omitempty"`
}

// Global holds document-wide settings.
type Global struct {
	// Options apply to every invocation regardless of object or action.
	Options map[string]*Field `json:"options,omitempty" yaml:"options,omitempty"`

	// Constraints are cross-field rules evaluated over the global scope.
	Constraints *Constraints `json:"constraints,omitempty" yaml:"constraints,omitempty"`
}

// Object is a noun-like resource the generated CLI manages.
type Object struct {
	// DisplayName is the human-readable name shown in help output.
	DisplayName string `json:"display_name,omitempty" yaml:"display_name,omitempty"`

	// Description documents the object.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// DefaultAction is the action id invoked when none is given. It must
	// name a member of the resolved action union.
	DefaultAction string `json:"default_action,omitempty" yaml:"default_action,omitempty"`

	// Actions maps action id to an inline or overridden action definition.
	Actions map[string]*Action `json:"actions,omitempty" yaml:"actions,omitempty"`

	// Options are object-level named inputs.
	Options map[string]*Field `json:"options,omitempty" yaml:"options,omitempty"`

	// Positionals are object-level ordered inputs.
	Positionals map[string]*Field `json:"positionals,omitempty" yaml:"positionals,omitempty"`

	// Constraints are cross-field rules evaluated over this object's scope.
	Constraints *Constraints `json:"constraints,omitempty" yaml:"constraints,omitempty"`
}

// Action is a verb-like operation applicable to one or more objects.
type Action struct {
	// DisplayName is the human-readable name shown in help output.
	DisplayName string `json:"display_name,omitempty" yaml:"display_name,omitempty"`

	// Description documents the action.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// DefaultObject is the object id targeted when none is given. It must
	// name a member of the resolved object union.
	DefaultObject string `json:"default_object,omitempty" yaml:"default_object,omitempty"`

	// Objects maps object id to an inline or overridden object definition.
	Objects map[string]*Object `json:"objects,omitempty" yaml:"objects,omitempty"`

	// Options are action-level named inputs.
	Options map[string]*Field `json:"options,omitempty" yaml:"options,omitempty"`

	// Positionals are action-level ordered inputs.
	Positionals map[string]*Field `json:"positionals,omitempty" yaml:"positionals,omitempty"`

	// Constraints are cross-field rules evaluated over this action's scope.
	Constraints *Constraints `json:"constraints,omitempty" yaml:"constraints,omitempty"`
}

// Field is a single option or positional declaration. After value
// resolution it additionally carries the resolved value and its source.
type Field struct {
	// DisplayName is the human-readable name (options only).
	DisplayName string `json:"display_name,omitempty" yaml:"display_name,omitempty"`

	// Description documents the field.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Kind tags the field as flag, option or positional.
	Kind FieldKind `json:"kind,omitempty" yaml:"kind,omitempty" validate:"omitempty,oneof=flag option positional"`

	// Type describes the value this field accepts.
	Type *TypeSpec `json:"type,omitempty" yaml:"type,omitempty"`

	// Required marks the field as mandatory.
	Required bool `json:"required,omitempty" yaml:"required,omitempty"`

	// Default is the declared fallback value.
	Default any `json:"default,omitempty" yaml:"default,omitempty"`

	// Env binds the field to an environment variable.
	Env *EnvBinding `json:"env,omitempty" yaml:"env,omitempty"`

	// Value is the resolved final value. Populated by the value resolver.
	Value any `json:"value,omitempty" yaml:"value,omitempty"`

	// Source records which precedence tier supplied Value. Populated by
	// the value resolver.
	Source ValueSource `json:"source,omitempty" yaml:"source,omitempty"`
}

// HasValue reports whether value resolution produced a value for the field.
func (f *Field) HasValue() bool {
	return f.Source != "" && f.Source != SourceMissing
}

// TypeSpec describes the value a field accepts: a scalar kind, an enum with
// its allowed values, or a list with a nested element type.
//
// It decodes from either a bare string ("string", "count", ...) or a
// mapping ({kind: list, of: string} / {kind: enum, values: [...]}).
type TypeSpec struct {
	// Kind is one of string, boolean, count, enum, path, dir, file, list.
	Kind string `json:"kind" yaml:"kind" validate:"required,oneof=string boolean count enum path dir file list"`

	// Of is the element type for list kinds.
	Of *TypeSpec `json:"of,omitempty" yaml:"of,omitempty"`

	// Values are the allowed members for enum kinds.
	Values []any `json:"values,omitempty" yaml:"values,omitempty"`
}

// typeSpecAlias avoids recursing into the custom unmarshalers.
type typeSpecAlias TypeSpec

// UnmarshalYAML accepts either a scalar kind name or the structured form.
func (t *TypeSpec) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var kind string
		if err := value.Decode(&kind); err != nil {
			return err
		}
		*t = TypeSpec{Kind: kind}
		return nil
	}
	var alias typeSpecAlias
	if err := value.Decode(&alias); err != nil {
		return err
	}
	*t = TypeSpec(alias)
	return nil
}

// UnmarshalJSON accepts either a scalar kind name or the structured form.
func (t *TypeSpec) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var kind string
		if err := json.Unmarshal(data, &kind); err != nil {
			return err
		}
		*t = TypeSpec{Kind: kind}
		return nil
	}
	var alias typeSpecAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	*t = TypeSpec(alias)
	return nil
}

// String renders the type for diagnostics, e.g. "list of string".
func (t *TypeSpec) String() string {
	if t == nil {
		return "any"
	}
	if t.Kind == "list" {
		return fmt.Sprintf("list of %s", t.Of.String())
	}
	return t.Kind
}

// EnvBinding binds a field to an environment variable.
//
// It decodes from either a bare string (the variable name, both flags off)
// or a mapping ({var: NAME, override_cli: true, update: true}).
type EnvBinding struct {
	// Var is the environment variable name.
	Var string `json:"var" yaml:"var" validate:"required"`

	// OverrideCLI gives the environment precedence over CLI-supplied values.
	OverrideCLI bool `json:"override_cli,omitempty" yaml:"override_cli,omitempty"`

	// Update writes the resolved final value back to the environment.
	Update bool `json:"update,omitempty" yaml:"update,omitempty"`
}

type envBindingAlias EnvBinding

// UnmarshalYAML accepts either a bare variable name or the structured form.
func (e *EnvBinding) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var name string
		if err := value.Decode(&name); err != nil {
			return err
		}
		*e = EnvBinding{Var: name}
		return nil
	}
	var alias envBindingAlias
	if err := value.Decode(&alias); err != nil {
		return err
	}
	*e = EnvBinding(alias)
	return nil
}

// UnmarshalJSON accepts either a bare variable name or the structured form.
func (e *EnvBinding) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*e = EnvBinding{Var: name}
		return nil
	}
	var alias envBindingAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	*e = EnvBinding(alias)
	return nil
}

// Constraints are the cross-field rules of one scope.
type Constraints struct {
	// Requires lists field ids that must be present.
	Requires []string `json:"requires,omitempty" yaml:"requires,omitempty"`

	// Conflicts lists groups whose members may not all be present together.
	Conflicts [][]string `json:"conflicts,omitempty" yaml:"conflicts,omitempty"`

	// ExactlyOneOf lists groups requiring exactly one present member.
	ExactlyOneOf [][]string `json:"exactly_one_of,omitempty" yaml:"exactly_one_of,omitempty"`

	// AtLeastOneOf lists groups requiring at least one present member.
	AtLeastOneOf [][]string `json:"at_least_one_of,omitempty" yaml:"at_least_one_of,omitempty"`

	// Custom holds predicate rules evaluated as Starlark expressions.
	Custom []CustomRule `json:"custom,omitempty" yaml:"custom,omitempty"`
}

// CustomRule is a user-defined constraint predicate.
type CustomRule struct {
	// Predicate is a boolean Starlark expression over field presence and
	// values, e.g. "missing(force) or present(target)".
	Predicate string `json:"predicate" yaml:"predicate" validate:"required"`

	// Message is reported when the predicate evaluates false.
	Message string `json:"message" yaml:"message" validate:"required"`
}
