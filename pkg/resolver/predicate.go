package resolver

import (
	"fmt"

	"go.starlark.net/starlark"
)

// evalPredicate evaluates a custom constraint predicate as a Starlark
// expression over the scope's resolved fields. The expression sees three
// builtins: present(id), missing(id) and value(id). Print is suppressed
// and no module loading is available, so predicates stay side-effect free.
func evalPredicate(expr string, sc *scope) (bool, error) {
	thread := &starlark.Thread{
		Name:  "clipse-constraint",
		Print: func(_ *starlark.Thread, _ string) {},
	}

	isPresent := func(id string) bool {
		f, ok := sc.fields[id]
		return ok && f.HasValue()
	}

	env := starlark.StringDict{
		"present": starlark.NewBuiltin("present", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var id string
			if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &id); err != nil {
				return nil, err
			}
			return starlark.Bool(isPresent(id)), nil
		}),
		"missing": starlark.NewBuiltin("missing", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var id string
			if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &id); err != nil {
				return nil, err
			}
			return starlark.Bool(!isPresent(id)), nil
		}),
		"value": starlark.NewBuiltin("value", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var id string
			if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &id); err != nil {
				return nil, err
			}
			f, ok := sc.fields[id]
			if !ok || !f.HasValue() {
				return starlark.None, nil
			}
			return toStarlarkValue(f.Value)
		}),
	}

	result, err := starlark.Eval(thread, "constraint.star", expr, env)
	if err != nil {
		return false, err
	}
	return bool(result.Truth()), nil
}

// toStarlarkValue converts a resolved field value to a Starlark value.
func toStarlarkValue(v any) (starlark.Value, error) {
	switch val := v.(type) {
	case nil:
		return starlark.None, nil
	case bool:
		return starlark.Bool(val), nil
	case int:
		return starlark.MakeInt(val), nil
	case int64:
		return starlark.MakeInt64(val), nil
	case float64:
		return starlark.Float(val), nil
	case string:
		return starlark.String(val), nil
	case []any:
		elems := make([]starlark.Value, len(val))
		for i, e := range val {
			se, err := toStarlarkValue(e)
			if err != nil {
				return nil, err
			}
			elems[i] = se
		}
		return starlark.NewList(elems), nil
	case map[string]any:
		dict := starlark.NewDict(len(val))
		for k, e := range val {
			se, err := toStarlarkValue(e)
			if err != nil {
				return nil, err
			}
			if err := dict.SetKey(starlark.String(k), se); err != nil {
				return nil, err
			}
		}
		return dict, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}
