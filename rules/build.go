package rules

import (
	"errors"
	"fmt"
	"regexp"
	"sort"

	jsonmodel "github.com/reoring/jsonmodel"
)

// ErrUnknownRule is returned by Build for names it does not know.
var ErrUnknownRule = errors.New("rules: unknown rule")

// Names lists the rule names Build accepts.
func Names() []string {
	out := make([]string, 0, len(builders))
	for k := range builders {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

type builder func(args map[string]any) (jsonmodel.Rule, error)

var builders = map[string]builder{
	"required": func(map[string]any) (jsonmodel.Rule, error) { return Required(), nil },
	"email":    func(map[string]any) (jsonmodel.Rule, error) { return Email(), nil },
	"pattern": func(args map[string]any) (jsonmodel.Rule, error) {
		src, err := stringArg(args, "pattern")
		if err != nil {
			return jsonmodel.Rule{}, err
		}
		re, err := regexp.Compile(src)
		if err != nil {
			return jsonmodel.Rule{}, fmt.Errorf("rules: pattern: %w", err)
		}
		return Pattern(re), nil
	},
	"minLength": func(args map[string]any) (jsonmodel.Rule, error) {
		n, err := numberArg(args, "min")
		if err != nil {
			return jsonmodel.Rule{}, err
		}
		return MinLength(int(n)), nil
	},
	"maxLength": func(args map[string]any) (jsonmodel.Rule, error) {
		n, err := numberArg(args, "max")
		if err != nil {
			return jsonmodel.Rule{}, err
		}
		return MaxLength(int(n)), nil
	},
	"min": func(args map[string]any) (jsonmodel.Rule, error) {
		n, err := numberArg(args, "min")
		if err != nil {
			return jsonmodel.Rule{}, err
		}
		return Min(n), nil
	},
	"max": func(args map[string]any) (jsonmodel.Rule, error) {
		n, err := numberArg(args, "max")
		if err != nil {
			return jsonmodel.Rule{}, err
		}
		return Max(n), nil
	},
	"range": func(args map[string]any) (jsonmodel.Rule, error) {
		lo, err := numberArg(args, "min")
		if err != nil {
			return jsonmodel.Rule{}, err
		}
		hi, err := numberArg(args, "max")
		if err != nil {
			return jsonmodel.Rule{}, err
		}
		r := And(Min(lo), Max(hi))
		r.Name = "range"
		return r, nil
	},
	"oneOf": func(args map[string]any) (jsonmodel.Rule, error) {
		vs, ok := args["values"].([]any)
		if !ok {
			return jsonmodel.Rule{}, fmt.Errorf("rules: oneOf: %q must be a list", "values")
		}
		return OneOf(vs...), nil
	},
	"type": func(args map[string]any) (jsonmodel.Rule, error) {
		t, err := stringArg(args, "type")
		if err != nil {
			return jsonmodel.Rule{}, err
		}
		switch t {
		case "string", "number", "boolean", "object", "array", "null":
			return Type(t), nil
		}
		return jsonmodel.Rule{}, fmt.Errorf("rules: type: unsupported %q", t)
	},
}

// Build constructs a rule by name from loosely typed arguments, as found in
// configuration files. Numeric arguments accept any Go number type.
//
//	required                  -
//	email                     -
//	pattern                   pattern: string (regexp)
//	minLength / maxLength     min / max: number
//	min / max                 min / max: number
//	range                     min, max: number
//	oneOf                     values: list
//	type                      type: string
func Build(name string, args map[string]any) (jsonmodel.Rule, error) {
	b, ok := builders[name]
	if !ok {
		return jsonmodel.Rule{}, fmt.Errorf("%w %q", ErrUnknownRule, name)
	}
	return b(args)
}

func stringArg(args map[string]any, key string) (string, error) {
	s, ok := args[key].(string)
	if !ok {
		return "", fmt.Errorf("rules: argument %q must be a string", key)
	}
	return s, nil
}

func numberArg(args map[string]any, key string) (float64, error) {
	f, ok := toFloat64(args[key])
	if !ok {
		return 0, fmt.Errorf("rules: argument %q must be a number", key)
	}
	return f, nil
}
