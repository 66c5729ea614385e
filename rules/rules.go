// Package rules provides ready-made validator rules for jsonmodel paths.
//
// Every constructor returns a jsonmodel.Rule carrying a stable issue code.
// Absent values (nil) pass every rule except Required, so optional fields only
// need Required when they must be present.
package rules

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"unicode/utf8"

	jsonmodel "github.com/reoring/jsonmodel"
	"github.com/reoring/jsonmodel/i18n"
)

// Required rejects nil and the empty string.
func Required() jsonmodel.Rule {
	return jsonmodel.Rule{
		Name: "required",
		Code: jsonmodel.CodeRequired,
		Check: func(v any) (bool, string) {
			if v == nil {
				return false, i18n.T(jsonmodel.CodeRequired, nil)
			}
			if s, ok := v.(string); ok && s == "" {
				return false, i18n.T(jsonmodel.CodeRequired, nil)
			}
			return true, ""
		},
	}
}

// Pattern requires string values to match re.
func Pattern(re *regexp.Regexp) jsonmodel.Rule {
	return jsonmodel.Rule{
		Name: "pattern",
		Code: jsonmodel.CodePattern,
		Check: func(v any) (bool, string) {
			if v == nil {
				return true, ""
			}
			s, ok := v.(string)
			if !ok {
				return false, i18n.T(jsonmodel.CodeInvalidType, nil)
			}
			if !re.MatchString(s) {
				return false, i18n.T(jsonmodel.CodePattern, nil)
			}
			return true, ""
		},
	}
}

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+$`)

// Email requires a string containing exactly one '@' with text on both sides.
func Email() jsonmodel.Rule {
	r := Pattern(emailRe)
	r.Name = "email"
	r.Code = jsonmodel.CodeInvalidFormat
	inner := r.Check
	r.Check = func(v any) (bool, string) {
		if ok, msg := inner(v); !ok {
			if msg == i18n.T(jsonmodel.CodePattern, nil) {
				msg = i18n.T(jsonmodel.CodeInvalidFormat, nil)
			}
			return false, msg
		}
		return true, ""
	}
	return r
}

// MinLength requires strings (in runes) or arrays to have at least n elements.
func MinLength(n int) jsonmodel.Rule {
	return lengthRule("minLength", jsonmodel.CodeTooShort, "min", n, func(l int) bool { return l >= n })
}

// MaxLength requires strings (in runes) or arrays to have at most n elements.
func MaxLength(n int) jsonmodel.Rule {
	return lengthRule("maxLength", jsonmodel.CodeTooLong, "max", n, func(l int) bool { return l <= n })
}

func lengthRule(name, code, param string, n int, ok func(int) bool) jsonmodel.Rule {
	return jsonmodel.Rule{
		Name: name,
		Code: code,
		Check: func(v any) (bool, string) {
			if v == nil {
				return true, ""
			}
			l, isLen := length(v)
			if !isLen {
				return false, i18n.T(jsonmodel.CodeInvalidType, nil)
			}
			if !ok(l) {
				return false, i18n.T(code, map[string]string{param: strconv.Itoa(n)})
			}
			return true, ""
		},
	}
}

// Min requires numbers greater than or equal to min.
func Min(min float64) jsonmodel.Rule {
	return rangeRule("min", jsonmodel.CodeTooSmall, "min", min, func(f float64) bool { return f >= min })
}

// Max requires numbers less than or equal to max.
func Max(max float64) jsonmodel.Rule {
	return rangeRule("max", jsonmodel.CodeTooBig, "max", max, func(f float64) bool { return f <= max })
}

func rangeRule(name, code, param string, bound float64, ok func(float64) bool) jsonmodel.Rule {
	return jsonmodel.Rule{
		Name: name,
		Code: code,
		Check: func(v any) (bool, string) {
			if v == nil {
				return true, ""
			}
			f, isNum := toFloat64(v)
			if !isNum {
				return false, i18n.T(jsonmodel.CodeInvalidType, nil)
			}
			if !ok(f) {
				return false, i18n.T(code, map[string]string{param: strconv.FormatFloat(bound, 'g', -1, 64)})
			}
			return true, ""
		},
	}
}

// OneOf requires the value to equal one of allowed. Numbers compare by value
// regardless of their Go type.
func OneOf(allowed ...any) jsonmodel.Rule {
	return jsonmodel.Rule{
		Name: "oneOf",
		Code: jsonmodel.CodeInvalidEnum,
		Check: func(v any) (bool, string) {
			if v == nil {
				return true, ""
			}
			for _, a := range allowed {
				if equal(v, a) {
					return true, ""
				}
			}
			return false, i18n.T(jsonmodel.CodeInvalidEnum, nil)
		},
	}
}

// Type requires the JSON type of the value: "string", "number", "boolean",
// "object", "array" or "null".
func Type(want string) jsonmodel.Rule {
	return jsonmodel.Rule{
		Name: "type",
		Code: jsonmodel.CodeInvalidType,
		Check: func(v any) (bool, string) {
			if jsonType(v) != want {
				return false, i18n.T(jsonmodel.CodeInvalidType, nil)
			}
			return true, ""
		},
	}
}

// Func wraps a plain predicate. msg is used when pred rejects a value.
func Func(name, msg string, pred func(any) bool) jsonmodel.Rule {
	return jsonmodel.Rule{
		Name:    name,
		Code:    jsonmodel.CodeBusinessRule,
		Message: msg,
		Check: func(v any) (bool, string) {
			return pred(v), ""
		},
	}
}

// ---------- Rule combinators ----------

// And passes when every rule passes and reports the first failure.
func And(rs ...jsonmodel.Rule) jsonmodel.Rule {
	return jsonmodel.Rule{
		Name: "and",
		Code: firstCode(rs),
		Check: func(v any) (bool, string) {
			for _, r := range rs {
				if r.Check == nil {
					continue
				}
				if ok, msg := r.Check(v); !ok {
					if msg == "" {
						msg = r.Message
					}
					return false, msg
				}
			}
			return true, ""
		},
	}
}

// Or passes when any rule passes. When all fail the first failure is reported.
func Or(rs ...jsonmodel.Rule) jsonmodel.Rule {
	return jsonmodel.Rule{
		Name: "or",
		Code: firstCode(rs),
		Check: func(v any) (bool, string) {
			first := ""
			seen := false
			for _, r := range rs {
				if r.Check == nil {
					continue
				}
				ok, msg := r.Check(v)
				if ok {
					return true, ""
				}
				if !seen {
					if msg == "" {
						msg = r.Message
					}
					first, seen = msg, true
				}
			}
			return !seen, first
		},
	}
}

// ------- helpers -------

func firstCode(rs []jsonmodel.Rule) string {
	for _, r := range rs {
		if r.Code != "" {
			return r.Code
		}
	}
	return jsonmodel.CodeBusinessRule
}

func length(v any) (int, bool) {
	switch t := v.(type) {
	case string:
		return utf8.RuneCountInString(t), true
	case []any:
		return len(t), true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return utf8.RuneCountInString(rv.String()), true
	case reflect.Slice, reflect.Array:
		return rv.Len(), true
	default:
		return 0, false
	}
}

func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	}
	if _, ok := toFloat64(v); ok {
		return "number"
	}
	return fmt.Sprintf("%T", v)
}

func equal(a, b any) bool {
	fa, aNum := toFloat64(a)
	fb, bNum := toFloat64(b)
	if aNum && bNum {
		return fa == fb
	}
	return reflect.DeepEqual(a, b)
}

func toFloat64(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}
