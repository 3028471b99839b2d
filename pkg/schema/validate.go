// SPDX-License-Identifier: Apache-2.0
package schema

import (
	"fmt"
	"math"
	"net/mail"
	"net/url"
	"reflect"
	"time"

	"github.com/google/uuid"
)

// Violation describes a single conformance failure at a value path.
type Violation struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	if v.Path == "" {
		return v.Message
	}
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks value against s and returns all violations found.
// An empty result means the value conforms. Validate never panics on
// malformed schemas or values; the malformation itself becomes a violation.
func Validate(s *Schema, value any) []Violation {
	if s == nil {
		return []Violation{{Path: "$", Message: "schema is nil"}}
	}
	return validate(s, value, "$")
}

func validate(s *Schema, value any, path string) []Violation {
	if s == nil {
		return []Violation{{Path: path, Message: "schema is nil"}}
	}

	var out []Violation
	switch s.Type {
	case TypeObject:
		out = validateObject(s, value, path)
	case TypeArray:
		out = validateArray(s, value, path)
	case TypeString:
		out = validateString(s, value, path)
	case TypeNumber, TypeInteger:
		out = validateNumber(s, value, path)
	case TypeBoolean:
		if _, ok := value.(bool); !ok {
			out = append(out, Violation{Path: path, Message: fmt.Sprintf("expected boolean, got %s", typeName(value))})
		}
	case "":
		out = append(out, Violation{Path: path, Message: "schema declares no type"})
	default:
		out = append(out, Violation{Path: path, Message: fmt.Sprintf("unknown schema type %q", s.Type)})
	}

	if len(s.Enum) > 0 {
		out = append(out, validateEnum(s, value, path)...)
	}
	return out
}

func validateObject(s *Schema, value any, path string) []Violation {
	obj, ok := value.(map[string]any)
	if !ok {
		return []Violation{{Path: path, Message: fmt.Sprintf("expected object, got %s", typeName(value))}}
	}

	var out []Violation
	for _, name := range s.Required {
		if _, present := obj[name]; !present {
			out = append(out, Violation{Path: path, Message: fmt.Sprintf("missing required property %q", name)})
		}
	}
	for name, propValue := range obj {
		propSchema, declared := s.Properties[name]
		if !declared {
			if s.Closed {
				out = append(out, Violation{Path: joinPath(path, name), Message: "property not permitted by closed schema"})
			}
			continue
		}
		out = append(out, validate(propSchema, propValue, joinPath(path, name))...)
	}
	return out
}

func validateArray(s *Schema, value any, path string) []Violation {
	items, ok := toSlice(value)
	if !ok {
		return []Violation{{Path: path, Message: fmt.Sprintf("expected array, got %s", typeName(value))}}
	}
	if s.Items == nil {
		return nil
	}
	var out []Violation
	for i, item := range items {
		out = append(out, validate(s.Items, item, fmt.Sprintf("%s[%d]", path, i))...)
	}
	return out
}

func validateString(s *Schema, value any, path string) []Violation {
	str, ok := value.(string)
	if !ok {
		return []Violation{{Path: path, Message: fmt.Sprintf("expected string, got %s", typeName(value))}}
	}
	if s.Format == "" {
		return nil
	}
	if msg := checkFormat(s.Format, str); msg != "" {
		return []Violation{{Path: path, Message: msg}}
	}
	return nil
}

func validateNumber(s *Schema, value any, path string) []Violation {
	num, isInt, ok := toFloat(value)
	if !ok {
		return []Violation{{Path: path, Message: fmt.Sprintf("expected %s, got %s", s.Type, typeName(value))}}
	}
	if s.Type == TypeInteger && !isInt {
		return []Violation{{Path: path, Message: fmt.Sprintf("expected integer, got fractional value %v", value)}}
	}
	var out []Violation
	if (s.Minimum != nil || s.Maximum != nil) && math.IsNaN(num) {
		return []Violation{{Path: path, Message: "NaN violates numeric bounds"}}
	}
	if s.Minimum != nil && num < *s.Minimum {
		out = append(out, Violation{Path: path, Message: fmt.Sprintf("value %v below minimum %v", num, *s.Minimum)})
	}
	if s.Maximum != nil && num > *s.Maximum {
		out = append(out, Violation{Path: path, Message: fmt.Sprintf("value %v above maximum %v", num, *s.Maximum)})
	}
	return out
}

func validateEnum(s *Schema, value any, path string) []Violation {
	for _, allowed := range s.Enum {
		if reflect.DeepEqual(value, allowed) {
			return nil
		}
		// numeric enum members may arrive as differing widths
		if av, _, aok := toFloat(allowed); aok {
			if vv, _, vok := toFloat(value); vok && av == vv {
				return nil
			}
		}
	}
	return []Violation{{Path: path, Message: fmt.Sprintf("value %v not in enum %v", value, s.Enum)}}
}

func checkFormat(f Format, str string) string {
	switch f {
	case FormatUUID:
		if _, err := uuid.Parse(str); err != nil {
			return fmt.Sprintf("invalid uuid %q", str)
		}
	case FormatDateTime:
		if _, err := time.Parse(time.RFC3339, str); err != nil {
			return fmt.Sprintf("invalid date-time %q", str)
		}
	case FormatURI:
		u, err := url.Parse(str)
		if err != nil || u.Scheme == "" {
			return fmt.Sprintf("invalid uri %q", str)
		}
	case FormatEmail:
		if _, err := mail.ParseAddress(str); err != nil {
			return fmt.Sprintf("invalid email %q", str)
		}
	default:
		return fmt.Sprintf("unknown format %q", f)
	}
	return ""
}

func joinPath(path, name string) string {
	return path + "." + name
}

// toFloat normalizes the numeric types produced by JSON decoding and by
// in-process callers. The second result reports whether the value is integral.
func toFloat(value any) (float64, bool, bool) {
	switch v := value.(type) {
	case float64:
		return v, v == float64(int64(v)), true
	case float32:
		f := float64(v)
		return f, f == float64(int64(f)), true
	case int:
		return float64(v), true, true
	case int32:
		return float64(v), true, true
	case int64:
		return float64(v), true, true
	case uint64:
		return float64(v), true, true
	default:
		return 0, false, false
	}
}

func toSlice(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, true
	default:
		return nil, false
	}
}

func typeName(value any) string {
	if value == nil {
		return "null"
	}
	return reflect.TypeOf(value).String()
}
