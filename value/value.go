// Package value holds keyframe values and the mixers that interpolate them.
//
// A Value is a number, a string (a colour such as "#ff0000", or a complex
// string with embedded numbers such as "10px 20px"), or the None placeholder
// that stands for "the subject's current value" at the head of a keyframe list.
package value

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Kind identifies what a Value holds.
type Kind int

const (
	// KindNone is the unresolved placeholder.
	KindNone Kind = iota
	KindNumber
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is a single keyframe value.
type Value struct {
	kind Kind
	num  float64
	str  string
}

// None returns the placeholder value.
func None() Value {
	return Value{}
}

// Number returns a numeric value.
func Number(n float64) Value {
	return Value{kind: KindNumber, num: n}
}

// String returns a string value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Numbers converts a list of floats to keyframes.
func Numbers(ns ...float64) []Value {
	out := make([]Value, len(ns))
	for i, n := range ns {
		out[i] = Number(n)
	}
	return out
}

// Strings converts a list of strings to keyframes.
func Strings(ss ...string) []Value {
	out := make([]Value, len(ss))
	for i, s := range ss {
		out[i] = String(s)
	}
	return out
}

// Kind reports what v holds.
func (v Value) Kind() Kind { return v.kind }

// IsNone reports whether v is the placeholder.
func (v Value) IsNone() bool { return v.kind == KindNone }

// IsNumber reports whether v is numeric.
func (v Value) IsNumber() bool { return v.kind == KindNumber }

// Float returns the numeric value, or NaN for non-numbers.
func (v Value) Float() float64 {
	if v.kind != KindNumber {
		return math.NaN()
	}
	return v.num
}

// Str returns the string form. Numbers are formatted without trailing zeros.
func (v Value) Str() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindString:
		return v.str
	default:
		return ""
	}
}

func (v Value) String() string {
	if v.kind == KindNone {
		return "null"
	}
	return v.Str()
}

// Equal reports whether two values are identical.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNumber:
		return v.num == o.num
	case KindString:
		return v.str == o.str
	}
	return true
}

// UnmarshalYAML decodes a YAML scalar: null, a number or a string.
func (v *Value) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw interface{}
	if err := unmarshal(&raw); err != nil {
		return err
	}
	switch r := raw.(type) {
	case nil:
		*v = None()
	case int:
		*v = Number(float64(r))
	case int64:
		*v = Number(float64(r))
	case float64:
		*v = Number(r)
	case string:
		*v = String(r)
	default:
		return fmt.Errorf("value: unsupported keyframe %v (%T)", raw, raw)
	}
	return nil
}

// MarshalJSON encodes None as null, numbers as numbers and strings as
// strings.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		return json.Marshal(v.num)
	case KindString:
		return json.Marshal(v.str)
	}
	return []byte("null"), nil
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch r := raw.(type) {
	case nil:
		*v = None()
	case float64:
		*v = Number(r)
	case string:
		*v = String(r)
	default:
		return fmt.Errorf("value: unsupported keyframe %s", data)
	}
	return nil
}
