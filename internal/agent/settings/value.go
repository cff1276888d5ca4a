package settings

import (
	"encoding/json"
	"fmt"
	"math"
)

type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindBool
	KindNumber
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindObject:
		return "object"
	default:
		return "null"
	}
}

// Value is a tagged settings value. The zero Value is null.
type Value struct {
	kind Kind
	str  string
	b    bool
	num  float64
	obj  any
}

func Null() Value { return Value{} }

func String(s string) Value { return Value{kind: KindString, str: s} }

func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

func Int(i int64) Value { return Value{kind: KindNumber, num: float64(i)} }

// Object wraps an arbitrary JSON-compatible structure. A nil v is null.
func Object(v any) Value {
	if v == nil {
		return Value{}
	}
	return Value{kind: KindObject, obj: v}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// AsInt64 succeeds only for numbers with no fractional part that fit in int64.
func (v Value) AsInt64() (int64, bool) {
	if v.kind != KindNumber || v.num != math.Trunc(v.num) {
		return 0, false
	}
	if v.num < math.MinInt64 || v.num >= math.MaxInt64 {
		return 0, false
	}
	return int64(v.num), true
}

func (v Value) AsFloat64() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

func (v Value) AsObject() (any, bool) {
	if v.kind != KindObject {
		return nil, false
	}
	return v.obj, true
}

// Interface returns the underlying Go value, nil for null.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindBool:
		return v.b
	case KindNumber:
		return v.num
	case KindObject:
		return v.obj
	default:
		return nil
	}
}

// Decode re-encodes the value into dst, typically a struct previously stored with Object.
func (v Value) Decode(dst any) error {
	raw, err := json.Marshal(v.Interface())
	if err != nil {
		return fmt.Errorf("encode setting: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode setting: %w", err)
	}
	return nil
}

func (v Value) String() string {
	if v.kind == KindString {
		return v.str
	}
	raw, err := json.Marshal(v.Interface())
	if err != nil {
		return fmt.Sprintf("<%s>", v.kind)
	}
	return string(raw)
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch t := raw.(type) {
	case nil:
		*v = Null()
	case string:
		*v = String(t)
	case bool:
		*v = Bool(t)
	case float64:
		*v = Number(t)
	default:
		*v = Object(t)
	}
	return nil
}
