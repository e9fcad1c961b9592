// Package value provides an ordered, loosely typed JSON value.
//
// HEADERS, QUERY and BODY segments carry caller-defined structures of any
// depth. They are decoded into Value/Object rather than Go maps so that key
// insertion order survives decoding, query building and re-encoding.
package value

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Kind is the JSON type held by a Value
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a tagged union of null, bool, number, string, array and object.
// The zero Value is null.
type Value struct {
	kind Kind
	b    bool
	num  string // number literal as written
	str  string
	arr  []Value
	obj  *Map
}

func NullValue() Value { return Value{} }

func BoolValue(b bool) Value { return Value{kind: Bool, b: b} }

// NumberValue keeps the literal text of a JSON number.
func NumberValue(literal string) Value { return Value{kind: Number, num: literal} }

func IntValue(i int64) Value { return NumberValue(strconv.FormatInt(i, 10)) }

func StringValue(s string) Value { return Value{kind: String, str: s} }

func ArrayValue(items ...Value) Value { return Value{kind: Array, arr: items} }

func ObjectValue(m *Map) Value {
	if m == nil {
		m = NewMap()
	}
	return Value{kind: Object, obj: m}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == Null }

func (v Value) Bool() bool { return v.b }

func (v Value) Str() string { return v.str }

// NumberLiteral returns the number as it was written in the source
func (v Value) NumberLiteral() string { return v.num }

func (v Value) Items() []Value { return v.arr }

func (v Value) Map() *Map { return v.obj }

// String renders the literal form used when a value is spliced into text,
// such as a query string or a header line. Strings are returned verbatim,
// numbers keep their literal, arrays join their elements with commas and
// objects render as compact JSON.
func (v Value) String() string {
	switch v.kind {
	case Bool:
		return strconv.FormatBool(v.b)
	case Number:
		return v.num
	case String:
		return v.str
	case Array:
		parts := make([]string, len(v.arr))
		for i, item := range v.arr {
			parts[i] = item.String()
		}
		return strings.Join(parts, ",")
	case Object:
		data, err := v.obj.MarshalJSON()
		if err != nil {
			return ""
		}
		return string(data)
	default:
		return "null"
	}
}

// Interface converts the value into plain Go values (map[string]any loses order).
func (v Value) Interface() any {
	switch v.kind {
	case Bool:
		return v.b
	case Number:
		if i, err := strconv.ParseInt(v.num, 10, 64); err == nil {
			return i
		}
		f, _ := strconv.ParseFloat(v.num, 64)
		return f
	case String:
		return v.str
	case Array:
		out := make([]any, len(v.arr))
		for i, item := range v.arr {
			out[i] = item.Interface()
		}
		return out
	case Object:
		out := make(map[string]any, v.obj.Len())
		for _, m := range v.obj.Members() {
			out[m.Key] = m.Value.Interface()
		}
		return out
	default:
		return nil
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v *Value) UnmarshalJSON(data []byte) error {
	decoded, err := Decode(string(data))
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

func (v Value) writeJSON(buf *bytes.Buffer) error {
	switch v.kind {
	case Bool:
		buf.WriteString(strconv.FormatBool(v.b))
	case Number:
		buf.WriteString(v.num)
	case String:
		return writeString(buf, v.str)
	case Array:
		buf.WriteByte('[')
		for i, item := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case Object:
		return v.obj.writeJSON(buf)
	default:
		buf.WriteString("null")
	}
	return nil
}

// writeString encodes s as a JSON string without HTML escaping
func writeString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte("\n")))
	return nil
}

// Decode parses any JSON document into a Value.
func Decode(input string) (Value, error) {
	if !gjson.Valid(input) {
		return Value{}, &DecodeError{Input: input, Reason: "invalid JSON"}
	}
	return fromResult(gjson.Parse(input)), nil
}

// DecodeObject parses input and requires the top level to be an object.
func DecodeObject(input string) (*Map, error) {
	v, err := Decode(input)
	if err != nil {
		return nil, err
	}
	if v.kind != Object {
		return nil, &DecodeError{Input: input, Reason: "expected a JSON object, got " + v.kind.String()}
	}
	return v.obj, nil
}

// FromBytes decodes a payload, keeping order. ok is false when data is not JSON.
func FromBytes(data []byte) (v Value, ok bool) {
	if len(bytes.TrimSpace(data)) == 0 || !gjson.ValidBytes(data) {
		return Value{}, false
	}
	return fromResult(gjson.ParseBytes(data)), true
}

func fromResult(r gjson.Result) Value {
	switch r.Type {
	case gjson.True:
		return BoolValue(true)
	case gjson.False:
		return BoolValue(false)
	case gjson.Number:
		return NumberValue(strings.TrimSpace(r.Raw))
	case gjson.String:
		return StringValue(r.Str)
	case gjson.JSON:
		if r.IsArray() {
			items := make([]Value, 0)
			r.ForEach(func(_, item gjson.Result) bool {
				items = append(items, fromResult(item))
				return true
			})
			return ArrayValue(items...)
		}
		m := NewMap()
		r.ForEach(func(key, item gjson.Result) bool {
			m.Set(key.Str, fromResult(item))
			return true
		})
		return ObjectValue(m)
	default:
		return NullValue()
	}
}

// DecodeError reports input that could not be decoded
type DecodeError struct {
	Input  string
	Reason string
}

func (e *DecodeError) Error() string {
	return e.Reason
}
