// Package jsonval implements the JSON value model used across the runtime:
// a tagged variant type whose string payloads live in a caller-supplied
// arena, a recursive-descent parser with byte-offset diagnostics, and a
// compact/pretty serializer.
//
// Values are owned by the arena they were built against and must not be
// referenced after that arena is reset or restored past their allocation.
// Objects preserve key insertion order and match keys by exact bytes.
//
// This is deliberately not a general-purpose JSON library: it carries no
// schema validation beyond what tool definitions need, and no streaming
// decode. Wire-level payloads elsewhere in the module use encoding/json.
package jsonval

import (
	"errors"
	"fmt"

	"github.com/pocketllm/agentkit/arena"
)

// Kind discriminates the variant stored in a Value.
type Kind uint8

const (
	// KindNull is the JSON null literal.
	KindNull Kind = iota
	// KindBool is true or false.
	KindBool
	// KindInt is an integer literal stored as int64.
	KindInt
	// KindDouble is a floating-point literal stored as float64.
	KindDouble
	// KindString is a string with arena-backed payload.
	KindString
	// KindArray is an ordered list of values.
	KindArray
	// KindObject is an insertion-ordered list of key/value entries.
	KindObject
)

// String returns the lower-case kind name used in error messages.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "invalid"
	}
}

// ErrKindMismatch is wrapped by every accessor that is asked for the wrong
// variant. Accessors never coerce silently.
var ErrKindMismatch = errors.New("jsonval: kind mismatch")

// Entry is one key/value pair of an object.
type Entry struct {
	key []byte
	val *Value
}

// Key returns the entry key.
func (e Entry) Key() string { return string(e.key) }

// Value returns the entry value.
func (e Entry) Value() *Value { return e.val }

// Value is a tagged JSON variant. The zero value is null.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    []byte
	arr  []*Value
	obj  []Entry
}

// Kind reports the stored variant.
func (v *Value) Kind() Kind {
	if v == nil {
		return KindNull
	}
	return v.kind
}

// Null constructs a null value.
func Null() *Value { return &Value{kind: KindNull} }

// Bool constructs a boolean value.
func Bool(b bool) *Value { return &Value{kind: KindBool, b: b} }

// Int constructs an integer value.
func Int(i int64) *Value { return &Value{kind: KindInt, i: i} }

// Double constructs a floating-point value.
func Double(f float64) *Value { return &Value{kind: KindDouble, f: f} }

// String constructs a string value, copying s into the arena.
func String(a *arena.Arena, s string) *Value {
	return &Value{kind: KindString, s: a.CopyString(s)}
}

// StringBytes constructs a string value, copying b into the arena.
func StringBytes(a *arena.Arena, b []byte) *Value {
	return &Value{kind: KindString, s: a.Copy(b)}
}

// Array constructs an empty array with room for capacity elements.
func Array(capacity int) *Value {
	if capacity <= 0 {
		capacity = 8
	}
	return &Value{kind: KindArray, arr: make([]*Value, 0, capacity)}
}

// Object constructs an empty object with room for capacity entries.
func Object(capacity int) *Value {
	if capacity <= 0 {
		capacity = 8
	}
	return &Value{kind: KindObject, obj: make([]Entry, 0, capacity)}
}

// AsBool returns the boolean payload.
func (v *Value) AsBool() (bool, error) {
	if v == nil || v.kind != KindBool {
		return false, fmt.Errorf("%w: value is %s, not bool", ErrKindMismatch, v.Kind())
	}
	return v.b, nil
}

// AsInt returns the integer payload. A double payload is truncated toward
// zero, mirroring the numeric bridging of the int accessor contract.
func (v *Value) AsInt() (int64, error) {
	switch v.Kind() {
	case KindInt:
		return v.i, nil
	case KindDouble:
		return int64(v.f), nil
	default:
		return 0, fmt.Errorf("%w: value is %s, not int", ErrKindMismatch, v.Kind())
	}
}

// AsDouble returns the floating-point payload. An integer payload widens.
func (v *Value) AsDouble() (float64, error) {
	switch v.Kind() {
	case KindDouble:
		return v.f, nil
	case KindInt:
		return float64(v.i), nil
	default:
		return 0, fmt.Errorf("%w: value is %s, not double", ErrKindMismatch, v.Kind())
	}
}

// AsString returns the string payload.
func (v *Value) AsString() (string, error) {
	if v == nil || v.kind != KindString {
		return "", fmt.Errorf("%w: value is %s, not string", ErrKindMismatch, v.Kind())
	}
	return string(v.s), nil
}

// StringOr returns the string payload or fallback on any mismatch.
func (v *Value) StringOr(fallback string) string {
	s, err := v.AsString()
	if err != nil {
		return fallback
	}
	return s
}

// Len reports element count for arrays, entry count for objects and zero
// for every other kind.
func (v *Value) Len() int {
	switch v.Kind() {
	case KindArray:
		return len(v.arr)
	case KindObject:
		return len(v.obj)
	default:
		return 0
	}
}

// At returns the array element at index i, or nil when v is not an array
// or i is out of range.
func (v *Value) At(i int) *Value {
	if v == nil || v.kind != KindArray || i < 0 || i >= len(v.arr) {
		return nil
	}
	return v.arr[i]
}

// Append adds an element to an array, doubling the backing storage on
// overflow.
func (v *Value) Append(elem *Value) error {
	if v == nil || v.kind != KindArray {
		return fmt.Errorf("%w: value is %s, not array", ErrKindMismatch, v.Kind())
	}
	if elem == nil {
		elem = Null()
	}
	if len(v.arr) == cap(v.arr) {
		grown := make([]*Value, len(v.arr), cap(v.arr)*2)
		copy(grown, v.arr)
		v.arr = grown
	}
	v.arr = append(v.arr, elem)
	return nil
}

// Get returns the value stored under key (exact byte match) or nil.
func (v *Value) Get(key string) *Value {
	if v == nil || v.kind != KindObject {
		return nil
	}
	for i := range v.obj {
		if string(v.obj[i].key) == key {
			return v.obj[i].val
		}
	}
	return nil
}

// Has reports whether key is present.
func (v *Value) Has(key string) bool { return v.Get(key) != nil }

// Set stores val under key, overwriting in place when the key already
// exists and appending otherwise. New keys are copied into the arena.
func (v *Value) Set(a *arena.Arena, key string, val *Value) error {
	if v == nil || v.kind != KindObject {
		return fmt.Errorf("%w: value is %s, not object", ErrKindMismatch, v.Kind())
	}
	if val == nil {
		val = Null()
	}
	for i := range v.obj {
		if string(v.obj[i].key) == key {
			v.obj[i].val = val
			return nil
		}
	}
	if len(v.obj) == cap(v.obj) {
		grown := make([]Entry, len(v.obj), cap(v.obj)*2)
		copy(grown, v.obj)
		v.obj = grown
	}
	v.obj = append(v.obj, Entry{key: a.CopyString(key), val: val})
	return nil
}

// Entries returns the object's entries in insertion order. The returned
// slice aliases internal storage and must not be mutated.
func (v *Value) Entries() []Entry {
	if v == nil || v.kind != KindObject {
		return nil
	}
	return v.obj
}

// Equal reports deep structural equality. Int and double payloads are
// distinct kinds and never compare equal to each other.
func Equal(a, b *Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch a.Kind() {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindInt:
		return a.i == b.i
	case KindDouble:
		return a.f == b.f
	case KindString:
		return string(a.s) == string(b.s)
	case KindArray:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(a.obj) != len(b.obj) {
			return false
		}
		for i := range a.obj {
			if string(a.obj[i].key) != string(b.obj[i].key) ||
				!Equal(a.obj[i].val, b.obj[i].val) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
