// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"carvel.dev/liquid/pkg/orderedmap"
)

type Kind int

const (
	KindNil Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindList
	KindMap
	KindObject
	KindEmpty
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindList:
		return "array"
	case KindMap:
		return "hash"
	case KindObject:
		return "object"
	case KindEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// Value is the closed set of values a template operates on.
// Values are constructed via FromGo or directly from the types below.
type Value interface {
	Kind() Kind
	value()
}

type NilValue struct{}
type Bool bool
type Int int64
type Float float64
type String string
type List []Value

// EmptyDrop is the value of the `empty` and `blank` literals.
// It is falsy and compares equal to any empty collection.
type EmptyDrop struct{}

var (
	Nil   Value = NilValue{}
	Empty Value = EmptyDrop{}
	True  Value = Bool(true)
	False Value = Bool(false)
)

func (NilValue) Kind() Kind  { return KindNil }
func (Bool) Kind() Kind      { return KindBool }
func (Int) Kind() Kind       { return KindInt }
func (Float) Kind() Kind     { return KindFloat }
func (String) Kind() Kind    { return KindString }
func (List) Kind() Kind      { return KindList }
func (*Map) Kind() Kind      { return KindMap }
func (Object) Kind() Kind    { return KindObject }
func (EmptyDrop) Kind() Kind { return KindEmpty }

func (NilValue) value()  {}
func (Bool) value()      {}
func (Int) value()       {}
func (Float) value()     {}
func (String) value()    {}
func (List) value()      {}
func (*Map) value()      {}
func (Object) value()    {}
func (EmptyDrop) value() {}

// Map is a hash with string keys that iterates in insertion order.
type Map struct {
	items *orderedmap.Map
}

func NewMap() *Map { return &Map{orderedmap.NewMap()} }

func (m *Map) Set(key string, val Value) { m.items.Set(key, val) }

func (m *Map) Get(key string) (Value, bool) {
	val, found := m.items.Get(key)
	if !found {
		return nil, false
	}
	return val.(Value), true
}

func (m *Map) Keys() []string {
	var keys []string
	m.items.Iterate(func(k, _ interface{}) {
		keys = append(keys, k.(string))
	})
	return keys
}

func (m *Map) Iterate(iterFunc func(k string, v Value)) {
	m.items.Iterate(func(k, v interface{}) {
		iterFunc(k.(string), v.(Value))
	})
}

func (m *Map) Len() int { return m.items.Len() }

// Gettable is implemented by host objects exposed to templates.
type Gettable interface {
	Attr(name string) (Value, bool)
	AttrNames() []string
}

// Object wraps a Gettable so it can take part in the Value union.
type Object struct {
	obj Gettable
}

func NewObject(obj Gettable) Object { return Object{obj} }

func (o Object) Attr(name string) (Value, bool) { return o.obj.Attr(name) }
func (o Object) AttrNames() []string            { return o.obj.AttrNames() }
func (o Object) Gettable() Gettable             { return o.obj }

// Truthy follows Liquid: only nil, false and empty are falsy.
func Truthy(val Value) bool {
	switch typedVal := val.(type) {
	case nil, NilValue, EmptyDrop:
		return false
	case Bool:
		return bool(typedVal)
	default:
		return true
	}
}

// Display returns the text emitted for a value inside {{ }}.
func Display(val Value) string {
	switch typedVal := val.(type) {
	case nil, NilValue, EmptyDrop:
		return ""
	case Bool:
		return strconv.FormatBool(bool(typedVal))
	case Int:
		return strconv.FormatInt(int64(typedVal), 10)
	case Float:
		return FormatFloat(float64(typedVal))
	case String:
		return string(typedVal)
	case List:
		var sb strings.Builder
		for _, item := range typedVal {
			sb.WriteString(Display(item))
		}
		return sb.String()
	case *Map, Object:
		bs, err := json.Marshal(ToGo(typedVal))
		if err != nil {
			return ""
		}
		return string(bs)
	default:
		return ""
	}
}

// FormatFloat keeps a trailing ".0" for integral floats so they stay
// distinguishable from integers.
func FormatFloat(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	str := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(str, ".eE") {
		str += ".0"
	}
	return str
}

// Len reports the size of strings and collections; ok is false for other kinds.
func Len(val Value) (int, bool) {
	switch typedVal := val.(type) {
	case String:
		return len([]rune(string(typedVal))), true
	case List:
		return len(typedVal), true
	case *Map:
		return typedVal.Len(), true
	case NilValue, EmptyDrop:
		return 0, true
	default:
		return 0, false
	}
}

// IsEmpty reports whether a value matches the `empty`/`blank` literals.
func IsEmpty(val Value) bool {
	switch typedVal := val.(type) {
	case nil, NilValue, EmptyDrop:
		return true
	case String:
		return strings.TrimSpace(string(typedVal)) == ""
	case List:
		return len(typedVal) == 0
	case *Map:
		return typedVal.Len() == 0
	default:
		return false
	}
}

// Iterate lists the items a `for` loop visits. Hashes yield [key, value] pairs.
func Iterate(val Value) ([]Value, error) {
	switch typedVal := val.(type) {
	case nil, NilValue, EmptyDrop:
		return nil, nil
	case List:
		return typedVal, nil
	case *Map:
		var result []Value
		typedVal.Iterate(func(k string, v Value) {
			result = append(result, List{String(k), v})
		})
		return result, nil
	case String:
		if len(typedVal) == 0 {
			return nil, nil
		}
		return []Value{typedVal}, nil
	default:
		return nil, NewError(RenderError, TypeMismatch, "cannot iterate over %s", val.Kind())
	}
}
