// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"
	"unicode"

	"carvel.dev/liquid/pkg/orderedmap"
)

// FromGo converts host data into a Value. Maps with native Go ordering are
// sorted by key; *orderedmap.Map keeps its order; structs become objects.
func FromGo(val interface{}) Value {
	switch typedVal := val.(type) {
	case nil:
		return Nil
	case Value:
		return typedVal
	case Gettable:
		return NewObject(typedVal)
	case bool:
		return Bool(typedVal)
	case string:
		return String(typedVal)
	case []byte:
		return String(typedVal)
	case int:
		return Int(typedVal)
	case int8:
		return Int(typedVal)
	case int16:
		return Int(typedVal)
	case int32:
		return Int(typedVal)
	case int64:
		return Int(typedVal)
	case uint:
		return Int(typedVal)
	case uint8:
		return Int(typedVal)
	case uint16:
		return Int(typedVal)
	case uint32:
		return Int(typedVal)
	case uint64:
		return Int(typedVal)
	case float32:
		return Float(typedVal)
	case float64:
		return Float(typedVal)
	case time.Time:
		return String(typedVal.Format(time.RFC3339))
	case *orderedmap.Map:
		result := NewMap()
		typedVal.Iterate(func(k, v interface{}) {
			result.Set(fmt.Sprintf("%v", k), FromGo(v))
		})
		return result
	case []interface{}:
		result := make(List, len(typedVal))
		for i, item := range typedVal {
			result[i] = FromGo(item)
		}
		return result
	case map[string]interface{}:
		return FromGo(orderedmap.Conversion{Object: typedVal}.FromUnorderedMaps())
	case map[interface{}]interface{}:
		return FromGo(orderedmap.Conversion{Object: typedVal}.FromUnorderedMaps())
	case fmt.Stringer:
		if reflect.ValueOf(val).Kind() != reflect.Struct && reflect.ValueOf(val).Kind() != reflect.Ptr {
			return String(typedVal.String())
		}
	}

	return fromReflectValue(reflect.ValueOf(val))
}

func fromReflectValue(rv reflect.Value) Value {
	switch rv.Kind() {
	case reflect.Invalid:
		return Nil
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return Nil
		}
		if rv.Kind() == reflect.Ptr && rv.Elem().Kind() == reflect.Struct {
			return NewObject(structObject{rv})
		}
		return FromGo(rv.Elem().Interface())
	case reflect.Bool:
		return Bool(rv.Bool())
	case reflect.String:
		return String(rv.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Int(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float())
	case reflect.Slice, reflect.Array:
		result := make(List, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			result[i] = FromGo(rv.Index(i).Interface())
		}
		return result
	case reflect.Map:
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool {
			return fmt.Sprintf("%v", keys[i].Interface()) < fmt.Sprintf("%v", keys[j].Interface())
		})
		result := NewMap()
		for _, key := range keys {
			result.Set(fmt.Sprintf("%v", key.Interface()), FromGo(rv.MapIndex(key).Interface()))
		}
		return result
	case reflect.Struct:
		return NewObject(structObject{rv})
	default:
		panic(fmt.Sprintf("unknown type %s for conversion to template value", rv.Type()))
	}
}

// ToGo is the inverse of FromGo: hashes become *orderedmap.Map.
func ToGo(val Value) interface{} {
	switch typedVal := val.(type) {
	case nil, NilValue, EmptyDrop:
		return nil
	case Bool:
		return bool(typedVal)
	case Int:
		return int64(typedVal)
	case Float:
		return float64(typedVal)
	case String:
		return string(typedVal)
	case List:
		result := make([]interface{}, len(typedVal))
		for i, item := range typedVal {
			result[i] = ToGo(item)
		}
		return result
	case *Map:
		result := orderedmap.NewMap()
		typedVal.Iterate(func(k string, v Value) {
			result.Set(k, ToGo(v))
		})
		return result
	case Object:
		result := orderedmap.NewMap()
		for _, name := range typedVal.AttrNames() {
			attrVal, found := typedVal.Attr(name)
			if found {
				result.Set(name, ToGo(attrVal))
			}
		}
		return result
	default:
		panic(fmt.Sprintf("unknown value %T for conversion to go value", val))
	}
}

// structObject exposes exported fields of a Go struct. Fields are
// reachable by their Go name, their `liquid` tag or their snake_case name.
type structObject struct {
	rv reflect.Value
}

var _ Gettable = structObject{}

func (s structObject) structValue() reflect.Value {
	if s.rv.Kind() == reflect.Ptr {
		return s.rv.Elem()
	}
	return s.rv
}

func (s structObject) Attr(name string) (Value, bool) {
	sv := s.structValue()
	st := sv.Type()

	for i := 0; i < st.NumField(); i++ {
		field := st.Field(i)
		if !field.IsExported() {
			continue
		}
		if s.fieldName(field) == name || field.Name == name {
			return FromGo(sv.Field(i).Interface()), true
		}
	}

	// zero-arg methods returning a single value act as computed attributes
	method := s.rv.MethodByName(name)
	if !method.IsValid() {
		method = s.rv.MethodByName(snakeToCamel(name))
	}
	if method.IsValid() && method.Type().NumIn() == 0 && method.Type().NumOut() == 1 {
		return FromGo(method.Call(nil)[0].Interface()), true
	}

	return nil, false
}

func (s structObject) AttrNames() []string {
	st := s.structValue().Type()
	var names []string
	for i := 0; i < st.NumField(); i++ {
		if st.Field(i).IsExported() {
			names = append(names, s.fieldName(st.Field(i)))
		}
	}
	return names
}

func (structObject) fieldName(field reflect.StructField) string {
	if tag, ok := field.Tag.Lookup("liquid"); ok && tag != "" && tag != "-" {
		return tag
	}
	return camelToSnake(field.Name)
}

func camelToSnake(name string) string {
	var sb strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				sb.WriteRune('_')
			}
			sb.WriteRune(unicode.ToLower(r))
		} else {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func snakeToCamel(name string) string {
	var sb strings.Builder
	for _, piece := range strings.Split(name, "_") {
		if len(piece) == 0 {
			continue
		}
		runes := []rune(piece)
		runes[0] = unicode.ToUpper(runes[0])
		sb.WriteString(string(runes))
	}
	return sb.String()
}
