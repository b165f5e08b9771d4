// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"reflect"
	"strconv"
	"strings"
)

// Equal implements `==`. Ints and floats compare numerically; `empty`
// matches any empty string or collection.
func Equal(left, right Value) bool {
	if _, ok := left.(EmptyDrop); ok {
		return IsEmpty(right)
	}
	if _, ok := right.(EmptyDrop); ok {
		return IsEmpty(left)
	}

	if lNum, ok := asNumber(left); ok {
		if rNum, ok := asNumber(right); ok {
			return lNum == rNum
		}
		return false
	}

	switch typedLeft := left.(type) {
	case nil, NilValue:
		switch right.(type) {
		case nil, NilValue:
			return true
		}
		return false

	case Bool:
		typedRight, ok := right.(Bool)
		return ok && typedLeft == typedRight

	case String:
		typedRight, ok := right.(String)
		return ok && typedLeft == typedRight

	case List:
		typedRight, ok := right.(List)
		if !ok || len(typedLeft) != len(typedRight) {
			return false
		}
		for i := range typedLeft {
			if !Equal(typedLeft[i], typedRight[i]) {
				return false
			}
		}
		return true

	case *Map:
		typedRight, ok := right.(*Map)
		if !ok || typedLeft.Len() != typedRight.Len() {
			return false
		}
		for _, key := range typedLeft.Keys() {
			lVal, _ := typedLeft.Get(key)
			rVal, found := typedRight.Get(key)
			if !found || !Equal(lVal, rVal) {
				return false
			}
		}
		return true

	case Object:
		typedRight, ok := right.(Object)
		if !ok {
			return false
		}
		leftType := reflect.TypeOf(typedLeft.obj)
		if leftType != reflect.TypeOf(typedRight.obj) || !leftType.Comparable() {
			return false
		}
		return typedLeft.obj == typedRight.obj

	default:
		return false
	}
}

// Compare orders numbers with numbers and strings with strings.
// Any other combination is a TypeMismatch render error.
func Compare(left, right Value) (int, error) {
	if lNum, ok := asNumber(left); ok {
		if rNum, ok := asNumber(right); ok {
			switch {
			case lNum < rNum:
				return -1, nil
			case lNum > rNum:
				return 1, nil
			default:
				return 0, nil
			}
		}
	}

	if lStr, ok := left.(String); ok {
		if rStr, ok := right.(String); ok {
			return strings.Compare(string(lStr), string(rStr)), nil
		}
	}

	return 0, NewError(RenderError, TypeMismatch, "cannot compare %s with %s", kindOf(left), kindOf(right))
}

// Contains implements the `contains` operator.
func Contains(container, item Value) (bool, error) {
	switch typedContainer := container.(type) {
	case nil, NilValue, EmptyDrop:
		return false, nil
	case String:
		return strings.Contains(string(typedContainer), Display(item)), nil
	case List:
		for _, elem := range typedContainer {
			if Equal(elem, item) {
				return true, nil
			}
		}
		return false, nil
	case *Map:
		_, found := typedContainer.Get(Display(item))
		return found, nil
	default:
		return false, NewError(RenderError, TypeMismatch, "%s does not support 'contains'", kindOf(container))
	}
}

// Get is the single attribute/item access used by `a.b` and `a[b]`.
// Lookups are tried in order: literal key or attribute, list index, then the
// size/first/last pseudo-attributes. found is false when nothing matched.
func Get(obj Value, key Value) (Value, bool) {
	if strKey, ok := key.(String); ok {
		name := string(strKey)

		switch typedObj := obj.(type) {
		case *Map:
			if val, found := typedObj.Get(name); found {
				return val, true
			}
		case Object:
			if val, found := typedObj.Attr(name); found {
				return val, true
			}
		}

		return pseudoAttr(obj, name)
	}

	if intKey, ok := asInt(key); ok {
		switch typedObj := obj.(type) {
		case List:
			idx := intKey
			if idx < 0 {
				idx += len(typedObj)
			}
			if idx < 0 || idx >= len(typedObj) {
				return nil, false
			}
			return typedObj[idx], true
		case *Map:
			return typedObj.Get(strconv.Itoa(intKey))
		}
	}

	return nil, false
}

func pseudoAttr(obj Value, name string) (Value, bool) {
	switch name {
	case "size":
		if size, ok := Len(obj); ok {
			return Int(size), true
		}
	case "first":
		if list, ok := obj.(List); ok {
			if len(list) == 0 {
				return Nil, true
			}
			return list[0], true
		}
	case "last":
		if list, ok := obj.(List); ok {
			if len(list) == 0 {
				return Nil, true
			}
			return list[len(list)-1], true
		}
	}
	return nil, false
}

func asNumber(val Value) (float64, bool) {
	switch typedVal := val.(type) {
	case Int:
		return float64(typedVal), true
	case Float:
		return float64(typedVal), true
	default:
		return 0, false
	}
}

func asInt(val Value) (int, bool) {
	switch typedVal := val.(type) {
	case Int:
		return int(typedVal), true
	case Float:
		if float64(typedVal) == float64(int(typedVal)) {
			return int(typedVal), true
		}
	}
	return 0, false
}

// ToInt converts numbers and numeric strings to an int.
func ToInt(val Value) (int, error) {
	switch typedVal := val.(type) {
	case Int:
		return int(typedVal), nil
	case Float:
		return int(typedVal), nil
	case String:
		i, err := strconv.Atoi(strings.TrimSpace(string(typedVal)))
		if err != nil {
			return 0, NewError(RenderError, TypeMismatch, "expected an integer, got '%s'", typedVal)
		}
		return i, nil
	case nil, NilValue:
		return 0, nil
	default:
		return 0, NewError(RenderError, TypeMismatch, "expected an integer, got %s", kindOf(val))
	}
}

// ToNumber converts a value to Int or Float, parsing strings when needed.
func ToNumber(val Value) (Value, error) {
	switch typedVal := val.(type) {
	case Int, Float:
		return typedVal, nil
	case String:
		str := strings.TrimSpace(string(typedVal))
		if i, err := strconv.ParseInt(str, 10, 64); err == nil {
			return Int(i), nil
		}
		if f, err := strconv.ParseFloat(str, 64); err == nil {
			return Float(f), nil
		}
		return nil, NewError(RenderError, TypeMismatch, "expected a number, got '%s'", typedVal)
	case nil, NilValue:
		return Int(0), nil
	default:
		return nil, NewError(RenderError, TypeMismatch, "expected a number, got %s", kindOf(val))
	}
}

func kindOf(val Value) Kind {
	if val == nil {
		return KindNil
	}
	return val.Kind()
}
