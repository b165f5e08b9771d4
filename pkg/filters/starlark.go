// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package filters

import (
	"fmt"
	"sort"
	"strings"

	"carvel.dev/liquid/pkg/template/core"
	"github.com/k14s/starlark-go/starlark"
	"github.com/k14s/starlark-go/starlarkstruct"
	"github.com/k14s/starlark-go/syntax"
)

// LoadStarlark executes a Starlark file and turns each public top-level
// function into a filter. The piped value is passed as the first positional
// argument, followed by the filter's own arguments.
func LoadStarlark(filename string, src []byte) (*Table, error) {
	globals, err := execStarlark(filename, src)
	if err != nil {
		return nil, core.NewError(core.SyntaxError, "", "loading filters from '%s'", filename).WithCause(err)
	}

	table := NewTable()

	for name, val := range globals {
		// Same rule as load(): underscore-prefixed globals are private
		if strings.HasPrefix(name, "_") {
			continue
		}
		if callable, ok := val.(starlark.Callable); ok {
			table.Register(name, starlarkFilter{filename, callable}.Call)
		}
	}

	return table, nil
}

func execStarlark(filename string, src []byte) (gs starlark.StringDict, resultErr error) {
	// Catch any panics to give a better contextual information
	defer func() {
		if err := recover(); err != nil {
			if typedErr, ok := err.(error); ok {
				resultErr = typedErr
			} else {
				resultErr = fmt.Errorf("(p) %s", err)
			}
		}
	}()

	predeclared := starlark.StringDict{
		"struct": starlark.NewBuiltin("struct", starlarkstruct.Make),
	}

	f, err := syntax.Parse(filename, src, 0)
	if err != nil {
		return nil, err
	}

	prog, err := starlark.FileProgram(f, predeclared.Has)
	if err != nil {
		return nil, err
	}

	thread := &starlark.Thread{Name: "liquid-filters/" + filename}

	globals, err := prog.Init(thread, predeclared)
	if err != nil {
		return nil, err
	}

	globals.Freeze()

	return globals, nil
}

type starlarkFilter struct {
	filename string
	fn       starlark.Callable
}

func (f starlarkFilter) Call(val core.Value, args []core.Value, kwargs map[string]core.Value) (core.Value, error) {
	// Threads must not be shared across goroutines
	thread := &starlark.Thread{Name: "liquid-filter/" + f.fn.Name()}

	starlarkArgs := starlark.Tuple{NewStarlarkValue(val)}
	for _, arg := range args {
		starlarkArgs = append(starlarkArgs, NewStarlarkValue(arg))
	}

	var kwargNames []string
	for name := range kwargs {
		kwargNames = append(kwargNames, name)
	}
	sort.Strings(kwargNames)

	var starlarkKwargs []starlark.Tuple
	for _, name := range kwargNames {
		starlarkKwargs = append(starlarkKwargs, starlark.Tuple{starlark.String(name), NewStarlarkValue(kwargs[name])})
	}

	result, err := starlark.Call(thread, f.fn, starlarkArgs, starlarkKwargs)
	if err != nil {
		return nil, fmt.Errorf("calling '%s' from '%s': %s", f.fn.Name(), f.filename, err)
	}
	return FromStarlarkValue(result)
}

// NewStarlarkValue converts a template value for use inside Starlark.
// Hashes become dicts that keep key order.
func NewStarlarkValue(val core.Value) starlark.Value {
	switch typedVal := val.(type) {
	case nil, core.NilValue, core.EmptyDrop:
		return starlark.None
	case core.Bool:
		return starlark.Bool(typedVal)
	case core.Int:
		return starlark.MakeInt64(int64(typedVal))
	case core.Float:
		return starlark.Float(typedVal)
	case core.String:
		return starlark.String(typedVal)
	case core.List:
		items := make([]starlark.Value, len(typedVal))
		for i, item := range typedVal {
			items[i] = NewStarlarkValue(item)
		}
		return starlark.NewList(items)
	case *core.Map:
		result := starlark.NewDict(typedVal.Len())
		typedVal.Iterate(func(k string, v core.Value) {
			result.SetKey(starlark.String(k), NewStarlarkValue(v))
		})
		return result
	case core.Object:
		result := starlark.NewDict(len(typedVal.AttrNames()))
		for _, name := range typedVal.AttrNames() {
			if attrVal, found := typedVal.Attr(name); found {
				result.SetKey(starlark.String(name), NewStarlarkValue(attrVal))
			}
		}
		return result
	default:
		panic(fmt.Sprintf("unknown value %T for conversion to starlark value", val))
	}
}

// FromStarlarkValue converts a Starlark result back into a template value.
func FromStarlarkValue(val starlark.Value) (core.Value, error) {
	switch typedVal := val.(type) {
	case nil, starlark.NoneType:
		return core.Nil, nil

	case starlark.Bool:
		return core.Bool(typedVal), nil

	case starlark.String:
		return core.String(typedVal), nil

	case starlark.Int:
		i, ok := typedVal.Int64()
		if !ok {
			return nil, fmt.Errorf("integer %s does not fit into 64 bits", typedVal.String())
		}
		return core.Int(i), nil

	case starlark.Float:
		return core.Float(typedVal), nil

	case *starlark.List:
		return fromStarlarkIterable(typedVal)

	case starlark.Tuple:
		return fromStarlarkIterable(typedVal)

	case *starlark.Dict:
		result := core.NewMap()
		for _, item := range typedVal.Items() {
			key, ok := starlark.AsString(item[0])
			if !ok {
				key = item[0].String()
			}
			itemVal, err := FromStarlarkValue(item[1])
			if err != nil {
				return nil, err
			}
			result.Set(key, itemVal)
		}
		return result, nil

	case *starlarkstruct.Struct:
		result := core.NewMap()
		for _, name := range typedVal.AttrNames() {
			attrVal, err := typedVal.Attr(name)
			if err != nil {
				return nil, err
			}
			itemVal, err := FromStarlarkValue(attrVal)
			if err != nil {
				return nil, err
			}
			result.Set(name, itemVal)
		}
		return result, nil

	default:
		return nil, fmt.Errorf("unsupported starlark value of type '%s'", val.Type())
	}
}

func fromStarlarkIterable(iterable starlark.Indexable) (core.Value, error) {
	result := core.List{}
	for i := 0; i < iterable.Len(); i++ {
		item, err := FromStarlarkValue(iterable.Index(i))
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, nil
}
