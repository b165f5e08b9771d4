// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package filters

import (
	"fmt"
	"runtime/debug"
	"sort"

	"carvel.dev/liquid/pkg/template/core"
)

// Func is a filter: it receives the piped value plus evaluated arguments.
type Func func(val core.Value, args []core.Value, kwargs map[string]core.Value) (core.Value, error)

// Table maps filter names to functions. A Table is safe for concurrent
// Apply calls once registration is done.
type Table struct {
	funcs map[string]Func
}

func NewTable() *Table {
	return &Table{funcs: map[string]Func{}}
}

// Register adds or replaces a filter.
func (t *Table) Register(name string, fn Func) {
	t.funcs[name] = fn
}

func (t *Table) Lookup(name string) (Func, bool) {
	if t == nil {
		return nil, false
	}
	fn, found := t.funcs[name]
	return fn, found
}

func (t *Table) Names() []string {
	var names []string
	for name := range t.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (t *Table) Len() int { return len(t.funcs) }

// Merge returns a new table with overrides taking precedence.
func (t *Table) Merge(overrides *Table) *Table {
	result := NewTable()
	for name, fn := range t.funcs {
		result.funcs[name] = fn
	}
	if overrides != nil {
		for name, fn := range overrides.funcs {
			result.funcs[name] = fn
		}
	}
	return result
}

// Apply dispatches to the named filter. Unknown names are NameErrors;
// failures inside a filter (including panics) become RenderErrors.
func (t *Table) Apply(name string, val core.Value, args []core.Value, kwargs map[string]core.Value) (core.Value, error) {
	fn, found := t.Lookup(name)
	if !found {
		return nil, core.NewError(core.NameError, core.UndefinedFilter, "undefined filter '%s'", name).
			WithName(name).WithHint(core.HintFor(core.UndefinedFilter, name))
	}
	return errWrapper(name, fn)(val, args, kwargs)
}

func errWrapper(name string, wrappedFunc Func) Func {
	return func(val core.Value, args []core.Value, kwargs map[string]core.Value) (result core.Value, resultErr error) {
		// Catch any panics to give a better contextual information
		defer func() {
			if err := recover(); err != nil {
				resultErr = core.NewError(core.RenderError, core.FilterFailed, "filter '%s' failed", name).
					WithName(name).WithCause(fmt.Errorf("(p) %v (backtrace: %s)", err, debug.Stack()))
			}
		}()

		result, err := wrappedFunc(val, args, kwargs)
		if err != nil {
			return nil, core.NewError(core.RenderError, core.FilterFailed, "filter '%s' failed", name).
				WithName(name).WithCause(err)
		}
		if result == nil {
			result = core.Nil
		}
		return result, nil
	}
}
