// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package filters

import (
	"fmt"
	"sort"
	"strings"

	"carvel.dev/liquid/pkg/template/core"
)

type arrayFilters struct{}

func (b arrayFilters) register(t *Table) {
	t.Register("size", b.Size)
	t.Register("first", b.First)
	t.Register("last", b.Last)
	t.Register("join", b.Join)
	t.Register("reverse", b.Reverse)
	t.Register("sort", b.Sort)
	t.Register("sort_natural", b.SortNatural)
	t.Register("uniq", b.Uniq)
	t.Register("compact", b.Compact)
	t.Register("map", b.Map)
	t.Register("where", b.Where)
	t.Register("concat", b.Concat)
}

func (arrayFilters) Size(val core.Value, args []core.Value, _ map[string]core.Value) (core.Value, error) {
	if err := expectArgs(args, 0, 0); err != nil {
		return nil, err
	}
	size, _ := core.Len(val)
	return core.Int(size), nil
}

func (arrayFilters) First(val core.Value, args []core.Value, _ map[string]core.Value) (core.Value, error) {
	if err := expectArgs(args, 0, 0); err != nil {
		return nil, err
	}
	if str, ok := val.(core.String); ok {
		runes := []rune(string(str))
		if len(runes) == 0 {
			return core.Nil, nil
		}
		return core.String(runes[0]), nil
	}
	list := listOf(val)
	if len(list) == 0 {
		return core.Nil, nil
	}
	return list[0], nil
}

func (arrayFilters) Last(val core.Value, args []core.Value, _ map[string]core.Value) (core.Value, error) {
	if err := expectArgs(args, 0, 0); err != nil {
		return nil, err
	}
	if str, ok := val.(core.String); ok {
		runes := []rune(string(str))
		if len(runes) == 0 {
			return core.Nil, nil
		}
		return core.String(runes[len(runes)-1]), nil
	}
	list := listOf(val)
	if len(list) == 0 {
		return core.Nil, nil
	}
	return list[len(list)-1], nil
}

func (arrayFilters) Join(val core.Value, args []core.Value, _ map[string]core.Value) (core.Value, error) {
	if err := expectArgs(args, 0, 1); err != nil {
		return nil, err
	}
	sep := " "
	if len(args) > 0 {
		sep = stringArg(args, 0)
	}

	var pieces []string
	for _, item := range listOf(val) {
		pieces = append(pieces, core.Display(item))
	}
	return core.String(strings.Join(pieces, sep)), nil
}

func (arrayFilters) Reverse(val core.Value, args []core.Value, _ map[string]core.Value) (core.Value, error) {
	if err := expectArgs(args, 0, 0); err != nil {
		return nil, err
	}
	list := listOf(val)
	result := make(core.List, len(list))
	for i, item := range list {
		result[len(list)-1-i] = item
	}
	return result, nil
}

func (b arrayFilters) Sort(val core.Value, args []core.Value, _ map[string]core.Value) (core.Value, error) {
	if err := expectArgs(args, 0, 1); err != nil {
		return nil, err
	}
	return b.sortBy(listOf(val), args, func(left, right core.Value) (int, error) {
		return core.Compare(left, right)
	})
}

// SortNatural orders case-insensitively; non-string items are compared by
// their displayed text.
func (b arrayFilters) SortNatural(val core.Value, args []core.Value, _ map[string]core.Value) (core.Value, error) {
	if err := expectArgs(args, 0, 1); err != nil {
		return nil, err
	}
	return b.sortBy(listOf(val), args, func(left, right core.Value) (int, error) {
		return strings.Compare(strings.ToLower(core.Display(left)), strings.ToLower(core.Display(right))), nil
	})
}

func (arrayFilters) sortBy(list core.List, args []core.Value, cmp func(core.Value, core.Value) (int, error)) (core.Value, error) {
	keyOf := func(item core.Value) core.Value { return item }
	if len(args) > 0 {
		prop := args[0]
		keyOf = func(item core.Value) core.Value {
			val, found := core.Get(item, prop)
			if !found {
				return core.Nil
			}
			return val
		}
	}

	result := append(core.List{}, list...)

	var sortErr error
	sort.SliceStable(result, func(i, j int) bool {
		left, right := keyOf(result[i]), keyOf(result[j])

		// nils sort last
		_, leftNil := left.(core.NilValue)
		_, rightNil := right.(core.NilValue)
		if leftNil || rightNil {
			return !leftNil && rightNil
		}

		cmpResult, err := cmp(left, right)
		if err != nil && sortErr == nil {
			sortErr = err
		}
		return cmpResult < 0
	})
	if sortErr != nil {
		return nil, sortErr
	}
	return result, nil
}

func (arrayFilters) Uniq(val core.Value, args []core.Value, _ map[string]core.Value) (core.Value, error) {
	if err := expectArgs(args, 0, 0); err != nil {
		return nil, err
	}
	result := core.List{}
	for _, item := range listOf(val) {
		seen := false
		for _, existing := range result {
			if core.Equal(existing, item) {
				seen = true
				break
			}
		}
		if !seen {
			result = append(result, item)
		}
	}
	return result, nil
}

func (arrayFilters) Compact(val core.Value, args []core.Value, _ map[string]core.Value) (core.Value, error) {
	if err := expectArgs(args, 0, 0); err != nil {
		return nil, err
	}
	result := core.List{}
	for _, item := range listOf(val) {
		if _, isNil := item.(core.NilValue); !isNil && item != nil {
			result = append(result, item)
		}
	}
	return result, nil
}

func (arrayFilters) Map(val core.Value, args []core.Value, _ map[string]core.Value) (core.Value, error) {
	if err := expectArgs(args, 1, 1); err != nil {
		return nil, err
	}
	result := core.List{}
	for _, item := range listOf(val) {
		attr, found := core.Get(item, args[0])
		if !found {
			attr = core.Nil
		}
		result = append(result, attr)
	}
	return result, nil
}

// Where keeps items whose property equals the given value, or is truthy when
// no value is given.
func (arrayFilters) Where(val core.Value, args []core.Value, _ map[string]core.Value) (core.Value, error) {
	if err := expectArgs(args, 1, 2); err != nil {
		return nil, err
	}
	result := core.List{}
	for _, item := range listOf(val) {
		attr, found := core.Get(item, args[0])
		if !found {
			continue
		}
		if len(args) == 2 {
			if core.Equal(attr, args[1]) {
				result = append(result, item)
			}
		} else if core.Truthy(attr) {
			result = append(result, item)
		}
	}
	return result, nil
}

func (arrayFilters) Concat(val core.Value, args []core.Value, _ map[string]core.Value) (core.Value, error) {
	if err := expectArgs(args, 1, 1); err != nil {
		return nil, err
	}
	other, ok := args[0].(core.List)
	if !ok {
		return nil, fmt.Errorf("expected an array argument, got %s", args[0].Kind())
	}
	result := append(core.List{}, listOf(val)...)
	return append(result, other...), nil
}
