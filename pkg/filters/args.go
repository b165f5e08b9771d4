// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package filters

import (
	"fmt"
	"sort"
	"strings"

	"carvel.dev/liquid/pkg/template/core"
)

func expectArgs(args []core.Value, min, max int) error {
	switch {
	case min == max && len(args) != min:
		return fmt.Errorf("expected exactly %d argument(s), got %d", min, len(args))
	case len(args) < min:
		return fmt.Errorf("expected at least %d argument(s), got %d", min, len(args))
	case max >= 0 && len(args) > max:
		return fmt.Errorf("expected at most %d argument(s), got %d", max, len(args))
	}
	return nil
}

func checkKwargNames(kwargs map[string]core.Value, allowed ...string) error {
	for name := range kwargs {
		found := false
		for _, allowedName := range allowed {
			if name == allowedName {
				found = true
				break
			}
		}
		if !found {
			if len(allowed) == 0 {
				return fmt.Errorf("unexpected keyword argument '%s'", name)
			}
			sorted := append([]string{}, allowed...)
			sort.Strings(sorted)
			return fmt.Errorf("unexpected keyword argument '%s' (allowed: %s)", name, strings.Join(sorted, ", "))
		}
	}
	return nil
}

func boolKwarg(kwargs map[string]core.Value, name string, defaultVal bool) bool {
	val, found := kwargs[name]
	if !found {
		return defaultVal
	}
	return core.Truthy(val)
}

func stringArg(args []core.Value, idx int) string {
	if idx >= len(args) {
		return ""
	}
	return core.Display(args[idx])
}

func intArg(args []core.Value, idx int, defaultVal int) (int, error) {
	if idx >= len(args) {
		return defaultVal, nil
	}
	i, err := core.ToInt(args[idx])
	if err != nil {
		return 0, fmt.Errorf("argument %d: %s", idx+1, msgOf(err))
	}
	return i, nil
}

func numberArg(args []core.Value, idx int) (core.Value, error) {
	if idx >= len(args) {
		return nil, fmt.Errorf("expected argument %d", idx+1)
	}
	num, err := core.ToNumber(args[idx])
	if err != nil {
		return nil, fmt.Errorf("argument %d: %s", idx+1, msgOf(err))
	}
	return num, nil
}

func listOf(val core.Value) core.List {
	switch typedVal := val.(type) {
	case core.List:
		return typedVal
	case core.NilValue, core.EmptyDrop:
		return core.List{}
	default:
		return core.List{val}
	}
}

func msgOf(err error) string {
	if typedErr, ok := core.AsError(err); ok {
		return typedErr.Msg
	}
	return err.Error()
}
