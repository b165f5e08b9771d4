// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package filters

import (
	"regexp"

	"carvel.dev/liquid/pkg/template/core"
)

type regexpFilters struct{}

func (b regexpFilters) register(t *Table) {
	t.Register("regex_match", b.Match)
	t.Register("regex_replace", b.Replace)
}

func (regexpFilters) Match(val core.Value, args []core.Value, _ map[string]core.Value) (core.Value, error) {
	if err := expectArgs(args, 1, 1); err != nil {
		return nil, err
	}

	matched, err := regexp.MatchString(stringArg(args, 0), core.Display(val))
	if err != nil {
		return nil, err
	}
	return core.Bool(matched), nil
}

// Replace expands $1 style group references in the replacement.
func (regexpFilters) Replace(val core.Value, args []core.Value, _ map[string]core.Value) (core.Value, error) {
	if err := expectArgs(args, 2, 2); err != nil {
		return nil, err
	}

	re, err := regexp.Compile(stringArg(args, 0))
	if err != nil {
		return nil, err
	}
	return core.String(re.ReplaceAllString(core.Display(val), stringArg(args, 1))), nil
}
