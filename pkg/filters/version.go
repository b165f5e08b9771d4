// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package filters

import (
	"fmt"

	"carvel.dev/liquid/pkg/template/core"
	"github.com/hashicorp/go-version"
)

type versionFilters struct{}

func (b versionFilters) register(t *Table) {
	t.Register("version_compare", b.Compare)
	t.Register("version_satisfies", b.Satisfies)
}

// Compare returns -1, 0 or 1.
func (versionFilters) Compare(val core.Value, args []core.Value, _ map[string]core.Value) (core.Value, error) {
	if err := expectArgs(args, 1, 1); err != nil {
		return nil, err
	}

	left, err := version.NewVersion(core.Display(val))
	if err != nil {
		return nil, fmt.Errorf("parsing version '%s': %s", core.Display(val), err)
	}
	right, err := version.NewVersion(stringArg(args, 0))
	if err != nil {
		return nil, fmt.Errorf("parsing version '%s': %s", stringArg(args, 0), err)
	}
	return core.Int(left.Compare(right)), nil
}

// Satisfies checks a version against a constraint such as ">= 1.2, < 2".
func (versionFilters) Satisfies(val core.Value, args []core.Value, _ map[string]core.Value) (core.Value, error) {
	if err := expectArgs(args, 1, 1); err != nil {
		return nil, err
	}

	ver, err := version.NewVersion(core.Display(val))
	if err != nil {
		return nil, fmt.Errorf("parsing version '%s': %s", core.Display(val), err)
	}
	constraints, err := version.NewConstraint(stringArg(args, 0))
	if err != nil {
		return nil, fmt.Errorf("parsing constraint '%s': %s", stringArg(args, 0), err)
	}
	return core.Bool(constraints.Check(ver)), nil
}
