// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package filters

import (
	"crypto/md5"
	"crypto/sha256"
	"fmt"

	"carvel.dev/liquid/pkg/template/core"
)

type hashFilters struct{}

func (b hashFilters) register(t *Table) {
	t.Register("md5", b.MD5)
	t.Register("sha256", b.SHA256)
}

func (hashFilters) MD5(val core.Value, args []core.Value, _ map[string]core.Value) (core.Value, error) {
	if err := expectArgs(args, 0, 0); err != nil {
		return nil, err
	}
	return core.String(fmt.Sprintf("%x", md5.Sum([]byte(core.Display(val))))), nil
}

func (hashFilters) SHA256(val core.Value, args []core.Value, _ map[string]core.Value) (core.Value, error) {
	if err := expectArgs(args, 0, 0); err != nil {
		return nil, err
	}
	return core.String(fmt.Sprintf("%x", sha256.Sum256([]byte(core.Display(val))))), nil
}
