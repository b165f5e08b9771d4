// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package filters

import (
	"time"
)

type registrar interface {
	register(*Table)
}

// NewBuiltinTable returns a table with the standard filter catalog.
func NewBuiltinTable() *Table {
	return newBuiltinTable(time.Now)
}

func newBuiltinTable(now func() time.Time) *Table {
	table := NewTable()

	for _, group := range []registrar{
		stringFilters{},
		arrayFilters{},
		mathFilters{},
		miscFilters{Now: now},
		encodingFilters{},
		hashFilters{},
		regexpFilters{},
		versionFilters{},
	} {
		group.register(table)
	}

	return table
}
