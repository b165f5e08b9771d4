// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package filters_test

import (
	"testing"

	"carvel.dev/liquid/pkg/filters"
	"carvel.dev/liquid/pkg/template/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const starlarkFilterSrc = `
def shout(s, suffix="!"):
  return s.upper() + suffix

def pairs(d):
  return [k + "=" + str(d[k]) for k in d]

def describe(v):
  return struct(kind=type(v), empty=not v)

def _private(v):
  return v

limit = 3
`

func TestLoadStarlark(t *testing.T) {
	table, err := filters.LoadStarlark("custom.star", []byte(starlarkFilterSrc))
	require.NoError(t, err)
	assert.Equal(t, []string{"describe", "pairs", "shout"}, table.Names())

	val, err := table.Apply("shout", core.String("hi"), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, core.String("HI!"), val)

	val, err = table.Apply("shout", core.String("hi"), nil, map[string]core.Value{"suffix": core.String("?")})
	require.NoError(t, err)
	assert.Equal(t, core.String("HI?"), val)

	m := core.NewMap()
	m.Set("b", core.Int(2))
	m.Set("a", core.Int(1))

	val, err = table.Apply("pairs", m, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, core.List{core.String("b=2"), core.String("a=1")}, val)

	val, err = table.Apply("describe", core.List{}, nil, nil)
	require.NoError(t, err)
	kind, _ := core.Get(val, core.String("kind"))
	assert.Equal(t, core.String("list"), kind)
	empty, _ := core.Get(val, core.String("empty"))
	assert.Equal(t, core.True, empty)
}

func TestLoadStarlarkErrors(t *testing.T) {
	_, err := filters.LoadStarlark("broken.star", []byte("def x(:\n"))
	require.Error(t, err)
	assert.True(t, core.IsKind(err, core.SyntaxError))
	assert.Contains(t, err.Error(), "loading filters from 'broken.star'")

	table, err := filters.LoadStarlark("fails.star", []byte("def fail(v):\n  return v + 1\n"))
	require.NoError(t, err)

	_, err = table.Apply("fail", core.String("x"), nil, nil)
	require.Error(t, err)
	assert.True(t, core.IsCode(err, core.FilterFailed))
	assert.Contains(t, err.Error(), "calling 'fail' from 'fails.star'")
}
