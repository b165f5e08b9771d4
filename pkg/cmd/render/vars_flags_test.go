// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package render_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"carvel.dev/liquid/pkg/cmd/render"
	"carvel.dev/liquid/pkg/files"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func varsJSON(t *testing.T, flags render.VarsFlags, dataFiles ...*files.File) string {
	vals, err := flags.Values(dataFiles)
	require.NoError(t, err)

	bs, err := json.Marshal(vals)
	require.NoError(t, err)
	return string(bs)
}

func TestVarsFlagsKVs(t *testing.T) {
	flags := render.VarsFlags{
		KVsFromStrings: []string{"a.b=1", "c=str"},
		KVsFromYAML:    []string{"a.d=true", "list=[1, 2]"},
	}
	assert.Equal(t, `{"a":{"b":"1","d":true},"c":"str","list":[1,2]}`, varsJSON(t, flags))
}

func TestVarsFlagsPrecedence(t *testing.T) {
	t.Setenv("LQTEST_site__title", "from env")
	t.Setenv("LQTEST_site__lang", "from env")

	flags := render.VarsFlags{
		EnvFromStrings: []string{"LQTEST"},
		KVsFromStrings: []string{"site.title=from kv"},
	}
	vars := newFile(t, "vars.yml", "site:\n  title: from file\n  year: 2024\n")

	assert.Equal(t, `{"site":{"title":"from kv","year":2024,"lang":"from env"}}`, varsJSON(t, flags, vars))
}

func TestVarsFlagsFiles(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "vars.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte("name = \"toml\"\n[owner]\nage = 3\n"), 0600))
	jsonPath := filepath.Join(dir, "vars.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"name": "json", "z": 1, "a.b": 2}`), 0600))
	textPath := filepath.Join(dir, "note.txt")
	require.NoError(t, os.WriteFile(textPath, []byte("hello"), 0600))

	flags := render.VarsFlags{
		Files:        []string{tomlPath, jsonPath},
		KVsFromFiles: []string{"note=" + textPath},
	}
	assert.Equal(t, `{"name":"json","owner":{"age":3},"z":1,"a.b":2,"note":"hello"}`, varsJSON(t, flags))
}

func TestVarsFlagsErrors(t *testing.T) {
	flags := render.VarsFlags{KVsFromStrings: []string{"novalue"}}
	_, err := flags.Values(nil)
	require.Error(t, err)
	assert.Equal(t, "Extracting variable from KV: Expected format key=value", err.Error())

	flags = render.VarsFlags{KVsFromStrings: []string{"a=1", "a.b=2"}}
	_, err = flags.Values(nil)
	require.Error(t, err)
	assert.Equal(t, "Expected key 'a.b' to not conflict with other variables at piece 'a'", err.Error())

	flags = render.VarsFlags{}
	_, err = flags.Values([]*files.File{newFile(t, "list.yml", "- 1\n- 2\n")})
	require.Error(t, err)
	assert.Equal(t, "Expected vars list.yml to contain a map, but was []interface {}", err.Error())

	_, err = flags.Values([]*files.File{newFile(t, "bad.yml", "a: [")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unmarshaling vars bad.yml: ")
}
