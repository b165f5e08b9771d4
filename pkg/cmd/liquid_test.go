// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"carvel.dev/liquid/pkg/cmd/ui"
	"carvel.dev/liquid/pkg/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiquidCmdSubcommands(t *testing.T) {
	command := NewDefaultLiquidCmd()

	var names []string
	for _, sub := range command.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"render", "tree", "version"}, names)

	for _, flag := range []string{"file", "output", "var", "vars-file", "filters-file", "strict", "echo-comments", "comment-prefix", "config", "debug"} {
		assert.NotNil(t, command.Flags().Lookup(flag), "missing flag %s", flag)
	}
}

func TestLiquidCmdRendersDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "in", "sub"), 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "in", "index.html.liquid"), []byte(`Hi {{ name }}`), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "in", "sub", "vars.yml"), []byte("name: Ann\n"), 0600))
	outDir := filepath.Join(dir, "out")

	command := NewDefaultLiquidCmd()
	command.SetArgs([]string{"-f", filepath.Join(dir, "in"), "-o", outDir})
	require.NoError(t, command.Execute())

	data, err := os.ReadFile(filepath.Join(outDir, "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "Hi Ann", string(data))
}

func TestVersionCmd(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, (&VersionOptions{out: &out}).Run())
	assert.Equal(t, "liquid version "+version.Version+"\n", out.String())
}

func TestTreeCmd(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.liquid"), []byte(`{% if x %}y{% endif %}`), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte(`{% if %}`), 0600))

	var stdout bytes.Buffer
	opts := &TreeOptions{
		Files:     []string{dir},
		Recursive: true,
		ui:        ui.NewCustomWriterTTY(false, &stdout, nil),
	}
	require.NoError(t, opts.Run())

	expected := "# a.liquid\n__ROOT__\n  if x (a.liquid:1:1)\n    __LITERAL__ \"y\"\n"
	assert.Equal(t, expected, stdout.String())
}
