// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package render_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"carvel.dev/liquid/pkg/cmd/render"
	"carvel.dev/liquid/pkg/cmd/ui"
	"carvel.dev/liquid/pkg/files"
	"carvel.dev/liquid/pkg/template/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFile(t *testing.T, path, data string) *files.File {
	file, err := files.NewFileFromSource(files.NewBytesSource(path, []byte(data)))
	require.NoError(t, err)
	return file
}

func quietUI() ui.UI {
	return ui.NewCustomWriterTTY(false, &bytes.Buffer{}, &bytes.Buffer{})
}

func outputsByPath(out render.Output) map[string]string {
	result := map[string]string{}
	for _, file := range out.Files {
		result[file.RelativePath()] = string(file.Bytes())
	}
	return result
}

func TestRenderTemplatesWithVars(t *testing.T) {
	opts := render.NewOptions()
	opts.VarsFlags.KVsFromStrings = []string{"site.title=Home"}

	in := render.Input{Files: []*files.File{
		newFile(t, "index.html.liquid", `<h1>{{ site.title | upcase }}</h1>{% for p in pages %}[{{ p }}]{% endfor %}`),
		newFile(t, "vars.yml", "pages: [a, b]\nsite:\n  title: ignored\n  lang: en\n"),
		newFile(t, "sub/lang.txt.liquid", `{{ site.lang }}`),
		newFile(t, "style.css", `body {}`),
	}}

	out := opts.RunWithFiles(in, quietUI())
	require.NoError(t, out.Err)

	assert.Equal(t, map[string]string{
		"index.html":   "<h1>HOME</h1>[a][b]",
		"sub/lang.txt": "en",
	}, outputsByPath(out))

	require.Len(t, out.Copied, 1)
	assert.Equal(t, "style.css", out.Copied[0].RelativePath())
	assert.Equal(t, "body {}", string(out.Copied[0].Bytes()))
}

func TestRenderStarlarkFilters(t *testing.T) {
	opts := render.NewOptions()

	in := render.Input{Files: []*files.File{
		newFile(t, "filters.star", "def shout(s, suffix=\"!\"):\n  return s.upper() + suffix\n"),
		newFile(t, "tpl.liquid", `{{ "hi" | shout }} {{ "yo" | shout: suffix: "?" }}`),
	}}

	out := opts.RunWithFiles(in, quietUI())
	require.NoError(t, out.Err)
	assert.Equal(t, map[string]string{"tpl": "HI! YO?"}, outputsByPath(out))
}

func TestRenderStrictVariables(t *testing.T) {
	in := render.Input{Files: []*files.File{newFile(t, "tpl.liquid", `a{{ missing }}b`)}}

	out := render.NewOptions().RunWithFiles(in, quietUI())
	require.Error(t, out.Err)
	assert.True(t, core.IsCode(out.Err, core.UndefinedVariable))

	opts := render.NewOptions()
	opts.Strict = false

	out = opts.RunWithFiles(in, quietUI())
	require.NoError(t, out.Err)
	assert.Equal(t, map[string]string{"tpl": "ab"}, outputsByPath(out))
}

func TestRenderEchoComments(t *testing.T) {
	opts := render.NewOptions()
	opts.EchoComments = true
	opts.CommentPrefix = "// "

	in := render.Input{Files: []*files.File{newFile(t, "tpl.liquid", `{% comment %}note{% endcomment %}`)}}

	out := opts.RunWithFiles(in, quietUI())
	require.NoError(t, out.Err)
	assert.Equal(t, map[string]string{"tpl": "// note"}, outputsByPath(out))
}

func TestRenderSyntaxErrorNamesFile(t *testing.T) {
	in := render.Input{Files: []*files.File{newFile(t, "pages/a.liquid", "x\n{% if a %}")}}

	out := render.NewOptions().RunWithFiles(in, quietUI())
	require.Error(t, out.Err)
	assert.Contains(t, out.Err.Error(), "pages/a.liquid:2:1 | {% if a %}")
}

func TestRenderDebugOutput(t *testing.T) {
	var stdout, stderr bytes.Buffer
	tty := ui.NewCustomWriterTTY(true, &stdout, &stderr)

	in := render.Input{Files: []*files.File{newFile(t, "tpl.liquid", `{% if true %}y{% endif %}`)}}

	out := render.NewOptions().RunWithFiles(in, tty)
	require.NoError(t, out.Err)

	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "lex tpl.liquid: ")
	assert.Contains(t, stderr.String(), "build tpl.liquid: ")
	assert.Contains(t, stderr.String(), "render tpl.liquid: ")
	assert.Contains(t, stderr.String(), "### tree tpl.liquid\n__ROOT__\n  if true (tpl.liquid:1:1)\n")
}

func TestFilesFlagsOutput(t *testing.T) {
	out := render.Output{
		Files:  []files.OutputFile{files.NewOutputFile("a", []byte("A;")), files.NewOutputFile("b", []byte("B;"))},
		Copied: []files.OutputFile{files.NewOutputFile("c.css", []byte("C"))},
	}

	t.Run("stdout", func(t *testing.T) {
		var stdout bytes.Buffer
		flags := render.FilesFlags{}

		err := flags.Output(out, ui.NewCustomWriterTTY(false, &stdout, &bytes.Buffer{}))
		require.NoError(t, err)
		assert.Equal(t, "A;B;", stdout.String())
	})

	t.Run("output directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "out")
		flags := render.FilesFlags{OutputDir: dir}

		err := flags.Output(out, quietUI())
		require.NoError(t, err)

		for path, expected := range map[string]string{"a": "A;", "b": "B;", "c.css": "C"} {
			data, err := os.ReadFile(filepath.Join(dir, path))
			require.NoError(t, err)
			assert.Equal(t, expected, string(data))
		}
	})
}
