// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"fmt"
	"time"

	"carvel.dev/liquid/pkg/cmd/ui"
	"carvel.dev/liquid/pkg/files"
	"carvel.dev/liquid/pkg/filters"
	"carvel.dev/liquid/pkg/lexer"
	"carvel.dev/liquid/pkg/orderedmap"
	"carvel.dev/liquid/pkg/template"
	"github.com/spf13/cobra"
)

type Options struct {
	Debug bool

	Strict        bool
	EchoComments  bool
	CommentPrefix string

	FiltersFiles []string
	ConfigFile   string

	FilesFlags FilesFlags
	VarsFlags  VarsFlags

	changed func(string) bool
}

type Input struct {
	Files []*files.File
}

type Output struct {
	// Files are rendered templates; Copied are other inputs passed through
	// untouched (written only to an output directory).
	Files  []files.OutputFile
	Copied []files.OutputFile
	Err    error
}

func NewOptions() *Options {
	defaults := template.NewOptions()
	return &Options{
		Strict:        defaults.StrictVariables,
		EchoComments:  defaults.EchoComments,
		CommentPrefix: defaults.CommentPrefix,
	}
}

func NewCmd(o *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "render",
		Aliases: []string{"r"},
		Short:   "Render Liquid templates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			o.changed = cmd.Flags().Changed
			return o.Run()
		},
	}
	cmd.Flags().BoolVar(&o.Debug, "debug", false, "Enable debug output (phase timings and tag trees)")
	cmd.Flags().BoolVar(&o.Strict, "strict", o.Strict, "Fail on undefined variables")
	cmd.Flags().BoolVar(&o.EchoComments, "echo-comments", o.EchoComments, "Copy comment text into the output")
	cmd.Flags().StringVar(&o.CommentPrefix, "comment-prefix", o.CommentPrefix, "Prefix for each echoed comment line")
	cmd.Flags().StringArrayVar(&o.FiltersFiles, "filters-file", nil, "Starlark file whose top-level functions become filters (can be specified multiple times)")
	cmd.Flags().StringVar(&o.ConfigFile, "config", "", "TOML file with defaults for flags")
	o.FilesFlags.Set(cmd)
	o.VarsFlags.Set(cmd)
	return cmd
}

func (o *Options) Run() error {
	ui := ui.NewTTY(o.Debug)
	t1 := time.Now()

	defer func() {
		ui.Debugf("total: %s\n", time.Now().Sub(t1))
	}()

	if len(o.ConfigFile) > 0 {
		config, err := LoadConfig(o.ConfigFile)
		if err != nil {
			return err
		}
		config.ApplyTo(o, o.flagChanged)
	}

	in, err := o.FilesFlags.Input()
	if err != nil {
		return err
	}

	return o.FilesFlags.Output(o.RunWithFiles(in, ui), ui)
}

func (o *Options) RunWithFiles(in Input, ui ui.UI) Output {
	var tplFiles, starlarkFiles, dataFiles, otherFiles []*files.File

	for _, file := range in.Files {
		switch file.Type() {
		case files.TypeTemplate:
			tplFiles = append(tplFiles, file)
		case files.TypeStarlark:
			starlarkFiles = append(starlarkFiles, file)
		case files.TypeData:
			dataFiles = append(dataFiles, file)
		default:
			otherFiles = append(otherFiles, file)
		}
	}

	table, err := o.filterTable(starlarkFiles, ui)
	if err != nil {
		return Output{Err: err}
	}

	vars, err := o.VarsFlags.Values(dataFiles)
	if err != nil {
		return Output{Err: err}
	}

	tplOpts := template.NewOptions()
	tplOpts.Filters = table
	tplOpts.StrictVariables = o.Strict
	tplOpts.EchoComments = o.EchoComments
	tplOpts.CommentPrefix = o.CommentPrefix

	var out Output

	for _, file := range tplFiles {
		result, err := o.renderFile(file, tplOpts, vars, ui)
		if err != nil {
			return Output{Err: err}
		}
		out.Files = append(out.Files, files.NewOutputFile(file.OutputRelativePath(), []byte(result)))
	}

	for _, file := range otherFiles {
		data, err := file.Bytes()
		if err != nil {
			return Output{Err: fmt.Errorf("Reading %s: %s", file.Description(), err)}
		}
		out.Copied = append(out.Copied, files.NewOutputFile(file.RelativePath(), data))
	}

	return out
}

func (o *Options) renderFile(file *files.File, opts template.Options, vars *orderedmap.Map, ui ui.UI) (string, error) {
	data, err := file.Bytes()
	if err != nil {
		return "", fmt.Errorf("Reading %s: %s", file.Description(), err)
	}

	name := file.RelativePath()

	t1 := time.Now()
	segments, err := lexer.NewSplitter().Split(data, name)
	if err != nil {
		return "", err
	}
	ui.Debugf("lex %s: %s\n", name, time.Now().Sub(t1))

	t2 := time.Now()
	tree, err := template.NewBuilder(opts).Build(name, segments)
	if err != nil {
		return "", err
	}
	ui.Debugf("build %s: %s\n", name, time.Now().Sub(t2))

	fmt.Fprintf(ui.DebugWriter(), "### tree %s\n%s\n", name, tree.DebugString())

	t3 := time.Now()
	result, err := template.NewFromTree(tree, opts).Render(varsAsGo(vars))
	if err != nil {
		return "", err
	}
	ui.Debugf("render %s: %s\n", name, time.Now().Sub(t3))

	return result, nil
}

// filterTable layers Starlark filters over the builtins. Files given with
// --filters-file load after the ones found among the inputs.
func (o *Options) filterTable(starlarkFiles []*files.File, ui ui.UI) (*filters.Table, error) {
	table := filters.NewBuiltinTable()

	flagFiles, err := files.NewFiles(o.FiltersFiles, false)
	if err != nil {
		return nil, err
	}

	for _, file := range append(append([]*files.File{}, starlarkFiles...), flagFiles...) {
		src, err := file.Bytes()
		if err != nil {
			return nil, fmt.Errorf("Reading filters %s: %s", file.Description(), err)
		}

		loaded, err := filters.LoadStarlark(file.RelativePath(), src)
		if err != nil {
			return nil, err
		}

		ui.Debugf("filters %s: %v\n", file.RelativePath(), loaded.Names())
		table = table.Merge(loaded)
	}

	return table, nil
}

func (o *Options) flagChanged(name string) bool {
	if o.changed == nil {
		return false
	}
	return o.changed(name)
}

func varsAsGo(vars *orderedmap.Map) map[string]interface{} {
	result := map[string]interface{}{}
	vars.Iterate(func(k, v interface{}) {
		result[fmt.Sprintf("%v", k)] = v
	})
	return result
}
