// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"carvel.dev/liquid/pkg/cmd/ui"
	"carvel.dev/liquid/pkg/files"
	"carvel.dev/liquid/pkg/template"
	"github.com/spf13/cobra"
)

// TreeOptions print the resolved tag tree of templates without rendering.
type TreeOptions struct {
	Files     []string
	Recursive bool

	ui ui.UI
}

func NewTreeOptions() *TreeOptions {
	return &TreeOptions{Recursive: true, ui: ui.NewTTY(false)}
}

func NewTreeCmd(o *TreeOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the tag tree of templates",
		RunE:  func(_ *cobra.Command, _ []string) error { return o.Run() },
	}
	cmd.Flags().StringArrayVarP(&o.Files, "file", "f", nil, "File (ie local path, HTTP URL, -) (can be specified multiple times)")
	cmd.Flags().BoolVarP(&o.Recursive, "recursive", "R", true, "Interpret file as directory")
	return cmd
}

func (o *TreeOptions) Run() error {
	filesToProcess, err := files.NewFiles(o.Files, o.Recursive)
	if err != nil {
		return err
	}

	for _, file := range filesToProcess {
		if file.Type() != files.TypeTemplate {
			continue
		}

		data, err := file.Bytes()
		if err != nil {
			return fmt.Errorf("Reading %s: %s", file.Description(), err)
		}

		tpl, err := template.Parse(file.RelativePath(), data, template.NewOptions())
		if err != nil {
			return err
		}

		o.ui.Printf("# %s\n%s\n", file.RelativePath(), tpl.Tree().DebugString())
	}

	return nil
}
