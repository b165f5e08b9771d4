// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"carvel.dev/liquid/pkg/cmd/render"
	"carvel.dev/liquid/pkg/version"
	"github.com/cppforlife/cobrautil"
	"github.com/spf13/cobra"
)

func NewDefaultLiquidCmd() *cobra.Command {
	cmd := render.NewCmd(render.NewOptions())

	cmd.Use = "liquid"
	cmd.Aliases = nil
	cmd.Version = version.Version
	cmd.Short = "liquid renders Liquid templates"
	cmd.Long = `liquid renders Liquid templates.

Templates end in .liquid; the extension is dropped from output paths.
Variables come from --var flags, env variables and YAML, JSON or TOML files.
Filters can be added with Starlark files (--filters-file).`

	// Affects children as well
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	// Disable docs header
	cmd.DisableAutoGenTag = true

	cmd.AddCommand(NewVersionCmd(NewVersionOptions()))
	cmd.AddCommand(NewTreeCmd(NewTreeOptions()))
	cmd.AddCommand(render.NewCmd(render.NewOptions()))

	// Reconfigure Commands
	cobrautil.VisitCommands(cmd, cobrautil.ReconfigureCmdWithSubcmd,
		cobrautil.DisallowExtraArgs, cobrautil.WrapRunEForCmd(cobrautil.ResolveFlagsForCmd))

	return cmd
}
