// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"carvel.dev/liquid/pkg/cmd/ui"
	"carvel.dev/liquid/pkg/files"
	"github.com/spf13/cobra"
)

type FilesFlags struct {
	Files     []string
	Recursive bool
	OutputDir string
}

func (s *FilesFlags) Set(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&s.Files, "file", "f", nil, "File (ie local path, HTTP URL, -) (can be specified multiple times)")
	cmd.Flags().BoolVarP(&s.Recursive, "recursive", "R", true, "Interpret file as directory")
	cmd.Flags().StringVarP(&s.OutputDir, "output", "o", "", "Directory for output (replaces its contents)")
}

func (s *FilesFlags) Input() (Input, error) {
	filesToProcess, err := files.NewFiles(s.Files, s.Recursive)
	if err != nil {
		return Input{}, err
	}
	return Input{Files: filesToProcess}, nil
}

// Output writes into the output directory when one is given; otherwise
// rendered templates are printed one after another and other files
// are dropped.
func (s *FilesFlags) Output(out Output, ui ui.UI) error {
	if out.Err != nil {
		return out.Err
	}

	if len(s.OutputDir) > 0 {
		return files.NewOutputDirectory(s.OutputDir, append(out.Files, out.Copied...), ui).Write()
	}

	for _, file := range out.Copied {
		ui.Debugf("### skipping non-template %s\n", file.RelativePath())
	}

	for _, file := range out.Files {
		ui.Debugf("### result %s\n", file.RelativePath())
		ui.Printf("%s", file.Bytes()) // no newline
	}

	return nil
}
