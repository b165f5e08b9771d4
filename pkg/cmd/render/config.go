// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the optional TOML file given with --config. Explicitly set
// flags win over its values; listed files are loaded before those given
// as flags.
//
//	strict = false
//	echo_comments = true
//	comment_prefix = "// "
//	filters_files = ["filters.star"]
//	vars_files = ["vars.yml"]
type Config struct {
	Strict        *bool    `toml:"strict"`
	EchoComments  *bool    `toml:"echo_comments"`
	CommentPrefix *string  `toml:"comment_prefix"`
	FiltersFiles  []string `toml:"filters_files"`
	VarsFiles     []string `toml:"vars_files"`
}

func LoadConfig(path string) (Config, error) {
	var config Config

	md, err := toml.DecodeFile(path, &config)
	if err != nil {
		return Config{}, fmt.Errorf("Reading config file '%s': %s", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		var keys []string
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return Config{}, fmt.Errorf("Unknown keys in config file '%s': %s", path, strings.Join(keys, ", "))
	}

	// Paths are relative to the config file itself
	dir := filepath.Dir(path)
	config.FiltersFiles = resolvePaths(dir, config.FiltersFiles)
	config.VarsFiles = resolvePaths(dir, config.VarsFiles)

	return config, nil
}

// ApplyTo fills in options whose flags were not set explicitly.
func (c Config) ApplyTo(o *Options, changed func(string) bool) {
	if c.Strict != nil && !changed("strict") {
		o.Strict = *c.Strict
	}
	if c.EchoComments != nil && !changed("echo-comments") {
		o.EchoComments = *c.EchoComments
	}
	if c.CommentPrefix != nil && !changed("comment-prefix") {
		o.CommentPrefix = *c.CommentPrefix
	}
	o.FiltersFiles = append(append([]string{}, c.FiltersFiles...), o.FiltersFiles...)
	o.VarsFlags.Files = append(append([]string{}, c.VarsFiles...), o.VarsFlags.Files...)
}

func resolvePaths(dir string, paths []string) []string {
	var result []string
	for _, path := range paths {
		switch {
		case path == "-", filepath.IsAbs(path),
			strings.HasPrefix(path, "http://"), strings.HasPrefix(path, "https://"):
			result = append(result, path)
		default:
			result = append(result, filepath.Join(dir, path))
		}
	}
	return result
}
