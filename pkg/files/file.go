// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var (
	templateExts = []string{".liquid"}
	starlarkExts = []string{".star"}
	dataExts     = []string{".yaml", ".yml", ".json", ".toml"}
)

type Type int

const (
	TypeUnknown Type = iota
	TypeTemplate
	TypeStarlark
	TypeData
)

func (t Type) String() string {
	switch t {
	case TypeTemplate:
		return "template"
	case TypeStarlark:
		return "starlark"
	case TypeData:
		return "data"
	default:
		return "unknown"
	}
}

type File struct {
	src     Source
	relPath string
}

// NewFiles expands paths into files. "-" is stdin, http(s) URLs are
// fetched and directories are walked when recursive is set.
func NewFiles(paths []string, recursive bool) ([]*File, error) {
	var fileSrcs []Source

	for _, path := range paths {
		switch {
		case path == "-":
			fileSrcs = append(fileSrcs, NewStdinSource())

		case strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://"):
			fileSrcs = append(fileSrcs, NewHTTPSource(path))

		default:
			fileInfo, err := os.Stat(path)
			if err != nil {
				return nil, fmt.Errorf("Checking file '%s'", path)
			}

			if !fileInfo.IsDir() {
				fileSrcs = append(fileSrcs, NewLocalSource(path, ""))
				continue
			}

			if !recursive {
				return nil, fmt.Errorf("Expected file '%s' to not be a directory", path)
			}

			var selectedPaths []string

			err = filepath.Walk(path, func(walkedPath string, fi os.FileInfo, err error) error {
				if err != nil || fi.IsDir() {
					return err
				}
				selectedPaths = append(selectedPaths, walkedPath)
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("Listing files '%s'", path)
			}

			sort.Strings(selectedPaths)

			for _, selectedPath := range selectedPaths {
				fileSrcs = append(fileSrcs, NewLocalSource(selectedPath, path))
			}
		}
	}

	var files []*File

	for _, fileSrc := range fileSrcs {
		file, err := NewFileFromSource(fileSrc)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}

	return files, nil
}

func NewFileFromSource(fileSrc Source) (*File, error) {
	relPath, err := fileSrc.RelativePath()
	if err != nil {
		return nil, fmt.Errorf("Calculating relative path for '%s': %s", fileSrc.Description(), err)
	}

	return &File{src: fileSrc, relPath: relPath}, nil
}

func (r *File) Description() string    { return r.src.Description() }
func (r *File) RelativePath() string   { return r.relPath }
func (r *File) Bytes() ([]byte, error) { return r.src.Bytes() }

// Type is decided by the last extension, so 'index.html.liquid' is a
// template. Files given on stdin are templates.
func (r *File) Type() Type {
	switch {
	case r.matchesExt(templateExts):
		return TypeTemplate
	case r.matchesExt(starlarkExts):
		return TypeStarlark
	case r.matchesExt(dataExts):
		return TypeData
	default:
		return TypeUnknown
	}
}

// OutputRelativePath drops the template extension: 'a/index.html.liquid'
// is written as 'a/index.html'.
func (r *File) OutputRelativePath() string {
	for _, ext := range templateExts {
		if strings.HasSuffix(r.relPath, ext) {
			return strings.TrimSuffix(r.relPath, ext)
		}
	}
	return r.relPath
}

func (r *File) matchesExt(exts []string) bool {
	filename := filepath.Base(r.RelativePath())
	for _, ext := range exts {
		if strings.HasSuffix(filename, ext) {
			return true
		}
	}
	return false
}
