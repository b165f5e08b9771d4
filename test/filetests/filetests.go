// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package filetests houses a test harness for evaluating templates and asserting
the expected output.
*/
package filetests

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"carvel.dev/liquid/pkg/template"
	"carvel.dev/liquid/pkg/version"
	"github.com/k14s/difflib"
)

// EvaluateTemplate is the processing desired from a source template to the final result.
type EvaluateTemplate func(src string) (*Result, *TestErr)

// Result is what evaluating a single test template produced.
type Result struct {
	Output string
	Tree   *template.Tree
}

// FileTests contain a suite of test cases, each described in a separate file, verifying the behavior of templates.
//
// Test cases:
// - are found within the directory at "PathToTests"
// - conventionally have a .liquidtest extension
// - top-half is the template; bottom-half is the expected output; divided by `+++` and a blank line.
//
// Types of template tests:
// - expected output starting with `ERR:` indicate that expected output is an error message
// - expected output starting with `TREE:` indicate that expected output is the parsed tag tree
// - otherwise expected output is the literal output from template
//
// For example:
//
//	{% assign msg = "hello" %}msg: {{ msg }}
//	+++
//
//	msg: hello
type FileTests struct {
	PathToTests string
	EvalFunc    EvaluateTemplate
	ShowTree    bool
	Vars        map[string]interface{}
	Opts        *template.Options
}

// Run runs each test: enumerates each file within FileTests.PathToTests; splits and evaluates using FileTests.EvalFunc
// optionally supplying FileTests.Vars to that evaluation.
//
// If FileTests.ShowTree is set, the tag tree of every template is printed as well.
func (f FileTests) Run(t *testing.T) {
	version.Version = "0.0.0"

	paths, err := f.testPaths()
	if err != nil {
		t.Fatalf("Failed to enumerate filetests: %s", err)
	}
	if len(paths) == 0 {
		t.Fatalf("Expected to find filetests in '%s'", f.PathToTests)
	}

	if f.EvalFunc == nil {
		f.EvalFunc = f.DefaultEvalTemplate
	}

	for _, path := range paths {
		path := path
		t.Run(path, func(t *testing.T) {
			contents, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}

			src, expected, found := strings.Cut(string(contents), "\n+++\n\n")
			if !found {
				t.Fatalf("expected file %s to include +++ separator", path)
			}

			if err := f.check(src, expected); err != nil {
				t.Fatalf("%s", err)
			}
		})
	}
}

func (f FileTests) testPaths() ([]string, error) {
	var paths []string
	err := filepath.Walk(f.PathToTests, func(walkedPath string, fi os.FileInfo, err error) error {
		if err != nil || fi.IsDir() {
			return err
		}
		paths = append(paths, walkedPath)
		return nil
	})
	return paths, err
}

func (f FileTests) check(src, expected string) error {
	result, testErr := f.EvalFunc(src)

	switch {
	case strings.HasPrefix(expected, "ERR:"):
		if testErr == nil {
			return fmt.Errorf("expected eval error, but did not receive it")
		}
		expected = strings.TrimPrefix(strings.TrimPrefix(expected, "ERR:"), " ")
		expected = strings.ReplaceAll(expected, "__LIQUID_VERSION__", version.Version)
		return f.expectEquals(
			TrimTrailingMultilineWhitespace(testErr.UserErr().Error()),
			TrimTrailingMultilineWhitespace(expected))

	case testErr != nil:
		return testErr.TestErr()

	case strings.HasPrefix(expected, "TREE:"):
		expected = TrimTrailingMultilineWhitespace(strings.TrimPrefix(expected, "TREE:\n"))
		return f.expectEquals(result.Tree.DebugString(), expected)

	default:
		return f.expectEquals(result.Output, expected)
	}
}

// TestErr captures an error result from a single test.
type TestErr struct {
	realErr error
	testErr error
}

// NewTestErr creates a new TestErr
func NewTestErr(realErr, testErr error) *TestErr {
	return &TestErr{realErr, testErr}
}

// UserErr yields the error returned to the user
func (e TestErr) UserErr() error { return e.realErr }

// TestErr yields the error wrapped with helpful test context
func (e TestErr) TestErr() error { return e.testErr }

func (f FileTests) expectEquals(resultStr, expectedStr string) error {
	if resultStr != expectedStr {
		diff := difflib.PPDiff(strings.Split(expectedStr, "\n"), strings.Split(resultStr, "\n"))
		return fmt.Errorf("not equal\n\n### result %d chars:\n>>>%s<<<\n###expected %d chars:\n>>>%s<<<\n### diff expected...result:\n%s",
			len(resultStr), resultStr, len(expectedStr), expectedStr, diff)
	}
	return nil
}

// DefaultEvalTemplate parses and renders the template "src" against FileTests.Vars.
func (f FileTests) DefaultEvalTemplate(src string) (*Result, *TestErr) {
	opts := template.NewOptions()
	if f.Opts != nil {
		opts = *f.Opts
	}

	tpl, err := template.Parse("stdin", []byte(src), opts)
	if err != nil {
		return nil, NewTestErr(err, fmt.Errorf("build error: %v", err))
	}

	if f.ShowTree {
		fmt.Printf("### tree:\n%s\n", tpl.Tree().DebugString())
	}

	out, err := tpl.Render(f.Vars)
	if err != nil {
		return nil, NewTestErr(err, fmt.Errorf("render error: %v\ntree:\n%s", err, tpl.Tree().DebugString()))
	}

	return &Result{Output: out, Tree: tpl.Tree()}, nil
}

// TrimTrailingMultilineWhitespace returns a string with trailing whitespace trimmed from every line as well
// as trimmed trailing empty lines
func TrimTrailingMultilineWhitespace(s string) string {
	var trimmedLines []string
	for _, line := range strings.Split(s, "\n") {
		trimmedLine := strings.TrimRight(line, "\t ")
		trimmedLines = append(trimmedLines, trimmedLine)
	}
	multiline := strings.Join(trimmedLines, "\n")
	return strings.TrimRight(multiline, "\n")
}
