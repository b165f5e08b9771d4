// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package pkg is the collection of packages that make up the implementation of liquid.

Packages are layered and depend on each other only to the degree required.
In the inventory, below, individual packages are named alongside their
coupling with the other packages in the codebase.

	(# of dependents) => <package name> => (# of dependencies)

# Entry Point

liquid is built into a single command-line tool:

	./cmd/liquid

# Commands

The default command is "render"; "tree" prints the tag tree of templates
without rendering them.

	(1) => pkg/cmd => (5)
	(1) => pkg/cmd/render => (6)

# Templating

A template is split into segments (literal text, {{ output }}, {% tag %}),
the segments are assembled into a tag tree and the tree is rendered against
variables. Tag arguments and output markup are parsed into expressions.

	(2) => pkg/lexer => (2)
	(2) => pkg/template => (5)
	(4) => pkg/template/core => (2)
	(1) => pkg/expr => (1)

# Filters

Builtin filters (strings, arrays, math, encodings, hashes, versions) and
user filters written in Starlark.

	(2) => pkg/filters => (2)

# Utilities

	(2) => pkg/files => (1)
	(3) => pkg/cmd/ui => (0)
	(3) => pkg/filepos => (0)
	(3) => pkg/orderedmap => (0)
	(1) => pkg/version => (0)

# Dependencies

Each package's dependencies on other packages within this module are as follows
(if a package is not listed, it has no dependencies on other packages within
this module):

	pkg/cmd:
	- pkg/cmd/render
	- pkg/cmd/ui
	- pkg/files
	- pkg/template
	- pkg/version
	pkg/cmd/render:
	- pkg/cmd/ui
	- pkg/files
	- pkg/filters
	- pkg/lexer
	- pkg/orderedmap
	- pkg/template
	pkg/template:
	- pkg/expr
	- pkg/filepos
	- pkg/filters
	- pkg/lexer
	- pkg/template/core
	pkg/template/core:
	- pkg/filepos
	- pkg/orderedmap
	pkg/lexer:
	- pkg/filepos
	- pkg/template/core
	pkg/filters:
	- pkg/orderedmap
	- pkg/template/core
	pkg/expr:
	- pkg/template/core
	pkg/files:
	- pkg/cmd/ui
*/
package pkg
