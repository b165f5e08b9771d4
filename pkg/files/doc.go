// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package files provides primitives for enumerating and loading data from various
file or file-like Source's and for writing rendered output to files and
directories.

Files are treated differently depending on their Type: templates are
rendered, Starlark files provide filters and data files provide variables.
*/
package files
