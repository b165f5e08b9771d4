// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package render implements the default command: it collects templates,
variables and Starlark filter files, renders every template and writes the
results to stdout or an output directory.
*/
package render
