// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

// Package version holds the build version, set at link time:
//
//	go build -ldflags="-X carvel.dev/liquid/pkg/version.Version=0.1.0" ./cmd/liquid
package version

var Version = "develop"
