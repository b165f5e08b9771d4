// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package orderedmap provides a map implementation where the order of keys is
maintained (unlike the native Go map).

Template variables are kept in this flavor of map so that iterating a hash in a
template (or printing it) is deterministic and follows the order in which the
data was supplied.
*/
package orderedmap
