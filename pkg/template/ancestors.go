// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package template

type Ancestors struct {
	parentOf func(NodeTag) (NodeTag, bool)
}

// FindClosest returns the nearest ancestor of tag accepted by matchFunc.
func (e Ancestors) FindClosest(tag NodeTag, matchFunc func(NodeTag) bool) (NodeTag, bool) {
	for {
		parentTag, ok := e.parentOf(tag)
		if !ok {
			return NodeTagNone, false
		}
		if matchFunc(parentTag) {
			return parentTag, true
		}
		tag = parentTag
	}
}
