// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package template provides the core templating engine for liquid.

Template text is split into segments (see package lexer) which a Builder
resolves into a tree of TagNode's held in a Nodes arena. Each node carries
a Payload parsed from its tag arguments according to the tag's Descriptor
in a Registry. Rendering walks the tree depth-first; members of an elder
chain (if/elsif/else, for/else, when/else) are reached only through their
elder.

All state mutated while rendering (variables, loop flags, cycle and
increment counters) belongs to a RenderCtx created per render call, so a
parsed Template can be rendered concurrently.
*/
package template
