// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package template

import (
	"strconv"

	"carvel.dev/liquid/pkg/expr"
	"carvel.dev/liquid/pkg/template/core"
)

type assignPayload struct {
	name string
	val  *expr.Output
}

func parseAssign(args string) (Payload, error) {
	p, err := expr.NewParser(args)
	if err != nil {
		return nil, err
	}

	name, err := p.ParseIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.Expect(expr.TokenAssign, "'='"); err != nil {
		return nil, err
	}
	val, err := p.ParseFilterChain()
	if err != nil {
		return nil, err
	}

	return assignPayload{name, val}, p.ExpectEnd()
}

func (p assignPayload) Render(ctx *RenderCtx, _ *TagNode) error {
	val, err := ctx.Eval(p.val)
	if err != nil {
		return err
	}
	ctx.Assign(p.name, val)
	return nil
}

type capturePayload struct {
	name string
}

func parseCapture(args string) (Payload, error) {
	p, err := expr.NewParser(args)
	if err != nil {
		return nil, err
	}
	name, err := p.ParseIdent()
	if err != nil {
		return nil, err
	}
	return capturePayload{name}, p.ExpectEnd()
}

func (p capturePayload) Render(ctx *RenderCtx, node *TagNode) error {
	result, err := ctx.Capture(func() error {
		return ctx.WithScope(func() error { return ctx.RenderChildren(node) })
	})
	if err != nil {
		return err
	}
	ctx.Assign(p.name, core.String(result))
	return nil
}

// counterPayload implements increment and decrement. Counters live apart
// from variables, so assigning a variable of the same name has no effect.
type counterPayload struct {
	name string
	step int
}

func parseCounter(step int) func(string) (Payload, error) {
	return func(args string) (Payload, error) {
		p, err := expr.NewParser(args)
		if err != nil {
			return nil, err
		}
		name, err := p.ParseIdent()
		if err != nil {
			return nil, err
		}
		return counterPayload{name, step}, p.ExpectEnd()
	}
}

func (p counterPayload) Render(ctx *RenderCtx, _ *TagNode) error {
	counters := ctx.increments
	if p.step < 0 {
		counters = ctx.decrements
	}

	val, found := counters[p.name]
	if !found && p.step < 0 {
		val = -1
	}
	counters[p.name] = val + p.step

	ctx.WriteString(strconv.Itoa(val))
	return nil
}

// commentTagPayload never renders its children. With comment echoing
// enabled, the raw source between the tags is echoed instead.
type commentTagPayload struct{}

func (commentTagPayload) Render(ctx *RenderCtx, node *TagNode) error {
	if node.Void == Void {
		echoComment(ctx, node.Args)
	} else {
		echoComment(ctx, node.Body)
	}
	return nil
}

func parseCommentTag(string) (Payload, error) { return commentTagPayload{}, nil }
