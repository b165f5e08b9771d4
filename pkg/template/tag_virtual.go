// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package template

import (
	"strings"

	"carvel.dev/liquid/pkg/expr"
	"carvel.dev/liquid/pkg/template/core"
)

type textPayload struct {
	text string
}

func (p textPayload) Render(ctx *RenderCtx, _ *TagNode) error {
	ctx.WriteString(p.text)
	return nil
}

// commentPayload serves both {# #} comments and void comment tags.
type commentPayload struct {
	text string
}

func (p commentPayload) Render(ctx *RenderCtx, _ *TagNode) error {
	echoComment(ctx, p.text)
	return nil
}

type outputPayload struct {
	out *expr.Output
}

func (p outputPayload) Render(ctx *RenderCtx, _ *TagNode) error {
	val, err := ctx.Eval(p.out)
	if err != nil {
		return err
	}
	ctx.WriteString(core.Display(val))
	return nil
}

func parseOutput(args string) (Payload, error) {
	out, err := expr.ParseOutput(args)
	if err != nil {
		return nil, err
	}
	return outputPayload{out}, nil
}

func echoComment(ctx *RenderCtx, text string) {
	opts := ctx.Options()
	if !opts.EchoComments {
		return
	}

	text = strings.TrimSpace(text)
	if len(text) == 0 {
		return
	}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		lines = append(lines, opts.CommentPrefix+strings.TrimSpace(line))
	}
	ctx.WriteString(strings.Join(lines, "\n"))
}

// noArgs builds a parse function for tags that take no arguments.
func noArgs(tagName string, payload Payload) func(string) (Payload, error) {
	return func(args string) (Payload, error) {
		if len(args) > 0 {
			return nil, core.NewError(core.SyntaxError, core.BadExpression,
				"'%s' takes no arguments, got '%s'", tagName, args)
		}
		return payload, nil
	}
}
