// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package template

import (
	"carvel.dev/liquid/pkg/expr"
	"carvel.dev/liquid/pkg/template/core"
)

type casePayload struct {
	subject expr.Node
}

func parseCase(args string) (Payload, error) {
	subject, err := expr.Parse(args)
	if err != nil {
		return nil, err
	}
	return casePayload{subject}, nil
}

// Render evaluates the subject once and hands over to the first 'when'
// chain. Anything else directly inside 'case' is ignored.
func (p casePayload) Render(ctx *RenderCtx, node *TagNode) error {
	subject, err := ctx.Eval(p.subject)
	if err != nil {
		return err
	}
	ctx.state(node.Tag).subject = subject

	for _, childTag := range node.Children {
		if ctx.tree.nodes.Node(childTag).Name == "when" {
			return ctx.renderNode(childTag, false)
		}
	}

	return core.NewError(core.RenderError, core.TagFailed, "'case' has no 'when' clauses").WithName("case")
}

type whenPayload struct {
	values []expr.Node
}

// parseWhen accepts values separated by ',' or 'or'.
func parseWhen(args string) (Payload, error) {
	p, err := expr.NewParser(args)
	if err != nil {
		return nil, err
	}

	var payload whenPayload
	for {
		val, err := p.ParsePostfix()
		if err != nil {
			return nil, err
		}
		payload.values = append(payload.values, val)

		if !p.Accept(expr.TokenComma) && !p.AcceptKeyword("or") {
			break
		}
	}

	return payload, p.ExpectEnd()
}

func (p whenPayload) Render(ctx *RenderCtx, node *TagNode) error {
	subject := ctx.state(node.Parent).subject
	if subject == nil {
		subject = core.Nil
	}

	for _, valNode := range p.values {
		val, err := ctx.Eval(valNode)
		if err != nil {
			return err
		}
		if core.Equal(subject, val) {
			return ctx.RenderChildren(node)
		}
	}

	return ctx.RenderNext(node)
}
