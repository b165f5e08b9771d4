// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package template_test

import (
	"strings"
	"testing"

	"carvel.dev/liquid/pkg/lexer"
	"carvel.dev/liquid/pkg/template"
	"carvel.dev/liquid/pkg/template/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTree(t *testing.T, src string) (*template.Tree, error) {
	segments, err := lexer.NewSplitter().Split([]byte(src), "tpl")
	require.NoError(t, err)

	return template.NewBuilder(template.NewOptions()).Build("tpl", segments)
}

func TestBuilderElderChain(t *testing.T) {
	tree, err := buildTree(t, `{% if a %}x{% elsif b %}y{% else %}z{% endif %}`)
	require.NoError(t, err)

	expected := strings.Join([]string{
		`__ROOT__`,
		`  if a (tpl:1:1)`,
		`    __LITERAL__ "x"`,
		`  elsif b (tpl:1:12)`,
		`    __LITERAL__ "y"`,
		`  else (tpl:1:26)`,
		`    __LITERAL__ "z"`,
	}, "\n")
	assert.Equal(t, expected, tree.DebugString())

	// Only the chain head is a child of the root
	root := tree.Root()
	require.Len(t, root.Children, 1)

	head := tree.Node(root.Children[0])
	assert.Equal(t, "if", head.Name)
	assert.True(t, head.Prev.IsNone())

	elsif := tree.Node(head.Next)
	assert.Equal(t, "elsif", elsif.Name)
	assert.True(t, elsif.Prev.Equals(head.Tag))
	assert.True(t, elsif.Parent.Equals(template.NodeTagRoot))

	els := tree.Node(elsif.Next)
	assert.Equal(t, "else", els.Name)
	assert.True(t, els.Next.IsNone())
}

func TestBuilderCaseWhen(t *testing.T) {
	tree, err := buildTree(t, "{% case x %}\n{% when 1 %}one{% when 2 %}two{% else %}other{% endcase %}!")
	require.NoError(t, err)

	root := tree.Root()
	require.Len(t, root.Children, 2)

	caseNode := tree.Node(root.Children[0])
	assert.Equal(t, "case", caseNode.Name)
	require.Len(t, caseNode.Children, 2)
	assert.Equal(t, template.TagLiteral, tree.Node(caseNode.Children[0]).Name)

	when := tree.Node(caseNode.Children[1])
	assert.Equal(t, "when", when.Name)
	assert.Equal(t, "when", tree.Node(when.Next).Name)
	assert.Equal(t, "else", tree.Node(tree.Node(when.Next).Next).Name)

	assert.Equal(t, template.TagLiteral, tree.Node(root.Children[1]).Name)
}

func TestBuilderMaybeVoidCollapse(t *testing.T) {
	t.Run("block form keeps its children", func(t *testing.T) {
		tree, err := buildTree(t, `a{% comment %}b {{ x }} c{% endcomment %}d`)
		require.NoError(t, err)

		root := tree.Root()
		require.Len(t, root.Children, 3)

		comment := tree.Node(root.Children[1])
		assert.Equal(t, "comment", comment.Name)
		assert.Equal(t, template.NonVoid, comment.Void)
		assert.Len(t, comment.Children, 3)
		assert.Equal(t, `b {{ x }} c`, comment.Body)
	})

	t.Run("an inner tag settles it as void", func(t *testing.T) {
		_, err := buildTree(t, `{% comment %}b{% if x %}c{% endif %}{% endcomment %}`)
		require.Error(t, err)
		assert.True(t, core.IsCode(err, core.EndTagUnexpected))
	})

	t.Run("void form lifts children to its parent", func(t *testing.T) {
		tree, err := buildTree(t, `{% for i in list %}{% comment %}b{% if x %}c{% endif %}{% endfor %}`)
		require.NoError(t, err)

		root := tree.Root()
		require.Len(t, root.Children, 1)

		forNode := tree.Node(root.Children[0])
		require.Len(t, forNode.Children, 3)

		comment := tree.Node(forNode.Children[0])
		assert.Equal(t, template.Void, comment.Void)
		assert.Empty(t, comment.Children)

		for _, childTag := range forNode.Children[1:] {
			assert.True(t, tree.Node(childTag).Parent.Equals(forNode.Tag))
		}
	})

	t.Run("trailing void form at end of input", func(t *testing.T) {
		tree, err := buildTree(t, `{% comment %}x`)
		require.NoError(t, err)

		root := tree.Root()
		require.Len(t, root.Children, 2)
		assert.Equal(t, template.Void, tree.Node(root.Children[0]).Void)
	})
}

func TestBuilderRaw(t *testing.T) {
	tree, err := buildTree(t, `{% raw %}{{ x }}{% if %}{% endraw %}`)
	require.NoError(t, err)

	raw := tree.Node(tree.Root().Children[0])
	assert.Equal(t, "raw", raw.Name)
	require.Len(t, raw.Children, 1)

	body := tree.Node(raw.Children[0])
	assert.Equal(t, template.TagRaw, body.Name)
	assert.Equal(t, `{{ x }}{% if %}`, body.Args)
}

type builderErrTest struct {
	Desc string
	Src  string
	Code core.ErrorCode
	Name string
	Msg  string
}

func TestBuilderErrors(t *testing.T) {
	cases := []builderErrTest{
		{
			Desc: "unclosed if",
			Src:  `{% if a %}x`,
			Code: core.TagUnclosed,
			Name: "if",
			Msg:  "tag 'if' is not closed at end of template",
		},
		{
			Desc: "unclosed if within for",
			Src:  `{% for i in list %}{% if i %}{% endfor %}`,
			Code: core.TagUnclosed,
			Name: "if",
			Msg:  "tag 'if' is not closed before '{% endfor %}'",
		},
		{
			Desc: "end without open",
			Src:  `x{% endif %}`,
			Code: core.EndTagUnexpected,
			Name: "endif",
			Msg:  "unexpected '{% endif %}'",
		},
		{
			Desc: "mismatched end",
			Src:  `{% if a %}{% endfor %}`,
			Code: core.EndTagUnexpected,
			Name: "endfor",
			Msg:  "unexpected '{% endfor %}'",
		},
		{
			Desc: "closing an else",
			Src:  `{% if a %}{% else %}{% endelse %}`,
			Code: core.TagUnclosed,
			Name: "if",
			Msg:  "tag 'if' is not closed before '{% endelse %}'",
		},
		{
			Desc: "break outside loop",
			Src:  `{% if a %}{% break %}{% endif %}`,
			Code: core.TagWrongPosition,
			Name: "break",
			Msg:  "'break' must be inside 'for', 'tablerow'",
		},
		{
			Desc: "elsif without if",
			Src:  `{% elsif a %}`,
			Code: core.TagWrongPosition,
			Name: "elsif",
			Msg:  "'elsif' must follow 'if', 'elsif', 'unless'",
		},
		{
			Desc: "else after endif",
			Src:  `{% if a %}{% endif %}{% else %}`,
			Code: core.TagWrongPosition,
			Name: "else",
		},
		{
			Desc: "when outside case",
			Src:  `{% when 1 %}`,
			Code: core.TagWrongPosition,
			Name: "when",
			Msg:  "'when' must be directly inside 'case'",
		},
		{
			Desc: "when nested deeper in case",
			Src:  `{% case x %}{% if y %}{% when 1 %}{% endif %}{% endcase %}`,
			Code: core.TagWrongPosition,
			Name: "when",
		},
		{
			Desc: "unknown tag",
			Src:  `{% frobnicate %}`,
			Code: core.UnknownTag,
			Name: "frobnicate",
			Msg:  "unknown tag 'frobnicate'",
		},
		{
			Desc: "virtual tags are not usable",
			Src:  `{% __ROOT__ %}`,
			Code: core.UnknownTag,
			Name: "__ROOT__",
		},
		{
			Desc: "bad expression names tag",
			Src:  `{% if a == %}{% endif %}`,
			Code: core.BadExpression,
			Name: "if",
		},
		{
			Desc: "arguments to else",
			Src:  `{% if a %}{% else b %}{% endif %}`,
			Code: core.BadExpression,
			Msg:  "'else' takes no arguments, got 'b'",
		},
		{
			Desc: "empty tag",
			Src:  `{% %}`,
			Code: core.BadExpression,
			Msg:  "empty tag",
		},
	}

	for _, tc := range cases {
		t.Run(tc.Desc, func(t *testing.T) {
			_, err := buildTree(t, tc.Src)
			require.Error(t, err)

			typedErr, ok := core.AsError(err)
			require.True(t, ok, "expected *core.Error, got %T", err)

			assert.Equal(t, core.SyntaxError, typedErr.Kind)
			assert.Equal(t, tc.Code, typedErr.Code)
			if len(tc.Name) > 0 {
				assert.Equal(t, tc.Name, typedErr.Name)
			}
			if len(tc.Msg) > 0 {
				assert.Equal(t, tc.Msg, typedErr.Msg)
			}
			assert.True(t, typedErr.Position.IsKnown())
		})
	}
}

func TestBuilderErrorFormatting(t *testing.T) {
	_, err := buildTree(t, "text\n{% if a %}x")
	require.Error(t, err)

	expected := "- SyntaxError: tag 'if' is not closed at end of template (hint: add '{% endif %}')\n" +
		"    tpl:2:1 | {% if a %}x"
	assert.Equal(t, expected, err.Error())
}

func TestBuilderHints(t *testing.T) {
	_, err := buildTree(t, `{% if a %}{% elif b %}{% endif %}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "(hint: use 'elsif' instead of 'elif')")
}

func TestBuilderUnknownTagListsKnownTags(t *testing.T) {
	_, err := buildTree(t, `{% frobnicate %}`)
	require.Error(t, err)

	typedErr, ok := core.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "known tags are "+strings.Join(template.NewBuiltinRegistry().Names(), ", "), typedErr.Hint)
	assert.Contains(t, typedErr.Hint, "assign, break, capture")
	assert.NotContains(t, typedErr.Hint, "__")

	// A specific hint wins over the list
	_, err = buildTree(t, `{% set x = 1 %}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "(hint: use 'assign' instead of 'set')")
}

func TestBuilderCustomTag(t *testing.T) {
	registry := template.NewBuiltinRegistry()
	registry.Register(template.Descriptor{
		Name:    "shout",
		Void:    template.Void,
		Parents: template.Relation{Names: []string{"capture"}, Required: true},
		Parse: func(args string) (template.Payload, error) {
			return shoutPayload{strings.ToUpper(args)}, nil
		},
	})

	opts := template.NewOptions()
	opts.Registry = registry

	tpl, err := template.Parse("tpl", []byte(`{% capture x %}{% shout hey %}{% endcapture %}{{ x }}!`), opts)
	require.NoError(t, err)

	out, err := tpl.Render(nil)
	require.NoError(t, err)
	assert.Equal(t, "HEY!", out)

	_, err = template.Parse("tpl", []byte(`{% shout hey %}`), opts)
	require.Error(t, err)
	assert.True(t, core.IsCode(err, core.TagWrongPosition))

	// Builtin registries are independent
	_, err = template.Parse("tpl", []byte(`{% shout hey %}`), template.NewOptions())
	assert.True(t, core.IsCode(err, core.UnknownTag))
}

type shoutPayload struct {
	text string
}

func (p shoutPayload) Render(ctx *template.RenderCtx, _ *template.TagNode) error {
	ctx.WriteString(p.text)
	return nil
}
