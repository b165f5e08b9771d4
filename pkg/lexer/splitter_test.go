// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package lexer_test

import (
	"math/rand"
	"strings"
	"testing"

	"carvel.dev/liquid/pkg/lexer"
	"carvel.dev/liquid/pkg/template/core"
	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type segmentDesc struct {
	Kind         lexer.SegmentKind
	Content      string
	OpenCompact  bool
	CloseCompact bool
}

func describe(segments []*lexer.Segment) []segmentDesc {
	var result []segmentDesc
	for _, seg := range segments {
		result = append(result, segmentDesc{seg.Kind, seg.Content, seg.OpenCompact, seg.CloseCompact})
	}
	return result
}

func TestSplitBasicKinds(t *testing.T) {
	segments, err := lexer.NewSplitter().Split([]byte("Hi {{ name }}!{% if x %}y{% endif %}{# note #}"), "tpl")
	require.NoError(t, err)

	assert.Equal(t, []segmentDesc{
		{lexer.SegmentLiteral, "Hi ", false, false},
		{lexer.SegmentOutput, "name", false, false},
		{lexer.SegmentLiteral, "!", false, false},
		{lexer.SegmentTag, "if x", false, false},
		{lexer.SegmentLiteral, "y", false, false},
		{lexer.SegmentTag, "endif", false, false},
		{lexer.SegmentComment, "note", false, false},
	}, describe(segments))
}

func TestSplitWhitespaceControl(t *testing.T) {
	segments, err := lexer.NewSplitter().Split([]byte("a  {{- x -}}  b {%- if y %} c"), "tpl")
	require.NoError(t, err)

	assert.Equal(t, []segmentDesc{
		{lexer.SegmentLiteral, "a  ", false, true},
		{lexer.SegmentOutput, "x", true, true},
		{lexer.SegmentLiteral, "  b ", true, true},
		{lexer.SegmentTag, "if y", true, false},
		{lexer.SegmentLiteral, " c", false, false},
	}, describe(segments))

	assert.Equal(t, "a", segments[0].Text())
	assert.Equal(t, "b", segments[2].Text())
	assert.Equal(t, " c", segments[4].Text())
}

func TestSplitIsQuoteAware(t *testing.T) {
	segments, err := lexer.NewSplitter().Split([]byte(`{{ "%}}" | append: '}}' }}tail`), "tpl")
	require.NoError(t, err)
	require.Len(t, segments, 2)
	assert.Equal(t, `"%}}" | append: '}}'`, segments[0].Content)
	assert.Equal(t, "tail", segments[1].Content)
}

func TestSplitUnbalancedQuoteFallsBack(t *testing.T) {
	segments, err := lexer.NewSplitter().Split([]byte(`{% comment don't %}x`), "tpl")
	require.NoError(t, err)
	require.Len(t, segments, 2)
	assert.Equal(t, "comment don't", segments[0].Content)
}

func TestSplitRawBlock(t *testing.T) {
	segments, err := lexer.NewSplitter().Split([]byte("{% raw %}{{ not }}{% if %}{%- endraw -%} after"), "tpl")
	require.NoError(t, err)

	assert.Equal(t, []segmentDesc{
		{lexer.SegmentTag, "raw", false, false},
		{lexer.SegmentRaw, "{{ not }}{% if %}", false, true},
		{lexer.SegmentTag, "endraw", true, true},
		{lexer.SegmentLiteral, " after", true, false},
	}, describe(segments))
}

func TestSplitPositions(t *testing.T) {
	segments, err := lexer.NewSplitter().Split([]byte("line1\n  héé {{ x }}\n"), "page.liquid")
	require.NoError(t, err)
	require.Len(t, segments, 3)

	assert.Equal(t, "page.liquid:1:1", segments[0].Position.AsCompactString())
	assert.Equal(t, "page.liquid:2:7", segments[1].Position.AsCompactString())
	assert.Equal(t, "  héé {{ x }}", segments[1].Position.GetLine())
	assert.Equal(t, "{{ x }}", segments[1].Source)
}

func TestSplitUnterminated(t *testing.T) {
	for _, tc := range []struct {
		tpl      string
		expected string
	}{
		{"ok\n {% if x ", "- LexError: unterminated tag: missing closing '%}'\n    tpl:2:2 |  {% if x "},
		{"{{ x", "- LexError: unterminated output: missing closing '}}'\n    tpl:1:1 | {{ x"},
		{"{# x", "- LexError: unterminated comment: missing closing '#}'\n    tpl:1:1 | {# x"},
		{"{% raw %}abc", "- LexError: unterminated raw block: missing '{% endraw %}'\n    tpl:1:1 | {% raw %}abc"},
	} {
		_, err := lexer.NewSplitter().Split([]byte(tc.tpl), "tpl")
		require.Error(t, err)
		assert.True(t, core.IsKind(err, core.LexError))
		assert.Equal(t, tc.expected, err.Error())
	}
}

func TestSplitLiteralRoundTripFuzzed(t *testing.T) {
	randSource := rand.NewSource(42)
	fuzzer := fuzz.New().RandSource(randSource).NilChance(0)

	for i := 0; i < 200; i++ {
		var text string
		fuzzer.Fuzz(&text)
		// keep text free of delimiters so the template is a single literal
		text = strings.ReplaceAll(text, "{", "(")

		segments, err := lexer.NewSplitter().Split([]byte(text), "fuzz")
		require.NoError(t, err)

		var joined strings.Builder
		for _, seg := range segments {
			assert.Equal(t, lexer.SegmentLiteral, seg.Kind)
			joined.WriteString(seg.Text())
		}
		assert.Equal(t, text, joined.String())
	}
}
