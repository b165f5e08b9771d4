// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package lexer

import (
	"fmt"
	"strings"

	"carvel.dev/liquid/pkg/filepos"
)

type SegmentKind int

const (
	SegmentLiteral SegmentKind = iota
	SegmentRaw
	SegmentComment
	SegmentOutput
	SegmentTag
)

func (k SegmentKind) String() string {
	switch k {
	case SegmentLiteral:
		return "literal"
	case SegmentRaw:
		return "raw"
	case SegmentComment:
		return "comment"
	case SegmentOutput:
		return "output"
	case SegmentTag:
		return "tag"
	default:
		return "unknown"
	}
}

// Segment is one lexed unit of a template.
//
// For tags and outputs, OpenCompact/CloseCompact record a '-' next to the
// opening/closing delimiter. For literal and raw text, OpenCompact means
// leading whitespace must be stripped (the previous delimiter ended with '-')
// and CloseCompact means trailing whitespace must be stripped (the next
// delimiter started with '-').
type Segment struct {
	Kind     SegmentKind
	Content  string // text between delimiters (trimmed) or the literal text
	Source   string // exact source text, delimiters included
	Position *filepos.Position

	OpenCompact  bool
	CloseCompact bool
}

// TagName splits a tag segment's content into its name and arguments.
func (s *Segment) TagName() (string, string) {
	content := strings.TrimSpace(s.Content)
	idx := strings.IndexAny(content, " \t\r\n")
	if idx < 0 {
		return content, ""
	}
	return content[:idx], strings.TrimSpace(content[idx+1:])
}

// Text returns literal text with whitespace control applied.
func (s *Segment) Text() string {
	text := s.Content
	if s.OpenCompact {
		text = strings.TrimLeft(text, whitespace)
	}
	if s.CloseCompact {
		text = strings.TrimRight(text, whitespace)
	}
	return text
}

func (s *Segment) String() string {
	return fmt.Sprintf("%s(%q) at %s", s.Kind, s.Content, s.Position.AsCompactString())
}

const whitespace = " \t\r\n"
