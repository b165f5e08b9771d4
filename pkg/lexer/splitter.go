// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package lexer

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"carvel.dev/liquid/pkg/filepos"
	"carvel.dev/liquid/pkg/template/core"
)

var (
	endRawRegexp = regexp.MustCompile(`\{%(-?)\s*endraw\s*(-?)%\}`)
)

type delimiters struct {
	kind  SegmentKind
	close string
	desc  string
}

var openings = map[byte]delimiters{
	'{': {SegmentOutput, "}}", "output"},
	'%': {SegmentTag, "%}", "tag"},
	'#': {SegmentComment, "#}", "comment"},
}

// Splitter turns template text into a flat sequence of segments.
type Splitter struct {
	associatedName string
	data           string
	lineStarts     []int
}

func NewSplitter() *Splitter {
	return &Splitter{}
}

func (s *Splitter) Split(dataBs []byte, associatedName string) ([]*Segment, error) {
	s.associatedName = associatedName
	s.data = string(dataBs)
	s.lineStarts = s.computeLineStarts()

	var segments []*Segment

	litStart := 0
	trimNextLiteral := false

	for {
		openIdx := s.findOpening(litStart)
		if openIdx < 0 {
			segments = s.appendText(segments, SegmentLiteral, litStart, len(s.data), trimNextLiteral, false)
			break
		}

		delims := openings[s.data[openIdx+1]]

		contentStart := openIdx + 2
		openCompact := false
		if delims.kind != SegmentComment && contentStart < len(s.data) && s.data[contentStart] == '-' {
			openCompact = true
			contentStart++
		}

		segments = s.appendText(segments, SegmentLiteral, litStart, openIdx, trimNextLiteral, openCompact)

		closeIdx := s.findClosing(contentStart, delims.close, delims.kind != SegmentComment)
		if closeIdx < 0 {
			return nil, core.NewError(core.LexError, core.UnterminatedTag,
				"unterminated %s: missing closing '%s'", delims.desc, delims.close).WithPosition(s.position(openIdx))
		}

		contentEnd := closeIdx
		closeCompact := false
		if delims.kind != SegmentComment && closeIdx > contentStart && s.data[closeIdx-1] == '-' {
			closeCompact = true
			contentEnd--
		}

		end := closeIdx + len(delims.close)

		seg := &Segment{
			Kind:         delims.kind,
			Content:      strings.TrimSpace(s.data[contentStart:contentEnd]),
			Source:       s.data[openIdx:end],
			Position:     s.position(openIdx),
			OpenCompact:  openCompact,
			CloseCompact: closeCompact,
		}
		segments = append(segments, seg)

		litStart = end
		trimNextLiteral = closeCompact

		if seg.Kind == SegmentTag {
			if name, _ := seg.TagName(); name == "raw" {
				var err error
				segments, litStart, trimNextLiteral, err = s.splitRaw(segments, seg, end)
				if err != nil {
					return nil, err
				}
			}
		}
	}

	return segments, nil
}

// splitRaw emits the body of a raw block verbatim plus its endraw tag.
func (s *Splitter) splitRaw(segments []*Segment, openSeg *Segment, bodyStart int) ([]*Segment, int, bool, error) {
	match := endRawRegexp.FindStringSubmatchIndex(s.data[bodyStart:])
	if match == nil {
		return nil, 0, false, core.NewError(core.LexError, core.UnterminatedTag,
			"unterminated raw block: missing '{%% endraw %%}'").WithName("raw").WithPosition(openSeg.Position)
	}

	endStart := bodyStart + match[0]
	end := bodyStart + match[1]
	endOpenCompact := match[3] > match[2]
	endCloseCompact := match[5] > match[4]

	segments = s.appendText(segments, SegmentRaw, bodyStart, endStart, openSeg.CloseCompact, endOpenCompact)

	segments = append(segments, &Segment{
		Kind:         SegmentTag,
		Content:      "endraw",
		Source:       s.data[endStart:end],
		Position:     s.position(endStart),
		OpenCompact:  endOpenCompact,
		CloseCompact: endCloseCompact,
	})

	return segments, end, endCloseCompact, nil
}

func (s *Splitter) appendText(segments []*Segment, kind SegmentKind, start, end int, openCompact, closeCompact bool) []*Segment {
	if start >= end {
		return segments
	}
	return append(segments, &Segment{
		Kind:         kind,
		Content:      s.data[start:end],
		Source:       s.data[start:end],
		Position:     s.position(start),
		OpenCompact:  openCompact,
		CloseCompact: closeCompact,
	})
}

func (s *Splitter) findOpening(from int) int {
	for from < len(s.data) {
		idx := strings.IndexByte(s.data[from:], '{')
		if idx < 0 {
			return -1
		}
		idx += from
		if idx+1 < len(s.data) {
			if _, found := openings[s.data[idx+1]]; found {
				return idx
			}
		}
		from = idx + 1
	}
	return -1
}

// findClosing skips delimiters inside quoted strings. Content with an
// unbalanced quote (e.g. an apostrophe in a comment tag) falls back to the
// first closing delimiter.
func (s *Splitter) findClosing(from int, closeDelim string, quoteAware bool) int {
	if quoteAware {
		var quote byte
		for i := from; i+1 < len(s.data); i++ {
			c := s.data[i]
			if quote != 0 {
				switch c {
				case '\\':
					i++
				case quote:
					quote = 0
				}
				continue
			}
			if c == '"' || c == '\'' {
				quote = c
				continue
			}
			if c == closeDelim[0] && s.data[i+1] == closeDelim[1] {
				return i
			}
		}
	}

	idx := strings.Index(s.data[from:], closeDelim)
	if idx < 0 {
		return -1
	}
	return from + idx
}

func (s *Splitter) computeLineStarts() []int {
	starts := []int{0}
	for i := 0; i < len(s.data); i++ {
		if s.data[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func (s *Splitter) position(offset int) *filepos.Position {
	lineIdx := sort.Search(len(s.lineStarts), func(i int) bool { return s.lineStarts[i] > offset }) - 1
	lineStart := s.lineStarts[lineIdx]

	lineEnd := len(s.data)
	if lineIdx+1 < len(s.lineStarts) {
		lineEnd = s.lineStarts[lineIdx+1] - 1
	}

	col := utf8.RuneCountInString(s.data[lineStart:offset]) + 1

	var pos *filepos.Position
	if len(s.associatedName) > 0 {
		pos = filepos.NewPositionInFile(lineIdx+1, s.associatedName)
	} else {
		pos = filepos.NewPosition(lineIdx + 1)
	}
	pos.WithColumn(col)
	pos.SetLine(strings.TrimRight(s.data[lineStart:lineEnd], "\r"))
	return pos
}
