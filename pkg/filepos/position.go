// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package filepos

import (
	"fmt"
)

// Position points at a line (and optionally a column) of a template.
// It also keeps the source line so errors can quote it.
type Position struct {
	file    string
	lineNum int // 1 based; 0 if unknown
	col     int // 1 based; 0 if unknown
	line    string
}

func NewPosition(lineNum int) *Position {
	if lineNum <= 0 {
		panic("Lines are 1 based")
	}
	return &Position{lineNum: lineNum}
}

// NewPositionInFile returns the Position of line "lineNum" within the file "file"
func NewPositionInFile(lineNum int, file string) *Position {
	p := NewPosition(lineNum)
	p.file = file
	return p
}

// NewUnknownPosition is equivalent of zero value *Position
func NewUnknownPosition() *Position {
	return &Position{}
}

// NewUnknownPositionInFile produces a Position of a known file at an unknown line.
func NewUnknownPositionInFile(file string) *Position {
	return &Position{file: file}
}

// WithColumn records the (1 based) column and returns the same Position.
func (p *Position) WithColumn(col int) *Position {
	if col <= 0 {
		panic("Columns are 1 based")
	}
	p.col = col
	return p
}

func (p *Position) SetFile(file string) { p.file = file }
func (p *Position) SetLine(line string) { p.line = line }

func (p *Position) IsKnown() bool { return p != nil && p.lineNum > 0 }

func (p *Position) LineNum() int {
	if !p.IsKnown() {
		panic("Position is unknown")
	}
	return p.lineNum
}

// Column returns 0 when the column was never recorded.
func (p *Position) Column() int {
	if p == nil {
		return 0
	}
	return p.col
}

func (p *Position) GetLine() string {
	if p == nil {
		return ""
	}
	return p.line
}

func (p *Position) GetFile() string {
	if p == nil {
		return ""
	}
	return p.file
}

func (p *Position) AsString() string {
	return "line " + p.AsCompactString()
}

// AsCompactString formats as file:line:col, dropping parts that are unknown.
func (p *Position) AsCompactString() string {
	var prefix string
	if file := p.GetFile(); len(file) > 0 {
		prefix = file + ":"
	}

	switch {
	case !p.IsKnown():
		return prefix + "?"
	case p.col > 0:
		return fmt.Sprintf("%s%d:%d", prefix, p.lineNum, p.col)
	default:
		return fmt.Sprintf("%s%d", prefix, p.lineNum)
	}
}

func (p *Position) DeepCopy() *Position {
	if p == nil {
		return nil
	}
	copied := *p
	return &copied
}
