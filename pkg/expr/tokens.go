// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package expr

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"carvel.dev/liquid/pkg/template/core"
)

type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenIdent
	TokenInt
	TokenFloat
	TokenString
	TokenCompare // == != <> < > <= >=
	TokenAssign  // =
	TokenDot
	TokenDotDot
	TokenPipe
	TokenColon
	TokenComma
	TokenLParen
	TokenRParen
	TokenLBracket
	TokenRBracket
)

type Token struct {
	Kind   TokenKind
	Text   string // identifier, operator or decoded string literal
	Offset int
}

func (t Token) String() string {
	switch t.Kind {
	case TokenEOF:
		return "end of expression"
	case TokenString:
		return fmt.Sprintf("%q", t.Text)
	default:
		return fmt.Sprintf("'%s'", t.Text)
	}
}

type tokenizer struct {
	src    string
	pos    int
	tokens []Token
}

func tokenize(src string) ([]Token, error) {
	t := &tokenizer{src: src}

	for {
		t.skipSpace()
		if t.pos >= len(t.src) {
			t.tokens = append(t.tokens, Token{Kind: TokenEOF, Offset: t.pos})
			return t.tokens, nil
		}

		err := t.next()
		if err != nil {
			return nil, err
		}
	}
}

func (t *tokenizer) skipSpace() {
	for t.pos < len(t.src) && strings.IndexByte(" \t\r\n", t.src[t.pos]) >= 0 {
		t.pos++
	}
}

func (t *tokenizer) emit(kind TokenKind, text string, start int) {
	t.tokens = append(t.tokens, Token{Kind: kind, Text: text, Offset: start})
}

func (t *tokenizer) next() error {
	start := t.pos
	c := t.src[t.pos]

	switch {
	case c == '"' || c == '\'':
		return t.stringLiteral()

	case isDigit(c) || (c == '-' && t.pos+1 < len(t.src) && isDigit(t.src[t.pos+1])):
		t.number()
		return nil

	case c == '_' || isLetter(t.src[t.pos:]):
		t.ident()
		return nil
	}

	two := ""
	if t.pos+1 < len(t.src) {
		two = t.src[t.pos : t.pos+2]
	}

	switch two {
	case "==", "!=", "<>", "<=", ">=":
		t.pos += 2
		t.emit(TokenCompare, two, start)
		return nil
	case "..":
		t.pos += 2
		t.emit(TokenDotDot, two, start)
		return nil
	case "&&", "||":
		return core.NewError(core.SyntaxError, core.BadExpression,
			"unexpected '%s' in '%s'", two, t.src).WithName(two).WithHint(core.HintFor(core.BadExpression, two))
	}

	kinds := map[byte]TokenKind{
		'<': TokenCompare, '>': TokenCompare, '=': TokenAssign, '.': TokenDot,
		'|': TokenPipe, ':': TokenColon, ',': TokenComma, '(': TokenLParen,
		')': TokenRParen, '[': TokenLBracket, ']': TokenRBracket,
	}
	if kind, found := kinds[c]; found {
		t.pos++
		t.emit(kind, string(c), start)
		return nil
	}

	str := string(c)
	if r, _ := utf8.DecodeRuneInString(t.src[t.pos:]); r != utf8.RuneError {
		str = string(r)
	}
	return core.NewError(core.SyntaxError, core.BadExpression,
		"unexpected character '%s' in '%s'", str, t.src).WithName(str).WithHint(core.HintFor(core.BadExpression, str))
}

func (t *tokenizer) stringLiteral() error {
	start := t.pos
	quote := t.src[t.pos]
	t.pos++

	var sb strings.Builder
	for t.pos < len(t.src) {
		c := t.src[t.pos]
		switch {
		case c == quote:
			t.pos++
			t.emit(TokenString, sb.String(), start)
			return nil
		case c == '\\' && t.pos+1 < len(t.src):
			t.pos++
			switch esc := t.src[t.pos]; esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			default:
				sb.WriteByte(esc)
			}
			t.pos++
		default:
			sb.WriteByte(c)
			t.pos++
		}
	}

	return core.NewError(core.SyntaxError, core.BadExpression, "unterminated string in '%s'", t.src)
}

func (t *tokenizer) number() {
	start := t.pos
	if t.src[t.pos] == '-' {
		t.pos++
	}
	for t.pos < len(t.src) && isDigit(t.src[t.pos]) {
		t.pos++
	}

	kind := TokenInt
	// a '.' followed by a digit continues the number; '..' is a range
	if t.pos+1 < len(t.src) && t.src[t.pos] == '.' && isDigit(t.src[t.pos+1]) {
		kind = TokenFloat
		t.pos++
		for t.pos < len(t.src) && isDigit(t.src[t.pos]) {
			t.pos++
		}
	}

	t.emit(kind, t.src[start:t.pos], start)
}

// ident accepts letters, digits, '_' and inner '-' (e.g. `page-title`),
// with an optional trailing '?'.
func (t *tokenizer) ident() {
	start := t.pos
	for t.pos < len(t.src) {
		c := t.src[t.pos]
		switch {
		case c == '_' || isDigit(c) || isLetter(t.src[t.pos:]):
			_, size := utf8.DecodeRuneInString(t.src[t.pos:])
			t.pos += size
		case c == '-' && t.pos+1 < len(t.src) && (isLetter(t.src[t.pos+1:]) || t.src[t.pos+1] == '_'):
			t.pos++
		default:
			if c == '?' {
				t.pos++
			}
			t.emit(TokenIdent, t.src[start:t.pos], start)
			return
		}
	}
	t.emit(TokenIdent, t.src[start:t.pos], start)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isLetter(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsLetter(r)
}
