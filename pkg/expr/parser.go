// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package expr

import (
	"strconv"

	"carvel.dev/liquid/pkg/template/core"
)

// Parse parses a complete expression (no filters).
func Parse(src string) (Node, error) {
	p, err := NewParser(src)
	if err != nil {
		return nil, err
	}
	node, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	return node, p.ExpectEnd()
}

// ParseOutput parses `expression | filter: args | ...`.
func ParseOutput(src string) (*Output, error) {
	p, err := NewParser(src)
	if err != nil {
		return nil, err
	}
	out, err := p.ParseFilterChain()
	if err != nil {
		return nil, err
	}
	return out, p.ExpectEnd()
}

// Parser is a cursor over the tokens of one expression source.
// Tag grammars use it to read their own keywords around expressions.
type Parser struct {
	src    string
	tokens []Token
	pos    int
}

func NewParser(src string) (*Parser, error) {
	tokens, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	return &Parser{src: src, tokens: tokens}, nil
}

func (p *Parser) Peek() Token { return p.tokens[p.pos] }

func (p *Parser) PeekAt(offset int) Token {
	if p.pos+offset >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+offset]
}

func (p *Parser) advance() Token {
	tok := p.tokens[p.pos]
	if tok.Kind != TokenEOF {
		p.pos++
	}
	return tok
}

func (p *Parser) AtEnd() bool { return p.Peek().Kind == TokenEOF }

func (p *Parser) ExpectEnd() error {
	if !p.AtEnd() {
		return p.unexpected(p.Peek())
	}
	return nil
}

// Accept consumes the next token if it is of the given kind.
func (p *Parser) Accept(kind TokenKind) bool {
	if p.Peek().Kind == kind {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) Expect(kind TokenKind, desc string) (Token, error) {
	tok := p.Peek()
	if tok.Kind != kind {
		return tok, core.NewError(core.SyntaxError, core.BadExpression,
			"expected %s but got %s in '%s'", desc, tok, p.src)
	}
	return p.advance(), nil
}

// AcceptKeyword consumes the identifier `word` if it is next.
func (p *Parser) AcceptKeyword(word string) bool {
	tok := p.Peek()
	if tok.Kind == TokenIdent && tok.Text == word {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) ExpectKeyword(word string) error {
	if !p.AcceptKeyword(word) {
		return core.NewError(core.SyntaxError, core.BadExpression,
			"expected '%s' but got %s in '%s'", word, p.Peek(), p.src)
	}
	return nil
}

// ParseIdent reads a plain variable name.
func (p *Parser) ParseIdent() (string, error) {
	tok, err := p.Expect(TokenIdent, "a name")
	if err != nil {
		return "", err
	}
	return tok.Text, nil
}

// ParseExpression parses: comparison (('and'|'or') expression)?
func (p *Parser) ParseExpression() (Node, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}

	tok := p.Peek()
	if tok.Kind == TokenIdent && (tok.Text == "and" || tok.Text == "or") {
		p.advance()
		right, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		return Logical{Left: left, Op: tok.Text, Right: right}, nil
	}

	return left, nil
}

func (p *Parser) parseComparison() (Node, error) {
	left, err := p.ParsePostfix()
	if err != nil {
		return nil, err
	}

	tok := p.Peek()
	if tok.Kind == TokenCompare || (tok.Kind == TokenIdent && tok.Text == "contains") {
		p.advance()
		right, err := p.ParsePostfix()
		if err != nil {
			return nil, err
		}
		return Comparison{Left: left, Op: tok.Text, Right: right}, nil
	}

	if tok.Kind == TokenAssign {
		return nil, core.NewError(core.SyntaxError, core.BadExpression,
			"unexpected '=' in '%s'", p.src).WithHint("use '==' for comparison")
	}

	return left, nil
}

// ParsePostfix parses a primary followed by any `.name` or `[key]` accessors.
func (p *Parser) ParsePostfix() (Node, error) {
	node, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		switch {
		case p.Accept(TokenDot):
			name, err := p.ParseIdent()
			if err != nil {
				return nil, err
			}
			node = GetAttr{Obj: node, Name: name}

		case p.Accept(TokenLBracket):
			key, err := p.ParseExpression()
			if err != nil {
				return nil, err
			}
			_, err = p.Expect(TokenRBracket, "']'")
			if err != nil {
				return nil, err
			}
			node = GetItem{Obj: node, Key: key}

		default:
			return node, nil
		}
	}
}

func (p *Parser) parsePrimary() (Node, error) {
	tok := p.Peek()

	switch tok.Kind {
	case TokenInt:
		p.advance()
		i, err := strconv.ParseInt(tok.Text, 10, 64)
		if err != nil {
			return nil, core.NewError(core.SyntaxError, core.BadExpression, "invalid integer %s", tok)
		}
		return Const{core.Int(i)}, nil

	case TokenFloat:
		p.advance()
		f, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return nil, core.NewError(core.SyntaxError, core.BadExpression, "invalid number %s", tok)
		}
		return Const{core.Float(f)}, nil

	case TokenString:
		p.advance()
		return Const{core.String(tok.Text)}, nil

	case TokenIdent:
		p.advance()
		switch tok.Text {
		case "true":
			return Const{core.True}, nil
		case "false":
			return Const{core.False}, nil
		case "nil", "null":
			return Const{core.Nil}, nil
		case "empty", "blank":
			return Const{core.Empty}, nil
		}
		return Var{Name: tok.Text}, nil

	case TokenLBracket:
		p.advance()
		return p.parseBracket()

	case TokenLParen:
		p.advance()
		start, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		if p.Accept(TokenDotDot) {
			end, err := p.ParseExpression()
			if err != nil {
				return nil, err
			}
			_, err = p.Expect(TokenRParen, "')'")
			if err != nil {
				return nil, err
			}
			return Range{Start: start, End: end}, nil
		}
		_, err = p.Expect(TokenRParen, "')'")
		if err != nil {
			return nil, err
		}
		return start, nil

	default:
		return nil, p.unexpected(tok)
	}
}

// parseBracket handles what follows a leading '['. A single quoted name
// is a lookup on the render scope, e.g. ["my var"]; anything else is a
// list literal, e.g. [1, x, "y"].
func (p *Parser) parseBracket() (Node, error) {
	if p.Accept(TokenRBracket) {
		return ListLiteral{}, nil
	}

	var items []Node
	for {
		item, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if !p.Accept(TokenComma) {
			break
		}
	}

	_, err := p.Expect(TokenRBracket, "']'")
	if err != nil {
		return nil, err
	}

	if len(items) == 1 {
		if constKey, ok := items[0].(Const); ok {
			if name, ok := constKey.Value.(core.String); ok {
				return Var{Name: string(name)}, nil
			}
		}
	}
	return ListLiteral{Items: items}, nil
}

// ParseFilterChain parses an expression followed by `| name: args` segments.
// Arguments of the form `name: value` are keyword arguments.
func (p *Parser) ParseFilterChain() (*Output, error) {
	base, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}

	out := &Output{Base: base}

	for p.Accept(TokenPipe) {
		name, err := p.ParseIdent()
		if err != nil {
			return nil, err
		}

		call := FilterCall{Filter: FilterRef{Name: name}}

		if p.Accept(TokenColon) {
			for {
				if p.Peek().Kind == TokenIdent && p.PeekAt(1).Kind == TokenColon {
					kwName := p.advance().Text
					p.advance()
					val, err := p.ParsePostfix()
					if err != nil {
						return nil, err
					}
					call.Kwargs = append(call.Kwargs, Kwarg{Name: kwName, Value: val})
				} else {
					arg, err := p.ParsePostfix()
					if err != nil {
						return nil, err
					}
					call.Args = append(call.Args, arg)
				}

				if !p.Accept(TokenComma) {
					break
				}
			}
		}

		out.Filters = append(out.Filters, call)
	}

	return out, nil
}

func (p *Parser) unexpected(tok Token) error {
	if tok.Kind == TokenEOF {
		return core.NewError(core.SyntaxError, core.BadExpression, "unexpected end of expression in '%s'", p.src)
	}
	return core.NewError(core.SyntaxError, core.BadExpression, "unexpected %s in '%s'", tok, p.src)
}
