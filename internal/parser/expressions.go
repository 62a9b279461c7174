package parser

import (
	"strconv"

	"github.com/quill-lang/quill/internal/ast"
	"github.com/quill-lang/quill/internal/position"
	"github.com/quill-lang/quill/internal/token"
)

// cursor walks a line's token slice. endRow/endCol track the end of the
// last consumed non-comment token, which is the statement's span end for
// single-line statements.
type cursor struct {
	toks   []token.Token
	i      int
	endRow int
	endCol int
}

func newCursor(toks []token.Token) *cursor {
	c := &cursor{toks: toks}
	if len(toks) > 0 {
		c.endRow = toks[0].Row
		c.endCol = toks[0].Col
	}
	return c
}

func (c *cursor) peek() token.Token {
	if c.i >= len(c.toks) {
		return token.Token{Type: token.EOF}
	}
	return c.toks[c.i]
}

func (c *cursor) peekAt(n int) token.Token {
	if c.i+n >= len(c.toks) {
		return token.Token{Type: token.EOF}
	}
	return c.toks[c.i+n]
}

func (c *cursor) next() token.Token {
	t := c.peek()
	if c.i < len(c.toks) {
		c.i++
	}
	if t.Type != token.EOF && t.Type != token.COMMENT {
		c.endRow = t.Row
		c.endCol = tokenEnd(t)
	}
	return t
}

// done reports whether only an inline comment (or nothing) remains.
func (c *cursor) done() bool {
	t := c.peek()
	return t.Type == token.EOF || t.Type == token.COMMENT
}

func tokenEnd(t token.Token) int {
	switch t.Type {
	case token.STRING:
		// Lexeme is the unescaped value; recover the source width.
		return t.Col + len(escapeString(t.Lexeme)) + 1
	case token.VARIABLE:
		return t.Col + len(t.Lexeme) // the leading $ widens the span by one
	case token.LASTVALUE:
		return t.Col
	case token.NAMEDARG:
		return t.Col + len(t.Lexeme) + 1 // $name=
	}
	return t.Col + len(t.Lexeme) - 1
}

// escapeString mirrors the printer's string escaping so source widths can be
// recovered from unescaped lexemes.
func escapeString(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '"' || s[i] == '\\' {
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}

// binaryOp reports whether t acts as a binary operator at this point,
// promoting the word spellings and/or.
func binaryOp(t token.Token) (token.Type, bool) {
	if t.Type == token.IDENT {
		if op, ok := token.LookupWordOperator(t.Lexeme); ok && op != token.BANG {
			return op, true
		}
		return "", false
	}
	if token.IsBinaryOperator(t.Type) {
		return t.Type, true
	}
	return "", false
}

// opSymbol is the normalized spelling of a binary operator type.
func opSymbol(t token.Type) string { return string(t) }

// parseExpression parses a full expression with operator precedence.
// The original operator spelling is preserved in OperatorText.
func (p *Parser) parseExpression(c *cursor, minPrec int) ast.Expression {
	left := p.parseUnary(c)
	if left == nil {
		return nil
	}
	for {
		op, ok := binaryOp(c.peek())
		if !ok {
			return left
		}
		prec := token.Precedence(op)
		if prec < minPrec {
			return left
		}
		opTok := c.next()
		right := p.parseExpression(c, prec+1)
		if right == nil {
			p.errorAt(opTok, "missing right operand for %q", opTok.Lexeme)
			return left
		}
		left = &ast.Binary{
			Position:     left.Pos().Span(right.Pos()),
			Left:         left,
			Right:        right,
			Operator:     opSymbol(op),
			OperatorText: opTok.Lexeme,
		}
	}
}

func (p *Parser) parseUnary(c *cursor) ast.Expression {
	t := c.peek()
	if t.Type == token.BANG || t.Type == token.MINUS ||
		(t.Type == token.IDENT && t.Lexeme == "not") {
		opTok := c.next()
		// A minus glued to a number is a negative literal, not a unary
		// expression; "- 5" and "-5" must round-trip differently.
		if opTok.Type == token.MINUS && c.peek().Type == token.NUMBER &&
			c.peek().Col == opTok.Col+1 {
			numTok := c.next()
			return p.numberLiteral(numTok, "-"+numTok.Lexeme, opTok.Col)
		}
		arg := p.parseUnary(c)
		if arg == nil {
			p.errorAt(opTok, "missing operand for %q", opTok.Lexeme)
			return nil
		}
		return &ast.Unary{
			Position: position.At(opTok.Row, opTok.Col, tokenEnd(opTok)).Span(arg.Pos()),
			Operator: opTok.Lexeme,
			Argument: arg,
		}
	}
	return p.parsePrimary(c)
}

// parsePrimary parses one operand: variables with paths, literals,
// subexpressions, raw object/array text, or a parenthesized expression.
func (p *Parser) parsePrimary(c *cursor) ast.Expression {
	t := c.peek()
	switch t.Type {
	case token.VARIABLE:
		c.next()
		return p.parseVariable(c, t)
	case token.LASTVALUE:
		c.next()
		return &ast.LastValue{Position: position.At(t.Row, t.Col, t.Col)}
	case token.STRING:
		c.next()
		return &ast.StringLiteral{
			Position: position.At(t.Row, t.Col, tokenEnd(t)),
			Value:    t.Lexeme,
		}
	case token.NUMBER:
		c.next()
		return p.numberLiteral(t, t.Lexeme, t.Col)
	case token.IDENT:
		c.next()
		pos := position.At(t.Row, t.Col, tokenEnd(t))
		switch t.Lexeme {
		case "true":
			return &ast.Literal{Position: pos, Value: true}
		case "false":
			return &ast.Literal{Position: pos, Value: false}
		case "null":
			return &ast.Literal{Position: pos, Value: nil}
		}
		return &ast.Literal{Position: pos, Value: t.Lexeme}
	case token.SUBEXPR:
		return p.parseSubexpression(c)
	case token.OBJECT:
		c.next()
		return &ast.ObjectCode{
			Position: position.At(t.Row, t.Col, t.Col+len(t.Lexeme)-1),
			Code:     t.Lexeme,
		}
	case token.ARRAY:
		c.next()
		return &ast.ArrayCode{
			Position: position.At(t.Row, t.Col, t.Col+len(t.Lexeme)-1),
			Code:     t.Lexeme,
		}
	case token.LPAREN:
		open := c.next()
		inner := p.parseExpression(c, 0)
		if c.peek().Type == token.RPAREN {
			c.next()
		} else {
			p.errorAt(open, "unclosed parenthesis")
		}
		if b, ok := inner.(*ast.Binary); ok {
			b.Parenthesized = true
		}
		return inner
	}
	return nil
}

func (p *Parser) numberLiteral(t token.Token, raw string, startCol int) ast.Expression {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.errorAt(t, "bad number %q", raw)
	}
	return &ast.NumberLiteral{
		Position: position.At(t.Row, startCol, startCol+len(raw)-1),
		Value:    v,
		Raw:      raw,
	}
}

// parseVariable builds a Variable from an already-consumed VARIABLE token,
// consuming any .prop / [idx] path segments that follow without whitespace.
func (p *Parser) parseVariable(c *cursor, t token.Token) *ast.Variable {
	v := &ast.Variable{
		Name:     t.Lexeme,
		Position: position.At(t.Row, t.Col, t.Col+len(t.Lexeme)), // $ + name
	}
	endCol := t.Col + len(t.Lexeme)
	for {
		nxt := c.peek()
		if nxt.Type == token.DOT && nxt.Col == endCol+1 && c.peekAt(1).Type == token.IDENT {
			c.next()
			name := c.next()
			v.Path = append(v.Path, ast.PathSegment{Kind: ast.PropertySegment, Name: name.Lexeme})
			endCol = tokenEnd(name)
			continue
		}
		if nxt.Type == token.LBRACKET && nxt.Col == endCol+1 &&
			c.peekAt(1).Type == token.NUMBER && c.peekAt(2).Type == token.RBRACKET {
			c.next()
			num := c.next()
			closing := c.next()
			idx, _ := strconv.Atoi(num.Lexeme)
			v.Path = append(v.Path, ast.PathSegment{Kind: ast.IndexSegment, Index: idx})
			endCol = closing.Col
			continue
		}
		break
	}
	v.Position.EndCol = endCol
	return v
}

// parseCondition parses the condition of an if statement. A condition that
// starts with a bare word is call sugar (`contains $list $x`) and consumes
// the rest of the line up to a trailing `then`; anything else is an ordinary
// expression, which leaves trailing tokens for an inline command.
func (p *Parser) parseCondition(c *cursor) ast.Condition {
	t := c.peek()
	if t.Type == token.IDENT && !isConditionKeyword(t.Lexeme) {
		if _, isOp := token.LookupWordOperator(t.Lexeme); !isOp {
			call := &ast.Call{Callee: t.Lexeme, Position: position.At(t.Row, t.Col, tokenEnd(t))}
			c.next()
			for !c.done() {
				if c.peek().Type == token.IDENT && c.peek().Lexeme == "then" {
					break
				}
				arg := p.parseUnary(c)
				if arg == nil {
					p.errorAt(c.peek(), "bad condition argument %q", c.peek().Lexeme)
					c.next()
					continue
				}
				call.Position = call.Position.Span(arg.Pos())
				call.Args = append(call.Args, arg)
			}
			return ast.Condition{Expr: call}
		}
	}
	return ast.Condition{Expr: p.parseExpression(c, 0)}
}

func isConditionKeyword(word string) bool {
	switch word {
	case "true", "false", "null", "then":
		return true
	}
	return false
}
