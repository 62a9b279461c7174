// Package parser turns Quill source text into the position-annotated
// statement tree consumed by the printers and the regeneration engine.
//
// Quill is line-oriented: the parser owns a cursor over physical lines and
// lexes each visited line on demand. Multi-row constructs (blocks, callbacks,
// multiline parenthesized calls, multiline subexpressions) leave the row
// cursor on their final row; the statement dispatcher advances past it.
package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/quill-lang/quill/internal/ast"
	"github.com/quill-lang/quill/internal/config"
	"github.com/quill-lang/quill/internal/lexer"
	"github.com/quill-lang/quill/internal/position"
	"github.com/quill-lang/quill/internal/token"
)

// Error is a parse error with document coordinates.
type Error struct {
	Msg string
	Row int
	Col int
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d:%d: %s", e.Row+1, e.Col+1, e.Msg)
}

// Parser parses one source string.
type Parser struct {
	source     string
	lines      []string
	row        int
	errs       []*Error
	decorators []ast.Decorator
}

// New returns a parser over source.
func New(source string) *Parser {
	return &Parser{source: source, lines: strings.Split(source, "\n")}
}

// Parse is the convenience entry point: parse source and join any errors.
func Parse(source string) ([]ast.Statement, error) {
	p := New(source)
	stmts := p.ParseProgram()
	if len(p.errs) > 0 {
		joined := make([]error, len(p.errs))
		for i, e := range p.errs {
			joined[i] = e
		}
		return stmts, errors.Join(joined...)
	}
	return stmts, nil
}

// ParseProgram parses the whole document. Errors are collected, not fatal;
// the best-effort tree is always returned.
func (p *Parser) ParseProgram() []ast.Statement {
	stmts, _, _ := p.parseBody()
	return stmts
}

// Errors returns the parse errors in document order.
func (p *Parser) Errors() []*Error { return p.errs }

func (p *Parser) errorAt(t token.Token, format string, args ...any) {
	p.errs = append(p.errs, &Error{Msg: fmt.Sprintf(format, args...), Row: t.Row, Col: t.Col})
}

func (p *Parser) errorf(row, col int, format string, args ...any) {
	p.errs = append(p.errs, &Error{Msg: fmt.Sprintf(format, args...), Row: row, Col: col})
}

// numberValue keeps a numeric literal's source spelling so 5.0 and 5 stay
// distinct through a round trip.
func numberValue(raw string) any { return json.Number(raw) }

// firstWord returns the first whitespace-delimited word of a trimmed line.
func firstWord(trimmed string) string {
	if i := strings.IndexAny(trimmed, " \t"); i >= 0 {
		return trimmed[:i]
	}
	return trimmed
}

// parseBody parses statements until one of the terminator words starts a
// line, or the document ends. It returns the statements, the terminator
// token (zero when the document ended first), and whether a terminator was
// found.
func (p *Parser) parseBody(terminators ...string) ([]ast.Statement, token.Token, bool) {
	var stmts []ast.Statement
	var pending []rawComment

	flush := func() {
		for _, s := range p.attachComments(pending, nil) {
			stmts = append(stmts, s)
		}
		pending = nil
	}

	for p.row < len(p.lines) {
		line := p.lines[p.row]
		trimmed := strings.TrimSpace(line)

		if trimmed == "" {
			p.row++
			continue
		}

		word := firstWord(trimmed)
		for _, t := range terminators {
			if word == t {
				flush()
				col := strings.Index(line, trimmed)
				return stmts, token.Token{Type: token.IDENT, Lexeme: word, Row: p.row, Col: col}, true
			}
		}

		if strings.HasPrefix(trimmed, "#") {
			col := strings.Index(line, "#")
			pending = append(pending, rawComment{
				text:     commentText(trimmed),
				row:      p.row,
				startCol: col,
				endCol:   len(strings.TrimRight(line, " \t")) - 1,
			})
			p.row++
			continue
		}

		if strings.HasPrefix(trimmed, "@") {
			p.parseDecorator(line, trimmed)
			p.row++
			continue
		}

		var stmt ast.Statement
		switch {
		case strings.HasPrefix(trimmed, config.CellFencePrefix):
			stmt = p.parseCell(line, trimmed)
		case strings.HasPrefix(trimmed, config.Fence+" ") &&
			strings.HasPrefix(strings.TrimSpace(trimmed[len(config.Fence):]), config.ChunkPrefix):
			stmt = p.parseChunkMarker(line, trimmed)
		case trimmed == config.Fence:
			stmt = p.parsePromptBlock(line)
		default:
			stmt = p.parseLineStatement()
		}

		if stmt == nil {
			p.row++
			continue
		}
		stmts = append(stmts, p.attachComments(pending, stmt)...)
		pending = nil
		stmts = append(stmts, stmt)
	}
	flush()
	return stmts, token.Token{}, false
}

// parseDecorator scans one `@name arg...` line into the pending decorator
// list consumed by the next def or on statement.
func (p *Parser) parseDecorator(line, trimmed string) {
	col := strings.Index(line, "@")
	fields := strings.Fields(trimmed[1:])
	if len(fields) == 0 {
		p.errorf(p.row, col, "empty decorator")
		return
	}
	p.decorators = append(p.decorators, ast.Decorator{
		Name:     fields[0],
		Args:     fields[1:],
		Position: position.At(p.row, col, len(strings.TrimRight(line, " \t"))-1),
	})
}

// takeDecorators hands the pending decorators to a def/on statement.
func (p *Parser) takeDecorators() []ast.Decorator {
	d := p.decorators
	p.decorators = nil
	return d
}

// parseLineStatement dispatches on the first token of the current line and
// advances the row cursor past everything the statement consumed.
func (p *Parser) parseLineStatement() ast.Statement {
	row := p.row
	line := p.lines[row]
	toks := lexer.New(line, row).Tokens()
	if len(toks) == 0 {
		p.row++
		return nil
	}
	if len(p.decorators) > 0 {
		first := toks[0]
		if first.Type != token.IDENT || (first.Lexeme != "def" && first.Lexeme != "on") {
			p.errorAt(first, "decorators must precede def or on")
			p.decorators = nil
		}
	}

	c := newCursor(toks)
	var stmt ast.Statement
	first := c.peek()
	switch {
	case first.Type == token.VARIABLE:
		stmt = p.parseAssignment(c, false)
	case first.Type == token.IDENT:
		switch first.Lexeme {
		case "set":
			if c.peekAt(1).Type == token.VARIABLE {
				setTok := c.next()
				stmt = p.parseAssignmentAt(c, true, setTok.Col)
				break
			}
			stmt = p.parseCommandStatement(c, true)
		case "if":
			stmt = p.parseIf(c)
		case "iftrue", "iffalse":
			stmt = p.parseIfStatus(c)
		case "def":
			stmt = p.parseDefine(c)
		case "do":
			stmt = p.parseDo(c)
		case "together":
			stmt = p.parseTogether(c)
		case "for":
			stmt = p.parseFor(c)
		case "on":
			stmt = p.parseOn(c)
		case "return":
			stmt = p.parseReturn(c)
		case "break":
			c.next()
			stmt = &ast.Break{Position: position.At(row, first.Col, tokenEnd(first))}
		case "continue":
			c.next()
			stmt = &ast.Continue{Position: position.At(row, first.Col, tokenEnd(first))}
		default:
			stmt = p.parseCommandStatement(c, true)
		}
	default:
		p.errorAt(first, "unexpected %q at start of statement", first.Lexeme)
		p.row++
		return nil
	}

	if stmt != nil {
		if cm := trailingComment(toks); cm != nil {
			setInlineComment(stmt, ast.Comment{
				Text:     commentText(cm.Lexeme),
				Position: position.At(cm.Row, cm.Col, len(strings.TrimRight(line, " \t"))-1),
			})
		}
	}
	p.row++
	return stmt
}

func trailingComment(toks []token.Token) *token.Token {
	if len(toks) > 0 && toks[len(toks)-1].Type == token.COMMENT {
		return &toks[len(toks)-1]
	}
	return nil
}

// parseAssignment parses `$target[.path] [=|as] value`, the implicit
// `$target value` form, and the `$x = $` shorthand. The cursor is positioned
// at the VARIABLE token.
func (p *Parser) parseAssignment(c *cursor, isSet bool) ast.Statement {
	return p.parseAssignmentAt(c, isSet, c.peek().Col)
}

// parseAssignmentAt is parseAssignment with an explicit start column, used
// for the `set $x ...` form whose span begins at the keyword.
func (p *Parser) parseAssignmentAt(c *cursor, isSet bool, startCol int) ast.Statement {
	varTok := c.next()
	v := p.parseVariable(c, varTok)

	a := &ast.Assignment{
		TargetName: v.Name,
		TargetPath: v.Path,
		IsSet:      isSet,
		Position:   position.At(varTok.Row, startCol, v.Position.EndCol),
	}

	switch {
	case c.peek().Type == token.ASSIGN:
		c.next()
	case c.peek().Type == token.IDENT && c.peek().Lexeme == "as":
		c.next()
		a.HasAs = true
	case c.done():
		p.errorAt(varTok, "assignment to $%s has no value", v.Name)
		return a
	default:
		a.IsImplicit = true
	}

	// Plain `$x = $` is the shorthand statement; any decorated form
	// ($x.path, set, as) stays an assignment capturing the last value.
	if c.peek().Type == token.LASTVALUE && c.peekAt(1).Type != token.DOT {
		last := c.next()
		if !c.done() {
			p.errorAt(c.peek(), "unexpected %q after $", c.peek().Lexeme)
		}
		if !isSet && !a.HasAs && !a.IsImplicit && len(v.Path) == 0 {
			return &ast.Shorthand{
				TargetName: v.Name,
				Position:   position.At(varTok.Row, startCol, last.Col),
			}
		}
		a.IsLastValue = true
		a.Position.EndCol = last.Col
		return a
	}

	p.parseAssignValue(c, a)
	return a
}

// parseAssignValue fills the assignment's value: a scalar literal, a bare
// expression wrapped in an internal sugar command, or an ordinary command.
func (p *Parser) parseAssignValue(c *cursor, a *ast.Assignment) {
	t := c.peek()
	row := t.Row

	sugar := func(name string, arg ast.Expression) {
		a.Command = &ast.Command{
			Name:     name,
			Syntax:   ast.SyntaxSpace,
			Args:     []ast.Expression{arg},
			Position: arg.Pos(),
		}
		a.Position = a.Position.Span(arg.Pos())
	}

	switch t.Type {
	case token.STRING:
		if c.peekAt(1).Type == token.EOF || c.peekAt(1).Type == token.COMMENT {
			c.next()
			a.LiteralValue = t.Lexeme
			a.LiteralType = "string"
			a.Position.EndCol = tokenEnd(t)
			return
		}
	case token.NUMBER:
		if c.peekAt(1).Type == token.EOF || c.peekAt(1).Type == token.COMMENT {
			c.next()
			a.LiteralValue = numberValue(t.Lexeme)
			a.LiteralType = "number"
			a.Position.EndCol = tokenEnd(t)
			return
		}
	case token.MINUS:
		if c.peekAt(1).Type == token.NUMBER && c.peekAt(1).Col == t.Col+1 &&
			(c.peekAt(2).Type == token.EOF || c.peekAt(2).Type == token.COMMENT) {
			c.next()
			num := c.next()
			a.LiteralValue = numberValue("-" + num.Lexeme)
			a.LiteralType = "number"
			a.Position.EndCol = tokenEnd(num)
			return
		}
	case token.IDENT:
		if c.peekAt(1).Type == token.EOF || c.peekAt(1).Type == token.COMMENT {
			switch t.Lexeme {
			case "true", "false":
				c.next()
				a.LiteralValue = t.Lexeme == "true"
				a.LiteralType = "boolean"
				a.Position.EndCol = tokenEnd(t)
				return
			case "null":
				c.next()
				a.LiteralValue = nil
				a.LiteralType = "null"
				a.Position.EndCol = tokenEnd(t)
				return
			}
		}
	case token.VARIABLE:
		if isLastArg(c, 1) || followsVariablePath(c) {
			v := p.parseVariable(c, c.next())
			if c.done() {
				sugar(config.SugarVar, v)
				return
			}
			p.errorAt(c.peek(), "unexpected %q after variable value", c.peek().Lexeme)
			sugar(config.SugarVar, v)
			return
		}
	case token.SUBEXPR:
		sub := p.parseSubexpression(c)
		if sub != nil {
			sugar(config.SugarSubexpr, sub)
			if !c.done() {
				p.errorAt(c.peek(), "unexpected %q after subexpression", c.peek().Lexeme)
			}
		}
		return
	case token.OBJECT:
		c.next()
		sugar(config.SugarObject, &ast.ObjectCode{
			Position: position.At(row, t.Col, t.Col+len(t.Lexeme)-1),
			Code:     t.Lexeme,
		})
		return
	case token.ARRAY:
		c.next()
		sugar(config.SugarArray, &ast.ArrayCode{
			Position: position.At(row, t.Col, t.Col+len(t.Lexeme)-1),
			Code:     t.Lexeme,
		})
		return
	}

	if t.Type == token.IDENT {
		cmd := p.parseCommandStatement(c, false)
		if command, ok := cmd.(*ast.Command); ok {
			a.Command = command
			a.Position = a.Position.Span(command.Position)
		}
		return
	}
	p.errorAt(t, "cannot parse assignment value starting with %q", t.Lexeme)
}

// isLastArg reports whether the token n positions ahead ends the line
// (ignoring an inline comment).
func isLastArg(c *cursor, n int) bool {
	t := c.peekAt(n)
	return t.Type == token.EOF || t.Type == token.COMMENT
}

// followsVariablePath reports whether the upcoming VARIABLE token is
// followed only by its own path segments to end of line.
func followsVariablePath(c *cursor) bool {
	i := 1
	for {
		t := c.peekAt(i)
		switch t.Type {
		case token.DOT:
			if c.peekAt(i+1).Type != token.IDENT {
				return false
			}
			i += 2
		case token.LBRACKET:
			if c.peekAt(i+1).Type != token.NUMBER || c.peekAt(i+2).Type != token.RBRACKET {
				return false
			}
			i += 3
		case token.EOF, token.COMMENT:
			return true
		default:
			return false
		}
	}
}

// parseCommandStatement parses a command invocation starting at the cursor.
// allowBlocks permits row-consuming forms (multiline parentheses, with
// callbacks); it is false inside single-line contexts like subexpressions.
func (p *Parser) parseCommandStatement(c *cursor, allowBlocks bool) ast.Statement {
	nameTok := c.next()
	name := nameTok.Lexeme
	module := ""
	if i := strings.Index(name, "."); i >= 0 {
		module = name[:i]
		name = name[i+1:]
	}
	cmd := &ast.Command{
		Name:     name,
		Module:   module,
		Syntax:   ast.SyntaxSpace,
		Position: position.At(nameTok.Row, nameTok.Col, tokenEnd(nameTok)),
	}

	nxt := c.peek()
	if nxt.Type == token.LPAREN && nxt.Col == nameTok.Col+len(nameTok.Lexeme) {
		c.next()
		if c.done() {
			if !allowBlocks {
				p.errorAt(nxt, "multiline call not allowed here")
				return cmd
			}
			cmd.Syntax = ast.SyntaxMultilineParens
			p.parseMultilineArgs(cmd)
			return cmd
		}
		p.parseParenArgs(c, cmd)
	} else {
		p.parseSpaceArgs(c, cmd)
	}

	p.parseCommandSuffix(c, cmd, allowBlocks)
	return cmd
}

// parseSpaceArgs reads space-separated positional arguments up to an
// into/with suffix or end of line.
func (p *Parser) parseSpaceArgs(c *cursor, cmd *ast.Command) {
	for !c.done() {
		t := c.peek()
		if t.Type == token.IDENT && (t.Lexeme == "into" || t.Lexeme == "with") {
			return
		}
		arg := p.parseUnary(c)
		if arg == nil {
			p.errorAt(t, "bad argument %q", t.Lexeme)
			c.next()
			continue
		}
		cmd.Args = append(cmd.Args, arg)
		cmd.Position = cmd.Position.Span(arg.Pos())
	}
}

// parseParenArgs reads `name(...)` arguments on one line: positionals first,
// then $key=value entries collected into one NamedArgs record.
func (p *Parser) parseParenArgs(c *cursor, cmd *ast.Command) {
	cmd.Syntax = ast.SyntaxParens
	var named *ast.NamedArgs

	for !c.done() && c.peek().Type != token.RPAREN {
		t := c.peek()
		if t.Type == token.NAMEDARG {
			c.next()
			val := p.parseUnary(c)
			if val == nil {
				p.errorAt(t, "named argument $%s= has no value", t.Lexeme)
				continue
			}
			if named == nil {
				named = &ast.NamedArgs{
					Args:     make(map[string]ast.Expression),
					Position: position.At(t.Row, t.Col, tokenEnd(t)),
				}
			}
			named.Args[t.Lexeme] = val
			named.Order = append(named.Order, t.Lexeme)
			named.Position = named.Position.Span(val.Pos())
			continue
		}
		arg := p.parseUnary(c)
		if arg == nil {
			p.errorAt(t, "bad argument %q", t.Lexeme)
			c.next()
			continue
		}
		cmd.Args = append(cmd.Args, arg)
	}

	if c.peek().Type == token.RPAREN {
		closing := c.next()
		cmd.Position.EndRow = closing.Row
		cmd.Position.EndCol = closing.Col
	} else {
		p.errorf(cmd.Position.StartRow, cmd.Position.StartCol, "unclosed ( in command %s", cmd.Name)
	}
	if named != nil {
		cmd.Args = append(cmd.Args, named)
		cmd.Syntax = ast.SyntaxNamedParens
	}
}

// parseMultilineArgs reads the body of a multiline parenthesized call: one
// argument per row, closed by `)` or `) into $target` at the command's
// indent. The row cursor is left on the closing row.
func (p *Parser) parseMultilineArgs(cmd *ast.Command) {
	var named *ast.NamedArgs
	p.row++
	for p.row < len(p.lines) {
		line := p.lines[p.row]
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			p.row++
			continue
		}
		if strings.HasPrefix(trimmed, ")") {
			toks := lexer.New(line, p.row).Tokens()
			c := newCursor(toks)
			closing := c.next() // RPAREN
			cmd.Position.EndRow = closing.Row
			cmd.Position.EndCol = closing.Col
			if c.peek().Type == token.IDENT && c.peek().Lexeme == "into" {
				c.next()
				if tgt := p.parseTargetClause(c); tgt != nil {
					cmd.Into = tgt
					cmd.Position.EndCol = c.endCol
				}
			}
			if named != nil {
				cmd.Args = append(cmd.Args, named)
			}
			if cm := trailingComment(toks); cm != nil {
				setInlineComment(cmd, ast.Comment{
					Text:     commentText(cm.Lexeme),
					Position: position.At(cm.Row, cm.Col, len(strings.TrimRight(line, " \t"))-1),
				})
			}
			return
		}

		toks := lexer.New(line, p.row).Tokens()
		c := newCursor(toks)
		t := c.peek()
		if t.Type == token.NAMEDARG {
			c.next()
			val := p.parseUnary(c)
			if val == nil {
				p.errorAt(t, "named argument $%s= has no value", t.Lexeme)
			} else {
				if named == nil {
					named = &ast.NamedArgs{Args: make(map[string]ast.Expression)}
					named.Position = position.At(t.Row, t.Col, tokenEnd(t))
				}
				named.Args[t.Lexeme] = val
				named.Order = append(named.Order, t.Lexeme)
				named.Position = named.Position.Span(val.Pos())
			}
		} else {
			arg := p.parseUnary(c)
			if arg == nil {
				p.errorAt(t, "bad argument %q", t.Lexeme)
			} else {
				cmd.Args = append(cmd.Args, arg)
			}
		}
		p.row++
	}
	p.errorf(cmd.Position.StartRow, cmd.Position.StartCol, "unclosed multiline call %s", cmd.Name)
	p.row--
}

// parseCommandSuffix handles the `into $target` and `with $p1 $p2` clauses
// after a command's arguments. A with clause consumes the callback body rows
// up to endwith.
func (p *Parser) parseCommandSuffix(c *cursor, cmd *ast.Command, allowBlocks bool) {
	for !c.done() {
		t := c.peek()
		if t.Type != token.IDENT {
			p.errorAt(t, "unexpected %q after command arguments", t.Lexeme)
			return
		}
		switch t.Lexeme {
		case "into":
			c.next()
			if tgt := p.parseTargetClause(c); tgt != nil {
				cmd.Into = tgt
				cmd.Position.EndRow = c.endRow
				cmd.Position.EndCol = c.endCol
			}
		case "with":
			if !allowBlocks {
				p.errorAt(t, "callback not allowed here")
				return
			}
			c.next()
			cb := &ast.Callback{}
			for c.peek().Type == token.VARIABLE {
				cb.ParamNames = append(cb.ParamNames, c.next().Lexeme)
			}
			if c.peek().Type == token.IDENT && c.peek().Lexeme == "into" {
				c.next()
				cb.Into = p.parseTargetClause(c)
			}
			p.row++
			body, term, ok := p.parseBody(config.EndWith)
			cb.Body = body
			if !ok {
				p.errorf(t.Row, t.Col, "missing endwith")
				p.row--
			} else {
				cmd.Position.EndRow = term.Row
				cmd.Position.EndCol = term.Col + len(term.Lexeme) - 1
			}
			cmd.Callback = cb
			return
		default:
			p.errorAt(t, "unexpected %q after command arguments", t.Lexeme)
			return
		}
	}
}

// parseTargetClause parses the `$target[.path]` of an into clause.
func (p *Parser) parseTargetClause(c *cursor) *ast.Target {
	t := c.peek()
	if t.Type != token.VARIABLE {
		p.errorAt(t, "into requires a $target")
		return nil
	}
	v := p.parseVariable(c, c.next())
	return &ast.Target{Name: v.Name, Path: v.Path}
}

// parseSubexpression parses `$( ... )`, single- or multi-row. For the
// multi-row form the closing `)` sits alone on its line and the row cursor
// is left there.
func (p *Parser) parseSubexpression(c *cursor) ast.Expression {
	open := c.next() // SUBEXPR
	depth := 1
	var inner []token.Token
	for !c.done() {
		t := c.peek()
		switch t.Type {
		case token.SUBEXPR, token.LPAREN:
			depth++
		case token.RPAREN:
			depth--
			if depth == 0 {
				closing := c.next()
				return &ast.Subexpression{
					Position: position.At(open.Row, open.Col, closing.Col),
					Body:     p.parseTokenStatements(inner),
				}
			}
		}
		inner = append(inner, c.next())
	}

	// Multi-row subexpression: remainder of the opening line is the first
	// inner statement, following rows run to a lone `)`.
	body := p.parseTokenStatements(inner)
	p.row++
	rest, term, ok := p.parseBody(")")
	body = append(body, rest...)
	if !ok {
		p.errorAt(open, "unclosed $(")
		p.row--
		return &ast.Subexpression{
			Position: position.At(open.Row, open.Col, open.Col+1),
			Body:     body,
		}
	}
	return &ast.Subexpression{
		Position: position.Position{
			StartRow: open.Row, StartCol: open.Col,
			EndRow: term.Row, EndCol: term.Col,
		},
		Body: body,
	}
}

// parseTokenStatements parses a single-line statement from a token slice
// (the interior of a single-line subexpression).
func (p *Parser) parseTokenStatements(toks []token.Token) []ast.Statement {
	if len(toks) == 0 {
		return nil
	}
	c := newCursor(toks)
	var stmt ast.Statement
	switch {
	case toks[0].Type == token.VARIABLE:
		stmt = p.parseAssignment(c, false)
	case toks[0].Type == token.IDENT:
		stmt = p.parseCommandStatement(c, false)
	default:
		p.errorAt(toks[0], "unexpected %q in subexpression", toks[0].Lexeme)
		return nil
	}
	if stmt == nil {
		return nil
	}
	return []ast.Statement{stmt}
}

// parseIf parses both if forms. Block form:
//
//	if <cond>[ then] ... [elseif <cond> ...]* [else ...] endif
//
// Inline form: `if <cond> <command>` with no terminator.
func (p *Parser) parseIf(c *cursor) ast.Statement {
	ifTok := c.next()
	cond := p.parseCondition(c)

	hasThen := false
	if !c.done() {
		t := c.peek()
		if !(t.Type == token.IDENT && t.Lexeme == "then" && isLastArg(c, 1)) {
			cmdStmt := p.parseCommandStatement(c, false)
			cmd, _ := cmdStmt.(*ast.Command)
			pos := position.At(ifTok.Row, ifTok.Col, c.endCol)
			return &ast.InlineIf{Position: pos, Condition: cond, Command: cmd}
		}
		c.next() // then
		hasThen = true
	}

	ifb := &ast.IfBlock{
		Condition: cond,
		HasThen:   hasThen,
		Position:  position.At(ifTok.Row, ifTok.Col, c.endCol),
	}

	p.row++
	body, term, ok := p.parseBody("elseif", "else", config.EndIf)
	ifb.ThenBranch = body
	for ok && term.Lexeme == "elseif" {
		row := term.Row
		toks := lexer.New(p.lines[row], row).Tokens()
		bc := newCursor(toks)
		bc.next() // elseif
		branch := ast.ElseIfBranch{
			Condition: p.parseCondition(bc),
			Position:  position.At(row, term.Col, bc.endCol),
		}
		p.row++
		branch.Body, term, ok = p.parseBody("elseif", "else", config.EndIf)
		ifb.ElseIfBranches = append(ifb.ElseIfBranches, branch)
	}
	if ok && term.Lexeme == "else" {
		ifb.HasElse = true
		p.row++
		ifb.ElseBranch, term, ok = p.parseBody(config.EndIf)
	}
	if !ok {
		p.errorAt(ifTok, "missing endif")
		p.row--
	} else {
		ifb.Position.EndRow = term.Row
		ifb.Position.EndCol = term.Col + len(term.Lexeme) - 1
	}
	return ifb
}

// parseIfStatus parses `iftrue <command>` / `iffalse <command>`.
func (p *Parser) parseIfStatus(c *cursor) ast.Statement {
	kw := c.next()
	cmdStmt := p.parseCommandStatement(c, false)
	cmd, _ := cmdStmt.(*ast.Command)
	pos := position.At(kw.Row, kw.Col, c.endCol)
	if kw.Lexeme == "iftrue" {
		return &ast.IfTrue{Position: pos, Command: cmd}
	}
	return &ast.IfFalse{Position: pos, Command: cmd}
}

// parseDefine parses `def name $p1 $p2 ... enddef` with any pending
// decorators. The statement's span starts at the first decorator so that
// verbatim replay keeps decorator lines with their definition.
func (p *Parser) parseDefine(c *cursor) ast.Statement {
	defTok := c.next()
	d := &ast.Define{
		Decorators: p.takeDecorators(),
		Position:   position.At(defTok.Row, defTok.Col, tokenEnd(defTok)),
	}
	if c.peek().Type != token.IDENT {
		p.errorAt(c.peek(), "def requires a name")
	} else {
		d.Name = c.next().Lexeme
	}
	for c.peek().Type == token.VARIABLE {
		d.ParamNames = append(d.ParamNames, c.next().Lexeme)
	}
	if len(d.Decorators) > 0 {
		d.Position.StartRow = d.Decorators[0].Position.StartRow
		d.Position.StartCol = d.Decorators[0].Position.StartCol
	}

	p.row++
	body, term, ok := p.parseBody(config.EndDef)
	d.Body = body
	if !ok {
		p.errorAt(defTok, "missing enddef")
		p.row--
	} else {
		d.Position.EndRow = term.Row
		d.Position.EndCol = term.Col + len(term.Lexeme) - 1
	}
	return d
}

// parseDo parses `do [$p1 $p2 ...][ into $target] ... enddo`.
func (p *Parser) parseDo(c *cursor) ast.Statement {
	doTok := c.next()
	d := &ast.Do{Position: position.At(doTok.Row, doTok.Col, tokenEnd(doTok))}
	for c.peek().Type == token.VARIABLE {
		d.ParamNames = append(d.ParamNames, c.next().Lexeme)
	}
	if c.peek().Type == token.IDENT && c.peek().Lexeme == "into" {
		c.next()
		d.Into = p.parseTargetClause(c)
	}
	p.row++
	body, term, ok := p.parseBody(config.EndDo)
	d.Body = body
	if !ok {
		p.errorAt(doTok, "missing enddo")
		p.row--
	} else {
		d.Position.EndRow = term.Row
		d.Position.EndCol = term.Col + len(term.Lexeme) - 1
	}
	return d
}

// parseTogether parses `together ... endtogether`; every block inside must
// be a do block.
func (p *Parser) parseTogether(c *cursor) ast.Statement {
	tok := c.next()
	t := &ast.Together{Position: position.At(tok.Row, tok.Col, tokenEnd(tok))}
	p.row++
	body, term, ok := p.parseBody(config.EndTogether)
	for _, s := range body {
		if _, isDo := s.(*ast.Do); !isDo {
			if _, isComment := s.(*ast.CommentStatement); !isComment {
				p.errorf(s.Pos().StartRow, s.Pos().StartCol, "together may only contain do blocks")
			}
		}
	}
	t.Blocks = body
	if !ok {
		p.errorAt(tok, "missing endtogether")
		p.row--
	} else {
		t.Position.EndRow = term.Row
		t.Position.EndCol = term.Col + len(term.Lexeme) - 1
	}
	return t
}

// parseFor parses `for $var in range <from> <to>` / `for $var in <iterable>`.
func (p *Parser) parseFor(c *cursor) ast.Statement {
	forTok := c.next()
	f := &ast.ForLoop{Position: position.At(forTok.Row, forTok.Col, tokenEnd(forTok))}
	if c.peek().Type != token.VARIABLE {
		p.errorAt(c.peek(), "for requires a $variable")
	} else {
		f.VarName = c.next().Lexeme
	}
	if c.peek().Type == token.IDENT && c.peek().Lexeme == "in" {
		c.next()
	} else {
		p.errorAt(c.peek(), "for requires in")
	}
	if c.peek().Type == token.IDENT && c.peek().Lexeme == "range" {
		c.next()
		from := p.parseUnary(c)
		to := p.parseUnary(c)
		if from == nil || to == nil {
			p.errorAt(forTok, "range requires two bounds")
		} else {
			f.Range = &ast.Range{From: from, To: to}
		}
	} else {
		f.Iterable = p.parseExpression(c, 0)
		if f.Iterable == nil {
			p.errorAt(c.peek(), "for requires an iterable")
		}
	}
	p.row++
	body, term, ok := p.parseBody(config.EndFor)
	f.Body = body
	if !ok {
		p.errorAt(forTok, "missing endfor")
		p.row--
	} else {
		f.Position.EndRow = term.Row
		f.Position.EndCol = term.Col + len(term.Lexeme) - 1
	}
	return f
}

// parseOn parses `on "eventName" ... endon` with any pending decorators.
func (p *Parser) parseOn(c *cursor) ast.Statement {
	onTok := c.next()
	o := &ast.OnBlock{
		Decorators: p.takeDecorators(),
		Position:   position.At(onTok.Row, onTok.Col, tokenEnd(onTok)),
	}
	if c.peek().Type != token.STRING {
		p.errorAt(c.peek(), `on requires a quoted "event" name`)
	} else {
		o.EventName = c.next().Lexeme
	}
	if len(o.Decorators) > 0 {
		o.Position.StartRow = o.Decorators[0].Position.StartRow
		o.Position.StartCol = o.Decorators[0].Position.StartCol
	}
	p.row++
	body, term, ok := p.parseBody(config.EndOn)
	o.Body = body
	if !ok {
		p.errorAt(onTok, "missing endon")
		p.row--
	} else {
		o.Position.EndRow = term.Row
		o.Position.EndCol = term.Col + len(term.Lexeme) - 1
	}
	return o
}

// parseReturn parses `return [<value>]`.
func (p *Parser) parseReturn(c *cursor) ast.Statement {
	tok := c.next()
	r := &ast.Return{Position: position.At(tok.Row, tok.Col, tokenEnd(tok))}
	if !c.done() {
		r.Value = p.parseExpression(c, 0)
		if r.Value != nil {
			r.Position = r.Position.Span(r.Value.Pos())
		}
	}
	return r
}
