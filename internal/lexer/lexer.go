package lexer

import (
	"strings"

	"github.com/quill-lang/quill/internal/token"
)

// Lexer scans one physical line of a script into tokens. Quill is
// line-oriented, so the parser owns the line cursor and asks the lexer for
// the tokens of each line it visits. Columns are absolute within the
// document row.
type Lexer struct {
	line string
	row  int
	pos  int
}

// New returns a lexer over one line. row is the zero-indexed document row of
// the line; columns in emitted tokens are offsets into line.
func New(line string, row int) *Lexer {
	return &Lexer{line: line, row: row}
}

// Tokens scans the whole line.
func (l *Lexer) Tokens() []token.Token {
	var toks []token.Token
	for {
		tok := l.Next()
		if tok.Type == token.EOF {
			return toks
		}
		toks = append(toks, tok)
	}
}

// Next returns the next token on the line, or EOF.
func (l *Lexer) Next() token.Token {
	l.skipSpaces()
	if l.pos >= len(l.line) {
		return l.emit(token.EOF, l.pos, "")
	}

	start := l.pos
	ch := l.line[l.pos]

	switch {
	case ch == '#':
		// Comment to end of line. Mid-word '#' never reaches here because
		// identifiers consume it.
		text := l.line[l.pos:]
		l.pos = len(l.line)
		return l.emit(token.COMMENT, start, text)

	case ch == '"':
		return l.lexString(start)

	case ch == '$':
		return l.lexDollar(start)

	case ch >= '0' && ch <= '9':
		return l.lexNumber(start)

	case isIdentStart(ch):
		return l.lexWord(start)

	case ch == '{':
		return l.lexBalanced(start, '{', '}', token.OBJECT)

	case ch == '[':
		// A '[' glued to the end of an operand is an index; after a space
		// or at line start it opens an array literal.
		if l.pos > 0 && isOperandEnd(l.line[l.pos-1]) {
			l.pos++
			return l.emit(token.LBRACKET, start, "[")
		}
		return l.lexBalanced(start, '[', ']', token.ARRAY)
	}

	two := ""
	if l.pos+1 < len(l.line) {
		two = l.line[l.pos : l.pos+2]
	}
	switch two {
	case "==":
		l.pos += 2
		return l.emit(token.EQ, start, two)
	case "!=":
		l.pos += 2
		return l.emit(token.NOT_EQ, start, two)
	case "<=":
		l.pos += 2
		return l.emit(token.LE, start, two)
	case ">=":
		l.pos += 2
		return l.emit(token.GE, start, two)
	case "&&":
		l.pos += 2
		return l.emit(token.AND, start, two)
	case "||":
		l.pos += 2
		return l.emit(token.OR, start, two)
	}

	l.pos++
	switch ch {
	case '(':
		return l.emit(token.LPAREN, start, "(")
	case ')':
		return l.emit(token.RPAREN, start, ")")
	case ']':
		return l.emit(token.RBRACKET, start, "]")
	case '}':
		return l.emit(token.RBRACE, start, "}")
	case ',':
		return l.emit(token.COMMA, start, ",")
	case ':':
		return l.emit(token.COLON, start, ":")
	case '.':
		return l.emit(token.DOT, start, ".")
	case '=':
		return l.emit(token.ASSIGN, start, "=")
	case '<':
		return l.emit(token.LT, start, "<")
	case '>':
		return l.emit(token.GT, start, ">")
	case '!':
		return l.emit(token.BANG, start, "!")
	case '+':
		return l.emit(token.PLUS, start, "+")
	case '-':
		return l.emit(token.MINUS, start, "-")
	case '*':
		return l.emit(token.ASTERISK, start, "*")
	case '/':
		return l.emit(token.SLASH, start, "/")
	case '%':
		return l.emit(token.PERCENT, start, "%")
	}
	return l.emit(token.ILLEGAL, start, string(ch))
}

func (l *Lexer) skipSpaces() {
	for l.pos < len(l.line) && (l.line[l.pos] == ' ' || l.line[l.pos] == '\t') {
		l.pos++
	}
}

func (l *Lexer) emit(t token.Type, col int, lexeme string) token.Token {
	return token.Token{Type: t, Lexeme: lexeme, Row: l.row, Col: col}
}

// lexString reads a double-quoted string, unescaping \" and \\. Other
// backslash pairs are kept verbatim.
func (l *Lexer) lexString(start int) token.Token {
	var sb strings.Builder
	l.pos++ // opening quote
	for l.pos < len(l.line) {
		ch := l.line[l.pos]
		if ch == '\\' && l.pos+1 < len(l.line) {
			next := l.line[l.pos+1]
			if next == '"' || next == '\\' {
				sb.WriteByte(next)
				l.pos += 2
				continue
			}
			sb.WriteByte(ch)
			l.pos++
			continue
		}
		if ch == '"' {
			l.pos++
			return l.emit(token.STRING, start, sb.String())
		}
		sb.WriteByte(ch)
		l.pos++
	}
	// Unterminated string: take what we have.
	return l.emit(token.STRING, start, sb.String())
}

func (l *Lexer) lexNumber(start int) token.Token {
	for l.pos < len(l.line) && (isDigit(l.line[l.pos]) || l.line[l.pos] == '.') {
		l.pos++
	}
	return l.emit(token.NUMBER, start, l.line[start:l.pos])
}

// lexDollar handles $name, $name= (named arg), bare $, and $(.
func (l *Lexer) lexDollar(start int) token.Token {
	l.pos++
	if l.pos < len(l.line) && l.line[l.pos] == '(' {
		l.pos++
		return l.emit(token.SUBEXPR, start, "$(")
	}
	nameStart := l.pos
	for l.pos < len(l.line) && isIdentChar(l.line[l.pos]) {
		l.pos++
	}
	if l.pos == nameStart {
		return l.emit(token.LASTVALUE, start, "$")
	}
	name := l.line[nameStart:l.pos]
	// $key=value (but not $key==...) is a named argument.
	if l.pos < len(l.line) && l.line[l.pos] == '=' &&
		(l.pos+1 >= len(l.line) || l.line[l.pos+1] != '=') {
		l.pos++
		return l.emit(token.NAMEDARG, start, name)
	}
	return l.emit(token.VARIABLE, start, name)
}

// lexWord reads a bare word: command names (possibly module-qualified with
// dots), keywords, and symbol arguments.
func (l *Lexer) lexWord(start int) token.Token {
	for l.pos < len(l.line) && isWordChar(l.line[l.pos]) {
		l.pos++
	}
	// Allow dotted names like array.create, but not a trailing dot.
	for l.pos < len(l.line) && l.line[l.pos] == '.' &&
		l.pos+1 < len(l.line) && isIdentStart(l.line[l.pos+1]) {
		l.pos++
		for l.pos < len(l.line) && isWordChar(l.line[l.pos]) {
			l.pos++
		}
	}
	return l.emit(token.IDENT, start, l.line[start:l.pos])
}

// lexBalanced reads a raw balanced bracket region, respecting strings.
// The full text including brackets is the lexeme.
func (l *Lexer) lexBalanced(start int, open, close byte, t token.Type) token.Token {
	depth := 0
	inString := false
	for l.pos < len(l.line) {
		ch := l.line[l.pos]
		if inString {
			if ch == '\\' {
				l.pos += 2
				continue
			}
			if ch == '"' {
				inString = false
			}
			l.pos++
			continue
		}
		switch ch {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				l.pos++
				return l.emit(t, start, l.line[start:l.pos])
			}
		}
		l.pos++
	}
	// Unbalanced: hand back the rest of the line.
	return l.emit(t, start, l.line[start:])
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentChar(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

func isWordChar(ch byte) bool {
	return isIdentChar(ch) || ch == '-'
}

// isOperandEnd reports whether the previous significant byte terminates an
// operand, which makes a following '[' an index rather than an array literal.
func isOperandEnd(ch byte) bool {
	return isIdentChar(ch) || ch == ']' || ch == ')' || ch == '"'
}
