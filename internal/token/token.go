package token

// Type identifies the lexical class of a token.
type Type string

const (
	ILLEGAL Type = "ILLEGAL"
	EOF     Type = "EOF"

	IDENT  Type = "IDENT"  // command names, bare words, keywords
	NUMBER Type = "NUMBER" // 42, 3.14
	STRING Type = "STRING" // "double quoted"

	VARIABLE  Type = "VARIABLE"  // $name
	LASTVALUE Type = "LASTVALUE" // bare $
	SUBEXPR   Type = "SUBEXPR"   // $( opening a subexpression
	NAMEDARG  Type = "NAMEDARG"  // $key= inside parenthesized calls

	LPAREN   Type = "("
	RPAREN   Type = ")"
	LBRACE   Type = "{"
	RBRACE   Type = "}"
	LBRACKET Type = "["
	RBRACKET Type = "]"
	COMMA    Type = ","
	COLON    Type = ":"
	DOT      Type = "."

	ASSIGN   Type = "="
	EQ       Type = "=="
	NOT_EQ   Type = "!="
	LT       Type = "<"
	GT       Type = ">"
	LE       Type = "<="
	GE       Type = ">="
	AND      Type = "&&"
	OR       Type = "||"
	BANG     Type = "!"
	PLUS     Type = "+"
	MINUS    Type = "-"
	ASTERISK Type = "*"
	SLASH    Type = "/"
	PERCENT  Type = "%"

	OBJECT Type = "OBJECT" // balanced {...} raw text
	ARRAY  Type = "ARRAY"  // balanced [...] raw text

	COMMENT Type = "COMMENT" // # to end of line
)

// Token is one lexeme with its absolute document coordinates (zero-indexed).
type Token struct {
	Type   Type
	Lexeme string
	Row    int
	Col    int
}

// wordOperators maps spelled-out operator words to their symbolic token type.
// The original spelling is kept in Lexeme so printers never normalize it.
var wordOperators = map[string]Type{
	"and": AND,
	"or":  OR,
	"not": BANG,
}

// LookupWordOperator reports the operator type of a bare word, if any.
func LookupWordOperator(word string) (Type, bool) {
	t, ok := wordOperators[word]
	return t, ok
}

// IsBinaryOperator reports whether t can join two expressions.
func IsBinaryOperator(t Type) bool {
	switch t {
	case EQ, NOT_EQ, LT, GT, LE, GE, AND, OR, PLUS, MINUS, ASTERISK, SLASH, PERCENT:
		return true
	}
	return false
}

// Precedence returns the binding power of a binary operator
// (higher binds tighter).
func Precedence(t Type) int {
	switch t {
	case OR:
		return 1
	case AND:
		return 2
	case EQ, NOT_EQ:
		return 3
	case LT, GT, LE, GE:
		return 4
	case PLUS, MINUS:
		return 5
	case ASTERISK, SLASH, PERCENT:
		return 6
	}
	return 0
}
