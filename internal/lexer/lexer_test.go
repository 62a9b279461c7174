package lexer_test

import (
	"testing"

	"github.com/quill-lang/quill/internal/lexer"
	"github.com/quill-lang/quill/internal/token"
)

type tok struct {
	typ    token.Type
	lexeme string
	col    int
}

func scan(t *testing.T, line string) []token.Token {
	t.Helper()
	return lexer.New(line, 0).Tokens()
}

func checkTokens(t *testing.T, line string, want []tok) {
	t.Helper()
	got := scan(t, line)
	if len(got) != len(want) {
		t.Fatalf("lexing %q: got %d tokens %v, want %d", line, len(got), got, len(want))
	}
	for i, w := range want {
		if got[i].Type != w.typ || got[i].Lexeme != w.lexeme || got[i].Col != w.col {
			t.Errorf("token %d of %q = {%s %q col=%d}, want {%s %q col=%d}",
				i, line, got[i].Type, got[i].Lexeme, got[i].Col, w.typ, w.lexeme, w.col)
		}
	}
}

func TestLexer(t *testing.T) {
	testCases := []struct {
		name string
		line string
		want []tok
	}{
		{"command_with_args", `log "hello" 42`, []tok{
			{token.IDENT, "log", 0},
			{token.STRING, "hello", 4},
			{token.NUMBER, "42", 12},
		}},
		{"variable_and_path", "$user.name", []tok{
			{token.VARIABLE, "user", 0},
			{token.DOT, ".", 5},
			{token.IDENT, "name", 6},
		}},
		{"index_after_variable", "$items[0]", []tok{
			{token.VARIABLE, "items", 0},
			{token.LBRACKET, "[", 6},
			{token.NUMBER, "0", 7},
			{token.RBRACKET, "]", 8},
		}},
		{"array_literal_after_space", "log [1, 2]", []tok{
			{token.IDENT, "log", 0},
			{token.ARRAY, "[1, 2]", 4},
		}},
		{"object_literal", `$x = {name: "a b", n: 1}`, []tok{
			{token.VARIABLE, "x", 0},
			{token.ASSIGN, "=", 3},
			{token.OBJECT, `{name: "a b", n: 1}`, 5},
		}},
		{"last_value", "$x = $", []tok{
			{token.VARIABLE, "x", 0},
			{token.ASSIGN, "=", 3},
			{token.LASTVALUE, "$", 5},
		}},
		{"subexpr_open", "$(add 1 2)", []tok{
			{token.SUBEXPR, "$(", 0},
			{token.IDENT, "add", 2},
			{token.NUMBER, "1", 6},
			{token.NUMBER, "2", 8},
			{token.RPAREN, ")", 9},
		}},
		{"named_arg", "fetch($url $timeout=30)", []tok{
			{token.IDENT, "fetch", 0},
			{token.LPAREN, "(", 5},
			{token.VARIABLE, "url", 6},
			{token.NAMEDARG, "timeout", 11},
			{token.NUMBER, "30", 20},
			{token.RPAREN, ")", 22},
		}},
		{"named_arg_not_eq", "$x == 1", []tok{
			{token.VARIABLE, "x", 0},
			{token.EQ, "==", 3},
			{token.NUMBER, "1", 6},
		}},
		{"dotted_command", "array.create 1", []tok{
			{token.IDENT, "array.create", 0},
			{token.NUMBER, "1", 13},
		}},
		{"comment", `log "x"  # trailing`, []tok{
			{token.IDENT, "log", 0},
			{token.STRING, "x", 4},
			{token.COMMENT, "# trailing", 9},
		}},
		{"string_escapes", `log "say \"hi\" \\"`, []tok{
			{token.IDENT, "log", 0},
			{token.STRING, `say "hi" \`, 4},
		}},
		{"two_char_operators", "$a <= 1 && $b != 2", []tok{
			{token.VARIABLE, "a", 0},
			{token.LE, "<=", 3},
			{token.NUMBER, "1", 6},
			{token.AND, "&&", 8},
			{token.VARIABLE, "b", 11},
			{token.NOT_EQ, "!=", 14},
			{token.NUMBER, "2", 17},
		}},
		{"word_with_dash", "fetch-all $x", []tok{
			{token.IDENT, "fetch-all", 0},
			{token.VARIABLE, "x", 10},
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			checkTokens(t, tc.line, tc.want)
		})
	}
}

func TestWordOperators(t *testing.T) {
	if op, ok := token.LookupWordOperator("and"); !ok || op != token.AND {
		t.Errorf("and -> %v, %v", op, ok)
	}
	if _, ok := token.LookupWordOperator("into"); ok {
		t.Error("into must not be an operator")
	}
	if token.Precedence(token.OR) >= token.Precedence(token.AND) {
		t.Error("or must bind looser than and")
	}
	if token.Precedence(token.PLUS) >= token.Precedence(token.ASTERISK) {
		t.Error("+ must bind looser than *")
	}
}
