package prettyprinter_test

import (
	"encoding/json"
	"testing"

	"github.com/quill-lang/quill/internal/ast"
	"github.com/quill-lang/quill/internal/parser"
	"github.com/quill-lang/quill/internal/prettyprinter"
)

func mustParse(t *testing.T, src string) []ast.Statement {
	t.Helper()
	stmts, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parsing %q failed: %v", src, err)
	}
	return stmts
}

func TestPrintCanonical(t *testing.T) {
	testCases := []struct {
		name string
		src  string
		want string
	}{
		{"command_space", "log \"hi\" 42\n", "log \"hi\" 42\n"},
		{"command_parens", "fetch($url 30)\n", "fetch($url 30)\n"},
		{"command_named", "fetch($url $timeout=30)\n", "fetch($url $timeout=30)\n"},
		{"command_into_path", "first $items into $out.best[0]\n", "first $items into $out.best[0]\n"},
		{"multiline_parens_kept", "fetch(\n  $url\n  $timeout=30\n)\n", "fetch(\n  $url\n  $timeout=30\n)\n"},
		{"multiline_parens_into", "fetch(\n  $url\n) into $resp\n", "fetch(\n  $url\n) into $resp\n"},
		{"assignment_literal", "$x = 5.50\n", "$x = 5.50\n"},
		{"assignment_negative", "$x = -5\n", "$x = -5\n"},
		{"assignment_as", "$mode as \"fast\"\n", "$mode as \"fast\"\n"},
		{"assignment_set", "set $x.y = 1\n", "set $x.y = 1\n"},
		{"shorthand", "$x = $\n", "$x = $\n"},
		{"var_sugar_invisible", "$copy = $orig.name\n", "$copy = $orig.name\n"},
		{"subexpr_sugar_invisible", "$a = $(add 5 2)\n", "$a = $(add 5 2)\n"},
		{"object_sugar_invisible", "$o = {a: 1}\n", "$o = {a: 1}\n"},
		{"array_sugar_invisible", "$xs = [1, 2]\n", "$xs = [1, 2]\n"},
		{"word_operator_kept", "if $a and $b then\n  log \"y\"\nendif\n", "if $a and $b then\n  log \"y\"\nendif\n"},
		{"symbol_operator_kept", "if $a && $b then\n  log \"y\"\nendif\n", "if $a && $b then\n  log \"y\"\nendif\n"},
		{"indent_normalized", "def f $n\n      log $n\nenddef\n", "def f $n\n  log $n\nenddef\n"},
		{"if_elseif_else", "if $x > 1 then\n  log \"big\"\nelseif $x == 1\n  log \"one\"\nelse\n  log \"small\"\nendif\n",
			"if $x > 1 then\n  log \"big\"\nelseif $x == 1\n  log \"one\"\nelse\n  log \"small\"\nendif\n"},
		{"inline_if", "if $ok log \"fine\"\n", "if $ok log \"fine\"\n"},
		{"iftrue", "iftrue retry $n\n", "iftrue retry $n\n"},
		{"for_range", "for $i in range 1 10\n  log $i\nendfor\n", "for $i in range 1 10\n  log $i\nendfor\n"},
		{"callback", "fetch $u with $r into $d\n  log $r\nendwith\n", "fetch $u with $r into $d\n  log $r\nendwith\n"},
		{"decorated_def", "@memo slow\ndef fib $n\n  return $n\nenddef\n", "@memo slow\ndef fib $n\n  return $n\nenddef\n"},
		{"comment_before_decorator", "# doc\n@memo\ndef f\n  log $x\nenddef\n", "# doc\n@memo\ndef f\n  log $x\nenddef\n"},
		{"comment_between_decorator_and_def", "@memo\n# note\ndef f\n  log $x\nenddef\n", "@memo\n# note\ndef f\n  log $x\nenddef\n"},
		{"multiline_parens_header_comment", "fetch(  # begin\n  $url\n)\n", "fetch(  # begin\n  $url\n)\n"},
		{"multiline_parens_closing_comment", "fetch(\n  $url\n) into $r  # done\n", "fetch(\n  $url\n) into $r  # done\n"},
		{"standalone_comment", "# a\n\nadd 1 2\n", "# a\n\nadd 1 2\n"},
		{"leading_and_inline_comment", "# doc\nadd 1 2  # sum\n", "# doc\nadd 1 2  # sum\n"},
		{"merged_comment_group", "# a\n# b\nadd 1 2\n", "# a\n# b\nadd 1 2\n"},
		{"multi_blank_collapses", "log \"a\"\n\n\n\nlog \"b\"\n", "log \"a\"\n\nlog \"b\"\n"},
		{"prompt_block", "---\nwrite a poem\n---\n", "---\nwrite a poem\n---\n"},
		{"together", "together\n  do\n    log \"a\"\n  enddo\nendtogether\n", "together\n  do\n    log \"a\"\n  enddo\nendtogether\n"},
		{"on_block", "on \"boot\"\n  init\nendon\n", "on \"boot\"\n  init\nendon\n"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := prettyprinter.Print(mustParse(t, tc.src))
			if got != tc.want {
				t.Errorf("Print(%q)\n got: %q\nwant: %q", tc.src, got, tc.want)
			}
		})
	}
}

func TestPrintIndentWidth(t *testing.T) {
	src := "def f\n  if $a then\n    log $a\n  endif\nenddef\n"
	want := "def f\n    if $a then\n        log $a\n    endif\nenddef\n"
	got := prettyprinter.PrintIndent(mustParse(t, src), 4)
	if got != want {
		t.Errorf("PrintIndent width 4:\n got: %q\nwant: %q", got, want)
	}
}

func TestLiteralCoercion(t *testing.T) {
	testCases := []struct {
		name  string
		value any
		typ   string
		want  string
	}{
		{"number_one_to_boolean", json.Number("1"), "boolean", "$x = true\n"},
		{"number_zero_to_boolean", json.Number("0"), "boolean", "$x = false\n"},
		{"string_true_to_boolean", "true", "boolean", "$x = true\n"},
		{"string_digits_to_number", "123", "number", "$x = 123\n"},
		{"boolean_to_string", true, "string", "$x = \"true\"\n"},
		{"number_to_string", json.Number("7"), "string", "$x = \"7\"\n"},
		{"null_type", nil, "null", "$x = null\n"},
		{"object_from_json_text", `{"a": 1}`, "object", "$x = {\"a\": 1}\n"},
		{"no_declared_type", json.Number("2"), "", "$x = 2\n"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a := &ast.Assignment{TargetName: "x", LiteralValue: tc.value, LiteralType: tc.typ}
			got := prettyprinter.Print([]ast.Statement{a})
			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestLiteralCoercionFailure(t *testing.T) {
	a := &ast.Assignment{TargetName: "x", LiteralValue: "hello", LiteralType: "number"}
	p := prettyprinter.NewPrinter()
	p.Statements([]ast.Statement{a}, 0)
	if got := p.String(); got != "$x = \"hello\"\n" {
		t.Errorf("got %q, want natural string rendering", got)
	}
	if len(p.Diagnostics()) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(p.Diagnostics()))
	}
}

func TestFenceMetaRendering(t *testing.T) {
	t.Run("chunk_keys_sorted_and_quoted", func(t *testing.T) {
		m := &ast.ChunkMarker{ID: "intro", Meta: map[string]string{
			"title": "My Doc",
			"rev":   "2",
		}}
		want := "--- chunk:intro rev:2 title:\"My Doc\" ---\n"
		if got := prettyprinter.Print([]ast.Statement{m}); got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})
	t.Run("cell_id_first", func(t *testing.T) {
		c := &ast.Cell{CellType: "code", Meta: map[string]string{
			"id":   "abc",
			"lang": "quill",
		}, RawBody: ""}
		want := "---cell code id:abc lang:quill---\n---end---\n"
		if got := prettyprinter.Print([]ast.Statement{c}); got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})
	t.Run("code_cell_body_roundtrip", func(t *testing.T) {
		src := "---cell code id:abc---\nlog \"x\"\n---end---\n"
		if got := prettyprinter.Print(mustParse(t, src)); got != src {
			t.Errorf("got %q, want %q", got, src)
		}
	})
	t.Run("raw_cell_body_verbatim", func(t *testing.T) {
		src := "---cell markdown---\n# Title\n\ntext\n---end---\n"
		if got := prettyprinter.Print(mustParse(t, src)); got != src {
			t.Errorf("got %q, want %q", got, src)
		}
	})
}

func TestCommentDeletionElides(t *testing.T) {
	stmts := mustParse(t, "# stale\nlog \"x\"\n")
	cs := stmts[0].Comments()
	cs[0].Text = ""
	got := prettyprinter.Print(stmts)
	if got != "log \"x\"\n" {
		t.Errorf("got %q, want comment line elided", got)
	}
}
