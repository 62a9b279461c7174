package quill_test

import (
	"strings"
	"testing"

	"github.com/quill-lang/quill/internal/ast"
	"github.com/quill-lang/quill/pkg/quill"
)

func TestParseMutateRegenerate(t *testing.T) {
	src := "# pipeline\nfetch $url into $resp\n\nlog $resp  # trace\n"
	doc, err := quill.Parse(src)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Source() != src {
		t.Error("Source() must return the input unchanged")
	}

	stmts := doc.Statements()
	stmts[1].(*ast.Command).Name = "print"

	out, diags := doc.Regenerate()
	want := "# pipeline\nfetch $url into $resp\n\nprint $resp  # trace\n"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
	if len(diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
}

func TestRegenerateUntouchedIsIdentity(t *testing.T) {
	src := "def greet $name\n    log \"hi\" $name\nenddef\n\ngreet \"world\"\n"
	doc, err := quill.Parse(src)
	if err != nil {
		t.Fatal(err)
	}
	out, diags := doc.Regenerate()
	if out != src {
		t.Errorf("untouched document changed:\n got: %q\nwant: %q", out, src)
	}
	if len(diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
}

func TestSetStatementsDeletion(t *testing.T) {
	src := "log \"a\"\nlog \"b\"\n"
	doc, err := quill.Parse(src)
	if err != nil {
		t.Fatal(err)
	}
	doc.SetStatements(doc.Statements()[:1])
	out, _ := doc.Regenerate()
	if strings.Contains(out, "\"b\"") {
		t.Errorf("deleted statement survived: %q", out)
	}
	if !strings.Contains(out, "log \"a\"") {
		t.Errorf("kept statement missing: %q", out)
	}
}

func TestParseErrorStillYieldsTree(t *testing.T) {
	doc, err := quill.Parse("log \"a\"\nif $x\n  log \"b\"\n")
	if err == nil {
		t.Fatal("unterminated if should report an error")
	}
	if len(doc.Statements()) == 0 {
		t.Error("best-effort tree missing")
	}
}

func TestFormatCanonicalizes(t *testing.T) {
	out, err := quill.Format("def f\n      log \"a\"\nenddef\n")
	if err != nil {
		t.Fatal(err)
	}
	if out != "def f\n  log \"a\"\nenddef\n" {
		t.Errorf("got %q", out)
	}
}

func TestFormatIndentWidth(t *testing.T) {
	out, err := quill.FormatIndent("def f\n  log $a\nenddef\n", 4)
	if err != nil {
		t.Fatal(err)
	}
	if out != "def f\n    log $a\nenddef\n" {
		t.Errorf("got %q", out)
	}
}

func TestAssignChunkIDs(t *testing.T) {
	src := "--- chunk: ---\nlog \"a\"\n\n---cell code---\n--- chunk:keep ---\n--- chunk: ---\n---end---\n"
	doc, err := quill.Parse(src)
	if err != nil {
		t.Fatal(err)
	}
	if n := doc.AssignChunkIDs(); n != 2 {
		t.Fatalf("assigned %d ids, want 2", n)
	}
	if n := doc.AssignChunkIDs(); n != 0 {
		t.Errorf("second pass assigned %d ids, want 0", n)
	}

	out, diags := doc.Regenerate()
	if len(diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
	if !strings.Contains(out, "log \"a\"") {
		t.Errorf("untouched statement lost: %q", out)
	}

	re, err := quill.Parse(out)
	if err != nil {
		t.Fatal(err)
	}
	if m := re.Statements()[0].(*ast.ChunkMarker); len(m.ID) != 36 {
		t.Errorf("top-level marker id %q, want a 36-char uuid", m.ID)
	}
	cell := re.Statements()[2].(*ast.Cell)
	if got := cell.Body[0].(*ast.ChunkMarker).ID; got != "keep" {
		t.Errorf("existing id rewritten to %q", got)
	}
	if got := cell.Body[1].(*ast.ChunkMarker).ID; len(got) != 36 {
		t.Errorf("cell marker id %q, want a 36-char uuid", got)
	}
}
