// Package quill is the embedding API for the Quill source engine: parse a
// script into a position-annotated statement tree, let tooling mutate the
// tree, and regenerate source text that leaves every untouched byte exactly
// as it was written.
package quill

import (
	"github.com/quill-lang/quill/internal/ast"
	"github.com/quill-lang/quill/internal/diagnostics"
	"github.com/quill-lang/quill/internal/parser"
	"github.com/quill-lang/quill/internal/prettyprinter"
)

// Document is one parsed script plus the source it was parsed from. The
// statement tree is handed to the caller for mutation between Parse and
// Regenerate; the document itself never mutates it.
type Document struct {
	source string
	stmts  []ast.Statement
}

// Parse builds a document from source. Parse errors do not prevent a
// best-effort tree from being returned alongside the joined error.
func Parse(source string) (*Document, error) {
	stmts, err := parser.Parse(source)
	return &Document{source: source, stmts: stmts}, err
}

// Source returns the original source text.
func (d *Document) Source() string { return d.source }

// Statements returns the statement tree. Callers may mutate the returned
// nodes in place before calling Regenerate.
func (d *Document) Statements() []ast.Statement { return d.stmts }

// SetStatements replaces the tree, for callers that rebuild statement lists
// (insertions, deletions, reordering) rather than editing nodes in place.
func (d *Document) SetStatements(stmts []ast.Statement) { d.stmts = stmts }

// Regenerate renders the current tree against the original source:
// untouched statements replay byte-for-byte, edited ones are re-printed
// canonically with their original indentation.
func (d *Document) Regenerate() (string, []diagnostics.Diagnostic) {
	return prettyprinter.Regenerate(d.source, d.stmts)
}

// Regenerate renders tree against source without an intermediate Document.
func Regenerate(source string, tree []ast.Statement) (string, []diagnostics.Diagnostic) {
	return prettyprinter.Regenerate(source, tree)
}

// AssignChunkIDs fills every chunk marker whose id is empty with a fresh
// UUID, recursing into block bodies and code cells. It returns the number of
// markers filled. Markers that already carry an id are left alone.
func (d *Document) AssignChunkIDs() int {
	return assignChunkIDs(d.stmts)
}

func assignChunkIDs(stmts []ast.Statement) int {
	n := 0
	for _, s := range stmts {
		switch x := s.(type) {
		case *ast.ChunkMarker:
			if x.ID == "" {
				x.ID = ast.NewChunkID()
				n++
			}
		case *ast.IfBlock:
			n += assignChunkIDs(x.ThenBranch)
			for i := range x.ElseIfBranches {
				n += assignChunkIDs(x.ElseIfBranches[i].Body)
			}
			n += assignChunkIDs(x.ElseBranch)
		case *ast.Define:
			n += assignChunkIDs(x.Body)
		case *ast.Do:
			n += assignChunkIDs(x.Body)
		case *ast.Together:
			n += assignChunkIDs(x.Blocks)
		case *ast.ForLoop:
			n += assignChunkIDs(x.Body)
		case *ast.OnBlock:
			n += assignChunkIDs(x.Body)
		case *ast.Command:
			if x.Callback != nil {
				n += assignChunkIDs(x.Callback.Body)
			}
		case *ast.Cell:
			n += assignChunkIDs(x.Body)
		}
	}
	return n
}

// Format fully canonicalizes source: every statement is re-printed, only
// blank-line gaps and comments survive from the original layout. The
// best-effort result is returned even when source has parse errors.
func Format(source string) (string, error) {
	stmts, err := parser.Parse(source)
	return prettyprinter.Print(stmts), err
}

// FormatIndent is Format with an explicit indentation width, as configured by
// quill.yaml's indent setting.
func FormatIndent(source string, width int) (string, error) {
	stmts, err := parser.Parse(source)
	return prettyprinter.PrintIndent(stmts, width), err
}
