package prettyprinter

import (
	"reflect"
	"strings"

	"github.com/quill-lang/quill/internal/ast"
	"github.com/quill-lang/quill/internal/config"
	"github.com/quill-lang/quill/internal/diagnostics"
	"github.com/quill-lang/quill/internal/parser"
	"github.com/quill-lang/quill/internal/position"
)

// Regenerate renders tree back to source text against originalSource.
// Statements the caller left untouched are replayed byte-for-byte from the
// original; anything mutated is re-printed canonically, keeping the header
// line's original indentation. Regeneration never fails on a single bad
// node; degradations are reported as diagnostics.
func Regenerate(originalSource string, tree []ast.Statement) (string, []diagnostics.Diagnostic) {
	r := &regenerator{
		idx:     position.NewIndex(originalSource),
		source:  originalSource,
		diags:   &diagnostics.Collector{},
		prevEnd: -1,
	}
	origTree, err := parser.Parse(originalSource)
	if err != nil {
		r.diags.Add(diagnostics.Info, position.Position{},
			"original source has parse errors, replay is best-effort: %v", err)
	}
	r.body(tree, origTree, "")

	// Trailing whitespace (blank lines, final newline) after the last
	// statement replays verbatim; trailing deleted statements do not.
	if r.cursor >= 0 && r.cursor < len(originalSource) {
		rest := originalSource[r.cursor:]
		if strings.TrimSpace(rest) == "" {
			r.out.WriteString(rest)
		}
	}
	return r.out.String(), r.diags.All()
}

type regenerator struct {
	idx    *position.Index
	source string
	diags  *diagnostics.Collector
	out    strings.Builder

	// cursor is the offset of the next original byte eligible for replay;
	// -1 when continuity with the original text has been lost.
	cursor int
	// prevEnd is the original row of the last emitted statement line; -1
	// before the first statement, -2 when unknown (after an inserted node).
	prevEnd int
}

// body reconciles one mutated statement list against the matching original
// list, replaying pristine statements and re-printing edited ones.
func (r *regenerator) body(mutated, originals []ast.Statement, fallbackIndent string) {
	origIdx := 0
	for _, s := range mutated {
		pos := s.Pos()
		k := findByPos(originals, origIdx, pos)
		var orig ast.Statement
		if k >= 0 {
			orig = originals[k]
		}
		posValid := !pos.Zero() && r.idx.Valid(pos.StartRow) && r.idx.Valid(pos.EndRow)
		pristine := orig != nil && reflect.DeepEqual(orig, s)
		first := effectiveStartRow(s)
		if first < 0 {
			first = pos.StartRow
		}

		if pristine && posValid {
			if r.cursor < 0 || k > origIdx {
				// Continuity broken by an edit, insertion or deletion
				// before this node: restart replay at the node's own first
				// row and fall back to the canonical single-blank gap.
				r.gap(first)
				if start, ok := r.idx.OffsetAt(first, 0, false); ok {
					r.cursor = start
				}
			}
			end := r.lineEndInclusive(pos.EndRow)
			if r.cursor >= 0 && r.cursor <= end {
				r.out.WriteString(r.idx.Slice(r.cursor, end))
				r.cursor = end
				r.prevEnd = pos.EndRow
				origIdx = k + 1
				continue
			}
			r.diags.Add(diagnostics.Warning, pos, "replay span unavailable, printed canonically")
		}

		r.gap(first)
		base := fallbackIndent
		if posValid {
			base = r.idx.Indent(pos.StartRow)
		} else if !pos.Zero() {
			r.diags.Add(diagnostics.Warning, pos, "position out of range, printed canonically")
		}

		if !(orig != nil && r.reprintBlock(s, orig, base)) {
			pr := newPrinterWith(r.diags, base)
			pr.Statement(s, 0)
			r.out.WriteString(pr.String())
		}

		if orig != nil {
			origIdx = k + 1
		}
		switch {
		case posValid:
			r.cursor = r.lineEndInclusive(pos.EndRow)
			r.prevEnd = pos.EndRow
		case orig != nil && !orig.Pos().Zero() && r.idx.Valid(orig.Pos().EndRow):
			r.cursor = r.lineEndInclusive(orig.Pos().EndRow)
			r.prevEnd = orig.Pos().EndRow
		default:
			// Inserted node: leave the cursor so the next pristine sibling
			// replays the original gap bytes that preceded it.
			r.prevEnd = -2
		}
	}
}

// gap emits the canonical single blank line when the row gap to the
// previous emitted statement exceeds one row.
func (r *regenerator) gap(first int) {
	if r.prevEnd >= 0 && first >= 0 && first-r.prevEnd > 1 {
		r.out.WriteByte('\n')
	}
}

// lineEndInclusive is the offset just past row's terminating newline (or the
// end of the source for an unterminated last row).
func (r *regenerator) lineEndInclusive(row int) int {
	end, ok := r.idx.LineEndOffset(row)
	if !ok {
		return len(r.source)
	}
	if end < len(r.source) && r.source[end] == '\n' {
		end++
	}
	return end
}

func findByPos(stmts []ast.Statement, from int, pos position.Position) int {
	if pos.Zero() {
		return -1
	}
	for i := from; i < len(stmts); i++ {
		if stmts[i].Pos() == pos {
			return i
		}
	}
	return -1
}

// piece renders one canonical fragment at the given base indent straight
// into the output.
func (r *regenerator) piece(base string, render func(p *Printer)) {
	pr := newPrinterWith(r.diags, base)
	render(pr)
	r.out.WriteString(pr.String())
}

// nestedBody regenerates a block's child list. headerRow anchors replay
// continuity at the original header line so untouched children keep their
// exact original bytes, gaps and comments included.
func (r *regenerator) nestedBody(mutated, originals []ast.Statement, headerRow int, childIndent string) {
	if headerRow >= 0 && r.idx.Valid(headerRow) {
		r.prevEnd = headerRow
		r.cursor = r.lineEndInclusive(headerRow)
	} else {
		r.prevEnd = -2
		r.cursor = -1
	}
	r.body(mutated, originals, childIndent)
}

// reprintBlock re-prints an edited block statement's own lines canonically
// while regenerating each child statement individually, so an edit to one
// child does not canonicalize its untouched siblings. Returns false when s
// is not a block (or the original no longer lines up), in which case the
// caller falls back to a full canonical print.
func (r *regenerator) reprintBlock(s, orig ast.Statement, base string) bool {
	line := func(text string) { r.out.WriteString(base + text + "\n") }
	child := base + indentUnit

	switch x := s.(type) {
	case *ast.IfBlock:
		o, ok := orig.(*ast.IfBlock)
		if !ok {
			return false
		}
		r.piece(base, func(p *Printer) {
			p.leadingComments(x, 0)
			p.stmtLine(0, p.ifHeadText(x, 0), x)
		})
		r.nestedBody(x.ThenBranch, o.ThenBranch, o.Position.StartRow, child)
		for i, br := range x.ElseIfBranches {
			var origBody []ast.Statement
			headerRow := -1
			if i < len(o.ElseIfBranches) {
				origBody = o.ElseIfBranches[i].Body
				if !o.ElseIfBranches[i].Position.Zero() {
					headerRow = o.ElseIfBranches[i].Position.StartRow
				}
			}
			r.piece(base, func(p *Printer) {
				p.line(0, "elseif "+p.condText(br.Condition, 0))
			})
			r.nestedBody(br.Body, origBody, headerRow, child)
		}
		if x.HasElse || len(x.ElseBranch) > 0 {
			line("else")
			r.nestedBody(x.ElseBranch, o.ElseBranch, -1, child)
		}
		line(config.EndIf)
		return true

	case *ast.Define:
		o, ok := orig.(*ast.Define)
		if !ok {
			return false
		}
		r.piece(base, func(p *Printer) {
			p.leadingComments(x, 0)
			p.stmtLine(0, p.defineHeadText(x), x)
		})
		r.nestedBody(x.Body, o.Body, defineHeaderRow(o), child)
		line(config.EndDef)
		return true

	case *ast.Do:
		o, ok := orig.(*ast.Do)
		if !ok {
			return false
		}
		r.piece(base, func(p *Printer) {
			p.leadingComments(x, 0)
			p.stmtLine(0, p.doHeadText(x), x)
		})
		r.nestedBody(x.Body, o.Body, o.Position.StartRow, child)
		line(config.EndDo)
		return true

	case *ast.Together:
		o, ok := orig.(*ast.Together)
		if !ok {
			return false
		}
		r.piece(base, func(p *Printer) {
			p.leadingComments(x, 0)
			p.stmtLine(0, "together", x)
		})
		r.nestedBody(x.Blocks, o.Blocks, o.Position.StartRow, child)
		line(config.EndTogether)
		return true

	case *ast.ForLoop:
		o, ok := orig.(*ast.ForLoop)
		if !ok {
			return false
		}
		r.piece(base, func(p *Printer) {
			p.leadingComments(x, 0)
			p.stmtLine(0, p.forHeadText(x, 0), x)
		})
		r.nestedBody(x.Body, o.Body, o.Position.StartRow, child)
		line(config.EndFor)
		return true

	case *ast.OnBlock:
		o, ok := orig.(*ast.OnBlock)
		if !ok {
			return false
		}
		r.piece(base, func(p *Printer) {
			p.leadingComments(x, 0)
			p.stmtLine(0, `on `+quote(x.EventName), x)
		})
		r.nestedBody(x.Body, o.Body, onHeaderRow(o), child)
		line(config.EndOn)
		return true

	case *ast.Command:
		o, ok := orig.(*ast.Command)
		if !ok || x.Callback == nil || o.Callback == nil ||
			x.Syntax == ast.SyntaxMultilineParens {
			return false
		}
		r.piece(base, func(p *Printer) {
			p.leadingComments(x, 0)
			p.stmtLine(0, p.commandHeadText(x, 0), x)
		})
		r.nestedBody(x.Callback.Body, o.Callback.Body, o.Position.StartRow, child)
		line(config.EndWith)
		return true

	case *ast.Cell:
		o, ok := orig.(*ast.Cell)
		if !ok || x.CellType != "code" || o.CellType != "code" {
			return false
		}
		r.piece(base, func(p *Printer) {
			p.leadingComments(x, 0)
			p.stmtLine(0, cellHeadText(x), x)
		})
		r.nestedBody(x.Body, o.Body, o.Position.StartRow, base)
		line(config.CellFenceEnd)
		return true
	}
	return false
}

// defineHeaderRow is the original row of the `def` line itself, past any
// decorator and attached comment lines included in the statement's span.
func defineHeaderRow(d *ast.Define) int {
	return headerRowAfter(d.Position.StartRow, d.Decorators, d.Comment)
}

func onHeaderRow(o *ast.OnBlock) int {
	return headerRowAfter(o.Position.StartRow, o.Decorators, o.Comment)
}

func headerRowAfter(start int, ds []ast.Decorator, cs []ast.Comment) int {
	row := start
	for _, d := range ds {
		if !d.Position.Zero() && d.Position.EndRow+1 > row {
			row = d.Position.EndRow + 1
		}
	}
	for _, c := range cs {
		if !c.Inline && !c.Position.Zero() && c.Position.EndRow+1 > row {
			row = c.Position.EndRow + 1
		}
	}
	return row
}
