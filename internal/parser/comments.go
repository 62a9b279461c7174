package parser

import (
	"sort"
	"strings"

	"github.com/quill-lang/quill/internal/ast"
	"github.com/quill-lang/quill/internal/position"
)

// rawComment is one comment line as scanned, before grouping.
type rawComment struct {
	text     string
	row      int
	startCol int
	endCol   int
}

// commentText strips the marker from a raw comment line: "# x" -> "x",
// bare "#" -> "".
func commentText(line string) string {
	s := strings.TrimPrefix(line, "#")
	return strings.TrimPrefix(s, " ")
}

// groupComments merges textually-consecutive comment lines (no blank line
// between them) into single records whose Text joins the lines with \n.
// Out-of-order input is stabilized by sorting on start row first.
func groupComments(raw []rawComment) []ast.Comment {
	if len(raw) == 0 {
		return nil
	}
	sorted := make([]rawComment, len(raw))
	copy(sorted, raw)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].row < sorted[j].row })

	var groups []ast.Comment
	cur := ast.Comment{
		Text:     sorted[0].text,
		Position: position.At(sorted[0].row, sorted[0].startCol, sorted[0].endCol),
	}
	lastRow := sorted[0].row
	for _, rc := range sorted[1:] {
		if rc.row == lastRow+1 {
			cur.Text += "\n" + rc.text
			cur.Position.EndRow = rc.row
			cur.Position.EndCol = rc.endCol
		} else {
			groups = append(groups, cur)
			cur = ast.Comment{
				Text:     rc.text,
				Position: position.At(rc.row, rc.startCol, rc.endCol),
			}
		}
		lastRow = rc.row
	}
	return append(groups, cur)
}

// attachComments applies the adjacency rule: the final group attaches as the
// statement's leading comment when the statement starts on the very next
// line; every other group stands alone. Returned standalone statements
// precede the statement in document order.
func (p *Parser) attachComments(pending []rawComment, stmt ast.Statement) []ast.Statement {
	groups := groupComments(pending)
	if len(groups) == 0 {
		return nil
	}

	var standalone []ast.Statement
	attach := -1
	if stmt != nil {
		last := groups[len(groups)-1]
		if stmt.Pos().StartRow-last.Position.EndRow <= 1 {
			attach = len(groups) - 1
		}
	}
	for i, g := range groups {
		if i == attach {
			setLeadingComment(stmt, g)
			continue
		}
		standalone = append(standalone, &ast.CommentStatement{
			Position: g.Position,
			Comment:  []ast.Comment{g},
		})
	}
	return standalone
}

// commentSetter is implemented by every statement type that can carry
// attached comments.
type commentSetter interface {
	Comments() []ast.Comment
	SetComments([]ast.Comment)
}

// setLeadingComment prepends a leading comment group to the statement's
// comment list.
func setLeadingComment(stmt ast.Statement, c ast.Comment) {
	if s, ok := stmt.(commentSetter); ok {
		s.SetComments(append([]ast.Comment{c}, s.Comments()...))
	}
}

// setInlineComment appends a trailing same-line comment to the statement.
func setInlineComment(stmt ast.Statement, c ast.Comment) {
	c.Inline = true
	if s, ok := stmt.(commentSetter); ok {
		s.SetComments(append(s.Comments(), c))
	}
}
