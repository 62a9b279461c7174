package position

import "fmt"

// Position is the source span of a node. Rows and columns are zero-indexed.
// EndCol is inclusive of the last character the node printed; a trailing
// inline comment on the same line is not part of the span.
type Position struct {
	StartRow int
	StartCol int
	EndRow   int
	EndCol   int
}

// Zero reports whether the position carries no source information.
// Freshly constructed nodes (inserted by tools) have zero positions.
func (p Position) Zero() bool {
	return p.StartRow == 0 && p.StartCol == 0 && p.EndRow == 0 && p.EndCol == 0
}

// Span returns a position covering both p and q.
func (p Position) Span(q Position) Position {
	r := p
	if q.StartRow < r.StartRow || (q.StartRow == r.StartRow && q.StartCol < r.StartCol) {
		r.StartRow, r.StartCol = q.StartRow, q.StartCol
	}
	if q.EndRow > r.EndRow || (q.EndRow == r.EndRow && q.EndCol > r.EndCol) {
		r.EndRow, r.EndCol = q.EndRow, q.EndCol
	}
	return r
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d-%d:%d", p.StartRow, p.StartCol, p.EndRow, p.EndCol)
}

// At builds a single-line position.
func At(row, startCol, endCol int) Position {
	return Position{StartRow: row, StartCol: startCol, EndRow: row, EndCol: endCol}
}
