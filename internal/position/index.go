package position

import "strings"

// Index maps (row, column) coordinates to byte offsets in one source string.
// It is built once per source and never mutated, so concurrent reads are safe.
type Index struct {
	source string
	starts []int // byte offset of the first character of each row
}

// NewIndex builds an index over source. Lines are separated by '\n'; a
// trailing newline does not create an extra row.
func NewIndex(source string) *Index {
	starts := make([]int, 0, strings.Count(source, "\n")+1)
	starts = append(starts, 0)
	for i := 0; i < len(source); i++ {
		if source[i] == '\n' && i+1 < len(source) {
			starts = append(starts, i+1)
		}
	}
	return &Index{source: source, starts: starts}
}

// Lines returns the number of rows in the source.
func (ix *Index) Lines() int { return len(ix.starts) }

// Valid reports whether row names an existing line.
func (ix *Index) Valid(row int) bool { return row >= 0 && row < len(ix.starts) }

// OffsetAt converts (row, col) to an absolute byte offset. When exclusive is
// true the returned offset points immediately after col, which is what a
// caller wants when marking the end of a prior statement so the following
// replay starts after it. Coordinates outside the document are a programming
// error; the second return is false and the offset is clamped.
func (ix *Index) OffsetAt(row, col int, exclusive bool) (int, bool) {
	if !ix.Valid(row) {
		if row < 0 {
			return 0, false
		}
		return len(ix.source), false
	}
	off := ix.starts[row] + col
	if exclusive {
		off++
	}
	if off > len(ix.source) {
		return len(ix.source), false
	}
	return off, true
}

// LineEndOffset returns the offset of the newline terminating row, or the end
// of the source for the last row.
func (ix *Index) LineEndOffset(row int) (int, bool) {
	if !ix.Valid(row) {
		return len(ix.source), false
	}
	if row+1 < len(ix.starts) {
		return ix.starts[row+1] - 1, true
	}
	if strings.HasSuffix(ix.source, "\n") {
		return len(ix.source) - 1, true
	}
	return len(ix.source), true
}

// Line returns the raw text of row without its terminating newline.
func (ix *Index) Line(row int) (string, bool) {
	if !ix.Valid(row) {
		return "", false
	}
	end, _ := ix.LineEndOffset(row)
	return ix.source[ix.starts[row]:end], true
}

// Indent returns the leading whitespace of row. Block headers keep their
// original indentation even when the rest of the statement is re-printed.
func (ix *Index) Indent(row int) string {
	line, ok := ix.Line(row)
	if !ok {
		return ""
	}
	for i := 0; i < len(line); i++ {
		if line[i] != ' ' && line[i] != '\t' {
			return line[:i]
		}
	}
	return line
}

// Slice returns source[from:to], clamping both ends.
func (ix *Index) Slice(from, to int) string {
	if from < 0 {
		from = 0
	}
	if to > len(ix.source) {
		to = len(ix.source)
	}
	if from >= to {
		return ""
	}
	return ix.source[from:to]
}

// Source returns the indexed source string.
func (ix *Index) Source() string { return ix.source }
