package position_test

import (
	"testing"

	"github.com/quill-lang/quill/internal/position"
)

func TestIndexOffsets(t *testing.T) {
	src := "log \"a\"\n  add 1 2\n\nend\n"
	ix := position.NewIndex(src)

	if got := ix.Lines(); got != 4 {
		t.Fatalf("Lines() = %d, want 4", got)
	}

	testCases := []struct {
		name      string
		row, col  int
		exclusive bool
		want      int
	}{
		{"start_of_file", 0, 0, false, 0},
		{"mid_first_line", 0, 4, false, 4},
		{"exclusive_points_past", 0, 6, true, 7},
		{"second_line_indent", 1, 2, false, 10},
		{"blank_line", 2, 0, false, 18},
		{"last_line", 3, 0, false, 19},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ix.OffsetAt(tc.row, tc.col, tc.exclusive)
			if !ok {
				t.Fatalf("OffsetAt(%d, %d, %v) reported invalid", tc.row, tc.col, tc.exclusive)
			}
			if got != tc.want {
				t.Errorf("OffsetAt(%d, %d, %v) = %d, want %d", tc.row, tc.col, tc.exclusive, got, tc.want)
			}
		})
	}

	if _, ok := ix.OffsetAt(99, 0, false); ok {
		t.Error("OffsetAt past end of document should report invalid")
	}
}

func TestLineEndOffset(t *testing.T) {
	src := "ab\ncd"
	ix := position.NewIndex(src)

	end, ok := ix.LineEndOffset(0)
	if !ok || end != 2 {
		t.Errorf("LineEndOffset(0) = %d, %v; want 2, true", end, ok)
	}
	end, ok = ix.LineEndOffset(1)
	if !ok || end != 5 {
		t.Errorf("LineEndOffset(1) = %d, %v; want 5 (end of string), true", end, ok)
	}
}

func TestLineAndIndent(t *testing.T) {
	src := "def x\n\t log $a\nenddef\n"
	ix := position.NewIndex(src)

	line, ok := ix.Line(1)
	if !ok || line != "\t log $a" {
		t.Errorf("Line(1) = %q, %v", line, ok)
	}
	if got := ix.Indent(1); got != "\t " {
		t.Errorf("Indent(1) = %q, want tab+space", got)
	}
	if got := ix.Indent(0); got != "" {
		t.Errorf("Indent(0) = %q, want empty", got)
	}
}

func TestSpanAndZero(t *testing.T) {
	a := position.At(1, 0, 4)
	b := position.At(3, 2, 9)
	s := a.Span(b)
	if s.StartRow != 1 || s.StartCol != 0 || s.EndRow != 3 || s.EndCol != 9 {
		t.Errorf("Span = %+v", s)
	}
	if !(position.Position{}).Zero() {
		t.Error("zero Position should report Zero()")
	}
	if a.Zero() {
		t.Error("non-zero Position should not report Zero()")
	}
}
