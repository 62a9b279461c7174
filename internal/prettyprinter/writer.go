// Package prettyprinter renders statement trees back to source text: the
// canonical printer used for edited nodes, and the regeneration engine that
// splices verbatim original bytes for everything left untouched.
package prettyprinter

import (
	"strings"

	"github.com/quill-lang/quill/internal/config"
)

var indentUnit = strings.Repeat(" ", config.IndentWidth)

// Writer is an indent-aware output accumulator. It exists so recursive
// printing never does quadratic string concatenation; there is no behavior
// here beyond bookkeeping.
type Writer struct {
	b     strings.Builder
	depth int
	base  string
	unit  string
}

func NewWriter() *Writer { return &Writer{unit: indentUnit} }

// SetIndentUnit overrides the canonical indentation width (quill.yaml's
// indent setting). Non-positive widths keep the canonical unit.
func (w *Writer) SetIndentUnit(width int) {
	if width > 0 {
		w.unit = strings.Repeat(" ", width)
	}
}

// SetBase sets a prefix emitted before the depth indent on every indented
// line. The regeneration engine uses it to carry a statement's original
// leading whitespace into freshly-printed nested lines.
func (w *Writer) SetBase(prefix string) { w.base = prefix }

// Indent sets the current indentation depth.
func (w *Writer) Indent(n int) { w.depth = n }

func (w *Writer) prefix() string { return w.prefixAt(w.depth) }

func (w *Writer) prefixAt(depth int) string {
	if depth <= 0 {
		return w.base
	}
	return w.base + strings.Repeat(w.unit, depth)
}

// Push appends raw text with no indentation.
func (w *Writer) Push(text string) { w.b.WriteString(text) }

// PushIndented appends the indent prefix followed by text, no newline.
func (w *Writer) PushIndented(text string) {
	w.b.WriteString(w.prefix())
	w.b.WriteString(text)
}

// PushLine appends one indented line.
func (w *Writer) PushLine(text string) {
	w.PushIndented(text)
	w.b.WriteByte('\n')
}

// PushBlankLine appends an empty line.
func (w *Writer) PushBlankLine() { w.b.WriteByte('\n') }

// Newline terminates the current line.
func (w *Writer) Newline() { w.b.WriteByte('\n') }

// Len returns the number of bytes accumulated so far.
func (w *Writer) Len() int { return w.b.Len() }

func (w *Writer) String() string { return w.b.String() }
