package config

const SourceFileExt = ".quill"

// SourceFileExtensions are all recognized source file extensions.
var SourceFileExtensions = []string{".quill", ".ql"}

// IndentWidth is the canonical indentation step used when a statement is
// re-printed without original source to copy indentation from.
const IndentWidth = 2

// InlineCommentPad is the separator between a statement and its trailing
// inline comment.
const InlineCommentPad = "  "

// Block terminator spellings.
const (
	EndIf       = "endif"
	EndDef      = "enddef"
	EndDo       = "enddo"
	EndTogether = "endtogether"
	EndFor      = "endfor"
	EndOn       = "endon"
	EndWith     = "endwith"
)

// Fence spellings for document blocks.
const (
	Fence           = "---"
	CellFencePrefix = "---cell"
	CellFenceEnd    = "---end---"
	ChunkPrefix     = "chunk:"
)

// Internal sugar command names. These never appear in printed output; they
// wrap bare expressions used in statement position.
const (
	SugarVar     = "_var"
	SugarSubexpr = "_subexpr"
	SugarObject  = "_object"
	SugarArray   = "_array"
)
