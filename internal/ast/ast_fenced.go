package ast

import (
	"github.com/google/uuid"

	"github.com/quill-lang/quill/internal/position"
)

// ChunkMarker is a single-line document anchor:
// `--- chunk:<id> key:value ... ---`.
type ChunkMarker struct {
	Position position.Position
	ID       string
	Meta     map[string]string
	Comment  []Comment
}

func (c *ChunkMarker) Pos() position.Position   { return c.Position }
func (c *ChunkMarker) statementNode()           {}
func (c *ChunkMarker) Comments() []Comment      { return c.Comment }
func (c *ChunkMarker) SetComments(cs []Comment) { c.Comment = cs }

// NewChunkID returns a fresh marker id for tools that insert chunk markers.
func NewChunkID() string {
	return uuid.NewString()
}

// Cell is a typed fenced region:
// `---cell <type> [id:x] [k:v]...---` ... `---end---`.
// Code cells carry a parsed Body; every other cell type keeps RawBody
// verbatim.
type Cell struct {
	Position position.Position
	CellType string
	Meta     map[string]string
	Body     []Statement
	RawBody  string
	Comment  []Comment
}

func (c *Cell) Pos() position.Position   { return c.Position }
func (c *Cell) statementNode()           {}
func (c *Cell) Comments() []Comment      { return c.Comment }
func (c *Cell) SetComments(cs []Comment) { c.Comment = cs }

// PromptBlock is a bare `---` fence holding verbatim text:
// `---` ... `---`. RawText is newline-terminated.
type PromptBlock struct {
	Position position.Position
	RawText  string
	BodyPos  *position.Position
	Comment  []Comment
}

func (p *PromptBlock) Pos() position.Position   { return p.Position }
func (p *PromptBlock) statementNode()           {}
func (p *PromptBlock) Comments() []Comment      { return p.Comment }
func (p *PromptBlock) SetComments(cs []Comment) { p.Comment = cs }
