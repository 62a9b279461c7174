package ast

import (
	"github.com/quill-lang/quill/internal/position"
)

// Node is the base interface for all tree nodes.
type Node interface {
	Pos() position.Position
}

// Statement is a Node that can appear in a script body.
type Statement interface {
	Node
	statementNode()
	// Comments returns the attached comment records: leading groups first,
	// a single inline comment (if any) last.
	Comments() []Comment
}

// Expression is a Node that can appear as a command argument, assignment
// value, or condition.
type Expression interface {
	Node
	expressionNode()
}

// Comment is one attached or free-standing comment record. Text may contain
// embedded newlines when consecutive comment lines were merged into a group.
// An empty Text signals deletion: the comment and its line are elided on
// regeneration.
type Comment struct {
	Text     string
	Position position.Position
	Inline   bool
}

// SegmentKind distinguishes the two forms of a variable path step.
type SegmentKind int

const (
	PropertySegment SegmentKind = iota // .name
	IndexSegment                       // [i]
)

// PathSegment is one step of a variable path, e.g. `.field` or `[2]`.
type PathSegment struct {
	Kind  SegmentKind
	Name  string
	Index int
}

// Target is the destination of an `into` clause or assignment,
// e.g. `$results.items[0]`.
type Target struct {
	Name string
	Path []PathSegment
}

// SyntaxType records the call-argument layout a command was written with.
// Regeneration must preserve it even for re-printed commands.
type SyntaxType string

const (
	SyntaxSpace           SyntaxType = "space"
	SyntaxParens          SyntaxType = "parentheses"
	SyntaxNamedParens     SyntaxType = "named-parentheses"
	SyntaxMultilineParens SyntaxType = "multiline-parentheses"
)

// Callback is the trailing `with $p1 $p2 ... endwith` block of a command.
type Callback struct {
	ParamNames []string
	Into       *Target
	Body       []Statement
}

// Command is a command invocation, optionally module-qualified.
//
// Three command names are internal sugar and never appear in printed output:
// `_var`, `_subexpr` and `_object`/`_array` wrap a bare expression used in
// statement position (most commonly as an assignment value) and print as the
// expression itself.
type Command struct {
	Position position.Position
	Name     string
	Module   string
	Args     []Expression
	Into     *Target
	Syntax   SyntaxType
	Callback *Callback
	Comment  []Comment
}

func (c *Command) Pos() position.Position   { return c.Position }
func (c *Command) statementNode()           {}
func (c *Command) Comments() []Comment      { return c.Comment }
func (c *Command) SetComments(cs []Comment) { c.Comment = cs }

// Assignment covers `[set ]$target[.path] [=|as] value` and the implicit
// form `$target value`.
type Assignment struct {
	Position    position.Position
	TargetName  string
	TargetPath  []PathSegment
	IsSet       bool
	IsImplicit  bool
	HasAs       bool
	IsLastValue bool
	// Exactly one of Command / LiteralValue supplies the value unless
	// IsLastValue is set.
	Command      *Command
	LiteralValue any
	// LiteralType, when set, coerces LiteralValue before printing:
	// string|number|boolean|null|object|array. Failed coercions keep the
	// value's natural type.
	LiteralType string
	Comment     []Comment
}

func (a *Assignment) Pos() position.Position   { return a.Position }
func (a *Assignment) statementNode()           {}
func (a *Assignment) Comments() []Comment      { return a.Comment }
func (a *Assignment) SetComments(cs []Comment) { a.Comment = cs }

// Shorthand is the `$x = $` capture of the last command result.
type Shorthand struct {
	Position   position.Position
	TargetName string
	Comment    []Comment
}

func (s *Shorthand) Pos() position.Position   { return s.Position }
func (s *Shorthand) statementNode()           {}
func (s *Shorthand) Comments() []Comment      { return s.Comment }
func (s *Shorthand) SetComments(cs []Comment) { s.Comment = cs }

// Condition is the dual-representation condition of if statements. Some
// conditions arrive as structured expressions, others as raw un-parsed text;
// whichever form is present must be preserved.
type Condition struct {
	Expr Expression
	Raw  string
}

// InlineIf is the single-line `if <cond> <command>` form.
type InlineIf struct {
	Position  position.Position
	Condition Condition
	Command   *Command
	Comment   []Comment
}

func (i *InlineIf) Pos() position.Position   { return i.Position }
func (i *InlineIf) statementNode()           {}
func (i *InlineIf) Comments() []Comment      { return i.Comment }
func (i *InlineIf) SetComments(cs []Comment) { i.Comment = cs }

// IfTrue is `iftrue <command>`: run the command when the last status is true.
type IfTrue struct {
	Position position.Position
	Command  *Command
	Comment  []Comment
}

func (i *IfTrue) Pos() position.Position   { return i.Position }
func (i *IfTrue) statementNode()           {}
func (i *IfTrue) Comments() []Comment      { return i.Comment }
func (i *IfTrue) SetComments(cs []Comment) { i.Comment = cs }

// IfFalse is `iffalse <command>`.
type IfFalse struct {
	Position position.Position
	Command  *Command
	Comment  []Comment
}

func (i *IfFalse) Pos() position.Position   { return i.Position }
func (i *IfFalse) statementNode()           {}
func (i *IfFalse) Comments() []Comment      { return i.Comment }
func (i *IfFalse) SetComments(cs []Comment) { i.Comment = cs }

// ElseIfBranch is one `elseif <cond>` arm of an IfBlock.
type ElseIfBranch struct {
	Condition Condition
	Body      []Statement
	Position  position.Position
}

// IfBlock is the block form: if/then, elseif*, else?, endif.
type IfBlock struct {
	Position       position.Position
	Condition      Condition
	HasThen        bool
	ThenBranch     []Statement
	ElseIfBranches []ElseIfBranch
	ElseBranch     []Statement
	HasElse        bool
	Comment        []Comment
}

func (i *IfBlock) Pos() position.Position   { return i.Position }
func (i *IfBlock) statementNode()           {}
func (i *IfBlock) Comments() []Comment      { return i.Comment }
func (i *IfBlock) SetComments(cs []Comment) { i.Comment = cs }

// Decorator is one `@name arg...` line preceding a define or on block.
type Decorator struct {
	Name     string
	Args     []string
	Position position.Position
}

// Define is `def name $p1 $p2 ... / enddef`, possibly decorated.
type Define struct {
	Position   position.Position
	Name       string
	ParamNames []string
	Decorators []Decorator
	Body       []Statement
	Comment    []Comment
}

func (d *Define) Pos() position.Position   { return d.Position }
func (d *Define) statementNode()           {}
func (d *Define) Comments() []Comment      { return d.Comment }
func (d *Define) SetComments(cs []Comment) { d.Comment = cs }

// Do is `do [$p1 $p2 ...][ into $target] / enddo`.
type Do struct {
	Position   position.Position
	ParamNames []string
	Into       *Target
	Body       []Statement
	Comment    []Comment
}

func (d *Do) Pos() position.Position   { return d.Position }
func (d *Do) statementNode()           {}
func (d *Do) Comments() []Comment      { return d.Comment }
func (d *Do) SetComments(cs []Comment) { d.Comment = cs }

// Together runs its do blocks concurrently: together / endtogether.
// Blocks are always Do nodes.
type Together struct {
	Position position.Position
	Blocks   []Statement
	Comment  []Comment
}

func (t *Together) Pos() position.Position   { return t.Position }
func (t *Together) statementNode()           {}
func (t *Together) Comments() []Comment      { return t.Comment }
func (t *Together) SetComments(cs []Comment) { t.Comment = cs }

// Range is the `range <from> <to>` clause of a for loop.
type Range struct {
	From Expression
	To   Expression
}

// ForLoop is `for $var in range a b` or `for $var in <iterable>`.
type ForLoop struct {
	Position position.Position
	VarName  string
	Range    *Range
	Iterable Expression
	Body     []Statement
	Comment  []Comment
}

func (f *ForLoop) Pos() position.Position   { return f.Position }
func (f *ForLoop) statementNode()           {}
func (f *ForLoop) Comments() []Comment      { return f.Comment }
func (f *ForLoop) SetComments(cs []Comment) { f.Comment = cs }

// OnBlock is an event handler: on "eventName" / endon, possibly decorated.
type OnBlock struct {
	Position   position.Position
	EventName  string
	Decorators []Decorator
	Body       []Statement
	Comment    []Comment
}

func (o *OnBlock) Pos() position.Position   { return o.Position }
func (o *OnBlock) statementNode()           {}
func (o *OnBlock) Comments() []Comment      { return o.Comment }
func (o *OnBlock) SetComments(cs []Comment) { o.Comment = cs }

// Return is `return [<value>]`.
type Return struct {
	Position position.Position
	Value    Expression
	Comment  []Comment
}

func (r *Return) Pos() position.Position   { return r.Position }
func (r *Return) statementNode()           {}
func (r *Return) Comments() []Comment      { return r.Comment }
func (r *Return) SetComments(cs []Comment) { r.Comment = cs }

// Break is the bare `break` keyword.
type Break struct {
	Position position.Position
	Comment  []Comment
}

func (b *Break) Pos() position.Position   { return b.Position }
func (b *Break) statementNode()           {}
func (b *Break) Comments() []Comment      { return b.Comment }
func (b *Break) SetComments(cs []Comment) { b.Comment = cs }

// Continue is the bare `continue` keyword.
type Continue struct {
	Position position.Position
	Comment  []Comment
}

func (c *Continue) Pos() position.Position   { return c.Position }
func (c *Continue) statementNode()           {}
func (c *Continue) Comments() []Comment      { return c.Comment }
func (c *Continue) SetComments(cs []Comment) { c.Comment = cs }

// CommentStatement is a free-standing comment group that did not attach to a
// following statement.
type CommentStatement struct {
	Position position.Position
	Comment  []Comment
}

func (c *CommentStatement) Pos() position.Position   { return c.Position }
func (c *CommentStatement) statementNode()           {}
func (c *CommentStatement) Comments() []Comment      { return c.Comment }
func (c *CommentStatement) SetComments(cs []Comment) { c.Comment = cs }
