package ast

import (
	"sort"

	"github.com/quill-lang/quill/internal/position"
)

// Variable is a `$name` reference with an optional property/index path.
type Variable struct {
	Position position.Position
	Name     string
	Path     []PathSegment
}

func (v *Variable) Pos() position.Position { return v.Position }
func (v *Variable) expressionNode()        {}

// StringLiteral is a double-quoted string value (unescaped form).
type StringLiteral struct {
	Position position.Position
	Value    string
}

func (s *StringLiteral) Pos() position.Position { return s.Position }
func (s *StringLiteral) expressionNode()        {}

// NumberLiteral is a numeric value. Raw keeps the original token spelling so
// canonical printing of an untouched number does not reformat it; tools that
// change Value should clear Raw.
type NumberLiteral struct {
	Position position.Position
	Value    float64
	Raw      string
}

func (n *NumberLiteral) Pos() position.Position { return n.Position }
func (n *NumberLiteral) expressionNode()        {}

// Literal is a bare keyword literal: true, false or null.
type Literal struct {
	Position position.Position
	Value    any
}

func (l *Literal) Pos() position.Position { return l.Position }
func (l *Literal) expressionNode()        {}

// LastValue is the bare `$` token referring to the previous command result.
type LastValue struct {
	Position position.Position
}

func (l *LastValue) Pos() position.Position { return l.Position }
func (l *LastValue) expressionNode()        {}

// Subexpr is a legacy raw-text subexpression: the unparsed code between
// `$(` and `)`. Newly parsed trees produce Subexpression instead.
type Subexpr struct {
	Position position.Position
	Code     string
}

func (s *Subexpr) Pos() position.Position { return s.Position }
func (s *Subexpr) expressionNode()        {}

// Subexpression is a structured `$( ... )` with a parsed statement body.
type Subexpression struct {
	Position position.Position
	Body     []Statement
}

func (s *Subexpression) Pos() position.Position { return s.Position }
func (s *Subexpression) expressionNode()        {}

// ObjectCode is a legacy raw-text `{...}` literal.
type ObjectCode struct {
	Position position.Position
	Code     string
}

func (o *ObjectCode) Pos() position.Position { return o.Position }
func (o *ObjectCode) expressionNode()        {}

// ArrayCode is a legacy raw-text `[...]` literal.
type ArrayCode struct {
	Position position.Position
	Code     string
}

func (a *ArrayCode) Pos() position.Position { return a.Position }
func (a *ArrayCode) expressionNode()        {}

// Property is one `key: value` entry of an ObjectLiteral.
type Property struct {
	Key   string
	Value Expression
}

// ObjectLiteral is a structured `{k: v, ...}` literal.
type ObjectLiteral struct {
	Position   position.Position
	Properties []Property
}

func (o *ObjectLiteral) Pos() position.Position { return o.Position }
func (o *ObjectLiteral) expressionNode()        {}

// ArrayLiteral is a structured `[e, ...]` literal.
type ArrayLiteral struct {
	Position position.Position
	Elements []Expression
}

func (a *ArrayLiteral) Pos() position.Position { return a.Position }
func (a *ArrayLiteral) expressionNode()        {}

// Binary joins two expressions with an operator. OperatorText keeps the
// original token spelling (`and` vs `&&`); printing must never normalize it.
type Binary struct {
	Position      position.Position
	Left          Expression
	Right         Expression
	Operator      string
	OperatorText  string
	Parenthesized bool
}

func (b *Binary) Pos() position.Position { return b.Position }
func (b *Binary) expressionNode()        {}

// Unary is a prefix operator applied to one expression, e.g. `not $x`.
type Unary struct {
	Position position.Position
	Operator string
	Argument Expression
}

func (u *Unary) Pos() position.Position { return u.Position }
func (u *Unary) expressionNode()        {}

// Call is the bare function-call sugar inside expressions:
// `callee arg1 arg2`, space-joined, never parenthesized.
type Call struct {
	Position position.Position
	Callee   string
	Args     []Expression
}

func (c *Call) Pos() position.Position { return c.Position }
func (c *Call) expressionNode()        {}

// NamedArgs carries the `$key=value` entries of a named-parentheses command.
// It is never printed on its own; the statement printer splices its entries
// into the command line. Order preserves source order of the keys.
type NamedArgs struct {
	Position position.Position
	Args     map[string]Expression
	Order    []string
}

func (n *NamedArgs) Pos() position.Position { return n.Position }
func (n *NamedArgs) expressionNode()        {}

// Keys returns the named-arg keys in print order: source order when known,
// lexicographic for entries added by tools.
func (n *NamedArgs) Keys() []string {
	keys := make([]string, 0, len(n.Args))
	seen := make(map[string]bool, len(n.Order))
	for _, k := range n.Order {
		if _, ok := n.Args[k]; ok && !seen[k] {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	rest := make([]string, 0, len(n.Args))
	for k := range n.Args {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}
