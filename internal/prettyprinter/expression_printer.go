package prettyprinter

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/quill-lang/quill/internal/ast"
	"github.com/quill-lang/quill/internal/diagnostics"
)

// expr renders one expression to canonical minimal surface syntax. depth is
// only consulted by multiline subexpressions, every other variant is a pure
// single-line rendering.
func (p *Printer) expr(e ast.Expression, depth int) string {
	switch x := e.(type) {
	case *ast.Variable:
		return "$" + x.Name + pathString(x.Path)
	case *ast.StringLiteral:
		return quote(x.Value)
	case *ast.NumberLiteral:
		if x.Raw != "" {
			return x.Raw
		}
		return formatFloat(x.Value)
	case *ast.Literal:
		return scalarString(x.Value)
	case *ast.LastValue:
		return "$"
	case *ast.Subexpr:
		return "$(" + x.Code + ")"
	case *ast.Subexpression:
		return p.subexpressionString(x, depth)
	case *ast.ObjectCode:
		return x.Code
	case *ast.ArrayCode:
		return x.Code
	case *ast.ObjectLiteral:
		if len(x.Properties) == 0 {
			return "{}"
		}
		parts := make([]string, len(x.Properties))
		for i, prop := range x.Properties {
			parts[i] = prop.Key + ": " + p.expr(prop.Value, depth)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *ast.ArrayLiteral:
		if len(x.Elements) == 0 {
			return "[]"
		}
		parts := make([]string, len(x.Elements))
		for i, el := range x.Elements {
			parts[i] = p.expr(el, depth)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *ast.Binary:
		op := x.OperatorText
		if op == "" {
			op = x.Operator
		}
		s := p.expr(x.Left, depth) + " " + op + " " + p.expr(x.Right, depth)
		if x.Parenthesized {
			return "(" + s + ")"
		}
		return s
	case *ast.Unary:
		return x.Operator + " " + p.expr(x.Argument, depth)
	case *ast.Call:
		parts := make([]string, 0, len(x.Args)+1)
		parts = append(parts, x.Callee)
		for _, a := range x.Args {
			parts = append(parts, p.expr(a, depth))
		}
		return strings.Join(parts, " ")
	case *ast.NamedArgs:
		return strings.Join(p.namedEntries(x, depth), " ")
	}
	p.diags.Add(diagnostics.Warning, e.Pos(), "unknown expression kind %T", e)
	return ""
}

// namedEntries renders a NamedArgs record as `$key=value` fields in print
// order.
func (p *Printer) namedEntries(n *ast.NamedArgs, depth int) []string {
	keys := n.Keys()
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = "$" + k + "=" + p.expr(n.Args[k], depth)
	}
	return out
}

// subexpressionString renders `$( ... )`. A one-statement body that sits on
// a single source row prints inline; anything else prints the first inner
// statement on the opening line, the rest indented one level, and the
// closing `)` at the current indent.
func (p *Printer) subexpressionString(s *ast.Subexpression, depth int) string {
	if len(s.Body) == 0 {
		return "$()"
	}
	if len(s.Body) == 1 && singleRow(s.Body[0]) {
		return "$(" + strings.TrimSpace(p.statementText(s.Body[0], 0)) + ")"
	}
	var b strings.Builder
	b.WriteString("$(")
	for i, st := range s.Body {
		txt := p.statementText(st, depth+1)
		if i == 0 {
			b.WriteString(strings.TrimLeft(txt, " \t"))
			continue
		}
		b.WriteByte('\n')
		b.WriteString(txt)
	}
	b.WriteByte('\n')
	b.WriteString(p.w.prefixAt(depth))
	b.WriteByte(')')
	return b.String()
}

func singleRow(s ast.Statement) bool {
	pos := s.Pos()
	return pos.Zero() || pos.StartRow == pos.EndRow
}

func pathString(path []ast.PathSegment) string {
	var b strings.Builder
	for _, seg := range path {
		if seg.Kind == ast.PropertySegment {
			b.WriteByte('.')
			b.WriteString(seg.Name)
		} else {
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(seg.Index))
			b.WriteByte(']')
		}
	}
	return b.String()
}

func targetString(t *ast.Target) string {
	return "$" + t.Name + pathString(t.Path)
}

// quote renders a string value double-quoted with embedded quotes and
// backslashes escaped.
func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		if s[i] == '"' || s[i] == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	b.WriteByte('"')
	return b.String()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// scalarString is the bare (unquoted) rendering of a scalar value.
func scalarString(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(x)
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return formatFloat(x)
	case int:
		return strconv.Itoa(x)
	}
	return fmt.Sprintf("%v", v)
}
