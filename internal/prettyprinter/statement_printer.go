package prettyprinter

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/quill-lang/quill/internal/ast"
	"github.com/quill-lang/quill/internal/config"
	"github.com/quill-lang/quill/internal/diagnostics"
)

// Printer renders statements canonically. All methods are deterministic
// given the node; original formatting is never consulted here (that is the
// regeneration engine's job).
type Printer struct {
	w     *Writer
	diags *diagnostics.Collector
}

func NewPrinter() *Printer {
	return &Printer{w: NewWriter(), diags: &diagnostics.Collector{}}
}

func newPrinterWith(diags *diagnostics.Collector, base string) *Printer {
	p := &Printer{w: NewWriter(), diags: diags}
	p.w.SetBase(base)
	return p
}

// Print renders a whole program in canonical form.
func Print(stmts []ast.Statement) string {
	p := NewPrinter()
	p.Statements(stmts, 0)
	return p.String()
}

// PrintIndent is Print with an explicit indentation width (quill.yaml's
// indent setting).
func PrintIndent(stmts []ast.Statement, width int) string {
	p := NewPrinter()
	p.SetIndentWidth(width)
	p.Statements(stmts, 0)
	return p.String()
}

// SetIndentWidth overrides the canonical indentation width for statements
// rendered by this printer.
func (p *Printer) SetIndentWidth(width int) { p.w.SetIndentUnit(width) }

func (p *Printer) String() string { return p.w.String() }

// Diagnostics returns the non-fatal conditions recorded while printing.
func (p *Printer) Diagnostics() []diagnostics.Diagnostic { return p.diags.All() }

// Statements renders a statement body, re-inserting a single blank line
// wherever the original row gap between siblings exceeds one row.
func (p *Printer) Statements(stmts []ast.Statement, depth int) {
	prevEnd := -1
	for _, s := range stmts {
		start := effectiveStartRow(s)
		if prevEnd >= 0 && start >= 0 && start-prevEnd > 1 {
			p.w.PushBlankLine()
		}
		p.Statement(s, depth)
		if !s.Pos().Zero() {
			prevEnd = s.Pos().EndRow
		} else {
			prevEnd = -1
		}
	}
}

// effectiveStartRow is the first source row a statement occupies, including
// its leading comments. Synthesized nodes with no position report -1.
func effectiveStartRow(s ast.Statement) int {
	row := -1
	if !s.Pos().Zero() {
		row = s.Pos().StartRow
	}
	for _, c := range s.Comments() {
		if c.Inline || c.Position.Zero() {
			continue
		}
		if row < 0 || c.Position.StartRow < row {
			row = c.Position.StartRow
		}
	}
	return row
}

// Statement renders one statement (leading comments included) at depth.
func (p *Printer) Statement(s ast.Statement, depth int) {
	p.leadingComments(s, depth)
	switch x := s.(type) {
	case *ast.Command:
		p.command(x, depth)
	case *ast.Assignment:
		p.assignment(x, depth)
	case *ast.Shorthand:
		p.stmtLine(depth, "$"+x.TargetName+" = $", s)
	case *ast.InlineIf:
		head := "if " + p.condText(x.Condition, depth)
		if x.Command != nil {
			head += " " + p.commandHeadText(x.Command, depth)
		}
		p.stmtLine(depth, head, s)
	case *ast.IfTrue:
		p.stmtLine(depth, "iftrue "+p.commandHeadText(x.Command, depth), s)
	case *ast.IfFalse:
		p.stmtLine(depth, "iffalse "+p.commandHeadText(x.Command, depth), s)
	case *ast.IfBlock:
		p.ifBlock(x, depth)
	case *ast.Define:
		p.define(x, depth)
	case *ast.Do:
		p.doBlock(x, depth)
	case *ast.Together:
		p.stmtLine(depth, "together", s)
		p.Statements(x.Blocks, depth+1)
		p.line(depth, config.EndTogether)
	case *ast.ForLoop:
		p.stmtLine(depth, p.forHeadText(x, depth), s)
		p.Statements(x.Body, depth+1)
		p.line(depth, config.EndFor)
	case *ast.OnBlock:
		p.stmtLine(depth, `on `+quote(x.EventName), s)
		p.Statements(x.Body, depth+1)
		p.line(depth, config.EndOn)
	case *ast.Return:
		head := "return"
		if x.Value != nil {
			head += " " + p.expr(x.Value, depth)
		}
		p.stmtLine(depth, head, s)
	case *ast.Break:
		p.stmtLine(depth, "break", s)
	case *ast.Continue:
		p.stmtLine(depth, "continue", s)
	case *ast.CommentStatement:
		// leadingComments already emitted every group.
	case *ast.ChunkMarker:
		p.stmtLine(depth, chunkMarkerText(x), s)
	case *ast.Cell:
		p.cell(x, depth)
	case *ast.PromptBlock:
		p.stmtLine(depth, config.Fence, s)
		p.w.Push(x.RawText)
		p.line(depth, config.Fence)
	default:
		p.diags.Add(diagnostics.Warning, s.Pos(), "unknown statement kind %T", s)
	}
}

func (p *Printer) line(depth int, text string) {
	p.w.Indent(depth)
	p.w.PushLine(text)
}

// stmtLine emits the statement's main line with its inline comment suffix.
func (p *Printer) stmtLine(depth int, text string, s ast.Statement) {
	p.line(depth, text+inlineSuffix(s))
}

func inlineSuffix(s ast.Statement) string {
	for _, c := range s.Comments() {
		if c.Inline && c.Text != "" {
			return config.InlineCommentPad + "# " + c.Text
		}
	}
	return ""
}

// inlineOnClosingRow reports whether a multiline command's inline comment sat
// on its closing `)` line rather than the header line.
func inlineOnClosingRow(c *ast.Command) bool {
	if c.Position.Zero() || c.Position.EndRow <= c.Position.StartRow {
		return false
	}
	for _, cm := range c.Comments() {
		if cm.Inline && cm.Text != "" {
			return !cm.Position.Zero() && cm.Position.StartRow == c.Position.EndRow
		}
	}
	return false
}

// leadingComments renders every non-inline comment group attached to s,
// together with the statement's decorators, keeping their original relative
// order: a comment written below the first decorator line stays below the
// decorators.
func (p *Printer) leadingComments(s ast.Statement, depth int) {
	var ds []ast.Decorator
	switch x := s.(type) {
	case *ast.Define:
		ds = x.Decorators
	case *ast.OnBlock:
		ds = x.Decorators
	}
	before, after := splitAroundDecorators(s.Comments(), ds)
	p.commentGroups(before, depth)
	p.decorators(ds, depth)
	p.commentGroups(after, depth)
}

// commentGroups renders comment groups, one `# line` per merged line. Groups
// whose text was blanked out are elided entirely.
func (p *Printer) commentGroups(cs []ast.Comment, depth int) {
	for _, c := range cs {
		if c.Inline || c.Text == "" {
			continue
		}
		for _, line := range strings.Split(c.Text, "\n") {
			if line == "" {
				p.line(depth, "#")
			} else {
				p.line(depth, "# "+line)
			}
		}
	}
}

// splitAroundDecorators partitions comment groups by source row relative to
// the first decorator line. Comments without positions stay in front.
func splitAroundDecorators(cs []ast.Comment, ds []ast.Decorator) (before, after []ast.Comment) {
	if len(ds) == 0 || ds[0].Position.Zero() {
		return cs, nil
	}
	for _, c := range cs {
		if !c.Inline && !c.Position.Zero() && c.Position.StartRow > ds[0].Position.StartRow {
			after = append(after, c)
			continue
		}
		before = append(before, c)
	}
	return before, after
}

func (p *Printer) decorators(ds []ast.Decorator, depth int) {
	for _, d := range ds {
		text := "@" + d.Name
		if len(d.Args) > 0 {
			text += " " + strings.Join(d.Args, " ")
		}
		p.line(depth, text)
	}
}

func qualifiedName(c *ast.Command) string {
	if c.Module != "" {
		return c.Module + "." + c.Name
	}
	return c.Name
}

func isSugar(name string) bool {
	switch name {
	case config.SugarVar, config.SugarSubexpr, config.SugarObject, config.SugarArray:
		return true
	}
	return false
}

// sugarText prints the internal wrapper commands as the bare expression they
// wrap; the sugar name never appears in output.
func (p *Printer) sugarText(c *ast.Command, depth int) string {
	if len(c.Args) == 0 {
		switch c.Name {
		case config.SugarObject:
			return "{}"
		case config.SugarArray:
			return "[]"
		}
		return ""
	}
	return p.expr(c.Args[0], depth)
}

func (p *Printer) command(c *ast.Command, depth int) {
	if isSugar(c.Name) {
		p.stmtLine(depth, p.sugarText(c, depth), c)
		return
	}
	if c.Syntax == ast.SyntaxMultilineParens {
		suffix := inlineSuffix(c)
		onClosing := inlineOnClosingRow(c)
		head := qualifiedName(c) + "("
		if !onClosing {
			head += suffix
		}
		p.line(depth, head)
		for _, arg := range c.Args {
			if named, ok := arg.(*ast.NamedArgs); ok {
				for _, entry := range p.namedEntries(named, depth+1) {
					p.line(depth+1, entry)
				}
				continue
			}
			p.line(depth+1, p.expr(arg, depth+1))
		}
		closing := ")"
		if c.Into != nil {
			closing += " into " + targetString(c.Into)
		}
		if onClosing {
			closing += suffix
		}
		p.line(depth, closing)
		return
	}

	p.stmtLine(depth, p.commandHeadText(c, depth), c)
	if c.Callback != nil {
		p.Statements(c.Callback.Body, depth+1)
		p.line(depth, config.EndWith)
	}
}

// commandHeadText renders a command's main line: name, arguments per syntax
// type, into target and with clause. Multiline-parentheses commands collapse
// to single-line parentheses here; callers needing the multiline layout go
// through command instead.
func (p *Printer) commandHeadText(c *ast.Command, depth int) string {
	if c == nil {
		return ""
	}
	if isSugar(c.Name) {
		return p.sugarText(c, depth)
	}
	var args []string
	for _, arg := range c.Args {
		if named, ok := arg.(*ast.NamedArgs); ok {
			args = append(args, p.namedEntries(named, depth)...)
			continue
		}
		args = append(args, p.expr(arg, depth))
	}

	head := qualifiedName(c)
	switch c.Syntax {
	case ast.SyntaxParens, ast.SyntaxNamedParens, ast.SyntaxMultilineParens:
		head += "(" + strings.Join(args, " ") + ")"
	default:
		if len(args) > 0 {
			head += " " + strings.Join(args, " ")
		}
	}
	if c.Into != nil {
		head += " into " + targetString(c.Into)
	}
	if c.Callback != nil {
		head += " with"
		for _, param := range c.Callback.ParamNames {
			head += " $" + param
		}
		if c.Callback.Into != nil {
			head += " into " + targetString(c.Callback.Into)
		}
	}
	return head
}

func (p *Printer) assignment(a *ast.Assignment, depth int) {
	head := ""
	if a.IsSet {
		head += "set "
	}
	head += "$" + a.TargetName + pathString(a.TargetPath)

	switch {
	case a.IsImplicit:
		head += " "
	case a.HasAs:
		head += " as "
	default:
		head += " = "
	}

	switch {
	case a.IsLastValue:
		head += "$"
	case a.Command != nil:
		head += p.commandHeadText(a.Command, depth)
	default:
		head += p.literalText(a, depth)
	}
	p.stmtLine(depth, head, a)
}

// literalText renders an assignment's literal value, coercing it to the
// declared literalValueType first. A failed coercion keeps the value's
// natural type and records a diagnostic; it never fails the print.
func (p *Printer) literalText(a *ast.Assignment, depth int) string {
	v := a.LiteralValue
	text, ok := coerceLiteral(v, a.LiteralType)
	if !ok {
		p.diags.Add(diagnostics.Warning, a.Position,
			"cannot convert %v to %s, keeping natural type", v, a.LiteralType)
		return naturalLiteral(v)
	}
	return text
}

func coerceLiteral(v any, typ string) (string, bool) {
	switch typ {
	case "", "null":
		if typ == "null" {
			return "null", true
		}
		return naturalLiteral(v), true
	case "string":
		switch x := v.(type) {
		case string:
			return quote(x), true
		case bool:
			return quote(strconv.FormatBool(x)), true
		case json.Number:
			return quote(x.String()), true
		case float64:
			return quote(formatFloat(x)), true
		case int:
			return quote(strconv.Itoa(x)), true
		}
		return "", false
	case "number":
		switch x := v.(type) {
		case json.Number:
			return x.String(), true
		case float64:
			return formatFloat(x), true
		case int:
			return strconv.Itoa(x), true
		case string:
			trimmed := strings.TrimSpace(x)
			if _, err := strconv.ParseFloat(trimmed, 64); err == nil {
				return trimmed, true
			}
		}
		return "", false
	case "boolean":
		switch x := v.(type) {
		case bool:
			return strconv.FormatBool(x), true
		case json.Number:
			if f, err := x.Float64(); err == nil {
				return strconv.FormatBool(f != 0), true
			}
		case float64:
			return strconv.FormatBool(x != 0), true
		case int:
			return strconv.FormatBool(x != 0), true
		case string:
			if x == "true" || x == "false" {
				return x, true
			}
		}
		return "", false
	case "object", "array":
		if s, ok := v.(string); ok {
			return s, true
		}
		if b, err := json.Marshal(v); err == nil {
			return string(b), true
		}
		return "", false
	}
	return "", false
}

// naturalLiteral renders a value per its own type, ignoring any declared
// literalValueType.
func naturalLiteral(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return quote(x)
	case bool:
		return strconv.FormatBool(x)
	case json.Number:
		return x.String()
	case float64:
		return formatFloat(x)
	case int:
		return strconv.Itoa(x)
	}
	if b, err := json.Marshal(v); err == nil {
		return string(b)
	}
	return ""
}

func (p *Printer) condText(c ast.Condition, depth int) string {
	if c.Expr != nil {
		return p.expr(c.Expr, depth)
	}
	return c.Raw
}

func (p *Printer) ifHeadText(x *ast.IfBlock, depth int) string {
	head := "if " + p.condText(x.Condition, depth)
	if x.HasThen {
		head += " then"
	}
	return head
}

func (p *Printer) ifBlock(x *ast.IfBlock, depth int) {
	p.stmtLine(depth, p.ifHeadText(x, depth), x)
	p.Statements(x.ThenBranch, depth+1)
	for _, br := range x.ElseIfBranches {
		p.line(depth, "elseif "+p.condText(br.Condition, depth))
		p.Statements(br.Body, depth+1)
	}
	if x.HasElse || len(x.ElseBranch) > 0 {
		p.line(depth, "else")
		p.Statements(x.ElseBranch, depth+1)
	}
	p.line(depth, config.EndIf)
}

func (p *Printer) defineHeadText(x *ast.Define) string {
	head := "def " + x.Name
	for _, param := range x.ParamNames {
		head += " $" + param
	}
	return head
}

func (p *Printer) define(x *ast.Define, depth int) {
	p.stmtLine(depth, p.defineHeadText(x), x)
	p.Statements(x.Body, depth+1)
	p.line(depth, config.EndDef)
}

func (p *Printer) doHeadText(x *ast.Do) string {
	head := "do"
	for _, param := range x.ParamNames {
		head += " $" + param
	}
	if x.Into != nil {
		head += " into " + targetString(x.Into)
	}
	return head
}

func (p *Printer) doBlock(x *ast.Do, depth int) {
	p.stmtLine(depth, p.doHeadText(x), x)
	p.Statements(x.Body, depth+1)
	p.line(depth, config.EndDo)
}

func (p *Printer) forHeadText(x *ast.ForLoop, depth int) string {
	head := "for $" + x.VarName + " in "
	if x.Range != nil {
		return head + "range " + p.expr(x.Range.From, depth) + " " + p.expr(x.Range.To, depth)
	}
	if x.Iterable != nil {
		return head + p.expr(x.Iterable, depth)
	}
	return head
}

// chunkMarkerText renders `--- chunk:<id> key:value ... ---` with keys
// sorted lexicographically.
func chunkMarkerText(x *ast.ChunkMarker) string {
	head := config.Fence + " " + config.ChunkPrefix + x.ID
	for _, k := range sortedKeys(x.Meta) {
		head += " " + k + ":" + metaValueText(x.Meta[k])
	}
	return head + " " + config.Fence
}

// cellHeadText renders `---cell <type> [id:<id>] [key:value]...---` with the
// id first and the remaining keys sorted.
func cellHeadText(x *ast.Cell) string {
	head := config.CellFencePrefix + " " + x.CellType
	if id, ok := x.Meta["id"]; ok {
		head += " id:" + metaValueText(id)
	}
	for _, k := range sortedKeys(x.Meta) {
		if k == "id" {
			continue
		}
		head += " " + k + ":" + metaValueText(x.Meta[k])
	}
	return head + config.Fence
}

func (p *Printer) cell(x *ast.Cell, depth int) {
	p.stmtLine(depth, cellHeadText(x), x)
	if x.CellType == "code" {
		p.Statements(x.Body, depth)
	} else {
		p.w.Push(x.RawBody)
	}
	p.line(depth, config.CellFenceEnd)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// metaValueText quotes fence metadata values that would not survive the
// whitespace-splitting parse: whitespace, colons, equals signs or dashes.
func metaValueText(v string) string {
	if strings.ContainsAny(v, " \t:=-") || v == "" {
		return quote(v)
	}
	return v
}

// statementText renders one statement to a string without its trailing
// newline, for splicing into surrounding text (subexpression bodies).
func (p *Printer) statementText(st ast.Statement, depth int) string {
	sub := newPrinterWith(p.diags, p.w.base)
	sub.w.unit = p.w.unit
	sub.Statement(st, depth)
	return strings.TrimSuffix(sub.w.String(), "\n")
}
