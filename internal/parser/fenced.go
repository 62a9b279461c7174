package parser

import (
	"strings"

	"github.com/quill-lang/quill/internal/ast"
	"github.com/quill-lang/quill/internal/config"
	"github.com/quill-lang/quill/internal/position"
)

// splitMetaFields splits fence metadata on spaces, keeping double-quoted
// values (which may contain spaces) as single fields.
func splitMetaFields(s string) []string {
	var fields []string
	var cur strings.Builder
	inQuote := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch == '"':
			inQuote = !inQuote
			cur.WriteByte(ch)
		case ch == '\\' && inQuote && i+1 < len(s):
			cur.WriteByte(ch)
			i++
			cur.WriteByte(s[i])
		case (ch == ' ' || ch == '\t') && !inQuote:
			if cur.Len() > 0 {
				fields = append(fields, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteByte(ch)
		}
	}
	if cur.Len() > 0 {
		fields = append(fields, cur.String())
	}
	return fields
}

// metaPair splits one `key:value` field; quoted values are unescaped.
func metaPair(field string) (key, value string, ok bool) {
	i := strings.Index(field, ":")
	if i <= 0 {
		return "", "", false
	}
	key, value = field[:i], field[i+1:]
	if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
		value = unescapeMetaValue(value[1 : len(value)-1])
	}
	return key, value, true
}

func unescapeMetaValue(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && (s[i+1] == '"' || s[i+1] == '\\') {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func fenceEndCol(line string) int {
	return len(strings.TrimRight(line, " \t")) - 1
}

// parseChunkMarker parses a one-line `--- chunk:<id> key:value ... ---`
// anchor and advances past it.
func (p *Parser) parseChunkMarker(line, trimmed string) ast.Statement {
	row := p.row
	col := strings.Index(line, config.Fence)
	m := &ast.ChunkMarker{
		Position: position.At(row, col, fenceEndCol(line)),
	}
	p.row++

	inner := strings.TrimPrefix(trimmed, config.Fence)
	if !strings.HasSuffix(inner, config.Fence) {
		p.errorf(row, col, "chunk marker must end with %s", config.Fence)
	} else {
		inner = inner[:len(inner)-len(config.Fence)]
	}
	fields := splitMetaFields(strings.TrimSpace(inner))
	if len(fields) == 0 || !strings.HasPrefix(fields[0], config.ChunkPrefix) {
		p.errorf(row, col, "chunk marker requires a chunk:<id> field")
		return m
	}
	m.ID = strings.TrimPrefix(fields[0], config.ChunkPrefix)
	for _, f := range fields[1:] {
		k, v, ok := metaPair(f)
		if !ok {
			p.errorf(row, col, "bad chunk metadata %q", f)
			continue
		}
		if m.Meta == nil {
			m.Meta = make(map[string]string)
		}
		m.Meta[k] = v
	}
	return m
}

// parseCell parses a `---cell <type> [key:value]...---` fence through its
// `---end---` line. Code cells get a parsed body; every other type keeps its
// body verbatim.
func (p *Parser) parseCell(line, trimmed string) ast.Statement {
	row := p.row
	col := strings.Index(line, config.CellFencePrefix)
	cell := &ast.Cell{
		Position: position.At(row, col, fenceEndCol(line)),
	}

	header := strings.TrimPrefix(trimmed, config.CellFencePrefix)
	if strings.HasSuffix(header, config.Fence) {
		header = header[:len(header)-len(config.Fence)]
	} else {
		p.errorf(row, col, "cell fence must end with %s", config.Fence)
	}
	fields := splitMetaFields(strings.TrimSpace(header))
	if len(fields) == 0 {
		p.errorf(row, col, "cell fence requires a type")
	} else {
		cell.CellType = fields[0]
		for _, f := range fields[1:] {
			k, v, ok := metaPair(f)
			if !ok {
				p.errorf(row, col, "bad cell metadata %q", f)
				continue
			}
			if cell.Meta == nil {
				cell.Meta = make(map[string]string)
			}
			cell.Meta[k] = v
		}
	}
	p.row++

	if cell.CellType == "code" {
		body, term, ok := p.parseBody(config.CellFenceEnd)
		cell.Body = body
		if !ok {
			p.errorf(row, col, "missing %s", config.CellFenceEnd)
			return cell
		}
		cell.Position.EndRow = term.Row
		cell.Position.EndCol = term.Col + len(config.CellFenceEnd) - 1
		p.row++
		return cell
	}

	var raw []string
	for p.row < len(p.lines) {
		l := p.lines[p.row]
		if strings.TrimSpace(l) == config.CellFenceEnd {
			if len(raw) > 0 {
				cell.RawBody = strings.Join(raw, "\n") + "\n"
			}
			cell.Position.EndRow = p.row
			cell.Position.EndCol = fenceEndCol(l)
			p.row++
			return cell
		}
		raw = append(raw, l)
		p.row++
	}
	p.errorf(row, col, "missing %s", config.CellFenceEnd)
	if len(raw) > 0 {
		cell.RawBody = strings.Join(raw, "\n") + "\n"
	}
	return cell
}

// parsePromptBlock parses a bare `---` fence whose body is verbatim text,
// closed by the next bare `---` line.
func (p *Parser) parsePromptBlock(line string) ast.Statement {
	row := p.row
	col := strings.Index(line, config.Fence)
	block := &ast.PromptBlock{
		Position: position.At(row, col, fenceEndCol(line)),
	}
	p.row++

	var raw []string
	for p.row < len(p.lines) {
		l := p.lines[p.row]
		if strings.TrimSpace(l) == config.Fence {
			if len(raw) > 0 {
				block.RawText = strings.Join(raw, "\n") + "\n"
				bp := position.At(row+1, 0, 0)
				bp.EndRow = p.row - 1
				bp.EndCol = max(len(p.lines[p.row-1])-1, 0)
				block.BodyPos = &bp
			}
			block.Position.EndRow = p.row
			block.Position.EndCol = fenceEndCol(l)
			p.row++
			return block
		}
		raw = append(raw, l)
		p.row++
	}
	p.errorf(row, col, "unclosed %s fence", config.Fence)
	if len(raw) > 0 {
		block.RawText = strings.Join(raw, "\n") + "\n"
	}
	return block
}
