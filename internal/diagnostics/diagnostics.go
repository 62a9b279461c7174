package diagnostics

import (
	"fmt"

	"github.com/quill-lang/quill/internal/position"
)

// Severity ranks a diagnostic.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	}
	return "unknown"
}

// Diagnostic is a non-fatal condition recorded during printing or
// regeneration. Regeneration never aborts on a single bad node; it degrades
// locally and reports what it did here.
type Diagnostic struct {
	Severity Severity
	Message  string
	Pos      position.Position
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s (at %s)", d.Severity, d.Message, d.Pos)
}

// Collector accumulates diagnostics for one engine call.
type Collector struct {
	list []Diagnostic
}

// Add records a diagnostic.
func (c *Collector) Add(sev Severity, pos position.Position, format string, args ...any) {
	c.list = append(c.list, Diagnostic{
		Severity: sev,
		Message:  fmt.Sprintf(format, args...),
		Pos:      pos,
	})
}

// All returns the recorded diagnostics in order.
func (c *Collector) All() []Diagnostic {
	return c.list
}
