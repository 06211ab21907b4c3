package sfzkit

import "github.com/sfzkit/sfzkit/internal/lex"

// Modifier is a document-level directive outside the header/opcode tree.
// Modifiers do not participate in inheritance.
type Modifier interface {
	// Line returns the 1-based source line of the directive.
	Line() int
	modifier()
}

// Define is a #define substitution directive. The scanner has already
// applied the substitution to following opcodes; the node is retained for
// re-emission.
type Define struct {
	name  string // includes the leading $
	value string
	span  lex.Span
}

// Name returns the variable name including the leading $.
func (d *Define) Name() string { return d.name }

// Value returns the substitution value.
func (d *Define) Value() string { return d.value }

func (d *Define) Line() int { return d.span.Line }

func (d *Define) String() string { return "#define " + d.name + " " + d.value }

func (d *Define) modifier() {}

// Include is a #include directive. The referenced file is not expanded;
// the node records the reference for consumers and re-emission.
type Include struct {
	path string
	span lex.Span
}

// Path returns the included file reference as written.
func (i *Include) Path() string { return i.path }

func (i *Include) Line() int { return i.span.Line }

func (i *Include) String() string { return `#include "` + i.path + `"` }

func (i *Include) modifier() {}
