// Package lex scans SFZ source text into a flat sequence of typed syntax
// nodes with line/column spans. It handles // comments, #define variable
// substitution, #include directives, and multi-opcode lines where a value
// may itself contain spaces (sample paths). The document package consumes
// the node sequence; it never sees raw text.
package lex

// Kind discriminates the syntax node variants.
type Kind uint8

const (
	// KindHeader is a <tag> section marker.
	KindHeader Kind = iota
	// KindOpcode is a name=value setting.
	KindOpcode
	// KindCurvePoint is a vNNN=value setting inside a <curve> section.
	KindCurvePoint
	// KindDefine is a #define $VAR value directive.
	KindDefine
	// KindInclude is a #include "path" directive.
	KindInclude
)

func (k Kind) String() string {
	switch k {
	case KindHeader:
		return "header"
	case KindOpcode:
		return "opcode"
	case KindCurvePoint:
		return "curve-point"
	case KindDefine:
		return "define"
	case KindInclude:
		return "include"
	default:
		return "unknown"
	}
}

// Span marks a region of source text. Lines and columns are 1-based;
// EndColumn points one past the last character.
type Span struct {
	Line      int
	Column    int
	EndLine   int
	EndColumn int
}

// Node is one typed syntax element in document order.
type Node struct {
	Kind Kind
	Span Span

	// Tag is the header variant for KindHeader ("region", "group", ...).
	Tag string
	// Name and Value carry the opcode or curve-point pair for KindOpcode
	// and KindCurvePoint, and the variable name and substitution value for
	// KindDefine.
	Name  string
	Value string
	// Path is the included file reference for KindInclude.
	Path string
}
