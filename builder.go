package sfzkit

import (
	"fmt"
	"log/slog"

	sfzerrors "github.com/sfzkit/sfzkit/errors"
	"github.com/sfzkit/sfzkit/internal/lex"
	"github.com/sfzkit/sfzkit/schema"
)

// Build assembles a document from a scanned node sequence. It maintains a
// stack of open headers: an incoming header pops the stack until the top
// accepts it by containment (or the stack empties, making it top-level),
// opcodes attach to the innermost open header, and modifiers attach to the
// document. Parent links are set here and nowhere else.
func Build(path string, nodes []lex.Node, opts LoadOptions) (*SFZ, error) {
	table := opts.Table
	if table == nil {
		table = schema.Builtin()
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	b := &builder{
		doc: &SFZ{
			path:     path,
			dir:      dirOf(path),
			resolver: schema.NewResolver(table, log),
		},
		log:      log,
		ordinals: make(map[string]int),
	}
	for _, node := range nodes {
		if err := b.append(node); err != nil {
			return nil, err
		}
	}
	return b.doc, nil
}

// builder carries the per-build state, including the ordinal counters used
// for diagnostics; a fresh builder per document keeps repeated builds in
// one process independent.
type builder struct {
	doc      *SFZ
	stack    []*Header
	log      *slog.Logger
	ordinals map[string]int
}

func (b *builder) append(node lex.Node) error {
	switch node.Kind {
	case lex.KindHeader:
		return b.openHeader(node)
	case lex.KindOpcode:
		return b.appendOpcode(node)
	case lex.KindCurvePoint:
		return b.appendCurvePoint(node)
	case lex.KindDefine:
		b.doc.modifiers = append(b.doc.modifiers, &Define{name: node.Name, value: node.Value, span: node.Span})
		return nil
	case lex.KindInclude:
		b.doc.modifiers = append(b.doc.modifiers, &Include{path: node.Path, span: node.Span})
		return nil
	default:
		return fmt.Errorf("build: unexpected node kind %v at %d:%d", node.Kind, node.Span.Line, node.Span.Column)
	}
}

func (b *builder) openHeader(node lex.Node) error {
	kind, ok := KindForTag(node.Tag)
	if !ok {
		return sfzerrors.NewStructure(sfzerrors.ErrUnknownHeader,
			fmt.Sprintf("unknown header <%s>", node.Tag), node.Span.Line, node.Span.Column)
	}
	header := &Header{
		kind:    kind,
		span:    node.Span,
		ordinal: b.nextOrdinal(kind.Tag()),
		doc:     b.doc,
	}
	for len(b.stack) > 0 && !b.top().kind.mayContain(kind) {
		b.stack = b.stack[:len(b.stack)-1]
	}
	if len(b.stack) == 0 {
		b.doc.headers = append(b.doc.headers, header)
	} else {
		parent := b.top()
		parent.headers = append(parent.headers, header)
		header.parent = parent
	}
	b.stack = append(b.stack, header)
	b.log.Debug("opened header",
		slog.String("tag", kind.Tag()),
		slog.Int("ordinal", header.ordinal),
		slog.Int("line", node.Span.Line))
	return nil
}

func (b *builder) appendOpcode(node lex.Node) error {
	if len(b.stack) == 0 {
		return sfzerrors.NewStructure(sfzerrors.ErrOpcodeOutsideHeader,
			fmt.Sprintf("opcode %s=%s before any header", node.Name, node.Value),
			node.Span.Line, node.Span.Column)
	}
	b.top().setOwn(&Opcode{
		name:    node.Name,
		raw:     node.Value,
		span:    node.Span,
		ordinal: b.nextOrdinal("opcode"),
		baseDir: b.doc.dir,
		res:     b.doc.resolver,
	})
	return nil
}

func (b *builder) appendCurvePoint(node lex.Node) error {
	if len(b.stack) == 0 {
		return sfzerrors.NewStructure(sfzerrors.ErrCurvePointOutsideHeader,
			fmt.Sprintf("curve point %s=%s before any header", node.Name, node.Value),
			node.Span.Line, node.Span.Column)
	}
	if top := b.top(); top.kind == KindCurve {
		top.setPoint(CurvePoint{Name: node.Name, Value: node.Value})
		return nil
	}
	// A vNNN name outside a <curve> section is an ordinary opcode.
	return b.appendOpcode(node)
}

func (b *builder) top() *Header {
	return b.stack[len(b.stack)-1]
}

func (b *builder) nextOrdinal(key string) int {
	b.ordinals[key]++
	return b.ordinals[key]
}
