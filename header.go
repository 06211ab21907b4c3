package sfzkit

import (
	"iter"

	sfzerrors "github.com/sfzkit/sfzkit/errors"
	"github.com/sfzkit/sfzkit/internal/lex"
)

// Kind identifies a header variant. Global, Master, Group and Region form
// the strict nesting chain; Control, Effect, Midi and Curve are auxiliary
// sections that never contain further headers.
type Kind uint8

const (
	KindGlobal Kind = iota
	KindMaster
	KindGroup
	KindRegion
	KindControl
	KindEffect
	KindMidi
	KindCurve
)

var kindTags = [...]string{"global", "master", "group", "region", "control", "effect", "midi", "curve"}

// Tag returns the lower-case source tag for the kind.
func (k Kind) Tag() string {
	if int(k) < len(kindTags) {
		return kindTags[k]
	}
	return "unknown"
}

func (k Kind) String() string {
	return "<" + k.Tag() + ">"
}

// KindForTag maps a source tag to its header kind.
func KindForTag(tag string) (Kind, bool) {
	for k, t := range kindTags {
		if t == tag {
			return Kind(k), true
		}
	}
	return 0, false
}

// chainRank returns the position of k in the Global > Master > Group >
// Region nesting chain, or -1 for the auxiliary kinds.
func (k Kind) chainRank() int {
	switch k {
	case KindGlobal:
		return 0
	case KindMaster:
		return 1
	case KindGroup:
		return 2
	case KindRegion:
		return 3
	default:
		return -1
	}
}

// mayContain reports whether a header of kind k accepts a following header
// of kind candidate as a child. Chain headers contain strictly narrower
// chain kinds and any auxiliary kind; auxiliary headers contain nothing.
func (k Kind) mayContain(candidate Kind) bool {
	mine := k.chainRank()
	if mine < 0 {
		return false
	}
	theirs := candidate.chainRank()
	if theirs < 0 {
		return true
	}
	return theirs > mine
}

// CurvePoint is one vNNN=value entry of a <curve> section.
type CurvePoint struct {
	Name  string
	Value string
}

// Header is a named document section owning an ordered opcode set and an
// ordered list of child headers. The parent link is a non-owning traversal
// reference; ownership flows root to leaf.
type Header struct {
	kind    Kind
	span    lex.Span
	ordinal int
	parent  *Header
	doc     *SFZ

	opcodes map[string]*Opcode
	order   []string
	headers []*Header
	points  []CurvePoint
}

// Kind returns the header variant.
func (h *Header) Kind() Kind { return h.kind }

// Tag returns the header's source tag without brackets.
func (h *Header) Tag() string { return h.kind.Tag() }

func (h *Header) String() string { return h.kind.String() }

// Line returns the 1-based source line the header was opened on, or 0 for
// programmatically constructed headers.
func (h *Header) Line() int { return h.span.Line }

// Column returns the 1-based source column of the header tag.
func (h *Header) Column() int { return h.span.Column }

// Ordinal returns the header's 1-based position among headers of the same
// kind within one build, for diagnostics.
func (h *Header) Ordinal() int { return h.ordinal }

// Parent returns the containing header, or nil for a top-level header.
func (h *Header) Parent() *Header { return h.parent }

// Document returns the owning document.
func (h *Header) Document() *SFZ { return h.doc }

// Children returns the child headers in source order.
func (h *Header) Children() []*Header { return h.headers }

// Points returns the curve points of a Curve header, in source order.
func (h *Header) Points() []CurvePoint { return h.points }

// Opcodes returns the header's own opcodes in source order.
func (h *Header) Opcodes() []*Opcode {
	out := make([]*Opcode, 0, len(h.order))
	for _, name := range h.order {
		out = append(out, h.opcodes[name])
	}
	return out
}

// Own returns the opcode defined directly on this header, without
// consulting ancestors.
func (h *Header) Own(name string) (*Opcode, bool) {
	op, ok := h.opcodes[name]
	return op, ok
}

// Opcode returns the opcode named name from this header or its nearest
// ancestor that defines it, or nil when the chain is exhausted. Absence is
// a normal outcome, not an error.
func (h *Header) Opcode(name string) *Opcode {
	for cur := h; cur != nil; cur = cur.parent {
		if op, ok := cur.opcodes[name]; ok {
			return op
		}
	}
	return nil
}

// InheritedOpcodes merges the ancestor chain root-most first with this
// header's own opcodes layered on top, own values winning on collision.
// The merge is recomputed per call so it can never go stale after an
// opcode replacement anywhere in the chain.
func (h *Header) InheritedOpcodes() map[string]*Opcode {
	var merged map[string]*Opcode
	if h.parent != nil {
		merged = h.parent.InheritedOpcodes()
	} else {
		merged = make(map[string]*Opcode, len(h.opcodes))
	}
	for name, op := range h.opcodes {
		merged[name] = op
	}
	return merged
}

// OpcodesUsed returns the set of opcode names defined on this header and
// all of its descendants.
func (h *Header) OpcodesUsed() map[string]struct{} {
	used := make(map[string]struct{}, len(h.order))
	h.collectUsed(used)
	return used
}

func (h *Header) collectUsed(used map[string]struct{}) {
	for name := range h.opcodes {
		used[name] = struct{}{}
	}
	for _, child := range h.headers {
		child.collectUsed(used)
	}
}

// Regions yields every Region descendant of this header in depth-first
// pre-order. Each call starts a fresh traversal.
func (h *Header) Regions() iter.Seq[*Header] {
	return func(yield func(*Header) bool) {
		h.yieldRegions(yield)
	}
}

func (h *Header) yieldRegions(yield func(*Header) bool) bool {
	for _, child := range h.headers {
		if child.kind == KindRegion {
			if !yield(child) {
				return false
			}
		}
		if !child.yieldRegions(yield) {
			return false
		}
	}
	return true
}

// SetOpcode replaces the header's own opcode named name with a freshly
// constructed one carrying value, preserving the opcode's position in the
// header when it already existed. The replacement has no source position:
// it is a derived value. This is the model's only mutation path and is not
// safe for concurrent use with readers of the same tree.
func (h *Header) SetOpcode(name, value string) *Opcode {
	op := &Opcode{
		name:    name,
		raw:     value,
		parent:  h,
		baseDir: h.doc.baseDir(),
		res:     h.doc.resolverOrNil(),
	}
	if h.opcodes == nil {
		h.opcodes = make(map[string]*Opcode)
	}
	if _, exists := h.opcodes[name]; !exists {
		h.order = append(h.order, name)
	}
	h.opcodes[name] = op
	return op
}

// Criteria bounds a trigger-match query. Nil fields are unconstrained; at
// least one field must be set.
type Criteria struct {
	LoKey *int
	HiKey *int
	LoVel *int
	HiVel *int
}

func (c Criteria) empty() bool {
	return c.LoKey == nil && c.HiKey == nil && c.LoVel == nil && c.HiVel == nil
}

// IsTriggeredBy reports whether the header's effective key and velocity
// ranges intersect the queried bounds, using inherited opcodes: a region
// whose hikey lies below the queried lokey (or lokey above the queried
// hikey, and analogously for velocity) does not sound. Bounds the region
// does not declare are unbounded. It returns an InvalidQuery error when no
// criterion is supplied at all.
func (h *Header) IsTriggeredBy(c Criteria) (bool, error) {
	if c.empty() {
		return false, sfzerrors.NewInvalidQuery(sfzerrors.ErrEmptyTriggerQuery, "requires a key or velocity to test")
	}
	ops := h.InheritedOpcodes()
	rejects := func(name string, bound *int, below bool) bool {
		if bound == nil {
			return false
		}
		op, ok := ops[name]
		if !ok {
			return false
		}
		value, ok := op.Num()
		if !ok {
			return false
		}
		if below {
			return value < float64(*bound)
		}
		return value > float64(*bound)
	}
	if rejects("hikey", c.LoKey, true) || rejects("lokey", c.HiKey, false) ||
		rejects("hivel", c.LoVel, true) || rejects("lovel", c.HiVel, false) {
		return false, nil
	}
	return true, nil
}

// setOwn attaches an opcode during tree construction, overwriting any
// prior opcode of the same name in place.
func (h *Header) setOwn(op *Opcode) {
	if h.opcodes == nil {
		h.opcodes = make(map[string]*Opcode)
	}
	if _, exists := h.opcodes[op.name]; !exists {
		h.order = append(h.order, op.name)
	}
	h.opcodes[op.name] = op
	op.parent = h
}

// setPoint attaches a curve point, overwriting a same-named point in place.
func (h *Header) setPoint(point CurvePoint) {
	for i, existing := range h.points {
		if existing.Name == point.Name {
			h.points[i] = point
			return
		}
	}
	h.points = append(h.points, point)
}
