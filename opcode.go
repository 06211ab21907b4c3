package sfzkit

import (
	"strconv"
	"sync"

	"github.com/sfzkit/sfzkit/internal/lex"
	"github.com/sfzkit/sfzkit/schema"
)

// Opcode is a single name=value setting within a header. Opcodes are
// immutable once constructed; the one replacement path is
// Header.SetOpcode, which installs a fresh instance so cached derived
// values are never reused across a mutation.
type Opcode struct {
	name    string
	raw     string
	span    lex.Span
	ordinal int
	parent  *Header
	baseDir string
	res     *schema.Resolver

	defOnce sync.Once
	def     *schema.Definition
	defOK   bool

	valueOnce sync.Once
	value     any
}

// Name returns the opcode name as written in the source.
func (o *Opcode) Name() string { return o.name }

// Raw returns the raw value token.
func (o *Opcode) Raw() string { return o.raw }

// Line returns the 1-based source line, or 0 for derived opcodes.
func (o *Opcode) Line() int { return o.span.Line }

// Column returns the 1-based source column.
func (o *Opcode) Column() int { return o.span.Column }

// Ordinal returns the opcode's 1-based position within one build, for
// diagnostics. Derived opcodes report 0.
func (o *Opcode) Ordinal() int { return o.ordinal }

// Parent returns the header that owns this opcode.
func (o *Opcode) Parent() *Header { return o.parent }

// BaseDir returns the directory sample paths resolve against.
func (o *Opcode) BaseDir() string { return o.baseDir }

func (o *Opcode) String() string { return o.name + "=" + o.raw }

// Definition returns the canonical schema definition matched for this
// opcode's name, resolving parametrized families. The lookup runs once and
// is cached for the opcode's lifetime.
func (o *Opcode) Definition() (*schema.Definition, bool) {
	o.defOnce.Do(func() {
		if o.res != nil {
			o.def, o.defOK = o.res.Resolve(o.name)
		}
	})
	return o.def, o.defOK
}

// Type returns the declared value type, defaulting to string when the
// name has no definition.
func (o *Opcode) Type() schema.ValueType {
	def, _ := o.Definition()
	return def.Type()
}

// Unit returns the declared unit, or the empty string.
func (o *Opcode) Unit() string {
	def, _ := o.Definition()
	return def.Unit()
}

// Valid returns the declared validation rule. Enforcement is left to the
// caller.
func (o *Opcode) Valid() schema.Validator {
	def, _ := o.Definition()
	return def.Valid()
}

// Value returns the raw token interpreted according to the declared type:
// float64 for float opcodes, int for integer opcodes, and the raw string
// otherwise or when the token does not parse. The interpretation runs once
// and is cached.
func (o *Opcode) Value() any {
	o.valueOnce.Do(func() {
		o.value = o.interpret()
	})
	return o.value
}

func (o *Opcode) interpret() any {
	switch o.Type() {
	case schema.TypeFloat:
		if f, err := strconv.ParseFloat(o.raw, 64); err == nil {
			return f
		}
	case schema.TypeInteger:
		if n, err := strconv.Atoi(o.raw); err == nil {
			return n
		}
	}
	return o.raw
}

// Num returns the value as a float64 for range comparisons, reporting
// false when the token is not numeric.
func (o *Opcode) Num() (float64, bool) {
	switch v := o.Value().(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		f, err := strconv.ParseFloat(o.raw, 64)
		return f, err == nil
	}
}
