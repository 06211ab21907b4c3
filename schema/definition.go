// Package schema provides the static opcode definition table compiled from
// the declarative SFZ syntax source, and the resolver that maps concrete
// opcode names (including parametrized families such as eqN_* and *_onccN)
// to their canonical definitions.
package schema

// Version identifies the SFZ dialect that introduced an opcode.
type Version string

const (
	VersionUnknown      Version = "unknown"
	VersionV1           Version = "v1"
	VersionV2           Version = "v2"
	VersionARIA         Version = "aria"
	VersionLinuxSampler Version = "linuxsampler"
	VersionCakewalk     Version = "cakewalk"
	VersionCakewalkV2   Version = "cakewalk_v2"
)

// ValueType is the declared lexical type of an opcode value.
type ValueType string

const (
	TypeString  ValueType = "string"
	TypeInteger ValueType = "integer"
	TypeFloat   ValueType = "float"
)

// ValidatorKind discriminates the validation rule attached to a constraint.
type ValidatorKind uint8

const (
	// ValidAny places no restriction on the value.
	ValidAny ValidatorKind = iota
	// ValidRange restricts the value to [Min, Max].
	ValidRange
	// ValidMin restricts the value to >= Min. Used when the upper bound is
	// absent or symbolic (for example "SampleRate / 2").
	ValidMin
	// ValidChoice restricts the value to one of Options.
	ValidChoice
	// ValidAlias marks the opcode as an alias for Alias's rule.
	ValidAlias
)

// Validator is the declared validity rule for an opcode value or index.
// Enforcement is a consumer responsibility; the table only surfaces the rule.
type Validator struct {
	Kind    ValidatorKind
	Min     float64
	Max     float64
	MaxExpr string // symbolic upper bound, set when Kind is ValidMin and the source declared one
	Options []string
	Alias   string
}

// Constraint bundles the declared type, unit, and validity of a value slot.
type Constraint struct {
	Type  ValueType
	Unit  string
	Valid Validator
}

// Definition is the canonical schema record for one opcode name.
// Definitions are immutable and shared by reference.
type Definition struct {
	Name     string
	Version  Version
	Category string

	// Modulates names the canonical opcode this record automates, and
	// ModKind the modulation source family ("midi_cc", "envelope", "lfo"),
	// both empty for plain opcodes.
	Modulates string
	ModKind   string

	Value *Constraint
	Index *Constraint
}

// Type returns the declared value type, or TypeString when the definition
// carries no value constraint.
func (d *Definition) Type() ValueType {
	if d == nil || d.Value == nil || d.Value.Type == "" {
		return TypeString
	}
	return d.Value.Type
}

// Unit returns the declared unit, or the empty string.
func (d *Definition) Unit() string {
	if d == nil || d.Value == nil {
		return ""
	}
	return d.Value.Unit
}

// Valid returns the declared validation rule, or ValidAny.
func (d *Definition) Valid() Validator {
	if d == nil || d.Value == nil {
		return Validator{Kind: ValidAny}
	}
	return d.Value.Valid
}
