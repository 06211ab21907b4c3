package schema

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Compile builds a definition table from the declarative syntax source.
// The source is the sfzformat syntax document: a category tree whose leaves
// are opcode records with value/index constraints, aliases, and modulation
// variants. Aliases become ValidAlias definitions pointing at their target;
// modulation variants become definitions carrying the modulated opcode name
// and modulation kind.
func Compile(source []byte) (*Table, error) {
	var file syntaxFile
	if err := yaml.Unmarshal(source, &file); err != nil {
		return nil, fmt.Errorf("compile syntax: %w", err)
	}
	defs := make(map[string]*Definition)
	for _, category := range file.Categories {
		if err := collectCategory(category, defs); err != nil {
			return nil, err
		}
	}
	return newTable(defs), nil
}

type syntaxFile struct {
	Categories []syntaxCategory `yaml:"categories"`
}

type syntaxCategory struct {
	Name    string           `yaml:"name"`
	Opcodes []syntaxOpcode   `yaml:"opcodes"`
	Types   []syntaxCategory `yaml:"types"`
}

type syntaxOpcode struct {
	Name       string                    `yaml:"name"`
	Version    string                    `yaml:"version"`
	Value      *syntaxConstraint         `yaml:"value"`
	Index      *syntaxConstraint         `yaml:"index"`
	Alias      []syntaxAlias             `yaml:"alias"`
	Modulation map[string][]syntaxOpcode `yaml:"modulation"`
}

type syntaxAlias struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

type syntaxConstraint struct {
	TypeName string         `yaml:"type_name"`
	Unit     string         `yaml:"unit"`
	Min      *float64       `yaml:"min"`
	Max      *syntaxBound   `yaml:"max"`
	Options  []syntaxOption `yaml:"options"`
}

type syntaxOption struct {
	Name string `yaml:"name"`
}

// syntaxBound is a numeric or symbolic upper bound ("SampleRate / 2").
type syntaxBound struct {
	Number float64
	Expr   string
}

func (b *syntaxBound) UnmarshalYAML(node *yaml.Node) error {
	var number float64
	if err := node.Decode(&number); err == nil {
		b.Number = number
		return nil
	}
	return node.Decode(&b.Expr)
}

func collectCategory(category syntaxCategory, defs map[string]*Definition) error {
	for _, opcode := range category.Opcodes {
		if err := collectOpcode(opcode, category.Name, "", "", defs); err != nil {
			return fmt.Errorf("category %q: %w", category.Name, err)
		}
	}
	for _, sub := range category.Types {
		if err := collectCategory(sub, defs); err != nil {
			return err
		}
	}
	return nil
}

func collectOpcode(opcode syntaxOpcode, category, modulates, modKind string, defs map[string]*Definition) error {
	if opcode.Name == "" {
		return fmt.Errorf("opcode with no name")
	}
	if _, exists := defs[opcode.Name]; exists {
		return fmt.Errorf("duplicate opcode %q", opcode.Name)
	}
	def := &Definition{
		Name:      opcode.Name,
		Version:   versionCode(opcode.Version),
		Category:  category,
		Modulates: modulates,
		ModKind:   modKind,
		Value:     buildConstraint(opcode.Value),
		Index:     buildConstraint(opcode.Index),
	}
	defs[opcode.Name] = def

	for _, alias := range opcode.Alias {
		version := def.Version
		if alias.Version != "" {
			version = versionCode(alias.Version)
		}
		if _, exists := defs[alias.Name]; exists {
			return fmt.Errorf("duplicate alias %q for %q", alias.Name, opcode.Name)
		}
		defs[alias.Name] = &Definition{
			Name:     alias.Name,
			Version:  version,
			Category: category,
			Value: &Constraint{
				Valid: Validator{Kind: ValidAlias, Alias: opcode.Name},
			},
		}
	}

	for kind, variants := range opcode.Modulation {
		for _, variant := range variants {
			if err := collectOpcode(variant, category, opcode.Name, kind, defs); err != nil {
				return err
			}
		}
	}
	return nil
}

func buildConstraint(c *syntaxConstraint) *Constraint {
	if c == nil {
		return nil
	}
	out := &Constraint{
		Type: ValueType(c.TypeName),
		Unit: c.Unit,
	}
	switch {
	case c.Min != nil && c.Max != nil && c.Max.Expr == "":
		out.Valid = Validator{Kind: ValidRange, Min: *c.Min, Max: c.Max.Number}
	case c.Min != nil && c.Max != nil:
		out.Valid = Validator{Kind: ValidMin, Min: *c.Min, MaxExpr: c.Max.Expr}
	case c.Min != nil:
		out.Valid = Validator{Kind: ValidMin, Min: *c.Min}
	case len(c.Options) > 0:
		options := make([]string, len(c.Options))
		for i, option := range c.Options {
			options[i] = option.Name
		}
		out.Valid = Validator{Kind: ValidChoice, Options: options}
	default:
		out.Valid = Validator{Kind: ValidAny}
	}
	return out
}

var versionCodes = map[string]Version{
	"":                VersionUnknown,
	"SFZ v1":          VersionV1,
	"SFZ v2":          VersionV2,
	"ARIA":            VersionARIA,
	"LinuxSampler":    VersionLinuxSampler,
	"Cakewalk":        VersionCakewalk,
	"Cakewalk SFZ v2": VersionCakewalkV2,
}

func versionCode(version string) Version {
	if code, ok := versionCodes[version]; ok {
		return code
	}
	return Version(version)
}
