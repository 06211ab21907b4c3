package schema_test

import (
	"testing"

	"github.com/sfzkit/sfzkit/schema"
)

const testSyntax = `
categories:
- name: Amplifier
  opcodes:
  - name: volume
    version: SFZ v1
    value:
      type_name: float
      unit: dB
      min: -144
      max: 6
    modulation:
      midi_cc:
      - name: volume_onccN
        version: SFZ v2
        alias:
        - name: gain_ccN
          version: SFZ v1
        value:
          type_name: float
          unit: dB
          min: -144
          max: 6
- name: Filter
  opcodes:
  - name: cutoff
    version: SFZ v1
    value:
      type_name: float
      unit: Hz
      min: 0
      max: SampleRate / 2
  - name: fil_type
    version: SFZ v1
    value:
      type_name: string
      options:
      - name: lpf_1p
      - name: hpf_1p
- name: Envelope Generators
  types:
  - name: Amplifier EG
    opcodes:
    - name: ampeg_attack
      version: SFZ v1
      value:
        type_name: float
        unit: seconds
        min: 0
        max: 100
`

func compileTestTable(t *testing.T) *schema.Table {
	t.Helper()
	table, err := schema.Compile([]byte(testSyntax))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return table
}

func TestCompile_PlainOpcode(t *testing.T) {
	table := compileTestTable(t)
	def, ok := table.Lookup("volume")
	if !ok {
		t.Fatal("volume not compiled")
	}
	if def.Category != "Amplifier" {
		t.Errorf("Category = %q, want Amplifier", def.Category)
	}
	if def.Version != schema.VersionV1 {
		t.Errorf("Version = %q, want v1", def.Version)
	}
	if def.Type() != schema.TypeFloat {
		t.Errorf("Type = %q, want float", def.Type())
	}
	if def.Unit() != "dB" {
		t.Errorf("Unit = %q, want dB", def.Unit())
	}
	valid := def.Valid()
	if valid.Kind != schema.ValidRange || valid.Min != -144 || valid.Max != 6 {
		t.Errorf("Valid = %+v, want range [-144, 6]", valid)
	}
}

func TestCompile_ModulationVariant(t *testing.T) {
	table := compileTestTable(t)
	def, ok := table.Lookup("volume_onccN")
	if !ok {
		t.Fatal("volume_onccN not compiled")
	}
	if def.Modulates != "volume" {
		t.Errorf("Modulates = %q, want volume", def.Modulates)
	}
	if def.ModKind != "midi_cc" {
		t.Errorf("ModKind = %q, want midi_cc", def.ModKind)
	}
	if def.Version != schema.VersionV2 {
		t.Errorf("Version = %q, want v2", def.Version)
	}
}

func TestCompile_Alias(t *testing.T) {
	table := compileTestTable(t)
	def, ok := table.Lookup("gain_ccN")
	if !ok {
		t.Fatal("gain_ccN alias not compiled")
	}
	valid := def.Valid()
	if valid.Kind != schema.ValidAlias || valid.Alias != "volume_onccN" {
		t.Errorf("Valid = %+v, want alias of volume_onccN", valid)
	}
	if def.Version != schema.VersionV1 {
		t.Errorf("Version = %q, want alias's own v1", def.Version)
	}
}

func TestCompile_SymbolicUpperBound(t *testing.T) {
	table := compileTestTable(t)
	def, ok := table.Lookup("cutoff")
	if !ok {
		t.Fatal("cutoff not compiled")
	}
	valid := def.Valid()
	if valid.Kind != schema.ValidMin || valid.Min != 0 {
		t.Errorf("Valid = %+v, want min rule", valid)
	}
	if valid.MaxExpr != "SampleRate / 2" {
		t.Errorf("MaxExpr = %q, want symbolic bound", valid.MaxExpr)
	}
}

func TestCompile_Choice(t *testing.T) {
	table := compileTestTable(t)
	def, ok := table.Lookup("fil_type")
	if !ok {
		t.Fatal("fil_type not compiled")
	}
	valid := def.Valid()
	if valid.Kind != schema.ValidChoice {
		t.Fatalf("Valid kind = %v, want choice", valid.Kind)
	}
	want := []string{"lpf_1p", "hpf_1p"}
	if len(valid.Options) != len(want) {
		t.Fatalf("Options = %v, want %v", valid.Options, want)
	}
	for i, option := range want {
		if valid.Options[i] != option {
			t.Errorf("Options[%d] = %q, want %q", i, valid.Options[i], option)
		}
	}
}

func TestCompile_NestedCategoryTypes(t *testing.T) {
	table := compileTestTable(t)
	def, ok := table.Lookup("ampeg_attack")
	if !ok {
		t.Fatal("ampeg_attack not compiled from nested category")
	}
	if def.Category != "Amplifier EG" {
		t.Errorf("Category = %q, want Amplifier EG", def.Category)
	}
}

func TestCompile_DuplicateRejected(t *testing.T) {
	src := `
categories:
- name: A
  opcodes:
  - name: volume
- name: B
  opcodes:
  - name: volume
`
	if _, err := schema.Compile([]byte(src)); err == nil {
		t.Fatal("expected duplicate opcode error")
	}
}

func TestBuiltin_CoversCoreOpcodes(t *testing.T) {
	table := schema.Builtin()
	for _, name := range []string{
		"sample", "lokey", "hikey", "lovel", "hivel",
		"amp_velcurve_N", "eqN_gain_onccX", "volume_onccN", "loccN",
		"loop_start", "loopstart", "offset",
	} {
		if _, ok := table.Lookup(name); !ok {
			t.Errorf("builtin table missing %q", name)
		}
	}
	if table.Len() == 0 {
		t.Fatal("builtin table is empty")
	}
}
