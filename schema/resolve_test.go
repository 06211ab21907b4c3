package schema_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/sfzkit/sfzkit/schema"
)

func newTestResolver() *schema.Resolver {
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	return schema.NewResolver(schema.Builtin(), quiet)
}

func TestResolve_Exact(t *testing.T) {
	r := newTestResolver()
	def, ok := r.Resolve("volume")
	if !ok {
		t.Fatal("volume should resolve exactly")
	}
	if def.Name != "volume" {
		t.Errorf("Name = %q, want volume", def.Name)
	}
}

func TestResolve_IdempotentOnCanonicalNames(t *testing.T) {
	r := newTestResolver()
	for _, name := range []string{"eqN_gain_onccX", "volume_onccN", "amp_velcurve_N", "loccN"} {
		def, ok := r.Resolve(name)
		if !ok {
			t.Fatalf("%s should resolve", name)
		}
		if def.Name != name {
			t.Errorf("Resolve(%q).Name = %q, want the exact definition", name, def.Name)
		}
	}
}

func TestResolve_Families(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "velocity curve index", in: "amp_velcurve_64", want: "amp_velcurve_N"},
		{name: "eq band plain", in: "eq2_freq", want: "eqN_freq"},
		{name: "eq band with cc automation", in: "eq3_gain_oncc12", want: "eqN_gain_onccX"},
		{name: "eq bandwidth with cc automation", in: "eq1_bw_oncc110", want: "eqN_bw_onccX"},
		{name: "oncc suffix", in: "volume_oncc7", want: "volume_onccN"},
		{name: "cc suffix alias form", in: "cutoff_cc23", want: "cutoff_ccN"},
		{name: "bare cc fragment", in: "locc64", want: "loccN"},
		{name: "bare cc fragment high", in: "on_hicc127", want: "on_hiccN"},
		{name: "lfo depth bare cc", in: "amplfo_depthcc1", want: "amplfo_depthccN"},
	}
	r := newTestResolver()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, ok := r.Resolve(tt.in)
			if !ok {
				t.Fatalf("Resolve(%q) = unresolved, want %q", tt.in, tt.want)
			}
			if def.Name != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.in, def.Name, tt.want)
			}
		})
	}
}

func TestResolve_Deterministic(t *testing.T) {
	r := newTestResolver()
	first, ok := r.Resolve("eq3_gain_oncc12")
	if !ok {
		t.Fatal("eq3_gain_oncc12 should resolve")
	}
	for i := 0; i < 5; i++ {
		again, ok := r.Resolve("eq3_gain_oncc12")
		if !ok || again != first {
			t.Fatalf("run %d: Resolve returned a different definition", i)
		}
	}
}

func TestResolve_UnknownIsSoft(t *testing.T) {
	r := newTestResolver()
	if def, ok := r.Resolve("vendor_special_opcode"); ok {
		t.Fatalf("expected unresolved, got %q", def.Name)
	}
	// A second document using the same unknown name must behave the same.
	if _, ok := r.Resolve("vendor_special_opcode"); ok {
		t.Fatal("expected unresolved on repeat")
	}
}

func TestSuggest_ClosestKnownName(t *testing.T) {
	r := newTestResolver()
	if got := r.Suggest("volum"); got != "volume" {
		t.Errorf("Suggest(volum) = %q, want volume", got)
	}
}
