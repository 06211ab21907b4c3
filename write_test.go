package sfzkit_test

import (
	"strings"
	"testing"

	"github.com/sfzkit/sfzkit"
)

func TestWriteTo_Shape(t *testing.T) {
	doc := mustParse(t, `#define $KEY 36
<group>lokey=$KEY hikey=40
<region>sample=a.wav
`)
	var sb strings.Builder
	if _, err := doc.WriteTo(&sb); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	got := sb.String()
	for _, want := range []string{"#define $KEY 36", "<group>", "lokey=36", "hikey=40", "<region>", "sample=a.wav"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Index(got, "<group>") > strings.Index(got, "<region>") {
		t.Error("group must precede region")
	}
}

func TestWriteCanonicalTo_OrdersOpcodes(t *testing.T) {
	doc := mustParse(t, "<region>volume=-3 sample=a.wav lokey=60\n")
	var sb strings.Builder
	if _, err := doc.WriteCanonicalTo(&sb); err != nil {
		t.Fatalf("WriteCanonicalTo: %v", err)
	}
	got := sb.String()
	if !(strings.Index(got, "lokey=60") < strings.Index(got, "sample=a.wav") &&
		strings.Index(got, "sample=a.wav") < strings.Index(got, "volume=-3")) {
		t.Errorf("canonical order not applied:\n%s", got)
	}
}

func TestWriteTo_CurvePoints(t *testing.T) {
	doc := mustParse(t, "<curve>curve_index=17\nv000=0 v127=1\n")
	var sb strings.Builder
	if _, err := doc.WriteTo(&sb); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	got := sb.String()
	for _, want := range []string{"<curve>", "curve_index=17", "v000=0", "v127=1"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

// Round trip: serializing and re-parsing preserves header nesting and the
// effective opcode set at every node, formatting aside.
func TestRoundTrip_EquivalentTree(t *testing.T) {
	doc := mustParse(t, `<global>volume=-6
<master>pan=10
<group>lokey=60 hikey=64 sample=shared.wav
<region>lovel=0 hivel=63
<region>lovel=64 hivel=127 volume=0
<control>default_path=samples/
`)
	var sb strings.Builder
	if _, err := doc.WriteTo(&sb); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	reparsed := mustParse(t, sb.String())

	var walk func(t *testing.T, a, b *sfzkit.Header)
	walk = func(t *testing.T, a, b *sfzkit.Header) {
		if a.Kind() != b.Kind() {
			t.Fatalf("kind mismatch: %v vs %v", a.Kind(), b.Kind())
		}
		origEff := a.InheritedOpcodes()
		reEff := b.InheritedOpcodes()
		if len(origEff) != len(reEff) {
			t.Fatalf("effective set size mismatch at %v: %d vs %d", a.Kind(), len(origEff), len(reEff))
		}
		for name, op := range origEff {
			other, ok := reEff[name]
			if !ok || other.Raw() != op.Raw() {
				t.Errorf("effective %s at %v: %v vs %v", name, a.Kind(), op, other)
			}
		}
		if len(a.Children()) != len(b.Children()) {
			t.Fatalf("children mismatch at %v: %d vs %d", a.Kind(), len(a.Children()), len(b.Children()))
		}
		for i := range a.Children() {
			walk(t, a.Children()[i], b.Children()[i])
		}
	}
	if len(doc.Headers()) != len(reparsed.Headers()) {
		t.Fatalf("top-level count mismatch: %d vs %d", len(doc.Headers()), len(reparsed.Headers()))
	}
	for i := range doc.Headers() {
		walk(t, doc.Headers()[i], reparsed.Headers()[i])
	}
}
