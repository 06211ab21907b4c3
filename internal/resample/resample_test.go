package resample_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sfzkit/sfzkit"
	"github.com/sfzkit/sfzkit/internal/resample"
)

// stubConverter records conversion requests instead of invoking sox.
type stubConverter struct {
	calls []string
}

func (c *stubConverter) Convert(_ context.Context, src, _ string, _ resample.Target) error {
	c.calls = append(c.calls, filepath.Base(src))
	return nil
}

const resampleSrc = `<group>
sample=shared.wav
offset=1000
loop_start=2000
loop_end=4000

<region> lokey=60
<region> lokey=61
<region>
sample=own.wav
end=8000
`

func parseInstrument(t *testing.T, dir, src string) *sfzkit.SFZ {
	t.Helper()
	doc, err := sfzkit.ParseWithOptions(strings.NewReader(src), filepath.Join(dir, "inst.sfz"), sfzkit.LoadOptions{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeSample(t *testing.T, dir, name string, rate int) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), wavBytes(rate, 1, 16, 64), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestPlan_ProbesEachFileOnce(t *testing.T) {
	dir := t.TempDir()
	writeSample(t, dir, "shared.wav", 44100)
	writeSample(t, dir, "own.wav", 44100)
	doc := parseInstrument(t, dir, resampleSrc)

	r := resample.New(doc, resample.Target{Rate: 48000}, &stubConverter{}, quietLogger())
	jobs, err := r.Plan()
	if err != nil {
		t.Fatal(err)
	}
	// shared.wav is inherited by two regions but carried by one opcode.
	if len(jobs) != 2 {
		t.Fatalf("Plan returned %d jobs, want 2", len(jobs))
	}
	for _, job := range jobs {
		if job.Info.SampleRate != 44100 {
			t.Errorf("job %s rate = %d, want 44100", job.Path, job.Info.SampleRate)
		}
	}
}

func TestNeedsResample(t *testing.T) {
	dir := t.TempDir()
	writeSample(t, dir, "shared.wav", 48000)
	writeSample(t, dir, "own.wav", 48000)
	doc := parseInstrument(t, dir, resampleSrc)

	r := resample.New(doc, resample.Target{Rate: 48000, Channels: 1, BitDepth: 16}, &stubConverter{}, quietLogger())
	needs, err := r.NeedsResample()
	if err != nil {
		t.Fatal(err)
	}
	if needs {
		t.Error("NeedsResample = true for matching samples")
	}

	r = resample.New(doc, resample.Target{Rate: 44100}, &stubConverter{}, quietLogger())
	needs, err = r.NeedsResample()
	if err != nil {
		t.Fatal(err)
	}
	if !needs {
		t.Error("NeedsResample = false for mismatching rate")
	}
}

func TestApply_RescalesFrameOpcodes(t *testing.T) {
	dir := t.TempDir()
	writeSample(t, dir, "shared.wav", 44100)
	writeSample(t, dir, "own.wav", 44100)
	doc := parseInstrument(t, dir, resampleSrc)

	conv := &stubConverter{}
	outDir := t.TempDir()
	r := resample.New(doc, resample.Target{Rate: 48000}, conv, quietLogger())
	if err := r.Apply(context.Background(), outDir); err != nil {
		t.Fatal(err)
	}

	if len(conv.calls) != 2 {
		t.Fatalf("converter ran %d times (%v), want 2", len(conv.calls), conv.calls)
	}

	group := doc.Headers()[0]
	// 48000/44100 ratio, rounded to whole frames.
	wantGroup := map[string]string{"offset": "1088", "loop_start": "2177", "loop_end": "4354"}
	for name, want := range wantGroup {
		op, ok := group.Own(name)
		if !ok {
			t.Fatalf("group lost opcode %s", name)
		}
		if op.Raw() != want {
			t.Errorf("group %s = %s, want %s", name, op.Raw(), want)
		}
	}

	var ownRegion *sfzkit.Header
	for region := range doc.Regions() {
		if op, ok := region.Own("sample"); ok && strings.Contains(op.Raw(), "own-") {
			ownRegion = region
		}
	}
	if ownRegion == nil {
		t.Fatal("region with its own sample was not rewritten")
	}
	if op, _ := ownRegion.Own("end"); op.Raw() != "8707" {
		t.Errorf("region end = %s, want 8707", op.Raw())
	}

	sample := group.Opcode("sample")
	want := filepath.Join(outDir, "shared-48000-0-0.wav")
	if sample.Raw() != want {
		t.Errorf("group sample = %s, want %s", sample.Raw(), want)
	}
}

func TestApply_SharedValuesScaleOnce(t *testing.T) {
	dir := t.TempDir()
	writeSample(t, dir, "shared.wav", 44100)
	writeSample(t, dir, "own.wav", 44100)
	doc := parseInstrument(t, dir, resampleSrc)

	r := resample.New(doc, resample.Target{Rate: 48000}, &stubConverter{}, quietLogger())
	if err := r.Apply(context.Background(), t.TempDir()); err != nil {
		t.Fatal(err)
	}

	// own.wav's region inherits the group frame opcodes; its job must not
	// scale the already-scaled group values a second time.
	group := doc.Headers()[0]
	if op, _ := group.Own("offset"); op.Raw() != "1088" {
		t.Errorf("group offset = %s, want 1088", op.Raw())
	}
	for region := range doc.Regions() {
		if op := region.Opcode("offset"); op.Raw() != "1088" {
			t.Errorf("region at line %d sees offset %s, want 1088", region.Line(), op.Raw())
		}
	}
}
