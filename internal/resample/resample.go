package resample

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sfzkit/sfzkit"
)

// sampleUnitOpcodes are measured in sample frames; their values scale with
// the sample rate.
var sampleUnitOpcodes = []string{
	"offset",
	"end",
	"loop_start",
	"loop_end",
	"loopstart",
	"loopend",
}

// Job is one sample opcode whose file does not match the target encoding.
type Job struct {
	Sample *sfzkit.Opcode
	Path   string
	Info   Info
}

// Resampler drives the conversion of an instrument's samples to a target
// encoding. Probe results are memoized per file, so a sample shared by
// several regions is inspected once.
type Resampler struct {
	doc    *sfzkit.SFZ
	target Target
	conv   Converter
	log    *slog.Logger
	infos  map[string]Info
}

// New creates a resampler for doc. A nil converter shells out to sox; a
// nil logger uses slog.Default.
func New(doc *sfzkit.SFZ, target Target, conv Converter, log *slog.Logger) *Resampler {
	if conv == nil {
		conv = SoxConverter{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Resampler{
		doc:    doc,
		target: target,
		conv:   conv,
		log:    log,
		infos:  make(map[string]Info),
	}
}

// Plan probes every distinct sample the instrument references and returns
// a job for each one that misses the target encoding.
func (r *Resampler) Plan() ([]Job, error) {
	var jobs []Job
	for op := range r.doc.Samples() {
		path := SamplePath(op)
		info, err := r.probe(path)
		if err != nil {
			return nil, err
		}
		if r.target.matches(info) {
			continue
		}
		jobs = append(jobs, Job{Sample: op, Path: path, Info: info})
	}
	return jobs, nil
}

// NeedsResample reports whether any referenced sample misses the target
// encoding.
func (r *Resampler) NeedsResample() (bool, error) {
	jobs, err := r.Plan()
	if err != nil {
		return false, err
	}
	return len(jobs) > 0, nil
}

// Apply converts every mismatching sample into outDir and rewrites the
// document to reference the converted files. When the sample rate changes,
// frame-valued opcodes in effect for the sample's header are rescaled by
// the rate ratio before the reference is swapped.
func (r *Resampler) Apply(ctx context.Context, outDir string) error {
	jobs, err := r.Plan()
	if err != nil {
		return err
	}
	converted := make(map[string]string)
	rescaled := make(map[*sfzkit.Opcode]struct{})
	for _, job := range jobs {
		dst, done := converted[job.Path]
		if !done {
			dst = filepath.Join(outDir, convertedName(job.Path, r.target))
			if err := r.conv.Convert(ctx, job.Path, dst, r.target); err != nil {
				return fmt.Errorf("resample %s: %w", job.Path, err)
			}
			converted[job.Path] = dst
			r.log.Info("converted sample",
				"src", job.Path, "dst", dst, "from", job.Info.String(), "to", r.target.String())
		}
		owner := job.Sample.Parent()
		if r.target.Rate > 0 && job.Info.SampleRate > 0 && job.Info.SampleRate != r.target.Rate {
			rescaleFrameOpcodes(owner, float64(r.target.Rate)/float64(job.Info.SampleRate), rescaled)
		}
		owner.SetOpcode("sample", dst)
	}
	return nil
}

func (r *Resampler) probe(path string) (Info, error) {
	if info, ok := r.infos[path]; ok {
		return info, nil
	}
	info, err := Probe(path)
	if err != nil {
		return Info{}, err
	}
	r.infos[path] = info
	return info, nil
}

// rescaleFrameOpcodes multiplies every frame-valued opcode in effect for h
// by ratio, mutating the header that defines each one so inheriting
// siblings see the adjustment too. A value shared through inheritance is
// scaled once; done tracks the replacement instances across jobs.
func rescaleFrameOpcodes(h *sfzkit.Header, ratio float64, done map[*sfzkit.Opcode]struct{}) {
	for _, name := range sampleUnitOpcodes {
		op := h.Opcode(name)
		if op == nil {
			continue
		}
		if _, seen := done[op]; seen {
			continue
		}
		v, ok := op.Num()
		if !ok {
			continue
		}
		scaled := op.Parent().SetOpcode(name, strconv.FormatInt(int64(math.Round(v*ratio)), 10))
		done[scaled] = struct{}{}
	}
}

// SamplePath resolves an opcode's sample reference against its base
// directory. SFZ sources written on Windows use backslash separators;
// those are normalized first.
func SamplePath(op *sfzkit.Opcode) string {
	raw := filepath.FromSlash(strings.ReplaceAll(op.Raw(), "\\", "/"))
	if filepath.IsAbs(raw) || op.BaseDir() == "" {
		return raw
	}
	return filepath.Join(op.BaseDir(), raw)
}

func convertedName(src string, t Target) string {
	ext := filepath.Ext(src)
	title := strings.TrimSuffix(filepath.Base(src), ext)
	return fmt.Sprintf("%s-%d-%d-%d%s", title, t.Rate, t.Channels, t.BitDepth, ext)
}
