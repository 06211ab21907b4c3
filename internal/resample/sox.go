package resample

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
)

// Target is the sample encoding an instrument's files should be brought
// to. Zero fields are left as found.
type Target struct {
	Rate     int
	Channels int
	BitDepth int
}

func (t Target) String() string {
	return fmt.Sprintf("%d Hz %d chan %d bit", t.Rate, t.Channels, t.BitDepth)
}

// matches reports whether info already satisfies every constrained field.
func (t Target) matches(info Info) bool {
	if t.Rate > 0 && info.SampleRate != t.Rate {
		return false
	}
	if t.Channels > 0 && info.Channels != t.Channels {
		return false
	}
	if t.BitDepth > 0 && info.BitDepth != t.BitDepth {
		return false
	}
	return true
}

// Converter performs the audio conversion for a single sample file.
type Converter interface {
	Convert(ctx context.Context, src, dst string, target Target) error
}

// SoxConverter converts samples by shelling out to the sox binary.
type SoxConverter struct {
	// Binary is the sox executable to run; empty means "sox" on PATH.
	Binary string
}

func (c SoxConverter) Convert(ctx context.Context, src, dst string, target Target) error {
	bin := c.Binary
	if bin == "" {
		bin = "sox"
	}
	args := []string{src}
	if target.Rate > 0 {
		args = append(args, "-r", strconv.Itoa(target.Rate))
	}
	if target.Channels > 0 {
		args = append(args, "-c", strconv.Itoa(target.Channels))
	}
	if target.BitDepth > 0 {
		args = append(args, "-b", strconv.Itoa(target.BitDepth))
	}
	args = append(args, dst)
	out, err := exec.CommandContext(ctx, bin, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("sox %s: %w: %s", src, err, bytes.TrimSpace(out))
	}
	return nil
}
