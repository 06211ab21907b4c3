// Package resample audits the sample files referenced by an instrument
// against a target encoding, rescales sample-unit opcodes through the
// document's mutation path when the rate changes, and delegates the audio
// conversion itself to an external converter.
package resample

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	sfzerrors "github.com/sfzkit/sfzkit/errors"
)

// Info describes a sample file's encoding.
type Info struct {
	SampleRate int
	Channels   int
	BitDepth   int
	NumFrames  int
}

func (i Info) String() string {
	return fmt.Sprintf("%d Hz %d chan %d bit", i.SampleRate, i.Channels, i.BitDepth)
}

// Probe reads the encoding properties from a WAV or AIFF file header.
func Probe(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("probe sample: %w", err)
	}
	defer f.Close()

	var magic [12]byte
	if _, err := io.ReadFull(f, magic[:]); err != nil {
		return Info{}, probeError(path, "file too short for a sample header")
	}
	switch {
	case string(magic[0:4]) == "RIFF" && string(magic[8:12]) == "WAVE":
		return probeWAV(f, path)
	case string(magic[0:4]) == "FORM" && (string(magic[8:12]) == "AIFF" || string(magic[8:12]) == "AIFC"):
		return probeAIFF(f, path)
	default:
		return Info{}, probeError(path, "not a RIFF/WAVE or FORM/AIFF file")
	}
}

func probeWAV(f *os.File, path string) (Info, error) {
	var info Info
	var haveFmt bool
	for {
		var chunk [8]byte
		if _, err := io.ReadFull(f, chunk[:]); err != nil {
			break
		}
		id := string(chunk[0:4])
		size := binary.LittleEndian.Uint32(chunk[4:8])
		switch id {
		case "fmt ":
			var fmtChunk [16]byte
			if _, err := io.ReadFull(f, fmtChunk[:]); err != nil {
				return Info{}, probeError(path, "truncated fmt chunk")
			}
			info.Channels = int(binary.LittleEndian.Uint16(fmtChunk[2:4]))
			info.SampleRate = int(binary.LittleEndian.Uint32(fmtChunk[4:8]))
			info.BitDepth = int(binary.LittleEndian.Uint16(fmtChunk[14:16]))
			haveFmt = true
			if size > 16 {
				if _, err := f.Seek(int64(size-16+size%2), io.SeekCurrent); err != nil {
					return Info{}, fmt.Errorf("probe sample %s: %w", path, err)
				}
			}
		case "data":
			if haveFmt && info.Channels > 0 && info.BitDepth > 0 {
				bytesPerFrame := info.Channels * info.BitDepth / 8
				if bytesPerFrame > 0 {
					info.NumFrames = int(size) / bytesPerFrame
				}
			}
			if _, err := f.Seek(int64(size+size%2), io.SeekCurrent); err != nil {
				return Info{}, fmt.Errorf("probe sample %s: %w", path, err)
			}
		default:
			if _, err := f.Seek(int64(size+size%2), io.SeekCurrent); err != nil {
				return Info{}, fmt.Errorf("probe sample %s: %w", path, err)
			}
		}
	}
	if !haveFmt {
		return Info{}, probeError(path, "no fmt chunk")
	}
	return info, nil
}

func probeAIFF(f *os.File, path string) (Info, error) {
	for {
		var chunk [8]byte
		if _, err := io.ReadFull(f, chunk[:]); err != nil {
			break
		}
		id := string(chunk[0:4])
		size := binary.BigEndian.Uint32(chunk[4:8])
		if id != "COMM" {
			if _, err := f.Seek(int64(size+size%2), io.SeekCurrent); err != nil {
				return Info{}, fmt.Errorf("probe sample %s: %w", path, err)
			}
			continue
		}
		var comm [18]byte
		if _, err := io.ReadFull(f, comm[:]); err != nil {
			return Info{}, probeError(path, "truncated COMM chunk")
		}
		return Info{
			Channels:   int(binary.BigEndian.Uint16(comm[0:2])),
			NumFrames:  int(binary.BigEndian.Uint32(comm[2:6])),
			BitDepth:   int(binary.BigEndian.Uint16(comm[6:8])),
			SampleRate: int(math.Round(float80(comm[8:18]))),
		}, nil
	}
	return Info{}, probeError(path, "no COMM chunk")
}

// float80 decodes the 80-bit extended float AIFF uses for sample rates.
func float80(b []byte) float64 {
	sign := 1.0
	if b[0]&0x80 != 0 {
		sign = -1.0
	}
	exponent := int(binary.BigEndian.Uint16(b[0:2]) & 0x7fff)
	mantissa := binary.BigEndian.Uint64(b[2:10])
	if exponent == 0 && mantissa == 0 {
		return 0
	}
	return sign * float64(mantissa) * math.Pow(2, float64(exponent-16383-63))
}

func probeError(path, message string) error {
	return sfzerrors.NewProbe(path, message)
}
