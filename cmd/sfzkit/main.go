// Command sfzkit inspects and transforms SFZ instrument definitions.
package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sfzkit/sfzkit"
	"github.com/sfzkit/sfzkit/internal/resample"
)

var version = "0.1.0-dev"

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:           "sfzkit",
		Short:         "Inspect and transform SFZ instrument definitions",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.AddCommand(
		newOpcodesCmd(stdout),
		newCheckCmd(stdout),
		newResampleCmd(stdout),
		newFmtCmd(stdout),
	)
	return root
}

// collectFiles expands the argument list into .sfz file paths. Directory
// arguments are walked when recurse is set and rejected otherwise.
func collectFiles(args []string, recurse bool) ([]string, error) {
	var files []string
	for _, arg := range args {
		fi, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !fi.IsDir() {
			files = append(files, arg)
			continue
		}
		if !recurse {
			return nil, fmt.Errorf("%s is a directory (use --recurse)", arg)
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".sfz") {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no sfz files to process")
	}
	return files, nil
}

func newOpcodesCmd(stdout io.Writer) *cobra.Command {
	var recurse bool
	cmd := &cobra.Command{
		Use:   "opcodes <file|dir>...",
		Short: "List the opcodes used across instruments, in canonical order",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := collectFiles(args, recurse)
			if err != nil {
				return err
			}
			used := make(map[string]struct{})
			for _, file := range files {
				doc, err := sfzkit.LoadFile(file)
				if err != nil {
					return err
				}
				for name := range doc.OpcodesUsed() {
					used[name] = struct{}{}
				}
			}
			names := make([]string, 0, len(used))
			for name := range used {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range sfzkit.OrderedNames(names) {
				fmt.Fprintln(stdout, name)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&recurse, "recurse", "r", false, "descend into directories")
	return cmd
}

func newCheckCmd(stdout io.Writer) *cobra.Command {
	var recurse bool
	target := targetFlags{}
	cmd := &cobra.Command{
		Use:   "check <file|dir>...",
		Short: "Audit sample files against a target encoding",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := collectFiles(args, recurse)
			if err != nil {
				return err
			}
			mismatches := 0
			for _, file := range files {
				doc, err := sfzkit.LoadFile(file)
				if err != nil {
					return err
				}
				jobs, err := resample.New(doc, target.target(), nil, slog.Default()).Plan()
				if err != nil {
					return err
				}
				for _, job := range jobs {
					mismatches++
					fmt.Fprintf(stdout, "%s: %s is %s\n", file, job.Path, job.Info)
				}
			}
			if mismatches > 0 {
				return fmt.Errorf("%d samples do not match %s", mismatches, target.target())
			}
			fmt.Fprintln(stdout, "all samples match")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&recurse, "recurse", "r", false, "descend into directories")
	target.register(cmd)
	return cmd
}

func newResampleCmd(stdout io.Writer) *cobra.Command {
	var outDir, outFile string
	target := targetFlags{}
	cmd := &cobra.Command{
		Use:   "resample <file>",
		Short: "Convert mismatching samples and rewrite the instrument",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := args[0]
			doc, err := sfzkit.LoadFile(file)
			if err != nil {
				return err
			}
			dir := outDir
			if dir == "" {
				dir = filepath.Dir(file)
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
			r := resample.New(doc, target.target(), nil, slog.Default())
			if err := r.Apply(context.Background(), dir); err != nil {
				return err
			}
			out := outFile
			if out == "" {
				out = file
			}
			if err := doc.Save(out); err != nil {
				return err
			}
			fmt.Fprintln(stdout, "wrote", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "samples-dir", "", "directory for converted samples (default: alongside the instrument)")
	cmd.Flags().StringVarP(&outFile, "output", "o", "", "output instrument path (default: rewrite in place)")
	target.register(cmd)
	return cmd
}

func newFmtCmd(stdout io.Writer) *cobra.Command {
	var write, recurse bool
	cmd := &cobra.Command{
		Use:   "fmt <file|dir>...",
		Short: "Re-emit instruments with opcodes in canonical order",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := collectFiles(args, recurse)
			if err != nil {
				return err
			}
			for _, file := range files {
				doc, err := sfzkit.LoadFile(file)
				if err != nil {
					return err
				}
				if !write {
					if _, err := doc.WriteCanonicalTo(stdout); err != nil {
						return err
					}
					continue
				}
				if err := writeCanonicalFile(doc, file); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "rewrite files in place instead of printing")
	cmd.Flags().BoolVarP(&recurse, "recurse", "r", false, "descend into directories")
	return cmd
}

func writeCanonicalFile(doc *sfzkit.SFZ, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := doc.WriteCanonicalTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// targetFlags binds the sample encoding flags shared by check and
// resample.
type targetFlags struct {
	rate, channels, bits int
}

func (t *targetFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&t.rate, "rate", 44100, "target sample rate in Hz (0 leaves rates as found)")
	cmd.Flags().IntVar(&t.channels, "channels", 0, "target channel count (0 leaves channels as found)")
	cmd.Flags().IntVar(&t.bits, "bits", 0, "target bit depth (0 leaves depth as found)")
}

func (t *targetFlags) target() resample.Target {
	return resample.Target{Rate: t.rate, Channels: t.channels, BitDepth: t.bits}
}
