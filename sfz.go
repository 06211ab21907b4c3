// Package sfzkit models SFZ instrument-description documents: the header
// hierarchy with its containment and inheritance rules, opcode-to-schema
// matching for parametrized opcode families, canonical opcode ordering,
// and textual re-emission. Documents are built once from scanned source
// and are safe for concurrent reads thereafter; the only mutation path is
// Header.SetOpcode, which requires external serialization against readers.
package sfzkit

import (
	"fmt"
	"io"
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sfzkit/sfzkit/internal/lex"
	"github.com/sfzkit/sfzkit/schema"
)

// SFZ is the root of a parsed instrument document. It lists the top-level
// headers and document-level modifiers; it is not itself a header and owns
// no opcodes.
type SFZ struct {
	path      string
	dir       string
	headers   []*Header
	modifiers []Modifier
	resolver  *schema.Resolver
}

// LoadOptions configures document loading.
type LoadOptions struct {
	// Table overrides the opcode definition table; nil uses the builtin
	// table compiled from the embedded syntax source.
	Table *schema.Table
	// Logger receives diagnostics such as unresolved opcode names; nil
	// uses slog.Default.
	Logger *slog.Logger
}

// LoadFile parses the instrument at path.
func LoadFile(path string) (*SFZ, error) {
	return LoadFileWithOptions(path, LoadOptions{})
}

// LoadFileWithOptions parses the instrument at path with explicit
// configuration.
func LoadFileWithOptions(path string, opts LoadOptions) (*SFZ, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sfz %s: %w", path, err)
	}
	defer f.Close()
	return ParseWithOptions(f, path, opts)
}

// Load parses the instrument at location inside fsys. The document's base
// directory for sample resolution is location's directory within fsys.
func Load(fsys fs.FS, location string) (*SFZ, error) {
	f, err := fsys.Open(location)
	if err != nil {
		return nil, fmt.Errorf("open sfz %s: %w", location, err)
	}
	defer f.Close()
	return ParseWithOptions(f, location, LoadOptions{})
}

// Parse builds a document from SFZ source text. path is recorded as the
// document identity and base directory; it may be empty for synthetic
// documents.
func Parse(r io.Reader, path string) (*SFZ, error) {
	return ParseWithOptions(r, path, LoadOptions{})
}

// ParseWithOptions builds a document from SFZ source text with explicit
// configuration.
func ParseWithOptions(r io.Reader, path string, opts LoadOptions) (*SFZ, error) {
	nodes, err := lex.Scan(r, path)
	if err != nil {
		return nil, fmt.Errorf("parse sfz %s: %w", path, err)
	}
	doc, err := Build(path, nodes, opts)
	if err != nil {
		return nil, fmt.Errorf("parse sfz %s: %w", path, err)
	}
	return doc, nil
}

// Path returns the source path the document was loaded from, or the empty
// string for programmatically constructed documents.
func (s *SFZ) Path() string { return s.path }

// Headers returns the top-level headers in source order.
func (s *SFZ) Headers() []*Header { return s.headers }

// Modifiers returns the document-level directives in source order.
func (s *SFZ) Modifiers() []Modifier { return s.modifiers }

// Resolver returns the opcode name resolver the document was built with.
func (s *SFZ) Resolver() *schema.Resolver { return s.resolver }

// Regions yields every Region header in the document in depth-first
// pre-order. Each call starts a fresh traversal.
func (s *SFZ) Regions() iter.Seq[*Header] {
	return func(yield func(*Header) bool) {
		for _, header := range s.headers {
			if header.kind == KindRegion {
				if !yield(header) {
					return
				}
			}
			if !header.yieldRegions(yield) {
				return
			}
		}
	}
}

// Samples yields each distinct sample opcode in effect for the document's
// regions, inherited definitions included once.
func (s *SFZ) Samples() iter.Seq[*Opcode] {
	return func(yield func(*Opcode) bool) {
		seen := make(map[*Opcode]struct{})
		for region := range s.Regions() {
			op := region.Opcode("sample")
			if op == nil {
				continue
			}
			if _, dup := seen[op]; dup {
				continue
			}
			seen[op] = struct{}{}
			if !yield(op) {
				return
			}
		}
	}
}

// OpcodesUsed returns the set of opcode names used anywhere in the
// document.
func (s *SFZ) OpcodesUsed() map[string]struct{} {
	used := make(map[string]struct{})
	for _, header := range s.headers {
		header.collectUsed(used)
	}
	return used
}

// Save writes the document to path in SFZ text form.
func (s *SFZ) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save sfz %s: %w", path, err)
	}
	if _, err := s.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("save sfz %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("save sfz %s: %w", path, err)
	}
	return nil
}

func (s *SFZ) baseDir() string {
	return s.dir
}

func (s *SFZ) resolverOrNil() *schema.Resolver {
	return s.resolver
}

func dirOf(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Dir(path)
}
