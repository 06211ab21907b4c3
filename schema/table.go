package schema

import (
	_ "embed"
	"fmt"
	"sort"
	"sync"
)

//go:embed syntax.yml
var builtinSyntax []byte

// Table is an immutable opcode-name to definition mapping.
// Lookups are by exact canonical name only; pattern generalization is the
// Resolver's job.
type Table struct {
	defs  map[string]*Definition
	names []string
}

// Lookup returns the definition for an exact canonical name.
func (t *Table) Lookup(name string) (*Definition, bool) {
	def, ok := t.defs[name]
	return def, ok
}

// Names returns all canonical names in sorted order.
func (t *Table) Names() []string {
	return t.names
}

// Len returns the number of definitions in the table.
func (t *Table) Len() int {
	return len(t.defs)
}

func newTable(defs map[string]*Definition) *Table {
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return &Table{defs: defs, names: names}
}

var (
	builtinOnce  sync.Once
	builtinTable *Table
)

// Builtin returns the table compiled from the embedded syntax source.
// The table is compiled once per process and shared.
func Builtin() *Table {
	builtinOnce.Do(func() {
		table, err := Compile(builtinSyntax)
		if err != nil {
			panic(fmt.Sprintf("schema: embedded syntax source is invalid: %v", err))
		}
		builtinTable = table
	})
	return builtinTable
}
