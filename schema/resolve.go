package schema

import (
	"log/slog"
	"regexp"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

var (
	velcurveName = regexp.MustCompile(`^amp_velcurve_\d+$`)
	eqBand       = regexp.MustCompile(`eq\d+_`)
	ccDigit      = regexp.MustCompile(`cc\d`)
)

// ccSubs are the recognized positions of an embedded CC number, tried in
// priority order: automation suffix, underscore-prefixed, then bare. The X
// marker form is used for automation-target definitions inside the
// equalizer-band family; the N marker form everywhere else.
var ccSubs = []struct {
	pattern *regexp.Regexp
	n, x    string
}{
	{regexp.MustCompile(`_oncc\d+`), "_onccN", "_onccX"},
	{regexp.MustCompile(`_cc\d+`), "_ccN", "_ccX"},
	{regexp.MustCompile(`cc\d+`), "ccN", "ccX"},
}

// Resolver maps concrete opcode names to canonical definitions,
// generalizing embedded numeric indices (CC numbers, equalizer band
// numbers, velocity-curve indices). Resolution is deterministic: exact
// match first, then the velocity-curve family, then the equalizer-band
// family, then generic CC substitution with bounded recursion.
type Resolver struct {
	table *Table
	log   *slog.Logger
}

// NewResolver creates a resolver over the given table. A nil logger falls
// back to slog.Default.
func NewResolver(table *Table, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{table: table, log: log}
}

// Table returns the resolver's definition table.
func (r *Resolver) Table() *Table {
	return r.table
}

// Resolve returns the definition matching name, generalizing numeric
// indices when no exact entry exists. Unknown names return (nil, false)
// after logging a diagnostic; they are expected for vendor-specific or
// newer-dialect opcodes and must not abort processing.
func (r *Resolver) Resolve(name string) (*Definition, bool) {
	if def, ok := r.table.Lookup(name); ok {
		return def, true
	}
	if def := r.generalize(name); def != nil {
		return def, true
	}
	attrs := []any{slog.String("opcode", name)}
	if suggestion := r.Suggest(name); suggestion != "" {
		attrs = append(attrs, slog.String("closest", suggestion))
	}
	r.log.Warn("unresolved opcode name", attrs...)
	return nil, false
}

func (r *Resolver) generalize(name string) *Definition {
	if velcurveName.MatchString(name) {
		if def, ok := r.table.Lookup("amp_velcurve_N"); ok {
			return def
		}
	}
	if eqBand.MatchString(name) {
		name = eqBand.ReplaceAllString(name, "eqN_")
		if def, ok := r.table.Lookup(name); ok {
			return def
		}
		if ccDigit.MatchString(name) {
			for _, sub := range ccSubs {
				candidate := sub.pattern.ReplaceAllString(name, sub.x)
				if candidate == name {
					continue
				}
				if def, ok := r.table.Lookup(candidate); ok {
					return def
				}
			}
		}
	}
	if ccDigit.MatchString(name) {
		for _, sub := range ccSubs {
			candidate := sub.pattern.ReplaceAllString(name, sub.n)
			if candidate == name {
				continue
			}
			if def, ok := r.table.Lookup(candidate); ok {
				return def
			}
			// Each substitution removes a digit run, so recursion is
			// bounded by the number of digit runs in the name.
			return r.generalize(candidate)
		}
	}
	return nil
}

// Suggest returns the closest known canonical name for an unresolved
// opcode, or the empty string when nothing ranks.
func (r *Resolver) Suggest(name string) string {
	ranks := fuzzy.RankFindFold(name, r.table.Names())
	if len(ranks) == 0 {
		return ""
	}
	sort.Slice(ranks, func(i, j int) bool { return ranks[i].Distance < ranks[j].Distance })
	return ranks[0].Target
}
