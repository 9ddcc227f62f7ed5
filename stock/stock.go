// Package stock assembles a small catalog of ready-made lenses from the
// primitives. The catalog backs the CLI, the HCL transform config, and the
// round-trip tests; it is not a lens-language compiler.
package stock

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/agentic-research/refract/lens"
	"github.com/agentic-research/refract/value"
)

var (
	rxKey     = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9._-]*`)
	rxSep     = regexp.MustCompile(`[ \t]*=[ \t]*`)
	rxToEOL   = regexp.MustCompile(`[^\n]*`)
	rxEOL     = regexp.MustCompile(`\n`)
	rxComment = regexp.MustCompile(`#[ \t]*`)
	rxBlank   = regexp.MustCompile(`[ \t]*\n`)
)

func info(name string) *value.Info {
	return &value.Info{Filename: "stock/" + name}
}

// KeyValue returns a lens for files of `key = value` lines. Comment lines
// become "#comment" nodes carrying the comment text; blank lines are
// skeleton only. Separator spacing and comments survive a round trip
// untouched.
func KeyValue() *lens.Lens {
	in := info("kv")
	entry := lens.Subtree(in, lens.Concat(in,
		lens.Key(in, rxKey),
		lens.Del(in, rxSep, " = "),
		lens.Store(in, rxToEOL),
		lens.Del(in, rxEOL, "\n"),
	))
	comment := lens.Subtree(in, lens.Concat(in,
		lens.Label(in, "#comment"),
		lens.Del(in, rxComment, "# "),
		lens.Store(in, rxToEOL),
		lens.Del(in, rxEOL, "\n"),
	))
	blank := lens.Del(in, rxBlank, "\n")
	return lens.Star(in, lens.Union(in, entry, comment, blank))
}

// Lines returns a lens that numbers every line of the input with a
// sequence counter, storing the line text as the node value.
func Lines() *lens.Lens {
	in := info("lines")
	line := lens.Subtree(in, lens.Concat(in,
		lens.Seq(in, "lines"),
		lens.Store(in, rxToEOL),
		lens.Del(in, rxEOL, "\n"),
	))
	return lens.Concat(in, lens.Counter(in, "lines"), lens.Star(in, line))
}

var catalog = map[string]func() *lens.Lens{
	"kv":    KeyValue,
	"lines": Lines,
}

// Lookup returns the named stock lens.
func Lookup(name string) (*lens.Lens, error) {
	build, ok := catalog[name]
	if !ok {
		return nil, fmt.Errorf("unknown stock lens %q (have %v)", name, Names())
	}
	return build(), nil
}

// Names lists the catalog in sorted order.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
