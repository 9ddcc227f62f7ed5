// Package transform associates lenses with file-path filters and applies
// them to batches of files behind a billy.Filesystem.
package transform

import (
	"path"
	"strings"

	"github.com/agentic-research/refract/diag"
	"github.com/agentic-research/refract/lens"
	"github.com/agentic-research/refract/value"
)

// Filter is an inclusion or exclusion pattern for candidate file paths.
// Patterns are shell globs; a pattern without a separator matches the base
// name of the candidate path.
type Filter struct {
	Pattern string
	Include bool
}

// NewIncl builds an inclusion filter.
func NewIncl(pattern string) *Filter {
	return &Filter{Pattern: pattern, Include: true}
}

// NewExcl builds an exclusion filter.
func NewExcl(pattern string) *Filter {
	return &Filter{Pattern: pattern, Include: false}
}

// Matches reports whether the filter's pattern matches the candidate path.
func (f *Filter) Matches(candidate string) bool {
	p := f.Pattern
	target := candidate
	if !strings.ContainsRune(p, '/') {
		target = path.Base(candidate)
	}
	ok, err := path.Match(p, target)
	return err == nil && ok
}

// Transform pairs a lens with an ordered filter sequence. The polarity of
// the last matching filter decides whether the lens applies to a path.
type Transform struct {
	Lens    *lens.Lens
	Filters []*Filter
}

// New builds a Transform. A lens that leaves a key or value behind cannot
// be applied at file granularity, because the tree it produces would not be
// self-describing; construction fails with a diagnostic naming the
// offending property.
func New(info *value.Info, l *lens.Lens, filters ...*Filter) (*Transform, *diag.Exn) {
	if l.LeavesKey || l.LeavesValue {
		offender := "value"
		if l.LeavesKey {
			offender = "key"
		}
		return nil, diag.New(diag.ErrTransform,
			"Can not build a transform from a lens that leaves a %s behind", offender).
			Add(diag.LensLocation{Info: l.Info})
	}
	return &Transform{Lens: l, Filters: filters}, nil
}

// Matches reports whether the transform's lens applies to the candidate
// path: the last filter in sequence order that matches decides, and a path
// no filter matches is not applicable.
func (t *Transform) Matches(candidate string) bool {
	applies := false
	matched := false
	for _, f := range t.Filters {
		if f.Matches(candidate) {
			applies = f.Include
			matched = true
		}
	}
	return matched && applies
}
