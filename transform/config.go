package transform

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/hclsimple"

	"github.com/agentic-research/refract/lens"
	"github.com/agentic-research/refract/value"
)

// Config is a declarative set of transforms, decoded from HCL:
//
//	transform "hosts" {
//	  lens = "kv"
//	  filter { incl = "etc/hosts" }
//	  filter { excl = "*.bak" }
//	}
//
// Filter block order is the filter sequence order, so the last matching
// block decides applicability.
type Config struct {
	Transforms []TransformBlock `hcl:"transform,block"`
}

// TransformBlock is one transform declaration. Lens names are resolved by
// the lookup function handed to Build, typically a stock-lens catalog.
type TransformBlock struct {
	Name    string        `hcl:"name,label"`
	Lens    string        `hcl:"lens"`
	Filters []FilterBlock `hcl:"filter,block"`
}

// FilterBlock carries exactly one of incl or excl.
type FilterBlock struct {
	Incl *string `hcl:"incl,optional"`
	Excl *string `hcl:"excl,optional"`
}

// DecodeConfig parses HCL source. The filename selects the HCL syntax and
// feeds diagnostics.
func DecodeConfig(src []byte, filename string) (*Config, error) {
	var cfg Config
	if err := hclsimple.Decode(filename, src, nil, &cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filename, err)
	}
	return &cfg, nil
}

// Named pairs a declared transform with its block name.
type Named struct {
	Name      string
	Transform *Transform
}

// Build resolves a decoded config into transforms. lookup maps a lens name
// to a constructed lens; every declared transform goes through New, so
// key/value-leaving lenses are rejected here as well.
func Build(cfg *Config, lookup func(name string) (*lens.Lens, error)) ([]Named, error) {
	named := make([]Named, 0, len(cfg.Transforms))
	for _, tb := range cfg.Transforms {
		l, err := lookup(tb.Lens)
		if err != nil {
			return nil, fmt.Errorf("transform %s: %w", tb.Name, err)
		}
		filters := make([]*Filter, 0, len(tb.Filters))
		for i, fb := range tb.Filters {
			switch {
			case fb.Incl != nil && fb.Excl == nil:
				filters = append(filters, NewIncl(*fb.Incl))
			case fb.Excl != nil && fb.Incl == nil:
				filters = append(filters, NewExcl(*fb.Excl))
			default:
				return nil, fmt.Errorf("transform %s: filter %d must set exactly one of incl, excl", tb.Name, i)
			}
		}
		t, exn := New(value.BuiltinInfo, l, filters...)
		if exn != nil {
			return nil, fmt.Errorf("transform %s: %w", tb.Name, exn)
		}
		named = append(named, Named{Name: tb.Name, Transform: t})
	}
	return named, nil
}
