// Package builtin registers the native primitives with a value.Registry,
// defining the complete call surface the surrounding language runtime
// dispatches through: lens constructors, get/put, the tree editing
// primitives, filters/transforms and gensym.
package builtin

import (
	"fmt"
	"regexp"

	"github.com/agentic-research/refract/diag"
	"github.com/agentic-research/refract/lens"
	"github.com/agentic-research/refract/transform"
	"github.com/agentic-research/refract/tree"
	"github.com/agentic-research/refract/value"
)

func strArg(name string, v value.Value) (string, error) {
	s, ok := v.Data.(string)
	if !ok {
		return "", &value.ContractError{Native: name, Index: -1,
			Reason: fmt.Sprintf("string value holds %T", v.Data)}
	}
	return s, nil
}

func rxArg(name string, v value.Value) (*regexp.Regexp, error) {
	rx, ok := v.Data.(*regexp.Regexp)
	if !ok {
		return nil, &value.ContractError{Native: name, Index: -1,
			Reason: fmt.Sprintf("regexp value holds %T", v.Data)}
	}
	return rx, nil
}

func lensArg(name string, v value.Value) (*lens.Lens, error) {
	l, ok := v.Data.(*lens.Lens)
	if !ok {
		return nil, &value.ContractError{Native: name, Index: -1,
			Reason: fmt.Sprintf("lens value holds %T", v.Data)}
	}
	return l, nil
}

func treeArg(name string, v value.Value) (*tree.Tree, error) {
	t, ok := v.Data.(*tree.Tree)
	if !ok {
		return nil, &value.ContractError{Native: name, Index: -1,
			Reason: fmt.Sprintf("tree value holds %T", v.Data)}
	}
	return t, nil
}

func filterArg(name string, v value.Value) (*transform.Filter, error) {
	f, ok := v.Data.(*transform.Filter)
	if !ok {
		return nil, &value.ContractError{Native: name, Index: -1,
			Reason: fmt.Sprintf("filter value holds %T", v.Data)}
	}
	return f, nil
}

func exnVal(info *value.Info, x *diag.Exn) value.Value {
	return value.Wrap(value.TagExn, x, info)
}

// treeEdit wraps an editing primitive's outcome: the mutated tree on
// success, the diagnostic value on failure.
func treeEdit(info *value.Info, t *tree.Tree, err error) (value.Value, error) {
	if err != nil {
		x, ok := err.(*diag.Exn)
		if !ok {
			x = diag.New(diag.ErrTree, "%s", err)
		}
		return exnVal(info, x), nil
	}
	return value.Wrap(value.TagTree, t, info), nil
}

// lensCtor adapts a primitive lens constructor that takes a regex.
func lensCtor(name string, build func(*value.Info, *regexp.Regexp) *lens.Lens) *value.Native {
	return &value.Native{
		Name:   name,
		Params: []value.Tag{value.TagRegexp},
		Result: value.TagLens,
		Impl: func(info *value.Info, args []value.Value) (value.Value, error) {
			rx, err := rxArg(name, args[0])
			if err != nil {
				return value.Value{}, err
			}
			return value.Wrap(value.TagLens, build(info, rx), info), nil
		},
	}
}

// lensStrCtor adapts a primitive lens constructor that takes a string.
func lensStrCtor(name string, build func(*value.Info, string) *lens.Lens) *value.Native {
	return &value.Native{
		Name:   name,
		Params: []value.Tag{value.TagString},
		Result: value.TagLens,
		Impl: func(info *value.Info, args []value.Value) (value.Value, error) {
			s, err := strArg(name, args[0])
			if err != nil {
				return value.Value{}, err
			}
			return value.Wrap(value.TagLens, build(info, s), info), nil
		},
	}
}

// NewRegistry builds the full native table. The symbol generator is owned
// by the returned registry's gensym closure, so two registries never share
// counter state.
func NewRegistry() (*value.Registry, error) {
	r := value.NewRegistry()
	syms := value.NewSymbols()

	natives := []*value.Native{
		{
			Name:   "gensym",
			Params: []value.Tag{value.TagString},
			Result: value.TagString,
			Impl: func(info *value.Info, args []value.Value) (value.Value, error) {
				prefix, err := strArg("gensym", args[0])
				if err != nil {
					return value.Value{}, err
				}
				return value.Str(syms.Next(prefix), info), nil
			},
		},
		// Primitive lenses
		{
			Name:   "del",
			Params: []value.Tag{value.TagRegexp, value.TagString},
			Result: value.TagLens,
			Impl: func(info *value.Info, args []value.Value) (value.Value, error) {
				rx, err := rxArg("del", args[0])
				if err != nil {
					return value.Value{}, err
				}
				dflt, err := strArg("del", args[1])
				if err != nil {
					return value.Value{}, err
				}
				return value.Wrap(value.TagLens, lens.Del(info, rx, dflt), info), nil
			},
		},
		lensCtor("store", lens.Store),
		lensCtor("key", lens.Key),
		lensStrCtor("label", lens.Label),
		lensStrCtor("seq", lens.Seq),
		lensStrCtor("counter", lens.Counter),
		// Applying lenses
		{
			Name:   "get",
			Params: []value.Tag{value.TagLens, value.TagString},
			Result: value.TagTree,
			Impl: func(info *value.Info, args []value.Value) (value.Value, error) {
				l, err := lensArg("get", args[0])
				if err != nil {
					return value.Value{}, err
				}
				text, err := strArg("get", args[1])
				if err != nil {
					return value.Value{}, err
				}
				tr, lerr := lens.Get(l, text)
				if lerr != nil {
					return exnVal(info, lerr.Exn(text)), nil
				}
				return value.Wrap(value.TagTree, tr, info), nil
			},
		},
		{
			Name:   "put",
			Params: []value.Tag{value.TagLens, value.TagTree, value.TagString},
			Result: value.TagString,
			Impl: func(info *value.Info, args []value.Value) (value.Value, error) {
				l, err := lensArg("put", args[0])
				if err != nil {
					return value.Value{}, err
				}
				tr, err := treeArg("put", args[1])
				if err != nil {
					return value.Value{}, err
				}
				original, err := strArg("put", args[2])
				if err != nil {
					return value.Value{}, err
				}
				text, lerr := lens.Put(l, tr, original)
				if lerr != nil {
					return exnVal(info, lerr.Exn(original)), nil
				}
				return value.Str(text, info), nil
			},
		},
		// Tree editing
		{
			Name:   "set",
			Params: []value.Tag{value.TagString, value.TagString, value.TagTree},
			Result: value.TagTree,
			Impl: func(info *value.Info, args []value.Value) (value.Value, error) {
				path, err := strArg("set", args[0])
				if err != nil {
					return value.Value{}, err
				}
				val, err := strArg("set", args[1])
				if err != nil {
					return value.Value{}, err
				}
				tr, err := treeArg("set", args[2])
				if err != nil {
					return value.Value{}, err
				}
				edited, serr := tr.Set(path, val)
				return treeEdit(info, edited, serr)
			},
		},
		{
			Name:   "rm",
			Params: []value.Tag{value.TagString, value.TagTree},
			Result: value.TagTree,
			Impl: func(info *value.Info, args []value.Value) (value.Value, error) {
				path, err := strArg("rm", args[0])
				if err != nil {
					return value.Value{}, err
				}
				tr, err := treeArg("rm", args[1])
				if err != nil {
					return value.Value{}, err
				}
				edited, _, rerr := tr.Remove(path)
				return treeEdit(info, edited, rerr)
			},
		},
		insNative("insa", false),
		insNative("insb", true),
		// Filters and transforms
		{
			Name:   "incl",
			Params: []value.Tag{value.TagString},
			Result: value.TagFilter,
			Impl: func(info *value.Info, args []value.Value) (value.Value, error) {
				pattern, err := strArg("incl", args[0])
				if err != nil {
					return value.Value{}, err
				}
				return value.Wrap(value.TagFilter, transform.NewIncl(pattern), info), nil
			},
		},
		{
			Name:   "excl",
			Params: []value.Tag{value.TagString},
			Result: value.TagFilter,
			Impl: func(info *value.Info, args []value.Value) (value.Value, error) {
				pattern, err := strArg("excl", args[0])
				if err != nil {
					return value.Value{}, err
				}
				return value.Wrap(value.TagFilter, transform.NewExcl(pattern), info), nil
			},
		},
		{
			Name:   "transform",
			Params: []value.Tag{value.TagLens, value.TagFilter},
			Result: value.TagTransform,
			Impl: func(info *value.Info, args []value.Value) (value.Value, error) {
				l, err := lensArg("transform", args[0])
				if err != nil {
					return value.Value{}, err
				}
				f, err := filterArg("transform", args[1])
				if err != nil {
					return value.Value{}, err
				}
				t, exn := transform.New(info, l, f)
				if exn != nil {
					return exnVal(info, exn), nil
				}
				return value.Wrap(value.TagTransform, t, info), nil
			},
		},
	}

	for _, n := range natives {
		if err := r.Register(n); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// insNative builds the insert-before/insert-after natives, which differ
// only in the before flag.
func insNative(name string, before bool) *value.Native {
	return &value.Native{
		Name:   name,
		Params: []value.Tag{value.TagString, value.TagString, value.TagTree},
		Result: value.TagTree,
		Impl: func(info *value.Info, args []value.Value) (value.Value, error) {
			label, err := strArg(name, args[0])
			if err != nil {
				return value.Value{}, err
			}
			path, err := strArg(name, args[1])
			if err != nil {
				return value.Value{}, err
			}
			tr, err := treeArg(name, args[2])
			if err != nil {
				return value.Value{}, err
			}
			edited, ierr := tr.Insert(label, path, before)
			return treeEdit(info, edited, ierr)
		},
	}
}
