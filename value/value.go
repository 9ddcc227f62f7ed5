// Package value implements the tagged value model and the typed dispatch
// boundary between the surrounding language runtime and the native
// primitives. Every value carries an Info source location used only for
// diagnostics. Recoverable failures cross the boundary as Exn-tagged values;
// contract violations (wrong tag or arity at a native call) surface as
// *ContractError and never abort the process.
package value

import (
	"fmt"
	"regexp"
)

// Tag enumerates the runtime kinds a Value may hold.
type Tag int

const (
	TagString Tag = iota
	TagRegexp
	TagLens
	TagTree
	TagFilter
	TagTransform
	TagExn
)

func (t Tag) String() string {
	switch t {
	case TagString:
		return "string"
	case TagRegexp:
		return "regexp"
	case TagLens:
		return "lens"
	case TagTree:
		return "tree"
	case TagFilter:
		return "filter"
	case TagTransform:
		return "transform"
	case TagExn:
		return "exception"
	default:
		return fmt.Sprintf("tag(%d)", int(t))
	}
}

// Info is a source location attached to values and lens nodes. It is shared
// and never mutated after construction.
type Info struct {
	Filename  string
	FirstLine int
	LastLine  int
	FirstCol  int
	LastCol   int
}

// String renders the location as file:line.col-line.col, collapsing the
// range when it spans a single point.
func (i *Info) String() string {
	if i == nil {
		return "(unknown)"
	}
	name := i.Filename
	if name == "" {
		name = "(builtin)"
	}
	if i.FirstLine == i.LastLine && i.FirstCol == i.LastCol {
		return fmt.Sprintf("%s:%d.%d", name, i.FirstLine, i.FirstCol)
	}
	return fmt.Sprintf("%s:%d.%d-%d.%d", name, i.FirstLine, i.FirstCol, i.LastLine, i.LastCol)
}

// BuiltinInfo is the shared location for values created by native code
// rather than user input.
var BuiltinInfo = &Info{Filename: "", FirstLine: 0, LastLine: 0}

// Value is the universal carrier crossing the native-call boundary. Tag
// determines the dynamic type of Data:
//
//	TagString    string
//	TagRegexp    *regexp.Regexp
//	TagLens      *lens.Lens
//	TagTree      *tree.Tree
//	TagFilter    *transform.Filter
//	TagTransform *transform.Transform
//	TagExn       *diag.Exn
//
// Values are immutable except trees, which the editing primitives mutate
// under exclusive ownership (see the tree package).
type Value struct {
	Tag  Tag
	Data any
	Info *Info
}

// Str wraps a string value.
func Str(s string, info *Info) Value {
	return Value{Tag: TagString, Data: s, Info: info}
}

// Rx wraps a compiled regular expression.
func Rx(re *regexp.Regexp, info *Info) Value {
	return Value{Tag: TagRegexp, Data: re, Info: info}
}

// Wrap boxes an arbitrary payload under the given tag. Callers are expected
// to pass the payload type the tag documents; the dispatch layer checks tags,
// not payload types.
func Wrap(tag Tag, data any, info *Info) Value {
	return Value{Tag: tag, Data: data, Info: info}
}

// AsStr returns the string payload, or false if the value is not a string.
func (v Value) AsStr() (string, bool) {
	if v.Tag != TagString {
		return "", false
	}
	return v.Data.(string), true
}

// AsRegexp returns the regexp payload, or false if the value is not a regexp.
func (v Value) AsRegexp() (*regexp.Regexp, bool) {
	if v.Tag != TagRegexp {
		return nil, false
	}
	return v.Data.(*regexp.Regexp), true
}

// IsExn reports whether the value carries an exception.
func (v Value) IsExn() bool { return v.Tag == TagExn }

func (v Value) String() string {
	switch v.Tag {
	case TagString:
		return fmt.Sprintf("%q", v.Data.(string))
	case TagRegexp:
		return fmt.Sprintf("/%s/", v.Data.(*regexp.Regexp).String())
	default:
		return "<" + v.Tag.String() + ">"
	}
}
