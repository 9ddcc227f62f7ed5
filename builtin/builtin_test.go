package builtin

import (
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/refract/diag"
	"github.com/agentic-research/refract/lens"
	"github.com/agentic-research/refract/tree"
	"github.com/agentic-research/refract/value"
)

func newRegistry(t *testing.T) *value.Registry {
	t.Helper()
	r, err := NewRegistry()
	require.NoError(t, err)
	return r
}

func call(t *testing.T, r *value.Registry, name string, args ...value.Value) value.Value {
	t.Helper()
	v, err := r.Call(name, value.BuiltinInfo, args...)
	require.NoError(t, err, "call %s", name)
	return v
}

func str(s string) value.Value { return value.Str(s, value.BuiltinInfo) }

func rx(t *testing.T, pattern string) value.Value {
	t.Helper()
	return value.Rx(regexp.MustCompile(pattern), value.BuiltinInfo)
}

func TestNewRegistry_Table(t *testing.T) {
	r := newRegistry(t)
	want := []string{
		"counter", "del", "excl", "gensym", "get", "incl", "insa", "insb",
		"key", "label", "put", "rm", "seq", "set", "store", "transform",
	}
	assert.Equal(t, want, r.Names())
}

func TestGensym(t *testing.T) {
	r := newRegistry(t)
	a := call(t, r, "gensym", str("var"))
	b := call(t, r, "gensym", str("var"))
	as, _ := a.AsStr()
	bs, _ := b.AsStr()
	assert.NotEqual(t, as, bs)
	assert.Contains(t, as, "var")

	// A fresh registry owns a fresh counter.
	r2 := newRegistry(t)
	c := call(t, r2, "gensym", str("var"))
	cs, _ := c.AsStr()
	assert.Equal(t, as, cs)
}

func TestLensConstructors(t *testing.T) {
	r := newRegistry(t)

	v := call(t, r, "del", rx(t, `[ \t]+`), str(" "))
	require.Equal(t, value.TagLens, v.Tag)
	assert.Equal(t, lens.KDel, v.Data.(*lens.Lens).Kind)

	v = call(t, r, "store", rx(t, `\w+`))
	assert.Equal(t, lens.KStore, v.Data.(*lens.Lens).Kind)

	v = call(t, r, "key", rx(t, `\w+`))
	assert.Equal(t, lens.KKey, v.Data.(*lens.Lens).Kind)

	v = call(t, r, "label", str("entry"))
	assert.Equal(t, lens.KLabel, v.Data.(*lens.Lens).Kind)

	v = call(t, r, "seq", str("n"))
	assert.Equal(t, lens.KSeq, v.Data.(*lens.Lens).Kind)

	v = call(t, r, "counter", str("n"))
	assert.Equal(t, lens.KCounter, v.Data.(*lens.Lens).Kind)
}

// kvLensValue assembles a key/value line lens from values built through the
// registry's own constructors.
func kvLensValue(t *testing.T, r *value.Registry) value.Value {
	key := call(t, r, "key", rx(t, `[A-Za-z_][A-Za-z0-9._-]*`))
	sep := call(t, r, "del", rx(t, `[ \t]*=[ \t]*`), str(" = "))
	store := call(t, r, "store", rx(t, `[^\n]*`))
	eol := call(t, r, "del", rx(t, `\n`), str("\n"))

	in := value.BuiltinInfo
	l := lens.Star(in, lens.Subtree(in, lens.Concat(in,
		key.Data.(*lens.Lens),
		sep.Data.(*lens.Lens),
		store.Data.(*lens.Lens),
		eol.Data.(*lens.Lens),
	)))
	return value.Wrap(value.TagLens, l, in)
}

func TestGetSetPut(t *testing.T) {
	r := newRegistry(t)
	lv := kvLensValue(t, r)
	original := "a = 1\nb=2\n"

	tv := call(t, r, "get", lv, str(original))
	require.Equal(t, value.TagTree, tv.Tag)

	tv = call(t, r, "set", str("b"), str("42"), tv)
	require.Equal(t, value.TagTree, tv.Tag)

	out := call(t, r, "put", lv, tv, str(original))
	s, ok := out.AsStr()
	require.True(t, ok)
	assert.Equal(t, "a = 1\nb=42\n", s)
}

func TestGet_FailureIsExnValue(t *testing.T) {
	r := newRegistry(t)
	lv := kvLensValue(t, r)

	v := call(t, r, "get", lv, str("no newline"))
	require.True(t, v.IsExn())
	x := v.Data.(*diag.Exn)
	assert.True(t, errors.Is(x, diag.ErrLens))
	assert.Contains(t, x.Error(), "characters into string")
}

func TestSet_FailureIsExnValue(t *testing.T) {
	r := newRegistry(t)
	tr := tree.New()
	tr.Append(tree.Node("x"))
	tr.Append(tree.Node("x"))
	tv := value.Wrap(value.TagTree, tr, value.BuiltinInfo)

	v := call(t, r, "set", str("x"), str("1"), tv)
	require.True(t, v.IsExn())
	assert.Contains(t, v.Data.(*diag.Exn).Error(), "Tree set of x")
}

func TestInsaInsb(t *testing.T) {
	r := newRegistry(t)
	tr := tree.New()
	tr.Append(tree.Node("A"))
	tr.Append(tree.Node("B"))
	tv := value.Wrap(value.TagTree, tr, value.BuiltinInfo)

	tv = call(t, r, "insb", str("X"), str("B"), tv)
	require.Equal(t, value.TagTree, tv.Tag)
	tv = call(t, r, "insa", str("Y"), str("B"), tv)
	require.Equal(t, value.TagTree, tv.Tag)

	got := tv.Data.(*tree.Tree)
	labels := make([]string, len(got.Children))
	for i, c := range got.Children {
		labels[i] = c.Label
	}
	assert.Equal(t, []string{"A", "X", "B", "Y"}, labels)
}

func TestRm(t *testing.T) {
	r := newRegistry(t)
	tr := tree.New()
	tr.Append(tree.ValueNode("a", "1"))
	tr.Append(tree.ValueNode("b", "2"))
	tv := value.Wrap(value.TagTree, tr, value.BuiltinInfo)

	tv = call(t, r, "rm", str("a"), tv)
	require.Equal(t, value.TagTree, tv.Tag)
	assert.Len(t, tv.Data.(*tree.Tree).Children, 1)

	v := call(t, r, "rm", str("missing"), tv)
	require.True(t, v.IsExn())
}

func TestFiltersAndTransform(t *testing.T) {
	r := newRegistry(t)
	fv := call(t, r, "incl", str("*.conf"))
	require.Equal(t, value.TagFilter, fv.Tag)

	lv := kvLensValue(t, r)
	tv := call(t, r, "transform", lv, fv)
	require.Equal(t, value.TagTransform, tv.Tag)

	ev := call(t, r, "excl", str("*.bak"))
	require.Equal(t, value.TagFilter, ev.Tag)
}

func TestTransform_LeakyLensIsExn(t *testing.T) {
	r := newRegistry(t)
	kv := call(t, r, "key", rx(t, `\w+`))
	fv := call(t, r, "incl", str("*"))

	v := call(t, r, "transform", kv, fv)
	require.True(t, v.IsExn())
	assert.Contains(t, v.Data.(*diag.Exn).Error(), "leaves a key behind")
}

func TestCall_ContractViolations(t *testing.T) {
	r := newRegistry(t)

	_, err := r.Call("gensym", value.BuiltinInfo, rx(t, `x`))
	var ce *value.ContractError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "gensym", ce.Native)
	assert.Equal(t, 0, ce.Index)

	_, err = r.Call("gensym", value.BuiltinInfo)
	require.ErrorAs(t, err, &ce)

	_, err = r.Call("no-such-native", value.BuiltinInfo)
	require.ErrorAs(t, err, &ce)

	// A correctly tagged value with a wrong payload type is still caught.
	bogus := value.Wrap(value.TagRegexp, 42, value.BuiltinInfo)
	_, err = r.Call("store", value.BuiltinInfo, bogus)
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, ce.Error(), "regexp value holds int")
}
