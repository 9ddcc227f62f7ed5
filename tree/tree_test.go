package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// kvTree builds the forest {a=1, b=2, b=3} under a fresh handle.
func kvTree(t *testing.T) *Tree {
	t.Helper()
	tr := New()
	tr.Append(ValueNode("a", "1"))
	tr.Append(ValueNode("b", "2"))
	tr.Append(ValueNode("b", "3"))
	return tr
}

func TestGet_ByLabel(t *testing.T) {
	tr := kvTree(t)
	nodes, err := tr.Get("b")
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, "2", nodes[0].Value)
	assert.Equal(t, "3", nodes[1].Value)
}

func TestGet_Indexed(t *testing.T) {
	tr := kvTree(t)
	nodes, err := tr.Get("b[2]")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "3", nodes[0].Value)
}

func TestGet_Wildcard(t *testing.T) {
	tr := kvTree(t)
	nodes, err := tr.Get("/*")
	require.NoError(t, err)
	assert.Len(t, nodes, 3)
}

func TestGet_Nested(t *testing.T) {
	tr := New()
	sec := tr.Append(Node("section"))
	sec.Append(ValueNode("opt", "x"))
	nodes, err := tr.Get("/section/opt")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "x", nodes[0].Value)
}

func TestGet_NoMatch(t *testing.T) {
	tr := kvTree(t)
	nodes, err := tr.Get("missing")
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestGet_SyntaxErrors(t *testing.T) {
	tr := kvTree(t)
	for _, path := range []string{"", "/", "a//b", "a[", "a[0]", "a[x]", "[1]"} {
		_, err := tr.Get(path)
		assert.Error(t, err, "path %q", path)
	}
}

func TestPath_RoundTrip(t *testing.T) {
	tr := kvTree(t)
	nodes, err := tr.Get("b[2]")
	require.NoError(t, err)
	assert.Equal(t, "/b[2]", tr.Path(nodes[0]))

	nodes, err = tr.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "/a", tr.Path(nodes[0]))
}

func TestPath_Detached(t *testing.T) {
	tr := kvTree(t)
	assert.Equal(t, "", tr.Path(Node("stranger")))
}

func TestClone_Independent(t *testing.T) {
	tr := kvTree(t)
	cp := tr.Clone()
	require.True(t, tr.Equal(cp))

	_, err := tr.Set("a", "changed")
	require.NoError(t, err)
	nodes, err := cp.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "1", nodes[0].Value, "clone must not observe mutation")
}

func TestEqual(t *testing.T) {
	assert.True(t, kvTree(t).Equal(kvTree(t)))

	other := kvTree(t)
	other.Children[0].SetValue("9")
	assert.False(t, kvTree(t).Equal(other))
}

func TestSize(t *testing.T) {
	tr := kvTree(t)
	// Handle node plus three children.
	assert.Equal(t, 4, tr.Size())
}
