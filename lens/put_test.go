package lens

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/refract/tree"
)

func mustGet(t *testing.T, l *Lens, text string) *tree.Tree {
	t.Helper()
	tr, err := Get(l, text)
	require.Nil(t, err)
	return tr
}

func TestPut_RoundTripIdentity(t *testing.T) {
	l := kvLens()
	for _, text := range []string{
		"",
		"a = 1\n",
		"a = 1\nb=2\n# note\n\n",
		"key.sub-1 =\t value with spaces\n\n\n# trailing\n",
	} {
		tr := mustGet(t, l, text)
		out, err := Put(l, tr, text)
		require.Nil(t, err)
		assert.Equal(t, text, out)
	}
}

func TestPut_EditedValueKeepsSpans(t *testing.T) {
	l := kvLens()
	text := "a = 1\nb=2\n# note\n"
	tr := mustGet(t, l, text)
	_, terr := tr.Set("b", "42")
	require.NoError(t, terr)

	out, err := Put(l, tr, text)
	require.Nil(t, err)
	assert.Equal(t, "a = 1\nb=42\n# note\n", out, "only the edited value changes")
}

func TestPut_RemovedNodeElidesSpan(t *testing.T) {
	l := kvLens()
	text := "a = 1\nb=2\n# note\n"
	tr := mustGet(t, l, text)
	_, _, terr := tr.Remove("b")
	require.NoError(t, terr)

	out, err := Put(l, tr, text)
	require.Nil(t, err)
	assert.Equal(t, "a = 1\n# note\n", out, "the removed line vanishes, everything else is untouched")
}

func TestPut_RemovedNodeBeforeBlankLine(t *testing.T) {
	l := kvLens()
	text := "a = 1\n\nb = 2\n"
	tr := mustGet(t, l, text)
	_, _, terr := tr.Remove("a")
	require.NoError(t, terr)

	out, err := Put(l, tr, text)
	require.Nil(t, err)
	assert.Equal(t, "\nb = 2\n", out, "the blank line keeps its position ahead of b")
}

func TestPut_RemovedLastNodeKeepsTrailingBlank(t *testing.T) {
	l := kvLens()
	text := "a = 1\nb = 2\n\n"
	tr := mustGet(t, l, text)
	_, _, terr := tr.Remove("b")
	require.NoError(t, terr)

	out, err := Put(l, tr, text)
	require.Nil(t, err)
	assert.Equal(t, "a = 1\n\n", out, "the trailing blank line survives the removal")
}

func TestPut_RemovedLineInSequence(t *testing.T) {
	l := linesLens()
	text := "x\ny\nz\n"
	tr := mustGet(t, l, text)
	_, _, terr := tr.Remove("2")
	require.NoError(t, terr)

	out, err := Put(l, tr, text)
	require.Nil(t, err)
	assert.Equal(t, "x\nz\n", out)
}

func TestPut_AppendedNodeUsesDefaults(t *testing.T) {
	l := kvLens()
	text := "a = 1\n"
	tr := mustGet(t, l, text)
	_, terr := tr.Set("c", "9")
	require.NoError(t, terr)

	out, err := Put(l, tr, text)
	require.Nil(t, err)
	assert.Equal(t, "a = 1\nc = 9\n", out, "created nodes render with del defaults")
}

func TestPut_InsertedNodeKeepsSiblingSpans(t *testing.T) {
	l := kvLens()
	text := "a = 1\nb=2\n"
	tr := mustGet(t, l, text)
	_, terr := tr.Insert("c", "b", true)
	require.NoError(t, terr)
	_, terr = tr.Set("c", "x")
	require.NoError(t, terr)

	out, err := Put(l, tr, text)
	require.Nil(t, err)
	assert.Equal(t, "a = 1\nc = x\nb=2\n", out,
		"b keeps its original separator even though positions shifted")
}

func TestPut_CreateFromEmptyOriginal(t *testing.T) {
	l := kvLens()
	tr := tree.New()
	_, terr := tr.Set("host", "example")
	require.NoError(t, terr)

	out, err := Put(l, tr, "")
	require.Nil(t, err)
	assert.Equal(t, "host = example\n", out)
}

func TestPut_NodeWithoutValueFails(t *testing.T) {
	l := kvLens()
	tr := tree.New()
	tr.Append(tree.Node("orphan"))

	_, err := Put(l, tr, "")
	require.NotNil(t, err)
	assert.Equal(t, -1, err.Pos)
	assert.NotEmpty(t, err.Path)
}

func TestPut_BadLabelFails(t *testing.T) {
	l := kvLens()
	tr := tree.New()
	tr.Append(tree.ValueNode("bad key!", "v"))

	_, err := Put(l, tr, "")
	require.NotNil(t, err)
	assert.Equal(t, "/bad key!", err.Path)
}

func TestPut_LabelMismatch(t *testing.T) {
	l := Subtree(nil, Concat(nil, Label(nil, "x"), Store(nil, rxToEOL)))
	tr := tree.New()
	tr.Append(tree.ValueNode("y", "v"))

	_, err := Put(l, tr, "")
	require.NotNil(t, err)
	assert.Contains(t, err.Msg, "Label")
	assert.Equal(t, "/y", err.Path)
}

func TestPut_OriginalDoesNotParse(t *testing.T) {
	l := kvLens()
	tr := tree.New()

	_, err := Put(l, tr, "no separator here")
	require.NotNil(t, err)
	assert.Contains(t, err.Msg, "Failed to parse the original text")
	assert.Equal(t, "/", err.Path)
	assert.Equal(t, -1, err.Pos)
}

func TestPut_WrappedRootRequiresSingleNode(t *testing.T) {
	l := Concat(nil, Key(nil, rxKey), Del(nil, rxSep, " = "), Store(nil, rxToEOL))

	tr := tree.New()
	tr.Append(tree.ValueNode("a", "1"))
	tr.Append(tree.ValueNode("b", "2"))
	_, err := Put(l, tr, "host = example")
	require.NotNil(t, err)
	assert.Contains(t, err.Msg, "Expected exactly one root node")

	single := mustGet(t, l, "host = example")
	_, terr := single.Set("host", "other")
	require.NoError(t, terr)
	out, perr := Put(l, single, "host = example")
	require.Nil(t, perr)
	assert.Equal(t, "host = other", out)
}

func TestPut_UnionBranchReselectedForRelabeledNode(t *testing.T) {
	// Turning an entry into a comment forces put off the branch the
	// original text took.
	l := kvLens()
	text := "a = 1\n"
	tr := mustGet(t, l, text)
	_, _, terr := tr.Remove("a")
	require.NoError(t, terr)
	node := tr.Append(tree.Node("#comment"))
	node.SetValue("was a")

	out, err := Put(l, tr, text)
	require.Nil(t, err)
	assert.Equal(t, "# was a\n", out)
}
