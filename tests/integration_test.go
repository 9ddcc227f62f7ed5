package tests

import (
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/refract/stock"
	"github.com/agentic-research/refract/transform"
	"github.com/agentic-research/refract/tree"
)

const hostsConf = `# managed by refract
hostname = web-1
domain = example.com

port=8080
`

const dbConf = `dsn = postgres://localhost/app
pool = 10
`

const configHCL = `
transform "conf" {
  lens = "kv"

  filter { incl = "*.conf" }
  filter { excl = "*.bak" }
}
`

// testFixture bundles the shared state for integration tests: an in-memory
// filesystem seeded with config files, the transforms built from HCL, and
// an engine over the filesystem.
type testFixture struct {
	fs     billy.Filesystem
	engine *transform.Engine
	conf   *transform.Transform
}

func newFixture(t *testing.T) *testFixture {
	t.Helper()
	fs := memfs.New()
	for path, content := range map[string]string{
		"etc/hosts.conf":     hostsConf,
		"etc/db.conf":        dbConf,
		"etc/hosts.conf.bak": "stale = yes\n",
		"etc/readme.txt":     "not managed\n",
	} {
		require.NoError(t, util.WriteFile(fs, path, []byte(content), 0o644))
	}

	cfg, err := transform.DecodeConfig([]byte(configHCL), "refract.hcl")
	require.NoError(t, err)
	named, err := transform.Build(cfg, stock.Lookup)
	require.NoError(t, err)
	require.Len(t, named, 1)

	return &testFixture{
		fs:     fs,
		engine: transform.NewEngine(fs),
		conf:   named[0].Transform,
	}
}

func (f *testFixture) apply(t *testing.T) []transform.Result {
	t.Helper()
	results, err := f.engine.Apply(f.conf, "etc")
	require.NoError(t, err)
	return results
}

func (f *testFixture) read(t *testing.T, path string) string {
	t.Helper()
	data, err := util.ReadFile(f.fs, path)
	require.NoError(t, err)
	return string(data)
}

func TestIntegration_ApplySelectsAndParses(t *testing.T) {
	f := newFixture(t)
	results := f.apply(t)
	require.Len(t, results, 2, "the .bak and .txt files are filtered out")

	assert.Equal(t, "etc/db.conf", results[0].Path)
	assert.Equal(t, "etc/hosts.conf", results[1].Path)
	for _, res := range results {
		require.Nil(t, res.Err, "%s", res.Path)
		require.NotNil(t, res.Tree)
	}

	hosts := results[1].Tree
	nodes, err := hosts.Get("hostname")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "web-1", nodes[0].Value)
}

func TestIntegration_RoundTripIsIdentity(t *testing.T) {
	f := newFixture(t)
	for _, res := range f.apply(t) {
		require.NoError(t, f.engine.Save(f.conf, res.Path, res.Tree, res.Text))
		assert.Equal(t, res.Text, f.read(t, res.Path), "%s", res.Path)
	}
}

func TestIntegration_EditPreservesUntouchedSpans(t *testing.T) {
	f := newFixture(t)
	results := f.apply(t)
	hosts := results[1]

	_, err := hosts.Tree.Set("port", "9090")
	require.NoError(t, err)
	require.NoError(t, f.engine.Save(f.conf, hosts.Path, hosts.Tree, hosts.Text))

	got := f.read(t, "etc/hosts.conf")
	assert.Equal(t, `# managed by refract
hostname = web-1
domain = example.com

port=9090
`, got, "comments, blank lines, and separator spacing survive the edit")
}

func TestIntegration_RemoveAndInsert(t *testing.T) {
	f := newFixture(t)
	results := f.apply(t)
	db := results[0]

	_, _, err := db.Tree.Remove("pool")
	require.NoError(t, err)
	_, err = db.Tree.Insert("timeout", "dsn", false)
	require.NoError(t, err)
	_, err = db.Tree.Set("timeout", "30s")
	require.NoError(t, err)
	require.NoError(t, f.engine.Save(f.conf, db.Path, db.Tree, db.Text))

	assert.Equal(t, "dsn = postgres://localhost/app\ntimeout = 30s\n", f.read(t, "etc/db.conf"))
}

func TestIntegration_EditedTreeSurvivesDumpRoundTrip(t *testing.T) {
	f := newFixture(t)
	results := f.apply(t)
	hosts := results[1]

	_, err := hosts.Tree.Set("hostname", "web-2")
	require.NoError(t, err)

	back, err := tree.ParseDump(hosts.Tree.Dump())
	require.NoError(t, err)
	require.True(t, hosts.Tree.Equal(back))

	require.NoError(t, f.engine.Save(f.conf, hosts.Path, back, hosts.Text))
	assert.Contains(t, f.read(t, "etc/hosts.conf"), "hostname = web-2")
}
