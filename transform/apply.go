package transform

import (
	"fmt"
	"io"
	"os"
	"sort"

	billy "github.com/go-git/go-billy/v5"

	"github.com/agentic-research/refract/diag"
	"github.com/agentic-research/refract/lens"
	"github.com/agentic-research/refract/tree"
)

// Result is the outcome of applying a transform's lens to one file. On
// failure Err is set and Tree is nil; Text always holds the original file
// content so callers can render diagnostics or retry a put.
type Result struct {
	Path string
	Text string
	Tree *tree.Tree
	Err  *diag.Exn
}

// Engine applies transforms to files behind a filesystem abstraction. The
// filesystem is the collaborator that owns discovery; the engine only
// decides applicability and runs the lens.
type Engine struct {
	fs  billy.Filesystem
	log Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger the engine reports per-file outcomes through.
func WithLogger(l Logger) Option {
	return func(e *Engine) { e.log = l }
}

// NewEngine builds an engine over fs.
func NewEngine(fs billy.Filesystem, opts ...Option) *Engine {
	e := &Engine{fs: fs, log: NopLogger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Apply walks the filesystem under root and runs the transform's lens in
// the get direction on every applicable file. Per-file lens failures are
// reported in the result slice, not as the error; the error covers walk
// and read failures only.
func (e *Engine) Apply(t *Transform, root string) ([]Result, error) {
	var paths []string
	if err := e.walk(root, &paths); err != nil {
		return nil, err
	}
	sort.Strings(paths)

	var results []Result
	for _, p := range paths {
		if !t.Matches(p) {
			continue
		}
		text, err := e.readFile(p)
		if err != nil {
			return results, fmt.Errorf("read %s: %w", p, err)
		}
		res := Result{Path: p, Text: text}
		tr, lerr := lens.Get(t.Lens, text)
		if lerr != nil {
			res.Err = lerr.Exn(text)
			e.log.Warn("lens get failed", "path", p, "offset", lerr.Pos)
		} else {
			res.Tree = tr
			e.log.Debug("lens get ok", "path", p, "nodes", len(tr.Children))
		}
		results = append(results, res)
	}
	return results, nil
}

// Save regenerates path's content from tr plus original via the
// transform's lens and writes it atomically: a temp file in the same
// directory, then a rename over the target.
func (e *Engine) Save(t *Transform, path string, tr *tree.Tree, original string) error {
	text, lerr := lens.Put(t.Lens, tr, original)
	if lerr != nil {
		return lerr.Exn(original)
	}

	dir := dirOf(path)
	tmp, err := e.fs.TempFile(dir, ".refract-put-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write([]byte(text)); err != nil {
		_ = tmp.Close()
		_ = e.fs.Remove(tmpName) // best-effort cleanup
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = e.fs.Remove(tmpName) // best-effort cleanup
		return fmt.Errorf("close temp: %w", err)
	}
	if err := e.fs.Rename(tmpName, path); err != nil {
		_ = e.fs.Remove(tmpName) // best-effort cleanup
		return fmt.Errorf("rename temp to %s: %w", path, err)
	}
	e.log.Info("saved", "path", path, "bytes", len(text))
	return nil
}

func (e *Engine) walk(root string, paths *[]string) error {
	entries, err := e.fs.ReadDir(root)
	if err != nil {
		return fmt.Errorf("read dir %s: %w", root, err)
	}
	for _, entry := range entries {
		full := e.fs.Join(root, entry.Name())
		if entry.IsDir() {
			if err := e.walk(full, paths); err != nil {
				return err
			}
			continue
		}
		if entry.Mode().IsRegular() || entry.Mode()&os.ModeType == 0 {
			*paths = append(*paths, full)
		}
	}
	return nil
}

func (e *Engine) readFile(path string) (string, error) {
	f, err := e.fs.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func dirOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			if i == 0 {
				return "/"
			}
			return path[:i]
		}
	}
	return "."
}
