// Package diag builds the structured diagnostic values primitives return on
// recoverable failure. An Exn carries a base message plus an ordered list of
// typed context entries; rendering produces the exact multi-line layout the
// surrounding language runtime shows to users, so entry order is
// significant and preserved.
package diag

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agentic-research/refract/value"
)

// Sentinel errors for use with errors.Is.
var (
	// ErrLens indicates a lens application failure (get or put).
	ErrLens = errors.New("lens application error")

	// ErrTree indicates a structural failure in a tree edit.
	ErrTree = errors.New("tree edit error")

	// ErrTransform indicates a transform could not be constructed.
	ErrTransform = errors.New("transform construction error")
)

// Entry is one typed context line group attached to an Exn. Render returns
// the lines the entry contributes, which may be none.
type Entry interface {
	Render() []string
}

// LensLocation points at the lens the failure originated from.
type LensLocation struct {
	Info *value.Info
}

func (e LensLocation) Render() []string {
	return []string{"Lens: " + e.Info.String()}
}

// TextPosition carries the byte offset of a get failure plus an optional
// pre-rendered context snippet. An empty snippet contributes no snippet
// lines; the offset line is always emitted.
type TextPosition struct {
	Pos     int
	Snippet string
}

func (e TextPosition) Render() []string {
	lines := []string{fmt.Sprintf("Error encountered here (%d characters into string)", e.Pos)}
	if e.Snippet != "" {
		lines = append(lines, strings.Split(strings.TrimRight(e.Snippet, "\n"), "\n")...)
	}
	return lines
}

// TreePath carries the tree path of a put or edit failure.
type TreePath struct {
	Path string
}

func (e TreePath) Render() []string {
	return []string{"Error encountered at path " + e.Path}
}

// PartialTree carries a serialized rendering of the tree built before a get
// failure, for debugging.
type PartialTree struct {
	Dump string
}

func (e PartialTree) Render() []string {
	lines := []string{"Tree generated so far:"}
	if e.Dump != "" {
		lines = append(lines, strings.Split(strings.TrimRight(e.Dump, "\n"), "\n")...)
	}
	return lines
}

// Exn is the recoverable diagnostic value. It implements error; calling code
// branches on the value rather than unwinding.
type Exn struct {
	Msg     string
	Context []Entry

	kind error // sentinel matched by errors.Is
}

// New builds an Exn with a formatted base message.
func New(kind error, format string, args ...any) *Exn {
	return &Exn{Msg: fmt.Sprintf(format, args...), kind: kind}
}

// Add appends context entries in order and returns the Exn for chaining.
func (e *Exn) Add(entries ...Entry) *Exn {
	e.Context = append(e.Context, entries...)
	return e
}

// Lines returns the full rendered diagnostic, one string per line, starting
// with the base message followed by each context entry in insertion order.
func (e *Exn) Lines() []string {
	lines := []string{e.Msg}
	for _, entry := range e.Context {
		lines = append(lines, entry.Render()...)
	}
	return lines
}

func (e *Exn) Error() string {
	return strings.Join(e.Lines(), "\n")
}

// Is reports whether target matches this exception's kind.
func (e *Exn) Is(target error) bool {
	return target == e.kind
}
