package lens

import (
	"fmt"

	"github.com/agentic-research/refract/diag"
	"github.com/agentic-research/refract/tree"
)

// LensError reports a failed lens application. Pos is a byte offset into
// the input text and is only set for get failures; Path addresses a tree
// location and is only set for put failures. At most one of the two is
// populated. Partial holds the tree built before a get failure, attached
// for diagnostics only.
type LensError struct {
	Msg     string
	Lens    *Lens
	Pos     int    // -1 when unset
	Path    string // "" when unset
	Partial *tree.Tree
}

func (e *LensError) Error() string {
	switch {
	case e.Pos >= 0:
		return fmt.Sprintf("%s (at offset %d)", e.Msg, e.Pos)
	case e.Path != "":
		return fmt.Sprintf("%s (at path %s)", e.Msg, e.Path)
	default:
		return e.Msg
	}
}

// Exn converts the error into the diagnostic value handed to the language
// runtime. text is the input the lens was applied to; it feeds the context
// snippet for get failures. Line order follows the user-facing layout:
// message, lens location, then position or path, then the partial tree.
func (e *LensError) Exn(text string) *diag.Exn {
	x := diag.New(diag.ErrLens, "%s", e.Msg)
	if e.Lens != nil {
		x.Add(diag.LensLocation{Info: e.Lens.Info})
	}
	if e.Pos >= 0 {
		x.Add(diag.TextPosition{Pos: e.Pos, Snippet: diag.Snippet(text, e.Pos)})
	} else if e.Path != "" {
		x.Add(diag.TreePath{Path: e.Path})
	}
	if e.Partial != nil && len(e.Partial.Children) > 0 {
		x.Add(diag.PartialTree{Dump: e.Partial.Dump()})
	}
	return x
}
