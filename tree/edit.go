package tree

import (
	"github.com/agentic-research/refract/diag"
)

// Set assigns value at the node addressed by path, creating intermediate
// nodes as needed, and returns the same tree by ownership transfer. On an
// empty tree the scaffold root hosts the newly created chain, leaving
// exactly the intended nodes as the tree's content. Failure reports a
// diagnostic carrying the path and value.
func (t *Tree) Set(path, value string) (*Tree, error) {
	segs, err := parsePath(path)
	if err != nil {
		return nil, diag.New(diag.ErrTree, "Tree set of %s to %q failed: %s", path, value, err)
	}
	cur := t
	for _, seg := range segs {
		var found *Tree
		nth := 0
		for _, child := range cur.Children {
			if !seg.wildcard && child.Label != seg.label {
				continue
			}
			nth++
			if seg.index > 0 && nth != seg.index {
				continue
			}
			if found != nil {
				return nil, diag.New(diag.ErrTree,
					"Tree set of %s to %q failed: segment %s matches multiple nodes", path, value, seg)
			}
			found = child
		}
		if found == nil {
			if seg.wildcard {
				return nil, diag.New(diag.ErrTree,
					"Tree set of %s to %q failed: cannot create node for wildcard segment", path, value)
			}
			if seg.index > 1 {
				return nil, diag.New(diag.ErrTree,
					"Tree set of %s to %q failed: segment %s does not exist", path, value, seg)
			}
			found = cur.Append(Node(seg.label))
		}
		cur = found
	}
	cur.SetValue(value)
	return t, nil
}

// Insert creates a new sibling node with label immediately before or after
// the node addressed by path, which must resolve to exactly one node. The
// same tree is returned by ownership transfer.
func (t *Tree) Insert(label, path string, before bool) (*Tree, error) {
	segs, err := parsePath(path)
	if err != nil {
		return nil, diag.New(diag.ErrTree, "Tree insert of %s at %s failed: %s", label, path, err)
	}
	matches := t.resolve(segs)
	if len(matches) != 1 {
		return nil, diag.New(diag.ErrTree,
			"Tree insert of %s at %s failed: path resolves to %d nodes, want 1", label, path, len(matches))
	}
	m := matches[0]
	at := m.pos
	if !before {
		at++
	}
	siblings := m.parent.Children
	siblings = append(siblings, nil)
	copy(siblings[at+1:], siblings[at:])
	siblings[at] = Node(label)
	m.parent.Children = siblings
	return t, nil
}

// Remove deletes every subtree addressed by path and returns the tree along
// with the total number of nodes removed, descendants included. A path that
// resolves to nothing is a failure.
func (t *Tree) Remove(path string) (*Tree, int, error) {
	segs, err := parsePath(path)
	if err != nil {
		return nil, 0, diag.New(diag.ErrTree, "Tree rm of %s failed: %s", path, err)
	}
	matches := t.resolve(segs)
	if len(matches) == 0 {
		return nil, 0, diag.New(diag.ErrTree, "Tree rm of %s failed: path does not resolve", path)
	}
	doomed := make(map[*Tree]bool, len(matches))
	removed := 0
	for _, m := range matches {
		doomed[m.node] = true
		removed += m.node.Size()
	}
	var prune func(n *Tree)
	prune = func(n *Tree) {
		kept := n.Children[:0]
		for _, child := range n.Children {
			if doomed[child] {
				continue
			}
			prune(child)
			kept = append(kept, child)
		}
		n.Children = kept
	}
	prune(t)
	return t, removed, nil
}
