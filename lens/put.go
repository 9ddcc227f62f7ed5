package lens

import (
	"bytes"
	"fmt"

	"github.com/agentic-research/refract/tree"
)

// putter is one put-direction run: it walks a lens against a tree and the
// skeletons derived from the original text, assembling output into a single
// growable buffer that is discarded on failure.
type putter struct {
	root *tree.Tree
	out  bytes.Buffer
	err  *LensError
}

// pframe is the put-side cursor over one tree node's children.
type pframe struct {
	node *tree.Tree
	next int
}

func (p *putter) failNode(l *Lens, node *tree.Tree, format string, args ...any) {
	path := p.root.Path(node)
	if path == "" {
		path = "/"
	}
	p.err = &LensError{
		Msg:  fmt.Sprintf(format, args...),
		Lens: l,
		Pos:  -1,
		Path: path,
	}
}

// pmark snapshots the mutable put state for backtracking between union
// branches and star iterations.
type pmark struct {
	outLen  int
	next    int
	dictPos map[string]int
	err     *LensError
}

func (p *putter) snapshot(f *pframe, d *dict) pmark {
	return pmark{outLen: p.out.Len(), next: f.next, dictPos: d.snapshot(), err: p.err}
}

func (p *putter) restore(m pmark, f *pframe, d *dict) {
	p.out.Truncate(m.outLen)
	f.next = m.next
	d.restore(m.dictPos)
	p.err = m.err
}

// subSkel returns the i-th child skeleton when s has the expected shape,
// or nil to signal create mode.
func subSkel(s *skel, kind Kind, i int) *skel {
	if s == nil || s.kind != kind || i >= len(s.subs) {
		return nil
	}
	return s.subs[i]
}

// fullMatch reports whether the lens regex matches all of s. Put uses it to
// test whether a key or store lens applies to a node, which is what selects
// the right union branch for created nodes.
func fullMatch(l *Lens, s string) bool {
	loc := l.arx.FindStringIndex(s)
	return loc != nil && loc[1] == len(s)
}

// iterConsumes reports whether the star iteration recorded in s consumed a
// tree node when the original text was parsed. Iterations that did not
// (blank or comment-free separators) are replayed from skeleton alone.
func iterConsumes(l *Lens, s *skel) bool {
	if s == nil {
		return l.consumesTree
	}
	switch s.kind {
	case KSubtree:
		return true
	case KUnion:
		if s.branch < len(l.Sub) && len(s.subs) == 1 {
			return iterConsumes(l.Sub[s.branch], s.subs[0])
		}
		return l.consumesTree
	case KConcat:
		for i, cs := range s.subs {
			if i < len(l.Sub) && iterConsumes(l.Sub[i], cs) {
				return true
			}
		}
		return false
	case KStar:
		for _, cs := range s.subs {
			if iterConsumes(l.Sub[0], cs) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// iterEntry returns the dictionary entry of the subtree a star iteration
// consumed, reaching through union and concat wrappers. It pairs with
// iterConsumes: a consuming iteration carries the entry its node produced.
func iterEntry(l *Lens, s *skel) *dictEntry {
	if s == nil {
		return nil
	}
	switch s.kind {
	case KSubtree:
		return s.entry
	case KUnion:
		if s.branch < len(l.Sub) && len(s.subs) == 1 {
			return iterEntry(l.Sub[s.branch], s.subs[0])
		}
		return nil
	case KConcat:
		for i, cs := range s.subs {
			if i < len(l.Sub) {
				if e := iterEntry(l.Sub[i], cs); e != nil {
					return e
				}
			}
		}
		return nil
	case KStar:
		for _, cs := range s.subs {
			if e := iterEntry(l.Sub[0], cs); e != nil {
				return e
			}
		}
		return nil
	default:
		return nil
	}
}

func (p *putter) put(l *Lens, f *pframe, s *skel, d *dict) bool {
	switch l.Kind {
	case KDel:
		if s != nil && s.kind == KDel {
			p.out.WriteString(s.text)
		} else {
			p.out.WriteString(l.Str)
		}
		return true

	case KStore:
		if f.node == nil || !f.node.HasValue {
			p.failNode(l, f.node, "No value to store")
			return false
		}
		if !fullMatch(l, f.node.Value) {
			p.failNode(l, f.node, "Value %q does not match /%s/", f.node.Value, l.RX)
			return false
		}
		p.out.WriteString(f.node.Value)
		return true

	case KKey:
		if f.node == nil {
			p.failNode(l, p.root, "No node to take a key from")
			return false
		}
		if !fullMatch(l, f.node.Label) {
			p.failNode(l, f.node, "Key %q does not match /%s/", f.node.Label, l.RX)
			return false
		}
		p.out.WriteString(f.node.Label)
		return true

	case KLabel:
		if f.node != nil && f.node.Label != l.Str {
			p.failNode(l, f.node, "Label %q does not match %q", f.node.Label, l.Str)
			return false
		}
		return true

	case KSeq, KCounter:
		return true

	case KConcat:
		for i, sub := range l.Sub {
			if !p.put(sub, f, subSkel(s, KConcat, i), d) {
				return false
			}
		}
		return true

	case KUnion:
		order := make([]int, 0, len(l.Sub))
		var skelBranch *skel
		if s != nil && s.kind == KUnion && s.branch < len(l.Sub) {
			order = append(order, s.branch)
			skelBranch = s.subs[0]
		}
		for i := range l.Sub {
			if len(order) > 0 && i == order[0] {
				continue
			}
			order = append(order, i)
		}
		snap := p.snapshot(f, d)
		for n, i := range order {
			var bs *skel
			if n == 0 && skelBranch != nil {
				bs = skelBranch
			}
			if p.put(l.Sub[i], f, bs, d) {
				return true
			}
			p.restore(snap, f, d)
		}
		p.failNode(l, f.node, "No union branch applies")
		return false

	case KStar:
		if l.Sub[0].consumesTree {
			// Skeleton-driven: each recorded iteration is replayed, paired
			// with the current child, or elided before the children are
			// allowed to advance, so unedited spans keep their document
			// order.
			for i := 0; ; {
				is := subSkel(s, KStar, i)
				hasChild := f.node != nil && f.next < len(f.node.Children)
				if is != nil {
					if !iterConsumes(l.Sub[0], is) {
						// Skeleton-only iteration (a blank line): replay it
						// in place before binding the next child.
						snap := p.snapshot(f, d)
						if !p.put(l.Sub[0], f, is, d) {
							p.restore(snap, f, d)
							break
						}
						i++
						continue
					}
					if !hasChild {
						// The node this iteration carried was removed; its
						// text lives in the dict and is never replayed.
						i++
						continue
					}
					entry := iterEntry(l.Sub[0], is)
					if entry != nil && entry != d.peek(f.node.Children[f.next].Label) {
						// Not the entry the current child would look up: the
						// iteration's node is gone or displaced, so eliding
						// it keeps spans aligned instead of letting the
						// child adopt a foreign slot.
						i++
						continue
					}
					snap := p.snapshot(f, d)
					if !p.put(l.Sub[0], f, is, d) {
						// Remaining children are left for subsequent lenses.
						p.restore(snap, f, d)
						break
					}
					if f.next == snap.next && p.out.Len() == snap.outLen {
						p.restore(snap, f, d)
						break
					}
					i++
					continue
				}
				if !hasChild {
					break
				}
				snap := p.snapshot(f, d)
				if !p.put(l.Sub[0], f, nil, d) {
					p.restore(snap, f, d)
					break
				}
				if f.next == snap.next {
					// Create mode must consume a node, or the loop spins.
					p.restore(snap, f, d)
					break
				}
			}
			return true
		}
		if s != nil && s.kind == KStar {
			for _, is := range s.subs {
				if !p.put(l.Sub[0], f, is, d) {
					return false
				}
			}
		}
		return true

	case KSubtree:
		if f.node == nil || f.next >= len(f.node.Children) {
			p.failNode(l, f.node, "No tree node to put")
			return false
		}
		node := f.node.Children[f.next]
		f.next++
		cf := &pframe{node: node}
		entry := d.lookup(node.Label)
		var ok bool
		if entry != nil {
			ok = p.put(l.Sub[0], cf, entry.skel, entry.dict)
		} else {
			ok = p.put(l.Sub[0], cf, nil, newDict())
		}
		if !ok {
			return false
		}
		if cf.next < len(node.Children) {
			p.failNode(l, node.Children[cf.next], "Put left unconsumed tree nodes")
			return false
		}
		return true

	default:
		p.failNode(l, f.node, "Cannot apply lens kind %s in the put direction", l.Kind)
		return false
	}
}

// Put regenerates text from tr under l, re-deriving skeletons from original
// so that every span not represented in the tree is preserved byte for
// byte. On failure the error carries the tree path where no skeleton text
// or tree data could be reconciled; the partial output buffer is discarded.
func Put(l *Lens, tr *tree.Tree, original string) (string, *LensError) {
	s, d, _, st, ok := parse(l, original)
	if !ok {
		return "", &LensError{
			Msg:  "Failed to parse the original text: " + st.err.Msg,
			Lens: st.err.Lens,
			Pos:  -1,
			Path: "/",
		}
	}

	p := &putter{root: tr}
	f := &pframe{node: tr}
	if l.LeavesKey || l.LeavesValue {
		if len(tr.Children) != 1 {
			return "", &LensError{
				Msg:  fmt.Sprintf("Expected exactly one root node, tree has %d", len(tr.Children)),
				Lens: l,
				Pos:  -1,
				Path: "/",
			}
		}
		f.node = tr.Children[0]
	}
	if !p.put(l, f, s, d) {
		return "", p.err
	}
	if f.node != nil && f.next < len(f.node.Children) {
		p.failNode(l, f.node.Children[f.next], "Put left unconsumed tree nodes")
		return "", p.err
	}
	return p.out.String(), nil
}
