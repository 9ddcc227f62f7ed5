package tree

import (
	"fmt"
	"strconv"
	"strings"
)

// segment is one component of a slash path: a literal label, optionally a
// 1-based sibling index among same-labeled nodes, or a wildcard.
type segment struct {
	label    string
	index    int // 0 = all same-labeled siblings
	wildcard bool
}

func (s segment) String() string {
	if s.wildcard {
		return "*"
	}
	if s.index > 0 {
		return fmt.Sprintf("%s[%d]", s.label, s.index)
	}
	return s.label
}

// parsePath splits a slash path into segments. A leading slash is optional;
// empty segments and malformed indices are syntax errors.
func parsePath(path string) ([]segment, error) {
	trimmed := strings.TrimPrefix(path, "/")
	if trimmed == "" {
		return nil, fmt.Errorf("empty path")
	}
	parts := strings.Split(trimmed, "/")
	segs := make([]segment, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("empty segment in path %s", path)
		}
		if p == "*" {
			segs = append(segs, segment{wildcard: true})
			continue
		}
		seg := segment{label: p}
		if open := strings.IndexByte(p, '['); open >= 0 {
			if !strings.HasSuffix(p, "]") {
				return nil, fmt.Errorf("unterminated index in segment %s", p)
			}
			num := p[open+1 : len(p)-1]
			idx, err := strconv.Atoi(num)
			if err != nil || idx < 1 {
				return nil, fmt.Errorf("invalid index %q in segment %s", num, p)
			}
			seg.label = p[:open]
			if seg.label == "" {
				return nil, fmt.Errorf("missing label in segment %s", p)
			}
			seg.index = idx
		}
		segs = append(segs, seg)
	}
	return segs, nil
}

// match is a resolved node together with its position in the parent, needed
// by the editing primitives.
type match struct {
	node   *Tree
	parent *Tree
	pos    int // index within parent.Children
}

// resolve returns every node addressed by the parsed path, in document
// order.
func (t *Tree) resolve(segs []segment) []match {
	current := []match{{node: t}}
	for _, seg := range segs {
		var next []match
		for _, m := range current {
			nth := 0
			for i, child := range m.node.Children {
				if !seg.wildcard && child.Label != seg.label {
					continue
				}
				nth++
				if seg.index > 0 && nth != seg.index {
					continue
				}
				next = append(next, match{node: child, parent: m.node, pos: i})
			}
		}
		current = next
		if len(current) == 0 {
			break
		}
	}
	return current
}

// Get returns all nodes addressed by path in document order. A path syntax
// error is reported; a path that resolves to nothing returns an empty slice.
func (t *Tree) Get(path string) ([]*Tree, error) {
	segs, err := parsePath(path)
	if err != nil {
		return nil, err
	}
	matches := t.resolve(segs)
	nodes := make([]*Tree, len(matches))
	for i, m := range matches {
		nodes[i] = m.node
	}
	return nodes, nil
}

// Path returns the slash path addressing node within t, or "" when node is
// not part of the tree. Labels that repeat among siblings carry a 1-based
// index.
func (t *Tree) Path(node *Tree) string {
	var walk func(cur *Tree, prefix string) string
	walk = func(cur *Tree, prefix string) string {
		counts := map[string]int{}
		totals := map[string]int{}
		for _, c := range cur.Children {
			totals[c.Label]++
		}
		for _, c := range cur.Children {
			counts[c.Label]++
			seg := c.Label
			if totals[c.Label] > 1 {
				seg = fmt.Sprintf("%s[%d]", c.Label, counts[c.Label])
			}
			p := prefix + "/" + seg
			if c == node {
				return p
			}
			if found := walk(c, p); found != "" {
				return found
			}
		}
		return ""
	}
	return walk(t, "")
}
