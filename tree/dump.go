package tree

import (
	"fmt"

	"github.com/ohler55/ojg/oj"
)

// dumpNode converts a node to plain JSON-ready data. Sibling order is kept
// by the children array; key order inside a node is canonicalized by the
// writer's sort option.
func dumpNode(t *Tree) map[string]any {
	m := map[string]any{}
	if t.Label != "" {
		m["label"] = t.Label
	}
	if t.HasValue {
		m["value"] = t.Value
	}
	if len(t.Children) > 0 {
		kids := make([]any, len(t.Children))
		for i, c := range t.Children {
			kids[i] = dumpNode(c)
		}
		m["children"] = kids
	}
	return m
}

// Dump serializes the forest as indented JSON. It is used only for
// diagnostics and CLI output, never by the engine itself.
func (t *Tree) Dump() string {
	forest := make([]any, len(t.Children))
	for i, c := range t.Children {
		forest[i] = dumpNode(c)
	}
	return oj.JSON(forest, &oj.Options{Sort: true, Indent: 2})
}

// ParseDump is the inverse of Dump: it rebuilds a tree handle from the
// JSON forest rendering.
func ParseDump(src string) (*Tree, error) {
	data, err := oj.ParseString(src)
	if err != nil {
		return nil, fmt.Errorf("parse tree dump: %w", err)
	}
	forest, ok := data.([]any)
	if !ok {
		return nil, fmt.Errorf("parse tree dump: top level is %T, want array", data)
	}
	root := New()
	for i, raw := range forest {
		node, err := parseNode(raw)
		if err != nil {
			return nil, fmt.Errorf("parse tree dump: node %d: %w", i, err)
		}
		root.Append(node)
	}
	return root, nil
}

func parseNode(raw any) (*Tree, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("node is %T, want object", raw)
	}
	n := &Tree{}
	if label, ok := obj["label"]; ok {
		s, ok := label.(string)
		if !ok {
			return nil, fmt.Errorf("label is %T, want string", label)
		}
		n.Label = s
	}
	if val, ok := obj["value"]; ok {
		s, ok := val.(string)
		if !ok {
			return nil, fmt.Errorf("value is %T, want string", val)
		}
		n.SetValue(s)
	}
	if kids, ok := obj["children"]; ok {
		list, ok := kids.([]any)
		if !ok {
			return nil, fmt.Errorf("children is %T, want array", kids)
		}
		for _, k := range list {
			child, err := parseNode(k)
			if err != nil {
				return nil, err
			}
			n.Append(child)
		}
	}
	return n, nil
}
