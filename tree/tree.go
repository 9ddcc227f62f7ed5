// Package tree implements the ordered labeled forest the lens engine parses
// text into, together with the path-addressed editing primitives.
//
// A Tree handle is a permanent scaffold root: an unlabeled node whose
// Children are the actual forest. Paths resolve against the children, never
// the root itself, so the scaffold can never leak into results. Editing
// primitives take exclusive mutable access and return the same handle by
// ownership transfer; callers that need to share a tree across holders must
// Clone explicitly.
package tree

// Tree is one node of the forest. Sibling order is semantically significant
// and preserved by every edit. HasValue distinguishes an empty value from an
// absent one.
type Tree struct {
	Label    string
	Value    string
	HasValue bool
	Children []*Tree
}

// New returns an empty tree: a scaffold root with no children.
func New() *Tree {
	return &Tree{}
}

// Node builds a detached node with the given label.
func Node(label string) *Tree {
	return &Tree{Label: label}
}

// ValueNode builds a detached node with a label and a value.
func ValueNode(label, value string) *Tree {
	return &Tree{Label: label, Value: value, HasValue: true}
}

// SetValue assigns the node's value.
func (t *Tree) SetValue(v string) {
	t.Value = v
	t.HasValue = true
}

// Append adds child as the last child of t and returns child.
func (t *Tree) Append(child *Tree) *Tree {
	t.Children = append(t.Children, child)
	return child
}

// Clone returns a deep copy of the tree. Cloning is the explicit sharing
// mechanism; there is no implicit aliasing between holders.
func (t *Tree) Clone() *Tree {
	if t == nil {
		return nil
	}
	c := &Tree{Label: t.Label, Value: t.Value, HasValue: t.HasValue}
	if len(t.Children) > 0 {
		c.Children = make([]*Tree, len(t.Children))
		for i, child := range t.Children {
			c.Children[i] = child.Clone()
		}
	}
	return c
}

// Equal reports structural equality of labels, values and child order.
func (t *Tree) Equal(o *Tree) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.Label != o.Label || t.HasValue != o.HasValue || t.Value != o.Value {
		return false
	}
	if len(t.Children) != len(o.Children) {
		return false
	}
	for i := range t.Children {
		if !t.Children[i].Equal(o.Children[i]) {
			return false
		}
	}
	return true
}

// Size returns the number of nodes in the subtree rooted at t, counting t
// itself. Called on a scaffold root it therefore counts the synthetic root
// too; sum over Children for the forest size.
func (t *Tree) Size() int {
	n := 1
	for _, c := range t.Children {
		n += c.Size()
	}
	return n
}
