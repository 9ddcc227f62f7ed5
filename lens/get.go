package lens

import (
	"fmt"
	"strconv"

	"github.com/agentic-research/refract/tree"
)

// skel is the skeleton of one lens application: the text the lens consumed
// that is not represented in the tree. Put replays skeletons to reproduce
// unedited spans byte for byte.
type skel struct {
	kind   Kind
	text   string     // del: the matched span
	subs   []*skel    // concat, star
	branch int        // union: index of the branch taken
	entry  *dictEntry // subtree: the dictionary entry this node produced
}

// dictEntry pairs the skeleton of a subtree's contents with the dictionary
// of its own children.
type dictEntry struct {
	skel *skel
	dict *dict
}

// dict maps node labels to the skeletons of the subtrees that carried them,
// in document order per label. Put consumes entries front to back so edited
// trees re-align with the spans of the original text.
type dict struct {
	m   map[string][]*dictEntry
	pos map[string]int
}

func newDict() *dict {
	return &dict{m: map[string][]*dictEntry{}, pos: map[string]int{}}
}

func (d *dict) add(key string, e *dictEntry) {
	d.m[key] = append(d.m[key], e)
}

func (d *dict) merge(o *dict) {
	if o == nil {
		return
	}
	for k, list := range o.m {
		d.m[k] = append(d.m[k], list...)
	}
}

// lookup returns the next unused entry for key, or nil.
func (d *dict) lookup(key string) *dictEntry {
	list := d.m[key]
	i := d.pos[key]
	if i >= len(list) {
		return nil
	}
	d.pos[key] = i + 1
	return list[i]
}

// peek returns the entry the next lookup for key would consume, without
// advancing the cursor.
func (d *dict) peek(key string) *dictEntry {
	list := d.m[key]
	i := d.pos[key]
	if i >= len(list) {
		return nil
	}
	return list[i]
}

func (d *dict) snapshot() map[string]int {
	snap := make(map[string]int, len(d.pos))
	for k, v := range d.pos {
		snap[k] = v
	}
	return snap
}

func (d *dict) restore(snap map[string]int) {
	d.pos = snap
}

// frame collects the label, value and child nodes a lens run deposits.
type frame struct {
	label    string
	hasLabel bool
	value    string
	hasValue bool
	children []*tree.Tree
}

// state is one get-direction run over a text.
type state struct {
	text     string
	pos      int
	counters map[string]int
	err      *LensError
}

type mark struct {
	pos      int
	counters map[string]int
	frame    frame
	nkids    int
}

func (st *state) snapshot(f *frame) mark {
	counters := make(map[string]int, len(st.counters))
	for k, v := range st.counters {
		counters[k] = v
	}
	return mark{pos: st.pos, counters: counters, frame: *f, nkids: len(f.children)}
}

func (st *state) restore(m mark, f *frame) {
	st.pos = m.pos
	st.counters = m.counters
	kids := f.children[:m.nkids]
	*f = m.frame
	f.children = kids
}

// fail records an error at the current offset, keeping the furthest error
// seen when branches backtrack.
func (st *state) fail(l *Lens, format string, args ...any) {
	st.failAt(st.pos, l, format, args...)
}

func (st *state) failAt(pos int, l *Lens, format string, args ...any) {
	if st.err != nil && st.err.Pos >= pos {
		return
	}
	st.err = &LensError{
		Msg:  fmt.Sprintf(format, args...),
		Lens: l,
		Pos:  pos,
	}
}

// match applies the lens's anchored regex at the cursor and consumes the
// matched span.
func (st *state) match(l *Lens) (string, bool) {
	loc := l.arx.FindStringIndex(st.text[st.pos:])
	if loc == nil {
		return "", false
	}
	m := st.text[st.pos : st.pos+loc[1]]
	st.pos += loc[1]
	return m, true
}

func (st *state) get(l *Lens, f *frame) (*skel, *dict, bool) {
	switch l.Kind {
	case KDel:
		m, ok := st.match(l)
		if !ok {
			st.fail(l, "Failed to match /%s/", l.RX)
			return nil, nil, false
		}
		return &skel{kind: KDel, text: m}, nil, true

	case KStore:
		m, ok := st.match(l)
		if !ok {
			st.fail(l, "Failed to match /%s/", l.RX)
			return nil, nil, false
		}
		f.value, f.hasValue = m, true
		return &skel{kind: KStore}, nil, true

	case KKey:
		m, ok := st.match(l)
		if !ok {
			st.fail(l, "Failed to match /%s/", l.RX)
			return nil, nil, false
		}
		f.label, f.hasLabel = m, true
		return &skel{kind: KKey}, nil, true

	case KLabel:
		f.label, f.hasLabel = l.Str, true
		return &skel{kind: KLabel}, nil, true

	case KSeq:
		n := st.counters[l.Str]
		if n == 0 {
			n = 1
		}
		f.label, f.hasLabel = strconv.Itoa(n), true
		st.counters[l.Str] = n + 1
		return &skel{kind: KSeq}, nil, true

	case KCounter:
		st.counters[l.Str] = 1
		return &skel{kind: KCounter}, nil, true

	case KConcat:
		s := &skel{kind: KConcat}
		d := newDict()
		for _, sub := range l.Sub {
			cs, cd, ok := st.get(sub, f)
			if !ok {
				return nil, nil, false
			}
			s.subs = append(s.subs, cs)
			d.merge(cd)
		}
		return s, d, true

	case KUnion:
		start := st.snapshot(f)
		for i, sub := range l.Sub {
			cs, cd, ok := st.get(sub, f)
			if ok {
				return &skel{kind: KUnion, branch: i, subs: []*skel{cs}}, cd, true
			}
			st.restore(start, f)
		}
		if st.err == nil {
			st.fail(l, "No union branch matched")
		}
		return nil, nil, false

	case KStar:
		s := &skel{kind: KStar}
		d := newDict()
		for {
			snap := st.snapshot(f)
			before := st.pos
			cs, cd, ok := st.get(l.Sub[0], f)
			if !ok {
				st.restore(snap, f)
				break
			}
			if st.pos == before {
				// A zero-width iteration would never terminate.
				st.restore(snap, f)
				break
			}
			s.subs = append(s.subs, cs)
			d.merge(cd)
		}
		return s, d, true

	case KSubtree:
		cf := &frame{}
		cs, cd, ok := st.get(l.Sub[0], cf)
		if !ok {
			// Keep whatever the child built for the partial tree.
			f.children = append(f.children, cf.children...)
			return nil, nil, false
		}
		node := &tree.Tree{
			Label:    cf.label,
			Value:    cf.value,
			HasValue: cf.hasValue,
			Children: cf.children,
		}
		f.children = append(f.children, node)
		if cd == nil {
			cd = newDict()
		}
		e := &dictEntry{skel: cs, dict: cd}
		d := newDict()
		d.add(cf.label, e)
		return &skel{kind: KSubtree, entry: e}, d, true

	default:
		st.fail(l, "Cannot apply lens kind %s in the get direction", l.Kind)
		return nil, nil, false
	}
}

// parse runs the get direction over text and returns the skeleton,
// dictionary and deposit frame. It is shared by Get and the put engine's
// skeleton derivation.
func parse(l *Lens, text string) (*skel, *dict, *frame, *state, bool) {
	st := &state{text: text, counters: map[string]int{}}
	f := &frame{}
	s, d, ok := st.get(l, f)
	if ok && st.pos < len(text) {
		st.failAt(st.pos, l, "Get did not consume entire input")
		ok = false
	}
	if d == nil {
		d = newDict()
	}
	return s, d, f, st, ok
}

// assemble turns a top-level deposit frame into a tree handle. A lens that
// leaves a key or value behind produces a single root node holding them;
// otherwise the deposited children are the forest.
func assemble(l *Lens, f *frame) *tree.Tree {
	root := tree.New()
	if l.LeavesKey || l.LeavesValue {
		root.Children = []*tree.Tree{{
			Label:    f.label,
			Value:    f.value,
			HasValue: f.hasValue,
			Children: f.children,
		}}
		return root
	}
	root.Children = f.children
	return root
}

// Get parses text from offset 0 under l, consuming the entire input. On
// failure the returned error carries the byte offset where parsing could
// not continue and the partial tree built so far.
func Get(l *Lens, text string) (*tree.Tree, *LensError) {
	_, _, f, st, ok := parse(l, text)
	if !ok {
		err := st.err
		if partial := assemble(l, f); len(partial.Children) > 0 {
			err.Partial = partial
		}
		return nil, err
	}
	return assemble(l, f), nil
}
