// Package lens implements the primitive lens constructors and the
// bidirectional application engine. Get parses text into a labeled tree;
// Put regenerates text from an edited tree plus the original source,
// preserving every span the edit did not touch.
//
// The combinator algebra proper (typed composition with regex ambiguity
// checking) is an external collaborator; this package exposes the plain,
// total constructors for the structural kinds the engine walks (Concat,
// Union, Star, Subtree) alongside the six primitive kinds.
package lens

import (
	"regexp"

	"github.com/agentic-research/refract/value"
)

// Kind tags a lens node.
type Kind int

const (
	KDel Kind = iota
	KStore
	KKey
	KLabel
	KSeq
	KCounter
	KConcat
	KUnion
	KStar
	KSubtree
)

func (k Kind) String() string {
	switch k {
	case KDel:
		return "del"
	case KStore:
		return "store"
	case KKey:
		return "key"
	case KLabel:
		return "label"
	case KSeq:
		return "seq"
	case KCounter:
		return "counter"
	case KConcat:
		return "concat"
	case KUnion:
		return "union"
	case KStar:
		return "star"
	case KSubtree:
		return "subtree"
	default:
		return "lens(?)"
	}
}

// Lens is an immutable lens node, created once at construction time and
// shared across repeated Get/Put calls. RX and Str are owned by the node;
// Sub holds structural children. LeavesKey and LeavesValue report whether
// applying the lens deposits a label or value that no enclosing Subtree
// consumes; transforms refuse lenses with either flag set.
type Lens struct {
	Kind Kind
	Info *value.Info

	RX  *regexp.Regexp // del, store, key
	Str string         // del default, label literal, seq/counter name
	Sub []*Lens

	LeavesKey   bool
	LeavesValue bool

	arx          *regexp.Regexp // RX anchored at the cursor
	consumesTree bool           // contains a Subtree, so Put takes tree children
}

func anchor(rx *regexp.Regexp) *regexp.Regexp {
	return regexp.MustCompile(`\A(?:` + rx.String() + `)`)
}

// Del matches rx in the get direction and produces no tree node; the
// matched text is preserved as skeleton. In the put direction, dflt is
// emitted when no skeleton text exists for the position.
func Del(info *value.Info, rx *regexp.Regexp, dflt string) *Lens {
	return &Lens{Kind: KDel, Info: info, RX: rx, Str: dflt, arx: anchor(rx)}
}

// Store matches rx and deposits the matched text as the current node's
// value.
func Store(info *value.Info, rx *regexp.Regexp) *Lens {
	return &Lens{Kind: KStore, Info: info, RX: rx, LeavesValue: true, arx: anchor(rx)}
}

// Key matches rx and deposits the matched text as the current node's label.
func Key(info *value.Info, rx *regexp.Regexp) *Lens {
	return &Lens{Kind: KKey, Info: info, RX: rx, LeavesKey: true, arx: anchor(rx)}
}

// Label deposits the literal s as the current node's label without
// consuming input.
func Label(info *value.Info, s string) *Lens {
	return &Lens{Kind: KLabel, Info: info, Str: s, LeavesKey: true}
}

// Seq deposits the current value of the named counter as the node's label
// and post-increments it. Counters start at 1.
func Seq(info *value.Info, name string) *Lens {
	return &Lens{Kind: KSeq, Info: info, Str: name, LeavesKey: true}
}

// Counter resets the named counter to 1 without consuming input.
func Counter(info *value.Info, name string) *Lens {
	return &Lens{Kind: KCounter, Info: info, Str: name}
}

// Concat applies the given lenses in sequence.
func Concat(info *value.Info, ls ...*Lens) *Lens {
	l := &Lens{Kind: KConcat, Info: info, Sub: ls}
	deriveStructural(l)
	return l
}

// Union applies the first lens whose get direction succeeds, backtracking
// between branches.
func Union(info *value.Info, ls ...*Lens) *Lens {
	l := &Lens{Kind: KUnion, Info: info, Sub: ls}
	deriveStructural(l)
	return l
}

// Star repeats sub zero or more times; iteration stops when sub fails or
// no longer consumes input.
func Star(info *value.Info, sub *Lens) *Lens {
	l := &Lens{Kind: KStar, Info: info, Sub: []*Lens{sub}}
	deriveStructural(l)
	return l
}

// Subtree collects the label, value and children deposited by sub into a
// new tree node. The deposited key/value are consumed by the node, so a
// Subtree never leaves either behind.
func Subtree(info *value.Info, sub *Lens) *Lens {
	return &Lens{
		Kind:         KSubtree,
		Info:         info,
		Sub:          []*Lens{sub},
		consumesTree: true,
	}
}

func deriveStructural(l *Lens) {
	for _, sub := range l.Sub {
		l.LeavesKey = l.LeavesKey || sub.LeavesKey
		l.LeavesValue = l.LeavesValue || sub.LeavesValue
		l.consumesTree = l.consumesTree || sub.consumesTree
	}
}

// Make builds a primitive lens node from a kind plus the regex and string
// arguments the kind requires. It is total given validated arguments and
// exists for callers holding a dynamically chosen kind; the named
// constructors are the usual entry points.
func Make(kind Kind, info *value.Info, rx *regexp.Regexp, s string) *Lens {
	switch kind {
	case KDel:
		return Del(info, rx, s)
	case KStore:
		return Store(info, rx)
	case KKey:
		return Key(info, rx)
	case KLabel:
		return Label(info, s)
	case KSeq:
		return Seq(info, s)
	case KCounter:
		return Counter(info, s)
	default:
		return &Lens{Kind: kind, Info: info, RX: rx, Str: s}
	}
}
