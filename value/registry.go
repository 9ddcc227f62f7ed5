package value

import (
	"fmt"
	"sort"
)

// Native describes one natively-implemented primitive: a unique name, the
// ordered argument tags (arity is implied by their count), the result tag,
// and the implementation. Implementations report recoverable failures by
// returning an Exn-tagged Value; a non-nil error from Impl is reserved for
// contract-level defects.
type Native struct {
	Name   string
	Params []Tag
	Result Tag
	Impl   func(info *Info, args []Value) (Value, error)
}

// Arity returns the fixed number of arguments the native accepts.
func (n *Native) Arity() int { return len(n.Params) }

// ContractError reports a violation of a native's declared signature: an
// unknown native, wrong arity, a mismatched argument tag, or a result whose
// tag does not match the declaration. It signals a defect in the calling
// code, not in user input, and is deliberately distinct from the recoverable
// diagnostic values primitives produce.
type ContractError struct {
	Native string
	Index  int // argument position; -1 when the violation is arity, name, or result
	Want   Tag
	Got    Tag
	Reason string
}

func (e *ContractError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("native %s: %s", e.Native, e.Reason)
	}
	return fmt.Sprintf("native %s: argument %d has tag %s, want %s",
		e.Native, e.Index, e.Got, e.Want)
}

// Registry holds the registered natives and performs typed dispatch.
type Registry struct {
	natives map[string]*Native
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{natives: make(map[string]*Native)}
}

// Register adds a native to the registry. Names must be unique.
func (r *Registry) Register(n *Native) error {
	if n.Name == "" {
		return fmt.Errorf("register native: empty name")
	}
	if n.Impl == nil {
		return fmt.Errorf("register native %s: nil implementation", n.Name)
	}
	if _, dup := r.natives[n.Name]; dup {
		return fmt.Errorf("register native %s: duplicate name", n.Name)
	}
	r.natives[n.Name] = n
	return nil
}

// Lookup returns the native registered under name, if any.
func (r *Registry) Lookup(name string) (*Native, bool) {
	n, ok := r.natives[name]
	return n, ok
}

// Names returns the registered native names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.natives))
	for name := range r.natives {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Call dispatches a native by name, validating arity and argument tags
// against the declared signature before invoking the implementation, and the
// result tag after. Violations return *ContractError. An Exn-tagged result is
// always accepted regardless of the declared result tag, since any primitive
// body may fail recoverably.
func (r *Registry) Call(name string, info *Info, args ...Value) (Value, error) {
	n, ok := r.natives[name]
	if !ok {
		return Value{}, &ContractError{Native: name, Index: -1, Reason: "not registered"}
	}
	if len(args) != n.Arity() {
		return Value{}, &ContractError{
			Native: name,
			Index:  -1,
			Reason: fmt.Sprintf("called with %d arguments, want %d", len(args), n.Arity()),
		}
	}
	for i, a := range args {
		if a.Tag != n.Params[i] {
			return Value{}, &ContractError{Native: name, Index: i, Want: n.Params[i], Got: a.Tag}
		}
	}
	v, err := n.Impl(info, args)
	if err != nil {
		return Value{}, err
	}
	if v.Tag != n.Result && v.Tag != TagExn {
		return Value{}, &ContractError{
			Native: name,
			Index:  -1,
			Reason: fmt.Sprintf("result has tag %s, want %s", v.Tag, n.Result),
		}
	}
	return v, nil
}
