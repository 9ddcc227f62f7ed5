package value

import (
	"strconv"
	"sync/atomic"
)

// Symbols generates unique symbol names. The counter is owned by the
// Symbols instance rather than being ambient process state, so hosts can
// create isolated generators for deterministic tests; a single instance is
// safe for concurrent use. There is no reset operation.
type Symbols struct {
	counter atomic.Uint64
}

// NewSymbols returns a fresh generator whose first symbol uses suffix 0.
func NewSymbols() *Symbols {
	return &Symbols{}
}

// Next returns prefix concatenated with the next counter value. Successive
// calls on the same instance never return the same string.
func (s *Symbols) Next(prefix string) string {
	n := s.counter.Add(1) - 1
	return prefix + strconv.FormatUint(n, 10)
}
