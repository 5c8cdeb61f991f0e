// File: fake/selector.go
// Author: momentics <momentics@gmail.com>

package fake

import (
	"github.com/momentics/hioload-cio/reactor"
)

// Selector reports whatever readiness the test sets. Descriptors that are
// not registered with the reactor are never asked about, so marking them
// ready has no effect.
type Selector struct {
	Readable map[int]bool
	Writable map[int]bool
	// Err, when set, fails every query.
	Err error
	// Calls counts queries, one per non-empty interest set per poll.
	Calls int
}

var _ reactor.Selector = (*Selector)(nil)

func NewSelector() *Selector {
	return &Selector{Readable: map[int]bool{}, Writable: map[int]bool{}}
}

func (s *Selector) Select(fds []int, want reactor.Flags) (map[int]struct{}, error) {
	s.Calls++
	if s.Err != nil {
		return nil, s.Err
	}
	src := s.Readable
	if want == reactor.FlagWritable {
		src = s.Writable
	}
	out := make(map[int]struct{})
	for _, fd := range fds {
		if src[fd] {
			out[fd] = struct{}{}
		}
	}
	return out, nil
}
