// File: reactor/selector.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral contract for the level-triggered readiness query.

package reactor

import "errors"

// ErrInterrupted is returned by a Selector when the query was interrupted by
// a signal before completing. Poll treats it as a transient condition.
var ErrInterrupted = errors.New("reactor: readiness query interrupted")

// Selector answers "which of these descriptors are ready right now" without
// blocking. want holds exactly one of FlagReadable or FlagWritable.
type Selector interface {
	Select(fds []int, want Flags) (map[int]struct{}, error)
}
