// File: pool/objpool.go
// Author: momentics <momentics@gmail.com>

package pool

import (
	"sync"

	"github.com/momentics/hioload-cio/api"
)

// SyncPool wraps sync.Pool for generic usage.
type SyncPool[T any] struct {
	pool  *sync.Pool
	reset func(T)
}

var _ api.ObjectPool[int] = (*SyncPool[int])(nil)

// NewSyncPool creates a SyncPool. creator builds new objects; reset, if
// not nil, runs on every object handed back through Put.
func NewSyncPool[T any](creator func() T, reset func(T)) *SyncPool[T] {
	return &SyncPool[T]{
		pool:  &sync.Pool{New: func() any { return creator() }},
		reset: reset,
	}
}

func (sp *SyncPool[T]) Get() T {
	return sp.pool.Get().(T)
}

func (sp *SyncPool[T]) Put(obj T) {
	if sp.reset != nil {
		sp.reset(obj)
	}
	sp.pool.Put(obj)
}
