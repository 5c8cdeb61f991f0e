// File: pool/bytepool.go
// Author: momentics <momentics@gmail.com>

package pool

import (
	"github.com/momentics/hioload-cio/api"
)

// DefaultBufferSize is the receive buffer size used when none is given.
const DefaultBufferSize = 4096

// BytePool hands out fixed-size receive buffers.
type BytePool struct {
	bufs *SyncPool[*[]byte]
	size int
}

var _ api.BytePool = (*BytePool)(nil)

// NewBytePool returns a pool of size-byte buffers. A non-positive size
// selects DefaultBufferSize.
func NewBytePool(size int) *BytePool {
	if size <= 0 {
		size = DefaultBufferSize
	}
	return &BytePool{
		bufs: NewSyncPool(func() *[]byte {
			b := make([]byte, size)
			return &b
		}, nil),
		size: size,
	}
}

// Size returns the length of every buffer Get returns.
func (b *BytePool) Size() int { return b.size }

// Get returns a buffer of length Size.
func (b *BytePool) Get() []byte {
	return (*b.bufs.Get())[:b.size]
}

// Put returns buf to the pool. Buffers whose capacity does not match the
// pool are left to the GC.
func (b *BytePool) Put(buf []byte) {
	if cap(buf) != b.size {
		return
	}
	buf = buf[:b.size]
	b.bufs.Put(&buf)
}
