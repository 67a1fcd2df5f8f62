package system

import (
	"bytes"
	"sync"
)

// maxPooledBuffer caps what goes back into the pool so one huge document
// does not pin its memory for the rest of a watch session.
const maxPooledBuffer = 1 << 20

// BufferPool reuses markup buffers across compiles to keep GC pressure
// down in batch and watch mode.
type BufferPool struct {
	pool sync.Pool
}

var globalPool = NewBufferPool()

func NewBufferPool() *BufferPool {
	return &BufferPool{
		pool: sync.Pool{
			New: func() any {
				return new(bytes.Buffer)
			},
		},
	}
}

// GetBuffer returns an empty buffer from the shared pool
func GetBuffer() *bytes.Buffer {
	return globalPool.Get()
}

// PutBuffer returns b to the shared pool. b must not be used afterwards.
func PutBuffer(b *bytes.Buffer) {
	globalPool.Put(b)
}

func (p *BufferPool) Get() *bytes.Buffer {
	b := p.pool.Get().(*bytes.Buffer)
	b.Reset()
	return b
}

func (p *BufferPool) Put(b *bytes.Buffer) {
	if b == nil || b.Cap() > maxPooledBuffer {
		return
	}
	p.pool.Put(b)
}
