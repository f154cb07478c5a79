// Package bufpool recycles the scratch buffers compressors write into.
package bufpool

import (
	"bytes"
	"sync"
)

// Pool hands out empty buffers with at least the initial capacity.
type Pool struct {
	pool sync.Pool
}

func New(initialSize int) *Pool {
	return &Pool{
		pool: sync.Pool{
			New: func() any {
				return bytes.NewBuffer(make([]byte, 0, initialSize))
			},
		},
	}
}

func (p *Pool) Get() *bytes.Buffer {
	return p.pool.Get().(*bytes.Buffer)
}

// Put resets buf and returns it to the pool. Slices obtained from buf.Bytes
// must not be used afterwards.
func (p *Pool) Put(buf *bytes.Buffer) {
	buf.Reset()
	p.pool.Put(buf)
}
