package ws

import "sync"

// headerPool recycles the fixed-size header scratch buffers used while
// decoding frames.
var headerPool = sync.Pool{
	New: func() interface{} {
		b := make([]byte, MaxFrameHeaderSize)
		return &b
	},
}

func getHeaderBuffer() *[]byte { return headerPool.Get().(*[]byte) }

func putHeaderBuffer(buf *[]byte) {
	if buf != nil {
		headerPool.Put(buf)
	}
}

// BufferPool hands out reusable payload buffers keyed by size tier.
// Disabled pools just allocate, which keeps tests deterministic.
type BufferPool struct {
	disabled bool

	pool1K  sync.Pool
	pool4K  sync.Pool
	pool16K sync.Pool
}

// DefaultBufferPool is used wherever a caller doesn't supply its own.
var DefaultBufferPool = NewBufferPool()

func NewBufferPool() *BufferPool {
	p := &BufferPool{}
	p.pool1K.New = func() interface{} { b := make([]byte, 1024); return &b }
	p.pool4K.New = func() interface{} { b := make([]byte, 4096); return &b }
	p.pool16K.New = func() interface{} { b := make([]byte, 16384); return &b }
	return p
}

func (p *BufferPool) tier(size int) *sync.Pool {
	switch {
	case size <= 1024:
		return &p.pool1K
	case size <= 4096:
		return &p.pool4K
	case size <= 16384:
		return &p.pool16K
	default:
		return nil
	}
}

// Get returns a buffer of at least size bytes.
func (p *BufferPool) Get(size int) []byte {
	if p.disabled {
		return make([]byte, size)
	}
	t := p.tier(size)
	if t == nil {
		return make([]byte, size)
	}
	buf := t.Get().(*[]byte)
	if cap(*buf) < size {
		return make([]byte, size)
	}
	return (*buf)[:size]
}

// Put returns buf to the pool it came from, if any.
func (p *BufferPool) Put(buf []byte) {
	if p.disabled || len(buf) == 0 {
		return
	}
	full := buf[:cap(buf)]
	t := p.tier(cap(full))
	if t == nil {
		return
	}
	t.Put(&full)
}
