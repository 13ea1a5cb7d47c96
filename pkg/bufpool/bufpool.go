// Package bufpool recycles the byte buffers used to stream file content
// between HTTP bodies, local files and S3 spool files.
//
// Two size classes are pooled:
//   - Chunk buffers (default 32KB), the io.Copy default, for small files
//     and multipart parts
//   - Stream buffers (default 1MB) for bulk uploads and downloads
//
// Larger requests are allocated directly and never pooled.
//
//	n, err := bufpool.Copy(dst, src)
package bufpool

import (
	"io"
	"sync"
)

const (
	// DefaultChunkSize matches the buffer io.Copy allocates on its own.
	DefaultChunkSize = 32 << 10

	// DefaultStreamSize is used for whole-file transfers.
	DefaultStreamSize = 1 << 20
)

// Pool hands out reusable byte slices in two size classes.
type Pool struct {
	chunk      sync.Pool
	stream     sync.Pool
	chunkSize  int
	streamSize int
}

// Config sizes the two classes. Zero values take the defaults.
type Config struct {
	ChunkSize  int
	StreamSize int
}

// NewPool creates a pool. A nil cfg uses the defaults.
func NewPool(cfg *Config) *Pool {
	c := Config{}
	if cfg != nil {
		c = *cfg
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.StreamSize <= c.ChunkSize {
		c.StreamSize = max(DefaultStreamSize, c.ChunkSize*2)
	}

	p := &Pool{chunkSize: c.ChunkSize, streamSize: c.StreamSize}
	p.chunk.New = func() any {
		buf := make([]byte, p.chunkSize)
		return &buf
	}
	p.stream.New = func() any {
		buf := make([]byte, p.streamSize)
		return &buf
	}
	return p
}

// Get returns a slice of length size. The backing array may be larger.
// Return it with Put once done.
func (p *Pool) Get(size int) []byte {
	var bufPtr *[]byte
	switch {
	case size <= p.chunkSize:
		bufPtr = p.chunk.Get().(*[]byte)
	case size <= p.streamSize:
		bufPtr = p.stream.Get().(*[]byte)
	default:
		return make([]byte, size)
	}
	return (*bufPtr)[:size]
}

// Put returns buf to its size class. Buffers of any other capacity are
// left to the garbage collector.
func (p *Pool) Put(buf []byte) {
	full := buf[:cap(buf)]
	switch cap(buf) {
	case p.chunkSize:
		p.chunk.Put(&full)
	case p.streamSize:
		p.stream.Put(&full)
	}
}

// Copy is io.CopyBuffer with a pooled stream buffer.
func (p *Pool) Copy(dst io.Writer, src io.Reader) (int64, error) {
	buf := p.Get(p.streamSize)
	defer p.Put(buf)
	return io.CopyBuffer(dst, src, buf)
}

var globalPool = NewPool(nil)

// Get returns a buffer from the shared pool.
func Get(size int) []byte { return globalPool.Get(size) }

// Put returns a buffer to the shared pool.
func Put(buf []byte) { globalPool.Put(buf) }

// Copy streams src into dst through a buffer from the shared pool.
func Copy(dst io.Writer, src io.Reader) (int64, error) { return globalPool.Copy(dst, src) }
