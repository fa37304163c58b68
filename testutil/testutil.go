// Package testutil provides in-memory ByteSource/ByteSink implementations
// for testing readers and writers without touching disk.
package testutil

import (
	"bytes"
	"io"
	"os"

	"github.com/meigma/puffin"
)

// MemByteSource implements puffin.ByteSource over an in-memory buffer.
type MemByteSource struct {
	data []byte
}

// NewMemByteSource returns a ByteSource backed by data. The slice is not
// copied; callers must treat it as immutable for the source's lifetime.
func NewMemByteSource(data []byte) *MemByteSource {
	return &MemByteSource{data: data}
}

// ReadAt implements io.ReaderAt over the backing slice.
func (m *MemByteSource) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, os.ErrInvalid
	}
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Size returns the total size of the backing data.
func (m *MemByteSource) Size() int64 {
	return int64(len(m.data))
}

// Bytes returns the backing slice, for test assertions.
func (m *MemByteSource) Bytes() []byte {
	return m.data
}

// MemByteSink implements puffin.ByteSink over a growable in-memory buffer.
type MemByteSink struct {
	buf *bytes.Buffer
}

// NewMemByteSink returns an empty in-memory sink.
func NewMemByteSink() *MemByteSink {
	return &MemByteSink{buf: &bytes.Buffer{}}
}

// Create implements puffin.ByteSink.
func (s *MemByteSink) Create() (puffin.WriteStream, error) {
	return &MemWriteStream{buf: s.buf}, nil
}

// Bytes returns the bytes written to the sink so far.
func (s *MemByteSink) Bytes() []byte {
	return s.buf.Bytes()
}

// MemWriteStream implements puffin.WriteStream over a bytes.Buffer.
type MemWriteStream struct {
	buf    *bytes.Buffer
	closed bool
}

// Write appends p to the buffer.
func (w *MemWriteStream) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

// Position returns the cumulative number of bytes written.
func (w *MemWriteStream) Position() int64 {
	return int64(w.buf.Len())
}

// Close marks the stream closed. The buffer contents remain readable via
// the owning MemByteSink.
func (w *MemWriteStream) Close() error {
	w.closed = true
	return nil
}

var (
	_ puffin.ByteSource = (*MemByteSource)(nil)
	_ puffin.ByteSink   = (*MemByteSink)(nil)
	_ puffin.WriteStream = (*MemWriteStream)(nil)
)
