package puffin

import (
	"fmt"
	"io"
	"os"
)

// ByteSource is a random-access byte source backing a Reader. os.File
// satisfies io.ReaderAt directly; Size must be cached or derived by the
// implementation, since io.ReaderAt alone doesn't expose a length.
type ByteSource interface {
	io.ReaderAt
	Size() int64
}

// WriteStream is the output stream a Writer appends to. Position reports
// cumulative bytes written so far, letting the writer record blob offsets
// without a separate counting wrapper.
type WriteStream interface {
	io.Writer
	Position() int64
	Close() error
}

// ByteSink produces the WriteStream a Writer appends to.
type ByteSink interface {
	Create() (WriteStream, error)
}

// FileSource wraps *os.File to implement ByteSource. os.File has ReadAt but
// not Size, so the size is cached at construction.
type FileSource struct {
	file *os.File
	size int64
}

// OpenFile opens path for random-access reading.
func OpenFile(path string) (*FileSource, error) {
	f, err := os.Open(path) //nolint:gosec // caller-provided path is intentional
	if err != nil {
		return nil, wrapErr(KindStreamReadError, err, "open %s", path)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, wrapErr(KindStreamReadError, err, "stat %s", path)
	}
	return &FileSource{file: f, size: info.Size()}, nil
}

// ReadAt implements io.ReaderAt.
func (s *FileSource) ReadAt(p []byte, off int64) (int, error) {
	return s.file.ReadAt(p, off)
}

// Size returns the file's size as of open time.
func (s *FileSource) Size() int64 {
	return s.size
}

// Close releases the underlying file handle.
func (s *FileSource) Close() error {
	return s.file.Close()
}

// FileSink creates a position-tracking WriteStream backed by an os.File.
type FileSink struct {
	path      string
	overwrite bool
}

// CreateFile returns a ByteSink that opens path for writing when Create is
// called. overwrite selects create-or-overwrite semantics (os.O_TRUNC) over
// create-exclusive semantics (os.O_EXCL).
func CreateFile(path string, overwrite bool) (*FileSink, error) {
	return &FileSink{path: path, overwrite: overwrite}, nil
}

// Create implements ByteSink.
func (s *FileSink) Create() (WriteStream, error) {
	flags := os.O_CREATE | os.O_WRONLY
	if s.overwrite {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(s.path, flags, 0o644) //nolint:gosec // caller-provided path is intentional
	if err != nil {
		return nil, wrapErr(KindStreamWriteError, err, "create %s", s.path)
	}
	return &countingWriter{file: f}, nil
}

// countingWriter wraps *os.File to track cumulative bytes written, the way
// the teacher's archive writer tracks output position while streaming
// entries.
type countingWriter struct {
	file *os.File
	pos  int64
}

func (w *countingWriter) Write(p []byte) (int, error) {
	n, err := w.file.Write(p)
	w.pos += int64(n)
	if err != nil {
		return n, fmt.Errorf("write: %w", err)
	}
	return n, nil
}

func (w *countingWriter) Position() int64 {
	return w.pos
}

func (w *countingWriter) Close() error {
	return w.file.Close()
}

var (
	_ ByteSource = (*FileSource)(nil)
	_ ByteSink   = (*FileSink)(nil)
	_ WriteStream = (*countingWriter)(nil)
)
