package puffin

import (
	"io"
	"log/slog"

	"github.com/meigma/puffin/internal/codec"
)

// writerState tracks the Writer's position in its state machine.
type writerState uint8

const (
	stateOpen writerState = iota
	stateHeaderWritten
	stateFinished
)

// WriteBuilder accumulates writer configuration before Build opens the
// output stream. Its fluent methods mirror the teacher's CreateOption
// pattern, collapsed into a builder so construction order doesn't matter
// and every setter returns *WriteBuilder for chaining.
type WriteBuilder struct {
	sink             ByteSink
	properties       map[string]string
	compressFooter   bool
	defaultBlobCodec Compression
}

// NewWriteBuilder starts a builder for a Writer that appends to sink.
func NewWriteBuilder(sink ByteSink) *WriteBuilder {
	return &WriteBuilder{
		sink:       sink,
		properties: make(map[string]string),
	}
}

// Set records a single file-level property.
func (b *WriteBuilder) Set(key, value string) *WriteBuilder {
	b.properties[key] = value
	return b
}

// SetAll merges props into the file-level properties.
func (b *WriteBuilder) SetAll(props map[string]string) *WriteBuilder {
	for k, v := range props {
		b.properties[k] = v
	}
	return b
}

// CreatedBy is syntactic sugar for Set("created-by", id).
func (b *WriteBuilder) CreatedBy(id string) *WriteBuilder {
	return b.Set("created-by", id)
}

// CompressFooter enables Zstd compression of the footer JSON payload.
func (b *WriteBuilder) CompressFooter() *WriteBuilder {
	b.compressFooter = true
	return b
}

// CompressBlobs sets the default compression codec applied to blobs written
// without an explicit per-call override.
func (b *WriteBuilder) CompressBlobs(c Compression) *WriteBuilder {
	b.defaultBlobCodec = c
	return b
}

// Build opens the output stream (create-or-overwrite semantics are the
// ByteSink's responsibility) and returns a Writer in state Open.
func (b *WriteBuilder) Build() (*Writer, error) {
	stream, err := b.sink.Create()
	if err != nil {
		return nil, err
	}
	return &Writer{
		stream:           stream,
		properties:       b.properties,
		compressFooter:   b.compressFooter,
		defaultBlobCodec: b.defaultBlobCodec,
		state:            stateOpen,
		logger:           discardLogger,
	}, nil
}

// Writer appends blob payloads and a trailing footer to a WriteStream. It is
// not safe for concurrent use from multiple goroutines.
type Writer struct {
	stream           WriteStream
	properties       map[string]string
	compressFooter   bool
	defaultBlobCodec Compression

	state   writerState
	blobs   []BlobMetadata
	logger  *slog.Logger

	footerSize int64
	fileSize   int64
}

func (w *Writer) log() *slog.Logger {
	if w.logger != nil {
		return w.logger
	}
	return discardLogger
}

func (w *Writer) writeHeaderIfNeeded() error {
	if w.state != stateOpen {
		return nil
	}
	if _, err := w.stream.Write(Magic[:]); err != nil {
		return wrapErr(KindStreamWriteError, err, "write header magic")
	}
	w.log().Debug("wrote file header")
	w.state = stateHeaderWritten
	return nil
}

// WriteBlob compresses payload and appends it to the stream, returning a
// copy of the resulting metadata. compression is optional: nil means "use
// the builder's default codec" (CompressBlobs); a non-nil value, including
// a pointer to None, is honored exactly and overrides the default, since an
// explicit request for no compression on one blob must not be silently
// promoted to the file's default codec.
func (w *Writer) WriteBlob(
	payload []byte,
	typ string,
	inputFields []int32,
	snapshotID, sequenceNumber int64,
	compression *Compression,
	properties map[string]string,
) (BlobMetadata, error) {
	if w.state == stateFinished {
		return BlobMetadata{}, ErrInvalidState
	}
	if len(payload) == 0 {
		return BlobMetadata{}, newErr(KindInvalidArgument, "blob payload must not be empty")
	}

	if err := w.writeHeaderIfNeeded(); err != nil {
		return BlobMetadata{}, err
	}

	codecToUse := w.defaultBlobCodec
	if compression != nil {
		codecToUse = *compression
	}

	offset := w.stream.Position()
	id, err := codecID(codecToUse)
	if err != nil {
		return BlobMetadata{}, err
	}
	compressed, err := codec.Compress(id, payload)
	if err != nil {
		return BlobMetadata{}, wrapErr(KindCompressionError, err, "compress blob")
	}
	if _, err := w.stream.Write(compressed); err != nil {
		return BlobMetadata{}, wrapErr(KindStreamWriteError, err, "write blob payload")
	}

	meta, err := NewBlobMetadata(typ, inputFields, snapshotID, sequenceNumber, offset, int64(len(compressed)), codecToUse, properties)
	if err != nil {
		return BlobMetadata{}, err
	}
	w.blobs = append(w.blobs, meta)
	w.log().Debug("wrote blob", "type", typ, "offset", offset, "length", meta.Length, "codec", codecToUse)
	return meta, nil
}

// Close finalizes the file: writes the footer-start magic, the (optionally
// compressed) footer JSON payload, and the 16-byte FooterStruct trailer,
// then closes the underlying stream. Close is idempotent; a second call is
// a no-op success.
func (w *Writer) Close() error {
	if w.state == stateFinished {
		return nil
	}
	if err := w.writeHeaderIfNeeded(); err != nil {
		return err
	}

	footerOffset := w.stream.Position()
	if _, err := w.stream.Write(Magic[:]); err != nil {
		return wrapErr(KindStreamWriteError, err, "write footer start magic")
	}

	meta := newFileMetadata(w.blobs, w.properties)
	payload, err := marshalFileMetadata(meta, false)
	if err != nil {
		return err
	}

	flags := uint32(0)
	if w.compressFooter {
		compressed, err := codec.Compress(codec.Zstd, payload)
		if err != nil {
			return wrapErr(KindCompressionError, err, "compress footer payload")
		}
		payload = compressed
		flags |= flagFooterCompressed
	}

	if _, err := w.stream.Write(payload); err != nil {
		return wrapErr(KindStreamWriteError, err, "write footer payload")
	}

	trailer := footerStruct{payloadSize: uint32(len(payload)), flags: flags}.encode()
	if _, err := w.stream.Write(trailer[:]); err != nil {
		return wrapErr(KindStreamWriteError, err, "write footer struct")
	}

	w.footerSize = w.stream.Position() - footerOffset
	w.fileSize = w.stream.Position()
	w.state = stateFinished
	w.log().Debug("closed file", "blobs", len(w.blobs), "footer_size", w.footerSize, "file_size", w.fileSize, "footer_compressed", w.compressFooter)
	return w.stream.Close()
}

// FooterSize returns the size in bytes of the footer region written by
// Close. Returns an InvalidState error if called before Close.
func (w *Writer) FooterSize() (int64, error) {
	if w.state != stateFinished {
		return 0, ErrInvalidState
	}
	return w.footerSize, nil
}

// FileSize returns the total size in bytes of the file written by Close.
// Returns an InvalidState error if called before Close.
func (w *Writer) FileSize() (int64, error) {
	if w.state != stateFinished {
		return 0, ErrInvalidState
	}
	return w.fileSize, nil
}

// WrittenBlobsMetadata returns the metadata of every blob written so far, in
// write order.
func (w *Writer) WrittenBlobsMetadata() []BlobMetadata {
	out := make([]BlobMetadata, len(w.blobs))
	copy(out, w.blobs)
	return out
}

var _ io.Closer = (*Writer)(nil)
