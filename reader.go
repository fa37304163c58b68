package puffin

import (
	"io"
	"log/slog"

	"github.com/meigma/puffin/internal/codec"
)

// Reader reads blob payloads and footer metadata from a Puffin file. It is
// not safe for concurrent use from multiple goroutines; confine an instance
// to one caller at a time.
type Reader struct {
	source   ByteSource
	fileSize int64

	// footerSize is the known or discovered total size of the footer
	// region (start magic + payload + FooterStruct). Zero means not yet
	// discovered.
	footerSize int64

	meta   *FileMetadata
	closed bool

	// poisoned holds a sticky error recorded at construction time when a
	// bad footer-size hint is supplied; every subsequent call returns it
	// unchanged instead of re-deriving the same failure.
	poisoned error

	logger *slog.Logger
}

// OpenReader constructs a Reader over source. fileSize and footerSize are
// optional hints (nil means "unknown"); supplying footerSize skips footer
// discovery. A bad footerSize hint does not return an error immediately —
// it poisons the reader so every subsequent operation reports the same
// InvalidFooterSize/InvalidFileLength failure, mirroring a constructor that
// cannot itself fail but must still surface a bad input consistently.
func OpenReader(source ByteSource, fileSize, footerSize *int64) (*Reader, error) {
	if source == nil {
		return nil, newErr(KindInvalidArgument, "source must not be nil")
	}
	size := source.Size()
	if fileSize != nil {
		size = *fileSize
	}
	r := &Reader{source: source, fileSize: size, logger: discardLogger}

	if footerSize != nil {
		fs := *footerSize
		switch {
		case fs <= FooterStartMagicLength+FooterStructLength:
			r.poisoned = newErr(KindInvalidFooterSize, "footer size %d must be > %d", fs, FooterStartMagicLength+FooterStructLength)
		case fs > size:
			r.poisoned = newErr(KindInvalidFileLength, "footer size %d exceeds file size %d", fs, size)
		default:
			r.footerSize = fs
		}
	}
	return r, nil
}

func (r *Reader) log() *slog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return discardLogger
}

// discardLogger mirrors the teacher's convention of defaulting to a no-op
// logger rather than nil, so log() is always safe to call.
var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// ensureFooter discovers (if needed) and parses the footer, caching the
// result. Subsequent calls are no-ops once meta is populated.
func (r *Reader) ensureFooter() error {
	if r.poisoned != nil {
		return r.poisoned
	}
	if r.closed {
		return ErrStreamNotInitialized
	}
	if r.meta != nil {
		return nil
	}

	if r.footerSize == 0 {
		size, err := r.discoverFooterSize()
		if err != nil {
			return err
		}
		r.log().Debug("discovered footer size", "size", size)
		r.footerSize = size
	}

	meta, err := r.parseFooter(r.footerSize)
	if err != nil {
		return err
	}
	r.log().Debug("parsed footer", "blobs", len(meta.Blobs))
	r.meta = &meta
	return nil
}

// discoverFooterSize implements the footer-discovery algorithm: read the
// trailing FooterStruct, validate its magic, and derive the total footer
// region size from the declared payload size.
func (r *Reader) discoverFooterSize() (int64, error) {
	if r.fileSize < FooterStructLength {
		return 0, newErr(KindInvalidFileLength, "file size %d is smaller than footer struct", r.fileSize)
	}

	buf := make([]byte, FooterStructLength)
	if err := r.readExact(buf, r.fileSize-FooterStructLength); err != nil {
		return 0, err
	}
	fs, err := decodeFooterStruct(buf)
	if err != nil {
		return 0, err
	}

	total := int64(FooterStartMagicLength) + int64(fs.payloadSize) + int64(FooterStructLength)
	lowerBound := int64(FooterStartMagicLength + FooterStructLength)
	if !(lowerBound < total && total <= r.fileSize) {
		return 0, newErr(KindInvalidFooterSize, "derived footer size %d out of bounds for file size %d", total, r.fileSize)
	}

	startMagic := make([]byte, FooterStartMagicLength)
	if err := r.readExact(startMagic, r.fileSize-total); err != nil {
		return 0, err
	}
	if !magicEqual(startMagic) {
		return 0, newErr(KindInvalidMagic, "footer start magic mismatch")
	}
	return total, nil
}

// parseFooter reads and validates the full footer region of footerSize
// bytes ending at EOF, then decodes its JSON payload.
func (r *Reader) parseFooter(footerSize int64) (FileMetadata, error) {
	buf := make([]byte, footerSize)
	if err := r.readExact(buf, r.fileSize-footerSize); err != nil {
		return FileMetadata{}, err
	}

	if !magicEqual(buf[:FooterStartMagicLength]) {
		return FileMetadata{}, newErr(KindInvalidMagic, "footer start magic mismatch")
	}

	trailer := buf[footerSize-FooterStructLength:]
	fs, err := decodeFooterStruct(trailer)
	if err != nil {
		return FileMetadata{}, err
	}

	expected := int64(FooterStartMagicLength) + int64(fs.payloadSize) + int64(FooterStructLength)
	if expected != footerSize {
		return FileMetadata{}, newErr(KindInvalidFooterSize,
			"footer struct declares size %d, expected %d", expected, footerSize)
	}

	payload := buf[FooterStartMagicLength : FooterStartMagicLength+int64(fs.payloadSize)]
	if fs.compressed() {
		decompressed, err := codec.Decompress(codec.Zstd, payload)
		if err != nil {
			return FileMetadata{}, wrapErr(KindDecompressionError, err, "decompress footer payload")
		}
		payload = decompressed
	}

	meta, err := parseFileMetadata(payload)
	if err != nil {
		return FileMetadata{}, err
	}
	return meta, nil
}

func magicEqual(b []byte) bool {
	if len(b) != MagicLength {
		return false
	}
	for i := range b {
		if b[i] != Magic[i] {
			return false
		}
	}
	return true
}

// readExact reads exactly len(buf) bytes at offset, reporting IncompleteRead
// on a short read.
func (r *Reader) readExact(buf []byte, offset int64) error {
	n, err := r.source.ReadAt(buf, offset)
	if err != nil && err != io.EOF {
		return wrapErr(KindStreamReadError, err, "read at offset %d", offset)
	}
	if n != len(buf) {
		return newErr(KindIncompleteRead, "short read at offset %d: got %d of %d bytes", offset, n, len(buf))
	}
	return nil
}

// GetBlobs returns the ordered list of blobs described by the footer,
// parsing the footer on first call.
func (r *Reader) GetBlobs() ([]BlobMetadata, error) {
	if err := r.ensureFooter(); err != nil {
		return nil, err
	}
	out := make([]BlobMetadata, len(r.meta.Blobs))
	copy(out, r.meta.Blobs)
	return out, nil
}

// Properties returns the cached file-level properties map. Unlike GetBlobs,
// it never triggers a footer parse; it returns an empty map if the footer
// has not been parsed yet (or has no properties).
func (r *Reader) Properties() map[string]string {
	if r.meta == nil {
		return map[string]string{}
	}
	return r.meta.Properties
}

// ReadBlob seeks to meta.Offset, reads exactly meta.Length bytes, and
// decompresses per meta.CompressionCodec.
func (r *Reader) ReadBlob(meta BlobMetadata) ([]byte, error) {
	if r.poisoned != nil {
		return nil, r.poisoned
	}
	if r.closed {
		return nil, ErrStreamNotInitialized
	}
	raw := make([]byte, meta.Length)
	if err := r.readExact(raw, meta.Offset); err != nil {
		return nil, err
	}
	id, err := codecID(meta.CompressionCodec)
	if err != nil {
		return nil, err
	}
	out, err := codec.Decompress(id, raw)
	if err != nil {
		return nil, wrapErr(KindDecompressionError, err, "decompress blob")
	}
	r.log().Debug("read blob", "type", meta.Type, "offset", meta.Offset, "length", meta.Length, "codec", meta.CompressionCodec)
	return out, nil
}

// ReadRange reads length raw (not decompressed) bytes starting at offset,
// for callers that want to combine several adjacent blob payloads into one
// I/O instead of calling ReadBlob per entry. Not part of the documented
// public surface, but doesn't conflict with it.
func (r *Reader) ReadRange(offset, length int64) ([]byte, error) {
	if r.poisoned != nil {
		return nil, r.poisoned
	}
	if r.closed {
		return nil, ErrStreamNotInitialized
	}
	buf := make([]byte, length)
	if err := r.readExact(buf, offset); err != nil {
		return nil, err
	}
	return buf, nil
}

// Close releases the underlying stream. Subsequent GetBlobs, ReadBlob and
// ReadRange calls fail with StreamNotInitialized; Properties keeps returning
// the cached map.
func (r *Reader) Close() error {
	r.closed = true
	if closer, ok := r.source.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func codecID(c Compression) (codec.ID, error) {
	switch c {
	case None:
		return codec.None, nil
	case Lz4:
		return codec.Lz4, nil
	case Zstd:
		return codec.Zstd, nil
	default:
		return codec.None, newErr(KindUnknownCodec, "unknown compression codec %d", c)
	}
}
