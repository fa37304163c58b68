package puffin

// BlobMetadata describes one blob payload stored in a Puffin file: its type,
// the input fields it was computed from, the snapshot and sequence number it
// belongs to, its byte range in the file, and any free-form properties.
//
// Construct one with NewBlobMetadata, which validates the invariants below;
// the zero value is not valid.
type BlobMetadata struct {
	Type            string
	InputFields     []int32
	SnapshotID      int64
	SequenceNumber  int64
	Offset          int64
	Length          int64
	CompressionCodec Compression
	Properties      map[string]string
}

// NewBlobMetadata constructs a BlobMetadata, validating the construction-time
// invariants: typ must be non-empty, inputFields must be non-empty, offset
// must be non-negative, and length must be positive.
func NewBlobMetadata(
	typ string,
	inputFields []int32,
	snapshotID, sequenceNumber, offset, length int64,
	compression Compression,
	properties map[string]string,
) (BlobMetadata, error) {
	if typ == "" {
		return BlobMetadata{}, newErr(KindInvalidArgument, "blob type must not be empty")
	}
	if len(inputFields) == 0 {
		return BlobMetadata{}, newErr(KindInvalidArgument, "blob input_fields must not be empty")
	}
	if offset < 0 {
		return BlobMetadata{}, newErr(KindInvalidArgument, "blob offset must be >= 0, got %d", offset)
	}
	if length <= 0 {
		return BlobMetadata{}, newErr(KindInvalidArgument, "blob length must be > 0, got %d", length)
	}
	fields := make([]int32, len(inputFields))
	copy(fields, inputFields)
	return BlobMetadata{
		Type:             typ,
		InputFields:      fields,
		SnapshotID:       snapshotID,
		SequenceNumber:   sequenceNumber,
		Offset:           offset,
		Length:           length,
		CompressionCodec: compression,
		Properties:       properties,
	}, nil
}

// FileMetadata is the fully-parsed footer content: the ordered list of blobs
// stored in the file (possibly empty) and file-level properties.
type FileMetadata struct {
	Blobs      []BlobMetadata
	Properties map[string]string
}

// newFileMetadata constructs a FileMetadata. Unlike the reference
// implementation this accepts an empty blobs slice, matching this format's
// allowance for a Puffin file with no blobs (see the empty-file test
// scenario).
func newFileMetadata(blobs []BlobMetadata, properties map[string]string) FileMetadata {
	return FileMetadata{Blobs: blobs, Properties: properties}
}

// Len returns the number of blobs described by this metadata.
func (m FileMetadata) Len() int {
	return len(m.Blobs)
}

// BlobAt returns the i'th blob's metadata, for callers that prefer
// positional access over ranging over Blobs directly.
func (m FileMetadata) BlobAt(i int) BlobMetadata {
	return m.Blobs[i]
}
