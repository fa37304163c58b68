package puffin

// Compression identifies the codec used to compress a blob payload or the
// footer payload. The zero value, None, means the payload is stored as-is.
type Compression uint8

const (
	// None means the payload is not compressed.
	None Compression = iota
	// Lz4 means the payload is framed with LZ4 (content size present).
	Lz4
	// Zstd means the payload is a one-shot Zstd frame (content size present).
	Zstd
)

// String returns the codec's on-disk wire name, or "none" for None.
func (c Compression) String() string {
	switch c {
	case None:
		return "none"
	case Lz4:
		return "lz4"
	case Zstd:
		return "zstd"
	default:
		return "unknown"
	}
}

// codecName returns the wire-format field value for c: "lz4", "zstd", or
// empty for None, since the footer schema omits the field entirely when a
// blob is uncompressed.
func (c Compression) codecName() string {
	if c == None {
		return ""
	}
	return c.String()
}

// ParseCompression maps a wire codec name back to a Compression value. An
// empty name maps to None; any other unrecognized name is an UnknownCodec
// error.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "":
		return None, nil
	case "lz4":
		return Lz4, nil
	case "zstd":
		return Zstd, nil
	default:
		return None, newErr(KindUnknownCodec, "unknown compression codec: %q", name)
	}
}
