package puffin

import (
	"bytes"
	"encoding/binary"
)

// On-disk constants, per the format's external interface.
const (
	// MagicLength is the size in bytes of a single magic marker.
	MagicLength = 4
	// FooterStructLength is the size in bytes of the fixed trailer.
	FooterStructLength = 16
	// FooterStartMagicLength is the size of the magic marker that opens
	// the footer, duplicating the header magic.
	FooterStartMagicLength = 4

	footerStructPayloadSizeOffset = 0
	footerStructFlagsOffset       = 4
	footerStructMagicOffset       = 12

	// flagFooterCompressed is bit 0 of the FooterStruct flags field: set
	// when the footer payload is Zstd-compressed.
	flagFooterCompressed uint32 = 1 << 0
)

// Magic is the literal four-byte sequence that opens the file and the
// footer, and is echoed inside the FooterStruct trailer.
var Magic = [MagicLength]byte{0x50, 0x46, 0x41, 0x31} // "PFA1"

// footerStruct is the 16-byte trailer that bootstraps random-access
// readers: a declared payload size, a flags bitmask, and a repeated magic
// check, encoded and decoded by hand the way a fixed-size binary trailer is
// elsewhere in the retrieval pack (little-endian, explicit offsets).
type footerStruct struct {
	payloadSize uint32
	flags       uint32
}

func (f footerStruct) compressed() bool {
	return f.flags&flagFooterCompressed != 0
}

func (f footerStruct) encode() [FooterStructLength]byte {
	var buf [FooterStructLength]byte
	binary.LittleEndian.PutUint32(buf[footerStructPayloadSizeOffset:], f.payloadSize)
	binary.LittleEndian.PutUint32(buf[footerStructFlagsOffset:], f.flags)
	copy(buf[footerStructMagicOffset:], Magic[:])
	return buf
}

func decodeFooterStruct(buf []byte) (footerStruct, error) {
	if len(buf) != FooterStructLength {
		return footerStruct{}, newErr(KindInternalError, "footer struct buffer has wrong length: %d", len(buf))
	}
	if !bytes.Equal(buf[footerStructMagicOffset:footerStructMagicOffset+MagicLength], Magic[:]) {
		return footerStruct{}, newErr(KindInvalidMagic, "footer struct magic mismatch")
	}
	return footerStruct{
		payloadSize: binary.LittleEndian.Uint32(buf[footerStructPayloadSizeOffset:]),
		flags:       binary.LittleEndian.Uint32(buf[footerStructFlagsOffset:]),
	}, nil
}
