package puffin

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
)

// jsonBlobMetadata mirrors the on-disk field order and omitempty rules for
// one blob entry. Field order here is the emission order: encoding/json
// serializes struct fields in declaration order, which is how this package
// gets a stable key order without an ordered-map library.
type jsonBlobMetadata struct {
	Type              string            `json:"type"`
	Fields            []int64           `json:"fields"`
	SnapshotID        int64             `json:"snapshot-id"`
	SequenceNumber    int64             `json:"sequence-number"`
	Offset            int64             `json:"offset"`
	Length            int64             `json:"length"`
	CompressionCodec  string            `json:"compression-codec,omitempty"`
	Properties        map[string]string `json:"properties,omitempty"`
}

type jsonFileMetadata struct {
	Blobs      []jsonBlobMetadata `json:"blobs"`
	Properties map[string]string  `json:"properties,omitempty"`
}

// marshalFileMetadata serializes m to the canonical compact JSON schema. If
// pretty is true, output uses 2-space indentation.
func marshalFileMetadata(m FileMetadata, pretty bool) ([]byte, error) {
	jm := jsonFileMetadata{
		Blobs:      make([]jsonBlobMetadata, len(m.Blobs)),
		Properties: m.Properties,
	}
	for i, b := range m.Blobs {
		fields := make([]int64, len(b.InputFields))
		for j, f := range b.InputFields {
			fields[j] = int64(f)
		}
		jm.Blobs[i] = jsonBlobMetadata{
			Type:             b.Type,
			Fields:           fields,
			SnapshotID:       b.SnapshotID,
			SequenceNumber:   b.SequenceNumber,
			Offset:           b.Offset,
			Length:           b.Length,
			CompressionCodec: b.CompressionCodec.codecName(),
			Properties:       b.Properties,
		}
	}
	var (
		out []byte
		err error
	)
	if pretty {
		out, err = json.MarshalIndent(jm, "", "  ")
	} else {
		out, err = json.Marshal(jm)
	}
	if err != nil {
		return nil, wrapErr(KindInternalError, err, "serialize file metadata")
	}
	return out, nil
}

// parseFileMetadata strictly parses the footer JSON payload, enforcing
// required fields, int32 field ranges, and exact error text for the
// documented failure modes.
func parseFileMetadata(data []byte) (FileMetadata, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	var top map[string]json.RawMessage
	if err := dec.Decode(&top); err != nil {
		return FileMetadata{}, jsonStructuralErr(err)
	}
	var properties map[string]string
	if props, ok := top["properties"]; ok {
		if err := json.Unmarshal(props, &properties); err != nil {
			return FileMetadata{}, jsonStructuralErr(err)
		}
	}
	blobsRaw, ok := top["blobs"]
	if !ok {
		return FileMetadata{}, newErr(KindInvalidFooterPayload, "Cannot parse missing field: blobs")
	}
	var blobArray []json.RawMessage
	if err := json.Unmarshal(blobsRaw, &blobArray); err != nil {
		return FileMetadata{}, newErr(KindInvalidFooterPayload,
			"Cannot parse blobs from non-array: %s", string(blobsRaw))
	}

	blobs := make([]BlobMetadata, len(blobArray))
	for i, entry := range blobArray {
		bm, err := parseBlobMetadataJSON(entry)
		if err != nil {
			return FileMetadata{}, err
		}
		blobs[i] = bm
	}
	return newFileMetadata(blobs, properties), nil
}

func parseBlobMetadataJSON(entry json.RawMessage) (BlobMetadata, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(entry, &fields); err != nil {
		return BlobMetadata{}, jsonStructuralErr(err)
	}

	typ, err := requiredString(fields, "type")
	if err != nil {
		return BlobMetadata{}, err
	}
	fieldIDs, err := requiredInt32Array(fields, "fields")
	if err != nil {
		return BlobMetadata{}, err
	}
	snapshotID, err := requiredInt64(fields, "snapshot-id")
	if err != nil {
		return BlobMetadata{}, err
	}
	sequenceNumber, err := requiredInt64(fields, "sequence-number")
	if err != nil {
		return BlobMetadata{}, err
	}
	offset, err := requiredInt64(fields, "offset")
	if err != nil {
		return BlobMetadata{}, err
	}
	length, err := requiredInt64(fields, "length")
	if err != nil {
		return BlobMetadata{}, err
	}

	var compression Compression
	if raw, ok := fields["compression-codec"]; ok {
		var name string
		if err := json.Unmarshal(raw, &name); err != nil {
			return BlobMetadata{}, jsonStructuralErr(err)
		}
		compression, err = ParseCompression(name)
		if err != nil {
			return BlobMetadata{}, err
		}
	}

	var properties map[string]string
	if raw, ok := fields["properties"]; ok {
		if err := json.Unmarshal(raw, &properties); err != nil {
			return BlobMetadata{}, jsonStructuralErr(err)
		}
	}

	// type/fields presence is a JSON-schema concern and already enforced
	// above; offset/length positivity is a model invariant (§3), enforced
	// here so a malformed footer never produces an Ok BlobMetadata. The
	// violation is reported as InvalidFooterPayload (a Format-family
	// error), not NewBlobMetadata's InvalidArgument, since this failure
	// comes from parsing untrusted footer bytes, not from an API caller.
	if offset < 0 {
		return BlobMetadata{}, newErr(KindInvalidFooterPayload, "blob offset must be >= 0, got %d", offset)
	}
	if length <= 0 {
		return BlobMetadata{}, newErr(KindInvalidFooterPayload, "blob length must be > 0, got %d", length)
	}
	if typ == "" {
		return BlobMetadata{}, newErr(KindInvalidFooterPayload, "blob type must not be empty")
	}
	if len(fieldIDs) == 0 {
		return BlobMetadata{}, newErr(KindInvalidFooterPayload, "blob fields must not be empty")
	}

	return BlobMetadata{
		Type:             typ,
		InputFields:      fieldIDs,
		SnapshotID:       snapshotID,
		SequenceNumber:   sequenceNumber,
		Offset:           offset,
		Length:           length,
		CompressionCodec: compression,
		Properties:       properties,
	}, nil
}

func requiredString(fields map[string]json.RawMessage, name string) (string, error) {
	raw, ok := fields[name]
	if !ok {
		return "", newErr(KindInvalidFooterPayload, "Cannot parse missing field: %s", name)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", jsonStructuralErr(err)
	}
	return s, nil
}

func requiredInt64(fields map[string]json.RawMessage, name string) (int64, error) {
	raw, ok := fields[name]
	if !ok {
		return 0, newErr(KindInvalidFooterPayload, "Cannot parse missing field: %s", name)
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, jsonStructuralErr(err)
	}
	return n, nil
}

// requiredInt32Array parses "fields" as an array of int32 values. A value
// outside the int32 range fails with the literal out-of-range number in the
// error message, matching the documented diagnostic.
func requiredInt32Array(fields map[string]json.RawMessage, name string) ([]int32, error) {
	raw, ok := fields[name]
	if !ok {
		return nil, newErr(KindInvalidFooterPayload, "Cannot parse missing field: %s", name)
	}
	var numbers []json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&numbers); err != nil {
		return nil, jsonStructuralErr(err)
	}
	out := make([]int32, len(numbers))
	for i, n := range numbers {
		f, err := n.Float64()
		if err != nil {
			return nil, jsonStructuralErr(err)
		}
		if f < math.MinInt32 || f > math.MaxInt32 || f != math.Trunc(f) {
			return nil, newErr(KindInvalidFooterPayload,
				"Cannot parse integer from non-int value in %s: %s", name, n.String())
		}
		out[i] = int32(f)
	}
	return out, nil
}

// jsonStructuralErr maps a decode error to an InvalidFooterPayload error
// whose message mentions "end-of-input" for EOF/truncation cases, matching
// the documented diagnostic for structural JSON errors.
func jsonStructuralErr(err error) *Error {
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return wrapErr(KindInvalidFooterPayload, err, "Cannot parse footer JSON: unexpected end-of-input")
	}
	return wrapErr(KindInvalidFooterPayload, err, "Cannot parse footer JSON")
}
