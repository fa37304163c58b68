package puffin_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/puffin"
	"github.com/meigma/puffin/testutil"
)

func TestWriterEmptyFile(t *testing.T) {
	t.Parallel()

	sink := testutil.NewMemByteSink()
	w, err := puffin.NewWriteBuilder(sink).Build()
	require.NoError(t, err)

	require.NoError(t, w.Close())

	// footer_size = footer-start magic (4) + payload (12) + FooterStruct (16).
	footerSize, err := w.FooterSize()
	require.NoError(t, err)
	assert.Equal(t, int64(32), footerSize)

	// file_size = header magic (4) + footer_size.
	fileSize, err := w.FileSize()
	require.NoError(t, err)
	assert.Equal(t, int64(36), fileSize)

	data := sink.Bytes()
	assert.Equal(t, puffin.Magic[:], data[0:4])
	assert.Equal(t, puffin.Magic[:], data[4:8])
	assert.Equal(t, `{"blobs":[]}`, string(data[8:20]))
}

func TestWriterTwoBlobsUncompressed(t *testing.T) {
	t.Parallel()

	sink := testutil.NewMemByteSink()
	w, err := puffin.NewWriteBuilder(sink).CreatedBy("Test 1234").Build()
	require.NoError(t, err)

	m1, err := w.WriteBlob([]byte("abcdefghi"), "some-blob", []int32{1}, 2, 1, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(4), m1.Offset)
	assert.Equal(t, int64(9), m1.Length)

	m2, err := w.WriteBlob(
		[]byte("some blob \x00 binary data \U0001F92F that is not very very very very very very long, is it?"),
		"some-other-blob", []int32{2}, 2, 1, nil, nil,
	)
	require.NoError(t, err)
	assert.Equal(t, int64(13), m2.Offset)
	assert.Equal(t, int64(83), m2.Length)

	require.NoError(t, w.Close())

	source := testutil.NewMemByteSource(sink.Bytes())
	r, err := puffin.OpenReader(source, nil, nil)
	require.NoError(t, err)
	defer r.Close()

	blobs, err := r.GetBlobs()
	require.NoError(t, err)
	require.Len(t, blobs, 2)
	assert.Equal(t, int64(4), blobs[0].Offset)
	assert.Equal(t, int64(13), blobs[1].Offset)

	payload1, err := r.ReadBlob(blobs[0])
	require.NoError(t, err)
	assert.Equal(t, "abcdefghi", string(payload1))

	payload2, err := r.ReadBlob(blobs[1])
	require.NoError(t, err)
	assert.Len(t, payload2, 83)
}

func TestWriterZstdBlobsRoundTrip(t *testing.T) {
	t.Parallel()

	sink := testutil.NewMemByteSink()
	w, err := puffin.NewWriteBuilder(sink).CompressBlobs(puffin.Zstd).Build()
	require.NoError(t, err)

	payload := []byte("the quick brown fox jumps over the lazy dog, repeatedly, for compressibility")
	meta, err := w.WriteBlob(payload, "test-type", []int32{1, 2}, 10, 1, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, puffin.Zstd, meta.CompressionCodec)

	require.NoError(t, w.Close())

	source := testutil.NewMemByteSource(sink.Bytes())
	r, err := puffin.OpenReader(source, nil, nil)
	require.NoError(t, err)
	defer r.Close()

	blobs, err := r.GetBlobs()
	require.NoError(t, err)
	require.Len(t, blobs, 1)

	got, err := r.ReadBlob(blobs[0])
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestWriterExplicitCompressionOverridesDefault(t *testing.T) {
	t.Parallel()

	sink := testutil.NewMemByteSink()
	w, err := puffin.NewWriteBuilder(sink).CompressBlobs(puffin.Zstd).Build()
	require.NoError(t, err)

	payload := []byte("the quick brown fox jumps over the lazy dog, repeatedly, for compressibility")
	none := puffin.None
	meta, err := w.WriteBlob(payload, "test-type", []int32{1}, 10, 1, &none, nil)
	require.NoError(t, err)
	assert.Equal(t, puffin.None, meta.CompressionCodec)

	require.NoError(t, w.Close())

	source := testutil.NewMemByteSource(sink.Bytes())
	r, err := puffin.OpenReader(source, nil, nil)
	require.NoError(t, err)
	defer r.Close()

	blobs, err := r.GetBlobs()
	require.NoError(t, err)
	require.Len(t, blobs, 1)

	got, err := r.ReadBlob(blobs[0])
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestWriterWriteBlobAfterFinishedFails(t *testing.T) {
	t.Parallel()

	sink := testutil.NewMemByteSink()
	w, err := puffin.NewWriteBuilder(sink).Build()
	require.NoError(t, err)
	require.NoError(t, w.Close())

	_, err = w.WriteBlob([]byte("x"), "type", []int32{1}, 0, 0, nil, nil)
	require.Error(t, err)
	var perr *puffin.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, puffin.KindInvalidState, perr.Kind)
}

func TestWriterCloseIsIdempotent(t *testing.T) {
	t.Parallel()

	sink := testutil.NewMemByteSink()
	w, err := puffin.NewWriteBuilder(sink).Build()
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
}

func TestWriterCompressFooterRoundTrip(t *testing.T) {
	t.Parallel()

	sink := testutil.NewMemByteSink()
	w, err := puffin.NewWriteBuilder(sink).CompressFooter().CreatedBy("Test 1234").Build()
	require.NoError(t, err)

	_, err = w.WriteBlob([]byte("abcdefghi"), "some-blob", []int32{1}, 2, 1, nil, nil)
	require.NoError(t, err)

	require.NoError(t, w.Close())

	source := testutil.NewMemByteSource(sink.Bytes())
	r, err := puffin.OpenReader(source, nil, nil)
	require.NoError(t, err)
	defer r.Close()

	blobs, err := r.GetBlobs()
	require.NoError(t, err)
	require.Len(t, blobs, 1)
	assert.Equal(t, "some-blob", blobs[0].Type)

	props := r.Properties()
	assert.Equal(t, "Test 1234", props["created-by"])

	payload, err := r.ReadBlob(blobs[0])
	require.NoError(t, err)
	assert.Equal(t, "abcdefghi", string(payload))
}

func TestWriteBuilderSetAndSetAll(t *testing.T) {
	t.Parallel()

	sink := testutil.NewMemByteSink()
	w, err := puffin.NewWriteBuilder(sink).
		Set("a", "1").
		SetAll(map[string]string{"b": "2", "c": "3"}).
		Set("c", "overwritten").
		Build()
	require.NoError(t, err)
	require.NoError(t, w.Close())

	source := testutil.NewMemByteSource(sink.Bytes())
	r, err := puffin.OpenReader(source, nil, nil)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.GetBlobs()
	require.NoError(t, err)

	props := r.Properties()
	assert.Equal(t, "1", props["a"])
	assert.Equal(t, "2", props["b"])
	assert.Equal(t, "overwritten", props["c"])
}
