package puffin_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/puffin"
	"github.com/meigma/puffin/testutil"
)

func buildFile(t *testing.T, build func(*puffin.WriteBuilder) *puffin.WriteBuilder) []byte {
	t.Helper()
	sink := testutil.NewMemByteSink()
	b := puffin.NewWriteBuilder(sink)
	if build != nil {
		b = build(b)
	}
	w, err := b.Build()
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return sink.Bytes()
}

func TestReaderEmptyFile(t *testing.T) {
	t.Parallel()

	data := buildFile(t, nil)
	source := testutil.NewMemByteSource(data)
	r, err := puffin.OpenReader(source, nil, nil)
	require.NoError(t, err)
	defer r.Close()

	blobs, err := r.GetBlobs()
	require.NoError(t, err)
	assert.Empty(t, blobs)

	assert.Empty(t, r.Properties())
}

func TestReaderKnownFooterSizeSkipsDiscovery(t *testing.T) {
	t.Parallel()

	sink := testutil.NewMemByteSink()
	w, err := puffin.NewWriteBuilder(sink).Build()
	require.NoError(t, err)
	_, err = w.WriteBlob([]byte("payload"), "t", []int32{1}, 1, 1, nil, nil)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	footerSize, err := w.FooterSize()
	require.NoError(t, err)

	data := sink.Bytes()
	source := testutil.NewMemByteSource(data)
	fileSize := int64(len(data))
	r, err := puffin.OpenReader(source, &fileSize, &footerSize)
	require.NoError(t, err)
	defer r.Close()

	blobs, err := r.GetBlobs()
	require.NoError(t, err)
	require.Len(t, blobs, 1)
}

func TestReaderBadFooterSizeHintTooSmallPoisons(t *testing.T) {
	t.Parallel()

	data := buildFile(t, nil)
	source := testutil.NewMemByteSource(data)
	fileSize := int64(len(data))
	tooSmall := int64(puffin.FooterStartMagicLength + puffin.FooterStructLength)
	r, err := puffin.OpenReader(source, &fileSize, &tooSmall)
	require.NoError(t, err)

	_, err = r.GetBlobs()
	require.Error(t, err)
	var perr *puffin.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, puffin.KindInvalidFooterSize, perr.Kind)

	// A poisoned reader reports the same kind on every subsequent
	// footer-triggering call.
	_, err = r.GetBlobs()
	require.Error(t, err)
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, puffin.KindInvalidFooterSize, perr.Kind)
}

func TestReaderBadFooterSizeHintTooLargePoisons(t *testing.T) {
	t.Parallel()

	data := buildFile(t, nil)
	source := testutil.NewMemByteSource(data)
	fileSize := int64(len(data))
	tooLarge := fileSize + 1000
	r, err := puffin.OpenReader(source, &fileSize, &tooLarge)
	require.NoError(t, err)

	_, err = r.GetBlobs()
	require.Error(t, err)
	var perr *puffin.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, puffin.KindInvalidFileLength, perr.Kind)
}

func TestReaderCorruptedTrailingMagicFails(t *testing.T) {
	t.Parallel()

	data := buildFile(t, nil)
	corrupt := make([]byte, len(data))
	copy(corrupt, data)
	corrupt[len(corrupt)-1] ^= 0xFF

	source := testutil.NewMemByteSource(corrupt)
	r, err := puffin.OpenReader(source, nil, nil)
	require.NoError(t, err)

	_, err = r.GetBlobs()
	require.Error(t, err)
	var perr *puffin.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, puffin.KindInvalidMagic, perr.Kind)
}

func TestReaderReadRange(t *testing.T) {
	t.Parallel()

	data := buildFile(t, nil)
	source := testutil.NewMemByteSource(data)
	r, err := puffin.OpenReader(source, nil, nil)
	require.NoError(t, err)
	defer r.Close()

	got, err := r.ReadRange(0, puffin.MagicLength)
	require.NoError(t, err)
	assert.Equal(t, puffin.Magic[:], got)
}

func TestReaderCloseThenOperationFails(t *testing.T) {
	t.Parallel()

	data := buildFile(t, nil)
	source := testutil.NewMemByteSource(data)
	r, err := puffin.OpenReader(source, nil, nil)
	require.NoError(t, err)
	require.NoError(t, r.Close())

	_, err = r.GetBlobs()
	require.ErrorIs(t, err, puffin.ErrStreamNotInitialized)
}
