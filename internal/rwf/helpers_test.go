package rwf

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/danmuck/rwfcodec/internal/rwf/wire"
	"github.com/danmuck/rwfcodec/internal/testutil/testlog"
)

func newEncoder(t *testing.T, size int) *EncodeIterator {
	t.Helper()
	testlog.Start(t)
	it := NewEncodeIterator()
	require.NoError(t, it.SetBuffer(wire.NewBuffer(size), MajorVersion, MinorVersion))
	return it
}

func newDecoder(t *testing.T, p []byte) *DecodeIterator {
	t.Helper()
	it := NewDecodeIterator()
	require.NoError(t, it.SetBytes(p))
	return it
}

func requireCode(t *testing.T, want Code, err error) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, want, CodeOf(err), "error: %v", err)
}

// encodeValue encodes v alone and returns a copy of the bytes.
func encodeValue(t *testing.T, v Primitive) []byte {
	t.Helper()
	it := newEncoder(t, 64)
	require.NoError(t, v.Encode(it))
	return append([]byte(nil), it.Bytes()...)
}
