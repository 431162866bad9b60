package rwf

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danmuck/rwfcodec/internal/rwf/wire"
)

// decodeFieldIDs walks the remaining entries of the current field list.
func decodeFieldIDs(t *testing.T, dec *DecodeIterator) []int16 {
	t.Helper()
	var ids []int16
	var e FieldEntry
	for {
		err := e.Decode(dec)
		if errors.Is(err, EndOfContainer) {
			return ids
		}
		require.NoError(t, err)
		ids = append(ids, e.FieldID)
	}
}

func TestFieldListCountIsBackpatched(t *testing.T) {
	it := newEncoder(t, 64)
	fl := FieldList{Flags: FieldListHasStandardData}
	require.NoError(t, fl.EncodeInit(it, nil, 0))
	for i, v := range []Primitive{NewInt(1), NewUInt(2), NewReal(3, RealExponent0)} {
		e := FieldEntry{FieldID: int16(i + 1)}
		require.NoError(t, e.Encode(it, v))
	}
	require.NoError(t, fl.EncodeComplete(it, true))
	assert.Equal(t, 0, it.Depth())

	want := []byte{
		0x08, 0x00, 0x03,
		0x00, 0x01, 0x01, 0x01,
		0x00, 0x02, 0x01, 0x02,
		0x00, 0x03, 0x02, 0x0E, 0x03,
	}
	assert.Equal(t, want, it.Bytes())

	dec := newDecoder(t, it.Bytes())
	var out FieldList
	require.NoError(t, out.Decode(dec, nil))
	var e FieldEntry
	require.NoError(t, e.Decode(dec))
	var x Int
	require.NoError(t, x.Decode(dec))
	assert.Equal(t, int64(1), x.Value())
	assert.Equal(t, []int16{2, 3}, decodeFieldIDs(t, dec))
	assert.Equal(t, 0, dec.Depth())
}

func TestContainerCompleteFalseRestoresPosition(t *testing.T) {
	it := newEncoder(t, 64)
	require.NoError(t, NewInt(7).Encode(it))
	before := it.Len()

	fl := FieldList{Flags: FieldListHasStandardData}
	require.NoError(t, fl.EncodeInit(it, nil, 0))
	require.NoError(t, (&FieldEntry{FieldID: 1}).Encode(it, NewInt(1)))
	require.NoError(t, fl.EncodeComplete(it, false))

	assert.Equal(t, before, it.Len())
	assert.Equal(t, 0, it.Depth())
}

func TestEntryCompleteFalseDropsEntry(t *testing.T) {
	it := newEncoder(t, 128)
	fl := FieldList{Flags: FieldListHasStandardData}
	require.NoError(t, fl.EncodeInit(it, nil, 0))
	require.NoError(t, (&FieldEntry{FieldID: 1}).Encode(it, NewInt(1)))

	nested := FieldEntry{FieldID: 2}
	require.NoError(t, nested.EncodeInit(it, 0))
	el := ElementList{Flags: ElementListHasStandardData}
	require.NoError(t, el.EncodeInit(it, nil, 0))
	require.NoError(t, (&ElementEntry{Name: "x"}).Encode(it, NewInt(9)))
	require.NoError(t, el.EncodeComplete(it, true))
	require.NoError(t, nested.EncodeComplete(it, false))

	require.NoError(t, (&FieldEntry{FieldID: 3}).Encode(it, NewInt(3)))
	require.NoError(t, fl.EncodeComplete(it, true))

	dec := newDecoder(t, it.Bytes())
	require.NoError(t, (&FieldList{}).Decode(dec, nil))
	assert.Equal(t, []int16{1, 3}, decodeFieldIDs(t, dec))
}

func nestFieldLists(it *EncodeIterator, n int) error {
	for i := 0; i < n; i++ {
		fl := FieldList{Flags: FieldListHasStandardData}
		if err := fl.EncodeInit(it, nil, 0); err != nil {
			return err
		}
		e := FieldEntry{FieldID: int16(i)}
		if err := e.EncodeInit(it, 0); err != nil {
			return err
		}
	}
	return nil
}

func TestEncodeDepthExceeded(t *testing.T) {
	it := newEncoder(t, 512)
	require.NoError(t, nestFieldLists(it, MaxLevels))
	assert.Equal(t, MaxLevels, it.Depth())
	fl := FieldList{Flags: FieldListHasStandardData}
	requireCode(t, DepthExceeded, fl.EncodeInit(it, nil, 0))
	assert.Equal(t, MaxLevels, it.Depth())

	requireCode(t, InvalidArgument, it.SetMaxDepth(MaxLevels+1))
	it = newEncoder(t, 64)
	require.NoError(t, it.SetMaxDepth(1))
	requireCode(t, DepthExceeded, nestFieldLists(it, 2))
}

func TestDecodeDepthExceeded(t *testing.T) {
	it := newEncoder(t, 128)
	require.NoError(t, nestFieldLists(it, 3))
	require.NoError(t, (&FieldList{}).EncodeInit(it, nil, 0))
	require.NoError(t, (&FieldList{}).EncodeComplete(it, true))
	for i := 0; i < 3; i++ {
		require.NoError(t, (&FieldEntry{}).EncodeComplete(it, true))
		require.NoError(t, (&FieldList{}).EncodeComplete(it, true))
	}

	dec := newDecoder(t, it.Bytes())
	require.NoError(t, dec.SetMaxDepth(2))
	var fl FieldList
	var e FieldEntry
	require.NoError(t, fl.Decode(dec, nil))
	require.NoError(t, e.Decode(dec))
	require.NoError(t, fl.Decode(dec, nil))
	require.NoError(t, e.Decode(dec))
	requireCode(t, DepthExceeded, fl.Decode(dec, nil))
}

func TestBufferTooSmallThenGrow(t *testing.T) {
	it := newEncoder(t, 8)
	fl := FieldList{Flags: FieldListHasStandardData}
	require.NoError(t, fl.EncodeInit(it, nil, 0))
	require.NoError(t, (&FieldEntry{FieldID: 1}).Encode(it, NewInt(1)))
	written := it.Len()

	e := FieldEntry{FieldID: 2}
	requireCode(t, BufferTooSmall, e.Encode(it, NewASCII("abcdef")))
	assert.Equal(t, written, it.Len(), "failed entry must leave no bytes behind")

	require.NoError(t, it.Grow(64))
	require.NoError(t, e.Encode(it, NewASCII("abcdef")))
	require.NoError(t, fl.EncodeComplete(it, true))

	dec := newDecoder(t, it.Bytes())
	require.NoError(t, (&FieldList{}).Decode(dec, nil))
	assert.Equal(t, []int16{1, 2}, decodeFieldIDs(t, dec))
}

func TestGrowStopsAtMaxBufferSize(t *testing.T) {
	it := newEncoder(t, 8)
	require.NoError(t, it.SetMaxBufferSize(20))
	require.NoError(t, NewUInt(0xFFFFFF).Encode(it))
	written := it.Len()

	requireCode(t, BufferTooSmall, it.Grow(13))
	assert.Equal(t, written, it.Len())
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF}, it.Bytes())

	require.NoError(t, it.Grow(4))
	require.NoError(t, it.Grow(4))
	requireCode(t, BufferTooSmall, it.Grow(1))
	assert.Equal(t, written, it.Len())
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF}, it.Bytes())

	requireCode(t, InvalidArgument, it.SetMaxBufferSize(-1))
	it.Clear()
	require.NoError(t, it.SetBuffer(wire.NewBuffer(8), MajorVersion, MinorVersion))
	require.NoError(t, it.Grow(100))
}

func TestRealignShiftsOpenLevels(t *testing.T) {
	it := newEncoder(t, 32)
	fl := FieldList{Flags: FieldListHasStandardData}
	require.NoError(t, fl.EncodeInit(it, nil, 0))
	entry := FieldEntry{FieldID: 1}
	require.NoError(t, entry.EncodeInit(it, 0))

	dst := wire.NewBuffer(128)
	require.NoError(t, dst.SetPosition(10))
	require.NoError(t, it.Realign(dst))
	assert.Equal(t, 10, it.Position()-it.Len())

	require.NoError(t, NewUInt(500).Encode(it))
	require.NoError(t, entry.EncodeComplete(it, true))
	require.NoError(t, fl.EncodeComplete(it, true))

	dec := newDecoder(t, it.Bytes())
	require.NoError(t, (&FieldList{}).Decode(dec, nil))
	var e FieldEntry
	require.NoError(t, e.Decode(dec))
	var u UInt
	require.NoError(t, u.Decode(dec))
	assert.Equal(t, uint64(500), u.Value())

	requireCode(t, BufferTooSmall, it.Realign(wire.NewBuffer(4)))
}

func TestLengthMarkWidens(t *testing.T) {
	it := newEncoder(t, 1024)
	fl := FieldList{Flags: FieldListHasStandardData}
	require.NoError(t, fl.EncodeInit(it, nil, 0))
	entry := FieldEntry{FieldID: 1}
	require.NoError(t, entry.EncodeInit(it, 10))

	blob := bytes.Repeat([]byte{0xAB}, 300)
	el := ElementList{Flags: ElementListHasStandardData}
	require.NoError(t, el.EncodeInit(it, nil, 0))
	require.NoError(t, (&ElementEntry{Name: "blob"}).Encode(it, NewBuffer(blob)))
	require.NoError(t, el.EncodeComplete(it, true))
	require.NoError(t, entry.EncodeComplete(it, true))
	require.NoError(t, fl.EncodeComplete(it, true))

	dec := newDecoder(t, it.Bytes())
	require.NoError(t, (&FieldList{}).Decode(dec, nil))
	var fe FieldEntry
	require.NoError(t, fe.Decode(dec))
	assert.Greater(t, len(fe.EncodedData), 0xFD)

	var inner ElementList
	require.NoError(t, inner.Decode(dec, nil))
	var ee ElementEntry
	require.NoError(t, ee.Decode(dec))
	assert.Equal(t, "blob", ee.Name)
	assert.Equal(t, blob, ee.EncodedData)
	assert.ErrorIs(t, ee.Decode(dec), EndOfContainer)
	assert.ErrorIs(t, fe.Decode(dec), EndOfContainer)
}

func TestEncodeWithoutBuffer(t *testing.T) {
	it := NewEncodeIterator()
	requireCode(t, InvalidArgument, NewInt(1).Encode(it))
	requireCode(t, InvalidArgument, (&FieldList{}).EncodeInit(it, nil, 0))
	requireCode(t, InvalidArgument, it.SetBuffer(wire.NewBuffer(8), MajorVersion+1, 0))
}

func TestIteratorPool(t *testing.T) {
	it := AcquireEncodeIterator()
	require.NoError(t, it.SetBuffer(wire.NewBuffer(8), MajorVersion, MinorVersion))
	require.NoError(t, NewInt(1).Encode(it))
	ReleaseEncodeIterator(it)

	again := AcquireEncodeIterator()
	assert.Nil(t, again.Bytes())
	assert.Equal(t, 0, again.Depth())
	ReleaseEncodeIterator(again)

	dec := AcquireDecodeIterator()
	assert.Equal(t, 0, dec.Depth())
	ReleaseDecodeIterator(dec)
}
