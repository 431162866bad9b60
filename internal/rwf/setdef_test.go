package rwf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFieldSetDefsRoundTrip(t *testing.T) {
	db := NewLocalFieldSetDefDb()
	require.NoError(t, db.Set(FieldSetDef{SetID: 0, Entries: []FieldSetDefEntry{{FieldID: 22, DataType: DataTypeReal4RB}}}))
	require.NoError(t, db.Set(FieldSetDef{SetID: 15, Entries: []FieldSetDefEntry{
		{FieldID: -3, DataType: DataTypeUInt8},
		{FieldID: 300, DataType: DataTypeASCIIString},
	}}))

	it := newEncoder(t, 64)
	require.NoError(t, db.Encode(it))

	out := NewLocalFieldSetDefDb()
	require.NoError(t, out.DecodeBytes(it.Bytes()))
	require.NotNil(t, out.Definition(15))
	assert.Equal(t, db.Definition(15).Entries, out.Definition(15).Entries)
	assert.Equal(t, db.Definition(0).Entries, out.Definition(0).Entries)
	assert.Nil(t, out.Definition(3))

	out.Clear()
	assert.Nil(t, out.Definition(0))
	assert.Equal(t, BlankSetDefID, out.Definitions[0].SetID)
}

func TestZeroValueLocalSetDefsAreEmpty(t *testing.T) {
	var fields LocalFieldSetDefDb
	for id := 0; id <= MaxLocalSetID; id++ {
		assert.Nil(t, fields.Definition(id), "set id %d", id)
	}
	require.NoError(t, fields.Set(FieldSetDef{SetID: 4, Entries: []FieldSetDefEntry{{FieldID: 22, DataType: DataTypeReal}}}))

	it := newEncoder(t, 64)
	require.NoError(t, fields.Encode(it))
	assert.Equal(t, []byte{0x00, 0x01, 0x04, 0x01, 0x00, 0x16, byte(DataTypeReal)}, it.Bytes())

	var out LocalFieldSetDefDb
	require.NoError(t, out.DecodeBytes(it.Bytes()))
	require.NotNil(t, out.Definition(4))
	assert.Nil(t, out.Definition(0))

	var elements LocalElementSetDefDb
	assert.Nil(t, elements.Definition(0))
}

func TestLocalElementSetDefsRoundTrip(t *testing.T) {
	db := NewLocalElementSetDefDb()
	require.NoError(t, db.Set(ElementSetDef{SetID: 2, Entries: []ElementSetDefEntry{
		{Name: "Name", DataType: DataTypeASCIIString},
		{Name: "Port", DataType: DataTypeUInt2},
	}}))

	it := newEncoder(t, 64)
	require.NoError(t, db.Encode(it))
	dec := newDecoder(t, it.Bytes())
	out := NewLocalElementSetDefDb()
	require.NoError(t, out.Decode(dec))
	require.NotNil(t, out.Definition(2))
	assert.Equal(t, "Port", out.Definition(2).Entries[1].Name)
	assert.Equal(t, DataTypeUInt2, out.Definition(2).Entries[1].DataType)
}

func TestLocalSetDefsRejectMalformedInput(t *testing.T) {
	cases := []struct {
		name string
		in   []byte
		want Code
	}{
		{"short header", []byte{0}, IncompleteData},
		{"no definitions", []byte{0, 0}, Failure},
		{"too many definitions", []byte{0, 17}, Failure},
		{"id above local range", []byte{0, 1, 0x10, 0}, Failure},
		{"duplicate id", []byte{0, 2, 1, 0, 1, 0}, Failure},
		{"truncated entries", []byte{0, 1, 1, 2, 0, 5}, IncompleteData},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			requireCode(t, tc.want, NewLocalFieldSetDefDb().DecodeBytes(tc.in))
			requireCode(t, tc.want, NewLocalElementSetDefDb().DecodeBytes(tc.in))
		})
	}
}

func TestLocalSetDefPlacement(t *testing.T) {
	db := NewLocalFieldSetDefDb()
	requireCode(t, InvalidArgument, db.Set(FieldSetDef{SetID: 16}))
	requireCode(t, InvalidArgument, db.Set(FieldSetDef{SetID: -1}))
	require.NoError(t, db.Set(FieldSetDef{SetID: 1, Entries: []FieldSetDefEntry{{FieldID: 1, DataType: DataTypeInt1}}}))

	it := newEncoder(t, 64)
	fl := FieldList{Flags: FieldListHasStandardData}
	require.NoError(t, fl.EncodeInit(it, nil, 0))
	requireCode(t, InvalidArgument, db.Encode(it))

	dec := newDecoder(t, encodeFieldList(t, 1))
	require.NoError(t, (&FieldList{}).Decode(dec, nil))
	requireCode(t, InvalidArgument, NewLocalFieldSetDefDb().Decode(dec))
}

func TestSetCopiesEntries(t *testing.T) {
	entries := []FieldSetDefEntry{{FieldID: 1, DataType: DataTypeInt1}}
	db := NewLocalFieldSetDefDb()
	require.NoError(t, db.Set(FieldSetDef{SetID: 0, Entries: entries}))
	entries[0].FieldID = 99
	assert.Equal(t, int16(1), db.Definition(0).Entries[0].FieldID)
}

func TestGlobalSetDefDb(t *testing.T) {
	db := NewGlobalFieldSetDefDb()
	requireCode(t, InvalidArgument, db.Add(FieldSetDef{SetID: MaxLocalSetID}))
	requireCode(t, InvalidArgument, db.Add(FieldSetDef{SetID: MaxGlobalSetID + 1}))
	for _, id := range []int{300, 16, MaxGlobalSetID} {
		require.NoError(t, db.Add(FieldSetDef{SetID: id, Entries: []FieldSetDefEntry{{FieldID: 1, DataType: DataTypeInt}}}))
	}
	requireCode(t, InvalidArgument, db.Add(FieldSetDef{SetID: 16}))
	assert.Equal(t, []int{16, 300, MaxGlobalSetID}, db.IDs())
	assert.Equal(t, 3, db.Len())
	assert.NotNil(t, db.Definition(300))
	assert.Nil(t, db.Definition(301))

	db.Clear()
	assert.Equal(t, 0, db.Len())

	var nilDb *GlobalFieldSetDefDb
	assert.Nil(t, nilDb.Definition(16))
}

func TestGlobalElementSetDefDb(t *testing.T) {
	db := NewGlobalElementSetDefDb()
	require.NoError(t, db.Add(ElementSetDef{SetID: 40, Entries: []ElementSetDefEntry{{Name: "x", DataType: DataTypeInt8}}}))
	requireCode(t, InvalidArgument, db.Add(ElementSetDef{SetID: 40}))
	assert.Equal(t, []int{40}, db.IDs())
	assert.Equal(t, "x", db.Definition(40).Entries[0].Name)
}
