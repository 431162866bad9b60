package inspect

import (
	"encoding/hex"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danmuck/rwfcodec/internal/observability"
	"github.com/danmuck/rwfcodec/internal/rwf"
	"github.com/danmuck/rwfcodec/internal/rwf/wire"
	"github.com/danmuck/rwfcodec/internal/testutil/testlog"
)

func newEncoder(t *testing.T) *rwf.EncodeIterator {
	t.Helper()
	testlog.Start(t)
	it := rwf.NewEncodeIterator()
	require.NoError(t, it.SetBuffer(wire.NewBuffer(512), rwf.MajorVersion, rwf.MinorVersion))
	return it
}

func bytesOf(it *rwf.EncodeIterator) []byte {
	return append([]byte(nil), it.Bytes()...)
}

func child(t *testing.T, n *Node, name string) *Node {
	t.Helper()
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	require.Failf(t, "missing child", "%q under %q", name, n.Name)
	return nil
}

func TestWalkFieldListUsesTypeHints(t *testing.T) {
	it := newEncoder(t)
	fl := rwf.FieldList{Flags: rwf.FieldListHasStandardData}
	require.NoError(t, fl.EncodeInit(it, nil, 0))
	require.NoError(t, (&rwf.FieldEntry{FieldID: 1}).Encode(it, rwf.NewInt(-5)))
	require.NoError(t, (&rwf.FieldEntry{FieldID: 6}).Encode(it, rwf.NewReal(12345, rwf.RealExponentNeg2)))
	require.NoError(t, (&rwf.FieldEntry{FieldID: 7}).Encode(it, rwf.NewASCII("AB")))
	require.NoError(t, (&rwf.FieldEntry{FieldID: 8}).EncodeBlank(it))
	require.NoError(t, fl.EncodeComplete(it, true))

	w := Walker{FieldTypes: map[int16]rwf.DataType{
		1: rwf.DataTypeInt,
		6: rwf.DataTypeReal,
		8: rwf.DataTypeUInt,
	}}
	root, err := w.Walk(bytesOf(it), rwf.DataTypeFieldList)
	require.NoError(t, err)
	assert.Equal(t, "FIELD_LIST", root.Type)
	require.Len(t, root.Children, 4)

	assert.Equal(t, "-5", child(t, root, "1").Value)
	assert.Equal(t, "123.45", child(t, root, "6").Value)

	raw := child(t, root, "7")
	assert.Equal(t, "UNKNOWN", raw.Type)
	assert.Equal(t, hex.EncodeToString([]byte("AB")), raw.Value)

	blank := child(t, root, "8")
	assert.True(t, blank.Blank)
	assert.Empty(t, blank.Value)
}

func TestWalkMapWithSetDefsAndSummary(t *testing.T) {
	local := rwf.NewLocalFieldSetDefDb()
	require.NoError(t, local.Set(rwf.FieldSetDef{SetID: 0, Entries: []rwf.FieldSetDefEntry{
		{FieldID: 22, DataType: rwf.DataTypeReal4RB},
		{FieldID: 25, DataType: rwf.DataTypeUInt2},
	}}))

	it := newEncoder(t)
	m := rwf.Map{
		Flags:            rwf.MapHasSetDefs | rwf.MapHasSummaryData | rwf.MapHasPerEntryPerm,
		KeyPrimitiveType: rwf.DataTypeASCIIString,
		ContainerType:    rwf.DataTypeFieldList,
	}
	require.NoError(t, m.EncodeInit(it, 0, 0))
	require.NoError(t, local.Encode(it))
	require.NoError(t, m.EncodeSetDefsComplete(it, true))

	summary := rwf.FieldList{Flags: rwf.FieldListHasStandardData}
	require.NoError(t, summary.EncodeInit(it, nil, 0))
	require.NoError(t, (&rwf.FieldEntry{FieldID: 1}).Encode(it, rwf.NewEnum(4)))
	require.NoError(t, summary.EncodeComplete(it, true))
	require.NoError(t, m.EncodeSummaryDataComplete(it, true))

	add := rwf.MapEntry{Action: rwf.MapEntryActionAdd}
	require.NoError(t, add.EncodeInit(it, rwf.NewASCII("TRI.N"), 0))
	row := rwf.FieldList{Flags: rwf.FieldListHasSetData}
	require.NoError(t, row.EncodeInit(it, local, 0))
	require.NoError(t, (&rwf.FieldEntry{FieldID: 22}).Encode(it, rwf.NewReal(4550, rwf.RealExponentNeg2)))
	require.NoError(t, (&rwf.FieldEntry{FieldID: 25}).Encode(it, rwf.NewUInt(100)))
	require.NoError(t, row.EncodeComplete(it, true))
	require.NoError(t, add.EncodeComplete(it, true))

	del := rwf.MapEntry{Action: rwf.MapEntryActionDelete, Flags: rwf.MapEntryHasPermData, PermData: []byte{0x03, 0x04}}
	require.NoError(t, del.Encode(it, rwf.NewASCII("IBM.N")))
	require.NoError(t, m.EncodeComplete(it, true))

	root, err := (&Walker{FieldTypes: map[int16]rwf.DataType{1: rwf.DataTypeEnum}}).Walk(bytesOf(it), rwf.DataTypeMap)
	require.NoError(t, err)
	require.Len(t, root.Children, 3)

	sum := root.Children[0]
	assert.Equal(t, "summary", sum.Name)
	assert.Equal(t, "FIELD_LIST", sum.Type)
	assert.Equal(t, "4", child(t, sum, "1").Value)

	tri := child(t, root, "TRI.N")
	assert.Equal(t, "ADD", tri.Action)
	assert.Equal(t, "45.50", child(t, tri, "22").Value)
	assert.Equal(t, "REAL", child(t, tri, "22").Type)
	assert.Equal(t, "100", child(t, tri, "25").Value)

	ibm := child(t, root, "IBM.N")
	assert.Equal(t, "DELETE", ibm.Action)
	assert.Equal(t, "0304", ibm.Perm)
	assert.Empty(t, ibm.Children)
}

func TestWalkElementListNestedPayloads(t *testing.T) {
	it := newEncoder(t)
	el := rwf.ElementList{Flags: rwf.ElementListHasStandardData}
	require.NoError(t, el.EncodeInit(it, nil, 0))
	require.NoError(t, (&rwf.ElementEntry{Name: "NAME"}).Encode(it, rwf.NewUTF8("Thomson")))

	arrEntry := rwf.ElementEntry{Name: "SIZES", DataType: rwf.DataTypeArray}
	require.NoError(t, arrEntry.EncodeInit(it, 0))
	a := rwf.Array{PrimitiveType: rwf.DataTypeUInt, ItemLength: 2}
	require.NoError(t, a.EncodeInit(it))
	require.NoError(t, (&rwf.ArrayEntry{}).Encode(it, rwf.NewUInt(10)))
	require.NoError(t, (&rwf.ArrayEntry{}).Encode(it, rwf.NewUInt(300)))
	require.NoError(t, a.EncodeComplete(it, true))
	require.NoError(t, arrEntry.EncodeComplete(it, true))

	require.NoError(t, (&rwf.ElementEntry{Name: "EMPTY", DataType: rwf.DataTypeFieldList}).Encode(it, nil))
	require.NoError(t, (&rwf.ElementEntry{Name: "BLOB", DataType: rwf.DataTypeOpaque, EncodedData: []byte{0xCA, 0xFE}}).Encode(it, nil))
	require.NoError(t, el.EncodeComplete(it, true))

	root, err := (&Walker{}).Walk(bytesOf(it), rwf.DataTypeElementList)
	require.NoError(t, err)
	require.Len(t, root.Children, 4)

	assert.Equal(t, "Thomson", child(t, root, "NAME").Value)

	sizes := child(t, root, "SIZES")
	assert.Equal(t, "ARRAY", sizes.Type)
	require.Len(t, sizes.Children, 2)
	assert.Equal(t, "10", sizes.Children[0].Value)
	assert.Equal(t, "300", sizes.Children[1].Value)

	empty := child(t, root, "EMPTY")
	assert.Equal(t, "FIELD_LIST", empty.Type)
	assert.True(t, empty.Blank)

	blob := child(t, root, "BLOB")
	assert.Equal(t, "OPAQUE", blob.Type)
	assert.Equal(t, "cafe", blob.Value)
}

func TestWalkGlobalElementSetData(t *testing.T) {
	global := rwf.NewGlobalElementSetDefDb()
	require.NoError(t, global.Add(rwf.ElementSetDef{SetID: 20, Entries: []rwf.ElementSetDefEntry{
		{Name: "BID", DataType: rwf.DataTypeReal8RB},
		{Name: "VOL", DataType: rwf.DataTypeUInt4},
	}}))

	it := newEncoder(t)
	it.SetGlobalElementSetDefDb(global)
	el := rwf.ElementList{Flags: rwf.ElementListHasSetData | rwf.ElementListHasSetID, SetID: 20}
	require.NoError(t, el.EncodeInit(it, nil, 0))
	require.NoError(t, (&rwf.ElementEntry{Name: "BID"}).Encode(it, rwf.NewReal(10050, rwf.RealExponentNeg2)))
	require.NoError(t, (&rwf.ElementEntry{Name: "VOL"}).Encode(it, rwf.NewUInt(1000)))
	require.NoError(t, el.EncodeComplete(it, true))
	payload := bytesOf(it)

	_, err := (&Walker{}).Walk(payload, rwf.DataTypeElementList)
	require.Error(t, err)
	assert.Equal(t, rwf.Failure, rwf.CodeOf(err))

	root, err := (&Walker{Elements: global}).Walk(payload, rwf.DataTypeElementList)
	require.NoError(t, err)
	assert.Equal(t, "100.50", child(t, root, "BID").Value)
	assert.Equal(t, "1000", child(t, root, "VOL").Value)
}

func TestWalkVectorAndFilterList(t *testing.T) {
	it := newEncoder(t)
	f := rwf.FilterList{ContainerType: rwf.DataTypeElementList}
	require.NoError(t, f.EncodeInit(it))

	entry := rwf.FilterEntry{ID: 1, Action: rwf.FilterEntryActionSet, Flags: rwf.FilterEntryHasContainerType, ContainerType: rwf.DataTypeVector}
	require.NoError(t, entry.EncodeInit(it, 0))
	v := rwf.Vector{ContainerType: rwf.DataTypeFieldList}
	require.NoError(t, v.EncodeInit(it, 0, 0))
	require.NoError(t, (&rwf.VectorEntry{Index: 4, Action: rwf.VectorEntryActionClear}).Encode(it))
	require.NoError(t, v.EncodeComplete(it, true))
	require.NoError(t, entry.EncodeComplete(it, true))

	require.NoError(t, (&rwf.FilterEntry{ID: 2, Action: rwf.FilterEntryActionClear}).Encode(it))
	require.NoError(t, f.EncodeComplete(it, true))

	root, err := (&Walker{}).Walk(bytesOf(it), rwf.DataTypeFilterList)
	require.NoError(t, err)
	require.Len(t, root.Children, 2)

	vec := child(t, root, "1")
	assert.Equal(t, "VECTOR", vec.Type)
	assert.Equal(t, "SET", vec.Action)
	require.Len(t, vec.Children, 1)
	assert.Equal(t, "4", vec.Children[0].Name)
	assert.Equal(t, "CLEAR", vec.Children[0].Action)

	cleared := child(t, root, "2")
	assert.Equal(t, "CLEAR", cleared.Action)
	assert.Empty(t, cleared.Children)
}

func TestWalkPrimitiveAndRawRoots(t *testing.T) {
	testlog.Start(t)
	root, err := (&Walker{}).Walk([]byte{0x0A, 0x2C}, rwf.DataTypeUInt)
	require.NoError(t, err)
	assert.Equal(t, "2604", root.Value)

	root, err = (&Walker{}).Walk(nil, rwf.DataTypeReal)
	require.NoError(t, err)
	assert.True(t, root.Blank)

	root, err = (&Walker{}).Walk([]byte("<x/>"), rwf.DataTypeXML)
	require.NoError(t, err)
	assert.Equal(t, hex.EncodeToString([]byte("<x/>")), root.Value)
}

func TestWalkTruncatedPayloadFailsAndCounts(t *testing.T) {
	it := newEncoder(t)
	fl := rwf.FieldList{Flags: rwf.FieldListHasStandardData}
	require.NoError(t, fl.EncodeInit(it, nil, 0))
	require.NoError(t, (&rwf.FieldEntry{FieldID: 1}).Encode(it, rwf.NewASCII("abcdef")))
	require.NoError(t, fl.EncodeComplete(it, true))
	full := bytesOf(it)

	observability.RegisterMetrics()
	before := testutil.ToFloat64(observability.DecodeCounter("FIELD_LIST", "INCOMPLETE_DATA"))
	_, err := (&Walker{}).Walk(full[:len(full)-2], rwf.DataTypeFieldList)
	require.Error(t, err)
	assert.Equal(t, rwf.IncompleteData, rwf.CodeOf(err))
	assert.Equal(t, before+1, testutil.ToFloat64(observability.DecodeCounter("FIELD_LIST", "INCOMPLETE_DATA")))
}

func TestWalkHonorsMaxDepth(t *testing.T) {
	it := newEncoder(t)
	outer := rwf.ElementList{Flags: rwf.ElementListHasStandardData}
	require.NoError(t, outer.EncodeInit(it, nil, 0))
	e := rwf.ElementEntry{Name: "IN", DataType: rwf.DataTypeElementList}
	require.NoError(t, e.EncodeInit(it, 0))
	inner := rwf.ElementList{Flags: rwf.ElementListHasStandardData}
	require.NoError(t, inner.EncodeInit(it, nil, 0))
	require.NoError(t, (&rwf.ElementEntry{Name: "X"}).Encode(it, rwf.NewInt(1)))
	require.NoError(t, inner.EncodeComplete(it, true))
	require.NoError(t, e.EncodeComplete(it, true))
	require.NoError(t, outer.EncodeComplete(it, true))

	_, err := (&Walker{MaxDepth: 1}).Walk(bytesOf(it), rwf.DataTypeElementList)
	require.Error(t, err)
	assert.Equal(t, rwf.DepthExceeded, rwf.CodeOf(err))

	root, err := (&Walker{MaxDepth: 2}).Walk(bytesOf(it), rwf.DataTypeElementList)
	require.NoError(t, err)
	assert.Equal(t, "1", child(t, child(t, root, "IN"), "X").Value)
}

func TestParseFieldTypes(t *testing.T) {
	types, err := ParseFieldTypes([]string{"22:real", " 3 : ASCII_STRING "})
	require.NoError(t, err)
	assert.Equal(t, map[int16]rwf.DataType{22: rwf.DataTypeReal, 3: rwf.DataTypeASCIIString}, types)

	for _, bad := range []string{"22", "x:REAL", "70000:REAL", "22:WIDGET", "22:UNKNOWN"} {
		_, err := ParseFieldTypes([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestWalkRootArray(t *testing.T) {
	it := newEncoder(t)
	a := rwf.Array{PrimitiveType: rwf.DataTypeASCIIString}
	require.NoError(t, a.EncodeInit(it))
	require.NoError(t, (&rwf.ArrayEntry{}).Encode(it, rwf.NewASCII("a")))
	require.NoError(t, (&rwf.ArrayEntry{}).EncodeBlank(it))
	require.NoError(t, a.EncodeComplete(it, true))

	root, err := (&Walker{}).Walk(bytesOf(it), rwf.DataTypeArray)
	require.NoError(t, err)
	require.Len(t, root.Children, 2)
	assert.Equal(t, "a", root.Children[0].Value)
	assert.True(t, root.Children[1].Blank)

	root, err = (&Walker{}).Walk(nil, rwf.DataTypeArray)
	require.NoError(t, err)
	assert.True(t, root.Blank)
}
