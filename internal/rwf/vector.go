package rwf

import "github.com/danmuck/rwfcodec/internal/rwf/wire"

type VectorFlags uint8

const (
	VectorHasSetDefs        VectorFlags = 0x01
	VectorHasSummaryData    VectorFlags = 0x02
	VectorHasPerEntryPerm   VectorFlags = 0x04
	VectorHasTotalCountHint VectorFlags = 0x08
	VectorSupportsSorting   VectorFlags = 0x10
)

type VectorEntryFlags uint8

const VectorEntryHasPermData VectorEntryFlags = 0x01

type VectorEntryAction uint8

const (
	VectorEntryActionUpdate VectorEntryAction = 1
	VectorEntryActionSet    VectorEntryAction = 2
	VectorEntryActionClear  VectorEntryAction = 3
	VectorEntryActionInsert VectorEntryAction = 4
	VectorEntryActionDelete VectorEntryAction = 5
)

var vectorActionNames = [...]string{"UNKNOWN", "UPDATE", "SET", "CLEAR", "INSERT", "DELETE"}

func (a VectorEntryAction) String() string {
	if int(a) < len(vectorActionNames) {
		return vectorActionNames[a]
	}
	return "UNKNOWN"
}

// Vector is a container of entries addressed by index. INSERT and DELETE
// are meaningful when the vector supports sorting.
type Vector struct {
	Flags          VectorFlags
	ContainerType  DataType
	TotalCountHint uint32

	EncodedSetDefs     []byte
	EncodedSummaryData []byte
	EncodedEntries     []byte
}

func (v *Vector) Clear() { *v = Vector{} }

func (v *Vector) header() collectionHeader {
	return collectionHeader{
		hasSetDefs: v.Flags&VectorHasSetDefs != 0,
		hasSummary: v.Flags&VectorHasSummaryData != 0,
		hasHint:    v.Flags&VectorHasTotalCountHint != 0,
		setDefs:    v.EncodedSetDefs,
		summary:    v.EncodedSummaryData,
		hint:       v.TotalCountHint,
	}
}

func (v *Vector) EncodeInit(it *EncodeIterator, summaryMaxSize, setDefsMaxSize int) error {
	const op = "encode VECTOR"
	if err := checkContainerType(op, v.ContainerType); err != nil {
		return err
	}
	l, err := it.push(op, DataTypeVector)
	if err != nil {
		return err
	}
	l.flags = uint8(v.Flags)
	l.entryType = v.ContainerType
	l.summaryMax = summaryMaxSize
	err = it.putU8(op, uint8(v.Flags))
	if err == nil {
		err = it.putU8(op, containerToWire(v.ContainerType))
	}
	if err == nil {
		l.state = levelHeaderWritten
		err = it.encodeTail(op, l, v.header(), setDefsMaxSize)
	}
	if err != nil {
		it.abort(l)
		return err
	}
	return nil
}

func (v *Vector) EncodeSetDefsComplete(it *EncodeIterator, success bool) error {
	const op = "encode VECTOR set definitions"
	l, err := it.completeSection(op, DataTypeVector, levelSetDefs, success)
	if l == nil || err != nil {
		return err
	}
	return it.encodeTail(op, l, v.header(), 0)
}

func (v *Vector) EncodeSummaryDataComplete(it *EncodeIterator, success bool) error {
	const op = "encode VECTOR summary data"
	l, err := it.completeSection(op, DataTypeVector, levelSummaryData, success)
	if l == nil || err != nil {
		return err
	}
	return it.encodeTail(op, l, v.header(), 0)
}

func (v *Vector) EncodeComplete(it *EncodeIterator, success bool) error {
	return it.completeLevel("encode VECTOR", DataTypeVector, success)
}

func (v *Vector) Decode(it *DecodeIterator) error {
	const op = "decode VECTOR"
	l, err := it.push(op, DataTypeVector)
	if err != nil {
		return err
	}
	v.Clear()
	if it.emptyContainer(l) {
		return NoData
	}
	r := it.reader(l.end)
	v.Flags = VectorFlags(r.u8())
	if err := checkFlags(op, uint8(v.Flags), uint8(VectorHasSetDefs | VectorHasSummaryData | VectorHasPerEntryPerm | VectorHasTotalCountHint | VectorSupportsSorting)); err != nil {
		return it.fail(err)
	}
	v.ContainerType = decodeContainerType(&r)
	h := v.header()
	if err := it.decodeTail(op, l, &r, &h); err != nil {
		return it.fail(err)
	}
	v.EncodedSetDefs, v.EncodedSummaryData, v.TotalCountHint = h.setDefs, h.summary, h.hint
	v.EncodedEntries = it.data[l.nextEntryPos:l.end]
	l.flags = uint8(v.Flags)
	l.entryType = v.ContainerType
	return nil
}

// VectorEntry is one indexed entry of a Vector. CLEAR and DELETE carry no
// payload.
type VectorEntry struct {
	Flags       VectorEntryFlags
	Action      VectorEntryAction
	Index       uint32
	PermData    []byte
	EncodedData []byte
}

func (e *VectorEntry) Clear() { *e = VectorEntry{} }

func (e *VectorEntry) hasPayload(entryType DataType) bool {
	return e.Action != VectorEntryActionClear && e.Action != VectorEntryActionDelete && entryType != DataTypeNoData
}

func (e *VectorEntry) begin(op string, it *EncodeIterator) (*encodingLevel, error) {
	if e.Action < VectorEntryActionUpdate || e.Action > VectorEntryActionDelete {
		return nil, errorf(InvalidArgument, op, "unknown vector entry action %d", e.Action)
	}
	if e.Flags > 0x0F {
		return nil, errorf(InvalidArgument, op, "entry flags %#x do not fit four bits", e.Flags)
	}
	if e.Index > wire.MaxUInt30 {
		return nil, errorf(InvalidArgument, op, "index %d exceeds %d", e.Index, wire.MaxUInt30)
	}
	l, err := it.beginEntry(op, DataTypeVector)
	if err != nil {
		return nil, err
	}
	err = it.putU8(op, uint8(e.Flags)<<4|uint8(e.Action))
	if err == nil {
		err = it.putUInt30rb(op, e.Index)
	}
	if err == nil && e.Flags&VectorEntryHasPermData != 0 {
		err = it.putBuf15(op, e.PermData)
	}
	if err != nil {
		return nil, it.failEntry(l, err)
	}
	return l, nil
}

func (e *VectorEntry) Encode(it *EncodeIterator) error {
	const op = "encode VECTOR_ENTRY"
	l, err := e.begin(op, it)
	if err != nil {
		return err
	}
	if e.hasPayload(l.entryType) {
		if err := it.putBuf16(op, e.EncodedData); err != nil {
			return it.failEntry(l, err)
		}
	}
	it.endEntry(l)
	return nil
}

func (e *VectorEntry) EncodeInit(it *EncodeIterator, maxSize int) error {
	const op = "encode VECTOR_ENTRY"
	l, err := e.begin(op, it)
	if err != nil {
		return err
	}
	if !e.hasPayload(l.entryType) {
		return it.failEntry(l, errorf(InvalidArgument, op, "%s entry carries no payload", e.Action))
	}
	return it.openEntry(op, l, maxSize)
}

func (e *VectorEntry) EncodeComplete(it *EncodeIterator, success bool) error {
	return it.closeEntry("encode VECTOR_ENTRY", DataTypeVector, success)
}

func (e *VectorEntry) Decode(it *DecodeIterator) error {
	const op = "decode VECTOR_ENTRY"
	l, err := it.nextEntry(op, DataTypeVector)
	if err != nil {
		return err
	}
	e.Clear()
	r := it.reader(l.end)
	b := r.u8()
	e.Flags, e.Action = VectorEntryFlags(b>>4), VectorEntryAction(b&0x0F)
	e.Index = r.uint30rb()
	e.PermData = readPermData(&r, e.Flags&VectorEntryHasPermData != 0)
	start, end := r.pos, r.pos
	if e.hasPayload(l.entryType) {
		start, end = r.buf16()
	}
	if err := r.result(op); err != nil {
		return err
	}
	e.EncodedData = it.data[start:end]
	l.nextItem++
	it.setEntryPayload(l, start, end, r.pos)
	return nil
}
