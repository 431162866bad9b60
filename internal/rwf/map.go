package rwf

import "errors"

type MapFlags uint8

const (
	MapHasSetDefs        MapFlags = 0x01
	MapHasSummaryData    MapFlags = 0x02
	MapHasPerEntryPerm   MapFlags = 0x04
	MapHasTotalCountHint MapFlags = 0x08
	MapHasKeyFieldID     MapFlags = 0x10
)

type MapEntryFlags uint8

const MapEntryHasPermData MapEntryFlags = 0x01

type MapEntryAction uint8

const (
	MapEntryActionUpdate MapEntryAction = 1
	MapEntryActionAdd    MapEntryAction = 2
	MapEntryActionDelete MapEntryAction = 3
)

func (a MapEntryAction) String() string {
	switch a {
	case MapEntryActionUpdate:
		return "UPDATE"
	case MapEntryActionAdd:
		return "ADD"
	case MapEntryActionDelete:
		return "DELETE"
	}
	return "UNKNOWN"
}

// Map is a container of entries keyed by a primitive value, each carrying
// a payload of ContainerType.
type Map struct {
	Flags            MapFlags
	KeyPrimitiveType DataType
	ContainerType    DataType
	KeyFieldID       int16
	TotalCountHint   uint32

	// Set definitions and summary data are written from these when
	// non-empty; otherwise they are encoded in place after EncodeInit.
	EncodedSetDefs     []byte
	EncodedSummaryData []byte
	EncodedEntries     []byte
}

func (m *Map) Clear() { *m = Map{} }

func (m *Map) header() collectionHeader {
	return collectionHeader{
		hasSetDefs: m.Flags&MapHasSetDefs != 0,
		hasSummary: m.Flags&MapHasSummaryData != 0,
		hasHint:    m.Flags&MapHasTotalCountHint != 0,
		setDefs:    m.EncodedSetDefs,
		summary:    m.EncodedSummaryData,
		hint:       m.TotalCountHint,
	}
}

// EncodeInit writes the header. When set definitions or summary data are
// flagged but not pre-encoded, the level stops at that section; encode it
// in place and close it with EncodeSetDefsComplete or
// EncodeSummaryDataComplete.
func (m *Map) EncodeInit(it *EncodeIterator, summaryMaxSize, setDefsMaxSize int) error {
	const op = "encode MAP"
	if !m.KeyPrimitiveType.IsPrimitive() || m.KeyPrimitiveType == DataTypeArray {
		return errorf(InvalidArgument, op, "key type %s is not a primitive", m.KeyPrimitiveType)
	}
	if err := checkContainerType(op, m.ContainerType); err != nil {
		return err
	}
	l, err := it.push(op, DataTypeMap)
	if err != nil {
		return err
	}
	l.flags = uint8(m.Flags)
	l.keyType = m.KeyPrimitiveType
	l.entryType = m.ContainerType
	l.summaryMax = summaryMaxSize
	err = it.putU8(op, uint8(m.Flags))
	if err == nil {
		err = it.putU8(op, uint8(m.KeyPrimitiveType))
	}
	if err == nil {
		err = it.putU8(op, containerToWire(m.ContainerType))
	}
	if err == nil && m.Flags&MapHasKeyFieldID != 0 {
		err = it.putU16(op, uint16(m.KeyFieldID))
	}
	if err == nil {
		l.state = levelHeaderWritten
		err = it.encodeTail(op, l, m.header(), setDefsMaxSize)
	}
	if err != nil {
		it.abort(l)
		return err
	}
	return nil
}

func (m *Map) EncodeSetDefsComplete(it *EncodeIterator, success bool) error {
	const op = "encode MAP set definitions"
	l, err := it.completeSection(op, DataTypeMap, levelSetDefs, success)
	if l == nil || err != nil {
		return err
	}
	return it.encodeTail(op, l, m.header(), 0)
}

func (m *Map) EncodeSummaryDataComplete(it *EncodeIterator, success bool) error {
	const op = "encode MAP summary data"
	l, err := it.completeSection(op, DataTypeMap, levelSummaryData, success)
	if l == nil || err != nil {
		return err
	}
	return it.encodeTail(op, l, m.header(), 0)
}

func (m *Map) EncodeComplete(it *EncodeIterator, success bool) error {
	return it.completeLevel("encode MAP", DataTypeMap, success)
}

// Decode parses the header. Summary data, when present, is the next
// payload the iterator decodes; entries follow.
func (m *Map) Decode(it *DecodeIterator) error {
	const op = "decode MAP"
	l, err := it.push(op, DataTypeMap)
	if err != nil {
		return err
	}
	m.Clear()
	if it.emptyContainer(l) {
		return NoData
	}
	r := it.reader(l.end)
	m.Flags = MapFlags(r.u8())
	if err := checkFlags(op, uint8(m.Flags), uint8(MapHasSetDefs | MapHasSummaryData | MapHasPerEntryPerm | MapHasTotalCountHint | MapHasKeyFieldID)); err != nil {
		return it.fail(err)
	}
	m.KeyPrimitiveType = DataType(r.u8())
	m.ContainerType = decodeContainerType(&r)
	if m.Flags&MapHasKeyFieldID != 0 {
		m.KeyFieldID = int16(r.u16())
	}
	h := m.header()
	if err := it.decodeTail(op, l, &r, &h); err != nil {
		return it.fail(err)
	}
	m.EncodedSetDefs, m.EncodedSummaryData, m.TotalCountHint = h.setDefs, h.summary, h.hint
	m.EncodedEntries = it.data[l.nextEntryPos:l.end]
	l.flags = uint8(m.Flags)
	l.keyType = m.KeyPrimitiveType
	l.entryType = m.ContainerType
	return nil
}

// MapEntry is one keyed entry of a Map. Deletes carry no payload.
type MapEntry struct {
	Flags       MapEntryFlags
	Action      MapEntryAction
	PermData    []byte
	EncodedKey  []byte
	EncodedData []byte
}

func (e *MapEntry) Clear() { *e = MapEntry{} }

func (e *MapEntry) hasPayload(l *encodingLevel) bool {
	return e.Action != MapEntryActionDelete && l.entryType != DataTypeNoData
}

// begin writes everything ahead of the payload: flags and action,
// permission data, then key, or EncodedKey when key is nil.
func (e *MapEntry) begin(op string, it *EncodeIterator, key Primitive) (*encodingLevel, error) {
	if e.Action < MapEntryActionUpdate || e.Action > MapEntryActionDelete {
		return nil, errorf(InvalidArgument, op, "unknown map entry action %d", e.Action)
	}
	if e.Flags > 0x0F {
		return nil, errorf(InvalidArgument, op, "entry flags %#x do not fit four bits", e.Flags)
	}
	l, err := it.beginEntry(op, DataTypeMap)
	if err != nil {
		return nil, err
	}
	if key != nil && !typeMatches(l.keyType, key) {
		l.entryStart = -1
		return nil, errorf(InvalidArgument, op, "%s key in a map keyed by %s", key.DataType(), l.keyType)
	}
	if key == nil && len(e.EncodedKey) == 0 {
		l.entryStart = -1
		return nil, errorf(InvalidArgument, op, "entry has no key")
	}
	err = it.putU8(op, uint8(e.Flags)<<4|uint8(e.Action))
	if err == nil && e.Flags&MapEntryHasPermData != 0 {
		err = it.putBuf15(op, e.PermData)
	}
	if err == nil {
		if key != nil {
			err = it.putPrimitive15(op, key)
		} else {
			err = it.putBuf15(op, e.EncodedKey)
		}
	}
	if err != nil {
		return nil, it.failEntry(l, err)
	}
	return l, nil
}

// Encode writes the entry with EncodedData as its payload.
func (e *MapEntry) Encode(it *EncodeIterator, key Primitive) error {
	const op = "encode MAP_ENTRY"
	l, err := e.begin(op, it, key)
	if err != nil {
		return err
	}
	if e.hasPayload(l) {
		if err := it.putBuf16(op, e.EncodedData); err != nil {
			return it.failEntry(l, err)
		}
	}
	it.endEntry(l)
	return nil
}

// EncodeInit writes the entry up to its payload and opens the payload for
// a nested container.
func (e *MapEntry) EncodeInit(it *EncodeIterator, key Primitive, maxSize int) error {
	const op = "encode MAP_ENTRY"
	l, err := e.begin(op, it, key)
	if err != nil {
		return err
	}
	if !e.hasPayload(l) {
		return it.failEntry(l, errorf(InvalidArgument, op, "%s entry carries no payload", e.Action))
	}
	return it.openEntry(op, l, maxSize)
}

func (e *MapEntry) EncodeComplete(it *EncodeIterator, success bool) error {
	return it.closeEntry("encode MAP_ENTRY", DataTypeMap, success)
}

// Decode reads the next entry. A non-nil key receives the decoded key.
func (e *MapEntry) Decode(it *DecodeIterator, key Primitive) error {
	const op = "decode MAP_ENTRY"
	l, err := it.nextEntry(op, DataTypeMap)
	if err != nil {
		return err
	}
	e.Clear()
	r := it.reader(l.end)
	b := r.u8()
	e.Flags, e.Action = MapEntryFlags(b>>4), MapEntryAction(b&0x0F)
	e.PermData = readPermData(&r, e.Flags&MapEntryHasPermData != 0)
	keyStart, keyEnd := r.buf15()
	start, end := r.pos, r.pos
	if e.Action != MapEntryActionDelete && l.entryType != DataTypeNoData {
		start, end = r.buf16()
	}
	if err := r.result(op); err != nil {
		return err
	}
	e.EncodedKey = it.data[keyStart:keyEnd]
	e.EncodedData = it.data[start:end]
	l.nextItem++
	it.setEntryPayload(l, start, end, r.pos)
	if key != nil {
		if err := key.decodeBytes(e.EncodedKey); err != nil && !errors.Is(err, BlankData) {
			return err
		}
	}
	return nil
}
