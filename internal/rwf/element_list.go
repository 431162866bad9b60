package rwf

import "github.com/danmuck/rwfcodec/internal/rwf/wire"

type ElementListFlags uint8

const (
	ElementListHasInfo         ElementListFlags = listHasInfo
	ElementListHasSetData      ElementListFlags = listHasSetData
	ElementListHasSetID        ElementListFlags = listHasSetID
	ElementListHasStandardData ElementListFlags = listHasStandardData
)

// ElementList is a container of named, self-typed entries.
type ElementList struct {
	Flags          ElementListFlags
	ElementListNum int16
	SetID          int

	EncodedSetData []byte
	EncodedEntries []byte
}

func (el *ElementList) Clear() { *el = ElementList{} }

func (el *ElementList) EncodeInit(it *EncodeIterator, local *LocalElementSetDefDb, setMaxSize int) error {
	const op = "encode ELEMENT_LIST"
	l, err := it.push(op, DataTypeElementList)
	if err != nil {
		return err
	}
	l.flags = uint8(el.Flags)
	if err := el.encodeHeader(op, it, l, local, setMaxSize); err != nil {
		it.abort(l)
		return err
	}
	return nil
}

func (el *ElementList) encodeHeader(op string, it *EncodeIterator, l *encodingLevel, local *LocalElementSetDefDb, setMaxSize int) error {
	if err := it.putU8(op, uint8(el.Flags)); err != nil {
		return err
	}
	if el.Flags&ElementListHasInfo != 0 {
		if err := it.putU8(op, 2); err != nil {
			return err
		}
		if err := it.putU16(op, uint16(el.ElementListNum)); err != nil {
			return err
		}
	}
	l.state = levelHeaderWritten
	standard := el.Flags&ElementListHasStandardData != 0
	if el.Flags&ElementListHasSetData == 0 {
		if !standard {
			return nil
		}
		if err := it.reserveCount(op, l, 2); err != nil {
			return err
		}
		l.state = levelEntries
		return nil
	}
	setID, err := encodeSetID(op, it, el.Flags&ElementListHasSetID != 0, el.SetID)
	if err != nil {
		return err
	}
	if len(el.EncodedSetData) > 0 {
		return encodePreencodedSet(op, it, l, standard, el.EncodedSetData)
	}
	def := elementSetDef(local, it.elementSetDefs, setID)
	if def == nil {
		return errorf(InvalidArgument, op, "set id %d is not defined", setID)
	}
	l.elementSetDef = def
	return beginSetData(op, it, l, standard, setMaxSize)
}

func (el *ElementList) EncodeComplete(it *EncodeIterator, success bool) error {
	return it.completeLevel("encode ELEMENT_LIST", DataTypeElementList, success)
}

func (el *ElementList) Decode(it *DecodeIterator, local *LocalElementSetDefDb) error {
	const op = "decode ELEMENT_LIST"
	l, err := it.push(op, DataTypeElementList)
	if err != nil {
		return err
	}
	el.Clear()
	if it.emptyContainer(l) {
		return NoData
	}
	r := it.reader(l.end)
	el.Flags = ElementListFlags(r.u8())
	if err := checkFlags(op, uint8(el.Flags), listFlagsMask); err != nil {
		return it.fail(err)
	}
	if el.Flags&ElementListHasInfo != 0 {
		infoLen := int(r.u8())
		start := r.pos
		el.ElementListNum = int16(r.u16())
		if err := r.result(op); err != nil {
			return it.fail(err)
		}
		if start+infoLen > l.end {
			return it.fail(errorf(IncompleteData, op, "info block runs past the container"))
		}
		r.pos = start + infoLen
	}
	if el.Flags&ElementListHasSetData != 0 {
		if el.Flags&ElementListHasSetID != 0 {
			el.SetID = int(r.ushort15rb())
		}
		if err := it.decodeSetData(op, l, &r, el.Flags&ElementListHasStandardData != 0); err != nil {
			return it.fail(err)
		}
		el.EncodedSetData = it.data[l.nextSetPos:l.setDataEnd]
		def := elementSetDef(local, it.elementSetDefs, el.SetID)
		if def == nil {
			return it.fail(errorf(Failure, op, "set id %d is not defined", el.SetID))
		}
		l.elementSetDef = def
		l.startSetData(def.Len())
	} else if el.Flags&ElementListHasStandardData != 0 {
		l.itemCount = int(r.u16())
		if err := r.result(op); err != nil {
			return it.fail(err)
		}
		l.nextEntryPos = r.pos
	} else {
		l.nextEntryPos = l.end
	}
	if el.Flags&ElementListHasStandardData != 0 {
		el.EncodedEntries = it.data[r.pos:l.end]
	}
	it.cur = l.nextEntryPos
	return nil
}

// ElementEntry is one named entry of an ElementList. A NO_DATA entry has
// no payload on the wire.
type ElementEntry struct {
	Name        string
	DataType    DataType
	EncodedData []byte
}

func (e *ElementEntry) Clear() { *e = ElementEntry{} }

func (e *ElementEntry) begin(op string, it *EncodeIterator) (*encodingLevel, DataType, error) {
	l := it.current()
	if l == nil || l.containerType != DataTypeElementList {
		return nil, 0, errorf(InvalidArgument, op, "no open ELEMENT_LIST level")
	}
	switch l.state {
	case levelSetData:
		de := l.elementSetDef.Entries[l.setIndex]
		if de.Name != e.Name {
			return nil, 0, errorf(InvalidArgument, op, "set entry %d is %q, got %q", l.setIndex, de.Name, e.Name)
		}
		l.entryStart = it.cur
		return l, de.DataType, nil
	case levelEntries:
		if len(e.Name) > wire.MaxUShort15 {
			return nil, 0, errorf(InvalidArgument, op, "name of %d bytes exceeds a 15-bit length", len(e.Name))
		}
		if e.DataType == DataTypeUnknown {
			return nil, 0, errorf(InvalidArgument, op, "entry %q has no data type", e.Name)
		}
		l.entryStart = it.cur
		if err := it.putBuf15(op, []byte(e.Name)); err != nil {
			return nil, 0, it.failEntry(l, err)
		}
		if err := it.putU8(op, uint8(e.DataType)); err != nil {
			return nil, 0, it.failEntry(l, err)
		}
		return l, 0, nil
	}
	return nil, 0, errorf(InvalidArgument, op, "ELEMENT_LIST level is not accepting entries")
}

// Encode writes the entry with v as its payload, or EncodedData when v is
// nil. A non-nil v sets DataType.
func (e *ElementEntry) Encode(it *EncodeIterator, v Primitive) error {
	const op = "encode ELEMENT_ENTRY"
	if v != nil {
		e.DataType = v.DataType()
	}
	l, setType, err := e.begin(op, it)
	if err != nil {
		return err
	}
	if l.state == levelSetData {
		if v != nil {
			err = it.putSetValue(op, setType, v)
		} else {
			err = it.putSetEncoded(op, setType, e.EncodedData)
		}
		if err != nil {
			return it.failEntry(l, err)
		}
		return it.nextSetEntry(op, l)
	}
	switch {
	case e.DataType == DataTypeNoData:
	case v != nil:
		err = it.putPrimitive16(op, v)
	default:
		err = it.putBuf16(op, e.EncodedData)
	}
	if err != nil {
		return it.failEntry(l, err)
	}
	it.endEntry(l)
	return nil
}

// EncodeBlank writes a blank payload of DataType, which must be a
// primitive type.
func (e *ElementEntry) EncodeBlank(it *EncodeIterator) error {
	const op = "encode ELEMENT_ENTRY"
	l := it.current()
	if l != nil && l.state == levelEntries && !e.DataType.IsPrimitive() {
		return errorf(InvalidArgument, op, "blank entries need a primitive type, got %s", e.DataType)
	}
	l, setType, err := e.begin(op, it)
	if err != nil {
		return err
	}
	if l.state == levelSetData {
		if err := it.putSetBlank(op, setType); err != nil {
			return it.failEntry(l, err)
		}
		return it.nextSetEntry(op, l)
	}
	if err := it.putBuf16(op, nil); err != nil {
		return it.failEntry(l, err)
	}
	it.endEntry(l)
	return nil
}

func (e *ElementEntry) EncodeInit(it *EncodeIterator, maxSize int) error {
	const op = "encode ELEMENT_ENTRY"
	if e.DataType == DataTypeNoData {
		return errorf(InvalidArgument, op, "NO_DATA entries have no payload to open")
	}
	l, setType, err := e.begin(op, it)
	if err != nil {
		return err
	}
	if l.state == levelSetData {
		if form, _ := setFormOf(setType); form != setBuf16 {
			l.entryStart = -1
			return errorf(InvalidArgument, op, "set entry type %s cannot be encoded in place", setType)
		}
		l.openSetEntry = true
	}
	return it.openEntry(op, l, maxSize)
}

func (e *ElementEntry) EncodeComplete(it *EncodeIterator, success bool) error {
	return it.closeEntry("encode ELEMENT_ENTRY", DataTypeElementList, success)
}

func (e *ElementEntry) Decode(it *DecodeIterator) error {
	const op = "decode ELEMENT_ENTRY"
	l, err := it.nextEntry(op, DataTypeElementList)
	if err != nil {
		return err
	}
	e.Clear()
	if l.nextSetPos < l.setCount {
		de := l.elementSetDef.Entries[l.nextSetPos]
		start, end, err := it.readSetEntry(op, l, de.DataType)
		if err != nil {
			return err
		}
		e.Name, e.DataType = de.Name, setEntryType(de.DataType)
		e.EncodedData = it.data[start:end]
		return nil
	}
	r := it.reader(l.end)
	nameStart, nameEnd := r.buf15()
	e.DataType = DataType(r.u8())
	start, end := r.pos, r.pos
	if e.DataType != DataTypeNoData {
		start, end = r.buf16()
	}
	if err := r.result(op); err != nil {
		return err
	}
	e.Name = string(it.data[nameStart:nameEnd])
	e.EncodedData = it.data[start:end]
	l.nextItem++
	it.setEntryPayload(l, start, end, r.pos)
	return nil
}
