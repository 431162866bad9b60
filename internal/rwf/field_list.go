package rwf

import "github.com/danmuck/rwfcodec/internal/rwf/wire"

type FieldListFlags uint8

const (
	FieldListHasInfo         FieldListFlags = listHasInfo
	FieldListHasSetData      FieldListFlags = listHasSetData
	FieldListHasSetID        FieldListFlags = listHasSetID
	FieldListHasStandardData FieldListFlags = listHasStandardData
)

// FieldList is a container of entries keyed by a dictionary field id.
// Entries described by a set definition come first, as set data, ahead of
// the self-describing standard entries.
type FieldList struct {
	Flags        FieldListFlags
	DictionaryID uint16
	FieldListNum int16
	SetID        int

	// EncodedSetData, when non-empty, is written as the set data instead
	// of encoding set entries one by one.
	EncodedSetData []byte
	EncodedEntries []byte
}

func (f *FieldList) Clear() { *f = FieldList{} }

// EncodeInit writes the header and opens a level. Set entries resolve
// their definition from local for ids up to MaxLocalSetID and from the
// iterator's global database above that. setMaxSize sizes the set data
// length when standard data follows it.
func (f *FieldList) EncodeInit(it *EncodeIterator, local *LocalFieldSetDefDb, setMaxSize int) error {
	const op = "encode FIELD_LIST"
	l, err := it.push(op, DataTypeFieldList)
	if err != nil {
		return err
	}
	l.flags = uint8(f.Flags)
	if err := f.encodeHeader(op, it, l, local, setMaxSize); err != nil {
		it.abort(l)
		return err
	}
	return nil
}

func (f *FieldList) encodeHeader(op string, it *EncodeIterator, l *encodingLevel, local *LocalFieldSetDefDb, setMaxSize int) error {
	if err := it.putU8(op, uint8(f.Flags)); err != nil {
		return err
	}
	if f.Flags&FieldListHasInfo != 0 {
		if f.DictionaryID > wire.MaxUShort15 {
			return errorf(InvalidArgument, op, "dictionary id %d exceeds %d", f.DictionaryID, wire.MaxUShort15)
		}
		if err := it.putU8(op, uint8(wire.UShort15rbLen(f.DictionaryID)+2)); err != nil {
			return err
		}
		if err := it.putUShort15rb(op, f.DictionaryID); err != nil {
			return err
		}
		if err := it.putU16(op, uint16(f.FieldListNum)); err != nil {
			return err
		}
	}
	l.state = levelHeaderWritten
	standard := f.Flags&FieldListHasStandardData != 0
	if f.Flags&FieldListHasSetData == 0 {
		if !standard {
			return nil
		}
		if err := it.reserveCount(op, l, 2); err != nil {
			return err
		}
		l.state = levelEntries
		return nil
	}

	setID, err := encodeSetID(op, it, f.Flags&FieldListHasSetID != 0, f.SetID)
	if err != nil {
		return err
	}
	if len(f.EncodedSetData) > 0 {
		return encodePreencodedSet(op, it, l, standard, f.EncodedSetData)
	}
	def := fieldSetDef(local, it.fieldSetDefs, setID)
	if def == nil {
		return errorf(InvalidArgument, op, "set id %d is not defined", setID)
	}
	l.fieldSetDef = def
	return beginSetData(op, it, l, standard, setMaxSize)
}

// encodeSetID writes the set id when the header carries one. Without the
// flag the id is implicitly zero.
func encodeSetID(op string, it *EncodeIterator, present bool, id int) (int, error) {
	if !present {
		return 0, nil
	}
	if id < 0 || id > wire.MaxUShort15 {
		return 0, errorf(InvalidArgument, op, "set id %d outside 0..%d", id, wire.MaxUShort15)
	}
	return id, it.putUShort15rb(op, uint16(id))
}

func encodePreencodedSet(op string, it *EncodeIterator, l *encodingLevel, standard bool, p []byte) error {
	if !standard {
		if err := it.putBytes(op, p); err != nil {
			return err
		}
		l.state = levelSetDataComplete
		return nil
	}
	if err := it.putBuf15(op, p); err != nil {
		return err
	}
	if err := it.reserveCount(op, l, 2); err != nil {
		return err
	}
	l.state = levelEntries
	return nil
}

func beginSetData(op string, it *EncodeIterator, l *encodingLevel, standard bool, setMaxSize int) error {
	if standard {
		if err := it.reserveU15Mark(op, &l.mark2, setMaxSize); err != nil {
			return err
		}
	}
	l.state = levelSetData
	if setDefCount(l) == 0 {
		return it.endSetData(op, l)
	}
	return nil
}

// EncodeComplete patches the entry count and closes the level. With
// success false everything written since EncodeInit is discarded.
func (f *FieldList) EncodeComplete(it *EncodeIterator, success bool) error {
	return it.completeLevel("encode FIELD_LIST", DataTypeFieldList, success)
}

// Decode parses the header and positions the iterator at the first entry.
// An empty payload yields NoData.
func (f *FieldList) Decode(it *DecodeIterator, local *LocalFieldSetDefDb) error {
	const op = "decode FIELD_LIST"
	l, err := it.push(op, DataTypeFieldList)
	if err != nil {
		return err
	}
	f.Clear()
	if it.emptyContainer(l) {
		return NoData
	}
	r := it.reader(l.end)
	f.Flags = FieldListFlags(r.u8())
	if err := checkFlags(op, uint8(f.Flags), listFlagsMask); err != nil {
		return it.fail(err)
	}
	if f.Flags&FieldListHasInfo != 0 {
		infoLen := int(r.u8())
		start := r.pos
		f.DictionaryID = r.ushort15rb()
		f.FieldListNum = int16(r.u16())
		if err := r.result(op); err != nil {
			return it.fail(err)
		}
		if start+infoLen > l.end {
			return it.fail(errorf(IncompleteData, op, "info block runs past the container"))
		}
		r.pos = start + infoLen
	}
	if f.Flags&FieldListHasSetData != 0 {
		if f.Flags&FieldListHasSetID != 0 {
			f.SetID = int(r.ushort15rb())
		}
		if err := it.decodeSetData(op, l, &r, f.Flags&FieldListHasStandardData != 0); err != nil {
			return it.fail(err)
		}
		f.EncodedSetData = it.data[l.nextSetPos:l.setDataEnd]
		def := fieldSetDef(local, it.fieldSetDefs, f.SetID)
		if def == nil {
			return it.fail(errorf(Failure, op, "set id %d is not defined", f.SetID))
		}
		l.fieldSetDef = def
		l.startSetData(def.Len())
	} else if f.Flags&FieldListHasStandardData != 0 {
		l.itemCount = int(r.u16())
		if err := r.result(op); err != nil {
			return it.fail(err)
		}
		l.nextEntryPos = r.pos
	} else {
		l.nextEntryPos = l.end
	}
	if f.Flags&FieldListHasStandardData != 0 {
		f.EncodedEntries = it.data[r.pos:l.end]
	}
	it.cur = l.nextEntryPos
	return nil
}

// decodeSetData reads the set data bounds and the standard entry count
// that follows them. nextSetPos is left at the start of the set data.
func (it *DecodeIterator) decodeSetData(op string, l *decodingLevel, r *reader, standard bool) error {
	if standard {
		start, end := r.buf15()
		l.itemCount = int(r.u16())
		if err := r.result(op); err != nil {
			return err
		}
		l.nextSetPos, l.setDataEnd, l.entriesPos = start, end, r.pos
		return nil
	}
	if err := r.result(op); err != nil {
		return err
	}
	l.nextSetPos, l.setDataEnd, l.entriesPos = r.pos, l.end, l.end
	r.pos = l.end
	return nil
}

// startSetData positions the level at its first set entry. nextSetPos
// becomes the index of the next set entry from here on.
func (l *decodingLevel) startSetData(count int) {
	l.nextEntryPos = l.nextSetPos
	if count == 0 {
		l.nextEntryPos = l.entriesPos
	}
	l.setCount = count
	l.itemCount += count
	l.nextSetPos = 0
}

// FieldEntry is one entry of a FieldList. DataType is filled in on decode
// for set entries only; standard entries need a dictionary to type them.
type FieldEntry struct {
	FieldID     int16
	DataType    DataType
	EncodedData []byte
}

func (e *FieldEntry) Clear() { *e = FieldEntry{} }

func (e *FieldEntry) begin(op string, it *EncodeIterator) (*encodingLevel, DataType, error) {
	l := it.current()
	if l == nil || l.containerType != DataTypeFieldList {
		return nil, 0, errorf(InvalidArgument, op, "no open FIELD_LIST level")
	}
	switch l.state {
	case levelSetData:
		de := l.fieldSetDef.Entries[l.setIndex]
		if de.FieldID != e.FieldID {
			return nil, 0, errorf(InvalidArgument, op, "set entry %d is field %d, got %d", l.setIndex, de.FieldID, e.FieldID)
		}
		l.entryStart = it.cur
		return l, de.DataType, nil
	case levelEntries:
		l.entryStart = it.cur
		if err := it.putU16(op, uint16(e.FieldID)); err != nil {
			return nil, 0, it.failEntry(l, err)
		}
		return l, 0, nil
	}
	return nil, 0, errorf(InvalidArgument, op, "FIELD_LIST level is not accepting entries")
}

// Encode writes the entry with v as its payload, or EncodedData when v is
// nil. Inside set data the value takes the form its definition names.
func (e *FieldEntry) Encode(it *EncodeIterator, v Primitive) error {
	const op = "encode FIELD_ENTRY"
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
	if v != nil {
		err = it.putPrimitive16(op, v)
	} else {
		err = it.putBuf16(op, e.EncodedData)
	}
	if err != nil {
		return it.failEntry(l, err)
	}
	it.endEntry(l)
	return nil
}

// EncodeBlank writes the entry with a blank payload.
func (e *FieldEntry) EncodeBlank(it *EncodeIterator) error {
	const op = "encode FIELD_ENTRY"
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

// EncodeInit opens the entry payload for a nested container or a value
// encoded in place. maxSize sizes the reserved length.
func (e *FieldEntry) EncodeInit(it *EncodeIterator, maxSize int) error {
	const op = "encode FIELD_ENTRY"
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

func (e *FieldEntry) EncodeComplete(it *EncodeIterator, success bool) error {
	return it.closeEntry("encode FIELD_ENTRY", DataTypeFieldList, success)
}

// Decode reads the next entry and bounds the iterator to its payload.
// After the last entry it returns EndOfContainer and pops the level.
func (e *FieldEntry) Decode(it *DecodeIterator) error {
	const op = "decode FIELD_ENTRY"
	l, err := it.nextEntry(op, DataTypeFieldList)
	if err != nil {
		return err
	}
	e.Clear()
	if l.nextSetPos < l.setCount {
		de := l.fieldSetDef.Entries[l.nextSetPos]
		start, end, err := it.readSetEntry(op, l, de.DataType)
		if err != nil {
			return err
		}
		e.FieldID, e.DataType = de.FieldID, setEntryType(de.DataType)
		e.EncodedData = it.data[start:end]
		return nil
	}
	r := it.reader(l.end)
	e.FieldID = int16(r.u16())
	start, end := r.buf16()
	if err := r.result(op); err != nil {
		return err
	}
	e.EncodedData = it.data[start:end]
	l.nextItem++
	it.setEntryPayload(l, start, end, r.pos)
	return nil
}

// readSetEntry bounds the next set value of type dt and advances the
// level past it.
func (it *DecodeIterator) readSetEntry(op string, l *decodingLevel, dt DataType) (int, int, error) {
	r := it.reader(l.setDataEnd)
	start, end, ok := r.setValue(dt)
	if !ok {
		return 0, 0, errorf(Failure, op, "%s cannot appear in set data", dt)
	}
	if err := r.result(op); err != nil {
		return 0, 0, err
	}
	l.nextSetPos++
	l.nextItem++
	next := r.pos
	if l.nextSetPos == l.setCount {
		next = l.entriesPos
	}
	it.setEntryPayload(l, start, end, next)
	return start, end, nil
}
