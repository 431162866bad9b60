package rwf

import "github.com/danmuck/rwfcodec/internal/rwf/wire"

// Flags shared by field and element lists.
const (
	listHasInfo         = 0x01
	listHasSetData      = 0x02
	listHasSetID        = 0x04
	listHasStandardData = 0x08

	listFlagsMask = listHasInfo | listHasSetData | listHasSetID | listHasStandardData
)

// beginEntry returns the open level of containerType once it can take a
// standard entry, and records where the entry starts.
func (it *EncodeIterator) beginEntry(op string, containerType DataType) (*encodingLevel, error) {
	l := it.current()
	if l == nil || l.containerType != containerType {
		return nil, errorf(InvalidArgument, op, "no open %s level", containerType)
	}
	if l.state != levelEntries {
		return nil, errorf(InvalidArgument, op, "%s level is not accepting entries", containerType)
	}
	l.entryStart = it.cur
	return l, nil
}

// endEntry counts a fully written standard entry.
func (it *EncodeIterator) endEntry(l *encodingLevel) {
	l.count++
	l.entryStart = -1
}

// failEntry drops a partially written entry and passes err through.
func (it *EncodeIterator) failEntry(l *encodingLevel, err error) error {
	it.rollbackEntry(l)
	return err
}

// openEntry reserves the payload length of an entry whose content the
// caller encodes next, nested containers included.
func (it *EncodeIterator) openEntry(op string, l *encodingLevel, maxSize int) error {
	if err := it.reserveU16Mark(op, &l.mark, maxSize); err != nil {
		l.openSetEntry = false
		return it.failEntry(l, err)
	}
	l.state = levelEntryOpen
	return nil
}

// closeEntry patches the payload length of the open entry of the current
// level, or drops the entry when success is false.
func (it *EncodeIterator) closeEntry(op string, containerType DataType, success bool) error {
	l := it.current()
	if l == nil || l.containerType != containerType || l.state != levelEntryOpen {
		return errorf(InvalidArgument, op, "no open %s entry", containerType)
	}
	set := l.openSetEntry
	l.openSetEntry = false
	l.state = levelEntries
	if set {
		l.state = levelSetData
	}
	if !success {
		it.rollbackEntry(l)
		return nil
	}
	if err := it.finishU16Mark(op, &l.mark); err != nil {
		return it.failEntry(l, err)
	}
	if set {
		return it.nextSetEntry(op, l)
	}
	it.endEntry(l)
	return nil
}

// nextSetEntry moves past a written set entry. After the last one the
// level goes on to standard entries or finishes its set data.
func (it *EncodeIterator) nextSetEntry(op string, l *encodingLevel) error {
	l.entryStart = -1
	l.setIndex++
	if l.setIndex < setDefCount(l) {
		return nil
	}
	return it.endSetData(op, l)
}

func (it *EncodeIterator) endSetData(op string, l *encodingLevel) error {
	if l.flags&listHasStandardData == 0 {
		l.state = levelSetDataComplete
		return nil
	}
	if err := it.finishU15Mark(op, &l.mark2); err != nil {
		return err
	}
	if err := it.reserveCount(op, l, 2); err != nil {
		return err
	}
	l.state = levelEntries
	return nil
}

// putPrimitive15 writes v behind a UShort15rb length, as map keys are.
func (it *EncodeIterator) putPrimitive15(op string, v Primitive) error {
	if v.IsBlank() && !fieldBlank(v) {
		return errorf(InvalidArgument, op, "%s key is blank", v.DataType())
	}
	if err := checkValue(v); err != nil {
		return err
	}
	size := v.encodedSize()
	if size > wire.MaxUShort15 {
		return errorf(InvalidArgument, op, "%d bytes exceed a 15-bit length", size)
	}
	if err := it.ensure(op, wire.UShort15rbLen(uint16(size))+size); err != nil {
		return err
	}
	if err := it.putUShort15rb(op, uint16(size)); err != nil {
		return err
	}
	return it.putValue(op, v)
}

// typeMatches reports whether v may stand in for a declared type. The
// string and buffer kinds are interchangeable.
func typeMatches(declared DataType, v Primitive) bool {
	if declared.isBufferLike() {
		_, ok := v.(*Buffer)
		return ok
	}
	return v.DataType() == declared
}

// nextEntry checks for the end of the current decode level and pops it
// when every entry has been read.
func (it *DecodeIterator) nextEntry(op string, containerType DataType) (*decodingLevel, error) {
	l, err := it.current(op, containerType)
	if err != nil {
		return nil, err
	}
	if l.nextItem >= l.itemCount {
		it.endOfList()
		return nil, EndOfContainer
	}
	it.cur = l.nextEntryPos
	return l, nil
}

// emptyContainer pops a level whose payload holds no bytes at all.
func (it *DecodeIterator) emptyContainer(l *decodingLevel) bool {
	if it.cur != l.end {
		return false
	}
	it.endOfList()
	return true
}
