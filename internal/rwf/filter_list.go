package rwf

type FilterListFlags uint8

const (
	FilterListHasPerEntryPerm   FilterListFlags = 0x01
	FilterListHasTotalCountHint FilterListFlags = 0x02
)

type FilterEntryFlags uint8

const (
	FilterEntryHasPermData      FilterEntryFlags = 0x01
	FilterEntryHasContainerType FilterEntryFlags = 0x02
)

type FilterEntryAction uint8

const (
	FilterEntryActionUpdate FilterEntryAction = 1
	FilterEntryActionSet    FilterEntryAction = 2
	FilterEntryActionClear  FilterEntryAction = 3
)

var filterActionNames = [...]string{"UNKNOWN", "UPDATE", "SET", "CLEAR"}

func (a FilterEntryAction) String() string {
	if int(a) < len(filterActionNames) {
		return filterActionNames[a]
	}
	return "UNKNOWN"
}

// FilterList holds up to 255 entries identified by a one-byte id. An
// entry may override the list's container type.
type FilterList struct {
	Flags          FilterListFlags
	ContainerType  DataType
	TotalCountHint uint8
	EncodedEntries []byte
}

func (f *FilterList) Clear() { *f = FilterList{} }

func (f *FilterList) EncodeInit(it *EncodeIterator) error {
	const op = "encode FILTER_LIST"
	if err := checkContainerType(op, f.ContainerType); err != nil {
		return err
	}
	l, err := it.push(op, DataTypeFilterList)
	if err != nil {
		return err
	}
	l.flags = uint8(f.Flags)
	l.entryType = f.ContainerType
	err = it.putU8(op, uint8(f.Flags))
	if err == nil {
		err = it.putU8(op, containerToWire(f.ContainerType))
	}
	if err == nil && f.Flags&FilterListHasTotalCountHint != 0 {
		err = it.putU8(op, f.TotalCountHint)
	}
	if err == nil {
		err = it.reserveCount(op, l, 1)
	}
	if err != nil {
		it.abort(l)
		return err
	}
	l.state = levelEntries
	return nil
}

func (f *FilterList) EncodeComplete(it *EncodeIterator, success bool) error {
	return it.completeLevel("encode FILTER_LIST", DataTypeFilterList, success)
}

func (f *FilterList) Decode(it *DecodeIterator) error {
	const op = "decode FILTER_LIST"
	l, err := it.push(op, DataTypeFilterList)
	if err != nil {
		return err
	}
	f.Clear()
	if it.emptyContainer(l) {
		return NoData
	}
	r := it.reader(l.end)
	f.Flags = FilterListFlags(r.u8())
	if err := checkFlags(op, uint8(f.Flags), uint8(FilterListHasPerEntryPerm | FilterListHasTotalCountHint)); err != nil {
		return it.fail(err)
	}
	f.ContainerType = decodeContainerType(&r)
	if f.Flags&FilterListHasTotalCountHint != 0 {
		f.TotalCountHint = r.u8()
	}
	l.itemCount = int(r.u8())
	if err := r.result(op); err != nil {
		return it.fail(err)
	}
	f.EncodedEntries = it.data[r.pos:l.end]
	l.flags = uint8(f.Flags)
	l.entryType = f.ContainerType
	l.nextEntryPos = r.pos
	it.cur = r.pos
	return nil
}

type FilterEntry struct {
	Flags         FilterEntryFlags
	Action        FilterEntryAction
	ID            uint8
	ContainerType DataType
	PermData      []byte
	EncodedData   []byte
}

func (e *FilterEntry) Clear() { *e = FilterEntry{} }

// payloadType is the entry's own container type when it carries one,
// the list's otherwise.
func (e *FilterEntry) payloadType(listType DataType) DataType {
	if e.Flags&FilterEntryHasContainerType != 0 {
		return e.ContainerType
	}
	return listType
}

func (e *FilterEntry) hasPayload(listType DataType) bool {
	return e.Action != FilterEntryActionClear && e.payloadType(listType) != DataTypeNoData
}

func (e *FilterEntry) begin(op string, it *EncodeIterator) (*encodingLevel, error) {
	if e.Action < FilterEntryActionUpdate || e.Action > FilterEntryActionClear {
		return nil, errorf(InvalidArgument, op, "unknown filter entry action %d", e.Action)
	}
	if e.Flags > 0x0F {
		return nil, errorf(InvalidArgument, op, "entry flags %#x do not fit four bits", e.Flags)
	}
	if e.Flags&FilterEntryHasContainerType != 0 {
		if err := checkContainerType(op, e.ContainerType); err != nil {
			return nil, err
		}
	}
	l, err := it.beginEntry(op, DataTypeFilterList)
	if err != nil {
		return nil, err
	}
	if l.count >= 0xFF {
		l.entryStart = -1
		return nil, errorf(InvalidArgument, op, "a filter list holds at most 255 entries")
	}
	err = it.putU8(op, uint8(e.Flags)<<4|uint8(e.Action))
	if err == nil {
		err = it.putU8(op, e.ID)
	}
	if err == nil && e.Flags&FilterEntryHasContainerType != 0 {
		err = it.putU8(op, containerToWire(e.ContainerType))
	}
	if err == nil && e.Flags&FilterEntryHasPermData != 0 {
		err = it.putBuf15(op, e.PermData)
	}
	if err != nil {
		return nil, it.failEntry(l, err)
	}
	return l, nil
}

func (e *FilterEntry) Encode(it *EncodeIterator) error {
	const op = "encode FILTER_ENTRY"
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

func (e *FilterEntry) EncodeInit(it *EncodeIterator, maxSize int) error {
	const op = "encode FILTER_ENTRY"
	l, err := e.begin(op, it)
	if err != nil {
		return err
	}
	if !e.hasPayload(l.entryType) {
		return it.failEntry(l, errorf(InvalidArgument, op, "%s entry carries no payload", e.Action))
	}
	return it.openEntry(op, l, maxSize)
}

func (e *FilterEntry) EncodeComplete(it *EncodeIterator, success bool) error {
	return it.closeEntry("encode FILTER_ENTRY", DataTypeFilterList, success)
}

// Decode reads the next entry. ContainerType is always filled in, from
// the list when the entry carries none.
func (e *FilterEntry) Decode(it *DecodeIterator) error {
	const op = "decode FILTER_ENTRY"
	l, err := it.nextEntry(op, DataTypeFilterList)
	if err != nil {
		return err
	}
	e.Clear()
	r := it.reader(l.end)
	b := r.u8()
	e.Flags, e.Action = FilterEntryFlags(b>>4), FilterEntryAction(b&0x0F)
	e.ID = r.u8()
	e.ContainerType = l.entryType
	if e.Flags&FilterEntryHasContainerType != 0 {
		e.ContainerType = decodeContainerType(&r)
	}
	e.PermData = readPermData(&r, e.Flags&FilterEntryHasPermData != 0)
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
