package rwf

type SeriesFlags uint8

const (
	SeriesHasSetDefs        SeriesFlags = 0x01
	SeriesHasSummaryData    SeriesFlags = 0x02
	SeriesHasTotalCountHint SeriesFlags = 0x04
)

// Series is an ordered run of unkeyed entries of one container type,
// typically rows of a table.
type Series struct {
	Flags          SeriesFlags
	ContainerType  DataType
	TotalCountHint uint32

	EncodedSetDefs     []byte
	EncodedSummaryData []byte
	EncodedEntries     []byte
}

func (s *Series) Clear() { *s = Series{} }

func (s *Series) header() collectionHeader {
	return collectionHeader{
		hasSetDefs: s.Flags&SeriesHasSetDefs != 0,
		hasSummary: s.Flags&SeriesHasSummaryData != 0,
		hasHint:    s.Flags&SeriesHasTotalCountHint != 0,
		setDefs:    s.EncodedSetDefs,
		summary:    s.EncodedSummaryData,
		hint:       s.TotalCountHint,
	}
}

func (s *Series) EncodeInit(it *EncodeIterator, summaryMaxSize, setDefsMaxSize int) error {
	const op = "encode SERIES"
	if err := checkContainerType(op, s.ContainerType); err != nil {
		return err
	}
	l, err := it.push(op, DataTypeSeries)
	if err != nil {
		return err
	}
	l.flags = uint8(s.Flags)
	l.entryType = s.ContainerType
	l.summaryMax = summaryMaxSize
	err = it.putU8(op, uint8(s.Flags))
	if err == nil {
		err = it.putU8(op, containerToWire(s.ContainerType))
	}
	if err == nil {
		l.state = levelHeaderWritten
		err = it.encodeTail(op, l, s.header(), setDefsMaxSize)
	}
	if err != nil {
		it.abort(l)
		return err
	}
	return nil
}

func (s *Series) EncodeSetDefsComplete(it *EncodeIterator, success bool) error {
	const op = "encode SERIES set definitions"
	l, err := it.completeSection(op, DataTypeSeries, levelSetDefs, success)
	if l == nil || err != nil {
		return err
	}
	return it.encodeTail(op, l, s.header(), 0)
}

func (s *Series) EncodeSummaryDataComplete(it *EncodeIterator, success bool) error {
	const op = "encode SERIES summary data"
	l, err := it.completeSection(op, DataTypeSeries, levelSummaryData, success)
	if l == nil || err != nil {
		return err
	}
	return it.encodeTail(op, l, s.header(), 0)
}

func (s *Series) EncodeComplete(it *EncodeIterator, success bool) error {
	return it.completeLevel("encode SERIES", DataTypeSeries, success)
}

func (s *Series) Decode(it *DecodeIterator) error {
	const op = "decode SERIES"
	l, err := it.push(op, DataTypeSeries)
	if err != nil {
		return err
	}
	s.Clear()
	if it.emptyContainer(l) {
		return NoData
	}
	r := it.reader(l.end)
	s.Flags = SeriesFlags(r.u8())
	if err := checkFlags(op, uint8(s.Flags), uint8(SeriesHasSetDefs | SeriesHasSummaryData | SeriesHasTotalCountHint)); err != nil {
		return it.fail(err)
	}
	s.ContainerType = decodeContainerType(&r)
	h := s.header()
	if err := it.decodeTail(op, l, &r, &h); err != nil {
		return it.fail(err)
	}
	s.EncodedSetDefs, s.EncodedSummaryData, s.TotalCountHint = h.setDefs, h.summary, h.hint
	s.EncodedEntries = it.data[l.nextEntryPos:l.end]
	l.flags = uint8(s.Flags)
	l.entryType = s.ContainerType
	return nil
}

// SeriesEntry is one entry of a Series: a payload and nothing else. In a
// NO_DATA series entries have no bytes at all.
type SeriesEntry struct {
	EncodedData []byte
}

func (e *SeriesEntry) Clear() { *e = SeriesEntry{} }

func (e *SeriesEntry) Encode(it *EncodeIterator) error {
	const op = "encode SERIES_ENTRY"
	l, err := it.beginEntry(op, DataTypeSeries)
	if err != nil {
		return err
	}
	if l.entryType != DataTypeNoData {
		if err := it.putBuf16(op, e.EncodedData); err != nil {
			return it.failEntry(l, err)
		}
	}
	it.endEntry(l)
	return nil
}

func (e *SeriesEntry) EncodeInit(it *EncodeIterator, maxSize int) error {
	const op = "encode SERIES_ENTRY"
	l, err := it.beginEntry(op, DataTypeSeries)
	if err != nil {
		return err
	}
	if l.entryType == DataTypeNoData {
		return it.failEntry(l, errorf(InvalidArgument, op, "NO_DATA series entries have no payload"))
	}
	return it.openEntry(op, l, maxSize)
}

func (e *SeriesEntry) EncodeComplete(it *EncodeIterator, success bool) error {
	return it.closeEntry("encode SERIES_ENTRY", DataTypeSeries, success)
}

func (e *SeriesEntry) Decode(it *DecodeIterator) error {
	const op = "decode SERIES_ENTRY"
	l, err := it.nextEntry(op, DataTypeSeries)
	if err != nil {
		return err
	}
	e.Clear()
	r := it.reader(l.end)
	start, end := r.pos, r.pos
	if l.entryType != DataTypeNoData {
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
