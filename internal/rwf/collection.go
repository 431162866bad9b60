package rwf

import "github.com/danmuck/rwfcodec/internal/rwf/wire"

// collectionHeader is the header suffix maps, series and vectors share:
// set definitions, summary data, a total count hint, then the entry count.
type collectionHeader struct {
	hasSetDefs bool
	hasSummary bool
	hasHint    bool
	setDefs    []byte
	summary    []byte
	hint       uint32
}

// encodeTail writes whatever of the header suffix the level has not
// written yet. It stops at a section the caller must encode in place and
// resumes from there on the next call.
func (it *EncodeIterator) encodeTail(op string, l *encodingLevel, h collectionHeader, setDefsMax int) error {
	if l.state == levelHeaderWritten && h.hasSetDefs {
		if len(h.setDefs) == 0 {
			if err := it.reserveU15Mark(op, &l.mark2, setDefsMax); err != nil {
				return err
			}
			l.state = levelSetDefs
			return nil
		}
		if err := it.putBuf15(op, h.setDefs); err != nil {
			return err
		}
	}
	if (l.state == levelHeaderWritten || l.state == levelSetDefs) && h.hasSummary {
		if len(h.summary) == 0 {
			if err := it.reserveU15Mark(op, &l.mark2, l.summaryMax); err != nil {
				return err
			}
			l.state = levelSummaryData
			return nil
		}
		if err := it.putBuf15(op, h.summary); err != nil {
			return err
		}
	}
	if h.hasHint {
		if h.hint > wire.MaxUInt30 {
			return errorf(InvalidArgument, op, "total count hint %d exceeds %d", h.hint, wire.MaxUInt30)
		}
		if err := it.putUInt30rb(op, h.hint); err != nil {
			return err
		}
	}
	if err := it.reserveCount(op, l, 2); err != nil {
		return err
	}
	l.state = levelEntries
	return nil
}

// completeSection closes the set definitions or summary data the caller
// encoded in place. With success false the section's content is dropped
// and the section stays open.
func (it *EncodeIterator) completeSection(op string, containerType DataType, state levelState, success bool) (*encodingLevel, error) {
	l := it.current()
	if l == nil || l.containerType != containerType || l.state != state {
		return nil, errorf(InvalidArgument, op, "%s level has no open section", containerType)
	}
	if !success {
		it.cur = l.mark2.pos + l.mark2.width
		return nil, nil
	}
	if err := it.finishU15Mark(op, &l.mark2); err != nil {
		return nil, err
	}
	return l, nil
}

// decodeTail reads the shared header suffix. When summary data is present
// the iterator is left bounded to it so the caller can decode it next;
// entries resume after it either way.
func (it *DecodeIterator) decodeTail(op string, l *decodingLevel, r *reader, h *collectionHeader) error {
	if h.hasSetDefs {
		l.setDefsPos, l.setDefsEnd = r.buf15()
	}
	sumStart, sumEnd := r.pos, r.pos
	if h.hasSummary {
		sumStart, sumEnd = r.buf15()
	}
	if h.hasHint {
		h.hint = r.uint30rb()
	}
	l.itemCount = int(r.u16())
	if err := r.result(op); err != nil {
		return err
	}
	if !h.hasSummary {
		sumStart, sumEnd = r.pos, r.pos
	}
	h.setDefs = r.bytes(l.setDefsPos, l.setDefsEnd)
	h.summary = r.bytes(sumStart, sumEnd)
	it.setEntryPayload(l, sumStart, sumEnd, r.pos)
	return nil
}

// readPermData reads the permission data an entry carries when flagged.
func readPermData(r *reader, present bool) []byte {
	if !present {
		return nil
	}
	start, end := r.buf15()
	return r.bytes(start, end)
}

// decodeContainerType reads a container tag as containers carry it, offset
// by 128.
func decodeContainerType(r *reader) DataType {
	return containerFromWire(r.u8())
}

func checkContainerType(op string, dt DataType) error {
	if !dt.IsContainer() {
		return errorf(InvalidArgument, op, "%s is not a container type", dt)
	}
	return nil
}

// checkFlags rejects header flag bits the container does not define.
func checkFlags(op string, flags, known uint8) error {
	if extra := flags &^ known; extra != 0 {
		return errorf(Failure, op, "undefined header flags 0x%02X", extra)
	}
	return nil
}
