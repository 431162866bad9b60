package rwf

import "github.com/danmuck/rwfcodec/internal/rwf/wire"

// Array is a run of primitives of one type. With ItemLength 0 every item
// carries its own length; otherwise every item is exactly ItemLength bytes.
type Array struct {
	PrimitiveType DataType
	ItemLength    uint16
	EncodedData   []byte
}

func (a *Array) Clear() { *a = Array{} }

// fixedWidthOK reports whether items of dt can be written at n bytes.
func fixedWidthOK(dt DataType, n int) bool {
	switch dt {
	case DataTypeInt, DataTypeUInt:
		return n == 1 || n == 2 || n == 4 || n == 8
	case DataTypeEnum:
		return n == 1 || n == 2
	case DataTypeFloat, DataTypeDate:
		return n == 4
	case DataTypeDouble:
		return n == 8
	case DataTypeTime:
		return n == 3 || n == 5 || n == 7 || n == 8
	case DataTypeDateTime:
		return n == 7 || n == 9 || n == 11 || n == 12
	case DataTypeBuffer, DataTypeASCIIString, DataTypeUTF8String, DataTypeRMTESString:
		return true
	}
	return false
}

func (a *Array) EncodeInit(it *EncodeIterator) error {
	const op = "encode ARRAY"
	if !a.PrimitiveType.IsPrimitive() || a.PrimitiveType == DataTypeArray {
		return errorf(InvalidArgument, op, "%s cannot be an array item", a.PrimitiveType)
	}
	if a.ItemLength > 0 && !fixedWidthOK(a.PrimitiveType, int(a.ItemLength)) {
		return errorf(InvalidArgument, op, "%s items cannot be %d bytes wide", a.PrimitiveType, a.ItemLength)
	}
	l, err := it.push(op, DataTypeArray)
	if err != nil {
		return err
	}
	l.entryType = a.PrimitiveType
	l.itemLength = int(a.ItemLength)
	err = it.putU8(op, uint8(a.PrimitiveType))
	if err == nil {
		err = it.ensure(op, wire.UShort16obLen(a.ItemLength))
	}
	if err == nil {
		n, _ := wire.PutUShort16ob(it.window(), a.ItemLength)
		it.cur += n
	}
	if err == nil {
		err = it.reserveCount(op, l, 2)
	}
	if err != nil {
		it.abort(l)
		return err
	}
	l.state = levelEntries
	return nil
}

func (a *Array) EncodeComplete(it *EncodeIterator, success bool) error {
	return it.completeLevel("encode ARRAY", DataTypeArray, success)
}

// Decode parses the header. An array with no bytes at all is blank.
func (a *Array) Decode(it *DecodeIterator) error {
	const op = "decode ARRAY"
	l, err := it.push(op, DataTypeArray)
	if err != nil {
		return err
	}
	a.Clear()
	if it.emptyContainer(l) {
		return BlankData
	}
	r := it.reader(l.end)
	a.PrimitiveType = DataType(r.u8())
	a.ItemLength = r.ushort16ob()
	l.itemCount = int(r.u16())
	if err := r.result(op); err != nil {
		return it.fail(err)
	}
	a.EncodedData = it.data[r.pos:l.end]
	l.entryType = a.PrimitiveType
	l.itemLength = int(a.ItemLength)
	l.nextEntryPos = r.pos
	it.cur = r.pos
	return nil
}

// ArrayEntry is one item of an Array.
type ArrayEntry struct {
	EncodedData []byte
}

func (e *ArrayEntry) Clear() { *e = ArrayEntry{} }

// Encode writes v, or EncodedData when v is nil. Blank values are written
// as blank items in variable-length arrays and rejected in fixed ones.
func (e *ArrayEntry) Encode(it *EncodeIterator, v Primitive) error {
	const op = "encode ARRAY_ENTRY"
	l, err := it.beginEntry(op, DataTypeArray)
	if err != nil {
		return err
	}
	if v != nil && !typeMatches(l.entryType, v) {
		l.entryStart = -1
		return errorf(InvalidArgument, op, "%s item in an array of %s", v.DataType(), l.entryType)
	}
	if l.itemLength == 0 {
		switch {
		case v == nil:
			err = it.putBuf16(op, e.EncodedData)
		case v.IsBlank() && !fieldBlank(v):
			err = it.putBuf16(op, nil)
		default:
			err = it.putPrimitive16(op, v)
		}
	} else {
		err = it.putFixedItem(op, l, v, e.EncodedData)
	}
	if err != nil {
		return it.failEntry(l, err)
	}
	it.endEntry(l)
	return nil
}

// EncodeBlank writes a zero-length item. Fixed-width arrays have no blank
// items.
func (e *ArrayEntry) EncodeBlank(it *EncodeIterator) error {
	const op = "encode ARRAY_ENTRY"
	l, err := it.beginEntry(op, DataTypeArray)
	if err != nil {
		return err
	}
	if l.itemLength > 0 {
		l.entryStart = -1
		return errorf(InvalidArgument, op, "fixed-width items cannot be blank")
	}
	if err := it.putBuf16(op, nil); err != nil {
		return it.failEntry(l, err)
	}
	it.endEntry(l)
	return nil
}

func (it *EncodeIterator) putFixedItem(op string, l *encodingLevel, v Primitive, encoded []byte) error {
	if v == nil {
		if len(encoded) != l.itemLength {
			return errorf(InvalidArgument, op, "item is %d bytes, array items are %d", len(encoded), l.itemLength)
		}
		return it.putBytes(op, encoded)
	}
	if v.IsBlank() {
		return errorf(InvalidArgument, op, "fixed-width items cannot be blank")
	}
	if err := checkValue(v); err != nil {
		return err
	}
	if err := it.ensure(op, l.itemLength); err != nil {
		return err
	}
	n, err := putFixed(it.window(), l.itemLength, v)
	if err != nil {
		return errorf(InvalidArgument, op, "%s does not fit %d bytes: %v", v, l.itemLength, err)
	}
	it.cur += n
	return nil
}

// Decode reads the next item and bounds the iterator to it, so the item
// can be decoded with the matching primitive's Decode.
func (e *ArrayEntry) Decode(it *DecodeIterator) error {
	const op = "decode ARRAY_ENTRY"
	l, err := it.nextEntry(op, DataTypeArray)
	if err != nil {
		return err
	}
	e.Clear()
	r := it.reader(l.end)
	var start, end int
	if l.itemLength == 0 {
		start, end = r.buf16()
	} else {
		start, end = r.span(l.itemLength)
	}
	if err := r.result(op); err != nil {
		return err
	}
	e.EncodedData = it.data[start:end]
	l.nextItem++
	it.setEntryPayload(l, start, end, r.pos)
	return nil
}
