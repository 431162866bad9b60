package rwf

import "github.com/danmuck/rwfcodec/internal/rwf/wire"

// setForm is how a set definition entry's type is laid out inside set
// data, where entries carry neither id nor type.
type setForm uint8

const (
	setUnsupported setForm = iota
	setFixed
	setBuf8
	setBuf16
	setReal4RB
	setReal8RB
)

// Total RB real widths, format byte included, indexed by the length code
// in bits 7-6 of the format byte.
var (
	real4RBLens = [4]int{2, 3, 4, 5}
	real8RBLens = [4]int{3, 5, 7, 9}
)

const realRBBlank = 0x20

// setFormOf maps a set entry type to its wire form and, for fixed forms,
// the payload width.
func setFormOf(dt DataType) (setForm, int) {
	switch dt {
	case DataTypeInt1, DataTypeUInt1:
		return setFixed, 1
	case DataTypeInt2, DataTypeUInt2:
		return setFixed, 2
	case DataTypeTime3:
		return setFixed, 3
	case DataTypeInt4, DataTypeUInt4, DataTypeFloat4, DataTypeDate4:
		return setFixed, 4
	case DataTypeTime5:
		return setFixed, 5
	case DataTypeDateTime7, DataTypeTime7:
		return setFixed, 7
	case DataTypeInt8, DataTypeUInt8, DataTypeDouble8, DataTypeTime8:
		return setFixed, 8
	case DataTypeDateTime9:
		return setFixed, 9
	case DataTypeDateTime11:
		return setFixed, 11
	case DataTypeDateTime12:
		return setFixed, 12
	case DataTypeEnum, DataTypeArray, DataTypeBuffer, DataTypeASCIIString, DataTypeUTF8String,
		DataTypeRMTESString, DataTypeOpaque, DataTypeXML, DataTypeFieldList, DataTypeElementList,
		DataTypeANSIPage, DataTypeFilterList, DataTypeVector, DataTypeMap, DataTypeSeries, DataTypeMsg:
		return setBuf16, 0
	case DataTypeInt, DataTypeUInt, DataTypeFloat, DataTypeDouble, DataTypeReal,
		DataTypeDateTime, DataTypeTime, DataTypeDate, DataTypeQos:
		return setBuf8, 0
	case DataTypeReal4RB:
		return setReal4RB, 0
	case DataTypeReal8RB:
		return setReal8RB, 0
	}
	return setUnsupported, 0
}

// setValueMatches reports whether v can be written as set type dt.
func setValueMatches(dt DataType, v Primitive) bool {
	base := dt.BaseType()
	if base.isBufferLike() || base.IsContainer() || base == DataTypeArray {
		_, ok := v.(*Buffer)
		return ok
	}
	return v.DataType() == base
}

// putSetValue writes v in the form dt takes inside set data.
func (it *EncodeIterator) putSetValue(op string, dt DataType, v Primitive) error {
	form, width := setFormOf(dt)
	if form == setUnsupported {
		return errorf(InvalidArgument, op, "%s cannot appear in set data", dt)
	}
	if !setValueMatches(dt, v) {
		return errorf(InvalidArgument, op, "%s value cannot be written as %s", v.DataType(), dt)
	}
	if err := checkValue(v); err != nil {
		return err
	}
	if v.IsBlank() && !fieldBlank(v) {
		return it.putSetBlank(op, dt)
	}
	switch form {
	case setBuf8:
		size := v.encodedSize()
		if size > 0xFF {
			return errorf(InvalidArgument, op, "%d bytes exceed an 8-bit length", size)
		}
		if err := it.ensure(op, 1+size); err != nil {
			return err
		}
		it.buf.Data()[it.cur] = byte(size)
		it.cur++
		return it.putValue(op, v)
	case setBuf16:
		return it.putPrimitive16(op, v)
	case setReal4RB, setReal8RB:
		return it.putRealRB(op, form, v.(*Real))
	}
	if err := it.ensure(op, width); err != nil {
		return err
	}
	n, err := putFixed(it.window(), width, v)
	if err != nil {
		return errorf(InvalidArgument, op, "%s does not fit %s: %v", v, dt, err)
	}
	it.cur += n
	return nil
}

// putSetBlank writes the blank form of dt. Fixed numeric forms have none.
func (it *EncodeIterator) putSetBlank(op string, dt DataType) error {
	form, width := setFormOf(dt)
	switch form {
	case setBuf8:
		return it.putU8(op, 0)
	case setBuf16:
		return it.putBuf16(op, nil)
	case setReal4RB, setReal8RB:
		return it.putU8(op, realRBBlank)
	case setFixed:
		if err := it.ensure(op, width); err != nil {
			return err
		}
		dst := it.window()
		var err error
		switch dt.BaseType() {
		case DataTypeDate:
			_, err = (&Date{}).put(dst)
		case DataTypeTime:
			_, err = putTimeN(dst, &blankTime, width)
		case DataTypeDateTime:
			_, err = putDateTimeN(dst, &DateTime{Time: blankTime}, width)
		default:
			return errorf(InvalidArgument, op, "%s has no blank form", dt)
		}
		if err != nil {
			return fromWire(op, err)
		}
		it.cur += width
		return nil
	}
	return errorf(InvalidArgument, op, "%s cannot appear in set data", dt)
}

// putSetEncoded writes a payload that is already in the base wire form of
// dt, adding whatever length prefix the set form needs.
func (it *EncodeIterator) putSetEncoded(op string, dt DataType, p []byte) error {
	form, width := setFormOf(dt)
	switch form {
	case setBuf8:
		if len(p) > 0xFF {
			return errorf(InvalidArgument, op, "%d bytes exceed an 8-bit length", len(p))
		}
		if err := it.ensure(op, 1+len(p)); err != nil {
			return err
		}
		it.buf.Data()[it.cur] = byte(len(p))
		it.cur++
		return it.putBytes(op, p)
	case setBuf16:
		return it.putBuf16(op, p)
	case setFixed:
		if len(p) != width {
			return errorf(InvalidArgument, op, "%s takes exactly %d bytes, got %d", dt, width, len(p))
		}
		return it.putBytes(op, p)
	case setReal4RB, setReal8RB:
		if len(p) == 0 || rbLen(form, p[0]) != len(p) {
			return errorf(InvalidArgument, op, "malformed %s payload", dt)
		}
		return it.putBytes(op, p)
	}
	return errorf(InvalidArgument, op, "%s cannot appear in set data", dt)
}

func rbLen(form setForm, format byte) int {
	if format&realRBBlank != 0 {
		return 1
	}
	if form == setReal4RB {
		return real4RBLens[format>>6]
	}
	return real8RBLens[format>>6]
}

// putRealRB writes v with a length code and hint in one byte, then the
// mantissa at the narrowest width the form allows.
func (it *EncodeIterator) putRealRB(op string, form setForm, v *Real) error {
	if v.hint.isSpecial() {
		return errorf(InvalidArgument, op, "infinity and NaN have no RB form")
	}
	n := wire.Long64lsLen(v.value)
	var code int
	if form == setReal4RB {
		if n > 4 {
			return errorf(InvalidArgument, op, "mantissa %d does not fit REAL_4RB", v.value)
		}
		code = n - 1
	} else {
		n += n & 1
		code = n/2 - 1
	}
	if err := it.ensure(op, 1+n); err != nil {
		return err
	}
	dst := it.window()
	dst[0] = byte(code)<<6 | byte(v.hint)
	if _, err := wire.PutLong64lsN(dst[1:], v.value, n); err != nil {
		return fromWire(op, err)
	}
	it.cur += 1 + n
	return nil
}

// putFixed writes v at exactly width bytes, as fixed set types and
// fixed-width array items are.
func putFixed(dst []byte, width int, v Primitive) (int, error) {
	switch x := v.(type) {
	case *Int:
		return wire.PutLong64lsN(dst, x.value, width)
	case *UInt:
		return wire.PutULong64lsN(dst, x.value, width)
	case *Enum:
		return wire.PutULong64lsN(dst, uint64(x.value), width)
	case *Buffer:
		if len(x.data) != width {
			return 0, wire.ErrInvalidSize
		}
		if len(dst) < width {
			return 0, wire.ErrShortBuffer
		}
		return copy(dst, x.data), nil
	case *Float, *Double, *Date:
		if v.encodedSize() != width {
			return 0, wire.ErrInvalidSize
		}
		return v.put(dst)
	case *Time:
		if !timeFits(x, width) {
			return 0, wire.ErrOutOfRange
		}
		return putTimeN(dst, x, width)
	case *DateTime:
		if !timeFits(&x.Time, width-4) {
			return 0, wire.ErrOutOfRange
		}
		return putDateTimeN(dst, x, width)
	}
	return 0, wire.ErrOutOfRange
}

// timeFits reports whether every field an n-byte time drops would decode
// back to the same value.
func timeFits(t *Time, n int) bool {
	fill := Time{}
	if t.Hour == BlankHour {
		fill = blankTime
	}
	switch n {
	case 2:
		return t.Second == fill.Second && t.Millisecond == fill.Millisecond &&
			t.Microsecond == fill.Microsecond && t.Nanosecond == fill.Nanosecond
	case 3:
		return t.Millisecond == fill.Millisecond && t.Microsecond == fill.Microsecond && t.Nanosecond == fill.Nanosecond
	case 5:
		return t.Microsecond == fill.Microsecond && t.Nanosecond == fill.Nanosecond
	case 7:
		return t.Nanosecond == fill.Nanosecond
	case 8:
		return true
	}
	return false
}

// setValue returns the payload bounds of the next set value of type dt,
// in the base wire form of dt. A blank RB real yields an empty payload.
// ok is false for types set data cannot carry.
func (r *reader) setValue(dt DataType) (start, end int, ok bool) {
	form, width := setFormOf(dt)
	switch form {
	case setFixed:
		start, end = r.span(width)
	case setBuf8:
		n := r.u8()
		start, end = r.span(int(n))
	case setBuf16:
		start, end = r.buf16()
	case setReal4RB, setReal8RB:
		if !r.need(1) {
			return r.pos, r.pos, true
		}
		format := r.data[r.pos]
		if format&realRBBlank != 0 {
			r.pos++
			return r.pos, r.pos, true
		}
		start, end = r.span(rbLen(form, format))
	default:
		return r.pos, r.pos, false
	}
	return start, end, true
}

// setEntryType is the type a decoded set entry reports: set-only types
// collapse to the primitive they decode as.
func setEntryType(dt DataType) DataType {
	if dt.IsSetType() {
		return dt.BaseType()
	}
	return dt
}
