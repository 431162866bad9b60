package rwf

import "github.com/danmuck/rwfcodec/internal/rwf/wire"

var errShort = wire.ErrShortBuffer

// Primitive is the closed set of scalar value types. Dispatch over the
// variants is a type switch; the unexported methods keep the set sealed.
type Primitive interface {
	DataType() DataType
	IsBlank() bool
	Clear()
	Blank()
	Encode(it *EncodeIterator) error
	Decode(it *DecodeIterator) error
	String() string
	SetString(s string) error

	encodedSize() int
	put(dst []byte) (int, error)
	decodeBytes(p []byte) error
}

var (
	_ Primitive = (*Int)(nil)
	_ Primitive = (*UInt)(nil)
	_ Primitive = (*Float)(nil)
	_ Primitive = (*Double)(nil)
	_ Primitive = (*Real)(nil)
	_ Primitive = (*Date)(nil)
	_ Primitive = (*Time)(nil)
	_ Primitive = (*DateTime)(nil)
	_ Primitive = (*Enum)(nil)
	_ Primitive = (*Qos)(nil)
	_ Primitive = (*State)(nil)
	_ Primitive = (*Buffer)(nil)
)

// NewPrimitive allocates a value object for a base or set-only type.
func NewPrimitive(dt DataType) (Primitive, error) {
	switch dt.BaseType() {
	case DataTypeInt:
		return &Int{}, nil
	case DataTypeUInt:
		return &UInt{}, nil
	case DataTypeFloat:
		return &Float{}, nil
	case DataTypeDouble:
		return &Double{}, nil
	case DataTypeReal:
		return &Real{}, nil
	case DataTypeDate:
		return &Date{}, nil
	case DataTypeTime:
		return &Time{}, nil
	case DataTypeDateTime:
		return &DateTime{}, nil
	case DataTypeEnum:
		return &Enum{}, nil
	case DataTypeQos:
		return &Qos{}, nil
	case DataTypeState:
		return &State{}, nil
	case DataTypeBuffer, DataTypeASCIIString, DataTypeUTF8String, DataTypeRMTESString:
		return &Buffer{kind: dt}, nil
	}
	return nil, errorf(InvalidArgument, "new primitive", "%s is not a primitive type", dt)
}

// encodePrimitive writes the bare payload of v at the iterator position.
func encodePrimitive(it *EncodeIterator, v Primitive) error {
	op := "encode " + v.DataType().String()
	if it.buf == nil {
		return errorf(InvalidArgument, op, "no buffer bound")
	}
	if v.IsBlank() && !fieldBlank(v) {
		return errorf(InvalidArgument, op, "value is blank")
	}
	if err := checkValue(v); err != nil {
		return err
	}
	return it.putValue(op, v)
}

// fieldBlank reports whether the blank form of v is a field pattern the
// wire carries, as with the date and time types.
func fieldBlank(v Primitive) bool {
	switch v.(type) {
	case *Date, *Time, *DateTime:
		return true
	}
	return false
}

// checkValue runs the domain checks a value must pass before it is
// written anywhere.
func checkValue(v Primitive) error {
	switch x := v.(type) {
	case *Real:
		if !x.blank && !x.hint.valid() {
			return errorf(InvalidArgument, "encode REAL", "hint %d is not valid", x.hint)
		}
	case *Date:
		if !x.IsValid() {
			return errorf(InvalidArgument, "encode DATE", "%04d-%02d-%02d is not a valid date", x.Year, x.Month, x.Day)
		}
	case *Time:
		if !x.IsValid() {
			return errorf(InvalidArgument, "encode TIME", "%s is not a valid time", x.Format(FormatRSSL))
		}
	case *DateTime:
		if !x.IsValid() {
			return errorf(InvalidArgument, "encode DATETIME", "%s is not a valid date and time", x.Format(FormatRSSL))
		}
	case *Qos:
		if !x.blank {
			return x.validate()
		}
	case *State:
		if !x.blank {
			return x.validate()
		}
	}
	return nil
}

// decodePrimitive reads the payload bounded by the current level.
func decodePrimitive(it *DecodeIterator, v Primitive) error {
	p, err := it.payload("decode " + v.DataType().String())
	if err != nil {
		return err
	}
	return v.decodeBytes(p)
}

// DecodeValue decodes raw payload bytes into v outside of any iterator,
// e.g. a map key or an entry's EncodedData.
func DecodeValue(v Primitive, p []byte) error {
	return v.decodeBytes(p)
}
