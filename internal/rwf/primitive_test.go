package rwf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntRoundTrip(t *testing.T) {
	for _, x := range []int64{0, -1, 127, 128, -129, math.MaxInt64, math.MinInt64} {
		out := &Int{}
		require.NoError(t, out.Decode(newDecoder(t, encodeValue(t, NewInt(x)))))
		assert.Equal(t, x, out.Value())
	}
	assert.Equal(t, []byte{0x00, 0x80}, encodeValue(t, NewInt(128)))
	assert.Equal(t, []byte{0xFF}, encodeValue(t, NewInt(-1)))
}

func TestUIntRoundTrip(t *testing.T) {
	for _, x := range []uint64{0, 255, 256, math.MaxUint64} {
		out := &UInt{}
		require.NoError(t, out.Decode(newDecoder(t, encodeValue(t, NewUInt(x)))))
		assert.Equal(t, x, out.Value())
	}
}

func TestFloatingRoundTrip(t *testing.T) {
	f := &Float{}
	require.NoError(t, f.Decode(newDecoder(t, encodeValue(t, NewFloat(1.5)))))
	assert.Equal(t, float32(1.5), f.Value())

	d := &Double{}
	require.NoError(t, d.Decode(newDecoder(t, encodeValue(t, NewDouble(-2.25)))))
	assert.Equal(t, -2.25, d.Value())
}

func TestEncodeBlankValueIsRejected(t *testing.T) {
	it := newEncoder(t, 16)
	for _, v := range []Primitive{&Int{}, &UInt{}, &Real{}, &Enum{}, &Qos{}, &State{}} {
		v.Blank()
		requireCode(t, InvalidArgument, v.Encode(it))
	}
	assert.Equal(t, 0, it.Len())
}

func TestDecodeEmptyPayloadIsBlank(t *testing.T) {
	for _, v := range []Primitive{&Int{}, &UInt{}, &Float{}, &Double{}, &Real{}, &Date{}, &Time{}, &Enum{}, &Qos{}, &State{}} {
		err := v.Decode(newDecoder(t, []byte{}))
		assert.ErrorIs(t, err, BlankData, "%s", v.DataType())
		assert.True(t, v.IsBlank(), "%s", v.DataType())
	}
}

func TestRealBlankAndSpecialForms(t *testing.T) {
	out := &Real{}
	assert.ErrorIs(t, out.Decode(newDecoder(t, []byte{0x20})), BlankData)
	assert.True(t, out.IsBlank())

	inf := NewReal(0, RealInfinity)
	assert.Equal(t, []byte{33}, encodeValue(t, inf))
	require.NoError(t, out.Decode(newDecoder(t, encodeValue(t, inf))))
	assert.True(t, math.IsInf(out.Float64(), 1))
}

func TestRealDecodeMalformedHints(t *testing.T) {
	out := &Real{}
	assert.ErrorIs(t, DecodeValue(out, []byte{0x25, 0x07}), BlankData)
	assert.True(t, out.IsBlank())
	assert.Equal(t, int64(0), out.Value())

	requireCode(t, Failure, DecodeValue(&Real{}, []byte{0x1F, 0x07}))

	require.NoError(t, DecodeValue(out, []byte{0x1E, 0x07}))
	assert.Equal(t, RealFraction256, out.Hint())
	assert.Equal(t, int64(7), out.Value())
}

func TestRealConversions(t *testing.T) {
	r := NewReal(12345, RealExponentNeg2)
	assert.Equal(t, "123.45", r.String())
	assert.InDelta(t, 123.45, r.Float64(), 1e-9)

	require.NoError(t, r.SetFloat64(2.5, RealExponent0))
	assert.Equal(t, int64(3), r.Value())
	require.NoError(t, r.SetFloat64(-2.5, RealExponent0))
	assert.Equal(t, int64(-3), r.Value())

	frac := NewReal(11, RealFraction4)
	assert.Equal(t, "2 3/4", frac.String())
	assert.Equal(t, 2.75, frac.Float64())

	parsed := &Real{}
	require.NoError(t, parsed.SetString("-0.05"))
	assert.Equal(t, int64(-5), parsed.Value())
	assert.Equal(t, RealExponentNeg2, parsed.Hint())
	require.NoError(t, parsed.SetString(""))
	assert.True(t, parsed.IsBlank())

	assert.Error(t, r.Set(1, RealHint(31)))
}

func TestRealRoundTrip(t *testing.T) {
	in := NewReal(-987654321, RealExponentNeg4)
	out := &Real{}
	require.NoError(t, out.Decode(newDecoder(t, encodeValue(t, in))))
	assert.True(t, in.Equal(out))
}

func TestDateLeapYears(t *testing.T) {
	var d Date
	requireCode(t, InvalidArgument, d.Set(2023, 2, 29))
	assert.True(t, d.IsBlank(), "receiver must be unchanged on error")
	require.NoError(t, d.Set(2024, 2, 29))
	assert.Equal(t, "2024-02-29", d.String())
	assert.Equal(t, "29 FEB 2024", d.Format(FormatRSSL))

	out := &Date{}
	require.NoError(t, out.Decode(newDecoder(t, encodeValue(t, &d))))
	assert.True(t, d.Equal(out))
}

func TestBlankDateEncodesAsZeroFields(t *testing.T) {
	p := encodeValue(t, &Date{})
	assert.Equal(t, []byte{0, 0, 0, 0}, p)
	out := NewDate(2000, 1, 1)
	require.NoError(t, out.Decode(newDecoder(t, p)))
	assert.True(t, out.IsBlank())
}

func TestDateDecodeWrongLengthIsIncomplete(t *testing.T) {
	requireCode(t, IncompleteData, (&Date{}).Decode(newDecoder(t, []byte{1, 2, 3})))
}

func TestTimeFormatsAndRoundTrip(t *testing.T) {
	tm := NewTime(13, 5, 7, 250, 0, 0)
	assert.Equal(t, "13:05:07.25", tm.String())
	assert.Equal(t, "13:05:07:250:000:000", tm.Format(FormatRSSL))

	p := encodeValue(t, tm)
	assert.Len(t, p, 5)
	out := &Time{}
	require.NoError(t, out.Decode(newDecoder(t, p)))
	assert.True(t, tm.Equal(out))

	nanos := NewTime(1, 2, 3, 4, 5, 999)
	require.NoError(t, out.Decode(newDecoder(t, encodeValue(t, nanos))))
	assert.True(t, nanos.Equal(out))

	requireCode(t, InvalidArgument, NewTime(24, 0, 0, 0, 0, 0).Encode(newEncoder(t, 8)))
}

func TestDateTimeRoundTrip(t *testing.T) {
	in := NewDateTime(*NewDate(2024, 1, 2), *NewTime(10, 11, 12, 0, 0, 0))
	p := encodeValue(t, in)
	assert.Len(t, p, 7)
	out := &DateTime{}
	require.NoError(t, out.Decode(newDecoder(t, p)))
	assert.True(t, in.Equal(out))
	assert.Equal(t, "2024-01-02T10:11:12", out.String())
}

func TestEnumWidths(t *testing.T) {
	assert.Equal(t, []byte{5}, encodeValue(t, NewEnum(5)))
	assert.Equal(t, []byte{0x01, 0x2C}, encodeValue(t, NewEnum(300)))
	out := &Enum{}
	require.NoError(t, out.Decode(newDecoder(t, []byte{0x01, 0x2C})))
	assert.Equal(t, uint16(300), out.Value())
}

func TestQosOrdering(t *testing.T) {
	best := &Qos{Timeliness: QosTimelinessRealtime, Rate: QosRateTickByTick}
	delayed := &Qos{Timeliness: QosTimelinessDelayed, TimeInfo: 5, Rate: QosRateJITConflated}
	worst := &Qos{Timeliness: QosTimelinessDelayedUnknown, Rate: QosRateTimeConflated, RateInfo: 1000}

	assert.True(t, best.IsBetter(delayed))
	assert.False(t, delayed.IsBetter(best))
	assert.False(t, best.IsBetter(best))
	assert.True(t, delayed.IsInRange(best, worst))
	assert.False(t, best.IsInRange(delayed, worst))
	assert.Equal(t, "Delayed/5:JITConflated:Static", delayed.String())
}

func TestQosWire(t *testing.T) {
	q := &Qos{Timeliness: QosTimelinessRealtime, Rate: QosRateTickByTick}
	assert.Equal(t, []byte{0x22}, encodeValue(t, q))

	in := &Qos{Timeliness: QosTimelinessDelayed, TimeInfo: 15, Rate: QosRateTimeConflated, RateInfo: 500, Dynamic: true}
	out := &Qos{}
	require.NoError(t, out.Decode(newDecoder(t, encodeValue(t, in))))
	assert.True(t, in.Equal(out))

	requireCode(t, InvalidArgument, (&Qos{Rate: QosRateTickByTick}).Encode(newEncoder(t, 8)))
}

func TestStateRoundTrip(t *testing.T) {
	in := &State{Stream: StreamStateOpen, Data: DataStateOk, Code: StateCodeNone, Text: []byte("All is well")}
	out := &State{}
	require.NoError(t, out.Decode(newDecoder(t, encodeValue(t, in))))
	assert.True(t, in.Equal(out))
	assert.Equal(t, "Open/Ok/0: All is well", out.String())

	requireCode(t, InvalidArgument, (&State{Data: DataStateOk}).Encode(newEncoder(t, 8)))
}

func TestBufferKinds(t *testing.T) {
	out := NewASCII("")
	require.NoError(t, out.Decode(newDecoder(t, encodeValue(t, NewASCII("hello")))))
	assert.Equal(t, "hello", out.String())
	assert.Equal(t, DataTypeASCIIString, out.DataType())

	requireCode(t, InvalidArgument, out.SetKind(DataTypeInt))
}

func TestSetStringEmptyIsBlank(t *testing.T) {
	for _, v := range []Primitive{NewInt(1), NewUInt(1), NewReal(1, RealExponent0), NewDate(2020, 1, 1), NewEnum(1)} {
		require.NoError(t, v.SetString(""))
		assert.True(t, v.IsBlank(), "%s", v.DataType())
	}
}

func TestCopy(t *testing.T) {
	src, dst := NewInt(42), &Int{}
	require.NoError(t, src.Copy(dst))
	assert.True(t, src.Equal(dst))
	requireCode(t, InvalidArgument, src.Copy(nil))
}

func TestNewPrimitive(t *testing.T) {
	v, err := NewPrimitive(DataTypeInt2)
	require.NoError(t, err)
	assert.Equal(t, DataTypeInt, v.DataType())
	_, err = NewPrimitive(DataTypeMap)
	requireCode(t, InvalidArgument, err)
}
