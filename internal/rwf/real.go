package rwf

import (
	"math"
	"strconv"
	"strings"

	"github.com/danmuck/rwfcodec/internal/rwf/wire"
)

// RealHint scales a Real mantissa: a power of ten for the exponent hints,
// a power-of-two denominator for the fraction hints.
type RealHint uint8

const (
	RealExponentNeg14 RealHint = iota
	RealExponentNeg13
	RealExponentNeg12
	RealExponentNeg11
	RealExponentNeg10
	RealExponentNeg9
	RealExponentNeg8
	RealExponentNeg7
	RealExponentNeg6
	RealExponentNeg5
	RealExponentNeg4
	RealExponentNeg3
	RealExponentNeg2
	RealExponentNeg1
	RealExponent0
	RealExponent1
	RealExponent2
	RealExponent3
	RealExponent4
	RealExponent5
	RealExponent6
	RealExponent7
	RealFraction1
	RealFraction2
	RealFraction4
	RealFraction8
	RealFraction16
	RealFraction32
	RealFraction64
	RealFraction128
	RealFraction256
)

const realBlankHint = 32

const (
	RealInfinity    RealHint = 33
	RealNegInfinity RealHint = 34
	RealNotANumber  RealHint = 35
)

func (h RealHint) isExponent() bool { return h <= RealExponent7 }
func (h RealHint) isFraction() bool { return h >= RealFraction1 && h <= RealFraction256 }
func (h RealHint) isSpecial() bool  { return h >= RealInfinity && h <= RealNotANumber }

func (h RealHint) valid() bool { return h <= RealFraction256 || h.isSpecial() }

// denominator is 2^(h-RealFraction1) for fraction hints.
func (h RealHint) denominator() int64 { return int64(1) << (h - RealFraction1) }

var pow10 = func() [22]float64 {
	var p [22]float64
	p[0] = 1
	for i := 1; i < len(p); i++ {
		p[i] = p[i-1] * 10
	}
	return p
}()

// Real is a scaled fixed-point decimal: a signed mantissa and a hint.
type Real struct {
	value int64
	hint  RealHint
	blank bool
}

func NewReal(value int64, hint RealHint) *Real { return &Real{value: value, hint: hint} }

func (v *Real) Value() int64       { return v.value }
func (v *Real) Hint() RealHint     { return v.hint }
func (v *Real) DataType() DataType { return DataTypeReal }
func (v *Real) IsBlank() bool      { return v.blank }
func (v *Real) Clear()             { v.value, v.hint, v.blank = 0, 0, false }
func (v *Real) Blank()             { v.value, v.hint, v.blank = 0, 0, true }

// Set assigns a mantissa and hint. Special hints ignore the mantissa.
func (v *Real) Set(value int64, hint RealHint) error {
	if !hint.valid() {
		return errorf(InvalidArgument, "set REAL", "hint %d out of range", hint)
	}
	if hint.isSpecial() {
		value = 0
	}
	v.value, v.hint, v.blank = value, hint, false
	return nil
}

func (v *Real) Equal(o *Real) bool {
	if v.blank || o.blank {
		return v.blank == o.blank
	}
	return v.value == o.value && v.hint == o.hint
}

// Float64 converts to a double: value·10^(hint−14) or value/2^(hint−22).
func (v *Real) Float64() float64 {
	switch {
	case v.blank:
		return 0
	case v.hint == RealInfinity:
		return math.Inf(1)
	case v.hint == RealNegInfinity:
		return math.Inf(-1)
	case v.hint == RealNotANumber:
		return math.NaN()
	case v.hint.isFraction():
		return float64(v.value) / float64(v.hint.denominator())
	case v.hint < RealExponent0:
		return float64(v.value) / pow10[RealExponent0-v.hint]
	default:
		return float64(v.value) * pow10[v.hint-RealExponent0]
	}
}

// SetFloat64 scales f by the hint and rounds half away from zero.
func (v *Real) SetFloat64(f float64, hint RealHint) error {
	switch {
	case math.IsNaN(f):
		return v.Set(0, RealNotANumber)
	case math.IsInf(f, 1):
		return v.Set(0, RealInfinity)
	case math.IsInf(f, -1):
		return v.Set(0, RealNegInfinity)
	}
	if !hint.isExponent() && !hint.isFraction() {
		return errorf(InvalidArgument, "set REAL", "hint %d cannot scale a finite value", hint)
	}
	var scaled float64
	switch {
	case hint.isFraction():
		scaled = f * float64(hint.denominator())
	case hint < RealExponent0:
		scaled = f * pow10[RealExponent0-hint]
	default:
		scaled = f / pow10[hint-RealExponent0]
	}
	scaled = math.Round(scaled)
	if scaled >= 0x1p63 || scaled < -0x1p63 {
		return errorf(InvalidArgument, "set REAL", "%g does not fit with hint %d", f, hint)
	}
	return v.Set(int64(scaled), hint)
}

// SetFloat32 is SetFloat64 for single-precision input.
func (v *Real) SetFloat32(f float32, hint RealHint) error {
	return v.SetFloat64(float64(f), hint)
}

// Copy writes v into dst.
func (v *Real) Copy(dst *Real) error {
	if dst == nil {
		return errorf(InvalidArgument, "copy REAL", "nil destination")
	}
	*dst = *v
	return nil
}

func (v *Real) Encode(it *EncodeIterator) error { return encodePrimitive(it, v) }
func (v *Real) Decode(it *DecodeIterator) error { return decodePrimitive(it, v) }

func (v *Real) encodedSize() int {
	if v.hint.isSpecial() {
		return 1
	}
	return 1 + wire.Long64lsLen(v.value)
}

func (v *Real) put(dst []byte) (int, error) {
	if !v.hint.valid() {
		return 0, wire.ErrOutOfRange
	}
	if len(dst) < 1 {
		return 0, wire.ErrShortBuffer
	}
	dst[0] = byte(v.hint)
	if v.hint.isSpecial() {
		return 1, nil
	}
	n, err := wire.PutLong64ls(dst[1:], v.value)
	if err != nil {
		return 0, err
	}
	return 1 + n, nil
}

func (v *Real) decodeBytes(p []byte) error {
	if len(p) == 0 {
		v.Blank()
		return BlankData
	}
	if h := RealHint(p[0] & 0x3F); h.isSpecial() {
		v.value, v.hint, v.blank = 0, h, false
		return nil
	}
	// Any other hint with the blank bit set is blank, whatever follows.
	if p[0]&realBlankHint != 0 || len(p) == 1 {
		v.Blank()
		return BlankData
	}
	h := RealHint(p[0] & 0x1F)
	if !h.valid() {
		return errorf(Failure, "decode REAL", "hint %d out of range", h)
	}
	x, err := wire.Long64ls(p[1:], len(p)-1)
	if err != nil {
		return fromWire("decode REAL", err)
	}
	v.value, v.hint, v.blank = x, h, false
	return nil
}

// String renders exponent hints as a plain decimal and fraction hints as
// "whole num/den".
func (v *Real) String() string {
	switch {
	case v.blank:
		return ""
	case v.hint == RealInfinity:
		return "Inf"
	case v.hint == RealNegInfinity:
		return "-Inf"
	case v.hint == RealNotANumber:
		return "NaN"
	case v.hint.isFraction():
		return formatFraction(v.value, v.hint.denominator())
	}
	return formatDecimal(v.value, int(v.hint)-int(RealExponent0))
}

func formatDecimal(value int64, exp int) string {
	neg := value < 0
	digits := strconv.FormatUint(absU64(value), 10)
	switch {
	case exp > 0:
		digits += strings.Repeat("0", exp)
	case exp < 0:
		places := -exp
		if len(digits) <= places {
			digits = strings.Repeat("0", places-len(digits)+1) + digits
		}
		digits = digits[:len(digits)-places] + "." + digits[len(digits)-places:]
	}
	if neg {
		return "-" + digits
	}
	return digits
}

func formatFraction(value, den int64) string {
	neg := value < 0
	u := absU64(value)
	whole, num := u/uint64(den), u%uint64(den)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString(strconv.FormatUint(whole, 10))
	if num != 0 {
		b.WriteByte(' ')
		b.WriteString(strconv.FormatUint(num, 10))
		b.WriteByte('/')
		b.WriteString(strconv.FormatInt(den, 10))
	}
	return b.String()
}

func absU64(x int64) uint64 {
	if x < 0 {
		return uint64(-(x + 1)) + 1
	}
	return uint64(x)
}

// SetString parses the forms String produces. A decimal point selects the
// matching negative exponent hint.
func (v *Real) SetString(s string) error {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		v.Blank()
		return nil
	case "Inf", "+Inf":
		return v.Set(0, RealInfinity)
	case "-Inf":
		return v.Set(0, RealNegInfinity)
	case "NaN":
		return v.Set(0, RealNotANumber)
	}
	if whole, frac, ok := strings.Cut(s, " "); ok {
		return v.setFraction(s, whole, strings.TrimSpace(frac))
	}
	if strings.Contains(s, "/") {
		return v.setFraction(s, "0", s)
	}
	intPart, fracPart, _ := strings.Cut(s, ".")
	if len(fracPart) > int(RealExponent0) {
		return errorf(InvalidArgument, "parse REAL", "%q has more than 14 decimal places", s)
	}
	x, err := strconv.ParseInt(intPart+fracPart, 10, 64)
	if err != nil {
		return errorf(InvalidArgument, "parse REAL", "%q: %v", s, err)
	}
	return v.Set(x, RealExponent0-RealHint(len(fracPart)))
}

func (v *Real) setFraction(s, whole, frac string) error {
	numStr, denStr, ok := strings.Cut(frac, "/")
	if !ok {
		return errorf(InvalidArgument, "parse REAL", "%q is not a fraction", s)
	}
	w, err1 := strconv.ParseInt(whole, 10, 64)
	num, err2 := strconv.ParseInt(numStr, 10, 64)
	den, err3 := strconv.ParseInt(denStr, 10, 64)
	if err1 != nil || err2 != nil || err3 != nil || num < 0 || den <= 0 {
		return errorf(InvalidArgument, "parse REAL", "%q is not a fraction", s)
	}
	hint := RealFraction1
	for ; hint <= RealFraction256; hint++ {
		if hint.denominator() == den {
			break
		}
	}
	if hint > RealFraction256 {
		return errorf(InvalidArgument, "parse REAL", "denominator %d is not a power of two up to 256", den)
	}
	neg := strings.HasPrefix(whole, "-")
	if neg {
		w = -w
	}
	value := w*den + num
	if neg {
		value = -value
	}
	return v.Set(value, hint)
}
