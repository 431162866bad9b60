package rwf

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/danmuck/rwfcodec/internal/rwf/wire"
)

// Blank sentinels for Time fields.
const (
	BlankHour   = 255
	BlankMinute = 255
	BlankSecond = 255
	BlankMilli  = 65535
	BlankMicro  = 2047
	BlankNano   = 2047
)

// Time is a time of day down to the nanosecond. Each field has its own
// blank sentinel; the time is blank when every field holds it.
type Time struct {
	Hour        uint8
	Minute      uint8
	Second      uint8
	Millisecond uint16
	Microsecond uint16
	Nanosecond  uint16
}

func NewTime(hour, minute, second uint8, milli, micro, nano uint16) *Time {
	return &Time{Hour: hour, Minute: minute, Second: second, Millisecond: milli, Microsecond: micro, Nanosecond: nano}
}

var blankTime = Time{BlankHour, BlankMinute, BlankSecond, BlankMilli, BlankMicro, BlankNano}

func (v *Time) DataType() DataType { return DataTypeTime }
func (v *Time) IsBlank() bool      { return *v == blankTime }
func (v *Time) Clear()             { *v = Time{} }
func (v *Time) Blank()             { *v = blankTime }

func (v *Time) Equal(o *Time) bool { return *v == *o }

// Set assigns every field. Blank sentinels are accepted per field; the
// receiver is unchanged when the result is not a valid time.
func (v *Time) Set(hour, minute, second uint8, milli, micro, nano uint16) error {
	t := Time{hour, minute, second, milli, micro, nano}
	if !t.IsValid() {
		return errorf(InvalidArgument, "set TIME", "%s is not a valid time", t.Format(FormatRSSL))
	}
	*v = t
	return nil
}

// IsValid checks field ranges and that a set field never follows a blank
// one of coarser precision.
func (v *Time) IsValid() bool {
	if v.IsBlank() {
		return true
	}
	if v.Hour != BlankHour && v.Hour > 23 {
		return false
	}
	if v.Minute != BlankMinute && v.Minute > 59 {
		return false
	}
	if v.Second != BlankSecond && v.Second > 60 {
		return false
	}
	if v.Millisecond != BlankMilli && v.Millisecond > 999 {
		return false
	}
	if v.Microsecond != BlankMicro && v.Microsecond > 999 {
		return false
	}
	if v.Nanosecond != BlankNano && v.Nanosecond > 999 {
		return false
	}

	hourBlank := v.Hour == BlankHour
	minBlank := v.Minute == BlankMinute
	secBlank := v.Second == BlankSecond
	msBlank := v.Millisecond == BlankMilli
	usBlank := v.Microsecond == BlankMicro
	switch {
	case v.Nanosecond != BlankNano:
		return !(hourBlank || minBlank || secBlank || msBlank || usBlank)
	case !usBlank:
		return !(hourBlank || minBlank || secBlank || msBlank)
	case !msBlank:
		return !(hourBlank || minBlank || secBlank)
	case !secBlank:
		return !(hourBlank || minBlank)
	case !minBlank:
		return !hourBlank
	}
	return true
}

// Copy writes v into dst.
func (v *Time) Copy(dst *Time) error {
	if dst == nil {
		return errorf(InvalidArgument, "copy TIME", "nil destination")
	}
	*dst = *v
	return nil
}

func (v *Time) Encode(it *EncodeIterator) error { return encodePrimitive(it, v) }

func (v *Time) Decode(it *DecodeIterator) error { return decodePrimitive(it, v) }

// encodedSize picks the narrowest width that carries every non-zero field.
func (v *Time) encodedSize() int {
	switch {
	case v.Nanosecond != 0:
		return 8
	case v.Microsecond != 0:
		return 7
	case v.Millisecond != 0:
		return 5
	case v.Second != 0:
		return 3
	}
	return 2
}

func (v *Time) put(dst []byte) (int, error) {
	return putTimeN(dst, v, v.encodedSize())
}

// putTimeN writes t in exactly n bytes (2, 3, 5, 7 or 8). The 8-byte form
// folds the top three nanosecond bits into the microsecond word.
func putTimeN(dst []byte, t *Time, n int) (int, error) {
	if len(dst) < n {
		return 0, wire.ErrShortBuffer
	}
	dst[0] = t.Hour
	dst[1] = t.Minute
	switch n {
	case 2:
	case 3:
		dst[2] = t.Second
	case 5:
		dst[2] = t.Second
		binary.BigEndian.PutUint16(dst[3:], t.Millisecond)
	case 7:
		dst[2] = t.Second
		binary.BigEndian.PutUint16(dst[3:], t.Millisecond)
		binary.BigEndian.PutUint16(dst[5:], t.Microsecond)
	case 8:
		dst[2] = t.Second
		binary.BigEndian.PutUint16(dst[3:], t.Millisecond)
		binary.BigEndian.PutUint16(dst[5:], (t.Nanosecond&0xFF00)<<3|t.Microsecond)
		dst[7] = byte(t.Nanosecond)
	default:
		return 0, wire.ErrInvalidSize
	}
	return n, nil
}

// readTime fills t from a 2, 3, 5, 7 or 8 byte payload. Fields the width
// omits become zero, or blank when the hour is blank.
func readTime(p []byte, t *Time) bool {
	fill := Time{}
	if len(p) >= 1 && p[0] == BlankHour {
		fill = blankTime
	}
	switch len(p) {
	case 2:
		*t = Time{Hour: p[0], Minute: p[1], Second: fill.Second, Millisecond: fill.Millisecond, Microsecond: fill.Microsecond, Nanosecond: fill.Nanosecond}
	case 3:
		*t = Time{Hour: p[0], Minute: p[1], Second: p[2], Millisecond: fill.Millisecond, Microsecond: fill.Microsecond, Nanosecond: fill.Nanosecond}
	case 5:
		*t = Time{Hour: p[0], Minute: p[1], Second: p[2], Millisecond: binary.BigEndian.Uint16(p[3:]), Microsecond: fill.Microsecond, Nanosecond: fill.Nanosecond}
	case 7:
		*t = Time{Hour: p[0], Minute: p[1], Second: p[2], Millisecond: binary.BigEndian.Uint16(p[3:]), Microsecond: binary.BigEndian.Uint16(p[5:]), Nanosecond: fill.Nanosecond}
	case 8:
		packed := binary.BigEndian.Uint16(p[5:])
		*t = Time{
			Hour:        p[0],
			Minute:      p[1],
			Second:      p[2],
			Millisecond: binary.BigEndian.Uint16(p[3:]),
			Microsecond: packed & 0x07FF,
			Nanosecond:  (packed&0x3800)>>3 + uint16(p[7]),
		}
	default:
		return false
	}
	return true
}

func (v *Time) decodeBytes(p []byte) error {
	if len(p) == 0 {
		v.Blank()
		return BlankData
	}
	if !readTime(p, v) {
		return errorf(IncompleteData, "decode TIME", "payload is %d bytes, want 2, 3, 5, 7 or 8", len(p))
	}
	return nil
}

// Duration is the offset from midnight. Blank fields count as zero.
func (v *Time) Duration() time.Duration {
	field := func(x, blank uint16) time.Duration {
		if x == blank {
			return 0
		}
		return time.Duration(x)
	}
	return field(uint16(v.Hour), BlankHour)*time.Hour +
		field(uint16(v.Minute), BlankMinute)*time.Minute +
		field(uint16(v.Second), BlankSecond)*time.Second +
		field(v.Millisecond, BlankMilli)*time.Millisecond +
		field(v.Microsecond, BlankMicro)*time.Microsecond +
		field(v.Nanosecond, BlankNano)
}

// SetTime copies the wall-clock fields of t.
func (v *Time) SetTime(t time.Time) {
	ns := t.Nanosecond()
	*v = Time{
		Hour:        uint8(t.Hour()),
		Minute:      uint8(t.Minute()),
		Second:      uint8(t.Second()),
		Millisecond: uint16(ns / 1e6),
		Microsecond: uint16(ns / 1e3 % 1000),
		Nanosecond:  uint16(ns % 1000),
	}
}

func (v *Time) String() string { return v.Format(FormatISO8601) }

func (v *Time) Format(f DateTimeFormat) string {
	if v.IsBlank() {
		return ""
	}
	if !v.IsValid() {
		return "Invalid time"
	}
	if f == FormatRSSL {
		return formatTimeRSSL(v)
	}
	return formatTimeISO(v)
}

// formatTimeISO stops at the first blank field and trims trailing zeros
// from the fraction.
func formatTimeISO(v *Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%02d", v.Hour)
	if v.Minute == BlankMinute {
		return b.String()
	}
	fmt.Fprintf(&b, ":%02d", v.Minute)
	if v.Second == BlankSecond {
		return b.String()
	}
	fmt.Fprintf(&b, ":%02d", v.Second)
	if v.Millisecond == BlankMilli {
		return b.String()
	}
	frac := fmt.Sprintf("%03d", v.Millisecond)
	if v.Microsecond != BlankMicro {
		frac += fmt.Sprintf("%03d", v.Microsecond)
		if v.Nanosecond != BlankNano {
			frac += fmt.Sprintf("%03d", v.Nanosecond)
		}
	}
	if frac = strings.TrimRight(frac, "0"); frac != "" {
		b.WriteString("." + frac)
	}
	return b.String()
}

func formatTimeRSSL(v *Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%02d", v.Hour)
	if v.Minute == BlankMinute {
		return b.String()
	}
	fmt.Fprintf(&b, ":%02d", v.Minute)
	if v.Second == BlankSecond {
		return b.String()
	}
	fmt.Fprintf(&b, ":%02d", v.Second)
	if v.Millisecond == BlankMilli {
		return b.String()
	}
	fmt.Fprintf(&b, ":%03d", v.Millisecond)
	if v.Microsecond == BlankMicro {
		return b.String()
	}
	fmt.Fprintf(&b, ":%03d", v.Microsecond)
	if v.Nanosecond == BlankNano {
		return b.String()
	}
	fmt.Fprintf(&b, ":%03d", v.Nanosecond)
	return b.String()
}

// SetString accepts HH:MM[:SS[.fffffffff]] and HH:MM:SS:mmm[:uuu[:nnn]].
// A trailing zone designator is dropped. Omitted fields are zero.
func (v *Time) SetString(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		v.Blank()
		return nil
	}
	t, err := parseTime(s)
	if err != nil {
		return errorf(InvalidArgument, "parse TIME", "%q: %v", s, err)
	}
	if !t.IsValid() {
		return errorf(InvalidArgument, "parse TIME", "%q is not a valid time", s)
	}
	*v = t
	return nil
}

func parseTime(s string) (Time, error) {
	if i := strings.IndexAny(s, "Z+-"); i > 0 {
		s = s[:i]
	}
	var frac string
	if i := strings.IndexAny(s, ".,"); i >= 0 {
		s, frac = s[:i], s[i+1:]
	}
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 6 || (frac != "" && len(parts) != 3) {
		return Time{}, fmt.Errorf("want HH:MM[:SS[.fffffffff]]")
	}
	var t Time
	for i, p := range parts {
		want := 2
		if i >= 3 {
			want = 3
		}
		if len(p) != want {
			return Time{}, fmt.Errorf("field %q has %d digits, want %d", p, len(p), want)
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Time{}, fmt.Errorf("bad number %q", p)
		}
		switch i {
		case 0:
			t.Hour = uint8(n)
		case 1:
			t.Minute = uint8(n)
		case 2:
			t.Second = uint8(n)
		case 3:
			t.Millisecond = uint16(n)
		case 4:
			t.Microsecond = uint16(n)
		case 5:
			t.Nanosecond = uint16(n)
		}
	}
	if frac != "" {
		if len(frac) > 9 {
			return Time{}, fmt.Errorf("fraction %q finer than nanoseconds", frac)
		}
		frac += strings.Repeat("0", 9-len(frac))
		n, err := strconv.Atoi(frac)
		if err != nil || n < 0 {
			return Time{}, fmt.Errorf("bad fraction %q", frac)
		}
		t.Millisecond = uint16(n / 1e6)
		t.Microsecond = uint16(n / 1e3 % 1000)
		t.Nanosecond = uint16(n % 1000)
	}
	return t, nil
}
