package rwf

import (
	"strings"
	"time"

	"github.com/danmuck/rwfcodec/internal/rwf/wire"
)

// DateTime pairs a Date with a Time. It is blank when both halves are.
type DateTime struct {
	Date Date
	Time Time
}

func NewDateTime(d Date, t Time) *DateTime { return &DateTime{Date: d, Time: t} }

func (v *DateTime) DataType() DataType { return DataTypeDateTime }
func (v *DateTime) IsBlank() bool      { return v.Date.IsBlank() && v.Time.IsBlank() }

func (v *DateTime) Clear() {
	v.Date.Clear()
	v.Time.Clear()
}

func (v *DateTime) Blank() {
	v.Date.Blank()
	v.Time.Blank()
}

func (v *DateTime) Equal(o *DateTime) bool { return *v == *o }

func (v *DateTime) IsValid() bool { return v.Date.IsValid() && v.Time.IsValid() }

// Copy writes v into dst.
func (v *DateTime) Copy(dst *DateTime) error {
	if dst == nil {
		return errorf(InvalidArgument, "copy DATETIME", "nil destination")
	}
	*dst = *v
	return nil
}

func (v *DateTime) Encode(it *EncodeIterator) error { return encodePrimitive(it, v) }

func (v *DateTime) Decode(it *DecodeIterator) error { return decodePrimitive(it, v) }

func (v *DateTime) encodedSize() int { return 4 + v.Time.encodedSize() }

func (v *DateTime) put(dst []byte) (int, error) {
	return putDateTimeN(dst, v, v.encodedSize())
}

func putDateTimeN(dst []byte, v *DateTime, n int) (int, error) {
	if len(dst) < n {
		return 0, wire.ErrShortBuffer
	}
	if _, err := v.Date.put(dst); err != nil {
		return 0, err
	}
	if _, err := putTimeN(dst[4:], &v.Time, n-4); err != nil {
		return 0, err
	}
	return n, nil
}

func (v *DateTime) decodeBytes(p []byte) error {
	if len(p) == 0 {
		v.Blank()
		return BlankData
	}
	if len(p) < 6 || !readTime(p[4:], &v.Time) {
		return errorf(IncompleteData, "decode DATETIME", "payload is %d bytes, want 6, 7, 9, 11 or 12", len(p))
	}
	return v.Date.decodeBytes(p[:4])
}

// ToTime converts to a UTC instant. Blank time fields count as zero.
func (v *DateTime) ToTime() time.Time {
	return v.Date.Time().Add(v.Time.Duration())
}

// SetTime copies the calendar and wall-clock fields of t.
func (v *DateTime) SetTime(t time.Time) {
	v.Date.SetTime(t)
	v.Time.SetTime(t)
}

func (v *DateTime) String() string { return v.Format(FormatISO8601) }

// Format renders ISO8601 as DATE'T'TIME and RSSL as "DATE TIME". A blank
// half is left out.
func (v *DateTime) Format(f DateTimeFormat) string {
	if v.IsBlank() {
		return ""
	}
	var b strings.Builder
	if !v.Date.IsBlank() {
		b.WriteString(v.Date.Format(f))
	}
	if v.Time.IsBlank() {
		return b.String()
	}
	if f == FormatRSSL {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
	} else {
		b.WriteByte('T')
	}
	b.WriteString(v.Time.Format(f))
	return b.String()
}

// SetString accepts DATE'T'TIME and "DD MON YYYY HH:MM:SS...". A string
// without a time leaves the time zero.
func (v *DateTime) SetString(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		v.Blank()
		return nil
	}
	var dateStr, timeStr string
	if i := strings.IndexByte(s, 'T'); i >= 0 && !strings.ContainsAny(s, " \t") {
		dateStr, timeStr = s[:i], s[i+1:]
		if timeStr == "" {
			return errorf(InvalidArgument, "parse DATETIME", "%q has no time after T", s)
		}
	} else {
		fields := strings.Fields(s)
		if n := len(fields); n > 1 && strings.Contains(fields[n-1], ":") {
			dateStr, timeStr = strings.Join(fields[:n-1], " "), fields[n-1]
		} else {
			dateStr = s
		}
	}
	var dt DateTime
	if dateStr != "" {
		if err := dt.Date.SetString(dateStr); err != nil {
			return err
		}
	}
	if timeStr != "" {
		if err := dt.Time.SetString(timeStr); err != nil {
			return err
		}
	}
	*v = dt
	return nil
}
