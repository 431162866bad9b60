package rwf

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/danmuck/rwfcodec/internal/rwf/wire"
)

// DateTimeFormat selects how dates and times render as text.
type DateTimeFormat uint8

const (
	// FormatISO8601 is YYYY-MM-DD and HH:MM:SS.nnnnnnnnn.
	FormatISO8601 DateTimeFormat = iota
	// FormatRSSL is "DD MON YYYY" and HH:MM:SS:mmm:uuu:nnn.
	FormatRSSL
)

var monthNames = [12]string{"JAN", "FEB", "MAR", "APR", "MAY", "JUN", "JUL", "AUG", "SEP", "OCT", "NOV", "DEC"}

// Date is a calendar date. Zero in any field means that field is unset;
// all three zero is the blank date.
type Date struct {
	Day   uint8
	Month uint8
	Year  uint16
}

func NewDate(year uint16, month, day uint8) *Date {
	return &Date{Day: day, Month: month, Year: year}
}

func (v *Date) DataType() DataType { return DataTypeDate }
func (v *Date) IsBlank() bool      { return v.Day == 0 && v.Month == 0 && v.Year == 0 }
func (v *Date) Clear()             { *v = Date{} }
func (v *Date) Blank()             { *v = Date{} }

func (v *Date) Equal(o *Date) bool { return *v == *o }

// Set assigns all three fields, rejecting a day that does not fit the
// month. The receiver is unchanged on error.
func (v *Date) Set(year uint16, month, day uint8) error {
	d := Date{Day: day, Month: month, Year: year}
	if !d.IsValid() {
		return errorf(InvalidArgument, "set DATE", "%04d-%02d-%02d is not a valid date", year, month, day)
	}
	*v = d
	return nil
}

func isLeapYear(year uint16) bool {
	return (year%4 == 0 && year%100 != 0) || year%400 == 0
}

// IsValid accepts the blank date and partially unset dates, so long as
// the day fits the month.
func (v *Date) IsValid() bool {
	if v.IsBlank() {
		return true
	}
	switch v.Month {
	case 0, 1, 3, 5, 7, 8, 10, 12:
		return v.Day <= 31
	case 4, 6, 9, 11:
		return v.Day <= 30
	case 2:
		if v.Day == 29 {
			return isLeapYear(v.Year)
		}
		return v.Day <= 28
	}
	return false
}

// Copy writes v into dst.
func (v *Date) Copy(dst *Date) error {
	if dst == nil {
		return errorf(InvalidArgument, "copy DATE", "nil destination")
	}
	*dst = *v
	return nil
}

func (v *Date) Encode(it *EncodeIterator) error { return encodePrimitive(it, v) }

func (v *Date) Decode(it *DecodeIterator) error { return decodePrimitive(it, v) }

func (v *Date) encodedSize() int { return 4 }

func (v *Date) put(dst []byte) (int, error) {
	if len(dst) < 4 {
		return 0, wire.ErrShortBuffer
	}
	dst[0] = v.Day
	dst[1] = v.Month
	binary.BigEndian.PutUint16(dst[2:], v.Year)
	return 4, nil
}

func (v *Date) decodeBytes(p []byte) error {
	switch len(p) {
	case 0:
		v.Blank()
		return BlankData
	case 4:
		v.Day, v.Month, v.Year = p[0], p[1], binary.BigEndian.Uint16(p[2:])
		return nil
	}
	return errorf(IncompleteData, "decode DATE", "payload is %d bytes, want 4", len(p))
}

// Time converts to midnight UTC. Unset fields fall back to 1.
func (v *Date) Time() time.Time {
	month, day := int(v.Month), int(v.Day)
	if month == 0 {
		month = 1
	}
	if day == 0 {
		day = 1
	}
	return time.Date(int(v.Year), time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func (v *Date) SetTime(t time.Time) {
	v.Year, v.Month, v.Day = uint16(t.Year()), uint8(t.Month()), uint8(t.Day())
}

func (v *Date) String() string { return v.Format(FormatISO8601) }

func (v *Date) Format(f DateTimeFormat) string {
	if v.IsBlank() {
		return ""
	}
	if !v.IsValid() {
		return "Invalid date"
	}
	if f == FormatRSSL {
		return formatDateRSSL(v)
	}
	return formatDateISO(v)
}

// formatDateISO trims trailing unset parts: 2003-06, 2003.
func formatDateISO(v *Date) string {
	var b strings.Builder
	if v.Year != 0 {
		fmt.Fprintf(&b, "%04d-", v.Year)
	} else {
		b.WriteString("--")
	}
	if v.Month != 0 {
		fmt.Fprintf(&b, "%02d-", v.Month)
	} else {
		b.WriteString("  -")
	}
	if v.Day != 0 {
		fmt.Fprintf(&b, "%02d", v.Day)
	}
	return strings.TrimRightFunc(b.String(), func(r rune) bool { return r < '0' || r > '9' })
}

// formatDateRSSL leaves unset parts as blanks of the same width.
func formatDateRSSL(v *Date) string {
	var b strings.Builder
	if v.Day != 0 {
		fmt.Fprintf(&b, "%02d ", v.Day)
	} else {
		b.WriteString("   ")
	}
	if v.Month != 0 {
		b.WriteString(monthNames[v.Month-1])
		b.WriteByte(' ')
	} else {
		b.WriteString("    ")
	}
	if v.Year != 0 {
		fmt.Fprintf(&b, "%4d", v.Year)
	} else {
		b.WriteString("    ")
	}
	return b.String()
}

// SetString accepts YYYY, YYYY-MM, YYYY-MM-DD, "DD MON YYYY" and
// MM/DD/YYYY.
func (v *Date) SetString(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		v.Blank()
		return nil
	}
	var d Date
	var err error
	switch {
	case strings.Contains(s, "/"):
		d, err = parseDateSlash(s)
	case strings.ContainsAny(s, " \t"):
		d, err = parseDateRSSL(s)
	default:
		d, err = parseDateISO(s)
	}
	if err != nil {
		return errorf(InvalidArgument, "parse DATE", "%q: %v", s, err)
	}
	if !d.IsValid() {
		return errorf(InvalidArgument, "parse DATE", "%q is not a valid date", s)
	}
	*v = d
	return nil
}

func parseDateISO(s string) (Date, error) {
	parts := strings.Split(s, "-")
	if len(parts) > 3 || len(parts[0]) != 4 {
		return Date{}, fmt.Errorf("want YYYY[-MM[-DD]]")
	}
	nums, err := atoiAll(parts)
	if err != nil {
		return Date{}, err
	}
	nums = append(nums, 0, 0)
	return dateOf(nums[0], nums[1], nums[2])
}

func parseDateRSSL(s string) (Date, error) {
	fields := strings.Fields(s)
	if len(fields) != 3 {
		return Date{}, fmt.Errorf("want DD MON YYYY")
	}
	month := 0
	for i, name := range monthNames {
		if strings.EqualFold(fields[1], name) {
			month = i + 1
		}
	}
	if month == 0 {
		return Date{}, fmt.Errorf("unknown month %q", fields[1])
	}
	nums, err := atoiAll([]string{fields[0], fields[2]})
	if err != nil {
		return Date{}, err
	}
	return dateOf(nums[1], month, nums[0])
}

func parseDateSlash(s string) (Date, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return Date{}, fmt.Errorf("want MM/DD/YYYY")
	}
	nums, err := atoiAll(parts)
	if err != nil {
		return Date{}, err
	}
	return dateOf(nums[2], nums[0], nums[1])
}

func dateOf(year, month, day int) (Date, error) {
	if month > 12 || day > 31 {
		return Date{}, fmt.Errorf("month %d or day %d out of range", month, day)
	}
	return Date{Day: uint8(day), Month: uint8(month), Year: uint16(year)}, nil
}

func atoiAll(parts []string) ([]int, error) {
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > 0xFFFF {
			return nil, fmt.Errorf("bad number %q", p)
		}
		out[i] = n
	}
	return out, nil
}
