package rwf

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/danmuck/rwfcodec/internal/rwf/wire"
)

type QosTimeliness uint8

const (
	QosTimelinessUnspecified QosTimeliness = iota
	QosTimelinessRealtime
	QosTimelinessDelayedUnknown
	QosTimelinessDelayed
)

var qosTimelinessNames = [...]string{"Unspecified", "Realtime", "DelayedUnknown", "Delayed"}

func (t QosTimeliness) String() string {
	if int(t) < len(qosTimelinessNames) {
		return qosTimelinessNames[t]
	}
	return "Timeliness(" + strconv.Itoa(int(t)) + ")"
}

type QosRate uint8

const (
	QosRateUnspecified QosRate = iota
	QosRateTickByTick
	QosRateJITConflated
	QosRateTimeConflated
)

var qosRateNames = [...]string{"Unspecified", "TickByTick", "JITConflated", "TimeConflated"}

func (r QosRate) String() string {
	if int(r) < len(qosRateNames) {
		return qosRateNames[r]
	}
	return "Rate(" + strconv.Itoa(int(r)) + ")"
}

// Qos describes how timely and how often data is delivered. TimeInfo is
// the delay in seconds for Delayed; RateInfo is the conflation interval in
// milliseconds for TimeConflated.
type Qos struct {
	Timeliness QosTimeliness
	Rate       QosRate
	Dynamic    bool
	TimeInfo   uint16
	RateInfo   uint16

	blank bool
}

func (v *Qos) DataType() DataType { return DataTypeQos }
func (v *Qos) IsBlank() bool      { return v.blank }
func (v *Qos) Clear()             { *v = Qos{} }
func (v *Qos) Blank()             { *v = Qos{blank: true} }

func (v *Qos) Equal(o *Qos) bool { return *v == *o }

// Copy writes v into dst.
func (v *Qos) Copy(dst *Qos) error {
	if dst == nil {
		return errorf(InvalidArgument, "copy QOS", "nil destination")
	}
	*dst = *v
	return nil
}

func (v *Qos) Encode(it *EncodeIterator) error { return encodePrimitive(it, v) }

func (v *Qos) Decode(it *DecodeIterator) error { return decodePrimitive(it, v) }

func (v *Qos) validate() error {
	if v.Timeliness == QosTimelinessUnspecified || v.Rate == QosRateUnspecified {
		return errorf(InvalidArgument, "encode QOS", "timeliness and rate must both be specified")
	}
	if v.Timeliness > QosTimelinessDelayed || v.Rate > QosRateTimeConflated {
		return errorf(InvalidArgument, "encode QOS", "timeliness %d or rate %d out of range", v.Timeliness, v.Rate)
	}
	return nil
}

func (v *Qos) encodedSize() int {
	n := 1
	if v.Timeliness == QosTimelinessDelayed {
		n += 2
	}
	if v.Rate == QosRateTimeConflated {
		n += 2
	}
	return n
}

func (v *Qos) put(dst []byte) (int, error) {
	n := v.encodedSize()
	if len(dst) < n {
		return 0, wire.ErrShortBuffer
	}
	b := byte(v.Timeliness)<<5 | byte(v.Rate)<<1
	if v.Dynamic {
		b |= 1
	}
	dst[0] = b
	i := 1
	if v.Timeliness == QosTimelinessDelayed {
		binary.BigEndian.PutUint16(dst[i:], v.TimeInfo)
		i += 2
	}
	if v.Rate == QosRateTimeConflated {
		binary.BigEndian.PutUint16(dst[i:], v.RateInfo)
		i += 2
	}
	return i, nil
}

func (v *Qos) decodeBytes(p []byte) error {
	if len(p) == 0 {
		v.Blank()
		return BlankData
	}
	r := reader{data: p, end: len(p)}
	b := r.u8()
	q := Qos{Timeliness: QosTimeliness(b >> 5), Rate: QosRate(b >> 1 & 0x0F), Dynamic: b&1 != 0}
	if q.Timeliness == QosTimelinessDelayed {
		q.TimeInfo = r.u16()
	}
	if q.Rate == QosRateTimeConflated {
		q.RateInfo = r.u16()
	}
	if err := r.result("decode QOS"); err != nil {
		return err
	}
	*v = q
	return nil
}

// timelinessRank orders timeliness best-first: realtime, then delayed by
// its delay, then delayed-unknown, then unspecified.
func (v *Qos) timelinessRank() int64 {
	switch v.Timeliness {
	case QosTimelinessRealtime:
		return 0
	case QosTimelinessDelayed:
		return 1 + int64(v.TimeInfo)
	case QosTimelinessDelayedUnknown:
		return 1 + 65536
	}
	return math.MaxInt64
}

// rateRank orders rate best-first: tick-by-tick, JIT, then time
// conflated by its interval, then unspecified.
func (v *Qos) rateRank() int64 {
	switch v.Rate {
	case QosRateTickByTick:
		return 0
	case QosRateJITConflated:
		return 1
	case QosRateTimeConflated:
		return 2 + int64(v.RateInfo)
	}
	return math.MaxInt64
}

// IsBetter reports whether v is strictly better than o. Timeliness
// decides first; rate breaks ties.
func (v *Qos) IsBetter(o *Qos) bool {
	vt, ot := v.timelinessRank(), o.timelinessRank()
	if vt != ot {
		return vt < ot
	}
	return v.rateRank() < o.rateRank()
}

// IsInRange reports whether v lies between best and worst inclusive, on
// timeliness and on rate independently.
func (v *Qos) IsInRange(best, worst *Qos) bool {
	t, r := v.timelinessRank(), v.rateRank()
	return t >= best.timelinessRank() && t <= worst.timelinessRank() &&
		r >= best.rateRank() && r <= worst.rateRank()
}

// String renders "Timeliness[/info]:Rate[/info]:Static|Dynamic".
func (v *Qos) String() string {
	if v.blank {
		return ""
	}
	var b strings.Builder
	b.WriteString(v.Timeliness.String())
	if v.Timeliness == QosTimelinessDelayed {
		fmt.Fprintf(&b, "/%d", v.TimeInfo)
	}
	b.WriteByte(':')
	b.WriteString(v.Rate.String())
	if v.Rate == QosRateTimeConflated {
		fmt.Fprintf(&b, "/%d", v.RateInfo)
	}
	if v.Dynamic {
		b.WriteString(":Dynamic")
	} else {
		b.WriteString(":Static")
	}
	return b.String()
}

func (v *Qos) SetString(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		v.Blank()
		return nil
	}
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return errorf(InvalidArgument, "parse QOS", "%q: want Timeliness:Rate[:Static|Dynamic]", s)
	}
	var q Qos
	name, info, err := splitQosInfo(parts[0])
	if err == nil {
		err = lookupQosName(qosTimelinessNames[:], name, func(i int) { q.Timeliness = QosTimeliness(i) })
		q.TimeInfo = info
	}
	if err == nil {
		name, info, err = splitQosInfo(parts[1])
	}
	if err == nil {
		err = lookupQosName(qosRateNames[:], name, func(i int) { q.Rate = QosRate(i) })
		q.RateInfo = info
	}
	if err == nil && len(parts) == 3 {
		switch {
		case strings.EqualFold(parts[2], "Dynamic"):
			q.Dynamic = true
		case strings.EqualFold(parts[2], "Static"):
		default:
			err = fmt.Errorf("unknown dynamic flag %q", parts[2])
		}
	}
	if err != nil {
		return errorf(InvalidArgument, "parse QOS", "%q: %v", s, err)
	}
	*v = q
	return nil
}

func splitQosInfo(s string) (string, uint16, error) {
	name, infoStr, ok := strings.Cut(s, "/")
	if !ok {
		return name, 0, nil
	}
	info, err := strconv.ParseUint(infoStr, 10, 16)
	if err != nil {
		return "", 0, fmt.Errorf("bad info %q", infoStr)
	}
	return name, uint16(info), nil
}

func lookupQosName(names []string, name string, set func(int)) error {
	for i, n := range names {
		if strings.EqualFold(n, name) {
			set(i)
			return nil
		}
	}
	return fmt.Errorf("unknown name %q", name)
}
