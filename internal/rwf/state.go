package rwf

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/danmuck/rwfcodec/internal/rwf/wire"
)

type StreamState uint8

const (
	StreamStateUnspecified StreamState = iota
	StreamStateOpen
	StreamStateNonStreaming
	StreamStateClosedRecover
	StreamStateClosed
	StreamStateRedirected
)

var streamStateNames = [...]string{"Unspecified", "Open", "NonStreaming", "ClosedRecover", "Closed", "Redirected"}

func (s StreamState) String() string {
	if int(s) < len(streamStateNames) {
		return streamStateNames[s]
	}
	return "StreamState(" + strconv.Itoa(int(s)) + ")"
}

type DataState uint8

const (
	DataStateNoChange DataState = iota
	DataStateOk
	DataStateSuspect
)

var dataStateNames = [...]string{"NoChange", "Ok", "Suspect"}

func (s DataState) String() string {
	if int(s) < len(dataStateNames) {
		return dataStateNames[s]
	}
	return "DataState(" + strconv.Itoa(int(s)) + ")"
}

// StateCode carries the reason behind a state change.
type StateCode uint8

const (
	StateCodeNone StateCode = iota
	StateCodeNotFound
	StateCodeTimeout
	StateCodeNotEntitled
	StateCodeInvalidArgument
	StateCodeUsageError
	StateCodePreempted
	StateCodeJITConflationStarted
	StateCodeRealtimeResumed
	StateCodeFailoverStarted
	StateCodeFailoverCompleted
	StateCodeGapDetected
	StateCodeNoResources
	StateCodeTooManyItems
	StateCodeAlreadyOpen
	StateCodeSourceUnknown
	StateCodeNotOpen
)

const (
	StateCodeNonUpdatingItem StateCode = 19 + iota
	StateCodeUnsupportedViewType
	StateCodeInvalidView
	StateCodeFullViewProvided
	StateCodeUnableToRequestAsBatch
)

const (
	StateCodeNoBatchViewSupportInReq StateCode = 26 + iota
	StateCodeExceededMaxMountsPerUser
	StateCodeError
	StateCodeDacsDown
	StateCodeUserUnknownToPermSys
	StateCodeDacsMaxLoginsReached
	StateCodeDacsUserAccessToAppDenied
)

const (
	StateCodeGapFill StateCode = 34 + iota
	StateCodeAppAuthorizationFailed
)

// State is a stream and data state pair with a reason code and free text.
// The text of a decoded State aliases the source buffer.
type State struct {
	Stream StreamState
	Data   DataState
	Code   StateCode
	Text   []byte

	blank bool
}

func (v *State) DataType() DataType { return DataTypeState }
func (v *State) IsBlank() bool      { return v.blank }
func (v *State) Clear()             { *v = State{} }
func (v *State) Blank()             { *v = State{blank: true} }

func (v *State) Equal(o *State) bool {
	return v.blank == o.blank && v.Stream == o.Stream && v.Data == o.Data &&
		v.Code == o.Code && string(v.Text) == string(o.Text)
}

// Copy writes v into dst.
func (v *State) Copy(dst *State) error {
	if dst == nil {
		return errorf(InvalidArgument, "copy STATE", "nil destination")
	}
	*dst = *v
	dst.Text = append([]byte(nil), v.Text...)
	return nil
}

func (v *State) Encode(it *EncodeIterator) error { return encodePrimitive(it, v) }

func (v *State) Decode(it *DecodeIterator) error { return decodePrimitive(it, v) }

func (v *State) validate() error {
	if v.Stream == StreamStateUnspecified {
		return errorf(InvalidArgument, "encode STATE", "stream state must be specified")
	}
	if v.Stream > 0x1F || v.Data > 0x07 {
		return errorf(InvalidArgument, "encode STATE", "stream state %d or data state %d out of range", v.Stream, v.Data)
	}
	if len(v.Text) > wire.MaxUShort15 {
		return errorf(InvalidArgument, "encode STATE", "%d bytes of text exceed a 15-bit length", len(v.Text))
	}
	return nil
}

func (v *State) encodedSize() int {
	return 2 + wire.UShort15rbLen(uint16(len(v.Text))) + len(v.Text)
}

func (v *State) put(dst []byte) (int, error) {
	n := v.encodedSize()
	if len(dst) < n {
		return 0, wire.ErrShortBuffer
	}
	dst[0] = byte(v.Stream)<<3 | byte(v.Data)
	dst[1] = byte(v.Code)
	i, err := wire.PutUShort15rb(dst[2:], uint16(len(v.Text)))
	if err != nil {
		return 0, err
	}
	copy(dst[2+i:], v.Text)
	return n, nil
}

func (v *State) decodeBytes(p []byte) error {
	if len(p) == 0 {
		v.Blank()
		return BlankData
	}
	r := reader{data: p, end: len(p)}
	b := r.u8()
	code := r.u8()
	start, end := r.buf15()
	if err := r.result("decode STATE"); err != nil {
		return err
	}
	*v = State{
		Stream: StreamState(b >> 3),
		Data:   DataState(b & 0x07),
		Code:   StateCode(code),
		Text:   r.bytes(start, end),
	}
	return nil
}

// String renders "Stream/Data/Code: text".
func (v *State) String() string {
	if v.blank {
		return ""
	}
	s := fmt.Sprintf("%s/%s/%d", v.Stream, v.Data, v.Code)
	if len(v.Text) > 0 {
		s += ": " + string(v.Text)
	}
	return s
}

func (v *State) SetString(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		v.Blank()
		return nil
	}
	head, text, _ := strings.Cut(s, ": ")
	parts := strings.Split(head, "/")
	if len(parts) != 3 {
		return errorf(InvalidArgument, "parse STATE", "%q: want Stream/Data/Code[: text]", s)
	}
	var st State
	found := false
	for i, n := range streamStateNames {
		if strings.EqualFold(n, parts[0]) {
			st.Stream, found = StreamState(i), true
		}
	}
	if !found {
		return errorf(InvalidArgument, "parse STATE", "unknown stream state %q", parts[0])
	}
	found = false
	for i, n := range dataStateNames {
		if strings.EqualFold(n, parts[1]) {
			st.Data, found = DataState(i), true
		}
	}
	if !found {
		return errorf(InvalidArgument, "parse STATE", "unknown data state %q", parts[1])
	}
	code, err := strconv.ParseUint(parts[2], 10, 8)
	if err != nil {
		return errorf(InvalidArgument, "parse STATE", "bad code %q", parts[2])
	}
	st.Code = StateCode(code)
	if text != "" {
		st.Text = []byte(text)
	}
	*v = st
	return nil
}
