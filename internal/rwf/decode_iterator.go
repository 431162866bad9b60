package rwf

import (
	"github.com/danmuck/rwfcodec/internal/rwf/wire"
)

type decodingLevel struct {
	containerType DataType
	end           int
	itemCount     int
	nextItem      int
	nextEntryPos  int

	// set data
	setCount      int
	nextSetPos    int
	setDataEnd    int
	entriesPos    int
	fieldSetDef   *FieldSetDef
	elementSetDef *ElementSetDef

	// header properties entries need
	flags      uint8
	entryType  DataType
	keyType    DataType
	itemLength int

	// encoded set definitions of a map, series or vector
	setDefsPos int
	setDefsEnd int
}

// DecodeIterator walks a source buffer while decoding. It is not safe for
// concurrent use.
//
// levels[level+1].end always bounds the payload the next Decode call reads.
type DecodeIterator struct {
	buf    *wire.Buffer
	data   []byte
	start  int
	cur    int
	level  int
	levels [MaxLevels + 1]decodingLevel

	maxDepth int
	major    int
	minor    int

	fieldSetDefs   *GlobalFieldSetDefDb
	elementSetDefs *GlobalElementSetDefDb
}

func NewDecodeIterator() *DecodeIterator {
	it := &DecodeIterator{}
	it.Clear()
	return it
}

func (it *DecodeIterator) Clear() {
	it.buf = nil
	it.data = nil
	it.start, it.cur = 0, 0
	it.level = -1
	it.maxDepth = MaxLevels
	it.major, it.minor = MajorVersion, MinorVersion
	it.fieldSetDefs = nil
	it.elementSetDefs = nil
}

// SetBuffer binds b; decoding reads [b.Position(), b.Limit()).
func (it *DecodeIterator) SetBuffer(b *wire.Buffer, major, minor int) error {
	if b == nil {
		return errorf(InvalidArgument, "decode iterator", "nil buffer")
	}
	if major != MajorVersion {
		return errorf(InvalidArgument, "decode iterator", "unsupported RWF version %d.%d", major, minor)
	}
	it.buf = b
	it.data = b.Data()[:b.Limit()]
	it.start = b.Position()
	it.cur = it.start
	it.level = -1
	it.levels[0].end = b.Limit()
	it.major, it.minor = major, minor
	return nil
}

// SetBytes is SetBuffer over a plain slice at the current version.
func (it *DecodeIterator) SetBytes(p []byte) error {
	return it.SetBuffer(wire.Wrap(p), MajorVersion, MinorVersion)
}

func (it *DecodeIterator) SetMaxDepth(depth int) error {
	if depth < 1 || depth > MaxLevels {
		return errorf(InvalidArgument, "decode iterator", "max depth %d outside 1..%d", depth, MaxLevels)
	}
	it.maxDepth = depth
	return nil
}

func (it *DecodeIterator) SetGlobalFieldSetDefDb(db *GlobalFieldSetDefDb) {
	it.fieldSetDefs = db
}

func (it *DecodeIterator) SetGlobalElementSetDefDb(db *GlobalElementSetDefDb) {
	it.elementSetDefs = db
}

func (it *DecodeIterator) MajorVersion() int { return it.major }
func (it *DecodeIterator) MinorVersion() int { return it.minor }

// Depth is the number of open container levels.
func (it *DecodeIterator) Depth() int { return it.level + 1 }

// Position is the absolute read position.
func (it *DecodeIterator) Position() int { return it.cur }

// payload is the byte range the next primitive or container decode reads.
func (it *DecodeIterator) payload(op string) ([]byte, error) {
	if it.data == nil {
		return nil, errorf(InvalidArgument, op, "no buffer bound")
	}
	end := it.levels[it.level+1].end
	if it.cur > end || end > len(it.data) {
		return nil, errorf(IncompleteData, op, "payload range %d..%d outside buffer", it.cur, end)
	}
	return it.data[it.cur:end], nil
}

// push opens a level bounded by the end recorded for it.
func (it *DecodeIterator) push(op string, containerType DataType) (*decodingLevel, error) {
	if it.data == nil {
		return nil, errorf(InvalidArgument, op, "no buffer bound")
	}
	if it.level+1 >= it.maxDepth {
		return nil, errorf(DepthExceeded, op, "more than %d nested levels", it.maxDepth)
	}
	it.level++
	l := &it.levels[it.level]
	end := l.end
	*l = decodingLevel{containerType: containerType, end: end}
	if it.cur > end || end > len(it.data) {
		it.level--
		return nil, errorf(IncompleteData, op, "container range %d..%d outside buffer", it.cur, end)
	}
	return l, nil
}

// endOfList pops the current level and resumes the parent at its next
// entry.
func (it *DecodeIterator) endOfList() {
	l := &it.levels[it.level]
	it.level--
	if it.level >= 0 {
		it.cur = it.levels[it.level].nextEntryPos
	} else {
		it.cur = l.end
	}
}

// fail undoes a push whose header did not parse.
func (it *DecodeIterator) fail(err error) error {
	it.level--
	return err
}

func (it *DecodeIterator) current(op string, containerType DataType) (*decodingLevel, error) {
	if it.level < 0 || it.levels[it.level].containerType != containerType {
		return nil, errorf(InvalidArgument, op, "no open %s level", containerType)
	}
	return &it.levels[it.level], nil
}

// FinishDecodeEntries skips whatever remains of the current container
// and returns to its parent.
func (it *DecodeIterator) FinishDecodeEntries() error {
	if it.level < 0 {
		return errorf(InvalidArgument, "finish decode entries", "no open level")
	}
	it.endOfList()
	return nil
}

// setEntryPayload bounds the next decode to [start, end) and records where
// the following entry begins.
func (it *DecodeIterator) setEntryPayload(l *decodingLevel, start, end, next int) {
	it.cur = start
	it.levels[it.level+1].end = end
	l.nextEntryPos = next
}

// reader is a bounds-checked cursor over it.data used for header parsing.
type reader struct {
	data []byte
	pos  int
	end  int
	err  error
}

func (it *DecodeIterator) reader(end int) reader {
	return reader{data: it.data, pos: it.cur, end: end}
}

func (r *reader) need(n int) bool {
	if r.err != nil {
		return false
	}
	if r.pos+n > r.end {
		r.err = wire.ErrEndOfData
		return false
	}
	return true
}

func (r *reader) u8() uint8 {
	if !r.need(1) {
		return 0
	}
	v := r.data[r.pos]
	r.pos++
	return v
}

func (r *reader) u16() uint16 {
	if !r.need(2) {
		return 0
	}
	v := uint16(r.data[r.pos])<<8 | uint16(r.data[r.pos+1])
	r.pos += 2
	return v
}

func (r *reader) ushort15rb() uint16 {
	if r.err != nil {
		return 0
	}
	v, n, err := wire.UShort15rb(r.data[r.pos:r.end])
	if err != nil {
		r.err = err
		return 0
	}
	r.pos += n
	return v
}

func (r *reader) ushort16ob() uint16 {
	if r.err != nil {
		return 0
	}
	v, n, err := wire.UShort16ob(r.data[r.pos:r.end])
	if err != nil {
		r.err = err
		return 0
	}
	r.pos += n
	return v
}

func (r *reader) uint30rb() uint32 {
	if r.err != nil {
		return 0
	}
	v, n, err := wire.UInt30rb(r.data[r.pos:r.end])
	if err != nil {
		r.err = err
		return 0
	}
	r.pos += n
	return v
}

// span returns the bounds of n bytes and skips them.
func (r *reader) span(n int) (int, int) {
	if !r.need(n) {
		return r.pos, r.pos
	}
	start := r.pos
	r.pos += n
	return start, r.pos
}

func (r *reader) buf15() (int, int) {
	n := r.ushort15rb()
	return r.span(int(n))
}

func (r *reader) buf16() (int, int) {
	n := r.ushort16ob()
	return r.span(int(n))
}

func (r *reader) bytes(start, end int) []byte {
	if r.err != nil || start == end {
		return nil
	}
	return r.data[start:end]
}

func (r *reader) result(op string) error {
	return fromWire(op, r.err)
}
