package rwf

import (
	"github.com/rs/zerolog/log"

	"github.com/danmuck/rwfcodec/internal/rwf/wire"
)

const (
	// MaxLevels bounds container nesting per iterator.
	MaxLevels = 16

	MajorVersion = 14
	MinorVersion = 1
)

type levelState uint8

const (
	levelNotStarted levelState = iota
	levelHeaderWritten
	levelSetDefs
	levelSummaryData
	levelSetData
	levelEntries
	levelEntryOpen
	levelSetDataComplete
	levelComplete
)

// sizeMark is a reserved length prefix patched once the content is known.
type sizeMark struct {
	pos   int
	width int
}

func (m *sizeMark) reset() { m.pos, m.width = -1, 0 }

type encodingLevel struct {
	containerType DataType
	state         levelState
	flags         uint8

	start      int // position before the container header
	countPos   int
	countWidth int
	mark       sizeMark // entry payload or set data
	mark2      sizeMark // set definitions or summary data
	entryStart int
	count      int

	entryType  DataType
	keyType    DataType
	itemLength int

	setIndex      int
	fieldSetDef   *FieldSetDef
	elementSetDef *ElementSetDef
	openSetEntry  bool

	// size hint for summary data reserved after set definitions complete
	summaryMax int
}

func (l *encodingLevel) reset(containerType DataType, start int) {
	*l = encodingLevel{containerType: containerType, state: levelNotStarted, start: start, countPos: -1, entryStart: -1}
	l.mark.reset()
	l.mark2.reset()
}

// EncodeIterator walks a destination buffer while encoding. It is not safe
// for concurrent use.
type EncodeIterator struct {
	buf    *wire.Buffer
	start  int
	cur    int
	end    int
	level  int
	levels [MaxLevels]encodingLevel

	maxDepth int
	maxSize  int
	major    int
	minor    int

	fieldSetDefs   *GlobalFieldSetDefDb
	elementSetDefs *GlobalElementSetDefDb
}

func NewEncodeIterator() *EncodeIterator {
	it := &EncodeIterator{}
	it.Clear()
	return it
}

// Clear unbinds the buffer and drops all level state.
func (it *EncodeIterator) Clear() {
	it.buf = nil
	it.start, it.cur, it.end = 0, 0, 0
	it.level = -1
	it.maxDepth = MaxLevels
	it.maxSize = 0
	it.major, it.minor = MajorVersion, MinorVersion
	it.fieldSetDefs = nil
	it.elementSetDefs = nil
}

// SetBuffer binds b; encoding writes into [b.Position(), b.Limit()).
func (it *EncodeIterator) SetBuffer(b *wire.Buffer, major, minor int) error {
	if b == nil {
		return errorf(InvalidArgument, "encode iterator", "nil buffer")
	}
	if major != MajorVersion {
		return errorf(InvalidArgument, "encode iterator", "unsupported RWF version %d.%d", major, minor)
	}
	it.buf = b
	it.start = b.Position()
	it.cur = it.start
	it.end = b.Limit()
	it.level = -1
	it.major, it.minor = major, minor
	return nil
}

// SetMaxDepth lowers the nesting bound below MaxLevels.
func (it *EncodeIterator) SetMaxDepth(depth int) error {
	if depth < 1 || depth > MaxLevels {
		return errorf(InvalidArgument, "encode iterator", "max depth %d outside 1..%d", depth, MaxLevels)
	}
	it.maxDepth = depth
	return nil
}

// SetMaxBufferSize caps the capacity Grow may reach. Zero means no cap.
func (it *EncodeIterator) SetMaxBufferSize(n int) error {
	if n < 0 {
		return errorf(InvalidArgument, "encode iterator", "max buffer size %d is negative", n)
	}
	it.maxSize = n
	return nil
}

func (it *EncodeIterator) SetGlobalFieldSetDefDb(db *GlobalFieldSetDefDb) {
	it.fieldSetDefs = db
}

func (it *EncodeIterator) SetGlobalElementSetDefDb(db *GlobalElementSetDefDb) {
	it.elementSetDefs = db
}

func (it *EncodeIterator) MajorVersion() int { return it.major }
func (it *EncodeIterator) MinorVersion() int { return it.minor }

// Len is the number of bytes encoded so far.
func (it *EncodeIterator) Len() int { return it.cur - it.start }

// Position is the absolute write position in the bound buffer.
func (it *EncodeIterator) Position() int { return it.cur }

// Depth is the number of open container levels.
func (it *EncodeIterator) Depth() int { return it.level + 1 }

// Bytes returns the encoded bytes without copying.
func (it *EncodeIterator) Bytes() []byte {
	if it.buf == nil {
		return nil
	}
	return it.buf.Data()[it.start:it.cur]
}

// Realign moves everything encoded so far into dst, starting at
// dst.Position(), and shifts every offset held by open levels by the same
// delta. Use it when the bound buffer turns out too small mid-encode.
func (it *EncodeIterator) Realign(dst *wire.Buffer) error {
	if it.buf == nil || dst == nil {
		return errorf(InvalidArgument, "realign", "no buffer bound")
	}
	encoded := it.cur - it.start
	if dst.Remaining() < it.end-it.start {
		return errorf(BufferTooSmall, "realign", "new buffer holds %d bytes, need at least %d", dst.Remaining(), it.end-it.start)
	}
	if err := dst.WriteBytesAt(dst.Position(), it.buf.Data()[it.start:it.cur]); err != nil {
		return fromWire("realign", err)
	}
	delta := dst.Position() - it.start
	for i := 0; i <= it.level; i++ {
		it.levels[i].shift(delta)
	}
	it.buf = dst
	it.start = dst.Position()
	it.cur = it.start + encoded
	it.end = dst.Limit()
	log.Debug().Int("delta", delta).Int("encoded", encoded).Int("levels", it.level+1).Msg("rwf: encode buffer realigned")
	return nil
}

// Grow relocates the bound buffer so at least extra more bytes fit. Past
// the SetMaxBufferSize cap it fails with BufferTooSmall and keeps the
// current buffer.
func (it *EncodeIterator) Grow(extra int) error {
	if it.buf == nil {
		return errorf(InvalidArgument, "grow", "no buffer bound")
	}
	need := it.buf.Capacity() + extra
	if it.maxSize > 0 && need > it.maxSize {
		return errorf(BufferTooSmall, "grow", "%d bytes exceeds the %d byte cap", need, it.maxSize)
	}
	size := max(need, it.buf.Capacity()*2)
	if it.maxSize > 0 && size > it.maxSize {
		size = it.maxSize
	}
	next := wire.NewBuffer(size)
	copy(next.Data(), it.buf.Data()[:it.start])
	if err := next.SetPosition(it.start); err != nil {
		return fromWire("grow", err)
	}
	return it.Realign(next)
}

func (l *encodingLevel) shift(delta int) {
	l.start += delta
	if l.countPos >= 0 {
		l.countPos += delta
	}
	if l.entryStart >= 0 {
		l.entryStart += delta
	}
	if l.mark.pos >= 0 {
		l.mark.pos += delta
	}
	if l.mark2.pos >= 0 {
		l.mark2.pos += delta
	}
}

func (it *EncodeIterator) current() *encodingLevel {
	if it.level < 0 {
		return nil
	}
	return &it.levels[it.level]
}

// push opens a level for a container whose header starts at it.cur.
func (it *EncodeIterator) push(op string, containerType DataType) (*encodingLevel, error) {
	if it.buf == nil {
		return nil, errorf(InvalidArgument, op, "no buffer bound")
	}
	if parent := it.current(); parent != nil {
		switch parent.state {
		case levelEntryOpen, levelSetDefs, levelSummaryData:
		default:
			return nil, errorf(InvalidArgument, op, "%s level is not expecting a nested container", parent.containerType)
		}
	}
	if it.level+1 >= it.maxDepth {
		return nil, errorf(DepthExceeded, op, "more than %d nested levels", it.maxDepth)
	}
	it.level++
	l := &it.levels[it.level]
	l.reset(containerType, it.cur)
	return l, nil
}

// abort discards a level opened by push and restores the write position.
func (it *EncodeIterator) abort(l *encodingLevel) {
	it.cur = l.start
	l.state = levelComplete
	it.level--
}

func (it *EncodeIterator) pop() {
	it.levels[it.level].state = levelComplete
	it.level--
}

func (it *EncodeIterator) ensure(op string, n int) error {
	if it.cur+n > it.end {
		return errorf(BufferTooSmall, op, "need %d bytes, %d remain", n, it.end-it.cur)
	}
	return nil
}

func (it *EncodeIterator) window() []byte {
	return it.buf.Data()[it.cur:it.end]
}

func (it *EncodeIterator) putU8(op string, v uint8) error {
	if err := it.ensure(op, 1); err != nil {
		return err
	}
	it.buf.Data()[it.cur] = v
	it.cur++
	return nil
}

func (it *EncodeIterator) putU16(op string, v uint16) error {
	if err := it.ensure(op, 2); err != nil {
		return err
	}
	d := it.buf.Data()
	d[it.cur] = byte(v >> 8)
	d[it.cur+1] = byte(v)
	it.cur += 2
	return nil
}

func (it *EncodeIterator) putBytes(op string, p []byte) error {
	if err := it.ensure(op, len(p)); err != nil {
		return err
	}
	copy(it.buf.Data()[it.cur:], p)
	it.cur += len(p)
	return nil
}

func (it *EncodeIterator) putUShort15rb(op string, v uint16) error {
	n, err := wire.PutUShort15rb(it.window(), v)
	if err != nil {
		return fromWire(op, err)
	}
	it.cur += n
	return nil
}

func (it *EncodeIterator) putUInt30rb(op string, v uint32) error {
	n, err := wire.PutUInt30rb(it.window(), v)
	if err != nil {
		return fromWire(op, err)
	}
	it.cur += n
	return nil
}

// putBuf15 writes p behind a UShort15rb length.
func (it *EncodeIterator) putBuf15(op string, p []byte) error {
	if len(p) > wire.MaxUShort15 {
		return errorf(InvalidArgument, op, "%d bytes exceed a 15-bit length", len(p))
	}
	if err := it.ensure(op, wire.UShort15rbLen(uint16(len(p)))+len(p)); err != nil {
		return err
	}
	if err := it.putUShort15rb(op, uint16(len(p))); err != nil {
		return err
	}
	return it.putBytes(op, p)
}

// putBuf16 writes p behind a UShort16ob length.
func (it *EncodeIterator) putBuf16(op string, p []byte) error {
	if len(p) > 0xFFFF {
		return errorf(InvalidArgument, op, "%d bytes exceed a 16-bit length", len(p))
	}
	if err := it.ensure(op, wire.UShort16obLen(uint16(len(p)))+len(p)); err != nil {
		return err
	}
	n, _ := wire.PutUShort16ob(it.window(), uint16(len(p)))
	it.cur += n
	return it.putBytes(op, p)
}

// putPrimitive16 writes v behind a UShort16ob length.
func (it *EncodeIterator) putPrimitive16(op string, v Primitive) error {
	if v.IsBlank() && !fieldBlank(v) {
		return errorf(InvalidArgument, op, "blank %s must be encoded as blank", v.DataType())
	}
	if err := checkValue(v); err != nil {
		return err
	}
	size := v.encodedSize()
	if size > 0xFFFF {
		return errorf(InvalidArgument, op, "%d bytes exceed a 16-bit length", size)
	}
	if err := it.ensure(op, wire.UShort16obLen(uint16(size))+size); err != nil {
		return err
	}
	n, _ := wire.PutUShort16ob(it.window(), uint16(size))
	it.cur += n
	return it.putValue(op, v)
}

// putValue writes the bare payload of v.
func (it *EncodeIterator) putValue(op string, v Primitive) error {
	if err := it.ensure(op, v.encodedSize()); err != nil {
		return err
	}
	n, err := v.put(it.window())
	if err != nil {
		return fromWire(op, err)
	}
	it.cur += n
	return nil
}

// reserveCount reserves a fixed-width entry count on l.
func (it *EncodeIterator) reserveCount(op string, l *encodingLevel, width int) error {
	if err := it.ensure(op, width); err != nil {
		return err
	}
	l.countPos = it.cur
	l.countWidth = width
	it.cur += width
	return nil
}

// writeCount patches the reserved entry count of l.
func (it *EncodeIterator) writeCount(op string, l *encodingLevel) error {
	if l.countPos < 0 {
		return nil
	}
	d := it.buf.Data()
	switch l.countWidth {
	case 1:
		if l.count > 0xFF {
			return errorf(Failure, op, "%d entries exceed an 8-bit count", l.count)
		}
		d[l.countPos] = byte(l.count)
	default:
		if l.count > 0xFFFF {
			return errorf(Failure, op, "%d entries exceed a 16-bit count", l.count)
		}
		d[l.countPos] = byte(l.count >> 8)
		d[l.countPos+1] = byte(l.count)
	}
	return nil
}

// rollbackEntry drops a partially written entry.
func (it *EncodeIterator) rollbackEntry(l *encodingLevel) {
	if l.entryStart >= 0 {
		it.cur = l.entryStart
	}
	l.entryStart = -1
	l.mark.reset()
}

// completeLevel finishes the current container: patch the count on
// success, truncate back to the header start otherwise.
func (it *EncodeIterator) completeLevel(op string, containerType DataType, success bool) error {
	l := it.current()
	if l == nil || l.containerType != containerType {
		return errorf(InvalidArgument, op, "no open %s level", containerType)
	}
	if !success {
		log.Debug().Str("container", containerType.String()).Int("level", it.level).Msg("rwf: encode level rolled back")
		it.abort(l)
		return nil
	}
	switch l.state {
	case levelEntries, levelSetDataComplete, levelHeaderWritten:
	case levelSetData:
		return errorf(InvalidArgument, op, "set data incomplete: %d of %d set entries written", l.setIndex, setDefCount(l))
	default:
		return errorf(InvalidArgument, op, "%s level cannot complete in its current state", containerType)
	}
	if err := it.writeCount(op, l); err != nil {
		return err
	}
	it.pop()
	return nil
}
