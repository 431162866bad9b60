package rwf

import "encoding/binary"

// reserveU16Mark reserves a UShort16ob length prefix. A hint in 1..0xFD
// reserves one byte; anything else reserves the escaped three-byte form.
func (it *EncodeIterator) reserveU16Mark(op string, m *sizeMark, maxSize int) error {
	width := 3
	if maxSize > 0 && maxSize < 0xFE {
		width = 1
	}
	if err := it.ensure(op, width); err != nil {
		return err
	}
	m.pos = it.cur
	m.width = width
	it.cur += width
	return nil
}

// finishU16Mark patches the prefix with the length written since it was
// reserved. A one-byte prefix that turns out too small is widened by
// shifting the content right.
func (it *EncodeIterator) finishU16Mark(op string, m *sizeMark) error {
	if m.pos < 0 {
		return errorf(Failure, op, "no length reserved")
	}
	length := it.cur - (m.pos + m.width)
	if length > 0xFFFF {
		return errorf(BufferTooSmall, op, "%d bytes exceed a 16-bit length", length)
	}
	d := it.buf.Data()
	if m.width == 1 {
		if length < 0xFE {
			d[m.pos] = byte(length)
			m.reset()
			return nil
		}
		if err := it.widen(op, m, 2); err != nil {
			return err
		}
	}
	d = it.buf.Data()
	d[m.pos] = 0xFE
	binary.BigEndian.PutUint16(d[m.pos+1:], uint16(length))
	m.reset()
	return nil
}

// reserveU15Mark reserves a UShort15rb length prefix. A hint in 1..0x7F
// reserves one byte, otherwise two.
func (it *EncodeIterator) reserveU15Mark(op string, m *sizeMark, maxSize int) error {
	width := 2
	if maxSize > 0 && maxSize < 0x80 {
		width = 1
	}
	if err := it.ensure(op, width); err != nil {
		return err
	}
	m.pos = it.cur
	m.width = width
	it.cur += width
	return nil
}

func (it *EncodeIterator) finishU15Mark(op string, m *sizeMark) error {
	if m.pos < 0 {
		return errorf(Failure, op, "no length reserved")
	}
	length := it.cur - (m.pos + m.width)
	if length > 0x7FFF {
		return errorf(BufferTooSmall, op, "%d bytes exceed a 15-bit length", length)
	}
	d := it.buf.Data()
	if m.width == 1 {
		if length < 0x80 {
			d[m.pos] = byte(length)
			m.reset()
			return nil
		}
		if err := it.widen(op, m, 1); err != nil {
			return err
		}
	}
	d = it.buf.Data()
	d[m.pos] = byte(length>>8) | 0x80
	d[m.pos+1] = byte(length)
	m.reset()
	return nil
}

// widen grows the prefix at m by extra bytes, moving the content behind it.
// Only the innermost open mark is ever widened, so no recorded offset sits
// inside the moved region.
func (it *EncodeIterator) widen(op string, m *sizeMark, extra int) error {
	if err := it.ensure(op, extra); err != nil {
		return err
	}
	d := it.buf.Data()
	from := m.pos + m.width
	copy(d[from+extra:it.cur+extra], d[from:it.cur])
	it.cur += extra
	m.width += extra
	return nil
}
