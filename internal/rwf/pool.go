package rwf

import "sync"

var (
	encodeIteratorPool = sync.Pool{
		New: func() any { return NewEncodeIterator() },
	}
	decodeIteratorPool = sync.Pool{
		New: func() any { return NewDecodeIterator() },
	}
)

// AcquireEncodeIterator returns a cleared iterator from the pool. Hand it
// back with ReleaseEncodeIterator once its output has been copied out.
func AcquireEncodeIterator() *EncodeIterator {
	it := encodeIteratorPool.Get().(*EncodeIterator)
	it.Clear()
	return it
}

func ReleaseEncodeIterator(it *EncodeIterator) {
	if it == nil {
		return
	}
	it.Clear()
	encodeIteratorPool.Put(it)
}

func AcquireDecodeIterator() *DecodeIterator {
	it := decodeIteratorPool.Get().(*DecodeIterator)
	it.Clear()
	return it
}

// ReleaseDecodeIterator drops the iterator's reference to its source
// before pooling it.
func ReleaseDecodeIterator(it *DecodeIterator) {
	if it == nil {
		return
	}
	it.Clear()
	decodeIteratorPool.Put(it)
}
