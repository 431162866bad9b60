package inspect

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/rwfcodec/internal/observability"
	"github.com/danmuck/rwfcodec/internal/rwf"
	"github.com/danmuck/rwfcodec/internal/rwf/wire"
)

// ErrBadValue marks a Value that does not parse as its declared type.
var ErrBadValue = errors.New("inspect: bad value")

// Value is one standard entry of a list to build. Field keys field list
// entries and Name keys element list entries. An empty Value string
// encodes a blank entry.
type Value struct {
	Field int16  `json:"field,omitempty"`
	Name  string `json:"name,omitempty"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Builder encodes field and element lists from string values. The buffer
// starts at InitialSize bytes and doubles on BufferTooSmall until MaxSize.
type Builder struct {
	InitialSize int
	MaxSize     int
	Major       int
	Minor       int
}

// Build encodes values as a container of type dt, which must be
// FIELD_LIST or ELEMENT_LIST, and returns a copy of the bytes.
func (b *Builder) Build(dt rwf.DataType, values []Value) ([]byte, error) {
	out, err := b.build(dt, values)
	result := "SUCCESS"
	if err != nil {
		result = resultName(rwf.CodeOf(err))
	}
	observability.RecordEncode(dt.String(), result, len(out))
	if err != nil {
		log.Debug().Err(err).Str("container", dt.String()).Int("entries", len(values)).Msg("inspect: build failed")
	}
	return out, err
}

func (b *Builder) build(dt rwf.DataType, values []Value) ([]byte, error) {
	if dt != rwf.DataTypeFieldList && dt != rwf.DataTypeElementList {
		return nil, fmt.Errorf("%w: cannot build %s", ErrBadValue, dt)
	}
	prims, err := parseValues(dt, values)
	if err != nil {
		return nil, err
	}

	it := rwf.AcquireEncodeIterator()
	defer rwf.ReleaseEncodeIterator(it)
	major, minor := b.Major, b.Minor
	if major == 0 {
		major, minor = rwf.MajorVersion, rwf.MinorVersion
	}
	if err := it.SetBuffer(wire.NewBuffer(b.InitialSize), major, minor); err != nil {
		return nil, err
	}
	if err := it.SetMaxBufferSize(b.MaxSize); err != nil {
		return nil, err
	}

	for {
		if dt == rwf.DataTypeFieldList {
			err = encodeFields(it, values, prims)
		} else {
			err = encodeElements(it, values, prims)
		}
		if !errors.Is(err, rwf.BufferTooSmall) {
			break
		}
		if err := it.Grow(1); err != nil {
			return nil, err
		}
	}
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), it.Bytes()...), nil
}

func parseValues(dt rwf.DataType, values []Value) ([]rwf.Primitive, error) {
	prims := make([]rwf.Primitive, len(values))
	for i, v := range values {
		if dt == rwf.DataTypeElementList && v.Name == "" {
			return nil, fmt.Errorf("%w: entries[%d]: name is required", ErrBadValue, i)
		}
		t, ok := rwf.ParseDataType(strings.ToUpper(strings.TrimSpace(v.Type)))
		if !ok || !t.IsPrimitive() {
			return nil, fmt.Errorf("%w: entries[%d]: type %q is not a primitive", ErrBadValue, i, v.Type)
		}
		p, err := rwf.NewPrimitive(t)
		if err != nil {
			return nil, fmt.Errorf("%w: entries[%d]: %v", ErrBadValue, i, err)
		}
		if err := p.SetString(v.Value); err != nil {
			return nil, fmt.Errorf("%w: entries[%d]: %v", ErrBadValue, i, err)
		}
		prims[i] = p
	}
	return prims, nil
}

// encodeFields writes one attempt. On any entry failure the list is
// rolled back so the caller can grow and retry from the start.
func encodeFields(it *rwf.EncodeIterator, values []Value, prims []rwf.Primitive) error {
	fl := rwf.FieldList{Flags: rwf.FieldListHasStandardData}
	if err := fl.EncodeInit(it, nil, 0); err != nil {
		return err
	}
	for i, p := range prims {
		e := rwf.FieldEntry{FieldID: values[i].Field}
		var err error
		if p.IsBlank() {
			err = e.EncodeBlank(it)
		} else {
			err = e.Encode(it, p)
		}
		if err != nil {
			_ = fl.EncodeComplete(it, false)
			return err
		}
	}
	return fl.EncodeComplete(it, true)
}

func encodeElements(it *rwf.EncodeIterator, values []Value, prims []rwf.Primitive) error {
	el := rwf.ElementList{Flags: rwf.ElementListHasStandardData}
	if err := el.EncodeInit(it, nil, 0); err != nil {
		return err
	}
	for i, p := range prims {
		e := rwf.ElementEntry{Name: values[i].Name, DataType: p.DataType()}
		var err error
		if p.IsBlank() {
			err = e.EncodeBlank(it)
		} else {
			err = e.Encode(it, p)
		}
		if err != nil {
			_ = el.EncodeComplete(it, false)
			return err
		}
	}
	return el.EncodeComplete(it, true)
}
