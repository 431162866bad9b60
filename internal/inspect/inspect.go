package inspect

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/rwfcodec/internal/observability"
	"github.com/danmuck/rwfcodec/internal/rwf"
	"github.com/danmuck/rwfcodec/internal/rwf/wire"
)

// Node is one decoded value or container in an inspection tree.
type Node struct {
	// Name is the field id, element name, map key, vector index or filter
	// id the value was found under.
	Name     string  `json:"name,omitempty"`
	Type     string  `json:"type"`
	Action   string  `json:"action,omitempty"`
	Value    string  `json:"value,omitempty"`
	Blank    bool    `json:"blank,omitempty"`
	Perm     string  `json:"perm,omitempty"`
	Error    string  `json:"error,omitempty"`
	Children []*Node `json:"children,omitempty"`
}

func (n *Node) add(c *Node) *Node {
	n.Children = append(n.Children, c)
	return c
}

// Walker decodes payloads into Node trees. A zero Walker decodes at the
// current RWF version with no global set definitions.
type Walker struct {
	Fields   *rwf.GlobalFieldSetDefDb
	Elements *rwf.GlobalElementSetDefDb
	// FieldTypes types standard field list entries, which carry no type
	// on the wire. Unlisted fields render as hex.
	FieldTypes map[int16]rwf.DataType
	MaxDepth   int
	Major      int
	Minor      int
}

type walk struct {
	w     *Walker
	it    *rwf.DecodeIterator
	nodes int
}

// Walk decodes p as a container of type dt.
func (w *Walker) Walk(p []byte, dt rwf.DataType) (*Node, error) {
	root, nodes, err := w.walk(p, dt)
	result := "SUCCESS"
	if err != nil {
		result = resultName(rwf.CodeOf(err))
	}
	observability.RecordDecode(dt.String(), result, len(p), nodes)
	if err != nil {
		log.Debug().Err(err).Str("container", dt.String()).Int("bytes", len(p)).Msg("inspect: walk failed")
	}
	return root, err
}

func (w *Walker) walk(p []byte, dt rwf.DataType) (*Node, int, error) {
	it := rwf.AcquireDecodeIterator()
	defer rwf.ReleaseDecodeIterator(it)

	if p == nil {
		// A nil slice reads as an unbound iterator.
		p = []byte{}
	}
	major, minor := w.Major, w.Minor
	if major == 0 {
		major, minor = rwf.MajorVersion, rwf.MinorVersion
	}
	if err := it.SetBuffer(wire.Wrap(p), major, minor); err != nil {
		return nil, 0, err
	}
	if w.MaxDepth > 0 {
		if err := it.SetMaxDepth(w.MaxDepth); err != nil {
			return nil, 0, err
		}
	}
	it.SetGlobalFieldSetDefDb(w.Fields)
	it.SetGlobalElementSetDefDb(w.Elements)

	s := &walk{w: w, it: it}
	root := &Node{Type: dt.String()}
	if dt == rwf.DataTypeArray {
		err := s.array(root)
		return root, s.nodes, err
	}
	if !dt.IsContainer() {
		v, err := rwf.NewPrimitive(dt)
		if err != nil {
			return nil, 0, err
		}
		switch err := v.Decode(it); {
		case errors.Is(err, rwf.BlankData):
			root.Blank = true
		case err != nil:
			return nil, 1, err
		default:
			root.Value = render(v)
		}
		return root, 1, nil
	}
	if !isWalkable(dt) {
		// Opaque, XML, JSON, ANSI page and messages are rendered raw.
		root.Value = hex.EncodeToString(p)
		return root, 1, nil
	}
	err := s.container(root, dt, setDefs{})
	return root, s.nodes, err
}

func resultName(c rwf.Code) string {
	switch c {
	case rwf.IncompleteData:
		return "INCOMPLETE_DATA"
	case rwf.InvalidArgument:
		return "INVALID_ARGUMENT"
	case rwf.DepthExceeded:
		return "DEPTH_EXCEEDED"
	case rwf.BufferTooSmall:
		return "BUFFER_TOO_SMALL"
	}
	return "FAILURE"
}

// setDefs are the local definitions a map, series or vector carries for
// its entries.
type setDefs struct {
	fields   *rwf.LocalFieldSetDefDb
	elements *rwf.LocalElementSetDefDb
}

// container decodes the container the iterator is positioned at into n.
// NoData leaves n empty.
func (s *walk) container(n *Node, dt rwf.DataType, defs setDefs) error {
	s.nodes++
	var err error
	switch dt {
	case rwf.DataTypeFieldList:
		err = s.fieldList(n, defs.fields)
	case rwf.DataTypeElementList:
		err = s.elementList(n, defs.elements)
	case rwf.DataTypeMap:
		err = s.mapContainer(n)
	case rwf.DataTypeSeries:
		err = s.series(n)
	case rwf.DataTypeVector:
		err = s.vector(n)
	case rwf.DataTypeFilterList:
		err = s.filterList(n)
	default:
		return nil
	}
	if errors.Is(err, rwf.NoData) {
		n.Blank = true
		return nil
	}
	return err
}

// payload renders an entry payload of type dt into n.
func (s *walk) payload(n *Node, dt rwf.DataType, raw []byte, defs setDefs) error {
	n.Type = dt.String()
	switch {
	case dt == rwf.DataTypeArray:
		return s.array(n)
	case dt.IsContainer() && isWalkable(dt):
		return s.container(n, dt, defs)
	case dt.IsContainer():
		n.Value = hex.EncodeToString(raw)
		return nil
	}
	return s.primitive(n, dt)
}

func isWalkable(dt rwf.DataType) bool {
	switch dt {
	case rwf.DataTypeFieldList, rwf.DataTypeElementList, rwf.DataTypeMap, rwf.DataTypeSeries,
		rwf.DataTypeVector, rwf.DataTypeFilterList:
		return true
	}
	return false
}

func (s *walk) primitive(n *Node, dt rwf.DataType) error {
	s.nodes++
	v, err := rwf.NewPrimitive(dt)
	if err != nil {
		return err
	}
	n.Type = v.DataType().String()
	switch err := v.Decode(s.it); {
	case errors.Is(err, rwf.BlankData):
		n.Blank = true
	case err != nil:
		// A malformed value spoils only itself; the entry framing is intact.
		n.Error = err.Error()
	default:
		n.Value = render(v)
	}
	return nil
}

func render(v rwf.Primitive) string {
	if b, ok := v.(*rwf.Buffer); ok && b.DataType() == rwf.DataTypeBuffer {
		return hex.EncodeToString(b.Bytes())
	}
	return v.String()
}

func (s *walk) fieldList(n *Node, local *rwf.LocalFieldSetDefDb) error {
	var fl rwf.FieldList
	if err := fl.Decode(s.it, local); err != nil {
		return err
	}
	var e rwf.FieldEntry
	for {
		err := e.Decode(s.it)
		if errors.Is(err, rwf.EndOfContainer) {
			return nil
		}
		if err != nil {
			return err
		}
		c := n.add(&Node{Name: strconv.Itoa(int(e.FieldID))})
		dt := e.DataType
		if dt == rwf.DataTypeUnknown {
			dt = s.w.FieldTypes[e.FieldID]
		}
		if dt == rwf.DataTypeUnknown {
			s.nodes++
			c.Type = dt.String()
			c.Value = hex.EncodeToString(e.EncodedData)
			continue
		}
		if err := s.payload(c, dt, e.EncodedData, setDefs{}); err != nil {
			return err
		}
	}
}

func (s *walk) elementList(n *Node, local *rwf.LocalElementSetDefDb) error {
	var el rwf.ElementList
	if err := el.Decode(s.it, local); err != nil {
		return err
	}
	var e rwf.ElementEntry
	for {
		err := e.Decode(s.it)
		if errors.Is(err, rwf.EndOfContainer) {
			return nil
		}
		if err != nil {
			return err
		}
		c := n.add(&Node{Name: e.Name})
		if err := s.payload(c, e.DataType, e.EncodedData, setDefs{}); err != nil {
			return err
		}
	}
}

// localDefs decodes the set definitions of the open container for entries
// of type dt.
func (s *walk) localDefs(dt rwf.DataType) (setDefs, error) {
	switch dt {
	case rwf.DataTypeFieldList:
		db := rwf.NewLocalFieldSetDefDb()
		return setDefs{fields: db}, db.Decode(s.it)
	case rwf.DataTypeElementList:
		db := rwf.NewLocalElementSetDefDb()
		return setDefs{elements: db}, db.Decode(s.it)
	}
	return setDefs{}, nil
}

// summary decodes summary data, which the iterator is bounded to right
// after the container header.
func (s *walk) summary(n *Node, dt rwf.DataType, present bool, defs setDefs) error {
	if !present {
		return nil
	}
	return s.payload(n.add(&Node{Name: "summary"}), dt, nil, defs)
}

func (s *walk) mapContainer(n *Node) error {
	var m rwf.Map
	if err := m.Decode(s.it); err != nil {
		return err
	}
	var defs setDefs
	if m.Flags&rwf.MapHasSetDefs != 0 {
		var err error
		if defs, err = s.localDefs(m.ContainerType); err != nil {
			return err
		}
	}
	if err := s.summary(n, m.ContainerType, m.Flags&rwf.MapHasSummaryData != 0, defs); err != nil {
		return err
	}
	key, err := rwf.NewPrimitive(m.KeyPrimitiveType)
	if err != nil {
		return err
	}
	var e rwf.MapEntry
	for {
		err := e.Decode(s.it, key)
		if errors.Is(err, rwf.EndOfContainer) {
			return nil
		}
		if err != nil {
			return err
		}
		c := n.add(&Node{Name: render(key), Action: e.Action.String(), Perm: hex.EncodeToString(e.PermData)})
		if key.IsBlank() {
			c.Name = ""
		}
		if e.Action == rwf.MapEntryActionDelete {
			c.Type = m.ContainerType.String()
			continue
		}
		if err := s.payload(c, m.ContainerType, e.EncodedData, defs); err != nil {
			return err
		}
	}
}

func (s *walk) series(n *Node) error {
	var sr rwf.Series
	if err := sr.Decode(s.it); err != nil {
		return err
	}
	var defs setDefs
	if sr.Flags&rwf.SeriesHasSetDefs != 0 {
		var err error
		if defs, err = s.localDefs(sr.ContainerType); err != nil {
			return err
		}
	}
	if err := s.summary(n, sr.ContainerType, sr.Flags&rwf.SeriesHasSummaryData != 0, defs); err != nil {
		return err
	}
	var e rwf.SeriesEntry
	for i := 0; ; i++ {
		err := e.Decode(s.it)
		if errors.Is(err, rwf.EndOfContainer) {
			return nil
		}
		if err != nil {
			return err
		}
		c := n.add(&Node{Name: strconv.Itoa(i)})
		if err := s.payload(c, sr.ContainerType, e.EncodedData, defs); err != nil {
			return err
		}
	}
}

func (s *walk) vector(n *Node) error {
	var v rwf.Vector
	if err := v.Decode(s.it); err != nil {
		return err
	}
	var defs setDefs
	if v.Flags&rwf.VectorHasSetDefs != 0 {
		var err error
		if defs, err = s.localDefs(v.ContainerType); err != nil {
			return err
		}
	}
	if err := s.summary(n, v.ContainerType, v.Flags&rwf.VectorHasSummaryData != 0, defs); err != nil {
		return err
	}
	var e rwf.VectorEntry
	for {
		err := e.Decode(s.it)
		if errors.Is(err, rwf.EndOfContainer) {
			return nil
		}
		if err != nil {
			return err
		}
		c := n.add(&Node{
			Name:   strconv.FormatUint(uint64(e.Index), 10),
			Type:   v.ContainerType.String(),
			Action: e.Action.String(),
			Perm:   hex.EncodeToString(e.PermData),
		})
		if e.Action == rwf.VectorEntryActionClear || e.Action == rwf.VectorEntryActionDelete {
			continue
		}
		if err := s.payload(c, v.ContainerType, e.EncodedData, defs); err != nil {
			return err
		}
	}
}

func (s *walk) filterList(n *Node) error {
	var f rwf.FilterList
	if err := f.Decode(s.it); err != nil {
		return err
	}
	var e rwf.FilterEntry
	for {
		err := e.Decode(s.it)
		if errors.Is(err, rwf.EndOfContainer) {
			return nil
		}
		if err != nil {
			return err
		}
		c := n.add(&Node{
			Name:   strconv.Itoa(int(e.ID)),
			Type:   e.ContainerType.String(),
			Action: e.Action.String(),
			Perm:   hex.EncodeToString(e.PermData),
		})
		if e.Action == rwf.FilterEntryActionClear {
			continue
		}
		if err := s.payload(c, e.ContainerType, e.EncodedData, setDefs{}); err != nil {
			return err
		}
	}
}

func (s *walk) array(n *Node) error {
	s.nodes++
	var a rwf.Array
	switch err := a.Decode(s.it); {
	case errors.Is(err, rwf.BlankData):
		n.Blank = true
		return nil
	case err != nil:
		return err
	}
	var e rwf.ArrayEntry
	for i := 0; ; i++ {
		err := e.Decode(s.it)
		if errors.Is(err, rwf.EndOfContainer) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := s.primitive(n.add(&Node{Name: strconv.Itoa(i)}), a.PrimitiveType); err != nil {
			return err
		}
	}
}

// ParseFieldTypes reads "<field>:<TYPE>" hints, e.g. "22:REAL", into a
// FieldTypes map.
func ParseFieldTypes(raw []string) (map[int16]rwf.DataType, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[int16]rwf.DataType, len(raw))
	for _, item := range raw {
		id, name, ok := strings.Cut(item, ":")
		if !ok {
			return nil, fmt.Errorf("type %q: want <field>:<TYPE>", item)
		}
		fid, err := strconv.ParseInt(strings.TrimSpace(id), 10, 16)
		if err != nil {
			return nil, fmt.Errorf("type %q: bad field id", item)
		}
		dt, ok := rwf.ParseDataType(strings.ToUpper(strings.TrimSpace(name)))
		if !ok || dt == rwf.DataTypeUnknown {
			return nil, fmt.Errorf("type %q: unknown type", item)
		}
		out[int16(fid)] = dt
	}
	return out, nil
}
