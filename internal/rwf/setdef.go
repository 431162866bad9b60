package rwf

import (
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
)

const (
	// MaxLocalSetID is the highest id a buffer-local set definition may use.
	MaxLocalSetID = 15
	// MaxGlobalSetID is the highest id a shared set definition may use.
	MaxGlobalSetID = 65535
	// BlankSetDefID marks an unused database slot.
	BlankSetDefID = 65536
)

type FieldSetDefEntry struct {
	FieldID  int16
	DataType DataType
}

// FieldSetDef lists the fields, in wire order, that a field list carries
// without per-entry ids or lengths.
type FieldSetDef struct {
	SetID   int
	Entries []FieldSetDefEntry
}

type ElementSetDefEntry struct {
	Name     string
	DataType DataType
}

type ElementSetDef struct {
	SetID   int
	Entries []ElementSetDefEntry
}

func (d *FieldSetDef) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Entries)
}

func (d *ElementSetDef) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Entries)
}

// setDefCount is the number of set entries the level's active definition
// expects.
func setDefCount(l *encodingLevel) int {
	switch {
	case l.fieldSetDef != nil:
		return l.fieldSetDef.Len()
	case l.elementSetDef != nil:
		return l.elementSetDef.Len()
	}
	return 0
}

// LocalFieldSetDefDb holds the field set definitions carried inside a map,
// series or vector. Slots are indexed by set id. The zero value holds no
// definitions; fill slots with Set or Decode.
type LocalFieldSetDefDb struct {
	Definitions [MaxLocalSetID + 1]FieldSetDef
	defined     [MaxLocalSetID + 1]bool
}

func NewLocalFieldSetDefDb() *LocalFieldSetDefDb {
	db := &LocalFieldSetDefDb{}
	db.Clear()
	return db
}

// Clear blanks every slot and keeps the entry storage.
func (db *LocalFieldSetDefDb) Clear() {
	for i := range db.Definitions {
		db.Definitions[i].SetID = BlankSetDefID
		db.Definitions[i].Entries = db.Definitions[i].Entries[:0]
		db.defined[i] = false
	}
}

// Definition returns the definition for id, or nil when the slot is blank.
func (db *LocalFieldSetDefDb) Definition(id int) *FieldSetDef {
	if db == nil || id < 0 || id > MaxLocalSetID || !db.defined[id] {
		return nil
	}
	return &db.Definitions[id]
}

// Set stores def in the slot its SetID names.
func (db *LocalFieldSetDefDb) Set(def FieldSetDef) error {
	if def.SetID < 0 || def.SetID > MaxLocalSetID {
		return errorf(InvalidArgument, "local field set defs", "set id %d outside 0..%d", def.SetID, MaxLocalSetID)
	}
	if len(def.Entries) > 0xFF {
		return errorf(InvalidArgument, "local field set defs", "%d entries exceed 255", len(def.Entries))
	}
	def.Entries = append(db.Definitions[def.SetID].Entries[:0], def.Entries...)
	db.Definitions[def.SetID] = def
	db.defined[def.SetID] = true
	return nil
}

func (db *LocalFieldSetDefDb) Encode(it *EncodeIterator) error {
	const op = "encode local field set defs"
	if err := it.checkSetDefsPosition(op); err != nil {
		return err
	}
	var ids []int
	for i := range db.Definitions {
		if db.defined[i] {
			ids = append(ids, i)
		}
	}
	start := it.cur
	err := it.putU8(op, 0)
	if err == nil {
		err = it.putU8(op, uint8(len(ids)))
	}
	for _, id := range ids {
		if err != nil {
			break
		}
		def := &db.Definitions[id]
		if err = it.putUShort15rb(op, uint16(id)); err != nil {
			break
		}
		if err = it.putU8(op, uint8(len(def.Entries))); err != nil {
			break
		}
		for _, e := range def.Entries {
			if err = it.putU16(op, uint16(e.FieldID)); err != nil {
				break
			}
			if err = it.putU8(op, uint8(e.DataType)); err != nil {
				break
			}
		}
	}
	if err != nil {
		it.cur = start
	}
	return err
}

// Decode reads the set definitions of the open map, series or vector, or
// the whole payload when no container is open.
func (db *LocalFieldSetDefDb) Decode(it *DecodeIterator) error {
	p, err := it.setDefsPayload("decode local field set defs")
	if err != nil {
		return err
	}
	return db.DecodeBytes(p)
}

func (db *LocalFieldSetDefDb) DecodeBytes(p []byte) error {
	const op = "decode local field set defs"
	db.Clear()
	r := reader{data: p, end: len(p)}
	count, err := readSetDefsHeader(&r, op)
	if err != nil {
		return err
	}
	for i := 0; i < count; i++ {
		id, n := readSetDefID(&r)
		if err := r.result(op); err != nil {
			return err
		}
		if err := checkLocalSetID(op, id, db.defined[min(id, MaxLocalSetID)]); err != nil {
			return err
		}
		def := &db.Definitions[id]
		def.SetID = id
		db.defined[id] = true
		for j := 0; j < n; j++ {
			fid := int16(r.u16())
			dt := DataType(r.u8())
			def.Entries = append(def.Entries, FieldSetDefEntry{FieldID: fid, DataType: dt})
		}
		if err := r.result(op); err != nil {
			return err
		}
	}
	return nil
}

// LocalElementSetDefDb is the element list counterpart of
// LocalFieldSetDefDb.
type LocalElementSetDefDb struct {
	Definitions [MaxLocalSetID + 1]ElementSetDef
	defined     [MaxLocalSetID + 1]bool
}

func NewLocalElementSetDefDb() *LocalElementSetDefDb {
	db := &LocalElementSetDefDb{}
	db.Clear()
	return db
}

func (db *LocalElementSetDefDb) Clear() {
	for i := range db.Definitions {
		db.Definitions[i].SetID = BlankSetDefID
		db.Definitions[i].Entries = db.Definitions[i].Entries[:0]
		db.defined[i] = false
	}
}

func (db *LocalElementSetDefDb) Definition(id int) *ElementSetDef {
	if db == nil || id < 0 || id > MaxLocalSetID || !db.defined[id] {
		return nil
	}
	return &db.Definitions[id]
}

func (db *LocalElementSetDefDb) Set(def ElementSetDef) error {
	if def.SetID < 0 || def.SetID > MaxLocalSetID {
		return errorf(InvalidArgument, "local element set defs", "set id %d outside 0..%d", def.SetID, MaxLocalSetID)
	}
	if len(def.Entries) > 0xFF {
		return errorf(InvalidArgument, "local element set defs", "%d entries exceed 255", len(def.Entries))
	}
	def.Entries = append(db.Definitions[def.SetID].Entries[:0], def.Entries...)
	db.Definitions[def.SetID] = def
	db.defined[def.SetID] = true
	return nil
}

func (db *LocalElementSetDefDb) Encode(it *EncodeIterator) error {
	const op = "encode local element set defs"
	if err := it.checkSetDefsPosition(op); err != nil {
		return err
	}
	var ids []int
	for i := range db.Definitions {
		if db.defined[i] {
			ids = append(ids, i)
		}
	}
	start := it.cur
	err := it.putU8(op, 0)
	if err == nil {
		err = it.putU8(op, uint8(len(ids)))
	}
	for _, id := range ids {
		if err != nil {
			break
		}
		def := &db.Definitions[id]
		if err = it.putUShort15rb(op, uint16(id)); err != nil {
			break
		}
		if err = it.putU8(op, uint8(len(def.Entries))); err != nil {
			break
		}
		for _, e := range def.Entries {
			if err = it.putBuf15(op, []byte(e.Name)); err != nil {
				break
			}
			if err = it.putU8(op, uint8(e.DataType)); err != nil {
				break
			}
		}
	}
	if err != nil {
		it.cur = start
	}
	return err
}

func (db *LocalElementSetDefDb) Decode(it *DecodeIterator) error {
	p, err := it.setDefsPayload("decode local element set defs")
	if err != nil {
		return err
	}
	return db.DecodeBytes(p)
}

func (db *LocalElementSetDefDb) DecodeBytes(p []byte) error {
	const op = "decode local element set defs"
	db.Clear()
	r := reader{data: p, end: len(p)}
	count, err := readSetDefsHeader(&r, op)
	if err != nil {
		return err
	}
	for i := 0; i < count; i++ {
		id, n := readSetDefID(&r)
		if err := r.result(op); err != nil {
			return err
		}
		if err := checkLocalSetID(op, id, db.defined[min(id, MaxLocalSetID)]); err != nil {
			return err
		}
		def := &db.Definitions[id]
		def.SetID = id
		db.defined[id] = true
		for j := 0; j < n; j++ {
			start, end := r.buf15()
			dt := DataType(r.u8())
			def.Entries = append(def.Entries, ElementSetDefEntry{Name: string(r.bytes(start, end)), DataType: dt})
		}
		if err := r.result(op); err != nil {
			return err
		}
	}
	return nil
}

func readSetDefsHeader(r *reader, op string) (int, error) {
	if r.end-r.pos < 2 {
		return 0, errorf(IncompleteData, op, "%d bytes, need at least 2", r.end-r.pos)
	}
	r.u8() // flags, reserved
	count := int(r.u8())
	if count == 0 {
		log.Warn().Str("op", op).Msg("rwf: empty set definition database rejected")
		return 0, errorf(Failure, op, "database holds no definitions")
	}
	if count > MaxLocalSetID+1 {
		log.Warn().Str("op", op).Int("count", count).Msg("rwf: oversized set definition database rejected")
		return 0, errorf(Failure, op, "%d definitions exceed %d", count, MaxLocalSetID+1)
	}
	return count, nil
}

func readSetDefID(r *reader) (int, int) {
	id := int(r.ushort15rb())
	n := int(r.u8())
	return id, n
}

func checkLocalSetID(op string, id int, taken bool) error {
	if id > MaxLocalSetID {
		log.Warn().Str("op", op).Int("set_id", id).Msg("rwf: illegal local set id rejected")
		return errorf(Failure, op, "set id %d exceeds %d", id, MaxLocalSetID)
	}
	if taken {
		log.Warn().Str("op", op).Int("set_id", id).Msg("rwf: duplicate local set id rejected")
		return errorf(Failure, op, "set id %d defined twice", id)
	}
	return nil
}

// checkSetDefsPosition allows set definitions at the top level or inside
// an open set definitions section.
func (it *EncodeIterator) checkSetDefsPosition(op string) error {
	if it.buf == nil {
		return errorf(InvalidArgument, op, "no buffer bound")
	}
	if l := it.current(); l != nil && l.state != levelSetDefs {
		return errorf(InvalidArgument, op, "%s level is not encoding set definitions", l.containerType)
	}
	return nil
}

// setDefsPayload returns the encoded set definitions of the open level,
// or the remaining payload when no level is open.
func (it *DecodeIterator) setDefsPayload(op string) ([]byte, error) {
	if it.data == nil {
		return nil, errorf(InvalidArgument, op, "no buffer bound")
	}
	if it.level < 0 {
		return it.payload(op)
	}
	l := &it.levels[it.level]
	switch l.containerType {
	case DataTypeMap, DataTypeSeries, DataTypeVector:
	default:
		return nil, errorf(InvalidArgument, op, "%s carries no set definitions", l.containerType)
	}
	if l.setDefsEnd <= l.setDefsPos {
		return nil, errorf(InvalidArgument, op, "%s has no set definitions", l.containerType)
	}
	return it.data[l.setDefsPos:l.setDefsEnd], nil
}

// GlobalFieldSetDefDb holds field set definitions shared across messages,
// ids MaxLocalSetID+1 through MaxGlobalSetID. It is safe for concurrent
// use.
type GlobalFieldSetDefDb struct {
	mu   sync.RWMutex
	defs map[int]*FieldSetDef
}

func NewGlobalFieldSetDefDb() *GlobalFieldSetDefDb {
	return &GlobalFieldSetDefDb{defs: make(map[int]*FieldSetDef)}
}

func (db *GlobalFieldSetDefDb) Add(def FieldSetDef) error {
	if err := checkGlobalSetID("global field set defs", def.SetID, len(def.Entries)); err != nil {
		return err
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.defs[def.SetID]; ok {
		return errorf(InvalidArgument, "global field set defs", "set id %d already defined", def.SetID)
	}
	def.Entries = append([]FieldSetDefEntry(nil), def.Entries...)
	db.defs[def.SetID] = &def
	return nil
}

func (db *GlobalFieldSetDefDb) Definition(id int) *FieldSetDef {
	if db == nil {
		return nil
	}
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.defs[id]
}

// IDs lists the defined set ids in ascending order.
func (db *GlobalFieldSetDefDb) IDs() []int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	ids := make([]int, 0, len(db.defs))
	for id := range db.defs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (db *GlobalFieldSetDefDb) Len() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.defs)
}

func (db *GlobalFieldSetDefDb) Clear() {
	db.mu.Lock()
	clear(db.defs)
	db.mu.Unlock()
}

type GlobalElementSetDefDb struct {
	mu   sync.RWMutex
	defs map[int]*ElementSetDef
}

func NewGlobalElementSetDefDb() *GlobalElementSetDefDb {
	return &GlobalElementSetDefDb{defs: make(map[int]*ElementSetDef)}
}

func (db *GlobalElementSetDefDb) Add(def ElementSetDef) error {
	if err := checkGlobalSetID("global element set defs", def.SetID, len(def.Entries)); err != nil {
		return err
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.defs[def.SetID]; ok {
		return errorf(InvalidArgument, "global element set defs", "set id %d already defined", def.SetID)
	}
	def.Entries = append([]ElementSetDefEntry(nil), def.Entries...)
	db.defs[def.SetID] = &def
	return nil
}

func (db *GlobalElementSetDefDb) Definition(id int) *ElementSetDef {
	if db == nil {
		return nil
	}
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.defs[id]
}

func (db *GlobalElementSetDefDb) IDs() []int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	ids := make([]int, 0, len(db.defs))
	for id := range db.defs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (db *GlobalElementSetDefDb) Len() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.defs)
}

func (db *GlobalElementSetDefDb) Clear() {
	db.mu.Lock()
	clear(db.defs)
	db.mu.Unlock()
}

func checkGlobalSetID(op string, id, entries int) error {
	if id <= MaxLocalSetID || id > MaxGlobalSetID {
		return errorf(InvalidArgument, op, "set id %d outside %d..%d", id, MaxLocalSetID+1, MaxGlobalSetID)
	}
	if entries > 0xFF {
		return errorf(InvalidArgument, op, "%d entries exceed 255", entries)
	}
	return nil
}

// fieldSetDef resolves id against local ids first, then the shared db.
func fieldSetDef(local *LocalFieldSetDefDb, global *GlobalFieldSetDefDb, id int) *FieldSetDef {
	if id <= MaxLocalSetID {
		return local.Definition(id)
	}
	return global.Definition(id)
}

func elementSetDef(local *LocalElementSetDefDb, global *GlobalElementSetDefDb, id int) *ElementSetDef {
	if id <= MaxLocalSetID {
		return local.Definition(id)
	}
	return global.Definition(id)
}
