package config

import (
	"fmt"
	"strings"

	"github.com/danmuck/rwfcodec/internal/rwf"
)

// FieldSetDefDb builds the global field database a "fields" entry
// declares.
func FieldSetDefDb(cfg SetDefsConfig) (*rwf.GlobalFieldSetDefDb, error) {
	if cfg.Kind != KindFields {
		return nil, fmt.Errorf("setdefs %q: kind %q is not %q", cfg.Name, cfg.Kind, KindFields)
	}
	db := rwf.NewGlobalFieldSetDefDb()
	for _, set := range cfg.Sets {
		def := rwf.FieldSetDef{SetID: set.ID}
		for _, e := range set.Entries {
			dt, err := setEntryType(e.Type)
			if err != nil {
				return nil, fmt.Errorf("setdefs %q set %d: %w", cfg.Name, set.ID, err)
			}
			def.Entries = append(def.Entries, rwf.FieldSetDefEntry{FieldID: e.Field, DataType: dt})
		}
		if err := db.Add(def); err != nil {
			return nil, fmt.Errorf("setdefs %q: %w", cfg.Name, err)
		}
	}
	return db, nil
}

// ElementSetDefDb builds the global element database an "elements" entry
// declares.
func ElementSetDefDb(cfg SetDefsConfig) (*rwf.GlobalElementSetDefDb, error) {
	if cfg.Kind != KindElements {
		return nil, fmt.Errorf("setdefs %q: kind %q is not %q", cfg.Name, cfg.Kind, KindElements)
	}
	db := rwf.NewGlobalElementSetDefDb()
	for _, set := range cfg.Sets {
		def := rwf.ElementSetDef{SetID: set.ID}
		for _, e := range set.Entries {
			dt, err := setEntryType(e.Type)
			if err != nil {
				return nil, fmt.Errorf("setdefs %q set %d: %w", cfg.Name, set.ID, err)
			}
			def.Entries = append(def.Entries, rwf.ElementSetDefEntry{Name: e.Name, DataType: dt})
		}
		if err := db.Add(def); err != nil {
			return nil, fmt.Errorf("setdefs %q: %w", cfg.Name, err)
		}
	}
	return db, nil
}

func setEntryType(name string) (rwf.DataType, error) {
	dt, ok := rwf.ParseDataType(strings.ToUpper(strings.TrimSpace(name)))
	if !ok {
		return 0, fmt.Errorf("unknown type %q", name)
	}
	return dt, nil
}
