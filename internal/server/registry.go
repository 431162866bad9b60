package server

import (
	"fmt"
	"sort"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/rwfcodec/internal/config"
	"github.com/danmuck/rwfcodec/internal/observability"
	"github.com/danmuck/rwfcodec/internal/rwf"
)

// Registry holds named global set definition databases. A database is
// replaced whole; the codec only ever reads one after it is stored.
type Registry struct {
	fields   *xsync.MapOf[string, *rwf.GlobalFieldSetDefDb]
	elements *xsync.MapOf[string, *rwf.GlobalElementSetDefDb]
}

func NewRegistry() *Registry {
	return &Registry{
		fields:   xsync.NewMapOf[string, *rwf.GlobalFieldSetDefDb](),
		elements: xsync.NewMapOf[string, *rwf.GlobalElementSetDefDb](),
	}
}

// Put builds and stores the database cfg declares, replacing any
// database of the same kind and name.
func (r *Registry) Put(cfg config.SetDefsConfig) error {
	if err := config.ValidateSetDefs(cfg); err != nil {
		return err
	}
	switch cfg.Kind {
	case config.KindFields:
		db, err := config.FieldSetDefDb(cfg)
		if err != nil {
			return err
		}
		r.fields.Store(cfg.Name, db)
	case config.KindElements:
		db, err := config.ElementSetDefDb(cfg)
		if err != nil {
			return err
		}
		r.elements.Store(cfg.Name, db)
	default:
		return fmt.Errorf("unknown setdefs kind %q", cfg.Kind)
	}
	observability.RecordSetDefUpdate(cfg.Kind)
	log.Info().Str("kind", cfg.Kind).Str("name", cfg.Name).Int("sets", len(cfg.Sets)).Msg("setdefs stored")
	return nil
}

func (r *Registry) Fields(name string) (*rwf.GlobalFieldSetDefDb, bool) {
	return r.fields.Load(name)
}

func (r *Registry) Elements(name string) (*rwf.GlobalElementSetDefDb, bool) {
	return r.elements.Load(name)
}

// Delete removes a database and reports whether it existed.
func (r *Registry) Delete(kind, name string) bool {
	switch kind {
	case config.KindFields:
		_, ok := r.fields.LoadAndDelete(name)
		return ok
	case config.KindElements:
		_, ok := r.elements.LoadAndDelete(name)
		return ok
	}
	return false
}

type SetDefsInfo struct {
	Kind   string `json:"kind"`
	Name   string `json:"name"`
	SetIDs []int  `json:"set_ids"`
}

// List describes every stored database, ordered by kind then name.
func (r *Registry) List() []SetDefsInfo {
	var out []SetDefsInfo
	r.fields.Range(func(name string, db *rwf.GlobalFieldSetDefDb) bool {
		out = append(out, SetDefsInfo{Kind: config.KindFields, Name: name, SetIDs: db.IDs()})
		return true
	})
	r.elements.Range(func(name string, db *rwf.GlobalElementSetDefDb) bool {
		out = append(out, SetDefsInfo{Kind: config.KindElements, Name: name, SetIDs: db.IDs()})
		return true
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Name < out[j].Name
	})
	return out
}
