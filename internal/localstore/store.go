// Package localstore is the on-device fallback store. Each collection is a
// single key in an embedded BadgerDB holding a JSON array of records, and every
// operation reads, modifies and rewrites the whole array in one transaction.
package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"homebase/internal/apperr"
	"homebase/internal/model"
)

const keyPrefix = "homebase_"

// Config selects where the store keeps its files.
type Config struct {
	// Path is the data directory. Ignored when InMemory is set.
	Path string
	// InMemory keeps everything in RAM; used by tests.
	InMemory   bool
	SyncWrites bool
}

// Store is a durable per-collection record store. Collection writes are
// serialised so overlapping read-modify-write transactions never conflict.
type Store struct {
	db    *badger.DB
	mu    sync.Mutex
	now   func() time.Time
	newID func() string
}

// Open opens (creating if needed) the store described by cfg.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("local store path is required")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create local store directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).
		WithNumVersionsToKeep(1).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	return &Store{db: db, now: time.Now, newID: uuid.NewString}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func key(name string) []byte {
	return []byte(keyPrefix + name)
}

// read decodes the value under name into out, leaving out untouched when the key is absent.
func read(txn *badger.Txn, name string, out any) error {
	item, err := txn.Get(key(name))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	return item.Value(func(val []byte) error {
		if err := json.Unmarshal(val, out); err != nil {
			return fmt.Errorf("decode %s: %w", name, err)
		}
		return nil
	})
}

func write(txn *badger.Txn, name string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := txn.Set(key(name), b); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// List returns every record in the collection, oldest first.
func List[T any](s *Store, collection string) ([]T, error) {
	records := []T{}
	err := s.db.View(func(txn *badger.Txn) error {
		return read(txn, collection, &records)
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Get returns the record with the given id.
func Get[T model.Record](s *Store, collection, id string) (T, error) {
	var zero T
	records, err := List[T](s, collection)
	if err != nil {
		return zero, err
	}
	for _, r := range records {
		if r.RecordID() == id {
			return r, nil
		}
	}
	return zero, apperr.NotFound(model.RecordKind(collection), id)
}

// Create stores rec under a freshly generated id and creation timestamp.
func Create[T any, PT interface {
	*T
	model.Stamper
}](s *Store, collection string, rec T) (T, error) {
	PT(&rec).Stamp(s.newID(), s.now().UTC())
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.db.Update(func(txn *badger.Txn) error {
		var records []T
		if err := read(txn, collection, &records); err != nil {
			return err
		}
		records = append(records, rec)
		return write(txn, collection, records)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return rec, nil
}

// Update applies patch to the record with the given id and bumps its update
// time. Nothing is written when patch fails.
func Update[T any, PT interface {
	*T
	model.Record
	model.Stamper
}](s *Store, collection, id string, patch func(PT) error) (T, error) {
	var updated T
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.db.Update(func(txn *badger.Txn) error {
		var records []T
		if err := read(txn, collection, &records); err != nil {
			return err
		}
		for i := range records {
			p := PT(&records[i])
			if p.RecordID() != id {
				continue
			}
			if err := patch(p); err != nil {
				return err
			}
			p.Touch(s.now().UTC())
			updated = records[i]
			return write(txn, collection, records)
		}
		return apperr.NotFound(model.RecordKind(collection), id)
	})
	return updated, err
}

// Delete removes the record with the given id.
func Delete[T model.Record](s *Store, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Update(func(txn *badger.Txn) error {
		var records []T
		if err := read(txn, collection, &records); err != nil {
			return err
		}
		kept, removed := without(records, func(r T) bool { return r.RecordID() == id })
		if removed == 0 {
			return apperr.NotFound(model.RecordKind(collection), id)
		}
		return write(txn, collection, kept)
	})
}

// DeleteAppliance removes an appliance together with every maintenance task
// and contact that references it, in a single transaction.
func (s *Store) DeleteAppliance(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Update(func(txn *badger.Txn) error {
		var appliances []model.Appliance
		if err := read(txn, model.CollectionAppliances, &appliances); err != nil {
			return err
		}
		keptAppliances, removed := without(appliances, func(a model.Appliance) bool { return a.ID == id })
		if removed == 0 {
			return apperr.NotFound(model.RecordKind(model.CollectionAppliances), id)
		}

		var tasks []model.MaintenanceTask
		if err := read(txn, model.CollectionMaintenance, &tasks); err != nil {
			return err
		}
		keptTasks, _ := without(tasks, func(t model.MaintenanceTask) bool { return t.ApplianceID == id })

		var contacts []model.Contact
		if err := read(txn, model.CollectionContacts, &contacts); err != nil {
			return err
		}
		keptContacts, _ := without(contacts, func(c model.Contact) bool { return c.ApplianceID == id })

		if err := write(txn, model.CollectionMaintenance, keptTasks); err != nil {
			return err
		}
		if err := write(txn, model.CollectionContacts, keptContacts); err != nil {
			return err
		}
		return write(txn, model.CollectionAppliances, keptAppliances)
	})
}

func without[T any](records []T, drop func(T) bool) ([]T, int) {
	kept := make([]T, 0, len(records))
	for _, r := range records {
		if !drop(r) {
			kept = append(kept, r)
		}
	}
	return kept, len(records) - len(kept)
}

// LoadState returns the raw value stored under name, or nil when absent.
func (s *Store) LoadState(name string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return out, nil
}

// SaveState stores a raw value under name.
func (s *Store) SaveState(name string, data []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(name), data)
	})
	if err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	return nil
}
