// Database: the twelve record collections plus the System record.
//
// Load reads every file named by the schema and fails on the first error.
// Save writes the collections in schema order and then the System file.
// Each file is replaced atomically, but the set of files is not: if a
// save fails halfway, earlier files hold the new data and later ones the
// old. Callers that need all-or-nothing can save into a scratch directory
// and swap it into place.
package rvdata

import (
	"fmt"
	"os"
)

// Database holds one project's record collections and System record.
type Database struct {
	config      Config
	collections map[Category]*Collection[*Record]
	system      *Record
}

// NewDatabase creates an empty database. Every category in the schema
// gets an empty collection and the System record is nil until loaded or
// set. It must be set before Save.
func NewDatabase(config Config) *Database {
	config = config.withDefaults()
	db := &Database{
		config:      config,
		collections: make(map[Category]*Collection[*Record], len(config.Schema.Collections)),
	}
	for _, l := range config.Schema.Collections {
		db.collections[l.Category] = NewCollection[*Record](l.Class)
	}
	return db
}

// LoadDatabase reads a Data directory. The System file must decode to an
// object of the schema's System class, otherwise ErrType.
func LoadDatabase(dir string, config Config) (*Database, error) {
	db := NewDatabase(config)
	schema := db.config.Schema

	err := withRoot(dir, func(root *os.Root) error {
		for _, l := range schema.Collections {
			name := schema.FileName(l.File)
			data, err := readFile(root, name)
			if err != nil {
				return fmt.Errorf("load %s: %w", l.Category, err)
			}
			if err := db.collections[l.Category].decode(data, RecordFactory(l.Class)); err != nil {
				return fmt.Errorf("load %s: %w", name, err)
			}
		}

		name := schema.FileName(schema.System.File)
		data, err := readFile(root, name)
		if err != nil {
			return fmt.Errorf("load system: %w", err)
		}
		sys, err := decodeSystem(data, schema.System.Class)
		if err != nil {
			return fmt.Errorf("load %s: %w", name, err)
		}
		db.system = sys
		return nil
	})
	if err != nil {
		return nil, err
	}
	return db, nil
}

func decodeSystem(data []byte, class string) (*Record, error) {
	v, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if v.Kind() != KindObject || v.Class() != class {
		return nil, fmt.Errorf("%w: system is %s %q, want %s", ErrType, v.Kind(), v.Class(), class)
	}
	return &Record{v: v}, nil
}

// Save writes every collection, then the System record, into dir. A
// database without a System record cannot be loaded back, so Save refuses
// it with ErrType before writing anything.
func (db *Database) Save(dir string) error {
	schema := db.config.Schema
	if db.system == nil {
		return fmt.Errorf("%w: save %s: no System record", ErrType, dir)
	}
	return withRoot(dir, func(root *os.Root) error {
		for _, l := range schema.Collections {
			data, err := db.collections[l.Category].encode()
			if err != nil {
				return fmt.Errorf("save %s: %w", l.Category, err)
			}
			if err := writeFile(root, schema.FileName(l.File), data, db.config.SyncWrites); err != nil {
				return fmt.Errorf("save %s: %w", l.Category, err)
			}
		}

		data, err := Encode(db.system.Value())
		if err != nil {
			return fmt.Errorf("save system: %w", err)
		}
		if err := writeFile(root, schema.FileName(schema.System.File), data, db.config.SyncWrites); err != nil {
			return fmt.Errorf("save system: %w", err)
		}
		return nil
	})
}

// Collection returns the collection for a category, or nil if the schema
// has no such category.
func (db *Database) Collection(c Category) *Collection[*Record] {
	return db.collections[c]
}

// Categories returns the schema's categories in file order.
func (db *Database) Categories() []Category {
	out := make([]Category, len(db.config.Schema.Collections))
	for i, l := range db.config.Schema.Collections {
		out[i] = l.Category
	}
	return out
}

// System returns the System record.
func (db *Database) System() *Record {
	return db.system
}

// SetSystem replaces the System record. It fails with ErrType if the
// record is not of the schema's System class.
func (db *Database) SetSystem(r *Record) error {
	if r.Class() != db.config.Schema.System.Class {
		return fmt.Errorf("%w: system must be %s, got %s", ErrType, db.config.Schema.System.Class, r.Class())
	}
	db.system = r
	return nil
}

// Schema returns a copy of the database's layout.
func (db *Database) Schema() *Schema {
	return db.config.Schema.clone()
}
