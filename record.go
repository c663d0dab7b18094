// Typed records.
//
// The field schemas of the engine's record classes (RPG::Actor,
// RPG::Skill, ...) belong to the data model, not to this package. Here a
// record is anything that can name its class, expose its id and hand back
// the Value it encodes to. Record is the default implementation: a thin
// view over a decoded object whose "@id" instance variable is the id.
package rvdata

import "fmt"

// Entry is a record that can live in a Collection.
type Entry interface {
	Class() string
	ID() int
	SetID(id int)
	Value() *Value
}

// Factory converts a decoded value into a record of one kind. It returns
// an error for values it cannot interpret; Collection loading treats
// that as "not this kind" and drops the value.
type Factory[T Entry] func(v *Value) (T, error)

// Record is a record backed directly by a decoded object.
type Record struct {
	v *Value
}

// NewRecord creates an empty record of the given class with id set.
func NewRecord(class string, id int) *Record {
	r := &Record{v: Object(class)}
	r.SetID(id)
	return r
}

// AsRecord wraps v. It fails with ErrType unless v is an object.
func AsRecord(v *Value) (*Record, error) {
	if v.Kind() != KindObject {
		return nil, fmt.Errorf("%w: want object, got %s", ErrType, v.Kind())
	}
	return &Record{v: v}, nil
}

// RecordFactory returns a Factory accepting objects of class whose id is
// a non-negative integer.
func RecordFactory(class string) Factory[*Record] {
	return func(v *Value) (*Record, error) {
		if v.Kind() != KindObject || v.Class() != class {
			return nil, fmt.Errorf("%w: want %s, got %s %q", ErrType, class, v.Kind(), v.Class())
		}
		id, ok := v.Field("id").Int()
		if !ok || id < 0 {
			return nil, fmt.Errorf("%w: %s without a valid id", ErrFormat, class)
		}
		return &Record{v: v}, nil
	}
}

// Class returns the record's class name.
func (r *Record) Class() string {
	return r.v.Class()
}

// ID returns the "@id" field, or -1 when absent.
func (r *Record) ID() int {
	id, ok := r.v.Field("id").Int()
	if !ok {
		return -1
	}
	return int(id)
}

// SetID sets the "@id" field.
func (r *Record) SetID(id int) {
	r.v.SetField("id", Int(int64(id)))
}

// Value returns the underlying object.
func (r *Record) Value() *Value {
	return r.v
}

// Get returns a field by name; the '@' may be omitted.
func (r *Record) Get(name string) *Value {
	return r.v.Field(name)
}

// Set replaces or adds a field.
func (r *Record) Set(name string, val *Value) {
	r.v.SetField(name, val)
}

// Name returns the "@name" field as text, which most record classes carry.
func (r *Record) Name() string {
	return r.v.Field("name").Text()
}
