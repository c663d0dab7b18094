// Id-indexed record collections.
//
// On disk a collection is a Marshal array whose position is the record
// id: element 0 is a nil placeholder, element i holds the record with id
// i, and unused ids are nil. Collection keeps the same sparse shape in
// memory so that a load/save cycle reproduces every id exactly.
//
// Loading is deliberately lenient. Anything that is not a record of the
// collection's class is dropped, including the leading nil and records
// whose id is above MaxID, and when two
// elements claim the same id the later one wins. Interactive edits go
// through Add instead, which never overwrites: a clashing item is moved to
// the lowest free id.
package rvdata

import (
	"fmt"
	"iter"
)

// MaxID is the largest id a collection slot can hold.
const MaxID = 1 << 20

// Item is the constraint for collection elements.
type Item interface {
	comparable
	Entry
}

type slot[T any] struct {
	item T
	ok   bool
}

// Collection is a sparse 1-based array of records of one class. For every
// occupied slot i the stored item's ID() is i.
type Collection[T Item] struct {
	class string
	slots []slot[T] // slot 0 always exists and is never auto-assigned
	count int
}

// NewCollection creates an empty collection for records of class.
func NewCollection[T Item](class string) *Collection[T] {
	return &Collection[T]{class: class, slots: make([]slot[T], 1)}
}

// Class returns the record class the collection accepts.
func (c *Collection[T]) Class() string {
	return c.class
}

// Len returns the number of occupied slots.
func (c *Collection[T]) Len() int {
	return c.count
}

// Cap returns the number of slots, occupied or not, including slot 0.
func (c *Collection[T]) Cap() int {
	return len(c.slots)
}

func (c *Collection[T]) occupied(id int) bool {
	return id >= 0 && id < len(c.slots) && c.slots[id].ok
}

func (c *Collection[T]) put(id int, item T) {
	if id >= len(c.slots) {
		c.slots = append(c.slots, make([]slot[T], id+1-len(c.slots))...)
	}
	if !c.slots[id].ok {
		c.count++
	}
	c.slots[id] = slot[T]{item: item, ok: true}
}

// Insert stores item at its own id, replacing any previous occupant.
// Loading uses this; later duplicates win.
func (c *Collection[T]) Insert(item T) error {
	if item.Class() != c.class {
		return fmt.Errorf("%w: %s collection cannot hold %s", ErrType, c.class, item.Class())
	}
	id := item.ID()
	if id < 0 || id > MaxID {
		return fmt.Errorf("%w: %s id %d", ErrFormat, c.class, id)
	}
	c.put(id, item)
	return nil
}

// Add stores item without overwriting anything. If its id is taken (or
// is below 1) the item is given NextID() first. Adding an item that is
// already stored at its id is a no-op. Ids above MaxID are rejected.
func (c *Collection[T]) Add(item T) error {
	if item.Class() != c.class {
		return fmt.Errorf("%w: %s collection cannot hold %s", ErrType, c.class, item.Class())
	}
	id := item.ID()
	if id > MaxID {
		return fmt.Errorf("%w: %s id %d", ErrFormat, c.class, id)
	}
	if c.occupied(id) && c.slots[id].item == item {
		return nil
	}
	if id < 1 || c.occupied(id) {
		id = c.NextID()
		if id > MaxID {
			return fmt.Errorf("%w: %s collection is full", ErrFormat, c.class)
		}
		item.SetID(id)
	}
	c.put(id, item)
	return nil
}

// Delete removes item if it is the occupant of its id slot.
func (c *Collection[T]) Delete(item T) bool {
	id := item.ID()
	if !c.occupied(id) || c.slots[id].item != item {
		return false
	}
	return c.DeleteID(id)
}

// DeleteID empties slot id. It reports whether the slot was occupied.
func (c *Collection[T]) DeleteID(id int) bool {
	if !c.occupied(id) {
		return false
	}
	c.slots[id] = slot[T]{}
	c.count--
	return true
}

// Get returns the item with the given id.
func (c *Collection[T]) Get(id int) (T, bool) {
	if !c.occupied(id) {
		var zero T
		return zero, false
	}
	return c.slots[id].item, true
}

// All yields occupied slots in ascending id order. Each range over the
// returned sequence starts from the beginning.
func (c *Collection[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for id, s := range c.slots {
			if !s.ok {
				continue
			}
			if !yield(id, s.item) {
				return
			}
		}
	}
}

// NextID returns the lowest empty id from 1 upward, or the slot count when
// every slot is taken. It never returns 0.
func (c *Collection[T]) NextID() int {
	for id := 1; id < len(c.slots); id++ {
		if !c.slots[id].ok {
			return id
		}
	}
	return max(len(c.slots), 1)
}

// LoadCollection reads a collection file. The root must be an array
// (ErrFormat otherwise); elements the factory rejects are dropped.
func LoadCollection[T Item](path, class string, factory Factory[T]) (*Collection[T], error) {
	data, err := readPath(path)
	if err != nil {
		return nil, err
	}
	c := NewCollection[T](class)
	if err := c.decode(data, factory); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func (c *Collection[T]) decode(data []byte, factory Factory[T]) error {
	root, err := Decode(data)
	if err != nil {
		return err
	}
	if root.Kind() != KindArray {
		return fmt.Errorf("%w: collection root is %s, want array", ErrFormat, root.Kind())
	}
	for _, v := range root.Items() {
		item, err := factory(v)
		if err != nil || item.Class() != c.class || item.ID() < 0 || item.ID() > MaxID {
			continue
		}
		c.put(item.ID(), item)
	}
	return nil
}

// Save writes the collection to path, replacing the file atomically.
// config.SyncWrites controls the fsync before rename.
func (c *Collection[T]) Save(path string, config Config) error {
	data, err := c.encode()
	if err != nil {
		return err
	}
	return writePath(path, data, config.SyncWrites)
}

// encode renders the full slot array, empty slots as nil. Array position
// is the id.
func (c *Collection[T]) encode() ([]byte, error) {
	items := make([]*Value, len(c.slots))
	for id, s := range c.slots {
		if s.ok {
			items[id] = s.item.Value()
		} else {
			items[id] = Nil()
		}
	}
	return Encode(Array(items...))
}
