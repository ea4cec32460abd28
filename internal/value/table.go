package value

import "errors"

const minTableCapacity = 8

// maxTableCapacity bounds the slot array; a table that would need more is full.
var maxTableCapacity = 1 << 24

// ErrTableFull is returned by Set when the table cannot grow any further.
var ErrTableFull = errors.New("map is full")

const (
	slotEmpty     int32 = -1
	slotTombstone int32 = -2
)

type tableEntry struct {
	key  string
	val  Value
	live bool
}

// Table is an open-addressed string-keyed hash table with tombstone deletion.
// Entries are kept in insertion order; slots index into them. The table owns
// one reference to every live value. The zero Table is empty and ready to use.
type Table struct {
	entries []tableEntry
	slots   []int32
	count   int // live entries
	filled  int // non-empty slots, tombstones included
}

func NewTable() *Table {
	return &Table{}
}

func hashKey(key string) uint32 {
	h := uint32(2166136261)
	for i := 0; i < len(key); i++ {
		h ^= uint32(key[i])
		h *= 16777619
	}
	return h
}

// find returns the slot holding key, or the slot where it should be inserted
// and false.
func (t *Table) find(key string) (int, bool) {
	mask := uint32(len(t.slots) - 1)
	i := hashKey(key) & mask
	tomb := -1
	for {
		switch s := t.slots[i]; s {
		case slotEmpty:
			if tomb >= 0 {
				return tomb, false
			}
			return int(i), false
		case slotTombstone:
			if tomb < 0 {
				tomb = int(i)
			}
		default:
			if t.entries[s].key == key {
				return int(i), true
			}
		}
		i = (i + 1) & mask
	}
}

func (t *Table) Len() int { return t.count }

// Capacity is the number of slots.
func (t *Table) Capacity() int { return len(t.slots) }

// Get returns the value stored under key, borrowed.
func (t *Table) Get(key string) (Value, bool) {
	if t.count == 0 {
		return Value{}, false
	}
	i, ok := t.find(key)
	if !ok {
		return Value{}, false
	}
	return t.entries[t.slots[i]].val, true
}

func (t *Table) Has(key string) bool {
	_, ok := t.Get(key)
	return ok
}

// Set stores v under key, taking ownership of v. A replaced value is released.
// On ErrTableFull the caller keeps ownership of v.
func (t *Table) Set(key string, v Value) error {
	// dead entries left by Delete are compacted once they outnumber live ones
	if len(t.slots) == 0 || (t.filled+1)*4 > len(t.slots)*3 ||
		len(t.entries) >= 2*t.count+minTableCapacity {
		if err := t.resize(); err != nil {
			return err
		}
	}

	i, ok := t.find(key)
	if ok {
		e := &t.entries[t.slots[i]]
		old := e.val
		e.val = v
		old.Release()
		return nil
	}

	if t.slots[i] == slotEmpty {
		t.filled++
	}
	t.slots[i] = int32(len(t.entries))
	t.entries = append(t.entries, tableEntry{key: key, val: v, live: true})
	t.count++
	return nil
}

// Delete removes key, releasing its value. It reports whether key was present.
func (t *Table) Delete(key string) bool {
	if t.count == 0 {
		return false
	}
	i, ok := t.find(key)
	if !ok {
		return false
	}
	e := &t.entries[t.slots[i]]
	old := e.val
	*e = tableEntry{}
	t.slots[i] = slotTombstone
	t.count--
	old.Release()
	return true
}

// resize rehashes into a slot array sized for the live entries, dropping
// tombstones and compacting the entry list.
func (t *Table) resize() error {
	capacity := minTableCapacity
	for (t.count+1)*2 > capacity {
		capacity *= 2
	}
	if capacity < len(t.slots) {
		capacity = len(t.slots)
	}
	if capacity > maxTableCapacity {
		return ErrTableFull
	}

	entries := make([]tableEntry, 0, t.count+1)
	for _, e := range t.entries {
		if e.live {
			entries = append(entries, e)
		}
	}

	t.entries = entries
	t.slots = make([]int32, capacity)
	for i := range t.slots {
		t.slots[i] = slotEmpty
	}
	mask := uint32(capacity - 1)
	for idx, e := range entries {
		i := hashKey(e.key) & mask
		for t.slots[i] != slotEmpty {
			i = (i + 1) & mask
		}
		t.slots[i] = int32(idx)
	}
	t.filled = len(entries)
	return nil
}

// Range calls fn for each live entry in insertion order until fn returns false.
// Values are borrowed.
func (t *Table) Range(fn func(key string, v Value) bool) {
	for _, e := range t.entries {
		if e.live && !fn(e.key, e.val) {
			return
		}
	}
}

// Keys returns the live keys in insertion order.
func (t *Table) Keys() []string {
	keys := make([]string, 0, t.count)
	t.Range(func(k string, _ Value) bool {
		keys = append(keys, k)
		return true
	})
	return keys
}

// Clear releases every value and empties the table.
func (t *Table) Clear() {
	entries := t.entries
	t.entries = nil
	t.slots = nil
	t.count = 0
	t.filled = 0
	for _, e := range entries {
		if e.live {
			e.val.Release()
		}
	}
}
