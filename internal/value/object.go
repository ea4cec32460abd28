package value

import (
	"fmt"
	"sync/atomic"
)

// header is the reference-count block shared by every counted heap object.
type header struct {
	refs   int32
	static bool // constant-pool resident, never freed
	freed  bool
}

func (h *header) hdr() *header { return h }

// counted is implemented by heap objects that take part in reference counting:
// strings, lists, maps and modules.
type counted interface {
	hdr() *header
	free()
}

var (
	allocated atomic.Int64
	released  atomic.Int64
)

// Stats is a snapshot of the heap object counters.
type Stats struct {
	Allocated int64
	Released  int64
}

// Live is the number of counted objects allocated but not yet released.
func (s Stats) Live() int64 { return s.Allocated - s.Released }

func ReadStats() Stats {
	return Stats{Allocated: allocated.Load(), Released: released.Load()}
}

// LiveObjects reports counted objects currently alive, process-wide.
func LiveObjects() int64 {
	return allocated.Load() - released.Load()
}

func track(h *header) {
	h.refs = 1
	allocated.Add(1)
}

// Retain records a new owning slot for v and returns v.
func (v Value) Retain() Value {
	if c, ok := v.obj.(counted); ok {
		h := c.hdr()
		if h.static {
			return v
		}
		if h.freed {
			panic(fmt.Sprintf("value: retain of freed %s", v.TypeName()))
		}
		h.refs++
	}
	return v
}

// Release gives up one owning slot. The object is freed when the last slot
// goes away; its children are released in turn.
func (v Value) Release() {
	c, ok := v.obj.(counted)
	if !ok {
		return
	}
	h := c.hdr()
	if h.static {
		return
	}
	if h.freed || h.refs <= 0 {
		panic(fmt.Sprintf("value: double release of %s", v.TypeName()))
	}
	h.refs--
	if h.refs == 0 {
		h.freed = true
		released.Add(1)
		c.free()
	}
}

// RefCount returns the current count of a counted object, or -1 for values
// that are not counted (scalars, functions, pointers, static strings).
func (v Value) RefCount() int {
	if c, ok := v.obj.(counted); ok && !c.hdr().static {
		return int(c.hdr().refs)
	}
	return -1
}

// ReleaseAll releases every value in vs.
func ReleaseAll(vs []Value) {
	for _, v := range vs {
		v.Release()
	}
}
