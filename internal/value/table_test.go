package value

import (
	"errors"
	"fmt"
	"testing"
)

func TestTableSetGetDelete(t *testing.T) {
	tbl := NewTable()
	for i := 0; i < 100; i++ {
		if err := tbl.Set(fmt.Sprintf("k%d", i), Int(int64(i))); err != nil {
			t.Fatal(err)
		}
	}
	if tbl.Len() != 100 {
		t.Fatalf("len = %d", tbl.Len())
	}
	if tbl.filled > tbl.Capacity() || tbl.Capacity()&(tbl.Capacity()-1) != 0 {
		t.Fatalf("bad capacity %d (filled %d)", tbl.Capacity(), tbl.filled)
	}

	for i := 0; i < 100; i += 2 {
		if !tbl.Delete(fmt.Sprintf("k%d", i)) {
			t.Fatalf("delete k%d failed", i)
		}
	}
	if tbl.Delete("k0") {
		t.Error("second delete reported success")
	}
	if tbl.Len() != 50 {
		t.Fatalf("len after delete = %d", tbl.Len())
	}

	for i := 0; i < 100; i++ {
		v, ok := tbl.Get(fmt.Sprintf("k%d", i))
		if ok != (i%2 == 1) {
			t.Fatalf("k%d present=%v", i, ok)
		}
		if ok && v.AsInt() != int64(i) {
			t.Fatalf("k%d = %d", i, v.AsInt())
		}
	}
}

func TestTableInsertionOrder(t *testing.T) {
	tbl := NewTable()
	for _, k := range []string{"zeta", "alpha", "mid"} {
		tbl.Set(k, Null())
	}
	tbl.Delete("alpha")
	tbl.Set("alpha", Null())
	tbl.Set("zeta", Int(2))

	keys := tbl.Keys()
	want := []string{"zeta", "mid", "alpha"}
	if fmt.Sprint(keys) != fmt.Sprint(want) {
		t.Errorf("keys = %v, want %v", keys, want)
	}
}

func TestTableTombstoneReuse(t *testing.T) {
	tbl := NewTable()
	// Churn through many distinct keys with a small live set; tombstones must
	// not make the table grow without bound.
	for i := 0; i < 10000; i++ {
		k := fmt.Sprint(i)
		tbl.Set(k, Int(1))
		tbl.Delete(k)
	}
	if tbl.Capacity() > 16 {
		t.Errorf("capacity grew to %d with no live entries", tbl.Capacity())
	}
}

func TestTableFull(t *testing.T) {
	saved := maxTableCapacity
	maxTableCapacity = 16
	defer func() { maxTableCapacity = saved }()

	tbl := NewTable()
	var err error
	n := 0
	for ; n < 100; n++ {
		if err = tbl.Set(fmt.Sprint(n), Int(int64(n))); err != nil {
			break
		}
	}
	if !errors.Is(err, ErrTableFull) {
		t.Fatalf("expected ErrTableFull, got %v after %d inserts", err, n)
	}
	if tbl.Len() != n || tbl.Capacity() != 16 {
		t.Errorf("len=%d cap=%d", tbl.Len(), tbl.Capacity())
	}
}

func TestTableClearReleases(t *testing.T) {
	base := LiveObjects()
	tbl := NewTable()
	tbl.Set("a", NewString("x"))
	tbl.Set("b", NewList([]Value{NewString("y")}))
	tbl.Clear()
	if got := LiveObjects(); got != base {
		t.Errorf("live objects = %d, want %d", got, base)
	}
	if tbl.Len() != 0 {
		t.Error("table not empty after Clear")
	}
}

func TestTableDeleteChurnStaysBounded(t *testing.T) {
	tbl := NewTable()
	if err := tbl.Set("keep", Int(1)); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 100000; i++ {
		if err := tbl.Set("k", Int(int64(i))); err != nil {
			t.Fatal(err)
		}
		if !tbl.Delete("k") {
			t.Fatalf("delete %d failed", i)
		}
	}
	if tbl.Len() != 1 {
		t.Fatalf("len = %d", tbl.Len())
	}
	if limit := 2*tbl.Len() + minTableCapacity; len(tbl.entries) > limit {
		t.Errorf("entries grew to %d (limit %d)", len(tbl.entries), limit)
	}
	if tbl.Capacity() > 4*minTableCapacity {
		t.Errorf("capacity grew to %d", tbl.Capacity())
	}
	if keys := tbl.Keys(); len(keys) != 1 || keys[0] != "keep" {
		t.Errorf("keys = %v", keys)
	}
}
