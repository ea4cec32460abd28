package value

import (
	"fmt"
	"testing"
)

func TestTruthy(t *testing.T) {
	m := NewMap()
	defer m.Release()
	full := NewMap()
	defer full.Release()
	if err := full.AsMap().Set("k", Int(1)); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		v    Value
		want bool
	}{
		{"null", Null(), false},
		{"zero", Int(0), false},
		{"int", Int(-3), true},
		{"zero float", Float(0), false},
		{"float", Float(0.1), true},
		{"false", Bool(false), false},
		{"true", Bool(true), true},
		{"empty string", StaticString(""), false},
		{"string", StaticString("x"), true},
		{"empty map", m, false},
		{"map", full, true},
		{"nil ptr", NewPtr(nil, "p"), false},
		{"ptr", NewPtr(1, "p"), true},
		{"builtin", (&Builtin{Name: "f"}).Value(), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.Truthy(); got != tt.want {
				t.Errorf("Truthy(%s) = %v, want %v", tt.v.Repr(), got, tt.want)
			}
		})
	}
}

func TestEqual(t *testing.T) {
	m1 := NewMap()
	m2 := NewMap()
	defer m1.Release()
	defer m2.Release()
	l := NewList(nil)
	defer l.Release()

	tests := []struct {
		name   string
		a, b   Value
		eq, ok bool
	}{
		{"ints", Int(2), Int(2), true, true},
		{"mixed", Int(2), Float(2.0), true, true},
		{"floats", Float(1.5), Float(2.5), false, true},
		{"strings", StaticString("ab"), NewString("ab"), true, true},
		{"bools", Bool(true), Bool(false), false, true},
		{"same map", m1, m1, true, true},
		{"other map", m1, m2, false, true},
		{"null null", Null(), Null(), true, true},
		{"null int", Null(), Int(0), false, true},
		{"list null", l, Null(), false, true},
		{"int string", Int(1), StaticString("1"), false, false},
		{"lists", l, l, false, false},
		{"bool int", Bool(true), Int(1), false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eq, ok := Equal(tt.a, tt.b)
			if eq != tt.eq || ok != tt.ok {
				t.Errorf("Equal(%s, %s) = (%v, %v), want (%v, %v)", tt.a.Repr(), tt.b.Repr(), eq, ok, tt.eq, tt.ok)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	list := NewList([]Value{Int(1), Float(2), NewString("a"), Null(), Bool(true)})
	defer list.Release()
	m := NewMap()
	defer m.Release()
	m.AsMap().Set("x", Int(1))
	m.AsMap().Set("y", list.Retain())

	tests := []struct {
		v    Value
		want string
	}{
		{Int(-7), "-7"},
		{Float(3), "3.0"},
		{Float(2.5), "2.5"},
		{Float(1e21), "1e+21"},
		{StaticString("hi"), "hi"},
		{list, `[1, 2.0, "a", null, true]`},
		{m, `{x: 1, y: [1, 2.0, "a", null, true]}`},
		{NewPtr(nil, "sqlite.db"), "<ptr sqlite.db>"},
		{(&Builtin{Name: "print"}).Value(), "<builtin print>"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestSelfReferencingListPrints(t *testing.T) {
	base := LiveObjects()
	l := NewList(nil)
	l.AsList().Append(l.Retain())
	s := l.String()
	if len(s) == 0 {
		t.Fatal("empty format")
	}
	// Break the cycle so the list can be freed.
	l.AsList().Pop().Release()
	l.Release()
	if got := LiveObjects(); got != base {
		t.Errorf("live objects = %d, want %d", got, base)
	}
}

func TestRefCounting(t *testing.T) {
	base := LiveObjects()

	s := NewString("shared")
	l := NewList(nil)
	l.AsList().Append(s.Retain())
	l.AsList().Append(s.Retain())
	if s.RefCount() != 3 {
		t.Fatalf("refcount = %d, want 3", s.RefCount())
	}

	m := NewMap()
	m.AsMap().Set("list", l)
	m.AsMap().Set("str", s)
	if got := LiveObjects() - base; got != 3 {
		t.Fatalf("live = %d, want 3", got)
	}

	// Overwrite drops the old value.
	m.AsMap().Set("str", Int(1))
	if s.RefCount() != 2 {
		t.Fatalf("refcount after overwrite = %d, want 2", s.RefCount())
	}

	m.Release()
	if got := LiveObjects(); got != base {
		t.Errorf("live objects = %d, want %d", got, base)
	}
}

func TestStaticStringsAreNotCounted(t *testing.T) {
	base := LiveObjects()
	s := StaticString("const")
	s.Retain()
	s.Release()
	s.Release()
	if s.RefCount() != -1 {
		t.Errorf("static string reports count %d", s.RefCount())
	}
	if LiveObjects() != base {
		t.Error("static string changed live object count")
	}
}

func TestDoubleReleasePanics(t *testing.T) {
	s := NewString("x")
	s.Release()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on double release")
		}
	}()
	s.Release()
}

func TestListOps(t *testing.T) {
	base := LiveObjects()
	lv := NewList(nil)
	l := lv.AsList()
	for i := 0; i < 5; i++ {
		l.Append(NewString(fmt.Sprint(i)))
	}
	if l.Len() != 5 || l.Cap() != 8 {
		t.Fatalf("len/cap = %d/%d, want 5/8", l.Len(), l.Cap())
	}

	l.Insert(0, Int(-1))
	if l.Get(0).AsInt() != -1 || l.Get(1).AsString() != "0" {
		t.Errorf("insert at head failed: %s", lv)
	}

	removed := l.Remove(1)
	if removed.AsString() != "0" {
		t.Errorf("removed %s", removed.Repr())
	}
	removed.Release()

	popped := l.Pop()
	if popped.AsString() != "4" || l.Len() != 4 {
		t.Errorf("pop returned %s, len %d", popped.Repr(), l.Len())
	}
	popped.Release()

	l.Set(0, NewString("head"))
	lv.Release()
	if got := LiveObjects(); got != base {
		t.Errorf("live objects = %d, want %d", got, base)
	}
}

func TestModuleRegister(t *testing.T) {
	base := LiveObjects()
	m := NewModule("demo")
	m.Register("twice", func(h Host, args []Value) (Value, error) {
		return Int(args[0].AsInt() * 2), nil
	}, 1, false)
	m.SetValue("greeting", NewString("hi"))

	fv, ok := m.Globals.Get("twice")
	if !ok || !fv.IsBuiltin() {
		t.Fatalf("twice not registered: %v", fv)
	}
	b := fv.AsBuiltin()
	if b.Name != "demo.twice" || b.Arity != 1 {
		t.Errorf("unexpected builtin %+v", b)
	}
	out, _ := b.Fn(nil, []Value{Int(21)})
	if out.AsInt() != 42 {
		t.Errorf("twice(21) = %s", out)
	}

	m.Value().Release()
	if got := LiveObjects(); got != base {
		t.Errorf("live objects = %d, want %d", got, base)
	}
}

func TestReadStats(t *testing.T) {
	before := ReadStats()
	s := NewString("counted")
	l := NewList([]Value{s})
	mid := ReadStats()
	if got := mid.Allocated - before.Allocated; got != 2 {
		t.Errorf("allocated %d objects, want 2", got)
	}
	l.Release()
	after := ReadStats()
	if got := after.Released - mid.Released; got != 2 {
		t.Errorf("released %d objects, want 2", got)
	}
	if after.Live() != before.Live() {
		t.Errorf("live = %d, want %d", after.Live(), before.Live())
	}
}
