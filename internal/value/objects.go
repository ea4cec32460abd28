package value

// String is an immutable byte string.
type String struct {
	header
	s string
}

func (s *String) free() {}

func (s *String) Len() int { return len(s.s) }

// NewString allocates a counted string.
func NewString(s string) Value {
	obj := &String{s: s}
	track(&obj.header)
	return Value{Kind: KindString, obj: obj}
}

// StaticString returns a constant-pool string that is never freed.
func StaticString(s string) Value {
	obj := &String{s: s}
	obj.static = true
	return Value{Kind: KindString, obj: obj}
}

// List is a growable sequence. It owns one reference to each element.
type List struct {
	header
	items []Value
}

func (l *List) free() {
	items := l.items
	l.items = nil
	ReleaseAll(items)
}

// NewList allocates a list taking ownership of items.
func NewList(items []Value) Value {
	obj := &List{items: items}
	track(&obj.header)
	return Value{Kind: KindList, obj: obj}
}

func (l *List) Len() int { return len(l.items) }
func (l *List) Cap() int { return cap(l.items) }

// Get returns a borrowed element.
func (l *List) Get(i int) Value { return l.items[i] }

// Items returns the backing elements, borrowed.
func (l *List) Items() []Value { return l.items }

// Set stores v at i, taking ownership of v and releasing the old element.
func (l *List) Set(i int, v Value) {
	old := l.items[i]
	l.items[i] = v
	old.Release()
}

func (l *List) grow() {
	if len(l.items) < cap(l.items) {
		return
	}
	newCap := cap(l.items) * 2
	if newCap == 0 {
		newCap = 4
	}
	items := make([]Value, len(l.items), newCap)
	copy(items, l.items)
	l.items = items
}

// Append adds v, taking ownership.
func (l *List) Append(v Value) {
	l.grow()
	l.items = append(l.items, v)
}

// Insert places v before index i (0 <= i <= Len), taking ownership.
func (l *List) Insert(i int, v Value) {
	l.grow()
	l.items = append(l.items, Value{})
	copy(l.items[i+1:], l.items[i:])
	l.items[i] = v
}

// Pop removes and returns the last element; ownership passes to the caller.
func (l *List) Pop() Value {
	n := len(l.items) - 1
	v := l.items[n]
	l.items[n] = Value{}
	l.items = l.items[:n]
	return v
}

// Remove deletes the element at i and returns it; ownership passes to the caller.
func (l *List) Remove(i int) Value {
	v := l.items[i]
	copy(l.items[i:], l.items[i+1:])
	l.items[len(l.items)-1] = Value{}
	l.items = l.items[:len(l.items)-1]
	return v
}

// Map is a string-keyed hash map.
type Map struct {
	header
	Table
}

func (m *Map) free() { m.Table.Clear() }

func NewMap() Value {
	obj := &Map{}
	track(&obj.header)
	return Value{Kind: KindMap, obj: obj}
}

// Module is a named namespace.
type Module struct {
	header
	Name    string
	Globals *Table
}

func (m *Module) free() { m.Globals.Clear() }

// NewModule allocates a module. The caller owns the returned reference and
// hands it on with Value.
func NewModule(name string) *Module {
	m := &Module{Name: name, Globals: NewTable()}
	track(&m.header)
	return m
}

// Value wraps m without changing its count.
func (m *Module) Value() Value {
	return Value{Kind: KindModule, obj: m}
}

// Register adds a Go function to the module namespace.
func (m *Module) Register(name string, fn BuiltinFunc, arity int, variadic bool) {
	b := &Builtin{Name: m.Name + "." + name, Fn: fn, Arity: arity, Variadic: variadic}
	if err := m.Globals.Set(name, b.Value()); err != nil {
		panic(err)
	}
}

// SetValue stores v under name, taking ownership.
func (m *Module) SetValue(name string, v Value) {
	if err := m.Globals.Set(name, v); err != nil {
		panic(err)
	}
}

// Ptr is an opaque host pointer handed to scripts by native modules.
type Ptr struct {
	Data  any
	Label string
}

func NewPtr(data any, label string) Value {
	return Value{Kind: KindPtr, obj: &Ptr{Data: data, Label: label}}
}
