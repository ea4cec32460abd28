package vm

import "github.com/agayevhuseyn/seal-sub000/internal/config"

// beginScope starts a new block scope
func (c *Compiler) beginScope() {
	c.scopeDepth++
}

// endScope drops the locals of the current scope; their slots are reused.
func (c *Compiler) endScope() {
	c.scopeDepth--
	for len(c.locals) > 0 && c.locals[len(c.locals)-1].Depth > c.scopeDepth {
		c.nextSlot = c.locals[len(c.locals)-1].Slot
		c.locals = c.locals[:len(c.locals)-1]
	}
}

// addLocal declares a local variable in the current scope
func (c *Compiler) addLocal(name string, line int) (int, error) {
	if c.nextSlot >= config.MaxLocals {
		return 0, c.errorf(line, "too many local variables in %s (limit %d)", c.proto.Name, config.MaxLocals)
	}
	slot := c.nextSlot
	c.locals = append(c.locals, Local{Name: name, Depth: c.scopeDepth, Slot: slot})
	c.nextSlot++
	if c.nextSlot > c.proto.NumLocals {
		c.proto.NumLocals = c.nextSlot
	}
	return slot, nil
}

// resolveLocal looks up a local variable by name
func (c *Compiler) resolveLocal(name string) int {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].Name == name {
			return c.locals[i].Slot
		}
	}
	return -1
}

// enclosingLocal reports whether name is a local of an enclosing function,
// which nested functions cannot see.
func (c *Compiler) enclosingLocal(name string) bool {
	for e := c.enclosing; e != nil; e = e.enclosing {
		if e.resolveLocal(name) >= 0 {
			return true
		}
	}
	return false
}

// emitGetVariable pushes the value of a name: innermost local, then a known
// global.
func (c *Compiler) emitGetVariable(name string, global bool, line int) error {
	if !global {
		if slot := c.resolveLocal(name); slot >= 0 {
			c.emit(OP_GET_LOCAL, line)
			c.emitByte(byte(slot), line)
			return nil
		}
		if !c.unit.known[name] {
			if c.enclosingLocal(name) {
				return c.errorf(line, "undeclared identifier '%s' (functions cannot use locals of the enclosing function)", name)
			}
			return c.errorf(line, "undeclared identifier '%s'", name)
		}
	}
	idx, err := c.nameConstant(name, line)
	if err != nil {
		return err
	}
	c.emit(OP_GET_GLOBAL, line)
	c.chunk().WriteU16(idx, line)
	return nil
}

// emitSetVariable pops the top of the stack into name. At top level a name
// that is not a local is global; inside a function it becomes a new local.
func (c *Compiler) emitSetVariable(name string, global bool, line int) error {
	if !global {
		slot := c.resolveLocal(name)
		if slot < 0 && c.inFunction() {
			var err error
			if slot, err = c.addLocal(name, line); err != nil {
				return err
			}
		}
		if slot >= 0 {
			c.emit(OP_SET_LOCAL, line)
			c.emitByte(byte(slot), line)
			return nil
		}
	}
	idx, err := c.nameConstant(name, line)
	if err != nil {
		return err
	}
	c.emit(OP_SET_GLOBAL, line)
	c.chunk().WriteU16(idx, line)
	return nil
}
