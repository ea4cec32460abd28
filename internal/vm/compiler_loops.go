package vm

import "github.com/agayevhuseyn/seal-sub000/internal/ast"

// compileFor lowers `for x in it step s` to the three-opcode protocol:
//
//	it s FOR_PREP slot exit
//	body: ...
//	cont: FOR_NEXT slot body
//	exit:
//
// FOR_PREP and FOR_NEXT drop the hidden [iterable, step, cursor] state when
// the iterable is exhausted; `stop` drops it with FOR_STOP.
func (c *Compiler) compileFor(s *ast.ForStatement) error {
	line := s.Token.Line
	if err := c.compileExpression(s.Iterable); err != nil {
		return err
	}
	if s.Step != nil {
		if err := c.compileExpression(s.Step); err != nil {
			return err
		}
	} else if err := c.emitInt(1, line); err != nil {
		return err
	}

	var labels [3]int
	for i := range labels {
		l, err := c.newLabel(line)
		if err != nil {
			return err
		}
		labels[i] = l
	}
	body, cont, exit := labels[0], labels[1], labels[2]

	c.beginScope()
	defer c.endScope()
	slot, err := c.addLocal(s.Var.Value, s.Var.Token.Line)
	if err != nil {
		return err
	}

	c.emit(OP_FOR_PREP, line)
	c.emitByte(byte(slot), line)
	c.chunk().WriteU16(exit, line)

	c.placeLabel(body)
	c.loopStack = append(c.loopStack, LoopContext{continueLabel: cont, exitLabel: exit, isFor: true})
	err = c.compileBlock(s.Body)
	c.loopStack = c.loopStack[:len(c.loopStack)-1]
	if err != nil {
		return err
	}

	c.placeLabel(cont)
	c.emit(OP_FOR_NEXT, line)
	c.emitByte(byte(slot), line)
	c.chunk().WriteU16(body, line)
	c.placeLabel(exit)
	return nil
}
