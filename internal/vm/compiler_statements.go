package vm

import (
	"github.com/agayevhuseyn/seal-sub000/internal/ast"
	"github.com/agayevhuseyn/seal-sub000/internal/config"
	"github.com/agayevhuseyn/seal-sub000/internal/token"
	"github.com/agayevhuseyn/seal-sub000/internal/value"
)

func (c *Compiler) compileStatement(stmt ast.Statement) error {
	line := stmt.GetToken().Line
	switch s := stmt.(type) {
	case *ast.ExpressionStatement:
		if err := c.compileExpression(s.Expression); err != nil {
			return err
		}
		c.emit(OP_POP, line)
		return nil

	case *ast.AssignStatement:
		return c.compileAssign(s)

	case *ast.BlockStatement:
		return c.compileBlock(s)

	case *ast.IfStatement:
		return c.compileIf(s)

	case *ast.WhileStatement:
		return c.compileWhile(s)

	case *ast.DoWhileStatement:
		return c.compileDoWhile(s)

	case *ast.ForStatement:
		return c.compileFor(s)

	case *ast.FunctionStatement:
		if err := c.compileFunction(s.Function); err != nil {
			return err
		}
		return c.emitSetVariable(s.Name.Value, false, line)

	case *ast.ReturnStatement:
		if !c.inFunction() {
			return c.errorf(line, "return outside of a function")
		}
		if s.Value != nil {
			if err := c.compileExpression(s.Value); err != nil {
				return err
			}
		} else {
			c.emit(OP_PUSH_NULL, line)
		}
		c.emit(OP_RETURN, line)
		return nil

	case *ast.SkipStatement:
		if len(c.loopStack) == 0 {
			return c.errorf(line, "skip outside of a loop")
		}
		loop := c.loopStack[len(c.loopStack)-1]
		c.emitJump(OP_JUMP, loop.continueLabel, line)
		return nil

	case *ast.StopStatement:
		if len(c.loopStack) == 0 {
			return c.errorf(line, "stop outside of a loop")
		}
		loop := c.loopStack[len(c.loopStack)-1]
		if loop.isFor {
			c.emit(OP_FOR_STOP, line)
		}
		c.emitJump(OP_JUMP, loop.exitLabel, line)
		return nil

	case *ast.IncludeStatement:
		return c.compileInclude(s)
	}
	return c.errorf(line, "unsupported statement %T", stmt)
}

// compileBlock compiles statements in a new scope.
func (c *Compiler) compileBlock(block *ast.BlockStatement) error {
	c.beginScope()
	defer c.endScope()
	for _, stmt := range block.Statements {
		if err := c.compileStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) compileAssign(s *ast.AssignStatement) error {
	line := s.Token.Line
	compound := s.Operator != token.ASSIGN
	var op Opcode
	if compound {
		var ok bool
		op, ok = binaryOpcodes[string(token.CompoundBase(s.Operator))]
		if !ok {
			return c.errorf(line, "unknown assignment operator %s", s.Operator)
		}
	}

	switch target := s.Target.(type) {
	case *ast.Identifier:
		if compound {
			if err := c.emitGetVariable(target.Value, target.Global, line); err != nil {
				return err
			}
		}
		if err := c.compileExpression(s.Value); err != nil {
			return err
		}
		if compound {
			c.emit(op, line)
		}
		return c.emitSetVariable(target.Value, target.Global, line)

	case *ast.IndexExpression, *ast.MemberExpression:
		if err := c.compileFieldTarget(target); err != nil {
			return err
		}
		if compound {
			// [obj, key] -> [obj, key, obj[key]]
			c.emit(OP_COPY, line)
			c.emitByte(1, line)
			c.emit(OP_COPY, line)
			c.emitByte(1, line)
			c.emit(OP_GET_FIELD, line)
		}
		if err := c.compileExpression(s.Value); err != nil {
			return err
		}
		if compound {
			c.emit(op, line)
		}
		c.emit(OP_SET_FIELD, line)
		return nil
	}
	return c.errorf(line, "invalid assignment target %s", s.Target.String())
}

// compileFieldTarget pushes the container and key of a subscript or member
// expression.
func (c *Compiler) compileFieldTarget(e ast.Expression) error {
	switch t := e.(type) {
	case *ast.IndexExpression:
		if err := c.compileExpression(t.Left); err != nil {
			return err
		}
		return c.compileExpression(t.Index)
	case *ast.MemberExpression:
		if err := c.compileExpression(t.Left); err != nil {
			return err
		}
		return c.emitConstant(value.StaticString(t.Name), t.Token.Line)
	}
	return c.errorf(e.GetToken().Line, "invalid field target %s", e.String())
}

func (c *Compiler) compileIf(s *ast.IfStatement) error {
	line := s.Token.Line
	end, err := c.newLabel(line)
	if err != nil {
		return err
	}
	for _, branch := range s.Branches {
		next, err := c.newLabel(line)
		if err != nil {
			return err
		}
		if err := c.compileExpression(branch.Condition); err != nil {
			return err
		}
		c.emitJump(OP_JUMP_FALSE, next, line)
		if err := c.compileBlock(branch.Body); err != nil {
			return err
		}
		c.emitJump(OP_JUMP, end, line)
		c.placeLabel(next)
	}
	if s.Else != nil {
		if err := c.compileBlock(s.Else); err != nil {
			return err
		}
	}
	c.placeLabel(end)
	return nil
}

func (c *Compiler) compileWhile(s *ast.WhileStatement) error {
	line := s.Token.Line
	start, err := c.newLabel(line)
	if err != nil {
		return err
	}
	exit, err := c.newLabel(line)
	if err != nil {
		return err
	}

	c.placeLabel(start)
	if err := c.compileExpression(s.Condition); err != nil {
		return err
	}
	c.emitJump(OP_JUMP_FALSE, exit, line)

	c.loopStack = append(c.loopStack, LoopContext{continueLabel: start, exitLabel: exit})
	err = c.compileBlock(s.Body)
	c.loopStack = c.loopStack[:len(c.loopStack)-1]
	if err != nil {
		return err
	}
	c.emitJump(OP_JUMP, start, line)
	c.placeLabel(exit)
	return nil
}

func (c *Compiler) compileDoWhile(s *ast.DoWhileStatement) error {
	line := s.Token.Line
	var labels [3]int
	for i := range labels {
		l, err := c.newLabel(line)
		if err != nil {
			return err
		}
		labels[i] = l
	}
	body, cond, exit := labels[0], labels[1], labels[2]

	c.placeLabel(body)
	c.loopStack = append(c.loopStack, LoopContext{continueLabel: cond, exitLabel: exit})
	err := c.compileBlock(s.Body)
	c.loopStack = c.loopStack[:len(c.loopStack)-1]
	if err != nil {
		return err
	}

	c.placeLabel(cond)
	if err := c.compileExpression(s.Condition); err != nil {
		return err
	}
	c.emitJump(OP_JUMP_TRUE, body, s.Condition.GetToken().Line)
	c.placeLabel(exit)
	return nil
}

// compileInclude emits INCLUDE and binds the module, or its listed symbols,
// in the global table.
func (c *Compiler) compileInclude(s *ast.IncludeStatement) error {
	line := s.Token.Line
	if err := c.emitConstant(value.StaticString(s.Module.Value), line); err != nil {
		return err
	}
	c.emit(OP_INCLUDE, line)

	if s.Symbols == nil {
		return c.emitSetVariable(s.Binding(), true, line)
	}

	if len(s.Symbols) > config.MaxArgs {
		return c.errorf(line, "too many imported symbols (limit %d)", config.MaxArgs)
	}
	seen := make(map[string]bool, len(s.Symbols))
	idxs := make([]int, 0, len(s.Symbols))
	for _, sym := range s.Symbols {
		if seen[sym.Value] {
			return c.errorf(sym.Token.Line, "duplicate import of '%s'", sym.Value)
		}
		seen[sym.Value] = true
		idx, err := c.nameConstant(sym.Value, line)
		if err != nil {
			return err
		}
		idxs = append(idxs, idx)
	}
	c.emit(OP_IMPORT, line)
	c.emitByte(byte(len(idxs)), line)
	for _, idx := range idxs {
		c.chunk().WriteU16(idx, line)
	}
	return nil
}
