package vm

import (
	"math"

	"github.com/agayevhuseyn/seal-sub000/internal/ast"
	"github.com/agayevhuseyn/seal-sub000/internal/config"
	"github.com/agayevhuseyn/seal-sub000/internal/token"
	"github.com/agayevhuseyn/seal-sub000/internal/value"
)

func (c *Compiler) compileExpression(expr ast.Expression) error {
	line := expr.GetToken().Line
	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		return c.emitInt(e.Value, line)

	case *ast.FloatLiteral:
		return c.emitConstant(value.Float(e.Value), line)

	case *ast.StringLiteral:
		return c.emitConstant(value.StaticString(e.Value), line)

	case *ast.BooleanLiteral:
		if e.Value {
			c.emit(OP_PUSH_TRUE, line)
		} else {
			c.emit(OP_PUSH_FALSE, line)
		}
		return nil

	case *ast.NullLiteral:
		c.emit(OP_PUSH_NULL, line)
		return nil

	case *ast.Identifier:
		return c.emitGetVariable(e.Value, e.Global, line)

	case *ast.ListLiteral:
		if len(e.Elements) > math.MaxUint16 {
			return c.errorf(line, "list literal too long")
		}
		for _, el := range e.Elements {
			if err := c.compileExpression(el); err != nil {
				return err
			}
		}
		c.emit(OP_MAKE_LIST, line)
		c.chunk().WriteU16(len(e.Elements), line)
		return nil

	case *ast.MapLiteral:
		return c.compileMap(e)

	case *ast.FunctionLiteral:
		return c.compileFunction(e)

	case *ast.CallExpression:
		return c.compileCall(e)

	case *ast.MethodCallExpression:
		return c.compileMethodCall(e)

	case *ast.IndexExpression, *ast.MemberExpression:
		if err := c.compileFieldTarget(e); err != nil {
			return err
		}
		c.emit(OP_GET_FIELD, line)
		return nil

	case *ast.PrefixExpression:
		if err := c.compileExpression(e.Right); err != nil {
			return err
		}
		switch e.Operator {
		case token.MINUS:
			c.emit(OP_NEG, line)
		case token.TILDE:
			c.emit(OP_BNOT, line)
		case token.BANG, token.NOT:
			c.emit(OP_NOT, line)
		default:
			return c.errorf(line, "unknown prefix operator %s", e.Operator)
		}
		return nil

	case *ast.InfixExpression:
		op, ok := binaryOpcodes[string(e.Operator)]
		if !ok {
			return c.errorf(line, "unknown operator %s", e.Operator)
		}
		if err := c.compileExpression(e.Left); err != nil {
			return err
		}
		if err := c.compileExpression(e.Right); err != nil {
			return err
		}
		c.emit(op, line)
		return nil

	case *ast.LogicalExpression:
		return c.compileLogical(e)

	case *ast.TernaryExpression:
		return c.compileTernary(e)
	}
	return c.errorf(line, "unsupported expression %T", expr)
}

func (c *Compiler) compileMap(m *ast.MapLiteral) error {
	line := m.Token.Line
	if len(m.Entries) > math.MaxUint16 {
		return c.errorf(line, "map literal too long")
	}
	seen := make(map[string]bool, len(m.Entries))
	for _, entry := range m.Entries {
		if seen[entry.Key] {
			return c.errorf(entry.Token.Line, "duplicate map key '%s'", entry.Key)
		}
		seen[entry.Key] = true
		if err := c.emitConstant(value.StaticString(entry.Key), entry.Token.Line); err != nil {
			return err
		}
		if err := c.compileExpression(entry.Value); err != nil {
			return err
		}
	}
	c.emit(OP_MAKE_MAP, line)
	c.chunk().WriteU16(len(m.Entries), line)
	return nil
}

// compileFunction compiles a function body into its own proto and pushes it
// as a constant.
func (c *Compiler) compileFunction(fn *ast.FunctionLiteral) error {
	line := fn.Token.Line
	name := fn.Name
	if name == "" {
		name = "<anonymous>"
	}
	if len(fn.Parameters) > config.MaxArgs {
		return c.errorf(line, "too many parameters in %s (limit %d)", name, config.MaxArgs)
	}

	fc := newCompiler(c.unit, c, name)
	fc.proto.NumParams = len(fn.Parameters)
	fc.proto.Variadic = fn.Variadic
	fc.beginScope()

	seen := make(map[string]bool, len(fn.Parameters))
	for _, param := range fn.Parameters {
		if seen[param.Value] {
			return c.errorf(param.Token.Line, "duplicate parameter name '%s' in %s", param.Value, name)
		}
		seen[param.Value] = true
		if _, err := fc.addLocal(param.Value, param.Token.Line); err != nil {
			return err
		}
	}

	for _, stmt := range fn.Body.Statements {
		if err := fc.compileStatement(stmt); err != nil {
			return err
		}
	}
	end := line
	if n := len(fn.Body.Statements); n > 0 {
		end = fn.Body.Statements[n-1].GetToken().Line
	}
	fc.emit(OP_PUSH_NULL, end)
	fc.emit(OP_RETURN, end)
	if err := fc.finish(); err != nil {
		return err
	}

	return c.emitConstant(value.NewFunction(fc.proto), line)
}

// checkArity rejects calls to a known function with the wrong argument count.
func (c *Compiler) checkArity(call *ast.CallExpression) error {
	id, ok := call.Function.(*ast.Identifier)
	if !ok {
		return nil
	}
	if !id.Global && c.resolveLocal(id.Value) >= 0 {
		return nil
	}
	fn := c.unit.knownFunction(id.Value)
	if fn == nil {
		return nil
	}
	argc := len(call.Arguments)
	params := len(fn.Parameters)
	if fn.Variadic {
		if argc < params-1 {
			return c.errorf(call.Token.Line, "function %s expects at least %d arguments, got %d", id.Value, params-1, argc)
		}
		return nil
	}
	if argc != params {
		return c.errorf(call.Token.Line, "function %s expects %d arguments, got %d", id.Value, params, argc)
	}
	return nil
}

func (c *Compiler) compileCall(call *ast.CallExpression) error {
	line := call.Token.Line
	if len(call.Arguments) > config.MaxArgs {
		return c.errorf(line, "too many arguments (limit %d)", config.MaxArgs)
	}
	if err := c.checkArity(call); err != nil {
		return err
	}
	if err := c.compileExpression(call.Function); err != nil {
		return err
	}
	for _, arg := range call.Arguments {
		if err := c.compileExpression(arg); err != nil {
			return err
		}
	}
	c.emit(OP_CALL, line)
	c.emitByte(byte(len(call.Arguments)), line)
	return nil
}

func (c *Compiler) compileMethodCall(call *ast.MethodCallExpression) error {
	line := call.Token.Line
	// the receiver may become the first argument
	if len(call.Arguments) >= config.MaxArgs {
		return c.errorf(line, "too many arguments (limit %d)", config.MaxArgs-1)
	}
	if err := c.compileExpression(call.Receiver); err != nil {
		return err
	}
	for _, arg := range call.Arguments {
		if err := c.compileExpression(arg); err != nil {
			return err
		}
	}
	idx, err := c.nameConstant(call.Name, line)
	if err != nil {
		return err
	}
	c.emit(OP_CALL_METHOD, line)
	c.chunk().WriteU16(idx, line)
	c.emitByte(byte(len(call.Arguments)), line)
	return nil
}

// compileLogical leaves the deciding operand on the stack:
//
//	left DUP JUMP_FALSE|JUMP_TRUE end POP right end:
func (c *Compiler) compileLogical(e *ast.LogicalExpression) error {
	line := e.Token.Line
	end, err := c.newLabel(line)
	if err != nil {
		return err
	}
	if err := c.compileExpression(e.Left); err != nil {
		return err
	}
	c.emit(OP_DUP, line)
	if e.Operator == token.AND {
		c.emitJump(OP_JUMP_FALSE, end, line)
	} else {
		c.emitJump(OP_JUMP_TRUE, end, line)
	}
	c.emit(OP_POP, line)
	if err := c.compileExpression(e.Right); err != nil {
		return err
	}
	c.placeLabel(end)
	return nil
}

func (c *Compiler) compileTernary(e *ast.TernaryExpression) error {
	line := e.Token.Line
	alt, err := c.newLabel(line)
	if err != nil {
		return err
	}
	end, err := c.newLabel(line)
	if err != nil {
		return err
	}
	if err := c.compileExpression(e.Condition); err != nil {
		return err
	}
	c.emitJump(OP_JUMP_FALSE, alt, line)
	if err := c.compileExpression(e.Consequence); err != nil {
		return err
	}
	c.emitJump(OP_JUMP, end, line)
	c.placeLabel(alt)
	if err := c.compileExpression(e.Alternative); err != nil {
		return err
	}
	c.placeLabel(end)
	return nil
}
