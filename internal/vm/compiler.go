package vm

import (
	"fmt"
	"math"

	"github.com/agayevhuseyn/seal-sub000/internal/ast"
	"github.com/agayevhuseyn/seal-sub000/internal/config"
	"github.com/agayevhuseyn/seal-sub000/internal/value"
)

// ScriptName is the frame name of top-level code.
const ScriptName = "<script>"

// Local represents a local variable during compilation
type Local struct {
	Name  string
	Depth int // Scope depth where this local was declared
	Slot  int // Index into the frame's slot array
}

// LoopContext tracks loop information for skip/stop
type LoopContext struct {
	continueLabel int
	exitLabel     int
	isFor         bool // for-loops keep hidden state on the stack
}

// CompileOptions configures a compilation unit.
type CompileOptions struct {
	File string

	// Globals are names the host already defines (REPL state, module tables).
	Globals []string
}

// unit is the state shared by every function compiled from one source file.
type unit struct {
	file string

	// known holds names that resolve to globals when no local matches.
	known map[string]bool

	// functions defined exactly once by name at top level and never
	// reassigned; calls to them are arity-checked at compile time.
	functions map[string]*ast.FunctionLiteral
	bindings  map[string]int
}

// Compiler compiles AST to bytecode
type Compiler struct {
	proto     *Proto
	unit      *unit
	enclosing *Compiler

	locals     []Local
	scopeDepth int
	nextSlot   int

	// Loop context stack for skip/stop
	loopStack []LoopContext

	// name constants already in the pool
	names map[string]int
}

func newCompiler(u *unit, enclosing *Compiler, name string) *Compiler {
	return &Compiler{
		proto:     &Proto{Name: name, Chunk: NewChunk(u.file)},
		unit:      u,
		enclosing: enclosing,
		names:     make(map[string]int),
	}
}

// Compile compiles a parsed program into its top-level proto.
func Compile(prog *ast.Program, opts CompileOptions) (*Proto, error) {
	file := opts.File
	if file == "" {
		file = prog.File
	}
	u := &unit{
		file:      file,
		known:     make(map[string]bool),
		functions: make(map[string]*ast.FunctionLiteral),
		bindings:  make(map[string]int),
	}
	for _, name := range builtinNames() {
		u.known[name] = true
	}
	for _, name := range opts.Globals {
		u.known[name] = true
	}
	u.collect(prog.Statements, false)

	c := newCompiler(u, nil, ScriptName)
	for _, stmt := range prog.Statements {
		if err := c.compileStatement(stmt); err != nil {
			return nil, err
		}
	}
	c.emit(OP_HALT, lastLine(prog))
	if err := c.finish(); err != nil {
		return nil, err
	}
	return c.proto, nil
}

func lastLine(prog *ast.Program) int {
	if n := len(prog.Statements); n > 0 {
		return prog.Statements[n-1].GetToken().Line
	}
	return 1
}

// finish checks every label was placed.
func (c *Compiler) finish() error {
	for i, target := range c.proto.Chunk.Labels {
		if target < 0 {
			return fmt.Errorf("internal compiler error: label %d in %s never placed", i, c.proto.Name)
		}
	}
	return nil
}

func (c *Compiler) inFunction() bool {
	return c.enclosing != nil
}

func (c *Compiler) errorf(line int, format string, args ...interface{}) error {
	return &CompileError{File: c.unit.file, Line: line, Msg: fmt.Sprintf(format, args...)}
}

// collect records the names a unit defines at global scope. inFunction is set
// while walking function bodies, where only `global NAME` targets count.
func (u *unit) collect(stmts []ast.Statement, inFunction bool) {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.AssignStatement:
			if id, ok := s.Target.(*ast.Identifier); ok && (id.Global || !inFunction) {
				u.known[id.Value] = true
				u.bindings[id.Value]++
			}
			u.collectExpr(s.Target)
			u.collectExpr(s.Value)
		case *ast.FunctionStatement:
			if !inFunction {
				u.known[s.Name.Value] = true
				u.bindings[s.Name.Value]++
				u.functions[s.Name.Value] = s.Function
			}
			u.collect(s.Function.Body.Statements, true)
		case *ast.IncludeStatement:
			if s.Symbols != nil {
				for _, sym := range s.Symbols {
					u.known[sym.Value] = true
					u.bindings[sym.Value]++
				}
			} else {
				u.known[s.Binding()] = true
				u.bindings[s.Binding()]++
			}
		case *ast.IfStatement:
			for _, b := range s.Branches {
				u.collectExpr(b.Condition)
				u.collect(b.Body.Statements, inFunction)
			}
			if s.Else != nil {
				u.collect(s.Else.Statements, inFunction)
			}
		case *ast.WhileStatement:
			u.collectExpr(s.Condition)
			u.collect(s.Body.Statements, inFunction)
		case *ast.DoWhileStatement:
			u.collect(s.Body.Statements, inFunction)
			u.collectExpr(s.Condition)
		case *ast.ForStatement:
			u.collectExpr(s.Iterable)
			u.collectExpr(s.Step)
			u.collect(s.Body.Statements, inFunction)
		case *ast.ReturnStatement:
			u.collectExpr(s.Value)
		case *ast.ExpressionStatement:
			u.collectExpr(s.Expression)
		}
	}
}

// collectExpr descends into anonymous function bodies.
func (u *unit) collectExpr(e ast.Expression) {
	switch x := e.(type) {
	case *ast.FunctionLiteral:
		u.collect(x.Body.Statements, true)
	case *ast.CallExpression:
		u.collectExpr(x.Function)
		for _, a := range x.Arguments {
			u.collectExpr(a)
		}
	case *ast.MethodCallExpression:
		u.collectExpr(x.Receiver)
		for _, a := range x.Arguments {
			u.collectExpr(a)
		}
	case *ast.ListLiteral:
		for _, el := range x.Elements {
			u.collectExpr(el)
		}
	case *ast.MapLiteral:
		for _, en := range x.Entries {
			u.collectExpr(en.Value)
		}
	case *ast.IndexExpression:
		u.collectExpr(x.Left)
		u.collectExpr(x.Index)
	case *ast.MemberExpression:
		u.collectExpr(x.Left)
	case *ast.PrefixExpression:
		u.collectExpr(x.Right)
	case *ast.InfixExpression:
		u.collectExpr(x.Left)
		u.collectExpr(x.Right)
	case *ast.LogicalExpression:
		u.collectExpr(x.Left)
		u.collectExpr(x.Right)
	case *ast.TernaryExpression:
		u.collectExpr(x.Condition)
		u.collectExpr(x.Consequence)
		u.collectExpr(x.Alternative)
	}
}

// knownFunction returns the literal for a name bound only by a single
// top-level define.
func (u *unit) knownFunction(name string) *ast.FunctionLiteral {
	if u.bindings[name] != 1 {
		return nil
	}
	return u.functions[name]
}

// emit helpers

func (c *Compiler) chunk() *Chunk {
	return c.proto.Chunk
}

func (c *Compiler) emit(op Opcode, line int) {
	c.chunk().WriteOp(op, line)
}

func (c *Compiler) emitByte(b byte, line int) {
	c.chunk().Write(b, line)
}

func (c *Compiler) makeConstant(v value.Value, line int) (int, error) {
	if len(c.chunk().Constants) >= config.MaxConstants {
		return 0, c.errorf(line, "too many constants in one unit (limit %d)", config.MaxConstants)
	}
	return c.chunk().AddConstant(v), nil
}

func (c *Compiler) emitConstant(v value.Value, line int) error {
	idx, err := c.makeConstant(v, line)
	if err != nil {
		return err
	}
	c.emit(OP_PUSH_CONST, line)
	c.chunk().WriteU16(idx, line)
	return nil
}

// nameConstant returns the pool index of a static string naming a global.
func (c *Compiler) nameConstant(name string, line int) (int, error) {
	if idx, ok := c.names[name]; ok {
		return idx, nil
	}
	idx, err := c.makeConstant(value.StaticString(name), line)
	if err != nil {
		return 0, err
	}
	c.names[name] = idx
	return idx, nil
}

func (c *Compiler) emitInt(n int64, line int) error {
	if n >= math.MinInt16 && n <= math.MaxInt16 {
		c.emit(OP_PUSH_INT, line)
		c.chunk().WriteU16(int(uint16(int16(n))), line)
		return nil
	}
	return c.emitConstant(value.Int(n), line)
}

func (c *Compiler) newLabel(line int) (int, error) {
	if len(c.chunk().Labels) >= config.MaxLabels {
		return 0, c.errorf(line, "too many jump labels in one function (limit %d)", config.MaxLabels)
	}
	c.chunk().Labels = append(c.chunk().Labels, -1)
	return len(c.chunk().Labels) - 1, nil
}

// placeLabel resolves label to the current end of the code.
func (c *Compiler) placeLabel(label int) {
	c.chunk().Labels[label] = c.chunk().Len()
}

func (c *Compiler) emitJump(op Opcode, label int, line int) {
	c.emit(op, line)
	c.chunk().WriteU16(label, line)
}
