package vm

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/agayevhuseyn/seal-sub000/internal/config"
	"github.com/agayevhuseyn/seal-sub000/internal/modules"
	"github.com/agayevhuseyn/seal-sub000/internal/value"
)

// Options configures a VM. Zero values select the defaults.
type Options struct {
	Stdout io.Writer
	Stdin  io.Reader
	Args   []string

	StackSize int // operand stack cells
	MaxDepth  int // nested call frames

	Logger zerolog.Logger
	Trace  bool // log every instruction at trace level

	// SearchPaths are the directories searched for modules, in order.
	SearchPaths []string

	// Natives overrides the compiled-in native modules when non-nil.
	Natives map[string]value.NativeInit
}

// frame is one function activation.
type frame struct {
	proto   *Proto
	chunk   *Chunk
	ip      int
	last    int // offset of the instruction being executed
	locals  []value.Value
	globals *value.Table
	base    int // stack height on entry
}

// VM is the bytecode virtual machine
type VM struct {
	stack []value.Value
	sp    int

	globals *value.Table
	modules *modules.Registry

	frames   []*frame
	maxDepth int

	ctx context.Context
	ops int

	out    io.Writer
	in     *bufio.Reader
	args   []string
	logger zerolog.Logger
	trace  bool
}

// New creates a VM with builtins installed in its global table.
func New(opts Options) *VM {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.StackSize <= 0 {
		opts.StackSize = config.DefaultStackSize
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = config.DefaultMaxDepth
	}

	vm := &VM{
		stack:    make([]value.Value, opts.StackSize),
		globals:  value.NewTable(),
		maxDepth: opts.MaxDepth,
		ctx:      context.Background(),
		out:      opts.Stdout,
		in:       bufio.NewReader(opts.Stdin),
		args:     opts.Args,
		logger:   opts.Logger,
		trace:    opts.Trace,
	}
	vm.modules = modules.NewRegistry(modules.Options{
		SearchPaths: opts.SearchPaths,
		Natives:     opts.Natives,
		Logger:      opts.Logger,
		Runner:      vm.runScriptModule,
	})
	installBuiltins(vm.globals)
	return vm
}

// Host implementation for builtins and native modules.

func (vm *VM) Output() io.Writer     { return vm.out }
func (vm *VM) Input() *bufio.Reader  { return vm.in }
func (vm *VM) Args() []string        { return vm.args }
func (vm *VM) Globals() *value.Table { return vm.globals }

// Modules returns the module registry owned by the VM.
func (vm *VM) Modules() *modules.Registry { return vm.modules }

// GlobalNames lists the names currently defined in the global table.
func (vm *VM) GlobalNames() []string { return vm.globals.Keys() }

// Run executes a compiled top-level unit against the VM's global table.
// Globals persist between runs, which the REPL relies on.
func (vm *VM) Run(ctx context.Context, proto *Proto) error {
	if ctx == nil {
		ctx = context.Background()
	}
	vm.ctx = ctx
	vm.ops = 0
	defer func() {
		vm.unwind(0)
		vm.frames = vm.frames[:0]
	}()

	vm.logger.Debug().Str("file", proto.Chunk.File).Int("code", proto.Chunk.Len()).
		Int("constants", len(proto.Chunk.Constants)).Msg("run")
	return vm.runUnit(proto, vm.globals)
}

// runUnit executes top-level code with the given global table.
func (vm *VM) runUnit(proto *Proto, globals *value.Table) error {
	if len(vm.frames) >= vm.maxDepth {
		return vm.errorf(vm.currentFrame(), "stack overflow")
	}
	fr := &frame{
		proto:   proto,
		chunk:   proto.Chunk,
		locals:  make([]value.Value, proto.NumLocals),
		globals: globals,
		base:    vm.sp,
	}
	vm.frames = append(vm.frames, fr)
	_, err := vm.run(fr)
	vm.frames = vm.frames[:len(vm.frames)-1]
	value.ReleaseAll(fr.locals)
	if err != nil {
		vm.unwind(fr.base)
	}
	return err
}

// Close releases the global table and the module cache. The VM must not be
// used afterwards.
func (vm *VM) Close() {
	vm.unwind(0)
	vm.globals.Clear()
	vm.modules.Close()

	stats := value.ReadStats()
	vm.logger.Debug().Int64("allocated", stats.Allocated).Int64("released", stats.Released).
		Int64("live", stats.Live()).Msg("close")
}

func (vm *VM) currentFrame() *frame {
	if len(vm.frames) == 0 {
		return nil
	}
	return vm.frames[len(vm.frames)-1]
}

// Stack operations

func (vm *VM) push(v value.Value) {
	if vm.sp >= len(vm.stack) {
		v.Release()
		panic(errStackOverflow)
	}
	vm.stack[vm.sp] = v
	vm.sp++
}

// pop transfers ownership of the top value to the caller.
func (vm *VM) pop() value.Value {
	vm.sp--
	v := vm.stack[vm.sp]
	vm.stack[vm.sp] = value.Value{}
	return v
}

func (vm *VM) peek(distance int) value.Value {
	return vm.stack[vm.sp-1-distance]
}

// unwind releases stack values above height.
func (vm *VM) unwind(height int) {
	for vm.sp > height {
		vm.pop().Release()
	}
}
