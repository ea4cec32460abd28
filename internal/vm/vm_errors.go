package vm

import (
	"errors"
	"fmt"
)

// errorf builds a runtime error positioned at the instruction fr is
// executing, with a trace of every active frame.
func (vm *VM) errorf(fr *frame, format string, args ...interface{}) *RuntimeError {
	e := &RuntimeError{Msg: fmt.Sprintf(format, args...)}
	if fr != nil {
		e.File = fr.chunk.File
		e.Line = fr.chunk.LineAt(fr.last)
	}
	for i := len(vm.frames) - 1; i >= 0; i-- {
		f := vm.frames[i]
		e.Trace = append(e.Trace, fmt.Sprintf("%s (%s:%d)", f.proto.Name, displayFile(f.chunk.File), f.chunk.LineAt(f.last)))
	}
	return e
}

// wrap positions an error returned by a builtin or the module system. Errors
// that already carry a position pass through.
func (vm *VM) wrap(fr *frame, err error) error {
	var rt *RuntimeError
	var ce *CompileError
	var exit *ExitError
	if errors.As(err, &rt) || errors.As(err, &ce) || errors.As(err, &exit) {
		return err
	}
	e := vm.errorf(fr, "%s", err.Error())
	e.Err = err
	return e
}
