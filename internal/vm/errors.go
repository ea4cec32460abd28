package vm

import (
	"errors"
	"fmt"
	"strings"
)

var errStackOverflow = errors.New("stack overflow")

// CompileError is a fatal error found while compiling a unit.
type CompileError struct {
	File string
	Line int
	Msg  string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s:%d: %s", displayFile(e.File), e.Line, e.Msg)
}

// RuntimeError is a fatal error raised while executing bytecode. Trace lists
// the active frames, innermost first.
type RuntimeError struct {
	File  string
	Line  int
	Msg   string
	Trace []string
	Err   error // underlying cause, if any
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s:%d: %s", displayFile(e.File), e.Line, e.Msg)
}

func (e *RuntimeError) Unwrap() error { return e.Err }

// StackTrace renders the error followed by one "at" line per frame.
func (e *RuntimeError) StackTrace() string {
	var sb strings.Builder
	sb.WriteString(e.Error())
	for _, t := range e.Trace {
		sb.WriteString("\n  at ")
		sb.WriteString(t)
	}
	return sb.String()
}

// ExitError is returned when a script calls exit(code).
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

func displayFile(file string) string {
	if file == "" {
		return "<script>"
	}
	return file
}
