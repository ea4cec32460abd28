package pipeline

import (
	"github.com/agayevhuseyn/seal-sub000/internal/ast"
	"github.com/agayevhuseyn/seal-sub000/internal/token"
)

// Processor is one stage of the front end.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// PipelineContext carries source through the stages and collects their errors.
type PipelineContext struct {
	SourceCode  string
	FilePath    string
	TokenStream []token.Token
	AstRoot     *ast.Program

	// BytecodeChunk holds the compiled unit (*vm.Proto) once the compiler
	// stage has run.
	BytecodeChunk interface{}

	Errors []error
}

func NewContext(file, source string) *PipelineContext {
	return &PipelineContext{SourceCode: source, FilePath: file}
}

// Failed reports whether any stage recorded an error.
func (ctx *PipelineContext) Failed() bool {
	return len(ctx.Errors) > 0
}

// Err returns the first recorded error, or nil.
func (ctx *PipelineContext) Err() error {
	if len(ctx.Errors) == 0 {
		return nil
	}
	return ctx.Errors[0]
}
