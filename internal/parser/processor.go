package parser

import (
	"github.com/agayevhuseyn/seal-sub000/internal/pipeline"
)

type ParserProcessor struct{}

func (pp *ParserProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.TokenStream == nil {
		ctx.Errors = append(ctx.Errors, &Error{File: ctx.FilePath, Msg: "parser: token stream is nil"})
		return ctx
	}

	prog, err := New(ctx.TokenStream).ParseProgram()
	prog.File = ctx.FilePath
	ctx.AstRoot = prog
	if err != nil {
		if pe, ok := err.(*Error); ok {
			pe.File = ctx.FilePath
		}
		ctx.Errors = append(ctx.Errors, err)
	}
	return ctx
}
