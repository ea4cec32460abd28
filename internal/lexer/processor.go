package lexer

import (
	"github.com/agayevhuseyn/seal-sub000/internal/pipeline"
)

type LexerProcessor struct{}

func (lp *LexerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	toks, err := New(ctx.SourceCode).Tokenize()
	if err != nil {
		if le, ok := err.(*Error); ok {
			le.File = ctx.FilePath
		}
		ctx.Errors = append(ctx.Errors, err)
		return ctx
	}
	ctx.TokenStream = toks
	return ctx
}
