package parser

import (
	"fmt"

	"github.com/agayevhuseyn/seal-sub000/internal/ast"
	"github.com/agayevhuseyn/seal-sub000/internal/token"
)

// MaxRecursionDepth bounds expression nesting.
const MaxRecursionDepth = 512

// Error is a syntax error. Incomplete is set when the input ended before the
// construct was closed, which the REPL uses to ask for another line.
type Error struct {
	File       string
	Line       int
	Column     int
	Msg        string
	Incomplete bool
}

func (e *Error) Error() string {
	if e.File == "" {
		return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Msg)
	}
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Msg)
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// bailout unwinds the parser after the first error.
type bailout struct{}

type Parser struct {
	tokens []token.Token
	pos    int

	curToken  token.Token
	peekToken token.Token

	err   *Error
	depth int

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn
}

// New creates a parser over a token stream ending in EOF.
func New(tokens []token.Token) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != token.EOF {
		tokens = append(tokens, token.Token{Type: token.EOF})
	}
	p := &Parser{tokens: tokens}

	p.prefixParseFns = map[token.TokenType]prefixParseFn{
		token.IDENT:    p.parseIdentifier,
		token.GLOBAL:   p.parseGlobalIdentifier,
		token.INT:      p.parseIntegerLiteral,
		token.FLOAT:    p.parseFloatLiteral,
		token.STRING:   p.parseStringLiteral,
		token.TRUE:     p.parseBoolean,
		token.FALSE:    p.parseBoolean,
		token.NULL:     p.parseNull,
		token.LBRACKET: p.parseListLiteral,
		token.LBRACE:   p.parseMapLiteral,
		token.LPAREN:   p.parseGroupedExpression,
		token.DEFINE:   p.parseFunctionLiteral,
		token.MINUS:    p.parsePrefixExpression,
		token.TILDE:    p.parsePrefixExpression,
		token.BANG:     p.parsePrefixExpression,
		token.NOT:      p.parsePrefixExpression,
	}

	p.infixParseFns = make(map[token.TokenType]infixParseFn)
	for _, tt := range []token.TokenType{
		token.PLUS, token.MINUS, token.ASTERISK, token.SLASH, token.PERCENT,
		token.AMP, token.PIPE, token.CARET, token.LSHIFT, token.RSHIFT,
		token.EQ, token.NOT_EQ, token.LT, token.LTE, token.GT, token.GTE,
	} {
		p.infixParseFns[tt] = p.parseInfixExpression
	}
	p.infixParseFns[token.AND] = p.parseLogicalExpression
	p.infixParseFns[token.OR] = p.parseLogicalExpression
	p.infixParseFns[token.QUESTION] = p.parseTernaryExpression
	p.infixParseFns[token.LPAREN] = p.parseCallExpression
	p.infixParseFns[token.LBRACKET] = p.parseIndexExpression
	p.infixParseFns[token.DOT] = p.parseMemberExpression

	p.curToken = p.tokens[0]
	p.peekToken = p.at(1)
	return p
}

func (p *Parser) at(i int) token.Token {
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[i]
}

func (p *Parser) nextToken() {
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	p.curToken = p.tokens[p.pos]
	p.peekToken = p.at(p.pos + 1)
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) curTokenIsAny(ts ...token.TokenType) bool {
	for _, t := range ts {
		if p.curToken.Type == t {
			return true
		}
	}
	return false
}

func (p *Parser) peekTokenIsAny(ts ...token.TokenType) bool {
	for _, t := range ts {
		if p.peekToken.Type == t {
			return true
		}
	}
	return false
}

// expectPeek advances if the next token has type t, and fails otherwise.
func (p *Parser) expectPeek(t token.TokenType) {
	if !p.peekTokenIs(t) {
		p.fail(p.peekToken, fmt.Sprintf("expected %s, got %s", describe(t), describeToken(p.peekToken)))
	}
	p.nextToken()
}

func (p *Parser) fail(tok token.Token, msg string) {
	p.err = &Error{
		Line:       tok.Line,
		Column:     tok.Column,
		Msg:        msg,
		Incomplete: tok.Type == token.EOF,
	}
	panic(bailout{})
}

func describe(t token.TokenType) string {
	switch t {
	case token.NEWLINE:
		return "newline"
	case token.EOF:
		return "end of input"
	case token.IDENT:
		return "identifier"
	case token.INT, token.FLOAT:
		return "number"
	case token.STRING:
		return "string"
	}
	return fmt.Sprintf("'%s'", token.Lexeme(t))
}

func describeToken(tok token.Token) string {
	switch tok.Type {
	case token.NEWLINE, token.EOF:
		return describe(tok.Type)
	}
	return fmt.Sprintf("'%s'", tok.Lexeme)
}

// ParseProgram parses the whole token stream. On a syntax error it returns
// the partial program and the error.
func (p *Parser) ParseProgram() (prog *ast.Program, err error) {
	prog = &ast.Program{}
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(bailout); !ok {
				panic(r)
			}
			err = p.err
		}
	}()
	prog.Statements = p.parseStatementList(token.EOF)
	return prog, nil
}

// Parse is a convenience wrapper that parses a token stream.
func Parse(tokens []token.Token) (*ast.Program, error) {
	return New(tokens).ParseProgram()
}
