package parser

import (
	"fmt"

	"github.com/agayevhuseyn/seal-sub000/internal/ast"
	"github.com/agayevhuseyn/seal-sub000/internal/token"
)

func (p *Parser) parseIdentifier() ast.Expression {
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
}

func (p *Parser) parseGlobalIdentifier() ast.Expression {
	tok := p.curToken
	p.expectPeek(token.IDENT)
	return &ast.Identifier{Token: tok, Value: p.curToken.Lexeme, Global: true}
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	v, ok := p.curToken.Literal.(int64)
	if !ok {
		p.fail(p.curToken, fmt.Sprintf("could not parse %q as integer", p.curToken.Lexeme))
	}
	return &ast.IntegerLiteral{Token: p.curToken, Value: v}
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	v, ok := p.curToken.Literal.(float64)
	if !ok {
		p.fail(p.curToken, fmt.Sprintf("could not parse %q as float", p.curToken.Lexeme))
	}
	return &ast.FloatLiteral{Token: p.curToken, Value: v}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	s, _ := p.curToken.Literal.(string)
	return &ast.StringLiteral{Token: p.curToken, Value: s}
}

func (p *Parser) parseBoolean() ast.Expression {
	return &ast.BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(token.TRUE)}
}

func (p *Parser) parseNull() ast.Expression {
	return &ast.NullLiteral{Token: p.curToken}
}

func (p *Parser) parseListLiteral() ast.Expression {
	list := &ast.ListLiteral{Token: p.curToken}
	list.Elements = p.parseExpressionList(token.RBRACKET)
	return list
}

// parseMapLiteral parses {key: value, "key": value}. Duplicate keys are
// rejected by the compiler.
func (p *Parser) parseMapLiteral() ast.Expression {
	m := &ast.MapLiteral{Token: p.curToken}

	for !p.peekTokenIs(token.RBRACE) {
		p.nextToken()
		entry := &ast.MapEntry{Token: p.curToken}
		switch p.curToken.Type {
		case token.IDENT:
			entry.Key = p.curToken.Lexeme
		case token.STRING:
			entry.Key, _ = p.curToken.Literal.(string)
		default:
			p.fail(p.curToken, fmt.Sprintf("expected map key, got %s", describeToken(p.curToken)))
		}
		p.expectPeek(token.COLON)
		p.nextToken()
		entry.Value = p.parseExpression(LOWEST)
		m.Entries = append(m.Entries, entry)

		if !p.peekTokenIs(token.RBRACE) {
			p.expectPeek(token.COMMA)
		}
	}
	p.expectPeek(token.RBRACE)
	return m
}

// parseFunctionLiteral parses an anonymous `define(params) body`.
func (p *Parser) parseFunctionLiteral() ast.Expression {
	fn := &ast.FunctionLiteral{Token: p.curToken}
	p.expectPeek(token.LPAREN)
	fn.Parameters, fn.Variadic = p.parseFunctionParameters()
	fn.Body = p.parseBody()
	return fn
}
