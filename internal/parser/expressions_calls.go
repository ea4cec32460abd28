package parser

import (
	"github.com/agayevhuseyn/seal-sub000/internal/ast"
	"github.com/agayevhuseyn/seal-sub000/internal/token"
)

func (p *Parser) parseCallExpression(function ast.Expression) ast.Expression {
	exp := &ast.CallExpression{Token: p.curToken, Function: function}
	exp.Arguments = p.parseExpressionList(token.RPAREN)
	return exp
}

func (p *Parser) parseIndexExpression(left ast.Expression) ast.Expression {
	exp := &ast.IndexExpression{Token: p.curToken, Left: left}
	p.nextToken()
	exp.Index = p.parseExpression(LOWEST)
	p.expectPeek(token.RBRACKET)
	return exp
}

// parseMemberExpression parses `.name` or the method call `.name(args)`.
func (p *Parser) parseMemberExpression(left ast.Expression) ast.Expression {
	dot := p.curToken
	p.expectPeek(token.IDENT)
	name := p.curToken.Lexeme

	if p.peekTokenIs(token.LPAREN) {
		p.nextToken()
		return &ast.MethodCallExpression{
			Token:     dot,
			Receiver:  left,
			Name:      name,
			Arguments: p.parseExpressionList(token.RPAREN),
		}
	}
	return &ast.MemberExpression{Token: dot, Left: left, Name: name}
}

// parseExpressionList parses comma-separated expressions up to end, allowing
// a trailing comma. The current token is the opening delimiter.
func (p *Parser) parseExpressionList(end token.TokenType) []ast.Expression {
	list := []ast.Expression{}
	for !p.peekTokenIs(end) {
		p.nextToken()
		list = append(list, p.parseExpression(LOWEST))
		if !p.peekTokenIs(end) {
			p.expectPeek(token.COMMA)
		}
	}
	p.expectPeek(end)
	return list
}
