package parser

import (
	"fmt"

	"github.com/agayevhuseyn/seal-sub000/internal/ast"
	"github.com/agayevhuseyn/seal-sub000/internal/token"
)

// parseStatementList parses statements starting at the current token until one
// of terms is reached. The terminator is left as the current token.
func (p *Parser) parseStatementList(terms ...token.TokenType) []ast.Statement {
	var stmts []ast.Statement
	for {
		for p.curTokenIsAny(token.NEWLINE, token.SEMICOLON) {
			p.nextToken()
		}
		if p.curTokenIsAny(terms...) {
			return stmts
		}
		if p.curTokenIs(token.EOF) {
			p.fail(p.curToken, "expected 'end', got end of input")
		}

		stmts = append(stmts, p.parseStatement())

		if !p.peekTokenIsAny(token.NEWLINE, token.SEMICOLON, token.EOF) && !p.peekTokenIsAny(terms...) {
			p.fail(p.peekToken, fmt.Sprintf("unexpected %s after statement", describeToken(p.peekToken)))
		}
		p.nextToken()
	}
}

// parseStatement parses one statement starting at the current token and leaves
// the current token on its last token.
func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.IF:
		return p.parseIfStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.DO:
		return p.parseDoWhileStatement()
	case token.FOR:
		return p.parseForStatement()
	case token.DEFINE:
		if p.peekTokenIs(token.IDENT) {
			return p.parseFunctionStatement()
		}
	case token.RETURN:
		return p.parseReturnStatement()
	case token.SKIP:
		return &ast.SkipStatement{Token: p.curToken}
	case token.STOP:
		return &ast.StopStatement{Token: p.curToken}
	case token.INCLUDE:
		return p.parseIncludeStatement()
	case token.END, token.ELSE, token.ELIF:
		p.fail(p.curToken, fmt.Sprintf("unexpected '%s'", p.curToken.Lexeme))
	}
	return p.parseExpressionOrAssignment()
}

func (p *Parser) parseExpressionOrAssignment() ast.Statement {
	start := p.curToken
	expr := p.parseExpression(LOWEST)

	if !token.IsAssignOp(p.peekToken.Type) {
		return &ast.ExpressionStatement{Token: start, Expression: expr}
	}

	switch expr.(type) {
	case *ast.Identifier, *ast.IndexExpression, *ast.MemberExpression:
	default:
		p.fail(p.peekToken, "invalid assignment target "+expr.String())
	}

	p.nextToken()
	stmt := &ast.AssignStatement{Token: p.curToken, Target: expr, Operator: p.curToken.Type}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	return stmt
}

// parseBody parses `do stmt` or `NEWLINE stmts end`, starting from the token
// before the body.
func (p *Parser) parseBody() *ast.BlockStatement {
	p.nextToken()
	block := &ast.BlockStatement{Token: p.curToken}
	switch p.curToken.Type {
	case token.DO:
		p.nextToken()
		block.Statements = []ast.Statement{p.parseStatement()}
	case token.NEWLINE:
		block.Statements = p.parseStatementList(token.END)
	default:
		p.fail(p.curToken, fmt.Sprintf("expected 'do' or newline, got %s", describeToken(p.curToken)))
	}
	return block
}

func (p *Parser) parseReturnStatement() *ast.ReturnStatement {
	stmt := &ast.ReturnStatement{Token: p.curToken}
	if p.peekTokenIsAny(token.NEWLINE, token.SEMICOLON, token.EOF, token.END, token.ELSE, token.ELIF) {
		return stmt
	}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	return stmt
}

func (p *Parser) parseIncludeStatement() *ast.IncludeStatement {
	stmt := &ast.IncludeStatement{Token: p.curToken}
	p.expectPeek(token.IDENT)
	stmt.Module = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}

	switch {
	case p.peekTokenIs(token.AS):
		p.nextToken()
		p.expectPeek(token.IDENT)
		stmt.Alias = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	case p.peekTokenIs(token.LPAREN):
		p.nextToken()
		stmt.Symbols = p.parseIdentifierList()
		if len(stmt.Symbols) == 0 {
			p.fail(p.curToken, "empty import list")
		}
	}
	return stmt
}

// parseIdentifierList parses `a, b, c)` with the current token on '('.
func (p *Parser) parseIdentifierList() []*ast.Identifier {
	list := []*ast.Identifier{}
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return list
	}
	for {
		p.expectPeek(token.IDENT)
		list = append(list, &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme})
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	p.expectPeek(token.RPAREN)
	return list
}
