package parser

import (
	"fmt"

	"github.com/agayevhuseyn/seal-sub000/internal/ast"
	"github.com/agayevhuseyn/seal-sub000/internal/token"
)

// parseIfStatement handles both forms:
//
//	if c do s elif c do s else do s
//
//	if c
//	    ...
//	elif c
//	    ...
//	else
//	    ...
//	end
//
// After a single-statement body, elif/else must follow on the same line.
func (p *Parser) parseIfStatement() *ast.IfStatement {
	stmt := &ast.IfStatement{Token: p.curToken}

	for {
		p.nextToken()
		branch := &ast.IfBranch{Condition: p.parseExpression(LOWEST)}
		stmt.Branches = append(stmt.Branches, branch)

		p.nextToken()
		branch.Body = &ast.BlockStatement{Token: p.curToken}
		switch p.curToken.Type {
		case token.DO:
			p.nextToken()
			branch.Body.Statements = []ast.Statement{p.parseStatement()}
			if !p.peekTokenIsAny(token.ELIF, token.ELSE) {
				return stmt
			}
			p.nextToken()
		case token.NEWLINE:
			branch.Body.Statements = p.parseStatementList(token.ELIF, token.ELSE, token.END)
			if p.curTokenIs(token.END) {
				return stmt
			}
		default:
			p.fail(p.curToken, fmt.Sprintf("expected 'do' or newline, got %s", describeToken(p.curToken)))
		}

		if p.curTokenIs(token.ELSE) {
			stmt.Else = p.parseBody()
			return stmt
		}
		// ELIF: loop for the next condition
	}
}

func (p *Parser) parseWhileStatement() *ast.WhileStatement {
	stmt := &ast.WhileStatement{Token: p.curToken}
	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	stmt.Body = p.parseBody()
	return stmt
}

// parseDoWhileStatement parses
//
//	do
//	    ...
//	end while cond
func (p *Parser) parseDoWhileStatement() *ast.DoWhileStatement {
	stmt := &ast.DoWhileStatement{Token: p.curToken}
	p.expectPeek(token.NEWLINE)
	stmt.Body = &ast.BlockStatement{Token: p.curToken}
	stmt.Body.Statements = p.parseStatementList(token.END)
	p.expectPeek(token.WHILE)
	p.nextToken()
	stmt.Condition = p.parseExpression(LOWEST)
	return stmt
}

func (p *Parser) parseForStatement() *ast.ForStatement {
	stmt := &ast.ForStatement{Token: p.curToken}
	p.expectPeek(token.IDENT)
	stmt.Var = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	p.expectPeek(token.IN)
	p.nextToken()
	stmt.Iterable = p.parseExpression(LOWEST)
	if p.peekTokenIs(token.STEP) {
		p.nextToken()
		p.nextToken()
		stmt.Step = p.parseExpression(LOWEST)
	}
	stmt.Body = p.parseBody()
	return stmt
}

func (p *Parser) parseFunctionStatement() *ast.FunctionStatement {
	stmt := &ast.FunctionStatement{Token: p.curToken}
	p.nextToken()
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}

	fn := &ast.FunctionLiteral{Token: stmt.Token, Name: stmt.Name.Value}
	p.expectPeek(token.LPAREN)
	fn.Parameters, fn.Variadic = p.parseFunctionParameters()
	fn.Body = p.parseBody()
	stmt.Function = fn
	return stmt
}

// parseFunctionParameters parses `a, b, rest...)` with the current token on '('.
func (p *Parser) parseFunctionParameters() ([]*ast.Identifier, bool) {
	params := []*ast.Identifier{}
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return params, false
	}

	variadic := false
	for {
		p.expectPeek(token.IDENT)
		params = append(params, &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme})
		if p.peekTokenIs(token.ELLIPSIS) {
			p.nextToken()
			variadic = true
			break
		}
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	p.expectPeek(token.RPAREN)
	return params, variadic
}
