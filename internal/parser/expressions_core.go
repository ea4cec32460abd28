package parser

import (
	"fmt"

	"github.com/agayevhuseyn/seal-sub000/internal/ast"
	"github.com/agayevhuseyn/seal-sub000/internal/token"
)

const (
	_ int = iota
	LOWEST
	TERNARY     // c ? a : b
	OR          // or
	AND         // and
	EQUALS      // == !=
	LESSGREATER // < <= > >=
	BITOR       // |
	BITXOR      // ^
	BITAND      // &
	SHIFT       // << >>
	SUM         // + -
	PRODUCT     // * / %
	PREFIX      // -x ~x !x not x
	POSTFIX     // f(x) a[i] a.b
)

var precedences = map[token.TokenType]int{
	token.QUESTION: TERNARY,
	token.OR:       OR,
	token.AND:      AND,
	token.EQ:       EQUALS,
	token.NOT_EQ:   EQUALS,
	token.LT:       LESSGREATER,
	token.LTE:      LESSGREATER,
	token.GT:       LESSGREATER,
	token.GTE:      LESSGREATER,
	token.PIPE:     BITOR,
	token.CARET:    BITXOR,
	token.AMP:      BITAND,
	token.LSHIFT:   SHIFT,
	token.RSHIFT:   SHIFT,
	token.PLUS:     SUM,
	token.MINUS:    SUM,
	token.ASTERISK: PRODUCT,
	token.SLASH:    PRODUCT,
	token.PERCENT:  PRODUCT,
	token.LPAREN:   POSTFIX,
	token.LBRACKET: POSTFIX,
	token.DOT:      POSTFIX,
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	p.depth++
	defer func() { p.depth-- }()

	if p.depth > MaxRecursionDepth {
		p.fail(p.curToken, "expression too complex: recursion depth limit exceeded")
	}

	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.fail(p.curToken, fmt.Sprintf("unexpected %s in expression", describeToken(p.curToken)))
	}
	leftExp := prefix()

	for precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}
		p.nextToken()
		leftExp = infix(leftExp)
	}

	return leftExp
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	expression := &ast.PrefixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Type,
	}
	p.nextToken()
	expression.Right = p.parseExpression(PREFIX)
	return expression
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expression := &ast.InfixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Type,
		Left:     left,
	}
	precedence := p.curPrecedence()
	p.nextToken()
	expression.Right = p.parseExpression(precedence)
	return expression
}

func (p *Parser) parseLogicalExpression(left ast.Expression) ast.Expression {
	expression := &ast.LogicalExpression{
		Token:    p.curToken,
		Operator: p.curToken.Type,
		Left:     left,
	}
	precedence := p.curPrecedence()
	p.nextToken()
	expression.Right = p.parseExpression(precedence)
	return expression
}

// parseTernaryExpression is right-associative: a ? b : c ? d : e.
func (p *Parser) parseTernaryExpression(cond ast.Expression) ast.Expression {
	expression := &ast.TernaryExpression{Token: p.curToken, Condition: cond}
	p.nextToken()
	expression.Consequence = p.parseExpression(LOWEST)
	p.expectPeek(token.COLON)
	p.nextToken()
	expression.Alternative = p.parseExpression(LOWEST)
	return expression
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()
	exp := p.parseExpression(LOWEST)
	p.expectPeek(token.RPAREN)
	return exp
}
