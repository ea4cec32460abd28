package ast

import (
	"strings"

	"github.com/agayevhuseyn/seal-sub000/internal/token"
)

// Node is the base interface for all AST nodes.
type Node interface {
	TokenLiteral() string
	GetToken() token.Token
	String() string
}

// Statement is a Node that represents a statement.
type Statement interface {
	Node
	statementNode()
}

// Expression is a Node that represents an expression.
type Expression interface {
	Node
	expressionNode()
}

// Program is the root node of every AST our parser produces.
type Program struct {
	File       string // Source file path
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) GetToken() token.Token {
	if len(p.Statements) > 0 {
		return p.Statements[0].GetToken()
	}
	return token.Token{}
}

func (p *Program) String() string {
	var out []string
	for _, s := range p.Statements {
		out = append(out, s.String())
	}
	return strings.Join(out, "\n")
}

// BlockStatement is a statement list: a `do stmt` body or a NEWLINE ... end body.
type BlockStatement struct {
	Token      token.Token
	Statements []Statement
}

func (bs *BlockStatement) statementNode()        {}
func (bs *BlockStatement) TokenLiteral() string  { return bs.Token.Lexeme }
func (bs *BlockStatement) GetToken() token.Token { return bs.Token }
func (bs *BlockStatement) String() string {
	var out []string
	for _, s := range bs.Statements {
		out = append(out, s.String())
	}
	return "{" + strings.Join(out, "; ") + "}"
}

type ExpressionStatement struct {
	Token      token.Token // the first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) statementNode()        {}
func (es *ExpressionStatement) TokenLiteral() string  { return es.Token.Lexeme }
func (es *ExpressionStatement) GetToken() token.Token { return es.Token }
func (es *ExpressionStatement) String() string {
	if es.Expression == nil {
		return ""
	}
	return es.Expression.String()
}

// AssignStatement is `target op value`; Operator is ASSIGN or a compound operator.
// Target is an *Identifier, *IndexExpression or *MemberExpression.
type AssignStatement struct {
	Token    token.Token // the operator token
	Target   Expression
	Operator token.TokenType
	Value    Expression
}

func (as *AssignStatement) statementNode()        {}
func (as *AssignStatement) TokenLiteral() string  { return as.Token.Lexeme }
func (as *AssignStatement) GetToken() token.Token { return as.Token }
func (as *AssignStatement) String() string {
	return as.Target.String() + " " + string(as.Operator) + " " + as.Value.String()
}

type IfBranch struct {
	Condition Expression
	Body      *BlockStatement
}

// IfStatement holds the `if` branch followed by any `elif` branches.
type IfStatement struct {
	Token    token.Token // 'if'
	Branches []*IfBranch
	Else     *BlockStatement // nil when absent
}

func (is *IfStatement) statementNode()        {}
func (is *IfStatement) TokenLiteral() string  { return is.Token.Lexeme }
func (is *IfStatement) GetToken() token.Token { return is.Token }
func (is *IfStatement) String() string {
	var sb strings.Builder
	for i, b := range is.Branches {
		if i == 0 {
			sb.WriteString("if ")
		} else {
			sb.WriteString(" elif ")
		}
		sb.WriteString(b.Condition.String() + " " + b.Body.String())
	}
	if is.Else != nil {
		sb.WriteString(" else " + is.Else.String())
	}
	return sb.String()
}

type WhileStatement struct {
	Token     token.Token // 'while'
	Condition Expression
	Body      *BlockStatement
}

func (ws *WhileStatement) statementNode()        {}
func (ws *WhileStatement) TokenLiteral() string  { return ws.Token.Lexeme }
func (ws *WhileStatement) GetToken() token.Token { return ws.Token }
func (ws *WhileStatement) String() string {
	return "while " + ws.Condition.String() + " " + ws.Body.String()
}

// DoWhileStatement runs Body once before testing Condition.
type DoWhileStatement struct {
	Token     token.Token // 'do'
	Body      *BlockStatement
	Condition Expression
}

func (dw *DoWhileStatement) statementNode()        {}
func (dw *DoWhileStatement) TokenLiteral() string  { return dw.Token.Lexeme }
func (dw *DoWhileStatement) GetToken() token.Token { return dw.Token }
func (dw *DoWhileStatement) String() string {
	return "do " + dw.Body.String() + " while " + dw.Condition.String()
}

// ForStatement is `for Var in Iterable [step Step] body`.
type ForStatement struct {
	Token    token.Token // 'for'
	Var      *Identifier
	Iterable Expression
	Step     Expression // nil means 1
	Body     *BlockStatement
}

func (fs *ForStatement) statementNode()        {}
func (fs *ForStatement) TokenLiteral() string  { return fs.Token.Lexeme }
func (fs *ForStatement) GetToken() token.Token { return fs.Token }
func (fs *ForStatement) String() string {
	s := "for " + fs.Var.String() + " in " + fs.Iterable.String()
	if fs.Step != nil {
		s += " step " + fs.Step.String()
	}
	return s + " " + fs.Body.String()
}

// FunctionStatement is a named `define`.
type FunctionStatement struct {
	Token    token.Token // 'define'
	Name     *Identifier
	Function *FunctionLiteral
}

func (fs *FunctionStatement) statementNode()        {}
func (fs *FunctionStatement) TokenLiteral() string  { return fs.Token.Lexeme }
func (fs *FunctionStatement) GetToken() token.Token { return fs.Token }
func (fs *FunctionStatement) String() string {
	return "define " + fs.Name.String() + fs.Function.signature() + " " + fs.Function.Body.String()
}

type ReturnStatement struct {
	Token token.Token // 'return'
	Value Expression  // nil returns null
}

func (rs *ReturnStatement) statementNode()        {}
func (rs *ReturnStatement) TokenLiteral() string  { return rs.Token.Lexeme }
func (rs *ReturnStatement) GetToken() token.Token { return rs.Token }
func (rs *ReturnStatement) String() string {
	if rs.Value == nil {
		return "return"
	}
	return "return " + rs.Value.String()
}

// SkipStatement continues the innermost loop.
type SkipStatement struct {
	Token token.Token
}

func (ss *SkipStatement) statementNode()        {}
func (ss *SkipStatement) TokenLiteral() string  { return ss.Token.Lexeme }
func (ss *SkipStatement) GetToken() token.Token { return ss.Token }
func (ss *SkipStatement) String() string        { return "skip" }

// StopStatement breaks out of the innermost loop.
type StopStatement struct {
	Token token.Token
}

func (ss *StopStatement) statementNode()        {}
func (ss *StopStatement) TokenLiteral() string  { return ss.Token.Lexeme }
func (ss *StopStatement) GetToken() token.Token { return ss.Token }
func (ss *StopStatement) String() string        { return "stop" }

// IncludeStatement is one of:
//
//	include m
//	include m as alias
//	include m (a, b)
type IncludeStatement struct {
	Token   token.Token // 'include'
	Module  *Identifier
	Alias   *Identifier   // nil unless `as` was used
	Symbols []*Identifier // non-nil for a selective import
}

func (is *IncludeStatement) statementNode()        {}
func (is *IncludeStatement) TokenLiteral() string  { return is.Token.Lexeme }
func (is *IncludeStatement) GetToken() token.Token { return is.Token }
func (is *IncludeStatement) String() string {
	s := "include " + is.Module.String()
	if is.Alias != nil {
		s += " as " + is.Alias.String()
	}
	if is.Symbols != nil {
		var names []string
		for _, sym := range is.Symbols {
			names = append(names, sym.Value)
		}
		s += " (" + strings.Join(names, ", ") + ")"
	}
	return s
}

// Binding is the global name an include statement introduces for the module.
func (is *IncludeStatement) Binding() string {
	if is.Alias != nil {
		return is.Alias.Value
	}
	return is.Module.Value
}
