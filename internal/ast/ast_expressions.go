package ast

import (
	"strconv"
	"strings"

	"github.com/agayevhuseyn/seal-sub000/internal/token"
)

// Identifier is a variable reference. Global is set for `global NAME`.
type Identifier struct {
	Token  token.Token
	Value  string
	Global bool
}

func (i *Identifier) expressionNode()       {}
func (i *Identifier) TokenLiteral() string  { return i.Token.Lexeme }
func (i *Identifier) GetToken() token.Token { return i.Token }
func (i *Identifier) String() string {
	if i.Global {
		return "global " + i.Value
	}
	return i.Value
}

type IntegerLiteral struct {
	Token token.Token
	Value int64
}

func (il *IntegerLiteral) expressionNode()       {}
func (il *IntegerLiteral) TokenLiteral() string  { return il.Token.Lexeme }
func (il *IntegerLiteral) GetToken() token.Token { return il.Token }
func (il *IntegerLiteral) String() string        { return strconv.FormatInt(il.Value, 10) }

type FloatLiteral struct {
	Token token.Token
	Value float64
}

func (fl *FloatLiteral) expressionNode()       {}
func (fl *FloatLiteral) TokenLiteral() string  { return fl.Token.Lexeme }
func (fl *FloatLiteral) GetToken() token.Token { return fl.Token }
func (fl *FloatLiteral) String() string        { return fl.Token.Lexeme }

type StringLiteral struct {
	Token token.Token
	Value string
}

func (sl *StringLiteral) expressionNode()       {}
func (sl *StringLiteral) TokenLiteral() string  { return sl.Token.Lexeme }
func (sl *StringLiteral) GetToken() token.Token { return sl.Token }
func (sl *StringLiteral) String() string        { return strconv.Quote(sl.Value) }

type BooleanLiteral struct {
	Token token.Token
	Value bool
}

func (bl *BooleanLiteral) expressionNode()       {}
func (bl *BooleanLiteral) TokenLiteral() string  { return bl.Token.Lexeme }
func (bl *BooleanLiteral) GetToken() token.Token { return bl.Token }
func (bl *BooleanLiteral) String() string        { return strconv.FormatBool(bl.Value) }

type NullLiteral struct {
	Token token.Token
}

func (nl *NullLiteral) expressionNode()       {}
func (nl *NullLiteral) TokenLiteral() string  { return nl.Token.Lexeme }
func (nl *NullLiteral) GetToken() token.Token { return nl.Token }
func (nl *NullLiteral) String() string        { return "null" }

type ListLiteral struct {
	Token    token.Token // '['
	Elements []Expression
}

func (ll *ListLiteral) expressionNode()       {}
func (ll *ListLiteral) TokenLiteral() string  { return ll.Token.Lexeme }
func (ll *ListLiteral) GetToken() token.Token { return ll.Token }
func (ll *ListLiteral) String() string {
	return "[" + joinExprs(ll.Elements) + "]"
}

// MapEntry is one `key: value` pair of a map literal. Keys are identifiers or
// string literals and are always stored as strings.
type MapEntry struct {
	Token token.Token // the key token
	Key   string
	Value Expression
}

type MapLiteral struct {
	Token   token.Token // '{'
	Entries []*MapEntry
}

func (ml *MapLiteral) expressionNode()       {}
func (ml *MapLiteral) TokenLiteral() string  { return ml.Token.Lexeme }
func (ml *MapLiteral) GetToken() token.Token { return ml.Token }
func (ml *MapLiteral) String() string {
	var parts []string
	for _, e := range ml.Entries {
		parts = append(parts, e.Key+": "+e.Value.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// FunctionLiteral is a function body with its parameter list. Named functions
// wrap it in a FunctionStatement; Name is filled in for those.
type FunctionLiteral struct {
	Token      token.Token // 'define'
	Name       string
	Parameters []*Identifier
	Variadic   bool // last parameter collects remaining arguments as a list
	Body       *BlockStatement
}

func (fl *FunctionLiteral) expressionNode()       {}
func (fl *FunctionLiteral) TokenLiteral() string  { return fl.Token.Lexeme }
func (fl *FunctionLiteral) GetToken() token.Token { return fl.Token }
func (fl *FunctionLiteral) String() string {
	return "define" + fl.signature() + " " + fl.Body.String()
}

func (fl *FunctionLiteral) signature() string {
	var params []string
	for _, p := range fl.Parameters {
		params = append(params, p.Value)
	}
	s := "(" + strings.Join(params, ", ")
	if fl.Variadic {
		s += "..."
	}
	return s + ")"
}

type CallExpression struct {
	Token     token.Token // '('
	Function  Expression
	Arguments []Expression
}

func (ce *CallExpression) expressionNode()       {}
func (ce *CallExpression) TokenLiteral() string  { return ce.Token.Lexeme }
func (ce *CallExpression) GetToken() token.Token { return ce.Token }
func (ce *CallExpression) String() string {
	return ce.Function.String() + "(" + joinExprs(ce.Arguments) + ")"
}

// MethodCallExpression is `receiver.name(args)`.
type MethodCallExpression struct {
	Token     token.Token // '.'
	Receiver  Expression
	Name      string
	Arguments []Expression
}

func (mc *MethodCallExpression) expressionNode()       {}
func (mc *MethodCallExpression) TokenLiteral() string  { return mc.Token.Lexeme }
func (mc *MethodCallExpression) GetToken() token.Token { return mc.Token }
func (mc *MethodCallExpression) String() string {
	return mc.Receiver.String() + "." + mc.Name + "(" + joinExprs(mc.Arguments) + ")"
}

type IndexExpression struct {
	Token token.Token // '['
	Left  Expression
	Index Expression
}

func (ie *IndexExpression) expressionNode()       {}
func (ie *IndexExpression) TokenLiteral() string  { return ie.Token.Lexeme }
func (ie *IndexExpression) GetToken() token.Token { return ie.Token }
func (ie *IndexExpression) String() string {
	return "(" + ie.Left.String() + "[" + ie.Index.String() + "])"
}

// MemberExpression is `left.name`, equivalent to left["name"].
type MemberExpression struct {
	Token token.Token // '.'
	Left  Expression
	Name  string
}

func (me *MemberExpression) expressionNode()       {}
func (me *MemberExpression) TokenLiteral() string  { return me.Token.Lexeme }
func (me *MemberExpression) GetToken() token.Token { return me.Token }
func (me *MemberExpression) String() string {
	return "(" + me.Left.String() + "." + me.Name + ")"
}

type PrefixExpression struct {
	Token    token.Token
	Operator token.TokenType // MINUS, TILDE, BANG or NOT
	Right    Expression
}

func (pe *PrefixExpression) expressionNode()       {}
func (pe *PrefixExpression) TokenLiteral() string  { return pe.Token.Lexeme }
func (pe *PrefixExpression) GetToken() token.Token { return pe.Token }
func (pe *PrefixExpression) String() string {
	return "(" + pe.Token.Lexeme + pe.Right.String() + ")"
}

type InfixExpression struct {
	Token    token.Token
	Left     Expression
	Operator token.TokenType
	Right    Expression
}

func (ie *InfixExpression) expressionNode()       {}
func (ie *InfixExpression) TokenLiteral() string  { return ie.Token.Lexeme }
func (ie *InfixExpression) GetToken() token.Token { return ie.Token }
func (ie *InfixExpression) String() string {
	return "(" + ie.Left.String() + " " + ie.Token.Lexeme + " " + ie.Right.String() + ")"
}

// LogicalExpression is a short-circuit `and` / `or`.
type LogicalExpression struct {
	Token    token.Token
	Left     Expression
	Operator token.TokenType // AND or OR
	Right    Expression
}

func (le *LogicalExpression) expressionNode()       {}
func (le *LogicalExpression) TokenLiteral() string  { return le.Token.Lexeme }
func (le *LogicalExpression) GetToken() token.Token { return le.Token }
func (le *LogicalExpression) String() string {
	return "(" + le.Left.String() + " " + le.Token.Lexeme + " " + le.Right.String() + ")"
}

type TernaryExpression struct {
	Token       token.Token // '?'
	Condition   Expression
	Consequence Expression
	Alternative Expression
}

func (te *TernaryExpression) expressionNode()       {}
func (te *TernaryExpression) TokenLiteral() string  { return te.Token.Lexeme }
func (te *TernaryExpression) GetToken() token.Token { return te.Token }
func (te *TernaryExpression) String() string {
	return "(" + te.Condition.String() + " ? " + te.Consequence.String() + " : " + te.Alternative.String() + ")"
}

func joinExprs(exprs []Expression) string {
	var parts []string
	for _, e := range exprs {
		parts = append(parts, e.String())
	}
	return strings.Join(parts, ", ")
}
