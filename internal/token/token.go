package token

import "fmt"

type TokenType string

// Token is a single lexical unit with its source position.
type Token struct {
	Type    TokenType
	Lexeme  string      // raw source text
	Literal interface{} // decoded value for INT, FLOAT and STRING
	Line    int
	Column  int
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q) at %d:%d", t.Type, t.Lexeme, t.Line, t.Column)
}

const (
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"
	NEWLINE = "NEWLINE"

	IDENT  = "IDENT"
	INT    = "INT"
	FLOAT  = "FLOAT"
	STRING = "STRING"

	// Operators
	ASSIGN   = "="
	PLUS     = "+"
	MINUS    = "-"
	ASTERISK = "*"
	SLASH    = "/"
	PERCENT  = "%"
	BANG     = "!"
	TILDE    = "~"
	AMP      = "&"
	PIPE     = "|"
	CARET    = "^"
	LSHIFT   = "<<"
	RSHIFT   = ">>"

	EQ     = "=="
	NOT_EQ = "!="
	LT     = "<"
	LTE    = "<="
	GT     = ">"
	GTE    = ">="

	PLUS_ASSIGN     = "+="
	MINUS_ASSIGN    = "-="
	ASTERISK_ASSIGN = "*="
	SLASH_ASSIGN    = "/="
	PERCENT_ASSIGN  = "%="
	AMP_ASSIGN      = "&="
	PIPE_ASSIGN     = "|="
	CARET_ASSIGN    = "^="
	LSHIFT_ASSIGN   = "<<="
	RSHIFT_ASSIGN   = ">>="

	// Delimiters
	COMMA     = ","
	SEMICOLON = ";"
	COLON     = ":"
	QUESTION  = "?"
	DOT       = "."
	ELLIPSIS  = "..."
	LPAREN    = "("
	RPAREN    = ")"
	LBRACKET  = "["
	RBRACKET  = "]"
	LBRACE    = "{"
	RBRACE    = "}"

	// Keywords
	IF      = "IF"
	ELIF    = "ELIF"
	ELSE    = "ELSE"
	WHILE   = "WHILE"
	DO      = "DO"
	END     = "END"
	FOR     = "FOR"
	IN      = "IN"
	STEP    = "STEP"
	DEFINE  = "DEFINE"
	RETURN  = "RETURN"
	SKIP    = "SKIP"
	STOP    = "STOP"
	INCLUDE = "INCLUDE"
	AS      = "AS"
	GLOBAL  = "GLOBAL"
	AND     = "AND"
	OR      = "OR"
	NOT     = "NOT"
	TRUE    = "TRUE"
	FALSE   = "FALSE"
	NULL    = "NULL"
)

var keywords = map[string]TokenType{
	"if":      IF,
	"elif":    ELIF,
	"else":    ELSE,
	"while":   WHILE,
	"do":      DO,
	"end":     END,
	"for":     FOR,
	"in":      IN,
	"step":    STEP,
	"define":  DEFINE,
	"return":  RETURN,
	"skip":    SKIP,
	"stop":    STOP,
	"include": INCLUDE,
	"as":      AS,
	"global":  GLOBAL,
	"and":     AND,
	"or":      OR,
	"not":     NOT,
	"true":    TRUE,
	"false":   FALSE,
	"null":    NULL,
}

// Lexeme is the source spelling of a keyword or operator type.
func Lexeme(t TokenType) string {
	for word, kw := range keywords {
		if kw == t {
			return word
		}
	}
	return string(t)
}

// LookupIdent returns the keyword type for ident, or IDENT.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsAssignOp reports whether t is '=' or a compound assignment operator.
func IsAssignOp(t TokenType) bool {
	switch t {
	case ASSIGN, PLUS_ASSIGN, MINUS_ASSIGN, ASTERISK_ASSIGN, SLASH_ASSIGN, PERCENT_ASSIGN,
		AMP_ASSIGN, PIPE_ASSIGN, CARET_ASSIGN, LSHIFT_ASSIGN, RSHIFT_ASSIGN:
		return true
	}
	return false
}

// CompoundBase maps a compound assignment operator to its binary operator.
func CompoundBase(t TokenType) TokenType {
	switch t {
	case PLUS_ASSIGN:
		return PLUS
	case MINUS_ASSIGN:
		return MINUS
	case ASTERISK_ASSIGN:
		return ASTERISK
	case SLASH_ASSIGN:
		return SLASH
	case PERCENT_ASSIGN:
		return PERCENT
	case AMP_ASSIGN:
		return AMP
	case PIPE_ASSIGN:
		return PIPE
	case CARET_ASSIGN:
		return CARET
	case LSHIFT_ASSIGN:
		return LSHIFT
	case RSHIFT_ASSIGN:
		return RSHIFT
	}
	return ""
}
