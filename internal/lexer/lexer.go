package lexer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/agayevhuseyn/seal-sub000/internal/token"
)

type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
	line         int  // current line number
	column       int  // current column number

	// parenDepth suppresses NEWLINE tokens inside (), [] and {}.
	parenDepth int
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}

	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) peekChar2() byte {
	if l.readPosition+1 >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition+1]
}

// Error is a lexical error at a source position.
type Error struct {
	File   string
	Line   int
	Column int
	Msg    string
}

func (e *Error) Error() string {
	if e.File == "" {
		return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Msg)
	}
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Msg)
}

// Tokenize lexes the whole input. The returned slice always ends with EOF.
func (l *Lexer) Tokenize() ([]token.Token, error) {
	var toks []token.Token
	for {
		tok := l.NextToken()
		if tok.Type == token.ILLEGAL {
			return nil, &Error{Line: tok.Line, Column: tok.Column, Msg: tok.Lexeme}
		}
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks, nil
		}
	}
}

func (l *Lexer) NextToken() token.Token {
	var tok token.Token

	l.skipWhitespace()

	line, col := l.line, l.column

	switch l.ch {
	case 0:
		return token.Token{Type: token.EOF, Line: line, Column: col}
	case '\n':
		tok = newToken(token.NEWLINE, "\n", line, col)
	case ';':
		tok = newToken(token.SEMICOLON, ";", line, col)
	case '=':
		if l.peekChar() == '=' {
			l.readChar()
			tok = newToken(token.EQ, "==", line, col)
		} else {
			tok = newToken(token.ASSIGN, "=", line, col)
		}
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			tok = newToken(token.NOT_EQ, "!=", line, col)
		} else {
			tok = newToken(token.BANG, "!", line, col)
		}
	case '<':
		if l.peekChar() == '<' {
			l.readChar()
			if l.peekChar() == '=' {
				l.readChar()
				tok = newToken(token.LSHIFT_ASSIGN, "<<=", line, col)
			} else {
				tok = newToken(token.LSHIFT, "<<", line, col)
			}
		} else if l.peekChar() == '=' {
			l.readChar()
			tok = newToken(token.LTE, "<=", line, col)
		} else {
			tok = newToken(token.LT, "<", line, col)
		}
	case '>':
		if l.peekChar() == '>' {
			l.readChar()
			if l.peekChar() == '=' {
				l.readChar()
				tok = newToken(token.RSHIFT_ASSIGN, ">>=", line, col)
			} else {
				tok = newToken(token.RSHIFT, ">>", line, col)
			}
		} else if l.peekChar() == '=' {
			l.readChar()
			tok = newToken(token.GTE, ">=", line, col)
		} else {
			tok = newToken(token.GT, ">", line, col)
		}
	case '+', '-', '*', '/', '%', '&', '|', '^':
		tok = l.readOperator(line, col)
	case '~':
		tok = newToken(token.TILDE, "~", line, col)
	case ',':
		tok = newToken(token.COMMA, ",", line, col)
	case ':':
		tok = newToken(token.COLON, ":", line, col)
	case '?':
		tok = newToken(token.QUESTION, "?", line, col)
	case '.':
		if l.peekChar() == '.' && l.peekChar2() == '.' {
			l.readChar()
			l.readChar()
			tok = newToken(token.ELLIPSIS, "...", line, col)
		} else if isDigit(l.peekChar()) {
			return l.readNumber()
		} else {
			tok = newToken(token.DOT, ".", line, col)
		}
	case '(':
		l.parenDepth++
		tok = newToken(token.LPAREN, "(", line, col)
	case ')':
		l.parenDepth--
		tok = newToken(token.RPAREN, ")", line, col)
	case '[':
		l.parenDepth++
		tok = newToken(token.LBRACKET, "[", line, col)
	case ']':
		l.parenDepth--
		tok = newToken(token.RBRACKET, "]", line, col)
	case '{':
		l.parenDepth++
		tok = newToken(token.LBRACE, "{", line, col)
	case '}':
		l.parenDepth--
		tok = newToken(token.RBRACE, "}", line, col)
	case '"', '\'':
		s, err := l.readString(l.ch)
		if err != nil {
			return token.Token{Type: token.ILLEGAL, Lexeme: err.Error(), Line: line, Column: col}
		}
		return token.Token{Type: token.STRING, Lexeme: s, Literal: s, Line: line, Column: col}
	default:
		if isLetter(l.ch) {
			ident := l.readIdentifier()
			return token.Token{Type: token.LookupIdent(ident), Lexeme: ident, Literal: ident, Line: line, Column: col}
		}
		if isDigit(l.ch) {
			return l.readNumber()
		}
		tok = token.Token{Type: token.ILLEGAL, Lexeme: fmt.Sprintf("unexpected character %q", l.ch), Line: line, Column: col}
	}

	l.readChar()
	return tok
}

// readOperator handles single-char arithmetic/bitwise operators and their
// compound-assignment forms.
func (l *Lexer) readOperator(line, col int) token.Token {
	single := map[byte]token.TokenType{
		'+': token.PLUS, '-': token.MINUS, '*': token.ASTERISK, '/': token.SLASH,
		'%': token.PERCENT, '&': token.AMP, '|': token.PIPE, '^': token.CARET,
	}
	compound := map[byte]token.TokenType{
		'+': token.PLUS_ASSIGN, '-': token.MINUS_ASSIGN, '*': token.ASTERISK_ASSIGN, '/': token.SLASH_ASSIGN,
		'%': token.PERCENT_ASSIGN, '&': token.AMP_ASSIGN, '|': token.PIPE_ASSIGN, '^': token.CARET_ASSIGN,
	}
	ch := l.ch
	if l.peekChar() == '=' {
		l.readChar()
		return newToken(compound[ch], string(ch)+"=", line, col)
	}
	return newToken(single[ch], string(ch), line, col)
}

func (l *Lexer) readString(quote byte) (string, error) {
	var sb strings.Builder
	for {
		l.readChar()
		switch l.ch {
		case 0, '\n':
			return "", fmt.Errorf("unterminated string")
		case quote:
			l.readChar()
			return sb.String(), nil
		case '\\':
			l.readChar()
			switch l.ch {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '0':
				sb.WriteByte(0)
			case '\\', '"', '\'':
				sb.WriteByte(l.ch)
			default:
				return "", fmt.Errorf("invalid escape \\%c", l.ch)
			}
		default:
			sb.WriteByte(l.ch)
		}
	}
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

func (l *Lexer) readNumber() token.Token {
	line, col := l.line, l.column
	position := l.position
	isFloat := false

	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X') {
		l.readChar()
		l.readChar()
		for isHexDigit(l.ch) {
			l.readChar()
		}
		lexeme := l.input[position:l.position]
		n, err := strconv.ParseInt(lexeme[2:], 16, 64)
		if err != nil {
			return token.Token{Type: token.ILLEGAL, Lexeme: "invalid hex literal " + lexeme, Line: line, Column: col}
		}
		return token.Token{Type: token.INT, Lexeme: lexeme, Literal: n, Line: line, Column: col}
	}

	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		next := l.peekChar()
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(l.peekChar2())) {
			isFloat = true
			l.readChar()
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}

	lexeme := l.input[position:l.position]
	if isFloat {
		f, err := strconv.ParseFloat(lexeme, 64)
		if err != nil {
			return token.Token{Type: token.ILLEGAL, Lexeme: "invalid float literal " + lexeme, Line: line, Column: col}
		}
		return token.Token{Type: token.FLOAT, Lexeme: lexeme, Literal: f, Line: line, Column: col}
	}
	n, err := strconv.ParseInt(lexeme, 10, 64)
	if err != nil {
		return token.Token{Type: token.ILLEGAL, Lexeme: "integer literal out of range " + lexeme, Line: line, Column: col}
	}
	return token.Token{Type: token.INT, Lexeme: lexeme, Literal: n, Line: line, Column: col}
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || ('a' <= ch && ch <= 'f') || ('A' <= ch && ch <= 'F')
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func newToken(tokenType token.TokenType, lexeme string, line, col int) token.Token {
	return token.Token{Type: tokenType, Lexeme: lexeme, Literal: lexeme, Line: line, Column: col}
}

func (l *Lexer) skipWhitespace() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || (l.ch == '\n' && l.parenDepth > 0) {
			l.readChar()
		}
		// Line continuation
		if l.ch == '\\' && l.peekChar() == '\n' {
			l.readChar()
			l.readChar()
			continue
		}
		if l.ch == '#' {
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			continue
		}
		break
	}
}
