package token

import "testing"

func TestLexeme(t *testing.T) {
	tests := []struct {
		typ  TokenType
		want string
	}{
		{WHILE, "while"},
		{END, "end"},
		{DO, "do"},
		{NULL, "null"},
		{LPAREN, "("},
		{ASSIGN, "="},
	}
	for _, tt := range tests {
		if got := Lexeme(tt.typ); got != tt.want {
			t.Errorf("Lexeme(%s) = %q, want %q", tt.typ, got, tt.want)
		}
	}
}

func TestLookupIdent(t *testing.T) {
	for word, typ := range keywords {
		if LookupIdent(word) != typ {
			t.Errorf("LookupIdent(%q) = %s", word, LookupIdent(word))
		}
		if Lexeme(typ) != word {
			t.Errorf("Lexeme(%s) = %q, want %q", typ, Lexeme(typ), word)
		}
	}
	if LookupIdent("whilex") != IDENT {
		t.Error("whilex is not a keyword")
	}
}
