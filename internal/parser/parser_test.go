package parser_test

import (
	"strings"
	"testing"

	"github.com/agayevhuseyn/seal-sub000/internal/ast"
	"github.com/agayevhuseyn/seal-sub000/internal/lexer"
	"github.com/agayevhuseyn/seal-sub000/internal/parser"
	"github.com/agayevhuseyn/seal-sub000/internal/pipeline"
)

func parse(t *testing.T, input string) *ast.Program {
	t.Helper()
	ctx := pipeline.New(&lexer.LexerProcessor{}, &parser.ParserProcessor{}).Run(pipeline.NewContext("test.seal", input))
	if ctx.Failed() {
		var msgs []string
		for _, err := range ctx.Errors {
			msgs = append(msgs, err.Error())
		}
		t.Fatalf("parsing failed with errors:\n%s\ninput: %s", strings.Join(msgs, "\n"), input)
	}
	return ctx.AstRoot
}

func parseError(t *testing.T, input string) *parser.Error {
	t.Helper()
	toks, err := lexer.New(input).Tokenize()
	if err != nil {
		t.Fatalf("lexer error: %v", err)
	}
	_, err = parser.Parse(toks)
	if err == nil {
		t.Fatalf("expected parse error for %q", input)
	}
	pe, ok := err.(*parser.Error)
	if !ok {
		t.Fatalf("expected *parser.Error, got %T", err)
	}
	return pe
}

func TestParser(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple_assignment", "a = 5", "a = 5"},
		{"precedence", "a = 5 + 2 * 10", "a = (5 + (2 * 10))"},
		{"prefix", "a = -5 + ~b", "a = ((-5) + (~b))"},
		{"grouping", "a = (b + c) * -d", "a = ((b + c) * (-d))"},
		{"bitwise_precedence", "x = a | b ^ c & d << 1", "x = (a | (b ^ (c & (d << 1))))"},
		{"comparison_logic", "x = a < b and c == d or e", "x = (((a < b) and (c == d)) or e)"},
		{"not", "x = not a", "x = (nota)"},
		{"ternary", "x = a ? 1 : b ? 2 : 3", "x = (a ? 1 : (b ? 2 : 3))"},
		{"compound_assign", "x <<= 2", "x <<= 2"},
		{"global_assign", "global x = 1", "global x = 1"},
		{"index_assign", "l[0] = m.k", "(l[0]) = (m.k)"},
		{"member_assign", "m.k += 1", "(m.k) += 1"},
		{"call", "print(1, \"a\")", "print(1, \"a\")"},
		{"method_call", "l.push(3)", "l.push(3)"},
		{"chained", "a.b[1].c(2)", "((a.b)[1]).c(2)"},
		{"list_literal", "x = [1, 2.5, null, true]", "x = [1, 2.5, null, true]"},
		{"map_literal", "x = {a: 1, \"b c\": [2]}", "x = {a: 1, b c: [2]}"},
		{"multiline_list", "x = [1,\n  2,\n]", "x = [1, 2]"},
		{"if_single", "if a do print(1) else do print(2)", "if a {print(1)} else {print(2)}"},
		{"if_block", "if a\n  x = 1\nelif b\n  x = 2\nelse\n  x = 3\nend", "if a {x = 1} elif b {x = 2} else {x = 3}"},
		{"if_block_no_else", "if a\n  x = 1\n  y = 2\nend", "if a {x = 1; y = 2}"},
		{"while", "while i < 3 do i += 1", "while (i < 3) {i += 1}"},
		{"do_while", "do\n  i += 1\nend while i < 3", "do {i += 1} while (i < 3)"},
		{"for", "for i in span(3) do print(i)", "for i in span(3) {print(i)}"},
		{"for_step", "for c in s step -1\n  print(c)\nend", "for c in s step (-1) {print(c)}"},
		{"define", "define add(a, b) do return a + b", "define add(a, b) {return (a + b)}"},
		{"define_variadic", "define f(a, rest...)\n  return rest\nend", "define f(a, rest...) {return rest}"},
		{"define_anonymous", "f = define(x) do return x", "f = define(x) {return x}"},
		{"return_empty", "define f()\n  return\nend", "define f() {return}"},
		{"skip_stop", "while true\n  skip\n  stop\nend", "while true {skip; stop}"},
		{"include", "include math", "include math"},
		{"include_alias", "include math as m", "include math as m"},
		{"include_symbols", "include math (sqrt, pi)", "include math (sqrt, pi)"},
		{"semicolons", "a = 1; b = 2", "a = 1\nb = 2"},
		{"comments", "# leading\na = 1 # trailing\n", "a = 1"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			prog := parse(t, tc.input)
			if got := prog.String(); got != tc.expected {
				t.Errorf("expected:\n%s\ngot:\n%s", tc.expected, got)
			}
		})
	}
}

func TestNestedBlocks(t *testing.T) {
	input := `
define fib(n)
    if n < 2 do return n
    return fib(n - 1) + fib(n - 2)
end
for i in 10
    if i % 2 == 0
        skip
    end
    print(fib(i))
end
`
	prog := parse(t, input)
	if len(prog.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(prog.Statements))
	}
	fn, ok := prog.Statements[0].(*ast.FunctionStatement)
	if !ok {
		t.Fatalf("expected FunctionStatement, got %T", prog.Statements[0])
	}
	if fn.Name.Value != "fib" || len(fn.Function.Parameters) != 1 {
		t.Errorf("unexpected function %s", fn)
	}
	if len(fn.Function.Body.Statements) != 2 {
		t.Errorf("expected 2 body statements, got %d", len(fn.Function.Body.Statements))
	}
	loop, ok := prog.Statements[1].(*ast.ForStatement)
	if !ok {
		t.Fatalf("expected ForStatement, got %T", prog.Statements[1])
	}
	if len(loop.Body.Statements) != 2 {
		t.Errorf("expected 2 loop statements, got %d", len(loop.Body.Statements))
	}
}

func TestSingleLineIfDoesNotStealOuterElse(t *testing.T) {
	prog := parse(t, "if a\n  if b do x = 1\nelse\n  x = 2\nend")
	outer := prog.Statements[0].(*ast.IfStatement)
	if outer.Else == nil {
		t.Fatal("else branch attached to the wrong if")
	}
	inner := outer.Branches[0].Body.Statements[0].(*ast.IfStatement)
	if inner.Else != nil {
		t.Fatal("inner single-line if took the else branch")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		msg        string
		incomplete bool
	}{
		{"missing_end", "while true\n  x = 1\n", "expected 'end'", true},
		{"unclosed_call", "print(1, ", "end of input", true},
		{"bad_target", "f() = 1", "invalid assignment target", false},
		{"stray_end", "end", "unexpected 'end'", false},
		{"no_body", "while x print(1)", "expected 'do' or newline", false},
		{"bad_map_key", "x = {1: 2}", "expected map key", false},
		{"empty_import", "include m ()", "empty import list", false},
		{"two_exprs", "x = 1 2", "unexpected '2' after statement", false},
		{"do_while_no_while", "do\n  x = 1\nend", "expected 'while'", true},
		{"for_without_in", "for x [1] do print(x)", "expected 'in', got '['", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pe := parseError(t, tt.input)
			if !strings.Contains(pe.Msg, tt.msg) {
				t.Errorf("expected message containing %q, got %q", tt.msg, pe.Msg)
			}
			if pe.Incomplete != tt.incomplete {
				t.Errorf("expected incomplete=%v, got %v (%s)", tt.incomplete, pe.Incomplete, pe)
			}
		})
	}
}

func TestErrorPosition(t *testing.T) {
	pe := parseError(t, "a = 1\nb = )")
	if pe.Line != 2 || pe.Column != 5 {
		t.Errorf("expected error at 2:5, got %d:%d", pe.Line, pe.Column)
	}
}
