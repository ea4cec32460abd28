package vm

import (
	"strings"
	"testing"
)

func TestDisassemble(t *testing.T) {
	src := `define sq(x)
    return x * x
end
if sq(3) > 5 do print("big")`
	proto, err := CompileSource("test.seal", src, nil)
	if err != nil {
		t.Fatal(err)
	}
	out := Disassemble(proto)

	for _, want := range []string{
		"== <script> ==",
		"PUSH_CONST",
		"<fn sq>",
		"SET_GLOBAL",
		"\"sq\"",
		"JUMP_FALSE",
		"L0:",
		"HALT",
		"== sq ==",
		"params: 1, locals: 1",
		"GET_LOCAL",
		"MUL",
		"RETURN",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("listing missing %q:\n%s", want, out)
		}
	}

	lines := strings.Split(out, "\n")
	if !strings.HasPrefix(lines[1], "0000    1 ") {
		t.Errorf("unexpected first instruction line %q", lines[1])
	}
	if !strings.Contains(out, "   | ") {
		t.Errorf("expected repeated-line marker in listing:\n%s", out)
	}
}

func TestDisassembleTruncatedCode(t *testing.T) {
	proto := &Proto{
		Name: "broken",
		Chunk: &Chunk{
			Code:  []byte{byte(OP_PUSH_CONST), 0},
			Lines: []int{1, 1},
		},
	}
	out := Disassemble(proto)
	if !strings.Contains(out, "PUSH_CONST (truncated)") {
		t.Errorf("unexpected listing:\n%s", out)
	}
}
