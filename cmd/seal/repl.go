package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/agayevhuseyn/seal-sub000/internal/config"
	"github.com/agayevhuseyn/seal-sub000/internal/parser"
	"github.com/agayevhuseyn/seal-sub000/internal/vm"
)

const (
	promptMain = "seal> "
	promptCont = "...   "
	replFile   = "<repl>"
)

func runRepl(flags hostFlags) int {
	fmt.Println("SEAL interactive shell. Type :quit to exit.")

	machine := newMachine(flags, ".", nil)
	defer machine.Close()

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(func(line string) []string {
		var out []string
		for _, name := range machine.GlobalNames() {
			if strings.HasPrefix(name, line) {
				out = append(out, name)
			}
		}
		return out
	})

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, config.HistoryFile)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	for {
		code, proto, ok := readUnit(ln, machine)
		if !ok {
			fmt.Println()
			return 0
		}
		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))

		if strings.HasPrefix(trimmed, ":") {
			switch trimmed {
			case ":quit", ":q":
				return 0
			case ":globals":
				fmt.Println(strings.Join(machine.GlobalNames(), " "))
			default:
				fmt.Println("unknown command. Type :quit to exit.")
			}
			continue
		}
		if proto == nil {
			continue
		}

		ctx, cancel := interruptContext()
		err := machine.Run(ctx, proto)
		cancel()
		if err != nil {
			var exit *vm.ExitError
			if errors.As(err, &exit) {
				return exit.Code
			}
			report(err)
		}
	}
}

// readUnit reads lines until they form a complete unit and compiles it
// against the current globals. Compile errors are reported here; proto is nil
// for them and for REPL commands.
func readUnit(ln *liner.State, machine *vm.VM) (string, *vm.Proto, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", nil, false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", nil, true
		}
		if err != nil {
			return "", nil, false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, nil, true
		}

		proto, err := vm.CompileSource(replFile, src, machine.GlobalNames())
		if err == nil {
			return src, proto, true
		}
		var pe *parser.Error
		if errors.As(err, &pe) && pe.Incomplete {
			continue
		}
		report(err)
		return src, nil, true
	}
}
