package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/agayevhuseyn/seal-sub000/internal/config"
	"github.com/agayevhuseyn/seal-sub000/internal/vm"
)

const usage = `Usage:
  seal [flags] <file> [args...]   run a source file or bundle
  seal [flags] -c <file.seal>     compile to a .sealc bundle
  seal [flags] -r <file.sealc>    run a bundle
  seal -disasm <file>             print the bytecode listing
  seal [flags] repl               start the REPL
  seal                            start the REPL (or run stdin when piped)

Flags (before the file):
  -log LEVEL   log level (trace, debug, info, warn, error)
  -debug       same as -log debug
  -trace       log every executed instruction
  -stack N     operand stack size
  -depth N     maximum call depth
`

// hostFlags are consumed by the interpreter and never reach the script. They
// override the project file.
type hostFlags struct {
	debug bool
	trace bool
	level string
	stack int
	depth int
}

// splitHostFlags consumes the leading interpreter flags. Everything from the
// first other argument on is returned untouched.
func splitHostFlags(args []string) (hostFlags, []string, error) {
	var f hostFlags
	for i := 0; i < len(args); i++ {
		name, val, hasVal := strings.Cut(strings.TrimPrefix(args[i], "-"), "=")
		if !strings.HasPrefix(args[i], "-") {
			return f, args[i:], nil
		}
		name = strings.TrimPrefix(name, "-")

		switch name {
		case "debug":
			f.debug = true
			continue
		case "trace":
			f.trace = true
			continue
		case "log", "stack", "depth":
		default:
			return f, args[i:], nil
		}

		if !hasVal {
			if i+1 >= len(args) {
				return f, nil, fmt.Errorf("flag -%s needs a value", name)
			}
			i++
			val = args[i]
		}
		switch name {
		case "log":
			if _, err := zerolog.ParseLevel(val); err != nil || val == "" {
				return f, nil, fmt.Errorf("invalid log level %q", val)
			}
			f.level = val
		case "stack", "depth":
			n, err := strconv.Atoi(val)
			if err != nil || n <= 0 {
				return f, nil, fmt.Errorf("flag -%s needs a positive integer, got %q", name, val)
			}
			if name == "stack" {
				f.stack = n
			} else {
				f.depth = n
			}
		}
	}
	return f, nil, nil
}

func stderrIsTerminal() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func red(s string) string {
	if !stderrIsTerminal() {
		return s
	}
	return "\x1b[31m" + s + "\x1b[0m"
}

func newLogger(level zerolog.Level) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: !stderrIsTerminal()}).
		Level(level).With().Timestamp().Logger()
}

// loadProject finds seal.yaml / seal.toml above dir. A broken project file is
// reported but does not stop the run.
func loadProject(dir string) *config.Project {
	p, err := config.FindProject(dir)
	if err != nil {
		fmt.Fprintln(os.Stderr, red(fmt.Sprintf("warning: %s", err)))
		return nil
	}
	return p
}

// searchPaths orders module directories: the current directory, the script's
// directory, the user module directory, then the project's paths.
func searchPaths(scriptDir string, p *config.Project) []string {
	var paths []string
	seen := make(map[string]bool)
	add := func(d string) {
		if d == "" || seen[filepath.Clean(d)] {
			return
		}
		seen[filepath.Clean(d)] = true
		paths = append(paths, d)
	}

	add(".")
	add(scriptDir)
	add(config.UserModulePath())
	if p != nil {
		for _, d := range p.SearchPaths() {
			add(d)
		}
	}
	return paths
}

// newMachine builds a VM configured from the project file found above
// scriptDir, with the host flags applied on top.
func newMachine(flags hostFlags, scriptDir string, args []string) *vm.VM {
	level := zerolog.WarnLevel
	opts := vm.Options{Args: args}

	p := loadProject(scriptDir)
	if p != nil {
		opts.StackSize = p.StackSize
		opts.MaxDepth = p.MaxDepth
		if p.LogLevel != "" {
			if l, err := zerolog.ParseLevel(p.LogLevel); err == nil {
				level = l
			}
		}
	}
	opts.SearchPaths = searchPaths(scriptDir, p)

	if flags.stack > 0 {
		opts.StackSize = flags.stack
	}
	if flags.depth > 0 {
		opts.MaxDepth = flags.depth
	}
	if flags.level != "" {
		level, _ = zerolog.ParseLevel(flags.level)
	}
	if flags.debug && level > zerolog.DebugLevel {
		level = zerolog.DebugLevel
	}
	if flags.trace {
		level = zerolog.TraceLevel
		opts.Trace = true
	}
	opts.Logger = newLogger(level)
	return vm.New(opts)
}

// report prints err and returns the process exit code for it.
func report(err error) int {
	var exit *vm.ExitError
	if errors.As(err, &exit) {
		return exit.Code
	}
	var rt *vm.RuntimeError
	if errors.As(err, &rt) {
		fmt.Fprintln(os.Stderr, red("runtime error: "+rt.StackTrace()))
		return 1
	}
	fmt.Fprintln(os.Stderr, red("error: "+err.Error()))
	return 1
}

func interruptContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runProto(flags hostFlags, proto *vm.Proto, scriptDir string, args []string) int {
	machine := newMachine(flags, scriptDir, args)
	defer machine.Close()

	ctx, cancel := interruptContext()
	defer cancel()
	if err := machine.Run(ctx, proto); err != nil {
		return report(err)
	}
	return 0
}

// runFile runs a source file or a bundle. args[0] is the script path.
func runFile(flags hostFlags, args []string) int {
	path := args[0]
	proto, err := vm.CompileFile(path)
	if err != nil {
		return report(err)
	}
	return runProto(flags, proto, filepath.Dir(path), args)
}

func runStdin(flags hostFlags) int {
	src, err := io.ReadAll(os.Stdin)
	if err != nil {
		return report(err)
	}
	proto, err := vm.CompileSource("<stdin>", string(src), nil)
	if err != nil {
		return report(err)
	}
	return runProto(flags, proto, ".", nil)
}

func handleCompile(args []string) int {
	if len(args) != 1 {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}
	sourcePath := args[0]
	if !config.IsSourceFile(sourcePath) {
		return report(fmt.Errorf("%s: expected a %s source file", sourcePath, config.SourceFileExt))
	}
	proto, err := vm.CompileFile(sourcePath)
	if err != nil {
		return report(err)
	}
	data, err := vm.EncodeProto(proto)
	if err != nil {
		return report(err)
	}

	outputPath := config.TrimSourceExt(sourcePath) + config.BytecodeFileExt
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return report(err)
	}
	fmt.Printf("Compiled %s -> %s\n", sourcePath, outputPath)
	fmt.Printf("Bytecode size: %d bytes\n", len(data))
	return 0
}

func handleRunCompiled(flags hostFlags, args []string) int {
	if len(args) < 1 {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return report(err)
	}
	proto, err := vm.DecodeProto(data)
	if err != nil {
		return report(err)
	}
	return runProto(flags, proto, filepath.Dir(args[0]), args)
}

func handleDisasm(args []string) int {
	if len(args) != 1 {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}
	proto, err := vm.CompileFile(args[0])
	if err != nil {
		return report(err)
	}
	fmt.Print(vm.Disassemble(proto))
	return 0
}

func run(argv []string) int {
	flags, args, err := splitHostFlags(argv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n%s", err, usage)
		return 2
	}
	if len(args) == 0 {
		if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
			return runRepl(flags)
		}
		return runStdin(flags)
	}

	switch args[0] {
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
		return 0
	case "-c", "--compile":
		return handleCompile(args[1:])
	case "-r", "--run":
		return handleRunCompiled(flags, args[1:])
	case "-disasm", "--disasm", "-d":
		return handleDisasm(args[1:])
	case "repl":
		return runRepl(flags)
	}
	if strings.HasPrefix(args[0], "-") {
		fmt.Fprintf(os.Stderr, "unknown flag %s\n%s", args[0], usage)
		return 2
	}
	return runFile(flags, args)
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r)
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
			os.Exit(1)
		}
	}()
	os.Exit(run(os.Args[1:]))
}
