package config

import "strings"

const SourceFileExt = ".seal"

// BytecodeFileExt is the extension of compiled bytecode artifacts.
const BytecodeFileExt = ".sealc"

// NativePluginExt is the extension of natively compiled module plugins.
const NativePluginExt = ".so"

// NativeInitSymbol is the single entry point a native plugin must export.
const NativeInitSymbol = "SealInit"

// ModulePathEnv overrides the user module directory.
const ModulePathEnv = "SEAL_PATH"

// UserModuleDir is the default user module directory, relative to $HOME.
const UserModuleDir = ".seal/modules"

// HistoryFile is the REPL history file, relative to $HOME.
const HistoryFile = ".seal_history"

// Runtime limits
const (
	DefaultStackSize = 1 << 16 // operand stack cells
	DefaultMaxDepth  = 1024    // nested call frames
	MaxConstants     = 1 << 16 // 16-bit constant index
	MaxLabels        = 1 << 16 // 16-bit label index
	MaxLocals        = 256     // 8-bit local slot
	MaxArgs          = 255     // 8-bit argument count
)

// Built-in function names
const (
	PrintFuncName  = "print"
	ScanFuncName   = "scan"
	ExitFuncName   = "exit"
	LenFuncName    = "len"
	IntFuncName    = "int"
	FloatFuncName  = "float"
	StrFuncName    = "str"
	BoolFuncName   = "bool"
	PushFuncName   = "push"
	PopFuncName    = "pop"
	InsertFuncName = "insert"
	RemoveFuncName = "remove"
	SpanFuncName   = "span"
	TypeFuncName   = "type"
	KeysFuncName   = "keys"
	HasFuncName    = "has"
)

// Runtime type names as reported by type() and in diagnostics
const (
	NullTypeName     = "null"
	IntTypeName      = "int"
	FloatTypeName    = "float"
	BoolTypeName     = "bool"
	StringTypeName   = "string"
	ListTypeName     = "list"
	MapTypeName      = "map"
	FunctionTypeName = "function"
	ModuleTypeName   = "module"
	PtrTypeName      = "ptr"
)

// TrimSourceExt removes the source extension from a file name for display.
func TrimSourceExt(file string) string {
	return strings.TrimSuffix(file, SourceFileExt)
}

// IsSourceFile reports whether path has the source extension.
func IsSourceFile(path string) bool {
	return strings.HasSuffix(path, SourceFileExt)
}
