// Package syslib is the native `sys` module.
package syslib

import (
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/agayevhuseyn/seal-sub000/internal/value"
)

const Name = "sys"

func Init() *value.Module {
	start := time.Now()

	m := value.NewModule(Name)
	m.Register("args", args, 0, false)
	m.Register("getenv", getenv, 1, false)
	m.Register("isatty", func(h value.Host, _ []value.Value) (value.Value, error) {
		fd := os.Stdout.Fd()
		return value.Bool(isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)), nil
	}, 0, false)
	// clock() is seconds since the module was loaded
	m.Register("clock", func(h value.Host, _ []value.Value) (value.Value, error) {
		return value.Float(time.Since(start).Seconds()), nil
	}, 0, false)
	return m
}

func args(h value.Host, _ []value.Value) (value.Value, error) {
	hostArgs := h.Args()
	items := make([]value.Value, len(hostArgs))
	for i, a := range hostArgs {
		items[i] = value.NewString(a)
	}
	return value.NewList(items), nil
}

func getenv(h value.Host, a []value.Value) (value.Value, error) {
	if !a[0].IsString() {
		return value.Null(), fmt.Errorf("sys.getenv expects a string, got %s", a[0].TypeName())
	}
	v, ok := os.LookupEnv(a[0].AsString())
	if !ok {
		return value.Null(), nil
	}
	return value.NewString(v), nil
}
