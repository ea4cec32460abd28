// Package stdlib collects the native modules compiled into the runtime.
package stdlib

import (
	"github.com/agayevhuseyn/seal-sub000/internal/stdlib/mathlib"
	"github.com/agayevhuseyn/seal-sub000/internal/stdlib/sqlitelib"
	"github.com/agayevhuseyn/seal-sub000/internal/stdlib/strlib"
	"github.com/agayevhuseyn/seal-sub000/internal/stdlib/syslib"
	"github.com/agayevhuseyn/seal-sub000/internal/stdlib/uuidlib"
	"github.com/agayevhuseyn/seal-sub000/internal/stdlib/yamllib"
	"github.com/agayevhuseyn/seal-sub000/internal/value"
)

// Natives returns a fresh name -> init map of the compiled-in modules.
func Natives() map[string]value.NativeInit {
	return map[string]value.NativeInit{
		mathlib.Name:   mathlib.Init,
		strlib.Name:    strlib.Init,
		uuidlib.Name:   uuidlib.Init,
		yamllib.Name:   yamllib.Init,
		sqlitelib.Name: sqlitelib.Init,
		syslib.Name:    syslib.Init,
	}
}
