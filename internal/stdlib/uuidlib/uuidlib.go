// Package uuidlib is the native `uuid` module.
package uuidlib

import (
	"github.com/google/uuid"

	"github.com/agayevhuseyn/seal-sub000/internal/value"
)

const Name = "uuid"

func Init() *value.Module {
	m := value.NewModule(Name)
	m.Register("new", func(h value.Host, args []value.Value) (value.Value, error) {
		id, err := uuid.NewRandom()
		if err != nil {
			return value.Null(), err
		}
		return value.NewString(id.String()), nil
	}, 0, false)
	m.Register("valid", func(h value.Host, args []value.Value) (value.Value, error) {
		if !args[0].IsString() {
			return value.Bool(false), nil
		}
		_, err := uuid.Parse(args[0].AsString())
		return value.Bool(err == nil), nil
	}, 1, false)
	return m
}
