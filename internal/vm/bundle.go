package vm

import (
	"bytes"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/agayevhuseyn/seal-sub000/internal/value"
)

// Bundle format: magic "SEAL", a version byte, then the CBOR-encoded proto.
var bundleMagic = []byte("SEAL")

const BundleVersion byte = 1

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("vm: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

const (
	constInt uint8 = iota + 1
	constFloat
	constString
	constFunc
)

type wireProto struct {
	Name      string      `cbor:"1,keyasint"`
	File      string      `cbor:"2,keyasint"`
	NumParams int         `cbor:"3,keyasint"`
	Variadic  bool        `cbor:"4,keyasint,omitempty"`
	NumLocals int         `cbor:"5,keyasint"`
	Code      []byte      `cbor:"6,keyasint"`
	Lines     []int       `cbor:"7,keyasint"`
	Labels    []int       `cbor:"8,keyasint,omitempty"`
	Constants []wireConst `cbor:"9,keyasint,omitempty"`
}

type wireConst struct {
	Kind  uint8      `cbor:"1,keyasint"`
	Int   int64      `cbor:"2,keyasint,omitempty"`
	Float float64    `cbor:"3,keyasint,omitempty"`
	Str   string     `cbor:"4,keyasint,omitempty"`
	Func  *wireProto `cbor:"5,keyasint,omitempty"`
}

// IsBundle reports whether data starts with the bundle magic.
func IsBundle(data []byte) bool {
	return bytes.HasPrefix(data, bundleMagic)
}

// EncodeProto serializes a compiled unit with all nested function bodies.
func EncodeProto(proto *Proto) ([]byte, error) {
	w, err := toWire(proto)
	if err != nil {
		return nil, err
	}
	payload, err := cborEncMode.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("vm: marshal bundle: %w", err)
	}
	out := make([]byte, 0, len(bundleMagic)+1+len(payload))
	out = append(out, bundleMagic...)
	out = append(out, BundleVersion)
	return append(out, payload...), nil
}

// DecodeProto restores a unit written by EncodeProto. Function constants come
// back unbound, like freshly compiled ones.
func DecodeProto(data []byte) (*Proto, error) {
	if !IsBundle(data) {
		return nil, fmt.Errorf("vm: not a bundle (bad magic)")
	}
	data = data[len(bundleMagic):]
	if len(data) == 0 {
		return nil, fmt.Errorf("vm: truncated bundle")
	}
	if data[0] != BundleVersion {
		return nil, fmt.Errorf("vm: unsupported bundle version %d (want %d)", data[0], BundleVersion)
	}
	var w wireProto
	if err := cbor.Unmarshal(data[1:], &w); err != nil {
		return nil, fmt.Errorf("vm: unmarshal bundle: %w", err)
	}
	return fromWire(&w)
}

func toWire(p *Proto) (*wireProto, error) {
	c := p.Chunk
	w := &wireProto{
		Name:      p.Name,
		File:      c.File,
		NumParams: p.NumParams,
		Variadic:  p.Variadic,
		NumLocals: p.NumLocals,
		Code:      c.Code,
		Lines:     c.Lines,
		Labels:    c.Labels,
		Constants: make([]wireConst, len(c.Constants)),
	}
	for i, k := range c.Constants {
		switch k.Kind {
		case value.KindInt:
			w.Constants[i] = wireConst{Kind: constInt, Int: k.AsInt()}
		case value.KindFloat:
			w.Constants[i] = wireConst{Kind: constFloat, Float: k.AsFloat()}
		case value.KindString:
			w.Constants[i] = wireConst{Kind: constString, Str: k.AsString()}
		case value.KindFunc:
			fn := k.AsFunction()
			if fn == nil {
				return nil, fmt.Errorf("vm: cannot serialize builtin constant in %s", p.Name)
			}
			inner, ok := fn.Code.(*Proto)
			if !ok {
				return nil, fmt.Errorf("vm: cannot serialize foreign function in %s", p.Name)
			}
			sub, err := toWire(inner)
			if err != nil {
				return nil, err
			}
			w.Constants[i] = wireConst{Kind: constFunc, Func: sub}
		default:
			return nil, fmt.Errorf("vm: cannot serialize %s constant in %s", k.TypeName(), p.Name)
		}
	}
	return w, nil
}

func fromWire(w *wireProto) (*Proto, error) {
	if len(w.Lines) != len(w.Code) {
		return nil, fmt.Errorf("vm: %s: line table does not match code", w.Name)
	}
	if w.NumParams < 0 || w.NumLocals < w.NumParams || w.NumLocals > 256 {
		return nil, fmt.Errorf("vm: %s: invalid frame layout", w.Name)
	}
	for i, target := range w.Labels {
		if target < 0 || target > len(w.Code) {
			return nil, fmt.Errorf("vm: %s: label %d out of range", w.Name, i)
		}
	}

	chunk := &Chunk{
		Code:      w.Code,
		Lines:     w.Lines,
		Labels:    w.Labels,
		File:      w.File,
		Constants: make([]value.Value, len(w.Constants)),
	}
	for i, k := range w.Constants {
		switch k.Kind {
		case constInt:
			chunk.Constants[i] = value.Int(k.Int)
		case constFloat:
			chunk.Constants[i] = value.Float(k.Float)
		case constString:
			chunk.Constants[i] = value.StaticString(k.Str)
		case constFunc:
			if k.Func == nil {
				return nil, fmt.Errorf("vm: %s: empty function constant %d", w.Name, i)
			}
			inner, err := fromWire(k.Func)
			if err != nil {
				return nil, err
			}
			chunk.Constants[i] = value.NewFunction(inner)
		default:
			return nil, fmt.Errorf("vm: %s: unknown constant kind %d", w.Name, k.Kind)
		}
	}

	return &Proto{
		Name:      w.Name,
		Chunk:     chunk,
		NumParams: w.NumParams,
		Variadic:  w.Variadic,
		NumLocals: w.NumLocals,
	}, nil
}
