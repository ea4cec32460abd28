// Package yamllib is the native `yaml` module. Mappings decode to maps in
// document order and sequences to lists; encoding keeps map insertion order.
package yamllib

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/agayevhuseyn/seal-sub000/internal/value"
)

const Name = "yaml"

// maxDepth bounds nesting in both directions; self-referencing containers
// hit it when encoding.
const maxDepth = 64

var errTooDeep = errors.New("value nested too deeply")

func Init() *value.Module {
	m := value.NewModule(Name)
	m.Register("encode", encode, 1, false)
	m.Register("decode", decode, 1, false)
	return m
}

func encode(h value.Host, args []value.Value) (value.Value, error) {
	node, err := toNode(args[0], 0)
	if err != nil {
		return value.Null(), fmt.Errorf("yaml.encode: %w", err)
	}
	out, err := yaml.Marshal(node)
	if err != nil {
		return value.Null(), fmt.Errorf("yaml.encode: %w", err)
	}
	return value.NewString(string(out)), nil
}

func decode(h value.Host, args []value.Value) (value.Value, error) {
	if !args[0].IsString() {
		return value.Null(), fmt.Errorf("yaml.decode expects a string, got %s", args[0].TypeName())
	}
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(args[0].AsString()), &doc); err != nil {
		return value.Null(), fmt.Errorf("yaml.decode: %w", err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return value.Null(), nil
	}
	v, err := fromNode(doc.Content[0], 0)
	if err != nil {
		return value.Null(), fmt.Errorf("yaml.decode: %w", err)
	}
	return v, nil
}

func scalar(tag, v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: v}
}

func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	case math.IsNaN(f):
		return ".nan"
	}
	return value.FormatFloat(f)
}

func toNode(v value.Value, depth int) (*yaml.Node, error) {
	if depth > maxDepth {
		return nil, errTooDeep
	}
	switch v.Kind {
	case value.KindNull:
		return scalar("!!null", "null"), nil
	case value.KindInt:
		return scalar("!!int", strconv.FormatInt(v.AsInt(), 10)), nil
	case value.KindFloat:
		return scalar("!!float", formatFloat(v.AsFloat())), nil
	case value.KindBool:
		return scalar("!!bool", strconv.FormatBool(v.AsBool())), nil
	case value.KindString:
		return scalar("!!str", v.AsString()), nil

	case value.KindList:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range v.AsList().Items() {
			n, err := toNode(item, depth+1)
			if err != nil {
				return nil, err
			}
			seq.Content = append(seq.Content, n)
		}
		return seq, nil

	case value.KindMap:
		mapping := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		var err error
		v.AsMap().Range(func(key string, item value.Value) bool {
			var n *yaml.Node
			if n, err = toNode(item, depth+1); err != nil {
				return false
			}
			mapping.Content = append(mapping.Content, scalar("!!str", key), n)
			return true
		})
		if err != nil {
			return nil, err
		}
		return mapping, nil
	}
	return nil, fmt.Errorf("cannot encode value of type %s", v.TypeName())
}

// fromNode returns an owned value for n.
func fromNode(n *yaml.Node, depth int) (value.Value, error) {
	if depth > maxDepth {
		return value.Null(), errTooDeep
	}
	switch n.Kind {
	case yaml.AliasNode:
		return fromNode(n.Alias, depth+1)

	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!null":
			return value.Null(), nil
		case "!!bool":
			var b bool
			if err := n.Decode(&b); err != nil {
				return value.Null(), err
			}
			return value.Bool(b), nil
		case "!!int":
			var i int64
			if err := n.Decode(&i); err != nil {
				return value.Null(), err
			}
			return value.Int(i), nil
		case "!!float":
			var f float64
			if err := n.Decode(&f); err != nil {
				return value.Null(), err
			}
			return value.Float(f), nil
		}
		return value.NewString(n.Value), nil

	case yaml.SequenceNode:
		items := make([]value.Value, 0, len(n.Content))
		for _, c := range n.Content {
			item, err := fromNode(c, depth+1)
			if err != nil {
				value.ReleaseAll(items)
				return value.Null(), err
			}
			items = append(items, item)
		}
		return value.NewList(items), nil

	case yaml.MappingNode:
		m := value.NewMap()
		for i := 0; i+1 < len(n.Content); i += 2 {
			item, err := fromNode(n.Content[i+1], depth+1)
			if err == nil {
				if err = m.AsMap().Set(n.Content[i].Value, item); err != nil {
					item.Release()
				}
			}
			if err != nil {
				m.Release()
				return value.Null(), err
			}
		}
		return m, nil
	}
	return value.Null(), fmt.Errorf("unsupported yaml node at line %d", n.Line)
}
