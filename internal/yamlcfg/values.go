package yamlcfg

import (
	"fmt"
	"math"
	"strings"

	"github.com/specialistvlad/pathscript/internal/value"
	"gopkg.in/yaml.v3"
)

const (
	tagRef = "!ref"
	tagRaw = "!raw"
	tagInf = "!inf"
)

func isSet(n *yaml.Node) bool { return n != nil && n.Kind != 0 }

func resolve(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

// toValue translates a node into a value.
func toValue(n *yaml.Node) (value.Value, error) {
	n = resolve(n)
	switch n.Kind {
	case yaml.ScalarNode:
		return scalar(n)
	case yaml.SequenceNode:
		elems := make([]value.Value, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := toValue(item)
			if err != nil {
				return value.Value{}, err
			}
			elems = append(elems, v)
		}
		return value.Sequence(elems...), nil
	case yaml.MappingNode:
		pairs, err := toPairs(n)
		if err != nil {
			return value.Value{}, err
		}
		return value.Mapping(pairs...), nil
	}
	return value.Value{}, fmt.Errorf("line %d: unsupported node", n.Line)
}

func scalar(n *yaml.Node) (value.Value, error) {
	switch tag := n.ShortTag(); tag {
	case tagRef:
		name := strings.TrimSpace(n.Value)
		if !value.IsIdentifier(name) {
			return value.Value{}, fmt.Errorf("line %d: %q is not a valid name", n.Line, name)
		}
		return value.Identifier(name), nil
	case tagRaw:
		return value.Raw(n.Value), nil
	case tagInf:
		sign, err := infSign(n)
		if err != nil {
			return value.Value{}, err
		}
		return value.Inf(sign), nil
	case "!!str":
		return value.String(n.Value), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return value.Value{}, err
		}
		return value.Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return value.Value{}, err
		}
		return value.Int(i), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return value.Value{}, err
		}
		if math.IsNaN(f) {
			return value.Value{}, fmt.Errorf("line %d: NaN cannot be written", n.Line)
		}
		return value.Bound(f), nil
	case "!!null":
		return value.Value{}, fmt.Errorf("line %d: null is not a valid argument value", n.Line)
	default:
		return value.Value{}, fmt.Errorf("line %d: unsupported tag %s", n.Line, tag)
	}
}

func infSign(n *yaml.Node) (int, error) {
	switch strings.TrimSpace(n.Value) {
	case "", "+":
		return 1, nil
	case "-":
		return -1, nil
	}
	return 0, fmt.Errorf("line %d: !inf takes \"-\", \"+\" or nothing, got %q", n.Line, n.Value)
}

// toPairs translates a mapping, keeping key order. Keys must be plain
// strings and appear once.
func toPairs(n *yaml.Node) ([]value.Pair, error) {
	n = resolve(n)
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping", n.Line)
	}
	pairs := make([]value.Pair, 0, len(n.Content)/2)
	seen := make(map[string]bool, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if k.Kind != yaml.ScalarNode || k.ShortTag() == "!!merge" {
			return nil, fmt.Errorf("line %d: mapping keys must be plain names", k.Line)
		}
		if seen[k.Value] {
			return nil, fmt.Errorf("line %d: key %s is given more than once", k.Line, k.Value)
		}
		seen[k.Value] = true
		val, err := toValue(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k.Value, err)
		}
		pairs = append(pairs, value.Pair{Key: k.Value, Value: val})
	}
	return pairs, nil
}

// bound reads a volume bound.
func bound(n *yaml.Node, name string) (float64, error) {
	if !isSet(n) {
		return 0, fmt.Errorf("%s is required", name)
	}
	n = resolve(n)
	if n.Kind == yaml.ScalarNode {
		switch n.ShortTag() {
		case tagInf:
			sign, err := infSign(n)
			if err != nil {
				return 0, err
			}
			return math.Inf(sign), nil
		case "!!int", "!!float":
			var f float64
			if err := n.Decode(&f); err == nil && !math.IsNaN(f) {
				return f, nil
			}
		case "!!str":
			switch strings.ToLower(strings.TrimSpace(n.Value)) {
			case "inf", "+inf", "infinity":
				return math.Inf(1), nil
			case "-inf", "-infinity":
				return math.Inf(-1), nil
			}
		}
	}
	return 0, fmt.Errorf("line %d: %s must be a number or \"inf\"", n.Line, name)
}
