package hcl

import (
	"bytes"
	"fmt"
	"math"
	"math/big"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/pathscript/internal/value"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// translator turns HCL expressions into values. It keeps the file source so
// it can tell `1` from `1.0`, which evaluate to the same cty number.
type translator struct {
	src []byte
}

// isExprDefined checks if an HCL expression was actually present in the source
// code. gohcl fills omitted optional expression fields with zero-width
// placeholders, so a nil check is not enough.
func isExprDefined(expr hcl.Expression) bool {
	if expr == nil {
		return false
	}
	r := expr.Range()
	return r.End.Byte > r.Start.Byte
}

// toValue translates expr. Bare traversals become identifiers and `raw("...")`
// becomes a raw fragment; everything else is evaluated without variables.
func (t *translator) toValue(expr hcl.Expression) (value.Value, error) {
	switch e := expr.(type) {
	case *hclsyntax.ScopeTraversalExpr:
		name, err := formatTraversal(e.Traversal)
		if err != nil {
			return value.Value{}, err
		}
		return value.Identifier(name), nil

	case *hclsyntax.FunctionCallExpr:
		if e.Name != "raw" {
			return value.Value{}, fmt.Errorf("%s: unknown function %q (only raw is supported)", e.Range(), e.Name)
		}
		if len(e.Args) != 1 {
			return value.Value{}, fmt.Errorf("%s: raw takes exactly one argument", e.Range())
		}
		code, err := evalString(e.Args[0])
		if err != nil {
			return value.Value{}, err
		}
		return value.Raw(code), nil

	case *hclsyntax.TupleConsExpr:
		elems := make([]value.Value, 0, len(e.Exprs))
		for _, item := range e.Exprs {
			v, err := t.toValue(item)
			if err != nil {
				return value.Value{}, err
			}
			elems = append(elems, v)
		}
		return value.Sequence(elems...), nil

	case *hclsyntax.ObjectConsExpr:
		// Walk the items directly to keep the order they were written in.
		pairs := make([]value.Pair, 0, len(e.Items))
		for _, item := range e.Items {
			key, err := objectKey(item.KeyExpr)
			if err != nil {
				return value.Value{}, err
			}
			v, err := t.toValue(item.ValueExpr)
			if err != nil {
				return value.Value{}, err
			}
			pairs = append(pairs, value.Pair{Key: key, Value: v})
		}
		return value.Mapping(pairs...), nil
	}

	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return value.Value{}, fmt.Errorf("failed to evaluate expression: %w", diags)
	}
	return t.fromCty(val, expr.Range())
}

// fromCty converts an evaluated value. rng locates the source text so
// numbers written with a decimal point or exponent stay floats.
func (t *translator) fromCty(val cty.Value, rng hcl.Range) (value.Value, error) {
	if val.IsNull() {
		return value.Value{}, fmt.Errorf("%s: null is not a valid argument value", rng)
	}
	if !val.IsWhollyKnown() {
		return value.Value{}, fmt.Errorf("%s: value is not known", rng)
	}

	ty := val.Type()
	switch {
	case ty == cty.String:
		return value.String(val.AsString()), nil
	case ty == cty.Bool:
		return value.Bool(val.True()), nil
	case ty == cty.Number:
		return t.number(val.AsBigFloat(), rng), nil
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		var elems []value.Value
		for it := val.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			v, err := t.fromCty(ev, rng)
			if err != nil {
				return value.Value{}, err
			}
			elems = append(elems, v)
		}
		return value.Sequence(elems...), nil
	case ty.IsObjectType() || ty.IsMapType():
		var pairs []value.Pair
		for it := val.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			v, err := t.fromCty(ev, rng)
			if err != nil {
				return value.Value{}, err
			}
			pairs = append(pairs, value.Pair{Key: k.AsString(), Value: v})
		}
		sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].Key < pairs[j].Key })
		return value.Mapping(pairs...), nil
	default:
		return value.Value{}, fmt.Errorf("%s: unsupported value type %s", rng, ty.FriendlyName())
	}
}

func (t *translator) number(f *big.Float, rng hcl.Range) value.Value {
	if f.IsInt() && !t.looksFloat(rng) {
		if i, acc := f.Int64(); acc == big.Exact {
			return value.Int(i)
		}
	}
	v, _ := f.Float64()
	return value.Float(v)
}

// looksFloat reports whether the source text at rng is written as a float.
func (t *translator) looksFloat(rng hcl.Range) bool {
	if rng.Start.Byte < 0 || rng.End.Byte > len(t.src) || rng.Start.Byte >= rng.End.Byte {
		return false
	}
	return bytes.ContainsAny(t.src[rng.Start.Byte:rng.End.Byte], ".eE")
}

// bound translates a volume bound. Numbers are taken as they are; the
// strings "inf", "+inf" and "-inf" give infinite bounds.
func (t *translator) bound(expr hcl.Expression, name string) (float64, error) {
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return 0, fmt.Errorf("failed to evaluate %s: %w", name, diags)
	}
	if val.Type() == cty.String {
		switch strings.ToLower(strings.TrimSpace(val.AsString())) {
		case "inf", "+inf", "infinity":
			return math.Inf(1), nil
		case "-inf", "-infinity":
			return math.Inf(-1), nil
		}
	}
	num, err := convert.Convert(val, cty.Number)
	if err != nil || num.IsNull() {
		return 0, fmt.Errorf("%s: %s must be a number or \"inf\"", expr.Range(), name)
	}
	f, _ := num.AsBigFloat().Float64()
	return f, nil
}

// formatTraversal renders a traversal such as `engine.topology` as a dotted
// name. Index steps have no identifier form.
func formatTraversal(tr hcl.Traversal) (string, error) {
	var sb strings.Builder
	for _, step := range tr {
		switch s := step.(type) {
		case hcl.TraverseRoot:
			sb.WriteString(s.Name)
		case hcl.TraverseAttr:
			sb.WriteString("." + s.Name)
		default:
			return "", fmt.Errorf("%s: only plain and dotted names can be referenced", tr.SourceRange())
		}
	}
	return sb.String(), nil
}

func objectKey(expr hcl.Expression) (string, error) {
	if kw := hcl.ExprAsKeyword(expr); kw != "" {
		return kw, nil
	}
	return evalString(expr)
}

func evalString(expr hcl.Expression) (string, error) {
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return "", fmt.Errorf("failed to evaluate expression: %w", diags)
	}
	str, err := convert.Convert(val, cty.String)
	if err != nil || str.IsNull() {
		return "", fmt.Errorf("%s: expected a string", expr.Range())
	}
	return str.AsString(), nil
}
