// Package value holds the tagged argument values a writer renders into call
// syntax, and the literal formatter that decides how each one is spelled in
// the generated program.
//
// The kind of a value is fixed when it is constructed. A String is always a
// quoted literal unless the argument it is bound to is an identifier
// argument; an Identifier is always a bare reference; a Raw fragment is always
// emitted verbatim.
package value

import (
	"math"
	"strings"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	KindInvalid Kind = iota
	KindString
	KindIdentifier
	KindInt
	KindFloat
	KindBool
	KindSequence
	KindMapping
	KindRaw
)

var kindNames = map[Kind]string{
	KindInvalid:    "invalid",
	KindString:     "string",
	KindIdentifier: "identifier",
	KindInt:        "int",
	KindFloat:      "float",
	KindBool:       "bool",
	KindSequence:   "sequence",
	KindMapping:    "mapping",
	KindRaw:        "raw",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Value is one argument value. The zero Value is invalid and fails to format.
type Value struct {
	kind  Kind
	text  string
	i     int64
	f     float64
	b     bool
	elems []Value
	pairs []Pair

	// hasNum marks a raw fragment whose numeric meaning is known (infinity).
	hasNum bool
}

// Pair is one entry of a Mapping, kept in insertion order.
type Pair struct {
	Key   string
	Value Value
}

// String returns a textual literal.
func String(s string) Value { return Value{kind: KindString, text: s} }

// Identifier returns a reference to a binding name or other bare name.
func Identifier(name string) Value { return Value{kind: KindIdentifier, text: name} }

// Int returns an integer literal.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float returns a floating point literal. NaN and infinities are accepted here
// but fail at format time; use Inf for unbounded values.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Bool returns a boolean literal.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Sequence returns a list literal of the given elements.
func Sequence(elems ...Value) Value {
	return Value{kind: KindSequence, elems: append([]Value(nil), elems...)}
}

// Floats is a shorthand for a Sequence of Float values.
func Floats(fs ...float64) Value {
	elems := make([]Value, len(fs))
	for i, f := range fs {
		elems[i] = Float(f)
	}
	return Value{kind: KindSequence, elems: elems}
}

// Mapping returns a dict literal with string keys in the given order.
func Mapping(pairs ...Pair) Value {
	return Value{kind: KindMapping, pairs: append([]Pair(nil), pairs...)}
}

// Raw returns a code fragment that is emitted verbatim.
func Raw(code string) Value { return Value{kind: KindRaw, text: code} }

// Inf returns the raw fragment for positive (sign >= 0) or negative infinity.
// Unlike other raw fragments it keeps its numeric meaning, so range checks
// still work on it.
func Inf(sign int) Value {
	if sign < 0 {
		return Value{kind: KindRaw, text: "float('-inf')", f: math.Inf(-1), hasNum: true}
	}
	return Value{kind: KindRaw, text: "float('inf')", f: math.Inf(1), hasNum: true}
}

// Bound returns Float(f) for finite f and the infinity fragment otherwise.
func Bound(f float64) Value {
	if math.IsInf(f, 0) {
		if f < 0 {
			return Inf(-1)
		}
		return Inf(1)
	}
	return Float(f)
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsZero reports whether v is the invalid zero Value.
func (v Value) IsZero() bool { return v.kind == KindInvalid }

// Text returns the stored text of string, identifier and raw values.
func (v Value) Text() string { return v.text }

// Elements returns the elements of a sequence.
func (v Value) Elements() []Value { return append([]Value(nil), v.elems...) }

// Pairs returns the entries of a mapping.
func (v Value) Pairs() []Pair { return append([]Pair(nil), v.pairs...) }

// Numeric returns the numeric meaning of ints, floats and infinity fragments.
func (v Value) Numeric() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	case KindRaw:
		return v.f, v.hasNum
	default:
		return 0, false
	}
}

// References lists the bare names v refers to. When asIdentifier is set,
// strings count as references too, the way they render under an identifier
// argument. Dotted names are reduced to their root.
func (v Value) References(asIdentifier bool) []string {
	var out []string
	var walk func(Value)
	walk = func(x Value) {
		switch x.kind {
		case KindIdentifier:
			out = append(out, rootName(x.text))
		case KindString:
			if asIdentifier {
				out = append(out, rootName(x.text))
			}
		case KindSequence:
			for _, e := range x.elems {
				walk(e)
			}
		case KindMapping:
			for _, p := range x.pairs {
				walk(p.Value)
			}
		}
	}
	walk(v)
	return out
}

// String renders v as a literal for logs and debugging. Values that cannot be
// formatted are shown with their kind.
func (v Value) String() string {
	s, err := v.Literal()
	if err != nil {
		return "<" + v.kind.String() + ">"
	}
	return s
}

func rootName(name string) string {
	if i := strings.IndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return name
}
