package value

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/specialistvlad/pathscript/internal/scripterr"
)

// identifierRegex accepts bare and dotted Python names, e.g. `engine` or
// `engine.current_snapshot`.
var identifierRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// IsIdentifier reports whether name can be emitted as a bare reference.
func IsIdentifier(name string) bool {
	return identifierRegex.MatchString(name)
}

// Names is a set of argument names, used for an entity's identifier arguments.
type Names map[string]struct{}

// NewNames builds a Names set.
func NewNames(names ...string) Names {
	set := make(Names, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// Has reports whether name is in the set. A nil set is empty.
func (n Names) Has(name string) bool {
	_, ok := n[name]
	return ok
}

// FormatArgument produces the exact text placed after `name=` for an
// argument of an entity whose identifier arguments are identifiers.
//
// The returned error is a *scripterr.FormatError with Argument set; the caller
// adds the binding name.
func FormatArgument(name string, v Value, identifiers Names) (string, error) {
	var (
		text string
		err  error
	)
	if identifiers.Has(name) {
		text, err = v.identifierForm()
	} else {
		text, err = v.Literal()
	}
	if err == nil && text == "" {
		err = scripterr.Format("renders as empty text")
	}
	if err != nil {
		if fe, ok := err.(*scripterr.FormatError); ok {
			fe.Argument = name
			return "", fe
		}
		return "", err
	}
	return text, nil
}

// Literal renders v as a target-language literal, ignoring identifier
// arguments. Identifiers and raw fragments still render bare.
func (v Value) Literal() (string, error) {
	switch v.kind {
	case KindString:
		return Quote(v.text)
	case KindIdentifier:
		return checkIdentifier(v.text)
	case KindInt:
		return strconv.FormatInt(v.i, 10), nil
	case KindFloat:
		return formatFloat(v.f)
	case KindBool:
		if v.b {
			return "True", nil
		}
		return "False", nil
	case KindRaw:
		return v.text, nil
	case KindSequence:
		return joinElements(v.elems, Value.Literal)
	case KindMapping:
		return formatMapping(v.pairs, Value.Literal)
	default:
		return "", scripterr.Format("value of kind %s cannot be rendered", v.kind)
	}
}

// identifierForm renders v under an identifier argument: strings are emitted
// unquoted and must therefore be valid names.
func (v Value) identifierForm() (string, error) {
	switch v.kind {
	case KindString, KindIdentifier:
		return checkIdentifier(v.text)
	case KindSequence:
		return joinElements(v.elems, Value.identifierForm)
	case KindMapping:
		return formatMapping(v.pairs, Value.identifierForm)
	default:
		return v.Literal()
	}
}

// Quote wraps s in single quotes. Backslashes, single quotes and control
// characters are escaped, so the literal stays on one line and reads back as
// s. Python source cannot carry bytes that are not UTF-8, so those are a
// FormatError.
func Quote(s string) (string, error) {
	if !utf8.ValidString(s) {
		return "", scripterr.Format("%q is not valid UTF-8", s)
	}
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('\'')
	for _, r := range s {
		switch {
		case r == '\\':
			sb.WriteString(`\\`)
		case r == '\'':
			sb.WriteString(`\'`)
		case r == '\n':
			sb.WriteString(`\n`)
		case r == '\r':
			sb.WriteString(`\r`)
		case r == '\t':
			sb.WriteString(`\t`)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&sb, `\x%02x`, r)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('\'')
	return sb.String(), nil
}

func checkIdentifier(name string) (string, error) {
	if !IsIdentifier(name) {
		return "", scripterr.Format("%q is not a valid identifier", name)
	}
	return name, nil
}

// formatFloat follows Python's repr for floats: integral values keep a
// trailing ".0" and very small or very large magnitudes use exponent form.
func formatFloat(f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", scripterr.Format("%v has no plain literal form, use an infinity fragment", f)
	}
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64), nil
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s, nil
}

func joinElements(elems []Value, render func(Value) (string, error)) (string, error) {
	parts := make([]string, len(elems))
	for i, e := range elems {
		s, err := render(e)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return "[" + strings.Join(parts, ", ") + "]", nil
}

func formatMapping(pairs []Pair, render func(Value) (string, error)) (string, error) {
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		s, err := render(p.Value)
		if err != nil {
			return "", err
		}
		key, err := Quote(p.Key)
		if err != nil {
			return "", err
		}
		parts[i] = key + ": " + s
	}
	return "{" + strings.Join(parts, ", ") + "}", nil
}
