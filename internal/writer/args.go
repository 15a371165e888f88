package writer

import (
	"errors"
	"strings"

	"github.com/specialistvlad/pathscript/internal/scripterr"
	"github.com/specialistvlad/pathscript/internal/value"
)

// Argument is one keyword argument of a constructor call.
type Argument struct {
	Name  string
	Value value.Value
}

// Arg builds an Argument.
func Arg(name string, v value.Value) Argument {
	return Argument{Name: name, Value: v}
}

// Args is an ordered list of keyword arguments. Rendering follows the list
// order; names must be unique.
type Args []Argument

// Get returns the value bound to name.
func (a Args) Get(name string) (value.Value, bool) {
	for _, arg := range a {
		if arg.Name == name {
			return arg.Value, true
		}
	}
	return value.Value{}, false
}

// Names returns the argument names in order.
func (a Args) Names() []string {
	names := make([]string, len(a))
	for i, arg := range a {
		names[i] = arg.Name
	}
	return names
}

// With returns a copy of a where name is bound to v. An existing argument
// keeps its position; a new one is appended.
func (a Args) With(name string, v value.Value) Args {
	out := append(Args(nil), a...)
	for i := range out {
		if out[i].Name == name {
			out[i].Value = v
			return out
		}
	}
	return append(out, Arg(name, v))
}

// clone returns an independent copy.
func (a Args) clone() Args {
	return append(Args(nil), a...)
}

// check validates argument names: each must be a plain identifier and appear
// once.
func (a Args) check(binding string) error {
	seen := make(map[string]struct{}, len(a))
	for _, arg := range a {
		if !value.IsIdentifier(arg.Name) || strings.ContainsRune(arg.Name, '.') {
			return scripterr.Configuration(binding, arg.Name, "argument name is not a valid keyword")
		}
		if _, dup := seen[arg.Name]; dup {
			return scripterr.Configuration(binding, arg.Name, "argument given more than once")
		}
		if arg.Value.IsZero() {
			return scripterr.Configuration(binding, arg.Name, "argument has no value")
		}
		seen[arg.Name] = struct{}{}
	}
	return nil
}

// quote renders s as a string literal and attributes a failure to binding and
// argument.
func quote(binding, argument, s string) (string, error) {
	q, err := value.Quote(s)
	if err != nil {
		var fe *scripterr.FormatError
		if errors.As(err, &fe) {
			fe.Binding, fe.Argument = binding, argument
		}
		return "", err
	}
	return q, nil
}
