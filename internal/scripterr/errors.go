// Package scripterr defines the typed failures raised while building and
// rendering a program. Each type matches its sentinel with errors.Is, so
// callers can branch on the category without caring about the details, and
// with errors.As when they need the binding or argument that caused it.
package scripterr

import (
	"errors"
	"fmt"
	"strings"
)

// Category sentinels.
var (
	ErrConfiguration     = errors.New("configuration error")
	ErrFormat            = errors.New("format error")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrMissingParameter  = errors.New("missing parameter")
	ErrAssembly          = errors.New("assembly error")
)

// ConfigurationError reports an invariant violated while constructing or
// updating a writer.
type ConfigurationError struct {
	Binding  string // binding name of the writer, empty if none was allocated
	Argument string // offending argument, if any
	Reason   string
}

// Configuration builds a ConfigurationError.
func Configuration(binding, argument, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Binding: binding, Argument: argument, Reason: fmt.Sprintf(format, args...)}
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrConfiguration, describe(e.Binding, e.Argument, e.Reason))
}

// Is matches ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// FormatError reports a value that cannot be rendered as a literal or an
// identifier.
type FormatError struct {
	Binding  string
	Argument string
	Reason   string
}

// Format builds a FormatError without binding context. The writer that owns
// the value fills Binding and Argument in before returning it.
func Format(format string, args ...any) *FormatError {
	return &FormatError{Reason: fmt.Sprintf(format, args...)}
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: %s", ErrFormat, describe(e.Binding, e.Argument, e.Reason))
}

// Is matches ErrFormat.
func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// UnsupportedFormatError reports an auxiliary input of an unrecognized kind.
type UnsupportedFormatError struct {
	Path      string
	Extension string
	Supported []string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("%s: %q has extension %q (supported: %s)",
		ErrUnsupportedFormat, e.Path, e.Extension, strings.Join(e.Supported, ", "))
}

// Is matches ErrUnsupportedFormat.
func (e *UnsupportedFormatError) Is(target error) bool { return target == ErrUnsupportedFormat }

// MissingParameterError reports template placeholders without a value.
type MissingParameterError struct {
	Template string
	Names    []string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("%s: template %q needs %s", ErrMissingParameter, e.Template, strings.Join(e.Names, ", "))
}

// Is matches ErrMissingParameter.
func (e *MissingParameterError) Is(target error) bool { return target == ErrMissingParameter }

// AssemblyError reports an unmet structural precondition of a program.
type AssemblyError struct {
	Binding string
	Reason  string
}

// Assembly builds an AssemblyError.
func Assembly(binding, format string, args ...any) *AssemblyError {
	return &AssemblyError{Binding: binding, Reason: fmt.Sprintf(format, args...)}
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("%s: %s", ErrAssembly, describe(e.Binding, "", e.Reason))
}

// Is matches ErrAssembly.
func (e *AssemblyError) Is(target error) bool { return target == ErrAssembly }

func describe(binding, argument, reason string) string {
	switch {
	case binding != "" && argument != "":
		return fmt.Sprintf("%s.%s: %s", binding, argument, reason)
	case binding != "":
		return fmt.Sprintf("%s: %s", binding, reason)
	case argument != "":
		return fmt.Sprintf("argument %s: %s", argument, reason)
	default:
		return reason
	}
}
