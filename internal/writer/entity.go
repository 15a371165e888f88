package writer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/specialistvlad/pathscript/internal/scripterr"
	"github.com/specialistvlad/pathscript/internal/value"
)

// Kind describes one concrete entity type: its binding prefix, the namespace
// its classes live in, and which arguments hold references to other entities.
type Kind struct {
	// Name keys the sequence counter in a Factory.
	Name string
	// Prefix is the binding-name prefix, e.g. "cv" for cv_1.
	Prefix string
	// Namespace is the module the type tag is looked up in, unless overridden
	// per entity with WithNamespace.
	Namespace string
	// Identifiers are the arguments rendered as bare names.
	Identifiers value.Names
	// FoldName makes the display name mandatory and passes it as the `name`
	// argument instead of a trailing .named() call.
	FoldName bool
	// Validate checks kind-specific invariants. Errors it returns should be
	// *scripterr.ConfigurationError; the binding name is filled in.
	Validate func(typeTag string, args Args) error
}

type settings struct {
	namespace string
	diskCache *bool
}

// Option adjusts an entity at construction.
type Option func(*settings)

// WithNamespace overrides the kind's namespace.
func WithNamespace(ns string) Option {
	return func(s *settings) { s.namespace = ns }
}

// WithDiskCache enables or disables the disk cache statement of a CV. Other
// kinds ignore it.
func WithDiskCache(enabled bool) Option {
	return func(s *settings) { s.diskCache = &enabled }
}

func collect(opts []Option) settings {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Entity is a named object constructor bound to a generated identifier.
type Entity struct {
	kind        *Kind
	seq         int
	namespace   string
	typeTag     string
	displayName string
	args        Args
}

// New validates the inputs, then takes the next sequence number of kind from
// f. Nothing is allocated when validation fails.
func New(f *Factory, kind *Kind, typeTag, displayName string, args Args, opts ...Option) (*Entity, error) {
	if f == nil {
		return nil, scripterr.Configuration("", "", "no factory given for %s", kind.Name)
	}
	s := collect(opts)
	namespace := kind.Namespace
	if s.namespace != "" {
		namespace = s.namespace
	}

	e := &Entity{kind: kind, namespace: namespace}
	if err := e.validate("", typeTag, displayName, args); err != nil {
		return nil, err
	}

	e.seq = f.next(kind.Name)
	e.typeTag = typeTag
	e.displayName = displayName
	e.args = args.clone()
	return e, nil
}

// Update replaces the type tag, display name and arguments. The binding name
// does not change. On error the entity keeps its previous state.
func (e *Entity) Update(typeTag, displayName string, args Args) error {
	if err := e.validate(e.BindingName(), typeTag, displayName, args); err != nil {
		return err
	}
	e.typeTag = typeTag
	e.displayName = displayName
	e.args = args.clone()
	return nil
}

func (e *Entity) validate(binding, typeTag, displayName string, args Args) error {
	if !isPlainName(typeTag) {
		return scripterr.Configuration(binding, "", "type tag %q is not a valid class name", typeTag)
	}
	if !isPlainName(e.namespace) {
		return scripterr.Configuration(binding, "", "namespace %q is not a valid module name", e.namespace)
	}
	if e.kind.FoldName {
		if displayName == "" {
			return scripterr.Configuration(binding, "name", "a %s needs a name", e.kind.Name)
		}
		if _, ok := args.Get("name"); ok {
			return scripterr.Configuration(binding, "name", "name is set from the display name, not as an argument")
		}
	}
	if err := args.check(binding); err != nil {
		return err
	}
	if e.kind.Validate != nil {
		if err := e.kind.Validate(typeTag, args); err != nil {
			var ce *scripterr.ConfigurationError
			if errors.As(err, &ce) && ce.Binding == "" {
				ce.Binding = binding
			}
			return err
		}
	}
	return nil
}

// BindingName is the identifier the entity is assigned to, e.g. cv_1.
func (e *Entity) BindingName() string { return bindingName(e.kind.Prefix, e.seq) }

// Sequence returns the number issued by the factory.
func (e *Entity) Sequence() int { return e.seq }

// TypeTag returns the constructed class name.
func (e *Entity) TypeTag() string { return e.typeTag }

// DisplayName returns the user-facing name, possibly empty.
func (e *Entity) DisplayName() string { return e.displayName }

// Namespace returns the module the class is looked up in.
func (e *Entity) Namespace() string { return e.namespace }

// Args returns a copy of the arguments in order.
func (e *Entity) Args() Args { return e.args.clone() }

// callArgs returns the arguments as they appear in the call.
func (e *Entity) callArgs() Args {
	if e.kind.FoldName {
		return e.args.With("name", value.String(e.displayName))
	}
	return e.args
}

// Code renders `binding = namespace.TypeTag(args)` with an optional
// `.named('display')` suffix.
func (e *Entity) Code() (string, error) {
	args := e.callArgs()
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		text, err := value.FormatArgument(arg.Name, arg.Value, e.kind.Identifiers)
		if err != nil {
			var fe *scripterr.FormatError
			if errors.As(err, &fe) {
				fe.Binding = e.BindingName()
			}
			return "", err
		}
		parts = append(parts, arg.Name+"="+text)
	}

	code := fmt.Sprintf("%s = %s.%s(%s)", e.BindingName(), e.namespace, e.typeTag, strings.Join(parts, ", "))
	if e.displayName != "" && !e.kind.FoldName {
		name, err := quote(e.BindingName(), "name", e.displayName)
		if err != nil {
			return "", err
		}
		code += ".named(" + name + ")"
	}
	return code, nil
}

// Provides returns the binding name.
func (e *Entity) Provides() []string { return []string{e.BindingName()} }

// References returns the distinct root names the arguments refer to, in
// argument order.
func (e *Entity) References() []string {
	seen := make(map[string]struct{})
	var refs []string
	for _, arg := range e.args {
		for _, ref := range arg.Value.References(e.kind.Identifiers.Has(arg.Name)) {
			if _, ok := seen[ref]; ok {
				continue
			}
			seen[ref] = struct{}{}
			refs = append(refs, ref)
		}
	}
	return refs
}

// isPlainName accepts identifiers without dots.
func isPlainName(s string) bool {
	return value.IsIdentifier(s) && !strings.ContainsRune(s, '.')
}
