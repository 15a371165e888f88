// Package program assembles writers into a complete run script.
//
// A Program collects an engine, CVs, volumes and auxiliary writers, then
// renders them once. Entities are ordered by their references rather than by
// the order they were added, so a CV that feeds another CV is always defined
// first. The rendered text is cached and the program no longer accepts
// writers.
package program

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/specialistvlad/pathscript/internal/dag"
	"github.com/specialistvlad/pathscript/internal/runtype"
	"github.com/specialistvlad/pathscript/internal/scripterr"
	"github.com/specialistvlad/pathscript/internal/value"
	"github.com/specialistvlad/pathscript/internal/writer"
)

// State is the lifecycle stage of a Program.
type State int

const (
	Collecting State = iota
	Rendering
	Rendered
)

func (s State) String() string {
	switch s {
	case Collecting:
		return "collecting"
	case Rendering:
		return "rendering"
	case Rendered:
		return "rendered"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Entity ranks break ties between statements that are ready together.
const (
	rankEngine = iota
	rankCV
	rankVolume
)

// Program is one script being assembled.
type Program struct {
	mu       sync.Mutex
	state    State
	rendered string

	runType runtype.RunType
	params  map[string]value.Value
	engine  writer.Statement
	cvs     []*writer.CV
	volumes []*writer.Volume
	aux     []writer.Statement
}

// New returns an empty program for rt.
func New(rt runtype.RunType) *Program {
	return &Program{runType: rt, params: make(map[string]value.Value)}
}

// RunType returns the run type the program was created for.
func (p *Program) RunType() runtype.RunType { return p.runType }

// State returns the current lifecycle stage.
func (p *Program) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Program) collecting(what string) error {
	if p.state != Collecting {
		return scripterr.Assembly("", "cannot add %s to a program that is %s", what, p.state)
	}
	return nil
}

// SetEngine sets the statement that binds `engine`.
func (p *Program) SetEngine(e writer.Statement) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.collecting("an engine"); err != nil {
		return err
	}
	if e == nil {
		return scripterr.Assembly("engine", "engine writer is nil")
	}
	p.engine = e
	return nil
}

// AddCV appends a collective variable.
func (p *Program) AddCV(cv *writer.CV) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.collecting("a CV"); err != nil {
		return err
	}
	if cv == nil {
		return scripterr.Assembly("", "CV writer is nil")
	}
	for _, existing := range p.cvs {
		if existing == cv {
			return scripterr.Assembly(cv.BindingName(), "CV added twice")
		}
	}
	p.cvs = append(p.cvs, cv)
	return nil
}

// AddVolume appends a volume. Volumes flagged as states join the states list
// in the order they were added.
func (p *Program) AddVolume(v *writer.Volume) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.collecting("a volume"); err != nil {
		return err
	}
	if v == nil {
		return scripterr.Assembly("", "volume writer is nil")
	}
	for _, existing := range p.volumes {
		if existing == v {
			return scripterr.Assembly(v.BindingName(), "volume added twice")
		}
	}
	p.volumes = append(p.volumes, v)
	return nil
}

// AddAux appends an auxiliary writer. Auxiliary writers are emitted after
// the states list, in the order they were added.
func (p *Program) AddAux(s writer.Statement) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.collecting("an auxiliary writer"); err != nil {
		return err
	}
	if s == nil {
		return scripterr.Assembly("", "auxiliary writer is nil")
	}
	p.aux = append(p.aux, s)
	return nil
}

// SetParameter binds a template placeholder. The value is rendered as a
// literal; use value.Raw for code such as an empty argument list.
func (p *Program) SetParameter(name string, v value.Value) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.collecting("a parameter"); err != nil {
		return err
	}
	if !value.IsIdentifier(name) || strings.ContainsRune(name, '.') {
		return scripterr.Assembly("", "parameter name %q is not a valid placeholder", name)
	}
	p.params[name] = v
	return nil
}

// Render assembles the program text. The first successful call freezes the
// program; later calls return the same text. A failed render leaves the
// program collecting so the caller can fix it and try again.
func (p *Program) Render() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case Rendered:
		return p.rendered, nil
	case Rendering:
		return "", scripterr.Assembly("", "program is already rendering")
	}

	p.state = Rendering
	text, err := p.render()
	if err != nil {
		p.state = Collecting
		return "", err
	}
	p.rendered = text
	p.state = Rendered
	return text, nil
}

// WriteTo renders the program and writes it to w.
func (p *Program) WriteTo(w io.Writer) (int64, error) {
	text, err := p.Render()
	if err != nil {
		return 0, err
	}
	n, err := io.WriteString(w, text)
	return int64(n), err
}

func (p *Program) render() (string, error) {
	rt := p.runType
	if !rt.Valid() {
		return "", scripterr.Assembly("", "unknown run type %s", rt)
	}

	var sb strings.Builder
	sb.WriteString(runtype.Header)

	defined := make(map[string]string)
	for _, name := range runtype.Predeclared {
		defined[name] = "header"
	}

	entities, err := p.orderEntities(defined)
	if err != nil {
		return "", err
	}
	for _, s := range entities {
		if err := emit(&sb, s); err != nil {
			return "", err
		}
	}

	states, err := p.states()
	if err != nil {
		return "", err
	}
	sb.WriteString(states + "\n")
	defined[runtype.StatesName] = runtype.StatesName

	for _, s := range p.aux {
		if err := checkAux(s, defined); err != nil {
			return "", err
		}
		if err := emit(&sb, s); err != nil {
			return "", err
		}
		if prov, ok := s.(writer.Provider); ok {
			for _, name := range prov.Provides() {
				if owner, dup := defined[name]; dup {
					return "", scripterr.Assembly(name, "bound twice (already bound by %s)", owner)
				}
				defined[name] = name
			}
		}
	}

	for _, name := range rt.Requires() {
		if _, ok := defined[name]; !ok {
			return "", scripterr.Assembly(name, "%s run needs %s to be bound", rt, name)
		}
	}

	params, err := p.renderParams(rt)
	if err != nil {
		return "", err
	}
	setup, err := rt.Setup().Execute(params)
	if err != nil {
		return "", err
	}
	trailer, err := runtype.Main.Execute(params)
	if err != nil {
		return "", err
	}

	sb.WriteString("\n" + setup + "\n\n" + trailer)
	return sb.String(), nil
}

type node struct {
	stmt writer.Statement
	rank int
}

// orderEntities sorts the engine, CVs and volumes so that every statement
// follows the statements it references. Names the entities bind are added to
// defined.
func (p *Program) orderEntities(defined map[string]string) ([]writer.Statement, error) {
	var nodes []node
	if p.engine != nil {
		nodes = append(nodes, node{p.engine, rankEngine})
	}
	for _, cv := range p.cvs {
		nodes = append(nodes, node{cv, rankCV})
	}
	for _, v := range p.volumes {
		nodes = append(nodes, node{v, rankVolume})
	}

	g := dag.New()
	byID := make(map[string]writer.Statement, len(nodes))
	for i, n := range nodes {
		id := nodeID(n.stmt, i)
		g.AddNode(id, n.rank)
		byID[id] = n.stmt
		if prov, ok := n.stmt.(writer.Provider); ok {
			for _, name := range prov.Provides() {
				if owner, dup := defined[name]; dup {
					return nil, scripterr.Assembly(name, "bound twice (already bound by %s)", owner)
				}
				defined[name] = id
			}
		}
	}

	for i, n := range nodes {
		ref, ok := n.stmt.(writer.Referrer)
		if !ok {
			continue
		}
		id := nodeID(n.stmt, i)
		for _, name := range ref.References() {
			owner, found := defined[name]
			switch {
			case !found && isLateName(name, p.aux):
				return nil, scripterr.Assembly(id, "refers to %s, which is bound after the entities", name)
			case !found:
				return nil, scripterr.Assembly(id, "refers to undefined name %s", name)
			case owner == "header":
				continue
			case owner == id:
				return nil, scripterr.Assembly(id, "refers to itself")
			}
			if err := g.AddEdge(owner, id); err != nil {
				return nil, scripterr.Assembly(id, "%v", err)
			}
		}
	}

	order, err := g.Sort()
	if err != nil {
		return nil, scripterr.Assembly("", "entities cannot be ordered: %v", err)
	}
	out := make([]writer.Statement, len(order))
	for i, id := range order {
		out[i] = byID[id]
	}
	return out, nil
}

// nodeID names a statement in the dependency graph after the first name it
// binds.
func nodeID(s writer.Statement, i int) string {
	if prov, ok := s.(writer.Provider); ok {
		if names := prov.Provides(); len(names) > 0 {
			return names[0]
		}
	}
	return fmt.Sprintf("#%d", i)
}

// isLateName reports whether name is only bound after the entity region.
func isLateName(name string, aux []writer.Statement) bool {
	if name == runtype.StatesName {
		return true
	}
	for _, s := range aux {
		if prov, ok := s.(writer.Provider); ok {
			for _, n := range prov.Provides() {
				if n == name {
					return true
				}
			}
		}
	}
	return false
}

func checkAux(s writer.Statement, defined map[string]string) error {
	ref, ok := s.(writer.Referrer)
	if !ok {
		return nil
	}
	for _, name := range ref.References() {
		if _, found := defined[name]; !found {
			return scripterr.Assembly("", "auxiliary writer refers to %s before it is bound", name)
		}
	}
	return nil
}

func emit(sb *strings.Builder, s writer.Statement) error {
	code, err := s.Code()
	if err != nil {
		return err
	}
	if code == "" {
		return nil
	}
	sb.WriteString(code)
	sb.WriteByte('\n')
	return nil
}

// states renders the states list from the volumes flagged as states.
func (p *Program) states() (string, error) {
	var names []string
	for _, v := range p.volumes {
		if v.IsState() {
			names = append(names, v.BindingName())
		}
	}
	if need := p.runType.MinStates(); len(names) < need {
		return "", scripterr.Assembly(runtype.StatesName, "%s run needs at least %d states, got %d", p.runType, need, len(names))
	}
	return runtype.StatesName + " = [" + strings.Join(names, ", ") + "]", nil
}

// renderParams renders every parameter the run type needs and reports all
// missing ones together.
func (p *Program) renderParams(rt runtype.RunType) (map[string]string, error) {
	var missing []string
	out := make(map[string]string, len(p.params))
	for _, name := range rt.Parameters() {
		v, ok := p.params[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		text, err := v.Literal()
		if err != nil {
			if fe, ok := err.(*scripterr.FormatError); ok {
				fe.Argument = name
			}
			return nil, err
		}
		out[name] = text
	}
	if len(missing) > 0 {
		return nil, &scripterr.MissingParameterError{Template: rt.String(), Names: missing}
	}
	return out, nil
}
