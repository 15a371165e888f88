// Package session holds the editing state behind one run script.
//
// A Session owns its own writer.Factory, so binding names (cv_1, volume_1)
// are numbered per session and sessions can be edited concurrently. CVs and
// volumes are addressed by their display names and follow create-or-update
// semantics: putting an existing name updates the writer in place and keeps
// its binding name.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/specialistvlad/pathscript/internal/config"
	"github.com/specialistvlad/pathscript/internal/ctxlog"
	"github.com/specialistvlad/pathscript/internal/dag"
	"github.com/specialistvlad/pathscript/internal/program"
	"github.com/specialistvlad/pathscript/internal/runtype"
	"github.com/specialistvlad/pathscript/internal/scripterr"
	"github.com/specialistvlad/pathscript/internal/value"
	"github.com/specialistvlad/pathscript/internal/writer"
)

// Session is one run script being edited.
type Session struct {
	mu      sync.Mutex
	id      uuid.UUID
	factory *writer.Factory

	runType    runtype.RunType
	engine     *writer.Engine
	cvs        []*writer.CV
	volumes    []*writer.Volume
	storage    *writer.Storage
	initial    *writer.InitialTrajectory
	randomizer *writer.Randomizer
	params     []value.Pair
}

// New returns an empty session with a fresh ID.
func New() *Session {
	return &Session{id: uuid.New(), factory: writer.NewFactory()}
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID { return s.id }

// RunType returns the selected run type, Invalid if none was set.
func (s *Session) RunType() runtype.RunType {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runType
}

// SetRunType selects the run type by name.
func (s *Session) SetRunType(name string) error {
	rt, err := runtype.Parse(name)
	if err != nil {
		return scripterr.Configuration("", "run_type", "%v", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runType = rt
	return nil
}

// SetEngine replaces the engine.
func (s *Session) SetEngine(script string, options ...value.Pair) error {
	e, err := writer.NewEngine(script, options...)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine = e
	return nil
}

func cvArgs(pairs []value.Pair) writer.Args {
	args := make(writer.Args, 0, len(pairs))
	for _, p := range pairs {
		args = append(args, writer.Arg(p.Key, p.Value))
	}
	return args
}

// ValidateCV checks c against the session without changing anything.
func (s *Session) ValidateCV(c *config.CV) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validateCV(c)
}

func (s *Session) validateCV(c *config.CV) error {
	if c.Name == "" {
		return scripterr.Configuration("", "name", "a CV needs a name")
	}
	if existing := s.findCV(c.Name); existing != nil {
		if c.Namespace != "" && c.Namespace != existing.Namespace() {
			return scripterr.Configuration(existing.BindingName(), "namespace",
				"namespace cannot change from %s to %s", existing.Namespace(), c.Namespace)
		}
	}
	return nil
}

// PutCV creates the CV named c.Name or updates it if it exists.
func (s *Session) PutCV(c *config.CV) (*writer.CV, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.validateCV(c); err != nil {
		return nil, err
	}
	args := cvArgs(c.Arguments)
	if existing := s.findCV(c.Name); existing != nil {
		if err := existing.Update(c.Class, c.Name, args); err != nil {
			return nil, err
		}
		existing.SetDiskCache(c.DiskCache)
		return existing, nil
	}

	opts := []writer.Option{writer.WithDiskCache(c.DiskCache)}
	if c.Namespace != "" {
		opts = append(opts, writer.WithNamespace(c.Namespace))
	}
	cv, err := writer.NewCV(s.factory, c.Class, c.Name, args, opts...)
	if err != nil {
		return nil, err
	}
	s.cvs = append(s.cvs, cv)
	return cv, nil
}

// CV returns the CV with the given display name.
func (s *Session) CV(name string) (*writer.CV, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cv := s.findCV(name)
	return cv, cv != nil
}

func (s *Session) findCV(name string) *writer.CV {
	for _, cv := range s.cvs {
		if cv.DisplayName() == name {
			return cv
		}
	}
	return nil
}

// DeleteCV removes a CV. It is refused while a volume or another CV still
// refers to it.
func (s *Session) DeleteCV(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, cv := range s.cvs {
		if cv.DisplayName() == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return scripterr.Configuration("", "name", "no CV named %q", name)
	}
	binding := s.cvs[idx].BindingName()

	g, labels, err := s.graph()
	if err != nil {
		return err
	}
	users, err := g.Dependents(binding)
	if err != nil {
		return err
	}
	if len(users) > 0 {
		described := make([]string, len(users))
		for i, u := range users {
			described[i] = labels[u]
		}
		return scripterr.Configuration(binding, "", "CV %q is used by %s", name, strings.Join(described, ", "))
	}

	s.cvs = append(s.cvs[:idx], s.cvs[idx+1:]...)
	return nil
}

// graph links every CV and volume to the CVs it refers to. Volumes are added
// first, so they lead the Dependents of a CV. labels describes each node.
func (s *Session) graph() (*dag.Graph, map[string]string, error) {
	g := dag.New()
	labels := make(map[string]string, len(s.volumes)+len(s.cvs))
	var entities []*writer.Entity
	for _, v := range s.volumes {
		g.AddNode(v.BindingName(), 0)
		labels[v.BindingName()] = fmt.Sprintf("volume %q", v.DisplayName())
		entities = append(entities, v.Entity)
	}
	for _, cv := range s.cvs {
		g.AddNode(cv.BindingName(), 0)
		labels[cv.BindingName()] = fmt.Sprintf("CV %q", cv.DisplayName())
		entities = append(entities, cv.Entity)
	}

	for _, e := range entities {
		for _, ref := range e.References() {
			if ref == e.BindingName() || !g.Has(ref) {
				continue
			}
			if err := g.AddEdge(ref, e.BindingName()); err != nil {
				return nil, nil, err
			}
		}
	}
	return g, labels, nil
}

// ValidateVolume checks v against the session without changing anything.
func (s *Session) ValidateVolume(v *config.Volume) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.volumeRange(v)
	return err
}

func (s *Session) volumeRange(v *config.Volume) (writer.Range, error) {
	if v.Name == "" {
		return writer.Range{}, scripterr.Configuration("", "name", "a volume needs a name")
	}
	cv := s.findCV(v.CV)
	if cv == nil {
		return writer.Range{}, scripterr.Configuration("", "collectivevariable",
			"volume %q refers to unknown CV %q", v.Name, v.CV)
	}
	return writer.Range{
		CV:        cv.BindingName(),
		Periodic:  v.Periodic,
		LambdaMin: v.LambdaMin,
		LambdaMax: v.LambdaMax,
		PeriodMin: v.PeriodMin,
		PeriodMax: v.PeriodMax,
	}, nil
}

// PutVolume creates the volume named v.Name or updates it if it exists. The
// CV is looked up by display name and must already exist.
func (s *Session) PutVolume(v *config.Volume) (*writer.Volume, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.volumeRange(v)
	if err != nil {
		return nil, err
	}
	for _, e := range s.volumes {
		if e.DisplayName() == v.Name {
			if err := e.Update(r.TypeTag(), v.Name, v.IsState, r.Args()); err != nil {
				return nil, err
			}
			return e, nil
		}
	}

	w, err := writer.NewVolumeFromRange(s.factory, v.Name, v.IsState, r)
	if err != nil {
		return nil, err
	}
	s.volumes = append(s.volumes, w)
	return w, nil
}

// Volume returns the volume with the given display name.
func (s *Session) Volume(name string) (*writer.Volume, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.volumes {
		if e.DisplayName() == name {
			return e, true
		}
	}
	return nil, false
}

// DeleteVolume removes a volume.
func (s *Session) DeleteVolume(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.volumes {
		if e.DisplayName() == name {
			s.volumes = append(s.volumes[:i], s.volumes[i+1:]...)
			return nil
		}
	}
	return scripterr.Configuration("", "name", "no volume named %q", name)
}

// SetStorage sets the output storage.
func (s *Session) SetStorage(file, mode string) error {
	st, err := writer.NewStorage(file, mode)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.storage = st
	return nil
}

// SetInitialTrajectory sets the file the initial trajectory is loaded from.
func (s *Session) SetInitialTrajectory(file string, index int, topology string) error {
	it, err := writer.NewInitialTrajectory(file, index, topology)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initial = it
	return nil
}

// SetRandomizer sets the velocity randomizer. A zero kB selects
// writer.KBKcalPerMolK.
func (s *Session) SetRandomizer(temperature, kB float64) error {
	if kB == 0 {
		kB = writer.KBKcalPerMolK
	}
	r, err := writer.NewRandomizer(temperature, kB)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.randomizer = r
	return nil
}

// SetParameter sets a template parameter, replacing an earlier value.
func (s *Session) SetParameter(name string, v value.Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.params {
		if s.params[i].Key == name {
			s.params[i].Value = v
			return
		}
	}
	s.params = append(s.params, value.Pair{Key: name, Value: v})
}

// Reset clears the session and restarts binding-name numbering.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.factory.Reset()
	s.runType = runtype.Invalid
	s.engine = nil
	s.cvs = nil
	s.volumes = nil
	s.storage = nil
	s.initial = nil
	s.randomizer = nil
	s.params = nil
}

// Apply loads a description into the session. The storage file defaults to
// the run type's artifact name.
func (s *Session) Apply(ctx context.Context, desc *config.Description) error {
	logger := ctxlog.FromContext(ctx).With("session", s.id.String())
	logger.Debug("Applying description.", "source", desc.Source)

	if desc.RunType == "" {
		return scripterr.Configuration("", "run_type", "run_type is required")
	}
	if err := desc.CheckNames(); err != nil {
		return err
	}
	if err := s.SetRunType(desc.RunType); err != nil {
		return err
	}

	if desc.Engine != nil {
		if err := s.SetEngine(desc.Engine.Script, desc.Engine.Options...); err != nil {
			return err
		}
	}
	for _, c := range desc.CVs {
		cv, err := s.PutCV(c)
		if err != nil {
			return err
		}
		logger.Debug("CV added.", "name", c.Name, "binding", cv.BindingName())
	}
	for _, v := range desc.Volumes {
		w, err := s.PutVolume(v)
		if err != nil {
			return err
		}
		logger.Debug("Volume added.", "name", v.Name, "binding", w.BindingName(), "is_state", v.IsState)
	}

	if st := desc.Storage; st != nil {
		if err := s.SetStorage(st.File, st.Mode); err != nil {
			return err
		}
	} else if err := s.SetStorage(s.RunType().DefaultArtifact(), "w"); err != nil {
		return err
	}
	if it := desc.InitialTrajectory; it != nil {
		if err := s.SetInitialTrajectory(it.File, it.Index, it.Topology); err != nil {
			return err
		}
	}
	if r := desc.Randomizer; r != nil {
		if err := s.SetRandomizer(r.Temperature, r.KB); err != nil {
			return err
		}
	}
	for _, p := range desc.Parameters {
		s.SetParameter(p.Key, p.Value)
	}

	logger.Debug("Description applied.", "cvs", len(desc.CVs), "volumes", len(desc.Volumes))
	return nil
}

// Program assembles the session into a program ready to render. The
// program holds the session's writers, so edits made before it renders
// show up in its output.
func (s *Session) Program() (*program.Program, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := program.New(s.runType)
	if s.engine != nil {
		if err := p.SetEngine(s.engine); err != nil {
			return nil, err
		}
	}
	for _, cv := range s.cvs {
		if err := p.AddCV(cv); err != nil {
			return nil, err
		}
	}
	for _, e := range s.volumes {
		if err := p.AddVolume(e); err != nil {
			return nil, err
		}
	}
	if s.storage != nil {
		if err := p.AddAux(s.storage); err != nil {
			return nil, err
		}
	}
	if s.initial != nil {
		if err := p.AddAux(s.initial); err != nil {
			return nil, err
		}
	}
	if s.randomizer != nil {
		if err := p.AddAux(s.randomizer); err != nil {
			return nil, err
		}
	}
	for _, param := range s.params {
		if err := p.SetParameter(param.Key, param.Value); err != nil {
			return nil, err
		}
	}
	return p, nil
}
