// Package writer is the code-synthesis model: in-memory descriptions of the
// statements that make up a generated run script.
//
// # Named entities
//
// An Entity constructs one object of the target library and binds it to a
// generated name such as `cv_1` or `volume_3`. The sequence number behind the
// name comes from a Factory, which is owned by one editing session; two
// sessions never share counters, and Factory.Reset starts a session over.
// Entity.Update edits an entity in place and never changes its binding name,
// so other entities that already refer to it stay valid.
//
// CV and Volume are the two specialized entities. A CV folds its display name
// into the `name=` argument; a Volume carries the is_state flag that decides
// whether it joins the `states` list.
//
// # Auxiliary writers
//
// Storage, Engine, InitialTrajectory, Randomizer and Blank emit fixed-shape
// code with no sequence number. Some of them bind a fixed name (`storage`,
// `engine`, `trajectory`, `randomizer`).
//
// Every writer implements Statement. Writers that define names implement
// Provider, and writers whose arguments point at other writers implement
// Referrer; the program assembler orders statements with these.
package writer

// Statement renders one statement or a small group of statements, without a
// trailing newline. An empty string means there is nothing to emit.
type Statement interface {
	Code() (string, error)
}

// Provider is implemented by writers that bind names in the program.
type Provider interface {
	Provides() []string
}

// Referrer is implemented by writers that refer to names bound elsewhere.
type Referrer interface {
	References() []string
}
