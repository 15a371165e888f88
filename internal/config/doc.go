// Package config defines the format-agnostic description of a run script,
// along with the Loader interface that concrete formats implement.
//
// A Description names things the way a user does: CVs and volumes by their
// display names, volumes pointing at a CV by that name. Turning names into
// binding names is the session's job, not the loader's. Concrete loaders for
// HCL and YAML live in separate packages.
package config
