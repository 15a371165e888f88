package writer

import (
	"github.com/specialistvlad/pathscript/internal/value"
)

// cvKind: every CV takes its name at construction, and `f`/`engine` point at
// raw input data or the engine.
var cvKind = &Kind{
	Name:        "cv",
	Prefix:      "cv",
	Namespace:   "paths",
	Identifiers: value.NewNames("f", "engine"),
	FoldName:    true,
}

// CV writes a collective variable.
type CV struct {
	*Entity
	diskCache bool
}

// NewCV creates a collective variable. displayName is required.
func NewCV(f *Factory, typeTag, displayName string, args Args, opts ...Option) (*CV, error) {
	e, err := New(f, cvKind, typeTag, displayName, args, opts...)
	if err != nil {
		return nil, err
	}
	cv := &CV{Entity: e}
	if s := collect(opts); s.diskCache != nil {
		cv.diskCache = *s.diskCache
	}
	return cv, nil
}

// DiskCache reports whether the CV enables its disk cache.
func (c *CV) DiskCache() bool { return c.diskCache }

// SetDiskCache toggles the trailing enable_diskcache() call.
func (c *CV) SetDiskCache(enabled bool) { c.diskCache = enabled }

// Code renders the constructor and, if enabled, the disk cache call.
func (c *CV) Code() (string, error) {
	code, err := c.Entity.Code()
	if err != nil {
		return "", err
	}
	if c.diskCache {
		code += "\n" + c.BindingName() + ".enable_diskcache()"
	}
	return code, nil
}
