package config

import (
	"fmt"

	"github.com/specialistvlad/pathscript/internal/scripterr"
)

// Merge adds the contents of part to d. Lists are appended in order; the
// singleton blocks, each parameter and each CV or volume name may be given
// once only.
func (d *Description) Merge(part *Description) error {
	if part.RunType != "" {
		if d.RunType != "" {
			return fmt.Errorf("run_type is set more than once")
		}
		d.RunType = part.RunType
	}
	if part.Engine != nil {
		if d.Engine != nil {
			return fmt.Errorf("engine block is given more than once")
		}
		d.Engine = part.Engine
	}
	if part.Storage != nil {
		if d.Storage != nil {
			return fmt.Errorf("storage block is given more than once")
		}
		d.Storage = part.Storage
	}
	if part.InitialTrajectory != nil {
		if d.InitialTrajectory != nil {
			return fmt.Errorf("initial_trajectory block is given more than once")
		}
		d.InitialTrajectory = part.InitialTrajectory
	}
	if part.Randomizer != nil {
		if d.Randomizer != nil {
			return fmt.Errorf("randomizer block is given more than once")
		}
		d.Randomizer = part.Randomizer
	}

	for _, cv := range part.CVs {
		if d.cv(cv.Name) != nil {
			return duplicateCV(cv.Name)
		}
		d.CVs = append(d.CVs, cv)
	}
	for _, v := range part.Volumes {
		if d.volume(v.Name) != nil {
			return duplicateVolume(v.Name)
		}
		d.Volumes = append(d.Volumes, v)
	}

	for _, p := range part.Parameters {
		if _, dup := d.Parameter(p.Key); dup {
			return fmt.Errorf("parameter %s is set more than once", p.Key)
		}
		d.Parameters = append(d.Parameters, p)
	}
	return nil
}

// CheckNames reports a CV or volume name declared more than once.
func (d *Description) CheckNames() error {
	cvs := make(map[string]struct{}, len(d.CVs))
	for _, cv := range d.CVs {
		if _, dup := cvs[cv.Name]; dup {
			return duplicateCV(cv.Name)
		}
		cvs[cv.Name] = struct{}{}
	}
	volumes := make(map[string]struct{}, len(d.Volumes))
	for _, v := range d.Volumes {
		if _, dup := volumes[v.Name]; dup {
			return duplicateVolume(v.Name)
		}
		volumes[v.Name] = struct{}{}
	}
	return nil
}

func (d *Description) cv(name string) *CV {
	for _, cv := range d.CVs {
		if cv.Name == name {
			return cv
		}
	}
	return nil
}

func (d *Description) volume(name string) *Volume {
	for _, v := range d.Volumes {
		if v.Name == name {
			return v
		}
	}
	return nil
}

func duplicateCV(name string) error {
	return scripterr.Configuration("", "name", "cv %q is declared more than once", name)
}

func duplicateVolume(name string) error {
	return scripterr.Configuration("", "name", "volume %q is declared more than once", name)
}
