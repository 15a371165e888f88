package writer

import (
	"math"

	"github.com/specialistvlad/pathscript/internal/scripterr"
	"github.com/specialistvlad/pathscript/internal/value"
)

// Volume classes.
const (
	VolumeClassPlain    = "CVDefinedVolume"
	VolumeClassPeriodic = "PeriodicCVDefinedVolume"
)

// VolumeClass picks the volume class for a periodicity flag.
func VolumeClass(periodic bool) string {
	if periodic {
		return VolumeClassPeriodic
	}
	return VolumeClassPlain
}

var volumeKind = &Kind{
	Name:        "volume",
	Prefix:      "volume",
	Namespace:   "paths",
	Identifiers: value.NewNames("collectivevariable"),
	Validate:    validateVolume,
}

// validateVolume enforces the required arguments of each volume class and
// the ordering of its bounds. Periodic volumes may wrap around, so only their
// period is ordered.
func validateVolume(typeTag string, args Args) error {
	var periodic bool
	switch typeTag {
	case VolumeClassPlain:
	case VolumeClassPeriodic:
		periodic = true
	default:
		return scripterr.Configuration("", "", "unknown volume class %q", typeTag)
	}

	if _, ok := args.Get("collectivevariable"); !ok {
		return scripterr.Configuration("", "collectivevariable", "required argument is missing")
	}
	lambdaMin, err := bound(args, "lambda_min")
	if err != nil {
		return err
	}
	lambdaMax, err := bound(args, "lambda_max")
	if err != nil {
		return err
	}

	if !periodic {
		if !(lambdaMin < lambdaMax) {
			return scripterr.Configuration("", "lambda_max", "lambda_min (%v) must be below lambda_max (%v)", lambdaMin, lambdaMax)
		}
		return nil
	}

	periodMin, err := bound(args, "period_min")
	if err != nil {
		return err
	}
	periodMax, err := bound(args, "period_max")
	if err != nil {
		return err
	}
	if !(periodMin < periodMax) {
		return scripterr.Configuration("", "period_max", "period_min (%v) must be below period_max (%v)", periodMin, periodMax)
	}
	return nil
}

func bound(args Args, name string) (float64, error) {
	v, ok := args.Get(name)
	if !ok {
		return 0, scripterr.Configuration("", name, "required argument is missing")
	}
	n, ok := v.Numeric()
	if !ok {
		return 0, scripterr.Configuration("", name, "bound must be numeric, got %s", v.Kind())
	}
	if math.IsNaN(n) {
		return 0, scripterr.Configuration("", name, "bound is not a number")
	}
	return n, nil
}

// Volume writes a CV-defined volume; states are volumes with IsState set.
type Volume struct {
	*Entity
	isState bool
}

// NewVolume creates a volume of class typeTag (see VolumeClass).
func NewVolume(f *Factory, typeTag, displayName string, isState bool, args Args, opts ...Option) (*Volume, error) {
	e, err := New(f, volumeKind, typeTag, displayName, args, opts...)
	if err != nil {
		return nil, err
	}
	return &Volume{Entity: e, isState: isState}, nil
}

// Update replaces every field except the binding name.
func (v *Volume) Update(typeTag, displayName string, isState bool, args Args) error {
	if err := v.Entity.Update(typeTag, displayName, args); err != nil {
		return err
	}
	v.isState = isState
	return nil
}

// IsState reports whether the volume belongs to the states collection.
func (v *Volume) IsState() bool { return v.isState }

// Range describes a volume by its bounds. Infinite bounds are rendered as
// infinity fragments.
type Range struct {
	// CV is the binding name of the collective variable.
	CV        string
	Periodic  bool
	LambdaMin float64
	LambdaMax float64
	PeriodMin float64
	PeriodMax float64
}

// TypeTag returns the volume class for the range.
func (r Range) TypeTag() string { return VolumeClass(r.Periodic) }

// Args returns the constructor arguments for the range.
func (r Range) Args() Args {
	args := Args{
		Arg("collectivevariable", value.Identifier(r.CV)),
		Arg("lambda_min", value.Bound(r.LambdaMin)),
		Arg("lambda_max", value.Bound(r.LambdaMax)),
	}
	if r.Periodic {
		args = append(args,
			Arg("period_min", value.Bound(r.PeriodMin)),
			Arg("period_max", value.Bound(r.PeriodMax)),
		)
	}
	return args
}

// NewVolumeFromRange creates a volume from its bounds.
func NewVolumeFromRange(f *Factory, displayName string, isState bool, r Range, opts ...Option) (*Volume, error) {
	return NewVolume(f, r.TypeTag(), displayName, isState, r.Args(), opts...)
}
