package cloth

import (
	"math"
	"strings"

	G "diesel.com/cloth/geometry"
	V "diesel.com/cloth/vector"
	"github.com/pkg/errors"
)

//Gravity standard acceleration used by DefaultConfig
const Gravity = 9.81

//ErrInvalidConfig is the cause of every configuration rejection
var ErrInvalidConfig = errors.New("invalid cloth configuration")

//Orientation of the cloth at rest
type Orientation int

const (
	Hanging Orientation = iota //rows go down -Y from the origin
	Flat                       //rows go along +Z, cloth lies in the XZ plane
)

//PinMode selects which particles are held in place
type PinMode int

const (
	TopCorners  PinMode = iota // {0, W-1}
	TopLine                    // i < W
	LeftCorners                // {0, W*(H-1)}
	LeftLine                   // i mod W == 0
	PinNone
)

//Config holds the physics parameters. It is copied into the cloth on creation and
//never mutated during the run.
type Config struct {
	Width          int         //particles per row
	Height         int         //rows
	Distance       float32     //rest spacing between neighbours
	Origin         V.Vec32     //position of particle 0
	Orientation    Orientation //initial layout
	StretchedStart float32     //initial spacing = Distance * (1 + StretchedStart)
	InvMass        float32     //shared inverse particle mass
	SpringFactor   float32     //spring stiffness
	DampingFactor  float32     //spring damping along the spring axis
	AirResistance  float32     //velocity drag [0,1]
	Gravity        float32     //g, 0 disables gravity
	Wind           V.Vec32     //wind direction * magnitude
	GustInterval   int         //ticks between gust resamples
	CollisionDelta float32     //collision skin for ground and sphere
	Pin            PinMode     //fixed vertex predicate
	TimeStep       float32     //fixed dt in seconds

	//DivergenceLimit > 0 enables the non fatal explosion check: any coordinate larger
	//than the limit (or NaN) flags the tick as diverged
	DivergenceLimit float32
}

//Colliders are the static obstacles, supplied once. A nil collider is absent.
type Colliders struct {
	Ground *G.Plane
	Sphere *G.Sphere
}

//DefaultConfig an 11x11 sheet hanging from its top corners at 60 ticks per second
func DefaultConfig() Config {
	return Config{
		Width:           11,
		Height:          11,
		Distance:        1,
		Origin:          V.Vec32{-5, 12, 0},
		Orientation:     Hanging,
		StretchedStart:  0,
		InvMass:         1,
		SpringFactor:    400,
		DampingFactor:   2,
		AirResistance:   0.05,
		Gravity:         Gravity,
		Wind:            V.Vec32{0, 0, 3},
		GustInterval:    30,
		CollisionDelta:  0.05,
		Pin:             TopCorners,
		TimeStep:        1.0 / 60.0,
		DivergenceLimit: 1e4,
	}
}

//DefaultColliders ground at y=0 and a sphere behind the hanging sheet
func DefaultColliders() Colliders {
	return Colliders{
		Ground: &G.Plane{Y: 0},
		Sphere: &G.Sphere{Center: V.Vec32{0, 5, 2}, Radius: 2},
	}
}

//Validate fails fast, nothing is clamped
func (c Config) Validate() error {
	switch {
	case c.Width < 2:
		return errors.Wrapf(ErrInvalidConfig, "width %d < 2", c.Width)
	case c.Height < 2:
		return errors.Wrapf(ErrInvalidConfig, "height %d < 2", c.Height)
	case !(c.Distance > 0):
		return errors.Wrapf(ErrInvalidConfig, "distance %f must be > 0", c.Distance)
	case !(c.InvMass > 0):
		return errors.Wrapf(ErrInvalidConfig, "invmass %f must be > 0", c.InvMass)
	case !(c.CollisionDelta >= 0):
		return errors.Wrapf(ErrInvalidConfig, "collision delta %f must be >= 0", c.CollisionDelta)
	case !(c.AirResistance >= 0 && c.AirResistance <= 1):
		return errors.Wrapf(ErrInvalidConfig, "air resistance %f outside [0,1]", c.AirResistance)
	case !(c.TimeStep > 0):
		return errors.Wrapf(ErrInvalidConfig, "timestep %f must be > 0", c.TimeStep)
	case !(c.StretchedStart >= 0):
		return errors.Wrapf(ErrInvalidConfig, "stretched start %f must be >= 0", c.StretchedStart)
	case c.GustInterval < 1:
		return errors.Wrapf(ErrInvalidConfig, "gust interval %d must be >= 1", c.GustInterval)
	case c.Orientation != Hanging && c.Orientation != Flat:
		return errors.Wrapf(ErrInvalidConfig, "unknown orientation %d", c.Orientation)
	case c.Pin < TopCorners || c.Pin > PinNone:
		return errors.Wrapf(ErrInvalidConfig, "unknown pin mode %d", c.Pin)
	case c.DivergenceLimit < 0:
		return errors.Wrapf(ErrInvalidConfig, "divergence limit %f must be >= 0", c.DivergenceLimit)
	}
	for _, f := range []float32{c.SpringFactor, c.DampingFactor, c.Gravity} {
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return errors.Wrap(ErrInvalidConfig, "spring, damping and gravity must be finite")
		}
	}
	if !V.IsFinite(c.Wind) || !V.IsFinite(c.Origin) {
		return errors.Wrap(ErrInvalidConfig, "wind and origin must be finite")
	}
	return nil
}

//Validate rejects a sphere with negative radius
func (c Colliders) Validate() error {
	if c.Sphere != nil && !(c.Sphere.Radius >= 0) {
		return errors.Wrapf(ErrInvalidConfig, "sphere radius %f must be >= 0", c.Sphere.Radius)
	}
	return nil
}

//clone copies the collider geometry so later edits by the caller never reach a
//running cloth
func (c Colliders) clone() Colliders {
	var out Colliders
	if c.Ground != nil {
		g := *c.Ground
		out.Ground = &g
	}
	if c.Sphere != nil {
		s := *c.Sphere
		out.Sphere = &s
	}
	return out
}

func normalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(s)
}

//ParseOrientation accepts "hanging" or "flat"
func ParseOrientation(s string) (Orientation, error) {
	switch normalizeName(s) {
	case "hanging", "":
		return Hanging, nil
	case "flat":
		return Flat, nil
	}
	return 0, errors.Wrapf(ErrInvalidConfig, "unknown orientation %q", s)
}

func (o Orientation) String() string {
	switch o {
	case Hanging:
		return "hanging"
	case Flat:
		return "flat"
	}
	return "unknown"
}

//ParsePinMode accepts topCorners, topLine, leftCorners, leftLine, none (case and
//separators ignored)
func ParsePinMode(s string) (PinMode, error) {
	switch normalizeName(s) {
	case "topcorners", "":
		return TopCorners, nil
	case "topline":
		return TopLine, nil
	case "leftcorners":
		return LeftCorners, nil
	case "leftline":
		return LeftLine, nil
	case "none":
		return PinNone, nil
	}
	return 0, errors.Wrapf(ErrInvalidConfig, "unknown pin mode %q", s)
}

func (m PinMode) String() string {
	switch m {
	case TopCorners:
		return "topCorners"
	case TopLine:
		return "topLine"
	case LeftCorners:
		return "leftCorners"
	case LeftLine:
		return "leftLine"
	case PinNone:
		return "none"
	}
	return "unknown"
}

//Pinned is the fixed vertex predicate for particle i of a w x h grid
func (m PinMode) Pinned(i int, w int, h int) bool {
	switch m {
	case TopCorners:
		return i == 0 || i == w-1
	case TopLine:
		return i < w
	case LeftCorners:
		return i == 0 || i == w*(h-1)
	case LeftLine:
		return i%w == 0
	}
	return false
}
