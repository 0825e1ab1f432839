package cloth

import (
	"io"
	"math/rand"

	V "diesel.com/cloth/vector"
	"github.com/sirupsen/logrus"
)

//Cloth is the particle grid with its spring network. Positions are kept as two
//buffers (previous and current tick), velocity is only ever derived from them.
//A Cloth is not safe for concurrent use: Step owns both buffers for its duration and
//readers must only look at them between ticks (or take a Snapshot).
type Cloth struct {
	cfg       Config
	colliders Colliders
	wind      *Wind
	log       logrus.FieldLogger

	springs []Spring
	pinned  []bool
	initial []V.Vec32

	prev   []V.Vec32
	curr   []V.Vec32
	forces []V.Vec32

	tick  int
	stats TickStats
}

//TickStats diagnostics of one Step
type TickStats struct {
	Tick              int  //tick just completed, starting at 1
	DegenerateSprings int  //springs skipped for zero length
	DegenerateSphere  int  //particles sitting exactly on the sphere center
	GroundContacts    int  //particles raised to the ground floor
	SphereContacts    int  //particles projected out of the sphere
	Diverged          bool //a coordinate exceeded DivergenceLimit or went NaN
}

//New validates the configuration and lays the cloth out. rng feeds the wind, nil uses
//a fixed seed. log receives degenerate geometry and divergence reports, nil discards.
func New(cfg Config, colliders Colliders, rng Rand, log logrus.FieldLogger) (*Cloth, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := colliders.Validate(); err != nil {
		return nil, err
	}

	return build(cfg, colliders, rng, log,
		Layout(cfg),
		BuildSprings(cfg.Width, cfg.Height, cfg.Distance),
		PinSet(cfg.Pin, cfg.Width, cfg.Height)), nil
}

//build assembles a cloth from explicit particles, springs and pins
func build(cfg Config, colliders Colliders, rng Rand, log logrus.FieldLogger, positions []V.Vec32, springs []Spring, pinned []bool) *Cloth {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}

	n := len(positions)
	c := &Cloth{
		cfg:       cfg,
		colliders: colliders.clone(),
		wind:      NewWind(cfg.Wind, cfg.GustInterval, rng),
		log:       log,
		springs:   springs,
		pinned:    pinned,
		initial:   make([]V.Vec32, n),
		prev:      make([]V.Vec32, n),
		curr:      make([]V.Vec32, n),
		forces:    make([]V.Vec32, n),
	}
	copy(c.initial, positions)
	c.Reset()
	return c
}

//Reset puts every particle back to its initial position at rest
func (c *Cloth) Reset() {
	copy(c.curr, c.initial)
	copy(c.prev, c.initial)
	for i := range c.forces {
		c.forces[i].Clear()
	}
	c.tick = 0
	c.stats = TickStats{}
}

//Step advances the simulation by one fixed tick: accumulate forces, integrate,
//enforce pins and collisions. It never fails, per tick faults are reported in the
//returned stats.
func (c *Cloth) Step() TickStats {
	c.stats = TickStats{Tick: c.tick + 1}

	c.accumulate()
	c.integrate()
	c.enforce()

	c.tick++
	if c.cfg.DivergenceLimit > 0 {
		c.checkDivergence()
	}
	return c.stats
}

func (c *Cloth) checkDivergence() {
	for i, p := range c.curr {
		if !V.IsFinite(p) || V.MaxAbs(p) > c.cfg.DivergenceLimit {
			c.stats.Diverged = true
			c.log.WithFields(logrus.Fields{
				"tick":     c.tick,
				"particle": i,
				"position": p.String(),
			}).Warn("cloth diverged, lower the spring factor or the timestep")
			return
		}
	}
}

func (c *Cloth) Config() Config {
	return c.cfg
}

func (c *Cloth) Colliders() Colliders {
	return c.colliders.clone()
}

//Tick number of completed ticks
func (c *Cloth) Tick() int {
	return c.tick
}

//Stats of the last completed tick
func (c *Cloth) Stats() TickStats {
	return c.stats
}

//Springs returns a copy of the spring network
func (c *Cloth) Springs() []Spring {
	s := make([]Spring, len(c.springs))
	copy(s, c.springs)
	return s
}

//Pinned reports whether particle i is held by the pin predicate
func (c *Cloth) Pinned(i int) bool {
	return c.pinned[i]
}

//Count of particles
func (c *Cloth) Count() int {
	return len(c.curr)
}
