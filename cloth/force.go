package cloth

import (
	V "diesel.com/cloth/vector"
	"github.com/sirupsen/logrus"
)

//accumulate computes the net force of every particle for the current tick from
//gravity, wind, air resistance and spring tension. Forces never carry over.
func (c *Cloth) accumulate() {
	cfg := &c.cfg
	gravity := V.Vec32{0, -cfg.Gravity / cfg.InvMass, 0}

	var gust float32
	calm := c.wind.Calm()
	if !calm {
		gust = c.wind.Gust(c.tick)
	}

	for i := range c.forces {
		f := &c.forces[i]
		f.Clear()

		if !c.pinned[i] {
			f.Add(gravity)
			if !calm {
				f.AddScaled(c.wind.Vector, gust*c.wind.Jitter())
			}
		}
		f.AddScaled(c.Velocity(i), -cfg.AirResistance)
	}

	for s, spring := range c.springs {
		v1, v2 := spring.V1, spring.V2
		force, ok := SpringForce(c.curr[v1], c.curr[v2], c.Velocity(v1), c.Velocity(v2),
			spring.RestLength, cfg.SpringFactor, cfg.DampingFactor)
		if !ok {
			c.stats.DegenerateSprings++
			c.log.WithFields(logrus.Fields{
				"tick":   c.tick,
				"spring": s,
				"v1":     v1,
				"v2":     v2,
			}).Debug("skipping zero length spring")
			continue
		}

		if !c.pinned[v1] {
			c.forces[v1].Add(force)
		}
		if !c.pinned[v2] {
			c.forces[v2].Sub(force)
		}
	}
}
