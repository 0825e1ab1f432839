package cloth

import (
	"github.com/sirupsen/logrus"
)

//enforce applies, in order, pinning, the ground plane and the sphere. Responses are
//positional only: prev is left alone so momentum is not conserved.
func (c *Cloth) enforce() {
	for i, pinned := range c.pinned {
		if pinned {
			c.curr[i] = c.prev[i]
		}
	}

	delta := c.cfg.CollisionDelta

	if ground := c.colliders.Ground; ground != nil {
		for i := range c.curr {
			if ground.Clamp(&c.curr[i], delta) {
				c.stats.GroundContacts++
			}
		}
	}

	if sphere := c.colliders.Sphere; sphere != nil {
		for i := range c.curr {
			moved, ok := sphere.Project(&c.curr[i], delta)
			if !ok {
				c.stats.DegenerateSphere++
				c.log.WithFields(logrus.Fields{
					"tick":     c.tick,
					"particle": i,
				}).Debug("particle on sphere center, skipping projection")
				continue
			}
			if moved {
				c.stats.SphereContacts++
			}
		}
	}
}
