package cloth

//integrate advances both position buffers by one Verlet step:
//  next = curr + (curr - prev) + force * invmass * dt^2
//  prev = curr, curr = next
//Velocity stays implicit in the position delta, which keeps stiff springs stable
//where explicit Euler with a velocity buffer diverges.
func (c *Cloth) integrate() {
	dt := c.cfg.TimeStep
	scale := c.cfg.InvMass * dt * dt

	for i := range c.curr {
		curr := c.curr[i]
		next := curr
		next.Add(curr).Sub(c.prev[i]).AddScaled(c.forces[i], scale)

		c.prev[i] = curr
		c.curr[i] = next
	}
}
