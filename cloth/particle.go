package cloth

import (
	V "diesel.com/cloth/vector"
)

//Positions returns the live current position buffer. It is only valid between ticks
//and must not be modified; use Snapshot to keep a copy.
func (c *Cloth) Positions() []V.Vec32 {
	return c.curr
}

//Snapshot copies the current positions into dst (grown as needed) and returns it
func (c *Cloth) Snapshot(dst []V.Vec32) []V.Vec32 {
	if cap(dst) < len(c.curr) {
		dst = make([]V.Vec32, len(c.curr))
	}
	dst = dst[:len(c.curr)]
	copy(dst, c.curr)
	return dst
}

//Position of particle i
func (c *Cloth) Position(i int) V.Vec32 {
	return c.curr[i]
}

//Velocity of particle i by finite difference of the two position buffers
func (c *Cloth) Velocity(i int) V.Vec32 {
	return V.Scale(V.Sub(c.curr[i], c.prev[i]), 1/c.cfg.TimeStep)
}

//Force accumulated for particle i during the last tick
func (c *Cloth) Force(i int) V.Vec32 {
	return c.forces[i]
}
