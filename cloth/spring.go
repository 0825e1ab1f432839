package cloth

import (
	"math"

	V "diesel.com/cloth/vector"
)

//Spring elastic constraint between two distinct particles. Stiffness and damping are
//global to the cloth.
type Spring struct {
	V1         int
	V2         int
	RestLength float32
}

//SpringCount number of springs on a w x h grid
func SpringCount(w int, h int) int {
	return h*(w-1) + w*(h-1) + 2*(w-1)*(h-1)
}

//BuildSprings structural horizontal, structural vertical, then two shear springs per
//cell. The order is fixed so results are reproducible.
func BuildSprings(w int, h int, distance float32) []Spring {
	springs := make([]Spring, 0, SpringCount(w, h))
	diagonal := distance * float32(math.Sqrt2)

	for y := 0; y < h; y++ {
		for x := 0; x < w-1; x++ {
			springs = append(springs, Spring{y*w + x, y*w + x + 1, distance})
		}
	}
	for x := 0; x < w; x++ {
		for y := 0; y < h-1; y++ {
			springs = append(springs, Spring{y*w + x, (y+1)*w + x, distance})
		}
	}
	for y := 0; y < h-1; y++ {
		for x := 0; x < w-1; x++ {
			springs = append(springs,
				Spring{y*w + x, (y+1)*w + x + 1, diagonal},
				Spring{(y+1)*w + x, y*w + x + 1, diagonal})
		}
	}
	return springs
}

//SpringForce returns the force a spring applies to its first endpoint, the second
//endpoint receives the exact negation. p and v are positions and velocities of the two
//endpoints. ok=false when the endpoints coincide and the spring has no direction.
func SpringForce(p1, p2, v1, v2 V.Vec32, rest, stiffness, damping float32) (V.Vec32, bool) {
	dpos := V.Sub(p1, p2)
	dist := V.Length(dpos)
	if dist <= V.Epsilon {
		return V.Vec32{}, false
	}

	stretch := dist - rest
	springForce := -stiffness * stretch
	relVel := V.Sub(v1, v2)
	//opposes the relative speed along the spring axis; the negative sign is deliberate,
	//a positive term would feed energy into separating endpoints
	dampForce := -damping * V.Dot(relVel, dpos) / dist

	return V.Scale(dpos, (springForce+dampForce)/dist), true
}
