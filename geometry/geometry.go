package geometry

import (
	"math"

	Vec "diesel.com/cloth/vector"
)

//diesel geometry library - static colliders for cloth particles and the render topology
//handed to renderers. Collision response is purely positional: a particle found inside
//a collider is moved to the nearest point on its surface, no velocity is touched.

//Plane is a horizontal ground plane at height Y. Particles are kept Delta above it
type Plane struct {
	Y float32
}

//Sphere static sphere collider
type Sphere struct {
	Center Vec.Vec32
	Radius float32
}

//Floor height a particle must stay at or above
func (p Plane) Floor(delta float32) float32 {
	return p.Y + delta
}

//Clamp raises pos to the plane floor. One sided, returns true if pos moved
func (p Plane) Clamp(pos *Vec.Vec32, delta float32) bool {
	floor := p.Floor(delta)
	if pos[1] < floor {
		pos[1] = floor
		return true
	}
	return false
}

//Contains reports whether pos lies inside the sphere grown by delta
func (s Sphere) Contains(pos Vec.Vec32, delta float32) bool {
	r := s.Radius + delta
	return Vec.LengthSq(Vec.Sub(pos, s.Center)) < r*r
}

//Project pushes pos out to the surface of the sphere grown by delta.
//moved reports a projection happened, ok=false marks the degenerate case where pos is
//exactly the center and no direction exists; pos is left untouched then.
func (s Sphere) Project(pos *Vec.Vec32, delta float32) (moved bool, ok bool) {
	if !s.Contains(*pos, delta) {
		return false, true
	}
	//length in float64 so only the exact center has no outward direction
	dx := float64(pos[0]) - float64(s.Center[0])
	dy := float64(pos[1]) - float64(s.Center[1])
	dz := float64(pos[2]) - float64(s.Center[2])
	l := math.Sqrt(dx*dx + dy*dy + dz*dz)
	if l == 0 {
		return false, false
	}
	k := float64(s.Radius+delta) / l
	*pos = Vec.Vec32{
		float32(float64(s.Center[0]) + dx*k),
		float32(float64(s.Center[1]) + dy*k),
		float32(float64(s.Center[2]) + dz*k),
	}
	return true, true
}
