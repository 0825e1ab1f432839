package app

import (
	"math"

	C "diesel.com/cloth/cloth"
	V "diesel.com/cloth/vector"
	"github.com/go-gl/mathgl/mgl32"
)

//Orbit camera looking at a target point
type Camera struct {
	Target   V.Vec32
	Yaw      float32 //radians around +y, zero looks down -z
	Pitch    float32 //radians, positive looks down on the target
	Distance float32
	Fovy     float32 //degrees
}

const (
	maxPitch    = 1.5
	minDistance = 0.5
)

//NewCamera frames the box min..max from the front
func NewCamera(min V.Vec32, max V.Vec32) *Camera {
	target := V.Scale(V.Add(min, max), 0.5)
	diag := V.Distance(min, max)
	if diag < 1 {
		diag = 1
	}
	return &Camera{Target: target, Pitch: 0.3, Distance: 1.5 * diag, Fovy: 45}
}

//Eye world position of the camera
func (c *Camera) Eye() mgl32.Vec3 {
	cp := float32(math.Cos(float64(c.Pitch)))
	offset := mgl32.Vec3{
		c.Distance * cp * float32(math.Sin(float64(c.Yaw))),
		c.Distance * float32(math.Sin(float64(c.Pitch))),
		c.Distance * cp * float32(math.Cos(float64(c.Yaw))),
	}
	return c.target().Add(offset)
}

func (c *Camera) target() mgl32.Vec3 {
	return mgl32.Vec3{c.Target[0], c.Target[1], c.Target[2]}
}

func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Eye(), c.target(), mgl32.Vec3{0, 1, 0})
}

func (c *Camera) Projection(aspect float32) mgl32.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	return mgl32.Perspective(mgl32.DegToRad(c.Fovy), aspect, 0.1, 100*c.Distance)
}

//MVP combined projection and view, the model matrix is identity
func (c *Camera) MVP(aspect float32) mgl32.Mat4 {
	return c.Projection(aspect).Mul4(c.View())
}

func (c *Camera) Orbit(dyaw float32, dpitch float32) {
	c.Yaw += dyaw
	c.Pitch = mgl32.Clamp(c.Pitch+dpitch, -maxPitch, maxPitch)
}

//Zoom scales the distance, factors below one move closer
func (c *Camera) Zoom(factor float32) {
	if factor <= 0 {
		return
	}
	c.Distance *= factor
	if c.Distance < minDistance {
		c.Distance = minDistance
	}
}

//ColliderLines line list (vertex pairs) outlining the colliders: a square grid of
//half size extent on the ground and three great circles of the sphere.
func ColliderLines(col C.Colliders, extent float32, segments int) []V.Vec32 {
	var lines []V.Vec32
	if col.Ground != nil {
		const cells = 10
		y := col.Ground.Y
		step := 2 * extent / cells
		for i := 0; i <= cells; i++ {
			o := -extent + float32(i)*step
			lines = append(lines,
				V.Vec32{o, y, -extent}, V.Vec32{o, y, extent},
				V.Vec32{-extent, y, o}, V.Vec32{extent, y, o})
		}
	}
	if col.Sphere != nil && segments >= 3 {
		c, r := col.Sphere.Center, col.Sphere.Radius
		point := func(axis int, a float64) V.Vec32 {
			s, co := float32(math.Sin(a))*r, float32(math.Cos(a))*r
			switch axis {
			case 0:
				return V.Add(c, V.Vec32{0, s, co})
			case 1:
				return V.Add(c, V.Vec32{s, 0, co})
			}
			return V.Add(c, V.Vec32{s, co, 0})
		}
		for axis := 0; axis < 3; axis++ {
			for k := 0; k < segments; k++ {
				a0 := 2 * math.Pi * float64(k) / float64(segments)
				a1 := 2 * math.Pi * float64(k+1) / float64(segments)
				lines = append(lines, point(axis, a0), point(axis, a1))
			}
		}
	}
	return lines
}
