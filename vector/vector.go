package vector

import (
	"fmt"
	"math"
)

//Vec32 is the simulation's 3 component vector. Free functions are immutable and
//return a new value, pointer methods mutate the receiver and return it for chaining.
type Vec32 [3]float32

//Vec2 holds texture coordinates
type Vec2 [2]float32

//Epsilon is the length under which a vector is treated as zero
const Epsilon = 1e-6

//Up is the +Y world axis
var Up = Vec32{0, 1, 0}

//NewVec32 returns a vector with all components set to a
func NewVec32(a float32) *Vec32 {
	return &Vec32{a, a, a}
}

func Abs(a Vec32) Vec32 {
	a[0] = float32(math.Abs(float64(a[0])))
	a[1] = float32(math.Abs(float64(a[1])))
	a[2] = float32(math.Abs(float64(a[2])))
	return a
}

func Dot(a Vec32, b Vec32) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func (v *Vec32) Dot(b Vec32) float32 {
	return v[0]*b[0] + v[1]*b[1] + v[2]*b[2]
}

//Scale - Scales vector v by scalar a
func Scale(v Vec32, a float32) Vec32 {
	return Vec32{v[0] * a, v[1] * a, v[2] * a}
}

func (v *Vec32) Scale(a float32) *Vec32 {
	v[0] *= a
	v[1] *= a
	v[2] *= a
	return v
}

func (v *Vec32) Clear() *Vec32 {
	v[0] = 0
	v[1] = 0
	v[2] = 0
	return v
}

func Add(v Vec32, b Vec32) Vec32 {
	return Vec32{v[0] + b[0], v[1] + b[1], v[2] + b[2]}
}

func Sub(v Vec32, b Vec32) Vec32 {
	return Vec32{v[0] - b[0], v[1] - b[1], v[2] - b[2]}
}

//Add - Mutate
func (v *Vec32) Add(b Vec32) *Vec32 {
	v[0] += b[0]
	v[1] += b[1]
	v[2] += b[2]
	return v
}

//Sub - Mutate
func (v *Vec32) Sub(b Vec32) *Vec32 {
	v[0] -= b[0]
	v[1] -= b[1]
	v[2] -= b[2]
	return v
}

//AddScaled accumulates b*a into v without allocating an intermediate
func (v *Vec32) AddScaled(b Vec32, a float32) *Vec32 {
	v[0] += b[0] * a
	v[1] += b[1] * a
	v[2] += b[2] * a
	return v
}

//Cross Product
func Cross(a Vec32, b Vec32) Vec32 {
	return Vec32{a[1]*b[2] - b[1]*a[2],
		a[2]*b[0] - b[2]*a[0],
		a[0]*b[1] - b[0]*a[1]}
}

func Length(a Vec32) float32 {
	return float32(math.Sqrt(float64(a[0]*a[0] + a[1]*a[1] + a[2]*a[2])))
}

func (v *Vec32) Length() float32 {
	return Length(*v)
}

func LengthSq(a Vec32) float32 {
	return a[0]*a[0] + a[1]*a[1] + a[2]*a[2]
}

func Distance(a Vec32, b Vec32) float32 {
	return Length(Sub(a, b))
}

//Normalize returns the unit vector of a, or the zero vector when a has no direction
func Normalize(a Vec32) Vec32 {
	n, _ := NormalizeSafe(a)
	return n
}

//NormalizeSafe reports ok=false instead of dividing by a near zero length
func NormalizeSafe(a Vec32) (Vec32, bool) {
	l := Length(a)
	if l <= Epsilon {
		return Vec32{}, false
	}
	return Vec32{a[0] / l, a[1] / l, a[2] / l}, true
}

//Lerp linear interpolation between a (t=0) and b (t=1)
func Lerp(a Vec32, b Vec32, t float32) Vec32 {
	return Vec32{a[0] + (b[0]-a[0])*t, a[1] + (b[1]-a[1])*t, a[2] + (b[2]-a[2])*t}
}

//Produces a vector which is a projection of a onto arbitrary vector n
func Proj(a Vec32, n Vec32) Vec32 {
	l2 := LengthSq(n)
	if l2 == 0 {
		return Vec32{}
	}
	return Scale(n, Dot(a, n)/l2)
}

//ProjPlane removes the component of a along the normal n
func ProjPlane(a Vec32, n Vec32) Vec32 {
	return Sub(a, Proj(a, n))
}

func Equals(v Vec32, a Vec32) bool {
	return v[0] == a[0] && v[1] == a[1] && v[2] == a[2]
}

//ApproxEquals compares component wise within tol
func ApproxEquals(v Vec32, a Vec32, tol float32) bool {
	for i := 0; i < 3; i++ {
		if float32(math.Abs(float64(v[i]-a[i]))) > tol {
			return false
		}
	}
	return true
}

//IsFinite is false if any component is NaN or Inf
func IsFinite(a Vec32) bool {
	for i := 0; i < 3; i++ {
		f := float64(a[i])
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

//MaxAbs largest absolute component
func MaxAbs(a Vec32) float32 {
	m := float32(0)
	for _, c := range Abs(a) {
		if c > m {
			m = c
		}
	}
	return m
}

func (a Vec32) String() string {
	return fmt.Sprintf("[ %f, %f, %f]", a[0], a[1], a[2])
}

func (a Vec2) String() string {
	return fmt.Sprintf("[ %f, %f]", a[0], a[1])
}
