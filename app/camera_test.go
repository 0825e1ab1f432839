package app

import (
	"math"
	"testing"

	C "diesel.com/cloth/cloth"
	G "diesel.com/cloth/geometry"
	V "diesel.com/cloth/vector"
	"github.com/go-gl/mathgl/mgl32"
)

func TestCameraEye(t *testing.T) {
	cam := &Camera{Target: V.Vec32{1, 2, 3}, Distance: 10, Fovy: 45}
	if eye := cam.Eye(); !eye.ApproxEqualThreshold(mgl32.Vec3{1, 2, 13}, 1e-5) {
		t.Fatalf("eye = %v, want [1 2 13]", eye)
	}

	cam.Pitch = math.Pi / 2
	if eye := cam.Eye(); !eye.ApproxEqualThreshold(mgl32.Vec3{1, 12, 3}, 1e-4) {
		t.Fatalf("eye from above = %v", eye)
	}
}

func TestCameraCentersTarget(t *testing.T) {
	cam := NewCamera(V.Vec32{-5, 0, -1}, V.Vec32{5, 12, 1})
	cam.Orbit(0.7, 0.2)

	clip := cam.MVP(16.0 / 9.0).Mul4x1(mgl32.Vec4{cam.Target[0], cam.Target[1], cam.Target[2], 1})
	if clip.W() <= 0 {
		t.Fatalf("target behind the camera: %v", clip)
	}
	if x, y := clip.X()/clip.W(), clip.Y()/clip.W(); math.Abs(float64(x)) > 1e-4 || math.Abs(float64(y)) > 1e-4 {
		t.Fatalf("target projects to %f,%f, want screen center", x, y)
	}
}

func TestCameraLimits(t *testing.T) {
	cam := &Camera{Distance: 2}
	cam.Orbit(0, 10)
	if cam.Pitch != maxPitch {
		t.Fatalf("pitch = %f, want clamp at %f", cam.Pitch, maxPitch)
	}
	cam.Zoom(0.01)
	if cam.Distance != minDistance {
		t.Fatalf("distance = %f, want clamp at %f", cam.Distance, minDistance)
	}
	cam.Zoom(-1)
	if cam.Distance != minDistance {
		t.Fatalf("negative zoom factor applied")
	}
}

func TestColliderLines(t *testing.T) {
	if lines := ColliderLines(C.Colliders{}, 5, 16); len(lines) != 0 {
		t.Fatalf("no colliders produced %d vertices", len(lines))
	}

	ground := ColliderLines(C.Colliders{Ground: &G.Plane{Y: -1}}, 5, 16)
	if len(ground) != 44 {
		t.Fatalf("ground vertices = %d, want 44", len(ground))
	}
	for _, p := range ground {
		if p[1] != -1 {
			t.Fatalf("ground vertex %s off the plane", p)
		}
	}

	s := &G.Sphere{Center: V.Vec32{0, 5, 2}, Radius: 2}
	sphere := ColliderLines(C.Colliders{Sphere: s}, 5, 16)
	if len(sphere) != 3*16*2 {
		t.Fatalf("sphere vertices = %d, want %d", len(sphere), 3*16*2)
	}
	for _, p := range sphere {
		if d := V.Distance(p, s.Center); math.Abs(float64(d-s.Radius)) > 1e-4 {
			t.Fatalf("sphere vertex %s at distance %f", p, d)
		}
	}
}
