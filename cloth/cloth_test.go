package cloth

import (
	"math"
	"math/rand"
	"testing"

	G "diesel.com/cloth/geometry"
	V "diesel.com/cloth/vector"
)

//quiet returns a config with every force source disabled
func quiet(w int, h int) Config {
	cfg := DefaultConfig()
	cfg.Width = w
	cfg.Height = h
	cfg.Gravity = 0
	cfg.Wind = V.Vec32{}
	cfg.DampingFactor = 0
	cfg.AirResistance = 0
	return cfg
}

func mustNew(t testing.TB, cfg Config, colliders Colliders, seed int64) *Cloth {
	t.Helper()
	c, err := New(cfg, colliders, rand.New(rand.NewSource(seed)), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNewStartsAtRest(t *testing.T) {
	c := mustNew(t, DefaultConfig(), DefaultColliders(), 1)

	if c.Count() != 121 {
		t.Fatalf("particles = %d, want 121", c.Count())
	}
	for i := 0; i < c.Count(); i++ {
		if v := c.Velocity(i); v != (V.Vec32{}) {
			t.Fatalf("particle %d initial velocity %s, want zero", i, v)
		}
	}
	if len(c.Springs()) != SpringCount(11, 11) {
		t.Fatalf("springs = %d, want %d", len(c.Springs()), SpringCount(11, 11))
	}
}

func TestLayout(t *testing.T) {
	cfg := quiet(3, 2)
	cfg.Origin = V.Vec32{1, 10, 0}

	hanging := Layout(cfg)
	if hanging[0] != cfg.Origin {
		t.Fatalf("particle 0 = %s, want origin %s", hanging[0], cfg.Origin)
	}
	if want := (V.Vec32{3, 9, 0}); hanging[5] != want {
		t.Fatalf("hanging particle 5 = %s, want %s", hanging[5], want)
	}

	cfg.Orientation = Flat
	flat := Layout(cfg)
	if want := (V.Vec32{3, 10, 1}); flat[5] != want {
		t.Fatalf("flat particle 5 = %s, want %s", flat[5], want)
	}

	cfg.StretchedStart = 0.5
	stretched := Layout(cfg)
	if want := (V.Vec32{1 + 3, 10, 1.5}); stretched[5] != want {
		t.Fatalf("stretched particle 5 = %s, want %s", stretched[5], want)
	}
}

func TestPinPredicates(t *testing.T) {
	const w, h = 4, 3
	cases := []struct {
		mode PinMode
		want []int
	}{
		{TopCorners, []int{0, 3}},
		{TopLine, []int{0, 1, 2, 3}},
		{LeftCorners, []int{0, 8}},
		{LeftLine, []int{0, 4, 8}},
		{PinNone, nil},
	}

	for _, tc := range cases {
		pinned := PinSet(tc.mode, w, h)
		var got []int
		for i, p := range pinned {
			if p {
				got = append(got, i)
			}
		}
		if len(got) != len(tc.want) {
			t.Fatalf("%s pinned %v, want %v", tc.mode, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("%s pinned %v, want %v", tc.mode, got, tc.want)
			}
		}
	}
}

func TestPinnedParticlesHold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Wind = V.Vec32{20, 5, 40}
	cfg.Gravity = 50
	c := mustNew(t, cfg, DefaultColliders(), 7)
	start := c.Snapshot(nil)

	for tick := 0; tick < 200; tick++ {
		before := c.Snapshot(nil)
		c.Step()
		for i := 0; i < c.Count(); i++ {
			if !c.Pinned(i) {
				continue
			}
			if c.Position(i) != before[i] || c.Position(i) != start[i] {
				t.Fatalf("tick %d: pinned particle %d moved %s -> %s", tick, i, before[i], c.Position(i))
			}
		}
	}
}

func TestGroundAndSphereAfterEnforcement(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = 9, 9
	cfg.Distance = 0.5
	cfg.Origin = V.Vec32{-2, 4, -2}
	cfg.Orientation = Flat
	cfg.Pin = PinNone
	cfg.Wind = V.Vec32{1, 0, 1}
	colliders := Colliders{
		Ground: &G.Plane{Y: 0},
		Sphere: &G.Sphere{Center: V.Vec32{0, 2, 0}, Radius: 1},
	}
	c := mustNew(t, cfg, colliders, 3)

	const eps = 1e-4
	floor := colliders.Ground.Floor(cfg.CollisionDelta)
	skin := colliders.Sphere.Radius + cfg.CollisionDelta
	contacts := 0

	for tick := 0; tick < 400; tick++ {
		stats := c.Step()
		contacts += stats.SphereContacts
		for i, p := range c.Positions() {
			if p[1] < floor {
				t.Fatalf("tick %d: particle %d below ground: y=%f", tick, i, p[1])
			}
			if d := V.Distance(p, colliders.Sphere.Center); d < skin-eps {
				t.Fatalf("tick %d: particle %d inside sphere: dist=%f", tick, i, d)
			}
		}
	}
	if contacts == 0 {
		t.Fatalf("cloth never touched the sphere")
	}
}

func TestAllPinnedTopLineAtRest(t *testing.T) {
	cfg := quiet(3, 3)
	cfg.Distance = 1
	cfg.Pin = TopLine
	c := mustNew(t, cfg, Colliders{}, 1)
	start := c.Snapshot(nil)

	for tick := 0; tick < 100; tick++ {
		c.Step()
	}
	for i, p := range c.Positions() {
		if p != start[i] {
			t.Fatalf("particle %d moved %s -> %s", i, start[i], p)
		}
	}
}

func TestTwoParticleOscillatorBounded(t *testing.T) {
	cfg := quiet(2, 1)
	cfg.SpringFactor = 100
	cfg.InvMass = 1
	cfg.TimeStep = 1.0 / 60.0
	const rest = 1

	c := build(cfg, Colliders{}, nil, nil,
		[]V.Vec32{{0, 0, 0}, {2, 0, 0}},
		[]Spring{{V1: 0, V2: 1, RestLength: rest}},
		[]bool{true, false})

	compressed := false
	for tick := 0; tick < 1000; tick++ {
		c.Step()
		p := c.Position(1)
		if !V.IsFinite(p) {
			t.Fatalf("tick %d: position not finite %s", tick, p)
		}
		d := V.Distance(p, c.Position(0))
		if math.Abs(float64(d-rest)) > 1.05 {
			t.Fatalf("tick %d: stretch %f grew past the initial amplitude", tick, d-rest)
		}
		if d < rest {
			compressed = true
		}
	}
	if !compressed {
		t.Fatalf("particle never swung back past the rest length")
	}
	if c.Position(0) != (V.Vec32{}) {
		t.Fatalf("pinned particle moved to %s", c.Position(0))
	}
}

func TestParticleSettlesOnGround(t *testing.T) {
	cfg := quiet(1, 1)
	cfg.Gravity = Gravity
	cfg.CollisionDelta = 0.1

	c := build(cfg, Colliders{Ground: &G.Plane{}}, nil, nil,
		[]V.Vec32{{0, 2, 0}}, nil, []bool{false})

	for tick := 0; tick < 300; tick++ {
		c.Step()
	}
	for tick := 0; tick < 100; tick++ {
		c.Step()
		if y := c.Position(0)[1]; math.Abs(float64(y-0.1)) > 1e-6 {
			t.Fatalf("tick %d: y = %f, want 0.1", c.Tick(), y)
		}
	}
}

func TestGroundClampIdempotent(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Orientation = Flat
	cfg.Origin = V.Vec32{-5, 0.5, -5}
	c := mustNew(t, cfg, Colliders{Ground: &G.Plane{Y: 1}}, 1)

	c.Step()
	once := c.Snapshot(nil)
	c.enforce()
	for i, p := range c.Positions() {
		if p != once[i] {
			t.Fatalf("second enforcement moved particle %d: %s -> %s", i, once[i], p)
		}
	}
}

func TestDegenerateSpringSkipped(t *testing.T) {
	cfg := quiet(2, 1)
	c := build(cfg, Colliders{}, nil, nil,
		[]V.Vec32{{1, 1, 1}, {1, 1, 1}},
		[]Spring{{V1: 0, V2: 1, RestLength: 1}},
		[]bool{false, false})

	stats := c.Step()
	if stats.DegenerateSprings != 1 {
		t.Fatalf("degenerate springs = %d, want 1", stats.DegenerateSprings)
	}
	for i, p := range c.Positions() {
		if !V.IsFinite(p) || p != (V.Vec32{1, 1, 1}) {
			t.Fatalf("particle %d = %s, want untouched", i, p)
		}
	}
}

func TestSphereCenterSkipped(t *testing.T) {
	cfg := quiet(1, 1)
	center := V.Vec32{0, 3, 0}
	c := build(cfg, Colliders{Sphere: &G.Sphere{Center: center, Radius: 1}}, nil, nil,
		[]V.Vec32{center}, nil, []bool{false})

	stats := c.Step()
	if stats.DegenerateSphere != 1 {
		t.Fatalf("degenerate sphere = %d, want 1", stats.DegenerateSphere)
	}
	if c.Position(0) != center {
		t.Fatalf("particle moved to %s", c.Position(0))
	}
}

func TestSphereNearCenterProjected(t *testing.T) {
	cfg := quiet(1, 1)
	cfg.CollisionDelta = 0
	center := V.Vec32{0, 3, 0}
	c := build(cfg, Colliders{Sphere: &G.Sphere{Center: center, Radius: 1}}, nil, nil,
		[]V.Vec32{{5e-7, 3, 0}}, nil, []bool{false})

	stats := c.Step()
	if stats.DegenerateSphere != 0 || stats.SphereContacts != 1 {
		t.Fatalf("stats = %+v, want one contact and nothing degenerate", stats)
	}
	if d := V.Distance(c.Position(0), center); d < 1-1e-5 {
		t.Fatalf("particle %s left %f from the center, want >= 1", c.Position(0), d)
	}
}

func TestCollidersCopiedAtNew(t *testing.T) {
	sphere := &G.Sphere{Center: V.Vec32{100, 100, 100}, Radius: 1}
	ground := &G.Plane{Y: -50}
	c := mustNew(t, quiet(2, 2), Colliders{Ground: ground, Sphere: sphere}, 1)

	sphere.Radius = 1000
	ground.Y = 1000
	stats := c.Step()
	if stats.SphereContacts != 0 || stats.GroundContacts != 0 {
		t.Fatalf("caller edits reached the cloth: %+v", stats)
	}

	got := c.Colliders()
	if got.Sphere.Radius != 1 || got.Ground.Y != -50 {
		t.Fatalf("cloth colliders = %+v %+v, want the values given to New", *got.Sphere, *got.Ground)
	}
	got.Sphere.Radius = 500
	if c.Colliders().Sphere.Radius != 1 {
		t.Fatalf("accessor exposes internal sphere")
	}
}

func TestDivergenceReported(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SpringFactor = 1e6
	cfg.TimeStep = 0.1
	cfg.StretchedStart = 0.5
	cfg.DivergenceLimit = 1e3
	c := mustNew(t, cfg, Colliders{}, 1)

	for tick := 0; tick < 200; tick++ {
		if c.Step().Diverged {
			return
		}
	}
	t.Fatalf("explosion not reported after 200 ticks")
}

func TestSeededRunsRepeat(t *testing.T) {
	a := mustNew(t, DefaultConfig(), DefaultColliders(), 42)
	b := mustNew(t, DefaultConfig(), DefaultColliders(), 42)

	for tick := 0; tick < 120; tick++ {
		a.Step()
		b.Step()
	}
	for i := range a.Positions() {
		if a.Position(i) != b.Position(i) {
			t.Fatalf("particle %d differs between identical runs: %s vs %s", i, a.Position(i), b.Position(i))
		}
	}
}

func TestReset(t *testing.T) {
	c := mustNew(t, DefaultConfig(), DefaultColliders(), 1)
	start := c.Snapshot(nil)
	for tick := 0; tick < 30; tick++ {
		c.Step()
	}
	c.Reset()
	if c.Tick() != 0 {
		t.Fatalf("tick after reset = %d, want 0", c.Tick())
	}
	for i, p := range c.Positions() {
		if p != start[i] || c.Velocity(i) != (V.Vec32{}) {
			t.Fatalf("particle %d not reset: %s", i, p)
		}
	}
}

func BenchmarkStep(b *testing.B) {
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = 64, 64
	cfg.Distance = 0.2
	c := mustNew(b, cfg, DefaultColliders(), 1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Step()
	}
}
