package cloth

import (
	V "diesel.com/cloth/vector"
)

//Gust and jitter bounds of the wind field
const (
	GustMin   = 0.2
	GustMax   = 1.0
	JitterMin = 0.8
	JitterMax = 1.2
)

//Rand is the random source the wind samples from. *math/rand.Rand satisfies it;
//inject a seeded one for reproducible runs.
type Rand interface {
	Float32() float32
}

//Wind field: a base vector scaled by a gust resampled every Interval ticks and by a
//per particle jitter resampled every tick
type Wind struct {
	Vector   V.Vec32
	Interval int
	gust     float32
	rng      Rand
}

func NewWind(vector V.Vec32, interval int, rng Rand) *Wind {
	if interval < 1 {
		interval = 1
	}
	return &Wind{Vector: vector, Interval: interval, gust: GustMax, rng: rng}
}

//Calm wind has no vector, nothing is sampled then
func (w *Wind) Calm() bool {
	return V.Equals(w.Vector, V.Vec32{})
}

//Gust returns the multiplier for tick, resampling at the start of every interval
func (w *Wind) Gust(tick int) float32 {
	if tick%w.Interval == 0 {
		w.gust = uniform(w.rng, GustMin, GustMax)
	}
	return w.gust
}

//Jitter one per particle per tick
func (w *Wind) Jitter() float32 {
	return uniform(w.rng, JitterMin, JitterMax)
}

func uniform(rng Rand, lo float32, hi float32) float32 {
	return lo + rng.Float32()*(hi-lo)
}
