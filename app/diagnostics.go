package app

import (
	V "diesel.com/cloth/vector"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

//Metrics summary statistics of one frame
type Metrics struct {
	Tick          int
	MeanHeight    float64
	StdHeight     float64
	MinHeight     float64
	MaxHeight     float64
	MeanSpeed     float64
	MaxSpeed      float64
	KineticEnergy float64 //per unit mass, sum of |v|^2/2
}

//Measure computes frame statistics. Speeds come from the difference to prev over dt,
//they are left at zero when prev is nil or does not match the frame.
func Measure(frame *Frame, prev *Frame, dt float64) Metrics {
	m := Metrics{Tick: frame.Tick}
	n := len(frame.Positions)
	if n == 0 {
		return m
	}

	heights := make([]float64, n)
	for i, p := range frame.Positions {
		heights[i] = float64(p[1])
	}
	m.MeanHeight, m.StdHeight = stat.MeanStdDev(heights, nil)
	m.MinHeight = floats.Min(heights)
	m.MaxHeight = floats.Max(heights)

	if prev == nil || len(prev.Positions) != n || dt <= 0 {
		return m
	}
	speeds := make([]float64, n)
	energy := make([]float64, n)
	for i, p := range frame.Positions {
		v := float64(V.Distance(p, prev.Positions[i])) / dt
		speeds[i] = v
		energy[i] = 0.5 * v * v
	}
	m.MeanSpeed = stat.Mean(speeds, nil)
	m.MaxSpeed = floats.Max(speeds)
	m.KineticEnergy = floats.Sum(energy)
	return m
}
