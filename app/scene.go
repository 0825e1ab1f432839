package app

//Drives the cloth at a fixed rate and publishes finished frames to the renderers
import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	C "diesel.com/cloth/cloth"
	V "diesel.com/cloth/vector"
	"github.com/sirupsen/logrus"
)

//MaxCatchUp bounds the ticks a single Advance may run. Wall time beyond it is dropped
//so a stalled renderer does not turn into a burst of simulation.
const MaxCatchUp = 8

//Seconds timer for the simulation clock
type Timer struct {
	T        float64 //simulated seconds
	TS       float64 //seconds per tick
	TIMELAST float64
}

func (t *Timer) StepTime() {
	t.TIMELAST = t.T
	t.T = t.T + t.TS
}

func (t *Timer) Reset() {
	t.T = 0
	t.TIMELAST = 0
}

//Frame is an immutable published tick. Positions belong to the frame and are never
//written after publication.
type Frame struct {
	Tick      int
	Time      float64
	Positions []V.Vec32
	Stats     C.TickStats
}

//Scene owns a cloth and the cadence it is stepped at. Control calls (Advance, Pause,
//Step, Reset) are serialized, Latest may be called from any goroutine.
type Scene struct {
	mu       sync.Mutex
	cloth    *C.Cloth
	timer    Timer
	interval float64 //wall seconds per tick
	acc      float64
	paused   bool
	diverged int

	latest atomic.Pointer[Frame]
	log    logrus.FieldLogger
}

//NewScene publishes the initial layout as frame 0. interval is the wall time between
//ticks, zero or less ticks at the cloth time step.
func NewScene(c *C.Cloth, interval float64, log logrus.FieldLogger) *Scene {
	if interval <= 0 {
		interval = float64(c.Config().TimeStep)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Scene{
		cloth:    c,
		timer:    Timer{TS: float64(c.Config().TimeStep)},
		interval: interval,
		log:      log,
	}
	s.publish(C.TickStats{})
	return s
}

//Latest most recently completed frame
func (s *Scene) Latest() *Frame {
	return s.latest.Load()
}

//Advance accumulates elapsed wall seconds and runs every tick that became due.
//Returns the ticks run.
func (s *Scene) Advance(elapsed float64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.paused || elapsed <= 0 {
		return 0
	}
	s.acc += elapsed
	n := 0
	for s.acc >= s.interval && n < MaxCatchUp {
		s.acc -= s.interval
		s.tick()
		n++
	}
	if s.acc >= s.interval {
		s.log.WithFields(logrus.Fields{
			"tick":    s.cloth.Tick(),
			"dropped": s.acc,
		}).Debug("scene fell behind, dropping wall time")
		s.acc = 0
	}
	return n
}

//Run steps the scene from a ticker until ctx is done. Cancellation is only observed
//between ticks.
func (s *Scene) Run(ctx context.Context) error {
	period := time.Duration(s.interval * float64(time.Second))
	if !(period >= time.Nanosecond) {
		//NewTicker panics on a non-positive period
		period = time.Nanosecond
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	last := time.Now()
	s.log.WithField("interval", period).Info("scene running")
	for {
		select {
		case <-ctx.Done():
			s.log.WithField("tick", s.Latest().Tick).Info("scene stopped")
			return nil
		case now := <-ticker.C:
			s.Advance(now.Sub(last).Seconds())
			last = now
		}
	}
}

//RunTicks runs n ticks back to back ignoring wall time and pause state, handing every
//published frame to fn. Used by headless runs.
func (s *Scene) RunTicks(ctx context.Context, n int, fn func(*Frame)) error {
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.mu.Lock()
		f := s.tick()
		s.mu.Unlock()
		if fn != nil {
			fn(f)
		}
	}
	return nil
}

//StepOnce pauses the scene and runs exactly one tick
func (s *Scene) StepOnce() *Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = true
	s.acc = 0
	return s.tick()
}

func (s *Scene) Pause() {
	s.mu.Lock()
	s.paused = true
	s.mu.Unlock()
}

func (s *Scene) Resume() {
	s.mu.Lock()
	s.paused = false
	s.acc = 0
	s.mu.Unlock()
}

//TogglePause returns the new paused state
func (s *Scene) TogglePause() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = !s.paused
	s.acc = 0
	return s.paused
}

func (s *Scene) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

//Reset returns the cloth to its initial layout and republishes frame 0
func (s *Scene) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cloth.Reset()
	s.timer.Reset()
	s.acc = 0
	s.diverged = 0
	s.publish(C.TickStats{})
	s.log.Info("scene reset")
}

//DivergedTicks number of ticks flagged as diverged since the last reset
func (s *Scene) DivergedTicks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.diverged
}

//Config of the underlying cloth
func (s *Scene) Config() C.Config {
	return s.cloth.Config()
}

//must hold mu
func (s *Scene) tick() *Frame {
	stats := s.cloth.Step()
	s.timer.StepTime()
	if stats.Diverged {
		s.diverged++
	}
	return s.publish(stats)
}

func (s *Scene) publish(stats C.TickStats) *Frame {
	f := &Frame{
		Tick:      s.cloth.Tick(),
		Time:      s.timer.T,
		Positions: s.cloth.Snapshot(nil),
		Stats:     stats,
	}
	s.latest.Store(f)
	return f
}
