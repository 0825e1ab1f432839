package app

import (
	"context"
	"io"
	"math/rand"
	"sync"
	"testing"
	"time"

	C "diesel.com/cloth/cloth"
	"github.com/sirupsen/logrus"
)

func quietLog() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestScene(t testing.TB, interval float64) *Scene {
	t.Helper()
	c, err := C.New(C.DefaultConfig(), C.DefaultColliders(), rand.New(rand.NewSource(1)), quietLog())
	if err != nil {
		t.Fatalf("cloth.New: %v", err)
	}
	return NewScene(c, interval, quietLog())
}

func TestSceneInitialFrame(t *testing.T) {
	s := newTestScene(t, 0.01)
	f := s.Latest()
	if f == nil || f.Tick != 0 || f.Time != 0 {
		t.Fatalf("initial frame = %+v", f)
	}
	layout := C.Layout(C.DefaultConfig())
	for i := range layout {
		if f.Positions[i] != layout[i] {
			t.Fatalf("frame 0 particle %d = %s, want layout %s", i, f.Positions[i], layout[i])
		}
	}
}

func TestSceneAdvance(t *testing.T) {
	s := newTestScene(t, 0.01)

	if n := s.Advance(0.035); n != 3 {
		t.Fatalf("Advance(0.035) ran %d ticks, want 3", n)
	}
	if f := s.Latest(); f.Tick != 3 {
		t.Fatalf("latest tick = %d, want 3", f.Tick)
	}
	if n := s.Advance(0.004); n != 0 {
		t.Fatalf("Advance(0.004) ran %d ticks, want 0", n)
	}
	if n := s.Advance(0.002); n != 1 {
		t.Fatalf("accumulated remainder ran %d ticks, want 1", n)
	}
	f := s.Latest()
	if want := 4 * float64(C.DefaultConfig().TimeStep); f.Time < want-1e-9 || f.Time > want+1e-9 {
		t.Fatalf("simulated time = %f, want %f", f.Time, want)
	}
}

func TestSceneCatchUpBounded(t *testing.T) {
	s := newTestScene(t, 0.01)
	if n := s.Advance(10); n != MaxCatchUp {
		t.Fatalf("Advance(10) ran %d ticks, want %d", n, MaxCatchUp)
	}
	if n := s.Advance(0.005); n != 0 {
		t.Fatalf("dropped wall time still ran %d ticks", n)
	}
}

func TestScenePause(t *testing.T) {
	s := newTestScene(t, 0.01)
	s.Pause()
	if n := s.Advance(1); n != 0 || s.Latest().Tick != 0 {
		t.Fatalf("paused scene advanced %d ticks", n)
	}

	f := s.StepOnce()
	if f.Tick != 1 || s.Latest() != f || !s.Paused() {
		t.Fatalf("single step: tick %d paused %v", f.Tick, s.Paused())
	}

	if paused := s.TogglePause(); paused {
		t.Fatalf("toggle from paused should resume")
	}
	if n := s.Advance(0.01); n != 1 {
		t.Fatalf("resumed scene ran %d ticks, want 1", n)
	}
	s.Pause()
	s.Resume()
	if s.Paused() {
		t.Fatalf("Resume left the scene paused")
	}
}

func TestSceneFramesImmutable(t *testing.T) {
	s := newTestScene(t, 0.01)
	s.Advance(0.05)
	old := s.Latest()
	kept := append(old.Positions[:0:0], old.Positions...)

	s.Advance(0.05)
	if s.Latest() == old {
		t.Fatalf("no new frame published")
	}
	for i := range kept {
		if old.Positions[i] != kept[i] {
			t.Fatalf("published frame %d changed at particle %d", old.Tick, i)
		}
	}
}

func TestSceneReset(t *testing.T) {
	s := newTestScene(t, 0.01)
	first := s.Latest()
	s.Advance(0.08)
	s.Reset()

	f := s.Latest()
	if f.Tick != 0 || f.Time != 0 {
		t.Fatalf("after reset tick %d time %f", f.Tick, f.Time)
	}
	for i := range first.Positions {
		if f.Positions[i] != first.Positions[i] {
			t.Fatalf("particle %d = %s after reset, want %s", i, f.Positions[i], first.Positions[i])
		}
	}
	if s.DivergedTicks() != 0 {
		t.Fatalf("diverged counter not cleared")
	}
}

func TestSceneRunTicks(t *testing.T) {
	s := newTestScene(t, 0.01)
	s.Pause()

	var ticks []int
	err := s.RunTicks(context.Background(), 5, func(f *Frame) {
		ticks = append(ticks, f.Tick)
	})
	if err != nil {
		t.Fatalf("RunTicks: %v", err)
	}
	for i, tick := range ticks {
		if tick != i+1 {
			t.Fatalf("frames %v, want 1..5", ticks)
		}
	}
	if len(ticks) != 5 {
		t.Fatalf("got %d frames, want 5", len(ticks))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.RunTicks(ctx, 5, nil); err != context.Canceled {
		t.Fatalf("canceled RunTicks err = %v", err)
	}
	if s.Latest().Tick != 5 {
		t.Fatalf("canceled RunTicks still ticked to %d", s.Latest().Tick)
	}
}

//an interval below one nanosecond still runs instead of panicking in the ticker
func TestSceneRunSubNanosecondInterval(t *testing.T) {
	s := newTestScene(t, 1e-12)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run = %v, want nil", err)
	}
	if s.Latest().Tick == 0 {
		t.Fatalf("no ticks ran at a sub-nanosecond interval")
	}
}

//readers only ever see whole frames while Run publishes from its own goroutine
func TestSceneRunConcurrentReaders(t *testing.T) {
	s := newTestScene(t, 0.002)
	count := len(s.Latest().Positions)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	var wg sync.WaitGroup
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			last := 0
			deadline := time.Now().Add(2 * time.Second)
			for time.Now().Before(deadline) {
				f := s.Latest()
				if len(f.Positions) != count {
					t.Errorf("frame %d has %d positions", f.Tick, len(f.Positions))
					return
				}
				if f.Tick < last {
					t.Errorf("frame tick went back from %d to %d", last, f.Tick)
					return
				}
				last = f.Tick
				if last >= 5 {
					return
				}
				time.Sleep(time.Millisecond)
			}
			t.Errorf("scene did not reach tick 5, stuck at %d", last)
		}()
	}
	wg.Wait()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not stop after cancel")
	}
}

func TestTimer(t *testing.T) {
	tm := Timer{TS: 0.5}
	tm.StepTime()
	tm.StepTime()
	if tm.T != 1 || tm.TIMELAST != 0.5 {
		t.Fatalf("timer = %+v", tm)
	}
	tm.Reset()
	if tm.T != 0 || tm.TS != 0.5 {
		t.Fatalf("reset timer = %+v", tm)
	}
}
