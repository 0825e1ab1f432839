package app

import (
	"context"
	"fmt"
	"math"
	"time"

	C "diesel.com/cloth/cloth"
	G "diesel.com/cloth/geometry"
	U "diesel.com/cloth/utils"
	V "diesel.com/cloth/vector"
	"github.com/charmbracelet/harmonica"
	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

//ViewPlane selects the two world axes shown by the terminal viewer
type ViewPlane int

const (
	FrontView ViewPlane = iota //x right, y up
	TopView                    //x right, -z up
	SideView                   //z right, y up
)

func (p ViewPlane) String() string {
	switch p {
	case FrontView:
		return "front"
	case TopView:
		return "top"
	case SideView:
		return "side"
	}
	return "unknown"
}

//terminal cells are roughly twice as tall as wide
const cellAspect = 2

//Projector maps world positions onto terminal cells with an orthographic projection
type Projector struct {
	Center V.Vec32
	Span   float64 //world units fitting the shorter screen side at zoom 1
	Cols   int
	Rows   int
	Zoom   float64
	Plane  ViewPlane
}

//NewProjector centers the box min..max
func NewProjector(min V.Vec32, max V.Vec32, cols int, rows int) Projector {
	span := float64(V.Distance(min, max)) * 1.2
	if span < 1 {
		span = 1
	}
	return Projector{
		Center: V.Scale(V.Add(min, max), 0.5),
		Span:   span,
		Cols:   cols,
		Rows:   rows,
		Zoom:   1,
	}
}

func (p Projector) axes(v V.Vec32) (float64, float64) {
	switch p.Plane {
	case TopView:
		return float64(v[0]), -float64(v[2])
	case SideView:
		return float64(v[2]), float64(v[1])
	}
	return float64(v[0]), float64(v[1])
}

//Project returns the cell of v, ok is false when it falls off screen
func (p Projector) Project(v V.Vec32) (int, int, bool) {
	a, b := p.axes(v)
	ca, cb := p.axes(p.Center)

	side := p.Rows
	if p.Cols/cellAspect < side {
		side = p.Cols / cellAspect
	}
	scale := float64(side) / p.Span * p.Zoom
	col := p.Cols/2 + int(math.Round((a-ca)*scale*cellAspect))
	row := p.Rows/2 - int(math.Round((b-cb)*scale))
	return col, row, col >= 0 && col < p.Cols && row >= 0 && row < p.Rows
}

var (
	clothStyle    = tcell.StyleDefault.Foreground(tcell.ColorDodgerBlue)
	particleStyle = tcell.StyleDefault.Foreground(tcell.ColorOrangeRed).Bold(true)
	colliderStyle = tcell.StyleDefault.Foreground(tcell.ColorGray)
	statusStyle   = tcell.StyleDefault.Reverse(true)
)

//termView draws published frames onto a tcell screen
type termView struct {
	scene *Scene
	col   C.Colliders
	edges []uint32
	proj  Projector

	spring     harmonica.Spring
	zoom       float64
	zoomVel    float64
	zoomTarget float64
}

func newTermView(scene *Scene, col C.Colliders, view ViewConfig) *termView {
	cfg := scene.Config()
	first := scene.Latest()
	min, max := U.Bounds(first.Positions)
	if col.Sphere != nil {
		min, max = U.Bounds([]V.Vec32{min, max, col.Sphere.Center})
	}

	fps := view.FrameRate
	if fps <= 0 {
		fps = 30
	}
	zoom := view.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	return &termView{
		scene:      scene,
		col:        col,
		edges:      G.NewGridMesh(cfg.Width, cfg.Height).Edges(),
		proj:       NewProjector(min, max, 0, 0),
		spring:     harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0),
		zoom:       zoom,
		zoomTarget: zoom,
	}
}

//handleKey applies a key press, returns false when the viewer should quit
func (v *termView) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyRight:
		v.scene.StepOnce()
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return false
		case ' ':
			v.scene.TogglePause()
		case 'n':
			v.scene.StepOnce()
		case 'r':
			v.scene.Reset()
		case '+', '=':
			v.zoomTarget *= 1.25
		case '-':
			v.zoomTarget /= 1.25
		case 'v':
			v.proj.Plane = (v.proj.Plane + 1) % 3
		}
	}
	return true
}

//draw renders one frame, the bottom row is the status line
func (v *termView) draw(screen tcell.Screen, f *Frame) {
	screen.Clear()
	cols, rows := screen.Size()
	if rows < 2 || cols < 2 {
		screen.Show()
		return
	}

	v.zoom, v.zoomVel = v.spring.Update(v.zoom, v.zoomVel, v.zoomTarget)
	v.proj.Cols, v.proj.Rows, v.proj.Zoom = cols, rows-1, v.zoom

	v.drawColliders(screen)
	for i := 0; i+1 < len(v.edges); i += 2 {
		a, b := f.Positions[v.edges[i]], f.Positions[v.edges[i+1]]
		v.line(screen, a, b, '·', clothStyle)
	}
	for _, p := range f.Positions {
		if x, y, ok := v.proj.Project(p); ok {
			screen.SetContent(x, y, 'o', nil, particleStyle)
		}
	}

	state := "running"
	if v.scene.Paused() {
		state = "paused"
	}
	status := fmt.Sprintf(" tick %d  t=%.2fs  %s  %s view  zoom %.2f  [space] pause [n] step [r] reset [+/-] zoom [v] view [q] quit",
		f.Tick, f.Time, state, v.proj.Plane, v.zoom)
	runes := []rune(status)
	for x := 0; x < cols; x++ {
		r := ' '
		if x < len(runes) {
			r = runes[x]
		}
		screen.SetContent(x, rows-1, r, nil, statusStyle)
	}
	screen.Show()
}

func (v *termView) drawColliders(screen tcell.Screen) {
	if g := v.col.Ground; g != nil && v.proj.Plane != TopView {
		_, row, _ := v.proj.Project(V.Vec32{v.proj.Center[0], g.Y, v.proj.Center[2]})
		if row >= 0 && row < v.proj.Rows {
			for x := 0; x < v.proj.Cols; x++ {
				screen.SetContent(x, row, '_', nil, colliderStyle)
			}
		}
	}
	if s := v.col.Sphere; s != nil {
		const segments = 72
		for k := 0; k < segments; k++ {
			a := 2 * math.Pi * float64(k) / segments
			c, d := float32(math.Cos(a))*s.Radius, float32(math.Sin(a))*s.Radius
			var off V.Vec32
			switch v.proj.Plane {
			case TopView:
				off = V.Vec32{c, 0, d}
			case SideView:
				off = V.Vec32{0, d, c}
			default:
				off = V.Vec32{c, d, 0}
			}
			if x, y, ok := v.proj.Project(V.Add(s.Center, off)); ok {
				screen.SetContent(x, y, '.', nil, colliderStyle)
			}
		}
	}
}

//line rasterizes a..b with Bresenham, clipping per cell
func (v *termView) line(screen tcell.Screen, a V.Vec32, b V.Vec32, r rune, style tcell.Style) {
	x0, y0, _ := v.proj.Project(a)
	x1, y1, _ := v.proj.Project(b)
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for n := 0; n <= v.proj.Cols+v.proj.Rows; n++ {
		if x0 >= 0 && x0 < v.proj.Cols && y0 >= 0 && y0 < v.proj.Rows {
			screen.SetContent(x0, y0, r, nil, style)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}

//pumpEvents forwards polled events until poll returns nil, which closes events, or
//until stop is closed while a send is pending
func pumpEvents(poll func() tcell.Event, events chan<- tcell.Event, stop <-chan struct{}) {
	for {
		ev := poll()
		if ev == nil {
			close(events)
			return
		}
		select {
		case events <- ev:
		case <-stop:
			return
		}
	}
}

//RunTerminal renders the scene in the terminal until q, Esc or ctx is done
func RunTerminal(ctx context.Context, scene *Scene, col C.Colliders, view ViewConfig, log logrus.FieldLogger) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return errors.Wrap(err, "opening terminal")
	}
	if err := screen.Init(); err != nil {
		return errors.Wrap(err, "initializing terminal")
	}
	defer screen.Fini()

	v := newTermView(scene, col, view)
	fps := view.FrameRate
	if fps <= 0 {
		fps = 30
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- scene.Run(runCtx) }()
	defer func() {
		cancel()
		<-done
	}()

	events := make(chan tcell.Event, 16)
	stop := make(chan struct{})
	defer close(stop)
	go pumpEvents(screen.PollEvent, events, stop)

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()
	log.WithField("fps", fps).Info("terminal viewer running")
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if !v.handleKey(ev) {
					return nil
				}
			case *tcell.EventResize:
				screen.Sync()
			}
		case <-ticker.C:
			v.draw(screen, scene.Latest())
		}
	}
}
