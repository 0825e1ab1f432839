//go:build !nogl

package app

//OpenGL Windowing Calls and Structs
import (
	"context"
	_ "embed"
	"runtime"
	"strings"

	C "diesel.com/cloth/cloth"
	G "diesel.com/cloth/geometry"
	U "diesel.com/cloth/utils"
	V "diesel.com/cloth/vector"
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.2/glfw"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

//go:embed shaders/cloth.vert.glsl
var vertexSRC string

//go:embed shaders/cloth.frag.glsl
var fragSRC string

//Attribute location of the position stream
const DSL_VERTEX = 0

type AppWindow struct {
	Width  int
	Height int
	Name   string
}

//GL objects of the viewer. Index 0 is the cloth, index 1 the collider outlines.
type DieselContext struct {
	PrgID     uint32
	MVPLoc    int32
	ColorLoc  int32
	VAO       [2]uint32
	VBO       [2]uint32
	EBO       [2]uint32 //cloth triangles, cloth edges
	Triangles int32
	Edges     int32
	Colliders int32
	Particles int
	LastTick  int
	GLFWindow *glfw.Window
}

//mouse and display toggles, owned by the GL thread
type viewerInput struct {
	wireframe bool
	dragging  bool
	x, y      float64
}

//RunViewer opens a window and renders the scene's published frames while the scene
//ticks on its own goroutine. Returns when the window closes or ctx is done.
func RunViewer(ctx context.Context, scene *Scene, col C.Colliders, view ViewConfig, log logrus.FieldLogger) error {
	//GL calls must stay on the thread that created the context
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	window, err := InitGLFW(&AppWindow{view.Width, view.Height, view.Title})
	if err != nil {
		return err
	}
	defer glfw.Terminate()

	cfg := scene.Config()
	dsl, err := InitOpenGL(cfg.Width, cfg.Height, col, log)
	if err != nil {
		return err
	}
	dsl.GLFWindow = window

	first := scene.Latest()
	min, max := U.Bounds(first.Positions)
	if col.Sphere != nil {
		min, max = U.Bounds([]V.Vec32{min, max, col.Sphere.Center})
	}
	cam := NewCamera(min, max)
	in := &viewerInput{wireframe: view.Wireframe}
	bindInput(window, scene, cam, in, log)

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- scene.Run(runCtx) }()
	defer func() {
		cancel()
		<-done
	}()

	for !window.ShouldClose() {
		if ctx.Err() != nil {
			break
		}
		w, h := window.GetFramebufferSize()
		if w == 0 || h == 0 {
			//minimized
			glfw.WaitEventsTimeout(0.1)
			continue
		}
		gl.Viewport(0, 0, int32(w), int32(h))
		aspect := float32(w) / float32(h)
		dsl.Draw(scene.Latest(), cam.MVP(aspect), in.wireframe)
		window.SwapBuffers()
		glfw.PollEvents()
	}
	return nil
}

//InitGLFW initializes glfw and returns a Window to use.
func InitGLFW(a *AppWindow) (*glfw.Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, errors.Wrap(err, "initializing glfw")
	}

	glfw.WindowHint(glfw.Samples, 4)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(a.Width, a.Height, a.Name, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, errors.Wrap(err, "creating window")
	}
	window.MakeContextCurrent()
	return window, nil
}

//InitOpenGL compiles the shaders and allocates the cloth and collider buffers
func InitOpenGL(w int, h int, col C.Colliders, log logrus.FieldLogger) (*DieselContext, error) {
	if err := gl.Init(); err != nil {
		return nil, errors.Wrap(err, "initializing OpenGL")
	}
	log.WithField("version", gl.GoStr(gl.GetString(gl.VERSION))).Info("OpenGL ready")

	vtxSHO, err := compileShader(vertexSRC+"\x00", gl.VERTEX_SHADER)
	if err != nil {
		return nil, err
	}
	frgSHO, err := compileShader(fragSRC+"\x00", gl.FRAGMENT_SHADER)
	if err != nil {
		return nil, err
	}
	prog, err := linkProgram(vtxSHO, frgSHO)
	if err != nil {
		return nil, err
	}

	dsl := &DieselContext{PrgID: prog, LastTick: -1, Particles: w * h}
	dsl.MVPLoc = gl.GetUniformLocation(prog, gl.Str("mvp\x00"))
	dsl.ColorLoc = gl.GetUniformLocation(prog, gl.Str("color\x00"))

	MakeVAO(dsl, G.NewGridMesh(w, h), ColliderLines(col, 10, 48))

	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	return dsl, nil
}

//MakeVAO allocates the streamed cloth position buffer with its two index buffers and
//the static collider outline buffer
func MakeVAO(dsl *DieselContext, mesh *G.GridMesh, lines []V.Vec32) {
	gl.GenVertexArrays(2, &dsl.VAO[0])
	gl.GenBuffers(2, &dsl.VBO[0])
	gl.GenBuffers(2, &dsl.EBO[0])

	gl.BindVertexArray(dsl.VAO[0])
	gl.BindBuffer(gl.ARRAY_BUFFER, dsl.VBO[0])
	gl.BufferData(gl.ARRAY_BUFFER, dsl.Particles*4*3, nil, gl.STREAM_DRAW) //float32 (4 bytes)
	gl.EnableVertexAttribArray(DSL_VERTEX)
	gl.VertexAttribPointer(DSL_VERTEX, 3, gl.FLOAT, false, 0, nil)

	edges := mesh.Edges()
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, dsl.EBO[1])
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(edges)*4, gl.Ptr(&edges[0]), gl.STATIC_DRAW)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, dsl.EBO[0])
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(mesh.Indices)*4, gl.Ptr(&mesh.Indices[0]), gl.STATIC_DRAW)
	dsl.Triangles = int32(len(mesh.Indices))
	dsl.Edges = int32(len(edges))

	gl.BindVertexArray(dsl.VAO[1])
	gl.BindBuffer(gl.ARRAY_BUFFER, dsl.VBO[1])
	if len(lines) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, len(lines)*4*3, gl.Ptr(&lines[0][0]), gl.STATIC_DRAW)
	}
	gl.EnableVertexAttribArray(DSL_VERTEX)
	gl.VertexAttribPointer(DSL_VERTEX, 3, gl.FLOAT, false, 0, nil)
	dsl.Colliders = int32(len(lines))

	gl.BindVertexArray(0)
}

//Upload streams a frame into the cloth buffer once per tick
func (dsl *DieselContext) Upload(f *Frame) error {
	if f.Tick == dsl.LastTick {
		return nil
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, dsl.VBO[0])
	ptr := gl.MapBuffer(gl.ARRAY_BUFFER, gl.WRITE_ONLY)
	err := U.TransferPositionData(ptr, f.Positions, dsl.Particles)
	if ptr != nil {
		gl.UnmapBuffer(gl.ARRAY_BUFFER)
	}
	if err != nil {
		return err
	}
	dsl.LastTick = f.Tick
	return nil
}

func (dsl *DieselContext) Draw(f *Frame, mvp [16]float32, wireframe bool) {
	gl.ClearColor(0.9, 0.9, 0.9, 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	gl.UseProgram(dsl.PrgID)
	gl.UniformMatrix4fv(dsl.MVPLoc, 1, false, &mvp[0])

	//-------------DRAW STATIC GEOMETRY--------------------------------//
	if dsl.Colliders > 0 {
		gl.Uniform4f(dsl.ColorLoc, 0.45, 0.45, 0.5, 1)
		gl.BindVertexArray(dsl.VAO[1])
		gl.DrawArrays(gl.LINES, 0, dsl.Colliders)
	}

	//--------------CLOTH DRAW---------------------------------------
	if err := dsl.Upload(f); err != nil {
		return
	}
	gl.BindVertexArray(dsl.VAO[0])
	if wireframe {
		gl.Uniform4f(dsl.ColorLoc, 0.15, 0.25, 0.6, 1)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, dsl.EBO[1])
		gl.DrawElements(gl.LINES, dsl.Edges, gl.UNSIGNED_INT, nil)
	} else {
		gl.Uniform4f(dsl.ColorLoc, 0.85, 0.35, 0.2, 1)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, dsl.EBO[0])
		gl.DrawElements(gl.TRIANGLES, dsl.Triangles, gl.UNSIGNED_INT, nil)
	}
	gl.BindVertexArray(0)
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, errors.Errorf("GLSL shader failed to compile: %v", log)
	}
	return shader, nil
}

func linkProgram(shaders ...uint32) (uint32, error) {
	prog := gl.CreateProgram()
	for _, s := range shaders {
		gl.AttachShader(prog, s)
	}
	gl.LinkProgram(prog)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(prog, logLength, nil, gl.Str(log))
		return 0, errors.Errorf("GLSL program failed to link: %v", log)
	}
	for _, s := range shaders {
		gl.DeleteShader(s)
	}
	return prog, nil
}

//bindInput wires the keyboard and mouse. Space pauses, right arrow single steps,
//R resets, F toggles wireframe, WASD and mouse drag orbit, scroll zooms.
func bindInput(window *glfw.Window, scene *Scene, cam *Camera, in *viewerInput, log logrus.FieldLogger) {
	const orbitStep = 0.05

	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action == glfw.Release {
			return
		}
		switch key {
		case glfw.KeyEscape:
			w.SetShouldClose(true)
		case glfw.KeySpace:
			if action == glfw.Press {
				log.WithField("paused", scene.TogglePause()).Info("pause toggled")
			}
		case glfw.KeyRight:
			f := scene.StepOnce()
			log.WithField("tick", f.Tick).Debug("single step")
		case glfw.KeyR:
			if action == glfw.Press {
				scene.Reset()
			}
		case glfw.KeyF:
			if action == glfw.Press {
				in.wireframe = !in.wireframe
			}
		case glfw.KeyA:
			cam.Orbit(-orbitStep, 0)
		case glfw.KeyD:
			cam.Orbit(orbitStep, 0)
		case glfw.KeyW:
			cam.Orbit(0, orbitStep)
		case glfw.KeyS:
			cam.Orbit(0, -orbitStep)
		case glfw.KeyTab:
			f := scene.Latest()
			log.WithFields(logrus.Fields{"tick": f.Tick, "time": f.Time}).Info("current simulation time")
		}
	})

	window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		if button != glfw.MouseButtonLeft {
			return
		}
		in.dragging = action == glfw.Press
		if in.dragging {
			in.x, in.y = w.GetCursorPos()
		}
	})

	window.SetCursorPosCallback(func(w *glfw.Window, xPos float64, yPos float64) {
		if !in.dragging {
			return
		}
		cam.Orbit(float32(xPos-in.x)*0.005, float32(yPos-in.y)*0.005)
		in.x, in.y = xPos, yPos
	})

	window.SetScrollCallback(func(w *glfw.Window, xoff float64, yoff float64) {
		cam.Zoom(1 - 0.1*float32(yoff))
	})
}
