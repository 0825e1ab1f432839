package geometry

import (
	Vec "diesel.com/cloth/vector"
)

//GridMesh static render topology for a W x H particle grid. Triangle indices reference
//particle indices (row major i = y*W + x) so a renderer can upload published positions
//as the vertex buffer directly. Built once, the physics never reads it.
type GridMesh struct {
	Width   int
	Height  int
	Indices []uint32   //3 per triangle, 2 triangles per grid cell
	UV      []Vec.Vec2 //one per particle
}

//Triangle index triple
type Triangle [3]uint32

//NewGridMesh two triangles between each square of vertices
func NewGridMesh(w int, h int) *GridMesh {
	if w < 2 || h < 2 {
		return &GridMesh{Width: w, Height: h}
	}
	m := &GridMesh{
		Width:   w,
		Height:  h,
		Indices: make([]uint32, (w-1)*(h-1)*2*3),
		UV:      make([]Vec.Vec2, w*h),
	}

	for y := 0; y < h-1; y++ {
		for x := 0; x < w-1; x++ {
			v := uint32(y*w + x)
			t := (y*(w-1) + x) * 6
			m.Indices[t] = v
			m.Indices[t+1] = v + 1
			m.Indices[t+2] = v + uint32(w)

			m.Indices[t+3] = v + 1
			m.Indices[t+4] = v + uint32(w) + 1
			m.Indices[t+5] = v + uint32(w)
		}
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m.UV[y*w+x] = Vec.Vec2{float32(x) / float32(w-1), float32(y) / float32(h-1)}
		}
	}
	return m
}

//Triangles count
func (m *GridMesh) Triangles() int {
	return len(m.Indices) / 3
}

func (m *GridMesh) Triangle(i int) Triangle {
	return Triangle{m.Indices[3*i], m.Indices[3*i+1], m.Indices[3*i+2]}
}

//Edges returns the unique grid lines as index pairs (horizontal then vertical), used
//for wireframe drawing
func (m *GridMesh) Edges() []uint32 {
	w, h := m.Width, m.Height
	if w < 2 || h < 2 {
		return nil
	}
	edges := make([]uint32, 0, 2*(h*(w-1)+w*(h-1)))
	for y := 0; y < h; y++ {
		for x := 0; x < w-1; x++ {
			edges = append(edges, uint32(y*w+x), uint32(y*w+x+1))
		}
	}
	for y := 0; y < h-1; y++ {
		for x := 0; x < w; x++ {
			edges = append(edges, uint32(y*w+x), uint32((y+1)*w+x))
		}
	}
	return edges
}

//Normal of the triangle spanned by three positions, zero if degenerate
func Normal(a Vec.Vec32, b Vec.Vec32, c Vec.Vec32) Vec.Vec32 {
	return Vec.Normalize(Vec.Cross(Vec.Sub(b, a), Vec.Sub(c, a)))
}
