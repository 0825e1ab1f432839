package utils

import (
	"math"
	"unsafe"

	V "diesel.com/cloth/vector"
	"github.com/pkg/errors"
)

//Position publication helpers. Renderers never see the live simulation buffers, they
//get a finished frame which these helpers copy into whatever memory the renderer owns.

//TransferPositionData streams count positions into memory at graphicsPtr, typically a
//mapped GL array buffer. The target must hold at least count Vec32 values.
func TransferPositionData(graphicsPtr unsafe.Pointer, posArray []V.Vec32, count int) error {
	if graphicsPtr == nil {
		return errors.New("no valid pointer to graphics memory")
	}
	if count <= 0 || count > len(posArray) {
		return errors.Errorf("position transfer size out of bounds: %d of %d", count, len(posArray))
	}

	dst := unsafe.Slice((*V.Vec32)(graphicsPtr), count)
	copy(dst, posArray[:count])
	return nil
}

//FlattenPositions writes x,y,z triples into dst (grown as needed) for APIs that take a
//flat float buffer
func FlattenPositions(dst []float32, pos []V.Vec32) []float32 {
	n := 3 * len(pos)
	if cap(dst) < n {
		dst = make([]float32, n)
	}
	dst = dst[:n]
	for i, p := range pos {
		dst[3*i] = p[0]
		dst[3*i+1] = p[1]
		dst[3*i+2] = p[2]
	}
	return dst
}

//Bounds axis aligned box of the positions. Empty input returns two zero vectors.
func Bounds(pos []V.Vec32) (V.Vec32, V.Vec32) {
	if len(pos) == 0 {
		return V.Vec32{}, V.Vec32{}
	}
	min := V.Vec32{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32}
	max := V.Vec32{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32}
	for _, p := range pos {
		for k := 0; k < 3; k++ {
			if p[k] < min[k] {
				min[k] = p[k]
			}
			if p[k] > max[k] {
				max[k] = p[k]
			}
		}
	}
	return min, max
}

//Centroid mean position
func Centroid(pos []V.Vec32) V.Vec32 {
	var c V.Vec32
	if len(pos) == 0 {
		return c
	}
	for _, p := range pos {
		c.Add(p)
	}
	return *c.Scale(1 / float32(len(pos)))
}
