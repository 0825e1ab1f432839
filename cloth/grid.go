package cloth

import (
	V "diesel.com/cloth/vector"
)

//Layout lays the W x H particles out row major, i = y*W + x, starting at the origin.
//Hanging rows go down -Y, flat rows go along +Z. Spacing includes the stretched start.
func Layout(cfg Config) []V.Vec32 {
	s := cfg.Distance * (1 + cfg.StretchedStart)
	pos := make([]V.Vec32, cfg.Width*cfg.Height)

	for y := 0; y < cfg.Height; y++ {
		for x := 0; x < cfg.Width; x++ {
			xf := float32(x) * s
			yf := float32(y) * s
			var offset V.Vec32
			if cfg.Orientation == Flat {
				offset = V.Vec32{xf, 0, yf}
			} else {
				offset = V.Vec32{xf, -yf, 0}
			}
			pos[y*cfg.Width+x] = V.Add(cfg.Origin, offset)
		}
	}
	return pos
}

//PinSet evaluates the pin predicate for every particle
func PinSet(mode PinMode, w int, h int) []bool {
	pinned := make([]bool, w*h)
	for i := range pinned {
		pinned[i] = mode.Pinned(i, w, h)
	}
	return pinned
}
