// Copyright 2017 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package thermal

import "image"

// TraceLine rasterizes the segment (x1,y1)-(x2,y2) with Bresenham's
// algorithm and returns the pixels in order from the first endpoint to
// the second.
//
// Pixels outside [0,w) × [0,h) are dropped from the result but never
// stop the walk; the line always runs to its true final endpoint.
// Identical endpoints yield a single pixel, possibly clipped away.
func TraceLine(x1, y1, x2, y2, w, h int) []image.Point {
	dx := x2 - x1
	if dx < 0 {
		dx = -dx
	}
	dy := y2 - y1
	if dy < 0 {
		dy = -dy
	}
	sx := 1
	if x1 >= x2 {
		sx = -1
	}
	sy := 1
	if y1 >= y2 {
		sy = -1
	}
	err := dx - dy

	var pts []image.Point
	x, y := x1, y1
	for {
		if x >= 0 && x < w && y >= 0 && y < h {
			pts = append(pts, image.Point{X: x, Y: y})
		}
		if x == x2 && y == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x += sx
		}
		if e2 < dx {
			err += dx
			y += sy
		}
	}
	return pts
}
