// Copyright 2017 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package thermal

import "image"

// Frame is one decoded video frame.
//
// Pix stores 3 bytes per pixel in B, G, R order, the order video
// decoders hand the data out in. Calibration tables are keyed in R, G,
// B order, so color lookups must go through RGBAt, which swizzles.
type Frame struct {
	Pix    []byte
	Stride int // bytes per row
	Width  int
	Height int
}

// NewFrame allocates a zeroed frame.
func NewFrame(w, h int) *Frame {
	return &Frame{Pix: make([]byte, w*h*3), Stride: w * 3, Width: w, Height: h}
}

func (f *Frame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.Width, f.Height)
}

// RGBAt returns the pixel at (x, y) in calibration channel order.
//
// The caller must keep (x, y) inside Bounds.
func (f *Frame) RGBAt(x, y int) (r, g, b uint8) {
	i := y*f.Stride + 3*x
	return f.Pix[i+2], f.Pix[i+1], f.Pix[i]
}

// SetRGB stores the pixel at (x, y), given in calibration channel order.
func (f *Frame) SetRGB(x, y int, r, g, b uint8) {
	i := y*f.Stride + 3*x
	f.Pix[i] = b
	f.Pix[i+1] = g
	f.Pix[i+2] = r
}

// Image converts the frame to an NRGBA image for re-encoding.
func (f *Frame) Image() *image.NRGBA {
	img := image.NewNRGBA(f.Bounds())
	for y := 0; y < f.Height; y++ {
		src := f.Pix[y*f.Stride:]
		dst := img.Pix[y*img.Stride:]
		for x := 0; x < f.Width; x++ {
			dst[4*x] = src[3*x+2]
			dst[4*x+1] = src[3*x+1]
			dst[4*x+2] = src[3*x]
			dst[4*x+3] = 0xff
		}
	}
	return img
}
