// Copyright 2017 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package thermaltest implements a fake video source backed by
// in-memory frames.
package thermaltest

import (
	"context"
	"fmt"
	"image"

	"github.com/thermaline/thermaline/thermal"
)

// Source is a fake for thermal.Source.
//
// It counts decodes and can be told to fail specific indices, which is
// how tests observe cache hits and decode-failure handling.
type Source struct {
	Frames []*thermal.Frame
	FPS    float64

	// FailAt makes SeekFrame fail for the listed indices.
	FailAt map[int]bool
	// DecodeCalls counts SeekFrame invocations, including failed ones.
	DecodeCalls int
	// Closed is set by Close.
	Closed bool
}

// New returns a fake source of n w×h frames, frame i uniformly filled
// with the color (i, i, i).
func New(w, h, n int) *Source {
	s := &Source{FPS: 25, FailAt: map[int]bool{}}
	for i := 0; i < n; i++ {
		v := uint8(i)
		s.Frames = append(s.Frames, Uniform(w, h, v, v, v))
	}
	return s
}

// Uniform returns a w×h frame filled with one color, given in
// calibration (R, G, B) channel order.
func Uniform(w, h int, r, g, b uint8) *thermal.Frame {
	f := thermal.NewFrame(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			f.SetRGB(x, y, r, g, b)
		}
	}
	return f
}

func (s *Source) Close() error {
	s.Closed = true
	return nil
}

func (s *Source) FrameCount() int {
	return len(s.Frames)
}

func (s *Source) FrameRate() float64 {
	return s.FPS
}

func (s *Source) Bounds() image.Rectangle {
	if len(s.Frames) == 0 {
		return image.Rectangle{}
	}
	return s.Frames[0].Bounds()
}

func (s *Source) SeekFrame(ctx context.Context, index int) (*thermal.Frame, error) {
	s.DecodeCalls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if index < 0 || index >= len(s.Frames) {
		return nil, fmt.Errorf("thermaltest: frame %d out of range", index)
	}
	if s.FailAt[index] {
		return nil, fmt.Errorf("thermaltest: injected decode failure at %d", index)
	}
	return s.Frames[index], nil
}
