// Copyright 2017 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package capture decodes video files through OpenCV's VideoCapture.
//
// It implements thermal.Source. Seeking is done by setting the
// capture's frame position, so access cost mirrors the container's
// keyframe layout: sequential reads are cheap, random jumps are not.
package capture

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"gocv.io/x/gocv"

	"github.com/thermaline/thermaline/thermal"
)

// Video is an opened video file. It is not safe for concurrent use;
// the engine serializes access to it.
type Video struct {
	log    *slog.Logger
	path   string
	cap    *gocv.VideoCapture
	frames int
	fps    float64
	width  int
	height int
}

// Open opens a video file and reads its metadata. A nil logger falls
// back to slog.Default.
func Open(path string, log *slog.Logger) (*Video, error) {
	if log == nil {
		log = slog.Default()
	}
	cap, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("capture: opening %s: %w", path, err)
	}
	if !cap.IsOpened() {
		cap.Close()
		return nil, fmt.Errorf("capture: could not open %s", path)
	}
	v := &Video{
		log:    log,
		path:   path,
		cap:    cap,
		frames: int(cap.Get(gocv.VideoCaptureFrameCount)),
		fps:    cap.Get(gocv.VideoCaptureFPS),
		width:  int(cap.Get(gocv.VideoCaptureFrameWidth)),
		height: int(cap.Get(gocv.VideoCaptureFrameHeight)),
	}
	return v, nil
}

func (v *Video) Close() error {
	if v.cap == nil {
		return nil
	}
	err := v.cap.Close()
	v.cap = nil
	return err
}

func (v *Video) FrameCount() int {
	return v.frames
}

func (v *Video) FrameRate() float64 {
	return v.fps
}

func (v *Video) Bounds() image.Rectangle {
	return image.Rect(0, 0, v.width, v.height)
}

// SeekFrame positions the capture at index and decodes one frame.
func (v *Video) SeekFrame(ctx context.Context, index int) (*thermal.Frame, error) {
	if v.cap == nil {
		return nil, thermal.ErrNotOpen
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v.cap.Set(gocv.VideoCapturePosFrames, float64(index))
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m := gocv.NewMat()
	defer m.Close()
	if ok := v.cap.Read(&m); !ok || m.Empty() {
		return nil, fmt.Errorf("capture: could not read frame %d of %s", index, v.path)
	}
	return matToFrame(&m)
}

// matToFrame copies a decoded mat into a Frame, normalizing to 3-byte
// BGR pixels.
func matToFrame(m *gocv.Mat) (*thermal.Frame, error) {
	switch m.Channels() {
	case 3:
	case 1:
		bgr := gocv.NewMat()
		defer bgr.Close()
		gocv.CvtColor(*m, &bgr, gocv.ColorGrayToBGR)
		return matToFrame(&bgr)
	case 4:
		bgr := gocv.NewMat()
		defer bgr.Close()
		gocv.CvtColor(*m, &bgr, gocv.ColorBGRAToBGR)
		return matToFrame(&bgr)
	default:
		return nil, fmt.Errorf("capture: unsupported %d-channel frame", m.Channels())
	}
	w, h := m.Cols(), m.Rows()
	return &thermal.Frame{
		Pix:    m.ToBytes(),
		Stride: w * 3,
		Width:  w,
		Height: h,
	}, nil
}
