// Copyright 2017 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package thermal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"
)

// ErrNotOpen means an operation needed a video source and none is open.
var ErrNotOpen = errors.New("thermal: no video source open")

// DefaultDecodeTimeout bounds one seek-and-decode of the source.
const DefaultDecodeTimeout = 10 * time.Second

// Engine owns one video source and one calibration table.
//
// One mutex guards the source, the table and the single-slot frame
// cache: the source keeps a read position, so concurrent seeks would
// corrupt it. Construct one Engine per session; there is no ambient
// state.
type Engine struct {
	log *slog.Logger

	mu            sync.Mutex
	table         *Table
	src           Source
	info          VideoInfo
	cached        *Frame
	cachedIndex   int
	decodeTimeout time.Duration
}

// NewEngine returns an engine with an empty calibration table and no
// video open. A nil logger falls back to slog.Default.
func NewEngine(log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		log:           log,
		table:         NewTable(),
		cachedIndex:   -1,
		decodeTimeout: DefaultDecodeTimeout,
	}
}

// SetDecodeTimeout bounds each seek-and-decode on the source. Zero
// disables the bound.
func (e *Engine) SetDecodeTimeout(d time.Duration) {
	e.mu.Lock()
	e.decodeTimeout = d
	e.mu.Unlock()
}

// Open attaches a video source to the engine, taking ownership of it.
// Any previously open source is closed. The frame cache and metadata
// are replaced in the same critical section so no reader observes them
// half-updated.
func (e *Engine) Open(src Source) error {
	b := src.Bounds()
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.src != nil {
		if err := e.src.Close(); err != nil {
			e.log.Warn("closing previous source", "err", err)
		}
	}
	e.src = src
	e.info = VideoInfo{
		Frames: src.FrameCount(),
		FPS:    src.FrameRate(),
		Width:  b.Dx(),
		Height: b.Dy(),
		Loaded: true,
	}
	e.cached = nil
	e.cachedIndex = -1
	e.log.Info("video opened", "frames", e.info.Frames, "fps", e.info.FPS, "width", e.info.Width, "height", e.info.Height)
	return nil
}

// Close releases the video source, if any. The calibration table is
// kept.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.src == nil {
		return nil
	}
	err := e.src.Close()
	e.src = nil
	e.info = VideoInfo{}
	e.cached = nil
	e.cachedIndex = -1
	return err
}

// Ready reports whether a video is open and has at least one frame.
func (e *Engine) Ready() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.src != nil && e.info.Frames >= 1
}

// Info returns the metadata of the open video, zero if none is open.
func (e *Engine) Info() VideoInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.info
}

// LoadCalibration ingests a calibration file into the table, adding to
// the entries already present. Returns the number of rows ingested.
func (e *Engine) LoadCalibration(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("thermal: opening calibration: %w", err)
	}
	defer f.Close()
	e.mu.Lock()
	defer e.mu.Unlock()
	n, err := e.table.Load(f)
	if err != nil {
		return n, err
	}
	e.log.Info("calibration loaded", "path", path, "rows", n, "colors", e.table.Len())
	return n, nil
}

// ReplaceCalibration clears the table and ingests path. On failure the
// previous table is restored, so a bad reload never leaves the engine
// without calibration.
func (e *Engine) ReplaceCalibration(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("thermal: opening calibration: %w", err)
	}
	defer f.Close()
	t := NewTable()
	n, err := t.Load(f)
	if err != nil {
		return n, err
	}
	e.mu.Lock()
	e.table = t
	e.mu.Unlock()
	e.log.Info("calibration replaced", "path", path, "rows", n)
	return n, nil
}

// CalibrationSize returns the number of distinct calibrated colors.
func (e *Engine) CalibrationSize() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.table.Len()
}

// PixelTemp resolves one color against the calibration table. ok is
// false when the table is empty.
func (e *Engine) PixelTemp(r, g, b uint8) (Celsius, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.table.Resolve(r, g, b)
}

// Frame returns the decoded frame at index, clamped to the valid range.
//
// The engine caches the last successfully decoded frame; asking for the
// same index again does not touch the source. A failed decode returns
// ok == false and leaves the cache as it was, so the next request for
// that index retries instead of serving stale data.
//
// The returned frame is shared with the cache and must not be modified.
func (e *Engine) Frame(ctx context.Context, index int) (*Frame, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	f, _, ok := e.frameLocked(ctx, index)
	return f, ok
}

func (e *Engine) frameLocked(ctx context.Context, index int) (*Frame, int, bool) {
	if e.src == nil || e.info.Frames < 1 {
		return nil, 0, false
	}
	if index < 0 {
		index = 0
	}
	if index > e.info.Frames-1 {
		index = e.info.Frames - 1
	}
	if index == e.cachedIndex {
		return e.cached, index, true
	}
	if e.decodeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.decodeTimeout)
		defer cancel()
	}
	f, err := e.src.SeekFrame(ctx, index)
	if err != nil {
		e.log.Warn("frame decode failed", "index", index, "err", err)
		return nil, 0, false
	}
	e.cached = f
	e.cachedIndex = index
	return f, index, true
}

// ProfileLine samples the temperatures along the segment
// (x1,y1)-(x2,y2) of the frame at index.
//
// The result has exactly one reading per clipped line pixel; a color
// the table cannot resolve reads as 0°C rather than shrinking the
// sequence. An unavailable frame yields an empty, non-nil sequence.
func (e *Engine) ProfileLine(ctx context.Context, index, x1, y1, x2, y2 int) []Celsius {
	e.mu.Lock()
	defer e.mu.Unlock()
	f, index, ok := e.frameLocked(ctx, index)
	if !ok {
		return []Celsius{}
	}
	pts := TraceLine(x1, y1, x2, y2, f.Width, f.Height)
	out := make([]Celsius, 0, len(pts))
	misses := 0
	for _, p := range pts {
		r, g, b := f.RGBAt(p.X, p.Y)
		t, ok := e.table.Resolve(r, g, b)
		if !ok {
			t = 0
			misses++
		}
		out = append(out, t)
	}
	if misses > 0 {
		e.log.Debug("unresolved pixels in profile", "frame", index, "misses", misses, "pixels", len(pts))
	}
	return out
}
