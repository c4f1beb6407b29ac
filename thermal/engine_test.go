// Copyright 2017 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package thermal_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/thermaline/thermaline/thermal"
	"github.com/thermaline/thermaline/thermaltest"
)

func newEngine(t *testing.T, src *thermaltest.Source) *thermal.Engine {
	t.Helper()
	e := thermal.NewEngine(slog.New(slog.NewTextHandler(io.Discard, nil)))
	if src != nil {
		if err := e.Open(src); err != nil {
			t.Fatal(err)
		}
	}
	return e
}

func loadCalibration(t *testing.T, e *thermal.Engine, rows string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cal.csv")
	if err := os.WriteFile(path, []byte("X,Y,R,G,B,Temperature_C\n"+rows), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := e.LoadCalibration(path); err != nil {
		t.Fatal(err)
	}
}

func TestFrame_cacheHit(t *testing.T) {
	src := thermaltest.New(8, 6, 4)
	e := newEngine(t, src)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, ok := e.Frame(ctx, 2); !ok {
			t.Fatal("frame unavailable")
		}
	}
	if src.DecodeCalls != 1 {
		t.Fatalf("decoded %d times, want 1", src.DecodeCalls)
	}
	// A different index misses and decodes again.
	if _, ok := e.Frame(ctx, 3); !ok {
		t.Fatal("frame unavailable")
	}
	if src.DecodeCalls != 2 {
		t.Fatalf("decoded %d times, want 2", src.DecodeCalls)
	}
}

func TestFrame_clamp(t *testing.T) {
	src := thermaltest.New(8, 6, 4)
	e := newEngine(t, src)
	ctx := context.Background()
	f, ok := e.Frame(ctx, 99)
	if !ok {
		t.Fatal("frame unavailable")
	}
	// 99 clamps to the last frame, so asking for index 3 is a cache hit.
	g, ok := e.Frame(ctx, 3)
	if !ok {
		t.Fatal("frame unavailable")
	}
	if f != g {
		t.Fatal("clamped index did not resolve to the boundary frame")
	}
	if src.DecodeCalls != 1 {
		t.Fatalf("decoded %d times, want 1", src.DecodeCalls)
	}
	if f2, ok := e.Frame(ctx, -7); !ok || f2 != src.Frames[0] {
		t.Fatal("negative index did not clamp to frame 0")
	}
}

func TestFrame_decodeFailureLeavesCache(t *testing.T) {
	src := thermaltest.New(8, 6, 4)
	e := newEngine(t, src)
	ctx := context.Background()
	if _, ok := e.Frame(ctx, 1); !ok {
		t.Fatal("frame unavailable")
	}
	src.FailAt[2] = true
	if _, ok := e.Frame(ctx, 2); ok {
		t.Fatal("expected failure")
	}
	// The previous entry is still served without a decode.
	calls := src.DecodeCalls
	if _, ok := e.Frame(ctx, 1); !ok {
		t.Fatal("cache entry lost after failed decode")
	}
	if src.DecodeCalls != calls {
		t.Fatal("cache miss after failed decode of another index")
	}
	// The failed index is retried, not served stale.
	src.FailAt[2] = false
	if _, ok := e.Frame(ctx, 2); !ok {
		t.Fatal("retry failed")
	}
	if src.DecodeCalls != calls+1 {
		t.Fatalf("decoded %d times, want %d", src.DecodeCalls, calls+1)
	}
}

func TestFrame_notOpen(t *testing.T) {
	e := newEngine(t, nil)
	if _, ok := e.Frame(context.Background(), 0); ok {
		t.Fatal("frame from closed engine")
	}
}

func TestProfileLine(t *testing.T) {
	src := thermaltest.New(8, 6, 4)
	e := newEngine(t, src)
	loadCalibration(t, e, "0,0,1,1,1,42.5\n")
	got := e.ProfileLine(context.Background(), 1, 0, 0, 4, 0)
	if len(got) != 5 {
		t.Fatalf("got %d readings, want 5", len(got))
	}
	for i, v := range got {
		if v != 42.5 {
			t.Fatalf("reading %d is %v, want 42.5", i, v)
		}
	}
}

func TestProfileLine_clampMatchesBoundary(t *testing.T) {
	src := thermaltest.New(8, 6, 4)
	e := newEngine(t, src)
	loadCalibration(t, e, "0,0,3,3,3,18\n")
	ctx := context.Background()
	beyond := e.ProfileLine(ctx, 100, 0, 0, 3, 0)
	boundary := e.ProfileLine(ctx, 3, 0, 0, 3, 0)
	if len(beyond) != len(boundary) {
		t.Fatalf("lengths differ: %d vs %d", len(beyond), len(boundary))
	}
	for i := range beyond {
		if beyond[i] != boundary[i] {
			t.Fatalf("reading %d differs: %v vs %v", i, beyond[i], boundary[i])
		}
	}
}

func TestProfileLine_missReadsZero(t *testing.T) {
	// No calibration at all: every pixel misses but the sequence keeps
	// its full clipped length.
	src := thermaltest.New(8, 6, 1)
	e := newEngine(t, src)
	got := e.ProfileLine(context.Background(), 0, -2, 0, 2, 0)
	if len(got) != 3 {
		t.Fatalf("got %d readings, want 3", len(got))
	}
	for i, v := range got {
		if v != 0 {
			t.Fatalf("reading %d is %v, want 0", i, v)
		}
	}
}

func TestProfileLine_frameUnavailable(t *testing.T) {
	src := thermaltest.New(8, 6, 1)
	src.FailAt[0] = true
	e := newEngine(t, src)
	got := e.ProfileLine(context.Background(), 0, 0, 0, 4, 0)
	if got == nil || len(got) != 0 {
		t.Fatalf("got %v, want empty sequence", got)
	}
}

func TestProfileLine_channelOrder(t *testing.T) {
	// The frame stores BGR; the calibration row is RGB. A resolved exact
	// match proves the swizzle happens before resolution.
	src := &thermaltest.Source{
		Frames: []*thermal.Frame{thermaltest.Uniform(4, 4, 200, 100, 50)},
		FPS:    25,
		FailAt: map[int]bool{},
	}
	e := newEngine(t, src)
	loadCalibration(t, e, "0,0,200,100,50,33\n0,0,50,100,200,99\n")
	got := e.ProfileLine(context.Background(), 0, 0, 0, 3, 3)
	if len(got) == 0 {
		t.Fatal("empty profile")
	}
	for _, v := range got {
		if v != 33 {
			t.Fatalf("got %v, want 33; channels resolved in decode order?", v)
		}
	}
}

func TestOpen_resetsCacheAndInfo(t *testing.T) {
	first := thermaltest.New(8, 6, 4)
	e := newEngine(t, first)
	ctx := context.Background()
	if _, ok := e.Frame(ctx, 0); !ok {
		t.Fatal("frame unavailable")
	}
	second := thermaltest.New(16, 12, 2)
	if err := e.Open(second); err != nil {
		t.Fatal(err)
	}
	if !first.Closed {
		t.Fatal("previous source not closed")
	}
	info := e.Info()
	if info.Frames != 2 || info.Width != 16 || info.Height != 12 {
		t.Fatalf("stale info %+v", info)
	}
	// Frame 0 must come from the new source, not the old cache slot.
	f, ok := e.Frame(ctx, 0)
	if !ok {
		t.Fatal("frame unavailable")
	}
	if f != second.Frames[0] {
		t.Fatal("served cached frame of previous source")
	}
}

func TestReady(t *testing.T) {
	e := newEngine(t, nil)
	if e.Ready() {
		t.Fatal("ready without source")
	}
	if err := e.Open(thermaltest.New(8, 6, 0)); err != nil {
		t.Fatal(err)
	}
	if e.Ready() {
		t.Fatal("ready with zero frames")
	}
	if err := e.Open(thermaltest.New(8, 6, 1)); err != nil {
		t.Fatal(err)
	}
	if !e.Ready() {
		t.Fatal("not ready")
	}
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}
	if e.Ready() {
		t.Fatal("ready after close")
	}
}

func TestPixelTemp(t *testing.T) {
	e := newEngine(t, nil)
	if _, ok := e.PixelTemp(1, 2, 3); ok {
		t.Fatal("resolved with empty table")
	}
	loadCalibration(t, e, "0,0,1,2,3,21.5\n")
	if v, ok := e.PixelTemp(1, 2, 3); !ok || v != 21.5 {
		t.Fatalf("got %v %t", v, ok)
	}
}

func TestLoadCalibration_missingFile(t *testing.T) {
	e := newEngine(t, nil)
	if _, err := e.LoadCalibration(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Fatal("expected error")
	}
}

func TestReplaceCalibration(t *testing.T) {
	e := newEngine(t, nil)
	dir := t.TempDir()
	path := filepath.Join(dir, "cal.csv")
	if err := os.WriteFile(path, []byte("X,Y,R,G,B,Temperature_C\n0,0,1,1,1,10\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := e.LoadCalibration(path); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("X,Y,R,G,B,Temperature_C\n0,0,2,2,2,20\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := e.ReplaceCalibration(path); err != nil {
		t.Fatal(err)
	}
	if e.CalibrationSize() != 1 {
		t.Fatalf("table has %d colors, want 1", e.CalibrationSize())
	}
	if _, ok := e.PixelTemp(2, 2, 2); !ok {
		t.Fatal("replacement entries missing")
	}
	// A reload that fails keeps the previous table.
	bad := filepath.Join(dir, "bad.csv")
	if err := os.WriteFile(bad, []byte("header only\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := e.ReplaceCalibration(bad); err == nil {
		t.Fatal("expected error")
	}
	if e.CalibrationSize() != 1 {
		t.Fatal("table lost on failed replace")
	}
}
