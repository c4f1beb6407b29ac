// Copyright 2017 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// thermaline-grab saves a single video frame as PNG and optionally
// prints the temperature profile of a line across it.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"

	"github.com/thermaline/thermaline/capture"
	"github.com/thermaline/thermaline/thermal"
)

func parseLine(s string) (x1, y1, x2, y2 int, err error) {
	if _, err = fmt.Sscanf(s, "%d,%d,%d,%d", &x1, &y1, &x2, &y2); err != nil {
		err = fmt.Errorf("invalid -line %q, expected x1,y1,x2,y2", s)
	}
	return
}

func mainImpl() error {
	videoPath := flag.String("video", "", "thermal video file")
	calPath := flag.String("calibration", "", "calibration CSV, needed with -line")
	frame := flag.Int("frame", 0, "frame index to grab")
	line := flag.String("line", "", "line to profile as x1,y1,x2,y2; printed as CSV on stdout")
	verbose := flag.Bool("v", false, "verbose mode")
	flag.Parse()

	w := io.Writer(os.Stderr)
	if !*verbose {
		w = io.Discard
	}
	log := slog.New(tint.NewHandler(w, &tint.Options{Level: slog.LevelDebug, TimeFormat: "15:04:05"}))
	slog.SetDefault(log)

	if flag.NArg() != 1 {
		return errors.New("supply path to PNG to save")
	}
	if *videoPath == "" {
		return errors.New("-video is required")
	}
	if *line != "" && *calPath == "" {
		return errors.New("-line needs -calibration")
	}

	eng := thermal.NewEngine(log)
	defer eng.Close()
	v, err := capture.Open(*videoPath, log)
	if err != nil {
		return err
	}
	if err := eng.Open(v); err != nil {
		return err
	}

	ctx := context.Background()
	f, ok := eng.Frame(ctx, *frame)
	if !ok {
		return fmt.Errorf("could not decode frame %d", *frame)
	}

	if *line != "" {
		x1, y1, x2, y2, err := parseLine(*line)
		if err != nil {
			return err
		}
		if _, err := eng.LoadCalibration(*calPath); err != nil {
			return err
		}
		fmt.Printf("index,temp_celsius\n")
		for i, t := range eng.ProfileLine(ctx, *frame, x1, y1, x2, y2) {
			fmt.Printf("%d,%.2f\n", i, float64(t))
		}
	}

	out, err := os.Create(flag.Args()[0])
	if err != nil {
		return err
	}
	defer out.Close()
	return png.Encode(out, f.Image())
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "\nthermaline-grab: %s.\n", err)
		os.Exit(1)
	}
}
