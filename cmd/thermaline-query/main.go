// Copyright 2017 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// thermaline-query prints the metadata of a thermal video and can
// resolve a single color against a calibration table.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"

	"github.com/thermaline/thermaline/capture"
	"github.com/thermaline/thermaline/thermal"
)

func mainImpl() error {
	videoPath := flag.String("video", "", "thermal video file")
	calPath := flag.String("calibration", "", "calibration CSV")
	color := flag.String("rgb", "", "color to resolve as r,g,b; needs -calibration")
	verbose := flag.Bool("v", false, "verbose mode")
	flag.Parse()
	if len(flag.Args()) != 0 {
		return fmt.Errorf("unexpected argument: %s", flag.Args())
	}
	if *videoPath == "" {
		return errors.New("-video is required")
	}
	if *color != "" && *calPath == "" {
		return errors.New("-rgb needs -calibration")
	}

	w := io.Writer(os.Stderr)
	if !*verbose {
		w = io.Discard
	}
	log := slog.New(tint.NewHandler(w, &tint.Options{Level: slog.LevelDebug, TimeFormat: "15:04:05"}))
	slog.SetDefault(log)

	eng := thermal.NewEngine(log)
	defer eng.Close()
	v, err := capture.Open(*videoPath, log)
	if err != nil {
		return err
	}
	if err := eng.Open(v); err != nil {
		return err
	}

	info := eng.Info()
	fmt.Printf("Frames:     %d\n", info.Frames)
	fmt.Printf("FPS:        %g\n", info.FPS)
	fmt.Printf("Resolution: %dx%d\n", info.Width, info.Height)
	fmt.Printf("Ready:      %t\n", eng.Ready())

	if *calPath != "" {
		n, err := eng.LoadCalibration(*calPath)
		if err != nil {
			return err
		}
		fmt.Printf("Calibrated: %d rows, %d colors\n", n, eng.CalibrationSize())
	}
	if *color != "" {
		var r, g, b int
		if _, err := fmt.Sscanf(*color, "%d,%d,%d", &r, &g, &b); err != nil {
			return fmt.Errorf("invalid -rgb %q, expected r,g,b", *color)
		}
		if r < 0 || r > 255 || g < 0 || g > 255 || b < 0 || b > 255 {
			return fmt.Errorf("-rgb channels must be in [0,255]")
		}
		t, ok := eng.PixelTemp(uint8(r), uint8(g), uint8(b))
		if !ok {
			fmt.Printf("Temp:       no match\n")
		} else {
			fmt.Printf("Temp:       %s\n", t)
		}
	}
	return nil
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "\nthermaline-query: %s.\n", err)
		os.Exit(1)
	}
}
