// Copyright 2017 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// thermaline serves line temperature profiles of a thermal video over
// HTTP.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/maruel/interrupt"

	"github.com/thermaline/thermaline/capture"
	"github.com/thermaline/thermaline/thermal"
)

func mainImpl() error {
	port := flag.Int("port", 8010, "http port to listen on")
	videoPath := flag.String("video", "", "thermal video file to analyze")
	calPath := flag.String("calibration", "", "color to temperature calibration CSV")
	watch := flag.Bool("watch", false, "reload the calibration file when it changes")
	decodeTimeout := flag.Duration("decode-timeout", thermal.DefaultDecodeTimeout, "timeout per frame decode")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()
	if len(flag.Args()) != 0 {
		return fmt.Errorf("unexpected argument: %s", flag.Args())
	}
	if *videoPath == "" || *calPath == "" {
		return fmt.Errorf("both -video and -calibration are required")
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05",
	}))
	slog.SetDefault(log)

	interrupt.HandleCtrlC()

	eng := thermal.NewEngine(log)
	eng.SetDecodeTimeout(*decodeTimeout)
	defer eng.Close()

	v, err := capture.Open(*videoPath, log)
	if err != nil {
		return err
	}
	if err := eng.Open(v); err != nil {
		return err
	}
	if !eng.Ready() {
		return fmt.Errorf("%s has no decodable frames", *videoPath)
	}
	if _, err := eng.LoadCalibration(*calPath); err != nil {
		return err
	}

	if *watch {
		go func() {
			if err := watchCalibration(*calPath, eng, log); err != nil {
				log.Warn("calibration watch stopped", "err", err)
			}
		}()
	}

	startServer(*port, eng, log)
	<-interrupt.Channel
	log.Info("shutting down")
	// Leave a moment for in-flight profile requests to drain.
	time.Sleep(100 * time.Millisecond)
	return nil
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "\nthermaline: %s.\n", err)
		os.Exit(1)
	}
}
