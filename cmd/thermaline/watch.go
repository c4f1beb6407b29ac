// Copyright 2017 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"log/slog"

	"github.com/maruel/interrupt"
	fsnotify "gopkg.in/fsnotify.v1"

	"github.com/thermaline/thermaline/thermal"
)

// watchCalibration reloads the calibration file whenever it changes on
// disk. The reload is a replace, not an append, so removed rows
// disappear too. Runs until interrupted.
func watchCalibration(path string, eng *thermal.Engine, log *slog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err = watcher.Add(path); err != nil {
		return err
	}
	for {
		select {
		case <-interrupt.Channel:
			return nil
		case err = <-watcher.Errors:
			return err
		case ev := <-watcher.Events:
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			n, err := eng.ReplaceCalibration(path)
			if err != nil {
				// Editors often truncate then write; keep the old table
				// and wait for the next event.
				log.Warn("calibration reload failed", "err", err)
				continue
			}
			log.Info("calibration reloaded", "rows", n)
		}
	}
}
