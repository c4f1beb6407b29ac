// Copyright 2017 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package thermal converts false-color thermal video into temperature
// readings.
//
// A calibration table maps observed pixel colors to known temperatures.
// The engine samples the pixels along a line segment of one decoded
// frame and resolves each color to the temperature of the closest
// calibrated color.
package thermal

import "fmt"

// Celsius is a temperature in °C.
type Celsius float64

func (c Celsius) String() string {
	return fmt.Sprintf("%.2f°C", float64(c))
}

// VideoInfo describes the currently opened video source.
//
// It is populated when a source is opened and stays constant until a
// new source replaces it.
type VideoInfo struct {
	Frames int     `json:"frames"`
	FPS    float64 `json:"fps"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Loaded bool    `json:"loaded"`
}
