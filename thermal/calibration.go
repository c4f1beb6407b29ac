// Copyright 2017 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package thermal

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"strings"
)

// ErrNoCalibration means a calibration source yielded zero usable rows.
//
// It covers both an empty file and a file whose every row is malformed;
// the two cases are not distinguishable from the row count alone.
var ErrNoCalibration = errors.New("thermal: no valid calibration rows")

// ColorKey is an RGB triple packed into 24 bits, red in the high byte.
type ColorKey uint32

// MakeColorKey packs the three channels into a ColorKey.
func MakeColorKey(r, g, b uint8) ColorKey {
	return ColorKey(r)<<16 | ColorKey(g)<<8 | ColorKey(b)
}

// RGB unpacks the three channels.
func (k ColorKey) RGB() (r, g, b uint8) {
	return uint8(k >> 16), uint8(k >> 8), uint8(k)
}

type calEntry struct {
	key  ColorKey
	temp Celsius
}

// Table maps observed colors to calibrated temperatures.
//
// Entries are kept in first-insertion order; nearest-color scans walk
// that order. Overwriting a color updates its temperature in place and
// keeps its original scan position, so resolution stays deterministic
// across reloads.
type Table struct {
	byKey   map[ColorKey]int // index into entries
	entries []calEntry
}

// NewTable returns an empty calibration table.
func NewTable() *Table {
	return &Table{byKey: map[ColorKey]int{}}
}

// Len returns the number of distinct calibrated colors.
func (t *Table) Len() int {
	return len(t.entries)
}

// Set inserts or overwrites one calibration entry.
func (t *Table) Set(key ColorKey, temp Celsius) {
	if i, ok := t.byKey[key]; ok {
		t.entries[i].temp = temp
		return
	}
	t.byKey[key] = len(t.entries)
	t.entries = append(t.entries, calEntry{key, temp})
}

// Lookup returns the exact-match temperature for a color, if calibrated.
func (t *Table) Lookup(key ColorKey) (Celsius, bool) {
	if i, ok := t.byKey[key]; ok {
		return t.entries[i].temp, true
	}
	return 0, false
}

// Clear removes every entry.
func (t *Table) Clear() {
	t.byKey = map[ColorKey]int{}
	t.entries = t.entries[:0]
}

// Load ingests a delimited calibration source into the table.
//
// The first line is a header and is always skipped. Each data row needs
// at least 6 comma-separated fields: two positional fields that are
// ignored, then red, green, blue and the temperature in °C. Rows that
// are short, unparsable or have a channel outside [0,255] are skipped
// without aborting the ingestion.
//
// Loading adds to whatever the table already holds; it never resets it.
// Re-ingesting a color overwrites its temperature.
//
// Returns the number of rows ingested. The error is ErrNoCalibration
// when that number is zero, or the underlying read error.
func (t *Table) Load(r io.Reader) (int, error) {
	s := bufio.NewScanner(r)
	n := 0
	first := true
	for s.Scan() {
		if first {
			first = false
			continue
		}
		row := strings.Split(s.Text(), ",")
		if len(row) < 6 {
			continue
		}
		red, err := strconv.Atoi(strings.TrimSpace(row[2]))
		if err != nil {
			continue
		}
		green, err := strconv.Atoi(strings.TrimSpace(row[3]))
		if err != nil {
			continue
		}
		blue, err := strconv.Atoi(strings.TrimSpace(row[4]))
		if err != nil {
			continue
		}
		temp, err := strconv.ParseFloat(strings.TrimSpace(row[5]), 64)
		if err != nil {
			continue
		}
		if red < 0 || red > 255 || green < 0 || green > 255 || blue < 0 || blue > 255 {
			continue
		}
		t.Set(MakeColorKey(uint8(red), uint8(green), uint8(blue)), Celsius(temp))
		n++
	}
	if err := s.Err(); err != nil {
		return n, err
	}
	if n == 0 {
		return 0, ErrNoCalibration
	}
	return n, nil
}
