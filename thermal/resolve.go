// Copyright 2017 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package thermal

import "math"

// nearEnough is the Euclidean distance in channel units under which a
// scanned candidate is accepted immediately without looking at the rest
// of the table.
const nearEnough = 10.

// Resolve returns the temperature for an observed color.
//
// An exact calibration hit returns immediately. Otherwise the entries
// are scanned in insertion order for the smallest Euclidean distance in
// RGB space; the first entry seen at the minimum wins ties. A candidate
// closer than nearEnough short-circuits the scan, so the result may not
// be the true nearest entry. That trade of accuracy for speed is
// intentional.
//
// ok is false when the table has no entries.
func (t *Table) Resolve(r, g, b uint8) (temp Celsius, ok bool) {
	if temp, ok = t.Lookup(MakeColorKey(r, g, b)); ok {
		return temp, true
	}
	best := math.MaxFloat64
	for _, e := range t.entries {
		er, eg, eb := e.key.RGB()
		dr := float64(int(r) - int(er))
		dg := float64(int(g) - int(eg))
		db := float64(int(b) - int(eb))
		if d := math.Sqrt(dr*dr + dg*dg + db*db); d < best {
			best = d
			temp = e.temp
			ok = true
			if d < nearEnough {
				break
			}
		}
	}
	return temp, ok
}
