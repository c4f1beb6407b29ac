// Copyright 2017 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package thermal

import "testing"

func TestFrameChannelOrder(t *testing.T) {
	f := NewFrame(2, 2)
	f.SetRGB(1, 0, 200, 100, 50)
	// Storage is BGR.
	if f.Pix[3] != 50 || f.Pix[4] != 100 || f.Pix[5] != 200 {
		t.Fatalf("stored %v", f.Pix[3:6])
	}
	if r, g, b := f.RGBAt(1, 0); r != 200 || g != 100 || b != 50 {
		t.Fatalf("read back (%d,%d,%d)", r, g, b)
	}
}

func TestFrameImage(t *testing.T) {
	f := NewFrame(2, 1)
	f.SetRGB(0, 0, 10, 20, 30)
	f.SetRGB(1, 0, 200, 100, 50)
	img := f.Image()
	if c := img.NRGBAAt(1, 0); c.R != 200 || c.G != 100 || c.B != 50 || c.A != 0xff {
		t.Fatalf("got %v", c)
	}
}
