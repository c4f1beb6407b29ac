// Copyright 2017 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package thermal

import (
	"context"
	"image"
	"io"
)

// Source is a seekable sequence of decodable video frames. This
// interface can be mocked; package thermaltest provides one.
//
// A Source keeps a current read position, so it must not be seeked from
// two goroutines at once. The Engine serializes all access to it.
type Source interface {
	io.Closer

	// FrameCount returns the total number of frames.
	FrameCount() int
	// FrameRate returns the frame rate in frames per second.
	FrameRate() float64
	// Bounds returns the frame dimensions.
	Bounds() image.Rectangle
	// SeekFrame positions the source at index and decodes that frame.
	// Decoding external media can hang, so implementations should honor
	// ctx cancellation at least between the seek and the decode.
	SeekFrame(ctx context.Context, index int) (*Frame, error)
}
