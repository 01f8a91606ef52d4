package tracker

import (
	"fmt"
)

// Frame represents a single decoded video frame as a packed RGB888 pixel
// buffer
type Frame struct {
	// Width of the frame in pixels
	Width int
	// Height of the frame in pixels
	Height int
	// Pixels is the raw frame buffer of Width * Height * 3 bytes
	Pixels []byte
}

// NewFrame wraps the given pixel buffer as a Frame.  The buffer length must
// equal width * height * 3 bytes
func NewFrame(width, height int, pixels []byte) (*Frame, error) {

	if want := width * height * 3; len(pixels) != want {
		return nil, fmt.Errorf("frame buffer is %d bytes, expected %d for %dx%d RGB888",
			len(pixels), want, width, height)
	}

	return &Frame{
		Width:  width,
		Height: height,
		Pixels: pixels,
	}, nil
}
