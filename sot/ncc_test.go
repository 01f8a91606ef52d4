package sot

import (
	"testing"

	"github.com/mindis/scanner-1/tracker"
)

// texturedFrame returns a frame with a gradient patch drawn at the given
// position, the rest of the frame is black
func texturedFrame(t *testing.T, width, height, patchX, patchY, patchSize int) *tracker.Frame {
	t.Helper()

	pix := make([]byte, width*height*3)

	for dy := 0; dy < patchSize; dy++ {
		for dx := 0; dx < patchSize; dx++ {
			i := ((patchY+dy)*width + (patchX + dx)) * 3
			pix[i] = byte(40 + dx*12)
			pix[i+1] = byte(40 + dy*12)
			pix[i+2] = byte(200 - dx*6)
		}
	}

	frame, err := tracker.NewFrame(width, height, pix)

	if err != nil {
		t.Fatalf("failed to create frame: %v", err)
	}

	return frame
}

// TestNCCTrackerFollowsPatch tests that the tracker relocates a textured
// patch after it has moved within the search window
func TestNCCTrackerFollowsPatch(t *testing.T) {

	const width, height, patch = 96, 64, 16

	n := NewNCCTracker(width, height)
	defer n.Close()

	seed := texturedFrame(t, width, height, 20, 20, patch)

	err := n.Initialise(seed, tracker.BoundingBox{
		X1: 20, Y1: 20, X2: 20 + patch, Y2: 20 + patch,
	})

	if err != nil {
		t.Fatalf("failed to initialise tracker: %v", err)
	}

	// same patch shifted right and down by 6 pixels
	moved := texturedFrame(t, width, height, 26, 26, patch)

	box, conf := n.Track(moved)

	if conf < 0.9 {
		t.Errorf("expected high confidence on exact patch, got %f", conf)
	}

	if box.X1 < 25 || box.X1 > 27 || box.Y1 < 25 || box.Y1 > 27 {
		t.Errorf("expected patch relocated near (26,26), got (%f,%f)",
			box.X1, box.Y1)
	}
}

// TestNCCTrackerUninitialised tests that tracking before Initialise reports
// zero confidence
func TestNCCTrackerUninitialised(t *testing.T) {

	n := NewNCCTracker(32, 32)
	defer n.Close()

	frame := texturedFrame(t, 32, 32, 4, 4, 8)

	if _, conf := n.Track(frame); conf != 0 {
		t.Errorf("expected zero confidence before initialise, got %f", conf)
	}
}

// TestNCCTrackerDegenerateSeed tests that a seed region outside the frame
// is rejected
func TestNCCTrackerDegenerateSeed(t *testing.T) {

	n := NewNCCTracker(32, 32)
	defer n.Close()

	frame := texturedFrame(t, 32, 32, 4, 4, 8)

	err := n.Initialise(frame, tracker.BoundingBox{
		X1: 100, Y1: 100, X2: 120, Y2: 120,
	})

	if err == nil {
		t.Errorf("expected error seeding outside the frame")
	}
}
