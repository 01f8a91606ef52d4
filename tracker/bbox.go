package tracker

import (
	"math"
)

// BoundingBox represents a detector or tracker produced box in frame pixel
// coordinates.  A box is valid when X1 <= X2 and Y1 <= Y2, anything else is
// degenerate and has an IoU of 0 with every other box
type BoundingBox struct {
	// X1, Y1 is the top left corner of the box
	X1, Y1 float32
	// X2, Y2 is the bottom right corner of the box
	X2, Y2 float32
	// Score is the detector confidence, carried through unmodified
	Score float32
	// TrackID is the persistent identity assigned to the box, 0 when
	// unassigned
	TrackID int32
	// TrackScore is the tracker confidence for this frame, only set on
	// tracker updated boxes
	TrackScore float32
}

// NewBoundingBox creates a new BoundingBox with the given corner coordinates
// and detector score
func NewBoundingBox(x1, y1, x2, y2, score float32) BoundingBox {
	return BoundingBox{
		X1:    x1,
		Y1:    y1,
		X2:    x2,
		Y2:    y2,
		Score: score,
	}
}

// Width returns the width of the box
func (b BoundingBox) Width() float32 {
	return b.X2 - b.X1
}

// Height returns the height of the box
func (b BoundingBox) Height() float32 {
	return b.Y2 - b.Y1
}

// Area returns the area of the box
func (b BoundingBox) Area() float32 {
	return b.Width() * b.Height()
}

// IoU calculates the Intersection over Union between two boxes.  Boxes that
// do not overlap, degenerate boxes, and numerically invalid ratios all
// return 0
func IoU(a, b BoundingBox) float32 {

	x1 := float32(math.Max(float64(a.X1), float64(b.X1)))
	y1 := float32(math.Max(float64(a.Y1), float64(b.Y1)))
	x2 := float32(math.Min(float64(a.X2), float64(b.X2)))
	y2 := float32(math.Min(float64(a.Y2), float64(b.Y2)))

	if x1 >= x2 || y1 >= y2 {
		return 0
	}

	intersection := (x2 - x1) * (y2 - y1)
	union := a.Area() + b.Area() - intersection

	iou := float64(intersection / union)

	if math.IsNaN(iou) || math.IsInf(iou, 0) {
		return 0
	}

	return float32(iou)
}
