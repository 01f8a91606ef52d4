package sot

import (
	"fmt"
	"image"

	"github.com/mindis/scanner-1/tracker"
	"gocv.io/x/gocv"
)

// DefaultSearchMargin is the number of pixels the NCC search window extends
// beyond the last known box on each side
const DefaultSearchMargin = 32

// NCCTracker is a template matching visual tracker.  Initialise captures
// the seed region as a template, Track searches a window around the last
// known position by normalised cross correlation and reports the best
// correlation as its confidence
type NCCTracker struct {
	// frameWidth, frameHeight are the frame dimensions the tracker is
	// bound to
	frameWidth  int
	frameHeight int
	// margin is the search window expansion in pixels
	margin int
	// template is the captured appearance of the target
	template gocv.Mat
	// hasTemplate indicates Initialise has been called
	hasTemplate bool
	// last is the last known target location
	last image.Rectangle
}

// NewNCCTracker returns an NCC tracker bound to frames of the given
// dimensions
func NewNCCTracker(frameWidth, frameHeight int) *NCCTracker {
	return &NCCTracker{
		frameWidth:  frameWidth,
		frameHeight: frameHeight,
		margin:      DefaultSearchMargin,
		template:    gocv.NewMat(),
	}
}

// NCCFactory returns a factory producing an NCCTracker per track
func NCCFactory() tracker.ObjectTrackerFactory {
	return func(frameWidth, frameHeight int) tracker.ObjectTracker {
		return NewNCCTracker(frameWidth, frameHeight)
	}
}

// SetSearchMargin overrides the default search window expansion
func (n *NCCTracker) SetSearchMargin(pixels int) {
	n.margin = pixels
}

// Initialise captures the seed region of the given frame as the matching
// template
func (n *NCCTracker) Initialise(frame *tracker.Frame, box tracker.BoundingBox) error {

	rect := clampRect(boxToRect(box), n.frameWidth, n.frameHeight)

	if rect.Empty() {
		return fmt.Errorf("seed region (%v,%v,%v,%v) is empty within %dx%d frame",
			box.X1, box.Y1, box.X2, box.Y2, n.frameWidth, n.frameHeight)
	}

	mat, err := frameMat(frame)

	if err != nil {
		return err
	}

	defer mat.Close()

	region := mat.Region(rect)
	defer region.Close()

	region.CopyTo(&n.template)

	n.hasTemplate = true
	n.last = rect

	return nil
}

// Track searches for the template in a window around the last known
// position.  The best normalised cross correlation becomes the new location
// and the correlation value the confidence.  A tracker that has lost its
// target, or whose search window has collapsed at the frame edge, reports
// confidence 0
func (n *NCCTracker) Track(frame *tracker.Frame) (tracker.BoundingBox, float32) {

	lastBox := rectToBox(n.last)

	if !n.hasTemplate {
		return lastBox, 0
	}

	search := clampRect(image.Rect(
		n.last.Min.X-n.margin,
		n.last.Min.Y-n.margin,
		n.last.Max.X+n.margin,
		n.last.Max.Y+n.margin,
	), n.frameWidth, n.frameHeight)

	if search.Dx() < n.template.Cols() || search.Dy() < n.template.Rows() {
		return lastBox, 0
	}

	mat, err := frameMat(frame)

	if err != nil {
		return lastBox, 0
	}

	defer mat.Close()

	region := mat.Region(search)
	defer region.Close()

	result := gocv.NewMat()
	defer result.Close()

	mask := gocv.NewMat()
	defer mask.Close()

	gocv.MatchTemplate(region, n.template, &result, gocv.TmCcoeffNormed, mask)

	_, maxVal, _, maxLoc := gocv.MinMaxLoc(result)

	n.last = image.Rect(
		search.Min.X+maxLoc.X,
		search.Min.Y+maxLoc.Y,
		search.Min.X+maxLoc.X+n.template.Cols(),
		search.Min.Y+maxLoc.Y+n.template.Rows(),
	)

	if maxVal < 0 {
		maxVal = 0
	}

	return rectToBox(n.last), maxVal
}

// Close releases the template Mat
func (n *NCCTracker) Close() error {
	return n.template.Close()
}

// frameMat wraps the frame's pixel buffer as a gocv Mat without copying
func frameMat(frame *tracker.Frame) (gocv.Mat, error) {

	mat, err := gocv.NewMatFromBytes(frame.Height, frame.Width,
		gocv.MatTypeCV8UC3, frame.Pixels)

	if err != nil {
		return gocv.Mat{}, fmt.Errorf("error wrapping frame buffer: %w", err)
	}

	return mat, nil
}

// boxToRect converts bounding box coordinates to an integer rectangle
func boxToRect(box tracker.BoundingBox) image.Rectangle {
	return image.Rect(int(box.X1), int(box.Y1), int(box.X2), int(box.Y2))
}

// rectToBox converts an integer rectangle back to bounding box coordinates
func rectToBox(rect image.Rectangle) tracker.BoundingBox {
	return tracker.BoundingBox{
		X1: float32(rect.Min.X),
		Y1: float32(rect.Min.Y),
		X2: float32(rect.Max.X),
		Y2: float32(rect.Max.Y),
	}
}

// clampRect restricts a rectangle to the frame bounds
func clampRect(rect image.Rectangle, width, height int) image.Rectangle {
	return rect.Intersect(image.Rect(0, 0, width, height))
}
