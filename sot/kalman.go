/*
Package sot provides single object tracker implementations that satisfy the
tracker.ObjectTracker capability.  Each instance is bound to one track and
estimates the target's new location in a frame along with a confidence score
where lower values indicate greater uncertainty.
*/
package sot

import (
	"fmt"

	"github.com/mindis/scanner-1/tracker"
)

const (
	// kalman filter standard deviation weights, relative to target height
	kalmanStdWeightPosition = 1.0 / 20
	kalmanStdWeightVelocity = 1.0 / 160
)

// KalmanTracker is a dead reckoning tracker that carries a target forward on
// a constant velocity motion model without reading frame pixels.  Its
// confidence is derived from the filter's position uncertainty, which grows
// with every frame the tracker runs unseeded, so stale tracks decay towards
// eviction on their own
type KalmanTracker struct {
	kf          *kalmanFilter
	initialised bool
}

// NewKalmanTracker returns a KalmanTracker ready to be seeded
func NewKalmanTracker() *KalmanTracker {
	return &KalmanTracker{
		kf: newKalmanFilter(kalmanStdWeightPosition, kalmanStdWeightVelocity),
	}
}

// KalmanFactory returns a factory producing a KalmanTracker per track
func KalmanFactory() tracker.ObjectTrackerFactory {
	return func(frameWidth, frameHeight int) tracker.ObjectTracker {
		return NewKalmanTracker()
	}
}

// Initialise seeds the tracker with a target region.  Re-seeding a live
// tracker is treated as a measurement correction, collapsing the
// accumulated uncertainty around the new region
func (k *KalmanTracker) Initialise(frame *tracker.Frame, box tracker.BoundingBox) error {

	if box.Width() <= 0 || box.Height() <= 0 {
		return fmt.Errorf("seed region (%v,%v,%v,%v) is degenerate",
			box.X1, box.Y1, box.X2, box.Y2)
	}

	m := boxToXyah(box)

	if !k.initialised {
		k.kf.initiate(m)
		k.initialised = true
		return nil
	}

	return k.kf.update(m)
}

// Track predicts the target's next location from the motion model.  The
// confidence decreases monotonically on consecutive calls without a
// re-seed as the position uncertainty grows
func (k *KalmanTracker) Track(frame *tracker.Frame) (tracker.BoundingBox, float32) {

	k.kf.predict()

	box := xyahToBox(k.kf.mean)

	return box, k.confidence()
}

// Close releases the tracker.  The Kalman tracker holds no external
// resources
func (k *KalmanTracker) Close() error {
	return nil
}

// confidence maps the filter's position standard deviation, normalised by
// target height, into (0, 1] where lower values indicate greater
// uncertainty
func (k *KalmanTracker) confidence() float32 {

	h := k.kf.mean[3]

	if h <= 0 {
		return 0
	}

	return float32(1.0 / (1.0 + k.kf.positionStd()/h))
}

// boxToXyah converts a bounding box to the (center x, center y, aspect
// ratio, height) measurement form
func boxToXyah(box tracker.BoundingBox) [4]float64 {

	w := float64(box.Width())
	h := float64(box.Height())

	return [4]float64{
		float64(box.X1) + w/2,
		float64(box.Y1) + h/2,
		w / h,
		h,
	}
}

// xyahToBox converts a state mean back to corner coordinates
func xyahToBox(mean []float64) tracker.BoundingBox {

	h := mean[3]
	w := mean[2] * h

	return tracker.BoundingBox{
		X1: float32(mean[0] - w/2),
		Y1: float32(mean[1] - h/2),
		X2: float32(mean[0] + w/2),
		Y2: float32(mean[1] + h/2),
	}
}
