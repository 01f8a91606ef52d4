package tracker

import (
	"fmt"
)

const (
	// DefaultIoUThreshold is the default minimum IoU for associating a
	// detection with an existing track
	DefaultIoUThreshold = float32(0.5)
	// DefaultTrackScoreThreshold is the default minimum tracker confidence
	// needed to retain a track after an update
	DefaultTrackScoreThreshold = float32(0.1)
	// DefaultUndetectedWindow is the default maximum number of consecutive
	// frames a track may go without being redetected before eviction
	DefaultUndetectedWindow = 5
)

// Lifecycle drives the per frame association and track lifecycle over a
// Store.  Each frame runs association followed by three ordered passes:
// stale track eviction, tracker updates and new track births
type Lifecycle struct {
	// store holds the active tracks for the session
	store *Store
	// factory constructs the single object tracker owned by each new track
	factory ObjectTrackerFactory
	// matcher is the association policy used to pair detections with tracks
	matcher Matcher
	// trackScoreThresh is the minimum tracker confidence to retain a track
	trackScoreThresh float32
	// undetectedWindow is the maximum number of consecutive frames a track
	// may go unredetected before eviction
	undetectedWindow int
}

// NewLifecycle returns a Lifecycle using the given tracker factory and
// thresholds.  The default association policy is FirstMatch at the given
// IoU threshold
func NewLifecycle(factory ObjectTrackerFactory, iouThresh,
	trackScoreThresh float32, undetectedWindow int) *Lifecycle {

	return &Lifecycle{
		store:            NewStore(),
		factory:          factory,
		matcher:          FirstMatch{Threshold: iouThresh},
		trackScoreThresh: trackScoreThresh,
		undetectedWindow: undetectedWindow,
	}
}

// SetMatcher replaces the association policy
func (l *Lifecycle) SetMatcher(m Matcher) {
	l.matcher = m
}

// Store returns the track store owned by this lifecycle
func (l *Lifecycle) Store() *Store {
	return l.store
}

// Reset evicts all tracks and restarts the track ID counter
func (l *Lifecycle) Reset() {
	l.store.Reset()
}

// Process runs one frame through the tracker.  It returns the observed
// detections channel holding every input detection annotated with the track
// ID assigned by a match, and the generated boxes channel holding one entry
// per track alive at the end of the frame
func (l *Lifecycle) Process(frame *Frame, detections []BoundingBox) (
	observed, generated []BoundingBox, err error) {

	observed, births := l.associate(detections)

	l.evictStale()

	generated, err = l.update(frame)

	if err != nil {
		return nil, nil, err
	}

	born, err := l.spawn(frame, births)

	if err != nil {
		return nil, nil, err
	}

	generated = append(generated, born...)

	return observed, generated, nil
}

// associate matches each detection against the active tracks.  A matched
// track has its box replaced by the detection and its undetected counter
// reset.  Unmatched detections are collected as birth candidates.  Every
// detection is retained in the observed output, annotated with the track ID
// assigned by a match
func (l *Lifecycle) associate(detections []BoundingBox) (
	observed, births []BoundingBox) {

	for _, det := range detections {

		idx := l.matcher.Match(det, l.store.Tracks())

		if idx >= 0 {
			track := l.store.Tracks()[idx]
			track.box = det
			track.framesSinceLastDetection = 0
			det.TrackID = track.id
		} else {
			births = append(births, det)
		}

		observed = append(observed, det)
	}

	return observed, births
}

// evictStale removes every track that has gone more frames than the
// undetected window without a fresh detection.  Removal shifts the element
// at i+1 down to i, so index i is revisited before the scan advances
func (l *Lifecycle) evictStale() {

	for i := 0; i < l.store.Len(); i++ {
		if l.store.Tracks()[i].framesSinceLastDetection > l.undetectedWindow {
			l.store.remove(i)
			i--
		}
	}
}

// update runs each surviving track's tracker against the current frame.
// Tracks whose confidence falls below the score threshold are evicted
// immediately with no emission.  All others have their box refreshed from
// the tracker output, their undetected counter incremented, and emit a box
// combining the refined coordinates, the most recent detector score, the
// track ID and the fresh tracker confidence
func (l *Lifecycle) update(frame *Frame) ([]BoundingBox, error) {

	var generated []BoundingBox

	for i := 0; i < l.store.Len(); i++ {

		track := l.store.Tracks()[i]
		refined, score := track.tracker.Track(frame)

		if score < l.trackScoreThresh {
			l.store.remove(i)
			i--
			continue
		}

		track.box.X1 = refined.X1
		track.box.Y1 = refined.Y1
		track.box.X2 = refined.X2
		track.box.Y2 = refined.Y2

		// the track was carried forward by the tracker alone this pass,
		// it received no fresh detection
		track.framesSinceLastDetection++

		generated = append(generated, BoundingBox{
			X1:         refined.X1,
			Y1:         refined.Y1,
			X2:         refined.X2,
			Y2:         refined.Y2,
			Score:      track.box.Score,
			TrackID:    track.id,
			TrackScore: score,
		})
	}

	return generated, nil
}

// spawn creates a new track for each unmatched detection, assigning a fresh
// ID and initialising a new tracker instance against the current frame with
// the detection box as the seed region.  Each birth emits the detection box
// annotated with the new track ID
func (l *Lifecycle) spawn(frame *Frame, births []BoundingBox) (
	[]BoundingBox, error) {

	var generated []BoundingBox

	for _, det := range births {

		objTracker := l.factory(frame.Width, frame.Height)

		if err := objTracker.Initialise(frame, det); err != nil {
			_ = objTracker.Close()
			return nil, fmt.Errorf("error initialising tracker for new track: %w", err)
		}

		track := &Track{
			id:          l.store.NextID(),
			box:         det,
			tracker:     objTracker,
			frameWidth:  frame.Width,
			frameHeight: frame.Height,
		}

		l.store.Add(track)

		det.TrackID = track.id
		generated = append(generated, det)
	}

	return generated, nil
}
