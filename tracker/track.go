package tracker

// ObjectTracker is the single object visual tracking capability bound to one
// Track.  Initialise seeds the tracker with a target region in the given
// frame and may be called again on a live tracker to re-seed it.  Track
// returns the tracker's estimate of the target's new location along with a
// confidence score where lower values indicate greater uncertainty.  Any
// implementation satisfying this contract is substitutable
type ObjectTracker interface {
	Initialise(frame *Frame, box BoundingBox) error
	Track(frame *Frame) (BoundingBox, float32)
	Close() error
}

// ObjectTrackerFactory constructs a new ObjectTracker instance for a track
// created against frames of the given dimensions
type ObjectTrackerFactory func(frameWidth, frameHeight int) ObjectTracker

// Track represents a persistent object identity maintained across frames,
// backed by one single object tracker instance which shares the Track's
// lifetime
type Track struct {
	// id is the unique identity of the track
	id int32
	// box is the last known bounding box, detector or tracker derived
	box BoundingBox
	// tracker is the single object tracker owned by this track
	tracker ObjectTracker
	// framesSinceLastDetection counts consecutive frames the track was
	// carried forward by the tracker alone without a fresh detection
	framesSinceLastDetection int
	// frameWidth, frameHeight is the frame dimension snapshot taken at
	// creation time
	frameWidth  int
	frameHeight int
}

// ID returns the unique identity of the track
func (t *Track) ID() int32 {
	return t.id
}

// Box returns the last known bounding box of the track
func (t *Track) Box() BoundingBox {
	return t.box
}

// FramesSinceLastDetection returns the number of consecutive frames the
// track went without being redetected
func (t *Track) FramesSinceLastDetection() int {
	return t.framesSinceLastDetection
}

// Close destroys the track's tracker instance.  It is called exactly once
// when the track is evicted
func (t *Track) Close() error {
	return t.tracker.Close()
}
