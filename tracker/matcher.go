package tracker

// Matcher selects which active track, if any, a detection should be
// associated with.  Match returns the index of the chosen track or -1 when
// no track qualifies
type Matcher interface {
	Match(detection BoundingBox, tracks []*Track) int
}

// FirstMatch associates a detection with the first track in store order
// whose IoU with the detection exceeds the threshold.  This preserves the
// order sensitive tie break of scanning tracks sequentially and is the
// default policy
type FirstMatch struct {
	// Threshold is the minimum IoU required for an association
	Threshold float32
}

// Match returns the index of the first sufficiently overlapping track
func (m FirstMatch) Match(detection BoundingBox, tracks []*Track) int {

	for i, track := range tracks {
		if IoU(detection, track.Box()) > m.Threshold {
			return i
		}
	}

	return -1
}

// BestMatch associates a detection with the track of highest IoU above the
// threshold, the more robust assignment when several tracks overlap a
// detection
type BestMatch struct {
	// Threshold is the minimum IoU required for an association
	Threshold float32
}

// Match returns the index of the highest IoU track above the threshold
func (m BestMatch) Match(detection BoundingBox, tracks []*Track) int {

	bestIdx := -1
	bestIoU := m.Threshold

	for i, track := range tracks {
		if iou := IoU(detection, track.Box()); iou > bestIoU {
			bestIoU = iou
			bestIdx = i
		}
	}

	return bestIdx
}
