package tracker

import (
	"testing"
)

// TestFirstMatchOrder tests that FirstMatch takes the first sufficiently
// overlapping track in store order even when a later track overlaps more
func TestFirstMatchOrder(t *testing.T) {

	// both tracks overlap the detection above the threshold, the second
	// overlaps perfectly
	tracks := []*Track{
		{id: 1, box: NewBoundingBox(12, 12, 22, 22, 0.9)},
		{id: 2, box: NewBoundingBox(10, 10, 20, 20, 0.9)},
	}

	det := NewBoundingBox(10, 10, 20, 20, 0.8)

	m := FirstMatch{Threshold: 0.3}

	if idx := m.Match(det, tracks); idx != 0 {
		t.Errorf("expected first match at index 0, got %d", idx)
	}
}

// TestBestMatchPrefersHighestIoU tests that BestMatch selects the highest
// IoU track regardless of store order
func TestBestMatchPrefersHighestIoU(t *testing.T) {

	tracks := []*Track{
		{id: 1, box: NewBoundingBox(12, 12, 22, 22, 0.9)},
		{id: 2, box: NewBoundingBox(10, 10, 20, 20, 0.9)},
	}

	det := NewBoundingBox(10, 10, 20, 20, 0.8)

	m := BestMatch{Threshold: 0.3}

	if idx := m.Match(det, tracks); idx != 1 {
		t.Errorf("expected best match at index 1, got %d", idx)
	}
}

// TestMatchBelowThreshold tests that neither policy matches a detection
// whose IoU with every track is below the threshold
func TestMatchBelowThreshold(t *testing.T) {

	tracks := []*Track{
		{id: 1, box: NewBoundingBox(100, 100, 120, 120, 0.9)},
	}

	det := NewBoundingBox(10, 10, 20, 20, 0.8)

	if idx := (FirstMatch{Threshold: 0.5}).Match(det, tracks); idx != -1 {
		t.Errorf("expected no first match, got index %d", idx)
	}

	if idx := (BestMatch{Threshold: 0.5}).Match(det, tracks); idx != -1 {
		t.Errorf("expected no best match, got index %d", idx)
	}
}

// TestMatchEmptyStore tests matching against an empty store
func TestMatchEmptyStore(t *testing.T) {

	det := NewBoundingBox(10, 10, 20, 20, 0.8)

	if idx := (FirstMatch{Threshold: 0.5}).Match(det, nil); idx != -1 {
		t.Errorf("expected no match against empty store, got index %d", idx)
	}
}
