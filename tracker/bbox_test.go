package tracker

import (
	"math"
	"testing"
)

// almostEqual checks if two float32 values are approximately equal
func almostEqual(a, b, tolerance float32) bool {
	return float32(math.Abs(float64(a)-float64(b))) <= tolerance
}

// TestIoUIdentity tests that a non degenerate box has an IoU of 1 with
// itself
func TestIoUIdentity(t *testing.T) {

	boxes := []BoundingBox{
		NewBoundingBox(10, 10, 20, 20, 0.9),
		NewBoundingBox(0, 0, 640, 480, 0.5),
		NewBoundingBox(-5, -5, 5, 5, 0.1),
	}

	for _, box := range boxes {
		if iou := IoU(box, box); !almostEqual(iou, 1.0, 1e-6) {
			t.Errorf("expected IoU of box %v with itself to be 1.0, got %f",
				box, iou)
		}
	}
}

// TestIoUSymmetry tests that IoU is symmetric in its arguments
func TestIoUSymmetry(t *testing.T) {

	pairs := [][2]BoundingBox{
		{NewBoundingBox(10, 10, 20, 20, 0), NewBoundingBox(11, 11, 21, 21, 0)},
		{NewBoundingBox(0, 0, 100, 100, 0), NewBoundingBox(50, 50, 150, 150, 0)},
		{NewBoundingBox(0, 0, 10, 10, 0), NewBoundingBox(20, 20, 30, 30, 0)},
	}

	for _, pair := range pairs {
		ab := IoU(pair[0], pair[1])
		ba := IoU(pair[1], pair[0])

		if !almostEqual(ab, ba, 1e-6) {
			t.Errorf("expected IoU(%v, %v)=%f to equal IoU(%v, %v)=%f",
				pair[0], pair[1], ab, pair[1], pair[0], ba)
		}
	}
}

// TestIoUValues tests expected IoU values including non overlapping,
// degenerate and zero area boxes
func TestIoUValues(t *testing.T) {

	tests := []struct {
		name string
		a    BoundingBox
		b    BoundingBox
		want float32
	}{
		{
			name: "overlapping boxes",
			a:    NewBoundingBox(10, 10, 20, 20, 0),
			b:    NewBoundingBox(11, 11, 21, 21, 0),
			// intersection 9x9=81, union 100+100-81=119
			want: 81.0 / 119.0,
		},
		{
			name: "disjoint boxes",
			a:    NewBoundingBox(0, 0, 10, 10, 0),
			b:    NewBoundingBox(20, 20, 30, 30, 0),
			want: 0,
		},
		{
			name: "touching edges",
			a:    NewBoundingBox(0, 0, 10, 10, 0),
			b:    NewBoundingBox(10, 0, 20, 10, 0),
			want: 0,
		},
		{
			name: "degenerate box",
			a:    NewBoundingBox(20, 20, 10, 10, 0),
			b:    NewBoundingBox(10, 10, 20, 20, 0),
			want: 0,
		},
		{
			name: "degenerate with itself",
			a:    NewBoundingBox(20, 20, 10, 10, 0),
			b:    NewBoundingBox(20, 20, 10, 10, 0),
			want: 0,
		},
		{
			name: "zero area boxes",
			a:    NewBoundingBox(5, 5, 5, 5, 0),
			b:    NewBoundingBox(5, 5, 5, 5, 0),
			want: 0,
		},
	}

	for _, tc := range tests {
		if got := IoU(tc.a, tc.b); !almostEqual(got, tc.want, 1e-6) {
			t.Errorf("%s: expected IoU %f, got %f", tc.name, tc.want, got)
		}
	}
}
