package scanner

import (
	"math"
	"testing"

	"github.com/mindis/scanner-1/tracker"
)

// almostEqual checks if two float32 values are approximately equal
func almostEqual(a, b, tolerance float32) bool {
	return float32(math.Abs(float64(a)-float64(b))) <= tolerance
}

// TestCodecRoundTrip tests that encoding then decoding a sequence of boxes
// yields the original boxes unchanged
func TestCodecRoundTrip(t *testing.T) {

	boxes := []tracker.BoundingBox{
		{X1: 10, Y1: 10, X2: 20, Y2: 20, Score: 0.9},
		{X1: 0.5, Y1: 1.25, X2: 640, Y2: 480, Score: 0.31, TrackID: 7, TrackScore: 0.82},
		{X1: -3, Y1: -4, X2: 5, Y2: 6, Score: 0.01, TrackID: 12345, TrackScore: 0.005},
	}

	decoded, err := DecodeBoxes(EncodeBoxes(boxes))

	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if len(decoded) != len(boxes) {
		t.Fatalf("expected %d boxes, got %d", len(boxes), len(decoded))
	}

	for i, box := range boxes {
		if decoded[i] != box {
			t.Errorf("box %d: expected %+v, got %+v", i, box, decoded[i])
		}
	}
}

// TestCodecEmpty tests round tripping an empty sequence
func TestCodecEmpty(t *testing.T) {

	decoded, err := DecodeBoxes(EncodeBoxes(nil))

	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if len(decoded) != 0 {
		t.Errorf("expected no boxes, got %d", len(decoded))
	}
}

// TestCodecHalfPrecision tests that compact records decode to within half
// precision of the encoded values
func TestCodecHalfPrecision(t *testing.T) {

	boxes := []tracker.BoundingBox{
		{X1: 10, Y1: 10, X2: 20, Y2: 20, Score: 0.9, TrackID: 3, TrackScore: 0.5},
		{X1: 100.5, Y1: 200.25, X2: 300, Y2: 400, Score: 0.75, TrackID: 99},
	}

	decoded, err := DecodeBoxes(EncodeBoxesHalf(boxes))

	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if len(decoded) != len(boxes) {
		t.Fatalf("expected %d boxes, got %d", len(boxes), len(decoded))
	}

	// float16 has roughly 3 decimal digits of precision at these
	// magnitudes
	const tolerance = 0.5

	for i, box := range boxes {
		got := decoded[i]

		if !almostEqual(got.X1, box.X1, tolerance) ||
			!almostEqual(got.Y1, box.Y1, tolerance) ||
			!almostEqual(got.X2, box.X2, tolerance) ||
			!almostEqual(got.Y2, box.Y2, tolerance) ||
			!almostEqual(got.Score, box.Score, 1e-2) ||
			!almostEqual(got.TrackScore, box.TrackScore, 1e-2) {
			t.Errorf("box %d: expected approximately %+v, got %+v", i, box, got)
		}

		if got.TrackID != box.TrackID {
			t.Errorf("box %d: expected track ID %d, got %d", i, box.TrackID, got.TrackID)
		}
	}
}

// TestDecodeMalformed tests that malformed and truncated buffers fail with
// an error instead of reading past the buffer bounds
func TestDecodeMalformed(t *testing.T) {

	valid := EncodeBoxes([]tracker.BoundingBox{
		{X1: 10, Y1: 10, X2: 20, Y2: 20, Score: 0.9},
	})

	tests := []struct {
		name string
		buf  []byte
	}{
		{
			name: "empty buffer",
			buf:  nil,
		},
		{
			name: "truncated header",
			buf:  valid[:8],
		},
		{
			name: "truncated record",
			buf:  valid[:len(valid)-4],
		},
		{
			name: "count overstates records",
			buf: func() []byte {
				b := append([]byte(nil), valid...)
				// claim 1000 records
				b[0] = 0xE8
				b[1] = 0x03
				return b
			}(),
		},
		{
			name: "unknown record size",
			buf: func() []byte {
				b := append([]byte(nil), valid...)
				b[8] = 27
				return b
			}(),
		},
	}

	for _, tc := range tests {
		if _, err := DecodeBoxes(tc.buf); err == nil {
			t.Errorf("%s: expected decode error", tc.name)
		}
	}
}
