package scanner

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/mindis/scanner-1/tracker"
	"github.com/x448/float16"
)

const (
	// BoxRecordSize is the byte size of a full precision bounding box
	// record: x1, y1, x2, y2, score as float32, track_id as int32 and
	// track_score as float32
	BoxRecordSize = 28

	// BoxRecordSizeHalf is the byte size of a compact record with the
	// float fields packed as half precision, as emitted by embedded
	// detectors with constrained output bandwidth
	BoxRecordSizeHalf = 16

	// codecHeaderSize is the uint64 record count plus the int32 per
	// record byte size
	codecHeaderSize = 12
)

// EncodeBoxes serialises a sequence of bounding boxes using the length
// prefixed wire layout: an 8 byte unsigned record count, a 4 byte signed
// per record byte size, then that many fixed size records.  Encoding is
// lossless, DecodeBoxes returns the original boxes unchanged
func EncodeBoxes(boxes []tracker.BoundingBox) []byte {

	buf := make([]byte, codecHeaderSize+len(boxes)*BoxRecordSize)

	binary.LittleEndian.PutUint64(buf[0:], uint64(len(boxes)))
	binary.LittleEndian.PutUint32(buf[8:], uint32(BoxRecordSize))

	offset := codecHeaderSize

	for _, box := range boxes {
		binary.LittleEndian.PutUint32(buf[offset:], math.Float32bits(box.X1))
		binary.LittleEndian.PutUint32(buf[offset+4:], math.Float32bits(box.Y1))
		binary.LittleEndian.PutUint32(buf[offset+8:], math.Float32bits(box.X2))
		binary.LittleEndian.PutUint32(buf[offset+12:], math.Float32bits(box.Y2))
		binary.LittleEndian.PutUint32(buf[offset+16:], math.Float32bits(box.Score))
		binary.LittleEndian.PutUint32(buf[offset+20:], uint32(box.TrackID))
		binary.LittleEndian.PutUint32(buf[offset+24:], math.Float32bits(box.TrackScore))
		offset += BoxRecordSize
	}

	return buf
}

// EncodeBoxesHalf serialises a sequence of bounding boxes using compact
// half precision records.  Unlike EncodeBoxes this encoding is lossy, float
// fields are rounded to the nearest representable float16 value
func EncodeBoxesHalf(boxes []tracker.BoundingBox) []byte {

	buf := make([]byte, codecHeaderSize+len(boxes)*BoxRecordSizeHalf)

	binary.LittleEndian.PutUint64(buf[0:], uint64(len(boxes)))
	binary.LittleEndian.PutUint32(buf[8:], uint32(BoxRecordSizeHalf))

	offset := codecHeaderSize

	for _, box := range boxes {
		binary.LittleEndian.PutUint16(buf[offset:], float16.Fromfloat32(box.X1).Bits())
		binary.LittleEndian.PutUint16(buf[offset+2:], float16.Fromfloat32(box.Y1).Bits())
		binary.LittleEndian.PutUint16(buf[offset+4:], float16.Fromfloat32(box.X2).Bits())
		binary.LittleEndian.PutUint16(buf[offset+6:], float16.Fromfloat32(box.Y2).Bits())
		binary.LittleEndian.PutUint16(buf[offset+8:], float16.Fromfloat32(box.Score).Bits())
		binary.LittleEndian.PutUint32(buf[offset+10:], uint32(box.TrackID))
		binary.LittleEndian.PutUint16(buf[offset+14:], float16.Fromfloat32(box.TrackScore).Bits())
		offset += BoxRecordSizeHalf
	}

	return buf
}

// DecodeBoxes deserialises a length prefixed bounding box buffer.  Both the
// full precision and the compact half precision record sizes are accepted.
// Malformed or truncated buffers fail with a descriptive error, the decoder
// never reads past the buffer bounds
func DecodeBoxes(buf []byte) ([]tracker.BoundingBox, error) {

	if len(buf) < codecHeaderSize {
		return nil, fmt.Errorf("detection buffer is %d bytes, shorter than the %d byte header",
			len(buf), codecHeaderSize)
	}

	count := binary.LittleEndian.Uint64(buf[0:])
	size := int32(binary.LittleEndian.Uint32(buf[8:]))

	if size != BoxRecordSize && size != BoxRecordSizeHalf {
		return nil, fmt.Errorf("unknown bounding box record size %d, expected %d or %d",
			size, BoxRecordSize, BoxRecordSizeHalf)
	}

	payload := uint64(len(buf) - codecHeaderSize)

	if count > payload/uint64(size) {
		return nil, fmt.Errorf("detection buffer truncated: %d records of %d bytes declared but only %d payload bytes present",
			count, size, payload)
	}

	boxes := make([]tracker.BoundingBox, 0, count)
	offset := codecHeaderSize

	for i := uint64(0); i < count; i++ {

		var box tracker.BoundingBox

		if size == BoxRecordSize {
			box = tracker.BoundingBox{
				X1:         math.Float32frombits(binary.LittleEndian.Uint32(buf[offset:])),
				Y1:         math.Float32frombits(binary.LittleEndian.Uint32(buf[offset+4:])),
				X2:         math.Float32frombits(binary.LittleEndian.Uint32(buf[offset+8:])),
				Y2:         math.Float32frombits(binary.LittleEndian.Uint32(buf[offset+12:])),
				Score:      math.Float32frombits(binary.LittleEndian.Uint32(buf[offset+16:])),
				TrackID:    int32(binary.LittleEndian.Uint32(buf[offset+20:])),
				TrackScore: math.Float32frombits(binary.LittleEndian.Uint32(buf[offset+24:])),
			}
		} else {
			box = tracker.BoundingBox{
				X1:         f16LookupTable[binary.LittleEndian.Uint16(buf[offset:])],
				Y1:         f16LookupTable[binary.LittleEndian.Uint16(buf[offset+2:])],
				X2:         f16LookupTable[binary.LittleEndian.Uint16(buf[offset+4:])],
				Y2:         f16LookupTable[binary.LittleEndian.Uint16(buf[offset+6:])],
				Score:      f16LookupTable[binary.LittleEndian.Uint16(buf[offset+8:])],
				TrackID:    int32(binary.LittleEndian.Uint32(buf[offset+10:])),
				TrackScore: f16LookupTable[binary.LittleEndian.Uint16(buf[offset+14:])],
			}
		}

		boxes = append(boxes, box)
		offset += int(size)
	}

	return boxes, nil
}
