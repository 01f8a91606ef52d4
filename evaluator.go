package scanner

import (
	"fmt"
	"log"

	"github.com/mindis/scanner-1/sot"
	"github.com/mindis/scanner-1/tracker"
)

// DeviceType selects the execution backend an evaluator runs on
type DeviceType int

const (
	// DeviceCPU runs the tracker on the CPU
	DeviceCPU DeviceType = iota
	// DeviceGPU is reserved, GPU tracker support is not implemented
	DeviceGPU
)

// String returns a readable name for the device type
func (d DeviceType) String() string {
	switch d {
	case DeviceCPU:
		return "CPU"
	case DeviceGPU:
		return "GPU"
	default:
		return fmt.Sprintf("unknown device type %d", int(d))
	}
}

// VideoMeta describes the video stream an evaluator session is bound to
type VideoMeta struct {
	// Width of each frame in pixels
	Width int
	// Height of each frame in pixels
	Height int
}

// Capabilities advertises what an evaluator factory supports
type Capabilities struct {
	// Device is the execution backend
	Device DeviceType
	// MaxDevices is the number of concurrent processing units supported
	MaxDevices int
	// WarmupSize is the number of warmup frames requested from the host
	// pipeline
	WarmupSize int
}

// Params holds the tunable tracking configuration shared by all tracks of a
// session
type Params struct {
	// IoUThreshold is the minimum IoU for associating a detection with an
	// existing track
	IoUThreshold float32
	// TrackScoreThreshold is the minimum tracker confidence needed to
	// retain a track after an update
	TrackScoreThreshold float32
	// UndetectedWindow is the maximum number of consecutive frames a track
	// may go without being redetected before eviction
	UndetectedWindow int
	// Matcher overrides the default first match association policy
	Matcher tracker.Matcher
	// TrackerFactory constructs the single object tracker owned by each
	// track.  Defaults to the NCC template tracker
	TrackerFactory tracker.ObjectTrackerFactory
}

// DefaultParams returns the default tracking configuration
func DefaultParams() Params {
	return Params{
		IoUThreshold:        tracker.DefaultIoUThreshold,
		TrackScoreThreshold: tracker.DefaultTrackScoreThreshold,
		UndetectedWindow:    tracker.DefaultUndetectedWindow,
	}
}

// FrameOutput holds the three output channels produced for one frame
type FrameOutput struct {
	// Image is the passthrough copy of the raw frame buffer
	Image []byte
	// Observed is the encoded observed detections channel, every input
	// detection annotated with the track ID assigned by a match
	Observed []byte
	// Generated is the encoded generated boxes channel, one entry per
	// track alive after this frame
	Generated []byte
}

// OutputNames returns the names of the three output channels in order
func OutputNames() []string {
	return []string{"image", "before_bboxes", "after_bboxes"}
}

// Evaluator is a per frame multi object tracking evaluator.  It owns the
// track store and every track within it for its whole running lifetime.  An
// evaluator handles one stream at a time, it is not safe for concurrent use
type Evaluator struct {
	// device is the execution backend
	device DeviceType
	// warmupCount is the number of warmup frames requested at construction
	warmupCount int
	// meta is the video stream the session is bound to
	meta VideoMeta
	// configured indicates Configure has been called
	configured bool
	// lifecycle drives association and track lifecycle over the store
	lifecycle *tracker.Lifecycle
}

// NewEvaluator returns a tracking evaluator for the given device.  Only the
// CPU backend is supported, selecting any other device is a fatal
// configuration error raised here rather than at evaluate time
func NewEvaluator(device DeviceType, warmupCount int, params Params) (*Evaluator, error) {

	if device != DeviceCPU {
		return nil, fmt.Errorf("%s tracker support not implemented", device)
	}

	if params.IoUThreshold == 0 {
		params.IoUThreshold = tracker.DefaultIoUThreshold
	}

	if params.TrackScoreThreshold == 0 {
		params.TrackScoreThreshold = tracker.DefaultTrackScoreThreshold
	}

	if params.UndetectedWindow == 0 {
		params.UndetectedWindow = tracker.DefaultUndetectedWindow
	}

	if params.TrackerFactory == nil {
		params.TrackerFactory = sot.NCCFactory()
	}

	lifecycle := tracker.NewLifecycle(params.TrackerFactory,
		params.IoUThreshold, params.TrackScoreThreshold,
		params.UndetectedWindow)

	if params.Matcher != nil {
		lifecycle.SetMatcher(params.Matcher)
	}

	return &Evaluator{
		device:      device,
		warmupCount: warmupCount,
		lifecycle:   lifecycle,
	}, nil
}

// Configure binds the evaluator session to the video stream dimensions.
// Tracks created afterwards snapshot these dimensions
func (e *Evaluator) Configure(meta VideoMeta) error {

	if meta.Width <= 0 || meta.Height <= 0 {
		return fmt.Errorf("invalid video dimensions %dx%d", meta.Width, meta.Height)
	}

	log.Printf("tracker configure %dx%d", meta.Width, meta.Height)

	e.meta = meta
	e.configured = true

	return nil
}

// Reset clears all tracks and restarts the track ID counter
func (e *Evaluator) Reset() {
	log.Printf("tracker reset")
	e.lifecycle.Reset()
}

// Store returns the track store owned by this evaluator
func (e *Evaluator) Store() *tracker.Store {
	return e.lifecycle.Store()
}

// Process runs one decoded frame and its detections through the tracker,
// returning the observed detections and generated boxes channels.  Callers
// working at the wire level should use Evaluate instead
func (e *Evaluator) Process(frame *tracker.Frame, detections []tracker.BoundingBox) (
	observed, generated []tracker.BoundingBox, err error) {

	if !e.configured {
		return nil, nil, fmt.Errorf("evaluator is not configured")
	}

	return e.lifecycle.Process(frame, detections)
}

// Evaluate processes an ordered batch of frames sequentially, with the
// track store persisting across frames within and across calls.  Each input
// pairs a raw RGB888 frame buffer with a length prefixed detection buffer,
// and yields the three output channels of FrameOutput
func (e *Evaluator) Evaluate(frames [][]byte, detections [][]byte) ([]FrameOutput, error) {

	if !e.configured {
		return nil, fmt.Errorf("evaluator is not configured")
	}

	if len(frames) != len(detections) {
		return nil, fmt.Errorf("got %d frame buffers but %d detection buffers",
			len(frames), len(detections))
	}

	outputs := make([]FrameOutput, 0, len(frames))

	for i := range frames {

		frame, err := tracker.NewFrame(e.meta.Width, e.meta.Height, frames[i])

		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}

		dets, err := DecodeBoxes(detections[i])

		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}

		observed, generated, err := e.lifecycle.Process(frame, dets)

		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}

		// passthrough copy of the raw frame buffer
		image := make([]byte, len(frames[i]))
		copy(image, frames[i])

		outputs = append(outputs, FrameOutput{
			Image:     image,
			Observed:  EncodeBoxes(observed),
			Generated: EncodeBoxes(generated),
		})
	}

	return outputs, nil
}

// Factory constructs evaluators for a device and advertises their
// capabilities to the host pipeline
type Factory struct {
	device      DeviceType
	warmupCount int
	params      Params
}

// NewFactory returns an evaluator factory for the given device.  The same
// device restriction as NewEvaluator applies, unsupported backends fail
// here
func NewFactory(device DeviceType, warmupCount int, params Params) (*Factory, error) {

	if device != DeviceCPU {
		return nil, fmt.Errorf("%s tracker support not implemented", device)
	}

	return &Factory{
		device:      device,
		warmupCount: warmupCount,
		params:      params,
	}, nil
}

// Capabilities returns the factory capabilities.  The tracker supports
// exactly one concurrent processing unit
func (f *Factory) Capabilities() Capabilities {
	return Capabilities{
		Device:     f.device,
		MaxDevices: 1,
		WarmupSize: f.warmupCount,
	}
}

// NewEvaluator constructs a new evaluator instance
func (f *Factory) NewEvaluator() (*Evaluator, error) {
	return NewEvaluator(f.device, f.warmupCount, f.params)
}
