package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	scanner "github.com/mindis/scanner-1"
	"github.com/mindis/scanner-1/render"
	"github.com/mindis/scanner-1/sot"
	"github.com/mindis/scanner-1/tracker"
	"gocv.io/x/gocv"
)

// Demo runs per frame detections from a file through the tracking evaluator
// and writes an annotated copy of the video
type Demo struct {
	// vidBuffer buffers the video frames into memory
	vidBuffer []gocv.Mat
	// detections holds the detector boxes for each frame of the video
	detections [][]tracker.BoundingBox
	// eval associates detections with tracks across frames
	eval *scanner.Evaluator
}

// NewDemo returns an instance of Demo for the given video and detections
// file
func NewDemo(vidFile, detFile string, params scanner.Params) (*Demo, error) {

	d := &Demo{}

	err := d.bufferVideo(vidFile)

	if err != nil {
		return nil, fmt.Errorf("error buffering video: %w", err)
	}

	d.detections, err = loadDetections(detFile, len(d.vidBuffer))

	if err != nil {
		return nil, fmt.Errorf("error loading detections: %w", err)
	}

	d.eval, err = scanner.NewEvaluator(scanner.DeviceCPU, 0, params)

	if err != nil {
		return nil, fmt.Errorf("error creating evaluator: %w", err)
	}

	err = d.eval.Configure(scanner.VideoMeta{
		Width:  d.vidBuffer[0].Cols(),
		Height: d.vidBuffer[0].Rows(),
	})

	if err != nil {
		return nil, fmt.Errorf("error configuring evaluator: %w", err)
	}

	return d, nil
}

// bufferVideo reads in the video frames and saves them to a buffer
func (d *Demo) bufferVideo(vidFile string) error {

	// open handle to read frames of video file
	video, err := gocv.VideoCaptureFile(vidFile)

	if err != nil {
		return err
	}

	defer video.Close()

	d.vidBuffer = make([]gocv.Mat, 0)

	for {
		img := gocv.NewMat()

		// read the next frame from the video
		if ok := video.Read(&img); !ok {
			// reached last video frame
			break
		}

		if img.Empty() {
			continue
		}

		d.vidBuffer = append(d.vidBuffer, img)
	}

	if len(d.vidBuffer) == 0 {
		return fmt.Errorf("video contains no frames")
	}

	return nil
}

// loadDetections parses a detections file with one line per detection in
// the format "frame x1 y1 x2 y2 score".  Frames with no lines have no
// detections
func loadDetections(detFile string, frameCnt int) ([][]tracker.BoundingBox, error) {

	f, err := os.Open(detFile)

	if err != nil {
		return nil, err
	}

	defer f.Close()

	dets := make([][]tracker.BoundingBox, frameCnt)

	sc := bufio.NewScanner(f)
	lineNum := 0

	for sc.Scan() {
		lineNum++
		line := strings.TrimSpace(sc.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)

		if len(fields) != 6 {
			return nil, fmt.Errorf("line %d: expected 6 fields, got %d",
				lineNum, len(fields))
		}

		frameNum, err := strconv.Atoi(fields[0])

		if err != nil {
			return nil, fmt.Errorf("line %d: invalid frame number: %w", lineNum, err)
		}

		if frameNum < 0 || frameNum >= frameCnt {
			return nil, fmt.Errorf("line %d: frame %d outside video of %d frames",
				lineNum, frameNum, frameCnt)
		}

		vals := make([]float32, 5)

		for i, field := range fields[1:] {
			v, err := strconv.ParseFloat(field, 32)

			if err != nil {
				return nil, fmt.Errorf("line %d: invalid value %q: %w",
					lineNum, field, err)
			}

			vals[i] = float32(v)
		}

		dets[frameNum] = append(dets[frameNum],
			tracker.NewBoundingBox(vals[0], vals[1], vals[2], vals[3], vals[4]))
	}

	return dets, sc.Err()
}

// Run processes every frame through the evaluator and writes the annotated
// video to outFile
func (d *Demo) Run(outFile string) error {

	width := d.vidBuffer[0].Cols()
	height := d.vidBuffer[0].Rows()

	writer, err := gocv.VideoWriterFile(outFile, "mp4v", 30,
		width, height, true)

	if err != nil {
		return fmt.Errorf("error creating video writer: %w", err)
	}

	defer writer.Close()

	for frameNum, img := range d.vidBuffer {

		// convert colorspace to the RGB888 layout the evaluator consumes
		rgbImg := gocv.NewMat()
		gocv.CvtColor(img, &rgbImg, gocv.ColorBGRToRGB)

		frame, err := tracker.NewFrame(width, height, rgbImg.ToBytes())
		rgbImg.Close()

		if err != nil {
			return fmt.Errorf("frame %d: %w", frameNum, err)
		}

		observed, generated, err := d.eval.Process(frame, d.detections[frameNum])

		if err != nil {
			return fmt.Errorf("frame %d: %w", frameNum, err)
		}

		log.Printf("frame %d: %d detections, %d tracked boxes",
			frameNum, len(observed), len(generated))

		// annotate a copy of the frame with the tracked boxes
		resImg := render.FrameImage(frame)
		render.TrackBoxes(resImg, generated, 2)

		outMat, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC4,
			resImg.Pix)

		if err != nil {
			return fmt.Errorf("frame %d: %w", frameNum, err)
		}

		bgrMat := gocv.NewMat()
		gocv.CvtColor(outMat, &bgrMat, gocv.ColorRGBAToBGR)
		outMat.Close()

		err = writer.Write(bgrMat)
		bgrMat.Close()

		if err != nil {
			return fmt.Errorf("frame %d: %w", frameNum, err)
		}
	}

	log.Printf("wrote annotated video to %s", outFile)

	return nil
}

// Close frees the buffered video frames
func (d *Demo) Close() {
	for _, img := range d.vidBuffer {
		img.Close()
	}
}

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	vidFile := flag.String("v", "../data/palace.mp4", "Video file to run tracking on")
	detFile := flag.String("d", "../data/palace-dets.txt", "Detections file, one line per detection: frame x1 y1 x2 y2 score")
	outFile := flag.String("o", "tracked.mp4", "Output video file to write annotated frames to")
	iouThresh := flag.Float64("i", float64(tracker.DefaultIoUThreshold), "IOU threshold for associating a detection with a track")
	scoreThresh := flag.Float64("s", float64(tracker.DefaultTrackScoreThreshold), "Tracker confidence threshold below which a track is dropped")
	window := flag.Int("w", tracker.DefaultUndetectedWindow, "Number of frames a track survives without a matching detection")
	useKalman := flag.Bool("k", false, "Use the Kalman motion tracker instead of NCC template matching")

	flag.Parse()

	params := scanner.Params{
		IoUThreshold:        float32(*iouThresh),
		TrackScoreThreshold: float32(*scoreThresh),
		UndetectedWindow:    *window,
	}

	if *useKalman {
		params.TrackerFactory = sot.KalmanFactory()
	}

	demo, err := NewDemo(*vidFile, *detFile, params)

	if err != nil {
		log.Fatalf("Error creating demo: %v", err)
	}

	defer demo.Close()

	if err := demo.Run(*outFile); err != nil {
		log.Fatalf("Error running demo: %v", err)
	}
}
