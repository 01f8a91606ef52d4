package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/mindis/scanner-1/tracker"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// FrameImage converts a raw RGB888 frame buffer into an RGBA image for
// drawing
func FrameImage(frame *tracker.Frame) *image.RGBA {

	img := image.NewRGBA(image.Rect(0, 0, frame.Width, frame.Height))

	for y := 0; y < frame.Height; y++ {
		for x := 0; x < frame.Width; x++ {
			i := (y*frame.Width + x) * 3

			img.SetRGBA(x, y, color.RGBA{
				R: frame.Pixels[i],
				G: frame.Pixels[i+1],
				B: frame.Pixels[i+2],
				A: 255,
			})
		}
	}

	return img
}

// TrackBoxes renders the generated boxes of a frame onto the image.  Each
// box is outlined in its track's color with a label holding the track ID
// and tracker confidence
func TrackBoxes(img *image.RGBA, boxes []tracker.BoundingBox, lineThickness int) {

	for _, box := range boxes {

		useClr := TrackColor(box.TrackID)

		rect := image.Rect(int(box.X1), int(box.Y1), int(box.X2), int(box.Y2)).
			Intersect(img.Bounds())

		if rect.Empty() {
			continue
		}

		drawRect(img, rect, useClr, lineThickness)

		text := fmt.Sprintf("#%d %.2f", box.TrackID, box.TrackScore)

		// place the label above the box, or inside it when the box sits
		// at the top edge of the frame
		baseline := rect.Min.Y - 3

		if baseline < basicfont.Face7x13.Ascent {
			baseline = rect.Min.Y + basicfont.Face7x13.Ascent + lineThickness
		}

		drawLabel(img, text, rect.Min.X, baseline, useClr)
	}
}

// drawRect draws a hollow rectangle outline of the given thickness
func drawRect(img *image.RGBA, rect image.Rectangle, clr color.RGBA, thickness int) {

	for t := 0; t < thickness; t++ {

		r := rect.Inset(t)

		if r.Empty() {
			return
		}

		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, r.Min.Y, clr)
			img.SetRGBA(x, r.Max.Y-1, clr)
		}

		for y := r.Min.Y; y < r.Max.Y; y++ {
			img.SetRGBA(r.Min.X, y, clr)
			img.SetRGBA(r.Max.X-1, y, clr)
		}
	}
}

// drawLabel draws text with its baseline at the given position
func drawLabel(img *image.RGBA, text string, x, y int, clr color.RGBA) {

	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(clr),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}

	d.DrawString(text)
}
