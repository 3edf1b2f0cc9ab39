// Package transition renders the vertical wipe between two canvas-sized
// images.
//
// A Segment is a lazy, finite and restartable sequence of frames. Frame k
// shows the current image shifted up by k*height/n pixels with the next image
// directly below it, so after n frames the next image has almost reached the
// top. Every frame is a freshly allocated opaque *image.RGBA and the output is
// bit-exact for the same inputs.
package transition

import (
	"errors"
	"fmt"
	"image"
	"iter"

	"golang.org/x/image/draw"
)

// DefaultFrames is the number of frames rendered per image.
const DefaultFrames = 40

var ErrSizeMismatch = errors.New("transition: images differ in size")

// Segment is the wipe from one image to the next.
type Segment struct {
	current *image.RGBA
	next    *image.RGBA
	frames  int
}

// NewSegment pairs current and next, which must have the same size. For the
// last image of a sequence pass the same image as both arguments; the wipe
// then scrolls the image into a copy of itself.
func NewSegment(current, next *image.RGBA, frames int) (*Segment, error) {
	if current == nil || next == nil {
		return nil, errors.New("transition: nil image")
	}
	if frames <= 0 {
		return nil, fmt.Errorf("transition: frame count must be positive, got %d", frames)
	}
	cb, nb := current.Bounds(), next.Bounds()
	if cb.Dx() != nb.Dx() || cb.Dy() != nb.Dy() {
		return nil, fmt.Errorf("%w: %dx%d vs %dx%d", ErrSizeMismatch, cb.Dx(), cb.Dy(), nb.Dx(), nb.Dy())
	}
	if cb.Empty() {
		return nil, errors.New("transition: empty image")
	}
	return &Segment{
		current: flatten(current),
		next:    flatten(next),
		frames:  frames,
	}, nil
}

// Len returns the number of frames in the segment.
func (s *Segment) Len() int { return s.frames }

// Size returns the frame width and height.
func (s *Segment) Size() (w, h int) {
	b := s.current.Bounds()
	return b.Dx(), b.Dy()
}

// Offsets returns the vertical positions of the current and next image in
// frame k. Division truncates toward zero.
func Offsets(k, height, frames int) (cur, next int) {
	shift := k * height / frames
	return -shift, height - shift
}

// Frame renders frame k. It panics if k is outside [0, Len()).
func (s *Segment) Frame(k int) *image.RGBA {
	if k < 0 || k >= s.frames {
		panic(fmt.Sprintf("transition: frame %d out of range [0,%d)", k, s.frames))
	}
	w, h := s.Size()
	cy, ny := Offsets(k, h, s.frames)

	dst := newCanvas(w, h)
	draw.Draw(dst, image.Rect(0, cy, w, cy+h), s.current, s.current.Bounds().Min, draw.Src)
	draw.Draw(dst, image.Rect(0, ny, w, ny+h), s.next, s.next.Bounds().Min, draw.Src)
	return dst
}

// Frames yields (k, frame) for every k in order. The sequence can be ranged
// over any number of times; stopping early renders nothing further.
func (s *Segment) Frames() iter.Seq2[int, *image.RGBA] {
	return func(yield func(int, *image.RGBA) bool) {
		for k := 0; k < s.frames; k++ {
			if !yield(k, s.Frame(k)) {
				return
			}
		}
	}
}
