// canvas.go - Common output size derived from the input images.
package imageset

import "fmt"

// Align is the block size both canvas dimensions are padded to.
const Align = 16

// Canvas is the size of every frame in the output video.
type Canvas struct {
	Width  int
	Height int
}

func (c Canvas) String() string {
	return fmt.Sprintf("%dx%d", c.Width, c.Height)
}

// CanvasFor averages the given sizes (integer-truncated) and pads each
// dimension up to the next multiple of Align. An already aligned mean still
// grows by a full Align.
func CanvasFor(sizes []Canvas) Canvas {
	if len(sizes) == 0 {
		return Canvas{}
	}
	var sumW, sumH int
	for _, s := range sizes {
		sumW += s.Width
		sumH += s.Height
	}
	meanW := sumW / len(sizes)
	meanH := sumH / len(sizes)
	return Canvas{
		Width:  meanW + Align - meanW%Align,
		Height: meanH + Align - meanH%Align,
	}
}
