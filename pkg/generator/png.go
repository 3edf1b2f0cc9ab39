// png.go - Frame-per-file PNG sink for inspecting rendered frames.
package generator

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
)

// pngSink writes frame_000001.png, frame_000002.png, ... into a directory.
type pngSink struct {
	dir    string
	w, h   int
	n      int
	closed bool
}

func newPNGSink(dir string, w, h int) (*pngSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, encodeErr("create "+dir, err)
	}
	return &pngSink{dir: dir, w: w, h: h}, nil
}

// FrameName returns the file name of the n-th frame (1-based).
func FrameName(n int) string {
	return fmt.Sprintf("frame_%06d.png", n)
}

func (s *pngSink) WriteFrame(frame *image.RGBA) error {
	if s.closed {
		return errClosed
	}
	if err := checkFrame(frame, s.w, s.h); err != nil {
		return err
	}
	s.n++
	return writePNG(filepath.Join(s.dir, FrameName(s.n)), frame)
}

func (s *pngSink) Close() error {
	s.closed = true
	return nil
}

// writePNG encodes img to a PNG file at the given path.
func writePNG(output string, img image.Image) error {
	f, err := os.Create(output)
	if err != nil {
		return encodeErr("create "+output, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return encodeErr("encode PNG", err)
	}
	if err := f.Close(); err != nil {
		return encodeErr("close "+output, err)
	}
	return nil
}
