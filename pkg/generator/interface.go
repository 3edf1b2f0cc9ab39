// interface.go - The frame sink contract and sink selection.
package generator

import (
	"context"
	"fmt"
	"image"
)

// Sink consumes canvas-sized frames in order and writes them to one output.
// Close flushes and releases the output; it is safe to call more than once
// and must be called even after a WriteFrame error.
type Sink interface {
	WriteFrame(frame *image.RGBA) error
	Close() error
}

// OpenSink creates the output at path for cfg.Format. Every frame written to
// the returned sink must be w×h.
func OpenSink(ctx context.Context, cfg Config, path string, w, h int) (Sink, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: invalid frame size %dx%d", ErrInvalidConfig, w, h)
	}
	var (
		sink Sink
		err  error
	)
	switch cfg.Format {
	case FormatMP4:
		sink, err = newFFmpegSink(ctx, cfg, path, w, h)
	case FormatAVI:
		sink, err = newAVISink(path, w, h, cfg.FPS, cfg.JPEGQuality)
	case FormatPNG:
		sink, err = newPNGSink(path, w, h)
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", ErrInvalidConfig, cfg.Format)
	}
	if err != nil {
		return nil, err
	}
	return sink, nil
}

// checkFrame rejects frames that do not match the sink size.
func checkFrame(frame *image.RGBA, w, h int) error {
	if frame == nil {
		return fmt.Errorf("%w: nil frame", ErrEncodeWrite)
	}
	if b := frame.Bounds(); b.Dx() != w || b.Dy() != h {
		return fmt.Errorf("%w: frame is %dx%d, want %dx%d", ErrEncodeWrite, b.Dx(), b.Dy(), w, h)
	}
	return nil
}

var errClosed = fmt.Errorf("%w: sink is closed", ErrEncodeWrite)

// progressSink reports every accepted frame.
type progressSink struct {
	Sink
	done, total int
	report      func(done, total int)
}

func (p *progressSink) WriteFrame(frame *image.RGBA) error {
	if err := p.Sink.WriteFrame(frame); err != nil {
		return err
	}
	p.done++
	p.report(p.done, p.total)
	return nil
}
