// Package generator turns a folder of numbered images into a wipe-transition
// video.
//
// The pipeline is strictly sequential: the folder is loaded once, then every
// image is paired with its successor (the last one with itself) and the
// frames of each pair are streamed to a [Sink] in order. Frames are never
// buffered beyond the one being written.
package generator

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/kataras/golog"

	"github.com/xob0t/GoWipe/pkg/imageset"
	"github.com/xob0t/GoWipe/pkg/transition"
)

var logger = golog.Child("[generator]")

// SetLogLevel sets the level of the package logger. Child loggers do not
// follow golog.SetLevel.
func SetLogLevel(level string) { logger.SetLevel(level) }

// Format selects the output container.
type Format string

const (
	FormatMP4 Format = "mp4" // H.264 MP4 through an ffmpeg process (default).
	FormatAVI Format = "avi" // Motion-JPEG AVI written in-process.
	FormatPNG Format = "png" // One PNG per frame in a directory.
)

// Config holds generation parameters.
type Config struct {
	FramesPerImage int    // Default: 40.
	FPS            int    // Default: 5.
	Format         Format // Default: "mp4".
	OutputName     string // Inside the input folder. Default: "output.<format>", "output_frames" for png.
	JPEGQuality    int    // AVI only. Default: 95.
	FFmpegPath     string // MP4 only. Default: "ffmpeg".
	Verbose        bool   // Tee ffmpeg stderr to the terminal.

	// Progress, when set, is called after every frame the sink accepts.
	Progress func(done, total int)
}

// DefaultConfig returns the reference settings: 40 frames per image at 5 fps
// into output.mp4.
func DefaultConfig() Config {
	return Config{
		FramesPerImage: transition.DefaultFrames,
		FPS:            5,
		Format:         FormatMP4,
		JPEGQuality:    95,
		FFmpegPath:     "ffmpeg",
	}
}

// Validate checks ranges and that the output name stays inside the input
// folder without looking like an input image.
func (c *Config) Validate() error {
	if c.FramesPerImage <= 0 {
		return fmt.Errorf("%w: frames per image must be positive, got %d", ErrInvalidConfig, c.FramesPerImage)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("%w: fps must be positive, got %d", ErrInvalidConfig, c.FPS)
	}
	switch c.Format {
	case FormatMP4, FormatAVI, FormatPNG:
	default:
		return fmt.Errorf("%w: invalid format %q (use mp4, avi or png)", ErrInvalidConfig, c.Format)
	}
	if c.Format == FormatAVI && (c.JPEGQuality < 1 || c.JPEGQuality > 100) {
		return fmt.Errorf("%w: jpeg quality must be 1-100, got %d", ErrInvalidConfig, c.JPEGQuality)
	}
	if c.Format == FormatMP4 && strings.TrimSpace(c.FFmpegPath) == "" {
		return fmt.Errorf("%w: ffmpeg path is empty", ErrInvalidConfig)
	}
	if name := c.OutputName; name != "" {
		if name != filepath.Base(name) || name == "." || name == ".." {
			return fmt.Errorf("%w: output name %q must be a plain file name", ErrInvalidConfig, name)
		}
		if imageset.HasImageExt(name) {
			return fmt.Errorf("%w: output name %q would be picked up as an input image", ErrInvalidConfig, name)
		}
	}
	return nil
}

// OutputPath returns where the output for dir is written.
func (c *Config) OutputPath(dir string) string {
	name := c.OutputName
	if name == "" {
		if c.Format == FormatPNG {
			name = "output_frames"
		} else {
			name = "output." + string(c.Format)
		}
	}
	return filepath.Join(dir, name)
}

// Result describes a finished video.
type Result struct {
	Path    string  `json:"path"`
	Format  Format  `json:"format"`
	Images  int     `json:"images"`
	Frames  int     `json:"frames"`
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	FPS     int     `json:"fps"`
	Seconds float64 `json:"seconds"`
}

// openSink is replaced in tests.
var openSink = OpenSink

// Generate loads dir, renders every transition and writes the video into
// dir. Nothing is created when loading fails. Once the sink is open it is
// closed on every path; output written before a failure is left in place.
func Generate(ctx context.Context, dir string, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	set, err := imageset.Load(dir)
	if err != nil {
		return nil, err
	}
	logger.Infof("loaded %d images from %s, canvas %s", set.Len(), set.Dir, set.Canvas)

	out := cfg.OutputPath(set.Dir)
	sink, err := openSink(ctx, cfg, out, set.Canvas.Width, set.Canvas.Height)
	if err != nil {
		return nil, err
	}

	if cfg.Progress != nil {
		sink = &progressSink{Sink: sink, total: set.Len() * cfg.FramesPerImage, report: cfg.Progress}
	}

	frames, err := Encode(ctx, set, sink, cfg.FramesPerImage)
	if cerr := sink.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		logger.Errorf("%s: stopped after %d frames: %v", out, frames, err)
		return nil, err
	}

	res := &Result{
		Path:    out,
		Format:  cfg.Format,
		Images:  set.Len(),
		Frames:  frames,
		Width:   set.Canvas.Width,
		Height:  set.Canvas.Height,
		FPS:     cfg.FPS,
		Seconds: float64(frames) / float64(cfg.FPS),
	}
	logger.Infof("wrote %s: %d frames, %.1fs", out, res.Frames, res.Seconds)
	return res, nil
}

// Encode streams every segment of set to sink and returns the number of
// frames written. Both images of a segment are decoded and resized before
// its first frame is emitted, so a decode failure never leaves a partial
// segment. The caller owns sink and must close it.
func Encode(ctx context.Context, set *imageset.Set, sink Sink, framesPerImage int) (int, error) {
	w, h := set.Canvas.Width, set.Canvas.Height
	written := 0

	var next *image.RGBA
	for i, asset := range set.Assets {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		cur := next
		if cur == nil {
			var err error
			if cur, err = prepare(asset, w, h); err != nil {
				return written, err
			}
		}
		if i+1 < len(set.Assets) {
			var err error
			if next, err = prepare(set.Assets[i+1], w, h); err != nil {
				return written, err
			}
		} else {
			next = cur
		}

		seg, err := transition.NewSegment(cur, next, framesPerImage)
		if err != nil {
			return written, err
		}
		logger.Debugf("segment %d/%d: %s", i+1, len(set.Assets), asset.Name)

		for _, frame := range seg.Frames() {
			if err := ctx.Err(); err != nil {
				return written, err
			}
			if err := sink.WriteFrame(frame); err != nil {
				return written, err
			}
			written++
		}
	}
	return written, nil
}

// prepare decodes asset and scales it to the canvas.
func prepare(asset imageset.Asset, w, h int) (*image.RGBA, error) {
	img, err := asset.Decode()
	if err != nil {
		return nil, err
	}
	return transition.Resize(img, w, h), nil
}
