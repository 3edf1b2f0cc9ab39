// ffmpeg.go - MP4 sink that pipes raw RGB frames into an ffmpeg process.
package generator

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// ffmpegSink feeds rgb24 frames to ffmpeg's stdin. ffmpeg encodes H.264
// (yuv420p) into an MP4 container at the configured frame rate.
type ffmpegSink struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr bytes.Buffer

	w, h   int
	rgb    []byte
	closed bool
	err    error
}

// ffmpegArgs returns the argument list (without the binary) for encoding
// w×h rgb24 frames from stdin into output.
func ffmpegArgs(output string, w, h, fps int) []string {
	rate := strconv.Itoa(fps)
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-y",
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-s", fmt.Sprintf("%dx%d", w, h),
		"-framerate", rate,
		"-i", "-",
		"-an",
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-r", rate,
		"-movflags", "+faststart",
		"-f", "mp4",
		output,
	}
}

func newFFmpegSink(ctx context.Context, cfg Config, output string, w, h int) (*ffmpegSink, error) {
	bin, err := exec.LookPath(cfg.FFmpegPath)
	if err != nil {
		return nil, encodeErr("find ffmpeg", err)
	}

	s := &ffmpegSink{w: w, h: h, rgb: make([]byte, w*h*3)}
	s.cmd = exec.CommandContext(ctx, bin, ffmpegArgs(output, w, h, cfg.FPS)...)
	if cfg.Verbose {
		s.cmd.Stderr = io.MultiWriter(&s.stderr, os.Stderr)
	} else {
		s.cmd.Stderr = &s.stderr
	}
	s.stdin, err = s.cmd.StdinPipe()
	if err != nil {
		return nil, encodeErr("ffmpeg stdin", err)
	}
	if err := s.cmd.Start(); err != nil {
		return nil, encodeErr("start ffmpeg", err)
	}
	logger.Debugf("started %s %s", bin, strings.Join(s.cmd.Args[1:], " "))
	return s, nil
}

// WriteFrame converts frame to packed RGB and writes it to ffmpeg.
func (s *ffmpegSink) WriteFrame(frame *image.RGBA) error {
	if s.closed {
		return errClosed
	}
	if s.err != nil {
		return s.err
	}
	if err := checkFrame(frame, s.w, s.h); err != nil {
		return err
	}

	b := frame.Bounds()
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := frame.Pix[frame.PixOffset(b.Min.X, y):]
		for x := 0; x < s.w; x++ {
			s.rgb[i] = row[x*4]
			s.rgb[i+1] = row[x*4+1]
			s.rgb[i+2] = row[x*4+2]
			i += 3
		}
	}

	if _, err := s.stdin.Write(s.rgb); err != nil {
		s.err = encodeErr("write ffmpeg", err)
		return s.err
	}
	return nil
}

// Close ends the input stream and waits for ffmpeg to finalize the file.
func (s *ffmpegSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	cerr := s.stdin.Close()
	if err := s.cmd.Wait(); err != nil {
		return encodeErr("ffmpeg"+s.stderrSuffix(), err)
	}
	if cerr != nil {
		return encodeErr("close ffmpeg stdin", cerr)
	}
	return nil
}

// stderrSuffix returns the last line ffmpeg printed, for error messages.
// It must only be called after Wait.
func (s *ffmpegSink) stderrSuffix() string {
	msg := strings.TrimSpace(s.stderr.String())
	if msg == "" {
		return ""
	}
	if i := strings.LastIndexByte(msg, '\n'); i >= 0 {
		msg = msg[i+1:]
	}
	return " (" + msg + ")"
}
