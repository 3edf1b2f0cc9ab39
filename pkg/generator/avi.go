// avi.go - Pure Go Motion JPEG (MJPEG) AVI sink.
// Frames are JPEG-encoded and appended to the movi list as they arrive; the
// idx1 index is written on Close and the header is rewritten with the final
// counts. No external tools are required.
package generator

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"math"
	"os"
)

const (
	aviHdrlSize   = 4 + 64 + 124 // "hdrl" + avih chunk + strl list
	aviHeaderSize = 12 + 8 + aviHdrlSize + 12
	aviKeyframe   = 0x10 // AVIIF_KEYFRAME
	aviHasIndex   = 0x10 // AVIF_HASINDEX
)

// aviHeader is everything before the first frame chunk.
type aviHeader struct {
	width, height uint32
	fps           uint32
	frames        uint32
	maxChunk      uint32 // largest JPEG payload
	moviSize      uint32 // "movi" + frame chunks
}

// riffSize is the RIFF payload size once idx1 is written.
func (h aviHeader) riffSize() uint64 {
	return 4 + (8 + aviHdrlSize) + (8 + uint64(h.moviSize)) + 8 + uint64(h.frames)*16
}

func (h aviHeader) bytes() []byte {
	buf := new(bytes.Buffer)
	buf.Grow(aviHeaderSize)

	writeFourCC := func(s string) { buf.WriteString(s) }
	writeUint32 := func(v uint32) { binary.Write(buf, binary.LittleEndian, v) }
	writeUint16 := func(v uint16) { binary.Write(buf, binary.LittleEndian, v) }

	// === RIFF Header ===
	writeFourCC("RIFF")
	writeUint32(uint32(h.riffSize()))
	writeFourCC("AVI ")

	// === hdrl LIST ===
	writeFourCC("LIST")
	writeUint32(aviHdrlSize)
	writeFourCC("hdrl")

	// === avih (Main AVI Header) ===
	writeFourCC("avih")
	writeUint32(56)
	writeUint32(1000000 / h.fps) // microseconds per frame
	writeUint32(h.maxChunk * h.fps)
	writeUint32(0) // padding granularity
	writeUint32(aviHasIndex)
	writeUint32(h.frames)
	writeUint32(0) // initial frames
	writeUint32(1) // streams
	writeUint32(h.maxChunk)
	writeUint32(h.width)
	writeUint32(h.height)
	for i := 0; i < 4; i++ {
		writeUint32(0) // reserved
	}

	// === strl LIST ===
	writeFourCC("LIST")
	writeUint32(116) // strh(64) + strf(48) + 4
	writeFourCC("strl")

	// === strh (Stream Header) ===
	writeFourCC("strh")
	writeUint32(56)
	writeFourCC("vids")
	writeFourCC("MJPG")
	writeUint32(0) // flags
	writeUint16(0) // priority
	writeUint16(0) // language
	writeUint32(0) // initial frames
	writeUint32(1) // scale
	writeUint32(h.fps)
	writeUint32(0) // start
	writeUint32(h.frames)
	writeUint32(h.maxChunk)
	writeUint32(0) // quality
	writeUint32(0) // sample size
	writeUint16(0) // left
	writeUint16(0) // top
	writeUint16(uint16(h.width))
	writeUint16(uint16(h.height))

	// === strf (BITMAPINFOHEADER) ===
	writeFourCC("strf")
	writeUint32(40)
	writeUint32(40)
	writeUint32(h.width)
	writeUint32(h.height)
	writeUint16(1)  // planes
	writeUint16(24) // bit count
	writeFourCC("MJPG")
	writeUint32(h.width * h.height * 3)
	writeUint32(0) // x pels per meter
	writeUint32(0) // y pels per meter
	writeUint32(0) // colors used
	writeUint32(0) // colors important

	// === movi LIST ===
	writeFourCC("LIST")
	writeUint32(h.moviSize)
	writeFourCC("movi")

	return buf.Bytes()
}

type aviIndexEntry struct {
	offset uint32 // from the "movi" FourCC
	size   uint32
}

// aviSink streams MJPEG frames into an AVI file. All sizes are 32-bit, so a
// frame that would push the file past 4 GiB is rejected.
type aviSink struct {
	f       *os.File
	bw      *bufio.Writer
	jpegBuf bytes.Buffer
	opts    jpeg.Options

	hdr   aviHeader
	index []aviIndexEntry

	closed bool
}

var errAVITooLarge = errors.New("avi would exceed 4 GiB")

func newAVISink(output string, w, h, fps, quality int) (*aviSink, error) {
	if fps <= 0 {
		return nil, fmt.Errorf("%w: fps must be positive, got %d", ErrInvalidConfig, fps)
	}
	f, err := os.Create(output)
	if err != nil {
		return nil, encodeErr("create "+output, err)
	}
	s := &aviSink{
		f:    f,
		bw:   bufio.NewWriterSize(f, 1<<20),
		opts: jpeg.Options{Quality: quality},
		hdr: aviHeader{
			width:    uint32(w),
			height:   uint32(h),
			fps:      uint32(fps),
			moviSize: 4,
		},
	}
	if _, err := s.bw.Write(s.hdr.bytes()); err != nil {
		f.Close()
		return nil, encodeErr("write avi header", err)
	}
	return s, nil
}

// WriteFrame encodes frame as JPEG and appends it as a "00dc" chunk.
func (s *aviSink) WriteFrame(frame *image.RGBA) error {
	if s.closed {
		return errClosed
	}
	if err := checkFrame(frame, int(s.hdr.width), int(s.hdr.height)); err != nil {
		return err
	}

	s.jpegBuf.Reset()
	if err := jpeg.Encode(&s.jpegBuf, frame, &s.opts); err != nil {
		return encodeErr("encode JPEG", err)
	}
	size := uint32(s.jpegBuf.Len())
	padded := size + size%2
	if s.hdr.riffSize()+8+uint64(padded)+16 > math.MaxUint32 {
		return encodeErr("write avi frame", errAVITooLarge)
	}

	var chunk [8]byte
	copy(chunk[:4], "00dc")
	binary.LittleEndian.PutUint32(chunk[4:], size)
	if _, err := s.bw.Write(chunk[:]); err != nil {
		return encodeErr("write avi frame", err)
	}
	if _, err := s.bw.Write(s.jpegBuf.Bytes()); err != nil {
		return encodeErr("write avi frame", err)
	}
	// Pad to even boundary
	if padded != size {
		if err := s.bw.WriteByte(0); err != nil {
			return encodeErr("write avi frame", err)
		}
	}

	s.index = append(s.index, aviIndexEntry{offset: s.hdr.moviSize, size: size})
	s.hdr.moviSize += 8 + padded
	s.hdr.frames++
	s.hdr.maxChunk = max(s.hdr.maxChunk, size)
	return nil
}

// Close writes the index, rewrites the header with the final counts and
// closes the file.
func (s *aviSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	err := s.finish()
	if cerr := s.f.Close(); err == nil && cerr != nil {
		err = encodeErr("close avi", cerr)
	}
	return err
}

func (s *aviSink) finish() error {
	var entry [16]byte
	copy(entry[:4], "idx1")
	binary.LittleEndian.PutUint32(entry[4:8], uint32(len(s.index))*16)
	if _, err := s.bw.Write(entry[:8]); err != nil {
		return encodeErr("write avi index", err)
	}
	for _, e := range s.index {
		copy(entry[:4], "00dc")
		binary.LittleEndian.PutUint32(entry[4:8], aviKeyframe)
		binary.LittleEndian.PutUint32(entry[8:12], e.offset)
		binary.LittleEndian.PutUint32(entry[12:16], e.size)
		if _, err := s.bw.Write(entry[:]); err != nil {
			return encodeErr("write avi index", err)
		}
	}
	if err := s.bw.Flush(); err != nil {
		return encodeErr("flush avi", err)
	}
	if _, err := s.f.WriteAt(s.hdr.bytes(), 0); err != nil {
		return encodeErr("rewrite avi header", err)
	}
	if err := s.f.Sync(); err != nil {
		return encodeErr("sync avi", err)
	}
	return nil
}
