package transition

import (
	"image"
	"image/color"
	"testing"
)

func TestResize_ExactSize(t *testing.T) {
	tests := []struct {
		name       string
		srcW, srcH int
		w, h       int
	}{
		{"downscale", 640, 480, 336, 256},
		{"upscale", 10, 10, 32, 48},
		{"aspect change", 100, 20, 16, 160},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resize(solid(tt.srcW, tt.srcH, red), tt.w, tt.h)
			if got.Bounds() != image.Rect(0, 0, tt.w, tt.h) {
				t.Fatalf("bounds = %v, want %dx%d", got.Bounds(), tt.w, tt.h)
			}
			if !got.Opaque() {
				t.Fatal("resized image not opaque")
			}
		})
	}
}

func TestResize_KeepsUniformColor(t *testing.T) {
	got := Resize(solid(50, 30, blue), 16, 16)
	c := got.RGBAAt(8, 8)
	if c.R > 1 || c.G > 1 || c.B < 254 {
		t.Errorf("center pixel = %v, want ~%v", c, blue)
	}
}

func TestResize_DropsAlpha(t *testing.T) {
	tests := []struct {
		name string
		fill color.NRGBA
		want color.RGBA
	}{
		{"fully transparent", color.NRGBA{R: 0xff, G: 0x80, A: 0}, color.RGBA{A: 0xff}},
		{"half transparent", color.NRGBA{R: 0xff, A: 0x80}, color.RGBA{R: 0xff, A: 0xff}},
		{"mostly transparent", color.NRGBA{G: 0xc0, B: 0x40, A: 0x10}, color.RGBA{G: 0xc0, B: 0x40, A: 0xff}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := image.NewNRGBA(image.Rect(0, 0, 16, 16))
			for y := 0; y < 16; y++ {
				for x := 0; x < 16; x++ {
					src.SetNRGBA(x, y, tt.fill)
				}
			}
			got := Resize(src, 32, 32)
			if !got.Opaque() {
				t.Fatal("resized image not opaque")
			}
			c := got.RGBAAt(16, 16)
			if !near(c.R, tt.want.R) || !near(c.G, tt.want.G) || !near(c.B, tt.want.B) || c.A != 0xff {
				t.Errorf("pixel = %v, want ~%v", c, tt.want)
			}
		})
	}
}

func TestResize_NonZeroOrigin(t *testing.T) {
	src := solid(40, 40, red).SubImage(image.Rect(10, 10, 30, 30))
	got := Resize(src, 16, 16)
	if got.Bounds().Min != (image.Point{}) {
		t.Errorf("Min = %v, want origin", got.Bounds().Min)
	}
	if c := got.RGBAAt(0, 0); c.R < 254 {
		t.Errorf("pixel = %v, want red", c)
	}
}

func near(a, b uint8) bool {
	d := int(a) - int(b)
	return d >= -2 && d <= 2
}
