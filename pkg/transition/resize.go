// resize.go - Scaling source images to the canvas.
package transition

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Resize scales src to exactly w×h with a Catmull-Rom kernel. Aspect ratio is
// not preserved. The result is opaque: alpha is dropped after scaling, so a
// half-transparent pixel keeps its colour and a fully transparent one is
// black.
func Resize(src image.Image, w, h int) *image.RGBA {
	if o, ok := src.(interface{ Opaque() bool }); ok && o.Opaque() {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
		for i := 3; i < len(dst.Pix); i += 4 {
			dst.Pix[i] = 0xff
		}
		return dst
	}
	// Scaling into NRGBA un-premultiplies the filtered result.
	tmp := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(tmp, tmp.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dropAlpha(tmp)
}

// newCanvas returns an opaque black w×h image.
func newCanvas(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.Black, image.Point{}, draw.Src)
	return img
}

// flatten returns img unchanged when it is opaque, otherwise a copy with its
// alpha dropped.
func flatten(img *image.RGBA) *image.RGBA {
	if img.Opaque() {
		return img
	}
	return dropAlpha(img)
}

// dropAlpha copies the straight (non-premultiplied) RGB of src into an
// opaque image anchored at the origin. No blending takes place.
func dropAlpha(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			i := dst.PixOffset(x-b.Min.X, y-b.Min.Y)
			dst.Pix[i+0] = c.R
			dst.Pix[i+1] = c.G
			dst.Pix[i+2] = c.B
			dst.Pix[i+3] = 0xff
		}
	}
	return dst
}
