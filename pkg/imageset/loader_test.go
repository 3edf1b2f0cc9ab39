package imageset

import (
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, dir, name string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func writeJPEG(t *testing.T, dir, name string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, nil); err != nil {
		t.Fatal(err)
	}
}

func names(s *Set) []string {
	out := make([]string, len(s.Assets))
	for i, a := range s.Assets {
		out[i] = a.Name
	}
	return out
}

func TestLoad_NumericOrder(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "2.png", 8, 8)
	writePNG(t, dir, "10.png", 8, 8)
	writePNG(t, dir, "1.png", 8, 8)

	set, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	got := names(set)
	want := []string{"1.png", "2.png", "10.png"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	if set.Assets[2].Index != 10 {
		t.Errorf("Index = %d, want 10", set.Assets[2].Index)
	}
	if set.Assets[0].Path != filepath.Join(set.Dir, "1.png") {
		t.Errorf("Path = %q", set.Assets[0].Path)
	}
}

func TestLoad_FiltersEntries(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "1.png", 8, 8)
	writeJPEG(t, dir, "2.jpg", 8, 8)
	writeJPEG(t, dir, "3.jpeg", 8, 8)
	writePNG(t, dir, "4.PNG", 8, 8) // suffix match is case-sensitive
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "output.mp4"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "5.png"), 0o755); err != nil {
		t.Fatal(err)
	}

	set, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	got := names(set)
	want := []string{"1.png", "2.jpg", "3.jpeg"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  error
	}{
		{
			name: "missing folder",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "nope")
			},
			want: ErrFolderNotFound,
		},
		{
			name: "path is a file",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writePNG(t, dir, "1.png", 4, 4)
				return filepath.Join(dir, "1.png")
			},
			want: ErrFolderNotFound,
		},
		{
			name: "no qualifying images",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				if err := os.WriteFile(filepath.Join(dir, "a.txt"), nil, 0o644); err != nil {
					t.Fatal(err)
				}
				return dir
			},
			want: ErrNoImagesFound,
		},
		{
			name: "non-integer prefix",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writePNG(t, dir, "abc.png", 4, 4)
				return dir
			},
			want: ErrUnparseableFilename,
		},
		{
			name: "one bad name among good ones",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writePNG(t, dir, "1.png", 4, 4)
				writePNG(t, dir, "cover.png", 4, 4)
				return dir
			},
			want: ErrUnparseableFilename,
		},
		{
			name: "corrupt image",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				if err := os.WriteFile(filepath.Join(dir, "1.png"), []byte("not a png"), 0o644); err != nil {
					t.Fatal(err)
				}
				return dir
			},
			want: ErrImageDecode,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := tt.setup(t)
			_, err := Load(dir)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Load() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoad_UnparseableNamesFile(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "abc.png", 4, 4)

	_, err := Load(dir)
	var fe *FileError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FileError, got %T (%v)", err, err)
	}
	if fe.Name != "abc.png" {
		t.Errorf("Name = %q, want abc.png", fe.Name)
	}
}

func TestLoad_Canvas(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "1.png", 300, 200)
	writePNG(t, dir, "2.png", 340, 280)

	set, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	// mean 320x240, both aligned, so each still grows by 16
	if set.Canvas != (Canvas{Width: 336, Height: 256}) {
		t.Errorf("Canvas = %v, want 336x256", set.Canvas)
	}
	if set.Assets[0].Width != 300 || set.Assets[0].Height != 200 {
		t.Errorf("size = %dx%d", set.Assets[0].Width, set.Assets[0].Height)
	}
}

func TestCanvasFor(t *testing.T) {
	tests := []struct {
		name  string
		sizes []Canvas
		want  Canvas
	}{
		{"aligned mean grows by 16", []Canvas{{320, 240}}, Canvas{336, 256}},
		{"unaligned rounds up", []Canvas{{300, 200}}, Canvas{304, 208}},
		{"truncated mean", []Canvas{{100, 50}, {201, 151}}, Canvas{160, 112}},
		{"tiny image", []Canvas{{1, 1}}, Canvas{16, 16}},
		{"empty", nil, Canvas{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CanvasFor(tt.sizes)
			if got != tt.want {
				t.Errorf("CanvasFor(%v) = %v, want %v", tt.sizes, got, tt.want)
			}
			if len(tt.sizes) > 0 && (got.Width%Align != 0 || got.Height%Align != 0) {
				t.Errorf("CanvasFor(%v) = %v is not aligned", tt.sizes, got)
			}
		})
	}
}

func TestParseIndex(t *testing.T) {
	tests := []struct {
		name    string
		want    int
		wantErr bool
	}{
		{"1.png", 1, false},
		{"0010.jpg", 10, false},
		{"7.backup.png", 7, false},
		{"abc.png", 0, true},
		{".png", 0, true},
		{"1a.png", 0, true},
		{"1_000.png", 1000, false},
		{" 12 .png", 12, false},
		{"+3.png", 3, false},
		{"-2.png", -2, false},
		{"1__0.png", 0, true},
		{"_1.png", 0, true},
		{"1_.png", 0, true},
		{"+_1.png", 0, true},
		{"+.png", 0, true},
		{"99999999999999999999999.png", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIndex(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseIndex(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseIndex(%q) = %d, want %d", tt.name, got, tt.want)
			}
		})
	}
}

func TestOrder_StableOnEqualIndex(t *testing.T) {
	got, err := Order([]string{"1.jpg", "01.png", "0.png"})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"0.png", "1.jpg", "01.png"}
	for i := range want {
		if got[i].Name != want[i] {
			t.Fatalf("Order() = %v, want %v", got, want)
		}
	}
}

func TestAssetDecode(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "1.png", 12, 7)

	set, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	img, err := set.Assets[0].Decode()
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 12 || b.Dy() != 7 {
		t.Errorf("bounds = %v", b)
	}

	if err := os.Remove(set.Assets[0].Path); err != nil {
		t.Fatal(err)
	}
	if _, err := set.Assets[0].Decode(); !errors.Is(err, ErrImageDecode) {
		t.Errorf("Decode() after removal error = %v, want ErrImageDecode", err)
	}
}
