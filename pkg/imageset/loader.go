// Package imageset discovers the numbered still images of an input folder,
// orders them and derives the canvas every output frame is rendered at.
//
// Only file headers are read while loading; pixel data is decoded on demand
// through [Asset.Decode] so callers hold at most the images they are using.
package imageset

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Extensions lists the accepted file suffixes. Matching is case-sensitive.
var Extensions = []string{".jpg", ".jpeg", ".png"}

// Asset is one input image.
type Asset struct {
	Name   string // File name inside the folder, e.g. "10.png".
	Index  int    // Integer prefix of Name; the sort key.
	Path   string // Absolute path.
	Width  int
	Height int
}

// Decode reads and decodes the full image.
func (a Asset) Decode() (image.Image, error) {
	f, err := os.Open(a.Path)
	if err != nil {
		return nil, &FileError{Name: a.Name, Kind: ErrImageDecode, Err: err}
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, &FileError{Name: a.Name, Kind: ErrImageDecode, Err: err}
	}
	return img, nil
}

// Set is the ordered result of loading a folder.
type Set struct {
	Dir    string
	Assets []Asset
	Canvas Canvas
}

// Len returns the number of images.
func (s *Set) Len() int { return len(s.Assets) }

// ResolveFolder turns a user-supplied path into a clean absolute directory
// path. It fails with ErrFolderNotFound when the path does not exist or is
// not a directory.
func ResolveFolder(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("%w: empty path", ErrFolderNotFound)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrFolderNotFound, path, err)
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrFolderNotFound, abs)
	}
	if !fi.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrFolderNotFound, abs)
	}
	return abs, nil
}

// Load lists dir, keeps the files with an accepted extension, orders them by
// their integer prefix and reads every header to compute the canvas.
//
// Any qualifying file whose prefix is not an integer fails the whole load;
// nothing is skipped silently.
func Load(dir string) (*Set, error) {
	abs, err := ResolveFolder(dir)
	if err != nil {
		return nil, err
	}

	names, err := List(abs)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoImagesFound, abs)
	}

	assets, err := Order(names)
	if err != nil {
		return nil, err
	}

	sizes := make([]Canvas, len(assets))
	for i := range assets {
		a := &assets[i]
		a.Path = filepath.Join(abs, a.Name)
		if err := a.readSize(); err != nil {
			return nil, err
		}
		sizes[i] = Canvas{Width: a.Width, Height: a.Height}
	}

	return &Set{
		Dir:    abs,
		Assets: assets,
		Canvas: CanvasFor(sizes),
	}, nil
}

// List returns the names of the regular entries of dir that carry one of
// the accepted extensions, in directory (lexical) order.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if HasImageExt(e.Name()) {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// HasImageExt reports whether name ends with one of Extensions.
func HasImageExt(name string) bool {
	for _, ext := range Extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// Order parses the integer prefix of every name and sorts ascending by it.
// Equal prefixes keep their input order.
func Order(names []string) ([]Asset, error) {
	assets := make([]Asset, 0, len(names))
	for _, name := range names {
		idx, err := ParseIndex(name)
		if err != nil {
			return nil, err
		}
		assets = append(assets, Asset{Name: name, Index: idx})
	}
	sort.SliceStable(assets, func(i, j int) bool {
		return assets[i].Index < assets[j].Index
	})
	return assets, nil
}

// ParseIndex returns the integer before the first '.' of name. Surrounding
// whitespace, one leading sign and single underscores between digits are
// accepted ("1_000.png" is 1000). Values outside the int range fail.
func ParseIndex(name string) (int, error) {
	prefix, _, _ := strings.Cut(name, ".")
	n, err := parseInt(prefix)
	if err != nil {
		return 0, &FileError{Name: name, Kind: ErrUnparseableFilename, Err: err}
	}
	return n, nil
}

var errBadSeparator = errors.New("misplaced digit separator")

func parseInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	sign := ""
	if s != "" && (s[0] == '+' || s[0] == '-') {
		sign, s = s[:1], s[1:]
	}
	if strings.Contains(s, "_") {
		if s[0] == '_' || s[len(s)-1] == '_' || strings.Contains(s, "__") {
			return 0, errBadSeparator
		}
		s = strings.ReplaceAll(s, "_", "")
	}
	return strconv.Atoi(sign + s)
}

func (a *Asset) readSize() error {
	f, err := os.Open(a.Path)
	if err != nil {
		return &FileError{Name: a.Name, Kind: ErrImageDecode, Err: err}
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return &FileError{Name: a.Name, Kind: ErrImageDecode, Err: err}
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return &FileError{Name: a.Name, Kind: ErrImageDecode, Err: fmt.Errorf("invalid size %dx%d", cfg.Width, cfg.Height)}
	}
	a.Width = cfg.Width
	a.Height = cfg.Height
	return nil
}
