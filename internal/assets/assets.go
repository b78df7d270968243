// Package assets resolves icon and font identifiers to drawable resources.
//
// Every icon has built-in art. A directory of PNG files can override any of
// them; the file for an icon is its lower-cased ID with a .png suffix, e.g.
// icon_battery_50.png. All resources are resolved once, at load time.
package assets

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/opentype"

	"github.com/sweeney/watchface/internal/logic"
)

var (
	// ErrUnknownIcon is returned for an IconID outside the known set.
	ErrUnknownIcon = errors.New("unknown icon")
	// ErrUnknownFont is returned for a FontID outside the known set.
	ErrUnknownFont = errors.New("unknown font")
)

// fontSizes maps each font ID to its pixel size at 72 DPI.
var fontSizes = map[logic.FontID]float64{
	logic.FontDate: 21,
}

// Set holds resolved resources. It is read-only after Load.
type Set struct {
	icons     map[logic.IconID]image.Image
	fonts     map[logic.FontID]font.Face
	overrides []logic.IconID
}

// Load resolves every icon and font. dir may be empty for built-in art only.
// A missing dir is an error; a dir without a file for some icon falls back to
// the built-in art for that icon; an override file that cannot be decoded is
// an error.
func Load(dir string) (*Set, error) {
	s := &Set{
		icons: make(map[logic.IconID]image.Image, len(logic.AllIcons)),
		fonts: make(map[logic.FontID]font.Face, len(fontSizes)),
	}

	if dir != "" {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("asset dir: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("asset dir %s: not a directory", dir)
		}
	}

	for _, id := range logic.AllIcons {
		img, overridden, err := loadIcon(dir, id)
		if err != nil {
			return nil, fmt.Errorf("load icon %s: %w", id, err)
		}
		s.icons[id] = img
		if overridden {
			s.overrides = append(s.overrides, id)
		}
	}

	parsed, err := opentype.Parse(gomedium.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	for id, size := range fontSizes {
		face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("load font %s: %w", id, err)
		}
		s.fonts[id] = face
	}
	return s, nil
}

func loadIcon(dir string, id logic.IconID) (image.Image, bool, error) {
	if dir != "" {
		path := filepath.Join(dir, IconFile(id))
		img, err := decodePNG(path)
		switch {
		case err == nil:
			return img, true, nil
		case !errors.Is(err, fs.ErrNotExist):
			return nil, false, err
		}
	}
	img, ok := builtin(id)
	if !ok {
		return nil, false, ErrUnknownIcon
	}
	return img, false, nil
}

func decodePNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// IconFile returns the override file name for id.
func IconFile(id logic.IconID) string {
	return strings.ToLower(string(id)) + ".png"
}

// Icon returns the image for id.
func (s *Set) Icon(id logic.IconID) (image.Image, error) {
	img, ok := s.icons[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownIcon, id)
	}
	return img, nil
}

// Font returns the face for id.
func (s *Set) Font(id logic.FontID) (font.Face, error) {
	face, ok := s.fonts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFont, id)
	}
	return face, nil
}

// Overrides lists the icons loaded from the override directory.
func (s *Set) Overrides() []logic.IconID {
	return append([]logic.IconID(nil), s.overrides...)
}

// Close releases the font faces. Safe to call more than once.
func (s *Set) Close() error {
	var errs []error
	for id, face := range s.fonts {
		if err := face.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close font %s: %w", id, err))
		}
		delete(s.fonts, id)
	}
	return errors.Join(errs...)
}
