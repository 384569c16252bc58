package render

import (
	"fmt"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
)

// Point sizes of the two faces, in pixels.
const (
	LargeSize = 24
	SmallSize = 16
)

// Fonts holds the face for the three reading rows and the smaller one for
// the timestamp row.
type Fonts struct {
	Large font.Face
	Small font.Face
}

// LoadFonts reads a TrueType/OpenType file. There is no fallback face: the
// labels need CJK glyphs that a substitute would silently drop.
func LoadFonts(path string) (*Fonts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("font: %w", err)
	}
	f, err := ParseFonts(data)
	if err != nil {
		return nil, fmt.Errorf("font %s: %w", path, err)
	}
	return f, nil
}

func ParseFonts(data []byte) (*Fonts, error) {
	otf, err := opentype.Parse(data)
	if err != nil {
		return nil, err
	}
	large, err := opentype.NewFace(otf, &opentype.FaceOptions{Size: LargeSize, DPI: 72, Hinting: font.HintingNone})
	if err != nil {
		return nil, err
	}
	small, err := opentype.NewFace(otf, &opentype.FaceOptions{Size: SmallSize, DPI: 72, Hinting: font.HintingNone})
	if err != nil {
		return nil, err
	}
	return &Fonts{Large: large, Small: small}, nil
}
