package render

import (
	"bytes"
	"image"
	"testing"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

func testFonts() *Fonts {
	return &Fonts{Large: basicfont.Face7x13, Small: basicfont.Face7x13}
}

func TestValuesShareRightEdge(t *testing.T) {
	fonts, err := ParseFonts(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}
	l := DefaultLayout()
	anchor := fixed.I(l.Anchor())
	if l.Anchor() != 272 {
		t.Fatalf("anchor = %d", l.Anchor())
	}
	var xs []fixed.Int26_6
	for _, text := range []string{"7 ppm", "1234 ppm", "? ppm"} {
		x := l.ValueX(fonts.Large, text)
		if right := x + font.MeasureString(fonts.Large, text); right != anchor {
			t.Fatalf("%q ends at %v, want %v", text, right, anchor)
		}
		xs = append(xs, x)
	}
	if !(xs[1] < xs[0]) {
		t.Fatalf("wider value should start further left: %v", xs)
	}
}

func TestAccentFrame(t *testing.T) {
	f := DefaultLayout().Compose(testFonts(), nil)
	a := f.Accent
	if a.Bounds() != image.Rect(0, 0, 296, 152) {
		t.Fatalf("bounds = %v", a.Bounds())
	}
	cases := []struct {
		x, y int
		want image1bit.Bit
	}{
		{0, 0, image1bit.Off},
		{295, 151, image1bit.Off},
		{15, 15, image1bit.Off},
		{16, 16, image1bit.On},
		{148, 76, image1bit.On},
		{279, 135, image1bit.On},
		{280, 136, image1bit.Off},
		{148, 140, image1bit.Off},
	}
	for _, c := range cases {
		if got := a.BitAt(c.x, c.y); got != c.want {
			t.Errorf("accent(%d,%d) = %v, want %v", c.x, c.y, got, c.want)
		}
	}
}

func inked(p *Plane, r image.Rectangle) int {
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if !p.BitAt(x, y) {
				n++
			}
		}
	}
	return n
}

func TestComposeDrawsLabelsAndValues(t *testing.T) {
	l := DefaultLayout()
	rows := Rows(Snapshot{CO2: present("812"), Temperature: present("23.5"), Humidity: present("41")}, time.Now())
	c := l.Compose(testFonts(), rows).Content

	for i := range rows {
		top := l.Origin.Y + i*l.RowSpacing
		label := image.Rect(l.Origin.X, top, l.Origin.X+40, top+13)
		value := image.Rect(l.Anchor()-50, top, l.Anchor(), top+13)
		// basicfont has no CJK glyphs, so only the CO2 label draws.
		if i == 0 && inked(c, label) == 0 {
			t.Errorf("row %d: no label ink", i)
		}
		if inked(c, value) == 0 {
			t.Errorf("row %d: no value ink", i)
		}
	}
	// Nothing right of the anchor.
	if n := inked(c, image.Rect(l.Anchor(), 0, 296, 152)); n != 0 {
		t.Fatalf("%d pixels past the anchor", n)
	}
}

func TestComposeOnlyTimestampChanges(t *testing.T) {
	l := DefaultLayout()
	s := Snapshot{CO2: present("812"), Temperature: present("23.5"), Humidity: present("41")}
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.Local)
	a := l.Compose(testFonts(), Rows(s, t0))
	b := l.Compose(testFonts(), Rows(s, t0.Add(time.Minute)))

	if !bytes.Equal(a.Accent.Pix, b.Accent.Pix) {
		t.Fatal("accent plane differs")
	}
	split := (l.Origin.Y + 3*l.RowSpacing) * a.Content.Stride
	if !bytes.Equal(a.Content.Pix[:split], b.Content.Pix[:split]) {
		t.Fatal("reading rows differ")
	}
	if bytes.Equal(a.Content.Pix[split:], b.Content.Pix[split:]) {
		t.Fatal("timestamp row did not change")
	}
}

func TestPlaneClipsAndFills(t *testing.T) {
	p := NewPlane(image.Rect(0, 0, 10, 3))
	if p.Stride != 2 || len(p.Pix) != 6 {
		t.Fatalf("stride=%d len=%d", p.Stride, len(p.Pix))
	}
	p.SetBit(-1, 0, image1bit.Off)
	p.SetBit(10, 0, image1bit.Off)
	if inked(p, p.Rect) != 0 {
		t.Fatal("out of range write landed")
	}
	p.Fill(image.Rect(8, 1, 20, 2), image1bit.Off)
	if inked(p, p.Rect) != 2 || p.BitAt(9, 1) != image1bit.Off {
		t.Fatalf("fill: %08b", p.Pix)
	}
	p.Set(9, 1, image.White.C)
	if p.BitAt(9, 1) != image1bit.On {
		t.Fatal("white did not clear ink")
	}
}

func TestLoadFontsMissingFile(t *testing.T) {
	if _, err := LoadFonts("/nonexistent/font.ttf"); err == nil {
		t.Fatal("expected error")
	}
	if _, err := ParseFonts([]byte("not a font")); err == nil {
		t.Fatal("expected error")
	}
}
