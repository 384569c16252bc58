package render

import (
	"image"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// Layout positions the four rows on a landscape canvas.
type Layout struct {
	// Canvas is the drawing surface, Height×Width of the portrait panel.
	Canvas image.Rectangle
	// Origin is the top-left corner of the first label.
	Origin image.Point
	// RowSpacing separates the tops of consecutive rows.
	RowSpacing int
	// PanelWidth and Adjust give the right edge of every value:
	// PanelWidth + Adjust.
	PanelWidth int
	Adjust     int
	// Border is the width of the accent frame.
	Border int
}

// DefaultLayout matches the 2.66" panel.
func DefaultLayout() Layout {
	return Layout{
		Canvas:     image.Rect(0, 0, 296, 152),
		Origin:     image.Pt(24, 22),
		RowSpacing: 32,
		PanelWidth: 152,
		Adjust:     120,
		Border:     16,
	}
}

// Anchor is the x coordinate every value's right edge lands on.
func (l Layout) Anchor() int {
	return l.PanelWidth + l.Adjust
}

// Row is one label/value pair.
type Row struct {
	Label string
	Value string
	Small bool
}

// Rows formats s into the four rows, timestamp last.
func Rows(s Snapshot, now time.Time) []Row {
	return []Row{
		{Label: "CO2", Value: FormatCO2(s.CO2)},
		{Label: "気温", Value: FormatTemperature(s.Temperature)},
		{Label: "湿度", Value: FormatHumidity(s.Humidity)},
		{Label: "更新", Value: FormatTimestamp(now), Small: true},
	}
}

// Frame is one display update.
type Frame struct {
	Content *Plane
	Accent  *Plane
}

// Compose draws rows onto a fresh content plane and builds the accent frame.
func (l Layout) Compose(f *Fonts, rows []Row) Frame {
	content := NewPlane(l.Canvas)
	for i, r := range rows {
		face := f.Large
		if r.Small {
			face = f.Small
		}
		top := l.Origin.Y + i*l.RowSpacing
		d := font.Drawer{Dst: content, Src: image.Black, Face: face}
		d.Dot = fixed.Point26_6{X: fixed.I(l.Origin.X), Y: baseline(face, top)}
		d.DrawString(r.Label)
		d.Dot = fixed.Point26_6{X: l.ValueX(face, r.Value), Y: baseline(face, top)}
		d.DrawString(r.Value)
	}
	return Frame{Content: content, Accent: l.accent()}
}

// ValueX is the pen start that puts the right edge of text on Anchor.
func (l Layout) ValueX(face font.Face, text string) fixed.Int26_6 {
	return fixed.I(l.Anchor()) - font.MeasureString(face, text)
}

// accent is a solid plane with a blank inset, leaving a Border wide frame.
func (l Layout) accent() *Plane {
	p := NewPlane(l.Canvas)
	p.Fill(l.Canvas, image1bit.Off)
	p.Fill(l.Canvas.Inset(l.Border), image1bit.On)
	return p
}

// baseline converts a row top into the face's baseline.
func baseline(face font.Face, top int) fixed.Int26_6 {
	return fixed.I(top) + face.Metrics().Ascent
}
