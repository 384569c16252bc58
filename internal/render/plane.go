package render

import (
	"image"
	"image/color"

	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// Plane is a packed 1-bit image, MSB first. image1bit.On is blank paper and
// image1bit.Off is ink, which is the order the panel RAM expects.
type Plane struct {
	Pix    []byte
	Stride int
	Rect   image.Rectangle
}

// NewPlane returns a blank plane.
func NewPlane(r image.Rectangle) *Plane {
	stride := (r.Dx() + 7) / 8
	p := &Plane{Pix: make([]byte, stride*r.Dy()), Stride: stride, Rect: r}
	for i := range p.Pix {
		p.Pix[i] = 0xff
	}
	return p
}

func (p *Plane) ColorModel() color.Model { return image1bit.BitModel }

func (p *Plane) Bounds() image.Rectangle { return p.Rect }

func (p *Plane) At(x, y int) color.Color { return p.BitAt(x, y) }

func (p *Plane) BitAt(x, y int) image1bit.Bit {
	if !image.Pt(x, y).In(p.Rect) {
		return image1bit.On
	}
	i, mask := p.offset(x, y)
	return image1bit.Bit(p.Pix[i]&mask != 0)
}

func (p *Plane) Set(x, y int, c color.Color) {
	b, _ := image1bit.BitModel.Convert(c).(image1bit.Bit)
	p.SetBit(x, y, b)
}

func (p *Plane) SetBit(x, y int, b image1bit.Bit) {
	if !image.Pt(x, y).In(p.Rect) {
		return
	}
	i, mask := p.offset(x, y)
	if b {
		p.Pix[i] |= mask
	} else {
		p.Pix[i] &^= mask
	}
}

// Fill sets every pixel of r (clipped to the plane) to b.
func (p *Plane) Fill(r image.Rectangle, b image1bit.Bit) {
	r = r.Intersect(p.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			p.SetBit(x, y, b)
		}
	}
}

func (p *Plane) offset(x, y int) (int, byte) {
	x -= p.Rect.Min.X
	y -= p.Rect.Min.Y
	return y*p.Stride + x/8, 0x80 >> uint(x%8)
}
