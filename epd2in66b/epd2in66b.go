// Package epd2in66b drives the Waveshare 2.66" (B) three colour e-paper
// panel: 152×296 pixels with a black plane and a red plane.
//
// The controller keeps its image without power. A full refresh takes about
// 15 seconds during which the busy line is held high.
package epd2in66b

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// Native panel size, portrait.
const (
	Width  = 152
	Height = 296
)

const (
	cmdDeepSleep      byte = 0x10
	cmdDataEntryMode  byte = 0x11
	cmdSoftReset      byte = 0x12
	cmdMasterActivate byte = 0x20
	cmdUpdateControl1 byte = 0x21
	cmdWriteBlack     byte = 0x24
	cmdWriteRed       byte = 0x26
	cmdSetRAMXRange   byte = 0x44
	cmdSetRAMYRange   byte = 0x45
	cmdSetRAMXCounter byte = 0x4e
	cmdSetRAMYCounter byte = 0x4f
)

const (
	busyPoll    = 20 * time.Millisecond
	busyTimeout = 40 * time.Second
)

// Opts names the control lines. All three are required.
type Opts struct {
	DC    gpio.PinOut
	Reset gpio.PinOut
	Busy  gpio.PinIn
}

// NewSPI returns a handle to the panel on p. The controller is not touched
// until Init is called.
func NewSPI(p spi.Port, opts *Opts) (*Dev, error) {
	if opts == nil || opts.DC == nil || opts.Reset == nil || opts.Busy == nil {
		return nil, errors.New("epd2in66b: dc, reset and busy pins are required")
	}
	c, err := p.Connect(4*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("epd2in66b: %v", err)
	}
	if err := opts.Busy.In(gpio.PullNoChange, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("epd2in66b: %v", err)
	}
	maxTx := 4096
	if l, ok := c.(conn.Limits); ok && l.MaxTxSize() > 0 {
		maxTx = l.MaxTxSize()
	}
	return &Dev{c: c, dc: opts.DC, rst: opts.Reset, busy: opts.Busy, maxTx: maxTx}, nil
}

// Dev is a handle to the panel.
type Dev struct {
	c     spi.Conn
	dc    gpio.PinOut
	rst   gpio.PinOut
	busy  gpio.PinIn
	maxTx int

	mu     sync.Mutex
	asleep bool
}

func (d *Dev) String() string {
	return fmt.Sprintf("epd2in66b{%s}", d.c)
}

// Bounds is the native portrait rectangle. Draw also accepts images of the
// transposed size and rotates them.
func (d *Dev) Bounds() image.Rectangle {
	return image.Rect(0, 0, Width, Height)
}

// Init hardware-resets the controller and sets up RAM addressing. It must be
// called before Draw and again after Halt.
func (d *Dev) Init() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.reset(); err != nil {
		return err
	}
	if err := d.command(cmdSoftReset); err != nil {
		return err
	}
	doSleep(30 * time.Millisecond)
	if err := d.waitIdle(); err != nil {
		return err
	}
	// X then Y increment.
	if err := d.command(cmdDataEntryMode, 0x03); err != nil {
		return err
	}
	if err := d.command(cmdSetRAMXRange, 0, (Width-1)>>3&0x1f); err != nil {
		return err
	}
	if err := d.command(cmdSetRAMYRange, 0, 0, byte((Height-1)&0xff), byte((Height-1)>>8&0x01)); err != nil {
		return err
	}
	// Normal red RAM, source output S8..S167.
	if err := d.command(cmdUpdateControl1, 0x00, 0x80); err != nil {
		return err
	}
	if err := d.command(cmdSetRAMXCounter, 0); err != nil {
		return err
	}
	if err := d.command(cmdSetRAMYCounter, 0, 0); err != nil {
		return err
	}
	if err := d.waitIdle(); err != nil {
		return err
	}
	d.asleep = false
	return nil
}

// Draw uploads both planes and triggers one full refresh. Pixels that
// convert to image1bit.Off are inked (black on the first plane, red on the
// second).
func (d *Dev) Draw(black, red image.Image) error {
	if black == nil || red == nil {
		return errors.New("epd2in66b: both planes are required")
	}
	bb, err := Buffer(black)
	if err != nil {
		return err
	}
	rb, err := Buffer(red)
	if err != nil {
		return err
	}
	// The red RAM uses 1 for ink.
	for i := range rb {
		rb[i] = ^rb[i]
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.asleep {
		return errors.New("epd2in66b: panel is asleep, call Init first")
	}
	if err := d.command(cmdWriteBlack, bb...); err != nil {
		return err
	}
	if err := d.command(cmdWriteRed, rb...); err != nil {
		return err
	}
	if err := d.command(cmdMasterActivate); err != nil {
		return err
	}
	return d.waitIdle()
}

// Halt puts the controller into deep sleep. Init wakes it up.
func (d *Dev) Halt() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.asleep {
		return nil
	}
	if err := d.command(cmdDeepSleep, 0x01); err != nil {
		return err
	}
	d.asleep = true
	return nil
}

// Buffer packs img into the controller's RAM layout: rows of Width bits, MSB
// first, 1 for white. A landscape image (Height×Width) is rotated so its top
// edge ends up along the panel's long side.
func Buffer(img image.Image) ([]byte, error) {
	b := img.Bounds()
	landscape := false
	switch {
	case b.Dx() == Width && b.Dy() == Height:
	case b.Dx() == Height && b.Dy() == Width:
		landscape = true
	default:
		return nil, fmt.Errorf("epd2in66b: image is %dx%d, want %dx%d or %dx%d", b.Dx(), b.Dy(), Width, Height, Height, Width)
	}
	const stride = Width / 8
	buf := make([]byte, stride*Height)
	for i := range buf {
		buf[i] = 0xff
	}
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			if lit(img.At(b.Min.X+x, b.Min.Y+y)) {
				continue
			}
			px, py := x, y
			if landscape {
				px, py = y, Height-1-x
			}
			buf[py*stride+px/8] &^= 0x80 >> uint(px%8)
		}
	}
	return buf, nil
}

func lit(c color.Color) bool {
	b, _ := image1bit.BitModel.Convert(c).(image1bit.Bit)
	return bool(b)
}

//

func (d *Dev) reset() error {
	for _, step := range []struct {
		l gpio.Level
		t time.Duration
	}{
		{gpio.High, 200 * time.Millisecond},
		{gpio.Low, 2 * time.Millisecond},
		{gpio.High, 200 * time.Millisecond},
	} {
		if err := d.rst.Out(step.l); err != nil {
			return d.wrap(err)
		}
		doSleep(step.t)
	}
	return nil
}

// command sends cmd with DC low followed by data with DC high.
func (d *Dev) command(cmd byte, data ...byte) error {
	if err := d.dc.Out(gpio.Low); err != nil {
		return d.wrap(err)
	}
	if err := d.c.Tx([]byte{cmd}, nil); err != nil {
		return d.wrap(err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := d.dc.Out(gpio.High); err != nil {
		return d.wrap(err)
	}
	for len(data) > 0 {
		n := len(data)
		if n > d.maxTx {
			n = d.maxTx
		}
		if err := d.c.Tx(data[:n], nil); err != nil {
			return d.wrap(err)
		}
		data = data[n:]
	}
	return nil
}

func (d *Dev) waitIdle() error {
	deadline := time.Now().Add(busyTimeout)
	for d.busy.Read() == gpio.High {
		if time.Now().After(deadline) {
			return d.wrap(errors.New("timed out waiting for busy line"))
		}
		doSleep(busyPoll)
	}
	return nil
}

func (d *Dev) wrap(err error) error {
	return fmt.Errorf("epd2in66b: %v", err)
}

var doSleep = time.Sleep

var _ conn.Resource = &Dev{}
