package epd2in66b

import (
	"bytes"
	"image"
	"image/color"
	"testing"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

func init() {
	doSleep = func(time.Duration) {}
}

// tx is one SPI write tagged with the DC level it was sent under.
type tx struct {
	data bool
	b    []byte
}

type fakeConn struct {
	dc  gpio.PinIn
	txs []tx
}

func (c *fakeConn) String() string               { return "fake" }
func (c *fakeConn) Duplex() conn.Duplex          { return conn.Half }
func (c *fakeConn) TxPackets([]spi.Packet) error { return nil }
func (c *fakeConn) Tx(w, r []byte) error {
	c.txs = append(c.txs, tx{data: c.dc.Read() == gpio.High, b: append([]byte(nil), w...)})
	return nil
}
func (c *fakeConn) MaxTxSize() int { return 1024 }

type fakePort struct{ c *fakeConn }

func (p *fakePort) String() string { return "fakeport" }
func (p *fakePort) Connect(physic.Frequency, spi.Mode, int) (spi.Conn, error) {
	return p.c, nil
}
func (p *fakePort) LimitSpeed(physic.Frequency) error { return nil }

func newTestDev(t *testing.T) (*Dev, *fakeConn) {
	t.Helper()
	dc := &gpiotest.Pin{N: "DC"}
	c := &fakeConn{dc: dc}
	d, err := NewSPI(&fakePort{c: c}, &Opts{
		DC:    dc,
		Reset: &gpiotest.Pin{N: "RST"},
		Busy:  &gpiotest.Pin{N: "BUSY", L: gpio.Low},
	})
	if err != nil {
		t.Fatal(err)
	}
	return d, c
}

// commands groups the recorded writes into command byte → payload.
func commands(txs []tx) (cmds []byte, payload map[byte][]byte) {
	payload = map[byte][]byte{}
	var cur byte
	for _, x := range txs {
		if !x.data {
			cur = x.b[0]
			cmds = append(cmds, cur)
			continue
		}
		payload[cur] = append(payload[cur], x.b...)
	}
	return cmds, payload
}

func TestNewSPIRequiresPins(t *testing.T) {
	if _, err := NewSPI(&fakePort{c: &fakeConn{}}, &Opts{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestInitSequence(t *testing.T) {
	d, c := newTestDev(t)
	if err := d.Init(); err != nil {
		t.Fatal(err)
	}
	cmds, payload := commands(c.txs)
	want := []byte{cmdSoftReset, cmdDataEntryMode, cmdSetRAMXRange, cmdSetRAMYRange, cmdUpdateControl1, cmdSetRAMXCounter, cmdSetRAMYCounter}
	if !bytes.Equal(cmds, want) {
		t.Fatalf("commands = % x, want % x", cmds, want)
	}
	if got := payload[cmdSetRAMYRange]; !bytes.Equal(got, []byte{0, 0, 0x27, 0x01}) {
		t.Fatalf("y range = % x", got)
	}
	if got := payload[cmdSetRAMXRange]; !bytes.Equal(got, []byte{0, 0x12}) {
		t.Fatalf("x range = % x", got)
	}
}

func TestDrawSendsBothPlanesAndInvertsRed(t *testing.T) {
	d, c := newTestDev(t)
	if err := d.Init(); err != nil {
		t.Fatal(err)
	}
	c.txs = nil

	black := image.NewGray(image.Rect(0, 0, Height, Width))
	red := image.NewGray(image.Rect(0, 0, Height, Width))
	for i := range black.Pix {
		black.Pix[i] = 0xff
		red.Pix[i] = 0xff
	}
	// Landscape top-left pixel inked on both planes.
	black.SetGray(0, 0, color.Gray{})
	red.SetGray(0, 0, color.Gray{})

	if err := d.Draw(black, red); err != nil {
		t.Fatal(err)
	}
	cmds, payload := commands(c.txs)
	if !bytes.Equal(cmds, []byte{cmdWriteBlack, cmdWriteRed, cmdMasterActivate}) {
		t.Fatalf("commands = % x", cmds)
	}
	bb, rb := payload[cmdWriteBlack], payload[cmdWriteRed]
	if len(bb) != Width/8*Height || len(rb) != len(bb) {
		t.Fatalf("plane sizes %d/%d", len(bb), len(rb))
	}
	// Landscape (0,0) maps to portrait (0, Height-1).
	last := (Height - 1) * (Width / 8)
	if bb[last] != 0x7f || rb[last] != 0x80 {
		t.Fatalf("corner bytes black=%#x red=%#x", bb[last], rb[last])
	}
	if bb[0] != 0xff || rb[0] != 0x00 {
		t.Fatalf("blank bytes black=%#x red=%#x", bb[0], rb[0])
	}
}

func TestDrawRejectsMissingPlane(t *testing.T) {
	d, c := newTestDev(t)
	img := image.NewGray(image.Rect(0, 0, Width, Height))
	if err := d.Draw(img, nil); err == nil {
		t.Fatal("expected error")
	}
	if len(c.txs) != 0 {
		t.Fatalf("partial update sent: %d writes", len(c.txs))
	}
}

func TestBufferRejectsSize(t *testing.T) {
	if _, err := Buffer(image.NewGray(image.Rect(0, 0, 10, 10))); err == nil {
		t.Fatal("expected error")
	}
}

func TestHaltThenDrawNeedsInit(t *testing.T) {
	d, _ := newTestDev(t)
	if err := d.Init(); err != nil {
		t.Fatal(err)
	}
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	img := image.NewGray(image.Rect(0, 0, Width, Height))
	if err := d.Draw(img, img); err == nil {
		t.Fatal("expected error while asleep")
	}
}
