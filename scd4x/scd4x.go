// Package scd4x drives the Sensirion SCD40/SCD41 CO2, temperature and
// humidity sensor over I²C in periodic measurement mode.
//
// The sensor produces one sample every five seconds once Start has been
// called. DataReady reports whether a sample is waiting; Sense reads it and
// clears the flag.
//
// It is recommended to call Halt() when done with the device so it stops
// sampling.
package scd4x

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// Address is the fixed I²C address of every SCD4x part.
const Address uint16 = 0x62

// Commands, big endian on the wire.
const (
	cmdStartPeriodic   uint16 = 0x21b1
	cmdReadMeasurement uint16 = 0xec05
	cmdStopPeriodic    uint16 = 0x3f86
	cmdDataReady       uint16 = 0xe4b8
	cmdSerialNumber    uint16 = 0x3682
)

// Execution times from the datasheet.
const (
	readDelay = time.Millisecond
	stopDelay = 500 * time.Millisecond
)

// Measurement is one sample of the periodic measurement.
type Measurement struct {
	// CO2 in ppm.
	CO2         uint16
	Temperature physic.Temperature
	Humidity    physic.RelativeHumidity
}

func (m Measurement) String() string {
	return fmt.Sprintf("%d ppm %s %s", m.CO2, m.Temperature, m.Humidity)
}

// NewI2C returns an object that communicates over I²C to an SCD4x sensor.
//
// Any periodic measurement left running by a previous owner is stopped so the
// serial number can be read; the device is idle when NewI2C returns.
func NewI2C(b i2c.Bus, addr uint16) (*Dev, error) {
	if addr != Address {
		return nil, errors.New("scd4x: given address not supported by device")
	}
	d := &Dev{d: &i2c.Dev{Bus: b, Addr: addr}, name: "SCD4x"}
	if err := d.makeDev(); err != nil {
		return nil, err
	}
	return d, nil
}

// Dev is a handle to an initialized SCD4x device.
type Dev struct {
	d      conn.Conn
	name   string
	serial uint64

	mu      sync.Mutex
	running bool
}

func (d *Dev) String() string {
	return fmt.Sprintf("%s{%s}", d.name, d.d)
}

// SerialNumber is the 48 bit serial read at initialization.
func (d *Dev) SerialNumber() uint64 {
	return d.serial
}

// Start begins periodic measurement. Calling it twice is a no-op.
func (d *Dev) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return nil
	}
	if err := d.writeCommand(cmdStartPeriodic); err != nil {
		return err
	}
	d.running = true
	return nil
}

// DataReady reports whether a new sample can be read with Sense.
func (d *Dev) DataReady() (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running {
		return false, d.wrap(errors.New("periodic measurement not started"))
	}
	var w [1]uint16
	if err := d.readWords(cmdDataReady, w[:]); err != nil {
		return false, err
	}
	// The low 11 bits are all zero while no sample is pending.
	return w[0]&0x07ff != 0, nil
}

// Sense reads the pending sample into m.
//
// It must only be called after DataReady returned true; otherwise the sensor
// NACKs and an error is returned.
func (d *Dev) Sense(m *Measurement) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running {
		return d.wrap(errors.New("periodic measurement not started"))
	}
	var w [3]uint16
	if err := d.readWords(cmdReadMeasurement, w[:]); err != nil {
		return err
	}
	*m = decodeMeasurement(w)
	return nil
}

// Halt stops periodic measurement. It is safe to call more than once.
//
// It is recommended to call this function before terminating the process so
// the sensor does not keep heating and sampling.
func (d *Dev) Halt() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running {
		return nil
	}
	d.running = false
	if err := d.writeCommand(cmdStopPeriodic); err != nil {
		return err
	}
	doSleep(stopDelay)
	return nil
}

//

func (d *Dev) makeDev() error {
	// The sensor ignores everything but stop while measuring.
	if err := d.writeCommand(cmdStopPeriodic); err != nil {
		return err
	}
	doSleep(stopDelay)

	var w [3]uint16
	if err := d.readWords(cmdSerialNumber, w[:]); err != nil {
		return err
	}
	d.serial = uint64(w[0])<<32 | uint64(w[1])<<16 | uint64(w[2])
	if d.serial == 0 {
		return d.wrap(errors.New("unexpected serial number 0"))
	}
	return nil
}

func (d *Dev) writeCommand(cmd uint16) error {
	if err := d.d.Tx([]byte{byte(cmd >> 8), byte(cmd)}, nil); err != nil {
		return d.wrap(err)
	}
	return nil
}

// readWords sends cmd, waits for the execution time, then reads len(words)
// CRC protected words.
func (d *Dev) readWords(cmd uint16, words []uint16) error {
	if err := d.writeCommand(cmd); err != nil {
		return err
	}
	doSleep(readDelay)
	buf := make([]byte, 3*len(words))
	if err := d.d.Tx(nil, buf); err != nil {
		return d.wrap(err)
	}
	if err := decodeWords(buf, words); err != nil {
		return d.wrap(err)
	}
	return nil
}

func (d *Dev) wrap(err error) error {
	return fmt.Errorf("scd4x: %v", err)
}

var doSleep = time.Sleep

var _ conn.Resource = &Dev{}
