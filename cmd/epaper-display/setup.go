package main

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"AirPaper/epd2in66b"
	"AirPaper/internal/apperr"
	"AirPaper/internal/config"
)

// panel owns the SPI port and the initialized controller.
type panel struct {
	port spi.PortCloser
	dev  *epd2in66b.Dev
}

// Close puts the controller to sleep and releases the port.
func (p *panel) Close() error {
	return errors.Join(p.dev.Halt(), p.port.Close())
}

func setupDisplay(cfg config.Display) (*panel, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("%w: host init: %v", apperr.ErrCapabilityUnavailable, err)
	}
	dc, err := pin(cfg.DCPin)
	if err != nil {
		return nil, err
	}
	rst, err := pin(cfg.ResetPin)
	if err != nil {
		return nil, err
	}
	busy, err := pin(cfg.BusyPin)
	if err != nil {
		return nil, err
	}
	port, err := spireg.Open(cfg.SPIPort)
	if err != nil {
		return nil, fmt.Errorf("%w: open spi %q: %v", apperr.ErrCapabilityUnavailable, cfg.SPIPort, err)
	}
	dev, err := epd2in66b.NewSPI(port, &epd2in66b.Opts{DC: dc, Reset: rst, Busy: busy})
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("%w: %v", apperr.ErrCapabilityUnavailable, err)
	}
	if err := dev.Init(); err != nil {
		port.Close()
		return nil, fmt.Errorf("%w: %v", apperr.ErrCapabilityUnavailable, err)
	}
	return &panel{port: port, dev: dev}, nil
}

func pin(name string) (gpio.PinIO, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("%w: unknown gpio %q", apperr.ErrCapabilityUnavailable, name)
	}
	return p, nil
}
