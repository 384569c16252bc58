package main

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"AirPaper/internal/apperr"
	"AirPaper/scd4x"
)

// setupI2CBus returns the bus; the caller has the responsibility to close it.
func setupI2CBus(i2cdev string) (i2c.BusCloser, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("%w: host init: %v", apperr.ErrCapabilityUnavailable, err)
	}
	bus, err := i2creg.Open(i2cdev)
	if err != nil {
		return nil, fmt.Errorf("%w: open i2c %q: %v", apperr.ErrCapabilityUnavailable, i2cdev, err)
	}
	return bus, nil
}

// setupSCDSensor returns an idle sensor; the loop starts measurement.
func setupSCDSensor(bus i2c.Bus, addr uint16) (*scd4x.Dev, error) {
	dev, err := scd4x.NewI2C(bus, addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrCapabilityUnavailable, err)
	}
	return dev, nil
}
