// Package render turns the three published readings into a two-plane
// e-paper image and submits it. A pass runs once and returns.
package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/charmbracelet/log"

	"AirPaper/internal/apperr"
	"AirPaper/internal/logging"
	"AirPaper/internal/store"
)

// Display takes both planes of one update; it never sees a single plane.
type Display interface {
	Draw(content, accent image.Image) error
}

type Pass struct {
	store   store.Store
	display Display
	fonts   *Fonts
	layout  Layout
	timeout time.Duration
	log     *log.Logger
	now     func() time.Time
}

// NewPass wires one render pass. logger may be nil.
func NewPass(st store.Store, d Display, f *Fonts, l Layout, timeout time.Duration, logger *log.Logger) *Pass {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Pass{
		store:   st,
		display: d,
		fonts:   f,
		layout:  l,
		timeout: timeout,
		log:     logger,
		now:     time.Now,
	}
}

// Snapshot reads the three keys independently. A missing key is not an
// error; an unreachable store is.
func (p *Pass) Snapshot(ctx context.Context) (Snapshot, error) {
	var s Snapshot
	for _, k := range []struct {
		key string
		dst *Field
	}{
		{store.KeyCO2, &s.CO2},
		{store.KeyTemperature, &s.Temperature},
		{store.KeyHumidity, &s.Humidity},
	} {
		rctx, cancel := context.WithTimeout(ctx, p.timeout)
		v, ok, err := p.store.Get(rctx, k.key)
		cancel()
		if err != nil {
			if !errors.Is(err, apperr.ErrStoreUnreachable) {
				err = fmt.Errorf("%w: get %s: %v", apperr.ErrStoreUnreachable, k.key, err)
			}
			return Snapshot{}, err
		}
		*k.dst = Field{Value: v, Present: ok}
	}
	return s, nil
}

// Run performs one complete pass. Nothing is sent to the display unless
// both planes were composed.
func (p *Pass) Run(ctx context.Context) error {
	s, err := p.Snapshot(ctx)
	if err != nil {
		return err
	}
	p.log.Debug("Readings from store", "co2", s.CO2, "temperature", s.Temperature, "humidity", s.Humidity)
	p.logParseFailures(s)

	rows := Rows(s, p.now())
	p.log.Debug("Create display image", "co2", rows[0].Value, "temperature", rows[1].Value, "humidity", rows[2].Value)
	frame := p.layout.Compose(p.fonts, rows)

	p.log.Debug("Draw display image")
	if err := p.display.Draw(frame.Content, frame.Accent); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrCapabilityUnavailable, err)
	}
	p.log.Debug("Updated")
	return nil
}

func (p *Pass) logParseFailures(s Snapshot) {
	if _, err := parseInt(s.CO2); err != nil && s.CO2.Present {
		p.log.Debug("Unreadable value", "key", store.KeyCO2, "err", err)
	}
	if _, err := parseDecimal(s.Temperature); err != nil && s.Temperature.Present {
		p.log.Debug("Unreadable value", "key", store.KeyTemperature, "err", err)
	}
	if _, err := parseDecimal(s.Humidity); err != nil && s.Humidity.Present {
		p.log.Debug("Unreadable value", "key", store.KeyHumidity, "err", err)
	}
}
