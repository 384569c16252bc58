// Package monitor is the acquisition loop: it owns the SCD4x, polls it on a
// fixed interval and publishes each sample to the store with a TTL.
//
// The TTL is applied on every write and never refreshed otherwise, so a
// reader sees the keys disappear once the sensor stops producing samples.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"periph.io/x/conn/v3/physic"

	"AirPaper/internal/apperr"
	"AirPaper/internal/config"
	"AirPaper/internal/logging"
	"AirPaper/internal/metrics"
	"AirPaper/internal/store"
	"AirPaper/scd4x"
)

// Sensor is the part of *scd4x.Dev the loop needs.
type Sensor interface {
	Start() error
	DataReady() (bool, error)
	Sense(m *scd4x.Measurement) error
	Halt() error
}

type State int32

const (
	Starting State = iota
	Running
	Draining
	Stopped
)

func (s State) String() string {
	switch s {
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Draining:
		return "draining"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Reading is one published sample.
type Reading struct {
	CO2         int
	Temperature float64
	Humidity    float64
	Updated     time.Time
}

func newReading(m scd4x.Measurement, now time.Time) Reading {
	return Reading{
		CO2:         int(m.CO2),
		Temperature: m.Temperature.Celsius(),
		Humidity:    float64(m.Humidity) / float64(physic.PercentRH),
		Updated:     now,
	}
}

type entry struct {
	key, value string
}

// entries is the write order of one sample.
func (r Reading) entries() []entry {
	return []entry{
		{store.KeyCO2, strconv.Itoa(r.CO2)},
		{store.KeyTemperature, strconv.FormatFloat(r.Temperature, 'f', -1, 64)},
		{store.KeyHumidity, strconv.FormatFloat(r.Humidity, 'f', -1, 64)},
	}
}

// Loop is single use: Run may only be called once.
type Loop struct {
	sensor   Sensor
	store    store.Store
	interval time.Duration
	ttl      time.Duration
	timeout  time.Duration
	log      *log.Logger
	metrics  *metrics.Metrics
	now      func() time.Time

	state    atomic.Int32
	haltOnce sync.Once

	mu      sync.RWMutex
	last    Reading
	hasLast bool
}

// New takes ownership of sensor. logger and m may be nil.
func New(sensor Sensor, st store.Store, cfg config.Config, logger *log.Logger, m *metrics.Metrics) *Loop {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Loop{
		sensor:   sensor,
		store:    st,
		interval: cfg.Sensor.PollInterval,
		ttl:      cfg.Store.TTL,
		timeout:  cfg.Store.Timeout,
		log:      logger,
		metrics:  m,
		now:      time.Now,
	}
}

func (l *Loop) State() State {
	return State(l.state.Load())
}

// Last returns the most recently published reading.
func (l *Loop) Last() (Reading, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.last, l.hasLast
}

// Run starts periodic measurement and polls until ctx is cancelled or a
// cycle fails. The returned error is context.Cause(ctx) on cancellation.
//
// Once the loop is running, the sensor is halted exactly once before Run
// returns, whatever the reason.
func (l *Loop) Run(ctx context.Context) error {
	l.state.Store(int32(Starting))
	if err := l.sensor.Start(); err != nil {
		l.state.Store(int32(Stopped))
		return fmt.Errorf("%w: start measurement: %v", apperr.ErrCapabilityUnavailable, err)
	}
	l.log.Info("Start measurement", "interval", l.interval, "ttl", l.ttl)
	l.state.Store(int32(Running))
	defer l.drain()

	for {
		if ctx.Err() != nil {
			return context.Cause(ctx)
		}
		// A cycle in flight is never interrupted; cancellation is only
		// observed between cycles.
		if err := l.cycle(context.WithoutCancel(ctx)); err != nil {
			return err
		}
		if !sleep(ctx, l.interval) {
			return context.Cause(ctx)
		}
	}
}

// sleep waits d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// cycle publishes one sample if the sensor has one. A sensor without a new
// sample leaves the store untouched.
func (l *Loop) cycle(ctx context.Context) error {
	ready, err := l.sensor.DataReady()
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrCapabilityUnavailable, err)
	}
	if !ready {
		l.metrics.NotReady()
		l.log.Debug("Sample not ready")
		return nil
	}

	var m scd4x.Measurement
	if err := l.sensor.Sense(&m); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrCapabilityUnavailable, err)
	}
	r := newReading(m, l.now())
	l.log.Debug("readings", "co2", r.CO2, "temperature", r.Temperature, "humidity", r.Humidity)

	if err := l.publish(ctx, r); err != nil {
		l.metrics.StoreFailure()
		return err
	}
	l.metrics.Published(r.CO2, r.Temperature, r.Humidity)

	l.mu.Lock()
	l.last, l.hasLast = r, true
	l.mu.Unlock()
	return nil
}

func (l *Loop) publish(ctx context.Context, r Reading) error {
	for _, e := range r.entries() {
		wctx, cancel := context.WithTimeout(ctx, l.timeout)
		err := l.store.Set(wctx, e.key, e.value, l.ttl)
		cancel()
		if err != nil {
			l.log.Error("Store write failed", "key", e.key, "err", err)
			if !errors.Is(err, apperr.ErrStoreUnreachable) {
				err = fmt.Errorf("%w: set %s: %v", apperr.ErrStoreUnreachable, e.key, err)
			}
			return err
		}
	}
	return nil
}

func (l *Loop) drain() {
	l.state.Store(int32(Draining))
	l.haltOnce.Do(func() {
		l.log.Info("Cleanup and stop SCD4x monitoring service.")
		if err := l.sensor.Halt(); err != nil {
			l.log.Error("Stop measurement failed", "err", err)
			return
		}
		l.log.Info("Stop measurement")
	})
	l.state.Store(int32(Stopped))
}
