// Package store is the expiring key/value exchange between the monitor and
// the display pass. An entry past its TTL reads as absent; there is no other
// staleness signal.
package store

import (
	"context"
	"time"
)

// Keys written by the monitor and read by the display pass.
const (
	KeyCO2         = "co2"
	KeyTemperature = "temperature"
	KeyHumidity    = "humidity"
)

// Store is implemented by Redis and Memory.
type Store interface {
	// Set writes value under key, replacing any previous entry and its TTL.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Get returns ok=false for a missing or expired key. err is only set
	// when the store itself could not be reached.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
}
