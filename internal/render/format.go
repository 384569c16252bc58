package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"AirPaper/internal/apperr"
)

// Placeholders for a field that is missing, expired or malformed.
const (
	UnknownCO2         = "? ppm"
	UnknownTemperature = "? ℃"
	UnknownHumidity    = "? ％"
)

// TimestampLayout renders the pass time, e.g. 2024年03月09日 07:05.
const TimestampLayout = "2006年01月02日 15:04"

// Field is the raw store value of one key. Present is false when the key
// was missing or had expired.
type Field struct {
	Value   string
	Present bool
}

// Snapshot is what the store held for each key when the pass read it.
type Snapshot struct {
	CO2         Field
	Temperature Field
	Humidity    Field
}

func parseInt(f Field) (int, error) {
	if !f.Present {
		return 0, fmt.Errorf("%w: absent", apperr.ErrParse)
	}
	n, err := strconv.Atoi(strings.TrimSpace(f.Value))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", apperr.ErrParse, err)
	}
	return n, nil
}

func parseDecimal(f Field) (float64, error) {
	if !f.Present {
		return 0, fmt.Errorf("%w: absent", apperr.ErrParse)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(f.Value), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", apperr.ErrParse, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q is not finite", apperr.ErrParse, f.Value)
	}
	return v, nil
}

// FormatCO2 renders "<int> ppm" or the placeholder.
func FormatCO2(f Field) string {
	n, err := parseInt(f)
	if err != nil {
		return UnknownCO2
	}
	return fmt.Sprintf("%d ppm", n)
}

// FormatTemperature renders "<v> ℃" with one fractional digit.
func FormatTemperature(f Field) string {
	v, err := parseDecimal(f)
	if err != nil {
		return UnknownTemperature
	}
	return fmt.Sprintf("%.1f ℃", v)
}

// FormatHumidity renders "<v> ％" with one fractional digit.
func FormatHumidity(f Field) string {
	v, err := parseDecimal(f)
	if err != nil {
		return UnknownHumidity
	}
	return fmt.Sprintf("%.1f ％", v)
}

func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}
