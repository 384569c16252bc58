package status

import (
	"time"

	"AirPaper/internal/monitor"
)

// SensorReading is the JSON body of GET /.
type SensorReading struct {
	CO2         int       `json:"co2"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	Updated     time.Time `json:"-"`
	UpdatedStr  string    `json:"updated"`
}

func NewSensorReading(r monitor.Reading) SensorReading {
	return SensorReading{
		CO2:         r.CO2,
		Temperature: r.Temperature,
		Humidity:    r.Humidity,
		Updated:     r.Updated,
		UpdatedStr:  r.Updated.Format("2006-01-02 15:04:05"), // ISO 8601 without timezone
	}
}
