// Package config loads the YAML file shared by the monitor and the display
// pass. It is read once at startup and handed to constructors by value.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultFontPath = "/usr/share/fonts/opentype/ipafont-gothic/ipagp.ttf"

type Config struct {
	Store   Store   `yaml:"store"`
	Sensor  Sensor  `yaml:"sensor"`
	Display Display `yaml:"display"`
	Status  Status  `yaml:"status"`
}

type Store struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// Namespace selects the Redis logical database.
	Namespace    int           `yaml:"namespace"`
	Password     string        `yaml:"password"`
	TTL          time.Duration `yaml:"ttl"`
	WriteRetries int           `yaml:"write_retries"`
	Timeout      time.Duration `yaml:"timeout"`
}

// Addr returns host:port for the store client.
func (s Store) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type Sensor struct {
	PollInterval time.Duration `yaml:"poll_interval"`
	// I2CBus is the periph bus name; empty picks the first one registered.
	I2CBus  string `yaml:"i2c_bus"`
	Address uint16 `yaml:"address"`
}

type Display struct {
	FontPath string `yaml:"font_path"`
	SPIPort  string `yaml:"spi_port"`
	DCPin    string `yaml:"dc_pin"`
	ResetPin string `yaml:"reset_pin"`
	BusyPin  string `yaml:"busy_pin"`
}

// Status configures the monitor's HTTP endpoint. Port 0 disables it.
type Status struct {
	Host string `yaml:"host"`
	Port uint16 `yaml:"port"`
}

// Default returns the configuration used for every key the file leaves out.
func Default() Config {
	return Config{
		Store: Store{
			Host:         "localhost",
			Port:         6379,
			TTL:          10 * time.Second,
			WriteRetries: 2,
			Timeout:      2 * time.Second,
		},
		Sensor: Sensor{
			PollInterval: 5 * time.Second,
			Address:      0x62,
		},
		Display: Display{
			FontPath: DefaultFontPath,
			DCPin:    "GPIO25",
			ResetPin: "GPIO17",
			BusyPin:  "GPIO24",
		},
		Status: Status{
			Host: "127.0.0.1",
			Port: 27315,
		},
	}
}

// Load reads path and overlays it on Default.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return Parse(raw)
}

// Parse decodes a YAML document and validates the result.
func Parse(raw []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Store.Host == "" {
		errs = append(errs, errors.New("store.host is empty"))
	}
	if c.Store.Port <= 0 || c.Store.Port > 65535 {
		errs = append(errs, fmt.Errorf("store.port %d out of range", c.Store.Port))
	}
	if c.Store.Namespace < 0 {
		errs = append(errs, fmt.Errorf("store.namespace %d is negative", c.Store.Namespace))
	}
	if c.Store.TTL <= 0 {
		errs = append(errs, errors.New("store.ttl must be > 0"))
	}
	if c.Store.WriteRetries < 0 {
		errs = append(errs, errors.New("store.write_retries must be >= 0"))
	}
	if c.Store.Timeout <= 0 {
		errs = append(errs, errors.New("store.timeout must be > 0"))
	}
	if c.Sensor.PollInterval <= 0 {
		errs = append(errs, errors.New("sensor.poll_interval must be > 0"))
	}
	if c.Display.FontPath == "" {
		errs = append(errs, errors.New("display.font_path is empty"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}
