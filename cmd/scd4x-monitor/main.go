// Command scd4x-monitor polls a Sensirion SCD4x and publishes CO2,
// temperature and humidity to Redis with a short expiry.
package main

import (
	"context"
	"fmt"
	"os"
	"syscall"

	"github.com/jessevdk/go-flags"

	"AirPaper/internal/config"
	"AirPaper/internal/logging"
	"AirPaper/internal/metrics"
	"AirPaper/internal/monitor"
	"AirPaper/internal/status"
	"AirPaper/internal/store"
)

type ProgramArgs struct {
	Debug  bool   `long:"debug" description:"Enable debug log"`
	Config string `short:"c" long:"config" default:"config.yaml" description:"Configuration file"`
}

func main() {
	os.Exit(run())
}

func run() int {
	args := ProgramArgs{}
	if _, err := flags.NewParser(&args, flags.Default).Parse(); err != nil {
		if fe, ok := err.(*flags.Error); ok && fe.Type == flags.ErrHelp {
			return 0
		}
		return 2
	}

	logger := logging.New(os.Stderr, "RPI-SCD4x", args.Debug)
	logger.Info("Sensirion SCD4x monitoring service started.")

	cfg, err := config.Load(args.Config)
	if err != nil {
		logger.Error("Couldn't load configuration", "err", err)
		return 1
	}
	logger.Info("Configuration",
		"store", cfg.Store.Addr(), "namespace", cfg.Store.Namespace, "ttl", cfg.Store.TTL,
		"interval", cfg.Sensor.PollInterval, "i2c", cfg.Sensor.I2CBus)

	// Boring i2c setup
	bus, err := setupI2CBus(cfg.Sensor.I2CBus)
	if err != nil {
		logger.Error("I2C setup failed", "err", err)
		return 1
	}
	defer bus.Close()

	dev, err := setupSCDSensor(bus, cfg.Sensor.Address)
	if err != nil {
		logger.Error("Couldn't initialize sensor", "err", err)
		return 1
	}
	logger.Info(fmt.Sprintf("Serial number: %#012x", dev.SerialNumber()))

	db := store.NewRedis(cfg.Store)
	defer db.Close()

	m := metrics.New()
	loop := monitor.New(dev, db, cfg, logger, m)

	if cfg.Status.Port != 0 {
		srv := status.New(cfg.Status, cfg.Sensor.PollInterval, loop, m, logger)
		srv.Start()
		defer srv.Shutdown()
	}

	ctx, stop := monitor.NotifyContext(context.Background(), logger, syscall.SIGTERM, os.Interrupt)
	defer stop()

	return monitor.ExitCode(logger, loop.Run(ctx))
}
