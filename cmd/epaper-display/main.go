// Command epaper-display draws the latest readings from Redis onto a
// Waveshare 2.66" (B) panel and exits. Run it from a timer.
package main

import (
	"context"
	"os"

	"github.com/jessevdk/go-flags"

	"AirPaper/internal/config"
	"AirPaper/internal/logging"
	"AirPaper/internal/render"
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

	logger := logging.New(os.Stderr, "RPI-E-ink(epd2in66b)", args.Debug)

	cfg, err := config.Load(args.Config)
	if err != nil {
		logger.Error("Couldn't load configuration", "err", err)
		return 1
	}
	logger.Debug("Configuration", "store", cfg.Store.Addr(), "namespace", cfg.Store.Namespace, "display", cfg.Display)

	logger.Info("Start updating e-paper.")
	fonts, err := render.LoadFonts(cfg.Display.FontPath)
	if err != nil {
		logger.Error("Couldn't load font", "err", err)
		return 1
	}
	logger.Info("Load font", "path", cfg.Display.FontPath)

	epd, err := setupDisplay(cfg.Display)
	if err != nil {
		logger.Error("Couldn't initialize e-paper", "err", err)
		return 1
	}
	defer epd.Close()
	logger.Info("Initialize E-Paper (epd2in66b)")

	db := store.NewRedis(cfg.Store)
	defer db.Close()

	pass := render.NewPass(db, epd.dev, fonts, render.DefaultLayout(), cfg.Store.Timeout, logger)
	if err := pass.Run(context.Background()); err != nil {
		logger.Error("Updating e-paper failed", "err", err)
		return 1
	}
	logger.Info("Updating e-paper has been done.")
	return 0
}
