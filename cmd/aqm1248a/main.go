package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"periph.io/x/host/v3"

	"github.com/BeatGlow/aqm1248a"
	"github.com/BeatGlow/aqm1248a/internal/config"
	"github.com/BeatGlow/aqm1248a/internal/frame"
	"github.com/BeatGlow/aqm1248a/internal/refresh"
)

func main() {
	var (
		spi           = aqm1248a.DefaultSPIConfig
		configFlag    = flag.String("config", "", "Path to a YAML panel configuration (overrides the pin flags)")
		busFlag       = flag.String("bus", spi.Bus, "SPI port name (default: first available)")
		clkFlag       = flag.String("clk", spi.CLK, "SPI clock GPIO pin")
		mosiFlag      = flag.String("mosi", spi.MOSI, "SPI data out GPIO pin")
		csFlag        = flag.String("cs", spi.CS, "SPI chip select GPIO pin")
		rsFlag        = flag.String("rs", spi.RS, "Register select GPIO pin (RS)")
		resetFlag     = flag.String("reset", spi.Reset, "Reset GPIO pin")
		intervalFlag  = flag.Duration("interval", config.DefaultInterval, "Time between frames")
		framesFlag    = flag.String("frames", "blank,pattern", "Comma separated frames: blank, fill, pattern, text:<msg> or a file")
		contrastFlag  = flag.Int("contrast", -1, "Contrast ratio 0-7 (default: keep power-up value)")
		volumeFlag    = flag.Int("volume", -1, "Electronic volume 0-63 (default: keep power-up value)")
		invertFlag    = flag.Bool("invert", false, "Reverse video")
		rotateFlag    = flag.String("rotate", "", "Display rotation: standard or flip")
		logLevelFlag  = flag.String("log-level", "", "Log level (default: info)")
		writeConfFlag = flag.String("write-config", "", "Write the effective configuration to this path and exit")
	)
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	var (
		cfg *config.Config
		err error
	)
	if *configFlag != "" {
		if cfg, err = config.Load(*configFlag); err != nil {
			fatal(err)
		}
	} else {
		cfg = config.Default()
		p := &cfg.Panels[0]
		p.Bus, p.CLK, p.MOSI, p.CS = *busFlag, *clkFlag, *mosiFlag, *csFlag
		p.RS, p.Reset = *rsFlag, *resetFlag
		p.Interval = *intervalFlag
		p.Frames = strings.Split(*framesFlag, ",")
		p.Inverted = *invertFlag
		p.Rotation = *rotateFlag
		if *contrastFlag > 7 || *volumeFlag > 63 {
			fatal(errors.New("contrast must be 0-7 and volume 0-63"))
		}
		if *contrastFlag >= 0 {
			v := uint8(*contrastFlag)
			p.Contrast = &v
		}
		if *volumeFlag >= 0 {
			v := uint8(*volumeFlag)
			p.Volume = &v
		}
		if err = cfg.Validate(); err != nil {
			fatal(err)
		}
	}
	if *logLevelFlag != "" {
		cfg.Log.Level = *logLevelFlag
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		fatal(err)
	}
	zerolog.SetGlobalLevel(level)
	if level <= zerolog.DebugLevel {
		aqm1248a.SetLogger(log.Logger.With().Str("driver", "aqm1248a").Logger())
	}

	if *writeConfFlag != "" {
		if err = config.Save(*writeConfFlag, cfg); err != nil {
			fatal(err)
		}
		log.Info().Str("path", *writeConfFlag).Msg("configuration written")
		return
	}

	if _, err = host.Init(); err != nil {
		fatal(err)
	}

	var (
		runners []*refresh.Runner
		devs    []*aqm1248a.Dev
	)
	closeAll := func() {
		for _, d := range devs {
			if err := d.Close(); err != nil {
				log.Warn().Err(err).Str("display", d.String()).Msg("close failed")
			}
		}
	}
	for i := range cfg.Panels {
		p := &cfg.Panels[i]
		r, d, err := openPanel(p)
		if err != nil {
			closeAll()
			fatal(fmt.Errorf("panel %s: %w", p.Name, err))
		}
		devs = append(devs, d)
		runners = append(runners, r)
	}
	defer closeAll()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Int("panels", len(runners)).Msg("hit control-c to stop...")
	if err = refresh.RunAll(ctx, runners...); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("refresh failed")
		closeAll()
		os.Exit(1)
	}
}

// openPanel initializes one display and applies its settings.
func openPanel(p *config.Panel) (*refresh.Runner, *aqm1248a.Dev, error) {
	logger := log.With().Str("panel", p.Name).Logger()

	frames, err := frame.ParseAll(p.Frames)
	if err != nil {
		return nil, nil, err
	}
	rotation, err := aqm1248a.ParseRotation(p.Rotation)
	if err != nil {
		return nil, nil, err
	}

	d, err := aqm1248a.NewSPI(p.SPIConfig())
	if err != nil {
		return nil, nil, err
	}
	logger.Info().Str("display", d.String()).Msg("initialized")

	settings := []func() error{
		func() error { return d.SetRotation(rotation) },
	}
	if p.Contrast != nil {
		settings = append(settings, func() error { return d.SetContrast(*p.Contrast) })
	}
	if p.Volume != nil {
		settings = append(settings, func() error { return d.SetContrastDetail(*p.Volume) })
	}
	if p.Inverted {
		settings = append(settings, func() error { return d.SetDisplayColor(aqm1248a.ColorInverted) })
	}
	for _, apply := range settings {
		if err = apply(); err != nil {
			_ = d.Close()
			return nil, nil, err
		}
	}

	return &refresh.Runner{
		Name:     p.Name,
		Panel:    d,
		Frames:   frames,
		Interval: p.Interval,
		Logger:   logger,
	}, d, nil
}

func fatal(err error) {
	log.Error().Err(err).Msg("fatal")
	os.Exit(1)
}
