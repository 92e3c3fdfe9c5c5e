package main

import (
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

// config is read from the environment first; flags override it.
type config struct {
	Port    string        `env:"AKSERVO_PORT"`
	Baud    int           `env:"AKSERVO_BAUD" envDefault:"115200"`
	Poll    time.Duration `env:"AKSERVO_POLL" envDefault:"10ms"`
	LogFile string        `env:"AKSERVO_LOG" envDefault:"akservo.log"`
	List    bool
}

func loadConfig(args []string) (config, error) {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("env: %w", err)
	}

	fs := flag.NewFlagSet("akservo", flag.ContinueOnError)
	fs.StringVar(&cfg.Port, "port", cfg.Port, "serial port to connect to at start (optional)")
	fs.IntVar(&cfg.Baud, "baud", cfg.Baud, "baudrate")
	fs.DurationVar(&cfg.Poll, "poll", cfg.Poll, "telemetry poll interval")
	fs.StringVar(&cfg.LogFile, "log", cfg.LogFile, "log file")
	fs.BoolVar(&cfg.List, "list", false, "list serial ports and exit")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if cfg.Baud <= 0 {
		return cfg, fmt.Errorf("baud must be positive, got %d", cfg.Baud)
	}
	if cfg.Poll <= 0 {
		return cfg, errors.New("poll interval must be positive")
	}
	return cfg, nil
}
