package main

import (
	"fmt"
	"strings"

	"github.com/danmuck/wydcodec/internal/config"
)

// overrides carry command line values; nil pointers leave the config alone.
type overrides struct {
	keys     *string
	database *string
	charset  *string
	metrics  *string
	strict   bool
	port     uint
}

func resolveConfig(path string, o overrides) (config.Config, error) {
	cfg := config.DefaultConfig()
	if strings.TrimSpace(path) != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	if o.keys != nil {
		cfg.KeyFile = strings.TrimSpace(*o.keys)
	}
	if o.database != nil {
		cfg.Database = strings.TrimSpace(*o.database)
	}
	if o.charset != nil {
		cfg.PasswordCharset = strings.TrimSpace(*o.charset)
	}
	if o.metrics != nil {
		cfg.MetricsTextfile = strings.TrimSpace(*o.metrics)
	}
	if o.strict {
		cfg.StrictFraming = true
	}
	if o.port != 0 {
		if o.port > 0xFFFF {
			return config.Config{}, fmt.Errorf("port out of range: %d", o.port)
		}
		cfg.CapturePort = uint16(o.port)
	}

	if err := config.ValidateConfig(cfg); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
