package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/wydcodec/internal/capture"
	"github.com/danmuck/wydcodec/internal/logging"
	"github.com/danmuck/wydcodec/internal/protocol/dispatch"
	"golang.org/x/text/encoding/htmlindex"
)

// Config drives the wydcodec command.
type Config struct {
	KeyFile         string `toml:"key_file"`
	CapturePort     uint16 `toml:"capture_port"`
	StrictFraming   bool   `toml:"strict_framing"`
	PasswordCharset string `toml:"password_charset"`
	Database        string `toml:"database"`
	MetricsTextfile string `toml:"metrics_textfile"`
	LogLevel        string `toml:"log_level"`
	OutputDir       string `toml:"output_dir"`
}

type fileConfig struct {
	KeyFile         string `toml:"key_file"`
	CapturePort     int64  `toml:"capture_port"`
	StrictFraming   bool   `toml:"strict_framing"`
	PasswordCharset string `toml:"password_charset"`
	Database        string `toml:"database"`
	MetricsTextfile string `toml:"metrics_textfile"`
	LogLevel        string `toml:"log_level"`
	OutputDir       string `toml:"output_dir"`
}

func DefaultConfig() Config {
	return Config{
		KeyFile:         "Keys.bin",
		CapturePort:     capture.DefaultPort,
		PasswordCharset: dispatch.DefaultPasswordCharset,
		LogLevel:        "info",
		OutputDir:       ".",
	}
}

// LoadConfig applies the keys defined in path over DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("config parse failed (%s): unknown key %q", path, undecoded[0].String())
	}

	if meta.IsDefined("key_file") {
		cfg.KeyFile = strings.TrimSpace(raw.KeyFile)
	}
	if meta.IsDefined("capture_port") {
		if raw.CapturePort <= 0 || raw.CapturePort > 0xFFFF {
			return Config{}, fmt.Errorf("config parse failed (%s): capture_port out of range: %d", path, raw.CapturePort)
		}
		cfg.CapturePort = uint16(raw.CapturePort)
	}
	if meta.IsDefined("strict_framing") {
		cfg.StrictFraming = raw.StrictFraming
	}
	if meta.IsDefined("password_charset") {
		cfg.PasswordCharset = strings.TrimSpace(raw.PasswordCharset)
	}
	if meta.IsDefined("database") {
		cfg.Database = strings.TrimSpace(raw.Database)
	}
	if meta.IsDefined("metrics_textfile") {
		cfg.MetricsTextfile = strings.TrimSpace(raw.MetricsTextfile)
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("output_dir") {
		cfg.OutputDir = strings.TrimSpace(raw.OutputDir)
	}

	if err := ValidateConfig(cfg); err != nil {
		return Config{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.KeyFile) == "" {
		return fmt.Errorf("key_file is required")
	}
	if cfg.CapturePort == 0 {
		return fmt.Errorf("capture_port is required")
	}
	if _, err := htmlindex.Get(cfg.PasswordCharset); err != nil {
		return fmt.Errorf("password_charset %q: %w", cfg.PasswordCharset, err)
	}
	if _, ok := logging.ParseLevel(cfg.LogLevel); !ok {
		return fmt.Errorf("unknown log_level %q", cfg.LogLevel)
	}
	if strings.TrimSpace(cfg.OutputDir) == "" {
		return fmt.Errorf("output_dir is required")
	}
	return nil
}
