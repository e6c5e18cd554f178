// Package config loads enulog settings from a YAML file, an optional .env
// file and ENULOG_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config is the complete application configuration.
type Config struct {
	CSVFile    string       `yaml:"csv_file"`
	Encoding   string       `yaml:"encoding"`
	Listen     string       `yaml:"listen"`
	OutDir     string       `yaml:"out_dir"`
	LogLevel   string       `yaml:"log_level"`
	AssetsHost string       `yaml:"assets_host"`
	Chart      ChartConfig  `yaml:"chart"`
	Figure     FigureConfig `yaml:"figure"`
}

// ChartConfig holds the marker style shared by charts and figures.
type ChartConfig struct {
	Palette    []string `yaml:"palette"`
	SymbolSize int      `yaml:"symbol_size"`
	Opacity    float64  `yaml:"opacity"`
	Height     string   `yaml:"height"`
}

// FigureConfig holds the static figure size in inches.
type FigureConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		CSVFile:  "7_enu_log.csv",
		Encoding: "utf-8",
		Listen:   "127.0.0.1:8050",
		OutDir:   "out",
		LogLevel: "info",
		Chart: ChartConfig{
			SymbolSize: 6,
			Opacity:    0.6,
			Height:     "70vh",
		},
		Figure: FigureConfig{Width: 10, Height: 6},
	}
}

// Load builds the configuration. path may be empty; a missing .env file is
// not an error. The result is not validated so that callers can apply their
// own overrides first; call Validate afterwards.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	str := map[string]*string{
		"ENULOG_CSV_FILE":    &c.CSVFile,
		"ENULOG_ENCODING":    &c.Encoding,
		"ENULOG_LISTEN":      &c.Listen,
		"ENULOG_OUT_DIR":     &c.OutDir,
		"ENULOG_LOG_LEVEL":   &c.LogLevel,
		"ENULOG_ASSETS_HOST": &c.AssetsHost,
	}
	for key, dst := range str {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	if v, ok := os.LookupEnv("ENULOG_PALETTE"); ok {
		c.Chart.Palette = splitList(v)
	}
	if v, ok := os.LookupEnv("ENULOG_SYMBOL_SIZE"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ENULOG_SYMBOL_SIZE: %w", err)
		}
		c.Chart.SymbolSize = n
	}
	return nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.CSVFile == "" {
		return errors.New("csv_file is required")
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	switch strings.ToLower(c.Encoding) {
	case "utf-8", "utf8", "gbk":
	default:
		return fmt.Errorf("encoding %q: want utf-8 or gbk", c.Encoding)
	}
	if c.Chart.SymbolSize <= 0 {
		return fmt.Errorf("chart.symbol_size must be positive, got %d", c.Chart.SymbolSize)
	}
	if c.Chart.Opacity <= 0 || c.Chart.Opacity > 1 {
		return fmt.Errorf("chart.opacity must be in (0, 1], got %g", c.Chart.Opacity)
	}
	if c.Figure.Width <= 0 || c.Figure.Height <= 0 {
		return errors.New("figure width and height must be positive")
	}
	return nil
}

// SetupLogging applies the configured level to the logrus standard logger.
func (c *Config) SetupLogging() {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05.000"})
}

func splitList(v string) []string {
	out := make([]string, 0)
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
