// Package config defines the dat viewer preferences and helpers for loading
// or saving them to disk.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/edward-ap/datviewer/internal/render"
	"github.com/edward-ap/datviewer/internal/waveform"
)

const (
	// AppID is the stable application identifier used for config storage.
	AppID = "datviewer"
	// AppConfigSubdir is the OS-specific directory that holds the config file.
	AppConfigSubdir = "DatViewer"
	// AppConfigName is the JSON file stored on disk.
	AppConfigName = "config.json"

	// DefaultWidth and DefaultHeight size the main window on first start.
	DefaultWidth  = 800
	DefaultHeight = 600
	// MinWindowWidth keeps the button row readable.
	MinWindowWidth = 480
	// MinWindowHeight leaves room for at least one row of thumbnails.
	MinWindowHeight = 320
)

// Config aggregates every user-facing preference persisted between sessions.
// Gain itself is never persisted; it resets whenever a file is opened.
type Config struct {
	WindowW      int     `json:"windowW"`
	WindowH      int     `json:"windowH"`
	ThumbSize    int     `json:"thumbSize"`
	GainFactor   float64 `json:"gainFactor"`
	Renderer     string  `json:"renderer"`
	LastDir      string  `json:"lastDir,omitempty"`
	ReloadOnGain bool    `json:"reloadOnGain,omitempty"`
}

// ConfigDir resolves the writable directory that should contain the config file.
func ConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppConfigSubdir), nil
}

// ConfigPath is a helper that returns the full path to config.json.
func ConfigPath() (string, error) {
	d, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, AppConfigName), nil
}

// Load reads the config from disk. A missing file yields defaults, which are
// written out on a best-effort basis.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			_ = cfg.Save()
			return cfg, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("config parse error: %w", err)
	}
	cfg.applyRuntimeDefaults()
	return cfg, nil
}

// Save persists the configuration to disk, creating directories as needed.
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// Default builds an in-memory config populated with safe defaults.
func Default() *Config {
	cfg := &Config{
		WindowW:    DefaultWidth,
		WindowH:    DefaultHeight,
		ThumbSize:  render.DefaultSize,
		GainFactor: waveform.DefaultGainFactor,
		Renderer:   render.KindPlot,
	}
	cfg.applyRuntimeDefaults()
	return cfg
}

// applyRuntimeDefaults normalizes values after a load so the UI always
// receives sane inputs.
func (c *Config) applyRuntimeDefaults() {
	if c.WindowW == 0 {
		c.WindowW = DefaultWidth
	}
	if c.WindowW < MinWindowWidth {
		c.WindowW = MinWindowWidth
	}
	if c.WindowH == 0 {
		c.WindowH = DefaultHeight
	}
	if c.WindowH < MinWindowHeight {
		c.WindowH = MinWindowHeight
	}
	c.ThumbSize = render.ClampSize(c.ThumbSize)
	if !(c.GainFactor > 1) {
		c.GainFactor = waveform.DefaultGainFactor
	}
	c.Renderer = strings.ToLower(strings.TrimSpace(c.Renderer))
	if _, err := render.NewRenderer(c.Renderer); err != nil || c.Renderer == "" {
		c.Renderer = render.KindPlot
	}
	if c.LastDir != "" {
		if st, err := os.Stat(c.LastDir); err != nil || !st.IsDir() {
			c.LastDir = ""
		}
	}
}
