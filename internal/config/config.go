package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/headscroll/internal/headscroll"
	"github.com/san-kum/headscroll/internal/landmark"
	"github.com/san-kum/headscroll/internal/logging"
	"github.com/san-kum/headscroll/internal/session"
	"github.com/san-kum/headscroll/internal/source"
	"github.com/san-kum/headscroll/internal/viewport"
)

const (
	DefaultFPS    = 30
	DefaultSource = "synthetic"
	DefaultData   = ".headscroll"
)

var Sources = []string{"synthetic", "remote", "replay"}

type Config struct {
	Source             string                 `yaml:"source"`
	DeadZone           float64                `yaml:"dead_zone"`
	Step               float64                `yaml:"step"`
	LandmarkIndex      int                    `yaml:"landmark_index"`
	FPS                int                    `yaml:"fps"`
	AutoCalibrate      bool                   `yaml:"auto_calibrate"`
	AutoCalibrateAfter time.Duration          `yaml:"auto_calibrate_after"`
	ReferenceFPS       float64                `yaml:"reference_fps"`
	Page               PageConfig             `yaml:"page"`
	Synthetic          source.SyntheticConfig `yaml:"synthetic"`
	Detector           source.RemoteConfig    `yaml:"detector"`
	Log                logging.Config         `yaml:"log"`
}

type PageConfig struct {
	ContentHeight float64 `yaml:"content_height"`
	ViewHeight    float64 `yaml:"view_height"`
}

func DefaultConfig() *Config {
	return &Config{
		Source:             DefaultSource,
		DeadZone:           headscroll.DefaultDeadZone,
		Step:               headscroll.DefaultStep,
		LandmarkIndex:      landmark.NoseTip,
		FPS:                DefaultFPS,
		AutoCalibrate:      true,
		AutoCalibrateAfter: session.DefaultAutoCalibrateAfter,
		Page: PageConfig{
			ContentHeight: viewport.DefaultContentHeight,
			ViewHeight:    viewport.DefaultViewHeight,
		},
		Synthetic: source.DefaultSyntheticConfig(),
		Detector:  source.DefaultRemoteConfig(),
		Log:       logging.DefaultConfig(),
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.DeadZone < 0 || c.DeadZone >= 1 {
		return fmt.Errorf("dead_zone must be in [0,1), got %v", c.DeadZone)
	}
	if c.Step <= 0 {
		return fmt.Errorf("step must be positive, got %v", c.Step)
	}
	if c.LandmarkIndex < 0 || c.LandmarkIndex >= landmark.NumLandmarks {
		return fmt.Errorf("landmark_index must be in [0,%d), got %d", landmark.NumLandmarks, c.LandmarkIndex)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", c.FPS)
	}
	if c.AutoCalibrateAfter < 0 {
		return fmt.Errorf("auto_calibrate_after must not be negative, got %v", c.AutoCalibrateAfter)
	}
	if c.ReferenceFPS < 0 {
		return fmt.Errorf("reference_fps must not be negative, got %v", c.ReferenceFPS)
	}
	if c.Page.ViewHeight <= 0 || c.Page.ContentHeight <= 0 {
		return fmt.Errorf("page heights must be positive, got %v/%v", c.Page.ContentHeight, c.Page.ViewHeight)
	}
	valid := false
	for _, s := range Sources {
		if c.Source == s {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("source must be one of %v, got %q", Sources, c.Source)
	}
	return nil
}

// ApplyEnv overlays HEADSCROLL_* environment variables. Variables loaded from a
// .env file are seen here too.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("HEADSCROLL_SOURCE"); v != "" {
		c.Source = v
	}
	if v := os.Getenv("HEADSCROLL_DETECTOR_URL"); v != "" {
		c.Detector.URL = v
	}
	if v := os.Getenv("HEADSCROLL_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("HEADSCROLL_LOG_FILE"); v != "" {
		c.Log.File = v
	}
	if v := os.Getenv("HEADSCROLL_DEAD_ZONE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("HEADSCROLL_DEAD_ZONE: %w", err)
		}
		c.DeadZone = f
	}
	return nil
}

func (c *Config) NewController() (*headscroll.Controller, error) {
	return headscroll.NewController(c.DeadZone, c.Step)
}

func (c *Config) SessionConfig() session.Config {
	return session.Config{
		AutoCalibrate:      c.AutoCalibrate,
		AutoCalibrateAfter: c.AutoCalibrateAfter,
		ReferenceFPS:       c.ReferenceFPS,
	}
}

func (c *Config) RemoteConfig() source.RemoteConfig {
	rc := c.Detector
	rc.LandmarkIndex = c.LandmarkIndex
	return rc
}

func (c *Config) SyntheticConfig() source.SyntheticConfig {
	sc := c.Synthetic
	sc.FPS = float64(c.FPS)
	return sc
}

func (c *Config) NewViewport() *viewport.Viewport {
	return viewport.New(c.Page.ContentHeight, c.Page.ViewHeight)
}
