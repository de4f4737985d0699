package config

import (
	"sort"
	"time"
)

var Presets = map[string]func(*Config){
	"default": func(c *Config) {},
	"sensitive": func(c *Config) {
		c.DeadZone = 0.03
		c.Step = 15
	},
	"relaxed": func(c *Config) {
		c.DeadZone = 0.08
		c.Step = 40
		c.AutoCalibrateAfter = 3 * time.Second
	},
	"smooth": func(c *Config) {
		c.Step = 12
		c.ReferenceFPS = 60
	},
	"demo": func(c *Config) {
		c.Source = "synthetic"
		c.Synthetic.Duration = 30 * time.Second
		c.Synthetic.Amplitude = 0.15
		c.Synthetic.Noise = 0.02
	},
}

// GetPreset returns a default config with the named preset applied, or nil.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
