package source

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"
	"time"
)

type SyntheticConfig struct {
	FPS       float64       `yaml:"-"`
	Duration  time.Duration `yaml:"duration"`
	Center    float64       `yaml:"center"`
	Amplitude float64       `yaml:"amplitude"`
	Period    time.Duration `yaml:"period"`
	Noise     float64       `yaml:"noise"`
	Dropout   float64       `yaml:"dropout"`
	Seed      int64         `yaml:"seed"`
}

func DefaultSyntheticConfig() SyntheticConfig {
	return SyntheticConfig{
		FPS:       30,
		Duration:  20 * time.Second,
		Center:    0.55,
		Amplitude: 0.12,
		Period:    6 * time.Second,
		Noise:     0.01,
		Dropout:   0.02,
		Seed:      1,
	}
}

// Synthetic generates a head nodding around Center. A zero Duration streams
// forever.
type Synthetic struct {
	cfg   SyntheticConfig
	rng   *rand.Rand
	frame int
}

func NewSynthetic(cfg SyntheticConfig) (*Synthetic, error) {
	if cfg.FPS <= 0 {
		return nil, fmt.Errorf("synthetic: fps must be positive, got %v", cfg.FPS)
	}
	if cfg.Period <= 0 {
		return nil, fmt.Errorf("synthetic: period must be positive, got %v", cfg.Period)
	}
	if cfg.Dropout < 0 || cfg.Dropout > 1 {
		return nil, fmt.Errorf("synthetic: dropout must be in [0,1], got %v", cfg.Dropout)
	}
	return &Synthetic{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

func (s *Synthetic) Next(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}

	t := time.Duration(float64(s.frame) / s.cfg.FPS * float64(time.Second))
	if s.cfg.Duration > 0 && t > s.cfg.Duration {
		return Frame{}, io.EOF
	}
	s.frame++

	// Draw noise before the dropout check so the sequence does not depend on it.
	nx := s.rng.NormFloat64() * s.cfg.Noise
	ny := s.rng.NormFloat64() * s.cfg.Noise
	if s.rng.Float64() < s.cfg.Dropout {
		return Frame{Time: t}, nil
	}

	phase := 2 * math.Pi * t.Seconds() / s.cfg.Period.Seconds()
	y := s.cfg.Center + s.cfg.Amplitude*math.Sin(phase) + ny
	x := 0.5 + nx

	return Frame{Time: t, Landmark: pointPtr(clampUnit(x), clampUnit(y))}, nil
}

func (s *Synthetic) Close() error { return nil }

func clampUnit(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
