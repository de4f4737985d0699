package headscroll

import (
	"fmt"
	"math"
)

// Controller maps a per-frame landmark to a scroll decision using a
// dead-zone filtered offset from a calibrated baseline.
type Controller struct {
	DeadZone float64
	Step     float64

	baseline    float64
	calibrating bool
}

func NewController(deadZone, step float64) (*Controller, error) {
	if math.IsNaN(deadZone) || deadZone < 0 || deadZone >= 1 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidDeadZone, deadZone)
	}
	if !(step > 0) || math.IsInf(step, 0) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidStep, step)
	}
	return &Controller{
		DeadZone: deadZone,
		Step:     step,
		baseline: DefaultBaseline,
	}, nil
}

// RequestCalibration arms a one-shot calibration consumed by the next sample.
func (c *Controller) RequestCalibration() {
	c.calibrating = true
}

// ProcessSample decides the scroll for one frame. A calibration frame moves
// the baseline to p.Y and never scrolls.
func (c *Controller) ProcessSample(p Point) (Decision, error) {
	if !p.IsValid() {
		return Decision{}, fmt.Errorf("%w: (%v, %v)", ErrSampleOutOfRange, p.X, p.Y)
	}

	if c.calibrating {
		c.baseline = p.Y
		c.calibrating = false
		return Decision{Direction: None}, nil
	}

	delta := p.Y - c.baseline
	switch {
	case delta > c.DeadZone:
		return Decision{Direction: Down, Magnitude: c.Step}, nil
	case delta < -c.DeadZone:
		return Decision{Direction: Up, Magnitude: c.Step}, nil
	default:
		return Decision{Direction: None}, nil
	}
}

func (c *Controller) Baseline() float64 { return c.baseline }

func (c *Controller) Calibrating() bool { return c.calibrating }

// Reset restores the default baseline and drops any pending calibration.
func (c *Controller) Reset() {
	c.baseline = DefaultBaseline
	c.calibrating = false
}

// GetParams returns tunable parameters for live adjustment
func (c *Controller) GetParams() map[string]float64 {
	return map[string]float64{
		"dead_zone": c.DeadZone,
		"step":      c.Step,
	}
}

// SetParam adjusts a tunable parameter, rejecting values NewController would.
func (c *Controller) SetParam(name string, value float64) error {
	switch name {
	case "dead_zone":
		if math.IsNaN(value) || value < 0 || value >= 1 {
			return fmt.Errorf("%w: got %v", ErrInvalidDeadZone, value)
		}
		c.DeadZone = value
	case "step":
		if !(value > 0) || math.IsInf(value, 0) {
			return fmt.Errorf("%w: got %v", ErrInvalidStep, value)
		}
		c.Step = value
	default:
		return fmt.Errorf("unknown parameter: %s", name)
	}
	return nil
}
