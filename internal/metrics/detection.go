package metrics

import "github.com/san-kum/headscroll/internal/session"

type DetectionRate struct {
	name     string
	detected int
	frames   int
}

func NewDetectionRate() *DetectionRate {
	return &DetectionRate{
		name: "detection_rate",
	}
}

func (d *DetectionRate) Name() string {
	return d.name
}

func (d *DetectionRate) Observe(r session.Record) {
	d.frames++
	if r.Detected {
		d.detected++
	}
}

func (d *DetectionRate) Value() float64 {
	if d.frames == 0 {
		return 0
	}
	return float64(d.detected) / float64(d.frames)
}

func (d *DetectionRate) Reset() {
	d.detected = 0
	d.frames = 0
}

// Default returns the metrics attached to every session.
func Default() []session.Metric {
	return []session.Metric{
		NewScrollActivity(),
		NewFlicker(),
		NewDetectionRate(),
	}
}
