package session

import (
	"errors"
	"time"

	"github.com/san-kum/headscroll/internal/headscroll"
	"github.com/san-kum/headscroll/internal/source"
)

const DefaultAutoCalibrateAfter = 2 * time.Second

// MaxStepScale bounds the ReferenceFPS scaling so a detector stall does not
// turn into one large jump.
const MaxStepScale = 4.0

var ErrStopped = errors.New("session: stopped")

// Scroller applies a signed vertical delta to the page and reports how far
// the page actually moved.
type Scroller interface {
	ScrollBy(dy float64) float64
}

type Indicator interface {
	Show(symbol string)
	Hide()
}

type Metric interface {
	Name() string
	Observe(r Record)
	Value() float64
	Reset()
}

type Observer interface {
	OnFrame(r Record)
}

// Record is what a session logged for one processed frame.
type Record struct {
	Time        time.Duration
	Detected    bool
	Point       headscroll.Point
	Baseline    float64
	Decision    headscroll.Decision
	Calibration bool
	Offset      float64
}

type Config struct {
	AutoCalibrate      bool
	AutoCalibrateAfter time.Duration
	// ReferenceFPS scales each applied step by frameInterval*ReferenceFPS so
	// scroll speed stops depending on the frame rate. Zero keeps one fixed
	// step per frame. The scale is capped at MaxStepScale.
	ReferenceFPS float64
}

func DefaultConfig() Config {
	return Config{
		AutoCalibrate:      true,
		AutoCalibrateAfter: DefaultAutoCalibrateAfter,
	}
}

type Result struct {
	Records      []Record
	Metrics      map[string]float64
	Frames       int
	Skipped      int
	Calibrations int
	FinalOffset  float64
}

// Frames converts recorded frames back into a replayable sequence.
func Frames(records []Record) []source.Frame {
	frames := make([]source.Frame, len(records))
	for i, r := range records {
		frames[i].Time = r.Time
		if r.Detected {
			p := r.Point
			frames[i].Landmark = &p
		}
	}
	return frames
}
