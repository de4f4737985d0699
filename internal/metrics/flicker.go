package metrics

import (
	"github.com/san-kum/headscroll/internal/headscroll"
	"github.com/san-kum/headscroll/internal/session"
)

// Flicker is the number of direction reversals (up to down or down to up)
// per scrolling frame. Idle frames between scrolls do not break a reversal,
// so noisy nodding around the baseline shows up as a high value.
type Flicker struct {
	name      string
	last      headscroll.Direction
	reversals int
	scrolling int
}

func NewFlicker() *Flicker {
	return &Flicker{
		name: "flicker",
	}
}

func (f *Flicker) Name() string {
	return f.name
}

func (f *Flicker) Observe(r session.Record) {
	if !r.Detected || r.Calibration || !r.Decision.IsScroll() {
		return
	}
	if f.last != headscroll.None && r.Decision.Direction != f.last {
		f.reversals++
	}
	f.last = r.Decision.Direction
	f.scrolling++
}

func (f *Flicker) Value() float64 {
	if f.scrolling == 0 {
		return 0
	}
	return float64(f.reversals) / float64(f.scrolling)
}

func (f *Flicker) Reset() {
	f.last = headscroll.None
	f.reversals = 0
	f.scrolling = 0
}
