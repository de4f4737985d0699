package metrics

import "github.com/san-kum/headscroll/internal/session"

// ScrollActivity is the fraction of detected frames that scrolled.
type ScrollActivity struct {
	name     string
	scrolled int
	detected int
}

func NewScrollActivity() *ScrollActivity {
	return &ScrollActivity{
		name: "scroll_activity",
	}
}

func (s *ScrollActivity) Name() string {
	return s.name
}

func (s *ScrollActivity) Observe(r session.Record) {
	if !r.Detected {
		return
	}
	s.detected++
	if r.Decision.IsScroll() {
		s.scrolled++
	}
}

func (s *ScrollActivity) Value() float64 {
	if s.detected == 0 {
		return 0
	}
	return float64(s.scrolled) / float64(s.detected)
}

func (s *ScrollActivity) Reset() {
	s.scrolled = 0
	s.detected = 0
}
