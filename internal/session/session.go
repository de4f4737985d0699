package session

import (
	"context"
	"errors"
	"io"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/headscroll/internal/headscroll"
	"github.com/san-kum/headscroll/internal/logging"
	"github.com/san-kum/headscroll/internal/source"
)

// Session pulls frames from a source, runs them through the controller and
// forwards decisions to the scroller and indicator.
type Session struct {
	ctrl      *headscroll.Controller
	src       source.Source
	scroller  Scroller
	indicator Indicator
	cfg       Config
	metrics   []Metric
	observers []Observer
	log       *logrus.Entry

	running     bool
	resumed     bool
	autoPending bool
	started     bool
	startAt     time.Duration
	hasLast     bool
	lastTime    time.Duration
	offset      float64

	frames       int
	skipped      int
	calibrations int
}

// New builds a stopped session. scroller and indicator may be nil.
func New(ctrl *headscroll.Controller, src source.Source, scroller Scroller, indicator Indicator, cfg Config) *Session {
	return &Session{
		ctrl:      ctrl,
		src:       src,
		scroller:  scroller,
		indicator: indicator,
		cfg:       cfg,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		log:       logging.Discard(),
	}
}

func (s *Session) AddMetric(m Metric)        { s.metrics = append(s.metrics, m) }
func (s *Session) AddObserver(o Observer)    { s.observers = append(s.observers, o) }
func (s *Session) SetLogger(l *logrus.Entry) { s.log = l }

func (s *Session) Controller() *headscroll.Controller { return s.ctrl }
func (s *Session) Running() bool                      { return s.running }

// Start resumes frame processing and re-arms the timed auto-calibration.
func (s *Session) Start() {
	if s.running {
		return
	}
	s.running = true
	s.resumed = true
	s.started = false
	s.autoPending = s.cfg.AutoCalibrate
	s.log.Info("session started")
}

func (s *Session) Stop() {
	if !s.running {
		return
	}
	s.running = false
	s.autoPending = false
	s.log.Info("session stopped")
}

func (s *Session) Toggle() {
	if s.running {
		s.Stop()
	} else {
		s.Start()
	}
}

// Calibrate requests that the next detected frame become the neutral position.
func (s *Session) Calibrate() {
	s.ctrl.RequestCalibration()
	s.log.Debug("calibration requested")
}

// Step processes one frame. ok is false when the frame was stale and skipped.
func (s *Session) Step(ctx context.Context) (rec Record, ok bool, err error) {
	if !s.running {
		return Record{}, false, ErrStopped
	}
	if err := ctx.Err(); err != nil {
		return Record{}, false, err
	}

	f, err := s.src.Next(ctx)
	if err != nil {
		return Record{}, false, err
	}

	now := f.Time
	if s.hasLast && now <= s.lastTime {
		s.skipped++
		return Record{}, false, nil
	}
	// The first frame after a start has no interval: the gap spans the pause.
	var interval time.Duration
	if s.hasLast && !s.resumed {
		interval = now - s.lastTime
	}
	s.resumed = false
	s.hasLast = true
	s.lastTime = now

	if !s.started {
		s.started = true
		s.startAt = now
	}
	if s.autoPending && now-s.startAt >= s.cfg.AutoCalibrateAfter {
		s.autoPending = false
		s.Calibrate()
	}

	s.frames++
	rec = Record{Time: f.Time}

	if f.Detected() {
		calibrating := s.ctrl.Calibrating()
		d, err := s.ctrl.ProcessSample(*f.Landmark)
		switch {
		case errors.Is(err, headscroll.ErrSampleOutOfRange):
			s.log.WithFields(logging.Fields{"t": f.Time, "x": f.Landmark.X, "y": f.Landmark.Y}).
				Debug("landmark outside frame, ignoring")
		case err != nil:
			return Record{}, false, err
		default:
			rec.Detected = true
			rec.Point = *f.Landmark
			rec.Decision = d
			rec.Calibration = calibrating
			if calibrating {
				s.calibrations++
				s.log.WithField("baseline", s.ctrl.Baseline()).Info("calibrated")
			}
			s.apply(d, interval)
		}
	}

	rec.Baseline = s.ctrl.Baseline()
	rec.Offset = s.offset

	for _, m := range s.metrics {
		m.Observe(rec)
	}
	for _, o := range s.observers {
		o.OnFrame(rec)
	}

	return rec, true, nil
}

func (s *Session) apply(d headscroll.Decision, interval time.Duration) {
	if !d.IsScroll() {
		if s.indicator != nil {
			s.indicator.Hide()
		}
		return
	}

	dy := d.Offset()
	if s.cfg.ReferenceFPS > 0 && interval > 0 {
		dy *= math.Min(interval.Seconds()*s.cfg.ReferenceFPS, MaxStepScale)
	}
	if s.scroller != nil {
		dy = s.scroller.ScrollBy(dy)
	}
	s.offset += dy
	if s.indicator != nil {
		s.indicator.Show(d.Symbol())
	}
}

// Run starts the session and steps until the source is exhausted, the
// session is stopped or ctx ends.
func (s *Session) Run(ctx context.Context) (*Result, error) {
	for _, m := range s.metrics {
		m.Reset()
	}
	s.Start()

	records := make([]Record, 0, 256)
	var runErr error
	for {
		rec, ok, err := s.Step(ctx)
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, ErrStopped) {
				runErr = err
			}
			break
		}
		if ok {
			records = append(records, rec)
		}
	}

	result := s.Stats()
	result.Records = records

	s.log.WithFields(logging.Fields{
		"frames":       result.Frames,
		"skipped":      result.Skipped,
		"calibrations": result.Calibrations,
	}).Info("session finished")

	return &result, runErr
}

// Stats summarizes the frames processed so far. Records are not retained by
// the session and are left empty.
func (s *Session) Stats() Result {
	r := Result{
		Metrics:      make(map[string]float64, len(s.metrics)),
		Frames:       s.frames,
		Skipped:      s.skipped,
		Calibrations: s.calibrations,
		FinalOffset:  s.offset,
	}
	for _, m := range s.metrics {
		r.Metrics[m.Name()] = m.Value()
	}
	return r
}
