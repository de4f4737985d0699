package session

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/san-kum/headscroll/internal/headscroll"
	"github.com/san-kum/headscroll/internal/indicator"
	"github.com/san-kum/headscroll/internal/source"
	"github.com/san-kum/headscroll/internal/viewport"
)

const frameDt = 33 * time.Millisecond

func at(i int) time.Duration { return time.Duration(i) * frameDt }

func face(i int, y float64) source.Frame {
	return source.Frame{Time: at(i), Landmark: &headscroll.Point{X: 0.5, Y: y}}
}

func noFace(i int) source.Frame {
	return source.Frame{Time: at(i)}
}

type testSession struct {
	*Session
	view *viewport.Viewport
	ind  *indicator.State
}

func newTestSession(t *testing.T, frames []source.Frame, cfg Config) testSession {
	t.Helper()
	ctrl, err := headscroll.NewController(0.05, 25)
	if err != nil {
		t.Fatal(err)
	}
	view := viewport.New(10000, 500)
	ind := indicator.New()
	s := New(ctrl, source.NewReplay(frames), view, ind, cfg)
	s.Start()
	return testSession{Session: s, view: view, ind: ind}
}

func noAuto() Config {
	cfg := DefaultConfig()
	cfg.AutoCalibrate = false
	return cfg
}

func mustStep(t *testing.T, s *Session) Record {
	t.Helper()
	rec, ok, err := s.Step(context.Background())
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if !ok {
		t.Fatal("frame unexpectedly skipped")
	}
	return rec
}

func TestStep_AppliesDecisions(t *testing.T) {
	ts := newTestSession(t, []source.Frame{
		face(0, 0.58), face(1, 0.58), face(2, 0.52), face(3, 0.40),
	}, noAuto())

	rec := mustStep(t, ts.Session)
	if rec.Decision.Direction != headscroll.Down || ts.view.Offset() != 25 {
		t.Errorf("expected down to 25, got %s at %v", rec.Decision, ts.view.Offset())
	}
	if !ts.ind.Visible() || ts.ind.Symbol() != "⬇️" {
		t.Errorf("indicator should show down, got %q visible=%v", ts.ind.Symbol(), ts.ind.Visible())
	}

	mustStep(t, ts.Session)
	if ts.view.Offset() != 50 {
		t.Errorf("expected offset 50, got %v", ts.view.Offset())
	}

	rec = mustStep(t, ts.Session)
	if rec.Decision.Direction != headscroll.None || ts.ind.Visible() {
		t.Errorf("dead zone frame should hide indicator, got %s", rec.Decision)
	}

	rec = mustStep(t, ts.Session)
	if rec.Decision.Direction != headscroll.Up || ts.view.Offset() != 25 {
		t.Errorf("expected up to 25, got %s at %v", rec.Decision, ts.view.Offset())
	}
	if rec.Offset != 25 {
		t.Errorf("record offset %v, want 25", rec.Offset)
	}
}

func TestStep_SkipsStaleFrames(t *testing.T) {
	frames := []source.Frame{face(1, 0.7), face(1, 0.7), face(0, 0.7), face(2, 0.7)}
	ts := newTestSession(t, frames, noAuto())

	mustStep(t, ts.Session)
	for i := 0; i < 2; i++ {
		if _, ok, err := ts.Step(context.Background()); ok || err != nil {
			t.Fatalf("stale frame %d processed (ok=%v err=%v)", i, ok, err)
		}
	}
	mustStep(t, ts.Session)

	if ts.view.Offset() != 50 {
		t.Errorf("only two frames should scroll, offset %v", ts.view.Offset())
	}
}

func TestStep_NoFaceKeepsState(t *testing.T) {
	ts := newTestSession(t, []source.Frame{face(0, 0.9), noFace(1), face(2, 0.3)}, noAuto())
	ts.Calibrate()

	mustStep(t, ts.Session)
	ts.Calibrate()

	rec := mustStep(t, ts.Session)
	if rec.Detected || rec.Decision.IsScroll() {
		t.Errorf("faceless frame produced %+v", rec)
	}
	if rec.Baseline != 0.9 {
		t.Errorf("faceless frame changed baseline to %v", rec.Baseline)
	}
	if !ts.Controller().Calibrating() {
		t.Error("faceless frame consumed the calibration request")
	}

	rec = mustStep(t, ts.Session)
	if !rec.Calibration || rec.Baseline != 0.3 {
		t.Errorf("expected calibration to 0.3, got %+v", rec)
	}
}

func TestStep_AutoCalibration(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AutoCalibrateAfter = 3 * frameDt

	var frames []source.Frame
	for i := 0; i < 12; i++ {
		frames = append(frames, face(i, 0.8))
	}
	ts := newTestSession(t, frames, cfg)

	var calibrated []int
	for i := 0; i < 6; i++ {
		if rec := mustStep(t, ts.Session); rec.Calibration {
			calibrated = append(calibrated, i)
		}
	}
	if len(calibrated) != 1 || calibrated[0] != 3 {
		t.Fatalf("expected one auto calibration at frame 3, got %v", calibrated)
	}
	if ts.Controller().Baseline() != 0.8 {
		t.Errorf("expected baseline 0.8, got %v", ts.Controller().Baseline())
	}

	ts.Toggle()
	if _, _, err := ts.Step(context.Background()); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
	ts.Toggle()

	calibrated = calibrated[:0]
	for i := 0; i < 6; i++ {
		if rec := mustStep(t, ts.Session); rec.Calibration {
			calibrated = append(calibrated, i)
		}
	}
	if len(calibrated) != 1 || calibrated[0] != 3 {
		t.Errorf("restart should re-arm auto calibration, got %v", calibrated)
	}
}

func TestStep_OutOfRangeIgnored(t *testing.T) {
	ts := newTestSession(t, []source.Frame{face(0, 1.3), face(1, 0.9)}, noAuto())
	ts.Calibrate()

	rec := mustStep(t, ts.Session)
	if rec.Detected {
		t.Error("out of range landmark should be treated as undetected")
	}
	rec = mustStep(t, ts.Session)
	if !rec.Calibration || rec.Baseline != 0.9 {
		t.Errorf("calibration should wait for a valid sample, got %+v", rec)
	}
}

func TestStep_ReferenceFPS(t *testing.T) {
	cfg := noAuto()
	cfg.ReferenceFPS = 60

	frames := []source.Frame{
		{Time: 0, Landmark: &headscroll.Point{Y: 0.7}},
		{Time: 50 * time.Millisecond, Landmark: &headscroll.Point{Y: 0.7}},
	}
	ts := newTestSession(t, frames, cfg)

	mustStep(t, ts.Session)
	if ts.view.Offset() != 25 {
		t.Errorf("first frame has no interval and should use the raw step, got %v", ts.view.Offset())
	}
	mustStep(t, ts.Session)
	// 50ms at 60 fps is three reference frames.
	if got := ts.view.Offset(); math.Abs(got-100) > 1e-9 {
		t.Errorf("expected 100, got %v", got)
	}
}

func TestStep_ReferenceFPSGaps(t *testing.T) {
	cfg := noAuto()
	cfg.ReferenceFPS = 60

	frames := []source.Frame{
		{Time: 0, Landmark: &headscroll.Point{Y: 0.7}},
		{Time: 10 * time.Second, Landmark: &headscroll.Point{Y: 0.7}},
		{Time: 20 * time.Second, Landmark: &headscroll.Point{Y: 0.7}},
	}
	ts := newTestSession(t, frames, cfg)

	mustStep(t, ts.Session)
	ts.Stop()
	ts.Start()
	mustStep(t, ts.Session)
	if got := ts.view.Offset(); got != 50 {
		t.Errorf("first frame after a restart should use the raw step, offset %v", got)
	}

	mustStep(t, ts.Session)
	if got := ts.view.Offset() - 50; math.Abs(got-25*MaxStepScale) > 1e-9 {
		t.Errorf("a 10s stall should be capped at %v, moved %v", 25*MaxStepScale, got)
	}
}

type countMetric struct{ n int }

func (c *countMetric) Name() string     { return "count" }
func (c *countMetric) Observe(r Record) { c.n++ }
func (c *countMetric) Value() float64   { return float64(c.n) }
func (c *countMetric) Reset()           { c.n = 0 }

type recorder struct{ records []Record }

func (r *recorder) OnFrame(rec Record) { r.records = append(r.records, rec) }

func TestRun(t *testing.T) {
	frames := []source.Frame{face(0, 0.5), noFace(1), face(1, 0.6), face(2, 0.7), face(3, 0.5)}
	ctrl, _ := headscroll.NewController(0.05, 25)
	s := New(ctrl, source.NewReplay(frames), nil, nil, noAuto())

	m := &countMetric{n: 99}
	obs := &recorder{}
	s.AddMetric(m)
	s.AddObserver(obs)

	result, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if result.Frames != 4 || result.Skipped != 1 {
		t.Errorf("expected 4 frames and 1 skipped, got %d/%d", result.Frames, result.Skipped)
	}
	if len(result.Records) != 4 || len(obs.records) != 4 {
		t.Errorf("expected 4 records, got %d (observer %d)", len(result.Records), len(obs.records))
	}
	if result.Metrics["count"] != 4 {
		t.Errorf("metric should reset before run, got %v", result.Metrics["count"])
	}
	if result.FinalOffset != 25 {
		t.Errorf("expected final offset 25, got %v", result.FinalOffset)
	}
}

func TestRun_Canceled(t *testing.T) {
	ctrl, _ := headscroll.NewController(0.05, 25)
	s := New(ctrl, source.NewReplay([]source.Frame{face(0, 0.5)}), nil, nil, noAuto())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestFrames(t *testing.T) {
	records := []Record{
		{Time: 0, Detected: true, Point: headscroll.Point{X: 0.4, Y: 0.6}},
		{Time: frameDt},
	}
	frames := Frames(records)
	if !frames[0].Detected() || frames[0].Landmark.Y != 0.6 {
		t.Errorf("frame 0: %+v", frames[0])
	}
	if frames[1].Detected() || frames[1].Time != frameDt {
		t.Errorf("frame 1: %+v", frames[1])
	}
}

func TestStats(t *testing.T) {
	ts := newTestSession(t, []source.Frame{face(0, 0.7), face(0, 0.7), noFace(1)}, noAuto())
	ts.AddMetric(&countMetric{})

	for {
		if _, _, err := ts.Step(context.Background()); err != nil {
			break
		}
	}

	stats := ts.Stats()
	if stats.Frames != 2 || stats.Skipped != 1 {
		t.Errorf("expected 2 frames and 1 skipped, got %d/%d", stats.Frames, stats.Skipped)
	}
	if stats.FinalOffset != 25 || stats.Metrics["count"] != 2 {
		t.Errorf("unexpected stats %+v", stats)
	}
	if stats.Records != nil {
		t.Error("stats should not carry records")
	}
}

func TestScrollerClampsOffset(t *testing.T) {
	ts := newTestSession(t, []source.Frame{face(0, 0.2), face(1, 0.2)}, noAuto())

	mustStep(t, ts.Session)
	rec := mustStep(t, ts.Session)
	if rec.Decision.Direction != headscroll.Up {
		t.Fatalf("expected up, got %s", rec.Decision)
	}
	if rec.Offset != 0 {
		t.Errorf("page already at the top, record offset should stay 0, got %v", rec.Offset)
	}
}
