package viz

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/headscroll/internal/headscroll"
	"github.com/san-kum/headscroll/internal/indicator"
	"github.com/san-kum/headscroll/internal/session"
	"github.com/san-kum/headscroll/internal/source"
	"github.com/san-kum/headscroll/internal/viewport"
)

func newTestModel(t *testing.T, ys ...float64) Model {
	t.Helper()
	frames := make([]source.Frame, len(ys))
	for i, y := range ys {
		frames[i] = source.Frame{
			Time:     time.Duration(i+1) * 33 * time.Millisecond,
			Landmark: &headscroll.Point{X: 0.5, Y: y},
		}
	}
	ctrl, err := headscroll.NewController(0.05, 25)
	if err != nil {
		t.Fatal(err)
	}
	view := viewport.NewDefault()
	ind := indicator.New()
	cfg := session.DefaultConfig()
	cfg.AutoCalibrate = false
	sess := session.New(ctrl, source.NewReplay(frames), view, ind, cfg)
	m := NewModel(context.Background(), sess, view, ind, 30, "test")
	m.Init()
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_TickScrolls(t *testing.T) {
	m := newTestModel(t, 0.7, 0.7, 0.5)

	m = update(t, m, TickMsg(time.Now()))
	m = update(t, m, TickMsg(time.Now()))
	if m.view.Offset() != 50 {
		t.Errorf("expected offset 50, got %v", m.view.Offset())
	}
	if !m.indicator.Visible() || m.indicator.Symbol() != "⬇️" {
		t.Errorf("expected down indicator, got %q visible=%v", m.indicator.Symbol(), m.indicator.Visible())
	}

	m = update(t, m, TickMsg(time.Now()))
	if m.indicator.Visible() {
		t.Error("indicator should hide inside the dead zone")
	}
	if len(m.Records()) != 3 {
		t.Errorf("expected 3 records, got %d", len(m.Records()))
	}
}

func TestModel_EndOfSource(t *testing.T) {
	m := newTestModel(t, 0.5)

	m = update(t, m, TickMsg(time.Now()))
	next, cmd := m.Update(TickMsg(time.Now()))
	m = next.(Model)
	if !m.done {
		t.Error("expected model to notice the exhausted source")
	}
	if m.sess.Running() {
		t.Error("session should stop at end of source")
	}
	if m.Err() != nil {
		t.Errorf("end of source is not an error: %v", m.Err())
	}

	if _, cmd = m.Update(TickMsg(time.Now())); cmd != nil {
		t.Error("ticking should stop once the source ended")
	}
}

func TestModel_Keys(t *testing.T) {
	m := newTestModel(t, 0.7, 0.7)

	m = update(t, m, key("c"))
	if !m.sess.Controller().Calibrating() {
		t.Error("c should request calibration")
	}

	m = update(t, m, key(" "))
	if m.sess.Running() {
		t.Error("space should stop the session")
	}
	m = update(t, m, TickMsg(time.Now()))
	if len(m.Records()) != 0 {
		t.Error("stopped session should not consume frames")
	}

	m = update(t, m, key(" "))
	m = update(t, m, TickMsg(time.Now()))
	if got := m.sess.Controller().Baseline(); got != 0.7 {
		t.Errorf("expected calibrated baseline 0.7, got %v", got)
	}

	if _, cmd := m.Update(key("q")); cmd == nil {
		t.Error("q should return a quit command")
	}
}

func TestModel_View(t *testing.T) {
	m := newTestModel(t, 0.7)
	m = update(t, m, TickMsg(time.Now()))

	out := m.View()
	for _, want := range []string{"TEST", "RUNNING", "Baseline", "down(25)"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestCanvas(t *testing.T) {
	c := NewCanvas(4, 2)
	if c.PixelWidth() != 8 || c.PixelHeight() != 8 {
		t.Fatalf("unexpected resolution %dx%d", c.PixelWidth(), c.PixelHeight())
	}

	c.Set(3, 5)
	if !c.IsSet(3, 5) || c.IsSet(2, 5) {
		t.Error("set pixel mismatch")
	}
	c.Set(-1, 0)
	c.Set(100, 100)

	c.HLine(c.PixelY(0.5), 2)
	if !c.IsSet(0, c.PixelY(0.5)) || c.IsSet(1, c.PixelY(0.5)) {
		t.Error("dashed line should set every other pixel")
	}

	c.Clear()
	if strings.Trim(c.String(), "⠀\n") != "" {
		t.Error("expected blank canvas after clear")
	}
}

func TestModel_TuneParams(t *testing.T) {
	m := newTestModel(t, 0.58)
	if len(m.paramKeys) != 2 || m.paramKeys[0] != "dead_zone" {
		t.Fatalf("unexpected params %v", m.paramKeys)
	}

	for i := 0; i < 6; i++ {
		m = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	}
	if got := m.sess.Controller().DeadZone; got <= 0.08 {
		t.Errorf("up should widen the dead zone, got %v", got)
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if got := m.sess.Controller().Step; got >= 25 {
		t.Errorf("down should shrink the step, got %v", got)
	}

	m = update(t, m, TickMsg(time.Now()))
	if m.last.Decision.IsScroll() {
		t.Errorf("0.58 should sit inside the widened dead zone, got %s", m.last.Decision)
	}
}

func TestModel_RejectedParamIsReported(t *testing.T) {
	m := newTestModel(t, 0.5)

	for i := 0; i < 40; i++ {
		m = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	}
	ctrl := m.sess.Controller()
	before := ctrl.DeadZone
	m = update(t, m, tea.KeyMsg{Type: tea.KeyUp})

	if ctrl.DeadZone != before || ctrl.DeadZone >= 1 {
		t.Errorf("rejected value should leave the dead zone at %v, got %v", before, ctrl.DeadZone)
	}
	if !errors.Is(m.notice, headscroll.ErrInvalidDeadZone) {
		t.Fatalf("expected invalid dead zone notice, got %v", m.notice)
	}
	if !strings.Contains(m.View(), "dead zone must be") {
		t.Error("view should show the rejected value")
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if m.notice != nil || strings.Contains(m.View(), "dead zone must be") {
		t.Errorf("accepted value should clear the notice, got %v", m.notice)
	}
}
