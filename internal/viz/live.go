package viz

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/headscroll/internal/indicator"
	"github.com/san-kum/headscroll/internal/session"
	"github.com/san-kum/headscroll/internal/viewport"
)

const (
	width           = 48
	height          = 16
	historyCapacity = 120
)

type TickMsg time.Time

// Model drives a session from the Bubble Tea tick loop.
type Model struct {
	ctx       context.Context
	sess      *session.Session
	view      *viewport.Viewport
	indicator *indicator.State
	title     string
	fps       int

	paramKeys []string
	selected  int

	canvas  *Canvas
	last    session.Record
	hasLast bool
	yHist   []float64
	records []session.Record
	done    bool
	err     error
	notice  error
}

// NewModel wraps a built session. The session is started on the first tick.
func NewModel(ctx context.Context, sess *session.Session, view *viewport.Viewport, ind *indicator.State, fps int, title string) Model {
	if fps <= 0 {
		fps = 30
	}
	keys := make([]string, 0, 2)
	for k := range sess.Controller().GetParams() {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return Model{
		ctx:       ctx,
		paramKeys: keys,
		sess:      sess,
		view:      view,
		indicator: ind,
		title:     title,
		fps:       fps,
		canvas:    NewCanvas(width, height),
		yHist:     make([]float64, 0, historyCapacity),
		records:   make([]session.Record, 0, 256),
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	m.sess.Start()
	return m.tick()
}

// Update handles key presses and advances the session one frame per tick.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.sess.Toggle()
			if !m.sess.Running() {
				m.indicator.Hide()
			}
		case "c":
			m.sess.Calibrate()
		case "tab":
			m.selected = (m.selected + 1) % len(m.paramKeys)
		case "up", "k":
			m.adjustParam(1.1)
		case "down", "j":
			m.adjustParam(0.9)
		}
	case TickMsg:
		if m.done {
			return m, nil
		}
		if m.sess.Running() {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) step() {
	rec, ok, err := m.sess.Step(m.ctx)
	switch {
	case errors.Is(err, io.EOF):
		m.done = true
		m.sess.Stop()
		return
	case errors.Is(err, session.ErrStopped):
		return
	case err != nil:
		m.err = err
		m.done = true
		return
	case !ok:
		return
	}

	m.last, m.hasLast = rec, true
	m.records = append(m.records, rec)
	if rec.Detected {
		m.yHist = append(m.yHist, rec.Point.Y)
		if len(m.yHist) > historyCapacity {
			m.yHist = m.yHist[1:]
		}
	}
}

// adjustParam scales the selected controller parameter. A rejected value
// leaves the parameter unchanged and is reported until the next accepted one.
func (m *Model) adjustParam(factor float64) {
	if len(m.paramKeys) == 0 {
		return
	}
	ctrl := m.sess.Controller()
	key := m.paramKeys[m.selected]
	m.notice = ctrl.SetParam(key, ctrl.GetParams()[key]*factor)
}

// Records returns every frame processed while the TUI ran.
func (m Model) Records() []session.Record { return m.records }

func (m Model) Err() error { return m.err }

// draw renders the camera frame: baseline, dead-zone edges and the nose.
func (m *Model) draw() {
	m.canvas.Clear()
	ctrl := m.sess.Controller()
	base := ctrl.Baseline()

	m.canvas.HLine(m.canvas.PixelY(base), 1)
	for _, edge := range []float64{base - ctrl.DeadZone, base + ctrl.DeadZone} {
		if edge >= 0 && edge <= 1 {
			m.canvas.HLine(m.canvas.PixelY(edge), 4)
		}
	}

	if m.hasLast && m.last.Detected {
		m.canvas.Dot(m.canvas.PixelX(m.last.Point.X), m.canvas.PixelY(m.last.Point.Y), 1)
	}
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return errorStyle.Render("ERROR")
	case m.done:
		return statusStopped.Render("SOURCE ENDED")
	case m.sess.Controller().Calibrating():
		return statusCalibrating.Render("CALIBRATING")
	case m.sess.Running():
		return statusRunning.Render("RUNNING")
	}
	return statusStopped.Render("STOPPED")
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.String())

	ctrl := m.sess.Controller()
	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.title)) + "\n")
	s.WriteString(m.status() + "  " + m.indicator.Render() + "\n\n")

	if len(m.yHist) > 1 {
		chart := asciigraph.Plot(m.yHist, asciigraph.Height(5), asciigraph.Width(30), asciigraph.Caption("nose y"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	face := "no face"
	if m.hasLast && m.last.Detected {
		face = fmt.Sprintf("(%.3f, %.3f)", m.last.Point.X, m.last.Point.Y)
	}
	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.2fs", m.last.Time.Seconds())) + "\n")
	s.WriteString(labelStyle.Render("Nose") + valueStyle.Render(face) + "\n")
	s.WriteString(labelStyle.Render("Baseline") + valueStyle.Render(fmt.Sprintf("%.3f", ctrl.Baseline())) + "\n")
	s.WriteString(labelStyle.Render("Decision") + valueStyle.Render(m.last.Decision.String()) + "\n")
	s.WriteString(labelStyle.Render("Page") + ProgressBar(m.view.Progress(), 20) +
		valueStyle.Render(fmt.Sprintf(" %.0fpx", m.view.Offset())) + "\n")

	s.WriteString(labelStyle.Render("Indicator") + valueStyle.Render(fmt.Sprintf("%d changes", m.indicator.Changes())) + "\n")

	s.WriteString("\nPARAMETERS\n")
	params := ctrl.GetParams()
	for i, k := range m.paramKeys {
		line := fmt.Sprintf("%-10s %.3f", k, params[k])
		if i == m.selected {
			s.WriteString(activeParamStyle.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + valueStyle.Render(line) + "\n")
		}
	}
	if m.notice != nil {
		s.WriteString(errorStyle.Render(m.notice.Error()) + "\n")
	}

	s.WriteString("\nMETRICS\n")
	stats := m.sess.Stats()
	for _, name := range sortedKeys(stats.Metrics) {
		s.WriteString(labelStyle.Render(name) + valueStyle.Render(fmt.Sprintf("%.3f", stats.Metrics[name])) + "\n")
	}

	if m.err != nil {
		s.WriteString("\n" + errorStyle.Render(m.err.Error()) + "\n")
	}
	s.WriteString(helpStyle.Render("─────────────────────\nC:Calibrate SP:Start/Stop Q:Quit\nTab:Param   ↑↓:Tune"))

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
