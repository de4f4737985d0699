package source

import (
	"context"
	"time"

	"github.com/san-kum/headscroll/internal/headscroll"
)

// Frame is one processed video frame. Time is monotonic from stream start.
type Frame struct {
	Time     time.Duration
	Landmark *headscroll.Point
}

func (f Frame) Detected() bool { return f.Landmark != nil }

type Source interface {
	Next(ctx context.Context) (Frame, error)
	Close() error
}

func pointPtr(x, y float64) *headscroll.Point {
	return &headscroll.Point{X: x, Y: y}
}
