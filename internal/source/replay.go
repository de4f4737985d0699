package source

import (
	"context"
	"io"
)

// Replay yields a fixed frame sequence in order.
type Replay struct {
	frames []Frame
	pos    int
}

func NewReplay(frames []Frame) *Replay {
	return &Replay{frames: frames}
}

func (r *Replay) Next(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}
	if r.pos >= len(r.frames) {
		return Frame{}, io.EOF
	}
	f := r.frames[r.pos]
	r.pos++
	return f, nil
}

// Rewind restarts the sequence from the first frame.
func (r *Replay) Rewind() { r.pos = 0 }

func (r *Replay) Len() int { return len(r.frames) }

func (r *Replay) Close() error { return nil }
