// Package viewport models the scrollable page driven by scroll decisions.
package viewport

const (
	DefaultViewHeight = 720
	// Two galleries of six cards, each card row 300px plus headings.
	DefaultContentHeight = 4200
)

// Viewport tracks a vertical offset clamped to [0, ContentHeight-ViewHeight].
type Viewport struct {
	ContentHeight float64
	ViewHeight    float64
	offset        float64
}

func New(contentHeight, viewHeight float64) *Viewport {
	return &Viewport{ContentHeight: contentHeight, ViewHeight: viewHeight}
}

func NewDefault() *Viewport {
	return New(DefaultContentHeight, DefaultViewHeight)
}

// ScrollBy moves the offset by dy and returns the distance actually moved.
func (v *Viewport) ScrollBy(dy float64) float64 {
	prev := v.offset
	v.offset = clamp(v.offset+dy, 0, v.maxOffset())
	return v.offset - prev
}

func (v *Viewport) ScrollTo(y float64) {
	v.offset = clamp(y, 0, v.maxOffset())
}

func (v *Viewport) Offset() float64 { return v.offset }

// Progress is the offset as a fraction of the scrollable range.
func (v *Viewport) Progress() float64 {
	maxOff := v.maxOffset()
	if maxOff == 0 {
		return 0
	}
	return v.offset / maxOff
}

func (v *Viewport) maxOffset() float64 {
	if v.ContentHeight <= v.ViewHeight {
		return 0
	}
	return v.ContentHeight - v.ViewHeight
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
