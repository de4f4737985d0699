package headscroll

import "fmt"

const (
	DefaultBaseline = 0.5
	DefaultDeadZone = 0.05
	DefaultStep     = 25.0
)

// Point is a landmark position normalized to the frame, both axes in [0,1].
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

func (p Point) IsValid() bool {
	return inUnit(p.X) && inUnit(p.Y)
}

func inUnit(v float64) bool {
	// NaN fails both comparisons.
	return v >= 0 && v <= 1
}

type Direction int

const (
	None Direction = iota
	Up
	Down
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "none"
	}
}

// ParseDirection is the inverse of Direction.String.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "none", "":
		return None, nil
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	}
	return None, fmt.Errorf("unknown direction: %q", s)
}

// Decision is the per-frame scroll outcome.
type Decision struct {
	Direction Direction
	Magnitude float64
}

func (d Decision) IsScroll() bool { return d.Direction != None }

// Offset returns the signed viewport delta: positive scrolls the page down.
func (d Decision) Offset() float64 {
	switch d.Direction {
	case Down:
		return d.Magnitude
	case Up:
		return -d.Magnitude
	default:
		return 0
	}
}

// Symbol is the indicator glyph for the decision, empty when nothing scrolls.
func (d Decision) Symbol() string {
	switch d.Direction {
	case Down:
		return "⬇️"
	case Up:
		return "⬆️"
	default:
		return ""
	}
}

func (d Decision) String() string {
	if d.Direction == None {
		return "none"
	}
	return fmt.Sprintf("%s(%.0f)", d.Direction, d.Magnitude)
}
