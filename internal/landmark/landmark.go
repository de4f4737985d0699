// Package landmark describes face landmark sets produced by a face mesh detector.
package landmark

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/san-kum/headscroll/internal/headscroll"
)

// Face mesh indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/face_landmarker
const (
	NoseTip      = 4
	NumLandmarks = 478
)

// Point3D is a landmark in normalized image coordinates; Z is relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Face is the ordered landmark set of one detected face.
type Face []Point3D

// Detection is one detector result for a single video frame.
type Detection struct {
	TimestampMs int64  `json:"timestamp_ms"`
	Faces       []Face `json:"faces"`
}

func (d Detection) Timestamp() time.Duration {
	return time.Duration(d.TimestampMs) * time.Millisecond
}

// Landmark returns the 2D point at index on the first face. ok is false when
// no face was detected or the face has no such index.
func (d Detection) Landmark(index int) (headscroll.Point, bool) {
	if len(d.Faces) == 0 || index < 0 || index >= len(d.Faces[0]) {
		return headscroll.Point{}, false
	}
	p := d.Faces[0][index]
	return headscroll.Point{X: p.X, Y: p.Y}, true
}

// Decode parses one detector message.
func Decode(data []byte) (Detection, error) {
	var d Detection
	if err := json.Unmarshal(data, &d); err != nil {
		return Detection{}, fmt.Errorf("decode detection: %w", err)
	}
	if d.TimestampMs < 0 {
		return Detection{}, fmt.Errorf("decode detection: negative timestamp %d", d.TimestampMs)
	}
	return d, nil
}
