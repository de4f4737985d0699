package headscroll

import "errors"

var (
	// ErrSampleOutOfRange indicates a landmark outside the normalized frame.
	ErrSampleOutOfRange = errors.New("headscroll: sample outside [0,1]")

	// ErrInvalidDeadZone indicates a dead zone outside [0,1).
	ErrInvalidDeadZone = errors.New("headscroll: dead zone must be in [0,1)")

	// ErrInvalidStep indicates a non-positive scroll step.
	ErrInvalidStep = errors.New("headscroll: scroll step must be positive")
)
