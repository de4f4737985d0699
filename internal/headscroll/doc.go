// Package headscroll turns a tracked head landmark into scroll decisions.
//
// The package defines the per-frame control loop used by hands-free scrolling:
//
//   - [Point]: normalized landmark position for one frame
//   - [Controller]: calibration baseline, one-shot calibration flag and dead zone
//   - [Decision]: None, Up or Down with a fixed magnitude
//
// # Example
//
//	ctrl, _ := headscroll.NewController(headscroll.DefaultDeadZone, headscroll.DefaultStep)
//	ctrl.RequestCalibration()
//	d, err := ctrl.ProcessSample(headscroll.Point{X: 0.5, Y: 0.61})
//	// d.Direction == headscroll.None, the frame calibrated the baseline
//
// # Thread Safety
//
// Controller instances are NOT thread-safe. They are meant to be owned by a
// single frame loop and invoked once per processed frame.
package headscroll
