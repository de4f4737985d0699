// Package viz provides the terminal front end for a live head scroll session.
//
// The package implements a TUI using the Bubble Tea framework:
//
//   - [Model]: drives a [session.Session] on every tick and renders it
//   - [Canvas]: Braille-based pixel canvas for the camera frame overlay
//
// # Key Bindings
//
//	C     - Calibrate on the next detected frame
//	Space - Start/Stop scrolling
//	Q     - Quit
//
// The camera overlay shows the nose landmark, the calibrated baseline and
// the dead-zone band around it.
package viz
