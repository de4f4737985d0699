// Package source supplies landmark frames to a scrolling session.
//
// A [Source] is pulled once per frame by the caller's loop:
//
//   - [Synthetic]: seeded nodding-head generator for demos and tests
//   - [Replay]: frames of a recorded run
//   - [Remote]: a face landmark detector service reached over WebSocket
//
// Sources return io.EOF when exhausted. A frame without a landmark means the
// detector saw no face.
package source
