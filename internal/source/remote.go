package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/san-kum/headscroll/internal/landmark"
)

const DefaultDetectorURL = "ws://localhost:8000/api/v1/face/ws"

// ErrDetectorUnavailable wraps failures to reach the landmark detector. The
// detector owns the camera, so a denied camera surfaces as this error too.
var ErrDetectorUnavailable = errors.New("source: landmark detector unavailable")

type RemoteConfig struct {
	URL              string        `yaml:"url"`
	LandmarkIndex    int           `yaml:"-"`
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	PingInterval     time.Duration `yaml:"ping_interval"`
}

func DefaultRemoteConfig() RemoteConfig {
	return RemoteConfig{
		URL:              DefaultDetectorURL,
		LandmarkIndex:    landmark.NoseTip,
		HandshakeTimeout: 10 * time.Second,
		ReadTimeout:      10 * time.Second,
		WriteTimeout:     5 * time.Second,
		PingInterval:     30 * time.Second,
	}
}

// Remote reads landmark detections streamed by a detector service. Each text
// message is one JSON landmark.Detection.
type Remote struct {
	cfg  RemoteConfig
	log  *logrus.Entry
	mu   sync.Mutex
	conn   *websocket.Conn
	eof    bool
	closed bool
	once sync.Once
	done chan struct{}
}

// DialRemote connects to the detector. The error is returned rather than
// retried so the caller can report it and never start the session.
func DialRemote(ctx context.Context, cfg RemoteConfig, log *logrus.Entry) (*Remote, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	r := &Remote{
		cfg:  cfg,
		log:  log.WithField("detector", cfg.URL),
		done: make(chan struct{}),
	}
	if err := r.reconnect(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Remote) reconnect(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return io.EOF
	}

	if r.conn != nil {
		r.conn.Close()
		r.conn = nil
	}

	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = r.cfg.HandshakeTimeout

	r.log.Info("connecting to landmark detector")
	conn, _, err := dialer.DialContext(ctx, r.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("%w: dial %s: %v", ErrDetectorUnavailable, r.cfg.URL, err)
	}

	conn.SetPingHandler(func(appData string) error {
		err := conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(r.cfg.WriteTimeout))
		if err != nil {
			r.log.WithError(err).Warn("error sending pong")
		}
		return nil
	})

	r.conn = conn
	if r.cfg.PingInterval > 0 {
		go r.keepAlive(conn)
	}
	return nil
}

func (r *Remote) keepAlive(conn *websocket.Conn) {
	ticker := time.NewTicker(r.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
		}

		r.mu.Lock()
		if r.conn != conn {
			r.mu.Unlock()
			return
		}
		err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(r.cfg.WriteTimeout))
		if err != nil {
			r.log.WithError(err).Warn("ping failed, marking connection as dead")
			r.conn = nil
			conn.Close()
			r.mu.Unlock()
			return
		}
		r.mu.Unlock()
	}
}

func (r *Remote) connection() *websocket.Conn {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.conn
}

func (r *Remote) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func (r *Remote) drop(conn *websocket.Conn) {
	r.mu.Lock()
	if r.conn == conn {
		r.conn = nil
	}
	r.mu.Unlock()
	conn.Close()
}

// Next blocks for the next detection. A dead connection is redialed once.
func (r *Remote) Next(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}
	if r.eof || r.isClosed() {
		return Frame{}, io.EOF
	}

	conn := r.connection()
	if conn == nil {
		if err := r.reconnect(ctx); err != nil {
			return Frame{}, err
		}
		conn = r.connection()
		if conn == nil {
			return Frame{}, fmt.Errorf("%w: not connected", ErrDetectorUnavailable)
		}
	}

	deadline := time.Now().Add(r.cfg.ReadTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	conn.SetReadDeadline(deadline)

	// Cancelling ctx expires the deadline so the blocked read returns.
	stop := context.AfterFunc(ctx, func() { conn.SetReadDeadline(time.Now()) })
	_, message, err := conn.ReadMessage()
	stop()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			r.drop(conn)
			return Frame{}, ctxErr
		}
		if r.isClosed() {
			return Frame{}, io.EOF
		}
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			r.eof = true
			r.drop(conn)
			return Frame{}, io.EOF
		}
		r.drop(conn)
		return Frame{}, fmt.Errorf("read detection: %w", err)
	}
	conn.SetReadDeadline(time.Time{})

	det, err := landmark.Decode(message)
	if err != nil {
		return Frame{}, err
	}

	f := Frame{Time: det.Timestamp()}
	if p, ok := det.Landmark(r.cfg.LandmarkIndex); ok {
		f.Landmark = &p
	}
	return f, nil
}

func (r *Remote) Close() error {
	var err error
	r.once.Do(func() {
		close(r.done)
		r.mu.Lock()
		defer r.mu.Unlock()
		r.closed = true
		if r.conn != nil {
			r.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(r.cfg.WriteTimeout))
			err = r.conn.Close()
			r.conn = nil
		}
	})
	return err
}
