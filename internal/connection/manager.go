package connection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Manager maintains the single logical marketplace session for this bot
// instance and feeds data frames to the pipeline.
type Manager interface {
	// Start connects and begins streaming. Non-blocking; the session is
	// maintained (including reconnects) until Stop or a fatal error.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the session. The frame channel is closed
	// once the session goroutine has exited.
	Stop(ctx context.Context) error

	// Frames returns the channel of data frames for the pipeline.
	Frames() <-chan RawFrame

	// Fatal returns a channel that delivers the fatal error, if any.
	// Only authentication rejection is fatal; everything else reconnects.
	Fatal() <-chan error

	// Stats returns current session statistics.
	Stats() ManagerStats
}

// dialFunc creates a Client; replaced in tests.
type dialFunc func(cfg ClientConfig, logger *slog.Logger) Client

// manager implements the Manager interface.
type manager struct {
	cfg    ManagerConfig
	logger *slog.Logger
	dial   dialFunc

	frames chan RawFrame
	fatal  chan error

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu              sync.RWMutex
	state           State
	sessionID       string
	reconnects      int64
	framesForwarded int64
	framesSkipped   int64
}

// NewManager creates a new connection Manager.
func NewManager(cfg ManagerConfig, logger *slog.Logger) Manager {
	if logger == nil {
		logger = slog.Default()
	}

	return &manager{
		cfg:    cfg,
		logger: logger,
		dial:   NewClient,
		frames: make(chan RawFrame, cfg.FrameBufferSize),
		fatal:  make(chan error, 1),
		state:  StateDisconnected,
	}
}

// Start begins the session loop.
func (m *manager) Start(ctx context.Context) error {
	if m.cfg.Channel == "" {
		return fmt.Errorf("manager config: channel is required")
	}

	m.ctx, m.cancel = context.WithCancel(ctx)

	m.wg.Add(1)
	go m.run()

	m.logger.Info("connection manager started",
		"url", m.cfg.WSURL,
		"channel", m.cfg.Channel,
	)

	return nil
}

// Stop gracefully shuts down.
func (m *manager) Stop(ctx context.Context) error {
	m.logger.Info("stopping connection manager")

	if m.cancel != nil {
		m.cancel()
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.logger.Info("connection manager stopped")
	case <-ctx.Done():
		m.logger.Warn("connection manager stop timed out")
	}

	return nil
}

// Frames returns the output channel for the pipeline.
func (m *manager) Frames() <-chan RawFrame {
	return m.frames
}

// Fatal returns the fatal error channel.
func (m *manager) Fatal() <-chan error {
	return m.fatal
}

// Stats returns current statistics.
func (m *manager) Stats() ManagerStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return ManagerStats{
		State:           m.state,
		SessionID:       m.sessionID,
		Reconnects:      m.reconnects,
		FramesForwarded: m.framesForwarded,
		FramesSkipped:   m.framesSkipped,
	}
}

// setState records a state transition; connection-state changes are logged
// distinctly from data-level events.
func (m *manager) setState(s State) {
	m.mu.Lock()
	old := m.state
	m.state = s
	session := m.sessionID
	m.mu.Unlock()

	if old != s {
		m.logger.Info("connection state changed",
			"from", old,
			"to", s,
			"session", session,
		)
	}
}

// run is the session loop: connect, authenticate, subscribe, stream, and
// reconnect with backoff until the context is cancelled or auth fails.
func (m *manager) run() {
	defer m.wg.Done()
	defer close(m.frames)

	bo := newBackoff(m.cfg.ReconnectBaseDelay, m.cfg.ReconnectMaxDelay)

	for {
		if m.ctx.Err() != nil {
			m.setState(StateDisconnected)
			return
		}

		m.mu.Lock()
		m.sessionID = uuid.NewString()
		m.mu.Unlock()

		streamedFor, err := m.session()
		if errors.Is(err, ErrAuthFailed) {
			m.setState(StateFailed)
			m.logger.Error("authentication rejected, not reconnecting")
			m.fatal <- ErrAuthFailed
			return
		}

		if m.ctx.Err() != nil {
			m.setState(StateDisconnected)
			return
		}

		m.setState(StateDisconnected)

		// A long healthy streaming stretch means the endpoint recovered;
		// start the backoff over.
		if streamedFor >= m.cfg.StabilityThreshold {
			bo.Reset()
		}

		wait := bo.Next()
		m.mu.Lock()
		m.reconnects++
		m.mu.Unlock()

		m.logger.Warn("session ended, reconnecting",
			"error", err,
			"streamed_for", streamedFor,
			"wait", wait,
			"attempt", bo.Attempts(),
		)

		select {
		case <-m.ctx.Done():
			m.setState(StateDisconnected)
			return
		case <-time.After(wait):
		}
	}
}

// session runs one full connect-auth-subscribe-stream cycle. It returns how
// long the session spent in Streaming and the error that ended it.
func (m *manager) session() (time.Duration, error) {
	m.setState(StateConnecting)

	clientCfg := ClientConfig{
		URL:               m.cfg.WSURL,
		PingTimeout:       m.cfg.PingTimeout,
		WriteTimeout:      m.cfg.WriteTimeout,
		KeepAliveInterval: m.cfg.KeepAliveInterval,
		BufferSize:        m.cfg.FrameBufferSize,
	}
	client := m.dial(clientCfg, m.logger.With("session", m.Stats().SessionID))
	defer client.Close()

	if err := client.Connect(m.ctx); err != nil {
		return 0, fmt.Errorf("connect: %w", err)
	}

	m.setState(StateAuthenticating)
	if err := m.authenticate(client); err != nil {
		return 0, err
	}

	// Authentication clears subscriptions server-side, so subscribe after
	// every (re)auth.
	m.setState(StateSubscribed)
	if err := m.subscribe(client); err != nil {
		return 0, fmt.Errorf("subscribe: %w", err)
	}

	m.setState(StateStreaming)
	start := time.Now()
	err := m.stream(client)
	return time.Since(start), err
}

// authenticate performs the in-band API key handshake.
func (m *manager) authenticate(client Client) error {
	frame, err := encodeEnvelope(actionAuthAPIKey, m.cfg.APIKey)
	if err != nil {
		return fmt.Errorf("encode auth frame: %w", err)
	}
	if err := client.Send(frame); err != nil {
		return fmt.Errorf("send auth frame: %w", err)
	}

	select {
	case <-m.ctx.Done():
		return m.ctx.Err()
	case err := <-client.Errors():
		return fmt.Errorf("transport error during auth: %w", err)
	case <-time.After(m.cfg.AuthTimeout):
		return ErrAuthTimeout
	case msg, ok := <-client.Messages():
		if !ok {
			return ErrNotConnected
		}
		action, _, err := decodeEnvelope(msg.Data)
		if err != nil {
			return fmt.Errorf("auth response: %w", err)
		}
		if !strings.HasPrefix(action, authActionPrefix) {
			// Rejected credentials; fixing them requires operator action.
			return ErrAuthFailed
		}
		m.logger.Info("authenticated", "channel", m.cfg.Channel)
		return nil
	}
}

// subscribe requests the single channel for this instance's event kind.
func (m *manager) subscribe(client Client) error {
	frame, err := encodeEnvelope(actionSubscribe, m.cfg.Channel)
	if err != nil {
		return fmt.Errorf("encode subscribe frame: %w", err)
	}
	if err := client.Send(frame); err != nil {
		return err
	}
	m.logger.Info("subscribed", "channel", m.cfg.Channel)
	return nil
}

// stream forwards matching data frames to the pipeline until the connection
// errors or the context is cancelled. The frame channel send is blocking:
// a slow pipeline applies backpressure here rather than dropping events.
func (m *manager) stream(client Client) error {
	for {
		select {
		case <-m.ctx.Done():
			return m.ctx.Err()

		case err := <-client.Errors():
			return err

		case msg, ok := <-client.Messages():
			if !ok {
				return ErrNotConnected
			}

			action, payload, err := decodeEnvelope(msg.Data)
			if err != nil {
				m.logger.Warn("undecodable frame", "error", err)
				continue
			}

			if action != m.cfg.Channel {
				// Subscription acks and other control traffic.
				m.mu.Lock()
				m.framesSkipped++
				m.mu.Unlock()
				m.logger.Debug("skipping frame", "action", action)
				continue
			}

			frame := RawFrame{
				Channel:    action,
				Payload:    payload,
				ReceivedAt: msg.ReceivedAt,
			}

			select {
			case m.frames <- frame:
				m.mu.Lock()
				m.framesForwarded++
				m.mu.Unlock()
			case <-m.ctx.Done():
				return m.ctx.Err()
			}
		}
	}
}
