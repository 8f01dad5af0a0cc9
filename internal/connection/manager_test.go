package connection

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"
)

// stubClient is a scripted Client for manager tests.
type stubClient struct {
	messages chan Message
	errs     chan error
	sent     chan []byte
	closed   bool
}

func newStubClient() *stubClient {
	return &stubClient{
		messages: make(chan Message, 16),
		errs:     make(chan error, 1),
		sent:     make(chan []byte, 16),
	}
}

func (s *stubClient) Connect(ctx context.Context) error { return nil }
func (s *stubClient) Close() error                      { s.closed = true; return nil }
func (s *stubClient) Send(data []byte) error            { s.sent <- data; return nil }
func (s *stubClient) Messages() <-chan Message          { return s.messages }
func (s *stubClient) Errors() <-chan error              { return s.errs }
func (s *stubClient) IsConnected() bool                 { return !s.closed }

func (s *stubClient) reply(action string, data any) {
	frame, _ := encodeEnvelope(action, data)
	s.messages <- Message{Data: frame, ReceivedAt: time.Now()}
}

func testManagerConfig() ManagerConfig {
	cfg := DefaultManagerConfig()
	cfg.WSURL = "wss://example.test"
	cfg.APIKey = "test-key"
	cfg.Channel = "listed"
	cfg.ReconnectBaseDelay = time.Millisecond
	cfg.ReconnectMaxDelay = 2 * time.Millisecond
	cfg.AuthTimeout = 100 * time.Millisecond
	cfg.FrameBufferSize = 16
	return cfg
}

func TestDecodeEnvelope(t *testing.T) {
	action, payload, err := decodeEnvelope([]byte(`["listed",{"id":123}]`))
	if err != nil {
		t.Fatalf("decodeEnvelope failed: %v", err)
	}
	if action != "listed" {
		t.Errorf("action = %q, want listed", action)
	}
	if string(payload) != `{"id":123}` {
		t.Errorf("payload = %s, want {\"id\":123}", payload)
	}

	for _, bad := range []string{`not json`, `{"action":"listed"}`, `["only-action"]`, `[123,{}]`} {
		if _, _, err := decodeEnvelope([]byte(bad)); err == nil {
			t.Errorf("decodeEnvelope(%q) expected error, got nil", bad)
		}
	}
}

func TestManager_AuthenticateAndSubscribe(t *testing.T) {
	stub := newStubClient()
	m := NewManager(testManagerConfig(), slog.Default()).(*manager)
	m.dial = func(cfg ClientConfig, logger *slog.Logger) Client { return stub }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.ctx, m.cancel = ctx, cancel

	go func() {
		// Auth frame arrives first, then the subscribe frame.
		<-stub.sent
		stub.reply("WS_AUTH_APIKEY", map[string]string{"status": "ok"})
	}()

	if err := m.authenticate(stub); err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}

	if err := m.subscribe(stub); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	sub := <-stub.sent
	var parts []json.RawMessage
	if err := json.Unmarshal(sub, &parts); err != nil || len(parts) != 2 {
		t.Fatalf("subscribe frame not a [action, data] envelope: %s", sub)
	}
	var action, channel string
	json.Unmarshal(parts[0], &action)
	json.Unmarshal(parts[1], &channel)
	if action != "WS_SUB" || channel != "listed" {
		t.Errorf("subscribe frame = [%q, %q], want [WS_SUB, listed]", action, channel)
	}
}

func TestManager_AuthenticateRejected(t *testing.T) {
	stub := newStubClient()
	m := NewManager(testManagerConfig(), slog.Default()).(*manager)
	m.dial = func(cfg ClientConfig, logger *slog.Logger) Client { return stub }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.ctx, m.cancel = ctx, cancel

	go func() {
		<-stub.sent
		stub.reply("WS_ERROR", "invalid api key")
	}()

	err := m.authenticate(stub)
	if !errors.Is(err, ErrAuthFailed) {
		t.Errorf("authenticate error = %v, want ErrAuthFailed", err)
	}
}

func TestManager_AuthenticateTimeout(t *testing.T) {
	stub := newStubClient()
	cfg := testManagerConfig()
	cfg.AuthTimeout = 10 * time.Millisecond
	m := NewManager(cfg, slog.Default()).(*manager)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.ctx, m.cancel = ctx, cancel

	err := m.authenticate(stub)
	if !errors.Is(err, ErrAuthTimeout) {
		t.Errorf("authenticate error = %v, want ErrAuthTimeout", err)
	}
}

func TestManager_FatalOnRejectedCredentials(t *testing.T) {
	stub := newStubClient()
	m := NewManager(testManagerConfig(), slog.Default()).(*manager)
	m.dial = func(cfg ClientConfig, logger *slog.Logger) Client { return stub }

	go func() {
		<-stub.sent
		stub.reply("WS_ERROR", "invalid api key")
	}()

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	select {
	case err := <-m.Fatal():
		if !errors.Is(err, ErrAuthFailed) {
			t.Errorf("fatal error = %v, want ErrAuthFailed", err)
		}
	case <-time.After(time.Second):
		t.Fatal("expected fatal error, got none")
	}

	if got := m.Stats().State; got != StateFailed {
		t.Errorf("state = %s, want %s", got, StateFailed)
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := m.Stop(stopCtx); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
}

func TestManager_StreamForwardsMatchingFrames(t *testing.T) {
	stub := newStubClient()
	m := NewManager(testManagerConfig(), slog.Default()).(*manager)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.ctx, m.cancel = ctx, cancel

	stub.reply("listed", map[string]any{"id": 6237035})
	stub.reply("WS_SUB", "ack")      // control frame, skipped
	stub.reply("price_changed", nil) // other channel, skipped

	go func() {
		time.Sleep(50 * time.Millisecond)
		stub.errs <- ErrStaleConnection
	}()

	err := m.stream(stub)
	if !errors.Is(err, ErrStaleConnection) {
		t.Errorf("stream error = %v, want ErrStaleConnection", err)
	}

	select {
	case frame := <-m.Frames():
		if frame.Channel != "listed" {
			t.Errorf("frame channel = %q, want listed", frame.Channel)
		}
		if string(frame.Payload) != `{"id":6237035}` {
			t.Errorf("frame payload = %s", frame.Payload)
		}
	default:
		t.Fatal("expected a forwarded frame")
	}

	select {
	case frame := <-m.Frames():
		t.Errorf("unexpected extra frame on channel %q", frame.Channel)
	default:
	}

	stats := m.Stats()
	if stats.FramesForwarded != 1 {
		t.Errorf("FramesForwarded = %d, want 1", stats.FramesForwarded)
	}
	if stats.FramesSkipped != 2 {
		t.Errorf("FramesSkipped = %d, want 2", stats.FramesSkipped)
	}
}
