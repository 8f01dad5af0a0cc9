package connection

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Errors
var (
	ErrNotConnected    = errors.New("not connected")
	ErrStaleConnection = errors.New("connection stale (no ping)")
	ErrAlreadyClosed   = errors.New("already closed")
	ErrAuthFailed      = errors.New("websocket authentication rejected")
	ErrAuthTimeout     = errors.New("websocket authentication timed out")
)

// Protocol actions. Every frame on the wire is a two-element JSON array
// [action, data].
const (
	actionAuthAPIKey = "WS_AUTH_APIKEY"
	actionSubscribe  = "WS_SUB"
	authActionPrefix = "WS_AUTH"
)

// State is the connection session state.
type State string

const (
	StateDisconnected   State = "disconnected"
	StateConnecting     State = "connecting"
	StateAuthenticating State = "authenticating"
	StateSubscribed     State = "subscribed"
	StateStreaming      State = "streaming"
	StateFailed         State = "failed"
)

// Message wraps raw message data with a receive timestamp.
type Message struct {
	Data       []byte    // Raw message bytes from the WebSocket
	ReceivedAt time.Time // Local timestamp when ReadMessage() returned
}

// RawFrame is a data frame from the Manager to the pipeline: the payload of
// an envelope whose action matched the subscribed channel.
type RawFrame struct {
	Channel    string          // Channel the frame arrived on
	Payload    json.RawMessage // The data element of the envelope
	ReceivedAt time.Time       // Local timestamp when the frame was received
}

// decodeEnvelope splits a wire frame into its action and payload.
func decodeEnvelope(data []byte) (action string, payload json.RawMessage, err error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return "", nil, fmt.Errorf("decode envelope: %w", err)
	}
	if len(parts) < 2 {
		return "", nil, fmt.Errorf("decode envelope: want [action, data], got %d elements", len(parts))
	}
	if err := json.Unmarshal(parts[0], &action); err != nil {
		return "", nil, fmt.Errorf("decode envelope action: %w", err)
	}
	return action, parts[1], nil
}

// encodeEnvelope builds a wire frame from an action and payload.
func encodeEnvelope(action string, data any) ([]byte, error) {
	return json.Marshal([2]any{action, data})
}

// ClientConfig configures a WebSocket client.
type ClientConfig struct {
	URL               string        // WebSocket URL (e.g. wss://ws.bitskins.com)
	PingTimeout       time.Duration // Max time without ping before considering connection stale
	WriteTimeout      time.Duration // Write deadline for sends
	KeepAliveInterval time.Duration // How often to send keepalive pings and check staleness
	BufferSize        int           // Message channel buffer size
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		PingTimeout:       60 * time.Second,
		WriteTimeout:      5 * time.Second,
		KeepAliveInterval: 30 * time.Second,
		BufferSize:        1000,
	}
}

// ManagerConfig configures the connection Manager.
type ManagerConfig struct {
	WSURL              string        // WebSocket URL
	APIKey             string        // Marketplace API key for in-band auth
	Channel            string        // The single channel this instance subscribes to
	ReconnectBaseDelay time.Duration // Base wait between reconnect attempts
	ReconnectMaxDelay  time.Duration // Cap on reconnect wait
	StabilityThreshold time.Duration // Streaming this long resets the backoff
	AuthTimeout        time.Duration // Max wait for the auth response
	PingTimeout        time.Duration // Passed through to the client
	WriteTimeout       time.Duration // Passed through to the client
	KeepAliveInterval  time.Duration // Passed through to the client
	FrameBufferSize    int           // Buffer size of the output frame channel
}

// DefaultManagerConfig returns sensible defaults.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		ReconnectBaseDelay: 1 * time.Second,
		ReconnectMaxDelay:  60 * time.Second,
		StabilityThreshold: 2 * time.Minute,
		AuthTimeout:        10 * time.Second,
		PingTimeout:        60 * time.Second,
		WriteTimeout:       5 * time.Second,
		KeepAliveInterval:  30 * time.Second,
		FrameBufferSize:    1000,
	}
}

// ManagerStats provides observability into the session.
type ManagerStats struct {
	State           State
	SessionID       string
	Reconnects      int64
	FramesForwarded int64
	FramesSkipped   int64
}
