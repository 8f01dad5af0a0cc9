package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultRestURL            = "https://api.bitskins.com"
	DefaultWSURL              = "wss://ws.bitskins.com"
	DefaultAPITimeout         = 10 * time.Second
	DefaultMaxRetries         = 3
	DefaultDBPort             = 5432
	DefaultDBSSLMode          = "prefer"
	DefaultMaxConns           = 10
	DefaultMinConns           = 2
	DefaultReconnectBaseDelay = 1 * time.Second
	DefaultReconnectMaxDelay  = 60 * time.Second
	DefaultStabilityThreshold = 2 * time.Minute
	DefaultAuthTimeout        = 10 * time.Second
	DefaultPingTimeout        = 60 * time.Second
	DefaultWriteTimeout       = 5 * time.Second
	DefaultKeepAliveInterval  = 30 * time.Second
	DefaultFrameBufferSize    = 1000
	DefaultRateRefresh        = 15 * time.Minute
	DefaultDedupWindow        = 10 * time.Minute
	DefaultStoreMaxAttempts   = 3
	DefaultStoreRetryDelay    = 250 * time.Millisecond
	DefaultHealthPort         = 8080
)

func (c *BotConfig) applyDefaults() {
	// API defaults
	if c.API.RestURL == "" {
		c.API.RestURL = DefaultRestURL
	}
	if c.API.WSURL == "" {
		c.API.WSURL = DefaultWSURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.MaxRetries == 0 {
		c.API.MaxRetries = DefaultMaxRetries
	}

	// Database defaults
	if c.Database.Port == 0 {
		c.Database.Port = DefaultDBPort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultDBSSLMode
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = DefaultMaxConns
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = DefaultMinConns
	}

	// Connection defaults
	if c.Connection.ReconnectBaseDelay == 0 {
		c.Connection.ReconnectBaseDelay = DefaultReconnectBaseDelay
	}
	if c.Connection.ReconnectMaxDelay == 0 {
		c.Connection.ReconnectMaxDelay = DefaultReconnectMaxDelay
	}
	if c.Connection.StabilityThreshold == 0 {
		c.Connection.StabilityThreshold = DefaultStabilityThreshold
	}
	if c.Connection.AuthTimeout == 0 {
		c.Connection.AuthTimeout = DefaultAuthTimeout
	}
	if c.Connection.PingTimeout == 0 {
		c.Connection.PingTimeout = DefaultPingTimeout
	}
	if c.Connection.WriteTimeout == 0 {
		c.Connection.WriteTimeout = DefaultWriteTimeout
	}
	if c.Connection.KeepAliveInterval == 0 {
		c.Connection.KeepAliveInterval = DefaultKeepAliveInterval
	}
	if c.Connection.FrameBufferSize == 0 {
		c.Connection.FrameBufferSize = DefaultFrameBufferSize
	}

	// Rates defaults
	if c.Rates.RefreshInterval == 0 {
		c.Rates.RefreshInterval = DefaultRateRefresh
	}

	// Dedup defaults
	if c.Dedup.Window == 0 {
		c.Dedup.Window = DefaultDedupWindow
	}

	// Store defaults
	if c.Store.MaxAttempts == 0 {
		c.Store.MaxAttempts = DefaultStoreMaxAttempts
	}
	if c.Store.RetryDelay == 0 {
		c.Store.RetryDelay = DefaultStoreRetryDelay
	}

	// Health defaults
	if c.Health.Port == 0 {
		c.Health.Port = DefaultHealthPort
	}
}
