package config

import "time"

// BotConfig is the root configuration for one bot instance.
// Each instance ingests exactly one event kind.
type BotConfig struct {
	Instance   InstanceConfig   `yaml:"instance"`
	API        APIConfig        `yaml:"api"`
	Database   DBConfig         `yaml:"database"`
	Connection ConnectionConfig `yaml:"connection"`
	Rates      RatesConfig      `yaml:"rates"`
	Dedup      DedupConfig      `yaml:"dedup"`
	Store      StoreConfig      `yaml:"store"`
	Health     HealthConfig     `yaml:"health"`
}

// InstanceConfig identifies this bot.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// APIConfig holds BitSkins API settings. The API key authenticates both the
// REST client and the WebSocket session.
type APIConfig struct {
	RestURL    string        `yaml:"rest_url"`
	WSURL      string        `yaml:"ws_url"`
	APIKey     string        `yaml:"api_key"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

// DBConfig holds the PostgreSQL connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// ConnectionConfig holds WebSocket session manager settings.
type ConnectionConfig struct {
	ReconnectBaseDelay time.Duration `yaml:"reconnect_base_delay"`
	ReconnectMaxDelay  time.Duration `yaml:"reconnect_max_delay"`
	StabilityThreshold time.Duration `yaml:"stability_threshold"`
	AuthTimeout        time.Duration `yaml:"auth_timeout"`
	PingTimeout        time.Duration `yaml:"ping_timeout"`
	WriteTimeout       time.Duration `yaml:"write_timeout"`
	KeepAliveInterval  time.Duration `yaml:"keepalive_interval"`
	FrameBufferSize    int           `yaml:"frame_buffer_size"`
}

// RatesConfig holds exchange-rate refresh settings.
type RatesConfig struct {
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

// DedupConfig holds the in-memory duplicate suppression window.
type DedupConfig struct {
	Window time.Duration `yaml:"window"`
}

// StoreConfig holds persistence retry settings.
type StoreConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	RetryDelay  time.Duration `yaml:"retry_delay"`
}

// HealthConfig holds the health endpoint settings.
type HealthConfig struct {
	Port int `yaml:"port"`
}
