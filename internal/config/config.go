package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`

	// ConnectionIdleTTL is how long a connection may sit idle before the
	// reaper evicts it.
	ConnectionIdleTTL time.Duration `mapstructure:"connection_idle_ttl" yaml:"connection_idle_ttl"`
	// RoomIdleTTL is how long a room may sit idle before eviction.
	RoomIdleTTL time.Duration `mapstructure:"room_idle_ttl" yaml:"room_idle_ttl"`
	// ReapInterval is the period of the stale-state sweep.
	ReapInterval time.Duration `mapstructure:"reap_interval" yaml:"reap_interval"`
	// MaxFileBytes caps the declared size of encrypted file shares.
	MaxFileBytes int64 `mapstructure:"max_file_bytes" yaml:"max_file_bytes"`
	// AllowImplicitJoin controls whether joining an unknown room code
	// silently creates the room (true) or fails with room_not_found (false).
	AllowImplicitJoin bool `mapstructure:"allow_implicit_join" yaml:"allow_implicit_join"`
	// MessageRateLimit is the per-connection inbound message budget per
	// minute. Zero disables rate limiting.
	MessageRateLimit int `mapstructure:"message_rate_limit" yaml:"message_rate_limit"`

	TokenSecret string        `mapstructure:"token_secret" yaml:"token_secret"`
	TokenIssuer string        `mapstructure:"token_issuer" yaml:"token_issuer"`
	TokenTTL    time.Duration `mapstructure:"token_ttl" yaml:"token_ttl"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
		ConnectionIdleTTL: 30 * time.Minute,
		RoomIdleTTL:       60 * time.Minute,
		ReapInterval:      5 * time.Minute,
		MaxFileBytes:      10 * 1024 * 1024,
		AllowImplicitJoin: true,
		MessageRateLimit:  600,
		TokenIssuer:       "driftroom",
		TokenTTL:          24 * time.Hour,
	}
}
