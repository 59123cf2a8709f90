package config

import "time"

type Config struct {
	Server    ServerConfig
	Transport TransportConfig
	Chat      ChatConfig
	Store     StoreConfig
	LogLevel  string `mapstructure:"logLevel"`
}

type ServerConfig struct {
	Address       string
	Auth          AuthConfig
	MaxConnsPerIP int `mapstructure:"maxConnsPerIP"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwtSecret"`
}

type TransportConfig struct {
	// PingInterval is the keepalive cadence; ReadTimeout must allow at
	// least one missed probe before the session is torn down.
	PingInterval  time.Duration `mapstructure:"pingInterval"`
	ReadTimeout   time.Duration `mapstructure:"readTimeout"`
	SendQueueSize int           `mapstructure:"sendQueueSize"`
}

type ChatConfig struct {
	// DefaultRoom is used when a client does not name a room. The original
	// deployment ran a single global room.
	DefaultRoom       string `mapstructure:"defaultRoom"`
	MalformedFrameMax int    `mapstructure:"malformedFrameMax"`
	HistoryLimit      int    `mapstructure:"historyLimit"`
}

type StoreConfig struct {
	// RedisAddr empty selects the in-memory store.
	RedisAddr  string `mapstructure:"redisAddr"`
	HistoryCap int    `mapstructure:"historyCap"`
}
