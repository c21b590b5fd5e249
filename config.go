package main

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Addr    string `envconfig:"SYNCROOM_ADDR" default:":8080" validate:"required"`
	TLSCert string `envconfig:"SYNCROOM_TLS_CERT"`
	TLSKey  string `envconfig:"SYNCROOM_TLS_KEY"`

	// AutoCreateRooms switches joinRoom from strict (unknown code is an
	// error) to auto-create (the joiner becomes owner of a fresh room).
	AutoCreateRooms bool `envconfig:"SYNCROOM_AUTO_CREATE_ROOMS" default:"false"`

	MaxRooms          int   `envconfig:"SYNCROOM_MAX_ROOMS" default:"1000" validate:"min=1"`
	MaxClientsPerRoom int   `envconfig:"SYNCROOM_MAX_CLIENTS_PER_ROOM" default:"16" validate:"min=1"`
	MaxMessageSize    int64 `envconfig:"SYNCROOM_MAX_MESSAGE_SIZE" default:"65536" validate:"min=512"`

	RoomIdleTimeout time.Duration `envconfig:"SYNCROOM_ROOM_IDLE_TIMEOUT" default:"1h" validate:"min=1s"`
	ReapInterval    time.Duration `envconfig:"SYNCROOM_REAP_INTERVAL" default:"60s" validate:"min=1s"`

	RateLimitPerIP float64 `envconfig:"SYNCROOM_RATE_LIMIT_PER_IP" default:"10" validate:"gt=0"`

	// SyncStartDelay is how far in the future the shared playback start
	// timestamp is placed, so every member holds it before it passes.
	SyncStartDelay time.Duration `envconfig:"SYNCROOM_SYNC_START_DELAY" default:"5s" validate:"min=0"`
}

func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
