package config

import "errors"

var (
	ErrConfigRead        = errors.New("failed to read config file")
	ErrConfigParse       = errors.New("failed to parse config file")
	ErrInvalidBackend    = errors.New("storage backend must be 'sqlite', 'redis', or 'memory'")
	ErrSQLitePathMissing = errors.New("sqlite path is required")
	ErrRedisAddrMissing  = errors.New("redis address is required")
	ErrInvalidRedisDB    = errors.New("invalid redis db value")
	ErrInvalidPort       = errors.New("invalid server port")
	ErrInvalidTimezone   = errors.New("invalid timezone")
)
