package services

import "errors"

var (
	// Upstream exchange-rate API
	ErrUpstreamStatus  = errors.New("upstream returned non-2xx status")
	ErrUpstreamPayload = errors.New("upstream payload is malformed")
	ErrUpstreamRequest = errors.New("upstream request failed")

	// Cache
	ErrCacheMiss        = errors.New("cache miss")
	ErrRedisUnavailable = errors.New("redis is unavailable")

	// Optional backends
	ErrMongoDisabled   = errors.New("mongodb not enabled")
	ErrDiscordDisabled = errors.New("discord bot not enabled")
)
