package services

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"forge/config"
	"forge/logging"
	"forge/models"
)

// CacheMode indicates which cache backend is active
type CacheMode string

const (
	CacheModeRedis    CacheMode = "redis"
	CacheModeInMemory CacheMode = "in-memory"
)

const (
	KeyLatestRates = "rates:latest"
)

// key patterns owned by this service, removed by ClearCache
var cacheKeyPatterns = []string{"rates:*"}

// CacheItem for in-memory fallback. Data is the JSON encoding, the same
// bytes Redis would hold.
type CacheItem struct {
	Data      []byte
	ExpiresAt time.Time
}

type CacheService struct {
	cfg *config.Config
	log *zerolog.Logger

	// Redis
	redis       *redis.Client
	redisCtx    context.Context
	redisCancel context.CancelFunc
	mode        CacheMode
	modeMutex   sync.RWMutex

	// In-memory fallback
	inMemoryStore sync.Map

	stopChan chan struct{}
	stopOnce sync.Once
}

func NewCacheService(cfg *config.Config) *CacheService {
	ctx, cancel := context.WithCancel(context.Background())

	cs := &CacheService{
		cfg:         cfg,
		log:         logging.GetSubsystemLogger("cache"),
		redisCtx:    ctx,
		redisCancel: cancel,
		mode:        CacheModeInMemory,
		stopChan:    make(chan struct{}),
	}

	if cfg.Redis.Enabled {
		cs.connectRedis()
	} else {
		cs.log.Info().Msg("redis disabled, using in-memory cache")
	}
	setGauge(cacheRedisActive, cs.getMode() == CacheModeRedis)

	return cs
}

func (cs *CacheService) connectRedis() {
	addr := cs.cfg.Redis.Address
	if addr == "" {
		addr = "localhost:6379"
	}

	options := &redis.Options{
		Addr:         addr,
		Password:     cs.cfg.Redis.Password,
		DB:           cs.cfg.Redis.DB,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		PoolSize:     5,
		MinIdleConns: 1,
		MaxRetries:   3,
		PoolTimeout:  10 * time.Second,
	}
	if cs.cfg.Redis.UseTLS {
		options.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	cs.redis = redis.NewClient(options)

	ctx, cancel := context.WithTimeout(cs.redisCtx, 10*time.Second)
	defer cancel()

	if err := cs.redis.Ping(ctx).Err(); err != nil {
		cs.log.Warn().Err(err).
			Str("address", addr).
			Bool("tls", cs.cfg.Redis.UseTLS).
			Msg("redis connection failed, running with in-memory cache")
		cs.setMode(CacheModeInMemory)
		return
	}

	cs.log.Info().Str("address", addr).Msg("redis connected")
	cs.setMode(CacheModeRedis)
}

func (cs *CacheService) setMode(mode CacheMode) {
	cs.modeMutex.Lock()
	defer cs.modeMutex.Unlock()

	if cs.mode != mode {
		cs.mode = mode
		cs.log.Info().Str("mode", string(mode)).Msg("cache mode changed")
	}
	setGauge(cacheRedisActive, mode == CacheModeRedis)
}

func (cs *CacheService) getMode() CacheMode {
	cs.modeMutex.RLock()
	defer cs.modeMutex.RUnlock()
	return cs.mode
}

// Start launches the Redis health-check loop. It is a no-op when Redis is
// disabled.
func (cs *CacheService) Start() {
	if cs.redis == nil {
		return
	}
	go cs.runHealthCheckLoop()
}

func (cs *CacheService) Stop() {
	cs.stopOnce.Do(func() {
		close(cs.stopChan)
		cs.redisCancel()
		if cs.redis != nil {
			cs.redis.Close()
		}
	})
}

func (cs *CacheService) runHealthCheckLoop() {
	interval := cs.cfg.CacheHealthCheckDuration()
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cs.checkRedisHealth()
		case <-cs.stopChan:
			return
		}
	}
}

// checkRedisHealth demotes to in-memory on a failed ping and promotes back,
// copying live in-memory entries across, once Redis answers again.
func (cs *CacheService) checkRedisHealth() {
	ctx, cancel := context.WithTimeout(cs.redisCtx, 2*time.Second)
	defer cancel()

	err := cs.redis.Ping(ctx).Err()

	switch cs.getMode() {
	case CacheModeRedis:
		if err != nil {
			cs.log.Warn().Err(err).Msg("redis health check failed")
			cs.setMode(CacheModeInMemory)
		}
	case CacheModeInMemory:
		if err == nil {
			cs.log.Info().Msg("redis reachable again")
			cs.syncInMemoryToRedis()
			cs.setMode(CacheModeRedis)
		}
	}
}

func (cs *CacheService) syncInMemoryToRedis() {
	synced := 0
	cs.inMemoryStore.Range(func(key, value any) bool {
		item := value.(*CacheItem)
		ttl := time.Until(item.ExpiresAt)
		if ttl > 0 {
			if err := cs.setRedis(key.(string), item.Data, ttl); err == nil {
				synced++
			}
		}
		return true
	})
	cs.log.Info().Int("items", synced).Msg("synced in-memory cache to redis")
}

// Ping checks the Redis connection directly, regardless of the current mode.
func (cs *CacheService) Ping(ctx context.Context) error {
	if cs.redis == nil {
		return ErrRedisUnavailable
	}
	if err := cs.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrRedisUnavailable, err)
	}
	return nil
}

// ============================================
// Generic Set/Get with Redis + In-Memory
// ============================================

// Set stores the JSON encoding of data in the active backend.
func (cs *CacheService) Set(key string, data any, ttl time.Duration) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal cache value %q: %w", key, err)
	}

	if cs.getMode() == CacheModeRedis {
		if err := cs.setRedis(key, raw, ttl); err != nil {
			cs.log.Warn().Err(err).Str("key", key).Msg("redis SET failed, storing in memory")
			cs.setInMemory(key, raw, ttl)
		}
		return nil
	}

	cs.setInMemory(key, raw, ttl)
	return nil
}

// GetJSON decodes the cached value for key into dst. Expired entries are
// reported as not found.
func (cs *CacheService) GetJSON(key string, dst any) (bool, error) {
	raw, stale, found := cs.GetWithStale(key)
	if !found || stale {
		cacheLookupsTotal.WithLabelValues("miss").Inc()
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode cache value %q: %w", key, err)
	}
	cacheLookupsTotal.WithLabelValues("hit").Inc()
	return true, nil
}

// GetWithStale returns the raw cached bytes and whether they are past
// their TTL. Redis drops expired keys itself, so only in-memory entries
// can come back stale.
func (cs *CacheService) GetWithStale(key string) ([]byte, bool, bool) {
	if cs.getMode() == CacheModeRedis {
		raw, err := cs.getRedis(key)
		switch {
		case err == nil:
			return raw, false, true
		case errors.Is(err, ErrCacheMiss):
			return nil, false, false
		default:
			cs.log.Warn().Err(err).Str("key", key).Msg("redis GET failed, checking in-memory")
		}
	}
	return cs.getInMemoryWithStale(key)
}

// ============================================
// Redis Operations
// ============================================

func (cs *CacheService) setRedis(key string, raw []byte, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(cs.redisCtx, 2*time.Second)
	defer cancel()

	if err := cs.redis.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (cs *CacheService) getRedis(key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(cs.redisCtx, 2*time.Second)
	defer cancel()

	raw, err := cs.redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return raw, nil
}

// ============================================
// In-Memory Operations (Fallback)
// ============================================

func (cs *CacheService) setInMemory(key string, raw []byte, ttl time.Duration) {
	cs.inMemoryStore.Store(key, &CacheItem{
		Data:      raw,
		ExpiresAt: time.Now().Add(ttl),
	})
}

func (cs *CacheService) getInMemoryWithStale(key string) ([]byte, bool, bool) {
	val, ok := cs.inMemoryStore.Load(key)
	if !ok {
		return nil, false, false
	}

	item := val.(*CacheItem)
	return item.Data, time.Now().After(item.ExpiresAt), true
}

// ============================================
// Typed Helper Methods
// ============================================

// GetRates returns the cached upstream rates, if fresh.
func (cs *CacheService) GetRates() (*models.ExchangeRates, bool) {
	var rates models.ExchangeRates
	found, err := cs.GetJSON(KeyLatestRates, &rates)
	if err != nil {
		cs.log.Warn().Err(err).Msg("discarding undecodable cached rates")
		return nil, false
	}
	if !found {
		return nil, false
	}
	return &rates, true
}

func (cs *CacheService) SetRates(rates *models.ExchangeRates, ttl time.Duration) error {
	return cs.Set(KeyLatestRates, rates, ttl)
}

// ============================================
// Utility Methods
// ============================================

func (cs *CacheService) GetCacheMode() CacheMode {
	return cs.getMode()
}

// ClearCache removes every key this service owns from both backends.
func (cs *CacheService) ClearCache() error {
	if cs.getMode() == CacheModeRedis && cs.redis != nil {
		ctx, cancel := context.WithTimeout(cs.redisCtx, 5*time.Second)
		defer cancel()

		deleted := 0
		for _, pattern := range cacheKeyPatterns {
			iter := cs.redis.Scan(ctx, 0, pattern, 0).Iterator()
			for iter.Next(ctx) {
				if err := cs.redis.Del(ctx, iter.Val()).Err(); err == nil {
					deleted++
				}
			}
			if err := iter.Err(); err != nil {
				return fmt.Errorf("scan %s: %w", pattern, err)
			}
		}
		cs.log.Info().Int("keys", deleted).Msg("redis cache cleared")
	}

	cs.inMemoryStore.Range(func(key, _ any) bool {
		cs.inMemoryStore.Delete(key)
		return true
	})
	cs.log.Info().Msg("in-memory cache cleared")

	return nil
}

func (cs *CacheService) GetCacheStats() map[string]any {
	mode := cs.getMode()
	stats := map[string]any{
		"mode":    string(mode),
		"enabled": cs.cfg.Redis.Enabled,
	}

	if mode == CacheModeRedis && cs.redis != nil {
		ctx, cancel := context.WithTimeout(cs.redisCtx, 2*time.Second)
		defer cancel()

		if dbSize, err := cs.redis.DBSize(ctx).Result(); err == nil {
			stats["redis_keys"] = dbSize
		}
	}

	inMemCount := 0
	cs.inMemoryStore.Range(func(_, _ any) bool {
		inMemCount++
		return true
	})
	stats["in_memory_keys"] = inMemCount

	return stats
}
