package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/toddjhayden/agogsaas-planning/internal/config"
	"github.com/toddjhayden/agogsaas-planning/internal/domain"
)

const (
	forecastKeyPrefix = "forecast:active"
	scanBatchSize     = 100
	defaultTTL        = 5 * time.Minute
)

// ForecastCache fronts ACTIVE-forecast reads. Commits invalidate the whole
// material so stale versions never serve.
type ForecastCache interface {
	GetActive(ctx context.Context, scope domain.Scope, start, end time.Time) ([]domain.MaterialForecast, bool, error)
	SetActive(ctx context.Context, scope domain.Scope, start, end time.Time, forecasts []domain.MaterialForecast) error
	InvalidateMaterial(ctx context.Context, scope domain.Scope) error
}

type redisForecastCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopForecastCache struct{}

func NewForecastCache(cfg config.CacheConfig) (ForecastCache, error) {
	if !cfg.Enabled {
		return &noopForecastCache{}, nil
	}

	opts, err := buildRedisOptions(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	ttl := time.Duration(cfg.ForecastTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = defaultTTL
	}

	return &redisForecastCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopForecastCache() ForecastCache {
	return &noopForecastCache{}
}

func (c *redisForecastCache) GetActive(ctx context.Context, scope domain.Scope, start, end time.Time) ([]domain.MaterialForecast, bool, error) {
	key := buildForecastKey(scope, start, end)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var forecasts []domain.MaterialForecast
	if err := json.Unmarshal(payload, &forecasts); err != nil {
		return nil, false, fmt.Errorf("decode forecast cache: %w", err)
	}

	return forecasts, true, nil
}

func (c *redisForecastCache) SetActive(ctx context.Context, scope domain.Scope, start, end time.Time, forecasts []domain.MaterialForecast) error {
	key := buildForecastKey(scope, start, end)
	payload, err := json.Marshal(forecasts)
	if err != nil {
		return fmt.Errorf("encode forecast cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

func (c *redisForecastCache) InvalidateMaterial(ctx context.Context, scope domain.Scope) error {
	pattern := materialKeyPrefix(scope) + "*"

	var cursor uint64
	for {
		keys, nextCursor, err := c.client.Scan(ctx, cursor, pattern, scanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("redis scan failed: %w", err)
		}

		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis delete failed: %w", err)
			}
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	return nil
}

func (n *noopForecastCache) GetActive(ctx context.Context, scope domain.Scope, start, end time.Time) ([]domain.MaterialForecast, bool, error) {
	return nil, false, nil
}

func (n *noopForecastCache) SetActive(ctx context.Context, scope domain.Scope, start, end time.Time, forecasts []domain.MaterialForecast) error {
	return nil
}

func (n *noopForecastCache) InvalidateMaterial(ctx context.Context, scope domain.Scope) error {
	return nil
}

func buildRedisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opt, nil
	}

	host := cfg.RedisHost
	if host == "" {
		host = "127.0.0.1"
	}

	port := cfg.RedisPort
	if port == "" {
		port = "6379"
	}

	return &redis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}

func materialKeyPrefix(scope domain.Scope) string {
	return fmt.Sprintf("%s:%s:%s:%s",
		forecastKeyPrefix, scope.TenantID, scope.FacilityID, scope.MaterialID)
}

func buildForecastKey(scope domain.Scope, start, end time.Time) string {
	raw := strings.Join([]string{
		start.Format("2006-01-02"),
		end.Format("2006-01-02"),
	}, "|")
	hash := sha1.Sum([]byte(raw))
	return fmt.Sprintf("%s:%s", materialKeyPrefix(scope), hex.EncodeToString(hash[:]))
}
