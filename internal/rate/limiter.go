// Package rate throttles failed login attempts with fixed-window Redis
// counters, keyed per identifier and optionally per client IP.
package rate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRateLimited is returned when an identifier or IP exhausted its
// failed-login budget for the current window.
var ErrRateLimited = errors.New("too many failed login attempts")

// ErrUnavailable is returned when the Redis backend cannot be reached.
var ErrUnavailable = errors.New("rate limit backend unavailable")

// Config holds login throttle tuning parameters.
type Config struct {
	MaxAttempts  int
	Window       time.Duration
	ThrottleByIP bool
}

// DefaultConfig allows five failures per identifier in a fifteen-minute
// window, with per-IP throttling on.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  5,
		Window:       15 * time.Minute,
		ThrottleByIP: true,
	}
}

// Limiter enforces the failed-login budget using Redis counters.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a Limiter backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) (*Limiter, error) {
	if cfg.MaxAttempts < 1 {
		return nil, errors.New("rate: max attempts must be >= 1")
	}
	if cfg.Window < time.Second {
		return nil, errors.New("rate: window must be >= 1s")
	}

	return &Limiter{redis: redisClient, config: cfg}, nil
}

// Check reports whether the identifier+IP pair is still within its
// failed-login budget.
func (l *Limiter) Check(ctx context.Context, identifier, ip string) error {
	if err := l.checkCounter(ctx, identifierKey(identifier)); err != nil {
		return err
	}

	if l.config.ThrottleByIP && ip != "" {
		if err := l.checkCounter(ctx, ipKey(ip)); err != nil {
			return err
		}
	}

	return nil
}

// RecordFailure records a failed login attempt for the identifier+IP pair.
func (l *Limiter) RecordFailure(ctx context.Context, identifier, ip string) error {
	if _, err := l.incrementWithTTL(ctx, identifierKey(identifier)); err != nil {
		return err
	}

	if l.config.ThrottleByIP && ip != "" {
		if _, err := l.incrementWithTTL(ctx, ipKey(ip)); err != nil {
			return err
		}
	}

	return nil
}

// Reset clears the failure counters for the identifier+IP pair. Called
// after a successful login.
func (l *Limiter) Reset(ctx context.Context, identifier, ip string) error {
	keys := []string{identifierKey(identifier)}
	if l.config.ThrottleByIP && ip != "" {
		keys = append(keys, ipKey(ip))
	}

	if err := l.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return nil
}

func (l *Limiter) checkCounter(ctx context.Context, key string) error {
	count, err := l.redis.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if count >= int64(l.config.MaxAttempts) {
		return ErrRateLimited
	}

	return nil
}

func (l *Limiter) incrementWithTTL(ctx context.Context, key string) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	// Fixed-window semantics: the TTL is set only on the first hit.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.config.Window).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}

	return count, nil
}

func identifierKey(identifier string) string {
	return "baiyu:login:id:" + strings.ToLower(identifier)
}

func ipKey(ip string) string {
	return "baiyu:login:ip:" + ip
}
