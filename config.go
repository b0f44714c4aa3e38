package baiyuspace

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/baiyuheniao/BaiyuSpace/internal/rate"
	"github.com/baiyuheniao/BaiyuSpace/jwt"
	"github.com/baiyuheniao/BaiyuSpace/password"
)

// Config carries the explicit state an Engine needs. Nothing here is
// module-level: distinct engines with distinct secrets and stores can
// coexist in one process, which is what test isolation relies on.
type Config struct {
	// Token configures the signing secret and lifetime of issued tokens.
	Token jwt.Config
	// Password configures the argon2id hasher. The zero value selects
	// [password.DefaultConfig].
	Password password.Config
}

// ThrottleConfig tunes the optional Redis-backed login throttle.
type ThrottleConfig struct {
	MaxAttempts  int
	Window       time.Duration
	ThrottleByIP bool
}

// Option customizes an Engine at construction time.
type Option func(*Engine) error

// WithLoginThrottle enables failed-login throttling on the given Redis
// client. A zero cfg selects the default budget of five failures per
// fifteen-minute window.
func WithLoginThrottle(client redis.UniversalClient, cfg ThrottleConfig) Option {
	return func(e *Engine) error {
		rcfg := rate.Config{
			MaxAttempts:  cfg.MaxAttempts,
			Window:       cfg.Window,
			ThrottleByIP: cfg.ThrottleByIP,
		}
		if rcfg.MaxAttempts == 0 && rcfg.Window == 0 {
			rcfg = rate.DefaultConfig()
		}

		limiter, err := rate.New(client, rcfg)
		if err != nil {
			return err
		}

		e.limiter = limiter
		return nil
	}
}
