package ratelimit

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/marketplace/pkg/logging"
)

const (
	DefaultMessage = "Too many requests, please try again later."
	AuthMessage    = "Too many authentication attempts, please try again later."
)

type Rule struct {
	Name       string
	Max        int
	Window     time.Duration
	PathPrefix string
	Message    string
}

var (
	Global = Rule{Name: "global", Max: 1000, Window: 15 * time.Minute, Message: DefaultMessage}
	Auth   = Rule{Name: "auth", Max: 5, Window: 15 * time.Minute, PathPrefix: "/api/auth/", Message: AuthMessage}
	API    = Rule{Name: "api", Max: 100, Window: 15 * time.Minute, PathPrefix: "/api/", Message: DefaultMessage}
)

func clientIP(c echo.Context) (string, error) {
	return c.RealIP(), nil
}

func skipOutside(prefix string) middleware.Skipper {
	return func(c echo.Context) bool {
		return prefix != "" && !strings.HasPrefix(c.Request().URL.Path, prefix)
	}
}

// Limiter rejects with 429 once a client exceeds rule.Max requests in the
// rule's window.
func Limiter(rule Rule, store *WindowStore) echo.MiddlewareFunc {
	if store == nil {
		store = NewWindowStore(rule.Window)
	}
	msg := rule.Message
	if msg == "" {
		msg = DefaultMessage
	}

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Skipper:             skipOutside(rule.PathPrefix),
		IdentifierExtractor: clientIP,
		Store:               &Limit{Store: store, Max: rule.Max},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden, map[string]string{"error": "cannot identify client"})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			logging.FromContext(c.Request().Context()).Warn("rate_limited", "status", 429, "limiter", rule.Name, "ip", identifier)
			return c.JSON(http.StatusTooManyRequests, map[string]string{"error": msg})
		},
	})
}

type SlowDownConfig struct {
	Window     time.Duration
	DelayAfter int
	DelayStep  time.Duration
	MaxDelay   time.Duration
	PathPrefix string
	Store      *WindowStore
	// Sleep waits for d or until ctx is done. Defaults to a timer wait.
	Sleep func(ctx context.Context, d time.Duration) error
}

func DefaultSlowDown() SlowDownConfig {
	return SlowDownConfig{
		Window:     15 * time.Minute,
		DelayAfter: 50,
		DelayStep:  500 * time.Millisecond,
		MaxDelay:   20 * time.Second,
		PathPrefix: "/api/",
	}
}

// Delay is the wait added to the n-th request of a window.
func Delay(n, after int, step, max time.Duration) time.Duration {
	if n <= after {
		return 0
	}
	d := time.Duration(n-after) * step
	if max > 0 && d > max {
		return max
	}
	return d
}

// SlowDown delays rather than rejects clients above the threshold.
func SlowDown(cfg SlowDownConfig) echo.MiddlewareFunc {
	if cfg.Store == nil {
		cfg.Store = NewWindowStore(cfg.Window)
	}
	if cfg.Sleep == nil {
		cfg.Sleep = sleepCtx
	}
	skip := skipOutside(cfg.PathPrefix)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skip(c) {
				return next(c)
			}
			n, _ := cfg.Store.Hit(c.RealIP())
			d := Delay(n, cfg.DelayAfter, cfg.DelayStep, cfg.MaxDelay)
			if d > 0 {
				ctx := c.Request().Context()
				logging.FromContext(ctx).Debug("slow_down", "hits", n, "delay_ms", d.Milliseconds())
				if err := cfg.Sleep(ctx, d); err != nil {
					return err
				}
			}
			return next(c)
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
