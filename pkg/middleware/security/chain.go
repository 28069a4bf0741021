package security

import (
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/marketplace/pkg/middleware/csrf"
	"github.com/Skotchmaster/marketplace/pkg/middleware/ratelimit"
)

type ChainConfig struct {
	Production bool
	Origins    OriginPolicy
	CSRF       csrf.Config

	Global   ratelimit.Rule
	Auth     ratelimit.Rule
	API      ratelimit.Rule
	SlowDown ratelimit.SlowDownConfig
}

func DefaultChain(production bool, origins OriginPolicy) ChainConfig {
	c := csrf.DefaultConfig()
	c.Secure = production
	return ChainConfig{
		Production: production,
		Origins:    origins,
		CSRF:       c,
		Global:     ratelimit.Global,
		Auth:       ratelimit.Auth,
		API:        ratelimit.API,
		SlowDown:   ratelimit.DefaultSlowDown(),
	}
}

// Chain returns the request pipeline in the order it must run: headers,
// CORS, the three limiters, speed-down, sanitize, CSRF.
func Chain(cfg ChainConfig) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		Headers(cfg.Production),
		CORS(cfg.Origins),
		ratelimit.Limiter(cfg.Global, nil),
		ratelimit.Limiter(cfg.Auth, nil),
		ratelimit.Limiter(cfg.API, nil),
		ratelimit.SlowDown(cfg.SlowDown),
		Sanitize(),
		csrf.Middleware(cfg.CSRF),
	}
}
