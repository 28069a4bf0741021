package security

import (
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const contentSecurityPolicy = "default-src 'self'; img-src 'self' data: https:; style-src 'self' 'unsafe-inline'; frame-ancestors 'none'"

// Headers sets the browser hardening headers. HSTS is only sent in
// production.
func Headers(production bool) echo.MiddlewareFunc {
	cfg := middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		ContentSecurityPolicy: contentSecurityPolicy,
		ReferrerPolicy:        "no-referrer",
	}
	if production {
		cfg.HSTSMaxAge = 15552000
		cfg.HSTSExcludeSubdomains = false
	}
	return middleware.SecureWithConfig(cfg)
}

type OriginPolicy struct {
	Exact []string
	// HTTPSSuffix admits https origins whose host ends with it, e.g. ".vercel.app".
	HTTPSSuffix string
}

func (p OriginPolicy) Allowed(origin string) bool {
	if origin == "" {
		return true
	}
	if slices.Contains(p.Exact, origin) {
		return true
	}
	if p.HTTPSSuffix == "" {
		return false
	}
	u, err := url.Parse(origin)
	if err != nil || u.Scheme != "https" {
		return false
	}
	return strings.HasSuffix(u.Hostname(), p.HTTPSSuffix)
}

func CORS(p OriginPolicy) echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOriginFunc: func(origin string) (bool, error) {
			return p.Allowed(origin), nil
		},
		AllowMethods: []string{
			http.MethodGet, http.MethodHead, http.MethodPost,
			http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowHeaders: []string{
			echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept,
			echo.HeaderAuthorization, "x-csrf-token",
		},
		AllowCredentials: true,
		MaxAge:           600,
	})
}
