package csrf

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/marketplace/pkg/logging"
)

const InvalidTokenMessage = "Invalid CSRF token"

type Config struct {
	// CookieName holds the httpOnly copy the header is checked against.
	CookieName string
	// ReadableCookieName holds the copy the browser script echoes back.
	ReadableCookieName string
	HeaderName         string

	CookiePath string
	Domain     string
	Secure     bool
	SameSite   http.SameSite
	MaxAge     time.Duration

	// PathPrefix limits verification to matching request paths.
	PathPrefix string
	SkipPaths  []string
}

func DefaultConfig() Config {
	return Config{
		CookieName:         "_csrf",
		ReadableCookieName: "csrf-token",
		HeaderName:         "x-csrf-token",
		CookiePath:         "/",
		SameSite:           http.SameSiteLaxMode,
		MaxAge:             time.Hour,
		PathPrefix:         "/api/",
		SkipPaths:          []string{"/api/auth/login", "/api/auth/logout", "/api/csrf-token"},
	}
}

func (cfg *Config) fill() {
	def := DefaultConfig()
	if cfg.CookieName == "" {
		cfg.CookieName = def.CookieName
	}
	if cfg.ReadableCookieName == "" {
		cfg.ReadableCookieName = def.ReadableCookieName
	}
	if cfg.HeaderName == "" {
		cfg.HeaderName = def.HeaderName
	}
	if cfg.CookiePath == "" {
		cfg.CookiePath = def.CookiePath
	}
	if cfg.SameSite == 0 {
		cfg.SameSite = def.SameSite
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = def.MaxAge
	}
}

// Middleware verifies the double-submit token on state-changing requests.
// Safe methods pass through untouched.
func Middleware(cfg Config) echo.MiddlewareFunc {
	cfg.fill()

	skip := map[string]struct{}{}
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}
			if cfg.PathPrefix != "" && !strings.HasPrefix(req.URL.Path, cfg.PathPrefix) {
				return next(c)
			}
			if _, ok := skip[req.URL.Path]; ok {
				return next(c)
			}

			expected := readCookie(req, cfg.CookieName)
			provided := req.Header.Get(cfg.HeaderName)
			if !secureCompare(expected, provided) {
				logging.FromContext(req.Context()).Warn("csrf_rejected", "status", 403, "has_cookie", expected != "", "has_header", provided != "")
				return c.JSON(http.StatusForbidden, map[string]string{"error": InvalidTokenMessage})
			}

			return next(c)
		}
	}
}

// IssueHandler sets a fresh token in both cookies and returns it in the body.
func IssueHandler(cfg Config) echo.HandlerFunc {
	cfg.fill()
	return func(c echo.Context) error {
		token, err := NewToken()
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to create CSRF token")
		}
		setCookies(c, cfg, token)
		return c.JSON(http.StatusOK, map[string]string{"csrfToken": token})
	}
}

func NewToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func setCookies(c echo.Context, cfg Config, token string) {
	for _, ck := range []struct {
		name     string
		httpOnly bool
	}{
		{cfg.CookieName, true},
		{cfg.ReadableCookieName, false},
	} {
		c.SetCookie(&http.Cookie{
			Name:     ck.name,
			Value:    token,
			Path:     cfg.CookiePath,
			Domain:   cfg.Domain,
			Secure:   cfg.Secure,
			HttpOnly: ck.httpOnly,
			MaxAge:   int(cfg.MaxAge.Seconds()),
			SameSite: cfg.SameSite,
		})
	}
}

func readCookie(req *http.Request, name string) string {
	c, err := req.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

func secureCompare(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
