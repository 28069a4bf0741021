package middleware

import (
	"context"
	"errors"
	"net/http"
	"slices"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/marketplace/pkg/cookies"
	"github.com/Skotchmaster/marketplace/pkg/logging"
	"github.com/Skotchmaster/marketplace/pkg/tokens"
)

const (
	CtxUserID    = "user_id"
	CtxRole      = "role"
	CtxSessionID = "session_id"
)

var ErrNoUser = errors.New("no authenticated user")

// SessionChecker reports whether the session behind jti is still usable:
// stored, not revoked, not expired, and owned by an active user.
type SessionChecker interface {
	SessionActive(ctx context.Context, jti string, userID uuid.UUID) (bool, error)
}

type SessionMiddleware struct {
	Secret   []byte
	Sessions SessionChecker
	Secure   bool
}

func NewSessionMiddleware(secret []byte, sessions SessionChecker, secure bool) *SessionMiddleware {
	return &SessionMiddleware{Secret: secret, Sessions: sessions, Secure: secure}
}

func (m *SessionMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("mw", "auth.require")

		ck, err := c.Cookie(cookies.SessionCookie)
		if err != nil || ck.Value == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
		}

		claims, err := tokens.SessionClaimsFromToken(ck.Value, m.Secret)
		if err != nil {
			l.Warn("session_rejected", "status", 401, "reason", "invalid token", "error", err)
			c.SetCookie(cookies.DeleteCookie(cookies.SessionCookie, "/", m.Secure))
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired session")
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired session")
		}

		active, err := m.Sessions.SessionActive(ctx, claims.ID, userID)
		if err != nil {
			l.Error("session_check_error", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot verify session")
		}
		if !active {
			l.Warn("session_rejected", "status", 401, "reason", "revoked or inactive")
			c.SetCookie(cookies.DeleteCookie(cookies.SessionCookie, "/", m.Secure))
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired session")
		}

		c.Set(CtxUserID, claims.Subject)
		c.Set(CtxRole, claims.Role)
		c.Set(CtxSessionID, claims.ID)
		return next(c)
	}
}

func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(CtxRole).(string)
			if role == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			if !slices.Contains(roles, role) {
				return echo.NewHTTPError(http.StatusForbidden, "you don't have enough rights")
			}
			return next(c)
		}
	}
}

func UserID(c echo.Context) (uuid.UUID, error) {
	s, ok := c.Get(CtxUserID).(string)
	if !ok || s == "" {
		return uuid.Nil, ErrNoUser
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, ErrNoUser
	}
	return id, nil
}

func Role(c echo.Context) string {
	r, _ := c.Get(CtxRole).(string)
	return r
}

func SessionID(c echo.Context) string {
	s, _ := c.Get(CtxSessionID).(string)
	return s
}
