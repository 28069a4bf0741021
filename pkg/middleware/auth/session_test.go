package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/marketplace/pkg/cookies"
	"github.com/Skotchmaster/marketplace/pkg/tokens"
)

type fakeSessions struct {
	active map[string]bool
	err    error
}

func (f fakeSessions) SessionActive(_ context.Context, jti string, _ uuid.UUID) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.active[jti], nil
}

var secret = []byte("test-secret")

func newServer(m *SessionMiddleware, roles ...string) *echo.Echo {
	e := echo.New()
	h := func(c echo.Context) error {
		id, err := UserID(c)
		if err != nil {
			return err
		}
		return c.String(http.StatusOK, id.String()+"|"+Role(c))
	}
	if len(roles) > 0 {
		e.GET("/p", h, m.RequireAuth, RequireRole(roles...))
	} else {
		e.GET("/p", h, m.RequireAuth)
	}
	return e
}

func do(e *echo.Echo, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: cookies.SessionCookie, Value: token})
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRequireAuth(t *testing.T) {
	userID := uuid.New()
	token, claims, err := tokens.NewSession(userID, "vendor", time.Hour, secret)
	require.NoError(t, err)

	t.Run("missing cookie", func(t *testing.T) {
		e := newServer(NewSessionMiddleware(secret, fakeSessions{}, false))
		assert.Equal(t, http.StatusUnauthorized, do(e, "").Code)
	})

	t.Run("bad token", func(t *testing.T) {
		e := newServer(NewSessionMiddleware(secret, fakeSessions{}, false))
		assert.Equal(t, http.StatusUnauthorized, do(e, "garbage").Code)
	})

	t.Run("revoked session", func(t *testing.T) {
		e := newServer(NewSessionMiddleware(secret, fakeSessions{active: map[string]bool{}}, false))
		assert.Equal(t, http.StatusUnauthorized, do(e, token).Code)
	})

	t.Run("checker failure", func(t *testing.T) {
		e := newServer(NewSessionMiddleware(secret, fakeSessions{err: errors.New("db down")}, false))
		assert.Equal(t, http.StatusInternalServerError, do(e, token).Code)
	})

	t.Run("active session", func(t *testing.T) {
		e := newServer(NewSessionMiddleware(secret, fakeSessions{active: map[string]bool{claims.ID: true}}, false))
		rec := do(e, token)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, userID.String()+"|vendor", rec.Body.String())
	})
}

func TestRequireRole(t *testing.T) {
	userID := uuid.New()
	token, claims, err := tokens.NewSession(userID, "user", time.Hour, secret)
	require.NoError(t, err)
	sessions := fakeSessions{active: map[string]bool{claims.ID: true}}

	e := newServer(NewSessionMiddleware(secret, sessions, false), "admin")
	assert.Equal(t, http.StatusForbidden, do(e, token).Code)

	e = newServer(NewSessionMiddleware(secret, sessions, false), "user", "admin")
	assert.Equal(t, http.StatusOK, do(e, token).Code)
}
