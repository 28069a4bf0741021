package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/marketplace/internal/service"
	"github.com/Skotchmaster/marketplace/internal/transport"
	"github.com/Skotchmaster/marketplace/pkg/cookies"
	"github.com/Skotchmaster/marketplace/pkg/logging"
	"github.com/Skotchmaster/marketplace/pkg/middleware/csrf"
	"github.com/Skotchmaster/marketplace/pkg/tokens"
)

type AuthHTTP struct {
	Svc    *service.AuthService
	CSRF   csrf.Config
	Secure bool
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := bind(c, l, "register", &req); err != nil {
		return err
	}
	user, err := h.Svc.Register(ctx, req)
	if err != nil {
		return fail(l, "register", err)
	}
	l.Info("register_success", "user_id", user.ID)
	return c.JSON(http.StatusCreated, user)
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := bind(c, l, "login", &req); err != nil {
		return err
	}
	res, err := h.Svc.Login(ctx, req)
	if err != nil {
		return fail(l, "login", err)
	}

	c.SetCookie(cookies.CreateCookie(cookies.SessionCookie, res.Token, "/", res.ExpiresAt, h.Secure))
	l.Info("login_success", "user_id", res.User.ID)
	return c.JSON(http.StatusOK, map[string]any{"user": res.User})
}

// Logout revokes the session when the cookie still parses and always clears
// the auth and CSRF cookies.
func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	if ck, err := c.Cookie(cookies.SessionCookie); err == nil && ck.Value != "" {
		if claims, err := tokens.SessionClaimsFromToken(ck.Value, h.Svc.Secret); err == nil {
			if err := h.Svc.Logout(ctx, claims.ID); err != nil {
				l.Error("logout_error", "status", 500, "error", err)
				return echo.NewHTTPError(http.StatusInternalServerError, "failed to log out")
			}
			l.Info("logout_success", "user_id", claims.Subject)
		}
	}

	c.SetCookie(cookies.DeleteCookie(cookies.SessionCookie, "/", h.Secure))
	c.SetCookie(cookies.DeleteCookie(h.CSRF.CookieName, "/", h.Secure))
	c.SetCookie(cookies.DeleteCookie(h.CSRF.ReadableCookieName, "/", h.Secure))
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.me")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	p, err := h.Svc.Me(ctx, userID)
	if err != nil {
		return fail(l, "me", err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *AuthHTTP) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.update_profile")

	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req transport.UpdateProfileRequest
	if err := bind(c, l, "update_profile", &req); err != nil {
		return err
	}
	user, err := h.Svc.UpdateProfile(ctx, userID, req)
	if err != nil {
		return fail(l, "update_profile", err)
	}
	return c.JSON(http.StatusOK, user)
}
