package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/marketplace/internal/service"
	"github.com/Skotchmaster/marketplace/pkg/logging"
	authmw "github.com/Skotchmaster/marketplace/pkg/middleware/auth"
	"github.com/Skotchmaster/marketplace/pkg/validate"
)

// ErrorHandler renders every error as {"error": message}.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := "internal server error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		switch m := he.Message.(type) {
		case string:
			msg = m
		case error:
			msg = m.Error()
		default:
			msg = http.StatusText(code)
		}
	} else {
		logging.FromContext(c.Request().Context()).Error("unhandled_error", "error", err)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, map[string]string{"error": msg})
}

var statusOf = []struct {
	err  error
	code int
}{
	{service.ErrValidation, http.StatusBadRequest},
	{service.ErrUnauthorized, http.StatusUnauthorized},
	{service.ErrForbidden, http.StatusForbidden},
	{service.ErrNotEligible, http.StatusForbidden},
	{service.ErrNotFound, http.StatusNotFound},
	{service.ErrConflict, http.StatusConflict},
}

// fail maps a service error to an HTTP error and logs it at the level its
// status class deserves.
func fail(l *slog.Logger, op string, err error) error {
	for _, s := range statusOf {
		if errors.Is(err, s.err) {
			l.Warn(op+"_error", "status", s.code, "reason", service.Message(err))
			return echo.NewHTTPError(s.code, service.Message(err))
		}
	}
	l.Error(op+"_error", "status", http.StatusInternalServerError, "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}

// bind decodes and validates the request body into req.
func bind(c echo.Context, l *slog.Logger, op string, req any) error {
	if err := c.Bind(req); err != nil {
		l.Warn(op+"_error", "status", http.StatusBadRequest, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(req); err != nil {
		l.Warn(op+"_error", "status", http.StatusBadRequest, "reason", "validation", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, validate.Describe(err).Error())
	}
	return nil
}

func pathID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

func currentUser(c echo.Context) (uuid.UUID, error) {
	id, err := authmw.UserID(c)
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return id, nil
}
