package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/marketplace/pkg/db"
	"github.com/Skotchmaster/marketplace/pkg/events"
	"github.com/Skotchmaster/marketplace/pkg/logging"
)

var (
	ErrValidation   = errors.New("validation")   // 400
	ErrUnauthorized = errors.New("unauthorized") // 401
	ErrForbidden    = errors.New("forbidden")    // 403
	ErrNotEligible  = errors.New("not eligible") // 403
	ErrNotFound     = errors.New("not found")    // 404
	ErrConflict     = errors.New("conflict")     // 409
)

// translate maps storage errors onto the service sentinels.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s not found: %w", what, ErrNotFound)
	case db.IsUniqueViolation(err):
		return fmt.Errorf("%s already exists: %w", what, ErrConflict)
	default:
		return err
	}
}

var sentinels = []error{ErrValidation, ErrUnauthorized, ErrForbidden, ErrNotEligible, ErrNotFound, ErrConflict}

// Message is err's text without the trailing sentinel, fit for API clients.
func Message(err error) string {
	msg := err.Error()
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return strings.TrimSuffix(msg, ": "+s.Error())
		}
	}
	return msg
}

const publishTimeout = 5 * time.Second

// emit publishes best effort. Failures are logged and never reach the caller.
func emit(ctx context.Context, pub events.Publisher, topic, key string, event map[string]any) {
	if pub == nil {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := pub.Publish(pctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Warn("publish_event_error", "topic", topic, "type", event["type"], "error", err)
	}
}
