package security

import (
	"bytes"
	"encoding/json"
	"html"
	"io"
	"strings"

	"github.com/labstack/echo/v4"
)

// SanitizedFields are the free-text body fields that get HTML-escaped.
var SanitizedFields = []string{"description", "bio", "content", "storeDescription"}

// Sanitize HTML-escapes the listed top-level string fields of JSON request
// bodies. Other fields and non-JSON bodies pass through unchanged.
func Sanitize(fields ...string) echo.MiddlewareFunc {
	if len(fields) == 0 {
		fields = SanitizedFields
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Body == nil || req.ContentLength == 0 {
				return next(c)
			}
			if !strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
				return next(c)
			}

			raw, err := io.ReadAll(req.Body)
			if err != nil {
				return err
			}
			req.Body = io.NopCloser(bytes.NewReader(raw))

			out, changed := escapeFields(raw, fields)
			if changed {
				req.Body = io.NopCloser(bytes.NewReader(out))
				req.ContentLength = int64(len(out))
			}
			return next(c)
		}
	}
}

func escapeFields(raw []byte, fields []string) ([]byte, bool) {
	var body map[string]json.RawMessage
	if err := json.Unmarshal(raw, &body); err != nil {
		return raw, false
	}

	changed := false
	for _, f := range fields {
		v, ok := body[f]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			continue
		}
		escaped := html.EscapeString(s)
		if escaped == s {
			continue
		}
		enc, err := json.Marshal(escaped)
		if err != nil {
			continue
		}
		body[f] = enc
		changed = true
	}
	if !changed {
		return raw, false
	}

	out, err := json.Marshal(body)
	if err != nil {
		return raw, false
	}
	return out, true
}
