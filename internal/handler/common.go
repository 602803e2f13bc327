package handler // handler defines http handlers

import (
	"context" // context bounds background notification delivery
	"errors"  // errors provides sentinel values used in getUserID
	"log"     // log reports dropped notifications
	"strconv" // strconv converts strings to numeric types
	"strings" // strings provides trimming helpers
	"time"    // time parses dates and times of day

	"github.com/labstack/echo/v4" // echo defines request context types

	"github.com/iliyamo/hoa-community-api/internal/notifier"
	"github.com/iliyamo/hoa-community-api/internal/queue"
)

// dbTimeout bounds every database call made from a handler.
const dbTimeout = 5 * time.Second

// getUserID extracts the user_id from echo.Context and converts it to uint64.
// JWTAuth stores the raw claim value, whose concrete type depends on how the
// token was encoded, so all plausible shapes are handled.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// parseDay parses a calendar date in "YYYY-MM-DD" form.
func parseDay(s string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(s))
}

// notify delivers an event off the request path.  The request has already
// committed its state change, so delivery failures are logged and dropped
// rather than surfaced to the client.
func notify(n notifier.Notifier, ev queue.NotificationEvent) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := n.Notify(ctx, ev); err != nil {
			log.Printf("notify: %s to %s dropped: %v", ev.Type, ev.Recipient, err)
		}
	}()
}

// normalizeTimeOfDay canonicalizes "HH:MM" or "HH:MM:SS" input to the
// "HH:MM:SS" form stored in TIME columns.
func normalizeTimeOfDay(s string) (string, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("15:04:05", s); err == nil {
		return t.Format("15:04:05"), nil
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return "", err
	}
	return t.Format("15:04:05"), nil
}
