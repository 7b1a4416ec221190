package store

import (
	"time"

	"iot-console-be/pkg/catalog"
	"iot-console-be/pkg/query/router"
)

// Session is the in-memory working state of one console session: which
// customer is selected and the query router that owns the session's
// conversation. Durable history lives in the database; this struct only
// carries what the next request needs.
type Session struct {
	ID           string
	Selection    *catalog.SelectionModel
	Router       *router.Router
	CreatedAt    time.Time
	LastActiveAt time.Time
}

// Touch bumps the activity timestamp so the cache TTL tracks real use.
func (s *Session) Touch() {
	s.LastActiveAt = time.Now()
}
