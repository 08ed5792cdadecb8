// internal/interfaces/http/handlers/session.go
package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/your-org/tshirt-store/internal/infrastructure/storage"
)

const (
	sessionCookie = "session_id"
	sessionHeader = "X-Session-ID"
)

// Sessions hands out the shopper session and its scoped storage
type Sessions struct {
	kv     storage.KV
	maxAge int
	secure bool
}

// NewSessions creates a session helper over the shared KV
func NewSessions(kv storage.KV, ttl time.Duration, secure bool) *Sessions {
	return &Sessions{
		kv:     kv,
		maxAge: int(ttl.Seconds()),
		secure: secure,
	}
}

// ID returns the caller's session id, issuing a cookie for new sessions.
// Values that are not UUIDs are replaced.
func (s *Sessions) ID(c *gin.Context) string {
	if id, ok := c.Get(sessionCookie); ok {
		return id.(string)
	}

	sessionID := c.GetHeader(sessionHeader)
	if sessionID == "" {
		sessionID, _ = c.Cookie(sessionCookie)
	}
	if _, err := uuid.Parse(sessionID); err != nil {
		sessionID = uuid.NewString()
	}

	c.SetCookie(sessionCookie, sessionID, s.maxAge, "/", "", s.secure, true)
	c.Header(sessionHeader, sessionID)
	c.Set(sessionCookie, sessionID)
	return sessionID
}

// Storage returns the KV namespaced to the caller's session
func (s *Sessions) Storage(c *gin.Context) storage.KV {
	return storage.Scoped(s.kv, s.ID(c))
}
