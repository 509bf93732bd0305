// Package middleware provides the session authentication gate.
package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hemobase/hemobase/service"
	"github.com/hemobase/hemobase/structs"
	"github.com/ncobase/ncore/logging/logger"
	"github.com/ncobase/ncore/net/cookie"
	"github.com/ncobase/ncore/net/resp"
)

const sessionContextKey = "session"

// maxPeekBytes bounds the body read done for the payload fallback.
const maxPeekBytes = 1 << 20

// SessionAuth guards a route group: it resolves the session identifier
// from the cookie first, then from an optional sessionId in the JSON
// payload, loads the session and attaches it to the request context.
// Requests without a resolvable live session are rejected before the
// handler runs.
func SessionAuth(auth *service.AuthService, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := resolveSessionID(c)
		if sessionID == "" {
			resp.Fail(c.Writer, resp.UnAuthorized("Session not found"))
			c.Abort()
			return
		}

		session, err := auth.ResolveSession(c.Request.Context(), sessionID)
		if err != nil {
			if errors.Is(err, service.ErrSessionNotFound) {
				resp.Fail(c.Writer, resp.UnAuthorized("Session not found"))
			} else {
				log.Error(c.Request.Context(), "Session lookup failed", "error", err)
				resp.Fail(c.Writer, resp.InternalServer("Session lookup failed"))
			}
			c.Abort()
			return
		}

		WithSession(c, session)
		c.Next()
	}
}

// WithSession attaches a resolved session to the request context.
func WithSession(c *gin.Context, session *structs.Session) {
	c.Set(sessionContextKey, session)
}

// SessionFrom returns the session the gate attached for this request.
func SessionFrom(c *gin.Context) (*structs.Session, bool) {
	value, exists := c.Get(sessionContextKey)
	if !exists {
		return nil, false
	}
	session, ok := value.(*structs.Session)
	return session, ok
}

// resolveSessionID checks the cookie carrier first and falls back to a
// sessionId field in the JSON payload. The body is re-buffered so the
// downstream handler can still bind it. Returns "" when neither source
// yields a parseable identifier.
func resolveSessionID(c *gin.Context) string {
	if id, err := cookie.GetSessionID(c.Request); err == nil {
		if _, err := uuid.Parse(id); err == nil {
			return id
		}
	}

	if c.Request.Body == nil {
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxPeekBytes))
	if err != nil {
		return ""
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))

	var payload struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if _, err := uuid.Parse(payload.SessionID); err != nil {
		return ""
	}

	return payload.SessionID
}
