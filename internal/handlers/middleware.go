package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/job-portal/internal/auth"
	"github.com/justsurfingit/job-portal/internal/services"
	"github.com/sirupsen/logrus"
)

const identityKey = "identity"

// SessionGuard turns the session cookie into an auth.Identity on the gin
// context.
type SessionGuard struct {
	Sessions *auth.SessionManager
	Cookie   auth.CookieConfig
	Gate     *services.Gate
}

func NewSessionGuard(sessions *auth.SessionManager, cookie auth.CookieConfig, gate *services.Gate) *SessionGuard {
	return &SessionGuard{Sessions: sessions, Cookie: cookie, Gate: gate}
}

// Require rejects requests without a valid session.
func (g *SessionGuard) Require() gin.HandlerFunc {
	return func(c *gin.Context) {
		who, err := g.Sessions.Authenticate(g.Cookie.Token(c.Request))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.Set(identityKey, who)
		c.Next()
	}
}

// Optional attaches the identity when the cookie is valid and otherwise
// lets the request through anonymously.
func (g *SessionGuard) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if who, err := g.Sessions.Authenticate(g.Cookie.Token(c.Request)); err == nil {
			c.Set(identityKey, who)
		}
		c.Next()
	}
}

// Allow refuses the request early when the caller's role cannot perform
// act, before any body is read. Ownership is left to the service.
func (g *SessionGuard) Allow(act services.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := g.Gate.CheckRole(identity(c), act); err != nil {
			abortWithError(c, err)
			return
		}
		c.Next()
	}
}

// identity returns the caller, or the zero Identity when anonymous.
func identity(c *gin.Context) auth.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return auth.Identity{}
	}
	who, _ := v.(auth.Identity)
	return who
}

// RequestTimeout bounds the request context; services pass it on to the
// database and object store.
func RequestTimeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logrus.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"path":      c.FullPath(),
			"status":    c.Writer.Status(),
			"latency":   time.Since(start).String(),
			"client_ip": c.ClientIP(),
		})
		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.Error("request failed")
		case status >= 400:
			entry.Warn("request rejected")
		default:
			entry.Info("request served")
		}
	}
}
