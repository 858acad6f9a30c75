package auth

import (
	"net/http"
	"time"
)

type CookieConfig struct {
	Name   string
	Secure bool
}

// SetSessionCookie hands the token to the browser. The cookie expires with
// the token.
func (cfg CookieConfig) SetSessionCookie(w http.ResponseWriter, s Session, now time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.Name,
		Value:    s.Token,
		Path:     "/",
		Expires:  s.ExpiresAt,
		MaxAge:   int(s.ExpiresAt.Sub(now).Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie tells the browser to drop the session. Tokens are not
// revoked server side; a copied token stays valid until it expires.
func (cfg CookieConfig) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Token returns the session token carried by r, if any.
func (cfg CookieConfig) Token(r *http.Request) string {
	c, err := r.Cookie(cfg.Name)
	if err != nil {
		return ""
	}
	return c.Value
}
