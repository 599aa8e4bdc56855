// Package session binds the logged-in identity to the client's signed cookie.
package session

import (
	"encoding/gob"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

const (
	CookieName = "miniblog"
	loginUser  = "LOGIN_USER"
)

// Identity is what the session remembers about the caller.
type Identity struct {
	Username string
	Email    string
}

func init() {
	gob.Register(Identity{})
}

// Middleware installs a cookie backed session store signed with secret.
func Middleware(secret []byte) gin.HandlerFunc {
	store := cookie.NewStore(secret)
	store.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
	})
	return sessions.Sessions(CookieName, store)
}

// SetLoginUser replaces whatever identity the client had with id, sets the
// cookie lifetime to maxAge seconds and queues flashes for the next page.
// The session is written once.
func SetLoginUser(c *gin.Context, id Identity, maxAge int, flashes ...string) error {
	s := sessions.Default(c)
	s.Options(sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
	})
	s.Set(loginUser, id)
	for _, msg := range flashes {
		s.AddFlash(msg)
	}
	return s.Save()
}

// GetLoginUser returns the bound identity, or nil for anonymous callers.
func GetLoginUser(c *gin.Context) *Identity {
	s := sessions.Default(c)
	if obj := s.Get(loginUser); obj != nil {
		if id, ok := obj.(Identity); ok && strings.TrimSpace(id.Username) != "" {
			return &id
		}
	}
	return nil
}

func IsLogin(c *gin.Context) bool {
	return GetLoginUser(c) != nil
}

func ClearSession(c *gin.Context) error {
	s := sessions.Default(c)
	s.Clear()
	s.Options(sessions.Options{
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	return s.Save()
}

// Flashes pops the queued messages.
func Flashes(c *gin.Context) []string {
	s := sessions.Default(c)
	raw := s.Flashes()
	if len(raw) == 0 {
		return nil
	}
	_ = s.Save()
	msgs := make([]string, 0, len(raw))
	for _, f := range raw {
		if msg, ok := f.(string); ok {
			msgs = append(msgs, msg)
		}
	}
	return msgs
}
