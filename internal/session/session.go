package session

import (
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

const (
	CookieName = "authhub_session"

	keyUserID = "user_id"
)

// ContextUserKey is where RequireLogin stashes the authenticated user id for handlers.
const ContextUserKey = "session.userID"

// NewStore builds the signed cookie store the session middleware runs on.
// Integrity protection (tamper rejection) comes from the store's HMAC signing.
func NewStore(secret string, maxAge time.Duration, secure bool) sessions.Store {
	store := cookie.NewStore([]byte(secret))

	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})

	return store
}

// Middleware mounts the cookie session on every request.
func Middleware(store sessions.Store) gin.HandlerFunc {
	return sessions.Sessions(CookieName, store)
}

// Establish binds the authenticated user id to the client's session.
// The session holds exactly this one attribute.
func Establish(c *gin.Context, userID int64) error {
	s := sessions.Default(c)
	s.Set(keyUserID, userID)

	return s.Save()
}

// Clear drops the bound identity, returning the client to anonymous.
func Clear(c *gin.Context) error {
	s := sessions.Default(c)
	s.Clear()

	return s.Save()
}

// CurrentUserID reports the bound user id, if any.
func CurrentUserID(c *gin.Context) (int64, bool) {
	v := sessions.Default(c).Get(keyUserID)

	switch id := v.(type) {
	case int64:
		return id, true
	case int:
		return int64(id), true
	default:
		return 0, false
	}
}

// RequireLogin redirects anonymous requests to the login page.
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := CurrentUserID(c)

		if !ok {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		// Stash the identity on the context so handlers don't re-read the cookie
		c.Set(ContextUserKey, id)

		c.Next()
	}
}

// UserIDFromContext is the handler-side accessor for the stashed identity.
func UserIDFromContext(c *gin.Context) (int64, bool) {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
